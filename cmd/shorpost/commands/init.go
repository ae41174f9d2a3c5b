package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qaclearn/shorpost/pkg/config"
)

func newInitCommand() *cobra.Command {
	var (
		force  bool
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config and create the run history database",
		Long: `Write shorpost.yaml with the built-in defaults and create the SQLite
database that keeps the history of factoring runs.

An existing config file is left untouched unless --force is given.`,
		Example: `  # Initialize in the current directory
  shorpost init

  # Custom locations
  shorpost init --config /etc/shorpost/shorpost.yaml --db /var/lib/shorpost/history.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			path := configPath
			if path == "" {
				path = config.DefaultPath
			}

			cfg := config.Default()
			if dbPath != "" {
				cfg.Store.Path = dbPath
			}

			log.Info().
				Str("config", path).
				Str("db", cfg.Store.Path).
				Bool("force", force).
				Msg("Initializing workspace")

			if _, err := os.Stat(path); err == nil && !force {
				fmt.Printf("✓ Config file already exists: %s\n", path)
			} else {
				if dir := filepath.Dir(path); dir != "." {
					if err := os.MkdirAll(dir, 0755); err != nil {
						return fmt.Errorf("failed to create config directory: %w", err)
					}
				}
				if err := config.Write(path, cfg); err != nil {
					return err
				}
				fmt.Printf("✓ Created config file: %s\n", path)
			}

			if dir := filepath.Dir(cfg.Store.Path); dir != "." {
				if err := os.MkdirAll(dir, 0700); err != nil {
					return fmt.Errorf("failed to create database directory: %w", err)
				}
			}
			store, err := openStore(ctx, cfg.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.HealthCheck(ctx); err != nil {
				return fmt.Errorf("database health check failed: %w", err)
			}
			fmt.Printf("✓ Initialized SQLite database: %s\n", cfg.Store.Path)

			fmt.Printf("\nNext steps:\n")
			fmt.Printf("  1. Generate a synthetic histogram:\n")
			fmt.Printf("     shorpost synth --n 15 --a 7 --bits 8 --out counts.json\n\n")
			fmt.Printf("  2. Factor from it:\n")
			fmt.Printf("     shorpost factor counts.json\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.Flags().StringVar(&dbPath, "db", "", "history database path (default shorpost.db)")

	return cmd
}
