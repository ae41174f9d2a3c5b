package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shorpost",
		Short: "shorpost - classical post-processing for quantum order finding",
		Long: `shorpost turns phase-register measurement counts from an order-finding
circuit into the multiplicative order of a modulo N and, when the order is
informative, a non-trivial factorization of N.

Pipeline:
  - Phase estimate y/2^t from each measured outcome
  - Continued-fraction convergents with denominators below N
  - Order validation by modular exponentiation
  - Factor extraction from gcd(a^(r/2) - 1, N)

Runs are logged, exported as Prometheus metrics and kept in a local SQLite
history.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default shorpost.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newFactorCommand())
	rootCmd.AddCommand(newOrderCommand())
	rootCmd.AddCommand(newExpandCommand())
	rootCmd.AddCommand(newSynthCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newWatchCommand())

	return rootCmd
}
