package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/qaclearn/shorpost/pkg/config"
	"github.com/qaclearn/shorpost/pkg/runner"
	"github.com/qaclearn/shorpost/pkg/stores"
	"github.com/qaclearn/shorpost/pkg/telemetry"
)

// environment is the configuration, telemetry and optional history store a
// command runs with.
type environment struct {
	cfg   *config.Config
	tel   *telemetry.Telemetry
	store *stores.SQLiteStore
}

// setup loads the config and builds telemetry. The history store is opened
// only when withStore is set and the config enables it.
func setup(ctx context.Context, withStore bool) (*environment, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	tel, err := telemetry.NewTelemetry(&cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	env := &environment{cfg: cfg, tel: tel}
	if withStore && cfg.Store.Enabled {
		store, err := openStore(ctx, cfg.Store.Path)
		if err != nil {
			_ = tel.Shutdown(ctx)
			return nil, err
		}
		env.store = store
	}
	return env, nil
}

// runner builds a runner from the environment.
func (e *environment) runner() *runner.Runner {
	rc := runner.Config{
		Options:     e.cfg.Engine.Options(),
		Concurrency: e.cfg.Engine.Concurrency,
		Telemetry:   e.tel,
	}
	if e.store != nil {
		rc.Store = e.store
	}
	return runner.New(rc)
}

func (e *environment) Close(ctx context.Context) {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close history store")
		}
	}
	if err := e.tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
		log.Warn().Err(err).Msg("Failed to flush traces")
	}
}

// openStore opens and migrates the SQLite history database.
func openStore(ctx context.Context, path string) (*stores.SQLiteStore, error) {
	store, err := stores.NewSQLiteStore(stores.Config{Path: path})
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// parseBig parses a decimal (or 0x-prefixed hex) integer flag.
func parseBig(name, value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("--%s is required", name)
	}
	v, ok := new(big.Int).SetString(value, 0)
	if !ok {
		return nil, fmt.Errorf("invalid --%s: %q", name, value)
	}
	return v, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
