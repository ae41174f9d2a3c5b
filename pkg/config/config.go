package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/qaclearn/shorpost/pkg/engine"
	"github.com/qaclearn/shorpost/pkg/telemetry"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "shorpost.yaml"

// Config is the shorpost configuration file.
type Config struct {
	// Engine tunes order recovery.
	Engine EngineConfig `yaml:"engine"`

	// Store configures the run history database.
	Store StoreConfig `yaml:"store"`

	// Telemetry configures logging, tracing and metrics.
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// EngineConfig tunes order recovery.
type EngineConfig struct {
	// MaxOutcomes caps how many outcomes a run tries. 0 means all.
	MaxOutcomes int `yaml:"max_outcomes" validate:"gte=0"`

	// MaxExpansionSteps overrides the continued-fraction step cap when > 0.
	MaxExpansionSteps int `yaml:"max_expansion_steps" validate:"gte=0,lte=100000"`

	// MultipleSearch tries k·q for 2 <= k <= MultipleSearch when no
	// convergent validates. 0 disables it.
	MultipleSearch int `yaml:"multiple_search" validate:"gte=0,lte=64"`

	// MinCount skips outcomes seen fewer times than this.
	MinCount uint64 `yaml:"min_count"`

	// Concurrency bounds how many runs a batch executes at once.
	Concurrency int `yaml:"concurrency" validate:"gte=1,lte=256"`
}

// Options converts the engine section into engine options.
func (e EngineConfig) Options() engine.Options {
	return engine.Options{
		MaxOutcomes:       e.MaxOutcomes,
		MaxExpansionSteps: e.MaxExpansionSteps,
		MultipleSearch:    e.MultipleSearch,
		MinCount:          e.MinCount,
	}
}

// StoreConfig configures the run history database.
type StoreConfig struct {
	// Enabled turns run persistence on.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `yaml:"path" validate:"required_if=Enabled true"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Concurrency: 4,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "shorpost.db",
		},
		Telemetry: *telemetry.DefaultConfig(),
	}
}

var validate = validator.New()

// Validate checks struct tags and the telemetry section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("invalid telemetry config: %w", err)
	}
	return nil
}

// Load reads path over the defaults. A missing file at DefaultPath is not an
// error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies environment overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("SHORPOST_LOG_LEVEL"); v != "" {
		c.Telemetry.Logging.Level = v
	}
	if v := os.Getenv("SHORPOST_DB"); v != "" {
		c.Store.Path = v
	}
}

// Write marshals cfg to path.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	header := []byte("# shorpost configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
