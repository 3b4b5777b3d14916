package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if VIGIL_CONFIG is set
//  3. env (prefix VIGIL_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("VIGIL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: VIGIL_ADDR, VIGIL_DB_DSN, ...
	// Map env keys like VIGIL_DB_DSN -> db_dsn (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("VIGIL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "vigil_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the service cannot run with.
func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.DBDSN == "":
		return fmt.Errorf("%w: db_dsn must not be empty", ErrInvalidConfig)
	case cfg.AttentionURL == "":
		return fmt.Errorf("%w: attention_url must not be empty", ErrInvalidConfig)
	case cfg.DispositionURL == "":
		return fmt.Errorf("%w: disposition_url must not be empty", ErrInvalidConfig)
	case cfg.FetchIntervalMinutes <= 0:
		return fmt.Errorf("%w: fetch_interval_minutes must be positive", ErrInvalidConfig)
	case cfg.FetchTimeoutSeconds <= 0:
		return fmt.Errorf("%w: fetch_timeout_seconds must be positive", ErrInvalidConfig)
	case cfg.CandidateWindowDays <= 0:
		return fmt.Errorf("%w: candidate_window_days must be positive", ErrInvalidConfig)
	}
	return nil
}
