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
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CARTAZ_CONFIG is set
//  3. env (prefix CARTAZ_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CARTAZ_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: CARTAZ_ADDR, CARTAZ_QUEUE_SIZE, ...
	// Underscores are preserved so env keys match the koanf tags.
	envProvider := env.Provider("CARTAZ_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "cartaz_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultLimit < 1:
		return fmt.Errorf("%w: default_limit must be >= 1", ErrInvalidConfig)
	case c.MaxLimit < c.DefaultLimit:
		return fmt.Errorf("%w: max_limit must be >= default_limit", ErrInvalidConfig)
	case c.CandidateCap < 1:
		return fmt.Errorf("%w: candidate_cap must be >= 1", ErrInvalidConfig)
	case c.JitterMax < 0:
		return fmt.Errorf("%w: jitter_max must not be negative", ErrInvalidConfig)
	}
	return nil
}
