package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FOILOPT_CONFIG is set
//  3. env (prefix FOILOPT_)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("FOILOPT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: FOILOPT_WORK_DIR, FOILOPT_SWEEP.REYNOLDS, ...
	// Keys keep their underscores to match the koanf struct tags; a dot
	// separates nested sections.
	envProvider := env.Provider("FOILOPT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "foilopt_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations no run could use.
func (c *Config) Validate() error {
	if c.WorkDir == "" {
		return errors.New("work_dir must not be empty")
	}
	if c.SolverPath == "" {
		return errors.New("solver_path must not be empty")
	}
	if c.XTEMin >= c.XTEMax {
		return errors.New("x_te bounds inverted")
	}
	if c.SMin >= c.SMax {
		return errors.New("s bounds inverted")
	}
	if c.RoundDecimals < 0 {
		return errors.New("round_decimals must be non-negative")
	}
	if c.Sweep.AlphaStep <= 0 {
		return errors.New("sweep alpha_step must be positive")
	}
	return nil
}
