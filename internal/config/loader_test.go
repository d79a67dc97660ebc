package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FOILOPT_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Thickness != 22 || cfg.Chord != 235 || cfg.XLE != 2.468 {
		t.Errorf("Unexpected baseline: t=%g c=%g xLE=%g", cfg.Thickness, cfg.Chord, cfg.XLE)
	}
	if cfg.Optimizer != "lbfgs" {
		t.Errorf("Default optimizer = %q, want lbfgs", cfg.Optimizer)
	}
	if cfg.Sweep.Reynolds != 1e6 {
		t.Errorf("Default Reynolds = %g, want 1e6", cfg.Sweep.Reynolds)
	}
	if cfg.RoundDecimals != 3 {
		t.Errorf("Default rounding = %d, want 3", cfg.RoundDecimals)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FOILOPT_CONFIG", "")
	t.Setenv("FOILOPT_WORK_DIR", "/tmp/foilwork")
	t.Setenv("FOILOPT_OPTIMIZER", "mayfly")
	t.Setenv("FOILOPT_SWEEP.REYNOLDS", "500000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.WorkDir != "/tmp/foilwork" {
		t.Errorf("WorkDir = %q, want env override", cfg.WorkDir)
	}
	if cfg.Optimizer != "mayfly" {
		t.Errorf("Optimizer = %q, want mayfly", cfg.Optimizer)
	}
	if cfg.Sweep.Reynolds != 500000 {
		t.Errorf("Reynolds = %g, want 500000", cfg.Sweep.Reynolds)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foilopt.yaml")
	body := []byte("x_te_min: 2.1\nx_te_max: 2.25\nsweep:\n  alpha_end: 8\n")
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("FOILOPT_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.XTEMin != 2.1 || cfg.XTEMax != 2.25 {
		t.Errorf("Bounds = [%g, %g], want file override", cfg.XTEMin, cfg.XTEMax)
	}
	if cfg.Sweep.AlphaEnd != 8 {
		t.Errorf("AlphaEnd = %g, want 8", cfg.Sweep.AlphaEnd)
	}
	// Untouched keys keep their defaults.
	if cfg.Sweep.AlphaStep != 0.1 {
		t.Errorf("AlphaStep = %g, want default 0.1", cfg.Sweep.AlphaStep)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty workdir", func(c *Config) { c.WorkDir = "" }},
		{"empty solver", func(c *Config) { c.SolverPath = "" }},
		{"inverted xte bounds", func(c *Config) { c.XTEMin, c.XTEMax = 2.3, 2.0 }},
		{"inverted s bounds", func(c *Config) { c.SMin, c.SMax = 0.9, 0.8 }},
		{"negative rounding", func(c *Config) { c.RoundDecimals = -1 }},
		{"zero alpha step", func(c *Config) { c.Sweep.AlphaStep = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
