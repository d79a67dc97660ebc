// Package config defines the process configuration and its layered
// loading. The baseline shape parameters live here and are threaded
// explicitly into the pipeline and generator; nothing closes over
// process-wide mutable state.
package config

import "github.com/ozgoose/foilopt/internal/xfoil"

// Config contains all tunables of an optimization run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address for serve mode.
	Addr string `koanf:"addr"`

	// WorkDir is where geometries, polars, sessions and run records live.
	WorkDir string `koanf:"work_dir"`

	// SolverPath is the XFOIL binary path or name.
	SolverPath string `koanf:"solver_path"`

	// SolverTimeoutSec bounds one solver invocation (0 = no deadline).
	SolverTimeoutSec int `koanf:"solver_timeout_sec"`

	// Sweep fixes the solver operating point.
	Sweep xfoil.SweepSettings `koanf:"sweep"`

	// Thickness, Chord and XLE are the fixed shape parameters of a run;
	// only {xTE, S} are searched.
	Thickness float64 `koanf:"thickness"`
	Chord     float64 `koanf:"chord"`
	XLE       float64 `koanf:"x_le"`

	// XTE0 and S0 are the initial guess for the free parameters, with
	// [XTEMin, XTEMax] x [SMin, SMax] as the search box.
	XTE0   float64 `koanf:"x_te0"`
	S0     float64 `koanf:"s0"`
	XTEMin float64 `koanf:"x_te_min"`
	XTEMax float64 `koanf:"x_te_max"`
	SMin   float64 `koanf:"s_min"`
	SMax   float64 `koanf:"s_max"`

	// Optimizer selects the minimizer adapter: lbfgs or mayfly.
	Optimizer string `koanf:"optimizer"`

	// MaxIters caps outer optimizer iterations.
	MaxIters int `koanf:"max_iters"`

	// FDStep is the finite-difference step for gradient estimates.
	FDStep float64 `koanf:"fd_step"`

	// Seed drives the stochastic optimizer for reproducibility.
	Seed int64 `koanf:"seed"`

	// RoundDecimals is the decimal precision free parameters are rounded
	// to before geometry naming, collapsing optimizer jitter onto a
	// single geometry identity.
	RoundDecimals int `koanf:"round_decimals"`
}

// New returns the default configuration: the ozgoose foil baseline at
// Re 1e6 with the quasi-Newton minimizer.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8080",
		WorkDir:          "./work",
		SolverPath:       "xfoil",
		SolverTimeoutSec: 120,
		Sweep:            xfoil.DefaultSweep(),
		Thickness:        22,
		Chord:            235,
		XLE:              2.468,
		XTE0:             2.143,
		S0:               0.803,
		XTEMin:           2.0,
		XTEMax:           2.3,
		SMin:             0.78,
		SMax:             0.85,
		Optimizer:        "lbfgs",
		MaxIters:         50,
		FDStep:           1e-3,
		Seed:             42,
		RoundDecimals:    3,
	}
}
