package config

import (
	"os"
	"strconv"
	"time"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "GLUEPANEL_"

// applyEnv overlays GLUEPANEL_* environment variables onto cfg.
// Unparseable values are ignored and the existing value kept.
func applyEnv(cfg *Config) {
	envString("CONTROLLER_URL", &cfg.Controller.URL)
	envDuration("CONTROLLER_TIMEOUT", &cfg.Controller.RequestTimeout)
	envInt("CELLS", &cfg.Cells.Count)
	envFloat("CELL_CAPACITY", &cfg.Cells.DefaultCapacityGrams)
	envInt("TRAIL_LENGTH", &cfg.Trajectory.TrailLength)
	envBool("SIM", &cfg.Sim.Enabled)
	envString("SIM_SCRIPT", &cfg.Sim.ScriptPath)
	envDuration("SIM_TICK", &cfg.Sim.TickInterval)
	envString("LOG_LEVEL", &cfg.Logging.Level)
	envString("LOG_FILE", &cfg.Logging.File)
	envString("THEME", &cfg.UI.Theme)
	envBool("METRICS", &cfg.Metrics.Enabled)
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(name string, dst *float64) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(name string, dst *bool) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
