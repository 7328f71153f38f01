package config

import (
	"fmt"
	"time"
)

// Config is the dashboard configuration. Values merge in three layers:
// built-in defaults, an optional TOML file, then GLUEPANEL_* environment
// variables.
type Config struct {
	// Cells configures the glue cell bank.
	Cells CellsConfig `toml:"cells"`

	// Controller configures the robot controller connection.
	Controller ControllerConfig `toml:"controller"`

	// Trajectory configures trajectory visualization.
	Trajectory TrajectoryConfig `toml:"trajectory"`

	// Sim configures the offline simulator.
	Sim SimConfig `toml:"sim"`

	// Logging configures log output.
	Logging LoggingConfig `toml:"logging"`

	// UI configures the terminal interface.
	UI UIConfig `toml:"ui"`

	// Metrics enables the in-process metrics pipeline.
	Metrics MetricsConfig `toml:"metrics"`
}

// CellsConfig configures the glue cell bank.
type CellsConfig struct {
	// Count is the number of glue cells on the line.
	Count int `toml:"count"`

	// DefaultCapacityGrams is the fallback cartridge capacity used when no
	// cell registry is wired into the container.
	DefaultCapacityGrams float64 `toml:"defaultCapacityGrams"`

	// LowThresholdPercent is the fill level below which a cell meter is
	// rendered in the warning color.
	LowThresholdPercent float64 `toml:"lowThresholdPercent"`
}

// ControllerConfig configures the robot controller connection.
type ControllerConfig struct {
	// URL is the controller websocket endpoint.
	URL string `toml:"url"`

	// RequestTimeout bounds a single request/response exchange.
	RequestTimeout time.Duration `toml:"requestTimeout"`

	// ReconnectMaxInterval caps the backoff between reconnect attempts.
	ReconnectMaxInterval time.Duration `toml:"reconnectMaxInterval"`

	// ReconnectMaxElapsed bounds total reconnect time. Zero retries forever.
	ReconnectMaxElapsed time.Duration `toml:"reconnectMaxElapsed"`
}

// TrajectoryConfig configures trajectory visualization.
type TrajectoryConfig struct {
	// TrailLength is the number of recent points kept on the canvas.
	TrailLength int `toml:"trailLength"`

	// DrawingEnabled is the startup state of trajectory drawing.
	DrawingEnabled bool `toml:"drawingEnabled"`
}

// SimConfig configures the offline simulator.
type SimConfig struct {
	// Enabled runs the dashboard against simulated producers instead of a
	// live controller.
	Enabled bool `toml:"enabled"`

	// ScriptPath is an optional Lua profile script driving the simulation.
	ScriptPath string `toml:"scriptPath"`

	// TickInterval is the simulator publish cadence.
	TickInterval time.Duration `toml:"tickInterval"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// File is an optional log file path. Empty logs to stderr.
	File string `toml:"file"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	// Theme selects the color theme.
	Theme string `toml:"theme"`

	// RefreshInterval is the minimum redraw interval.
	RefreshInterval time.Duration `toml:"refreshInterval"`
}

// MetricsConfig enables the in-process metrics pipeline.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Cells: CellsConfig{
			Count:                3,
			DefaultCapacityGrams: 5000.0,
			LowThresholdPercent:  15.0,
		},
		Controller: ControllerConfig{
			URL:                  "ws://localhost:9090/api",
			RequestTimeout:       5 * time.Second,
			ReconnectMaxInterval: 30 * time.Second,
			ReconnectMaxElapsed:  0,
		},
		Trajectory: TrajectoryConfig{
			TrailLength:    500,
			DrawingEnabled: true,
		},
		Sim: SimConfig{
			Enabled:      false,
			TickInterval: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme:           "dark",
			RefreshInterval: 100 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Cells.Count < 1 {
		return &ValidationError{Field: "cells.count", Message: fmt.Sprintf("must be at least 1, got %d", c.Cells.Count)}
	}
	if c.Cells.DefaultCapacityGrams <= 0 {
		return &ValidationError{Field: "cells.defaultCapacityGrams", Message: "must be positive"}
	}
	if c.Cells.LowThresholdPercent < 0 || c.Cells.LowThresholdPercent > 100 {
		return &ValidationError{Field: "cells.lowThresholdPercent", Message: "must be between 0 and 100"}
	}
	if c.Controller.URL == "" && !c.Sim.Enabled {
		return &ValidationError{Field: "controller.url", Message: "required unless sim.enabled is set"}
	}
	if c.Trajectory.TrailLength < 1 {
		return &ValidationError{Field: "trajectory.trailLength", Message: "must be at least 1"}
	}
	if c.Sim.TickInterval <= 0 {
		return &ValidationError{Field: "sim.tickInterval", Message: "must be positive"}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	return nil
}

// Load builds the configuration: defaults, then the TOML file at path (a
// missing file is not an error), then GLUEPANEL_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := loadTOML(path, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
