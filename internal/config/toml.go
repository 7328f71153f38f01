package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// loadTOML merges the TOML file at path into cfg.
// A missing file leaves cfg untouched and returns nil.
func loadTOML(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return &ParseError{
			Path:    path,
			Message: err.Error(),
			Err:     err,
		}
	}

	return nil
}
