// Package config loads dashboard configuration from TOML files with
// environment variable overrides.
//
// Values merge in three layers, later layers winning: built-in defaults,
// the TOML file, then GLUEPANEL_* environment variables.
package config
