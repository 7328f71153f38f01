package config

import "fmt"

// ParseError reports a failure to parse a configuration file.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string

	// Message describes the parse failure.
	Message string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	// Field is the dotted path of the offending field.
	Field string

	// Message describes why the value is invalid.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Message)
}
