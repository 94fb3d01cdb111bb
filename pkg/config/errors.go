package config

import (
	"errors"
	"fmt"
)

// Sentinel errors for config loading.
var (
	// ErrConfigFileMissing is returned when the config file does not exist.
	ErrConfigFileMissing = errors.New("config file not found")
	// ErrInvalidJSON is returned when the rendered config is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON in config")
)

// ParseError is returned when a config file cannot be rendered or parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse config file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
