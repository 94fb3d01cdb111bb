package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileConfig configures the CLI logger.
type FileConfig struct {
	// Path of the JSON log file. Ignored when Disabled.
	Path string
	// Disabled turns off the log file.
	Disabled bool
	// Level applies to both destinations.
	Level Level
	// Console defaults to os.Stderr.
	Console io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open creates a logger that writes text to the console and JSON lines to
// the log file. The returned closer closes the file.
func Open(cfg FileConfig) (*slog.Logger, io.Closer, error) {
	console := newHandler(Config{Level: cfg.Level, Format: FormatText, Output: cfg.Console})
	if cfg.Disabled || cfg.Path == "" {
		return slog.New(console), nopCloser{}, nil
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	file := newHandler(Config{Level: cfg.Level, Format: FormatJSON, Output: f})
	return slog.New(NewMultiHandler(console, file)), f, nil
}
