package cliconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalRCFileNames are the names searched for in the working directory (in order).
var LocalRCFileNames = []string{".mbrc.yaml", ".mbrc.yml"}

// ConfigError represents an rc file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", e.Path, e.Line, e.Message)
	}
	return e.Path + ": " + e.Message
}

// FindRCFile returns the first rc file present in dir, or "" if none is.
func FindRCFile(dir string) string {
	for _, name := range LocalRCFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ApplyRCFile returns base overlaid with the values in the YAML rc file at
// path. Keys use the canonical option names; unknown keys are rejected.
func ApplyRCFile(base Options, path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read rc file: %w", err)
	}

	out := base.Clone()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		cfgErr := &ConfigError{Path: path, Message: err.Error()}
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
			cfgErr.Message = typeErr.Errors[0]
		}
		return base, cfgErr
	}
	out.RCFile = path
	return out, nil
}

// ApplyEnv returns base overlaid with the MB_* environment variables that
// getenv reports as set.
func ApplyEnv(base Options, getenv func(string) string) (Options, error) {
	out := base
	for _, f := range fields {
		if f.Env == "" {
			continue
		}
		v := getenv(f.Env)
		if v == "" {
			continue
		}
		next, err := out.With(f.Name, v)
		if err != nil {
			return base, fmt.Errorf("%s: %w", f.Env, err)
		}
		out = next
	}
	return out, nil
}

// Load builds the base Options for an invocation: defaults, then the rc file,
// then the environment. rcFile selects an explicit rc file; when empty the
// working directory is searched.
func Load(rcFile string, getenv func(string) string) (Options, error) {
	opts := Defaults()

	if rcFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			rcFile = FindRCFile(cwd)
		}
	}
	if rcFile != "" {
		var err error
		if opts, err = ApplyRCFile(opts, rcFile); err != nil {
			return Options{}, err
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	return ApplyEnv(opts, getenv)
}

// Validate checks the values that cannot be repaired by a default.
func (o Options) Validate() error {
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 0 and 65535", o.Port)
	}
	if o.PIDFile == "" {
		return errors.New("pidfile must not be empty")
	}
	return nil
}
