// Package pidfile implements the PID lock that coordinates mb invocations.
//
// The lock is a single plain-text file holding the decimal process ID of the
// running server. A missing file means no server is running. A file that names
// a process which no longer exists is stale and is removed by whoever finds it.
//
// Exists followed by Read is advisory: another invocation may delete the file
// between the two calls, so callers must treat a Read error matching
// fs.ErrNotExist the same as "not running".
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultPath is the lock location used when no pidfile option is given.
const DefaultPath = "mb.pid"

// ErrMalformed is returned by Read when the lock does not hold a positive
// decimal process ID.
var ErrMalformed = errors.New("malformed PID file")

// Lock is the filesystem lock at a fixed path.
type Lock struct {
	path    string
	running func(pid int) bool
}

// Option configures a Lock.
type Option func(*Lock)

// WithProcessCheck replaces the liveness check Stale uses.
func WithProcessCheck(running func(pid int) bool) Option {
	return func(l *Lock) {
		if running != nil {
			l.running = running
		}
	}
}

// New returns the lock stored at path. An empty path selects DefaultPath.
func New(path string, opts ...Option) *Lock {
	if path == "" {
		path = DefaultPath
	}
	l := &Lock{path: path, running: ProcessRunning}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Exists reports whether the lock file is present.
func (l *Lock) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Read returns the process ID recorded in the lock.
func (l *Lock) Read() (int, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(text)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w %s: %q", ErrMalformed, l.path, text)
	}
	return pid, nil
}

// Write records pid in the lock. The file is replaced atomically so a
// concurrent reader sees either the old contents or the new ones.
func (l *Lock) Write(pid int) error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create PID file directory: %w", err)
		}
	}

	// Unique per writer so two racing starts never share a temp file.
	tmpPath := l.path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	if err := os.Rename(tmpPath, l.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename PID file: %w", err)
	}
	return nil
}

// Delete removes the lock. Removing a lock that is already gone succeeds.
func (l *Lock) Delete() error {
	err := os.Remove(l.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Stale reads the lock and reports whether it names a process that is not
// running. A missing lock is not stale and reports PID 0. A malformed lock is
// stale and also reports PID 0.
func (l *Lock) Stale() (pid int, stale bool, err error) {
	pid, err = l.Read()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return 0, false, nil
	case errors.Is(err, ErrMalformed):
		return 0, true, nil
	case err != nil:
		return 0, false, err
	}
	return pid, !l.running(pid), nil
}
