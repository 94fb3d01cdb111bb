package lifecycle

import (
	"log/slog"
	"time"
)

// Default stop polling parameters.
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultStopTimeout  = 1000 * time.Millisecond
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithPollInterval sets how often stop checks for the lock to disappear.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithStopTimeout sets how long stop waits before deleting the lock itself.
func WithStopTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.stopTimeout = d
		}
	}
}

// WithPID sets the PID written to the lock. Defaults to os.Getpid().
func WithPID(pid int) Option {
	return func(c *Controller) {
		c.pid = pid
	}
}

// WithProcessFuncs replaces the process liveness check and the termination
// request used by Stop.
func WithProcessFuncs(running func(pid int) bool, terminate func(pid int) error) Option {
	return func(c *Controller) {
		if running != nil {
			c.processRunning = running
		}
		if terminate != nil {
			c.terminate = terminate
		}
	}
}
