package admin

import (
	"log/slog"
	"time"
)

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger for the admin API.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithVersion sets the version reported by GET /config.
func WithVersion(version string) Option {
	return func(a *API) {
		a.version = version
	}
}

// WithShutdownTimeout bounds how long Stop waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *API) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}
