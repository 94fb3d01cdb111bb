package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/getmockd/mb/pkg/cliconfig"
	"github.com/getmockd/mb/pkg/logging"
)

const defaultShutdownTimeout = 5 * time.Second

// API serves the admin endpoints for one mb process.
type API struct {
	opts            cliconfig.Options
	store           *Store
	access          *accessControl
	httpServer      *http.Server
	listener        net.Listener
	log             *slog.Logger
	version         string
	startTime       time.Time
	shutdownTimeout time.Duration

	mu      sync.Mutex
	serving bool
	done    chan struct{}
}

// NewAPI creates an admin API configured by opts. It does not bind until
// Start is called.
func NewAPI(opts cliconfig.Options, options ...Option) (*API, error) {
	access, err := newAccessControl(opts.LocalOnly, opts.IPWhitelist)
	if err != nil {
		return nil, err
	}

	a := &API{
		opts:            opts,
		store:           NewStore(),
		access:          access,
		log:             logging.Nop(),
		version:         "dev",
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, o := range options {
		o(a)
	}

	mux := http.NewServeMux()
	a.registerRoutes(mux)
	a.httpServer = &http.Server{
		Handler:           a.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// Handler returns the admin API handler, middleware included.
func (a *API) Handler() http.Handler {
	return a.httpServer.Handler
}

// Start binds the admin port and serves in the background. A bind failure is
// returned before any request is served.
func (a *API) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.serving {
		return errors.New("admin API already started")
	}

	ln, err := net.Listen("tcp", a.opts.ListenAddress())
	if err != nil {
		return fmt.Errorf("cannot bind admin API to %s: %w", a.opts.ListenAddress(), err)
	}
	a.listener = ln
	a.serving = true
	a.startTime = time.Now()
	a.done = make(chan struct{})

	a.log.Info("admin API listening", "addr", ln.Addr().String())
	go func(done chan struct{}) {
		defer close(done)
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("admin API error", "error", err)
		}
	}(a.done)
	return nil
}

// Stop shuts the server down, waiting for in-flight requests up to the
// shutdown timeout. Stopping a server that is not running is a no-op.
func (a *API) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.serving {
		return nil
	}
	a.serving = false

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	err := a.httpServer.Shutdown(ctx)
	<-a.done
	a.log.Info("admin API stopped")
	return err
}

// Port returns the bound port, or the configured port before Start.
func (a *API) Port() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		if tcp, ok := a.listener.Addr().(*net.TCPAddr); ok {
			return tcp.Port
		}
	}
	return a.opts.Port
}

// Store returns the imposter store.
func (a *API) Store() *Store {
	return a.store
}

// Uptime returns the seconds since Start.
func (a *API) Uptime() int {
	if a.startTime.IsZero() {
		return 0
	}
	return int(time.Since(a.startTime).Seconds())
}
