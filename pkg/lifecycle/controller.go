// Package lifecycle starts, stops and restarts the mb server process and
// coordinates invocations through the PID lock.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/getmockd/mb/pkg/cliconfig"
	"github.com/getmockd/mb/pkg/logging"
	"github.com/getmockd/mb/pkg/pidfile"
)

var (
	// ErrAlreadyRunning is returned by Start when a live process holds the lock.
	ErrAlreadyRunning = errors.New("server already running")
	// ErrInterrupted is returned by Start when shutdown began before the
	// server finished starting.
	ErrInterrupted = errors.New("start interrupted by shutdown")
)

// Server is the process-local server that start runs.
type Server interface {
	Start() error
	Stop() error
}

// ServerFactory creates a server for opts.
type ServerFactory func(opts cliconfig.Options) (Server, error)

// ConfigLoader installs the configured imposters on a running server.
type ConfigLoader interface {
	Load(ctx context.Context) error
}

// LoaderFactory creates the config loader once the server is bound. opts
// carries the bound port.
type LoaderFactory func(opts cliconfig.Options) ConfigLoader

// Controller drives one mb invocation through start, stop and restart.
// A Controller runs a server at most once.
type Controller struct {
	opts      cliconfig.Options
	newServer ServerFactory
	newLoader LoaderFactory
	lock      *pidfile.Lock
	log       *slog.Logger

	pollInterval   time.Duration
	stopTimeout    time.Duration
	pid            int
	processRunning func(int) bool
	terminate      func(int) error

	mu        sync.Mutex
	state     State
	server    Server
	wroteLock bool
	sigCh     chan os.Signal

	shutdownOnce sync.Once
	shutdownErr  error
	done         chan struct{}
}

// New creates a controller for opts.
func New(opts cliconfig.Options, newServer ServerFactory, newLoader LoaderFactory, options ...Option) *Controller {
	c := &Controller{
		opts:           opts,
		newServer:      newServer,
		newLoader:      newLoader,
		log:            logging.Nop(),
		pollInterval:   DefaultPollInterval,
		stopTimeout:    DefaultStopTimeout,
		pid:            os.Getpid(),
		processRunning: pidfile.ProcessRunning,
		terminate:      pidfile.Terminate,
		done:           make(chan struct{}),
	}
	for _, o := range options {
		o(c)
	}
	c.lock = pidfile.New(opts.PIDFile, pidfile.WithProcessCheck(c.processRunning))
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Lock returns the PID lock used by the controller.
func (c *Controller) Lock() *pidfile.Lock {
	return c.lock
}

// Start binds the server, installs the config file and writes the PID lock,
// in that order. It returns once the server is running; use Wait to block
// until shutdown. SIGINT, SIGTERM and cancellation of ctx trigger Shutdown.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateStopped || c.isDone() {
		c.mu.Unlock()
		return fmt.Errorf("cannot start from state %s", c.state)
	}
	c.state = StateStarting
	c.mu.Unlock()

	if err := c.checkLock(); err != nil {
		c.setState(StateStopped)
		return err
	}

	srv, err := c.newServer(c.opts)
	if err != nil {
		c.setState(StateStopped)
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := srv.Start(); err != nil {
		c.setState(StateStopped)
		return err
	}

	opts := c.opts
	if p, ok := srv.(interface{ Port() int }); ok {
		opts.Port = p.Port()
	}

	c.mu.Lock()
	c.server = srv
	c.sigCh = make(chan os.Signal, 1)
	c.mu.Unlock()
	signal.Notify(c.sigCh, os.Interrupt, syscall.SIGTERM)
	go c.watch(ctx, c.sigCh)

	if c.newLoader != nil {
		if loader := c.newLoader(opts); loader != nil {
			if err := loader.Load(ctx); err != nil {
				_ = c.Shutdown()
				return err
			}
		}
	}

	c.mu.Lock()
	if c.state != StateStarting {
		c.mu.Unlock()
		return ErrInterrupted
	}
	if err := c.lock.Write(c.pid); err != nil {
		c.mu.Unlock()
		_ = c.Shutdown()
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	c.wroteLock = true
	c.state = StateRunning
	c.mu.Unlock()

	c.log.Info(fmt.Sprintf("mb now taking orders - point your browser to %s/ for help", opts.AdminURL()),
		"pid", c.pid,
		"pidfile", c.lock.Path(),
	)
	return nil
}

// checkLock refuses to start over a live lock and clears a stale one.
func (c *Controller) checkLock() error {
	pid, stale, err := c.lock.Stale()
	switch {
	case err != nil:
		return err
	case stale:
		c.log.Info("removing stale pid file", "pidfile", c.lock.Path(), "pid", pid)
		return c.lock.Delete()
	case pid == 0, pid == c.pid:
		return nil
	}
	return fmt.Errorf("%w with pid %d (pid file %s)", ErrAlreadyRunning, pid, c.lock.Path())
}

func (c *Controller) watch(ctx context.Context, sigCh <-chan os.Signal) {
	select {
	case sig := <-sigCh:
		c.log.Info("received signal, shutting down", "signal", sig.String())
		_ = c.Shutdown()
	case <-ctx.Done():
		c.log.Debug("context done, shutting down")
		_ = c.Shutdown()
	case <-c.done:
	}
}

// Shutdown stops the server and removes the lock this controller wrote. It
// runs once; later calls return the first result.
func (c *Controller) Shutdown() error {
	c.shutdownOnce.Do(func() {
		c.mu.Lock()
		c.state = StateStopping
		srv, wrote, sigCh := c.server, c.wroteLock, c.sigCh
		c.mu.Unlock()

		if sigCh != nil {
			signal.Stop(sigCh)
		}

		var errs []error
		if srv != nil {
			if err := srv.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("server shutdown: %w", err))
			}
		}
		if wrote {
			if err := c.lock.Delete(); err != nil {
				errs = append(errs, err)
			}
		}

		c.setState(StateStopped)
		c.shutdownErr = errors.Join(errs...)
		close(c.done)
		c.log.Info("mb stopped")
	})
	return c.shutdownErr
}

// Wait blocks until Shutdown completes and returns its result.
func (c *Controller) Wait() error {
	<-c.done
	return c.shutdownErr
}

// Done is closed when Shutdown completes.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Run starts the server and blocks until it shuts down.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	return c.Wait()
}

// Stop asks the server holding the lock to shut down and waits for the lock
// to disappear. A missing lock is success. A stale or unreadable lock is
// removed. If the lock is still there after the stop timeout it is deleted
// and Stop succeeds.
func (c *Controller) Stop(ctx context.Context) error {
	pid, stale, err := c.lock.Stale()
	switch {
	case err != nil:
		return err
	case stale:
		c.log.Info("removing stale pid file", "pidfile", c.lock.Path(), "pid", pid)
		return c.lock.Delete()
	case pid == 0:
		c.log.Debug("no pid file, nothing to stop", "pidfile", c.lock.Path())
		return nil
	}

	c.log.Debug("sending termination request", "pid", pid, "signal", pidfile.TerminateSignalName())
	if err := c.terminate(pid); err != nil {
		if errors.Is(err, pidfile.ErrProcessGone) {
			return c.lock.Delete()
		}
		return fmt.Errorf("failed to stop process %d: %w", pid, err)
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(c.stopTimeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !c.lock.Exists() {
				c.log.Info("mb stopped", "pid", pid)
				return nil
			}
			if !c.processRunning(pid) {
				c.log.Debug("process exited without removing its pid file", "pid", pid)
				return c.lock.Delete()
			}
		case <-deadline.C:
			c.log.Warn("server did not remove its pid file in time, removing it",
				"pid", pid,
				"timeout", c.stopTimeout,
			)
			return c.lock.Delete()
		}
	}
}

// Restart stops any running server and starts a new one. The new server is
// not started while the lock exists.
func (c *Controller) Restart(ctx context.Context) error {
	if err := c.Stop(ctx); err != nil {
		return err
	}
	if c.lock.Exists() {
		return fmt.Errorf("pid file %s still present after stop", c.lock.Path())
	}
	return c.Start(ctx)
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// isDone reports whether Shutdown already ran. Callers hold c.mu.
func (c *Controller) isDone() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
