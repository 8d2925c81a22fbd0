// Package shutdown coordinates graceful termination of the CLI. SIGINT and
// SIGTERM cancel the root context; registered cleanups then run in reverse
// order within a grace period.
package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/home-assistant-blueprints/ha-history-go/internal/logging"
)

// DefaultGracePeriod is the default time allowed for cleanup operations.
const DefaultGracePeriod = 5 * time.Second

// Coordinator owns the root context of a command run.
type Coordinator struct {
	mu sync.RWMutex

	cancel context.CancelFunc

	gracePeriod  time.Duration
	cleanupFuncs []CleanupFunc

	shutdownOnce   sync.Once
	shutdownChan   chan struct{}
	doneChan       chan struct{}
	shutdownReason string

	onShutdown       func(reason string)
	onCleanupTimeout func()

	// exit is os.Exit outside tests.
	exit func(code int)
}

// CleanupFunc is a named cleanup step. Func receives a context that expires
// with the grace period.
type CleanupFunc struct {
	Name string
	Func func(ctx context.Context) error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithGracePeriod sets the time allowed for cleanup before giving up.
func WithGracePeriod(d time.Duration) Option {
	return func(c *Coordinator) {
		c.gracePeriod = d
	}
}

// WithOnShutdown sets a callback for when shutdown is initiated.
func WithOnShutdown(fn func(reason string)) Option {
	return func(c *Coordinator) {
		c.onShutdown = fn
	}
}

// WithOnCleanupTimeout sets a callback for when cleanup times out.
func WithOnCleanupTimeout(fn func()) Option {
	return func(c *Coordinator) {
		c.onCleanupTimeout = fn
	}
}

// New creates a Coordinator whose context derives from parent.
func New(parent context.Context, opts ...Option) (*Coordinator, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	c := &Coordinator{
		cancel:       cancel,
		gracePeriod:  DefaultGracePeriod,
		shutdownChan: make(chan struct{}),
		doneChan:     make(chan struct{}),
		exit:         os.Exit,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, ctx
}

// RegisterCleanup adds a cleanup step. Steps run last registered first.
func (c *Coordinator) RegisterCleanup(name string, fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, CleanupFunc{Name: name, Func: fn})
}

// HandleSignals shuts down on the first SIGINT or SIGTERM and exits with
// status 130 on the second. The returned function stops signal handling.
func (c *Coordinator) HandleSignals() (stop func()) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	quit := make(chan struct{})

	go func() {
		select {
		case sig := <-sigChan:
			c.Shutdown(fmt.Sprintf("received signal %v", sig))
		case <-quit:
			return
		}
		select {
		case <-sigChan:
			logging.Warn().Msg("second signal, exiting immediately")
			c.exit(130)
		case <-quit:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(quit)
		})
	}
}

// Shutdown cancels the context and runs the cleanups. Only the first call
// has an effect; later calls return at once.
func (c *Coordinator) Shutdown(reason string) {
	c.shutdownOnce.Do(func() {
		c.mu.Lock()
		c.shutdownReason = reason
		cleanups := make([]CleanupFunc, len(c.cleanupFuncs))
		copy(cleanups, c.cleanupFuncs)
		c.mu.Unlock()

		close(c.shutdownChan)
		logging.Debug().Str("reason", reason).Int("cleanups", len(cleanups)).Msg("shutting down")

		if c.onShutdown != nil {
			c.onShutdown(reason)
		}

		c.cancel()
		c.runCleanups(cleanups)
		close(c.doneChan)
	})
}

func (c *Coordinator) runCleanups(cleanups []CleanupFunc) {
	if len(cleanups) == 0 {
		return
	}

	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), c.gracePeriod)
	defer cleanupCancel()

	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanup := cleanups[i]
			if err := cleanup.Func(cleanupCtx); err != nil {
				logging.Warn().Err(err).Str("cleanup", cleanup.Name).Msg("cleanup failed")
			}
		}
	}()

	select {
	case <-done:
	case <-cleanupCtx.Done():
		logging.Debug().Dur("grace_period", c.gracePeriod).Msg("cleanup timed out")
		if c.onCleanupTimeout != nil {
			c.onCleanupTimeout()
		}
	}
}

// IsShuttingDown returns true if shutdown has been initiated.
func (c *Coordinator) IsShuttingDown() bool {
	select {
	case <-c.shutdownChan:
		return true
	default:
		return false
	}
}

// Wait blocks until the cleanups of a started shutdown have finished or timed out.
func (c *Coordinator) Wait() {
	<-c.doneChan
}

// ShutdownReason returns the reason for shutdown, or empty string if not shut down.
func (c *Coordinator) ShutdownReason() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.shutdownReason
}
