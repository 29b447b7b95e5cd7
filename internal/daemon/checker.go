package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/strata/internal/logging"
)

// Verifier is anything whose invariants can be checked, normally the engine.
type Verifier interface {
	Verify() error
}

// CheckerConfig holds configuration for the checker.
type CheckerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Checker periodically verifies engine invariants and logs violations.
type Checker struct {
	target Verifier
	logger *slog.Logger

	mu       sync.Mutex
	interval time.Duration
	failures int
	resetCh  chan time.Duration
}

// NewChecker creates a checker for target.
func NewChecker(cfg CheckerConfig, target Verifier) *Checker {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Checker{
		target:   target,
		logger:   logger,
		interval: interval,
		resetCh:  make(chan time.Duration, 1),
	}
}

// Run starts the check loop. Blocks until context is cancelled.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.Interval())
	defer ticker.Stop()

	c.logger.Info("checker started", "interval", c.Interval())

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("checker stopped")
			return
		case d := <-c.resetCh:
			ticker.Reset(d)
			c.logger.Debug("checker interval changed", "interval", d)
		case <-ticker.C:
			c.CheckNow()
		}
	}
}

// CheckNow runs a single verification pass and returns its result.
func (c *Checker) CheckNow() (err error) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("checker panic recovered", "error", r)
		}
	}()

	err = c.target.Verify()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failures++
		c.logger.Error("invariant violation", "error", err, "failures", c.failures)
		return err
	}
	if c.failures > 0 {
		c.logger.Info("invariants restored", "previous_failures", c.failures)
		c.failures = 0
	}
	return nil
}

// Failures returns the number of consecutive failed checks.
func (c *Checker) Failures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures
}

// Interval returns the current check period.
func (c *Checker) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// SetInterval changes the check period of a running loop.
func (c *Checker) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	if d == c.interval {
		c.mu.Unlock()
		return
	}
	c.interval = d
	c.mu.Unlock()

	// Drop a pending reset; the latest interval wins.
	select {
	case <-c.resetCh:
	default:
	}
	select {
	case c.resetCh <- d:
	default:
	}
}
