// Package supervisor owns process lifecycle for both the arbitrage bot
// and the copy-trading bot: validating configuration before anything
// connects, fanning a startup readiness probe out across every
// dependency, running the long-lived tasks concurrently, and tearing
// everything down within a bounded grace period on SIGINT/SIGTERM.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// forceShutdownGrace bounds how long Run waits for tasks to notice a
// cancelled context before giving up on them and returning anyway.
const forceShutdownGrace = 2 * time.Second

// CheckFunc performs one system readiness probe.
type CheckFunc func(ctx context.Context) error

// Supervisor registers startup checks and long-lived tasks, then runs
// them with coordinated shutdown.
type Supervisor struct {
	log zerolog.Logger

	mu      sync.RWMutex
	checks  map[string]CheckFunc
	order   []string
	running bool
}

// New builds a Supervisor that logs through log.
func New(log zerolog.Logger) *Supervisor {
	return &Supervisor{log: log, checks: make(map[string]CheckFunc)}
}

// RegisterCheck adds a named readiness probe to the startup system
// check. Registration order only affects logging; checks always run
// concurrently.
func (s *Supervisor) RegisterCheck(name string, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.checks[name]; !exists {
		s.order = append(s.order, name)
	}
	s.checks[name] = fn
}

// RunChecks fans every registered check out onto its own goroutine and
// waits for all of them. It returns a joined error naming every check
// that failed; callers treat any failure as a reason not to start
// trading.
func (s *Supervisor) RunChecks(ctx context.Context) error {
	s.mu.RLock()
	names := make([]string, len(s.order))
	copy(names, s.order)
	checks := make(map[string]CheckFunc, len(s.checks))
	for k, v := range s.checks {
		checks[k] = v
	}
	s.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		fn := checks[name]
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				s.log.Warn().Err(err).Str("check", name).Msg("system check failed")
				return fmt.Errorf("%s: %w", name, err)
			}
			s.log.Info().Str("check", name).Msg("system check passed")
			return nil
		})
	}
	return g.Wait()
}

// IsRunning reports whether Run's task group is currently active.
func (s *Supervisor) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Run starts every task concurrently and blocks until one fails, the
// parent context is cancelled, or SIGINT/SIGTERM arrives. On signal,
// every task's context is cancelled immediately; tasks get
// forceShutdownGrace to return before Run gives up waiting on them.
func (s *Supervisor) Run(ctx context.Context, tasks ...func(context.Context) error) error {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		g.Go(func() error { return task(gctx) })
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return unwrapCancel(err)
	case sig := <-sigCh:
		s.log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		cancel()
		select {
		case err := <-done:
			return unwrapCancel(err)
		case <-time.After(forceShutdownGrace):
			s.log.Warn().Msg("shutdown grace period elapsed, forcing exit")
			return nil
		}
	}
}

func unwrapCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
