package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunChecksAllPass(t *testing.T) {
	s := New(zerolog.Nop())
	s.RegisterCheck("store", func(ctx context.Context) error { return nil })
	s.RegisterCheck("rpc", func(ctx context.Context) error { return nil })

	if err := s.RunChecks(context.Background()); err != nil {
		t.Fatalf("expected all checks to pass, got %v", err)
	}
}

func TestRunChecksReportsFailure(t *testing.T) {
	s := New(zerolog.Nop())
	s.RegisterCheck("store", func(ctx context.Context) error { return nil })
	s.RegisterCheck("rpc", func(ctx context.Context) error { return errors.New("dial tcp: refused") })

	err := s.RunChecks(context.Background())
	if err == nil {
		t.Fatal("expected an error from the failing check")
	}
}

func TestRunExitsWhenTaskReturns(t *testing.T) {
	s := New(zerolog.Nop())
	sentinel := errors.New("task done")

	err := s.Run(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if s.IsRunning() {
		t.Fatal("expected IsRunning false after Run returns")
	}
}

func TestRunExitsCleanlyWhenParentContextCancelled(t *testing.T) {
	s := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(taskCtx context.Context) error {
			<-taskCtx.Done()
			return taskCtx.Err()
		})
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on clean cancellation, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestRegisterCheckOverwritesSameName(t *testing.T) {
	s := New(zerolog.Nop())
	s.RegisterCheck("store", func(ctx context.Context) error { return errors.New("first") })
	s.RegisterCheck("store", func(ctx context.Context) error { return nil })

	if err := s.RunChecks(context.Background()); err != nil {
		t.Fatalf("expected the overwritten check to run, got %v", err)
	}
	if len(s.order) != 1 {
		t.Fatalf("expected one registered check name, got %d", len(s.order))
	}
}
