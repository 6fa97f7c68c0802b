package resourcegate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestGateAcquireReleaseAllowsReuse(t *testing.T) {
	g := NewGate("test", 1, time.Second)
	release, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()

	release2, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	release2()
}

func TestGateAcquireTimesOutWhenSaturated(t *testing.T) {
	g := NewGate("test", 1, 50*time.Millisecond)
	release, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release()

	_, err = g.Acquire(context.Background())
	if err == nil {
		t.Fatal("expected timeout error when gate is saturated")
	}
}

func TestGateReleaseIsIdempotent(t *testing.T) {
	g := NewGate("test", 2, time.Second)
	release, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()
	release() // must not panic or double-release the semaphore
}

func TestRetryDBRetriesTransientErrors(t *testing.T) {
	var attempts int32
	err := RetryDB(context.Background(), func() error {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryDBStopsOnNonTransientError(t *testing.T) {
	var attempts int32
	err := RetryDB(context.Background(), func() error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("syntax error near SELECT")
	})
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt for non-transient error, got %d", attempts)
	}
}

func TestRetryDBGivesUpAfterMaxAttempts(t *testing.T) {
	var attempts int32
	err := RetryDB(context.Background(), func() error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("database is locked")
	})
	if err == nil {
		t.Fatal("expected error after exhausting retry budget")
	}
	if attempts != retryMaxAttempts {
		t.Errorf("expected %d attempts, got %d", retryMaxAttempts, attempts)
	}
}
