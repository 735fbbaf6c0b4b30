package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

func TestBreaker_OpensAfterFailureThreshold(t *testing.T) {
	cb := New(Config{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Hour})

	if err := cb.Allow(); err != nil {
		t.Fatalf("closed breaker must allow: %v", err)
	}
	cb.MarkFailure()
	if err := cb.Allow(); err != nil {
		t.Fatalf("one failure must not trip: %v", err)
	}
	cb.MarkFailure()
	if err := cb.Allow(); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Hour})

	cb.MarkFailure()
	cb.MarkSuccess()
	cb.MarkFailure()
	if err := cb.Allow(); err != nil {
		t.Fatalf("failure count should have been reset: %v", err)
	}
}

func TestBreaker_HalfOpenClosesAfterSuccesses(t *testing.T) {
	cb := New(Config{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: 10 * time.Millisecond})

	cb.MarkFailure()
	if err := cb.Allow(); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected open, got %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if err := cb.Allow(); err != nil {
		t.Fatalf("expected half-open to allow a probe: %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("expected half-open, got %v", cb.State())
	}

	cb.MarkSuccess()
	if cb.State() != StateHalfOpen {
		t.Fatalf("one success must not close yet, got %v", cb.State())
	}
	cb.MarkSuccess()
	if cb.State() != StateClosed {
		t.Fatalf("expected closed after success threshold, got %v", cb.State())
	}
}
