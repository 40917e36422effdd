package web

import (
	"context"
	"testing"
	"time"
)

func TestInFlightTracker_Counts(t *testing.T) {
	tr := &inFlightTracker{}
	tr.Increment()
	tr.Increment()
	tr.Decrement()
	if got := tr.Count(); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestWaitForZero_ReturnsWhenDrained(t *testing.T) {
	tr := &inFlightTracker{}
	tr.Increment()

	go func() {
		time.Sleep(20 * time.Millisecond)
		tr.Decrement()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tr.WaitForZero(ctx, 5*time.Millisecond); err != nil {
		t.Errorf("WaitForZero: %v", err)
	}
}

func TestWaitForZero_ContextCancel(t *testing.T) {
	tr := &inFlightTracker{}
	tr.Increment()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := tr.WaitForZero(ctx, 5*time.Millisecond); err == nil {
		t.Error("expected context error while requests in flight")
	}
}
