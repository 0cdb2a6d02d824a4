package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fastProfile keeps test runtime negligible.
func fastProfile(attempts uint64) Profile {
	return Profile{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsedTime:  time.Second,
		MaxAttempts:     attempts,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastProfile(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls got %d", calls)
	}
}

func TestDo_StopsAtAttemptBudget(t *testing.T) {
	sentinel := errors.New("still broken")
	calls := 0
	err := Do(context.Background(), fastProfile(3), func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls got %d", calls)
	}
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	sentinel := errors.New("not found")
	calls := 0
	err := Do(context.Background(), fastProfile(5), func() error {
		calls++
		return Permanent(sentinel)
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call got %d", calls)
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastProfile(100), func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if calls > 2 {
		t.Fatalf("expected the loop to stop promptly, got %d calls", calls)
	}
}

func TestProfiles(t *testing.T) {
	store := Store()
	if store.MaxAttempts != 3 {
		t.Fatalf("store profile should allow 3 attempts, got %d", store.MaxAttempts)
	}
	gen := Generation()
	if gen.MaxAttempts != 2 {
		t.Fatalf("generation profile should allow 2 attempts, got %d", gen.MaxAttempts)
	}
	if gen.InitialInterval <= 0 || store.InitialInterval <= 0 {
		t.Fatal("profiles must back off between attempts")
	}
}
