package lock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryLockerMutualExclusion(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	release, err := l.Acquire(ctx, "ABC-1", time.Minute)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if _, err := l.Acquire(ctx, "ABC-1", time.Minute); !errors.Is(err, ErrHeld) {
		t.Fatalf("second Acquire: got %v want ErrHeld", err)
	}

	// A different key is unaffected.
	otherRelease, err := l.Acquire(ctx, "ABC-2", time.Minute)
	if err != nil {
		t.Fatalf("Acquire other key: %v", err)
	}
	otherRelease()

	release()
	release2, err := l.Acquire(ctx, "ABC-1", time.Minute)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	release2()
}

func TestMemoryLockerLeaseExpires(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	if _, err := l.Acquire(ctx, "ABC-1", 10*time.Millisecond); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	release, err := l.Acquire(ctx, "ABC-1", time.Minute)
	if err != nil {
		t.Fatalf("Acquire after expiry: %v", err)
	}
	release()
}

func TestMemoryLockerStaleReleaseKeepsNewLease(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	staleRelease, err := l.Acquire(ctx, "ABC-1", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := l.Acquire(ctx, "ABC-1", time.Minute); err != nil {
		t.Fatalf("re-Acquire: %v", err)
	}

	// Releasing the expired lease must not free the new holder's lease.
	staleRelease()
	if _, err := l.Acquire(ctx, "ABC-1", time.Minute); !errors.Is(err, ErrHeld) {
		t.Fatalf("Acquire after stale release: got %v want ErrHeld", err)
	}
}
