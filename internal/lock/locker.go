// Package lock provides a short-lived mutual-exclusion lease keyed by ticket
// identity, so concurrent deliveries for the same ticket cannot both create a
// plan document.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrHeld is returned when another holder owns the lease for the key.
var ErrHeld = errors.New("lock: already held")

// Locker grants a lease on a key. The returned release function frees the
// lease; it is safe to call even after the lease expired.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// MemoryLocker is a process-local Locker for dev mode and tests.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{leases: make(map[string]time.Time)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if exp, ok := l.leases[key]; ok && time.Now().Before(exp) {
		return nil, ErrHeld
	}
	expiry := time.Now().Add(ttl)
	l.leases[key] = expiry

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.leases[key]; ok && cur.Equal(expiry) {
			delete(l.leases, key)
		}
	}
	return release, nil
}

var _ Locker = (*MemoryLocker)(nil)
