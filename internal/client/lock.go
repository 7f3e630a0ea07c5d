package client

import (
	"context"
	"time"
)

// DefaultReauthTimeout bounds how long a caller waits for another
// reauthentication in progress.
const DefaultReauthTimeout = 5 * time.Second

// ReauthLock serializes reauthentication within one client instance.
// It is process-local.
type ReauthLock struct {
	sem     chan struct{}
	timeout time.Duration
}

func NewReauthLock(timeout time.Duration) *ReauthLock {
	if timeout <= 0 {
		timeout = DefaultReauthTimeout
	}
	return &ReauthLock{sem: make(chan struct{}, 1), timeout: timeout}
}

// Acquire waits for the lock. When the wait times out or ctx ends first the
// caller proceeds without it: acquired is false and release does nothing.
func (l *ReauthLock) Acquire(ctx context.Context) (release func(), acquired bool) {
	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, true
	case <-timer.C:
	case <-ctx.Done():
	}
	return func() {}, false
}
