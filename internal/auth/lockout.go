package auth

import (
	"sync"
	"time"
)

// Lockout defaults.
const (
	MaxLoginAttempts = 5
	LockoutDuration  = 30 * time.Minute
)

// Lockout tracks failed login attempts per username and blocks further
// attempts once the limit is hit. State is in-memory only; a restart
// clears it.
type Lockout struct {
	mu       sync.Mutex
	now      func() time.Time
	attempts map[string]*attemptRecord
}

type attemptRecord struct {
	count       int
	lockedUntil time.Time
}

// NewLockout creates a lockout tracker.
func NewLockout() *Lockout {
	return &Lockout{
		now:      time.Now,
		attempts: make(map[string]*attemptRecord),
	}
}

// Locked reports whether the username is currently blocked, and for how
// much longer.
func (l *Lockout) Locked(username string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[username]
	if !ok {
		return false, 0
	}
	remaining := rec.lockedUntil.Sub(l.now())
	if remaining <= 0 {
		if !rec.lockedUntil.IsZero() {
			delete(l.attempts, username)
		}
		return false, 0
	}
	return true, remaining
}

// Fail records a failed attempt and returns true when it triggered a
// lockout.
func (l *Lockout) Fail(username string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[username]
	if !ok {
		rec = &attemptRecord{}
		l.attempts[username] = rec
	}
	rec.count++
	if rec.count >= MaxLoginAttempts {
		rec.lockedUntil = l.now().Add(LockoutDuration)
		return true
	}
	return false
}

// Reset clears the attempt record after a successful login.
func (l *Lockout) Reset(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, username)
}
