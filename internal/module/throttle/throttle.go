// Package throttle gates repeated attempts at sensitive operations with a
// fixed-window counter per caller-supplied key.
package throttle

import (
	"context"
	"time"
)

// Decision is the outcome of a rate limit attempt.
type Decision struct {
	Allowed   bool          `json:"allowed"`
	Remaining int           `json:"remaining"`
	// RetryAfter reports the full window length on denial, not the time
	// remaining in the current window. Callers surface it as a retry hint.
	RetryAfter time.Duration `json:"retry_after"`
}

// Store is a keyed fixed-window counter. The in-memory implementation is
// correct only for a single process; horizontally scaled deployments must
// use the Redis-backed store so all instances share one window.
type Store interface {
	// Attempt records one attempt for key and reports whether it is allowed
	// under the given limit and window.
	Attempt(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// Limiter binds a store to one endpoint class's limit and window.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

// New creates a limiter allowing limit attempts per window.
func New(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window}
}

// Attempt records one attempt for key.
func (l *Limiter) Attempt(ctx context.Context, key string) (Decision, error) {
	return l.store.Attempt(ctx, key, l.limit, l.window)
}

// Limit returns the configured attempt limit.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Preset endpoint classes.

// GeneralAPI limits general endpoints to 100 requests per 15 minutes,
// typically keyed by client IP.
func GeneralAPI(store Store) *Limiter {
	return New(store, 100, 15*time.Minute)
}

// AuthEndpoints limits authentication endpoints to 5 attempts per 15
// minutes, typically keyed by (IP, email).
func AuthEndpoints(store Store) *Limiter {
	return New(store, 5, 15*time.Minute)
}

// PasswordReset limits password reset requests to 3 per hour.
func PasswordReset(store Store) *Limiter {
	return New(store, 3, time.Hour)
}
