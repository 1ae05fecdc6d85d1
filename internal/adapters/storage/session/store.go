package session

import (
	"context"
	"errors"
	"time"

	domain "checkin/internal/domain/session"
)

// ErrNotFound is returned by Get for an unknown or expired token.
var ErrNotFound = errors.New("session not found")

// Store persists logged-in sessions.
type Store interface {
	Get(ctx context.Context, token string) (domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Option configures a Store implementation.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithNow sets the clock Get uses to decide expiry. It should be the
// same clock that stamps CreatedAt on new sessions.
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}
