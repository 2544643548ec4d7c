package port

import (
	"context"
	"time"
)

// LoginAttemptStore keeps a sliding window of login attempts per client IP.
// It backs the pre-authentication throttle that sits in front of the
// per-credential lockout.
type LoginAttemptStore interface {
	// RecordAttempt appends an attempt at the given instant.
	RecordAttempt(ctx context.Context, clientIP string, at time.Time) error

	// PruneBefore drops attempts older than cutoff.
	PruneBefore(ctx context.Context, clientIP string, cutoff time.Time) error

	// AttemptsSince reports how many attempts remain at or after cutoff and
	// the instant of the oldest one. oldest is the zero time when count is 0.
	AttemptsSince(ctx context.Context, clientIP string, cutoff time.Time) (count int, oldest time.Time, err error)
}
