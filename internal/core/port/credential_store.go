package port

import (
	"context"
	"time"

	"github.com/arklim/project-planner/internal/core/domain"
)

// CredentialStore exposes persistence behavior for credentials.
//
// Lockout bookkeeping must be atomic with respect to concurrent login attempts
// on the same credential: two simultaneous failures must both be counted.
type CredentialStore interface {
	Create(ctx context.Context, credential domain.Credential) error
	GetByID(ctx context.Context, id string) (*domain.Credential, error)
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
	UpdateRoles(ctx context.Context, id string, roles []string) error

	// RecordLoginFailure atomically increments the failure counter and, when it
	// reaches threshold, stamps a lockout window of the given cooldown.
	RecordLoginFailure(ctx context.Context, id string, threshold int, cooldown time.Duration, at time.Time) (domain.LockoutState, error)

	// ResetLockout clears the failure counter and lockout window after a
	// successful login, recording the login time.
	ResetLockout(ctx context.Context, id string, at time.Time) error
}
