package port

import (
	"context"

	"github.com/arklim/project-planner/internal/core/domain"
)

// EventPublisher emits authentication lifecycle events to downstream consumers.
type EventPublisher interface {
	PublishCredentialRegistered(ctx context.Context, event domain.CredentialRegisteredEvent) error
	PublishLoginSucceeded(ctx context.Context, event domain.LoginSucceededEvent) error
	PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error
	PublishAccountLocked(ctx context.Context, event domain.AccountLockedEvent) error
}
