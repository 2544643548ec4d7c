package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, credentialID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("credential_id", credentialID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishCredentialRegistered logs auth.credential.registered events.
func (p *StubPublisher) PublishCredentialRegistered(_ context.Context, event domain.CredentialRegisteredEvent) error {
	payload := map[string]any{
		"credential_id": event.CredentialID,
		"email":         event.Email,
		"roles":         event.Roles,
		"registered_at": event.RegisteredAt,
	}
	p.logEvent("auth.credential.registered", event.CredentialID, event.RegisteredAt, payload)
	return nil
}

// PublishLoginSucceeded logs auth.login.succeeded events.
func (p *StubPublisher) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	payload := map[string]any{
		"credential_id": event.CredentialID,
		"email":         event.Email,
		"ip":            event.IP,
		"occurred_at":   event.OccurredAt,
	}
	p.logEvent("auth.login.succeeded", event.CredentialID, event.OccurredAt, payload)
	return nil
}

// PublishLoginFailed logs auth.login.failed events.
func (p *StubPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	payload := map[string]any{
		"email":        event.Email,
		"ip":           event.IP,
		"failed_count": event.FailedCount,
		"occurred_at":  event.OccurredAt,
	}
	p.logEvent("auth.login.failed", "", event.OccurredAt, payload)
	return nil
}

// PublishAccountLocked logs auth.account.locked events.
func (p *StubPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	payload := map[string]any{
		"credential_id": event.CredentialID,
		"email":         event.Email,
		"locked_until":  event.LockedUntil,
		"occurred_at":   event.OccurredAt,
	}
	p.logEvent("auth.account.locked", event.CredentialID, event.OccurredAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
