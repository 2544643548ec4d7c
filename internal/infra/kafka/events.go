package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/core/port"
	"github.com/arklim/project-planner/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID      string           `json:"event_id"`
	EventType    string           `json:"event_type"`
	CredentialID string           `json:"credential_id,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
	Version      string           `json:"version"`
	Payload      any              `json:"payload"`
	Metadata     envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, credentialID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:      id,
		EventType:    eventType,
		CredentialID: credentialID,
		Timestamp:    ts.UTC(),
		Version:      schemaVersion,
		Payload:      payload,
		Metadata:     metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	return p.producer.Send(ctx, eventType, bytes)
}

// PublishCredentialRegistered publishes auth.credential.registered events.
func (p *EventPublisher) PublishCredentialRegistered(ctx context.Context, event domain.CredentialRegisteredEvent) error {
	payload := struct {
		CredentialID string    `json:"credential_id"`
		Email        string    `json:"email"`
		Roles        []string  `json:"roles"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		CredentialID: event.CredentialID,
		Email:        event.Email,
		Roles:        event.Roles,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.credential.registered", event.CredentialID, event.RegisteredAt, payload)
}

// PublishLoginSucceeded publishes auth.login.succeeded events.
func (p *EventPublisher) PublishLoginSucceeded(ctx context.Context, event domain.LoginSucceededEvent) error {
	payload := struct {
		CredentialID string    `json:"credential_id"`
		Email        string    `json:"email"`
		IP           string    `json:"ip,omitempty"`
		OccurredAt   time.Time `json:"occurred_at"`
	}{
		CredentialID: event.CredentialID,
		Email:        event.Email,
		IP:           event.IP,
		OccurredAt:   event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.login.succeeded", event.CredentialID, event.OccurredAt, payload)
}

// PublishLoginFailed publishes auth.login.failed events.
func (p *EventPublisher) PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error {
	payload := struct {
		Email       string    `json:"email"`
		IP          string    `json:"ip,omitempty"`
		FailedCount int       `json:"failed_count"`
		OccurredAt  time.Time `json:"occurred_at"`
	}{
		Email:       event.Email,
		IP:          event.IP,
		FailedCount: event.FailedCount,
		OccurredAt:  event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.login.failed", "", event.OccurredAt, payload)
}

// PublishAccountLocked publishes auth.account.locked events.
func (p *EventPublisher) PublishAccountLocked(ctx context.Context, event domain.AccountLockedEvent) error {
	payload := struct {
		CredentialID string    `json:"credential_id"`
		Email        string    `json:"email"`
		LockedUntil  time.Time `json:"locked_until"`
		OccurredAt   time.Time `json:"occurred_at"`
	}{
		CredentialID: event.CredentialID,
		Email:        event.Email,
		LockedUntil:  event.LockedUntil.UTC(),
		OccurredAt:   event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.account.locked", event.CredentialID, event.OccurredAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
