package domain

import "time"

// CredentialRegisteredEvent is emitted after a credential record is persisted.
type CredentialRegisteredEvent struct {
	EventID      string
	CredentialID string
	Email        string
	Roles        []string
	RegisteredAt time.Time
}

// LoginSucceededEvent is emitted when authentication completes and a token is issued.
type LoginSucceededEvent struct {
	EventID      string
	CredentialID string
	Email        string
	IP           string
	OccurredAt   time.Time
}

// LoginFailedEvent is emitted for each failed authentication attempt.
type LoginFailedEvent struct {
	EventID     string
	Email       string
	IP          string
	FailedCount int
	OccurredAt  time.Time
}

// AccountLockedEvent is emitted when repeated failures push a credential into lockout.
type AccountLockedEvent struct {
	EventID      string
	CredentialID string
	Email        string
	LockedUntil  time.Time
	OccurredAt   time.Time
}
