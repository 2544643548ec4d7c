package domain

import "time"

// Credential mirrors the persisted representation in the credentials table.
type Credential struct {
	ID               string
	Email            string
	PasswordHash     string
	PasswordAlgo     string
	Roles            []string
	FailedLoginCount int
	LockoutUntil     *time.Time
	CreatedAt        time.Time
	LastLogin        *time.Time
}

// IsLockedOut reports whether the credential is inside an active lockout window.
func (c Credential) IsLockedOut(at time.Time) bool {
	return c.LockoutUntil != nil && c.LockoutUntil.After(at)
}

// HasRole reports whether the credential carries the named role.
func (c Credential) HasRole(name string) bool {
	for _, role := range c.Roles {
		if role == name {
			return true
		}
	}
	return false
}

// LockoutState captures the outcome of recording a failed login attempt.
type LockoutState struct {
	FailedLoginCount int
	LockoutUntil     *time.Time
}

// Locked reports whether the state represents an active lockout at the given time.
func (s LockoutState) Locked(at time.Time) bool {
	return s.LockoutUntil != nil && s.LockoutUntil.After(at)
}
