package security

import (
	"errors"
	"testing"
	"time"

	"github.com/arklim/project-planner/internal/core/domain"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T, opts TokenManagerOptions) *TokenManager {
	t.Helper()
	if opts.Key == "" {
		opts.Key = testKey
	}
	if opts.Issuer == "" {
		opts.Issuer = "project-planner"
	}
	if opts.Audience == "" {
		opts.Audience = "project-planner-clients"
	}

	manager, err := NewTokenManager(opts)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	return manager
}

func TestNewTokenManagerRejectsShortKey(t *testing.T) {
	_, err := NewTokenManager(TokenManagerOptions{
		Key:      "too-short",
		Issuer:   "project-planner",
		Audience: "project-planner-clients",
	})
	if !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("expected ErrSigningKeyTooShort, got %v", err)
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	manager := newTestManager(t, TokenManagerOptions{TTL: time.Hour})

	token, err := manager.Issue(domain.Credential{
		ID:    "cred-42",
		Email: "user@example.com",
		Roles: []string{domain.RoleMember, domain.RoleMember, " "},
	})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.Subject != "cred-42" {
		t.Errorf("expected subject cred-42, got %q", claims.Subject)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("expected email claim, got %q", claims.Email)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != domain.RoleMember {
		t.Errorf("expected deduplicated roles, got %v", claims.Roles)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	manager := newTestManager(t, TokenManagerOptions{TTL: 5 * time.Minute})
	manager.WithClock(func() time.Time { return base })

	token, err := manager.Issue(domain.Credential{ID: "cred-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Within the leeway window the token is still accepted.
	manager.WithClock(func() time.Time { return base.Add(5*time.Minute + 30*time.Second) })
	if _, err := manager.Parse(token); err != nil {
		t.Fatalf("expected token valid inside leeway, got %v", err)
	}

	manager.WithClock(func() time.Time { return base.Add(10 * time.Minute) })
	if _, err := manager.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	issuerManager := newTestManager(t, TokenManagerOptions{})
	otherManager := newTestManager(t, TokenManagerOptions{Key: "ffffffffffffffffffffffffffffffff"})

	token, err := issuerManager.Issue(domain.Credential{ID: "cred-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := otherManager.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong key, got %v", err)
	}
}

func TestParseRejectsWrongIssuerAndAudience(t *testing.T) {
	issuerManager := newTestManager(t, TokenManagerOptions{Issuer: "other-service"})
	audienceManager := newTestManager(t, TokenManagerOptions{Audience: "other-clients"})
	manager := newTestManager(t, TokenManagerOptions{})

	fromOtherIssuer, err := issuerManager.Issue(domain.Credential{ID: "cred-1"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := manager.Parse(fromOtherIssuer); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong issuer, got %v", err)
	}

	forOtherAudience, err := audienceManager.Issue(domain.Credential{ID: "cred-1"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := manager.Parse(forOtherAudience); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong audience, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	manager := newTestManager(t, TokenManagerOptions{})

	for _, token := range []string{"", "   ", "not.a.token", "a.b"} {
		if _, err := manager.Parse(token); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Parse(%q): expected ErrTokenInvalid, got %v", token, err)
		}
	}
}

func TestIssueRequiresCredentialID(t *testing.T) {
	manager := newTestManager(t, TokenManagerOptions{})

	if _, err := manager.Issue(domain.Credential{Email: "a@example.com"}); err == nil {
		t.Fatal("expected error for missing credential id")
	}
}
