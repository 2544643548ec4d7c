package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/core/port"
	"github.com/arklim/project-planner/internal/infra/security"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

func newTestTokenManager(t *testing.T) *security.TokenManager {
	t.Helper()
	manager, err := security.NewTokenManager(security.TokenManagerOptions{
		Key:      testSigningKey,
		Issuer:   "project-planner",
		Audience: "project-planner-clients",
		TTL:      time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	return manager
}

func newTestAuthService(t *testing.T, store *mockCredentialStore, publisher *recordingPublisher) *AuthService {
	t.Helper()

	// A typed nil pointer stored in the interface would slip past the
	// service's publisher guard, so leave the interface truly nil.
	var events port.EventPublisher
	if publisher != nil {
		events = publisher
	}

	service, err := NewAuthService(
		store,
		&fakeHasher{},
		newTestTokenManager(t),
		events,
		LockoutPolicy{Threshold: 3, Cooldown: 5 * time.Minute},
		0,
		nil,
	)
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}
	return service
}

func seedCredential(t *testing.T, store *mockCredentialStore, email, password string, roles ...string) domain.Credential {
	t.Helper()
	credential := domain.Credential{
		ID:           "cred-" + email,
		Email:        email,
		PasswordHash: "hashed:" + password,
		PasswordAlgo: "argon2id",
		Roles:        roles,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.Create(context.Background(), credential); err != nil {
		t.Fatalf("seed credential failed: %v", err)
	}
	return credential
}

func TestAuthenticateSuccess(t *testing.T) {
	store := newMockCredentialStore()
	publisher := &recordingPublisher{}
	service := newTestAuthService(t, store, publisher)
	seedCredential(t, store, "alice@example.com", "open sesame", domain.RoleMember)

	token, credential, err := service.Authenticate(context.Background(), "Alice@Example.com", "open sesame", "203.0.113.7")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}
	if credential.PasswordHash != "" {
		t.Fatal("expected password hash to be stripped")
	}
	if credential.LastLogin == nil {
		t.Fatal("expected last login to be stamped")
	}

	claims, err := service.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken failed: %v", err)
	}
	if claims.Subject != credential.ID {
		t.Fatalf("expected sub %q, got %q", credential.ID, claims.Subject)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("unexpected email claim: %q", claims.Email)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != domain.RoleMember {
		t.Fatalf("unexpected roles claim: %v", claims.Roles)
	}

	if len(publisher.succeeded) != 1 {
		t.Fatalf("expected 1 login succeeded event, got %d", len(publisher.succeeded))
	}
}

func TestAuthenticateUnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	store := newMockCredentialStore()
	service := newTestAuthService(t, store, nil)
	seedCredential(t, store, "bob@example.com", "real password", domain.RoleMember)

	_, _, unknownErr := service.Authenticate(context.Background(), "ghost@example.com", "whatever", "")
	_, _, wrongErr := service.Authenticate(context.Background(), "bob@example.com", "not the password", "")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("error messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestAuthenticateLockoutAfterThreshold(t *testing.T) {
	store := newMockCredentialStore()
	publisher := &recordingPublisher{}
	service := newTestAuthService(t, store, publisher)
	seedCredential(t, store, "carol@example.com", "real password", domain.RoleMember)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, _, err := service.Authenticate(ctx, "carol@example.com", "bad guess", "")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Third failure crosses the threshold.
	_, _, err := service.Authenticate(ctx, "carol@example.com", "bad guess", "")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked on threshold, got %v", err)
	}
	if len(publisher.locked) != 1 {
		t.Fatalf("expected 1 account locked event, got %d", len(publisher.locked))
	}

	// Even the correct password is rejected while locked.
	_, _, err = service.Authenticate(ctx, "carol@example.com", "real password", "")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked during window, got %v", err)
	}

	// A locked attempt must not extend the window or record another failure.
	if len(publisher.failed) != 3 {
		t.Fatalf("expected 3 login failed events, got %d", len(publisher.failed))
	}
}

func TestAuthenticateLockoutExpires(t *testing.T) {
	store := newMockCredentialStore()
	service := newTestAuthService(t, store, nil)
	seedCredential(t, store, "dave@example.com", "real password", domain.RoleMember)

	base := time.Now().UTC()
	current := base
	service.WithClock(func() time.Time { return current })

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		service.Authenticate(ctx, "dave@example.com", "bad guess", "")
	}

	_, _, err := service.Authenticate(ctx, "dave@example.com", "real password", "")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}

	current = base.Add(6 * time.Minute)
	token, _, err := service.Authenticate(ctx, "dave@example.com", "real password", "")
	if err != nil {
		t.Fatalf("expected login after cooldown, got %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token after cooldown")
	}

	stored, _ := store.GetByEmail(ctx, "dave@example.com")
	if stored.FailedLoginCount != 0 || stored.LockoutUntil != nil {
		t.Fatalf("expected lockout reset, got count=%d until=%v", stored.FailedLoginCount, stored.LockoutUntil)
	}
}

func TestAuthenticateWithoutPublisherStillRecordsFailures(t *testing.T) {
	store := newMockCredentialStore()
	service := newTestAuthService(t, store, nil)
	credential := seedCredential(t, store, "frank@example.com", "real password", domain.RoleMember)

	_, _, err := service.Authenticate(context.Background(), "frank@example.com", "bad guess", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	stored, _ := store.GetByID(context.Background(), credential.ID)
	if stored.FailedLoginCount != 1 {
		t.Fatalf("expected 1 recorded failure, got %d", stored.FailedLoginCount)
	}
}

func TestAuthenticateConcurrentFailuresAllCounted(t *testing.T) {
	const attempts = 8

	store := newMockCredentialStore()
	publisher := &recordingPublisher{}

	// Threshold equals the attempt count so the lockout short-circuit cannot
	// swallow attempts mid-flight; every goroutine must reach the store.
	service, err := NewAuthService(
		store,
		&fakeHasher{},
		newTestTokenManager(t),
		publisher,
		LockoutPolicy{Threshold: attempts, Cooldown: 5 * time.Minute},
		0,
		nil,
	)
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}
	credential := seedCredential(t, store, "grace@example.com", "real password", domain.RoleMember)

	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			service.Authenticate(context.Background(), "grace@example.com", "bad guess", "")
		}()
	}
	wg.Wait()

	stored, err := store.GetByID(context.Background(), credential.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.FailedLoginCount != attempts {
		t.Fatalf("expected every concurrent failure counted, got %d of %d", stored.FailedLoginCount, attempts)
	}
	if stored.LockoutUntil == nil {
		t.Fatal("expected lockout after crossing the threshold")
	}
}

func TestAuthenticateStoreFailureIsNotInvalidCredentials(t *testing.T) {
	store := newMockCredentialStore()
	service := newTestAuthService(t, store, nil)
	store.failGet = context.DeadlineExceeded

	_, _, err := service.Authenticate(context.Background(), "erin@example.com", "whatever", "")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("store failure must not be reported as invalid credentials")
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	store := newMockCredentialStore()
	service := newTestAuthService(t, store, nil)

	if _, err := service.ParseAccessToken("not.a.token"); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken, got %v", err)
	}
}
