package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/core/port"
	"github.com/arklim/project-planner/internal/infra/security"
	"github.com/arklim/project-planner/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	// Unknown email and wrong password deliberately share this value.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked indicates repeated failures put the credential inside a lockout window.
	ErrAccountLocked = errors.New("account temporarily locked")
	// ErrStoreUnavailable indicates the credential store did not answer in time.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrInvalidAccessToken indicates the provided access token is malformed or failed verification.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrExpiredAccessToken indicates the provided access token has expired.
	ErrExpiredAccessToken = errors.New("access token expired")
)

// LockoutPolicy bounds repeated failed logins per credential.
type LockoutPolicy struct {
	Threshold int
	Cooldown  time.Duration
}

// AuthService coordinates authentication, lockout bookkeeping, and token issuance.
type AuthService struct {
	credentials  port.CredentialStore
	hasher       port.PasswordHasher
	tokens       *security.TokenManager
	publisher    port.EventPublisher
	logger       *zap.Logger
	lockout      LockoutPolicy
	storeTimeout time.Duration
	dummyHash    string
	now          func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	credentials port.CredentialStore,
	hasher port.PasswordHasher,
	tokens *security.TokenManager,
	publisher port.EventPublisher,
	lockout LockoutPolicy,
	storeTimeout time.Duration,
	logger *zap.Logger,
) (*AuthService, error) {
	if credentials == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token manager is required")
	}
	if lockout.Threshold <= 0 {
		lockout.Threshold = 5
	}
	if lockout.Cooldown <= 0 {
		lockout.Cooldown = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Hashing a throwaway value once gives Authenticate a real hash to verify
	// against when the email is unknown, keeping response times comparable.
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthService{
		credentials:  credentials,
		hasher:       hasher,
		tokens:       tokens,
		publisher:    publisher,
		logger:       logger,
		lockout:      lockout,
		storeTimeout: storeTimeout,
		dummyHash:    dummyHash,
		now:          time.Now,
	}, nil
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// Authenticate validates the email/password pair and issues an access token.
// clientIP is carried into lifecycle events only; it plays no part in the decision.
func (s *AuthService) Authenticate(ctx context.Context, email, password, clientIP string) (string, domain.Credential, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := s.now().UTC()

	if email == "" || password == "" {
		s.verifyDummy(password)
		return "", domain.Credential{}, ErrInvalidCredentials
	}

	credential, err := s.getByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.verifyDummy(password)
			s.publishLoginFailed(ctx, email, clientIP, 0, now)
			return "", domain.Credential{}, ErrInvalidCredentials
		}
		return "", domain.Credential{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// An active lockout rejects the attempt outright; it neither counts as a
	// new failure nor extends the window.
	if credential.IsLockedOut(now) {
		return "", domain.Credential{}, ErrAccountLocked
	}

	ok, err := s.hasher.Verify(password, credential.PasswordHash)
	if err != nil {
		return "", domain.Credential{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", domain.Credential{}, s.recordFailure(ctx, *credential, clientIP, now)
	}

	if err := s.resetLockout(ctx, credential.ID, now); err != nil {
		return "", domain.Credential{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	token, err := s.tokens.Issue(*credential)
	if err != nil {
		return "", domain.Credential{}, fmt.Errorf("issue token: %w", err)
	}

	s.publishLoginSucceeded(ctx, *credential, clientIP, now)

	sanitized := *credential
	sanitized.PasswordHash = ""
	sanitized.FailedLoginCount = 0
	sanitized.LockoutUntil = nil
	sanitized.LastLogin = &now

	return token, sanitized, nil
}

// TokenTTL reports the configured access token lifetime.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// ParseAccessToken validates the bearer token and returns its claims.
func (s *AuthService) ParseAccessToken(token string) (*security.AccessTokenClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, ErrExpiredAccessToken
		}
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

func (s *AuthService) recordFailure(ctx context.Context, credential domain.Credential, clientIP string, now time.Time) error {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	state, err := s.credentials.RecordLoginFailure(storeCtx, credential.ID, s.lockout.Threshold, s.lockout.Cooldown, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.publishLoginFailed(ctx, credential.Email, clientIP, state.FailedLoginCount, now)

	if state.Locked(now) {
		s.publishAccountLocked(ctx, credential, *state.LockoutUntil, now)
		return ErrAccountLocked
	}

	return ErrInvalidCredentials
}

func (s *AuthService) getByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.credentials.GetByEmail(storeCtx, email)
}

func (s *AuthService) resetLockout(ctx context.Context, id string, at time.Time) error {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.credentials.ResetLockout(storeCtx, id, at)
}

func (s *AuthService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *AuthService) verifyDummy(password string) {
	if _, err := s.hasher.Verify(password, s.dummyHash); err != nil {
		s.logger.Debug("dummy password verification failed", zap.Error(err))
	}
}

func (s *AuthService) publishLoginSucceeded(ctx context.Context, credential domain.Credential, clientIP string, at time.Time) {
	if s.publisher == nil {
		return
	}
	event := domain.LoginSucceededEvent{
		EventID:      uuid.NewString(),
		CredentialID: credential.ID,
		Email:        credential.Email,
		IP:           clientIP,
		OccurredAt:   at,
	}
	if err := s.publisher.PublishLoginSucceeded(ctx, event); err != nil {
		s.logger.Warn("publish login succeeded event failed", zap.Error(err))
	}
}

func (s *AuthService) publishLoginFailed(ctx context.Context, email, clientIP string, failedCount int, at time.Time) {
	if s.publisher == nil {
		return
	}
	event := domain.LoginFailedEvent{
		EventID:     uuid.NewString(),
		Email:       email,
		IP:          clientIP,
		FailedCount: failedCount,
		OccurredAt:  at,
	}
	if err := s.publisher.PublishLoginFailed(ctx, event); err != nil {
		s.logger.Warn("publish login failed event failed", zap.Error(err))
	}
}

func (s *AuthService) publishAccountLocked(ctx context.Context, credential domain.Credential, lockedUntil, at time.Time) {
	if s.publisher == nil {
		return
	}
	event := domain.AccountLockedEvent{
		EventID:      uuid.NewString(),
		CredentialID: credential.ID,
		Email:        credential.Email,
		LockedUntil:  lockedUntil,
		OccurredAt:   at,
	}
	if err := s.publisher.PublishAccountLocked(ctx, event); err != nil {
		s.logger.Warn("publish account locked event failed", zap.Error(err))
	}
}
