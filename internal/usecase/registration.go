package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/core/port"
	"github.com/arklim/project-planner/internal/infra/security"
	"github.com/arklim/project-planner/internal/repository"
)

const passwordAlgoArgon2id = "argon2id"

// ErrRoleUnknown indicates the requested role is outside the fixed role set.
var ErrRoleUnknown = errors.New("unknown role")

// RegistrationService handles new credential onboarding.
type RegistrationService struct {
	credentials       port.CredentialStore
	hasher            port.PasswordHasher
	passwordValidator *security.PasswordValidator
	publisher         port.EventPublisher
	storeTimeout      time.Duration
	logger            *zap.Logger
}

// NewRegistrationService constructs a registration service. Store calls are
// bounded by storeTimeout when it is positive.
func NewRegistrationService(
	credentials port.CredentialStore,
	hasher port.PasswordHasher,
	validator *security.PasswordValidator,
	publisher port.EventPublisher,
	storeTimeout time.Duration,
	logger *zap.Logger,
) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		credentials:       credentials,
		hasher:            hasher,
		passwordValidator: validator,
		publisher:         publisher,
		storeTimeout:      storeTimeout,
		logger:            logger,
	}
}

// RegisterCredential creates a credential carrying the single assigned role.
// Every policy violation is collected before returning, so a response to a bad
// request names all the problems at once.
func (s *RegistrationService) RegisterCredential(ctx context.Context, email, password, role string) (domain.Credential, error) {
	role = strings.TrimSpace(role)
	if !validRole(role) {
		return domain.Credential{}, fmt.Errorf("%w: %s", ErrRoleUnknown, role)
	}

	email = strings.ToLower(strings.TrimSpace(email))

	var violations []string
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		violations = append(violations, "email is not a valid address")
	}
	violations = append(violations, s.passwordValidator.Violations(password)...)

	if email != "" {
		if _, err := s.getByEmail(ctx, email); err == nil {
			violations = append(violations, "email is already registered")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return domain.Credential{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	if len(violations) > 0 {
		return domain.Credential{}, NewValidationError(violations)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	credential := domain.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		PasswordAlgo: passwordAlgoArgon2id,
		Roles:        []string{role},
		CreatedAt:    now,
	}

	if err := s.create(ctx, credential); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// Concurrent registration slipped past the pre-check; report it the
			// same way as the pre-check would have.
			return domain.Credential{}, NewValidationError([]string{"email is already registered"})
		}
		return domain.Credential{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.publishRegistered(ctx, credential, now)

	credential.PasswordHash = ""
	return credential, nil
}

func (s *RegistrationService) getByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.credentials.GetByEmail(storeCtx, email)
}

func (s *RegistrationService) create(ctx context.Context, credential domain.Credential) error {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.credentials.Create(storeCtx, credential)
}

func (s *RegistrationService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *RegistrationService) publishRegistered(ctx context.Context, credential domain.Credential, at time.Time) {
	if s.publisher == nil {
		return
	}

	event := domain.CredentialRegisteredEvent{
		EventID:      uuid.NewString(),
		CredentialID: credential.ID,
		Email:        credential.Email,
		Roles:        credential.Roles,
		RegisteredAt: at,
	}
	if err := s.publisher.PublishCredentialRegistered(ctx, event); err != nil {
		s.logger.Warn("publish credential registered event failed",
			zap.String("credential_id", credential.ID),
			zap.Error(err),
		)
	}
}

func validRole(role string) bool {
	for _, known := range domain.AllRoles() {
		if role == known {
			return true
		}
	}
	return false
}
