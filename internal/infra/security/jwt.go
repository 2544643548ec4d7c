package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/arklim/project-planner/internal/core/domain"
)

// HMAC-SHA-256 requires at least a 256-bit secret; a shorter key defeats the scheme.
const minSigningKeyBytes = 32

const defaultTokenTTL = 60 * time.Minute

// Expiry checks tolerate this much clock drift between issuer and validator.
const clockSkewTolerance = time.Minute

var (
	// ErrSigningKeyTooShort indicates the configured secret is below the HS256 security margin.
	ErrSigningKeyTooShort = errors.New("jwt: signing key must be at least 32 bytes")
	// ErrTokenInvalid indicates the token failed signature, issuer, or audience checks.
	ErrTokenInvalid = errors.New("jwt: token invalid")
	// ErrTokenExpired indicates the token is outside its validity window.
	ErrTokenExpired = errors.New("jwt: token expired")
)

// AccessTokenClaims augments registered claims with identity and role context.
type AccessTokenClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// ClaimSet converts the verified claims into the request-scoped identity view.
func (c *AccessTokenClaims) ClaimSet() domain.ClaimSet {
	return domain.ClaimSet{
		Subject: c.Subject,
		Email:   c.Email,
		Roles:   c.Roles,
	}
}

// TokenManagerOptions configures a TokenManager.
type TokenManagerOptions struct {
	Key      string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// TokenManager issues and validates HS256 bearer tokens. Validation is purely
// computational and safe to run concurrently across requests.
type TokenManager struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenManager constructs a TokenManager, rejecting weak signing keys.
func NewTokenManager(opts TokenManagerOptions) (*TokenManager, error) {
	key := strings.TrimSpace(opts.Key)
	if len(key) < minSigningKeyBytes {
		return nil, ErrSigningKeyTooShort
	}

	issuer := strings.TrimSpace(opts.Issuer)
	if issuer == "" {
		return nil, fmt.Errorf("jwt: issuer is required")
	}

	audience := strings.TrimSpace(opts.Audience)
	if audience == "" {
		return nil, fmt.Errorf("jwt: audience is required")
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	return &TokenManager{
		key:      []byte(key),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// WithClock allows injection of a custom clock (primarily for testing).
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	if now != nil {
		m.now = now
	}
	return m
}

// TTL returns the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token embedding the credential's identity and role claims.
func (m *TokenManager) Issue(credential domain.Credential) (string, error) {
	if credential.ID == "" {
		return "", fmt.Errorf("jwt: credential id is required")
	}

	now := m.now().UTC()
	claims := AccessTokenClaims{
		Email: credential.Email,
		Roles: normalizeRoles(credential.Roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   credential.ID,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// Parse verifies signature, issuer, audience, and lifetime, returning the claims.
func (m *TokenManager) Parse(token string) (*AccessTokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	claims := &AccessTokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkewTolerance),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func normalizeRoles(input []string) []string {
	if len(input) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, role := range input {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		if _, exists := seen[role]; exists {
			continue
		}
		seen[role] = struct{}{}
		result = append(result, role)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
