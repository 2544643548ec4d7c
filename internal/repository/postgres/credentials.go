package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/core/port"
	"github.com/arklim/project-planner/internal/repository"
)

const pgUniqueViolation = "23505"

// CredentialRepository implements port.CredentialStore using PostgreSQL.
type CredentialRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCredentialRepository wires a PostgreSQL-backed credential store.
func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *CredentialRepository) WithTx(tx pgx.Tx) *CredentialRepository {
	if tx == nil {
		return r
	}
	return &CredentialRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new credential row and its role assignments.
// Emails are stored lowercased to enforce case-insensitive uniqueness.
func (r *CredentialRepository) Create(ctx context.Context, credential domain.Credential) error {
	stmt, args, err := r.builder.Insert("planner.credentials").
		Columns(
			"id",
			"email",
			"password_hash",
			"password_algo",
			"failed_login_count",
			"lockout_until",
			"created_at",
			"last_login",
		).
		Values(
			credential.ID,
			strings.ToLower(credential.Email),
			credential.PasswordHash,
			credential.PasswordAlgo,
			credential.FailedLoginCount,
			credential.LockoutUntil,
			credential.CreatedAt,
			credential.LastLogin,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert credential sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("insert credential: %w", err)
	}

	if err := r.assignRoles(ctx, credential.ID, credential.Roles); err != nil {
		return err
	}

	return nil
}

func (r *CredentialRepository) assignRoles(ctx context.Context, credentialID string, roles []string) error {
	if len(roles) == 0 {
		return nil
	}

	stmt, args, err := r.builder.Insert("planner.credential_roles").
		Columns("credential_id", "role_id").
		Select(
			squirrel.Select().
				Column(squirrel.Expr("?", credentialID)).
				Column("id").
				From("planner.roles").
				Where(squirrel.Eq{"name": roles}),
		).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build assign roles sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("assign credential roles: %w", err)
	}

	return nil
}

// GetByID retrieves a credential by identifier.
func (r *CredentialRepository) GetByID(ctx context.Context, id string) (*domain.Credential, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a credential by email, case-insensitively.
func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	return r.getBy(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *CredentialRepository) getBy(ctx context.Context, predicate squirrel.Eq) (*domain.Credential, error) {
	stmt, args, err := r.builder.
		Select(
			"id",
			"email",
			"password_hash",
			"password_algo",
			"failed_login_count",
			"lockout_until",
			"created_at",
			"last_login",
		).
		From("planner.credentials").
		Where(predicate).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select credential sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		credential   domain.Credential
		lockoutUntil *time.Time
		lastLogin    *time.Time
	)

	if err := row.Scan(
		&credential.ID,
		&credential.Email,
		&credential.PasswordHash,
		&credential.PasswordAlgo,
		&credential.FailedLoginCount,
		&lockoutUntil,
		&credential.CreatedAt,
		&lastLogin,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}

	credential.LockoutUntil = lockoutUntil
	credential.LastLogin = lastLogin

	roles, err := r.listRoles(ctx, credential.ID)
	if err != nil {
		return nil, err
	}
	credential.Roles = roles

	return &credential, nil
}

func (r *CredentialRepository) listRoles(ctx context.Context, credentialID string) ([]string, error) {
	stmt, args, err := r.builder.
		Select("r.name").
		From("planner.credential_roles cr").
		Join("planner.roles r ON r.id = cr.role_id").
		Where(squirrel.Eq{"cr.credential_id": credentialID}).
		OrderBy("r.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list credential roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query credential roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan credential role: %w", err)
		}
		roles = append(roles, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credential roles: %w", err)
	}

	return roles, nil
}

// UpdateRoles replaces the credential's role assignments.
func (r *CredentialRepository) UpdateRoles(ctx context.Context, id string, roles []string) error {
	stmt, args, err := r.builder.Delete("planner.credential_roles").
		Where(squirrel.Eq{"credential_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete credential roles sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete credential roles: %w", err)
	}

	return r.assignRoles(ctx, id, roles)
}

// RecordLoginFailure atomically increments the failure counter, restarting it
// when a previous lockout window has elapsed, and stamps a new lockout window
// once the counter reaches threshold. The single UPDATE guarantees concurrent
// failed attempts on the same credential are all counted.
func (r *CredentialRepository) RecordLoginFailure(ctx context.Context, id string, threshold int, cooldown time.Duration, at time.Time) (domain.LockoutState, error) {
	var state domain.LockoutState

	const stmt = `
UPDATE planner.credentials
SET failed_login_count = CASE
        WHEN lockout_until IS NOT NULL AND lockout_until <= $2 THEN 1
        ELSE failed_login_count + 1
    END,
    lockout_until = CASE
        WHEN (CASE
                WHEN lockout_until IS NOT NULL AND lockout_until <= $2 THEN 1
                ELSE failed_login_count + 1
              END) >= $3 THEN $4
        ELSE NULL
    END
WHERE id = $1
RETURNING failed_login_count, lockout_until`

	lockedUntil := at.Add(cooldown)

	var lockoutUntil *time.Time
	if err := r.exec.QueryRow(ctx, stmt, id, at, threshold, lockedUntil).Scan(&state.FailedLoginCount, &lockoutUntil); err != nil {
		if err == pgx.ErrNoRows {
			return state, repository.ErrNotFound
		}
		return state, fmt.Errorf("record login failure: %w", err)
	}

	state.LockoutUntil = lockoutUntil
	return state, nil
}

// ResetLockout clears lockout bookkeeping after a successful login.
func (r *CredentialRepository) ResetLockout(ctx context.Context, id string, at time.Time) error {
	stmt, args, err := r.builder.Update("planner.credentials").
		Set("failed_login_count", 0).
		Set("lockout_until", nil).
		Set("last_login", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reset lockout sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("reset lockout: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.CredentialStore = (*CredentialRepository)(nil)
