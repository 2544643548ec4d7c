package usecase

import (
	"context"
	"errors"
	"fmt"

	uuid "github.com/google/uuid"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/core/port"
	"github.com/arklim/project-planner/internal/repository"
)

// RoleService manages the fixed application role set.
type RoleService struct {
	roles port.RoleRegistry
}

// NewRoleService constructs a RoleService.
func NewRoleService(roles port.RoleRegistry) *RoleService {
	return &RoleService{roles: roles}
}

// EnsureRoles creates any missing fixed roles. It is idempotent and runs at
// startup before the server accepts traffic.
func (s *RoleService) EnsureRoles(ctx context.Context) error {
	for _, name := range domain.AllRoles() {
		_, err := s.roles.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("lookup role %s: %w", name, err)
		}

		role := domain.Role{ID: uuid.NewString(), Name: name}
		if err := s.roles.Create(ctx, role); err != nil {
			return fmt.Errorf("create role %s: %w", name, err)
		}
	}
	return nil
}

// ListRoles returns all roles.
func (s *RoleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}
