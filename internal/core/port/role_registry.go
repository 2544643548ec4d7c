package port

import (
	"context"

	"github.com/arklim/project-planner/internal/core/domain"
)

// RoleRegistry handles the fixed role set.
type RoleRegistry interface {
	Create(ctx context.Context, role domain.Role) error
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
}
