package port

import (
	"context"

	"github.com/arklim/project-planner/internal/core/domain"
)

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	Update(ctx context.Context, project domain.Project) error
	Delete(ctx context.Context, id string) error
}

// TaskRepository persists task items belonging to projects.
type TaskRepository interface {
	Create(ctx context.Context, task domain.TaskItem) error
	GetByID(ctx context.Context, id string) (*domain.TaskItem, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.TaskItem, error)
	Update(ctx context.Context, task domain.TaskItem) error
	Delete(ctx context.Context, id string) error
}
