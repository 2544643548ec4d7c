package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/core/port"
	"github.com/arklim/project-planner/internal/repository"
)

// ErrProjectNotFound indicates the referenced project does not exist.
var ErrProjectNotFound = errors.New("project not found")

// ProjectInput captures the payload for creating or updating a project.
type ProjectInput struct {
	Name        string
	Description *string
	Budget      float64
}

// ProjectService manages the project catalogue.
type ProjectService struct {
	projects port.ProjectRepository
}

// NewProjectService constructs a ProjectService.
func NewProjectService(projects port.ProjectRepository) *ProjectService {
	return &ProjectService{projects: projects}
}

func validateProjectInput(input ProjectInput) error {
	var violations []string
	if strings.TrimSpace(input.Name) == "" {
		violations = append(violations, "project name is required")
	}
	if input.Budget < 0 {
		violations = append(violations, "budget must not be negative")
	}
	if len(violations) > 0 {
		return NewValidationError(violations)
	}
	return nil
}

// CreateProject provisions a new project.
func (s *ProjectService) CreateProject(ctx context.Context, input ProjectInput) (domain.Project, error) {
	if err := validateProjectInput(input); err != nil {
		return domain.Project{}, err
	}

	project := domain.Project{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: trimmedPtr(input.Description),
		Budget:      input.Budget,
		CreatedAt:   time.Now().UTC(),
		Tasks:       []domain.TaskItem{},
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}

	return project, nil
}

// GetProject retrieves a project and its tasks.
func (s *ProjectService) GetProject(ctx context.Context, id string) (domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, fmt.Errorf("get project: %w", err)
	}
	return *project, nil
}

// ListProjects returns all projects, newest first.
func (s *ProjectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// UpdateProject replaces the mutable fields of an existing project.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, input ProjectInput) (domain.Project, error) {
	if err := validateProjectInput(input); err != nil {
		return domain.Project{}, err
	}

	existing, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, fmt.Errorf("get project: %w", err)
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Description = trimmedPtr(input.Description)
	existing.Budget = input.Budget

	if err := s.projects.Update(ctx, *existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, fmt.Errorf("update project: %w", err)
	}

	return *existing, nil
}

// DeleteProject removes a project together with its tasks.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
