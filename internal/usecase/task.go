package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	uuid "github.com/google/uuid"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/core/port"
	"github.com/arklim/project-planner/internal/repository"
)

// ErrTaskNotFound indicates the referenced task does not exist.
var ErrTaskNotFound = errors.New("task not found")

// TaskInput captures the payload for creating or updating a task.
type TaskInput struct {
	Title          string
	Description    *string
	EstimatedHours float64
}

// TaskService manages tasks within projects.
type TaskService struct {
	tasks    port.TaskRepository
	projects port.ProjectRepository
}

// NewTaskService constructs a TaskService.
func NewTaskService(tasks port.TaskRepository, projects port.ProjectRepository) *TaskService {
	return &TaskService{tasks: tasks, projects: projects}
}

func validateTaskInput(input TaskInput) error {
	var violations []string
	if strings.TrimSpace(input.Title) == "" {
		violations = append(violations, "task title is required")
	}
	if input.EstimatedHours < 0 {
		violations = append(violations, "estimated hours must not be negative")
	}
	if len(violations) > 0 {
		return NewValidationError(violations)
	}
	return nil
}

// CreateTask adds a task to an existing project.
func (s *TaskService) CreateTask(ctx context.Context, projectID string, input TaskInput) (domain.TaskItem, error) {
	if err := validateTaskInput(input); err != nil {
		return domain.TaskItem{}, err
	}

	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.TaskItem{}, ErrProjectNotFound
		}
		return domain.TaskItem{}, fmt.Errorf("get project: %w", err)
	}

	task := domain.TaskItem{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(input.Title),
		Description:    trimmedPtr(input.Description),
		EstimatedHours: input.EstimatedHours,
		ProjectID:      projectID,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return domain.TaskItem{}, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// GetTask retrieves a task, confirming it belongs to the given project.
func (s *TaskService) GetTask(ctx context.Context, projectID, taskID string) (domain.TaskItem, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.TaskItem{}, ErrTaskNotFound
		}
		return domain.TaskItem{}, fmt.Errorf("get task: %w", err)
	}
	if task.ProjectID != projectID {
		return domain.TaskItem{}, ErrTaskNotFound
	}
	return *task, nil
}

// ListTasks returns all tasks for the project, ordered by title.
func (s *TaskService) ListTasks(ctx context.Context, projectID string) ([]domain.TaskItem, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask replaces the mutable fields of an existing task.
func (s *TaskService) UpdateTask(ctx context.Context, projectID, taskID string, input TaskInput) (domain.TaskItem, error) {
	if err := validateTaskInput(input); err != nil {
		return domain.TaskItem{}, err
	}

	task, err := s.GetTask(ctx, projectID, taskID)
	if err != nil {
		return domain.TaskItem{}, err
	}

	task.Title = strings.TrimSpace(input.Title)
	task.Description = trimmedPtr(input.Description)
	task.EstimatedHours = input.EstimatedHours

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.TaskItem{}, ErrTaskNotFound
		}
		return domain.TaskItem{}, fmt.Errorf("update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task from its project.
func (s *TaskService) DeleteTask(ctx context.Context, projectID, taskID string) error {
	if _, err := s.GetTask(ctx, projectID, taskID); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
