package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/core/port"
	"github.com/arklim/project-planner/internal/repository"
)

// ProjectRepository implements port.ProjectRepository using PostgreSQL.
type ProjectRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProjectRepository wires a PostgreSQL-backed project repository.
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new project row.
func (r *ProjectRepository) Create(ctx context.Context, project domain.Project) error {
	stmt, args, err := r.builder.Insert("planner.projects").
		Columns("id", "name", "description", "budget", "created_at").
		Values(project.ID, project.Name, project.Description, project.Budget, project.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert project sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	return nil
}

// GetByID retrieves a project with its tasks ordered by title.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	stmt, args, err := r.builder.Select("id", "name", "description", "budget", "created_at").
		From("planner.projects").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select project sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		project     domain.Project
		description sql.NullString
	)

	if err := row.Scan(&project.ID, &project.Name, &description, &project.Budget, &project.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}

	if description.Valid {
		project.Description = &description.String
	}

	tasks, err := r.listTasks(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	project.Tasks = tasks

	return &project, nil
}

func (r *ProjectRepository) listTasks(ctx context.Context, projectID string) ([]domain.TaskItem, error) {
	stmt, args, err := r.builder.Select("id", "title", "description", "estimated_hours", "project_id").
		From("planner.tasks").
		Where(squirrel.Eq{"project_id": projectID}).
		OrderBy("title ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list project tasks sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query project tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.TaskItem, 0)
	for rows.Next() {
		var (
			task        domain.TaskItem
			description sql.NullString
		)
		if err := rows.Scan(&task.ID, &task.Title, &description, &task.EstimatedHours, &task.ProjectID); err != nil {
			return nil, fmt.Errorf("scan project task: %w", err)
		}
		if description.Valid {
			task.Description = &description.String
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project tasks: %w", err)
	}

	return tasks, nil
}

// List retrieves all projects ordered by creation time, newest first.
func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	stmt, args, err := r.builder.Select("id", "name", "description", "budget", "created_at").
		From("planner.projects").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list projects sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]domain.Project, 0)
	for rows.Next() {
		var (
			project     domain.Project
			description sql.NullString
		)
		if err := rows.Scan(&project.ID, &project.Name, &description, &project.Budget, &project.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if description.Valid {
			project.Description = &description.String
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

// Update modifies an existing project's fields.
func (r *ProjectRepository) Update(ctx context.Context, project domain.Project) error {
	stmt, args, err := r.builder.Update("planner.projects").
		Set("name", project.Name).
		Set("description", project.Description).
		Set("budget", project.Budget).
		Where(squirrel.Eq{"id": project.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update project sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a project and, via the schema's cascade, its tasks.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("planner.projects").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete project sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.ProjectRepository = (*ProjectRepository)(nil)
