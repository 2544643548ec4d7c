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

// TaskRepository implements port.TaskRepository using PostgreSQL.
type TaskRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTaskRepository wires a PostgreSQL-backed task repository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new task row.
func (r *TaskRepository) Create(ctx context.Context, task domain.TaskItem) error {
	stmt, args, err := r.builder.Insert("planner.tasks").
		Columns("id", "title", "description", "estimated_hours", "project_id").
		Values(task.ID, task.Title, task.Description, task.EstimatedHours, task.ProjectID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert task sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by identifier.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.TaskItem, error) {
	stmt, args, err := r.builder.Select("id", "title", "description", "estimated_hours", "project_id").
		From("planner.tasks").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select task sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		task        domain.TaskItem
		description sql.NullString
	)

	if err := row.Scan(&task.ID, &task.Title, &description, &task.EstimatedHours, &task.ProjectID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if description.Valid {
		task.Description = &description.String
	}

	return &task, nil
}

// ListByProject retrieves all tasks belonging to the project, ordered by title.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.TaskItem, error) {
	stmt, args, err := r.builder.Select("id", "title", "description", "estimated_hours", "project_id").
		From("planner.tasks").
		Where(squirrel.Eq{"project_id": projectID}).
		OrderBy("title ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tasks sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.TaskItem, 0)
	for rows.Next() {
		var (
			task        domain.TaskItem
			description sql.NullString
		)
		if err := rows.Scan(&task.ID, &task.Title, &description, &task.EstimatedHours, &task.ProjectID); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if description.Valid {
			task.Description = &description.String
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// Update modifies an existing task's fields.
func (r *TaskRepository) Update(ctx context.Context, task domain.TaskItem) error {
	stmt, args, err := r.builder.Update("planner.tasks").
		Set("title", task.Title).
		Set("description", task.Description).
		Set("estimated_hours", task.EstimatedHours).
		Where(squirrel.Eq{"id": task.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update task sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("planner.tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete task sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.TaskRepository = (*TaskRepository)(nil)
