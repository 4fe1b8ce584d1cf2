package repository

import (
	"context"
	"ctchen222/Task-Tracker/internal/api/models"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=task_repository.go -destination=mocks/task_repository.go -package=mocks

// TaskRepository defines the interface for task data operations.
// Every lookup is scoped to the owning user; a task owned by someone else
// behaves exactly like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	ListByOwner(ctx context.Context, userID int64) ([]models.Task, error)
	UpdateOwned(ctx context.Context, userID, taskID int64, patch models.TaskPatch) (*models.Task, error)
	DeleteOwned(ctx context.Context, userID, taskID int64) error
}

type sqlTaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new SQL-backed TaskRepository.
func NewTaskRepository(db *sqlx.DB) TaskRepository {
	return &sqlTaskRepository{db: db}
}

const taskColumns = `id, title, description, status, user_id`

func traceUserID(id int64) trace.SpanStartOption {
	return trace.WithAttributes(attribute.Int64("user.id", id))
}

// Create inserts task and reloads the stored row into it.
func (r *sqlTaskRepository) Create(ctx context.Context, task *models.Task) error {
	ctx, span := tracer.Start(ctx, "TaskRepository.Create", traceUserID(task.UserID))
	defer span.End()

	query := r.db.Rebind(`INSERT INTO tasks (title, description, status, user_id) VALUES (?, ?, ?, ?) RETURNING ` + taskColumns)
	err := r.db.QueryRowxContext(ctx, query, task.Title, nullable(task.Description), string(task.Status), task.UserID).StructScan(task)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// ListByOwner returns the user's tasks in insertion order.
func (r *sqlTaskRepository) ListByOwner(ctx context.Context, userID int64) ([]models.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.ListByOwner", traceUserID(userID))
	defer span.End()

	tasks := []models.Task{}
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY id`)
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateOwned overwrites the non-empty fields of patch on the task matching
// both taskID and userID, and returns the stored row.
func (r *sqlTaskRepository) UpdateOwned(ctx context.Context, userID, taskID int64, patch models.TaskPatch) (*models.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.UpdateOwned", traceUserID(userID))
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", taskID))

	query := r.db.Rebind(`UPDATE tasks SET
		title = COALESCE(NULLIF(?, ''), title),
		description = COALESCE(NULLIF(?, ''), description),
		status = COALESCE(NULLIF(?, ''), status)
		WHERE id = ? AND user_id = ?
		RETURNING ` + taskColumns)

	var task models.Task
	err := r.db.QueryRowxContext(ctx, query, nullable(patch.Title), nullable(patch.Description), nullableStatus(patch.Status), taskID, userID).StructScan(&task)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &task, nil
}

// DeleteOwned removes the task matching both taskID and userID.
func (r *sqlTaskRepository) DeleteOwned(ctx context.Context, userID, taskID int64) error {
	ctx, span := tracer.Start(ctx, "TaskRepository.DeleteOwned", traceUserID(userID))
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", taskID))

	query := r.db.Rebind(`DELETE FROM tasks WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableStatus(s *models.TaskStatus) any {
	if s == nil {
		return nil
	}
	return string(*s)
}
