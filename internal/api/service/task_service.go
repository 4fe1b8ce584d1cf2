package service

import (
	"context"
	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/repository"
	"ctchen222/Task-Tracker/internal/events"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TaskService defines the task operations available to an authenticated user.
// The user argument is the authorization context: only that user's tasks are visible.
type TaskService interface {
	Create(ctx context.Context, user *models.User, req *models.CreateTaskRequest) (*models.Task, error)
	List(ctx context.Context, user *models.User) ([]models.Task, error)
	Update(ctx context.Context, user *models.User, taskID int64, req *models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, user *models.User, taskID int64) error
}

type taskService struct {
	tasks     repository.TaskRepository
	publisher events.Publisher
}

// NewTaskService creates a new TaskService. A nil publisher disables task events.
func NewTaskService(tasks repository.TaskRepository, publisher events.Publisher) TaskService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &taskService{tasks: tasks, publisher: publisher}
}

func startTaskSpan(ctx context.Context, name string, user *models.User) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.Int64("user.id", user.ID)))
}

// Create stores a new pending task owned by user.
func (s *taskService) Create(ctx context.Context, user *models.User, req *models.CreateTaskRequest) (*models.Task, error) {
	ctx, span := startTaskSpan(ctx, "TaskService.Create", user)
	defer span.End()

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusPending,
		UserID:      user.ID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		span.RecordError(err)
		return nil, internal("create task", err)
	}

	count(ctx, serviceCounters.taskOps, "op", "create")
	s.publish(ctx, user.ID, events.TaskCreated, task)
	return task, nil
}

// List returns every task owned by user.
func (s *taskService) List(ctx context.Context, user *models.User) ([]models.Task, error) {
	ctx, span := startTaskSpan(ctx, "TaskService.List", user)
	defer span.End()

	tasks, err := s.tasks.ListByOwner(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return nil, internal("list tasks", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Update applies the non-empty fields of req to the user's task.
// A task owned by someone else is reported as ErrNotFound.
func (s *taskService) Update(ctx context.Context, user *models.User, taskID int64, req *models.UpdateTaskRequest) (*models.Task, error) {
	ctx, span := startTaskSpan(ctx, "TaskService.Update", user)
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", taskID))

	if req.Status != nil && *req.Status != "" && !req.Status.Valid() {
		return nil, ErrInvalidInput
	}

	patch := models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	task, err := s.tasks.UpdateOwned(ctx, user.ID, taskID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, internal("update task", err)
	}

	count(ctx, serviceCounters.taskOps, "op", "update")
	s.publish(ctx, user.ID, events.TaskUpdated, task)
	return task, nil
}

// Delete removes the user's task. A task owned by someone else is reported as ErrNotFound.
func (s *taskService) Delete(ctx context.Context, user *models.User, taskID int64) error {
	ctx, span := startTaskSpan(ctx, "TaskService.Delete", user)
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", taskID))

	if err := s.tasks.DeleteOwned(ctx, user.ID, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		span.RecordError(err)
		return internal("delete task", err)
	}

	count(ctx, serviceCounters.taskOps, "op", "delete")
	s.publish(ctx, user.ID, events.TaskDeleted, events.TaskDeletedPayload{TaskID: taskID})
	return nil
}

// publish is best effort: the change is already committed, so a failed
// notification is logged and the request still succeeds.
func (s *taskService) publish(ctx context.Context, userID int64, eventType string, payload any) {
	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build task event", "event.type", eventType, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, userID, event); err != nil {
		slog.WarnContext(ctx, "failed to publish task event", "event.type", eventType, "user.id", userID, "error", err)
	}
}
