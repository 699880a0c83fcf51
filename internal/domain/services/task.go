package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/ports"
)

// CreateTaskRequest describes a new task. An empty Status defaults to todo.
type CreateTaskRequest struct {
	Title       string
	Description string
	Status      entities.TaskStatus
}

// UpdateTaskRequest holds a partial edit of an existing task. Nil fields
// keep their current values.
type UpdateTaskRequest struct {
	Title       *string
	Description *string
	Status      *entities.TaskStatus
}

// TaskService manages tasks and gates their status transitions through the
// blocking evaluator.
type TaskService struct {
	relationalDB ports.RelationalDB
	blocking     *BlockingService
}

// NewTaskService creates a new TaskService.
func NewTaskService(relationalDB ports.RelationalDB, blocking *BlockingService) *TaskService {
	return &TaskService{relationalDB: relationalDB, blocking: blocking}
}

// Create validates and stores a new task.
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*entities.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, entities.Validationf("title must not be empty")
	}

	status := req.Status
	if status == "" {
		status = entities.StatusTodo
	}
	if !status.IsValid() {
		return nil, entities.Validationf("unknown task status %q", status)
	}

	now := time.Now()
	task := &entities.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: req.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.relationalDB.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}

	auditLog(ctx, s.relationalDB, "task.created", task.ID, map[string]any{
		"title":  task.Title,
		"status": string(task.Status),
	})
	return task, nil
}

// Get returns a task by id.
func (s *TaskService) Get(ctx context.Context, id string) (*entities.Task, error) {
	task, err := s.relationalDB.FindTaskByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding task: %w", err)
	}
	if task == nil {
		return nil, entities.NotFoundf("task not found: %s", id)
	}
	return task, nil
}

// List returns tasks in reverse creation order.
func (s *TaskService) List(ctx context.Context, limit, offset int) ([]*entities.Task, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.relationalDB.ListTasks(ctx, limit, offset)
}

// Count returns the total number of tasks.
func (s *TaskService) Count(ctx context.Context) (int, error) {
	return s.relationalDB.CountTasks(ctx)
}

// Update applies a partial edit to a task. A status change is evaluated
// against the blocking rule first and returns *entities.BlockedTransitionError
// carrying every veto when the transition is not permitted.
func (s *TaskService) Update(ctx context.Context, id string, req UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *task
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, entities.Validationf("title must not be empty")
		}
		merged.Title = title
	}
	if req.Description != nil {
		merged.Description = *req.Description
	}
	if req.Status != nil && *req.Status != task.Status {
		decision, err := s.blocking.EvaluateTransition(ctx, id, *req.Status)
		if err != nil {
			return nil, err
		}
		if !decision.Permitted {
			auditLog(ctx, s.relationalDB, "task.transition_blocked", id, map[string]any{
				"from": string(task.Status),
				"to":   string(*req.Status),
			})
			return nil, &entities.BlockedTransitionError{
				TaskID:          id,
				RequestedStatus: *req.Status,
				Vetoes:          decision.Vetoes,
			}
		}
		merged.Status = *req.Status
	}

	merged.UpdatedAt = time.Now()
	if err := s.relationalDB.SaveTask(ctx, &merged); err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}

	auditLog(ctx, s.relationalDB, "task.updated", merged.ID, map[string]any{
		"title":  merged.Title,
		"status": string(merged.Status),
	})
	return &merged, nil
}

// Delete removes a task. Relationships touching it go with it through the
// store's foreign keys.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	task, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.relationalDB.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	auditLog(ctx, s.relationalDB, "task.deleted", id, map[string]any{
		"title": task.Title,
	})
	return nil
}
