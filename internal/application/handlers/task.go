package handlers

import (
	"context"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/services"
)

// TaskHandler handles task operations.
type TaskHandler struct {
	service *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

// UpdateTaskParams carries a partial task edit. Nil fields are left alone.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *string
}

// ListTasksResult contains a page of tasks plus the overall count.
type ListTasksResult struct {
	Tasks []*entities.Task `json:"tasks"`
	Total int              `json:"total"`
}

// HandleCreate creates a new task.
func (h *TaskHandler) HandleCreate(ctx context.Context, title, description, status string) (*entities.Task, error) {
	return h.service.Create(ctx, services.CreateTaskRequest{
		Title:       title,
		Description: description,
		Status:      entities.TaskStatus(status),
	})
}

// HandleGet returns a task by id.
func (h *TaskHandler) HandleGet(ctx context.Context, id string) (*entities.Task, error) {
	return h.service.Get(ctx, id)
}

// HandleList returns a page of tasks with the total count.
func (h *TaskHandler) HandleList(ctx context.Context, limit, offset int) (*ListTasksResult, error) {
	tasks, err := h.service.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := h.service.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &ListTasksResult{Tasks: tasks, Total: total}, nil
}

// HandleUpdate applies a partial edit to a task. Status changes go through
// the blocking evaluation and may fail with a blocked-transition error.
func (h *TaskHandler) HandleUpdate(ctx context.Context, id string, params UpdateTaskParams) (*entities.Task, error) {
	req := services.UpdateTaskRequest{
		Title:       params.Title,
		Description: params.Description,
	}
	if params.Status != nil {
		status := entities.TaskStatus(*params.Status)
		req.Status = &status
	}
	return h.service.Update(ctx, id, req)
}

// HandleDelete removes a task and its relationships.
func (h *TaskHandler) HandleDelete(ctx context.Context, id string) error {
	return h.service.Delete(ctx, id)
}
