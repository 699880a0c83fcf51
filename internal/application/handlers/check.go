package handlers

import (
	"context"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/services"
)

// CheckHandler answers "may this task move to that status" without
// performing the move.
type CheckHandler struct {
	tasks    *services.TaskService
	blocking *services.BlockingService
}

// NewCheckHandler creates a new CheckHandler.
func NewCheckHandler(tasks *services.TaskService, blocking *services.BlockingService) *CheckHandler {
	return &CheckHandler{
		tasks:    tasks,
		blocking: blocking,
	}
}

// HandleCheck evaluates a hypothetical transition of the task to the
// requested status and returns the full decision, vetoes included.
func (h *CheckHandler) HandleCheck(ctx context.Context, taskID, status string) (*services.TransitionDecision, error) {
	if _, err := h.tasks.Get(ctx, taskID); err != nil {
		return nil, err
	}
	return h.blocking.EvaluateTransition(ctx, taskID, entities.TaskStatus(status))
}

// HandleBlocking returns the relationships currently holding the task,
// independent of any requested status.
func (h *CheckHandler) HandleBlocking(ctx context.Context, taskID string) ([]entities.Veto, error) {
	if _, err := h.tasks.Get(ctx, taskID); err != nil {
		return nil, err
	}
	return h.blocking.FindBlocking(ctx, taskID)
}
