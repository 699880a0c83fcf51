package services

import (
	"context"
	"fmt"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/ports"
)

// TransitionDecision is the outcome of evaluating a requested status change.
type TransitionDecision struct {
	TaskID          string              `json:"task_id"`
	RequestedStatus entities.TaskStatus `json:"requested_status"`
	Permitted       bool                `json:"permitted"`
	Vetoes          []entities.Veto     `json:"vetoes,omitempty"`
}

// BlockingService decides whether status transitions are permitted, based
// on the relationships that point at a task.
type BlockingService struct {
	relationalDB ports.RelationalDB
}

// NewBlockingService creates a new BlockingService.
func NewBlockingService(relationalDB ports.RelationalDB) *BlockingService {
	return &BlockingService{relationalDB: relationalDB}
}

// Vetoes applies the blocking rule to pre-fetched reverse edges. An edge
// vetoes the transition when its type enforces blocking, the requested
// status is in the type's disabled set, and the source task's current
// status is in the type's source set. Pure: same inputs, same vetoes.
func Vetoes(requested entities.TaskStatus, reverse []entities.RelationshipDetail) []entities.Veto {
	var vetoes []entities.Veto
	for _, d := range reverse {
		if !d.Type.EnforcesBlocking {
			continue
		}
		if !d.Type.BlockingDisabledStatuses.Contains(requested) {
			continue
		}
		if !d.Type.BlockingSourceStatuses.Contains(d.SourceTask.Status) {
			continue
		}
		vetoes = append(vetoes, entities.Veto{
			RelationshipID:  d.Relationship.ID,
			TypeDisplayName: d.Type.DisplayName,
			Label:           d.Type.Label(false),
			SourceTask:      d.SourceTask,
		})
	}
	return vetoes
}

// IsBlockingSource reports whether an edge of the given type, whose source
// task currently has sourceStatus, satisfies the blocking-source condition
// independent of any requested status.
func IsBlockingSource(rt *entities.RelationshipType, sourceStatus entities.TaskStatus) bool {
	return rt.EnforcesBlocking && rt.BlockingSourceStatuses.Contains(sourceStatus)
}

// EvaluateTransition decides whether a task may move to the requested
// status. All vetoes are collected, not just the first.
func (s *BlockingService) EvaluateTransition(ctx context.Context, taskID string, requested entities.TaskStatus) (*TransitionDecision, error) {
	if !requested.IsValid() {
		return nil, entities.Validationf("unknown task status %q", requested)
	}

	details, err := s.relationalDB.ListRelationshipDetailsForTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}

	vetoes := Vetoes(requested, reverseEdges(taskID, details))
	return &TransitionDecision{
		TaskID:          taskID,
		RequestedStatus: requested,
		Permitted:       len(vetoes) == 0,
		Vetoes:          vetoes,
	}, nil
}

// FindBlocking returns the reverse edges currently holding the task,
// regardless of any particular requested status.
func (s *BlockingService) FindBlocking(ctx context.Context, taskID string) ([]entities.Veto, error) {
	details, err := s.relationalDB.ListRelationshipDetailsForTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}

	var blocking []entities.Veto
	for _, d := range reverseEdges(taskID, details) {
		if !IsBlockingSource(&d.Type, d.SourceTask.Status) {
			continue
		}
		blocking = append(blocking, entities.Veto{
			RelationshipID:  d.Relationship.ID,
			TypeDisplayName: d.Type.DisplayName,
			Label:           d.Type.Label(false),
			SourceTask:      d.SourceTask,
		})
	}
	return blocking, nil
}

// reverseEdges keeps only the edges where the task is the target.
func reverseEdges(taskID string, details []entities.RelationshipDetail) []entities.RelationshipDetail {
	var reverse []entities.RelationshipDetail
	for _, d := range details {
		if d.Relationship.TargetTaskID == taskID {
			reverse = append(reverse, d)
		}
	}
	return reverse
}
