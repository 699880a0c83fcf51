package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/ports"
)

// CreateRelationshipRequest describes a new edge between two tasks.
type CreateRelationshipRequest struct {
	SourceTaskID string
	TargetTaskID string
	Type         entities.TypeRef
	Note         string
	Data         json.RawMessage
}

// UpdateRelationshipRequest holds a partial edit of an existing edge.
// Nil fields keep their current values; the source task never changes.
type UpdateRelationshipRequest struct {
	TargetTaskID *string
	Type         *entities.TypeRef
	Note         *string
	Data         *json.RawMessage
}

// RelationshipService manages the edges between tasks.
type RelationshipService struct {
	relationalDB ports.RelationalDB
	types        *RelationshipTypeService
}

// NewRelationshipService creates a new RelationshipService.
func NewRelationshipService(relationalDB ports.RelationalDB, types *RelationshipTypeService) *RelationshipService {
	return &RelationshipService{relationalDB: relationalDB, types: types}
}

// Create validates and stores a new relationship. The database's unique
// index over (source, target, type) backstops the duplicate check here, so
// concurrent creates of the same triple yield one row and one conflict.
func (s *RelationshipService) Create(ctx context.Context, req CreateRelationshipRequest) (*entities.Relationship, error) {
	if req.SourceTaskID == "" || req.TargetTaskID == "" {
		return nil, entities.Validationf("source_task_id and target_task_id are required")
	}
	if req.SourceTaskID == req.TargetTaskID {
		return nil, entities.Validationf("cannot create self-referential relationship")
	}

	rt, err := s.types.Resolve(ctx, req.Type)
	if err != nil {
		return nil, err
	}

	for _, taskID := range []string{req.SourceTaskID, req.TargetTaskID} {
		task, err := s.relationalDB.FindTaskByID(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("checking task: %w", err)
		}
		if task == nil {
			return nil, entities.NotFoundf("task not found: %s", taskID)
		}
	}

	existing, err := s.relationalDB.FindRelationshipByTriple(ctx, req.SourceTaskID, req.TargetTaskID, rt.ID)
	if err != nil {
		return nil, fmt.Errorf("checking existing relationship: %w", err)
	}
	if existing != nil {
		return nil, entities.Conflictf("relationship of type %q already exists between these tasks", rt.TypeName)
	}

	now := time.Now()
	rel := &entities.Relationship{
		ID:                 uuid.New().String(),
		SourceTaskID:       req.SourceTaskID,
		TargetTaskID:       req.TargetTaskID,
		RelationshipTypeID: rt.ID,
		Data:               req.Data,
		Note:               req.Note,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.relationalDB.SaveRelationship(ctx, rel); err != nil {
		return nil, fmt.Errorf("saving relationship: %w", err)
	}

	auditLog(ctx, s.relationalDB, "relationship.created", rel.ID, map[string]any{
		"source_task_id": rel.SourceTaskID,
		"target_task_id": rel.TargetTaskID,
		"type_name":      rt.TypeName,
	})
	return rel, nil
}

// Update applies a partial edit to a relationship owned by the given task.
// Changing the target or the type re-runs the self-reference and duplicate
// checks against the merged values.
func (s *RelationshipService) Update(ctx context.Context, relationshipID, owningTaskID string, req UpdateRelationshipRequest) (*entities.Relationship, error) {
	rel, err := s.owned(ctx, relationshipID, owningTaskID)
	if err != nil {
		return nil, err
	}

	merged := *rel
	if req.TargetTaskID != nil {
		target, err := s.relationalDB.FindTaskByID(ctx, *req.TargetTaskID)
		if err != nil {
			return nil, fmt.Errorf("checking task: %w", err)
		}
		if target == nil {
			return nil, entities.NotFoundf("task not found: %s", *req.TargetTaskID)
		}
		merged.TargetTaskID = *req.TargetTaskID
	}
	if req.Type != nil {
		rt, err := s.types.Resolve(ctx, *req.Type)
		if err != nil {
			return nil, err
		}
		merged.RelationshipTypeID = rt.ID
	}
	if req.Note != nil {
		merged.Note = *req.Note
	}
	if req.Data != nil {
		merged.Data = *req.Data
	}

	if merged.SourceTaskID == merged.TargetTaskID {
		return nil, entities.Validationf("cannot create self-referential relationship")
	}

	if merged.TargetTaskID != rel.TargetTaskID || merged.RelationshipTypeID != rel.RelationshipTypeID {
		existing, err := s.relationalDB.FindRelationshipByTriple(ctx, merged.SourceTaskID, merged.TargetTaskID, merged.RelationshipTypeID)
		if err != nil {
			return nil, fmt.Errorf("checking existing relationship: %w", err)
		}
		if existing != nil && existing.ID != merged.ID {
			return nil, entities.Conflictf("relationship already exists between these tasks")
		}
	}

	merged.UpdatedAt = time.Now()
	if err := s.relationalDB.SaveRelationship(ctx, &merged); err != nil {
		return nil, fmt.Errorf("saving relationship: %w", err)
	}

	auditLog(ctx, s.relationalDB, "relationship.updated", merged.ID, map[string]any{
		"source_task_id": merged.SourceTaskID,
		"target_task_id": merged.TargetTaskID,
	})
	return &merged, nil
}

// Delete removes a relationship owned by the given task.
func (s *RelationshipService) Delete(ctx context.Context, relationshipID, owningTaskID string) error {
	rel, err := s.owned(ctx, relationshipID, owningTaskID)
	if err != nil {
		return err
	}

	if err := s.relationalDB.DeleteRelationship(ctx, rel.ID); err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}

	auditLog(ctx, s.relationalDB, "relationship.deleted", rel.ID, map[string]any{
		"source_task_id": rel.SourceTaskID,
		"target_task_id": rel.TargetTaskID,
	})
	return nil
}

// Get returns a relationship by id.
func (s *RelationshipService) Get(ctx context.Context, id string) (*entities.Relationship, error) {
	rel, err := s.relationalDB.FindRelationshipByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding relationship: %w", err)
	}
	if rel == nil {
		return nil, entities.NotFoundf("relationship not found: %s", id)
	}
	return rel, nil
}

// ListForTask returns every relationship where the task is source or
// target, in creation order.
func (s *RelationshipService) ListForTask(ctx context.Context, taskID string) ([]entities.Relationship, error) {
	task, err := s.relationalDB.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("checking task: %w", err)
	}
	if task == nil {
		return nil, entities.NotFoundf("task not found: %s", taskID)
	}
	return s.relationalDB.ListRelationshipsForTask(ctx, taskID)
}

// owned loads a relationship and verifies it touches the owning task.
func (s *RelationshipService) owned(ctx context.Context, relationshipID, owningTaskID string) (*entities.Relationship, error) {
	rel, err := s.relationalDB.FindRelationshipByID(ctx, relationshipID)
	if err != nil {
		return nil, fmt.Errorf("finding relationship: %w", err)
	}
	if rel == nil {
		return nil, entities.NotFoundf("relationship not found: %s", relationshipID)
	}
	if !rel.Involves(owningTaskID) {
		return nil, entities.Validationf("relationship does not belong to this task")
	}
	return rel, nil
}
