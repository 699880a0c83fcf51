package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/ports"
	"github.com/tasklink/tasklink/internal/domain/services"
)

// RelationshipHandler handles relationship operations.
type RelationshipHandler struct {
	service      *services.RelationshipService
	assembler    *services.AssemblerService
	relationalDB ports.RelationalDB
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(service *services.RelationshipService, assembler *services.AssemblerService, relationalDB ports.RelationalDB) *RelationshipHandler {
	return &RelationshipHandler{
		service:      service,
		assembler:    assembler,
		relationalDB: relationalDB,
	}
}

// AddRelationshipParams describes a new edge. The type may be referenced by
// id or by name; id wins when both are set.
type AddRelationshipParams struct {
	SourceTaskID string
	TargetTaskID string
	TypeID       string
	TypeName     string
	Note         string
	Data         string
}

// UpdateRelationshipParams carries a partial edge edit. Nil fields are left
// alone.
type UpdateRelationshipParams struct {
	TargetTaskID *string
	TypeID       *string
	TypeName     *string
	Note         *string
	Data         *string
}

// RelationshipSummary is one row of the flat relationship listing, seen
// from the perspective of the listed task.
type RelationshipSummary struct {
	RelationshipID string               `json:"relationship_id"`
	TypeName       string               `json:"relationship_type"`
	Direction      string               `json:"direction,omitempty"`
	Label          string               `json:"label,omitempty"`
	Task           entities.TaskSummary `json:"task"`
	Note           string               `json:"note,omitempty"`
	IsBlocking     bool                 `json:"is_blocking,omitempty"`
}

// HandleAdd creates a new relationship.
func (h *RelationshipHandler) HandleAdd(ctx context.Context, params AddRelationshipParams) (*entities.Relationship, error) {
	data, err := parseData(params.Data)
	if err != nil {
		return nil, err
	}
	return h.service.Create(ctx, services.CreateRelationshipRequest{
		SourceTaskID: params.SourceTaskID,
		TargetTaskID: params.TargetTaskID,
		Type:         typeRef(params.TypeID, params.TypeName),
		Note:         params.Note,
		Data:         data,
	})
}

// HandleUpdate applies a partial edit to a relationship owned by the task.
func (h *RelationshipHandler) HandleUpdate(ctx context.Context, relationshipID, taskID string, params UpdateRelationshipParams) (*entities.Relationship, error) {
	req := services.UpdateRelationshipRequest{
		TargetTaskID: params.TargetTaskID,
		Note:         params.Note,
	}
	if params.TypeID != nil || params.TypeName != nil {
		ref := typeRef(deref(params.TypeID), deref(params.TypeName))
		req.Type = &ref
	}
	if params.Data != nil {
		data, err := parseData(*params.Data)
		if err != nil {
			return nil, err
		}
		req.Data = &data
	}
	return h.service.Update(ctx, relationshipID, taskID, req)
}

// HandleDelete removes a relationship owned by the task.
func (h *RelationshipHandler) HandleDelete(ctx context.Context, relationshipID, taskID string) error {
	return h.service.Delete(ctx, relationshipID, taskID)
}

// HandleList returns the task's relationships as flat summary rows. Each
// row names the task on the opposite side; directional types carry a
// direction and the label matching it.
func (h *RelationshipHandler) HandleList(ctx context.Context, taskID string, includeNotes bool) ([]RelationshipSummary, error) {
	task, err := h.relationalDB.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("checking task: %w", err)
	}
	if task == nil {
		return nil, entities.NotFoundf("task not found: %s", taskID)
	}

	details, err := h.relationalDB.ListRelationshipDetailsForTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}

	summaries := make([]RelationshipSummary, 0, len(details))
	for _, d := range details {
		forward := d.Relationship.SourceTaskID == taskID
		row := RelationshipSummary{
			RelationshipID: d.Relationship.ID,
			TypeName:       d.Type.TypeName,
			Label:          d.Type.Label(forward),
		}
		if d.Type.IsDirectional {
			if forward {
				row.Direction = "forward"
			} else {
				row.Direction = "reverse"
			}
		}
		if forward {
			row.Task = d.TargetTask
		} else {
			row.Task = d.SourceTask
			row.IsBlocking = services.IsBlockingSource(&d.Type, d.SourceTask.Status)
		}
		if includeNotes {
			row.Note = d.Relationship.Note
		}
		summaries = append(summaries, row)
	}
	return summaries, nil
}

// HandleGroups returns the task's relationships grouped by type, with
// directional types split into forward and reverse entries.
func (h *RelationshipHandler) HandleGroups(ctx context.Context, taskID string) ([]entities.RelationshipGroup, error) {
	return h.assembler.GroupsForTask(ctx, taskID)
}

func typeRef(id, name string) entities.TypeRef {
	if id != "" {
		return entities.TypeRefByID(id)
	}
	return entities.TypeRefByName(name)
}

func parseData(raw string) (json.RawMessage, error) {
	if raw == "" {
		return nil, nil
	}
	if !json.Valid([]byte(raw)) {
		return nil, entities.Validationf("data must be valid JSON")
	}
	return json.RawMessage(raw), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
