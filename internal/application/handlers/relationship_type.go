package handlers

import (
	"context"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/services"
)

// RelationshipTypeHandler handles relationship type operations.
type RelationshipTypeHandler struct {
	service *services.RelationshipTypeService
}

// NewRelationshipTypeHandler creates a new RelationshipTypeHandler.
func NewRelationshipTypeHandler(service *services.RelationshipTypeService) *RelationshipTypeHandler {
	return &RelationshipTypeHandler{
		service: service,
	}
}

// CreateTypeParams carries the configuration for a new relationship type.
type CreateTypeParams struct {
	TypeName                 string
	DisplayName              string
	Description              string
	IsDirectional            bool
	ForwardLabel             string
	ReverseLabel             string
	EnforcesBlocking         bool
	BlockingDisabledStatuses []string
	BlockingSourceStatuses   []string
}

// UpdateTypeParams carries a partial type edit. Nil fields are left alone.
type UpdateTypeParams struct {
	DisplayName              *string
	Description              *string
	IsDirectional            *bool
	ForwardLabel             *string
	ReverseLabel             *string
	EnforcesBlocking         *bool
	BlockingDisabledStatuses *[]string
	BlockingSourceStatuses   *[]string
}

// HandleCreate creates a new relationship type.
func (h *RelationshipTypeHandler) HandleCreate(ctx context.Context, params CreateTypeParams) (*entities.RelationshipType, error) {
	return h.service.Create(ctx, services.CreateRelationshipTypeRequest{
		TypeName:                 params.TypeName,
		DisplayName:              params.DisplayName,
		Description:              params.Description,
		IsDirectional:            params.IsDirectional,
		ForwardLabel:             params.ForwardLabel,
		ReverseLabel:             params.ReverseLabel,
		EnforcesBlocking:         params.EnforcesBlocking,
		BlockingDisabledStatuses: toStatusSet(params.BlockingDisabledStatuses),
		BlockingSourceStatuses:   toStatusSet(params.BlockingSourceStatuses),
	})
}

// HandleUpdate applies a partial edit to a relationship type.
func (h *RelationshipTypeHandler) HandleUpdate(ctx context.Context, id string, params UpdateTypeParams) (*entities.RelationshipType, error) {
	req := services.UpdateRelationshipTypeRequest{
		DisplayName:      params.DisplayName,
		Description:      params.Description,
		IsDirectional:    params.IsDirectional,
		ForwardLabel:     params.ForwardLabel,
		ReverseLabel:     params.ReverseLabel,
		EnforcesBlocking: params.EnforcesBlocking,
	}
	if params.BlockingDisabledStatuses != nil {
		set := toStatusSet(*params.BlockingDisabledStatuses)
		req.BlockingDisabledStatuses = &set
	}
	if params.BlockingSourceStatuses != nil {
		set := toStatusSet(*params.BlockingSourceStatuses)
		req.BlockingSourceStatuses = &set
	}
	return h.service.Update(ctx, id, req)
}

// HandleDelete removes a relationship type and every relationship using it.
func (h *RelationshipTypeHandler) HandleDelete(ctx context.Context, id string) error {
	return h.service.Delete(ctx, id)
}

// HandleGet returns a relationship type by id or type_name.
func (h *RelationshipTypeHandler) HandleGet(ctx context.Context, idOrName string) (*entities.RelationshipType, error) {
	rt, err := h.service.Get(ctx, idOrName)
	if err == nil {
		return rt, nil
	}
	if !entities.IsNotFound(err) {
		return nil, err
	}
	return h.service.GetByName(ctx, idOrName)
}

// HandleList returns relationship types, optionally filtered by a
// case-insensitive search over type_name and display_name.
func (h *RelationshipTypeHandler) HandleList(ctx context.Context, search string) ([]entities.RelationshipType, error) {
	return h.service.List(ctx, search)
}

func toStatusSet(statuses []string) entities.StatusSet {
	if len(statuses) == 0 {
		return nil
	}
	set := make(entities.StatusSet, 0, len(statuses))
	for _, s := range statuses {
		set = append(set, entities.TaskStatus(s))
	}
	return set
}
