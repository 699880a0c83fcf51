package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/ports"
)

// validTypeNameRegex allows lowercase alphanumerics and underscores only.
var validTypeNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// CreateRelationshipTypeRequest holds the configuration for a new
// relationship type.
type CreateRelationshipTypeRequest struct {
	TypeName                 string
	DisplayName              string
	Description              string
	IsDirectional            bool
	ForwardLabel             string
	ReverseLabel             string
	EnforcesBlocking         bool
	BlockingDisabledStatuses entities.StatusSet
	BlockingSourceStatuses   entities.StatusSet
}

// UpdateRelationshipTypeRequest holds a partial reconfiguration of an
// existing type. Nil fields keep their current values. type_name and
// is_system are immutable and therefore absent.
type UpdateRelationshipTypeRequest struct {
	DisplayName              *string
	Description              *string
	IsDirectional            *bool
	ForwardLabel             *string
	ReverseLabel             *string
	EnforcesBlocking         *bool
	BlockingDisabledStatuses *entities.StatusSet
	BlockingSourceStatuses   *entities.StatusSet
}

// RelationshipTypeService manages the catalog of relationship types.
// Every call re-reads current state from the store; nothing is cached, so
// two processes sharing one database observe a consistent catalog.
type RelationshipTypeService struct {
	relationalDB ports.RelationalDB
}

// NewRelationshipTypeService creates a new RelationshipTypeService.
func NewRelationshipTypeService(relationalDB ports.RelationalDB) *RelationshipTypeService {
	return &RelationshipTypeService{relationalDB: relationalDB}
}

// SeedDefaults seeds the system relationship types into the database.
// Types already present (by type_name) are left untouched, so the seed is
// idempotent across restarts and preserves later updates to system types.
func (s *RelationshipTypeService) SeedDefaults(ctx context.Context) error {
	for _, rt := range entities.DefaultRelationshipTypes {
		existing, err := s.relationalDB.FindRelationshipTypeByName(ctx, rt.TypeName)
		if err != nil {
			return fmt.Errorf("checking relationship type %s: %w", rt.TypeName, err)
		}
		if existing != nil {
			continue
		}

		seeded := rt
		seeded.ID = uuid.New().String()
		now := time.Now()
		seeded.CreatedAt = now
		seeded.UpdatedAt = now
		if err := s.relationalDB.SaveRelationshipType(ctx, &seeded); err != nil {
			return fmt.Errorf("seeding relationship type %s: %w", rt.TypeName, err)
		}
	}
	return nil
}

// Create validates and stores a new relationship type.
func (s *RelationshipTypeService) Create(ctx context.Context, req CreateRelationshipTypeRequest) (*entities.RelationshipType, error) {
	typeName := strings.ToLower(strings.TrimSpace(req.TypeName))
	if typeName == "" {
		return nil, entities.Validationf("type_name must not be empty")
	}
	if !validTypeNameRegex.MatchString(typeName) {
		return nil, entities.Validationf("invalid type_name %q: must be lowercase alphanumeric with underscores, starting with a letter", typeName)
	}

	now := time.Now()
	rt := &entities.RelationshipType{
		ID:                       uuid.New().String(),
		TypeName:                 typeName,
		DisplayName:              strings.TrimSpace(req.DisplayName),
		Description:              req.Description,
		IsDirectional:            req.IsDirectional,
		ForwardLabel:             strings.TrimSpace(req.ForwardLabel),
		ReverseLabel:             strings.TrimSpace(req.ReverseLabel),
		EnforcesBlocking:         req.EnforcesBlocking,
		BlockingDisabledStatuses: req.BlockingDisabledStatuses,
		BlockingSourceStatuses:   req.BlockingSourceStatuses,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if err := validateTypeConfig(rt); err != nil {
		return nil, err
	}

	existing, err := s.relationalDB.FindRelationshipTypeByName(ctx, typeName)
	if err != nil {
		return nil, fmt.Errorf("checking relationship type: %w", err)
	}
	if existing != nil {
		return nil, entities.Conflictf("relationship type %q already exists", typeName)
	}

	if err := s.relationalDB.SaveRelationshipType(ctx, rt); err != nil {
		return nil, fmt.Errorf("saving relationship type: %w", err)
	}

	auditLog(ctx, s.relationalDB, "relationship_type.created", rt.ID, map[string]any{
		"type_name": rt.TypeName,
	})
	return rt, nil
}

// Update merges a partial reconfiguration over the stored type and
// re-validates the full result: a partial update that would produce an
// inconsistent directional/label or blocking/status-set state is rejected
// exactly as Create would reject it.
func (s *RelationshipTypeService) Update(ctx context.Context, id string, req UpdateRelationshipTypeRequest) (*entities.RelationshipType, error) {
	existing, err := s.relationalDB.FindRelationshipTypeByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding relationship type: %w", err)
	}
	if existing == nil {
		return nil, entities.NotFoundf("relationship type not found: %s", id)
	}

	merged := *existing
	if req.DisplayName != nil {
		merged.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Description != nil {
		merged.Description = *req.Description
	}
	if req.IsDirectional != nil {
		merged.IsDirectional = *req.IsDirectional
	}
	if req.ForwardLabel != nil {
		merged.ForwardLabel = strings.TrimSpace(*req.ForwardLabel)
	}
	if req.ReverseLabel != nil {
		merged.ReverseLabel = strings.TrimSpace(*req.ReverseLabel)
	}
	if req.EnforcesBlocking != nil {
		merged.EnforcesBlocking = *req.EnforcesBlocking
	}
	if req.BlockingDisabledStatuses != nil {
		merged.BlockingDisabledStatuses = *req.BlockingDisabledStatuses
	}
	if req.BlockingSourceStatuses != nil {
		merged.BlockingSourceStatuses = *req.BlockingSourceStatuses
	}

	if err := validateTypeConfig(&merged); err != nil {
		return nil, err
	}

	merged.UpdatedAt = time.Now()
	if err := s.relationalDB.SaveRelationshipType(ctx, &merged); err != nil {
		return nil, fmt.Errorf("saving relationship type: %w", err)
	}

	auditLog(ctx, s.relationalDB, "relationship_type.updated", merged.ID, map[string]any{
		"type_name": merged.TypeName,
	})
	return &merged, nil
}

// Delete removes a relationship type. System types are refused; deletion
// cascades to every relationship of the type through the store's foreign
// keys, atomically with the type row itself.
func (s *RelationshipTypeService) Delete(ctx context.Context, id string) error {
	existing, err := s.relationalDB.FindRelationshipTypeByID(ctx, id)
	if err != nil {
		return fmt.Errorf("finding relationship type: %w", err)
	}
	if existing == nil {
		return entities.NotFoundf("relationship type not found: %s", id)
	}
	if existing.IsSystem {
		return entities.Forbiddenf("cannot delete system relationship types")
	}

	if err := s.relationalDB.DeleteRelationshipType(ctx, id); err != nil {
		return fmt.Errorf("deleting relationship type: %w", err)
	}

	auditLog(ctx, s.relationalDB, "relationship_type.deleted", id, map[string]any{
		"type_name": existing.TypeName,
	})
	return nil
}

// Get returns a relationship type by id.
func (s *RelationshipTypeService) Get(ctx context.Context, id string) (*entities.RelationshipType, error) {
	rt, err := s.relationalDB.FindRelationshipTypeByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding relationship type: %w", err)
	}
	if rt == nil {
		return nil, entities.NotFoundf("relationship type not found: %s", id)
	}
	return rt, nil
}

// GetByName returns a relationship type by its unique type_name.
func (s *RelationshipTypeService) GetByName(ctx context.Context, typeName string) (*entities.RelationshipType, error) {
	rt, err := s.relationalDB.FindRelationshipTypeByName(ctx, typeName)
	if err != nil {
		return nil, fmt.Errorf("finding relationship type: %w", err)
	}
	if rt == nil {
		return nil, entities.NotFoundf("relationship type not found: %s", typeName)
	}
	return rt, nil
}

// List returns all relationship types, optionally filtered by a
// case-insensitive substring over type_name and display_name.
func (s *RelationshipTypeService) List(ctx context.Context, search string) ([]entities.RelationshipType, error) {
	return s.relationalDB.ListRelationshipTypes(ctx, search)
}

// Resolve looks up a relationship type through a TypeRef. It is the single
// resolution path for "by id or by name" references.
func (s *RelationshipTypeService) Resolve(ctx context.Context, ref entities.TypeRef) (*entities.RelationshipType, error) {
	switch {
	case ref.ID != "":
		return s.Get(ctx, ref.ID)
	case ref.Name != "":
		return s.GetByName(ctx, ref.Name)
	}
	return nil, entities.Validationf("relationship type reference must carry an id or a name")
}

// validateTypeConfig checks the directional/label and blocking/status-set
// pairing invariants on a fully merged configuration.
func validateTypeConfig(rt *entities.RelationshipType) error {
	if rt.DisplayName == "" {
		return entities.Validationf("display_name must not be empty")
	}

	if rt.IsDirectional {
		if rt.ForwardLabel == "" || rt.ReverseLabel == "" {
			return entities.Validationf("directional relationship types must have both forward_label and reverse_label")
		}
	} else if rt.ForwardLabel != "" || rt.ReverseLabel != "" {
		return entities.Validationf("non-directional relationship types must not have forward_label or reverse_label")
	}

	if rt.EnforcesBlocking {
		if len(rt.BlockingDisabledStatuses) == 0 || len(rt.BlockingSourceStatuses) == 0 {
			return entities.Validationf("blocking relationship types must have both blocking_disabled_statuses and blocking_source_statuses")
		}
	} else if len(rt.BlockingDisabledStatuses) != 0 || len(rt.BlockingSourceStatuses) != 0 {
		return entities.Validationf("non-blocking relationship types must not have blocking status sets")
	}

	if bad := rt.BlockingDisabledStatuses.Validate(); bad != "" {
		return entities.Validationf("unknown task status %q in blocking_disabled_statuses", bad)
	}
	if bad := rt.BlockingSourceStatuses.Validate(); bad != "" {
		return entities.Validationf("unknown task status %q in blocking_source_statuses", bad)
	}
	return nil
}
