package mocks

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/tasklink/tasklink/internal/domain/entities"
)

// RelationalDB is a mock implementation of ports.RelationalDB.
type RelationalDB struct {
	Tasks         map[string]*entities.Task
	Types         map[string]*entities.RelationshipType
	Relationships map[string]*entities.Relationship
	Audit         []entities.AuditEntry
	Err           error
}

// NewRelationalDB creates a new mock RelationalDB.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		Tasks:         make(map[string]*entities.Task),
		Types:         make(map[string]*entities.RelationshipType),
		Relationships: make(map[string]*entities.Relationship),
	}
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *RelationalDB) Close() error {
	return nil
}

// Task methods.

// SaveTask saves or updates a task.
func (m *RelationalDB) SaveTask(_ context.Context, task *entities.Task) error {
	if m.Err != nil {
		return m.Err
	}
	m.Tasks[task.ID] = task
	return nil
}

// FindTaskByID finds a task by its ID.
func (m *RelationalDB) FindTaskByID(_ context.Context, taskID string) (*entities.Task, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tasks[taskID], nil
}

// ListTasks lists tasks, newest first.
func (m *RelationalDB) ListTasks(_ context.Context, limit, offset int) ([]*entities.Task, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	all := make([]*entities.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		all = append(all, t)
	}
	// Sort newest first, then by ID for deterministic test results
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// DeleteTask deletes a task and the relationships touching it.
func (m *RelationalDB) DeleteTask(_ context.Context, taskID string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Tasks, taskID)
	for id, rel := range m.Relationships {
		if rel.Involves(taskID) {
			delete(m.Relationships, id)
		}
	}
	return nil
}

// CountTasks returns the total number of tasks.
func (m *RelationalDB) CountTasks(_ context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.Tasks), nil
}

// Relationship type methods.

// SaveRelationshipType saves or updates a relationship type.
func (m *RelationalDB) SaveRelationshipType(_ context.Context, rt *entities.RelationshipType) error {
	if m.Err != nil {
		return m.Err
	}
	m.Types[rt.ID] = rt
	return nil
}

// FindRelationshipTypeByID finds a type by id.
func (m *RelationalDB) FindRelationshipTypeByID(_ context.Context, id string) (*entities.RelationshipType, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Types[id], nil
}

// FindRelationshipTypeByName finds a type by its type_name.
func (m *RelationalDB) FindRelationshipTypeByName(_ context.Context, typeName string) (*entities.RelationshipType, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, rt := range m.Types {
		if rt.TypeName == typeName {
			return rt, nil
		}
	}
	return nil, nil
}

// ListRelationshipTypes lists types ordered by type_name, optionally
// filtered by a case-insensitive substring.
func (m *RelationalDB) ListRelationshipTypes(_ context.Context, search string) ([]entities.RelationshipType, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	needle := strings.ToLower(search)
	result := make([]entities.RelationshipType, 0, len(m.Types))
	for _, rt := range m.Types {
		if needle != "" &&
			!strings.Contains(strings.ToLower(rt.TypeName), needle) &&
			!strings.Contains(strings.ToLower(rt.DisplayName), needle) {
			continue
		}
		result = append(result, *rt)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TypeName < result[j].TypeName
	})
	return result, nil
}

// DeleteRelationshipType deletes a type and the relationships using it.
func (m *RelationalDB) DeleteRelationshipType(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Types, id)
	for relID, rel := range m.Relationships {
		if rel.RelationshipTypeID == id {
			delete(m.Relationships, relID)
		}
	}
	return nil
}

// Relationship methods.

// SaveRelationship saves or updates a relationship.
func (m *RelationalDB) SaveRelationship(_ context.Context, rel *entities.Relationship) error {
	if m.Err != nil {
		return m.Err
	}
	m.Relationships[rel.ID] = rel
	return nil
}

// FindRelationshipByID finds a relationship by id.
func (m *RelationalDB) FindRelationshipByID(_ context.Context, id string) (*entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Relationships[id], nil
}

// FindRelationshipByTriple finds the relationship with the given
// (source, target, type) triple.
func (m *RelationalDB) FindRelationshipByTriple(_ context.Context, sourceTaskID, targetTaskID, typeID string) (*entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, rel := range m.Relationships {
		if rel.SourceTaskID == sourceTaskID && rel.TargetTaskID == targetTaskID && rel.RelationshipTypeID == typeID {
			return rel, nil
		}
	}
	return nil, nil
}

// ListRelationshipsForTask lists relationships where the task is source or
// target.
func (m *RelationalDB) ListRelationshipsForTask(_ context.Context, taskID string) ([]entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.Relationship
	for _, rel := range m.Relationships {
		if rel.Involves(taskID) {
			result = append(result, *rel)
		}
	}
	sortRelationships(result)
	return result, nil
}

// ListRelationships lists all relationships, oldest first.
func (m *RelationalDB) ListRelationships(_ context.Context, limit, offset int) ([]entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.Relationship, 0, len(m.Relationships))
	for _, rel := range m.Relationships {
		result = append(result, *rel)
	}
	sortRelationships(result)
	if limit < 0 {
		limit = len(result)
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// ListRelationshipDetailsForTask joins each relationship with its type and
// both endpoint tasks. Rows with a missing type or endpoint are dropped,
// matching inner-join semantics.
func (m *RelationalDB) ListRelationshipDetailsForTask(_ context.Context, taskID string) ([]entities.RelationshipDetail, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.RelationshipDetail
	for _, rel := range m.Relationships {
		if !rel.Involves(taskID) {
			continue
		}
		rt := m.Types[rel.RelationshipTypeID]
		source := m.Tasks[rel.SourceTaskID]
		target := m.Tasks[rel.TargetTaskID]
		if rt == nil || source == nil || target == nil {
			continue
		}
		result = append(result, entities.RelationshipDetail{
			Relationship: *rel,
			Type:         *rt,
			SourceTask:   source.Summary(),
			TargetTask:   target.Summary(),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Relationship, result[j].Relationship
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return result, nil
}

// DeleteRelationship deletes a relationship by id.
func (m *RelationalDB) DeleteRelationship(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Relationships, id)
	return nil
}

// Audit log methods.

// LogAction logs an action to the audit log.
func (m *RelationalDB) LogAction(_ context.Context, action string, subjectID string, details map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:        int64(len(m.Audit) + 1),
		Action:    action,
		SubjectID: subjectID,
		Details:   details,
		CreatedAt: time.Now(),
	})
	return nil
}

// FindAuditLog finds audit log entries for a specific subject.
func (m *RelationalDB) FindAuditLog(_ context.Context, subjectID string) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for _, e := range m.Audit {
		if e.SubjectID == subjectID {
			result = append(result, e)
		}
	}
	return result, nil
}

// FindAuditLogByAction finds recent audit log entries, newest first,
// optionally filtered by action type.
func (m *RelationalDB) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0 && len(result) < limit; i-- {
		if action == "" || m.Audit[i].Action == action {
			result = append(result, m.Audit[i])
		}
	}
	return result, nil
}

func sortRelationships(rels []entities.Relationship) {
	sort.Slice(rels, func(i, j int) bool {
		if !rels[i].CreatedAt.Equal(rels[j].CreatedAt) {
			return rels[i].CreatedAt.Before(rels[j].CreatedAt)
		}
		return rels[i].ID < rels[j].ID
	})
}
