package entities

import (
	"encoding/json"
	"time"
)

// Relationship represents a directed, typed edge between two tasks.
// Direction carries meaning only when the type is directional; for
// non-directional types the source/target split is retained for identity
// but never surfaced as a direction.
type Relationship struct {
	ID                 string          `json:"id"`
	SourceTaskID       string          `json:"source_task_id"`
	TargetTaskID       string          `json:"target_task_id"`
	RelationshipTypeID string          `json:"relationship_type_id"`
	Data               json.RawMessage `json:"data,omitempty"`
	Note               string          `json:"note,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Involves reports whether the given task is either endpoint of the edge.
func (r *Relationship) Involves(taskID string) bool {
	return r.SourceTaskID == taskID || r.TargetTaskID == taskID
}

// TypeRef identifies a relationship type either by its opaque id or by its
// unique type_name. Exactly one field is set; resolution happens through a
// single registry lookup.
type TypeRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// TypeRefByID builds a reference by opaque id.
func TypeRefByID(id string) TypeRef { return TypeRef{ID: id} }

// TypeRefByName builds a reference by unique type_name.
func TypeRefByName(name string) TypeRef { return TypeRef{Name: name} }

// IsZero reports whether the reference identifies nothing.
func (tr TypeRef) IsZero() bool { return tr.ID == "" && tr.Name == "" }
