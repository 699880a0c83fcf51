package entities

import "encoding/json"

// TaskSummary is the minimal task view surfaced on the opposite side of an
// edge: enough for display and for blocking diagnostics.
type TaskSummary struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Status TaskStatus `json:"status"`
}

// RelationshipDetail is one edge joined with its type and both endpoint
// tasks. It is the row shape the assembler and the blocking evaluator
// consume.
type RelationshipDetail struct {
	Relationship Relationship     `json:"relationship"`
	Type         RelationshipType `json:"relationship_type"`
	SourceTask   TaskSummary      `json:"source_task"`
	TargetTask   TaskSummary      `json:"target_task"`
}

// GroupItem is one edge as seen from a specific task: the opposite-side
// task, the applicable direction label, and whether the edge currently
// blocks that task.
type GroupItem struct {
	RelationshipID string          `json:"relationship_id"`
	Task           TaskSummary     `json:"task"`
	Label          string          `json:"label,omitempty"`
	Note           string          `json:"note,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	IsBlocking     bool            `json:"is_blocking,omitempty"`
}

// RelationshipGroup collects a task's edges of one type. Directional types
// split into Forward and Reverse; non-directional types merge into
// Undirected. Blocked is true when any reverse edge currently blocks.
type RelationshipGroup struct {
	Type       RelationshipType `json:"relationship_type"`
	Forward    []GroupItem      `json:"forward,omitempty"`
	Reverse    []GroupItem      `json:"reverse,omitempty"`
	Undirected []GroupItem      `json:"undirected,omitempty"`
	Blocked    bool             `json:"blocked"`
}

// Veto describes one relationship that forbids a status transition: which
// edge, under which type, and the source task whose status triggered it.
type Veto struct {
	RelationshipID  string      `json:"relationship_id"`
	TypeDisplayName string      `json:"type_display_name"`
	Label           string      `json:"label,omitempty"`
	SourceTask      TaskSummary `json:"source_task"`
}
