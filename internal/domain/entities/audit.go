package entities

import "time"

// AuditEntry represents a logged action in the system. SubjectID points at
// the task, type, or relationship the action touched.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	SubjectID string         `json:"subject_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
