// Package entities contains core domain data structures.
package entities

import "time"

// Task represents a unit of work that can participate in relationships.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Summary returns the task's summary view.
func (t *Task) Summary() TaskSummary {
	return TaskSummary{ID: t.ID, Title: t.Title, Status: t.Status}
}
