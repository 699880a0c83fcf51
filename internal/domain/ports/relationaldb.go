package ports

import (
	"context"

	"github.com/tasklink/tasklink/internal/domain/entities"
)

// RelationalDB defines the interface for relational database operations.
// It is the system of record for tasks, relationship types, and
// relationships; referential integrity (cascade deletes, the unique edge
// triple, the self-reference ban) is enforced at this layer.
type RelationalDB interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Task operations

	// SaveTask inserts or updates a task.
	SaveTask(ctx context.Context, task *entities.Task) error

	// FindTaskByID finds a task by its ID. Returns nil if not found.
	FindTaskByID(ctx context.Context, taskID string) (*entities.Task, error)

	// ListTasks lists tasks ordered by creation time, newest first.
	ListTasks(ctx context.Context, limit, offset int) ([]*entities.Task, error)

	// DeleteTask deletes a task. Relationships touching it as source or
	// target are removed by the same operation.
	DeleteTask(ctx context.Context, taskID string) error

	// CountTasks returns the total number of tasks.
	CountTasks(ctx context.Context) (int, error)

	// Relationship type operations

	// SaveRelationshipType inserts or updates a relationship type by id.
	SaveRelationshipType(ctx context.Context, rt *entities.RelationshipType) error

	// FindRelationshipTypeByID finds a type by id. Returns nil if not found.
	FindRelationshipTypeByID(ctx context.Context, id string) (*entities.RelationshipType, error)

	// FindRelationshipTypeByName finds a type by its unique type_name.
	// Returns nil if not found.
	FindRelationshipTypeByName(ctx context.Context, typeName string) (*entities.RelationshipType, error)

	// ListRelationshipTypes lists types ordered by type_name. A non-empty
	// search filters by case-insensitive substring over type_name and
	// display_name.
	ListRelationshipTypes(ctx context.Context, search string) ([]entities.RelationshipType, error)

	// DeleteRelationshipType deletes a type. Relationships of that type are
	// removed by the same operation.
	DeleteRelationshipType(ctx context.Context, id string) error

	// Relationship operations

	// SaveRelationship inserts or updates a relationship by id.
	SaveRelationship(ctx context.Context, rel *entities.Relationship) error

	// FindRelationshipByID finds a relationship by id. Returns nil if not
	// found.
	FindRelationshipByID(ctx context.Context, id string) (*entities.Relationship, error)

	// FindRelationshipByTriple finds the relationship with the given
	// (source, target, type) triple. Returns nil if none exists.
	FindRelationshipByTriple(ctx context.Context, sourceTaskID, targetTaskID, typeID string) (*entities.Relationship, error)

	// ListRelationshipsForTask lists bare relationship rows where the task
	// is source or target.
	ListRelationshipsForTask(ctx context.Context, taskID string) ([]entities.Relationship, error)

	// ListRelationships lists relationships ordered by creation time,
	// oldest first. A negative limit returns all rows.
	ListRelationships(ctx context.Context, limit, offset int) ([]entities.Relationship, error)

	// ListRelationshipDetailsForTask lists the task's relationships joined
	// with their type and both endpoint tasks.
	ListRelationshipDetailsForTask(ctx context.Context, taskID string) ([]entities.RelationshipDetail, error)

	// DeleteRelationship deletes a relationship by id.
	DeleteRelationship(ctx context.Context, id string) error

	// Audit operations

	// LogAction logs an action to the audit log.
	LogAction(ctx context.Context, action string, subjectID string, details map[string]any) error

	// FindAuditLog finds audit log entries for a specific subject.
	FindAuditLog(ctx context.Context, subjectID string) ([]entities.AuditEntry, error)

	// FindAuditLogByAction finds recent audit log entries, optionally
	// filtered by action type. An empty action matches all entries.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
