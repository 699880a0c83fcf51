// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/infrastructure/config"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Tasks (the endpoints relationships connect)
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'todo'
			CHECK (status IN ('todo', 'inprogress', 'inreview', 'done', 'cancelled')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at);

	-- Relationship types (the catalog of link kinds)
	CREATE TABLE IF NOT EXISTS relationship_types (
		id TEXT PRIMARY KEY,
		type_name TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		description TEXT,
		is_system INTEGER NOT NULL DEFAULT 0,
		is_directional INTEGER NOT NULL DEFAULT 0,
		forward_label TEXT,
		reverse_label TEXT,
		enforces_blocking INTEGER NOT NULL DEFAULT 0,
		blocking_disabled_statuses TEXT,
		blocking_source_statuses TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CHECK ((is_directional = 0 AND forward_label IS NULL AND reverse_label IS NULL)
			OR (is_directional = 1 AND forward_label IS NOT NULL AND reverse_label IS NOT NULL)),
		CHECK ((enforces_blocking = 0 AND blocking_disabled_statuses IS NULL AND blocking_source_statuses IS NULL)
			OR (enforces_blocking = 1 AND blocking_disabled_statuses IS NOT NULL AND blocking_source_statuses IS NOT NULL))
	);

	-- Relationships (typed edges between two tasks)
	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		source_task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		target_task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		relationship_type_id TEXT NOT NULL REFERENCES relationship_types(id) ON DELETE CASCADE,
		data TEXT,
		note TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CHECK (source_task_id != target_task_id),
		UNIQUE (source_task_id, target_task_id, relationship_type_id)
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_task_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_task_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(relationship_type_id);

	-- Audit log (tracks all mutations)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		subject_id TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_subject ON audit_log(subject_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// mapConstraintError translates a SQLite constraint failure into the domain
// error kinds so a racing writer gets the same classification the
// service-level pre-checks produce. Returns nil for non-constraint errors.
func mapConstraintError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return entities.Conflictf("already exists")
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return entities.NotFoundf("referenced task or relationship type not found")
	case strings.Contains(msg, "CHECK constraint failed"):
		return entities.Validationf("constraint check failed: %v", err)
	}
	return nil
}

// Task operations

// SaveTask inserts or updates a task.
func (r *Repository) SaveTask(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			status = excluded.status,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		stringToNullString(task.Description),
		string(task.Status),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if derr := mapConstraintError(err); derr != nil {
			return derr
		}
		return fmt.Errorf("saving task: %w", err)
	}
	return nil
}

// FindTaskByID finds a task by its ID. Returns nil if not found.
func (r *Repository) FindTaskByID(ctx context.Context, taskID string) (*entities.Task, error) {
	query := `
		SELECT id, title, description, status, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`
	row := r.db.QueryRowContext(ctx, query, taskID)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks lists tasks ordered by creation time, newest first.
func (r *Repository) ListTasks(ctx context.Context, limit, offset int) ([]*entities.Task, error) {
	query := `
		SELECT id, title, description, status, created_at, updated_at
		FROM tasks
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Task, 0, limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

// DeleteTask deletes a task. Relationships touching it as source or target
// are removed by the foreign-key cascade in the same statement.
func (r *Repository) DeleteTask(ctx context.Context, taskID string) error {
	query := `DELETE FROM tasks WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, taskID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return entities.NotFoundf("task not found: %s", taskID)
	}
	return nil
}

// CountTasks returns the total number of tasks.
func (r *Repository) CountTasks(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM tasks`
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return count, nil
}

// Relationship type operations

// SaveRelationshipType inserts or updates a relationship type by id.
func (r *Repository) SaveRelationshipType(ctx context.Context, rt *entities.RelationshipType) error {
	disabled, err := statusSetToNullString(rt.BlockingDisabledStatuses)
	if err != nil {
		return fmt.Errorf("marshaling blocking_disabled_statuses: %w", err)
	}
	source, err := statusSetToNullString(rt.BlockingSourceStatuses)
	if err != nil {
		return fmt.Errorf("marshaling blocking_source_statuses: %w", err)
	}

	query := `
		INSERT INTO relationship_types (
			id, type_name, display_name, description, is_system, is_directional,
			forward_label, reverse_label, enforces_blocking,
			blocking_disabled_statuses, blocking_source_statuses,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			description = excluded.description,
			is_directional = excluded.is_directional,
			forward_label = excluded.forward_label,
			reverse_label = excluded.reverse_label,
			enforces_blocking = excluded.enforces_blocking,
			blocking_disabled_statuses = excluded.blocking_disabled_statuses,
			blocking_source_statuses = excluded.blocking_source_statuses,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		rt.ID,
		rt.TypeName,
		rt.DisplayName,
		stringToNullString(rt.Description),
		rt.IsSystem,
		rt.IsDirectional,
		stringToNullString(rt.ForwardLabel),
		stringToNullString(rt.ReverseLabel),
		rt.EnforcesBlocking,
		disabled,
		source,
		rt.CreatedAt,
		rt.UpdatedAt,
	)
	if err != nil {
		if derr := mapConstraintError(err); derr != nil {
			return derr
		}
		return fmt.Errorf("saving relationship type: %w", err)
	}
	return nil
}

// FindRelationshipTypeByID finds a type by id. Returns nil if not found.
func (r *Repository) FindRelationshipTypeByID(ctx context.Context, id string) (*entities.RelationshipType, error) {
	query := relationshipTypeSelect + ` WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	rt, err := scanRelationshipType(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// FindRelationshipTypeByName finds a type by its unique type_name.
// Returns nil if not found.
func (r *Repository) FindRelationshipTypeByName(ctx context.Context, typeName string) (*entities.RelationshipType, error) {
	query := relationshipTypeSelect + ` WHERE type_name = ?`
	row := r.db.QueryRowContext(ctx, query, typeName)

	rt, err := scanRelationshipType(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// ListRelationshipTypes lists types ordered by type_name. A non-empty search
// filters by case-insensitive substring over type_name and display_name.
func (r *Repository) ListRelationshipTypes(ctx context.Context, search string) ([]entities.RelationshipType, error) {
	query := relationshipTypeSelect + ` ORDER BY type_name ASC`
	args := []any{}
	if search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
		query = relationshipTypeSelect + `
			WHERE lower(type_name) LIKE ? OR lower(display_name) LIKE ?
			ORDER BY type_name ASC
		`
		args = []any{pattern, pattern}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationship types: %w", err)
	}
	defer rows.Close()

	types := make([]entities.RelationshipType, 0, 16)
	for rows.Next() {
		rt, err := scanRelationshipType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *rt)
	}
	return types, rows.Err()
}

// DeleteRelationshipType deletes a type. Relationships of that type are
// removed by the foreign-key cascade in the same statement.
func (r *Repository) DeleteRelationshipType(ctx context.Context, id string) error {
	query := `DELETE FROM relationship_types WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting relationship type: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return entities.NotFoundf("relationship type not found: %s", id)
	}
	return nil
}

// Relationship operations

// SaveRelationship inserts or updates a relationship by id. A write that
// collides with an existing (source, target, type) triple fails with a
// conflict error from the unique index, which also settles concurrent
// same-triple creates: exactly one insert wins.
func (r *Repository) SaveRelationship(ctx context.Context, rel *entities.Relationship) error {
	query := `
		INSERT INTO relationships (
			id, source_task_id, target_task_id, relationship_type_id,
			data, note, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_task_id = excluded.source_task_id,
			target_task_id = excluded.target_task_id,
			relationship_type_id = excluded.relationship_type_id,
			data = excluded.data,
			note = excluded.note,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		rel.ID,
		rel.SourceTaskID,
		rel.TargetTaskID,
		rel.RelationshipTypeID,
		rawJSONToNullString(rel.Data),
		stringToNullString(rel.Note),
		rel.CreatedAt,
		rel.UpdatedAt,
	)
	if err != nil {
		if derr := mapConstraintError(err); derr != nil {
			return derr
		}
		return fmt.Errorf("saving relationship: %w", err)
	}
	return nil
}

// FindRelationshipByID finds a relationship by id. Returns nil if not found.
func (r *Repository) FindRelationshipByID(ctx context.Context, id string) (*entities.Relationship, error) {
	query := relationshipSelect + ` WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	rel, err := scanRelationship(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// FindRelationshipByTriple finds the relationship with the given
// (source, target, type) triple. Returns nil if none exists.
func (r *Repository) FindRelationshipByTriple(ctx context.Context, sourceTaskID, targetTaskID, typeID string) (*entities.Relationship, error) {
	query := relationshipSelect + `
		WHERE source_task_id = ? AND target_task_id = ? AND relationship_type_id = ?
	`
	row := r.db.QueryRowContext(ctx, query, sourceTaskID, targetTaskID, typeID)

	rel, err := scanRelationship(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// ListRelationshipsForTask lists bare relationship rows where the task is
// source or target.
func (r *Repository) ListRelationshipsForTask(ctx context.Context, taskID string) ([]entities.Relationship, error) {
	query := relationshipSelect + `
		WHERE source_task_id = ? OR target_task_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, taskID, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	relationships := make([]entities.Relationship, 0, 16)
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		relationships = append(relationships, *rel)
	}
	return relationships, rows.Err()
}

// ListRelationships lists relationships ordered by creation time, oldest
// first. A negative limit returns all rows.
func (r *Repository) ListRelationships(ctx context.Context, limit, offset int) ([]entities.Relationship, error) {
	query := relationshipSelect + `
		ORDER BY created_at ASC, id ASC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	relationships := make([]entities.Relationship, 0, 16)
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		relationships = append(relationships, *rel)
	}
	return relationships, rows.Err()
}

// ListRelationshipDetailsForTask lists the task's relationships joined with
// their type and both endpoint tasks.
func (r *Repository) ListRelationshipDetailsForTask(ctx context.Context, taskID string) ([]entities.RelationshipDetail, error) {
	query := `
		SELECT
			r.id, r.source_task_id, r.target_task_id, r.relationship_type_id,
			r.data, r.note, r.created_at, r.updated_at,
			t.id, t.type_name, t.display_name, t.description, t.is_system,
			t.is_directional, t.forward_label, t.reverse_label, t.enforces_blocking,
			t.blocking_disabled_statuses, t.blocking_source_statuses,
			t.created_at, t.updated_at,
			st.id, st.title, st.status,
			tt.id, tt.title, tt.status
		FROM relationships r
		JOIN relationship_types t ON t.id = r.relationship_type_id
		JOIN tasks st ON st.id = r.source_task_id
		JOIN tasks tt ON tt.id = r.target_task_id
		WHERE r.source_task_id = ? OR r.target_task_id = ?
		ORDER BY r.created_at ASC, r.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, taskID, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying relationship details: %w", err)
	}
	defer rows.Close()

	details := make([]entities.RelationshipDetail, 0, 16)
	for rows.Next() {
		var (
			d                    entities.RelationshipDetail
			data, note           sql.NullString
			description          sql.NullString
			fwd, rev             sql.NullString
			disabled, source     sql.NullString
			srcStatus, tgtStatus string
		)
		if err := rows.Scan(
			&d.Relationship.ID,
			&d.Relationship.SourceTaskID,
			&d.Relationship.TargetTaskID,
			&d.Relationship.RelationshipTypeID,
			&data,
			&note,
			&d.Relationship.CreatedAt,
			&d.Relationship.UpdatedAt,
			&d.Type.ID,
			&d.Type.TypeName,
			&d.Type.DisplayName,
			&description,
			&d.Type.IsSystem,
			&d.Type.IsDirectional,
			&fwd,
			&rev,
			&d.Type.EnforcesBlocking,
			&disabled,
			&source,
			&d.Type.CreatedAt,
			&d.Type.UpdatedAt,
			&d.SourceTask.ID,
			&d.SourceTask.Title,
			&srcStatus,
			&d.TargetTask.ID,
			&d.TargetTask.Title,
			&tgtStatus,
		); err != nil {
			return nil, fmt.Errorf("scanning relationship detail: %w", err)
		}

		d.Relationship.Data = nullStringToRawJSON(data)
		d.Relationship.Note = note.String
		d.Type.Description = description.String
		d.Type.ForwardLabel = fwd.String
		d.Type.ReverseLabel = rev.String
		if d.Type.BlockingDisabledStatuses, err = statusSetFromNullString(disabled); err != nil {
			return nil, err
		}
		if d.Type.BlockingSourceStatuses, err = statusSetFromNullString(source); err != nil {
			return nil, err
		}
		d.SourceTask.Status = entities.TaskStatus(srcStatus)
		d.TargetTask.Status = entities.TaskStatus(tgtStatus)

		details = append(details, d)
	}
	return details, rows.Err()
}

// DeleteRelationship deletes a relationship by id.
func (r *Repository) DeleteRelationship(ctx context.Context, id string) error {
	query := `DELETE FROM relationships WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return entities.NotFoundf("relationship not found: %s", id)
	}
	return nil
}

// Audit operations

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, action string, subjectID string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `INSERT INTO audit_log (action, subject_id, details) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, action, stringToNullString(subjectID), detailsJSON)
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog finds audit log entries for a specific subject.
func (r *Repository) FindAuditLog(ctx context.Context, subjectID string) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, subject_id, details, created_at
		FROM audit_log
		WHERE subject_id = ?
		ORDER BY created_at DESC, id DESC
	`
	return r.queryAuditLog(ctx, query, subjectID)
}

// FindAuditLogByAction finds recent audit log entries, optionally filtered
// by action type.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, subject_id, details, created_at
		FROM audit_log
		WHERE action = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	args := []any{action, limit}
	if action == "" {
		query = `
			SELECT id, action, subject_id, details, created_at
			FROM audit_log
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		`
		args = []any{limit}
	}
	return r.queryAuditLog(ctx, query, args...)
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	for rows.Next() {
		var entry entities.AuditEntry
		var subjectID, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&subjectID,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.SubjectID = subjectID.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Scan helpers

// rowScanner abstracts sql.Row and sql.Rows for the shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

const relationshipTypeSelect = `
	SELECT id, type_name, display_name, description, is_system, is_directional,
		forward_label, reverse_label, enforces_blocking,
		blocking_disabled_statuses, blocking_source_statuses,
		created_at, updated_at
	FROM relationship_types
`

const relationshipSelect = `
	SELECT id, source_task_id, target_task_id, relationship_type_id,
		data, note, created_at, updated_at
	FROM relationships
`

func scanTask(row rowScanner) (*entities.Task, error) {
	var task entities.Task
	var description sql.NullString
	var status string

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	task.Description = description.String
	task.Status = entities.TaskStatus(status)
	return &task, nil
}

func scanRelationshipType(row rowScanner) (*entities.RelationshipType, error) {
	var rt entities.RelationshipType
	var description, fwd, rev, disabled, source sql.NullString

	err := row.Scan(
		&rt.ID,
		&rt.TypeName,
		&rt.DisplayName,
		&description,
		&rt.IsSystem,
		&rt.IsDirectional,
		&fwd,
		&rev,
		&rt.EnforcesBlocking,
		&disabled,
		&source,
		&rt.CreatedAt,
		&rt.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning relationship type: %w", err)
	}

	rt.Description = description.String
	rt.ForwardLabel = fwd.String
	rt.ReverseLabel = rev.String
	if rt.BlockingDisabledStatuses, err = statusSetFromNullString(disabled); err != nil {
		return nil, err
	}
	if rt.BlockingSourceStatuses, err = statusSetFromNullString(source); err != nil {
		return nil, err
	}
	return &rt, nil
}

func scanRelationship(row rowScanner) (*entities.Relationship, error) {
	var rel entities.Relationship
	var data, note sql.NullString

	err := row.Scan(
		&rel.ID,
		&rel.SourceTaskID,
		&rel.TargetTaskID,
		&rel.RelationshipTypeID,
		&data,
		&note,
		&rel.CreatedAt,
		&rel.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning relationship: %w", err)
	}

	rel.Data = nullStringToRawJSON(data)
	rel.Note = note.String
	return &rel, nil
}

// Null conversion helpers

// stringToNullString converts an empty string to NULL.
func stringToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// rawJSONToNullString converts an empty JSON payload to NULL.
func rawJSONToNullString(data json.RawMessage) sql.NullString {
	if len(data) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

// nullStringToRawJSON converts a NULL column back to an empty payload.
func nullStringToRawJSON(ns sql.NullString) json.RawMessage {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.RawMessage(ns.String)
}

// statusSetToNullString serializes a status set as a JSON array, NULL when
// the set is empty.
func statusSetToNullString(ss entities.StatusSet) (sql.NullString, error) {
	if len(ss) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(ss)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// statusSetFromNullString deserializes a JSON status array, nil when NULL.
func statusSetFromNullString(ns sql.NullString) (entities.StatusSet, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var ss entities.StatusSet
	if err := json.Unmarshal([]byte(ns.String), &ss); err != nil {
		return nil, fmt.Errorf("unmarshaling status set: %w", err)
	}
	return ss, nil
}
