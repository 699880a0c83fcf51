package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/ports"
	"github.com/tasklink/tasklink/internal/infrastructure/parsers"
)

// ConflictStrategy defines how to handle existing records during import.
type ConflictStrategy string

const (
	// ConflictSkip skips records that already exist (by ID).
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite overwrites existing records with new data.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing tasks
}

// ImportError represents an error for a specific record during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []ImportError
}

// ImportService imports tasks parsed from external files.
type ImportService struct {
	relationalDB ports.RelationalDB
}

// NewImportService creates a new import service.
func NewImportService(relationalDB ports.RelationalDB) *ImportService {
	return &ImportService{relationalDB: relationalDB}
}

// Import validates and imports raw tasks into the database.
func (s *ImportService) Import(ctx context.Context, rawTasks []parsers.RawTask, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	// Validate all tasks first
	validTasks, validationErrors := validateTasks(rawTasks)
	result.Errors = validationErrors

	if len(validTasks) == 0 {
		return result, nil
	}

	tasks := convertToTasks(validTasks)

	if opts.DryRun {
		result.Imported = len(tasks)
		return result, nil
	}

	imported, skipped, err := s.saveWithConflictHandling(ctx, tasks, opts.OnConflict)
	if err != nil {
		return nil, fmt.Errorf("saving tasks: %w", err)
	}

	result.Imported = imported
	result.Skipped = skipped

	auditLog(ctx, s.relationalDB, "tasks.imported", "", map[string]any{
		"imported": imported,
		"skipped":  skipped,
	})
	return result, nil
}

// validateTasks validates raw tasks and returns valid ones with any errors.
func validateTasks(rawTasks []parsers.RawTask) ([]parsers.RawTask, []ImportError) {
	valid := make([]parsers.RawTask, 0, len(rawTasks))
	var errors []ImportError

	for i := range rawTasks {
		raw := &rawTasks[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		if err := validateRawTask(raw, lineNum); err != nil {
			errors = append(errors, *err)
			continue
		}

		valid = append(valid, *raw)
	}

	return valid, errors
}

// validateRawTask validates a single raw task and returns an error if invalid.
func validateRawTask(raw *parsers.RawTask, lineNum int) *ImportError {
	if raw.Title == "" {
		return &ImportError{Line: lineNum, Field: "title", Message: "missing required field: title"}
	}

	if raw.Status != "" && !entities.TaskStatus(raw.Status).IsValid() {
		return &ImportError{
			Line:    lineNum,
			Field:   "status",
			Value:   raw.Status,
			Message: fmt.Sprintf("invalid status %q (valid: todo, inprogress, inreview, done, cancelled)", raw.Status),
		}
	}

	return nil
}

// convertToTasks converts raw tasks to domain entities.
func convertToTasks(rawTasks []parsers.RawTask) []entities.Task {
	tasks := make([]entities.Task, 0, len(rawTasks))
	now := time.Now()

	for i := range rawTasks {
		raw := &rawTasks[i]
		id := raw.ID
		if id == "" {
			id = uuid.New().String()
		}

		status := entities.TaskStatus(raw.Status)
		if raw.Status == "" {
			status = entities.StatusTodo
		}

		tasks = append(tasks, entities.Task{
			ID:          id,
			Title:       raw.Title,
			Description: raw.Description,
			Status:      status,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	return tasks
}

// saveWithConflictHandling saves tasks honoring the conflict strategy.
func (s *ImportService) saveWithConflictHandling(ctx context.Context, tasks []entities.Task, onConflict ConflictStrategy) (imported, skipped int, err error) {
	for i := range tasks {
		task := tasks[i]

		existing, err := s.relationalDB.FindTaskByID(ctx, task.ID)
		if err != nil {
			return imported, skipped, fmt.Errorf("checking task %s: %w", task.ID, err)
		}
		if existing != nil {
			if onConflict != ConflictOverwrite {
				skipped++
				continue
			}
			// Overwrite keeps the original creation time
			task.CreatedAt = existing.CreatedAt
		}

		if err := s.relationalDB.SaveTask(ctx, &task); err != nil {
			return imported, skipped, fmt.Errorf("saving task %s: %w", task.ID, err)
		}
		imported++
	}

	return imported, skipped, nil
}
