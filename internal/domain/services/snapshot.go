package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/ports"
)

// Snapshot is a portable dump of the whole graph: every task, every
// relationship type, and every relationship, with their ids.
type Snapshot struct {
	ExportedAt        time.Time                   `json:"exported_at"`
	Tasks             []entities.Task             `json:"tasks"`
	RelationshipTypes []entities.RelationshipType `json:"relationship_types"`
	Relationships     []entities.Relationship     `json:"relationships"`
}

// RestoreOptions controls snapshot restore behavior.
type RestoreOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing records
}

// RestoreResult summarizes what a restore wrote.
type RestoreResult struct {
	TypesImported         int
	TasksImported         int
	RelationshipsImported int
	Skipped               int
	Errors                []ImportError
}

// SnapshotService exports the graph to a snapshot and restores snapshots
// into the database.
type SnapshotService struct {
	relationalDB ports.RelationalDB
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(relationalDB ports.RelationalDB) *SnapshotService {
	return &SnapshotService{relationalDB: relationalDB}
}

// Export collects the full graph into a snapshot. Partial exports are not
// offered: a snapshot missing an endpoint task would not restore.
func (s *SnapshotService) Export(ctx context.Context) (*Snapshot, error) {
	count, err := s.relationalDB.CountTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}

	taskPtrs, err := s.relationalDB.ListTasks(ctx, count, 0)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	tasks := make([]entities.Task, 0, len(taskPtrs))
	for _, t := range taskPtrs {
		tasks = append(tasks, *t)
	}

	types, err := s.relationalDB.ListRelationshipTypes(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing relationship types: %w", err)
	}

	relationships, err := s.relationalDB.ListRelationships(ctx, -1, 0)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}

	return &Snapshot{
		ExportedAt:        time.Now(),
		Tasks:             tasks,
		RelationshipTypes: types,
		Relationships:     relationships,
	}, nil
}

// Restore writes a snapshot into the database. Relationship types are
// matched by type_name so a snapshot taken against one database restores
// cleanly into another whose seeded system types carry different ids:
// relationships are rewritten to the matching type's local id. Tasks match
// by id. Row-level failures are collected, not fatal.
func (s *SnapshotService) Restore(ctx context.Context, snap *Snapshot, opts RestoreOptions) (*RestoreResult, error) {
	result := &RestoreResult{}

	typeIDs, err := s.restoreTypes(ctx, snap.RelationshipTypes, opts, result)
	if err != nil {
		return nil, err
	}

	if err := s.restoreTasks(ctx, snap.Tasks, opts, result); err != nil {
		return nil, err
	}

	if err := s.restoreRelationships(ctx, snap.Relationships, typeIDs, opts, result); err != nil {
		return nil, err
	}

	if !opts.DryRun {
		auditLog(ctx, s.relationalDB, "snapshot.restored", "", map[string]any{
			"types":         result.TypesImported,
			"tasks":         result.TasksImported,
			"relationships": result.RelationshipsImported,
			"skipped":       result.Skipped,
		})
	}
	return result, nil
}

// restoreTypes writes the snapshot's types and returns the id translation
// map used to rewrite relationships.
func (s *SnapshotService) restoreTypes(ctx context.Context, types []entities.RelationshipType, opts RestoreOptions, result *RestoreResult) (map[string]string, error) {
	typeIDs := make(map[string]string, len(types))

	for i := range types {
		rt := types[i]

		existing, err := s.relationalDB.FindRelationshipTypeByName(ctx, rt.TypeName)
		if err != nil {
			return nil, fmt.Errorf("checking relationship type %s: %w", rt.TypeName, err)
		}
		if existing == nil {
			typeIDs[rt.ID] = rt.ID
			if opts.DryRun {
				result.TypesImported++
				continue
			}
			if err := s.relationalDB.SaveRelationshipType(ctx, &rt); err != nil {
				result.Errors = append(result.Errors, ImportError{
					Field: "relationship_type", Value: rt.TypeName, Message: err.Error(),
				})
				continue
			}
			result.TypesImported++
			continue
		}

		typeIDs[rt.ID] = existing.ID
		if opts.OnConflict != ConflictOverwrite {
			result.Skipped++
			continue
		}

		merged := rt
		merged.ID = existing.ID
		merged.IsSystem = existing.IsSystem
		merged.CreatedAt = existing.CreatedAt
		merged.UpdatedAt = time.Now()
		if opts.DryRun {
			result.TypesImported++
			continue
		}
		if err := s.relationalDB.SaveRelationshipType(ctx, &merged); err != nil {
			result.Errors = append(result.Errors, ImportError{
				Field: "relationship_type", Value: rt.TypeName, Message: err.Error(),
			})
			continue
		}
		result.TypesImported++
	}

	return typeIDs, nil
}

func (s *SnapshotService) restoreTasks(ctx context.Context, tasks []entities.Task, opts RestoreOptions, result *RestoreResult) error {
	for i := range tasks {
		task := tasks[i]

		existing, err := s.relationalDB.FindTaskByID(ctx, task.ID)
		if err != nil {
			return fmt.Errorf("checking task %s: %w", task.ID, err)
		}
		if existing != nil {
			if opts.OnConflict != ConflictOverwrite {
				result.Skipped++
				continue
			}
			task.CreatedAt = existing.CreatedAt
		}

		if opts.DryRun {
			result.TasksImported++
			continue
		}
		if err := s.relationalDB.SaveTask(ctx, &task); err != nil {
			result.Errors = append(result.Errors, ImportError{
				Field: "task", Value: task.ID, Message: err.Error(),
			})
			continue
		}
		result.TasksImported++
	}
	return nil
}

func (s *SnapshotService) restoreRelationships(ctx context.Context, relationships []entities.Relationship, typeIDs map[string]string, opts RestoreOptions, result *RestoreResult) error {
	for i := range relationships {
		rel := relationships[i]
		if mapped, ok := typeIDs[rel.RelationshipTypeID]; ok {
			rel.RelationshipTypeID = mapped
		}

		existing, err := s.relationalDB.FindRelationshipByTriple(ctx, rel.SourceTaskID, rel.TargetTaskID, rel.RelationshipTypeID)
		if err != nil {
			return fmt.Errorf("checking relationship %s: %w", rel.ID, err)
		}
		if existing != nil {
			if opts.OnConflict != ConflictOverwrite {
				result.Skipped++
				continue
			}
			rel.ID = existing.ID
			rel.CreatedAt = existing.CreatedAt
		}

		if opts.DryRun {
			result.RelationshipsImported++
			continue
		}
		if err := s.relationalDB.SaveRelationship(ctx, &rel); err != nil {
			result.Errors = append(result.Errors, ImportError{
				Field: "relationship", Value: rel.ID, Message: err.Error(),
			})
			continue
		}
		result.RelationshipsImported++
	}
	return nil
}
