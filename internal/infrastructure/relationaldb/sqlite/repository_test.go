package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/infrastructure/config"
)

// setupTestRepo creates an in-memory SQLite repository for testing.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	err = repo.EnsureSchema(context.Background())
	require.NoError(t, err)

	return repo
}

// saveTestTask inserts a task row through the repository.
func saveTestTask(t *testing.T, repo *Repository, id, title string, status entities.TaskStatus, createdAt time.Time) {
	t.Helper()
	err := repo.SaveTask(context.Background(), &entities.Task{
		ID:        id,
		Title:     title,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
	require.NoError(t, err)
}

// saveTestType inserts a non-directional, non-blocking relationship type.
func saveTestType(t *testing.T, repo *Repository, id, typeName string) {
	t.Helper()
	now := time.Now()
	err := repo.SaveRelationshipType(context.Background(), &entities.RelationshipType{
		ID:          id,
		TypeName:    typeName,
		DisplayName: typeName,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
}

func TestNewRepository(t *testing.T) {
	t.Run("success with memory database", func(t *testing.T) {
		repo, err := NewRepository(config.SQLiteConfig{Path: ":memory:"})
		require.NoError(t, err)
		defer repo.Close()
		assert.NotNil(t, repo)
	})

	t.Run("error with empty path", func(t *testing.T) {
		_, err := NewRepository(config.SQLiteConfig{Path: ""})
		require.Error(t, err)
	})
}

func TestRepository_EnsureSchema(t *testing.T) {
	repo := setupTestRepo(t)

	// Verify tables exist
	tables := []string{"tasks", "relationship_types", "relationships", "audit_log"}
	for _, table := range tables {
		var count int
		err := repo.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestRepository_EnsureSchema_Idempotent(t *testing.T) {
	repo := setupTestRepo(t)

	// Should not error when called again
	err := repo.EnsureSchema(context.Background())
	require.NoError(t, err)
}

func TestRepository_Tasks(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	t.Run("save and find", func(t *testing.T) {
		now := time.Now()
		task := &entities.Task{
			ID:          "task-1",
			Title:       "Design schema",
			Description: "Tables and indexes",
			Status:      entities.StatusInProgress,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		err := repo.SaveTask(ctx, task)
		require.NoError(t, err)

		found, err := repo.FindTaskByID(ctx, "task-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Design schema", found.Title)
		assert.Equal(t, "Tables and indexes", found.Description)
		assert.Equal(t, entities.StatusInProgress, found.Status)
	})

	t.Run("find nonexistent returns nil", func(t *testing.T) {
		found, err := repo.FindTaskByID(ctx, "no-such-task")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("update keeps created_at", func(t *testing.T) {
		created := time.Now().Add(-time.Hour)
		saveTestTask(t, repo, "task-2", "Original", entities.StatusTodo, created)

		err := repo.SaveTask(ctx, &entities.Task{
			ID:        "task-2",
			Title:     "Renamed",
			Status:    entities.StatusDone,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		})
		require.NoError(t, err)

		found, err := repo.FindTaskByID(ctx, "task-2")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Renamed", found.Title)
		assert.Equal(t, entities.StatusDone, found.Status)
		assert.WithinDuration(t, created, found.CreatedAt, time.Second)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		err := repo.SaveTask(ctx, &entities.Task{
			ID:        "task-3",
			Title:     "Bad status",
			Status:    entities.TaskStatus("archived"),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		})
		require.Error(t, err)
		assert.True(t, entities.IsValidation(err))
	})

	t.Run("empty description stored as null", func(t *testing.T) {
		saveTestTask(t, repo, "task-4", "No description", entities.StatusTodo, time.Now())

		var desc *string
		err := repo.db.QueryRow(`SELECT description FROM tasks WHERE id = ?`, "task-4").Scan(&desc)
		require.NoError(t, err)
		assert.Nil(t, desc)
	})
}

func TestRepository_ListTasks(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	saveTestTask(t, repo, "task-a", "Oldest", entities.StatusTodo, base)
	saveTestTask(t, repo, "task-b", "Middle", entities.StatusTodo, base.Add(time.Minute))
	saveTestTask(t, repo, "task-c", "Newest", entities.StatusTodo, base.Add(2*time.Minute))

	t.Run("newest first", func(t *testing.T) {
		tasks, err := repo.ListTasks(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, "task-c", tasks[0].ID)
		assert.Equal(t, "task-b", tasks[1].ID)
		assert.Equal(t, "task-a", tasks[2].ID)
	})

	t.Run("limit and offset", func(t *testing.T) {
		tasks, err := repo.ListTasks(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "task-b", tasks[0].ID)
	})

	t.Run("count", func(t *testing.T) {
		count, err := repo.CountTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestRepository_DeleteTask(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	t.Run("delete existing", func(t *testing.T) {
		saveTestTask(t, repo, "task-del", "Short lived", entities.StatusTodo, time.Now())

		err := repo.DeleteTask(ctx, "task-del")
		require.NoError(t, err)

		found, err := repo.FindTaskByID(ctx, "task-del")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("delete nonexistent", func(t *testing.T) {
		err := repo.DeleteTask(ctx, "no-such-task")
		require.Error(t, err)
		assert.True(t, entities.IsNotFound(err))
	})

	t.Run("cascade removes relationships", func(t *testing.T) {
		saveTestTask(t, repo, "task-src", "Source", entities.StatusTodo, time.Now())
		saveTestTask(t, repo, "task-tgt", "Target", entities.StatusTodo, time.Now())
		saveTestType(t, repo, "rt-cascade", "related")

		now := time.Now()
		err := repo.SaveRelationship(ctx, &entities.Relationship{
			ID:                 "rel-cascade",
			SourceTaskID:       "task-src",
			TargetTaskID:       "task-tgt",
			RelationshipTypeID: "rt-cascade",
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		require.NoError(t, err)

		err = repo.DeleteTask(ctx, "task-src")
		require.NoError(t, err)

		found, err := repo.FindRelationshipByID(ctx, "rel-cascade")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestRepository_RelationshipTypes(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	t.Run("save and find by id", func(t *testing.T) {
		now := time.Now()
		rt := &entities.RelationshipType{
			ID:                       "rt-1",
			TypeName:                 "blocks",
			DisplayName:              "Blocks",
			Description:              "Source gates target",
			IsSystem:                 true,
			IsDirectional:            true,
			ForwardLabel:             "blocks",
			ReverseLabel:             "blocked by",
			EnforcesBlocking:         true,
			BlockingDisabledStatuses: entities.StatusSet{entities.StatusInReview, entities.StatusDone},
			BlockingSourceStatuses:   entities.StatusSet{entities.StatusTodo, entities.StatusInProgress},
			CreatedAt:                now,
			UpdatedAt:                now,
		}

		err := repo.SaveRelationshipType(ctx, rt)
		require.NoError(t, err)

		found, err := repo.FindRelationshipTypeByID(ctx, "rt-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "blocks", found.TypeName)
		assert.Equal(t, "Blocks", found.DisplayName)
		assert.True(t, found.IsSystem)
		assert.True(t, found.IsDirectional)
		assert.Equal(t, "blocks", found.ForwardLabel)
		assert.Equal(t, "blocked by", found.ReverseLabel)
		assert.True(t, found.EnforcesBlocking)
		assert.Equal(t, entities.StatusSet{entities.StatusInReview, entities.StatusDone}, found.BlockingDisabledStatuses)
		assert.Equal(t, entities.StatusSet{entities.StatusTodo, entities.StatusInProgress}, found.BlockingSourceStatuses)
	})

	t.Run("find by name", func(t *testing.T) {
		found, err := repo.FindRelationshipTypeByName(ctx, "blocks")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "rt-1", found.ID)
	})

	t.Run("find nonexistent returns nil", func(t *testing.T) {
		found, err := repo.FindRelationshipTypeByID(ctx, "no-such-id")
		require.NoError(t, err)
		assert.Nil(t, found)

		found, err = repo.FindRelationshipTypeByName(ctx, "no-such-name")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("update keeps type_name", func(t *testing.T) {
		now := time.Now()
		err := repo.SaveRelationshipType(ctx, &entities.RelationshipType{
			ID:          "rt-1",
			TypeName:    "renamed",
			DisplayName: "Still Blocks",
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		require.NoError(t, err)

		found, err := repo.FindRelationshipTypeByID(ctx, "rt-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "blocks", found.TypeName)
		assert.Equal(t, "Still Blocks", found.DisplayName)
		assert.False(t, found.IsDirectional)
		assert.False(t, found.EnforcesBlocking)
	})

	t.Run("duplicate type_name conflicts", func(t *testing.T) {
		now := time.Now()
		err := repo.SaveRelationshipType(ctx, &entities.RelationshipType{
			ID:          "rt-2",
			TypeName:    "blocks",
			DisplayName: "Another",
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		require.Error(t, err)
		assert.True(t, entities.IsConflict(err))
	})

	t.Run("directional without labels rejected", func(t *testing.T) {
		now := time.Now()
		err := repo.SaveRelationshipType(ctx, &entities.RelationshipType{
			ID:            "rt-3",
			TypeName:      "half_directional",
			DisplayName:   "Half",
			IsDirectional: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		require.Error(t, err)
		assert.True(t, entities.IsValidation(err))
	})

	t.Run("blocking without status sets rejected", func(t *testing.T) {
		now := time.Now()
		err := repo.SaveRelationshipType(ctx, &entities.RelationshipType{
			ID:               "rt-4",
			TypeName:         "half_blocking",
			DisplayName:      "Half",
			EnforcesBlocking: true,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		require.Error(t, err)
		assert.True(t, entities.IsValidation(err))
	})
}

func TestRepository_ListRelationshipTypes(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	saveTestType(t, repo, "rt-rel", "related")
	saveTestType(t, repo, "rt-dup", "duplicate_of")
	saveTestType(t, repo, "rt-ctx", "context")

	t.Run("ordered by type_name", func(t *testing.T) {
		types, err := repo.ListRelationshipTypes(ctx, "")
		require.NoError(t, err)
		require.Len(t, types, 3)
		assert.Equal(t, "context", types[0].TypeName)
		assert.Equal(t, "duplicate_of", types[1].TypeName)
		assert.Equal(t, "related", types[2].TypeName)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		types, err := repo.ListRelationshipTypes(ctx, "DUP")
		require.NoError(t, err)
		require.Len(t, types, 1)
		assert.Equal(t, "duplicate_of", types[0].TypeName)
	})

	t.Run("search matches display name", func(t *testing.T) {
		now := time.Now()
		err := repo.SaveRelationshipType(ctx, &entities.RelationshipType{
			ID:          "rt-disp",
			TypeName:    "supersedes",
			DisplayName: "Replaces Older Work",
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		require.NoError(t, err)

		types, err := repo.ListRelationshipTypes(ctx, "older")
		require.NoError(t, err)
		require.Len(t, types, 1)
		assert.Equal(t, "supersedes", types[0].TypeName)
	})

	t.Run("no match returns empty", func(t *testing.T) {
		types, err := repo.ListRelationshipTypes(ctx, "zzz")
		require.NoError(t, err)
		assert.Empty(t, types)
	})
}

func TestRepository_DeleteRelationshipType(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	t.Run("cascade removes relationships", func(t *testing.T) {
		saveTestTask(t, repo, "task-1", "One", entities.StatusTodo, time.Now())
		saveTestTask(t, repo, "task-2", "Two", entities.StatusTodo, time.Now())
		saveTestType(t, repo, "rt-del", "ephemeral")

		now := time.Now()
		err := repo.SaveRelationship(ctx, &entities.Relationship{
			ID:                 "rel-1",
			SourceTaskID:       "task-1",
			TargetTaskID:       "task-2",
			RelationshipTypeID: "rt-del",
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		require.NoError(t, err)

		err = repo.DeleteRelationshipType(ctx, "rt-del")
		require.NoError(t, err)

		found, err := repo.FindRelationshipTypeByID(ctx, "rt-del")
		require.NoError(t, err)
		assert.Nil(t, found)

		rel, err := repo.FindRelationshipByID(ctx, "rel-1")
		require.NoError(t, err)
		assert.Nil(t, rel)
	})

	t.Run("delete nonexistent", func(t *testing.T) {
		err := repo.DeleteRelationshipType(ctx, "no-such-type")
		require.Error(t, err)
		assert.True(t, entities.IsNotFound(err))
	})
}

func TestRepository_Relationships(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	saveTestTask(t, repo, "task-1", "One", entities.StatusTodo, time.Now())
	saveTestTask(t, repo, "task-2", "Two", entities.StatusTodo, time.Now())
	saveTestTask(t, repo, "task-3", "Three", entities.StatusTodo, time.Now())
	saveTestType(t, repo, "rt-1", "related")

	t.Run("save and find by id", func(t *testing.T) {
		now := time.Now()
		rel := &entities.Relationship{
			ID:                 "rel-1",
			SourceTaskID:       "task-1",
			TargetTaskID:       "task-2",
			RelationshipTypeID: "rt-1",
			Data:               json.RawMessage(`{"weight": 3}`),
			Note:               "shared migration",
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		err := repo.SaveRelationship(ctx, rel)
		require.NoError(t, err)

		found, err := repo.FindRelationshipByID(ctx, "rel-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "task-1", found.SourceTaskID)
		assert.Equal(t, "task-2", found.TargetTaskID)
		assert.Equal(t, "rt-1", found.RelationshipTypeID)
		assert.JSONEq(t, `{"weight": 3}`, string(found.Data))
		assert.Equal(t, "shared migration", found.Note)
	})

	t.Run("find by triple", func(t *testing.T) {
		found, err := repo.FindRelationshipByTriple(ctx, "task-1", "task-2", "rt-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "rel-1", found.ID)

		// Reverse direction is a different triple
		found, err = repo.FindRelationshipByTriple(ctx, "task-2", "task-1", "rt-1")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("self reference rejected", func(t *testing.T) {
		now := time.Now()
		err := repo.SaveRelationship(ctx, &entities.Relationship{
			ID:                 "rel-self",
			SourceTaskID:       "task-1",
			TargetTaskID:       "task-1",
			RelationshipTypeID: "rt-1",
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		require.Error(t, err)
		assert.True(t, entities.IsValidation(err))
	})

	t.Run("duplicate triple conflicts", func(t *testing.T) {
		now := time.Now()
		err := repo.SaveRelationship(ctx, &entities.Relationship{
			ID:                 "rel-dup",
			SourceTaskID:       "task-1",
			TargetTaskID:       "task-2",
			RelationshipTypeID: "rt-1",
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		require.Error(t, err)
		assert.True(t, entities.IsConflict(err))
	})

	t.Run("unknown endpoint rejected", func(t *testing.T) {
		now := time.Now()
		err := repo.SaveRelationship(ctx, &entities.Relationship{
			ID:                 "rel-ghost",
			SourceTaskID:       "task-1",
			TargetTaskID:       "no-such-task",
			RelationshipTypeID: "rt-1",
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		require.Error(t, err)
		assert.True(t, entities.IsNotFound(err))
	})

	t.Run("update retargets edge", func(t *testing.T) {
		now := time.Now()
		err := repo.SaveRelationship(ctx, &entities.Relationship{
			ID:                 "rel-1",
			SourceTaskID:       "task-1",
			TargetTaskID:       "task-3",
			RelationshipTypeID: "rt-1",
			Note:               "moved",
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		require.NoError(t, err)

		found, err := repo.FindRelationshipByID(ctx, "rel-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "task-3", found.TargetTaskID)
		assert.Equal(t, "moved", found.Note)
		assert.Nil(t, found.Data)
	})

	t.Run("delete", func(t *testing.T) {
		err := repo.DeleteRelationship(ctx, "rel-1")
		require.NoError(t, err)

		found, err := repo.FindRelationshipByID(ctx, "rel-1")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("delete nonexistent", func(t *testing.T) {
		err := repo.DeleteRelationship(ctx, "no-such-rel")
		require.Error(t, err)
		assert.True(t, entities.IsNotFound(err))
	})
}

func TestRepository_ListRelationships(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	saveTestTask(t, repo, "task-1", "One", entities.StatusTodo, time.Now())
	saveTestTask(t, repo, "task-2", "Two", entities.StatusTodo, time.Now())
	saveTestTask(t, repo, "task-3", "Three", entities.StatusTodo, time.Now())
	saveTestType(t, repo, "rt-1", "related")

	base := time.Now().Add(-time.Hour)
	edges := []struct {
		id, source, target string
	}{
		{"rel-a", "task-1", "task-2"},
		{"rel-b", "task-2", "task-3"},
		{"rel-c", "task-3", "task-1"},
	}
	for i, e := range edges {
		created := base.Add(time.Duration(i) * time.Minute)
		err := repo.SaveRelationship(ctx, &entities.Relationship{
			ID:                 e.id,
			SourceTaskID:       e.source,
			TargetTaskID:       e.target,
			RelationshipTypeID: "rt-1",
			CreatedAt:          created,
			UpdatedAt:          created,
		})
		require.NoError(t, err)
	}

	t.Run("oldest first", func(t *testing.T) {
		rels, err := repo.ListRelationships(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, rels, 3)
		assert.Equal(t, "rel-a", rels[0].ID)
		assert.Equal(t, "rel-b", rels[1].ID)
		assert.Equal(t, "rel-c", rels[2].ID)
	})

	t.Run("negative limit returns all", func(t *testing.T) {
		rels, err := repo.ListRelationships(ctx, -1, 0)
		require.NoError(t, err)
		assert.Len(t, rels, 3)
	})

	t.Run("limit and offset", func(t *testing.T) {
		rels, err := repo.ListRelationships(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, rels, 1)
		assert.Equal(t, "rel-b", rels[0].ID)
	})

	t.Run("for task from both sides", func(t *testing.T) {
		rels, err := repo.ListRelationshipsForTask(ctx, "task-1")
		require.NoError(t, err)
		require.Len(t, rels, 2)
		assert.Equal(t, "rel-a", rels[0].ID)
		assert.Equal(t, "rel-c", rels[1].ID)
	})

	t.Run("for task with no edges", func(t *testing.T) {
		saveTestTask(t, repo, "task-lonely", "Lonely", entities.StatusTodo, time.Now())

		rels, err := repo.ListRelationshipsForTask(ctx, "task-lonely")
		require.NoError(t, err)
		assert.Empty(t, rels)
	})
}

func TestRepository_ListRelationshipDetailsForTask(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	saveTestTask(t, repo, "task-1", "Write docs", entities.StatusTodo, time.Now())
	saveTestTask(t, repo, "task-2", "Build API", entities.StatusInProgress, time.Now())

	now := time.Now()
	err := repo.SaveRelationshipType(ctx, &entities.RelationshipType{
		ID:                       "rt-blocks",
		TypeName:                 "blocks",
		DisplayName:              "Blocks",
		IsDirectional:            true,
		ForwardLabel:             "blocks",
		ReverseLabel:             "blocked by",
		EnforcesBlocking:         true,
		BlockingDisabledStatuses: entities.StatusSet{entities.StatusDone},
		BlockingSourceStatuses:   entities.StatusSet{entities.StatusInProgress},
		CreatedAt:                now,
		UpdatedAt:                now,
	})
	require.NoError(t, err)

	err = repo.SaveRelationship(ctx, &entities.Relationship{
		ID:                 "rel-1",
		SourceTaskID:       "task-2",
		TargetTaskID:       "task-1",
		RelationshipTypeID: "rt-blocks",
		Note:               "API first",
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	require.NoError(t, err)

	t.Run("joins type and both endpoints", func(t *testing.T) {
		details, err := repo.ListRelationshipDetailsForTask(ctx, "task-1")
		require.NoError(t, err)
		require.Len(t, details, 1)

		d := details[0]
		assert.Equal(t, "rel-1", d.Relationship.ID)
		assert.Equal(t, "API first", d.Relationship.Note)
		assert.Equal(t, "blocks", d.Type.TypeName)
		assert.True(t, d.Type.EnforcesBlocking)
		assert.Equal(t, entities.StatusSet{entities.StatusDone}, d.Type.BlockingDisabledStatuses)
		assert.Equal(t, entities.StatusSet{entities.StatusInProgress}, d.Type.BlockingSourceStatuses)
		assert.Equal(t, "task-2", d.SourceTask.ID)
		assert.Equal(t, "Build API", d.SourceTask.Title)
		assert.Equal(t, entities.StatusInProgress, d.SourceTask.Status)
		assert.Equal(t, "task-1", d.TargetTask.ID)
		assert.Equal(t, entities.StatusTodo, d.TargetTask.Status)
	})

	t.Run("same rows from either endpoint", func(t *testing.T) {
		details, err := repo.ListRelationshipDetailsForTask(ctx, "task-2")
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.Equal(t, "rel-1", details[0].Relationship.ID)
	})

	t.Run("unrelated task gets nothing", func(t *testing.T) {
		saveTestTask(t, repo, "task-3", "Standalone", entities.StatusTodo, time.Now())

		details, err := repo.ListRelationshipDetailsForTask(ctx, "task-3")
		require.NoError(t, err)
		assert.Empty(t, details)
	})
}

func TestRepository_AuditLog(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	t.Run("log action with details", func(t *testing.T) {
		err := repo.LogAction(ctx, "task.created", "task-1", map[string]any{
			"title":  "Design schema",
			"status": "todo",
		})
		require.NoError(t, err)
	})

	t.Run("log action without subject", func(t *testing.T) {
		err := repo.LogAction(ctx, "snapshot.exported", "", map[string]any{
			"tasks": 5,
		})
		require.NoError(t, err)
	})

	t.Run("log action without details", func(t *testing.T) {
		err := repo.LogAction(ctx, "task.deleted", "task-2", nil)
		require.NoError(t, err)
	})

	t.Run("find by subject", func(t *testing.T) {
		entries, err := repo.FindAuditLog(ctx, "task-1")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "task.created", entries[0].Action)
		assert.Equal(t, "Design schema", entries[0].Details["title"])
	})

	t.Run("find by action", func(t *testing.T) {
		entries, err := repo.FindAuditLogByAction(ctx, "snapshot.exported", 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Empty(t, entries[0].SubjectID)
	})

	t.Run("empty action returns all", func(t *testing.T) {
		entries, err := repo.FindAuditLogByAction(ctx, "", 10)
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})

	t.Run("find by action with limit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			err := repo.LogAction(ctx, "relationship.created", "", nil)
			require.NoError(t, err)
		}

		entries, err := repo.FindAuditLogByAction(ctx, "relationship.created", 3)
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})
}

func TestRepository_Path(t *testing.T) {
	repo, err := NewRepository(config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer repo.Close()

	assert.Equal(t, ":memory:", repo.Path())
}
