package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklink/tasklink/internal/application/handlers"
	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/services"
	"github.com/tasklink/tasklink/internal/infrastructure/config"
	"github.com/tasklink/tasklink/internal/infrastructure/relationaldb/sqlite"
)

func setupServerTest(t *testing.T) *Server {
	t.Helper()

	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	types := services.NewRelationshipTypeService(repo)
	require.NoError(t, types.SeedDefaults(ctx))

	blocking := services.NewBlockingService(repo)
	tasks := services.NewTaskService(repo, blocking)
	rels := services.NewRelationshipService(repo, types)
	assembler := services.NewAssemblerService(repo)

	return NewServer("test",
		handlers.NewTaskHandler(tasks),
		handlers.NewRelationshipHandler(rels, assembler, repo),
		handlers.NewRelationshipTypeHandler(types),
		handlers.NewCheckHandler(tasks, blocking),
	)
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// decodeResult unwraps a successful tool result and unmarshals its JSON text.
func decodeResult(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

func errorText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return text.Text
}

func createTask(t *testing.T, s *Server, title, status string) entities.Task {
	t.Helper()
	args := map[string]any{"title": title}
	if status != "" {
		args["status"] = status
	}
	result, err := s.handleCreateTask(context.Background(), toolRequest("create_task", args))
	require.NoError(t, err)

	var task entities.Task
	decodeResult(t, result, &task)
	return task
}

func TestServer_CreateAndGetTask(t *testing.T) {
	s := setupServerTest(t)
	ctx := context.Background()

	task := createTask(t, s, "Ship the importer", "")
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, entities.StatusTodo, task.Status)

	result, err := s.handleGetTask(ctx, toolRequest("get_task", map[string]any{
		"task_id": task.ID,
	}))
	require.NoError(t, err)

	var envelope struct {
		Task          entities.Task                `json:"task"`
		Relationships []entities.RelationshipGroup `json:"relationships"`
	}
	decodeResult(t, result, &envelope)
	assert.Equal(t, task.ID, envelope.Task.ID)
	assert.Equal(t, "Ship the importer", envelope.Task.Title)
	assert.Empty(t, envelope.Relationships)
}

func TestServer_CreateTask_InvalidStatus(t *testing.T) {
	s := setupServerTest(t)

	result, err := s.handleCreateTask(context.Background(), toolRequest("create_task", map[string]any{
		"title":  "Bad status",
		"status": "archived",
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "unknown task status")
}

func TestServer_ManageRelationships_AddListDeleteFlow(t *testing.T) {
	s := setupServerTest(t)
	ctx := context.Background()

	design := createTask(t, s, "Design the schema", "inprogress")
	build := createTask(t, s, "Build the handler", "")

	// add
	result, err := s.handleManageRelationships(ctx, toolRequest("manage_task_relationships", map[string]any{
		"task_id":           design.ID,
		"action":            "add",
		"target_task_id":    build.ID,
		"relationship_type": "context",
		"note":              "schema decisions carry over",
	}))
	require.NoError(t, err)

	var rel entities.Relationship
	decodeResult(t, result, &rel)
	assert.Equal(t, design.ID, rel.SourceTaskID)
	assert.Equal(t, build.ID, rel.TargetTaskID)
	assert.Equal(t, "schema decisions carry over", rel.Note)

	// list from the source side
	result, err = s.handleManageRelationships(ctx, toolRequest("manage_task_relationships", map[string]any{
		"task_id":       design.ID,
		"action":        "list",
		"include_notes": true,
	}))
	require.NoError(t, err)

	var summaries []handlers.RelationshipSummary
	decodeResult(t, result, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, rel.ID, summaries[0].RelationshipID)
	assert.Equal(t, "context", summaries[0].TypeName)
	assert.Equal(t, "forward", summaries[0].Direction)
	assert.Equal(t, "provides context for", summaries[0].Label)
	assert.Equal(t, build.ID, summaries[0].Task.ID)
	assert.Equal(t, "schema decisions carry over", summaries[0].Note)

	// the target sees the same edge with the reverse label
	result, err = s.handleManageRelationships(ctx, toolRequest("manage_task_relationships", map[string]any{
		"task_id": build.ID,
		"action":  "list",
	}))
	require.NoError(t, err)

	summaries = nil
	decodeResult(t, result, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, "reverse", summaries[0].Direction)
	assert.Equal(t, "uses context from", summaries[0].Label)
	assert.Equal(t, design.ID, summaries[0].Task.ID)
	assert.Empty(t, summaries[0].Note)

	// delete
	result, err = s.handleManageRelationships(ctx, toolRequest("manage_task_relationships", map[string]any{
		"task_id":         design.ID,
		"action":          "delete",
		"relationship_id": rel.ID,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = s.handleManageRelationships(ctx, toolRequest("manage_task_relationships", map[string]any{
		"task_id": design.ID,
		"action":  "list",
	}))
	require.NoError(t, err)
	decodeResult(t, result, &summaries)
	assert.Empty(t, summaries)
}

func TestServer_ManageRelationships_InvalidAction(t *testing.T) {
	s := setupServerTest(t)

	task := createTask(t, s, "Lonely task", "")

	result, err := s.handleManageRelationships(context.Background(), toolRequest("manage_task_relationships", map[string]any{
		"task_id": task.ID,
		"action":  "merge",
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "invalid action")
}

func TestServer_CheckTransition(t *testing.T) {
	s := setupServerTest(t)
	ctx := context.Background()

	blocker := createTask(t, s, "Fix the login bug", "")
	release := createTask(t, s, "Ship the release", "")

	result, err := s.handleManageRelationships(ctx, toolRequest("manage_task_relationships", map[string]any{
		"task_id":           blocker.ID,
		"action":            "add",
		"target_task_id":    release.ID,
		"relationship_type": "blocked",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = s.handleCheckTransition(ctx, toolRequest("check_transition", map[string]any{
		"task_id": release.ID,
		"status":  "done",
	}))
	require.NoError(t, err)

	var decision services.TransitionDecision
	decodeResult(t, result, &decision)
	assert.False(t, decision.Permitted)
	require.Len(t, decision.Vetoes, 1)
	assert.Equal(t, blocker.ID, decision.Vetoes[0].SourceTask.ID)
	assert.Equal(t, "blocked by", decision.Vetoes[0].Label)

	// inprogress is not a gated status
	result, err = s.handleCheckTransition(ctx, toolRequest("check_transition", map[string]any{
		"task_id": release.ID,
		"status":  "inprogress",
	}))
	require.NoError(t, err)
	decision = services.TransitionDecision{}
	decodeResult(t, result, &decision)
	assert.True(t, decision.Permitted)
	assert.Empty(t, decision.Vetoes)
}

func TestServer_UpdateTask_RefusedWhileBlocked(t *testing.T) {
	s := setupServerTest(t)
	ctx := context.Background()

	blocker := createTask(t, s, "Write the migration", "")
	release := createTask(t, s, "Cut the release", "")

	result, err := s.handleManageRelationships(ctx, toolRequest("manage_task_relationships", map[string]any{
		"task_id":           blocker.ID,
		"action":            "add",
		"target_task_id":    release.ID,
		"relationship_type": "blocked",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = s.handleUpdateTask(ctx, toolRequest("update_task", map[string]any{
		"task_id": release.ID,
		"status":  "done",
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "blocked by Write the migration")
}

func TestServer_ReadTypes(t *testing.T) {
	s := setupServerTest(t)

	result, err := s.handleReadTypes(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "tasklink://types"},
	})
	require.NoError(t, err)
	require.Len(t, result, 1)

	content, ok := result[0].(mcp.TextResourceContents)
	require.True(t, ok, "expected TextResourceContents")
	assert.Equal(t, "application/json", content.MIMEType)
	assert.Equal(t, "tasklink://types", content.URI)

	var types []entities.RelationshipType
	require.NoError(t, json.Unmarshal([]byte(content.Text), &types))
	require.Len(t, types, 2)
	assert.Equal(t, "blocked", types[0].TypeName)
	assert.Equal(t, "context", types[1].TypeName)
	assert.True(t, types[0].IsSystem)
}
