// Package mcp adapts tasklink to the Model Context Protocol so agents can
// manage tasks and their relationships over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tasklink/tasklink/internal/application/handlers"
	"github.com/tasklink/tasklink/internal/domain/entities"
)

// Server exposes the task graph as MCP tools and resources.
type Server struct {
	mcpServer     *server.MCPServer
	tasks         *handlers.TaskHandler
	relationships *handlers.RelationshipHandler
	types         *handlers.RelationshipTypeHandler
	check         *handlers.CheckHandler
}

// NewServer creates a new MCP server instance.
func NewServer(version string, tasks *handlers.TaskHandler, relationships *handlers.RelationshipHandler, types *handlers.RelationshipTypeHandler, check *handlers.CheckHandler) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"tasklink",
			version,
		),
		tasks:         tasks,
		relationships: relationships,
		types:         types,
		check:         check,
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	// tasklink://types
	s.mcpServer.AddResource(mcp.NewResource(
		"tasklink://types",
		"Relationship Type Catalog",
		mcp.WithResourceDescription("Every relationship type with its labels and blocking configuration"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadTypes)

	// tasklink://tasks
	s.mcpServer.AddResource(mcp.NewResource(
		"tasklink://tasks",
		"Recent Tasks",
		mcp.WithResourceDescription("The most recently created tasks"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadTasks)
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"create_task",
		mcp.WithDescription("Create a new task. Status defaults to todo."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("description", mcp.Description("Longer task description")),
		mcp.WithString("status", mcp.Description("Initial status (todo, inprogress, inreview, done, cancelled)")),
	), s.handleCreateTask)

	s.mcpServer.AddTool(mcp.NewTool(
		"list_tasks",
		mcp.WithDescription("List tasks, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of tasks to return (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Number of tasks to skip")),
	), s.handleListTasks)

	s.mcpServer.AddTool(mcp.NewTool(
		"get_task",
		mcp.WithDescription("Fetch a task by id together with its grouped relationships."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("The task id")),
	), s.handleGetTask)

	s.mcpServer.AddTool(mcp.NewTool(
		"update_task",
		mcp.WithDescription("Update a task's title, description, or status. Status changes are refused while blocking relationships hold the task."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("The task id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("status", mcp.Description("New status (todo, inprogress, inreview, done, cancelled)")),
	), s.handleUpdateTask)

	s.mcpServer.AddTool(mcp.NewTool(
		"delete_task",
		mcp.WithDescription("Delete a task and every relationship touching it."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("The task id")),
	), s.handleDeleteTask)

	s.mcpServer.AddTool(mcp.NewTool(
		"manage_task_relationships",
		mcp.WithDescription("Add, update, delete, or list relationships for a task."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("The task the operation runs against")),
		mcp.WithString("action", mcp.Required(), mcp.Description("One of: add, update, delete, list")),
		mcp.WithString("relationship_id", mcp.Description("Relationship id (update and delete)")),
		mcp.WithString("target_task_id", mcp.Description("The other task (add, or retarget on update)")),
		mcp.WithString("relationship_type", mcp.Description("Relationship type name, e.g. blocked or context")),
		mcp.WithString("note", mcp.Description("Free-form note stored on the relationship")),
		mcp.WithString("data", mcp.Description("Structured JSON payload stored on the relationship")),
		mcp.WithBoolean("include_notes", mcp.Description("Include notes in list output")),
	), s.handleManageRelationships)

	s.mcpServer.AddTool(mcp.NewTool(
		"list_relationship_types",
		mcp.WithDescription("List relationship types, optionally filtered by a case-insensitive search."),
		mcp.WithString("search", mcp.Description("Substring matched against type_name and display_name")),
	), s.handleListTypes)

	s.mcpServer.AddTool(mcp.NewTool(
		"check_transition",
		mcp.WithDescription("Check whether a task could move to a status without performing the move. Returns the vetoing relationships if not."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("The task id")),
		mcp.WithString("status", mcp.Required(), mcp.Description("The status to test")),
	), s.handleCheckTransition)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"tasklink-aware",
		mcp.WithPromptDescription("Provides context about tasklink concepts (tasks, relationship types, blocking)"),
	), s.handleGetPrompt)
}

// --- Resource handlers ---

func (s *Server) handleReadTypes(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	types, err := s.types.HandleList(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list relationship types: %w", err)
	}

	data, err := json.MarshalIndent(types, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal relationship types: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleReadTasks(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	result, err := s.tasks.HandleList(ctx, 50, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tasks: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// --- Tool handlers ---

func (s *Server) handleCreateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := mcp.ParseString(request, "title", "")
	description := mcp.ParseString(request, "description", "")
	status := mcp.ParseString(request, "status", "")

	task, err := s.tasks.HandleCreate(ctx, title, description, status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(task)
}

func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(mcp.ParseFloat64(request, "limit", 50))
	offset := int(mcp.ParseFloat64(request, "offset", 0))

	result, err := s.tasks.HandleList(ctx, limit, offset)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleGetTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := mcp.ParseString(request, "task_id", "")

	task, err := s.tasks.HandleGet(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	groups, err := s.relationships.HandleGroups(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(struct {
		Task          *entities.Task               `json:"task"`
		Relationships []entities.RelationshipGroup `json:"relationships"`
	}{Task: task, Relationships: groups})
}

func (s *Server) handleUpdateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := mcp.ParseString(request, "task_id", "")

	args := request.GetArguments()
	var params handlers.UpdateTaskParams
	if _, ok := args["title"]; ok {
		title := mcp.ParseString(request, "title", "")
		params.Title = &title
	}
	if _, ok := args["description"]; ok {
		description := mcp.ParseString(request, "description", "")
		params.Description = &description
	}
	if _, ok := args["status"]; ok {
		status := mcp.ParseString(request, "status", "")
		params.Status = &status
	}

	task, err := s.tasks.HandleUpdate(ctx, taskID, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(task)
}

func (s *Server) handleDeleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := mcp.ParseString(request, "task_id", "")

	if err := s.tasks.HandleDelete(ctx, taskID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted task %s", taskID)), nil
}

func (s *Server) handleManageRelationships(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := mcp.ParseString(request, "task_id", "")
	action := mcp.ParseString(request, "action", "")

	switch action {
	case "add":
		return s.handleAddRelationship(ctx, request, taskID)
	case "update":
		return s.handleUpdateRelationship(ctx, request, taskID)
	case "delete":
		relationshipID := mcp.ParseString(request, "relationship_id", "")
		if err := s.relationships.HandleDelete(ctx, relationshipID, taskID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted relationship %s", relationshipID)), nil
	case "list":
		includeNotes := mcp.ParseBoolean(request, "include_notes", false)
		summaries, err := s.relationships.HandleList(ctx, taskID, includeNotes)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(summaries)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q (valid: add, update, delete, list)", action)), nil
	}
}

func (s *Server) handleAddRelationship(ctx context.Context, request mcp.CallToolRequest, taskID string) (*mcp.CallToolResult, error) {
	rel, err := s.relationships.HandleAdd(ctx, handlers.AddRelationshipParams{
		SourceTaskID: taskID,
		TargetTaskID: mcp.ParseString(request, "target_task_id", ""),
		TypeName:     mcp.ParseString(request, "relationship_type", ""),
		Note:         mcp.ParseString(request, "note", ""),
		Data:         mcp.ParseString(request, "data", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rel)
}

func (s *Server) handleUpdateRelationship(ctx context.Context, request mcp.CallToolRequest, taskID string) (*mcp.CallToolResult, error) {
	relationshipID := mcp.ParseString(request, "relationship_id", "")

	args := request.GetArguments()
	var params handlers.UpdateRelationshipParams
	if _, ok := args["target_task_id"]; ok {
		target := mcp.ParseString(request, "target_task_id", "")
		params.TargetTaskID = &target
	}
	if _, ok := args["relationship_type"]; ok {
		typeName := mcp.ParseString(request, "relationship_type", "")
		params.TypeName = &typeName
	}
	if _, ok := args["note"]; ok {
		note := mcp.ParseString(request, "note", "")
		params.Note = &note
	}
	if _, ok := args["data"]; ok {
		data := mcp.ParseString(request, "data", "")
		params.Data = &data
	}

	rel, err := s.relationships.HandleUpdate(ctx, relationshipID, taskID, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rel)
}

func (s *Server) handleListTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	search := mcp.ParseString(request, "search", "")

	types, err := s.types.HandleList(ctx, search)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(types)
}

func (s *Server) handleCheckTransition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := mcp.ParseString(request, "task_id", "")
	status := mcp.ParseString(request, "status", "")

	decision, err := s.check.HandleCheck(ctx, taskID, status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(decision)
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "tasklink-aware" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are interacting with tasklink, a task relationship engine.

Concepts:
- Task: a unit of work with a status (todo, inprogress, inreview, done, cancelled).
- Relationship: a typed edge between two tasks, optionally carrying a note and JSON data.
- Relationship type: defines whether edges are directional (forward/reverse labels) and whether they block status transitions.
- Blocking: a "blocked" edge from task A to task B stops B from moving to a disabled status while A is still open.

Use 'manage_task_relationships' to wire tasks together. Before moving a task
to inreview or done, 'check_transition' tells you whether blockers remain.
If an update is refused, resolve or remove the blocking relationships first.
`

	return mcp.NewGetPromptResult(
		"tasklink-aware",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshaling result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
