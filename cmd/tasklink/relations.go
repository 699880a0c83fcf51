package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasklink/tasklink/internal/application/handlers"
	"github.com/tasklink/tasklink/internal/domain/entities"
)

type relationsFlags struct {
	format string
}

func newRelationsCmd() *cobra.Command {
	var flags relationsFlags

	cmd := &cobra.Command{
		Use:   "relations <task-id>",
		Short: "Show a task's relationships grouped by type",
		Long: `Shows every relationship touching a task, grouped by relationship type.
Directional types split into forward and reverse entries with their labels.

Examples:
  tasklink relations TASK_ID
  tasklink relations TASK_ID --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelations(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "tree", "Output format: tree, json")

	return cmd
}

func runRelations(cmd *cobra.Command, taskID string, flags relationsFlags) error {
	ctx := cmd.Context()

	validFormats := map[string]bool{"tree": true, "json": true}
	if !validFormats[flags.format] {
		return fmt.Errorf("invalid format: %s (valid: tree, json)", flags.format)
	}

	return withRelationshipHandler(func(handler *handlers.RelationshipHandler) error {
		groups, err := handler.HandleGroups(ctx, taskID)
		if err != nil {
			return fmt.Errorf("assembling relationships: %w", err)
		}

		if len(groups) == 0 {
			fmt.Printf("No relationships found for task: %s\n", taskID)
			return nil
		}

		if flags.format == "json" {
			data, err := json.MarshalIndent(groups, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printRelationGroups(taskID, groups)
		return nil
	})
}

func printRelationGroups(taskID string, groups []entities.RelationshipGroup) {
	fmt.Printf("%s\n", taskID)

	for _, g := range groups {
		header := g.Type.DisplayName
		if g.Blocked {
			header += " [blocking]"
		}
		fmt.Printf("+- %s\n", header)

		printGroupItems("forward", g.Forward)
		printGroupItems("reverse", g.Reverse)
		printGroupItems("", g.Undirected)
	}
}

func printGroupItems(direction string, items []entities.GroupItem) {
	for _, item := range items {
		label := item.Label
		if label == "" {
			label = "linked to"
		}
		marker := ""
		if item.IsBlocking {
			marker = " [blocking]"
		}
		if direction != "" {
			fmt.Printf("|  %s: %s (%s)%s\n", label, item.Task.Title, item.Task.Status, marker)
		} else {
			fmt.Printf("|  %s %s (%s)%s\n", label, item.Task.Title, item.Task.Status, marker)
		}
	}
}
