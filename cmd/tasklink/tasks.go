package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tasklink/tasklink/internal/application/handlers"
	"github.com/tasklink/tasklink/internal/domain/entities"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long:  "Create, list, inspect, update, or delete tasks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskList(cmd, DefaultListLimit, 0)
		},
	}

	cmd.AddCommand(newTaskAddCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskShowCmd())
	cmd.AddCommand(newTaskUpdateCmd())
	cmd.AddCommand(newTaskDeleteCmd())

	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var description, status string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskAdd(cmd, args[0], description, status)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Initial status (default todo)")

	return cmd
}

func runTaskAdd(cmd *cobra.Command, title, description, status string) error {
	ctx := cmd.Context()

	return withTaskHandler(func(handler *handlers.TaskHandler) error {
		task, err := handler.HandleCreate(ctx, title, description, status)
		if err != nil {
			return fmt.Errorf("creating task: %w", err)
		}

		fmt.Printf("Created task %s: %s\n", task.ID, task.Title)
		return nil
	})
}

func newTaskListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskList(cmd, limit, offset)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of tasks to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of tasks to skip")

	return cmd
}

func runTaskList(cmd *cobra.Command, limit, offset int) error {
	ctx := cmd.Context()

	return withTaskHandler(func(handler *handlers.TaskHandler) error {
		result, err := handler.HandleList(ctx, limit, offset)
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}

		if len(result.Tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tTITLE")
		for _, task := range result.Tasks {
			fmt.Fprintf(w, "%s\t%s\t%s\n", task.ID, task.Status, truncate(task.Title, 60))
		}
		w.Flush()

		fmt.Printf("\nShowing %d of %d tasks\n", len(result.Tasks), result.Total)
		return nil
	})
}

func newTaskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskShow(cmd, args[0])
		},
	}
}

func runTaskShow(cmd *cobra.Command, taskID string) error {
	ctx := cmd.Context()

	return withTaskHandler(func(handler *handlers.TaskHandler) error {
		task, err := handler.HandleGet(ctx, taskID)
		if err != nil {
			return fmt.Errorf("fetching task: %w", err)
		}

		fmt.Printf("ID:          %s\n", task.ID)
		fmt.Printf("Title:       %s\n", task.Title)
		fmt.Printf("Status:      %s\n", task.Status)
		if task.Description != "" {
			fmt.Printf("Description: %s\n", task.Description)
		}
		fmt.Printf("Created:     %s\n", task.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated:     %s\n", task.UpdatedAt.Format("2006-01-02 15:04:05"))

		return nil
	})
}

func newTaskUpdateCmd() *cobra.Command {
	var title, description, status string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task",
		Long:  "Updates the given fields. A status change is refused while blocking relationships hold the task.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := handlers.UpdateTaskParams{}
			if cmd.Flags().Changed("title") {
				params.Title = &title
			}
			if cmd.Flags().Changed("description") {
				params.Description = &description
			}
			if cmd.Flags().Changed("status") {
				params.Status = &status
			}
			return runTaskUpdate(cmd, args[0], params)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status")

	return cmd
}

func runTaskUpdate(cmd *cobra.Command, taskID string, params handlers.UpdateTaskParams) error {
	ctx := cmd.Context()

	return withTaskHandler(func(handler *handlers.TaskHandler) error {
		task, err := handler.HandleUpdate(ctx, taskID, params)
		if err != nil {
			var blocked *entities.BlockedTransitionError
			if errors.As(err, &blocked) {
				printBlockedTransition(blocked)
				return fmt.Errorf("transition blocked")
			}
			return fmt.Errorf("updating task: %w", err)
		}

		fmt.Printf("Updated task %s (status: %s)\n", task.ID, task.Status)
		return nil
	})
}

func printBlockedTransition(blocked *entities.BlockedTransitionError) {
	fmt.Printf("Cannot set status to %q. Blocked by:\n", blocked.RequestedStatus)
	for _, veto := range blocked.Vetoes {
		fmt.Printf("  - %s (%s, still %s)\n", veto.SourceTask.Title, veto.TypeDisplayName, veto.SourceTask.Status)
	}
}

func newTaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task and its relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskDelete(cmd, args[0])
		},
	}
}

func runTaskDelete(cmd *cobra.Command, taskID string) error {
	ctx := cmd.Context()

	return withTaskHandler(func(handler *handlers.TaskHandler) error {
		if err := handler.HandleDelete(ctx, taskID); err != nil {
			return fmt.Errorf("deleting task: %w", err)
		}

		fmt.Printf("Deleted task %s\n", taskID)
		return nil
	})
}

// truncate shortens a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
