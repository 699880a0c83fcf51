package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tasklink/tasklink/internal/application/handlers"
)

func newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Manage relationships between tasks",
		Long:  "Create, list, update, or delete typed relationships between tasks.",
	}

	cmd.AddCommand(newLinkAddCmd())
	cmd.AddCommand(newLinkListCmd())
	cmd.AddCommand(newLinkUpdateCmd())
	cmd.AddCommand(newLinkDeleteCmd())

	return cmd
}

type linkAddFlags struct {
	typeName string
	typeID   string
	note     string
	data     string
}

func newLinkAddCmd() *cobra.Command {
	var flags linkAddFlags

	cmd := &cobra.Command{
		Use:   "add <source-task-id> <target-task-id>",
		Short: "Create a relationship between two tasks",
		Long: `Creates a typed relationship from the source task to the target task.

Examples:
  tasklink link add TASK_A TASK_B --type blocked
  tasklink link add TASK_A TASK_B --type context --note "shares the auth flow"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinkAdd(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.typeName, "type", "t", "", "Relationship type name")
	cmd.Flags().StringVar(&flags.typeID, "type-id", "", "Relationship type id (overrides --type)")
	cmd.Flags().StringVarP(&flags.note, "note", "n", "", "Free-form note stored on the relationship")
	cmd.Flags().StringVar(&flags.data, "data", "", "JSON payload stored on the relationship")

	return cmd
}

func runLinkAdd(cmd *cobra.Command, sourceID, targetID string, flags linkAddFlags) error {
	ctx := cmd.Context()

	return withRelationshipHandler(func(handler *handlers.RelationshipHandler) error {
		rel, err := handler.HandleAdd(ctx, handlers.AddRelationshipParams{
			SourceTaskID: sourceID,
			TargetTaskID: targetID,
			TypeID:       flags.typeID,
			TypeName:     flags.typeName,
			Note:         flags.note,
			Data:         flags.data,
		})
		if err != nil {
			return fmt.Errorf("adding relationship: %w", err)
		}

		fmt.Printf("Created relationship %s\n", rel.ID)
		return nil
	})
}

func newLinkListCmd() *cobra.Command {
	var withNotes bool

	cmd := &cobra.Command{
		Use:   "list <task-id>",
		Short: "List a task's relationships as flat rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinkList(cmd, args[0], withNotes)
		},
	}

	cmd.Flags().BoolVar(&withNotes, "notes", false, "Include notes in the listing")

	return cmd
}

func runLinkList(cmd *cobra.Command, taskID string, withNotes bool) error {
	ctx := cmd.Context()

	return withRelationshipHandler(func(handler *handlers.RelationshipHandler) error {
		summaries, err := handler.HandleList(ctx, taskID, withNotes)
		if err != nil {
			return fmt.Errorf("listing relationships: %w", err)
		}

		if len(summaries) == 0 {
			fmt.Printf("No relationships found for task: %s\n", taskID)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		if withNotes {
			fmt.Fprintln(w, "ID\tTYPE\tLABEL\tTASK\tSTATUS\tNOTE")
		} else {
			fmt.Fprintln(w, "ID\tTYPE\tLABEL\tTASK\tSTATUS")
		}
		for _, row := range summaries {
			label := row.Label
			if row.IsBlocking {
				label += " [blocking]"
			}
			if withNotes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					row.RelationshipID, row.TypeName, label,
					truncate(row.Task.Title, 40), row.Task.Status, truncate(row.Note, 40))
			} else {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					row.RelationshipID, row.TypeName, label,
					truncate(row.Task.Title, 40), row.Task.Status)
			}
		}
		w.Flush()

		return nil
	})
}

type linkUpdateFlags struct {
	taskID   string
	targetID string
	typeName string
	typeID   string
	note     string
	data     string
}

func newLinkUpdateCmd() *cobra.Command {
	var flags linkUpdateFlags

	cmd := &cobra.Command{
		Use:   "update <relationship-id>",
		Short: "Update a relationship",
		Long:  "Updates the given fields of a relationship. The --task flag names the task the edit runs against; it must be one of the relationship's endpoints.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := handlers.UpdateRelationshipParams{}
			if cmd.Flags().Changed("target") {
				params.TargetTaskID = &flags.targetID
			}
			if cmd.Flags().Changed("type") {
				params.TypeName = &flags.typeName
			}
			if cmd.Flags().Changed("type-id") {
				params.TypeID = &flags.typeID
			}
			if cmd.Flags().Changed("note") {
				params.Note = &flags.note
			}
			if cmd.Flags().Changed("data") {
				params.Data = &flags.data
			}
			return runLinkUpdate(cmd, args[0], flags.taskID, params)
		},
	}

	cmd.Flags().StringVar(&flags.taskID, "task", "", "Task the edit runs against (required)")
	cmd.Flags().StringVar(&flags.targetID, "target", "", "New target task id")
	cmd.Flags().StringVarP(&flags.typeName, "type", "t", "", "New relationship type name")
	cmd.Flags().StringVar(&flags.typeID, "type-id", "", "New relationship type id")
	cmd.Flags().StringVarP(&flags.note, "note", "n", "", "New note")
	cmd.Flags().StringVar(&flags.data, "data", "", "New JSON payload")
	_ = cmd.MarkFlagRequired("task")

	return cmd
}

func runLinkUpdate(cmd *cobra.Command, relationshipID, taskID string, params handlers.UpdateRelationshipParams) error {
	ctx := cmd.Context()

	return withRelationshipHandler(func(handler *handlers.RelationshipHandler) error {
		rel, err := handler.HandleUpdate(ctx, relationshipID, taskID, params)
		if err != nil {
			return fmt.Errorf("updating relationship: %w", err)
		}

		fmt.Printf("Updated relationship %s\n", rel.ID)
		return nil
	})
}

func newLinkDeleteCmd() *cobra.Command {
	var taskID string

	cmd := &cobra.Command{
		Use:   "delete <relationship-id>",
		Short: "Delete a relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinkDelete(cmd, args[0], taskID)
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "Task the delete runs against (required)")
	_ = cmd.MarkFlagRequired("task")

	return cmd
}

func runLinkDelete(cmd *cobra.Command, relationshipID, taskID string) error {
	ctx := cmd.Context()

	return withRelationshipHandler(func(handler *handlers.RelationshipHandler) error {
		if err := handler.HandleDelete(ctx, relationshipID, taskID); err != nil {
			return fmt.Errorf("deleting relationship: %w", err)
		}

		fmt.Printf("Deleted relationship %s\n", relationshipID)
		return nil
	})
}
