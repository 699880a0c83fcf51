package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tasklink/tasklink/internal/domain/entities"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <task-id> [status]",
		Short: "Check whether a task can change status",
		Long: `With a status, evaluates whether the task could move there and lists the
vetoing relationships if not. Without one, lists everything currently
blocking the task.

Examples:
  tasklink check TASK_ID done
  tasklink check TASK_ID`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return runCheckTransition(cmd, args[0], args[1])
			}
			return runCheckBlocking(cmd, args[0])
		},
	}
}

func runCheckTransition(cmd *cobra.Command, taskID, status string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		decision, err := d.CheckHandler.HandleCheck(ctx, taskID, status)
		if err != nil {
			return fmt.Errorf("checking transition: %w", err)
		}

		if decision.Permitted {
			fmt.Printf("OK: task may move to %q\n", decision.RequestedStatus)
			return nil
		}

		fmt.Printf("BLOCKED: task may not move to %q\n", decision.RequestedStatus)
		printVetoes(decision.Vetoes)
		return nil
	})
}

func runCheckBlocking(cmd *cobra.Command, taskID string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		vetoes, err := d.CheckHandler.HandleBlocking(ctx, taskID)
		if err != nil {
			return fmt.Errorf("finding blockers: %w", err)
		}

		if len(vetoes) == 0 {
			fmt.Println("Nothing is blocking this task.")
			return nil
		}

		fmt.Printf("%d blocking relationship(s):\n", len(vetoes))
		printVetoes(vetoes)
		return nil
	})
}

func printVetoes(vetoes []entities.Veto) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tLABEL\tTASK\tSTATUS")
	for _, v := range vetoes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			v.TypeDisplayName, v.Label, truncate(v.SourceTask.Title, 40), v.SourceTask.Status)
	}
	w.Flush()
}
