package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tasklink/tasklink/internal/domain/entities"
)

type auditFlags struct {
	action  string
	subject string
	limit   int
}

func newAuditCmd() *cobra.Command {
	var flags auditFlags

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit trail",
		Long: `Shows recorded mutations, newest first.

Examples:
  tasklink audit
  tasklink audit --action task.updated
  tasklink audit --subject TASK_ID`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.action, "action", "a", "", "Filter by action name (e.g. task.created)")
	cmd.Flags().StringVarP(&flags.subject, "subject", "s", "", "Show every entry for one subject id")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultAuditLimit, "Maximum number of entries")

	return cmd
}

func runAudit(cmd *cobra.Command, flags auditFlags) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		var entries []entities.AuditEntry
		var err error

		if flags.subject != "" {
			entries, err = d.AuditHandler.HandleForSubject(ctx, flags.subject)
		} else {
			entries, err = d.AuditHandler.HandleRecent(ctx, flags.action, flags.limit)
		}
		if err != nil {
			return fmt.Errorf("reading audit log: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No audit entries found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTION\tSUBJECT\tDETAILS")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.Action,
				e.SubjectID,
				truncate(detailsString(e.Details), 60),
			)
		}
		w.Flush()

		return nil
	})
}

func detailsString(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}
	data, err := json.Marshal(details)
	if err != nil {
		return ""
	}
	return string(data)
}
