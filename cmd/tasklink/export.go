package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/services"
)

type exportFlags struct {
	format string
	output string
	limit  int
}

type exporter struct {
	format string
	output string

	snapshot *services.Snapshot // json exports the whole graph
	tasks    []*entities.Task   // csv and markdown export task tables
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks and relationships to file",
		Long: `Exports data to JSON, CSV, or markdown format.

JSON exports the full graph (tasks, relationship types, relationships)
as a snapshot that "tasklink import --snapshot" can restore. CSV and
markdown export a task table only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultExportLimit, "Maximum number of tasks to export (csv, markdown)")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	ctx := cmd.Context()

	return withInternalDeps(func(d *internalDeps) error {
		e := &exporter{
			format: flags.format,
			output: flags.output,
		}

		if err := e.fetch(ctx, d, flags.limit); err != nil {
			return err
		}

		return e.export()
	})
}

func (e *exporter) fetch(ctx context.Context, d *internalDeps, limit int) error {
	if e.format == "json" {
		snap, err := d.snapshotService.Export(ctx)
		if err != nil {
			return fmt.Errorf("building snapshot: %w", err)
		}
		e.snapshot = snap
		return nil
	}

	result, err := d.TaskHandler.HandleList(ctx, limit, 0)
	if err != nil {
		return fmt.Errorf("listing tasks: %w", err)
	}
	if len(result.Tasks) == 0 {
		return fmt.Errorf("no tasks found to export")
	}
	e.tasks = result.Tasks
	return nil
}

func (e *exporter) export() (err error) {
	var w io.Writer
	var f *os.File

	if e.output != "" {
		f, err = os.OpenFile(e.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	} else {
		w = os.Stdout
	}

	if err := e.formatTo(w); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if e.output != "" {
		fmt.Printf("Exported %s to %s\n", e.describe(), e.output)
	}

	return nil
}

func (e *exporter) formatTo(w io.Writer) error {
	switch e.format {
	case "json":
		return formatSnapshot(w, e.snapshot)
	case "csv":
		return formatCSV(w, e.tasks)
	case "markdown":
		return formatMarkdown(w, e.tasks)
	default:
		return fmt.Errorf("unknown format: %s", e.format)
	}
}

func (e *exporter) describe() string {
	if e.snapshot != nil {
		return fmt.Sprintf("%d tasks and %d relationships", len(e.snapshot.Tasks), len(e.snapshot.Relationships))
	}
	return fmt.Sprintf("%d tasks", len(e.tasks))
}

func formatSnapshot(w io.Writer, snap *services.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snap)
}

func formatCSV(w io.Writer, tasks []*entities.Task) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "title", "description", "status", "created_at", "updated_at"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, t := range tasks {
		row := []string{
			t.ID,
			t.Title,
			t.Description,
			string(t.Status),
			t.CreatedAt.Format(time.RFC3339),
			t.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatMarkdown(w io.Writer, tasks []*entities.Task) error {
	if _, err := fmt.Fprintf(w, "# Exported Tasks\n\nTotal: %d tasks\n\n", len(tasks)); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| ID | Title | Status | Created |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|----|-------|--------|---------|\n"); err != nil {
		return err
	}

	for _, t := range tasks {
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			t.ID,
			escapeMarkdown(truncate(t.Title, 50)),
			t.Status,
			t.CreatedAt.Format("2006-01-02"),
		); err != nil {
			return err
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
