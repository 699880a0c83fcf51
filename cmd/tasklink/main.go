// Package main provides the entry point for the tasklink CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "tasklink",
		Short:   "A task tracker with typed relationships and blocking workflow rules",
		Version: version,
	}

	rootCmd.AddCommand(
		newInitCmd(),
		newTaskCmd(),
		newTypeCmd(),
		newLinkCmd(),
		newRelationsCmd(),
		newCheckCmd(),
		newAuditCmd(),
		newExportCmd(),
		newImportCmd(),
		newMCPCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
