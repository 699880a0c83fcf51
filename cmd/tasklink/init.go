package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasklink/tasklink/internal/application/handlers"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new tasklink workspace",
		Long:  "Creates a .tasklink directory with default configuration, the SQLite database, and the system relationship types.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	result, err := handlers.NewInitHandler().Handle(ctx, cwd)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	fmt.Printf("Created database: %s\n", result.DatabasePath)
	fmt.Printf("Seeded relationship types: %s\n", strings.Join(result.SeededTypes, ", "))
	fmt.Println("Tasklink initialized successfully!")

	return nil
}
