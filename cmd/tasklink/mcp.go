package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasklink/tasklink/internal/infrastructure/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the Model Context Protocol over stdio",
		Long: `Starts an MCP server on stdin/stdout so agents can manage tasks
and relationships. Intended to be launched by an MCP client, not
interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP()
		},
	}
}

func runMCP() error {
	return withDeps(func(d *Deps) error {
		s := mcp.NewServer(version, d.TaskHandler, d.RelationshipHandler, d.TypeHandler, d.CheckHandler)
		if err := s.Serve(); err != nil {
			return fmt.Errorf("serving mcp: %w", err)
		}
		return nil
	})
}
