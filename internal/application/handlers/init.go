// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/services"
	"github.com/tasklink/tasklink/internal/infrastructure/config"
	"github.com/tasklink/tasklink/internal/infrastructure/relationaldb/sqlite"
)

// InitHandler handles workspace initialization.
type InitHandler struct{}

// NewInitHandler creates a new init handler.
func NewInitHandler() *InitHandler {
	return &InitHandler{}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath   string
	DatabasePath string
	SeededTypes  []string
}

// Handle initializes the tasklink workspace: config file, database schema,
// and the system relationship types.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("tasklink already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	repo, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	registry := services.NewRelationshipTypeService(repo)
	if err := registry.SeedDefaults(ctx); err != nil {
		return nil, fmt.Errorf("seeding relationship types: %w", err)
	}

	return &InitResult{
		ConfigPath:   config.ConfigFilePath(basePath),
		DatabasePath: cfg.SQLite.Path,
		SeededTypes:  entities.DefaultTypeNames(),
	}, nil
}
