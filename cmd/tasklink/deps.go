package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tasklink/tasklink/internal/application/handlers"
	"github.com/tasklink/tasklink/internal/domain/services"
	"github.com/tasklink/tasklink/internal/infrastructure/config"
	"github.com/tasklink/tasklink/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config              *config.Config
	TaskHandler         *handlers.TaskHandler
	TypeHandler         *handlers.RelationshipTypeHandler
	RelationshipHandler *handlers.RelationshipHandler
	CheckHandler        *handlers.CheckHandler
	AuditHandler        *handlers.AuditHandler
}

// internalDeps holds all dependencies including low-level components.
// Used internally by helper functions.
type internalDeps struct {
	Deps
	relationalDB    *sqlite.Repository
	registry        *services.RelationshipTypeService
	snapshotService *services.SnapshotService
	importService   *services.ImportService
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level
// components. Used by commands that need direct repository or service access.
func withInternalDeps(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	relationalDB, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer relationalDB.Close()

	// Ensure schema exists
	ctx := context.Background()
	if err := relationalDB.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	registry := services.NewRelationshipTypeService(relationalDB)

	// Auto-migrate: seed system types missing from older databases
	if err := registry.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seeding relationship types: %w", err)
	}

	blocking := services.NewBlockingService(relationalDB)
	assembler := services.NewAssemblerService(relationalDB)
	taskService := services.NewTaskService(relationalDB, blocking)
	relationshipService := services.NewRelationshipService(relationalDB, registry)
	auditService := services.NewAuditService(relationalDB)

	deps := &internalDeps{
		Deps: Deps{
			Config:              cfg,
			TaskHandler:         handlers.NewTaskHandler(taskService),
			TypeHandler:         handlers.NewRelationshipTypeHandler(registry),
			RelationshipHandler: handlers.NewRelationshipHandler(relationshipService, assembler, relationalDB),
			CheckHandler:        handlers.NewCheckHandler(taskService, blocking),
			AuditHandler:        handlers.NewAuditHandler(auditService),
		},
		relationalDB:    relationalDB,
		registry:        registry,
		snapshotService: services.NewSnapshotService(relationalDB),
		importService:   services.NewImportService(relationalDB),
	}

	return fn(deps)
}

// withTaskHandler provides access to the TaskHandler for task commands.
func withTaskHandler(fn func(*handlers.TaskHandler) error) error {
	return withDeps(func(d *Deps) error {
		return fn(d.TaskHandler)
	})
}

// withTypeHandler provides access to the RelationshipTypeHandler for type commands.
func withTypeHandler(fn func(*handlers.RelationshipTypeHandler) error) error {
	return withDeps(func(d *Deps) error {
		return fn(d.TypeHandler)
	})
}

// withRelationshipHandler provides access to the RelationshipHandler for link commands.
func withRelationshipHandler(fn func(*handlers.RelationshipHandler) error) error {
	return withDeps(func(d *Deps) error {
		return fn(d.RelationshipHandler)
	})
}
