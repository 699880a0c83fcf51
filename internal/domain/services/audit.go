package services

import (
	"context"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/ports"
)

// AuditService reads the audit trail.
type AuditService struct {
	relationalDB ports.RelationalDB
}

// NewAuditService creates a new AuditService.
func NewAuditService(relationalDB ports.RelationalDB) *AuditService {
	return &AuditService{relationalDB: relationalDB}
}

// Recent returns the latest entries, newest first, optionally filtered by
// action name.
func (s *AuditService) Recent(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.relationalDB.FindAuditLogByAction(ctx, action, limit)
}

// ForSubject returns every entry recorded against one subject id.
func (s *AuditService) ForSubject(ctx context.Context, subjectID string) ([]entities.AuditEntry, error) {
	return s.relationalDB.FindAuditLog(ctx, subjectID)
}

// auditLog records an action for a completed mutation. Write failures are
// dropped; the primary operation's result stands.
func auditLog(ctx context.Context, db ports.RelationalDB, action, subjectID string, details map[string]any) {
	_ = db.LogAction(ctx, action, subjectID, details)
}
