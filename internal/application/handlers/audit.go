package handlers

import (
	"context"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/services"
)

// AuditHandler reads the audit trail.
type AuditHandler struct {
	service *services.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(service *services.AuditService) *AuditHandler {
	return &AuditHandler{
		service: service,
	}
}

// HandleRecent returns the latest audit entries, optionally filtered by
// action name.
func (h *AuditHandler) HandleRecent(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	return h.service.Recent(ctx, action, limit)
}

// HandleForSubject returns every audit entry recorded against one subject.
func (h *AuditHandler) HandleForSubject(ctx context.Context, subjectID string) ([]entities.AuditEntry, error) {
	return h.service.ForSubject(ctx, subjectID)
}
