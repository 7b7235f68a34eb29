package adapters

import (
	"context"

	"freightdesk_backend/internal/audit"
	"freightdesk_backend/internal/quotations/service"

	"github.com/google/uuid"
)

// AuditReaderAdapter exposes the audit trail to the quotations module without
// a direct dependency on the audit package.
type AuditReaderAdapter struct {
	repo *audit.Repository
}

func NewAuditReaderAdapter(repo *audit.Repository) *AuditReaderAdapter {
	return &AuditReaderAdapter{repo: repo}
}

func (a *AuditReaderAdapter) ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]service.AuditEntry, error) {
	entries, err := a.repo.ListByResource(ctx, resourceType, resourceID)
	if err != nil {
		return nil, err
	}

	out := make([]service.AuditEntry, len(entries))
	for i, e := range entries {
		out[i] = service.AuditEntry{
			ID:           e.ID,
			Action:       e.Action,
			ActorID:      e.ActorID,
			ActorContact: e.ActorContact,
			BeforeFields: e.BeforeFields,
			AfterFields:  e.AfterFields,
			CreatedAt:    e.CreatedAt,
		}
	}
	return out, nil
}

// Compile-time check
var _ service.AuditReader = (*AuditReaderAdapter)(nil)
