// Package governance implements read access to the import audit trail.
package governance

import (
	"context"

	"duck-sheets/internal/domain"
)

// AuditService provides audit log operations.
type AuditService struct {
	repo domain.AuditRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// List returns a filtered page of audit log entries, newest first, and the
// token for the next page ("" on the last page).
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, string, error) {
	if filter.Status != nil {
		switch *filter.Status {
		case domain.AuditStatusAllowed, domain.AuditStatusFailed:
		default:
			return nil, "", domain.ErrValidation("status must be %s or %s", domain.AuditStatusAllowed, domain.AuditStatusFailed)
		}
	}
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	return entries, domain.NextPageToken(filter.Page.Offset(), filter.Page.Limit(), total), nil
}
