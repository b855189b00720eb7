package domain

import "time"

// Audit actions and statuses written by the import service.
const (
	AuditActionImport = "INGESTION_IMPORT"

	AuditStatusAllowed = "ALLOWED"
	AuditStatusFailed  = "FAILED"
)

// AuditEntry represents a single audit log record.
type AuditEntry struct {
	ID            string
	PrincipalName string
	Action        string
	Status        string // "ALLOWED", "FAILED"
	DatasetID     *string
	Detail        *string
	CreatedAt     time.Time
}

// AuditFilter narrows an audit log listing. Nil fields do not filter.
type AuditFilter struct {
	PrincipalName *string
	Action        *string
	Status        *string
	DatasetID     *string
	Page          PageRequest
}
