package domain

import (
	"context"
	"database/sql"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by repositories that must be
// able to participate in a caller-owned transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// DatasetRepository persists dataset catalog entries.
type DatasetRepository interface {
	Create(ctx context.Context, d *Dataset) (*Dataset, error)
	GetByID(ctx context.Context, id string) (*Dataset, error)
	List(ctx context.Context, page PageRequest) ([]Dataset, int64, error)
	Delete(ctx context.Context, id string) error
}

// ColumnRepository persists column descriptors. BulkCreate runs on the
// supplied executor so that it can share the materialization transaction.
type ColumnRepository interface {
	BulkCreate(ctx context.Context, tx DBTX, cols []Column) ([]Column, error)
	ListByDataset(ctx context.Context, datasetID string) ([]Column, error)
}

// AuditRepository provides operations for the audit log.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
}
