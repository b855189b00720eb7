package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"duck-sheets/internal/domain"
)

// Compile-time check.
var _ domain.ColumnRepository = (*ColumnRepo)(nil)

// ColumnRepo stores column descriptors in the DuckDB dataset_columns table.
type ColumnRepo struct {
	db *sql.DB
}

// NewColumnRepo creates a ColumnRepo on the DuckDB handle.
func NewColumnRepo(duckDB *sql.DB) *ColumnRepo {
	return &ColumnRepo{db: duckDB}
}

// BulkCreate inserts cols on tx, filling in ids, kind, and timestamps where
// they are unset. Positions follow slice order when every position is zero.
func (r *ColumnRepo) BulkCreate(ctx context.Context, tx domain.DBTX, cols []domain.Column) ([]domain.Column, error) {
	if tx == nil {
		tx = r.db
	}
	now := time.Now().UTC()
	out := make([]domain.Column, len(cols))
	for i, c := range cols {
		if c.ID == "" {
			c.ID = domain.NewID()
		}
		if c.Kind == "" {
			c.Kind = domain.ColumnKindStatic
		}
		if !c.Kind.Valid() {
			return nil, domain.ErrValidation("invalid column kind %q", c.Kind)
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO dataset_columns (id, dataset_id, name, storage_name, type, kind, visible, position, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.DatasetID, c.Name, c.StorageName, c.Type, string(c.Kind), c.Visible, c.Position, c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert column %q: %w", c.Name, mapDBError(err))
		}
		out[i] = c
	}
	return out, nil
}

// ListByDataset returns the column descriptors of a dataset ordered by position.
func (r *ColumnRepo) ListByDataset(ctx context.Context, datasetID string) ([]domain.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, dataset_id, name, storage_name, type, kind, visible, position, created_at
		 FROM dataset_columns WHERE dataset_id = ? ORDER BY position`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var cols []domain.Column
	for rows.Next() {
		var (
			c    domain.Column
			kind string
		)
		if err := rows.Scan(&c.ID, &c.DatasetID, &c.Name, &c.StorageName, &c.Type, &kind, &c.Visible, &c.Position, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Kind = domain.ColumnKind(kind)
		cols = append(cols, c)
	}
	return cols, rows.Err()
}
