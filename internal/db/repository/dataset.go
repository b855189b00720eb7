package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"duck-sheets/internal/domain"
)

// Compile-time check.
var _ domain.DatasetRepository = (*DatasetRepo)(nil)

// DatasetRepo stores dataset catalog entries in the SQLite metastore.
type DatasetRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewDatasetRepo creates a DatasetRepo. readDB may be the same pool as writeDB.
func NewDatasetRepo(writeDB, readDB *sql.DB) *DatasetRepo {
	if readDB == nil {
		readDB = writeDB
	}
	return &DatasetRepo{writeDB: writeDB, readDB: readDB}
}

func (r *DatasetRepo) Create(ctx context.Context, d *domain.Dataset) (*domain.Dataset, error) {
	if d.ID == "" {
		d.ID = domain.NewID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	_, err := r.writeDB.ExecContext(ctx,
		`INSERT INTO datasets (id, name, created_by, source_file, created_at) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.CreatedBy, d.SourceFile, formatTime(d.CreatedAt))
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, d.ID)
}

func (r *DatasetRepo) GetByID(ctx context.Context, id string) (*domain.Dataset, error) {
	row := r.writeDB.QueryRowContext(ctx,
		`SELECT id, name, created_by, source_file, created_at FROM datasets WHERE id = ?`, id)
	d, err := scanDataset(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("dataset %q not found", id)
		}
		return nil, err
	}
	return d, nil
}

func (r *DatasetRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Dataset, int64, error) {
	var total int64
	if err := r.readDB.QueryRowContext(ctx, `SELECT count(*) FROM datasets`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count datasets: %w", err)
	}

	rows, err := r.readDB.QueryContext(ctx,
		`SELECT id, name, created_by, source_file, created_at FROM datasets
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

func (r *DatasetRepo) Delete(ctx context.Context, id string) error {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("dataset %q not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDataset(s rowScanner) (*domain.Dataset, error) {
	var (
		d         domain.Dataset
		createdAt string
	)
	if err := s.Scan(&d.ID, &d.Name, &d.CreatedBy, &d.SourceFile, &createdAt); err != nil {
		return nil, err
	}
	d.CreatedAt = parseTime(createdAt)
	return &d, nil
}
