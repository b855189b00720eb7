package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"duck-sheets/internal/domain"
)

// Compile-time check.
var _ domain.AuditRepository = (*AuditRepo)(nil)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = domain.NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, principal_name, action, status, dataset_id, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PrincipalName, e.Action, e.Status, nullStr(e.DatasetID), nullStr(e.Detail), formatTime(e.CreatedAt))
	return mapDBError(err)
}

func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(col string, v *string) {
		if v != nil {
			conds = append(conds, col+" = ?")
			args = append(args, *v)
		}
	}
	add("principal_name", filter.PrincipalName)
	add("action", filter.Action)
	add("status", filter.Status)
	add("dataset_id", filter.DatasetID)

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	// Count
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM audit_log"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit log: %w", err)
	}

	// List
	listArgs := append(append([]interface{}{}, args...), filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, principal_name, action, status, dataset_id, detail, created_at FROM audit_log`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit log: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e                 domain.AuditEntry
			datasetID, detail sql.NullString
			createdAt         string
		)
		if err := rows.Scan(&e.ID, &e.PrincipalName, &e.Action, &e.Status, &datasetID, &detail, &createdAt); err != nil {
			return nil, 0, err
		}
		e.DatasetID = strPtr(datasetID)
		e.Detail = strPtr(detail)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
