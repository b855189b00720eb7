// Package repository implements the domain repository interfaces. Dataset and
// audit repositories use the SQLite metastore; the column repository uses
// DuckDB so it can join a materialization transaction.
package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"duck-sheets/internal/domain"
)

// timeLayout is how timestamps are stored in SQLite TEXT columns.
const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "resource not found"}
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate key") {
		return &domain.ConflictError{Message: "resource already exists"}
	}
	return err
}
