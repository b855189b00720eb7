package engine

import (
	"context"
	"fmt"

	"duck-sheets/internal/ddl"
)

// TableExists reports whether a table with the given name exists in the
// default schema. DuckDB compares identifiers case-insensitively.
func (e *Engine) TableExists(ctx context.Context, name string) (bool, error) {
	return e.exists(ctx,
		"SELECT count(*) FROM duckdb_tables() WHERE lower(table_name) = lower(?)", name)
}

// SequenceExists reports whether a sequence with the given name exists.
func (e *Engine) SequenceExists(ctx context.Context, name string) (bool, error) {
	return e.exists(ctx,
		"SELECT count(*) FROM duckdb_sequences() WHERE lower(sequence_name) = lower(?)", name)
}

// CountRows returns the number of rows in a materialized table.
func (e *Engine) CountRows(ctx context.Context, table string) (int64, error) {
	if err := ddl.ValidateIdentifier(table); err != nil {
		return 0, fmt.Errorf("invalid table name: %w", err)
	}
	ok, err := e.TableExists(ctx, table)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("table %q does not exist", table)
	}
	var n int64
	if err := e.db.QueryRowContext(ctx, "SELECT count(*) FROM "+ddl.QuoteIdentifier(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows in %q: %w", table, err)
	}
	return n, nil
}

func (e *Engine) exists(ctx context.Context, query, name string) (bool, error) {
	var n int
	if err := e.db.QueryRowContext(ctx, query, name).Scan(&n); err != nil {
		return false, fmt.Errorf("catalog lookup %q: %w", name, err)
	}
	return n > 0, nil
}
