// Package engine owns the embedded DuckDB database that holds materialized
// datasets and their column catalog.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2" // register "duckdb" driver

	"duck-sheets/internal/ddl"
	"duck-sheets/internal/domain"
)

// Open opens the DuckDB database at path. An empty path opens an in-memory
// database shared by every pooled connection.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return db, nil
}

const columnCatalogDDL = `CREATE TABLE IF NOT EXISTS dataset_columns (
	id           VARCHAR PRIMARY KEY,
	dataset_id   VARCHAR NOT NULL,
	name         VARCHAR NOT NULL,
	storage_name VARCHAR NOT NULL,
	type         VARCHAR NOT NULL,
	kind         VARCHAR NOT NULL,
	visible      BOOLEAN NOT NULL DEFAULT true,
	position     INTEGER NOT NULL,
	created_at   TIMESTAMP NOT NULL DEFAULT current_timestamp
)`

// Engine wraps the DuckDB handle with schema probing, extension loading and
// catalog lookups.
type Engine struct {
	db     *sql.DB
	logger *slog.Logger

	mu     sync.Mutex
	loaded map[string]bool
}

// New creates an Engine on an open DuckDB handle.
func New(db *sql.DB, logger *slog.Logger) *Engine {
	return &Engine{
		db:     db,
		logger: logger.With("component", "engine"),
		loaded: make(map[string]bool),
	}
}

// DB returns the underlying DuckDB handle.
func (e *Engine) DB() *sql.DB { return e.db }

// Bootstrap creates the column catalog table when it does not exist yet.
func (e *Engine) Bootstrap(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, columnCatalogDDL); err != nil {
		return fmt.Errorf("create column catalog: %w", err)
	}
	return nil
}

// EnsureExtension installs and loads a DuckDB extension once per Engine.
// An empty name is a no-op.
func (e *Engine) EnsureExtension(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded[name] {
		return nil
	}

	stmt, err := ddl.LoadExtension(name)
	if err != nil {
		return fmt.Errorf("build DDL: %w", err)
	}
	if _, err := e.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("load extension %q: %w", name, err)
	}
	e.loaded[name] = true
	e.logger.Info("duckdb extension loaded", "extension", name)
	return nil
}

// ProbeSchema reports the column names and types DuckDB infers for a source,
// in source order. It runs on q so callers can probe inside a transaction.
func ProbeSchema(ctx context.Context, q domain.DBTX, r ddl.SourceReader) ([]domain.ProbedColumn, error) {
	stmt, err := ddl.DescribeSource(r)
	if err != nil {
		return nil, fmt.Errorf("build DDL: %w", err)
	}

	rows, err := q.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe columns: %w", err)
	}
	nameIdx, typeIdx := -1, -1
	for i, n := range names {
		switch n {
		case "column_name":
			nameIdx = i
		case "column_type":
			typeIdx = i
		}
	}
	if nameIdx < 0 || typeIdx < 0 {
		return nil, fmt.Errorf("unexpected DESCRIBE output columns %v", names)
	}

	var out []domain.ProbedColumn
	for rows.Next() {
		vals := make([]sql.NullString, len(names))
		dest := make([]interface{}, len(names))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan DESCRIBE row: %w", err)
		}
		out = append(out, domain.ProbedColumn{
			Name: vals[nameIdx].String,
			Type: vals[typeIdx].String,
		})
	}
	return out, rows.Err()
}
