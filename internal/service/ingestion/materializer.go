package ingestion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"duck-sheets/internal/ddl"
	"duck-sheets/internal/domain"
	"duck-sheets/internal/engine"
	"duck-sheets/internal/naming"
)

// Materialization stages, reported in TransactionError.Stage.
const (
	stageLoadExtension   = "load extension"
	stageBegin           = "begin transaction"
	stageProbe           = "probe schema"
	stageRegisterColumns = "register columns"
	stageCreateSequence  = "create sequence"
	stageCreateTable     = "create table"
	stageCommit          = "commit"
)

// Materializer turns one local source file into a DuckDB table with a
// per-dataset row sequence and registered column descriptors. The probe,
// column registration, sequence and table creation share one transaction.
type Materializer struct {
	engine  *engine.Engine
	columns domain.ColumnRepository
	logger  *slog.Logger

	inflight sync.Map // dataset id -> struct{}

	// onCreateTable runs inside the transaction right before the table is
	// created. Tests use it to inject faults.
	onCreateTable func() error
}

// NewMaterializer creates a Materializer.
func NewMaterializer(eng *engine.Engine, columns domain.ColumnRepository, logger *slog.Logger) *Materializer {
	return &Materializer{
		engine:  eng,
		columns: columns,
		logger:  logger.With("component", "materializer"),
	}
}

// Materialize ingests sourcePath for the dataset and returns its column
// descriptors in source order. On any error no table, sequence or column
// descriptor for the dataset is left behind.
func (m *Materializer) Materialize(
	ctx context.Context,
	id domain.DatasetIdentity,
	sourcePath string,
	opts domain.MaterializeOptions,
) ([]domain.Column, error) {
	names, err := naming.ForDataset(id)
	if err != nil {
		return nil, err
	}
	if opts.RowLimit < 0 {
		return nil, domain.ErrValidation("row limit must not be negative, got %d", opts.RowLimit)
	}
	if sourcePath == "" {
		return nil, domain.ErrValidation("source path is required")
	}

	if _, busy := m.inflight.LoadOrStore(id.ID, struct{}{}); busy {
		return nil, domain.ErrConflict("dataset %q is already being materialized", id.ID)
	}
	defer m.inflight.Delete(id.ID)

	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, &domain.SourceUnavailableError{Path: sourcePath, Err: err}
	}
	if info.IsDir() {
		return nil, &domain.SourceUnavailableError{Path: sourcePath, Err: errors.New("is a directory")}
	}
	if info.Size() == 0 {
		return nil, &domain.EmptySchemaError{Path: sourcePath}
	}

	reader := ddl.ReaderFor(sourcePath)
	if err := m.engine.EnsureExtension(ctx, reader.Extension); err != nil {
		return nil, &domain.TransactionError{Stage: stageLoadExtension, Err: err}
	}

	start := time.Now()
	cols, err := m.materializeTx(ctx, id, names, reader, opts)
	if err != nil {
		m.logger.Warn("materialization failed",
			"dataset_id", id.ID, "source", sourcePath, "error", err)
		return nil, err
	}

	m.logger.Info("dataset materialized",
		"dataset_id", id.ID,
		"table", names.Table,
		"columns", len(cols),
		"row_limit", opts.RowLimit,
		"duration", time.Since(start))
	return cols, nil
}

func (m *Materializer) materializeTx(
	ctx context.Context,
	id domain.DatasetIdentity,
	names naming.Names,
	reader ddl.SourceReader,
	opts domain.MaterializeOptions,
) (_ []domain.Column, err error) {
	tx, err := m.engine.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, &domain.TransactionError{Stage: stageBegin, Err: err}
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			m.logger.Error("rollback materialization", "dataset_id", id.ID, "error", rbErr)
		}
	}()

	probed, err := engine.ProbeSchema(ctx, tx, reader)
	if err != nil {
		return nil, classifyDuckDBError(stageProbe, "", reader.Path, err)
	}
	if len(probed) == 0 {
		return nil, &domain.EmptySchemaError{Path: reader.Path}
	}

	sourceNames := make([]string, len(probed))
	for i, p := range probed {
		sourceNames[i] = p.Name
	}
	storageNames := naming.ColumnNames(sourceNames)

	descriptors := make([]domain.Column, len(probed))
	selects := make([]ddl.SelectColumn, len(probed))
	for i, p := range probed {
		descriptors[i] = domain.Column{
			DatasetID:   id.ID,
			Name:        p.Name,
			StorageName: storageNames[i],
			Type:        p.Type,
			Kind:        domain.ColumnKindStatic,
			Visible:     true,
			Position:    i,
		}
		selects[i] = ddl.SelectColumn{Source: p.Name, Storage: storageNames[i]}
	}

	cols, err := m.columns.BulkCreate(ctx, tx, descriptors)
	if err != nil {
		return nil, classifyDuckDBError(stageRegisterColumns, "", reader.Path, err)
	}

	seqSQL, err := ddl.CreateSequence(names.Sequence)
	if err != nil {
		return nil, &domain.TransactionError{Stage: stageCreateSequence, Err: err}
	}
	if _, err = tx.ExecContext(ctx, seqSQL); err != nil {
		return nil, classifyDuckDBError(stageCreateSequence, names.Sequence, reader.Path, err)
	}

	if m.onCreateTable != nil {
		if err = m.onCreateTable(); err != nil {
			return nil, &domain.TransactionError{Stage: stageCreateTable, Err: err}
		}
	}

	tableSQL, err := ddl.CreateTableAs(names.Table, names.Sequence, selects, reader, opts.RowLimit)
	if err != nil {
		return nil, &domain.TransactionError{Stage: stageCreateTable, Err: err}
	}
	if _, err = tx.ExecContext(ctx, tableSQL); err != nil {
		return nil, classifyDuckDBError(stageCreateTable, names.Table, reader.Path, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, &domain.TransactionError{Stage: stageCommit, Err: err}
	}
	return cols, nil
}

// classifyDuckDBError maps DuckDB errors raised during materialization into
// domain errors. objectName is the table or sequence the stage creates.
func classifyDuckDBError(stage, objectName, path string, err error) error {
	msg := err.Error()
	switch {
	case objectName != "" && strings.Contains(msg, "already exists"):
		return &domain.NamingConflictError{Name: objectName, Err: err}
	case strings.Contains(msg, "No files found"),
		strings.Contains(msg, "Could not read"),
		strings.Contains(msg, "Cannot open file"),
		strings.Contains(msg, "No such file"),
		strings.Contains(msg, "IO Error"):
		return &domain.SourceUnavailableError{Path: path, Err: err}
	default:
		return &domain.TransactionError{Stage: stage, Err: fmt.Errorf("%s: %w", path, err)}
	}
}
