// Package ingestion materializes tabular source files into DuckDB tables and
// maintains the dataset catalog around them.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"duck-sheets/internal/domain"
	"duck-sheets/internal/engine"
	"duck-sheets/internal/naming"
	"duck-sheets/internal/staging"
)

// ImportService creates datasets from files under the public directory or
// from remote object stores.
type ImportService struct {
	materializer    *Materializer
	engine          *engine.Engine
	datasets        domain.DatasetRepository
	columns         domain.ColumnRepository
	auditRepo       domain.AuditRepository
	stager          staging.Stager // nil disables remote sources
	publicDir       string
	defaultRowLimit int
	logger          *slog.Logger
}

// ImportConfig holds the ImportService settings that come from configuration.
type ImportConfig struct {
	PublicDir       string
	DefaultRowLimit int
}

// NewImportService creates an ImportService.
func NewImportService(
	materializer *Materializer,
	eng *engine.Engine,
	datasets domain.DatasetRepository,
	columns domain.ColumnRepository,
	auditRepo domain.AuditRepository,
	stager staging.Stager,
	cfg ImportConfig,
	logger *slog.Logger,
) *ImportService {
	return &ImportService{
		materializer:    materializer,
		engine:          eng,
		datasets:        datasets,
		columns:         columns,
		auditRepo:       auditRepo,
		stager:          stager,
		publicDir:       cfg.PublicDir,
		defaultRowLimit: cfg.DefaultRowLimit,
		logger:          logger.With("component", "import"),
	}
}

// ImportPublicFile imports req.PublicFileName, a path relative to the public
// directory or a remote URI, as a new dataset owned by principal.
func (s *ImportService) ImportPublicFile(ctx context.Context, principal string, req domain.ImportRequest) (*domain.Dataset, error) {
	if strings.TrimSpace(req.PublicFileName) == "" || strings.TrimSpace(req.DatasetName) == "" {
		return nil, domain.ErrValidation("publicFileName and datasetName are required")
	}
	if req.RowLimit < 0 {
		return nil, domain.ErrValidation("rowLimit must not be negative, got %d", req.RowLimit)
	}

	if staging.IsRemote(req.PublicFileName) {
		if s.stager == nil {
			return nil, domain.ErrValidation("remote sources are not configured")
		}
		localPath, cleanup, err := s.stager.Stage(ctx, req.PublicFileName)
		if err != nil {
			s.logAudit(ctx, principal, domain.AuditStatusFailed, nil, req.PublicFileName+": "+err.Error())
			return nil, err
		}
		defer cleanup()
		return s.importFile(ctx, principal, req.DatasetName, req.PublicFileName, localPath, req.RowLimit)
	}

	localPath, err := resolvePublicPath(s.publicDir, req.PublicFileName)
	if err != nil {
		return nil, err
	}
	return s.importFile(ctx, principal, req.DatasetName, req.PublicFileName, localPath, req.RowLimit)
}

// ImportLocalFile imports a trusted server-side path. It is used by the
// auto-loader, whose paths come from discovery rather than from a request.
func (s *ImportService) ImportLocalFile(ctx context.Context, principal, datasetName, path string, rowLimit int) (*domain.Dataset, error) {
	if strings.TrimSpace(datasetName) == "" || path == "" {
		return nil, domain.ErrValidation("dataset name and path are required")
	}
	source := path
	if rel, err := filepath.Rel(s.publicDir, path); err == nil && isLocalRel(rel) {
		source = filepath.ToSlash(rel)
	}
	return s.importFile(ctx, principal, datasetName, source, path, rowLimit)
}

func (s *ImportService) importFile(ctx context.Context, principal, datasetName, source, localPath string, rowLimit int) (*domain.Dataset, error) {
	if rowLimit == 0 {
		rowLimit = s.defaultRowLimit
	}

	ds, err := s.datasets.Create(ctx, &domain.Dataset{
		DatasetIdentity: domain.DatasetIdentity{
			ID:        domain.NewID(),
			Name:      datasetName,
			CreatedBy: principal,
		},
		SourceFile: source,
	})
	if err != nil {
		return nil, fmt.Errorf("create dataset: %w", err)
	}

	cols, err := s.materializer.Materialize(ctx, ds.Identity(), localPath, domain.MaterializeOptions{RowLimit: rowLimit})
	if err != nil {
		// Keep the catalog free of datasets without a table.
		if delErr := s.datasets.Delete(context.WithoutCancel(ctx), ds.ID); delErr != nil {
			s.logger.Error("reconcile dataset after failed import", "dataset_id", ds.ID, "error", delErr)
		}
		s.logAudit(ctx, principal, domain.AuditStatusFailed, &ds.ID, source+": "+err.Error())
		return nil, err
	}

	ds.Columns = cols
	s.logAudit(ctx, principal, domain.AuditStatusAllowed, &ds.ID,
		fmt.Sprintf("imported %s as %q (%d columns)", source, datasetName, len(cols)))
	s.logger.Info("dataset imported", "dataset_id", ds.ID, "name", datasetName, "source", source, "principal", principal)
	return ds, nil
}

// GetDataset returns a dataset with its columns and current row count.
func (s *ImportService) GetDataset(ctx context.Context, id string) (*domain.Dataset, error) {
	ds, err := s.datasets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cols, err := s.columns.ListByDataset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	ds.Columns = cols

	names, err := naming.ForDataset(ds.Identity())
	if err != nil {
		return nil, err
	}
	n, err := s.engine.CountRows(ctx, names.Table)
	if err != nil {
		s.logger.Warn("count dataset rows", "dataset_id", id, "error", err)
	}
	ds.RowCount = n
	return ds, nil
}

// ListDatasets returns one page of datasets, newest first, and the token for
// the next page.
func (s *ImportService) ListDatasets(ctx context.Context, page domain.PageRequest) ([]domain.Dataset, string, error) {
	list, total, err := s.datasets.List(ctx, page)
	if err != nil {
		return nil, "", err
	}
	return list, domain.NextPageToken(page.Offset(), page.Limit(), total), nil
}

// resolvePublicPath joins name onto publicDir and rejects names that escape it.
func resolvePublicPath(publicDir, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", domain.ErrValidation("publicFileName must be relative to the public directory")
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if !isLocalRel(clean) {
		return "", domain.ErrValidation("publicFileName %q escapes the public directory", name)
	}
	return filepath.Join(publicDir, clean), nil
}

func isLocalRel(rel string) bool {
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (s *ImportService) logAudit(ctx context.Context, principal, status string, datasetID *string, detail string) {
	err := s.auditRepo.Insert(context.WithoutCancel(ctx), &domain.AuditEntry{
		PrincipalName: principal,
		Action:        domain.AuditActionImport,
		Status:        status,
		DatasetID:     datasetID,
		Detail:        &detail,
	})
	if err != nil {
		s.logger.Warn("write audit entry", "error", err)
	}
}
