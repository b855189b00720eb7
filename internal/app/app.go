// Package app provides application-level wiring and dependency injection
// for the duck-sheets server.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"duck-sheets/internal/api"
	"duck-sheets/internal/config"
	"duck-sheets/internal/db/repository"
	"duck-sheets/internal/discovery"
	"duck-sheets/internal/engine"
	"duck-sheets/internal/service/governance"
	"duck-sheets/internal/service/ingestion"
	"duck-sheets/internal/staging"
	"duck-sheets/internal/ui"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// database handles, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	DuckDB  *sql.DB
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Engine     *engine.Engine
	Importer   *ingestion.ImportService
	Audit      *governance.AuditService
	Finder     *discovery.Finder
	AutoLoader *ingestion.AutoLoader
	API        *api.APIHandler
	UI         *ui.Handler

	cfg     *config.Config
	logger  *slog.Logger
	closers []io.Closer
}

// New wires repositories, the engine, staging backends and services from the
// provided deps. The column catalog is bootstrapped before returning.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	eng := engine.New(deps.DuckDB, deps.Logger)
	if err := eng.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap engine: %w", err)
	}

	// === Repositories ===
	datasetRepo := repository.NewDatasetRepo(deps.WriteDB, deps.ReadDB)
	auditRepo := repository.NewAuditRepo(deps.WriteDB)
	columnRepo := repository.NewColumnRepo(deps.DuckDB)

	// === Staging (remote sources) ===
	stager, closers, err := newStager(ctx, cfg, deps.Logger)
	if err != nil {
		return nil, err
	}

	// === Services ===
	materializer := ingestion.NewMaterializer(eng, columnRepo, deps.Logger)
	importer := ingestion.NewImportService(
		materializer, eng, datasetRepo, columnRepo, auditRepo, stager,
		ingestion.ImportConfig{PublicDir: cfg.PublicDir, DefaultRowLimit: cfg.DefaultRowLimit},
		deps.Logger,
	)
	auditSvc := governance.NewAuditService(auditRepo)
	finder := discovery.NewFinder(cfg.DataDir, deps.Logger)

	return &App{
		Engine:     eng,
		Importer:   importer,
		Audit:      auditSvc,
		Finder:     finder,
		AutoLoader: ingestion.NewAutoLoader(finder, importer, cfg.AutoLoadUser, deps.Logger),
		API:        api.NewHandler(importer, auditSvc, finder, deps.Logger),
		UI:         ui.NewHandler(finder, deps.Logger),
		cfg:        cfg,
		logger:     deps.Logger,
		closers:    closers,
	}, nil
}

// Close releases clients held by staging backends.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// newStager builds a stager with one fetcher per configured backend.
// Backends without credentials are left out, so their schemes are rejected.
func newStager(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*staging.MultiStager, []io.Closer, error) {
	var (
		fetchers []staging.Fetcher
		closers  []io.Closer
	)

	if cfg.HasS3Config() {
		s3cfg := staging.S3Config{KeyID: *cfg.S3KeyID, Secret: *cfg.S3Secret}
		if cfg.S3Endpoint != nil {
			s3cfg.Endpoint = *cfg.S3Endpoint
		}
		if cfg.S3Region != nil {
			s3cfg.Region = *cfg.S3Region
		}
		f, err := staging.NewS3Fetcher(s3cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("s3 staging: %w", err)
		}
		fetchers = append(fetchers, f)
	}

	if cfg.HasGCSConfig() {
		f, err := staging.NewGCSFetcher(ctx, cfg.GCSKeyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("gcs staging: %w", err)
		}
		fetchers = append(fetchers, f)
		closers = append(closers, f)
	}

	if cfg.HasAzureConfig() {
		f, err := staging.NewAzureFetcher(cfg.AzureAccountName, cfg.AzureAccountKey)
		if err != nil {
			for _, c := range closers {
				_ = c.Close()
			}
			return nil, nil, fmt.Errorf("azure staging: %w", err)
		}
		fetchers = append(fetchers, f)
	}

	stager := staging.NewMultiStager(cfg.StagingDir, logger, fetchers...)
	if schemes := stager.Schemes(); len(schemes) > 0 {
		logger.Info("remote staging enabled", "schemes", schemes)
	}
	return stager, closers, nil
}
