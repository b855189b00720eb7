// Package api provides the JSON HTTP handlers for dataset ingestion.
package api

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"duck-sheets/internal/domain"
)

// importService defines the ingestion operations used by the API handler.
type importService interface {
	ImportPublicFile(ctx context.Context, principal string, req domain.ImportRequest) (*domain.Dataset, error)
	GetDataset(ctx context.Context, id string) (*domain.Dataset, error)
	ListDatasets(ctx context.Context, page domain.PageRequest) ([]domain.Dataset, string, error)
}

// auditService lists audit log entries.
type auditService interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, string, error)
}

// fileFinder locates the newest supported data file.
type fileFinder interface {
	MostRecent(ctx context.Context) (domain.DataFileInfo, bool)
}

// APIHandler serves the /api routes.
type APIHandler struct {
	importer importService
	audit    auditService
	finder   fileFinder
	logger   *slog.Logger
}

// NewHandler creates an APIHandler.
func NewHandler(importer importService, audit auditService, finder fileFinder, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		importer: importer,
		audit:    audit,
		finder:   finder,
		logger:   logger.With("component", "api"),
	}
}

// Mount registers the handler's routes on r.
func (h *APIHandler) Mount(r chi.Router) {
	r.Post("/load-public-file", h.LoadPublicFile)
	r.Get("/data-files/latest", h.LatestDataFile)
	r.Post("/preview", h.Preview)
	r.Get("/datasets", h.ListDatasets)
	r.Get("/datasets/{datasetID}", h.GetDataset)
	r.Get("/audit", h.ListAuditEntries)
}
