package ingestion

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"duck-sheets/internal/discovery"
	"duck-sheets/internal/domain"
)

// AutoLoadSuffix is appended to the file name of auto-loaded datasets.
const AutoLoadSuffix = " (Auto-loaded)"

// AutoLoader imports the most recent data file once at startup.
type AutoLoader struct {
	finder   *discovery.Finder
	importer *ImportService
	user     string
	logger   *slog.Logger
}

// NewAutoLoader creates an AutoLoader that imports as user.
func NewAutoLoader(finder *discovery.Finder, importer *ImportService, user string, logger *slog.Logger) *AutoLoader {
	if user == "" {
		user = "system"
	}
	return &AutoLoader{
		finder:   finder,
		importer: importer,
		user:     user,
		logger:   logger.With("component", "autoloader"),
	}
}

// AutoLoadDatasetName derives the dataset name for an auto-loaded file:
// the file name without its last extension, plus AutoLoadSuffix.
func AutoLoadDatasetName(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName)) + AutoLoadSuffix
}

// Run discovers and imports the newest data file. It never returns an error;
// the outcome is reported in the result and logged.
func (a *AutoLoader) Run(ctx context.Context) domain.AutoLoadResult {
	file, ok := a.finder.MostRecent(ctx)
	if !ok {
		msg := "no data files found in " + a.finder.Dir()
		a.logger.Info("auto-load skipped", "reason", msg)
		return domain.AutoLoadResult{Error: msg}
	}

	name := AutoLoadDatasetName(file.FileName)
	a.logger.Info("auto-loading dataset", "name", name, "file", file.FileName)

	ds, err := a.importer.ImportLocalFile(ctx, a.user, name, file.FullPath, 0)
	if err != nil {
		a.logger.Error("auto-load failed", "file", file.FileName, "error", err)
		return domain.AutoLoadResult{FileName: file.FileName, Error: err.Error()}
	}

	a.logger.Info("auto-load complete", "dataset_id", ds.ID, "file", file.FileName)
	return domain.AutoLoadResult{Success: true, DatasetID: ds.ID, FileName: file.FileName}
}
