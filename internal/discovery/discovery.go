// Package discovery locates the most recently modified data file in a directory.
package discovery

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"duck-sheets/internal/domain"
)

var supportedExtensions = []string{".json", ".csv", ".tsv", ".xlsx", ".xls", ".parquet"}

// SupportedExtensions returns the closed set of file suffixes discovery considers.
func SupportedExtensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// IsSupported reports whether name ends with a supported suffix,
// compared case-insensitively.
func IsSupported(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range supportedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Finder scans one configured directory.
type Finder struct {
	dir    string
	logger *slog.Logger
}

// NewFinder creates a Finder for dir.
func NewFinder(dir string, logger *slog.Logger) *Finder {
	return &Finder{dir: dir, logger: logger.With("component", "discovery")}
}

// Dir returns the directory the finder scans.
func (f *Finder) Dir() string { return f.dir }

// MostRecent returns the newest supported file in the finder's directory.
func (f *Finder) MostRecent(ctx context.Context) (domain.DataFileInfo, bool) {
	return FindMostRecentDataFile(ctx, f.dir, f.logger)
}

// FindMostRecentDataFile returns the supported file in dir with the greatest
// modification time. Ties keep the entry listed first. A missing directory,
// an empty directory and any I/O failure all yield (zero, false); failures are
// logged and never returned.
func FindMostRecentDataFile(ctx context.Context, dir string, logger *slog.Logger) (domain.DataFileInfo, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("data directory does not exist", "dir", dir)
		} else {
			logger.Error("list data directory", "dir", dir, "error", err)
		}
		return domain.DataFileInfo{}, false
	}

	var (
		best  domain.DataFileInfo
		found bool
	)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			logger.Warn("data file discovery canceled", "dir", dir, "error", err)
			return domain.DataFileInfo{}, false
		}
		if entry.IsDir() || !IsSupported(entry.Name()) {
			continue
		}

		full := filepath.Join(dir, entry.Name())
		info, err := os.Stat(full)
		if err != nil {
			logger.Error("stat data file", "path", full, "error", err)
			return domain.DataFileInfo{}, false
		}
		if info.IsDir() {
			continue
		}

		if !found || info.ModTime().After(best.ModifiedTime) {
			best = domain.DataFileInfo{
				FileName:     entry.Name(),
				FullPath:     full,
				ModifiedTime: info.ModTime(),
				SizeBytes:    info.Size(),
			}
			found = true
		}
	}

	if !found {
		logger.Info("no data files found", "dir", dir)
		return domain.DataFileInfo{}, false
	}
	logger.Debug("most recent data file", "file", best.FileName, "modified", best.ModifiedTime)
	return best, true
}
