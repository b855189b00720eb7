// Package ui renders the server-side HTML pages.
package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	gomponents "maragu.dev/gomponents"

	"duck-sheets/internal/domain"
	"duck-sheets/internal/preview"
)

const (
	// maxPreviewBytes bounds how much of a file the preview page reads.
	maxPreviewBytes = 64 << 10
	maxPreviewRows  = 100
)

type fileFinder interface {
	MostRecent(ctx context.Context) (domain.DataFileInfo, bool)
}

// Handler serves the HTML pages.
type Handler struct {
	finder fileFinder
	logger *slog.Logger
}

func NewHandler(finder fileFinder, logger *slog.Logger) *Handler {
	return &Handler{finder: finder, logger: logger.With("component", "ui")}
}

func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/preview", h.Preview)
}

// Preview renders the newest data file as an HTML table using the fallback
// parser. Only comma-delimited text is previewed.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	info, ok := h.finder.MostRecent(r.Context())
	if !ok {
		renderHTML(w, http.StatusNotFound, errorPage("No data files", "No supported data files were found."))
		return
	}
	if strings.ToLower(filepath.Ext(info.FileName)) != ".csv" {
		renderHTML(w, http.StatusOK, previewUnavailablePage(info))
		return
	}

	text, truncated, err := readHead(info.FullPath, maxPreviewBytes)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "read preview file", "path", info.FullPath, "error", err)
		renderHTML(w, http.StatusUnprocessableEntity, errorPage("Preview failed", fmt.Sprintf("Could not read %s.", info.FileName)))
		return
	}

	res := preview.Parse(text)
	if len(res.Rows) > maxPreviewRows {
		res.Rows = res.Rows[:maxPreviewRows]
		truncated = true
	}
	renderHTML(w, http.StatusOK, previewPage(info, res, truncated))
}

// readHead reads at most limit bytes of path. A partial read is cut back to
// the last full line.
func readHead(path string, limit int64) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if int64(len(buf)) <= limit {
		return string(buf), false, nil
	}
	buf = buf[:limit]
	if i := bytes.LastIndexByte(buf, '\n'); i >= 0 {
		buf = buf[:i]
	}
	return string(buf), true, nil
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}
