package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"duck-sheets/internal/domain"
)

// maxBodyBytes bounds JSON request bodies and preview text.
const maxBodyBytes = 4 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Code: status, Message: message})
}

// writeDomainError maps err to a status and logs server-side failures.
func (h *APIHandler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

// decodeJSON decodes a bounded request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.ErrValidation("request body exceeds %d bytes", maxErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return domain.ErrValidation("request body is empty")
		}
		return domain.ErrValidation("invalid JSON body: %v", err)
	}
	return nil
}

// pageFromQuery extracts a PageRequest from max_results/page_token query params.
func pageFromQuery(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()
	p := domain.PageRequest{PageToken: q.Get("page_token")}
	if v := q.Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, domain.ErrValidation("max_results must be a non-negative integer")
		}
		p.MaxResults = n
	}
	return p, nil
}

func principalFromCtx(ctx context.Context) string {
	if p, ok := domain.PrincipalFromContext(ctx); ok {
		return p.Name
	}
	return ""
}

// === Mapping helpers ===

type columnJSON struct {
	Name        string `json:"name"`
	StorageName string `json:"storageName"`
	Type        string `json:"type"`
	Kind        string `json:"kind"`
	Visible     bool   `json:"visible"`
	Position    int    `json:"position"`
}

type datasetJSON struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	CreatedBy  string       `json:"createdBy"`
	SourceFile string       `json:"sourceFile"`
	CreatedAt  time.Time    `json:"createdAt"`
	RowCount   *int64       `json:"rowCount,omitempty"`
	Columns    []columnJSON `json:"columns,omitempty"`
}

type dataFileJSON struct {
	FileName     string    `json:"fileName"`
	FullPath     string    `json:"fullPath"`
	ModifiedTime time.Time `json:"modifiedTime"`
	SizeBytes    int64     `json:"sizeBytes"`
}

func datasetToAPI(d domain.Dataset, detailed bool) datasetJSON {
	out := datasetJSON{
		ID:         d.ID,
		Name:       d.Name,
		CreatedBy:  d.CreatedBy,
		SourceFile: d.SourceFile,
		CreatedAt:  d.CreatedAt,
	}
	if !detailed {
		return out
	}
	rows := d.RowCount
	out.RowCount = &rows
	out.Columns = make([]columnJSON, len(d.Columns))
	for i, c := range d.Columns {
		out.Columns[i] = columnJSON{
			Name:        c.Name,
			StorageName: c.StorageName,
			Type:        c.Type,
			Kind:        string(c.Kind),
			Visible:     c.Visible,
			Position:    c.Position,
		}
	}
	return out
}

func dataFileToAPI(f domain.DataFileInfo) dataFileJSON {
	return dataFileJSON{
		FileName:     f.FileName,
		FullPath:     f.FullPath,
		ModifiedTime: f.ModifiedTime,
		SizeBytes:    f.SizeBytes,
	}
}
