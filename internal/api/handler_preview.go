package api

import (
	"errors"
	"io"
	"net/http"

	"duck-sheets/internal/preview"
)

// Preview parses the raw request body with the fallback delimited-text parser.
func (h *APIHandler) Preview(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "preview body is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, preview.Parse(string(raw)))
}
