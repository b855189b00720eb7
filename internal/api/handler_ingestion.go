package api

import (
	"net/http"
	"strings"

	"duck-sheets/internal/domain"
)

// loadPublicFileRequest is the body of POST /api/load-public-file.
type loadPublicFileRequest struct {
	PublicFileName string `json:"publicFileName"`
	DatasetName    string `json:"datasetName"`
	RowLimit       *int   `json:"rowLimit,omitempty"`
}

// LoadPublicFile imports a public file (or remote URI) as a new dataset.
func (h *APIHandler) LoadPublicFile(w http.ResponseWriter, r *http.Request) {
	var body loadPublicFileRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	var missing []string
	if strings.TrimSpace(body.PublicFileName) == "" {
		missing = append(missing, "publicFileName")
	}
	if strings.TrimSpace(body.DatasetName) == "" {
		missing = append(missing, "datasetName")
	}
	if len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "missing required field(s): "+strings.Join(missing, ", "))
		return
	}

	req := domain.ImportRequest{
		PublicFileName: body.PublicFileName,
		DatasetName:    body.DatasetName,
	}
	if body.RowLimit != nil {
		req.RowLimit = *body.RowLimit
	}

	ds, err := h.importer.ImportPublicFile(r.Context(), principalFromCtx(r.Context()), req)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, datasetToAPI(*ds, true))
}

// LatestDataFile reports the most recently modified supported data file.
func (h *APIHandler) LatestDataFile(w http.ResponseWriter, r *http.Request) {
	info, ok := h.finder.MostRecent(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "no data files found")
		return
	}
	writeJSON(w, http.StatusOK, dataFileToAPI(info))
}
