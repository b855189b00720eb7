package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type listDatasetsResponse struct {
	Datasets      []datasetJSON `json:"datasets"`
	NextPageToken string        `json:"nextPageToken,omitempty"`
}

// ListDatasets returns one page of datasets, newest first.
func (h *APIHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	items, next, err := h.importer.ListDatasets(r.Context(), page)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out := make([]datasetJSON, len(items))
	for i, d := range items {
		out[i] = datasetToAPI(d, false)
	}
	writeJSON(w, http.StatusOK, listDatasetsResponse{Datasets: out, NextPageToken: next})
}

// GetDataset returns one dataset with its columns and row count.
func (h *APIHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.importer.GetDataset(r.Context(), chi.URLParam(r, "datasetID"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, datasetToAPI(*ds, true))
}
