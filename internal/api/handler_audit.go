package api

import (
	"net/http"
	"time"

	"duck-sheets/internal/domain"
)

type auditEntryJSON struct {
	ID            string    `json:"id"`
	PrincipalName string    `json:"principalName"`
	Action        string    `json:"action"`
	Status        string    `json:"status"`
	DatasetID     *string   `json:"datasetId,omitempty"`
	Detail        *string   `json:"detail,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type listAuditResponse struct {
	Entries       []auditEntryJSON `json:"entries"`
	NextPageToken string           `json:"nextPageToken,omitempty"`
}

// ListAuditEntries returns import audit entries, filtered by the principal,
// action, status and dataset_id query params.
func (h *APIHandler) ListAuditEntries(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	q := r.URL.Query()
	filter := domain.AuditFilter{
		PrincipalName: queryPtr(q.Get("principal")),
		Action:        queryPtr(q.Get("action")),
		Status:        queryPtr(q.Get("status")),
		DatasetID:     queryPtr(q.Get("dataset_id")),
		Page:          page,
	}

	entries, next, err := h.audit.List(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out := make([]auditEntryJSON, len(entries))
	for i, e := range entries {
		out[i] = auditEntryJSON{
			ID:            e.ID,
			PrincipalName: e.PrincipalName,
			Action:        e.Action,
			Status:        e.Status,
			DatasetID:     e.DatasetID,
			Detail:        e.Detail,
			CreatedAt:     e.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, listAuditResponse{Entries: out, NextPageToken: next})
}

func queryPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
