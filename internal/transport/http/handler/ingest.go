package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hub-activity-api/internal/application/ingest"
	"github.com/hub-activity-api/internal/pkg/validate"
)

// IngestHandler is the producer-facing endpoint for appending feed records.
type IngestHandler struct {
	svc ingest.Service
}

func NewIngestHandler(svc ingest.Service) *IngestHandler { return &IngestHandler{svc: svc} }

func (h *IngestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ingest.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := h.svc.Create(r.Context(), chi.URLParam(r, "hubID"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}
