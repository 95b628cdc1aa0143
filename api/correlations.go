package api

import (
	"errors"
	"net/http"

	"github.com/xraph/herald"
	"github.com/xraph/herald/correlation"
)

type putCorrelationRequest struct {
	ThreadID string `json:"thread_id"`
	Source   string `json:"source,omitempty"`
}

func (h *Handler) getCorrelation(w http.ResponseWriter, r *http.Request) {
	entry, err := h.store.GetCorrelation(r.Context(), r.PathValue("entityID"))
	if err != nil {
		if errors.Is(err, herald.ErrCorrelationNotFound) {
			writeError(w, http.StatusNotFound, "correlation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// putCorrelation records or repairs an entity's thread by hand.
func (h *Handler) putCorrelation(w http.ResponseWriter, r *http.Request) {
	var req putCorrelationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ThreadID == "" {
		writeError(w, http.StatusBadRequest, "thread_id is required")
		return
	}

	entry := &correlation.Entry{
		Entity:   herald.NewEntity(),
		EntityID: r.PathValue("entityID"),
		ThreadID: req.ThreadID,
		Source:   req.Source,
	}
	if err := h.store.PutCorrelation(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) deleteCorrelation(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCorrelation(r.Context(), r.PathValue("entityID")); err != nil {
		if errors.Is(err, herald.ErrCorrelationNotFound) {
			writeError(w, http.StatusNotFound, "correlation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
