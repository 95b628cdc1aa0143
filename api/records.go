package api

import (
	"errors"
	"net/http"

	"github.com/xraph/herald"
	"github.com/xraph/herald/id"
	"github.com/xraph/herald/record"
)

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := record.ListOpts{
		Offset:   queryInt(r, "offset", 0),
		Limit:    queryInt(r, "limit", 50),
		Source:   q.Get("source"),
		EntityID: q.Get("entity_id"),
	}
	if s := q.Get("state"); s != "" {
		state := record.State(s)
		opts.State = &state
	}

	records, err := h.store.ListRecords(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	recID, err := id.ParseDispatchID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record ID")
		return
	}

	rec, err := h.store.GetRecord(r.Context(), recID)
	if err != nil {
		if errors.Is(err, herald.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
