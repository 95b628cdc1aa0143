package api

import (
	"net/http"
)

// inbound relays a producer request. Failures are reported with a bare 500
// and no body; the cause is only logged.
func (h *Handler) inbound(w http.ResponseWriter, r *http.Request) {
	res, err := h.herald.HandleRequest(r.Context(), r)
	if err != nil {
		h.logger.Warn("inbound request failed",
			"path", r.URL.Path,
			"error", err.Error(),
		)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, res.Item)
}
