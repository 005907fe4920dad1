package httpapi

import (
	"net/http"
	"time"
)

// handlePurgeTokens deletes spent and expired reset tokens older than
// the required ?before=RFC3339 cutoff.
func (a *API) handlePurgeTokens(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requireAdmin(r.Context()); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	raw := r.URL.Query().Get("before")
	if raw == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "before is required (RFC3339)")
		return
	}
	before, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "before must be RFC3339")
		return
	}

	purged, err := a.reset.PurgeTokens(r.Context(), before)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"purged": purged})
}
