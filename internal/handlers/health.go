package handlers

import (
	"net/http"
)

// HealthHandler responds with service health information.
type HealthHandler struct {
	// Configured reports whether the SDK can serve feeds. Nil means yes.
	Configured func() bool
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	payload := map[string]any{
		"status":     "ok",
		"configured": h.Configured == nil || h.Configured(),
	}

	respondJSON(r.Context(), w, http.StatusOK, payload)
}
