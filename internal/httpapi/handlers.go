package httpapi

import (
	"encoding/json"
	"net/http"
)

// handleLiveness is the liveness probe, generalized from the teacher's
// plain-text /ping route into the JSON shape SPEC_FULL.md §4.5 names.
func handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleStatus serves the Snapshot that status returns at request time as
// JSON for operator dashboards, independent of the Prometheus scrape
// surface.
func handleStatus(status StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status())
	}
}
