package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler answers liveness checks and, when a catalogue store is
// configured, reports whether it is reachable.
type HealthHandler struct {
	Catalog Pinger
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]string{"status": "ok", "catalog": "disabled"}
	if h.Catalog == nil {
		writeJSON(w, r, http.StatusOK, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Catalog.PingContext(ctx); err != nil {
		res["status"] = "degraded"
		res["catalog"] = "unreachable"
		writeJSON(w, r, http.StatusServiceUnavailable, res)
		return
	}

	res["catalog"] = "ok"
	writeJSON(w, r, http.StatusOK, res)
}
