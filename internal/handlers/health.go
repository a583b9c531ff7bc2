package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	applog "gelateria/internal/log"
)

type healthResponse struct {
	Service  string    `json:"service"`
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// Health is a simple readiness handler suitable for infrastructure probes.
// It reports whether the handlers have a database wired, without touching it.
func Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{
		Service:  "gelateria",
		Status:   "ok",
		Database: "configured",
		Time:     time.Now().UTC(),
	}
	if database == nil {
		resp.Database = "unconfigured"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	applog.Debug(r.Context(), "health check responded successfully")
}
