package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	applog "lipidgenesis/internal/log"
)

type healthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
	Oils   int       `json:"oils"`
	Lines  int       `json:"lines"`
}

// Health is a readiness handler for load balancers and orchestrators. It reports the
// size of the loaded catalogue.
func Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cat := currentCatalog()
	resp := healthResponse{
		Status: "ok",
		Time:   nowFunc().UTC(),
		Oils:   len(cat.OilNames()),
		Lines:  len(cat.Sensory().Lines()),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	applog.Debug(r.Context(), "health check responded successfully")
}
