package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/views/theme"
)

type preferencesResponse struct {
	Theme string `json:"theme"`
}

// UpdatePreferences stores the dashboard theme in the session. Browsers are
// redirected back to the dashboard, htmx clients are told to refresh and
// other clients receive the stored value as JSON.
func UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		applog.Debug(r.Context(), "preferences update with unsupported method", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		applog.Error(r.Context(), "failed to parse preferences form", "error", err)
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	themeValue := strings.TrimSpace(r.FormValue("theme"))
	themeConfig, ok := theme.Lookup(themeValue)
	if !ok {
		applog.Debug(r.Context(), "received invalid theme selection", "value", themeValue)
		http.Error(w, "invalid theme selection", http.StatusBadRequest)
		return
	}
	if sessionManager == nil {
		applog.Error(r.Context(), "session manager not configured")
		http.Error(w, "sessions are not available", http.StatusServiceUnavailable)
		return
	}

	applog.Debug(r.Context(), "updating workspace preferences", "theme", themeConfig.Key)
	setSessionTheme(r, themeConfig.Key)

	switch {
	case isHTMX(r):
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
	case strings.Contains(r.Header.Get("Accept"), "application/json"):
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(preferencesResponse{Theme: themeConfig.Key}); err != nil {
			applog.Error(r.Context(), "failed to encode preferences response", "error", err)
		}
	default:
		http.Redirect(w, r, "/app", http.StatusSeeOther)
	}
}
