package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"lipidgenesis/internal/formulation"
	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/refdata"
	"lipidgenesis/internal/report"
	"lipidgenesis/internal/views/pages"
	"lipidgenesis/internal/views/theme"
)

const (
	sessionBlendInputKey = "blend:input"
	sessionThemeKey      = "workspace:theme"
)

var (
	sessionManager *scs.SessionManager
	catalog        *refdata.Catalog
	reportTitle    string
	reportLocale   string
	nowFunc        = time.Now
)

// Configure installs the shared dependencies used by the HTTP handlers. A nil
// catalogue falls back to the embedded reference data.
func Configure(sm *scs.SessionManager, cat *refdata.Catalog) {
	sessionManager = sm
	catalog = cat
}

// ConfigureReports sets the title and number locale of exported reports.
func ConfigureReports(title, locale string) {
	reportTitle = title
	reportLocale = locale
}

func currentCatalog() *refdata.Catalog {
	if catalog != nil {
		return catalog
	}
	return refdata.MustDefault()
}

// loadInput returns the session's blend, or an empty one when the session
// holds nothing usable.
func loadInput(r *http.Request) formulation.Input {
	if sessionManager == nil {
		return formulation.Input{}
	}
	raw := sessionManager.GetString(r.Context(), sessionBlendInputKey)
	if raw == "" {
		return formulation.Input{}
	}
	var in formulation.Input
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		applog.Error(r.Context(), "discarding unreadable session blend", "error", err)
		sessionManager.Remove(r.Context(), sessionBlendInputKey)
		return formulation.Input{}
	}
	return in
}

func saveInput(ctx context.Context, in formulation.Input) error {
	if sessionManager == nil {
		return errSessionsUnavailable
	}
	encoded, err := json.Marshal(in)
	if err != nil {
		return err
	}
	sessionManager.Put(ctx, sessionBlendInputKey, string(encoded))
	return nil
}

func clearInput(ctx context.Context) {
	if sessionManager == nil {
		return
	}
	sessionManager.Remove(ctx, sessionBlendInputKey)
}

func evaluate(in formulation.Input) formulation.Evaluation {
	return formulation.Evaluate(currentCatalog(), in)
}

func buildDocument(eval formulation.Evaluation) report.Document {
	return report.Build(eval, reportTitle, nowFunc())
}

func sessionTheme(r *http.Request) theme.Theme {
	if sessionManager == nil {
		return theme.Resolve("")
	}
	return theme.Resolve(sessionManager.GetString(r.Context(), sessionThemeKey))
}

func setSessionTheme(r *http.Request, key string) {
	if sessionManager == nil {
		return
	}
	sessionManager.Put(r.Context(), sessionThemeKey, key)
}

func workspaceData(r *http.Request, in formulation.Input) pages.WorkspaceData {
	cat := currentCatalog()
	return pages.WorkspaceData{
		Oils:      cat.OilNames(),
		Lines:     cat.Sensory().Lines(),
		Occasions: cat.Sensory().Occasions(),
		Document:  buildDocument(evaluate(in)),
		Theme:     sessionTheme(r),
	}
}
