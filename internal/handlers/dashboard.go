package handlers

import (
	"errors"
	"net/http"

	templpkg "github.com/a-h/templ"

	"lipidgenesis/internal/formulation"
	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/views/pages"
)

var errSessionsUnavailable = errors.New("handlers: session manager not configured")

// Dashboard renders the blend workspace for the current session.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/app" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	renderWorkspace(w, r, loadInput(r), workspaceMessage{}, http.StatusOK)
}

type workspaceMessage struct {
	notice string
	err    string
}

func renderWorkspace(w http.ResponseWriter, r *http.Request, in formulation.Input, msg workspaceMessage, status int) {
	data := workspaceData(r, in)
	data.Notice = msg.notice
	data.Error = msg.err

	var component templpkg.Component
	if isHTMX(r) {
		component = pages.Workspace(data)
	} else {
		component = pages.Dashboard(data)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render workspace", "error", err)
	}
}

// afterUpdate answers a state-changing form post: htmx clients get the new
// workspace fragment, plain forms are redirected back to the dashboard.
func afterUpdate(w http.ResponseWriter, r *http.Request, in formulation.Input, msg workspaceMessage) {
	if isHTMX(r) {
		renderWorkspace(w, r, in, msg, http.StatusOK)
		return
	}
	http.Redirect(w, r, "/app", http.StatusSeeOther)
}
