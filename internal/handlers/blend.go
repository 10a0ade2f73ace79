package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/formulation"
	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/views/pages"
)

var (
	errUnknownOil   = errors.New("handlers: unknown oil")
	errInvalidShare = errors.New("handlers: invalid share")
)

// UpdateBlend stores the submitted sliders, line and occasion in the session
// and re-renders the workspace.
func UpdateBlend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid submission.", http.StatusBadRequest)
		return
	}

	in, err := inputFromForm(r.PostForm)
	if err != nil {
		switch {
		case errors.Is(err, errUnknownOil), errors.Is(err, errInvalidShare):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Invalid submission.", http.StatusBadRequest)
		}
		return
	}

	eval := evaluate(in)
	if err := saveInput(r.Context(), eval.Input); err != nil {
		applog.Error(r.Context(), "failed to store blend in session", "error", err)
		http.Error(w, "The blend could not be saved for this session.", http.StatusServiceUnavailable)
		return
	}
	applog.Debug(r.Context(), "blend updated",
		"oils", len(eval.Input.Percentages),
		"total", eval.Input.Percentages.Total(),
		"line", eval.Input.Line,
	)
	afterUpdate(w, r, eval.Input, workspaceMessage{})
}

// ResetBlend clears the session's blend.
func ResetBlend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	clearInput(r.Context())
	afterUpdate(w, r, formulation.Input{}, workspaceMessage{})
}

// inputFromForm reads every slider field. Blank sliders count as zero and a
// comma is accepted as the decimal separator.
func inputFromForm(form url.Values) (formulation.Input, error) {
	cat := currentCatalog()
	in := formulation.Input{
		Percentages: make(blend.Percentages),
		Line:        strings.TrimSpace(form.Get("line")),
		Occasion:    strings.TrimSpace(form.Get("occasion")),
	}
	for key, values := range form {
		if !strings.HasPrefix(key, pages.ShareFieldPrefix) || len(values) == 0 {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(key, pages.ShareFieldPrefix))
		canonical, ok := cat.Canonical(name)
		if !ok {
			return formulation.Input{}, fmt.Errorf("%w: %q", errUnknownOil, name)
		}
		raw := strings.TrimSpace(values[len(values)-1])
		if raw == "" {
			in.Percentages[canonical] += 0
			continue
		}
		value, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return formulation.Input{}, fmt.Errorf("%w: %s=%q", errInvalidShare, name, raw)
		}
		in.Percentages[canonical] += value
	}
	return in, nil
}
