package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/formulation"
	applog "lipidgenesis/internal/log"
)

const maxAPIBody = 1 << 20

type blendRequest struct {
	Percentages blend.Percentages `json:"percentages"`
	Line        string            `json:"line"`
	Occasion    string            `json:"occasion"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type sensoryIndex struct {
	Lines     []string `json:"lines"`
	Occasions []string `json:"occasions"`
}

// ListOils returns the reference catalogue.
func ListOils(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, r, http.StatusOK, formulation.OilSummaries(currentCatalog()))
}

// ComputeBlend returns the lipid profile of the posted percentages.
func ComputeBlend(w http.ResponseWriter, r *http.Request) {
	eval, ok := decodeEvaluation(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, eval.ProfileSummary())
}

// ComputeESG returns the per-oil environmental rows of the posted percentages.
func ComputeESG(w http.ResponseWriter, r *http.Request) {
	eval, ok := decodeEvaluation(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, eval.ESGSummary())
}

// ComputeESGTotals returns the CO2 and water footprint. Missing reference
// data is reported with 422 and the oil concerned.
func ComputeESGTotals(w http.ResponseWriter, r *http.Request) {
	eval, ok := decodeEvaluation(w, r)
	if !ok {
		return
	}
	summary := eval.TotalsSummary()
	status := http.StatusOK
	if !summary.Available {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, r, status, summary)
}

// SensoryRecipe returns the recipe for ?line=&occasion=, or the available
// lines and occasions when no line is given.
func SensoryRecipe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	library := currentCatalog().Sensory()
	line := strings.TrimSpace(r.URL.Query().Get("line"))
	if line == "" {
		writeJSON(w, r, http.StatusOK, sensoryIndex{Lines: library.Lines(), Occasions: library.Occasions()})
		return
	}

	occasion := strings.TrimSpace(r.URL.Query().Get("occasion"))
	if occasion != "" && !library.ValidOccasion(occasion) {
		writeJSONError(w, r, http.StatusBadRequest, "unknown occasion "+occasion)
		return
	}
	recipe, ok := library.Recipe(line, occasion)
	if !ok {
		writeJSONError(w, r, http.StatusNotFound, "unknown line "+line)
		return
	}
	writeJSON(w, r, http.StatusOK, recipe)
}

func decodeEvaluation(w http.ResponseWriter, r *http.Request) (formulation.Evaluation, bool) {
	if r.Method != http.MethodPost {
		writeJSONError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return formulation.Evaluation{}, false
	}

	var req blendRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxAPIBody))
	if err := dec.Decode(&req); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		writeJSONError(w, r, http.StatusBadRequest, msg)
		return formulation.Evaluation{}, false
	}
	return evaluate(formulation.Input{
		Percentages: req.Percentages,
		Line:        req.Line,
		Occasion:    req.Occasion,
	}), true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.Error(r.Context(), "failed to encode api response", "error", err, "path", r.URL.Path)
	}
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Error: message})
}
