package formulation

import (
	"errors"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/esg"
	"lipidgenesis/internal/refdata"
	"lipidgenesis/internal/sensory"
)

// EmptyBlendWarning is shown instead of a profile when no oil has a share.
const EmptyBlendWarning = "Define at least one oil to generate the blend."

// ProfileSummary is the lipid profile of a blend as returned by the JSON API
// and the agent tools.
type ProfileSummary struct {
	Percentages blend.Percentages `json:"percentages"`
	Profile     blend.Result      `json:"profile"`
	Acids       []string          `json:"acids"`
	Total       float64           `json:"total"`
	Saturation  blend.Saturation  `json:"saturation"`
	Warning     string            `json:"warning,omitempty"`
}

// ESGSummary lists the per-oil environmental rows of a blend.
type ESGSummary struct {
	Rows        []esg.Row `json:"rows"`
	TotalImpact float64   `json:"total_impact"`
}

// TotalsSummary is the footprint of a blend. When reference data is missing,
// Error names the problem and MissingOil the first oil concerned.
type TotalsSummary struct {
	CO2        float64 `json:"co2_total"`
	Water      float64 `json:"water_total"`
	Available  bool    `json:"available"`
	Error      string  `json:"error,omitempty"`
	MissingOil string  `json:"missing_oil,omitempty"`
	Missing    string  `json:"missing_field,omitempty"`
}

// OilSummary describes one catalogue oil.
type OilSummary struct {
	Name    string            `json:"name"`
	Aliases []string          `json:"aliases,omitempty"`
	Profile blend.Profile     `json:"profile"`
	Factor  *esg.Factor       `json:"factor,omitempty"`
	Notes   *sensory.OilNotes `json:"notes,omitempty"`
}

// ProfileSummary flattens the blend view of an evaluation.
func (e Evaluation) ProfileSummary() ProfileSummary {
	summary := ProfileSummary{
		Percentages: e.Input.Percentages,
		Profile:     e.Blend,
		Acids:       blend.SortByChain(e.Blend.Acids()),
		Total:       e.Blend.Total(),
		Saturation:  e.Saturation,
	}
	if summary.Percentages == nil {
		summary.Percentages = blend.Percentages{}
	}
	if summary.Profile == nil {
		summary.Profile = blend.Result{}
	}
	if e.Empty() {
		summary.Warning = EmptyBlendWarning
	}
	return summary
}

// ESGSummary flattens the environmental rows of an evaluation.
func (e Evaluation) ESGSummary() ESGSummary {
	return ESGSummary{Rows: e.ESG.Rows(), TotalImpact: e.ESG.TotalImpact()}
}

// TotalsSummary reports the footprint totals or why they are unavailable.
func (e Evaluation) TotalsSummary() TotalsSummary {
	if e.TotalsErr == nil {
		return TotalsSummary{CO2: e.Totals.CO2, Water: e.Totals.Water, Available: true}
	}
	summary := TotalsSummary{Error: e.TotalsErr.Error()}
	var missing *esg.MissingReferenceError
	if errors.As(e.TotalsErr, &missing) {
		summary.MissingOil = missing.Oil
		summary.Missing = missing.Field
	}
	return summary
}

// OilSummaries lists every oil of the catalogue in name order.
func OilSummaries(cat *refdata.Catalog) []OilSummary {
	oils := cat.Oils()
	notes := cat.Sensory().OilNotes()
	out := make([]OilSummary, 0, len(oils))
	for _, oil := range oils {
		summary := OilSummary{Name: oil.Name, Aliases: oil.Aliases, Profile: oil.Profile}
		if summary.Profile == nil {
			summary.Profile = blend.Profile{}
		}
		if oil.HasFactor {
			factor := oil.Factor
			summary.Factor = &factor
		}
		if oilNotes, ok := notes[oil.Name]; ok {
			summary.Notes = &oilNotes
		}
		out = append(out, summary)
	}
	return out
}
