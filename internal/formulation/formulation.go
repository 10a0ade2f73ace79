// Package formulation evaluates a blend input against a reference catalogue,
// producing the lipid profile, environmental summary and sensory description
// shown by every surface of the application.
package formulation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/esg"
	"lipidgenesis/internal/refdata"
	"lipidgenesis/internal/sensory"
)

// ErrInvalidShare is returned for a malformed "Oil=percent" pair.
var ErrInvalidShare = errors.New("formulation: invalid oil share")

// Input is a session's blend: slider percentages plus the chosen sensory line
// and usage occasion.
type Input struct {
	Percentages blend.Percentages `json:"percentages"`
	Line        string            `json:"line,omitempty"`
	Occasion    string            `json:"occasion,omitempty"`
}

// Evaluation is the complete derived view of an Input.
type Evaluation struct {
	Input      Input
	Blend      blend.Result
	Saturation blend.Saturation
	ESG        esg.Profile
	Totals     esg.Totals
	TotalsErr  error
	Recipe     sensory.Recipe
	HasRecipe  bool
	Accords    []sensory.Accord
}

// Empty reports whether no oil was given a share.
func (e Evaluation) Empty() bool {
	return e.Input.Percentages.Total() == 0
}

// Evaluate merges aliases into their canonical oil, clamps the merged
// percentages and computes every view. Shares are clamped on both sides of the
// merge so a negative alias never cancels a canonical share and the merged
// value never exceeds 100. Footprint totals failures are kept on TotalsErr
// rather than aborting.
func Evaluate(cat *refdata.Catalog, in Input) Evaluation {
	percentages := cat.Canonicalize(in.Percentages.Clamp()).Clamp()
	factors := cat.Factors()
	library := cat.Sensory()

	eval := Evaluation{
		Input: Input{
			Percentages: percentages,
			Line:        strings.TrimSpace(in.Line),
			Occasion:    strings.TrimSpace(in.Occasion),
		},
		Blend:   blend.Compute(percentages, cat.Profiles()),
		ESG:     esg.Compute(percentages, factors, esg.StandardDefaults),
		Accords: library.BlendAccords(percentages),
	}
	eval.Saturation = blend.Classify(eval.Blend)
	eval.Totals, eval.TotalsErr = esg.ComputeTotals(percentages, factors)

	if eval.Input.Line != "" {
		eval.Recipe, eval.HasRecipe = library.Recipe(eval.Input.Line, eval.Input.Occasion)
		if eval.HasRecipe {
			eval.Input.Line = eval.Recipe.Line
			eval.Input.Occasion = eval.Recipe.Occasion
		}
	}
	return eval
}

// ParseShare splits "Palm Oil=50" into its name and percentage. A comma is
// accepted as the decimal separator.
func ParseShare(pair string) (string, float64, error) {
	name, raw, ok := strings.Cut(pair, "=")
	name = strings.TrimSpace(name)
	raw = strings.TrimSpace(raw)
	if !ok || name == "" || raw == "" {
		return "", 0, fmt.Errorf("%w: %q (want Oil=percent)", ErrInvalidShare, pair)
	}
	value, err := strconv.ParseFloat(strings.Replace(strings.TrimSuffix(raw, "%"), ",", ".", 1), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrInvalidShare, pair, err)
	}
	return name, value, nil
}

// ParseShares builds Percentages from repeated "Oil=percent" pairs; later
// pairs for the same oil add to earlier ones.
func ParseShares(pairs []string) (blend.Percentages, error) {
	percentages := make(blend.Percentages, len(pairs))
	for _, pair := range pairs {
		name, value, err := ParseShare(pair)
		if err != nil {
			return nil, err
		}
		percentages[name] += value
	}
	return percentages, nil
}
