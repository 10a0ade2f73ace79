package esg

import (
	"errors"
	"fmt"

	"lipidgenesis/internal/blend"
)

// ErrMissingReference matches every MissingReferenceError.
var ErrMissingReference = errors.New("esg: missing reference data")

// Fields reported by MissingReferenceError.
const (
	FieldFactor    = "factor"
	FieldFootprint = "footprint"
)

// MissingReferenceError reports an oil that takes part in a blend but has no
// usable environmental reference data.
type MissingReferenceError struct {
	Oil   string
	Field string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("esg: no %s reference data for %q", e.Field, e.Oil)
}

// Is lets errors.Is match ErrMissingReference.
func (e *MissingReferenceError) Is(target error) bool {
	return target == ErrMissingReference
}

// Totals is the aggregate footprint of a blend per kilogram produced.
type Totals struct {
	CO2   float64 `json:"co2_total"`
	Water float64 `json:"water_total"`
}

// ComputeTotals sums each oil's footprint weighted by its percentage over 100.
// Oils at zero percent are skipped. Any other oil without a factor record or
// without a footprint yields a *MissingReferenceError naming the first such oil
// in name order; no defaults are substituted.
func ComputeTotals(percentages blend.Percentages, factors FactorTable) (Totals, error) {
	var totals Totals
	for _, oil := range percentages.Oils() {
		share := percentages[oil]
		if share == 0 {
			continue
		}
		factor, ok := factors[oil]
		if !ok {
			return Totals{}, &MissingReferenceError{Oil: oil, Field: FieldFactor}
		}
		if factor.Footprint == nil {
			return Totals{}, &MissingReferenceError{Oil: oil, Field: FieldFootprint}
		}
		totals.CO2 += share / 100 * factor.Footprint.CO2PerKg
		totals.Water += share / 100 * factor.Footprint.WaterLitresPerKg
	}
	return totals, nil
}
