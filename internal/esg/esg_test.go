package esg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lipidgenesis/internal/blend"
)

func sampleFactors() FactorTable {
	return FactorTable{
		"Palm Oil": {
			ImpactCoefficient: 1.2,
			Origin:            "Sustainable",
			Certification:     "RSPO",
			Footprint:         &Footprint{CO2PerKg: 1.5, WaterLitresPerKg: 1200},
		},
		"Palm Olein": {
			ImpactCoefficient: 1.1,
			Origin:            "Malaysia",
			Certification:     "RSPO",
		},
		"Palm Kernel Oil": {
			ImpactCoefficient: 1.5,
			Origin:            "Brazil",
			Certification:     "Organic",
			Footprint:         &Footprint{CO2PerKg: 1.1, WaterLitresPerKg: 950},
		},
	}
}

func TestComputeUsesFactorRecord(t *testing.T) {
	t.Parallel()

	profile := Compute(blend.Percentages{"Palm Kernel Oil": 40}, sampleFactors(), nil)

	row := profile["Palm Kernel Oil"]
	assert.Equal(t, 40.0, row.Usage)
	assert.InDelta(t, 0.6, row.ImpactEstimate, 1e-12)
	assert.Equal(t, "Brazil", row.Origin)
	assert.Equal(t, "Organic", row.Certification)
	assert.False(t, row.Defaulted)
}

func TestComputeFillsDefaultsForMissingOil(t *testing.T) {
	t.Parallel()

	profile := Compute(blend.Percentages{"X": 40}, FactorTable{}, nil)

	row, ok := profile["X"]
	require.True(t, ok)
	assert.InDelta(t, 0.40, row.ImpactEstimate, 1e-12)
	assert.Equal(t, DefaultOrigin, row.Origin)
	assert.Equal(t, "Unknown", row.Origin)
	assert.Equal(t, "Not reported", row.Certification)
	assert.True(t, row.Defaulted)
}

func TestComputeHonoursCustomPolicy(t *testing.T) {
	t.Parallel()

	policy := func(oil string) Factor {
		return Factor{ImpactCoefficient: 2, Origin: "Pending " + oil, Certification: "None"}
	}
	profile := Compute(blend.Percentages{"Y": 25}, FactorTable{}, policy)

	assert.InDelta(t, 0.5, profile["Y"].ImpactEstimate, 1e-12)
	assert.Equal(t, "Pending Y", profile["Y"].Origin)
}

func TestComputeRoundsImpactToTwoDecimals(t *testing.T) {
	t.Parallel()

	profile := Compute(blend.Percentages{"Palm Olein": 33}, sampleFactors(), nil)

	assert.Equal(t, 0.36, profile["Palm Olein"].ImpactEstimate)
}

func TestComputeKeepsZeroUsageRows(t *testing.T) {
	t.Parallel()

	profile := Compute(blend.Percentages{"Palm Oil": 0, "Palm Olein": 10}, sampleFactors(), nil)

	require.Len(t, profile, 2)
	assert.Zero(t, profile["Palm Oil"].ImpactEstimate)
}

func TestProfileRowsAreOrderedByOil(t *testing.T) {
	t.Parallel()

	profile := Compute(blend.Percentages{"Palm Olein": 10, "Palm Kernel Oil": 20, "Palm Oil": 30}, sampleFactors(), nil)
	rows := profile.Rows()

	require.Len(t, rows, 3)
	assert.Equal(t, "Palm Kernel Oil", rows[0].Oil)
	assert.Equal(t, "Palm Oil", rows[1].Oil)
	assert.Equal(t, "Palm Olein", rows[2].Oil)
	assert.InDelta(t, 0.3+0.36+0.11, profile.TotalImpact(), 1e-9)
}

func TestComputeTotals(t *testing.T) {
	t.Parallel()

	totals, err := ComputeTotals(blend.Percentages{"Palm Oil": 60, "Palm Kernel Oil": 40}, sampleFactors())
	require.NoError(t, err)

	assert.InDelta(t, 0.6*1.5+0.4*1.1, totals.CO2, 1e-9)
	assert.InDelta(t, 0.6*1200+0.4*950, totals.Water, 1e-9)
}

func TestComputeTotalsSkipsZeroShares(t *testing.T) {
	t.Parallel()

	totals, err := ComputeTotals(blend.Percentages{"Palm Oil": 100, "Unlisted": 0}, sampleFactors())
	require.NoError(t, err)
	assert.InDelta(t, 1.5, totals.CO2, 1e-9)
}

func TestComputeTotalsReportsMissingReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     blend.Percentages
		wantOil   string
		wantField string
	}{
		{"no factor record", blend.Percentages{"Palm Oil": 50, "Babassu": 50}, "Babassu", FieldFactor},
		{"no footprint", blend.Percentages{"Palm Olein": 10}, "Palm Olein", FieldFootprint},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ComputeTotals(tt.input, sampleFactors())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingReference))

			var missing *MissingReferenceError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.wantOil, missing.Oil)
			assert.Equal(t, tt.wantField, missing.Field)
		})
	}
}
