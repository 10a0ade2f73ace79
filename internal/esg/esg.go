// Package esg aggregates environmental reference factors over an oil blend.
package esg

import (
	"math"
	"sort"

	"lipidgenesis/internal/blend"
)

// Values used for oils that have no factor record.
const (
	DefaultImpactCoefficient = 1.0
	DefaultOrigin            = "Unknown"
	DefaultCertification     = "Not reported"
)

// Footprint carries the per-kilogram emission and water-use factors of an oil.
type Footprint struct {
	CO2PerKg         float64 `json:"co2_per_kg" yaml:"co2_per_kg"`
	WaterLitresPerKg float64 `json:"water_litres_per_kg" yaml:"water_litres_per_kg"`
}

// Factor is the canonical environmental record of an oil.
type Factor struct {
	ImpactCoefficient float64    `json:"impact_coefficient"`
	Origin            string     `json:"origin"`
	Certification     string     `json:"certification"`
	Footprint         *Footprint `json:"footprint,omitempty"`
}

// FactorTable maps canonical oil names to their environmental record.
type FactorTable map[string]Factor

// DefaultPolicy supplies the factor used for an oil without a record.
type DefaultPolicy func(oil string) Factor

// StandardDefaults returns the default impact coefficient and labels. It never
// supplies a footprint.
func StandardDefaults(string) Factor {
	return Factor{
		ImpactCoefficient: DefaultImpactCoefficient,
		Origin:            DefaultOrigin,
		Certification:     DefaultCertification,
	}
}

// Resolve looks up the oil and falls back to the policy when no record exists.
// The boolean reports whether a record was found.
func (t FactorTable) Resolve(oil string, fallback DefaultPolicy) (Factor, bool) {
	if factor, ok := t[oil]; ok {
		return factor, true
	}
	if fallback == nil {
		fallback = StandardDefaults
	}
	return fallback(oil), false
}

// Row is the per-oil environmental summary shown next to the blend.
type Row struct {
	Oil            string  `json:"oil"`
	Usage          float64 `json:"usage_percent"`
	ImpactEstimate float64 `json:"impact_estimate"`
	Origin         string  `json:"origin"`
	Certification  string  `json:"certification"`
	Defaulted      bool    `json:"defaulted,omitempty"`
}

// Profile maps each oil of the blend to its row.
type Profile map[string]Row

// Compute builds one row per oil in percentages. Oils without a factor record
// use the policy's values and are flagged as defaulted; a nil policy means
// StandardDefaults.
func Compute(percentages blend.Percentages, factors FactorTable, fallback DefaultPolicy) Profile {
	profile := make(Profile, len(percentages))
	for oil, usage := range percentages {
		factor, found := factors.Resolve(oil, fallback)
		profile[oil] = Row{
			Oil:            oil,
			Usage:          usage,
			ImpactEstimate: round2(factor.ImpactCoefficient * usage / 100),
			Origin:         factor.Origin,
			Certification:  factor.Certification,
			Defaulted:      !found,
		}
	}
	return profile
}

// Rows returns the profile's rows ordered by oil name.
func (p Profile) Rows() []Row {
	rows := make([]Row, 0, len(p))
	for _, row := range p {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Oil < rows[j].Oil
	})
	return rows
}

// TotalImpact sums the impact estimates of every row.
func (p Profile) TotalImpact() float64 {
	total := 0.0
	for _, row := range p {
		total += row.ImpactEstimate
	}
	return round2(total)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
