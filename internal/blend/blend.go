// Package blend computes the fatty-acid composition of a vegetable oil blend
// from per-oil reference profiles.
package blend

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Percentages maps an oil name to the share chosen for the blend. Values are
// raw slider positions and do not need to add up to 100.
type Percentages map[string]float64

// Profile maps a fatty-acid code such as "C16:0" to its percentage by mass.
type Profile map[string]float64

// ProfileTable holds the reference profile of every known oil.
type ProfileTable map[string]Profile

// Result maps a fatty-acid code to its percentage in the normalised blend.
type Result map[string]float64

// Total returns the sum of the raw percentages.
func (p Percentages) Total() float64 {
	if len(p) == 0 {
		return 0
	}
	values := make([]float64, 0, len(p))
	for _, value := range p {
		values = append(values, value)
	}
	return floats.Sum(values)
}

// Oils returns the oil names in lexicographic order.
func (p Percentages) Oils() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clamp returns a copy with every value limited to the [0, 100] slider range.
func (p Percentages) Clamp() Percentages {
	clamped := make(Percentages, len(p))
	for name, value := range p {
		switch {
		case math.IsNaN(value), value < 0:
			clamped[name] = 0
		case value > 100:
			clamped[name] = 100
		default:
			clamped[name] = value
		}
	}
	return clamped
}

// Normalized returns each oil's fraction of the total, or nil when the total is zero.
func (p Percentages) Normalized() map[string]float64 {
	total := p.Total()
	if total == 0 {
		return nil
	}
	fractions := make(map[string]float64, len(p))
	for name, value := range p {
		fractions[name] = value / total
	}
	return fractions
}

// Acids returns the union of acid codes across every profile, sorted lexicographically.
func (t ProfileTable) Acids() []string {
	seen := make(map[string]struct{})
	for _, profile := range t {
		for code := range profile {
			seen[code] = struct{}{}
		}
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Sum returns the sum of the profile's acid percentages.
func (p Profile) Sum() float64 {
	total := 0.0
	for _, value := range p {
		total += value
	}
	return total
}

// Compute blends the reference profiles by the supplied percentages.
//
// Percentages are normalised by their own total, so oils missing from the
// profile table still dilute the blend. The result is empty when the total is
// zero.
func Compute(percentages Percentages, profiles ProfileTable) Result {
	weights := percentages.Normalized()
	if weights == nil {
		return Result{}
	}
	acids := profiles.Acids()
	if len(acids) == 0 {
		return Result{}
	}
	oils := percentages.Oils()

	// composition is acids x oils; column j holds the profile of oils[j].
	composition := mat.NewDense(len(acids), len(oils), nil)
	shares := mat.NewVecDense(len(oils), nil)
	for j, oil := range oils {
		shares.SetVec(j, weights[oil])
		profile, ok := profiles[oil]
		if !ok {
			continue
		}
		for i, acid := range acids {
			composition.Set(i, j, profile[acid])
		}
	}

	var blended mat.VecDense
	blended.MulVec(composition, shares)

	result := make(Result, len(acids))
	for i, acid := range acids {
		result[acid] = blended.AtVec(i)
	}
	return result
}

// Acids returns the result's acid codes in lexicographic order.
func (r Result) Acids() []string {
	codes := make([]string, 0, len(r))
	for code := range r {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Total returns the sum of all acid percentages in the result.
func (r Result) Total() float64 {
	total := 0.0
	for _, value := range r {
		total += value
	}
	return total
}

// Empty reports whether the result carries no composition, which happens when
// no oil was selected.
func (r Result) Empty() bool {
	return len(r) == 0
}
