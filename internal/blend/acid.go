package blend

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidAcidCode is returned when a fatty-acid code is not of the form "C<carbons>:<double bonds>".
var ErrInvalidAcidCode = errors.New("blend: invalid fatty-acid code")

// AcidCode is the parsed lipid number of a fatty acid.
type AcidCode struct {
	Carbons     int
	DoubleBonds int
}

// ParseAcidCode parses lipid numbers such as "C18:2".
func ParseAcidCode(code string) (AcidCode, error) {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) < 4 || (trimmed[0] != 'C' && trimmed[0] != 'c') {
		return AcidCode{}, fmt.Errorf("%w: %q", ErrInvalidAcidCode, code)
	}
	chain, bonds, ok := strings.Cut(trimmed[1:], ":")
	if !ok {
		return AcidCode{}, fmt.Errorf("%w: %q", ErrInvalidAcidCode, code)
	}
	carbons, err := strconv.Atoi(chain)
	if err != nil || carbons <= 0 {
		return AcidCode{}, fmt.Errorf("%w: %q", ErrInvalidAcidCode, code)
	}
	doubleBonds, err := strconv.Atoi(bonds)
	if err != nil || doubleBonds < 0 || doubleBonds > carbons/2 {
		return AcidCode{}, fmt.Errorf("%w: %q", ErrInvalidAcidCode, code)
	}
	return AcidCode{Carbons: carbons, DoubleBonds: doubleBonds}, nil
}

// String renders the code back to its canonical "C18:1" form.
func (a AcidCode) String() string {
	return fmt.Sprintf("C%d:%d", a.Carbons, a.DoubleBonds)
}

// SortByChain orders acid codes by chain length and then by double bonds, so
// "C6:0" comes before "C12:0". Unparseable codes sort last, lexicographically.
func SortByChain(codes []string) []string {
	sorted := make([]string, len(codes))
	copy(sorted, codes)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, errA := ParseAcidCode(sorted[i])
		b, errB := ParseAcidCode(sorted[j])
		switch {
		case errA != nil && errB != nil:
			return sorted[i] < sorted[j]
		case errA != nil:
			return false
		case errB != nil:
			return true
		case a.Carbons != b.Carbons:
			return a.Carbons < b.Carbons
		default:
			return a.DoubleBonds < b.DoubleBonds
		}
	})
	return sorted
}

// Saturation summarises a blend by degree of unsaturation.
type Saturation struct {
	Saturated       float64 `json:"saturated"`
	Monounsaturated float64 `json:"monounsaturated"`
	Polyunsaturated float64 `json:"polyunsaturated"`
	Unclassified    float64 `json:"unclassified,omitempty"`
}

// Classify groups the blend's acids into saturated, mono- and polyunsaturated totals.
func Classify(result Result) Saturation {
	var summary Saturation
	for code, value := range result {
		acid, err := ParseAcidCode(code)
		if err != nil {
			summary.Unclassified += value
			continue
		}
		switch acid.DoubleBonds {
		case 0:
			summary.Saturated += value
		case 1:
			summary.Monounsaturated += value
		default:
			summary.Polyunsaturated += value
		}
	}
	return summary
}
