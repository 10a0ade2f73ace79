package refdata

import (
	"fmt"
	"sort"

	"lipidgenesis/internal/esg"
)

// LegacyFootprint is a field-survey footprint record. The survey sheets are
// keyed by local oil labels ("Palma", "Palmiste") and use their own column
// names.
type LegacyFootprint struct {
	CO2   float64 `yaml:"emissões_CO2" json:"emissões_CO2"`
	Water float64 `yaml:"uso_água" json:"uso_água"`
}

// AdaptLegacyFootprints converts survey records into canonical footprints
// keyed by canonical oil name. Every label must resolve and no two labels may
// resolve to the same oil.
func AdaptLegacyFootprints(legacy map[string]LegacyFootprint, canonical func(string) (string, bool)) (map[string]esg.Footprint, error) {
	labels := make([]string, 0, len(legacy))
	for label := range legacy {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make(map[string]esg.Footprint, len(legacy))
	sources := make(map[string]string, len(legacy))
	for _, label := range labels {
		record := legacy[label]
		name, ok := canonical(label)
		if !ok {
			return nil, fmt.Errorf("%w: legacy footprint for unknown oil %q", ErrInvalidCatalog, label)
		}
		if previous, dup := sources[name]; dup {
			return nil, fmt.Errorf("%w: legacy footprints %q and %q both describe %q", ErrInvalidCatalog, previous, label, name)
		}
		if record.CO2 < 0 || record.Water < 0 {
			return nil, fmt.Errorf("%w: legacy footprint %q is negative", ErrInvalidCatalog, label)
		}
		sources[name] = label
		out[name] = esg.Footprint{CO2PerKg: record.CO2, WaterLitresPerKg: record.Water}
	}
	return out, nil
}
