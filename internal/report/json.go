package report

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/esg"
	"lipidgenesis/internal/sensory"
)

// JSONRenderer writes the document as a single JSON object.
type JSONRenderer struct {
	Indent bool
}

type jsonDocument struct {
	Title       string            `json:"title"`
	Line        string            `json:"line,omitempty"`
	Occasion    string            `json:"occasion,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	Fingerprint string            `json:"fingerprint"`
	Composition []OilShare        `json:"composition"`
	Profile     []AcidShare       `json:"profile"`
	Saturation  *blend.Saturation `json:"saturation,omitempty"`
	Sensory     *sensory.Recipe   `json:"sensory,omitempty"`
	Accords     []sensory.Accord  `json:"accords,omitempty"`
	ESG         []esg.Row         `json:"esg"`
	TotalImpact float64           `json:"total_impact"`
	Totals      *esg.Totals       `json:"totals,omitempty"`
	TotalsError string            `json:"totals_error,omitempty"`
}

func (JSONRenderer) ContentType() string { return "application/json" }

func (JSONRenderer) Extension() string { return "json" }

func (r JSONRenderer) Render(ctx context.Context, w io.Writer, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := jsonDocument{
		Title:       doc.Title,
		Line:        doc.Line,
		Occasion:    doc.Occasion,
		GeneratedAt: doc.GeneratedAt,
		Fingerprint: doc.Fingerprint,
		Composition: nonNil(doc.Composition),
		Profile:     nonNil(doc.Profile),
		Sensory:     doc.Recipe,
		Accords:     doc.Accords,
		ESG:         nonNil(doc.ESG),
		TotalImpact: doc.TotalImpact,
		Totals:      doc.Totals,
		TotalsError: doc.TotalsError,
	}
	if !doc.Empty() {
		saturation := doc.Saturation
		out.Saturation = &saturation
	}

	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
