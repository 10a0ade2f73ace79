package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// CSVRenderer writes one row per fact: section, name, value, detail.
type CSVRenderer struct{}

func (CSVRenderer) ContentType() string { return "text/csv; charset=utf-8" }

func (CSVRenderer) Extension() string { return "csv" }

func (CSVRenderer) Render(ctx context.Context, w io.Writer, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	rows := [][]string{
		{"section", "name", "value", "detail"},
		{"report", "title", doc.Title, ""},
		{"report", "line", doc.Line, ""},
		{"report", "occasion", doc.Occasion, ""},
		{"report", "generated_at", doc.GeneratedAt.Format(time.RFC3339), ""},
		{"report", "fingerprint", doc.Fingerprint, ""},
	}
	for _, row := range doc.Composition {
		rows = append(rows, []string{"composition", row.Oil, number(row.Percent), "percent"})
	}
	for _, row := range doc.Profile {
		rows = append(rows, []string{"profile", row.Acid, number(row.Share), "percent"})
	}
	if !doc.Empty() {
		rows = append(rows,
			[]string{"saturation", "saturated", number(doc.Saturation.Saturated), "percent"},
			[]string{"saturation", "monounsaturated", number(doc.Saturation.Monounsaturated), "percent"},
			[]string{"saturation", "polyunsaturated", number(doc.Saturation.Polyunsaturated), "percent"},
		)
	}
	if doc.Recipe != nil {
		rows = append(rows,
			[]string{"sensory", "top", strings.Join(doc.Recipe.Pyramid.Top, "; "), ""},
			[]string{"sensory", "heart", strings.Join(doc.Recipe.Pyramid.Heart, "; "), ""},
			[]string{"sensory", "base", strings.Join(doc.Recipe.Pyramid.Base, "; "), ""},
			[]string{"sensory", "emotions", strings.Join(doc.Recipe.EmotionLabels(), "; "), ""},
		)
	}
	for _, accord := range doc.Accords {
		rows = append(rows, []string{"accord", accord.Oil, strings.Join(accord.Notes, "; "), strings.Join(accord.Emotions, "; ")})
	}
	for _, row := range doc.ESG {
		detail := fmt.Sprintf("origin=%s; certification=%s", row.Origin, row.Certification)
		if row.Defaulted {
			detail += "; defaulted"
		}
		rows = append(rows, []string{"esg", row.Oil, number(row.ImpactEstimate), detail})
	}
	switch {
	case doc.Totals != nil:
		rows = append(rows,
			[]string{"totals", "co2", number(doc.Totals.CO2), "kg"},
			[]string{"totals", "water", number(doc.Totals.Water), "L"},
		)
	case doc.TotalsError != "":
		rows = append(rows, []string{"totals", "error", doc.TotalsError, ""})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func number(value float64) string {
	return strconv.FormatFloat(value, 'f', 4, 64)
}
