// Package report renders a blend evaluation as a batch report in PDF, CSV,
// JSON or terminal-table form, and reads exported PDF reports back.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/esg"
	"lipidgenesis/internal/formulation"
	"lipidgenesis/internal/sensory"
)

// DefaultTitle is used when Build is given an empty title.
const DefaultTitle = "LipidGenesis Batch Report"

// ErrUnknownFormat is returned by ForFormat.
var ErrUnknownFormat = errors.New("report: unknown format")

// AcidShare is one row of the lipid profile in chain order.
type AcidShare struct {
	Acid  string  `json:"acid"`
	Share float64 `json:"share"`
}

// OilShare is one row of the blend composition.
type OilShare struct {
	Oil     string  `json:"oil"`
	Percent float64 `json:"percent"`
}

// Document is the flattened content of a report.
type Document struct {
	Title       string
	Line        string
	Occasion    string
	Composition []OilShare
	Percentages blend.Percentages
	Profile     []AcidShare
	Saturation  blend.Saturation
	Recipe      *sensory.Recipe
	Accords     []sensory.Accord
	ESG         []esg.Row
	TotalImpact float64
	Totals      *esg.Totals
	TotalsError string
	GeneratedAt time.Time
	Fingerprint string
}

// Empty reports whether the document describes a blend without any oil.
func (d Document) Empty() bool {
	return len(d.Profile) == 0
}

// Build flattens an evaluation into a Document. Oils at zero percent are left
// out of the composition but kept in the environmental table.
func Build(eval formulation.Evaluation, title string, generatedAt time.Time) Document {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	percentages := eval.Input.Percentages

	doc := Document{
		Title:       title,
		Line:        eval.Input.Line,
		Occasion:    eval.Input.Occasion,
		Percentages: percentages,
		Saturation:  eval.Saturation,
		Accords:     eval.Accords,
		ESG:         eval.ESG.Rows(),
		TotalImpact: eval.ESG.TotalImpact(),
		GeneratedAt: generatedAt.UTC(),
		Fingerprint: Fingerprint(percentages, eval.Input.Line, eval.Input.Occasion),
	}

	for _, oil := range percentages.Oils() {
		if percentages[oil] > 0 {
			doc.Composition = append(doc.Composition, OilShare{Oil: oil, Percent: percentages[oil]})
		}
	}
	for _, acid := range blend.SortByChain(eval.Blend.Acids()) {
		doc.Profile = append(doc.Profile, AcidShare{Acid: acid, Share: eval.Blend[acid]})
	}
	if eval.HasRecipe {
		recipe := eval.Recipe
		doc.Recipe = &recipe
	}
	if eval.TotalsErr != nil {
		doc.TotalsError = eval.TotalsErr.Error()
	} else {
		totals := eval.Totals
		doc.Totals = &totals
	}
	return doc
}

// Options configures renderers.
type Options struct {
	// Locale is a BCP 47 tag used for human-facing numbers; machine formats
	// (CSV, JSON) ignore it.
	Locale string
	// OmitKeywords keeps the blend input out of PDF metadata.
	OmitKeywords bool
}

// Renderer writes a Document in one output format.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, doc Document) error
	ContentType() string
	Extension() string
}

// Formats lists the names accepted by ForFormat.
func Formats() []string {
	return []string{"pdf", "csv", "json", "table"}
}

// ForFormat resolves a renderer by name, ignoring case.
func ForFormat(name string, opts Options) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pdf":
		return PDFRenderer{Locale: opts.Locale, OmitKeywords: opts.OmitKeywords}, nil
	case "csv":
		return CSVRenderer{}, nil
	case "json":
		return JSONRenderer{Indent: true}, nil
	case "table", "text":
		return TableRenderer{Locale: opts.Locale}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}
