package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"lipidgenesis/internal/formulation"
)

// TableRenderer draws the report as bordered terminal tables.
type TableRenderer struct {
	Locale string
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4C9B9C"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("246"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numberStyle  = cellStyle.Align(lipgloss.Right)
)

func (TableRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (TableRenderer) Extension() string { return "txt" }

func (r TableRenderer) Render(ctx context.Context, w io.Writer, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	nf := newNumberFormat(r.Locale)

	blocks := []string{
		titleStyle.Render(doc.Title),
		fmt.Sprintf("Line: %s | Occasion: %s", orDash(doc.Line), orDash(doc.Occasion)),
	}

	if doc.Empty() {
		blocks = append(blocks, warnStyle.Render(formulation.EmptyBlendWarning))
	} else {
		rows := make([][]string, 0, len(doc.Profile))
		for _, row := range doc.Profile {
			rows = append(rows, []string{row.Acid, nf.Percent(row.Share, 2)})
		}
		blocks = append(blocks,
			sectionStyle.Render(sectionProfile),
			newTable([]string{"Fatty acid", "%"}, rows),
			fmt.Sprintf("Saturated %s | Monounsaturated %s | Polyunsaturated %s",
				nf.Percent(doc.Saturation.Saturated, 2),
				nf.Percent(doc.Saturation.Monounsaturated, 2),
				nf.Percent(doc.Saturation.Polyunsaturated, 2)),
		)

		rows = rows[:0]
		for _, row := range doc.Composition {
			rows = append(rows, []string{row.Oil, nf.Percent(row.Percent, 1)})
		}
		blocks = append(blocks, sectionStyle.Render(sectionComposition), newTable([]string{"Oil", "%"}, rows))
	}

	if doc.Recipe != nil {
		blocks = append(blocks,
			sectionStyle.Render(sectionSensory),
			newTable([]string{"Tier", "Notes"}, [][]string{
				{"Top", strings.Join(doc.Recipe.Pyramid.Top, ", ")},
				{"Heart", strings.Join(doc.Recipe.Pyramid.Heart, ", ")},
				{"Base", strings.Join(doc.Recipe.Pyramid.Base, ", ")},
				{"Emotions", emotionLine(doc)},
			}),
		)
	}

	if len(doc.ESG) > 0 {
		rows := make([][]string, 0, len(doc.ESG))
		for _, row := range doc.ESG {
			origin := row.Origin
			if row.Defaulted {
				origin += " *"
			}
			rows = append(rows, []string{row.Oil, nf.Percent(row.Usage, 1), nf.Fixed(row.ImpactEstimate, 2), origin, row.Certification})
		}
		blocks = append(blocks, sectionStyle.Render(sectionESG), newTable([]string{"Oil", "Usage", "Impact", "Origin", "Certification"}, rows))
		switch {
		case doc.Totals != nil:
			blocks = append(blocks, fmt.Sprintf("CO2 total: %s kg | Water total: %s L | Impact: %s",
				nf.Fixed(doc.Totals.CO2, 2), nf.Fixed(doc.Totals.Water, 1), nf.Fixed(doc.TotalImpact, 2)))
		case doc.TotalsError != "":
			blocks = append(blocks, warnStyle.Render("Footprint totals unavailable: "+doc.TotalsError))
		}
	}

	blocks = append(blocks, mutedStyle.Render("fingerprint "+doc.Fingerprint))

	_, err := io.WriteString(w, lipgloss.JoinVertical(lipgloss.Left, blocks...)+"\n")
	return err
}

func newTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col > 0 && len(headers) == 2 && headers[1] == "%":
				return numberStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func emotionLine(doc Document) string {
	parts := make([]string, 0, len(doc.Recipe.Emotions))
	for _, emotion := range doc.Recipe.Emotions {
		parts = append(parts, strings.TrimSpace(emotion.Label+" "+emotion.Icon))
	}
	return strings.Join(parts, ", ")
}
