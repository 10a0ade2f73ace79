package report

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"lipidgenesis/internal/formulation"
)

const (
	keywordsPrefix = "lipidgenesis:v1"

	sectionProfile     = "Lipid Profile"
	sectionChart       = "Fatty Acid Chart"
	sectionComposition = "Blend Composition"
	sectionSensory     = "Sensory"
	sectionESG         = "Environmental & ESG"
)

// Chart bar colour (#4C9B9C).
var barColour = [3]int{0x4C, 0x9B, 0x9C}

// PDFRenderer writes an A4 report. Unless OmitKeywords is set, the blend
// input is also stored in the document keywords so ReadPDF can recover it
// exactly; without them ReadPDF falls back to the page text.
type PDFRenderer struct {
	Locale string
	// OmitKeywords leaves the blend out of the document keywords.
	OmitKeywords bool
}

func (PDFRenderer) ContentType() string { return "application/pdf" }

func (PDFRenderer) Extension() string { return "pdf" }

func (r PDFRenderer) Render(ctx context.Context, w io.Writer, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	nf := newNumberFormat(r.Locale)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor("LipidGenesis", false)
	pdf.SetSubject(doc.Fingerprint, false)
	if !r.OmitKeywords {
		pdf.SetKeywords(encodeKeywords(doc), false)
	}
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Line: %s | Occasion: %s", orDash(doc.Line), orDash(doc.Occasion))), "", 1, "L", false, 0, "")

	if doc.Empty() {
		pdf.Ln(5)
		pdf.CellFormat(0, 8, formulation.EmptyBlendWarning, "", 1, "L", false, 0, "")
	}

	heading(pdf, sectionProfile)
	for _, row := range doc.Profile {
		pdf.CellFormat(0, 8, fmt.Sprintf("%s: %s", row.Acid, nf.Percent(row.Share, 2)), "", 1, "L", false, 0, "")
	}
	if !doc.Empty() {
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Saturated %s | Monounsaturated %s | Polyunsaturated %s",
			nf.Percent(doc.Saturation.Saturated, 2),
			nf.Percent(doc.Saturation.Monounsaturated, 2),
			nf.Percent(doc.Saturation.Polyunsaturated, 2))), "", 1, "L", false, 0, "")

		heading(pdf, sectionChart)
		drawChart(pdf, doc.Profile, nf)
	}

	heading(pdf, sectionComposition)
	for _, row := range doc.Composition {
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s: %s", row.Oil, nf.Percent(row.Percent, 1))), "", 1, "L", false, 0, "")
	}

	heading(pdf, sectionSensory)
	if doc.Recipe != nil {
		pdf.CellFormat(0, 8, tr("Top: "+strings.Join(doc.Recipe.Pyramid.Top, ", ")), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 8, tr("Heart: "+strings.Join(doc.Recipe.Pyramid.Heart, ", ")), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 8, tr("Base: "+strings.Join(doc.Recipe.Pyramid.Base, ", ")), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 8, tr("Emotions: "+strings.Join(doc.Recipe.EmotionLabels(), ", ")), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 8, "No sensory line selected.", "", 1, "L", false, 0, "")
	}
	for _, accord := range doc.Accords {
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s brings %s (%s)", accord.Oil,
			strings.Join(accord.Notes, ", "), strings.Join(accord.Emotions, ", "))), "", 1, "L", false, 0, "")
	}

	heading(pdf, sectionESG)
	for _, row := range doc.ESG {
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s: %s impact | Origin: %s | Cert.: %s",
			row.Oil, nf.Fixed(row.ImpactEstimate, 2), row.Origin, row.Certification)), "", 1, "L", false, 0, "")
	}
	if doc.Totals != nil {
		pdf.CellFormat(0, 8, fmt.Sprintf("CO2 total: %s kg | Water total: %s L",
			nf.Fixed(doc.Totals.CO2, 2), nf.Fixed(doc.Totals.Water, 1)), "", 1, "L", false, 0, "")
	} else if doc.TotalsError != "" {
		pdf.CellFormat(0, 8, tr("Footprint totals unavailable: "+doc.TotalsError), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 6, fmt.Sprintf("Fingerprint %s | %s", doc.Fingerprint, doc.GeneratedAt.Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func heading(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(5)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func drawChart(pdf *fpdf.Fpdf, rows []AcidShare, nf numberFormat) {
	const (
		labelWidth = 22.0
		maxBar     = 120.0
		rowHeight  = 6.0
	)
	peak := 0.0
	for _, row := range rows {
		if row.Share > peak {
			peak = row.Share
		}
	}
	if peak == 0 {
		return
	}

	left, _, _, _ := pdf.GetMargins()
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(barColour[0], barColour[1], barColour[2])
	for _, row := range rows {
		y := pdf.GetY()
		pdf.SetXY(left, y)
		pdf.CellFormat(labelWidth, rowHeight, row.Acid, "", 0, "L", false, 0, "")
		width := maxBar * row.Share / peak
		if width > 0 {
			pdf.Rect(left+labelWidth, y+1, width, rowHeight-2, "F")
		}
		pdf.SetXY(left+labelWidth+width+2, y)
		pdf.CellFormat(20, rowHeight, nf.Fixed(row.Share, 1), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 11)
}

// encodeKeywords stores the blend input as a URL query so it survives the
// PDF string encoding unchanged.
func encodeKeywords(doc Document) string {
	values := url.Values{}
	values.Set("line", doc.Line)
	values.Set("occasion", doc.Occasion)
	for _, row := range doc.Composition {
		values.Add("oil", row.Oil+"="+strconv.FormatFloat(row.Percent, 'g', -1, 64))
	}
	return keywordsPrefix + " " + values.Encode()
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
