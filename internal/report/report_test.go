package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/formulation"
	"lipidgenesis/internal/refdata"
)

var generatedAt = time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)

func sampleDocument(t *testing.T, percentages blend.Percentages) Document {
	t.Helper()
	eval := formulation.Evaluate(refdata.MustDefault(), formulation.Input{
		Percentages: percentages,
		Line:        "Lúmina",
		Occasion:    "Bath",
	})
	return Build(eval, "", generatedAt)
}

func TestBuildFlattensEvaluation(t *testing.T) {
	t.Parallel()

	doc := sampleDocument(t, blend.Percentages{"Palm Oil": 50, "Palm Kernel Oil": 50, "Palm Olein": 0})

	assert.Equal(t, DefaultTitle, doc.Title)
	assert.Equal(t, "Lúmina", doc.Line)
	assert.Equal(t, []OilShare{{Oil: "Palm Kernel Oil", Percent: 50}, {Oil: "Palm Oil", Percent: 50}}, doc.Composition)
	assert.Equal(t, "C6:0", doc.Profile[0].Acid)
	assert.Equal(t, "C20:1", doc.Profile[len(doc.Profile)-1].Acid)
	require.NotNil(t, doc.Recipe)
	require.NotNil(t, doc.Totals)
	assert.Empty(t, doc.TotalsError)
	assert.Len(t, doc.ESG, 3)
	assert.Len(t, doc.Fingerprint, 64)
}

func TestBuildKeepsTotalsError(t *testing.T) {
	t.Parallel()

	doc := sampleDocument(t, blend.Percentages{"Palm Stearin": 100})

	assert.Nil(t, doc.Totals)
	assert.Contains(t, doc.TotalsError, "Palm Stearin")
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	base := Fingerprint(blend.Percentages{"Palm Oil": 50, "Palm Kernel Oil": 50}, "Vitalis", "Face")

	assert.Equal(t, base, Fingerprint(blend.Percentages{"Palm Kernel Oil": 50, "Palm Oil": 50, "Palm Olein": 0}, " vitalis", "face"))
	assert.NotEqual(t, base, Fingerprint(blend.Percentages{"Palm Oil": 50, "Palm Kernel Oil": 51}, "Vitalis", "Face"))
	assert.NotEqual(t, base, Fingerprint(blend.Percentages{"Palm Oil": 50, "Palm Kernel Oil": 50}, "Ardor", "Face"))
}

func TestForFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ext  string
	}{
		{"pdf", "pdf"},
		{"CSV", "csv"},
		{"json", "json"},
		{"table", "txt"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, err := ForFormat(tt.name, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.ext, r.Extension())
			assert.NotEmpty(t, r.ContentType())
		})
	}

	_, err := ForFormat("docx", Options{})
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestCSVRenderer(t *testing.T) {
	t.Parallel()

	doc := sampleDocument(t, blend.Percentages{"Palm Oil": 50, "Palm Kernel Oil": 50})
	var buf bytes.Buffer
	require.NoError(t, CSVRenderer{}.Render(context.Background(), &buf, doc))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"section", "name", "value", "detail"}, records[0])
	assert.Contains(t, records, []string{"profile", "C12:0", "24.2000", "percent"})
	assert.Contains(t, records, []string{"composition", "Palm Oil", "50.0000", "percent"})
	assert.Contains(t, records, []string{"totals", "co2", "1.3000", "kg"})
}

func TestJSONRenderer(t *testing.T) {
	t.Parallel()

	doc := sampleDocument(t, blend.Percentages{})
	var buf bytes.Buffer
	require.NoError(t, JSONRenderer{}.Render(context.Background(), &buf, doc))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []any{}, decoded["profile"])
	assert.NotContains(t, decoded, "saturation")
	assert.Equal(t, "Bath", decoded["occasion"])
}

func TestTableRendererShowsWarningForEmptyBlend(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, TableRenderer{}.Render(context.Background(), &buf, sampleDocument(t, nil)))
	assert.Contains(t, buf.String(), "Define at least one oil")

	buf.Reset()
	require.NoError(t, TableRenderer{}.Render(context.Background(), &buf, sampleDocument(t, blend.Percentages{"Palm Oil": 100})))
	out := buf.String()
	assert.Contains(t, out, "C16:0")
	assert.Contains(t, out, "44.00%")
	assert.Contains(t, out, "Mandarin, Neroli")
}

func TestNumberFormatLocales(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "24.20", newNumberFormat("").Fixed(24.2, 2))
	assert.Equal(t, "24.20", newNumberFormat("not a locale!").Fixed(24.2, 2))
	assert.Equal(t, "24,20", newNumberFormat("pt-BR").Fixed(24.2, 2))
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, name := range Formats() {
		r, err := ForFormat(name, Options{})
		require.NoError(t, err)
		assert.ErrorIs(t, r.Render(ctx, &bytes.Buffer{}, Document{}), context.Canceled, name)
	}
}

func TestPDFRoundTrip(t *testing.T) {
	t.Parallel()

	doc := sampleDocument(t, blend.Percentages{"Palm Oil": 62.5, "Palm Kernel Oil": 37.5})
	var buf bytes.Buffer
	require.NoError(t, PDFRenderer{}.Render(context.Background(), &buf, doc))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	imported, err := ReadPDF(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, blend.Percentages{"Palm Oil": 62.5, "Palm Kernel Oil": 37.5}, imported.Percentages)
	assert.Equal(t, "Lúmina", imported.Line)
	assert.Equal(t, "Bath", imported.Occasion)
	assert.Equal(t, "Bath", imported.Input().Occasion)
}

func TestPDFTextRoundTrip(t *testing.T) {
	t.Parallel()

	eval := formulation.Evaluate(refdata.MustDefault(), formulation.Input{
		Percentages: blend.Percentages{"Palm Oil": 62.5, "Palm Kernel Oil": 37.5},
		Line:        "ardor",
		Occasion:    "body",
	})
	doc := Build(eval, "", generatedAt)

	var buf bytes.Buffer
	require.NoError(t, PDFRenderer{OmitKeywords: true}.Render(context.Background(), &buf, doc))
	require.False(t, bytes.Contains(buf.Bytes(), []byte(keywordsPrefix)))

	imported, err := ReadPDF(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, blend.Percentages{"Palm Oil": 62.5, "Palm Kernel Oil": 37.5}, imported.Percentages)
	assert.Equal(t, "Ardor", imported.Line)
	assert.Equal(t, "Body", imported.Occasion)
}

func TestReadPDFRejectsGarbage(t *testing.T) {
	t.Parallel()

	data := []byte("not a pdf at all")
	_, err := ReadPDF(bytes.NewReader(data), int64(len(data)))
	assert.Error(t, err)
}

func TestParseReportText(t *testing.T) {
	t.Parallel()

	lines := []string{
		"LipidGenesis Batch Report",
		"Line: Ardor | Occasion: Body",
		"Lipid Profile",
		"C12:0: 24,20%",
		"Blend Composition",
		"Palm Oil: 62,5%",
		"Palm Kernel Oil: 37.5%",
		"Sensory",
		"Top: Pink pepper, Cardamom",
	}

	imported, err := parseReportText(lines)
	require.NoError(t, err)
	assert.Equal(t, "Ardor", imported.Line)
	assert.Equal(t, "Body", imported.Occasion)
	assert.Equal(t, blend.Percentages{"Palm Oil": 62.5, "Palm Kernel Oil": 37.5}, imported.Percentages)

	_, err = parseReportText([]string{"Line: - | Occasion: -", "Sensory"})
	assert.ErrorIs(t, err, ErrNotAReport)

	_, err = parseReportText([]string{"Blend Composition", "Palm Oil: many%"})
	assert.ErrorIs(t, err, ErrNotAReport)
}

func TestTextParserIgnoresOtherSections(t *testing.T) {
	t.Parallel()

	imported, err := parseReportText(strings.Split("Blend Composition\nPalm Oil: 10%\nEnvironmental & ESG\nPalm Oil: 0.12 impact | Origin: x", "\n"))
	require.NoError(t, err)
	assert.Equal(t, blend.Percentages{"Palm Oil": 10}, imported.Percentages)
}
