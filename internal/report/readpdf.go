package report

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/formulation"
)

// ErrNotAReport is returned when a PDF carries no recognisable blend.
var ErrNotAReport = errors.New("report: pdf is not a blend report")

// ImportedBlend is the input recovered from an exported report.
type ImportedBlend struct {
	Percentages blend.Percentages
	Line        string
	Occasion    string
}

// Input converts the imported blend into a formulation input.
func (b ImportedBlend) Input() formulation.Input {
	return formulation.Input{Percentages: b.Percentages, Line: b.Line, Occasion: b.Occasion}
}

// ReadPDF recovers the blend composition, line and occasion of a report
// written by PDFRenderer. The document keywords are used when present;
// otherwise the page text is parsed.
func ReadPDF(r io.ReaderAt, size int64) (ImportedBlend, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return ImportedBlend{}, fmt.Errorf("open pdf: %w", err)
	}

	if keywords := reader.Trailer().Key("Info").Key("Keywords").Text(); strings.HasPrefix(keywords, keywordsPrefix) {
		return decodeKeywords(keywords)
	}

	text, err := reader.GetPlainText()
	if err != nil {
		return ImportedBlend{}, fmt.Errorf("read pdf text: %w", err)
	}
	raw, err := io.ReadAll(text)
	if err != nil {
		return ImportedBlend{}, fmt.Errorf("read pdf text: %w", err)
	}
	// Every cell is its own text object, which the reader starts on a new line.
	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return parseReportText(lines)
}

func decodeKeywords(keywords string) (ImportedBlend, error) {
	values, err := url.ParseQuery(strings.TrimSpace(strings.TrimPrefix(keywords, keywordsPrefix)))
	if err != nil {
		return ImportedBlend{}, fmt.Errorf("%w: %v", ErrNotAReport, err)
	}
	imported := ImportedBlend{
		Percentages: make(blend.Percentages),
		Line:        values.Get("line"),
		Occasion:    values.Get("occasion"),
	}
	for _, pair := range values["oil"] {
		name, value, err := formulation.ParseShare(pair)
		if err != nil {
			return ImportedBlend{}, fmt.Errorf("%w: %v", ErrNotAReport, err)
		}
		imported.Percentages[name] += value
	}
	if len(imported.Percentages) == 0 {
		return ImportedBlend{}, ErrNotAReport
	}
	return imported, nil
}

// parseReportText reads the header line and the composition section from the
// report's text lines. Decimal commas are accepted.
func parseReportText(lines []string) (ImportedBlend, error) {
	imported := ImportedBlend{Percentages: make(blend.Percentages)}
	inComposition := false

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "Line:"):
			header, occasion, _ := strings.Cut(strings.TrimPrefix(line, "Line:"), "| Occasion:")
			imported.Line = undash(header)
			imported.Occasion = undash(occasion)
			continue
		case line == sectionComposition:
			inComposition = true
			continue
		case isSection(line):
			inComposition = false
			continue
		}
		if !inComposition {
			continue
		}

		idx := strings.LastIndex(line, ":")
		if idx <= 0 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line[idx+1:]), "%"))
		value, err := strconv.ParseFloat(strings.Replace(strings.ReplaceAll(raw, " ", ""), ",", ".", 1), 64)
		if err != nil {
			return ImportedBlend{}, fmt.Errorf("%w: composition line %q", ErrNotAReport, line)
		}
		imported.Percentages[name] += value
	}

	if len(imported.Percentages) == 0 {
		return ImportedBlend{}, ErrNotAReport
	}
	return imported, nil
}

func isSection(line string) bool {
	switch line {
	case sectionProfile, sectionChart, sectionSensory, sectionESG:
		return true
	}
	return false
}

func undash(value string) string {
	value = strings.TrimSpace(value)
	if value == "-" {
		return ""
	}
	return value
}
