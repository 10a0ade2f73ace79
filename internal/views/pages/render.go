package pages

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/a-h/templ"

	"lipidgenesis/internal/report"
	"lipidgenesis/internal/sensory"
	"lipidgenesis/internal/views/theme"
)

//go:generate templ generate

// ShareFieldPrefix prefixes the form field of every oil slider.
const ShareFieldPrefix = "share:"

// WorkspaceData is everything the dashboard shows for one session.
type WorkspaceData struct {
	Oils      []string
	Lines     []string
	Occasions []string
	Document  report.Document
	Notice    string
	Error     string
	Theme     theme.Theme
}

var exportFormats = []string{"pdf", "csv", "json"}

func formatFloat(value float64, decimals int) string {
	return strconv.FormatFloat(value, 'f', decimals, 64)
}

func isSelected(option, current string) bool {
	return current != "" && strings.EqualFold(option, current)
}

func sliderID(oil string) string {
	return "slider-" + slug(oil)
}

// slug turns an oil name into an id fragment: "Palm Kernel Oil" -> "palm-kernel-oil".
func slug(value string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// chartBar is one acid of the profile chart, Width being a percentage of the
// widest bar.
type chartBar struct {
	Acid  string
	Share float64
	Width float64
}

func chartBars(rows []report.AcidShare) []chartBar {
	peak := 0.0
	for _, row := range rows {
		if row.Share > peak {
			peak = row.Share
		}
	}
	bars := make([]chartBar, 0, len(rows))
	for _, row := range rows {
		bar := chartBar{Acid: row.Acid, Share: row.Share}
		if peak > 0 {
			bar.Width = row.Share / peak * 100
		}
		bars = append(bars, bar)
	}
	return bars
}

func barStyle(width float64) templ.SafeCSS {
	return templ.SafeCSS("width:" + formatFloat(width, 1) + "%")
}

func recipeTitle(r *sensory.Recipe) string {
	if r.Occasion == "" {
		return r.Line
	}
	return r.Line + " · " + r.Occasion
}
