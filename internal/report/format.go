package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// numberFormat prints human-facing numbers for one locale.
type numberFormat struct {
	printer *message.Printer
}

func newNumberFormat(locale string) numberFormat {
	tag := language.English
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		if parsed, err := language.Parse(trimmed); err == nil {
			tag = parsed
		}
	}
	return numberFormat{printer: message.NewPrinter(tag)}
}

// Fixed formats value with the given number of decimals.
func (f numberFormat) Fixed(value float64, decimals int) string {
	return f.printer.Sprintf(fmt.Sprintf("%%.%df", decimals), value)
}

// Percent formats value followed by a percent sign.
func (f numberFormat) Percent(value float64, decimals int) string {
	return f.Fixed(value, decimals) + "%"
}
