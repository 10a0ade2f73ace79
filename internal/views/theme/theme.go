// Package theme lists the colour schemes of the dashboard.
package theme

import "strings"

// Option represents a selectable theme exposed to the UI.
type Option struct {
	Value string
	Label string
}

// Theme is the resolved styling of the dashboard shell.
type Theme struct {
	Key       string
	BodyClass string
}

const (
	// DefaultKey defines the fallback theme when no preference exists.
	DefaultKey = "grove"
)

var catalogue = map[string]Theme{
	"grove":    {Key: "grove", BodyClass: "theme-grove"},
	"nocturne": {Key: "nocturne", BodyClass: "theme-nocturne"},
}

var options = []Option{
	{Value: "grove", Label: "Grove (Light)"},
	{Value: "nocturne", Label: "Nocturne (Dark)"},
}

// Lookup returns the theme registered under key, ignoring case.
func Lookup(key string) (Theme, bool) {
	value, ok := catalogue[strings.ToLower(strings.TrimSpace(key))]
	return value, ok
}

// Resolve returns the theme for key, falling back to the default.
func Resolve(key string) Theme {
	if value, ok := Lookup(key); ok {
		return value
	}
	return catalogue[DefaultKey]
}

// Options exposes the available theme selections for rendering in a form control.
func Options() []Option {
	return options
}
