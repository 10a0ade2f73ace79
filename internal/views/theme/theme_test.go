package theme

import "testing"

func TestResolveFallsBackToDefault(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":         DefaultKey,
		"nocturne": "nocturne",
		" Grove ":  "grove",
		"sepia":    DefaultKey,
		"NOCTURNE": "nocturne",
	}
	for key, want := range tests {
		if got := Resolve(key).Key; got != want {
			t.Fatalf("Resolve(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestOptionsAreResolvable(t *testing.T) {
	t.Parallel()

	for _, option := range Options() {
		resolved, ok := Lookup(option.Value)
		if !ok || resolved.Key != option.Value || resolved.BodyClass == "" {
			t.Fatalf("option %q does not resolve to a theme", option.Value)
		}
	}
}
