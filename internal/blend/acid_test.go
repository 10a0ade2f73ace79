package blend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAcidCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code    string
		want    AcidCode
		wantErr bool
	}{
		{"C18:2", AcidCode{Carbons: 18, DoubleBonds: 2}, false},
		{"C6:0", AcidCode{Carbons: 6, DoubleBonds: 0}, false},
		{" c16:1 ", AcidCode{Carbons: 16, DoubleBonds: 1}, false},
		{"18:2", AcidCode{}, true},
		{"C18", AcidCode{}, true},
		{"Cx:1", AcidCode{}, true},
		{"C4:3", AcidCode{}, true},
		{"", AcidCode{}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAcidCode(tt.code)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidAcidCode), "ParseAcidCode(%q) error = %v", tt.code, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAcidCodeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "C18:1", AcidCode{Carbons: 18, DoubleBonds: 1}.String())
}

func TestSortByChain(t *testing.T) {
	t.Parallel()

	input := []string{"C18:1", "C10:0", "unknown", "C6:0", "C18:0", "C12:0"}
	got := SortByChain(input)

	assert.Equal(t, []string{"C6:0", "C10:0", "C12:0", "C18:0", "C18:1", "unknown"}, got)
	assert.Equal(t, "C18:1", input[0], "input slice must not be reordered")
}

func TestClassify(t *testing.T) {
	t.Parallel()

	summary := Classify(Result{
		"C16:0": 44.0,
		"C18:0": 4.5,
		"C18:1": 39.0,
		"C18:2": 10.0,
		"C18:3": 0.3,
		"other": 2.2,
	})

	assert.InDelta(t, 48.5, summary.Saturated, 1e-9)
	assert.InDelta(t, 39.0, summary.Monounsaturated, 1e-9)
	assert.InDelta(t, 10.3, summary.Polyunsaturated, 1e-9)
	assert.InDelta(t, 2.2, summary.Unclassified, 1e-9)
}
