package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lipidgenesis/internal/config"
	"lipidgenesis/internal/formulation"
	"lipidgenesis/internal/importer"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("1.2.3")
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func useEmbeddedCatalog(t *testing.T) {
	t.Helper()
	restoreGlobals(t)
	useConfig(config.Config{
		Server:  config.ServerConfig{Addr: ":8080"},
		Logging: config.LoggingConfig{Level: "info"},
		Report:  config.ReportConfig{Locale: "en", Title: "Batch 42"},
	})
	nowFunc = func() time.Time { return time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC) }
}

func TestRootRegistersCommands(t *testing.T) {
	root := NewRootCmd("1.2.3")
	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"serve", "blend", "report", "oils", "import", "mcp"} {
		assert.Contains(t, names, want)
	}

	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
}

func TestBlendJSON(t *testing.T) {
	useEmbeddedCatalog(t)

	out, err := execute(t, "blend", "--oil", "Palma=50", "--oil", "Palm Kernel Oil=50", "--line", "vitalis", "--format", "json")
	require.NoError(t, err)

	var decoded blendOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.InDelta(t, 24.2, decoded.Profile.Profile["C12:0"], 1e-9)
	assert.Equal(t, 50.0, decoded.Profile.Percentages["Palm Oil"])
	assert.True(t, decoded.Totals.Available)
	assert.InDelta(t, 1.3, decoded.Totals.CO2, 1e-9)
	require.NotNil(t, decoded.Sensory)
	assert.Equal(t, "Vitalis", decoded.Sensory.Line)
}

func TestBlendTableAndCSV(t *testing.T) {
	useEmbeddedCatalog(t)

	out, err := execute(t, "blend", "--oil", "Palm Oil=60", "--oil", "Palm Kernel Oil=40")
	require.NoError(t, err)
	assert.Contains(t, out, "C16:0")
	assert.Contains(t, out, "Palm Kernel Oil")

	out, err = execute(t, "blend", "--oil", "Palm Oil=60", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "C16:0")

	out, err = execute(t, "blend")
	require.NoError(t, err)
	assert.Contains(t, out, formulation.EmptyBlendWarning)
}

func TestBlendRejectsBadInput(t *testing.T) {
	useEmbeddedCatalog(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad pair", []string{"blend", "--oil", "Palm Oil"}},
		{"bad number", []string{"blend", "--oil", "Palm Oil=lots"}},
		{"unknown line", []string{"blend", "--oil", "Palm Oil=10", "--line", "Nocturna"}},
		{"unknown occasion", []string{"blend", "--oil", "Palm Oil=10", "--line", "Ardor", "--occasion", "Feet"}},
		{"unknown format", []string{"blend", "--oil", "Palm Oil=10", "--format", "xml"}},
		{"missing report", []string{"blend", "--from", filepath.Join(t.TempDir(), "missing.pdf")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestReportWritesAndRestoresPDF(t *testing.T) {
	useEmbeddedCatalog(t)

	_, err := execute(t, "report", "--oil", "Palm Oil=50")
	require.Error(t, err, "pdf needs --out")

	path := filepath.Join(t.TempDir(), "batch.pdf")
	out, err := execute(t, "report",
		"--oil", "Palm Olein=55", "--oil", "Palm Stearin=45",
		"--line", "Essentia", "--occasion", "Hair",
		"--out", path,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	out, err = execute(t, "report", "--from", path, "--format", "json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Batch 42", doc["title"])
	assert.Equal(t, "Essentia", doc["line"])
	assert.Equal(t, "Hair", doc["occasion"])
	composition, ok := doc["composition"].([]any)
	require.True(t, ok)
	assert.Len(t, composition, 2)
}

func TestReportRestoresPDFWithoutKeywords(t *testing.T) {
	useEmbeddedCatalog(t)

	path := filepath.Join(t.TempDir(), "plain.pdf")
	_, err := execute(t, "report",
		"--oil", "Palm Oil=70", "--oil", "Palm Kernel Oil=30",
		"--line", "Ardor", "--occasion", "Body",
		"--no-keywords", "--out", path,
	)
	require.NoError(t, err)

	out, err := execute(t, "blend", "--from", path, "--format", "json")
	require.NoError(t, err)

	var decoded blendOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 70.0, decoded.Profile.Percentages["Palm Oil"])
	assert.Equal(t, 30.0, decoded.Profile.Percentages["Palm Kernel Oil"])
	require.NotNil(t, decoded.Sensory)
	assert.Equal(t, "Ardor", decoded.Sensory.Line)
}

func TestReportRejectsUnknownFormat(t *testing.T) {
	useEmbeddedCatalog(t)

	_, err := execute(t, "report", "--oil", "Palm Oil=50", "--format", "docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf, csv, json, table")
}

func TestOils(t *testing.T) {
	useEmbeddedCatalog(t)

	out, err := execute(t, "oils")
	require.NoError(t, err)
	for _, name := range []string{"Palm Kernel Oil", "Palm Oil", "Palm Olein", "Palm Stearin"} {
		assert.Contains(t, out, name)
	}

	out, err = execute(t, "oils", "--format", "json")
	require.NoError(t, err)
	var oils []formulation.OilSummary
	require.NoError(t, json.Unmarshal([]byte(out), &oils))
	assert.Len(t, oils, 4)
}

func TestImportRequiresDatabase(t *testing.T) {
	useEmbeddedCatalog(t)

	_, err := execute(t, "import", "oils.csv")
	assert.ErrorIs(t, err, errNoDatabase)

	_, err = execute(t, "import")
	assert.Error(t, err)
}

func TestImportRunsAgainstSeededDatabase(t *testing.T) {
	restoreGlobals(t)
	useConfig(config.Config{Database: config.DatabaseConfig{UseMock: true}})

	var gotPath string
	runImportFunc = func(ctx context.Context, database *gorm.DB, path string) (importer.Summary, error) {
		require.NotNil(t, database)
		gotPath = path
		return importer.Summary{Oils: 2, Rows: 5, Skipped: 1}, nil
	}

	out, err := execute(t, "import", "extra-oils.csv")
	require.NoError(t, err)
	assert.Equal(t, "extra-oils.csv", gotPath)
	assert.Equal(t, "imported 2 oils from 5 rows (1 skipped)\n", out)
}
