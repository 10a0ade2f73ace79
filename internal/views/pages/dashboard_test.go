package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/formulation"
	"lipidgenesis/internal/refdata"
	"lipidgenesis/internal/report"
	"lipidgenesis/internal/views/theme"
)

func workspaceData(t *testing.T, in formulation.Input) WorkspaceData {
	t.Helper()
	cat := refdata.MustDefault()
	return WorkspaceData{
		Oils:      cat.OilNames(),
		Lines:     cat.Sensory().Lines(),
		Occasions: cat.Sensory().Occasions(),
		Document:  report.Build(formulation.Evaluate(cat, in), "", time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)),
	}
}

func render(t *testing.T, data WorkspaceData, full bool) string {
	t.Helper()
	var buf bytes.Buffer
	component := Workspace(data)
	if full {
		component = Dashboard(data)
	}
	if err := component.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestWorkspaceShowsWarningForEmptyBlend(t *testing.T) {
	t.Parallel()

	out := render(t, workspaceData(t, formulation.Input{}), false)
	if !strings.Contains(out, formulation.EmptyBlendWarning) {
		t.Fatalf("expected empty-blend warning in output: %s", out)
	}
	if strings.Contains(out, `class="chart"`) {
		t.Fatal("expected no chart for an empty blend")
	}
	if !strings.HasPrefix(out, `<div id="workspace"`) {
		t.Fatalf("expected workspace fragment, got %q", out[:40])
	}
}

func TestWorkspaceRendersBlend(t *testing.T) {
	t.Parallel()

	out := render(t, workspaceData(t, formulation.Input{
		Percentages: blend.Percentages{"Palm Oil": 60, "Palm Kernel Oil": 40},
		Line:        "essentia",
		Occasion:    "face",
	}), false)

	for _, token := range []string{
		`name="share:Palm Oil"`,
		`id="slider-palm-kernel-oil"`,
		`value="60.0"`,
		`<option value="Essentia" selected>`,
		`<option value="Face" selected>`,
		"C16:0",
		"Bergamot, Grapefruit",
		"Ylang-Ylang, Rose",
		"CO2 total",
		`href="/app/report.pdf"`,
		"Total: 100.0%",
	} {
		if !strings.Contains(out, token) {
			t.Fatalf("expected output to contain %q", token)
		}
	}
	if strings.Contains(out, formulation.EmptyBlendWarning) {
		t.Fatal("did not expect the empty-blend warning")
	}
}

func TestWorkspaceReportsMissingFootprint(t *testing.T) {
	t.Parallel()

	out := render(t, workspaceData(t, formulation.Input{Percentages: blend.Percentages{"Palm Stearin": 20}}), false)
	if !strings.Contains(out, "Footprint totals unavailable") {
		t.Fatalf("expected totals warning: %s", out)
	}
}

func TestWorkspaceEscapesMessages(t *testing.T) {
	t.Parallel()

	data := workspaceData(t, formulation.Input{})
	data.Error = `<script>alert("x")</script>`
	out := render(t, data, false)
	if strings.Contains(out, "<script>alert") {
		t.Fatal("expected error message to be escaped")
	}
}

func TestDashboardWrapsWorkspace(t *testing.T) {
	t.Parallel()

	out := render(t, workspaceData(t, formulation.Input{}), true)
	if !strings.HasPrefix(out, "<!doctype html>") || !strings.Contains(out, `id="workspace"`) {
		t.Fatalf("expected full page around the workspace: %s", out)
	}
	if !strings.Contains(out, "htmx.org") {
		t.Fatal("expected htmx script on the full page")
	}
}

func TestDashboardAppliesTheme(t *testing.T) {
	t.Parallel()

	data := workspaceData(t, formulation.Input{})
	data.Theme = theme.Resolve("nocturne")
	out := render(t, data, true)
	for _, token := range []string{
		`<body class="theme-nocturne">`,
		`<option value="nocturne" selected>`,
		`<option value="grove">`,
	} {
		if !strings.Contains(out, token) {
			t.Fatalf("expected output to contain %q", token)
		}
	}
}

func TestProfileChartScalesToPeak(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rows := []report.AcidShare{{Acid: "C16:0", Share: 40}, {Acid: "C18:1", Share: 20}}
	if err := ProfileChart(rows).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render chart: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "width:100.0%") || !strings.Contains(out, "width:50.0%") {
		t.Fatalf("expected bars scaled to the largest share: %s", out)
	}
}

func TestSlug(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Palm Kernel Oil": "palm-kernel-oil",
		" Babaçu (raw) ":  "babaçu-raw",
		"":                "",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Fatalf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
