package mcptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lipidgenesis/internal/formulation"
	"lipidgenesis/internal/refdata"
)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func decodeText[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	return out
}

func TestNewServerRegistersTools(t *testing.T) {
	t.Parallel()

	s := NewServer(nil, "")
	assert.Equal(t, []string{
		ToolListOils,
		ToolComputeBlendProfile,
		ToolComputeESGProfile,
		ToolComputeESGTotals,
		ToolGetSensoryRecipe,
	}, s.Tools())
}

func TestListOils(t *testing.T) {
	t.Parallel()

	s := NewServer(refdata.MustDefault(), "test")
	result, err := s.handleListOils(context.Background(), callRequest(ToolListOils, nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	resp, ok := result.StructuredContent.(ListOilsResponse)
	require.True(t, ok)
	assert.Equal(t, 4, resp.Count)

	decoded := decodeText[ListOilsResponse](t, result)
	assert.Equal(t, "Palm Kernel Oil", decoded.Oils[0].Name)
}

func TestComputeBlendProfile(t *testing.T) {
	t.Parallel()

	s := NewServer(nil, "test")
	result, err := s.handleComputeBlendProfile(context.Background(), callRequest(ToolComputeBlendProfile, map[string]any{
		"percentages": map[string]any{"Palma": 50.0, "Palm Kernel Oil": 50},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	summary := decodeText[formulation.ProfileSummary](t, result)
	assert.InDelta(t, 24.2, summary.Profile["C12:0"], 1e-9)
	assert.Equal(t, 50.0, summary.Percentages["Palm Oil"])
}

func TestComputeBlendProfileAcceptsPairString(t *testing.T) {
	t.Parallel()

	s := NewServer(nil, "test")
	result, err := s.handleComputeBlendProfile(context.Background(), callRequest(ToolComputeBlendProfile, map[string]any{
		"percentages": "Palm Oil=12,5; Palm Olein=20",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	summary := decodeText[formulation.ProfileSummary](t, result)
	assert.Equal(t, 12.5, summary.Percentages["Palm Oil"])
	assert.Equal(t, 20.0, summary.Percentages["Palm Olein"])
}

func TestArgumentErrorsBecomeToolErrors(t *testing.T) {
	t.Parallel()

	s := NewServer(nil, "test")
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing", map[string]any{}},
		{"wrong type", map[string]any{"percentages": 42}},
		{"text share", map[string]any{"percentages": map[string]any{"Palm Oil": "lots"}}},
		{"above range", map[string]any{"percentages": map[string]any{"Palm Oil": 120}}},
		{"negative", map[string]any{"percentages": map[string]any{"Palm Oil": -1}}},
		{"bad pair", map[string]any{"percentages": "Palm Oil"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := s.handleComputeESGProfile(context.Background(), callRequest(ToolComputeESGProfile, tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.NotEmpty(t, resultText(t, result))
		})
	}
}

func TestComputeESGProfileFlagsDefaults(t *testing.T) {
	t.Parallel()

	s := NewServer(nil, "test")
	result, err := s.handleComputeESGProfile(context.Background(), callRequest(ToolComputeESGProfile, map[string]any{
		"percentages": map[string]any{"Palm Oil": 40, "Shea Butter": 10},
	}))
	require.NoError(t, err)

	summary := decodeText[formulation.ESGSummary](t, result)
	require.Len(t, summary.Rows, 2)
	assert.Equal(t, "Palm Oil", summary.Rows[0].Oil)
	assert.True(t, summary.Rows[1].Defaulted)
	assert.Equal(t, 0.58, summary.TotalImpact)
}

func TestComputeESGTotals(t *testing.T) {
	t.Parallel()

	s := NewServer(nil, "test")
	result, err := s.handleComputeESGTotals(context.Background(), callRequest(ToolComputeESGTotals, map[string]any{
		"percentages": map[string]any{"Palm Oil": 50, "Palm Kernel Oil": 50},
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	totals := decodeText[formulation.TotalsSummary](t, result)
	assert.InDelta(t, 1.3, totals.CO2, 1e-9)
	assert.InDelta(t, 1075, totals.Water, 1e-9)

	result, err = s.handleComputeESGTotals(context.Background(), callRequest(ToolComputeESGTotals, map[string]any{
		"percentages": map[string]any{"Palm Oil": 50, "Shea Butter": 50},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	totals = decodeText[formulation.TotalsSummary](t, result)
	assert.False(t, totals.Available)
	assert.Equal(t, "Shea Butter", totals.MissingOil)
}

func TestGetSensoryRecipe(t *testing.T) {
	t.Parallel()

	s := NewServer(nil, "test")
	result, err := s.handleGetSensoryRecipe(context.Background(), callRequest(ToolGetSensoryRecipe, map[string]any{
		"line":        "lúmina",
		"occasion":    "bath",
		"percentages": map[string]any{"Palm Oil": 30, "Palmiste": 70},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	resp := decodeText[SensoryRecipeResponse](t, result)
	assert.Equal(t, "Lúmina", resp.Recipe.Line)
	assert.Equal(t, "Bath", resp.Recipe.Occasion)
	assert.Equal(t, []string{"Mandarin", "Neroli"}, resp.Recipe.Pyramid.Top)
	require.Len(t, resp.Accords, 2)
	assert.Equal(t, "Palm Kernel Oil", resp.Accords[0].Oil)
}

func TestGetSensoryRecipeErrors(t *testing.T) {
	t.Parallel()

	s := NewServer(nil, "test")
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing line", map[string]any{}},
		{"unknown line", map[string]any{"line": "Nocturna"}},
		{"unknown occasion", map[string]any{"line": "Ardor", "occasion": "Feet"}},
		{"bad blend", map[string]any{"line": "Ardor", "percentages": true}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := s.handleGetSensoryRecipe(context.Background(), callRequest(ToolGetSensoryRecipe, tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}
