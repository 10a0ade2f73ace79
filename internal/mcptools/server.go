// Package mcptools exposes the blend calculators as Model Context Protocol
// tools so an agent can formulate blends over stdio.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/formulation"
	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/refdata"
	"lipidgenesis/internal/sensory"
)

// Tool names.
const (
	ToolListOils            = "list_oils"
	ToolComputeBlendProfile = "compute_blend_profile"
	ToolComputeESGProfile   = "compute_esg_profile"
	ToolComputeESGTotals    = "compute_esg_totals"
	ToolGetSensoryRecipe    = "get_sensory_recipe"
)

// ListOilsResponse is the result of list_oils.
type ListOilsResponse struct {
	Count int                       `json:"count"`
	Oils  []formulation.OilSummary `json:"oils"`
}

// SensoryRecipeResponse is the result of get_sensory_recipe.
type SensoryRecipeResponse struct {
	Recipe  sensory.Recipe   `json:"recipe"`
	Accords []sensory.Accord `json:"accords,omitempty"`
}

// Server wraps the mcp-go server with the catalogue the tools work on.
type Server struct {
	mcpServer *server.MCPServer
	catalog   *refdata.Catalog
	tools     []string
}

// NewServer registers every tool against cat. A nil catalogue uses the
// embedded reference data.
func NewServer(cat *refdata.Catalog, version string) *Server {
	if cat == nil {
		cat = refdata.MustDefault()
	}
	if version == "" {
		version = "dev"
	}
	s := &Server{
		mcpServer: server.NewMCPServer(
			"LipidGenesis",
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		catalog: cat,
	}
	s.addTools()
	return s
}

// Tools lists the registered tool names in registration order.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// ServeStdio serves the tools over stdin and stdout until the input closes.
func (s *Server) ServeStdio() error {
	applog.Info(context.Background(), "starting mcp server in stdio mode", "tools", len(s.tools))
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcpServer.AddTool(tool, handler)
	s.tools = append(s.tools, tool.Name)
}

func (s *Server) addTools() {
	library := s.catalog.Sensory()
	percentagesOption := mcp.WithObject("percentages",
		mcp.Required(),
		mcp.Description(`Oil name to percentage of the blend, each within 0..100, e.g. {"Palm Oil": 60, "Palm Kernel Oil": 40}. Aliases such as "Palma" are accepted.`),
	)

	s.addTool(mcp.NewTool(ToolListOils,
		mcp.WithDescription("List the oils of the reference catalogue with their fatty-acid profile, environmental factor and sensory notes."),
		mcp.WithOutputSchema[ListOilsResponse](),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	), s.handleListOils)

	s.addTool(mcp.NewTool(ToolComputeBlendProfile,
		mcp.WithDescription("Compute the weighted fatty-acid profile and saturation summary of an oil blend."),
		percentagesOption,
		mcp.WithOutputSchema[formulation.ProfileSummary](),
		mcp.WithIdempotentHintAnnotation(true),
	), s.handleComputeBlendProfile)

	s.addTool(mcp.NewTool(ToolComputeESGProfile,
		mcp.WithDescription("Estimate the per-oil environmental impact, origin and certification of an oil blend. Oils without reference data use defaults and are flagged."),
		percentagesOption,
		mcp.WithOutputSchema[formulation.ESGSummary](),
		mcp.WithIdempotentHintAnnotation(true),
	), s.handleComputeESGProfile)

	s.addTool(mcp.NewTool(ToolComputeESGTotals,
		mcp.WithDescription("Compute the CO2 (kg) and water (L) footprint per kilogram of an oil blend. Fails, naming the oil, when any oil lacks footprint data."),
		percentagesOption,
		mcp.WithOutputSchema[formulation.TotalsSummary](),
		mcp.WithIdempotentHintAnnotation(true),
	), s.handleComputeESGTotals)

	s.addTool(mcp.NewTool(ToolGetSensoryRecipe,
		mcp.WithDescription("Return the fragrance pyramid and emotions of a sensory line, optionally with the accords of a blend."),
		mcp.WithString("line",
			mcp.Required(),
			mcp.Description("Sensory line name."),
			mcp.Enum(library.Lines()...),
		),
		mcp.WithString("occasion",
			mcp.Description("Usage occasion."),
			mcp.Enum(library.Occasions()...),
		),
		mcp.WithObject("percentages",
			mcp.Description("Optional blend whose oil accords are listed next to the recipe."),
		),
		mcp.WithOutputSchema[SensoryRecipeResponse](),
		mcp.WithIdempotentHintAnnotation(true),
	), s.handleGetSensoryRecipe)
}

func (s *Server) handleListOils(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	applog.Debug(ctx, "mcp tool called", "tool", ToolListOils)
	oils := formulation.OilSummaries(s.catalog)
	return structured(ctx, ListOilsResponse{Count: len(oils), Oils: oils}, false)
}

func (s *Server) handleComputeBlendProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eval, errResult := s.evaluate(ctx, ToolComputeBlendProfile, request)
	if errResult != nil {
		return errResult, nil
	}
	return structured(ctx, eval.ProfileSummary(), false)
}

func (s *Server) handleComputeESGProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eval, errResult := s.evaluate(ctx, ToolComputeESGProfile, request)
	if errResult != nil {
		return errResult, nil
	}
	return structured(ctx, eval.ESGSummary(), false)
}

// handleComputeESGTotals marks the result as an error when reference data is
// missing but still returns the structured summary naming the oil.
func (s *Server) handleComputeESGTotals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eval, errResult := s.evaluate(ctx, ToolComputeESGTotals, request)
	if errResult != nil {
		return errResult, nil
	}
	summary := eval.TotalsSummary()
	return structured(ctx, summary, !summary.Available)
}

func (s *Server) handleGetSensoryRecipe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	applog.Debug(ctx, "mcp tool called", "tool", ToolGetSensoryRecipe, "arguments", request.GetArguments())

	line, err := request.RequireString("line")
	if err != nil || strings.TrimSpace(line) == "" {
		return mcp.NewToolResultError("Missing required parameter 'line'"), nil
	}
	occasion := strings.TrimSpace(request.GetString("occasion", ""))

	library := s.catalog.Sensory()
	if occasion != "" && !library.ValidOccasion(occasion) {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown occasion %q; expected one of %s", occasion, strings.Join(library.Occasions(), ", "))), nil
	}
	recipe, ok := library.Recipe(line, occasion)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown line %q; expected one of %s", line, strings.Join(library.Lines(), ", "))), nil
	}

	response := SensoryRecipeResponse{Recipe: recipe}
	if _, present := request.GetArguments()["percentages"]; present {
		percentages, err := percentagesArgument(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		response.Accords = library.BlendAccords(s.catalog.Canonicalize(percentages))
	}
	return structured(ctx, response, false)
}

func (s *Server) evaluate(ctx context.Context, tool string, request mcp.CallToolRequest) (formulation.Evaluation, *mcp.CallToolResult) {
	applog.Debug(ctx, "mcp tool called", "tool", tool, "arguments", request.GetArguments())
	percentages, err := percentagesArgument(request.GetArguments())
	if err != nil {
		applog.Warn(ctx, "invalid mcp tool arguments", "tool", tool, "error", err)
		return formulation.Evaluation{}, mcp.NewToolResultError(err.Error())
	}
	return formulation.Evaluate(s.catalog, formulation.Input{Percentages: percentages}), nil
}

// structured returns the response as structured content plus an indented JSON
// text fallback for clients that only read text.
func structured(ctx context.Context, response any, isError bool) (*mcp.CallToolResult, error) {
	responseJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		applog.Error(ctx, "failed to marshal mcp response", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}
	result := mcp.NewToolResultStructured(response, string(responseJSON))
	result.IsError = isError
	return result, nil
}

// percentagesArgument reads the percentages object. A string of
// "Oil=percent" pairs separated by semicolons is accepted as well.
func percentagesArgument(args map[string]any) (blend.Percentages, error) {
	raw, ok := args["percentages"]
	if !ok || raw == nil {
		return nil, errors.New("Missing required parameter 'percentages'")
	}

	percentages := make(blend.Percentages)
	switch v := raw.(type) {
	case map[string]any:
		for name, value := range v {
			share, ok := toFloat(value)
			if !ok {
				return nil, fmt.Errorf("Percentage of %q must be a number, got %v", name, value)
			}
			percentages[strings.TrimSpace(name)] += share
		}
	case string:
		pairs := strings.FieldsFunc(v, func(r rune) bool { return r == ';' || r == '\n' })
		parsed, err := formulation.ParseShares(pairs)
		if err != nil {
			return nil, err
		}
		percentages = parsed
	default:
		return nil, errors.New("Parameter 'percentages' must be an object of oil name to percentage")
	}

	for name, share := range percentages {
		if name == "" {
			return nil, errors.New("Oil names must not be empty")
		}
		if math.IsNaN(share) || share < 0 || share > 100 {
			return nil, fmt.Errorf("Percentage of %q must be within 0..100, got %v", name, share)
		}
	}
	return percentages, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(v), ",", ".", 1), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
