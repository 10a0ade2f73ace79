package server

import (
	"context"
	"net/http"

	"lipidgenesis/internal/handlers"
	applog "lipidgenesis/internal/log"
)

type route struct {
	pattern string
	handler http.HandlerFunc
}

func routes() []route {
	return []route{
		{"/healthz", handlers.Health},
		{"/", handlers.Dashboard},
		{"/app", handlers.Dashboard},
		{"/app/blend", handlers.UpdateBlend},
		{"/app/reset", handlers.ResetBlend},
		{"/app/report.pdf", handlers.ExportReport},
		{"/app/report.csv", handlers.ExportReport},
		{"/app/report.json", handlers.ExportReport},
		{"/app/import", handlers.ImportReport},
		{"/app/preferences", handlers.UpdatePreferences},
		{"/api/oils", handlers.ListOils},
		{"/api/blend", handlers.ComputeBlend},
		{"/api/esg", handlers.ComputeESG},
		{"/api/esg/totals", handlers.ComputeESGTotals},
		{"/api/sensory", handlers.SensoryRecipe},
	}
}

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	for _, r := range routes() {
		mux.HandleFunc(r.pattern, r.handler)
		applog.Debug(context.Background(), "route registered", "path", r.pattern)
	}
	return mux
}
