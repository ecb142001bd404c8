package analytics

import (
	"net/http"

	"github.com/soleara/wanderly/internal/common/middleware"
)

func SetupRoutes(mux *http.ServeMux, handler *Handler, jwtSecret string) {
	// Health checks
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.HandleFunc("GET /ready", handler.ReadinessCheck)

	// Admin analytics API v1, JWT protected
	auth := middleware.JWTAuth(jwtSecret)
	protect := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	mux.Handle("GET /api/v1/analytics/overview", protect(handler.GetOverview))
	mux.Handle("GET /api/v1/analytics/trends", protect(handler.GetTrends))
	mux.Handle("GET /api/v1/analytics/locations/popular", protect(handler.GetPopularLocations))
	mux.Handle("GET /api/v1/analytics/tours/popular", protect(handler.GetPopularTours))
	mux.Handle("GET /api/v1/analytics/demographics", protect(handler.GetDemographics))
	mux.Handle("GET /api/v1/analytics/patterns/seasonal", protect(handler.GetSeasonalPatterns))
	mux.Handle("GET /api/v1/analytics/complexity", protect(handler.GetComplexity))
	mux.Handle("GET /api/v1/analytics/insights/time", protect(handler.GetTimeInsights))
	mux.Handle("GET /api/v1/analytics/comprehensive", protect(handler.GetComprehensive))
	mux.Handle("POST /api/v1/analytics/refresh-cache", protect(handler.RefreshCache))
	mux.Handle("GET /api/v1/analytics/health", protect(handler.GetAnalyticsHealth))
	mux.Handle("GET /api/v1/analytics/export/csv", protect(handler.ExportCSV))
}
