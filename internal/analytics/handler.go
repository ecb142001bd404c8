package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/soleara/wanderly/internal/common/logger"
)

type Handler struct {
	service Service
	log     *logger.Logger
}

func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   err,
		Message: message,
	})
}

// writeUnavailable maps internal computation failures to one uniform
// analytics-unavailable response.
func (h *Handler) writeUnavailable(w http.ResponseWriter, op string, err error) {
	h.log.Errorf("%s failed: %v", op, err)
	writeError(w, http.StatusServiceUnavailable, "analytics_unavailable", "Failed to compute analytics")
}

// intQuery parses an optional integer query parameter.
func intQuery(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return value, nil
}

// GetOverview handles GET /api/v1/analytics/overview
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.writeUnavailable(w, "overview", err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// GetTrends handles GET /api/v1/analytics/trends
func (h *Handler) GetTrends(w http.ResponseWriter, r *http.Request) {
	months, err := intQuery(r, "months", DefaultTrendsMonths)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}
	if err := ValidateMonths(months); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	trends, err := h.service.Trends(r.Context(), months)
	if err != nil {
		h.writeUnavailable(w, "trends", err)
		return
	}
	writeJSON(w, http.StatusOK, trends)
}

// GetPopularLocations handles GET /api/v1/analytics/locations/popular
func (h *Handler) GetPopularLocations(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", DefaultPopularLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}
	if err := ValidateLimit(limit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	locations, err := h.service.PopularLocations(r.Context(), limit)
	if err != nil {
		h.writeUnavailable(w, "popular locations", err)
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

// GetPopularTours handles GET /api/v1/analytics/tours/popular
func (h *Handler) GetPopularTours(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", DefaultPopularLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}
	if err := ValidateLimit(limit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	tours, err := h.service.PopularTours(r.Context(), limit)
	if err != nil {
		h.writeUnavailable(w, "popular tours", err)
		return
	}
	writeJSON(w, http.StatusOK, tours)
}

// GetDemographics handles GET /api/v1/analytics/demographics
func (h *Handler) GetDemographics(w http.ResponseWriter, r *http.Request) {
	demographics, err := h.service.Demographics(r.Context())
	if err != nil {
		h.writeUnavailable(w, "demographics", err)
		return
	}
	writeJSON(w, http.StatusOK, demographics)
}

// GetSeasonalPatterns handles GET /api/v1/analytics/patterns/seasonal
func (h *Handler) GetSeasonalPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.service.SeasonalPatterns(r.Context())
	if err != nil {
		h.writeUnavailable(w, "seasonal patterns", err)
		return
	}
	writeJSON(w, http.StatusOK, patterns)
}

// GetComplexity handles GET /api/v1/analytics/complexity
func (h *Handler) GetComplexity(w http.ResponseWriter, r *http.Request) {
	complexity, err := h.service.Complexity(r.Context())
	if err != nil {
		h.writeUnavailable(w, "complexity", err)
		return
	}
	writeJSON(w, http.StatusOK, complexity)
}

// GetTimeInsights handles GET /api/v1/analytics/insights/time
func (h *Handler) GetTimeInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.service.TimeInsights(r.Context())
	if err != nil {
		h.writeUnavailable(w, "time insights", err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

// GetComprehensive handles GET /api/v1/analytics/comprehensive
func (h *Handler) GetComprehensive(w http.ResponseWriter, r *http.Request) {
	useCache := true
	if raw := r.URL.Query().Get("use_cache"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameters", "use_cache must be a boolean")
			return
		}
		useCache = parsed
	}

	maxAgeHours, err := intQuery(r, "max_cache_age", MinCacheAgeHours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}
	if err := ValidateCacheAgeHours(maxAgeHours); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	report, err := h.service.Comprehensive(r.Context(), useCache, time.Duration(maxAgeHours)*time.Hour)
	if err != nil {
		h.writeUnavailable(w, "comprehensive", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// RefreshCache handles POST /api/v1/analytics/refresh-cache
func (h *Handler) RefreshCache(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ForceRefresh(r.Context())
	if err != nil {
		h.writeUnavailable(w, "refresh cache", err)
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{
		Message:       "Analytics cache refreshed successfully",
		GeneratedAt:   report.GeneratedAt,
		MetricsCached: 8,
	})
}

// GetAnalyticsHealth handles GET /api/v1/analytics/health
func (h *Handler) GetAnalyticsHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.service.Health(r.Context())
	if err != nil {
		h.writeUnavailable(w, "analytics health", err)
		return
	}
	writeJSON(w, http.StatusOK, health)
}

// ExportCSV handles GET /api/v1/analytics/export/csv
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if err := ValidateExportMetric(metric); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_metric", err.Error())
		return
	}

	data, err := h.service.ExportCSV(r.Context(), metric)
	if err != nil {
		if errors.Is(err, ErrInvalidMetric) {
			writeError(w, http.StatusBadRequest, "invalid_metric", err.Error())
			return
		}
		h.writeUnavailable(w, "export", err)
		return
	}

	filename := fmt.Sprintf("analytics_%s_%s.csv", metric, time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "analytics",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck handles GET /ready
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"service": "analytics",
	})
}
