package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/soleara/wanderly/internal/common/logger"
)

// Defaults used when the comprehensive report and CSV export pull the
// constituent metrics.
const (
	DefaultTrendsMonths = 12
	DefaultPopularLimit = 10
	ExportPopularLimit  = 50
)

// ErrInvalidMetric marks a caller error (unknown export metric name), as
// opposed to an internal analytics failure.
var ErrInvalidMetric = errors.New("invalid metric: choose from trends, locations, tours, demographics")

type Service interface {
	Overview(ctx context.Context) (*OverviewResponse, error)
	Trends(ctx context.Context, months int) (*TrendsResponse, error)
	PopularLocations(ctx context.Context, limit int) (*PopularLocationsResponse, error)
	PopularTours(ctx context.Context, limit int) (*PopularToursResponse, error)
	Demographics(ctx context.Context) (*DemographicsResponse, error)
	SeasonalPatterns(ctx context.Context) (*SeasonalPatternsResponse, error)
	Complexity(ctx context.Context) (*BookingComplexityResponse, error)
	TimeInsights(ctx context.Context) (*TimeInsightsResponse, error)

	Comprehensive(ctx context.Context, useCache bool, maxAge time.Duration) (*ComprehensiveReport, error)
	ForceRefresh(ctx context.Context) (*ComprehensiveReport, error)
	Health(ctx context.Context) (*HealthResponse, error)
	ExportCSV(ctx context.Context, metric string) ([]byte, error)
}

type service struct {
	agg   *Aggregator
	cache Store
	log   *logger.Logger
	now   func() time.Time
}

func NewService(agg *Aggregator, cache Store, log *logger.Logger, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{agg: agg, cache: cache, log: log, now: now}
}

func (s *service) Overview(ctx context.Context) (*OverviewResponse, error) {
	return s.agg.Overview(ctx)
}

func (s *service) Trends(ctx context.Context, months int) (*TrendsResponse, error) {
	return s.agg.Trends(ctx, months)
}

func (s *service) PopularLocations(ctx context.Context, limit int) (*PopularLocationsResponse, error) {
	return s.agg.PopularLocations(ctx, limit)
}

func (s *service) PopularTours(ctx context.Context, limit int) (*PopularToursResponse, error) {
	return s.agg.PopularTours(ctx, limit)
}

func (s *service) Demographics(ctx context.Context) (*DemographicsResponse, error) {
	return s.agg.Demographics(ctx)
}

func (s *service) SeasonalPatterns(ctx context.Context) (*SeasonalPatternsResponse, error) {
	return s.agg.SeasonalPatterns(ctx)
}

func (s *service) Complexity(ctx context.Context) (*BookingComplexityResponse, error) {
	return s.agg.Complexity(ctx)
}

func (s *service) TimeInsights(ctx context.Context) (*TimeInsightsResponse, error) {
	return s.agg.TimeInsights(ctx)
}

// Comprehensive serves the full report, cache-first when useCache is true.
// Any cache trouble (read failure, corrupt payload) falls through to a fresh
// computation; the cache never blocks the read path.
func (s *service) Comprehensive(ctx context.Context, useCache bool, maxAge time.Duration) (*ComprehensiveReport, error) {
	if useCache {
		if report := s.fromCache(ctx, maxAge); report != nil {
			return report, nil
		}
	}

	report, err := s.agg.Comprehensive(ctx, DefaultTrendsMonths, DefaultPopularLimit)
	if err != nil {
		return nil, err
	}

	s.writeBack(ctx, report)
	return report, nil
}

// ForceRefresh recomputes and writes the cache regardless of its age.
func (s *service) ForceRefresh(ctx context.Context) (*ComprehensiveReport, error) {
	report, err := s.agg.Comprehensive(ctx, DefaultTrendsMonths, DefaultPopularLimit)
	if err != nil {
		return nil, err
	}

	s.writeBack(ctx, report)
	return report, nil
}

// fromCache returns the cached comprehensive report annotated with cache
// metadata, or nil on any kind of miss.
func (s *service) fromCache(ctx context.Context, maxAge time.Duration) *ComprehensiveReport {
	entry, err := s.cache.GetFresh(ctx, ComprehensiveKey, maxAge)
	if err != nil {
		s.log.Warnf("cache read failed, recomputing: %v", err)
		return nil
	}
	if entry == nil {
		return nil
	}

	var report ComprehensiveReport
	if err := json.Unmarshal(entry.MetricData, &report); err != nil {
		s.log.Warnf("corrupt cache entry %s, recomputing: %v", ComprehensiveKey, err)
		return nil
	}

	cachedAt := entry.LastCalculated.UTC()
	report.FromCache = true
	report.CacheInfo = &CacheInfo{
		CachedAt:      cachedAt.Format(time.RFC3339),
		CacheAgeHours: s.now().UTC().Sub(cachedAt).Hours(),
		IsCached:      true,
	}
	return &report
}

type metricPayload interface {
	MetricValue() float64
}

// writeBack persists the comprehensive entry plus one entry per metric
// family. Failures are logged and swallowed: the cache is best-effort.
func (s *service) writeBack(ctx context.Context, report *ComprehensiveReport) {
	now := s.now().UTC()

	if err := s.putEntry(ctx, ComprehensiveKey, report, now); err != nil {
		s.log.Errorf("failed to cache comprehensive report: %v", err)
		return
	}

	families := []struct {
		name    string
		payload metricPayload
	}{
		{MetricOverview, report.DashboardOverview},
		{MetricTrends, report.BookingTrends},
		{MetricLocations, report.PopularLocations},
		{MetricTours, report.PopularTours},
		{MetricDemographics, report.CustomerDemographics},
		{MetricSeasonal, report.SeasonalPatterns},
		{MetricComplexity, report.BookingComplexity},
		{MetricTimeInsights, report.TimeInsights},
	}
	for _, f := range families {
		if err := s.putEntry(ctx, "metric_"+f.name, f.payload, now); err != nil {
			s.log.Errorf("failed to cache metric %s: %v", f.name, err)
		}
	}
}

func (s *service) putEntry(ctx context.Context, name string, payload metricPayload, now time.Time) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	return s.cache.Put(ctx, Entry{
		MetricName:     name,
		MetricValue:    payload.MetricValue(),
		MetricData:     data,
		LastCalculated: now,
	})
}

// Health reports data coverage and cache status. With no bookings the
// timestamps are nil and coverage is zero.
func (s *service) Health(ctx context.Context) (*HealthResponse, error) {
	totalBookings, err := s.agg.repo.CountBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}

	resp := &HealthResponse{
		TotalBookingsAnalyzed: totalBookings,
		CacheStatus:           CacheStatus{Cached: false},
	}
	if totalBookings == 0 {
		return resp, nil
	}

	oldest, newest, err := s.agg.repo.BookingTimeRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	if oldest != nil && newest != nil {
		resp.DataCoverageDays = int(newest.Sub(*oldest).Hours() / 24)
		o := oldest.UTC().Format(time.RFC3339)
		n := newest.UTC().Format(time.RFC3339)
		resp.OldestBooking = &o
		resp.NewestBooking = &n
	}

	latest, err := s.cache.Latest(ctx)
	if err != nil {
		s.log.Warnf("cache status unavailable: %v", err)
		return resp, nil
	}
	if latest != nil {
		lastUpdated := latest.LastCalculated.UTC().Format(time.RFC3339)
		ageHours := s.now().UTC().Sub(latest.LastCalculated.UTC()).Hours()
		resp.CacheStatus = CacheStatus{
			Cached:      true,
			LastUpdated: &lastUpdated,
			AgeHours:    &ageHours,
		}
	}
	return resp, nil
}

// ExportCSV renders one of the four exportable metric families using the
// widest catalog view, matching the download endpoint of the admin UI.
func (s *service) ExportCSV(ctx context.Context, metric string) ([]byte, error) {
	switch metric {
	case ExportTrends:
		data, err := s.agg.Trends(ctx, DefaultTrendsMonths)
		if err != nil {
			return nil, err
		}
		return FormatTrendsCSV(data)
	case ExportLocations:
		data, err := s.agg.PopularLocations(ctx, ExportPopularLimit)
		if err != nil {
			return nil, err
		}
		return FormatLocationsCSV(data)
	case ExportTours:
		data, err := s.agg.PopularTours(ctx, ExportPopularLimit)
		if err != nil {
			return nil, err
		}
		return FormatToursCSV(data)
	case ExportDemographics:
		data, err := s.agg.Demographics(ctx)
		if err != nil {
			return nil, err
		}
		return FormatDemographicsCSV(data)
	default:
		return nil, ErrInvalidMetric
	}
}
