package analytics

import (
	"fmt"
)

// Parameter bounds for the caller-facing operations.
const (
	MinTrendsMonths = 1
	MaxTrendsMonths = 24

	MinPopularLimit = 5
	MaxPopularLimit = 50

	MinCacheAgeHours = 1
	MaxCacheAgeHours = 24
)

// ValidateMonths checks the trends window parameter.
func ValidateMonths(months int) error {
	if months < MinTrendsMonths || months > MaxTrendsMonths {
		return fmt.Errorf("months must be between %d and %d", MinTrendsMonths, MaxTrendsMonths)
	}
	return nil
}

// ValidateLimit checks the ranking truncation parameter.
func ValidateLimit(limit int) error {
	if limit < MinPopularLimit || limit > MaxPopularLimit {
		return fmt.Errorf("limit must be between %d and %d", MinPopularLimit, MaxPopularLimit)
	}
	return nil
}

// ValidateCacheAgeHours checks the comprehensive report's max cache age.
func ValidateCacheAgeHours(hours int) error {
	if hours < MinCacheAgeHours || hours > MaxCacheAgeHours {
		return fmt.Errorf("max_cache_age must be between %d and %d hours", MinCacheAgeHours, MaxCacheAgeHours)
	}
	return nil
}

// ValidateExportMetric checks the export metric name against the allowlist.
func ValidateExportMetric(metric string) error {
	switch metric {
	case ExportTrends, ExportLocations, ExportTours, ExportDemographics:
		return nil
	default:
		return ErrInvalidMetric
	}
}
