package analytics

import (
	"time"
)

// Metric family names used as cache keys. The comprehensive report is cached
// under ComprehensiveKey; each family is additionally cached under
// "metric_<family>" for partial reads.
const (
	ComprehensiveKey   = "comprehensive_analytics"
	MetricOverview     = "dashboard_overview"
	MetricTrends       = "booking_trends"
	MetricLocations    = "popular_locations"
	MetricTours        = "popular_tours"
	MetricDemographics = "customer_demographics"
	MetricSeasonal     = "seasonal_patterns"
	MetricComplexity   = "booking_complexity"
	MetricTimeInsights = "time_insights"
)

// ---------------------------------------------------------------------------
// Flat rows returned by the read repository.
// ---------------------------------------------------------------------------

// MonthlyCountRow is one (year, month) booking group.
type MonthlyCountRow struct {
	Year            int   `db:"year"`
	Month           int   `db:"month"`
	Bookings        int64 `db:"bookings"`
	UniqueCustomers int64 `db:"unique_customers"`
}

// LocationCountRow is a location with its selection count.
type LocationCountRow struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Country      string `db:"country"`
	Region       string `db:"region"`
	BookingCount int64  `db:"booking_count"`
}

// TourCountRow is a tour with its selection and location-selection counts.
type TourCountRow struct {
	ID             int64  `db:"id"`
	Name           string `db:"name"`
	Country        string `db:"country"`
	Region         string `db:"region"`
	BookingCount   int64  `db:"booking_count"`
	TotalLocations int64  `db:"total_locations"`
}

// CountryStatsRow groups bookings by customer country. AvgAge is 0 when no
// ages are present for the country.
type CountryStatsRow struct {
	Country         string  `db:"country"`
	UniqueCustomers int64   `db:"unique_customers"`
	TotalBookings   int64   `db:"total_bookings"`
	AvgAge          float64 `db:"avg_age"`
}

// AgeCountRow is the booking count for one exact customer age.
type AgeCountRow struct {
	Age      int   `db:"age"`
	Bookings int64 `db:"bookings"`
}

// MonthBucketRow is the all-years booking count for one calendar month.
type MonthBucketRow struct {
	Month    int   `db:"month"`
	Bookings int64 `db:"bookings"`
}

// WeekdayBucketRow is the booking count for one day of week, 0=Sunday.
type WeekdayBucketRow struct {
	Weekday  int   `db:"weekday"`
	Bookings int64 `db:"bookings"`
}

// BookingSelectionRow carries the selection counts for one booking,
// including zero counts for bookings with no selections.
type BookingSelectionRow struct {
	BookingID     int64 `db:"booking_id"`
	TourCount     int   `db:"tour_count"`
	LocationCount int   `db:"location_count"`
}

// DailyCountRow is the booking count for one calendar day.
type DailyCountRow struct {
	Date     time.Time `db:"date"`
	Bookings int64     `db:"bookings"`
}

// LeadTimeRow pairs a booking's creation time with its preferred date.
// Only rows with a non-null preferred date are returned.
type LeadTimeRow struct {
	CreatedAt     time.Time `db:"created_at"`
	PreferredDate time.Time `db:"preferred_date"`
}

// ---------------------------------------------------------------------------
// Metric payloads.
// ---------------------------------------------------------------------------

type OverviewMetrics struct {
	TotalBookings           int64   `json:"total_bookings"`
	TotalCustomers          int64   `json:"total_customers"`
	TotalTours              int64   `json:"total_tours"`
	TotalLocations          int64   `json:"total_locations"`
	ThisMonthBookings       int64   `json:"this_month_bookings"`
	LastMonthBookings       int64   `json:"last_month_bookings"`
	BookingGrowthPercentage float64 `json:"booking_growth_percentage"`
	RecentBookings30Days    int64   `json:"recent_bookings_30_days"`
}

type OverviewResponse struct {
	Overview    OverviewMetrics `json:"overview"`
	LastUpdated string          `json:"last_updated"`
}

func (r *OverviewResponse) MetricValue() float64 {
	return float64(r.Overview.TotalBookings)
}

type TrendPoint struct {
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	MonthName       string `json:"month_name"`
	Period          string `json:"period"`
	Bookings        int64  `json:"bookings"`
	UniqueCustomers int64  `json:"unique_customers"`
}

type TrendsResponse struct {
	Trends       []TrendPoint `json:"trends"`
	TotalPeriods int          `json:"total_periods"`
}

func (r *TrendsResponse) MetricValue() float64 {
	return float64(r.TotalPeriods)
}

type LocationPopularity struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	Region       string `json:"region"`
	BookingCount int64  `json:"booking_count"`
}

type PopularLocationsResponse struct {
	PopularLocations []LocationPopularity `json:"popular_locations"`
	TotalAnalyzed    int                  `json:"total_analyzed"`
}

func (r *PopularLocationsResponse) MetricValue() float64 {
	return float64(r.TotalAnalyzed)
}

type TourPopularity struct {
	ID                     int64   `json:"id"`
	Name                   string  `json:"name"`
	Country                string  `json:"country"`
	Region                 string  `json:"region"`
	BookingCount           int64   `json:"booking_count"`
	TotalLocationsBooked   int64   `json:"total_locations_booked"`
	AvgLocationsPerBooking float64 `json:"avg_locations_per_booking"`
}

type PopularToursResponse struct {
	PopularTours  []TourPopularity `json:"popular_tours"`
	TotalAnalyzed int              `json:"total_analyzed"`
}

func (r *PopularToursResponse) MetricValue() float64 {
	return float64(r.TotalAnalyzed)
}

type CountryStats struct {
	Country             string  `json:"country"`
	UniqueCustomers     int64   `json:"unique_customers"`
	TotalBookings       int64   `json:"total_bookings"`
	AvgAge              float64 `json:"avg_age"`
	BookingsPerCustomer float64 `json:"bookings_per_customer"`
}

type AgeGroup struct {
	AgeGroup     string `json:"age_group"`
	BookingCount int64  `json:"booking_count"`
}

type DemographicsResponse struct {
	CountryDistribution []CountryStats `json:"country_distribution"`
	AgeDistribution     []AgeGroup     `json:"age_distribution"`
	TotalCountries      int            `json:"total_countries"`
}

func (r *DemographicsResponse) MetricValue() float64 {
	return float64(r.TotalCountries)
}

type MonthPattern struct {
	Month        int    `json:"month"`
	MonthName    string `json:"month_name"`
	BookingCount int64  `json:"booking_count"`
	AboveAverage bool   `json:"above_average"`
}

type DayPattern struct {
	DayNumber    int    `json:"day_number"`
	DayName      string `json:"day_name"`
	BookingCount int64  `json:"booking_count"`
}

type SeasonalPatternsResponse struct {
	MonthlyPatterns   []MonthPattern `json:"monthly_patterns"`
	DayOfWeekPatterns []DayPattern   `json:"day_of_week_patterns"`
	PeakMonth         *string        `json:"peak_month"`
	PeakDay           *string        `json:"peak_day"`
}

func (r *SeasonalPatternsResponse) MetricValue() float64 {
	populated := 0
	for _, m := range r.MonthlyPatterns {
		if m.BookingCount > 0 {
			populated++
		}
	}
	return float64(populated)
}

type TourBucket struct {
	Tours     int   `json:"tours"`
	Frequency int64 `json:"frequency"`
}

type LocationBucket struct {
	Locations int   `json:"locations"`
	Frequency int64 `json:"frequency"`
}

type ComplexityAverages struct {
	AvgToursPerBooking     float64 `json:"avg_tours_per_booking"`
	AvgLocationsPerBooking float64 `json:"avg_locations_per_booking"`
}

type BookingComplexityResponse struct {
	TourDistribution     []TourBucket       `json:"tour_distribution"`
	LocationDistribution []LocationBucket   `json:"location_distribution"`
	Averages             ComplexityAverages `json:"averages"`
}

func (r *BookingComplexityResponse) MetricValue() float64 {
	return r.Averages.AvgToursPerBooking
}

type DailyActivity struct {
	Date     string `json:"date"`
	Bookings int64  `json:"bookings"`
}

type LeadTimeInsights struct {
	AverageLeadTimeDays float64 `json:"average_lead_time_days"`
	MinLeadTime         int     `json:"min_lead_time"`
	MaxLeadTime         int     `json:"max_lead_time"`
	TotalAnalyzed       int     `json:"total_analyzed"`
}

type TimeInsightsResponse struct {
	RecentDailyActivity []DailyActivity  `json:"recent_daily_activity"`
	LeadTimeInsights    LeadTimeInsights `json:"lead_time_insights"`
}

func (r *TimeInsightsResponse) MetricValue() float64 {
	return float64(r.LeadTimeInsights.TotalAnalyzed)
}

// CacheInfo annotates a report served from cache.
type CacheInfo struct {
	CachedAt      string  `json:"cached_at"`
	CacheAgeHours float64 `json:"cache_age_hours"`
	IsCached      bool    `json:"is_cached"`
}

// ComprehensiveReport is the union of all metric families. FromCache and
// CacheInfo are only set when the report was served from the cache.
type ComprehensiveReport struct {
	DashboardOverview    *OverviewResponse          `json:"dashboard_overview"`
	BookingTrends        *TrendsResponse            `json:"booking_trends"`
	PopularLocations     *PopularLocationsResponse  `json:"popular_locations"`
	PopularTours         *PopularToursResponse      `json:"popular_tours"`
	CustomerDemographics *DemographicsResponse      `json:"customer_demographics"`
	SeasonalPatterns     *SeasonalPatternsResponse  `json:"seasonal_patterns"`
	BookingComplexity    *BookingComplexityResponse `json:"booking_complexity"`
	TimeInsights         *TimeInsightsResponse      `json:"time_insights"`
	GeneratedAt          string                     `json:"generated_at"`
	FromCache            bool                       `json:"from_cache,omitempty"`
	CacheInfo            *CacheInfo                 `json:"cache_info,omitempty"`
}

// MetricValue reports the number of metric families carried by the report.
func (r *ComprehensiveReport) MetricValue() float64 {
	return 8
}

type CacheStatus struct {
	Cached      bool     `json:"cached"`
	LastUpdated *string  `json:"last_updated"`
	AgeHours    *float64 `json:"age_hours"`
}

type HealthResponse struct {
	TotalBookingsAnalyzed int64       `json:"total_bookings_analyzed"`
	DataCoverageDays      int         `json:"data_coverage_days"`
	OldestBooking         *string     `json:"oldest_booking"`
	NewestBooking         *string     `json:"newest_booking"`
	CacheStatus           CacheStatus `json:"cache_status"`
}

type RefreshResponse struct {
	Message       string `json:"message"`
	GeneratedAt   string `json:"generated_at"`
	MetricsCached int    `json:"metrics_cached"`
}
