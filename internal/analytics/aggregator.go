package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// Aggregator derives metric payloads from the read repository. It holds no
// state beyond its collaborators; every operation issues independent queries
// and tolerates an empty dataset.
type Aggregator struct {
	repo ReadRepository
	now  func() time.Time
}

func NewAggregator(repo ReadRepository, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{repo: repo, now: now}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Overview returns the dashboard headline counts. Growth rate is defined as
// 0 when the previous month had no bookings.
func (a *Aggregator) Overview(ctx context.Context) (*OverviewResponse, error) {
	now := a.now()

	totalBookings, err := a.repo.CountBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	totalCustomers, err := a.repo.CountDistinctCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	totalTours, err := a.repo.CountActiveTours(ctx)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	totalLocations, err := a.repo.CountLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonthStart := monthStart.AddDate(0, 1, 0)
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	thisMonth, err := a.repo.CountBookingsBetween(ctx, monthStart, nextMonthStart)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	lastMonth, err := a.repo.CountBookingsBetween(ctx, lastMonthStart, monthStart)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	recent, err := a.repo.CountBookingsBetween(ctx, now.AddDate(0, 0, -30), now.Add(time.Second))
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}

	growth := 0.0
	if lastMonth > 0 {
		growth = round2(float64(thisMonth-lastMonth) / float64(lastMonth) * 100)
	}

	return &OverviewResponse{
		Overview: OverviewMetrics{
			TotalBookings:           totalBookings,
			TotalCustomers:          totalCustomers,
			TotalTours:              totalTours,
			TotalLocations:          totalLocations,
			ThisMonthBookings:       thisMonth,
			LastMonthBookings:       lastMonth,
			BookingGrowthPercentage: growth,
			RecentBookings30Days:    recent,
		},
		LastUpdated: now.Format(time.RFC3339),
	}, nil
}

// Trends groups bookings created within the trailing months*30-day window by
// (year, calendar month), ordered chronologically.
func (a *Aggregator) Trends(ctx context.Context, months int) (*TrendsResponse, error) {
	since := a.now().AddDate(0, 0, -months*30)

	rows, err := a.repo.MonthlyBookingCounts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("trends: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})

	trends := make([]TrendPoint, 0, len(rows))
	for _, row := range rows {
		monthName := time.Month(row.Month).String()
		trends = append(trends, TrendPoint{
			Year:            row.Year,
			Month:           row.Month,
			MonthName:       monthName,
			Period:          fmt.Sprintf("%s %d", monthName, row.Year),
			Bookings:        row.Bookings,
			UniqueCustomers: row.UniqueCustomers,
		})
	}

	return &TrendsResponse{Trends: trends, TotalPeriods: len(trends)}, nil
}

// PopularLocations ranks locations by selection count, descending, ties
// broken by location id ascending, truncated to limit.
func (a *Aggregator) PopularLocations(ctx context.Context, limit int) (*PopularLocationsResponse, error) {
	rows, err := a.repo.LocationSelectionCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("popular locations: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].BookingCount != rows[j].BookingCount {
			return rows[i].BookingCount > rows[j].BookingCount
		}
		return rows[i].ID < rows[j].ID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	locations := make([]LocationPopularity, 0, len(rows))
	for _, row := range rows {
		locations = append(locations, LocationPopularity{
			ID:           row.ID,
			Name:         row.Name,
			Country:      row.Country,
			Region:       row.Region,
			BookingCount: row.BookingCount,
		})
	}

	return &PopularLocationsResponse{PopularLocations: locations, TotalAnalyzed: len(locations)}, nil
}

// PopularTours ranks tours by selection count with the same tie-break as
// PopularLocations, and reports the average locations selected per booking
// of each tour.
func (a *Aggregator) PopularTours(ctx context.Context, limit int) (*PopularToursResponse, error) {
	rows, err := a.repo.TourSelectionCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("popular tours: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].BookingCount != rows[j].BookingCount {
			return rows[i].BookingCount > rows[j].BookingCount
		}
		return rows[i].ID < rows[j].ID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	tours := make([]TourPopularity, 0, len(rows))
	for _, row := range rows {
		avg := 0.0
		if row.BookingCount > 0 {
			avg = round2(float64(row.TotalLocations) / float64(row.BookingCount))
		}
		tours = append(tours, TourPopularity{
			ID:                     row.ID,
			Name:                   row.Name,
			Country:                row.Country,
			Region:                 row.Region,
			BookingCount:           row.BookingCount,
			TotalLocationsBooked:   row.TotalLocations,
			AvgLocationsPerBooking: avg,
		})
	}

	return &PopularToursResponse{PopularTours: tours, TotalAnalyzed: len(tours)}, nil
}

// ageBucket maps an age to one of the six fixed histogram buckets.
func ageBucket(age int) string {
	switch {
	case age < 25:
		return "Under 25"
	case age < 35:
		return "25-34"
	case age < 45:
		return "35-44"
	case age < 55:
		return "45-54"
	case age < 65:
		return "55-64"
	default:
		return "65+"
	}
}

var ageBucketOrder = []string{"Under 25", "25-34", "35-44", "45-54", "55-64", "65+"}

// Demographics groups customers by country (nulls excluded) and buckets ages
// into a fixed six-bucket histogram. All six buckets are always present.
func (a *Aggregator) Demographics(ctx context.Context) (*DemographicsResponse, error) {
	countryRows, err := a.repo.CountryBookingStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("demographics: %w", err)
	}
	ageRows, err := a.repo.AgeBookingCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("demographics: %w", err)
	}

	sort.Slice(countryRows, func(i, j int) bool {
		if countryRows[i].TotalBookings != countryRows[j].TotalBookings {
			return countryRows[i].TotalBookings > countryRows[j].TotalBookings
		}
		return countryRows[i].Country < countryRows[j].Country
	})

	countries := make([]CountryStats, 0, len(countryRows))
	for _, row := range countryRows {
		perCustomer := 0.0
		if row.UniqueCustomers > 0 {
			perCustomer = round2(float64(row.TotalBookings) / float64(row.UniqueCustomers))
		}
		countries = append(countries, CountryStats{
			Country:             row.Country,
			UniqueCustomers:     row.UniqueCustomers,
			TotalBookings:       row.TotalBookings,
			AvgAge:              round1(row.AvgAge),
			BookingsPerCustomer: perCustomer,
		})
	}

	buckets := make(map[string]int64, len(ageBucketOrder))
	for _, row := range ageRows {
		buckets[ageBucket(row.Age)] += row.Bookings
	}
	ageGroups := make([]AgeGroup, 0, len(ageBucketOrder))
	for _, name := range ageBucketOrder {
		ageGroups = append(ageGroups, AgeGroup{AgeGroup: name, BookingCount: buckets[name]})
	}

	return &DemographicsResponse{
		CountryDistribution: countries,
		AgeDistribution:     ageGroups,
		TotalCountries:      len(countries),
	}, nil
}

// SeasonalPatterns reports booking counts per calendar month and per day of
// week across all years. A month is above average when its count strictly
// exceeds the mean over all twelve buckets. Peaks take the earliest bucket
// on ties and are nil when there are no bookings at all.
func (a *Aggregator) SeasonalPatterns(ctx context.Context) (*SeasonalPatternsResponse, error) {
	monthRows, err := a.repo.MonthOfYearCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("seasonal patterns: %w", err)
	}
	dayRows, err := a.repo.WeekdayCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("seasonal patterns: %w", err)
	}

	var monthCounts [13]int64 // 1-based
	var total int64
	for _, row := range monthRows {
		if row.Month >= 1 && row.Month <= 12 {
			monthCounts[row.Month] += row.Bookings
			total += row.Bookings
		}
	}
	mean := float64(total) / 12

	months := make([]MonthPattern, 0, 12)
	var peakMonth *string
	var peakMonthCount int64
	for m := 1; m <= 12; m++ {
		name := time.Month(m).String()
		count := monthCounts[m]
		months = append(months, MonthPattern{
			Month:        m,
			MonthName:    name,
			BookingCount: count,
			AboveAverage: float64(count) > mean,
		})
		if count > peakMonthCount {
			peakMonthCount = count
			n := name
			peakMonth = &n
		}
	}

	var dayCounts [7]int64
	for _, row := range dayRows {
		if row.Weekday >= 0 && row.Weekday <= 6 {
			dayCounts[row.Weekday] += row.Bookings
		}
	}

	days := make([]DayPattern, 0, 7)
	var peakDay *string
	var peakDayCount int64
	for d := 0; d < 7; d++ {
		days = append(days, DayPattern{
			DayNumber:    d,
			DayName:      dayNames[d],
			BookingCount: dayCounts[d],
		})
		if dayCounts[d] > peakDayCount {
			peakDayCount = dayCounts[d]
			n := dayNames[d]
			peakDay = &n
		}
	}

	return &SeasonalPatternsResponse{
		MonthlyPatterns:   months,
		DayOfWeekPatterns: days,
		PeakMonth:         peakMonth,
		PeakDay:           peakDay,
	}, nil
}

// Complexity builds tours-per-booking and locations-per-booking frequency
// histograms (zero buckets included) and the two scalar averages computed
// from total selection counts, not from the histograms.
func (a *Aggregator) Complexity(ctx context.Context) (*BookingComplexityResponse, error) {
	perBooking, err := a.repo.SelectionCountsPerBooking(ctx)
	if err != nil {
		return nil, fmt.Errorf("complexity: %w", err)
	}
	totalBookings, err := a.repo.CountBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("complexity: %w", err)
	}
	totalTours, err := a.repo.CountTourSelections(ctx)
	if err != nil {
		return nil, fmt.Errorf("complexity: %w", err)
	}
	totalLocations, err := a.repo.CountLocationSelections(ctx)
	if err != nil {
		return nil, fmt.Errorf("complexity: %w", err)
	}

	tourFreq := map[int]int64{}
	locFreq := map[int]int64{}
	for _, row := range perBooking {
		tourFreq[row.TourCount]++
		locFreq[row.LocationCount]++
	}

	tourDist := make([]TourBucket, 0, len(tourFreq))
	for count, freq := range tourFreq {
		tourDist = append(tourDist, TourBucket{Tours: count, Frequency: freq})
	}
	sort.Slice(tourDist, func(i, j int) bool { return tourDist[i].Tours < tourDist[j].Tours })

	locDist := make([]LocationBucket, 0, len(locFreq))
	for count, freq := range locFreq {
		locDist = append(locDist, LocationBucket{Locations: count, Frequency: freq})
	}
	sort.Slice(locDist, func(i, j int) bool { return locDist[i].Locations < locDist[j].Locations })

	avgTours := 0.0
	avgLocations := 0.0
	if totalBookings > 0 {
		avgTours = round2(float64(totalTours) / float64(totalBookings))
		avgLocations = round2(float64(totalLocations) / float64(totalBookings))
	}

	return &BookingComplexityResponse{
		TourDistribution:     tourDist,
		LocationDistribution: locDist,
		Averages: ComplexityAverages{
			AvgToursPerBooking:     avgTours,
			AvgLocationsPerBooking: avgLocations,
		},
	}, nil
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TimeInsights reports trailing-7-day daily booking counts and lead-time
// statistics. Bookings whose preferred date precedes their creation date are
// excluded from the lead-time statistic.
func (a *Aggregator) TimeInsights(ctx context.Context) (*TimeInsightsResponse, error) {
	now := a.now()

	dailyRows, err := a.repo.DailyBookingCounts(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("time insights: %w", err)
	}
	samples, err := a.repo.LeadTimeSamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("time insights: %w", err)
	}

	daily := make([]DailyActivity, 0, len(dailyRows))
	for _, row := range dailyRows {
		daily = append(daily, DailyActivity{
			Date:     row.Date.Format("2006-01-02"),
			Bookings: row.Bookings,
		})
	}

	var leadDays []int
	for _, s := range samples {
		days := int(civilDate(s.PreferredDate).Sub(civilDate(s.CreatedAt)).Hours() / 24)
		if days >= 0 {
			leadDays = append(leadDays, days)
		}
	}

	insights := LeadTimeInsights{}
	if len(leadDays) > 0 {
		sum := 0
		min := leadDays[0]
		max := leadDays[0]
		for _, d := range leadDays {
			sum += d
			if d < min {
				min = d
			}
			if d > max {
				max = d
			}
		}
		insights = LeadTimeInsights{
			AverageLeadTimeDays: round1(float64(sum) / float64(len(leadDays))),
			MinLeadTime:         min,
			MaxLeadTime:         max,
			TotalAnalyzed:       len(leadDays),
		}
	}

	return &TimeInsightsResponse{
		RecentDailyActivity: daily,
		LeadTimeInsights:    insights,
	}, nil
}

// Comprehensive composes all metric families plus a generation timestamp.
func (a *Aggregator) Comprehensive(ctx context.Context, months, limit int) (*ComprehensiveReport, error) {
	overview, err := a.Overview(ctx)
	if err != nil {
		return nil, err
	}
	trends, err := a.Trends(ctx, months)
	if err != nil {
		return nil, err
	}
	locations, err := a.PopularLocations(ctx, limit)
	if err != nil {
		return nil, err
	}
	tours, err := a.PopularTours(ctx, limit)
	if err != nil {
		return nil, err
	}
	demographics, err := a.Demographics(ctx)
	if err != nil {
		return nil, err
	}
	seasonal, err := a.SeasonalPatterns(ctx)
	if err != nil {
		return nil, err
	}
	complexity, err := a.Complexity(ctx)
	if err != nil {
		return nil, err
	}
	timeInsights, err := a.TimeInsights(ctx)
	if err != nil {
		return nil, err
	}

	return &ComprehensiveReport{
		DashboardOverview:    overview,
		BookingTrends:        trends,
		PopularLocations:     locations,
		PopularTours:         tours,
		CustomerDemographics: demographics,
		SeasonalPatterns:     seasonal,
		BookingComplexity:    complexity,
		TimeInsights:         timeInsights,
		GeneratedAt:          a.now().UTC().Format(time.RFC3339),
	}, nil
}
