package analytics

import (
	"context"
	"testing"
	"time"
)

// fakeRepo is an in-memory ReadRepository with canned rows. Booking counts
// over time windows are derived from bookingTimes so the same fixture drives
// overview, trends and time-insight windows consistently.
type fakeRepo struct {
	bookingTimes   []time.Time
	distinctEmails int64
	activeTours    int64
	locations      int64
	monthly        []MonthlyCountRow
	locationCounts []LocationCountRow
	tourCounts     []TourCountRow
	countryStats   []CountryStatsRow
	ageCounts      []AgeCountRow
	monthBuckets   []MonthBucketRow
	weekdayBuckets []WeekdayBucketRow
	perBooking     []BookingSelectionRow
	tourSelections int64
	locSelections  int64
	dailyCounts    []DailyCountRow
	leadTimes      []LeadTimeRow
	oldest, newest *time.Time
}

func (f *fakeRepo) CountBookings(ctx context.Context) (int64, error) {
	return int64(len(f.bookingTimes)), nil
}

func (f *fakeRepo) CountDistinctCustomers(ctx context.Context) (int64, error) {
	return f.distinctEmails, nil
}

func (f *fakeRepo) CountActiveTours(ctx context.Context) (int64, error) {
	return f.activeTours, nil
}

func (f *fakeRepo) CountLocations(ctx context.Context) (int64, error) {
	return f.locations, nil
}

func (f *fakeRepo) CountBookingsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	for _, t := range f.bookingTimes {
		if !t.Before(from) && t.Before(to) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) MonthlyBookingCounts(ctx context.Context, since time.Time) ([]MonthlyCountRow, error) {
	return f.monthly, nil
}

func (f *fakeRepo) LocationSelectionCounts(ctx context.Context) ([]LocationCountRow, error) {
	return f.locationCounts, nil
}

func (f *fakeRepo) TourSelectionCounts(ctx context.Context) ([]TourCountRow, error) {
	return f.tourCounts, nil
}

func (f *fakeRepo) CountryBookingStats(ctx context.Context) ([]CountryStatsRow, error) {
	return f.countryStats, nil
}

func (f *fakeRepo) AgeBookingCounts(ctx context.Context) ([]AgeCountRow, error) {
	return f.ageCounts, nil
}

func (f *fakeRepo) MonthOfYearCounts(ctx context.Context) ([]MonthBucketRow, error) {
	return f.monthBuckets, nil
}

func (f *fakeRepo) WeekdayCounts(ctx context.Context) ([]WeekdayBucketRow, error) {
	return f.weekdayBuckets, nil
}

func (f *fakeRepo) SelectionCountsPerBooking(ctx context.Context) ([]BookingSelectionRow, error) {
	return f.perBooking, nil
}

func (f *fakeRepo) CountTourSelections(ctx context.Context) (int64, error) {
	return f.tourSelections, nil
}

func (f *fakeRepo) CountLocationSelections(ctx context.Context) (int64, error) {
	return f.locSelections, nil
}

func (f *fakeRepo) DailyBookingCounts(ctx context.Context, since time.Time) ([]DailyCountRow, error) {
	return f.dailyCounts, nil
}

func (f *fakeRepo) LeadTimeSamples(ctx context.Context) ([]LeadTimeRow, error) {
	return f.leadTimes, nil
}

func (f *fakeRepo) BookingTimeRange(ctx context.Context) (*time.Time, *time.Time, error) {
	return f.oldest, f.newest, nil
}

var testNow = time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func TestOverviewEmptyDataset(t *testing.T) {
	agg := NewAggregator(&fakeRepo{}, fixedClock)

	got, err := agg.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}

	o := got.Overview
	if o.TotalBookings != 0 || o.TotalCustomers != 0 || o.TotalTours != 0 || o.TotalLocations != 0 {
		t.Errorf("expected all zero counts, got %+v", o)
	}
	if o.BookingGrowthPercentage != 0 {
		t.Errorf("expected growth 0 for empty dataset, got %v", o.BookingGrowthPercentage)
	}
}

func TestOverviewGrowthZeroWhenPreviousMonthEmpty(t *testing.T) {
	// Bookings only in the current month: growth must stay 0 no matter how
	// many current-month bookings exist.
	repo := &fakeRepo{
		bookingTimes: []time.Time{
			time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC),
			time.Date(2026, time.August, 10, 10, 0, 0, 0, time.UTC),
			time.Date(2026, time.August, 14, 10, 0, 0, 0, time.UTC),
		},
	}
	agg := NewAggregator(repo, fixedClock)

	got, err := agg.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}

	if got.Overview.ThisMonthBookings != 3 {
		t.Errorf("expected 3 bookings this month, got %d", got.Overview.ThisMonthBookings)
	}
	if got.Overview.LastMonthBookings != 0 {
		t.Errorf("expected 0 bookings last month, got %d", got.Overview.LastMonthBookings)
	}
	if got.Overview.BookingGrowthPercentage != 0 {
		t.Errorf("expected growth 0 with empty previous month, got %v", got.Overview.BookingGrowthPercentage)
	}
}

func TestOverviewGrowthRounding(t *testing.T) {
	repo := &fakeRepo{
		bookingTimes: []time.Time{
			// 3 in July (previous), 4 in August (current): +33.33%.
			time.Date(2026, time.July, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.July, 20, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.August, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.August, 8, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.August, 12, 0, 0, 0, 0, time.UTC),
		},
	}
	agg := NewAggregator(repo, fixedClock)

	got, err := agg.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}

	if got.Overview.BookingGrowthPercentage != 33.33 {
		t.Errorf("expected growth 33.33, got %v", got.Overview.BookingGrowthPercentage)
	}
}

func TestAgeBucketBoundaries(t *testing.T) {
	tests := []struct {
		age    int
		bucket string
	}{
		{24, "Under 25"},
		{25, "25-34"},
		{34, "25-34"},
		{35, "35-44"},
		{44, "35-44"},
		{45, "45-54"},
		{54, "45-54"},
		{55, "55-64"},
		{64, "55-64"},
		{65, "65+"},
		{90, "65+"},
	}

	for _, tt := range tests {
		if got := ageBucket(tt.age); got != tt.bucket {
			t.Errorf("ageBucket(%d) = %q, want %q", tt.age, got, tt.bucket)
		}
	}
}

func TestDemographics(t *testing.T) {
	repo := &fakeRepo{
		countryStats: []CountryStatsRow{
			{Country: "Georgia", UniqueCustomers: 2, TotalBookings: 5, AvgAge: 34.56},
			{Country: "Armenia", UniqueCustomers: 3, TotalBookings: 7, AvgAge: 0},
		},
		ageCounts: []AgeCountRow{
			{Age: 24, Bookings: 2},
			{Age: 25, Bookings: 1},
			{Age: 70, Bookings: 3},
		},
	}
	agg := NewAggregator(repo, fixedClock)

	got, err := agg.Demographics(context.Background())
	if err != nil {
		t.Fatalf("Demographics failed: %v", err)
	}

	if got.TotalCountries != 2 {
		t.Fatalf("expected 2 countries, got %d", got.TotalCountries)
	}
	// Ordered by total bookings descending.
	if got.CountryDistribution[0].Country != "Armenia" {
		t.Errorf("expected Armenia first, got %s", got.CountryDistribution[0].Country)
	}
	georgia := got.CountryDistribution[1]
	if georgia.AvgAge != 34.6 {
		t.Errorf("expected avg age 34.6, got %v", georgia.AvgAge)
	}
	if georgia.BookingsPerCustomer != 2.5 {
		t.Errorf("expected 2.5 bookings per customer, got %v", georgia.BookingsPerCustomer)
	}

	if len(got.AgeDistribution) != 6 {
		t.Fatalf("expected all 6 age buckets, got %d", len(got.AgeDistribution))
	}
	want := map[string]int64{"Under 25": 2, "25-34": 1, "65+": 3}
	for _, g := range got.AgeDistribution {
		if g.BookingCount != want[g.AgeGroup] {
			t.Errorf("bucket %s = %d, want %d", g.AgeGroup, g.BookingCount, want[g.AgeGroup])
		}
	}
}

func TestPopularLocationsRanking(t *testing.T) {
	repo := &fakeRepo{
		locationCounts: []LocationCountRow{
			{ID: 3, Name: "Kazbegi", Country: "Georgia", BookingCount: 4},
			{ID: 1, Name: "Tbilisi", Country: "Georgia", BookingCount: 9},
			{ID: 2, Name: "Batumi", Country: "Georgia", BookingCount: 4},
			{ID: 4, Name: "Mestia", Country: "Georgia", BookingCount: 1},
		},
	}
	agg := NewAggregator(repo, fixedClock)

	got, err := agg.PopularLocations(context.Background(), 3)
	if err != nil {
		t.Fatalf("PopularLocations failed: %v", err)
	}

	if got.TotalAnalyzed != 3 {
		t.Fatalf("expected truncation to 3, got %d", got.TotalAnalyzed)
	}
	for i := 1; i < len(got.PopularLocations); i++ {
		if got.PopularLocations[i].BookingCount > got.PopularLocations[i-1].BookingCount {
			t.Errorf("ranking not non-increasing at index %d", i)
		}
	}
	// Tie on count 4 broken by id ascending: Batumi (2) before Kazbegi (3).
	if got.PopularLocations[1].ID != 2 || got.PopularLocations[2].ID != 3 {
		t.Errorf("tie-break by id failed: got %d then %d",
			got.PopularLocations[1].ID, got.PopularLocations[2].ID)
	}
}

func TestPopularToursAverages(t *testing.T) {
	repo := &fakeRepo{
		tourCounts: []TourCountRow{
			{ID: 1, Name: "Caucasus Loop", Country: "Georgia", BookingCount: 3, TotalLocations: 10},
			{ID: 2, Name: "Wine Route", Country: "Georgia", BookingCount: 5, TotalLocations: 5},
		},
	}
	agg := NewAggregator(repo, fixedClock)

	got, err := agg.PopularTours(context.Background(), 10)
	if err != nil {
		t.Fatalf("PopularTours failed: %v", err)
	}

	if got.PopularTours[0].ID != 2 {
		t.Errorf("expected tour 2 ranked first, got %d", got.PopularTours[0].ID)
	}
	if got.PopularTours[1].AvgLocationsPerBooking != 3.33 {
		t.Errorf("expected avg 3.33, got %v", got.PopularTours[1].AvgLocationsPerBooking)
	}
	if got.PopularTours[0].AvgLocationsPerBooking != 1 {
		t.Errorf("expected avg 1, got %v", got.PopularTours[0].AvgLocationsPerBooking)
	}
}

func TestSeasonalPatterns(t *testing.T) {
	repo := &fakeRepo{
		monthBuckets: []MonthBucketRow{
			{Month: 1, Bookings: 2},
			{Month: 7, Bookings: 10},
			{Month: 8, Bookings: 10},
		},
		weekdayBuckets: []WeekdayBucketRow{
			{Weekday: 1, Bookings: 5},
			{Weekday: 5, Bookings: 5},
		},
	}
	agg := NewAggregator(repo, fixedClock)

	got, err := agg.SeasonalPatterns(context.Background())
	if err != nil {
		t.Fatalf("SeasonalPatterns failed: %v", err)
	}

	if len(got.MonthlyPatterns) != 12 || len(got.DayOfWeekPatterns) != 7 {
		t.Fatalf("expected 12 month and 7 day buckets, got %d and %d",
			len(got.MonthlyPatterns), len(got.DayOfWeekPatterns))
	}
	// Mean is 22/12 = 1.83; only months 1, 7, 8 exceed it.
	above := 0
	for _, m := range got.MonthlyPatterns {
		if m.AboveAverage {
			above++
		}
	}
	if above != 3 {
		t.Errorf("expected 3 above-average months, got %d", above)
	}
	// Ties resolve to the earliest bucket.
	if got.PeakMonth == nil || *got.PeakMonth != "July" {
		t.Errorf("expected peak month July, got %v", got.PeakMonth)
	}
	if got.PeakDay == nil || *got.PeakDay != "Monday" {
		t.Errorf("expected peak day Monday, got %v", got.PeakDay)
	}
}

func TestSeasonalPatternsEmpty(t *testing.T) {
	agg := NewAggregator(&fakeRepo{}, fixedClock)

	got, err := agg.SeasonalPatterns(context.Background())
	if err != nil {
		t.Fatalf("SeasonalPatterns failed: %v", err)
	}

	if got.PeakMonth != nil || got.PeakDay != nil {
		t.Errorf("expected nil peaks with no data, got %v and %v", got.PeakMonth, got.PeakDay)
	}
}

func TestComplexitySingleBooking(t *testing.T) {
	// One booking with two tour selections: tour A with 3 locations, tour B
	// with 1 location.
	repo := &fakeRepo{
		bookingTimes:   []time.Time{time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)},
		perBooking:     []BookingSelectionRow{{BookingID: 1, TourCount: 2, LocationCount: 4}},
		tourSelections: 2,
		locSelections:  4,
	}
	agg := NewAggregator(repo, fixedClock)

	got, err := agg.Complexity(context.Background())
	if err != nil {
		t.Fatalf("Complexity failed: %v", err)
	}

	if len(got.TourDistribution) != 1 || got.TourDistribution[0].Tours != 2 || got.TourDistribution[0].Frequency != 1 {
		t.Errorf("expected tour histogram {2: 1}, got %+v", got.TourDistribution)
	}
	if len(got.LocationDistribution) != 1 || got.LocationDistribution[0].Locations != 4 || got.LocationDistribution[0].Frequency != 1 {
		t.Errorf("expected location histogram {4: 1}, got %+v", got.LocationDistribution)
	}
	if got.Averages.AvgToursPerBooking != 2.0 {
		t.Errorf("expected avg tours 2.0, got %v", got.Averages.AvgToursPerBooking)
	}
	if got.Averages.AvgLocationsPerBooking != 4.0 {
		t.Errorf("expected avg locations 4.0, got %v", got.Averages.AvgLocationsPerBooking)
	}
}

func TestComplexityAveragesMatchHistograms(t *testing.T) {
	repo := &fakeRepo{
		bookingTimes: []time.Time{
			time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.June, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.June, 3, 0, 0, 0, 0, time.UTC),
		},
		perBooking: []BookingSelectionRow{
			{BookingID: 1, TourCount: 0, LocationCount: 0},
			{BookingID: 2, TourCount: 1, LocationCount: 2},
			{BookingID: 3, TourCount: 3, LocationCount: 7},
		},
		tourSelections: 4,
		locSelections:  9,
	}
	agg := NewAggregator(repo, fixedClock)

	got, err := agg.Complexity(context.Background())
	if err != nil {
		t.Fatalf("Complexity failed: %v", err)
	}

	// Zero-count bucket must be present.
	if got.TourDistribution[0].Tours != 0 || got.TourDistribution[0].Frequency != 1 {
		t.Errorf("expected zero bucket in tour histogram, got %+v", got.TourDistribution)
	}

	// Averages equal the histogram-weighted sums over the booking count.
	var weighted int64
	for _, b := range got.TourDistribution {
		weighted += int64(b.Tours) * b.Frequency
	}
	if round2(float64(weighted)/3) != got.Averages.AvgToursPerBooking {
		t.Errorf("avg tours %v does not match histogram sum %d/3", got.Averages.AvgToursPerBooking, weighted)
	}
	if got.Averages.AvgLocationsPerBooking != 3.0 {
		t.Errorf("expected avg locations 3.0, got %v", got.Averages.AvgLocationsPerBooking)
	}
}

func TestComplexityEmpty(t *testing.T) {
	agg := NewAggregator(&fakeRepo{}, fixedClock)

	got, err := agg.Complexity(context.Background())
	if err != nil {
		t.Fatalf("Complexity failed: %v", err)
	}

	if got.Averages.AvgToursPerBooking != 0 || got.Averages.AvgLocationsPerBooking != 0 {
		t.Errorf("expected zero averages with no bookings, got %+v", got.Averages)
	}
	if len(got.TourDistribution) != 0 || len(got.LocationDistribution) != 0 {
		t.Errorf("expected empty histograms, got %+v", got)
	}
}

func TestTimeInsightsLeadTimes(t *testing.T) {
	created := time.Date(2026, time.August, 1, 15, 30, 0, 0, time.UTC)
	repo := &fakeRepo{
		leadTimes: []LeadTimeRow{
			{CreatedAt: created, PreferredDate: created.AddDate(0, 0, 10)},
			{CreatedAt: created, PreferredDate: created.AddDate(0, 0, 3)},
			// Preferred date before creation: excluded, not an error.
			{CreatedAt: created, PreferredDate: created.AddDate(0, 0, -5)},
			// Same day counts as zero lead time.
			{CreatedAt: created, PreferredDate: created.Add(2 * time.Hour)},
		},
	}
	agg := NewAggregator(repo, fixedClock)

	got, err := agg.TimeInsights(context.Background())
	if err != nil {
		t.Fatalf("TimeInsights failed: %v", err)
	}

	li := got.LeadTimeInsights
	if li.TotalAnalyzed != 3 {
		t.Fatalf("expected 3 analyzed samples, got %d", li.TotalAnalyzed)
	}
	if li.MinLeadTime != 0 || li.MaxLeadTime != 10 {
		t.Errorf("expected min 0 max 10, got %d and %d", li.MinLeadTime, li.MaxLeadTime)
	}
	if li.AverageLeadTimeDays != 4.3 {
		t.Errorf("expected average 4.3, got %v", li.AverageLeadTimeDays)
	}
	if float64(li.MinLeadTime) > li.AverageLeadTimeDays || li.AverageLeadTimeDays > float64(li.MaxLeadTime) {
		t.Errorf("min <= mean <= max violated: %d, %v, %d", li.MinLeadTime, li.AverageLeadTimeDays, li.MaxLeadTime)
	}
}

func TestTimeInsightsEmpty(t *testing.T) {
	agg := NewAggregator(&fakeRepo{}, fixedClock)

	got, err := agg.TimeInsights(context.Background())
	if err != nil {
		t.Fatalf("TimeInsights failed: %v", err)
	}

	li := got.LeadTimeInsights
	if li.TotalAnalyzed != 0 || li.AverageLeadTimeDays != 0 || li.MinLeadTime != 0 || li.MaxLeadTime != 0 {
		t.Errorf("expected zero lead time insights, got %+v", li)
	}
}

func TestTrendsChronological(t *testing.T) {
	repo := &fakeRepo{
		monthly: []MonthlyCountRow{
			{Year: 2026, Month: 3, Bookings: 5, UniqueCustomers: 4},
			{Year: 2025, Month: 12, Bookings: 2, UniqueCustomers: 2},
			{Year: 2026, Month: 1, Bookings: 3, UniqueCustomers: 3},
		},
	}
	agg := NewAggregator(repo, fixedClock)

	got, err := agg.Trends(context.Background(), 12)
	if err != nil {
		t.Fatalf("Trends failed: %v", err)
	}

	if got.TotalPeriods != 3 {
		t.Fatalf("expected 3 periods, got %d", got.TotalPeriods)
	}
	wantPeriods := []string{"December 2025", "January 2026", "March 2026"}
	for i, want := range wantPeriods {
		if got.Trends[i].Period != want {
			t.Errorf("period %d = %q, want %q", i, got.Trends[i].Period, want)
		}
	}
}
