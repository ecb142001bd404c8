package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ReadRepository exposes the booking/tour/location data as flat row queries.
// The analytics engine only ever reads; the booking service owns writes and
// referential integrity. Implementations must not be assumed to provide
// snapshot isolation across calls.
type ReadRepository interface {
	// Entity counts
	CountBookings(ctx context.Context) (int64, error)
	CountDistinctCustomers(ctx context.Context) (int64, error)
	CountActiveTours(ctx context.Context) (int64, error)
	CountLocations(ctx context.Context) (int64, error)
	CountBookingsBetween(ctx context.Context, from, to time.Time) (int64, error)

	// Grouped rows
	MonthlyBookingCounts(ctx context.Context, since time.Time) ([]MonthlyCountRow, error)
	LocationSelectionCounts(ctx context.Context) ([]LocationCountRow, error)
	TourSelectionCounts(ctx context.Context) ([]TourCountRow, error)
	CountryBookingStats(ctx context.Context) ([]CountryStatsRow, error)
	AgeBookingCounts(ctx context.Context) ([]AgeCountRow, error)
	MonthOfYearCounts(ctx context.Context) ([]MonthBucketRow, error)
	WeekdayCounts(ctx context.Context) ([]WeekdayBucketRow, error)
	SelectionCountsPerBooking(ctx context.Context) ([]BookingSelectionRow, error)
	CountTourSelections(ctx context.Context) (int64, error)
	CountLocationSelections(ctx context.Context) (int64, error)
	DailyBookingCounts(ctx context.Context, since time.Time) ([]DailyCountRow, error)
	LeadTimeSamples(ctx context.Context) ([]LeadTimeRow, error)
	BookingTimeRange(ctx context.Context) (oldest, newest *time.Time, err error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) ReadRepository {
	return &repository{db: db}
}

func (r *repository) countOne(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CountBookings(ctx context.Context) (int64, error) {
	count, err := r.countOne(ctx, `SELECT COUNT(*) FROM bookings`)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *repository) CountDistinctCustomers(ctx context.Context) (int64, error) {
	count, err := r.countOne(ctx, `SELECT COUNT(DISTINCT customer_email) FROM bookings`)
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct customers: %w", err)
	}
	return count, nil
}

func (r *repository) CountActiveTours(ctx context.Context) (int64, error) {
	count, err := r.countOne(ctx, `SELECT COUNT(*) FROM tours WHERE is_active = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("failed to count active tours: %w", err)
	}
	return count, nil
}

func (r *repository) CountLocations(ctx context.Context) (int64, error) {
	count, err := r.countOne(ctx, `SELECT COUNT(*) FROM locations`)
	if err != nil {
		return 0, fmt.Errorf("failed to count locations: %w", err)
	}
	return count, nil
}

// CountBookingsBetween counts bookings created in [from, to).
func (r *repository) CountBookingsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	count, err := r.countOne(ctx,
		`SELECT COUNT(*) FROM bookings WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings between %s and %s: %w",
			from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}
	return count, nil
}

func (r *repository) MonthlyBookingCounts(ctx context.Context, since time.Time) ([]MonthlyCountRow, error) {
	query := `
		SELECT
			EXTRACT(YEAR FROM created_at)::int AS year,
			EXTRACT(MONTH FROM created_at)::int AS month,
			COUNT(id) AS bookings,
			COUNT(DISTINCT customer_email) AS unique_customers
		FROM bookings
		WHERE created_at >= $1
		GROUP BY year, month
		ORDER BY year, month
	`

	var rows []MonthlyCountRow
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("failed to get monthly booking counts: %w", err)
	}
	return rows, nil
}

func (r *repository) LocationSelectionCounts(ctx context.Context) ([]LocationCountRow, error) {
	query := `
		SELECT
			l.id,
			l.name,
			l.country,
			COALESCE(l.region, '') AS region,
			COUNT(bl.id) AS booking_count
		FROM locations l
		JOIN booking_locations bl ON bl.location_id = l.id
		GROUP BY l.id, l.name, l.country, l.region
	`

	var rows []LocationCountRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get location selection counts: %w", err)
	}
	return rows, nil
}

func (r *repository) TourSelectionCounts(ctx context.Context) ([]TourCountRow, error) {
	query := `
		SELECT
			t.id,
			t.name,
			t.country,
			COALESCE(t.region, '') AS region,
			COUNT(DISTINCT bt.id) AS booking_count,
			COUNT(bl.id) AS total_locations
		FROM tours t
		JOIN booking_tours bt ON bt.tour_id = t.id
		LEFT JOIN booking_locations bl
			ON bl.booking_id = bt.booking_id AND bl.tour_id = t.id
		GROUP BY t.id, t.name, t.country, t.region
	`

	var rows []TourCountRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get tour selection counts: %w", err)
	}
	return rows, nil
}

func (r *repository) CountryBookingStats(ctx context.Context) ([]CountryStatsRow, error) {
	query := `
		SELECT
			customer_country AS country,
			COUNT(DISTINCT customer_email) AS unique_customers,
			COUNT(id) AS total_bookings,
			COALESCE(AVG(customer_age), 0) AS avg_age
		FROM bookings
		WHERE customer_country IS NOT NULL
		GROUP BY customer_country
	`

	var rows []CountryStatsRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get country booking stats: %w", err)
	}
	return rows, nil
}

func (r *repository) AgeBookingCounts(ctx context.Context) ([]AgeCountRow, error) {
	query := `
		SELECT customer_age AS age, COUNT(id) AS bookings
		FROM bookings
		WHERE customer_age IS NOT NULL
		GROUP BY customer_age
		ORDER BY customer_age
	`

	var rows []AgeCountRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get age booking counts: %w", err)
	}
	return rows, nil
}

func (r *repository) MonthOfYearCounts(ctx context.Context) ([]MonthBucketRow, error) {
	query := `
		SELECT EXTRACT(MONTH FROM created_at)::int AS month, COUNT(id) AS bookings
		FROM bookings
		GROUP BY month
		ORDER BY month
	`

	var rows []MonthBucketRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get month-of-year counts: %w", err)
	}
	return rows, nil
}

func (r *repository) WeekdayCounts(ctx context.Context) ([]WeekdayBucketRow, error) {
	// DOW is 0=Sunday..6=Saturday in postgres, matching the payload contract.
	query := `
		SELECT EXTRACT(DOW FROM created_at)::int AS weekday, COUNT(id) AS bookings
		FROM bookings
		GROUP BY weekday
		ORDER BY weekday
	`

	var rows []WeekdayBucketRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get weekday counts: %w", err)
	}
	return rows, nil
}

func (r *repository) SelectionCountsPerBooking(ctx context.Context) ([]BookingSelectionRow, error) {
	query := `
		SELECT
			b.id AS booking_id,
			(SELECT COUNT(*) FROM booking_tours bt WHERE bt.booking_id = b.id) AS tour_count,
			(SELECT COUNT(*) FROM booking_locations bl WHERE bl.booking_id = b.id) AS location_count
		FROM bookings b
	`

	var rows []BookingSelectionRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get selection counts per booking: %w", err)
	}
	return rows, nil
}

func (r *repository) CountTourSelections(ctx context.Context) (int64, error) {
	count, err := r.countOne(ctx, `SELECT COUNT(*) FROM booking_tours`)
	if err != nil {
		return 0, fmt.Errorf("failed to count tour selections: %w", err)
	}
	return count, nil
}

func (r *repository) CountLocationSelections(ctx context.Context) (int64, error) {
	count, err := r.countOne(ctx, `SELECT COUNT(*) FROM booking_locations`)
	if err != nil {
		return 0, fmt.Errorf("failed to count location selections: %w", err)
	}
	return count, nil
}

func (r *repository) DailyBookingCounts(ctx context.Context, since time.Time) ([]DailyCountRow, error) {
	query := `
		SELECT created_at::date AS date, COUNT(id) AS bookings
		FROM bookings
		WHERE created_at >= $1
		GROUP BY date
		ORDER BY date
	`

	var rows []DailyCountRow
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("failed to get daily booking counts: %w", err)
	}
	return rows, nil
}

func (r *repository) LeadTimeSamples(ctx context.Context) ([]LeadTimeRow, error) {
	query := `
		SELECT created_at, preferred_date
		FROM bookings
		WHERE preferred_date IS NOT NULL
	`

	var rows []LeadTimeRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get lead time samples: %w", err)
	}
	return rows, nil
}

func (r *repository) BookingTimeRange(ctx context.Context) (*time.Time, *time.Time, error) {
	query := `SELECT MIN(created_at) AS oldest, MAX(created_at) AS newest FROM bookings`

	var rng struct {
		Oldest sql.NullTime `db:"oldest"`
		Newest sql.NullTime `db:"newest"`
	}
	if err := r.db.GetContext(ctx, &rng, query); err != nil {
		return nil, nil, fmt.Errorf("failed to get booking time range: %w", err)
	}

	var oldest, newest *time.Time
	if rng.Oldest.Valid {
		oldest = &rng.Oldest.Time
	}
	if rng.Newest.Valid {
		newest = &rng.Newest.Time
	}
	return oldest, newest, nil
}
