package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresStore persists cache entries in the analytics_cache table. The
// table has no foreign relationships; entries are only ever upserted.
type PostgresStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgresStore(db *sqlx.DB, now func() time.Time) *PostgresStore {
	if now == nil {
		now = time.Now
	}
	return &PostgresStore{db: db, now: now}
}

// EnsureSchema creates the cache table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS analytics_cache (
			metric_name     TEXT PRIMARY KEY,
			metric_value    DOUBLE PRECISION NOT NULL DEFAULT 0,
			metric_data     TEXT NOT NULL,
			last_calculated TIMESTAMP WITH TIME ZONE NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure analytics_cache schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO analytics_cache (metric_name, metric_value, metric_data, last_calculated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (metric_name) DO UPDATE SET
			metric_value = EXCLUDED.metric_value,
			metric_data = EXCLUDED.metric_data,
			last_calculated = EXCLUDED.last_calculated
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.MetricName,
		entry.MetricValue,
		string(entry.MetricData),
		entry.LastCalculated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry %s: %w", entry.MetricName, err)
	}
	return nil
}

func (s *PostgresStore) GetFresh(ctx context.Context, name string, maxAge time.Duration) (*Entry, error) {
	cutoff := s.now().UTC().Add(-maxAge)

	query := `
		SELECT metric_name, metric_value, metric_data, last_calculated
		FROM analytics_cache
		WHERE metric_name = $1 AND last_calculated >= $2
	`

	var row struct {
		MetricName     string    `db:"metric_name"`
		MetricValue    float64   `db:"metric_value"`
		MetricData     string    `db:"metric_data"`
		LastCalculated time.Time `db:"last_calculated"`
	}
	err := s.db.GetContext(ctx, &row, query, name, cutoff)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry %s: %w", name, err)
	}

	return &Entry{
		MetricName:     row.MetricName,
		MetricValue:    row.MetricValue,
		MetricData:     []byte(row.MetricData),
		LastCalculated: row.LastCalculated.UTC(),
	}, nil
}

func (s *PostgresStore) Latest(ctx context.Context) (*Entry, error) {
	query := `
		SELECT metric_name, metric_value, metric_data, last_calculated
		FROM analytics_cache
		ORDER BY last_calculated DESC
		LIMIT 1
	`

	var row struct {
		MetricName     string    `db:"metric_name"`
		MetricValue    float64   `db:"metric_value"`
		MetricData     string    `db:"metric_data"`
		LastCalculated time.Time `db:"last_calculated"`
	}
	err := s.db.GetContext(ctx, &row, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest cache entry: %w", err)
	}

	return &Entry{
		MetricName:     row.MetricName,
		MetricValue:    row.MetricValue,
		MetricData:     []byte(row.MetricData),
		LastCalculated: row.LastCalculated.UTC(),
	}, nil
}
