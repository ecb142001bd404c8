package analytics

import (
	"context"
	"time"
)

// Entry is the flat persisted shape of one cached metric. MetricData is an
// opaque JSON blob; corruption is detected when the consumer deserializes it
// and is treated as a cache miss, never an error.
type Entry struct {
	MetricName     string    `db:"metric_name" json:"metric_name"`
	MetricValue    float64   `db:"metric_value" json:"metric_value"`
	MetricData     []byte    `db:"metric_data" json:"metric_data"`
	LastCalculated time.Time `db:"last_calculated" json:"last_calculated"`
}

// Store is the keyed cache for metric payloads. Writes are last-writer-wins;
// there is no invalidation on upstream data mutation — staleness is bounded
// only by the max age the reader supplies.
type Store interface {
	// Put upserts the entry under its metric name, unconditionally
	// overwriting any previous entry for that key.
	Put(ctx context.Context, entry Entry) error

	// GetFresh returns the entry for name when its age does not exceed
	// maxAge, or (nil, nil) on a miss. A miss is not an error.
	GetFresh(ctx context.Context, name string, maxAge time.Duration) (*Entry, error)

	// Latest returns the most recently calculated entry of any key, or
	// (nil, nil) when the cache is empty. Used by the health report.
	Latest(ctx context.Context) (*Entry, error)
}
