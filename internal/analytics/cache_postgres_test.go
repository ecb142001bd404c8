package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := NewPostgresStore(sqlx.NewDb(db, "sqlmock"), fixedClock)
	return store, mock
}

func TestPostgresStorePut(t *testing.T) {
	store, mock := newMockStore(t)

	entry := Entry{
		MetricName:     ComprehensiveKey,
		MetricValue:    8,
		MetricData:     []byte(`{"generated_at":"2026-08-15T12:00:00Z"}`),
		LastCalculated: testNow,
	}

	mock.ExpectExec("INSERT INTO analytics_cache").
		WithArgs(entry.MetricName, entry.MetricValue, string(entry.MetricData), entry.LastCalculated.UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Put(context.Background(), entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreGetFresh(t *testing.T) {
	store, mock := newMockStore(t)

	calculated := testNow.Add(-30 * time.Minute)
	rows := sqlmock.NewRows([]string{"metric_name", "metric_value", "metric_data", "last_calculated"}).
		AddRow(ComprehensiveKey, 8.0, `{}`, calculated)

	mock.ExpectQuery("SELECT metric_name, metric_value, metric_data, last_calculated").
		WithArgs(ComprehensiveKey, testNow.UTC().Add(-time.Hour)).
		WillReturnRows(rows)

	got, err := store.GetFresh(context.Background(), ComprehensiveKey, time.Hour)
	if err != nil {
		t.Fatalf("GetFresh failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a fresh entry")
	}
	if got.MetricName != ComprehensiveKey || got.MetricValue != 8 {
		t.Errorf("unexpected entry: %+v", got)
	}
	if !got.LastCalculated.Equal(calculated) {
		t.Errorf("last calculated = %v, want %v", got.LastCalculated, calculated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreGetFreshMiss(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"metric_name", "metric_value", "metric_data", "last_calculated"})
	mock.ExpectQuery("SELECT metric_name, metric_value, metric_data, last_calculated").
		WithArgs(ComprehensiveKey, testNow.UTC().Add(-time.Hour)).
		WillReturnRows(rows)

	got, err := store.GetFresh(context.Background(), ComprehensiveKey, time.Hour)
	if err != nil {
		t.Fatalf("GetFresh failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected a miss, got %+v", got)
	}
}

func TestPostgresStoreLatestEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"metric_name", "metric_value", "metric_data", "last_calculated"})
	mock.ExpectQuery("SELECT metric_name, metric_value, metric_data, last_calculated").
		WillReturnRows(rows)

	got, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected no entry on empty table, got %+v", got)
	}
}
