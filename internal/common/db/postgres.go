package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/soleara/wanderly/internal/common/config"
	"github.com/soleara/wanderly/internal/common/logger"
)

// Database wraps the sqlx handle so callers get pooled connections plus a
// health check without touching driver details.
type Database struct {
	DB *sqlx.DB
}

func Connect(cfg config.DatabaseConfig, log *logger.Logger) (*Database, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	database.SetMaxOpenConns(cfg.MaxOpenConns)
	database.SetMaxIdleConns(cfg.MaxIdleConns)
	database.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Infof("Connected to postgres database %s at %s:%s", cfg.DBName, cfg.Host, cfg.Port)

	return &Database{DB: database}, nil
}

// Health pings the database with a short deadline.
func (d *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}
