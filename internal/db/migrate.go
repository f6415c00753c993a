// Package db opens the run log database and migrates its schema.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/erp-reports/internal/models"
)

// Open connects using a DSN understood by Split. Postgres is retried a few
// times to let a container start.
func Open(raw string, debug bool) (*gorm.DB, error) {
	driver, dsn := Split(raw)
	if dsn == "" {
		return nil, fmt.Errorf("empty %s DSN", driver)
	}
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	if driver == DriverSQLite {
		d, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return d, nil
	}

	var d *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		d, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		slog.Warn("database not ready, retrying", "attempt", i+1, "dsn", Mask(dsn), "err", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect postgres after retries: %w", err)
	}
	return d, nil
}

// Migrate creates or updates the run log tables.
func Migrate(d *gorm.DB) error {
	if err := d.AutoMigrate(&models.ReportRun{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func Ping(ctx context.Context, d *gorm.DB) error {
	sqlDB, err := d.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
