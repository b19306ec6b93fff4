package config

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/yourusername/freelancedesk/store"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the configured SQL backend. It returns nil for the memory backend.
func InitDB(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	switch cfg.StoreBackend {
	case BackendPostgres:
		sqlDB, err := openPostgres(cfg, log)
		if err != nil {
			return nil, err
		}
		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	case BackendSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return db, nil
	default:
		return nil, nil
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(store.Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// NormalizeDatabaseURL rewrites postgresql:// to postgres:// and defaults sslmode to disable.
func NormalizeDatabaseURL(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgresql://") {
		databaseURL = "postgres://" + strings.TrimPrefix(databaseURL, "postgresql://")
	}
	if databaseURL != "" && !strings.Contains(databaseURL, "sslmode=") {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL += separator + "sslmode=disable"
	}
	return databaseURL
}

// openPostgres waits for the database to accept connections.
func openPostgres(cfg *Config, log *zap.Logger) (*sql.DB, error) {
	pgConfig, err := pgx.ParseConfig(NormalizeDatabaseURL(cfg.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.DBMaxRetries; attempt++ {
		db := stdlib.OpenDB(*pgConfig)
		if lastErr = db.Ping(); lastErr == nil {
			log.Info("database connection established", zap.Int("attempt", attempt))
			return db, nil
		}
		db.Close()
		if attempt < cfg.DBMaxRetries {
			log.Warn("database not ready, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", cfg.DBMaxRetries),
				zap.Duration("delay", cfg.DBRetryDelay),
				zap.Error(lastErr),
			)
			time.Sleep(cfg.DBRetryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.DBMaxRetries, lastErr)
}
