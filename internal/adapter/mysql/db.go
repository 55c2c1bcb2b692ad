// Package mysql stores users, houses, meter readings, and weather in MySQL.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"regexp"
	"time"

	"github.com/couchcryptid/house-energy-service/internal/config"
	gomysql "github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultConnectAttempts = 5
	maxConnectBackoff      = 30 * time.Second
)

var validDBName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// OpenOptions tunes Open. The zero value retries five times.
type OpenOptions struct {
	Attempts int
	LogLevel gormlogger.LogLevel
}

// Open connects to the configured database, retrying with exponential backoff
// while the server comes up, and applies connection pool limits.
func Open(ctx context.Context, cfg config.DBConfig, logger *slog.Logger, opts OpenOptions) (*gorm.DB, error) {
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = defaultConnectAttempts
	}
	level := opts.LogLevel
	if level == 0 {
		level = gormlogger.Warn
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := openOnce(ctx, cfg, level)
		if err == nil {
			logger.Info("database connected", "host", cfg.Host, "database", cfg.Name, "attempt", attempt)
			return db, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		wait := connectBackoff(attempt)
		logger.Warn("database connect failed, retrying", "attempt", attempt, "max_attempts", attempts, "backoff", wait, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("connect to database after %d attempts: %w", attempts, lastErr)
}

// connectBackoff doubles from one second and caps at thirty.
func connectBackoff(attempt int) time.Duration {
	d := time.Duration(1<<min(attempt-1, 5)) * time.Second
	return min(d, maxConnectBackoff)
}

func openOnce(ctx context.Context, cfg config.DBConfig, level gormlogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(gormmysql.Open(cfg.DSN(true)), &gorm.Config{
		Logger:                 gormLogger(level),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	tunePool(sqlDB)
	return db, nil
}

func tunePool(sqlDB *sql.DB) {
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(300 * time.Second)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
}

func gormLogger(level gormlogger.LogLevel) gormlogger.Interface {
	return gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// CreateDatabase creates the configured database with a utf8mb4 collation if
// it does not exist yet. It connects without selecting a database.
func CreateDatabase(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) error {
	if !validDBName.MatchString(cfg.Name) {
		return fmt.Errorf("invalid database name %q", cfg.Name)
	}
	driverCfg, err := gomysql.ParseDSN(cfg.DSN(false))
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}
	connector, err := gomysql.NewConnector(driverCfg)
	if err != nil {
		return fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	defer db.Close()

	stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", cfg.Name)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create database %s: %w", cfg.Name, err)
	}
	logger.Info("database ready", "database", cfg.Name)
	return nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
