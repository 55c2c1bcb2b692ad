// Command initdb creates the database if needed, applies the schema
// migrations, and ensures the default admin user exists.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/house-energy-service/internal/adapter/mysql"
	"github.com/couchcryptid/house-energy-service/internal/auth"
	"github.com/couchcryptid/house-energy-service/internal/config"
	"github.com/couchcryptid/house-energy-service/internal/observability"
)

const (
	adminUsername = "admin"
	adminEmail    = "admin@gmail.com"
	adminAddress  = "123 Admin St"
)

func main() {
	if err := run(); err != nil {
		slog.Error("initdb failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	ctx := context.Background()

	if err := mysql.CreateDatabase(ctx, cfg.DB, logger); err != nil {
		return err
	}

	db, err := mysql.Open(ctx, cfg.DB, logger, mysql.OpenOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err := mysql.Close(db); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()

	if err := mysql.Migrate(db, logger); err != nil {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	store := mysql.NewStore(db, logger)
	admin, created, err := store.EnsureUser(ctx, mysql.User{
		Username: adminUsername,
		Email:    adminEmail,
		Password: hash,
		Address:  adminAddress,
	})
	if err != nil {
		return err
	}
	if created {
		logger.Info("admin user created", "user_id", admin.ID)
	} else {
		logger.Info("admin user exists", "user_id", admin.ID)
	}
	return nil
}
