// Command seeddb loads a house's meter export, and optionally a weather
// export, into MySQL.
//
// Usage:
//
//	go run ./cmd/seeddb -house 3538 -weather ../data/weather_data.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/house-energy-service/internal/adapter/csvfile"
	"github.com/couchcryptid/house-energy-service/internal/adapter/mysql"
	"github.com/couchcryptid/house-energy-service/internal/config"
	"github.com/couchcryptid/house-energy-service/internal/observability"
)

const batchSize = 1000

func main() {
	if err := run(); err != nil {
		slog.Error("seeddb failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	houseID := flag.Int("house", 3538, "house id; reads <CSV_FILE_PATH>/house_<id>.csv")
	userID := flag.Int("user", 1, "id of the user who owns the house")
	force := flag.Bool("force", false, "insert even when the house already has readings")
	weatherPath := flag.String("weather", "", "optional weather CSV to load into weather_observations")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	ctx := context.Background()

	db, err := mysql.Open(ctx, cfg.DB, logger, mysql.OpenOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err := mysql.Close(db); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()
	store := mysql.NewStore(db, logger)

	if err := store.EnsureHouse(ctx, mysql.House{ID: *houseID, UserID: *userID}); err != nil {
		return err
	}

	existing, err := store.CountReadings(ctx, *houseID)
	if err != nil {
		return err
	}
	if existing > 0 && !*force {
		logger.Info("house already seeded, skipping readings", "house_id", *houseID, "rows", existing)
	} else {
		path := filepath.Join(cfg.CSVDir, fmt.Sprintf("house_%d.csv", *houseID))
		n, err := seedReadings(ctx, store, path, *houseID)
		if err != nil {
			return err
		}
		metrics.ReadingsSeeded.Add(float64(n))
		logger.Info("readings seeded", "house_id", *houseID, "file", path, "inserted", n)
	}

	if *weatherPath != "" {
		n, err := seedWeather(ctx, store, *weatherPath)
		if err != nil {
			return err
		}
		logger.Info("weather seeded", "file", *weatherPath, "inserted", n)
	}
	return nil
}

func seedReadings(ctx context.Context, store *mysql.Store, path string, houseID int) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open readings: %w", err)
	}
	defer f.Close()

	readings, _, err := csvfile.ReadReadings(f, houseID)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	readings, _ = csvfile.FilterHouse(readings, houseID)
	if len(readings) == 0 {
		return 0, errors.New("readings file has no rows for this house")
	}
	return store.InsertReadings(ctx, readings, batchSize)
}

func seedWeather(ctx context.Context, store *mysql.Store, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open weather: %w", err)
	}
	defer f.Close()

	samples, _, err := csvfile.ReadWeather(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return store.InsertWeather(ctx, samples, batchSize)
}
