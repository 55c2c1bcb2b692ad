// Command report builds the daily energy report for one house and date,
// writes the context, prompt and narrative files, and publishes the result
// to the configured sinks.
//
// Usage:
//
//	go run ./cmd/report -house 3538 -date 2015-05-02 -source csv -out out/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/house-energy-service/internal/adapter/csvfile"
	"github.com/couchcryptid/house-energy-service/internal/adapter/influx"
	kafkaadapter "github.com/couchcryptid/house-energy-service/internal/adapter/kafka"
	"github.com/couchcryptid/house-energy-service/internal/adapter/mysql"
	"github.com/couchcryptid/house-energy-service/internal/adapter/ollama"
	"github.com/couchcryptid/house-energy-service/internal/config"
	"github.com/couchcryptid/house-energy-service/internal/domain"
	"github.com/couchcryptid/house-energy-service/internal/observability"
	"github.com/couchcryptid/house-energy-service/internal/report"
)

const previewChars = 2000

func main() {
	if err := run(); err != nil {
		slog.Error("report failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	houseID := flag.Int("house", 3538, "house id")
	dateFlag := flag.String("date", "", "report date (YYYY-MM-DD)")
	source := flag.String("source", cfg.ReportSource, "dataset source: csv or mysql")
	outDir := flag.String("out", cfg.ReportOutDir, "directory for report artifacts")
	skipLLM := flag.Bool("skip-llm", false, "build the context and prompt without calling the model")
	flag.Parse()

	if *dateFlag == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -date")
	}
	date, err := domain.ParseDate(*dateFlag)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var loader report.DatasetLoader
	switch *source {
	case config.SourceCSV:
		loader = csvfile.NewLoader(cfg.ReadingsCSV, cfg.WeatherCSV, logger)
	case config.SourceMySQL:
		db, err := mysql.Open(ctx, cfg.DB, logger, mysql.OpenOptions{})
		if err != nil {
			return err
		}
		defer func() {
			if err := mysql.Close(db); err != nil {
				logger.Error("database close error", "error", err)
			}
		}()
		loader = mysql.NewStore(db, logger)
	default:
		return fmt.Errorf("invalid -source %q: must be %q or %q", *source, config.SourceCSV, config.SourceMySQL)
	}

	var publishers []report.Publisher
	if cfg.KafkaEnabled() {
		p := kafkaadapter.NewPublisher(cfg, logger)
		defer closeSink(logger, p.Name(), p.Close)
		publishers = append(publishers, p)
	}
	if cfg.InfluxEnabled() {
		w, err := influx.NewWriter(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeSink(logger, w.Name(), w.Close)
		publishers = append(publishers, w)
	}

	var narrator domain.Narrator
	if !*skipLLM {
		narrator = ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaTimeout, logger)
	}

	runner := report.NewRunner(loader, narrator, logger, metrics, report.Options{
		Model:             cfg.OllamaModel,
		NarrativeAttempts: cfg.NarrativeAttempts,
		Publishers:        publishers,
	})

	logger.Info("generating report", "house_id", *houseID, "report_date", *dateFlag, "source", *source)
	res, err := runner.Run(ctx, *houseID, date, report.RunOptions{OutDir: *outDir, SkipNarrative: *skipLLM})
	if res.Report.ID == "" {
		return err
	}

	printPreview(res)
	return err
}

func printPreview(res report.Result) {
	if res.Narrative == "" {
		fmt.Printf("Context and %s prompt written; narrative skipped.\n", res.Context.Today.Season)
		return
	}
	fmt.Println("Daily energy report:")
	text := []rune(res.Narrative)
	if len(text) > previewChars {
		fmt.Println(string(text[:previewChars]))
		fmt.Printf("Full report saved to %s\n", report.ArtifactNarrative)
		return
	}
	fmt.Println(string(text))
}

func closeSink(logger *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error("sink close error", "sink", name, "error", err)
	}
}
