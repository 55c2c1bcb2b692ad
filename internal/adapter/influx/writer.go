// Package influx exports daily report summaries to InfluxDB as time series.
package influx

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/house-energy-service/internal/config"
	"github.com/couchcryptid/house-energy-service/internal/domain"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	measurementDaily  = "daily_energy"
	measurementBucket = "bucket_energy"
)

// pointWriter is satisfied by api.WriteAPIBlocking.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Writer writes one point per summarized day plus one per time bucket.
type Writer struct {
	client influxdb2.Client
	writer pointWriter
	logger *slog.Logger
}

// NewWriter connects to InfluxDB and verifies the server is healthy.
func NewWriter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Writer, error) {
	client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
	if _, err := client.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to influxdb: %w", err)
	}
	return &Writer{
		client: client,
		writer: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		logger: logger,
	}, nil
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "influxdb" }

// Publish writes the report's day and bucket points.
func (w *Writer) Publish(ctx context.Context, report domain.PublishedReport) error {
	points, err := reportPoints(report)
	if err != nil {
		return err
	}
	if err := w.writer.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("write points for report %s: %w", report.ID, err)
	}
	w.logger.Info("report published", "sink", w.Name(), "report_id", report.ID, "house_id", report.HouseID, "points", len(points))
	return nil
}

// Close releases the client.
func (w *Writer) Close() error {
	if w.client != nil {
		w.client.Close()
	}
	return nil
}

func reportPoints(report domain.PublishedReport) ([]*write.Point, error) {
	today, err := domain.ParseDate(report.ReportDate)
	if err != nil {
		return nil, fmt.Errorf("report date %q: %w", report.ReportDate, err)
	}
	days := []struct {
		summary domain.DaySummary
		offset  int
	}{
		{report.Context.Yesterday, -1},
		{report.Context.Today, 0},
	}

	var points []*write.Point
	for _, d := range days {
		ts := today.AddDate(0, 0, d.offset)
		tags := map[string]string{
			"house_id": strconv.Itoa(report.HouseID),
			"label":    d.summary.Label,
			"season":   string(d.summary.Season),
		}
		points = append(points, write.NewPoint(measurementDaily, tags, dayFields(d.summary), ts))

		for _, b := range d.summary.Buckets {
			fields := make(map[string]interface{}, len(b.Averages))
			for _, a := range b.Averages {
				if a.Mean != nil {
					fields[a.Column] = *a.Mean
				}
			}
			if len(fields) == 0 {
				continue
			}
			bucketTags := map[string]string{
				"house_id": tags["house_id"],
				"label":    tags["label"],
				"bucket":   b.Bucket,
			}
			points = append(points, write.NewPoint(measurementBucket, bucketTags, fields, ts))
		}
	}
	return points, nil
}

func dayFields(s domain.DaySummary) map[string]interface{} {
	fields := map[string]interface{}{
		"total_energy": s.TotalEnergy,
		"rooms":        s.Breakdown.Rooms,
		"appliances":   s.Breakdown.Appliances,
		"lighting":     s.Breakdown.Lighting,
		"weather_desc": s.Weather.Desc,
	}
	if len(s.PeakHours) > 0 {
		fields["peak_hour"] = s.PeakHours[0]
	}
	for name, v := range map[string]*float64{"temp_min": s.Weather.Min, "temp_mean": s.Weather.Mean, "temp_max": s.Weather.Max} {
		if v != nil {
			fields[name] = *v
		}
	}
	return fields
}
