// Package kafka publishes finished daily reports to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/house-energy-service/internal/config"
	"github.com/couchcryptid/house-energy-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces report messages to the configured topic.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the report topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaReportTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, topic: cfg.KafkaReportTopic, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (p *Publisher) Name() string { return "kafka" }

// Publish writes one report. Reports for the same house share a partition.
func (p *Publisher) Publish(ctx context.Context, report domain.PublishedReport) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish report %s: %w", report.ID, err)
	}
	p.logger.Info("report published", "sink", p.Name(), "topic", p.topic, "report_id", report.ID, "house_id", report.HouseID)
	return nil
}

// Close flushes pending messages and closes the producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a report into a Kafka message keyed by house.
func serializeToMessage(report domain.PublishedReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(report.HouseID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "report_id", Value: []byte(report.ID)},
			{Key: "report_date", Value: []byte(report.ReportDate)},
			{Key: "season", Value: []byte(report.Season)},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
