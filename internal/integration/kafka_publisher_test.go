//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/house-energy-service/internal/adapter/kafka"
	"github.com/couchcryptid/house-energy-service/internal/config"
	"github.com/couchcryptid/house-energy-service/internal/domain"
	"github.com/couchcryptid/house-energy-service/internal/observability"
	"github.com/couchcryptid/house-energy-service/internal/report"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testReportTopic = "test-daily-reports"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("house-energy-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	}))
}

func f64(v float64) *float64 { return &v }

// twoDayFrame holds hourly readings for 2025-01-14 and 2025-01-15.
func twoDayFrame() domain.Frame {
	var rows []domain.Reading
	for _, day := range []int{14, 15} {
		for h := 0; h < 24; h++ {
			ts := time.Date(2025, time.January, day, h, 0, 0, 0, time.UTC)
			r := domain.Reading{Timestamp: ts, HouseID: 3538, TotalEnergy: f64(0.5 + float64(h%6)/10), Hour: h}
			for c := range r.Present {
				r.Present[c] = true
			}
			r.Usage[domain.Bedroom1] = f64(0.1)
			rows = append(rows, r)
		}
	}
	return domain.NewFrame(rows, domain.ReadingColumns())
}

type frameLoader struct{ frame domain.Frame }

func (l frameLoader) Load(context.Context, int) (domain.Frame, error) { return l.frame, nil }

// TestReportPublishedToKafka runs a report through the runner and reads the
// published message back from the topic.
func TestReportPublishedToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testReportTopic)

	generatedAt := time.Date(2025, time.January, 16, 6, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(generatedAt))
	t.Cleanup(func() { domain.SetClock(nil) })

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaReportTopic: testReportTopic}
	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	runner := report.NewRunner(frameLoader{twoDayFrame()}, nil, discardLogger(), observability.NewMetricsForTesting(), report.Options{
		Publishers: []report.Publisher{publisher},
	})
	res, err := runner.Run(ctx, 3538, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), report.RunOptions{SkipNarrative: true})
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testReportTopic,
		GroupID:     "house-energy-it-" + strconv.FormatInt(time.Now().UnixNano(), 10),
		StartOffset: kafkago.FirstOffset,
		MaxWait:     time.Second,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from report topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "3538", string(msg.Key))
	assert.Equal(t, res.Report.ID, headers["report_id"])
	assert.Equal(t, "2025-01-15", headers["report_date"])
	assert.Equal(t, "Winter", headers["season"])
	assert.Equal(t, generatedAt.Format(time.RFC3339), headers["generated_at"])

	var got domain.PublishedReport
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, res.Report.ID, got.ID)
	assert.Equal(t, 3538, got.Context.HouseID)
	assert.Equal(t, "today", got.Context.Today.Label)
	assert.Empty(t, got.Narrative)
}
