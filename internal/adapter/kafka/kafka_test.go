package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/house-energy-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func sampleReport() domain.PublishedReport {
	return domain.PublishedReport{
		ID:          "3f1c9c1e-0000-4000-8000-000000000001",
		HouseID:     3538,
		ReportDate:  "2025-06-01",
		Season:      domain.Spring,
		GeneratedAt: time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC),
		Narrative:   "1. Yesterday...",
		Context:     domain.ReportContext{HouseID: 3538, ReportDate: "2025-06-01"},
	}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(sampleReport())
	require.NoError(t, err)

	assert.Equal(t, []byte("3538"), msg.Key)
	assert.Contains(t, string(msg.Value), `"report_date":"2025-06-01"`)
	assert.Contains(t, string(msg.Value), `"season":"Spring"`)
	require.Len(t, msg.Headers, 4)
	assert.Equal(t, "report_id", msg.Headers[0].Key)
	assert.Equal(t, "season", msg.Headers[2].Key)
	assert.Equal(t, []byte("Spring"), msg.Headers[2].Value)
	assert.Equal(t, []byte("2025-06-01T13:00:00Z"), msg.Headers[3].Value)

	var back domain.PublishedReport
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	assert.Equal(t, "1. Yesterday...", back.Narrative)
}

func TestPublisher_Publish(t *testing.T) {
	fw := &fakeWriter{}
	p := &Publisher{writer: fw, topic: "daily-energy-reports", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, p.Publish(context.Background(), sampleReport()))
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, []byte("3538"), fw.msgs[0].Key)

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker unavailable")}
	p := &Publisher{writer: fw, topic: "t", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := p.Publish(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}
