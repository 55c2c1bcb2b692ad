package report_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/house-energy-service/internal/domain"
	"github.com/couchcryptid/house-energy-service/internal/observability"
	"github.com/couchcryptid/house-energy-service/internal/report"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeLoader struct {
	frame domain.Frame
	err   error
}

func (f *fakeLoader) Load(context.Context, int) (domain.Frame, error) {
	return f.frame, f.err
}

type fakeNarrator struct {
	failures int
	calls    atomic.Int64
	prompts  []string
}

func (f *fakeNarrator) Narrate(_ context.Context, prompt string) (string, error) {
	n := int(f.calls.Add(1))
	f.prompts = append(f.prompts, prompt)
	if n <= f.failures {
		return "", errors.New("model busy")
	}
	return "1) Analysis -> [...]", nil
}

type fakePublisher struct {
	name      string
	err       error
	published []domain.PublishedReport
}

func (f *fakePublisher) Name() string { return f.name }

func (f *fakePublisher) Publish(_ context.Context, r domain.PublishedReport) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, r)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f64(v float64) *float64 { return &v }

// summerFrame holds hourly readings for 2025-07-10 and 2025-07-11.
func summerFrame() domain.Frame {
	var rows []domain.Reading
	for _, day := range []int{10, 11} {
		for h := 0; h < 24; h++ {
			ts := time.Date(2025, time.July, day, h, 0, 0, 0, time.UTC)
			r := domain.Reading{Timestamp: ts, HouseID: 3538, TotalEnergy: f64(1 + float64(h)/10), Hour: h}
			for c := range r.Present {
				r.Present[c] = true
			}
			r.Usage[domain.Kitchen1] = f64(0.25)
			coco := 1
			r.Weather = &domain.WeatherSample{Timestamp: ts, Temp: f64(25), Coco: &coco}
			rows = append(rows, r)
		}
	}
	return domain.NewFrame(rows, append(domain.ReadingColumns(), domain.WeatherColumns()...))
}

var reportDate = time.Date(2025, time.July, 11, 0, 0, 0, 0, time.UTC)

func newRunner(loader report.DatasetLoader, narrator domain.Narrator, m *observability.Metrics, pubs ...report.Publisher) *report.Runner {
	return report.NewRunner(loader, narrator, discardLogger(), m, report.Options{
		Model:             "energy_reporter2",
		NarrativeAttempts: 3,
		RetryBackoff:      time.Millisecond,
		Publishers:        pubs,
	})
}

// --- prompt ---

func TestPreamble_SeasonExamples(t *testing.T) {
	for _, s := range []domain.Season{domain.Winter, domain.Spring, domain.Summer, domain.Autumn} {
		t.Run(string(s), func(t *testing.T) {
			p, err := report.Preamble(s)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(p, "You are a residential energy assistant."))
			assert.Contains(t, p, "Example output ("+string(s)+"):")
			assert.Contains(t, p, "4) Tips -> [")
		})
	}
}

func TestPreamble_UnknownSeason(t *testing.T) {
	p, err := report.Preamble("Monsoon")
	require.NoError(t, err)
	assert.NotContains(t, p, "Example output")
	assert.True(t, strings.HasSuffix(p, "5 bullet points per section."))
}

func TestComposePrompt(t *testing.T) {
	rc, err := domain.BuildReportContext(summerFrame(), 3538, reportDate)
	require.NoError(t, err)

	p, err := report.ComposePrompt(rc)
	require.NoError(t, err)

	preamble, err := report.Preamble(domain.Summer)
	require.NoError(t, err)
	if diff := cmp.Diff(preamble, p.Preamble); diff != "" {
		t.Errorf("preamble mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, strings.HasPrefix(p.Text, p.Preamble+"\n\n---\n\nContext:\n{\n  \"house_id\": 3538,"))
	assert.True(t, strings.HasSuffix(p.Text, "}\n\nNow generate the 4-part energy report:"))
	assert.Contains(t, p.Text, `"report_date": "2025-07-11"`)
}

// --- runner ---

func TestRunner_Run_HappyPath(t *testing.T) {
	dir := t.TempDir()
	narrator := &fakeNarrator{}
	kafka := &fakePublisher{name: "kafka"}
	influx := &fakePublisher{name: "influxdb"}
	m := observability.NewMetricsForTesting()

	r := newRunner(&fakeLoader{frame: summerFrame()}, narrator, m, kafka, influx)
	res, err := r.Run(context.Background(), 3538, reportDate, report.RunOptions{OutDir: dir})
	require.NoError(t, err)

	assert.Equal(t, "2025-07-11", res.Context.ReportDate)
	assert.Equal(t, "1) Analysis -> [...]", res.Narrative)
	assert.Equal(t, "energy_reporter2", res.Report.Model)
	assert.NotEmpty(t, res.Report.ID)
	require.Len(t, narrator.prompts, 1)
	assert.Equal(t, res.Prompt.Text, narrator.prompts[0])

	require.Len(t, kafka.published, 1)
	require.Len(t, influx.published, 1)
	assert.Equal(t, res.Report.ID, kafka.published[0].ID)

	assert.Len(t, res.Artifacts, 3)
	for _, name := range []string{report.ArtifactContext, report.ArtifactPrompt, report.ArtifactNarrative} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	prompt, err := os.ReadFile(filepath.Join(dir, report.ArtifactPrompt))
	require.NoError(t, err)
	assert.Equal(t, res.Prompt.Preamble, string(prompt))

	assert.InDelta(t, 1, testutil.ToFloat64(m.ReportsGenerated), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.NarrativeRequests.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ReportsPublished.WithLabelValues("kafka", "success")), 0)
}

func TestRunner_Run_SkipNarrative(t *testing.T) {
	dir := t.TempDir()
	narrator := &fakeNarrator{}
	r := newRunner(&fakeLoader{frame: summerFrame()}, narrator, observability.NewMetricsForTesting())

	res, err := r.Run(context.Background(), 3538, reportDate, report.RunOptions{OutDir: dir, SkipNarrative: true})
	require.NoError(t, err)

	assert.Empty(t, res.Narrative)
	assert.Empty(t, res.Report.Model)
	assert.Zero(t, narrator.calls.Load())
	assert.NoFileExists(t, filepath.Join(dir, report.ArtifactNarrative))
	assert.FileExists(t, filepath.Join(dir, report.ArtifactContext))
}

func TestRunner_Run_MissingData(t *testing.T) {
	m := observability.NewMetricsForTesting()
	r := newRunner(&fakeLoader{frame: summerFrame()}, &fakeNarrator{}, m)

	_, err := r.Run(context.Background(), 3538, reportDate.AddDate(0, 0, 1), report.RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingData)

	var missing *domain.MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, domain.LabelToday, missing.Label)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ReportsFailed.WithLabelValues("missing_data")), 0)
}

func TestRunner_Run_LoadError(t *testing.T) {
	m := observability.NewMetricsForTesting()
	r := newRunner(&fakeLoader{err: errors.New("connection refused")}, nil, m)

	_, err := r.Run(context.Background(), 3538, reportDate, report.RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.InDelta(t, 1, testutil.ToFloat64(m.ReportsFailed.WithLabelValues("load")), 0)
}

func TestRunner_Narrate_RetriesThenSucceeds(t *testing.T) {
	narrator := &fakeNarrator{failures: 2}
	m := observability.NewMetricsForTesting()
	r := newRunner(&fakeLoader{frame: summerFrame()}, narrator, m)

	rc, err := r.BuildContext(context.Background(), 3538, reportDate)
	require.NoError(t, err)

	text, err := r.Narrate(context.Background(), rc)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.EqualValues(t, 3, narrator.calls.Load())
	assert.InDelta(t, 2, testutil.ToFloat64(m.NarrativeRequests.WithLabelValues("error")), 0)
}

func TestRunner_Narrate_GivesUp(t *testing.T) {
	narrator := &fakeNarrator{failures: 10}
	m := observability.NewMetricsForTesting()
	r := newRunner(&fakeLoader{frame: summerFrame()}, narrator, m)

	_, err := r.Run(context.Background(), 3538, reportDate, report.RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model busy")
	assert.EqualValues(t, 3, narrator.calls.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(m.ReportsFailed.WithLabelValues("narrate")), 0)
	assert.Zero(t, testutil.ToFloat64(m.ReportsGenerated))
}

func TestRunner_Narrate_ContextCancelled(t *testing.T) {
	narrator := &fakeNarrator{failures: 10}
	r := report.NewRunner(&fakeLoader{frame: summerFrame()}, narrator, discardLogger(), observability.NewMetricsForTesting(), report.Options{
		NarrativeAttempts: 5,
		RetryBackoff:      time.Hour,
	})
	rc, err := r.BuildContext(context.Background(), 3538, reportDate)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = r.Narrate(ctx, rc)
	require.Error(t, err)
	assert.EqualValues(t, 1, narrator.calls.Load())
}

func TestRunner_Narrate_NoNarrator(t *testing.T) {
	r := newRunner(&fakeLoader{frame: summerFrame()}, nil, observability.NewMetricsForTesting())
	rc, err := r.BuildContext(context.Background(), 3538, reportDate)
	require.NoError(t, err)

	_, err = r.Narrate(context.Background(), rc)
	assert.ErrorIs(t, err, report.ErrNoNarrator)
}

func TestRunner_Run_PublishFailureContinues(t *testing.T) {
	broken := &fakePublisher{name: "kafka", err: errors.New("broker down")}
	ok := &fakePublisher{name: "influxdb"}
	m := observability.NewMetricsForTesting()
	r := newRunner(&fakeLoader{frame: summerFrame()}, &fakeNarrator{}, m, broken, ok)

	res, err := r.Run(context.Background(), 3538, reportDate, report.RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish to kafka")
	assert.NotEmpty(t, res.Report.ID, "result is returned with the error")
	assert.Len(t, ok.published, 1)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ReportsPublished.WithLabelValues("kafka", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ReportsFailed.WithLabelValues("publish")), 0)
}

func TestRunner_BuildContext_DegradedBaseline(t *testing.T) {
	r := newRunner(&fakeLoader{frame: summerFrame()}, nil, observability.NewMetricsForTesting())
	rc, err := r.BuildContext(context.Background(), 3538, reportDate)
	require.NoError(t, err)
	assert.True(t, rc.Baseline.Degraded)
	assert.Equal(t, domain.Summer, rc.Today.Season)
}
