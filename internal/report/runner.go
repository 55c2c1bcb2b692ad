// Package report builds daily energy reports: it loads a house's dataset,
// summarizes the report date against the prior week, asks the narrator for
// prose, writes the artifacts, and publishes the result to the configured
// sinks.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/house-energy-service/internal/domain"
	"github.com/couchcryptid/house-energy-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 8 * time.Second
)

// ErrNoNarrator is returned when narration is requested from a runner built
// without a narrator.
var ErrNoNarrator = errors.New("no narrator configured")

// DatasetLoader reads a house's readings joined with weather.
type DatasetLoader interface {
	Load(ctx context.Context, houseID int) (domain.Frame, error)
}

// Publisher delivers a finished report to a downstream sink.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, report domain.PublishedReport) error
}

// Options tunes a Runner.
type Options struct {
	// Model names the narrator model recorded on published reports.
	Model string
	// NarrativeAttempts bounds narrator calls per report. Values below 1
	// mean a single attempt.
	NarrativeAttempts int
	// RetryBackoff is the first wait between narrator attempts. Zero uses
	// the default.
	RetryBackoff time.Duration
	Publishers   []Publisher
}

// Runner orchestrates the load-summarize-narrate-publish cycle.
type Runner struct {
	loader     DatasetLoader
	narrator   domain.Narrator
	publishers []Publisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	model      string
	attempts   int
	backoff    time.Duration
}

// NewRunner creates a Runner. narrator may be nil when reports are built
// without prose.
func NewRunner(loader DatasetLoader, narrator domain.Narrator, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Runner {
	attempts := opts.NarrativeAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = initialBackoff
	}
	return &Runner{
		loader:     loader,
		narrator:   narrator,
		publishers: opts.Publishers,
		logger:     logger,
		metrics:    metrics,
		model:      opts.Model,
		attempts:   attempts,
		backoff:    backoff,
	}
}

// BuildContext loads the house's dataset and summarizes date and the day
// before it.
func (r *Runner) BuildContext(ctx context.Context, houseID int, date time.Time) (domain.ReportContext, error) {
	frame, err := r.loader.Load(ctx, houseID)
	if err != nil {
		r.metrics.ReportsFailed.WithLabelValues("load").Inc()
		return domain.ReportContext{}, fmt.Errorf("load dataset for house %d: %w", houseID, err)
	}

	rc, err := domain.BuildReportContext(frame, houseID, date)
	if err != nil {
		if errors.Is(err, domain.ErrMissingData) {
			r.metrics.ReportsFailed.WithLabelValues("missing_data").Inc()
		}
		return domain.ReportContext{}, err
	}

	if rc.Baseline.Degraded {
		r.logger.Info("degraded baseline",
			"house_id", houseID,
			"report_date", rc.ReportDate,
			"days", rc.Baseline.Days,
			"from", rc.Baseline.From.Format(domain.DateLayout),
			"to", rc.Baseline.To.Format(domain.DateLayout),
		)
	}
	return rc, nil
}

// Narrate composes the prompt for rc and asks the narrator for the report
// text.
func (r *Runner) Narrate(ctx context.Context, rc domain.ReportContext) (string, error) {
	prompt, err := ComposePrompt(rc)
	if err != nil {
		return "", err
	}
	return r.narrate(ctx, prompt.Text, rc)
}

// narrate calls the narrator with exponential backoff between attempts.
func (r *Runner) narrate(ctx context.Context, prompt string, rc domain.ReportContext) (string, error) {
	if r.narrator == nil {
		return "", ErrNoNarrator
	}

	backoff := r.backoff
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		start := time.Now()
		text, err := r.narrator.Narrate(ctx, prompt)
		r.metrics.NarrativeDuration.Observe(time.Since(start).Seconds())
		if err == nil {
			r.metrics.NarrativeRequests.WithLabelValues("success").Inc()
			return text, nil
		}

		r.metrics.NarrativeRequests.WithLabelValues("error").Inc()
		lastErr = err
		r.logger.Warn("narrative attempt failed",
			"house_id", rc.HouseID,
			"report_date", rc.ReportDate,
			"attempt", attempt,
			"error", err,
		)
		if attempt == r.attempts || ctx.Err() != nil {
			break
		}
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	r.metrics.ReportsFailed.WithLabelValues("narrate").Inc()
	return "", fmt.Errorf("narrate report for house %d: %w", rc.HouseID, lastErr)
}

// RunOptions controls a single report run.
type RunOptions struct {
	// OutDir receives the report artifacts. Empty skips writing them.
	OutDir string
	// SkipNarrative builds and publishes the context without prose.
	SkipNarrative bool
}

// Result is the outcome of a report run.
type Result struct {
	Context   domain.ReportContext
	Prompt    Prompt
	Narrative string
	Report    domain.PublishedReport
	Artifacts []string
}

// Run produces the report for houseID on date. A publishing failure is
// returned alongside a complete Result.
func (r *Runner) Run(ctx context.Context, houseID int, date time.Time, opts RunOptions) (Result, error) {
	start := time.Now()

	rc, err := r.BuildContext(ctx, houseID, date)
	if err != nil {
		return Result{}, err
	}
	res := Result{Context: rc}

	if res.Prompt, err = ComposePrompt(rc); err != nil {
		return Result{}, err
	}

	artifacts := newArtifactWriter(opts.OutDir)
	if err := artifacts.writeJSON(ArtifactContext, rc); err != nil {
		r.metrics.ReportsFailed.WithLabelValues("write").Inc()
		return Result{}, err
	}
	if err := artifacts.writeText(ArtifactPrompt, res.Prompt.Preamble); err != nil {
		r.metrics.ReportsFailed.WithLabelValues("write").Inc()
		return Result{}, err
	}
	r.logger.Info("prompt composed", "house_id", houseID, "season", rc.Today.Season)

	model := ""
	if !opts.SkipNarrative {
		if res.Narrative, err = r.narrate(ctx, res.Prompt.Text, rc); err != nil {
			return Result{}, err
		}
		if err := artifacts.writeText(ArtifactNarrative, res.Narrative); err != nil {
			r.metrics.ReportsFailed.WithLabelValues("write").Inc()
			return Result{}, err
		}
		model = r.model
	}
	res.Artifacts = artifacts.written

	res.Report = domain.NewPublishedReport(rc, model, res.Narrative)
	r.metrics.ReportsGenerated.Inc()
	r.logger.Info("report generated",
		"house_id", houseID,
		"report_date", rc.ReportDate,
		"report_id", res.Report.ID,
		"narrated", res.Narrative != "",
	)

	err = r.publish(ctx, res.Report)
	r.metrics.ReportDuration.Observe(time.Since(start).Seconds())
	return res, err
}

// publish sends the report to every sink, continuing past failures.
func (r *Runner) publish(ctx context.Context, report domain.PublishedReport) error {
	var errs []error
	for _, p := range r.publishers {
		if err := p.Publish(ctx, report); err != nil {
			r.metrics.ReportsPublished.WithLabelValues(p.Name(), "error").Inc()
			r.logger.Error("publish failed", "sink", p.Name(), "report_id", report.ID, "error", err)
			errs = append(errs, fmt.Errorf("publish to %s: %w", p.Name(), err))
			continue
		}
		r.metrics.ReportsPublished.WithLabelValues(p.Name(), "success").Inc()
	}
	if len(errs) > 0 {
		r.metrics.ReportsFailed.WithLabelValues("publish").Inc()
	}
	return errors.Join(errs...)
}
