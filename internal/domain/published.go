package domain

import (
	"time"

	"github.com/google/uuid"
)

// PublishedReport is a finished daily report as sent to downstream sinks.
type PublishedReport struct {
	ID          string        `json:"id"`
	HouseID     int           `json:"house_id"`
	ReportDate  string        `json:"report_date"`
	Season      Season        `json:"season"`
	GeneratedAt time.Time     `json:"generated_at"`
	Model       string        `json:"model,omitempty"`
	Narrative   string        `json:"narrative,omitempty"`
	Context     ReportContext `json:"context"`
}

// NewPublishedReport stamps a report context with a fresh ID and the package
// clock.
func NewPublishedReport(rc ReportContext, model, narrative string) PublishedReport {
	return PublishedReport{
		ID:          uuid.NewString(),
		HouseID:     rc.HouseID,
		ReportDate:  rc.ReportDate,
		Season:      rc.Today.Season,
		GeneratedAt: Now().UTC(),
		Model:       model,
		Narrative:   narrative,
		Context:     rc,
	}
}
