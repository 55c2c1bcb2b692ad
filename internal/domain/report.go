package domain

import "time"

// DateLayout is the calendar date format used in report contexts and API paths.
const DateLayout = "2006-01-02"

// ReportContext is the structured input handed to the narrator.
type ReportContext struct {
	HouseID    int        `json:"house_id"`
	ReportDate string     `json:"report_date"`
	Yesterday  DaySummary `json:"yesterday"`
	Today      DaySummary `json:"today"`

	// Baseline describes the history window behind the 7d_avg figures.
	Baseline BaselineInfo `json:"-"`
}

// BaselineInfo describes the rolling window a report was compared against.
type BaselineInfo struct {
	From     time.Time
	To       time.Time
	Days     int
	Slots    int
	Degraded bool
}

// BuildReportContext summarizes the report date and the day before it against
// the 7 days preceding "yesterday". It fails with a *MissingDataError when
// either day has no rows.
func BuildReportContext(frame Frame, houseID int, reportDate time.Time) (ReportContext, error) {
	today := DateOf(reportDate)
	yesterday := today.AddDate(0, 0, -1)

	if !frame.HasDate(yesterday) {
		return ReportContext{}, &MissingDataError{HouseID: houseID, Date: yesterday, Label: LabelYesterday}
	}
	if !frame.HasDate(today) {
		return ReportContext{}, &MissingDataError{HouseID: houseID, Date: today, Label: LabelToday}
	}

	groups := ResolveFeatures(frame)

	yDay := frame.Day(yesterday)
	tDay := frame.Day(today)
	from := yesterday.AddDate(0, 0, -BaselineDays)
	window := frame.Between(from, yesterday)

	baseline := BuildHourlyBaseline(window, groups.BaselineColumns())

	return ReportContext{
		HouseID:    houseID,
		ReportDate: today.Format(DateLayout),
		Yesterday:  SummarizeDay(yDay, LabelYesterday, groups, baseline),
		Today:      SummarizeDay(tDay, LabelToday, groups, baseline),
		Baseline: BaselineInfo{
			From:     from,
			To:       yesterday,
			Days:     baseline.Days(),
			Slots:    baseline.Slots(),
			Degraded: baseline.Degraded(),
		},
	}, nil
}
