package domain

import (
	"sort"
	"time"
)

// WeatherSample is one weather observation, joined onto readings by timestamp.
// Nil fields were blank in the source.
type WeatherSample struct {
	Timestamp time.Time `json:"timestamp"`
	Temp      *float64  `json:"temp"`
	Dwpt      *float64  `json:"dwpt"`
	Rhum      *float64  `json:"rhum"`
	Prcp      *float64  `json:"prcp"`
	Wdir      *float64  `json:"wdir"`
	Wspd      *float64  `json:"wspd"`
	Pres      *float64  `json:"pres"`
	Coco      *int      `json:"coco"`
}

// Reading is one 15-minute smart-meter row for a house.
type Reading struct {
	Timestamp time.Time
	HouseID   int

	// Usage holds per-channel energy, nil when the channel recorded nothing
	// or is flagged as not installed in this row.
	Usage   [ChannelCount]*float64
	Present [ChannelCount]bool

	TotalEnergy *float64

	Weekday int
	Month   int
	Hour    int
	HourSin float64
	HourCos float64
	DowSin  float64
	DowCos  float64

	Weather *WeatherSample
}

// Date returns the reading's calendar date at midnight UTC, taken from the
// wall clock of its timestamp.
func (r Reading) Date() time.Time {
	return DateOf(r.Timestamp)
}

// HourOfDay returns the hour of the reading's wall-clock timestamp.
func (r Reading) HourOfDay() int {
	return r.Timestamp.Hour()
}

// DateOf truncates a wall-clock time to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// columnAccessors resolves a column name to the matching field of a reading.
// Built once; the set of names is closed.
var columnAccessors = func() map[string]func(*Reading) (float64, bool) {
	m := make(map[string]func(*Reading) (float64, bool), int(ChannelCount)+1+len(weatherColumns))
	for _, c := range AllChannels() {
		m[c.String()] = func(r *Reading) (float64, bool) { return deref(r.Usage[c]) }
	}
	m[ColTotalEnergy] = func(r *Reading) (float64, bool) { return deref(r.TotalEnergy) }
	weather := func(f func(*WeatherSample) *float64) func(*Reading) (float64, bool) {
		return func(r *Reading) (float64, bool) {
			if r.Weather == nil {
				return 0, false
			}
			return deref(f(r.Weather))
		}
	}
	m[ColTemp] = weather(func(w *WeatherSample) *float64 { return w.Temp })
	m[ColDwpt] = weather(func(w *WeatherSample) *float64 { return w.Dwpt })
	m[ColRhum] = weather(func(w *WeatherSample) *float64 { return w.Rhum })
	m[ColPrcp] = weather(func(w *WeatherSample) *float64 { return w.Prcp })
	m[ColWdir] = weather(func(w *WeatherSample) *float64 { return w.Wdir })
	m[ColWspd] = weather(func(w *WeatherSample) *float64 { return w.Wspd })
	m[ColPres] = weather(func(w *WeatherSample) *float64 { return w.Pres })
	m[ColCoco] = func(r *Reading) (float64, bool) {
		if r.Weather == nil || r.Weather.Coco == nil {
			return 0, false
		}
		return float64(*r.Weather.Coco), true
	}
	return m
}()

// Value returns the numeric value of a named column for this reading. The
// second result is false when the column is unknown or holds no value.
func (r *Reading) Value(column string) (float64, bool) {
	get, ok := columnAccessors[column]
	if !ok {
		return 0, false
	}
	return get(r)
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Frame is an immutable, time-ordered set of readings together with the names
// of the columns its source actually carried.
type Frame struct {
	rows    []Reading
	columns map[string]struct{}
}

// NewFrame copies rows into a frame sorted by timestamp. Channel values whose
// present flag is false are cleared so no aggregation ever sees them.
func NewFrame(rows []Reading, columns []string) Frame {
	out := make([]Reading, len(rows))
	copy(out, rows)
	for i := range out {
		for c := range out[i].Usage {
			if !out[i].Present[c] {
				out[i].Usage[c] = nil
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })

	cols := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		cols[c] = struct{}{}
	}
	return Frame{rows: out, columns: cols}
}

// Len returns the number of rows.
func (f Frame) Len() int { return len(f.rows) }

// Rows returns the frame's rows in time order. Callers must not modify them.
func (f Frame) Rows() []Reading { return f.rows }

// HasColumn reports whether the frame's source carried the named column.
func (f Frame) HasColumn(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// Columns returns the frame's column names in sorted order.
func (f Frame) Columns() []string {
	out := make([]string, 0, len(f.columns))
	for c := range f.columns {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Dates returns the distinct calendar dates in the frame, ascending.
func (f Frame) Dates() []time.Time {
	var out []time.Time
	seen := make(map[time.Time]struct{})
	for i := range f.rows {
		d := f.rows[i].Date()
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// HasDate reports whether any row falls on the given calendar date.
func (f Frame) HasDate(date time.Time) bool {
	d := DateOf(date)
	for i := range f.rows {
		if f.rows[i].Date().Equal(d) {
			return true
		}
	}
	return false
}

// Day returns the rows on a single calendar date.
func (f Frame) Day(date time.Time) Frame {
	d := DateOf(date)
	return f.Between(d, d.AddDate(0, 0, 1))
}

// Between returns the rows whose calendar date lies in [from, to).
func (f Frame) Between(from, to time.Time) Frame {
	from, to = DateOf(from), DateOf(to)
	var rows []Reading
	for i := range f.rows {
		d := f.rows[i].Date()
		if !d.Before(from) && d.Before(to) {
			rows = append(rows, f.rows[i])
		}
	}
	return Frame{rows: rows, columns: f.columns}
}

// PresentAnywhere reports whether the frame carries the channel's present
// column and at least one row sets the flag.
func (f Frame) PresentAnywhere(c Channel) bool {
	if !f.HasColumn(c.PresentColumn()) {
		return false
	}
	for i := range f.rows {
		if f.rows[i].Present[c] {
			return true
		}
	}
	return false
}

// ReadingColumns returns every column a full meter export carries: the
// channels, their present flags and total energy.
func ReadingColumns() []string {
	out := make([]string, 0, 2*int(ChannelCount)+1)
	for _, c := range AllChannels() {
		out = append(out, c.String())
	}
	out = append(out, ColTotalEnergy)
	for _, c := range AllChannels() {
		out = append(out, c.PresentColumn())
	}
	return out
}
