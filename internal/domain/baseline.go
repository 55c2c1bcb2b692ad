package domain

import (
	"sort"
	"time"
)

// BaselineDays is the length of the rolling window before "yesterday".
const BaselineDays = 7

// HourlyBaseline is a history window resampled to hourly means. Each slot is
// one clock hour (timestamp truncated to the hour) holding a running sum and
// count per column. Slots are keyed by absolute instant, so the repeated
// 01:00 of a DST fall-back day yields two slots; means are unaffected.
type HourlyBaseline struct {
	columns []string
	index   map[string]int
	slots   []baselineSlot
	days    int
}

type baselineSlot struct {
	start  time.Time
	sums   []float64
	counts []int
}

// BuildHourlyBaseline groups the window's rows by hour and accumulates the
// given columns. Null values are skipped. A window shorter than BaselineDays
// yields a baseline over the days it has; see Degraded.
func BuildHourlyBaseline(window Frame, columns []string) HourlyBaseline {
	b := HourlyBaseline{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		days:    len(window.Dates()),
	}
	for i, c := range b.columns {
		b.index[c] = i
	}

	bySlot := make(map[time.Time]*baselineSlot)
	rows := window.Rows()
	for i := range rows {
		key := rows[i].Timestamp.Truncate(time.Hour)
		slot, ok := bySlot[key]
		if !ok {
			slot = &baselineSlot{
				start:  key,
				sums:   make([]float64, len(b.columns)),
				counts: make([]int, len(b.columns)),
			}
			bySlot[key] = slot
		}
		for j, c := range b.columns {
			if v, ok := rows[i].Value(c); ok {
				slot.sums[j] += v
				slot.counts[j]++
			}
		}
	}

	b.slots = make([]baselineSlot, 0, len(bySlot))
	for _, s := range bySlot {
		b.slots = append(b.slots, *s)
	}
	sort.Slice(b.slots, func(i, j int) bool { return b.slots[i].start.Before(b.slots[j].start) })
	return b
}

// Columns returns the averaged columns in order.
func (b HourlyBaseline) Columns() []string { return append([]string(nil), b.columns...) }

// Slots returns the number of hourly slots that held at least one row.
func (b HourlyBaseline) Slots() int { return len(b.slots) }

// Days returns the number of distinct calendar days in the window.
func (b HourlyBaseline) Days() int { return b.days }

// Degraded reports whether the window covered fewer than BaselineDays days.
func (b HourlyBaseline) Degraded() bool { return b.days < BaselineDays }

// SlotMean returns the mean of a column within the i-th hourly slot.
func (b HourlyBaseline) SlotMean(i int, column string) (float64, bool) {
	j, ok := b.index[column]
	if !ok || i < 0 || i >= len(b.slots) || b.slots[i].counts[j] == 0 {
		return 0, false
	}
	return b.slots[i].sums[j] / float64(b.slots[i].counts[j]), true
}

// SlotStart returns the start of the i-th hourly slot.
func (b HourlyBaseline) SlotStart(i int) time.Time { return b.slots[i].start }

// ColumnMean averages a column's hourly means over the slots that have a
// value for it.
func (b HourlyBaseline) ColumnMean(column string) (float64, bool) {
	var sum float64
	var n int
	for i := range b.slots {
		if v, ok := b.SlotMean(i, column); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
