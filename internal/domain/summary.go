package domain

import "sort"

// Summary labels.
const (
	LabelYesterday = "yesterday"
	LabelToday     = "today"
)

// Breakdown is total energy per channel group.
type Breakdown struct {
	Rooms      float64 `json:"rooms"`
	Appliances float64 `json:"appliances"`
	Lighting   float64 `json:"lighting"`
}

// WeatherSummary describes a day's temperature range and prevailing condition.
// Temperatures are nil when the day has no temperature samples.
type WeatherSummary struct {
	Min  *float64 `json:"min"`
	Mean *float64 `json:"mean"`
	Max  *float64 `json:"max"`
	Desc string   `json:"desc"`
}

// DaySummary is the structured digest of one day handed to the narrator.
type DaySummary struct {
	Label       string         `json:"label"`
	TotalEnergy float64        `json:"total_energy"`
	PeakHours   []int          `json:"peak_hours"`
	Breakdown   Breakdown      `json:"breakdown"`
	Weather     WeatherSummary `json:"weather"`
	Season      Season         `json:"season"`
	Buckets     BucketTable    `json:"buckets"`
	SevenDayAvg Averages       `json:"7d_avg"`
}

// peakHourCount is how many peak hours a summary lists.
const peakHourCount = 3

// SummarizeDay digests a single-date frame. The frame must not be empty; the
// caller checks for missing days first.
func SummarizeDay(day Frame, label string, groups FeatureGroups, baseline HourlyBaseline) DaySummary {
	s := DaySummary{
		Label:       label,
		TotalEnergy: round(sumColumn(day, ColTotalEnergy), 3),
		PeakHours:   peakHours(day),
		Breakdown: Breakdown{
			Rooms:      round(sumChannels(day, groups.Rooms), 3),
			Appliances: round(sumChannels(day, groups.Appliances), 3),
			Lighting:   round(sumChannels(day, groups.Lighting), 3),
		},
		Weather: summarizeWeather(day),
		Buckets: BucketAverages(day, groups.BucketFeatures()),
	}
	if rows := day.Rows(); len(rows) > 0 {
		s.Season = SeasonOf(rows[0].Date())
	}

	s.SevenDayAvg = Averages{}
	for _, c := range baseline.Columns() {
		if !day.HasColumn(c) {
			continue
		}
		avg := Average{Column: c}
		if m, ok := baseline.ColumnMean(c); ok {
			avg.Mean = roundPtr(m, 3)
		}
		s.SevenDayAvg = append(s.SevenDayAvg, avg)
	}
	return s
}

func sumColumn(f Frame, column string) float64 {
	var sum float64
	rows := f.Rows()
	for i := range rows {
		if v, ok := rows[i].Value(column); ok {
			sum += v
		}
	}
	return sum
}

func sumChannels(f Frame, channels []Channel) float64 {
	var sum float64
	rows := f.Rows()
	for i := range rows {
		for _, c := range channels {
			if v := rows[i].Usage[c]; v != nil {
				sum += *v
			}
		}
	}
	return sum
}

// peakHours ranks the hours present in the frame by summed total energy.
// Equal sums keep ascending hour order.
func peakHours(f Frame) []int {
	var sums [24]float64
	var seen [24]bool
	rows := f.Rows()
	for i := range rows {
		h := rows[i].HourOfDay()
		seen[h] = true
		if v, ok := rows[i].Value(ColTotalEnergy); ok {
			sums[h] += v
		}
	}

	hours := make([]int, 0, 24)
	for h := range seen {
		if seen[h] {
			hours = append(hours, h)
		}
	}
	sort.SliceStable(hours, func(i, j int) bool { return sums[hours[i]] > sums[hours[j]] })
	if len(hours) > peakHourCount {
		hours = hours[:peakHourCount]
	}
	return hours
}

func summarizeWeather(f Frame) WeatherSummary {
	var (
		lo, hi, sum float64
		n           int
		codes       = make(map[int]int)
	)
	rows := f.Rows()
	for i := range rows {
		if t, ok := rows[i].Value(ColTemp); ok {
			if n == 0 || t < lo {
				lo = t
			}
			if n == 0 || t > hi {
				hi = t
			}
			sum += t
			n++
		}
		if w := rows[i].Weather; w != nil && w.Coco != nil {
			codes[*w.Coco]++
		}
	}

	ws := WeatherSummary{Desc: UnknownWeather}
	if n > 0 {
		ws.Min = roundPtr(lo, 2)
		ws.Mean = roundPtr(sum/float64(n), 2)
		ws.Max = roundPtr(hi, 2)
	}
	if code, ok := modeCode(codes); ok {
		ws.Desc = WeatherDescription(code)
	}
	return ws
}

// modeCode returns the most frequent code, preferring the smallest on ties.
func modeCode(counts map[int]int) (int, bool) {
	best, bestCount := 0, 0
	for code, c := range counts {
		if c > bestCount || (c == bestCount && code < best) {
			best, bestCount = code, c
		}
	}
	return best, bestCount > 0
}
