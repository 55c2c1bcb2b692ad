package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeDay_SingleRow(t *testing.T) {
	r := reading(at(2025, 6, 1, 14, 15), 2.5)
	r = withUsage(r, Kitchen1, 0.75)
	r = withUsage(r, Bedroom1, 0.25)
	r = withUsage(r, Oven1, 1.125)
	r = withUsage(r, LightsPlugs1, 0.1)
	r = withWeather(r, 21.456, 3)
	day := NewFrame([]Reading{r}, allColumns())
	groups := ResolveFeatures(day)

	s := SummarizeDay(day, LabelToday, groups, HourlyBaseline{})

	assert.Equal(t, LabelToday, s.Label)
	assert.Equal(t, 2.5, s.TotalEnergy)
	assert.Equal(t, []int{14}, s.PeakHours)
	assert.Equal(t, 1.0, s.Breakdown.Rooms)
	assert.Equal(t, 1.125, s.Breakdown.Appliances)
	assert.Equal(t, 0.1, s.Breakdown.Lighting)
	require.NotNil(t, s.Weather.Min)
	assert.Equal(t, 21.46, *s.Weather.Min)
	assert.Equal(t, 21.46, *s.Weather.Max)
	assert.Equal(t, "Cloudy", s.Weather.Desc)
	assert.Equal(t, Spring, s.Season)
	assert.Empty(t, s.SevenDayAvg)
}

func TestSummarizeDay_PeakHours(t *testing.T) {
	rows := []Reading{
		reading(at(2025, 6, 1, 3, 0), 1),
		reading(at(2025, 6, 1, 5, 0), 4),
		reading(at(2025, 6, 1, 7, 0), 2),
		reading(at(2025, 6, 1, 7, 15), 2),
		reading(at(2025, 6, 1, 9, 0), 4),
		reading(at(2025, 6, 1, 12, 0), 3),
	}
	day := NewFrame(rows, allColumns())

	s := SummarizeDay(day, LabelToday, ResolveFeatures(day), HourlyBaseline{})

	// Hours 5, 7 and 9 all sum to 4; ties keep ascending hour order.
	assert.Equal(t, []int{5, 7, 9}, s.PeakHours)
}

func TestSummarizeDay_FewerThanThreeHours(t *testing.T) {
	rows := []Reading{
		reading(at(2025, 6, 1, 3, 0), 1),
		reading(at(2025, 6, 1, 4, 0), 2),
	}
	day := NewFrame(rows, allColumns())
	s := SummarizeDay(day, LabelToday, ResolveFeatures(day), HourlyBaseline{})
	assert.Equal(t, []int{4, 3}, s.PeakHours)
}

func TestSummarizeDay_EmptyGroupsAndNoWeather(t *testing.T) {
	r := reading(at(2025, 12, 25, 10, 0), 1.23456)
	for c := range r.Present {
		r.Present[c] = false
	}
	day := NewFrame([]Reading{r}, allColumns())

	s := SummarizeDay(day, LabelYesterday, ResolveFeatures(day), HourlyBaseline{})

	assert.Equal(t, 1.235, s.TotalEnergy)
	assert.Equal(t, Breakdown{}, s.Breakdown)
	assert.Nil(t, s.Weather.Min)
	assert.Nil(t, s.Weather.Mean)
	assert.Nil(t, s.Weather.Max)
	assert.Equal(t, UnknownWeather, s.Weather.Desc)
	assert.Equal(t, Winter, s.Season)
}

func TestSummarizeDay_WeatherMode(t *testing.T) {
	rows := []Reading{
		withWeather(reading(at(2025, 6, 1, 1, 0), 1), 10, 8),
		withWeather(reading(at(2025, 6, 1, 2, 0), 1), 12, 8),
		withWeather(reading(at(2025, 6, 1, 3, 0), 1), 14, 3),
		withWeather(reading(at(2025, 6, 1, 4, 0), 1), 15, 3),
		withWeather(reading(at(2025, 6, 1, 5, 0), 1), 16, 99),
	}
	day := NewFrame(rows, allColumns())

	s := SummarizeDay(day, LabelToday, ResolveFeatures(day), HourlyBaseline{})

	// 3 and 8 both appear twice; the smaller code wins.
	assert.Equal(t, "Cloudy", s.Weather.Desc)
	assert.Equal(t, 10.0, *s.Weather.Min)
	assert.Equal(t, 13.4, *s.Weather.Mean)
	assert.Equal(t, 16.0, *s.Weather.Max)
}

func TestSummarizeDay_SevenDayAverage(t *testing.T) {
	var history []Reading
	history = append(history, dayOfReadings(2025, 5, 29, 1)...)
	history = append(history, dayOfReadings(2025, 5, 30, 3)...)
	window := NewFrame(history, allColumns())
	groups := ResolveFeatures(window)
	baseline := BuildHourlyBaseline(window, groups.BaselineColumns())

	dayCols := []string{ColTotalEnergy, Kitchen1.String(), ColTemp}
	day := NewFrame(dayOfReadings(2025, 6, 1, 0), dayCols)

	s := SummarizeDay(day, LabelToday, groups, baseline)

	require.Len(t, s.SevenDayAvg, 3)
	assert.Equal(t, ColTotalEnergy, s.SevenDayAvg[0].Column)
	// Slot means: base + hour for base 1 and 3 -> overall mean 2 + 11.5.
	assert.Equal(t, 13.5, *s.SevenDayAvg[0].Mean)
	kitchen, _ := s.SevenDayAvg.Get("kitchen1")
	assert.Equal(t, 0.5, *kitchen)
	temp, _ := s.SevenDayAvg.Get(ColTemp)
	assert.Equal(t, 21.15, *temp)
	_, ok := s.SevenDayAvg.Get(ColCoco)
	assert.False(t, ok, "columns missing from the day frame are skipped")
}

func TestSummarizeDay_SeasonFromFirstRow(t *testing.T) {
	day := NewFrame([]Reading{reading(time.Date(2025, 6, 21, 23, 0, 0, 0, testLoc), 1)}, allColumns())
	s := SummarizeDay(day, LabelToday, ResolveFeatures(day), HourlyBaseline{})
	assert.Equal(t, Summer, s.Season)
}
