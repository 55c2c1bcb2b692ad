package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeasonOf_Boundaries(t *testing.T) {
	tests := []struct {
		month time.Month
		day   int
		want  Season
	}{
		{time.March, 19, Winter},
		{time.March, 20, Spring},
		{time.June, 20, Spring},
		{time.June, 21, Summer},
		{time.September, 21, Summer},
		{time.September, 22, Autumn},
		{time.December, 20, Autumn},
		{time.December, 21, Winter},
		{time.January, 1, Winter},
		{time.February, 29, Winter},
	}
	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, SeasonOf(time.Date(2024, tt.month, tt.day, 0, 0, 0, 0, time.UTC)))
		})
	}
}

func TestSeasonOf_Total(t *testing.T) {
	valid := map[Season]bool{Winter: true, Spring: true, Summer: true, Autumn: true}
	counts := make(map[Season]int)
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for d.Year() == 2024 {
		s := SeasonOf(d)
		assert.True(t, valid[s], "%s -> %q", d.Format(DateLayout), s)
		counts[s]++
		d = d.AddDate(0, 0, 1)
	}
	assert.Len(t, counts, 4)
	assert.Equal(t, 366, counts[Winter]+counts[Spring]+counts[Summer]+counts[Autumn])
}
