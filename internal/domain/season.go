package domain

import "time"

// Season is a Northern-Hemisphere astronomical season.
type Season string

const (
	Winter Season = "Winter"
	Spring Season = "Spring"
	Summer Season = "Summer"
	Autumn Season = "Autumn"
)

// SeasonOf classifies a date using fixed solstice and equinox boundaries:
// Mar 20, Jun 21, Sep 22 and Dec 21 each start a new season.
func SeasonOf(date time.Time) Season {
	m, d := date.Month(), date.Day()
	switch {
	case m == time.December && d >= 21, m == time.January, m == time.February, m == time.March && d < 20:
		return Winter
	case m == time.March, m == time.April, m == time.May, m == time.June && d < 21:
		return Spring
	case m == time.June, m == time.July, m == time.August, m == time.September && d < 22:
		return Summer
	default:
		return Autumn
	}
}
