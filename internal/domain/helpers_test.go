package domain

import "time"

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

var testLoc = time.FixedZone("CDT", -5*3600)

// reading builds a row at the given wall-clock time with all channels present
// and total energy set.
func reading(ts time.Time, total float64) Reading {
	r := Reading{Timestamp: ts, HouseID: 3538, TotalEnergy: f64(total), Hour: ts.Hour()}
	for c := range r.Present {
		r.Present[c] = true
	}
	return r
}

func withUsage(r Reading, c Channel, v float64) Reading {
	r.Usage[c] = f64(v)
	return r
}

func withWeather(r Reading, temp float64, coco int) Reading {
	r.Weather = &WeatherSample{Timestamp: r.Timestamp, Temp: f64(temp), Coco: intp(coco)}
	return r
}

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, testLoc)
}

func allColumns() []string {
	return append(ReadingColumns(), WeatherColumns()...)
}

// dayOfReadings builds one reading per hour for a date, total energy equal to
// base + hour, kitchen1 fixed at 0.5 and a temperature of 20 + hour/10.
func dayOfReadings(y int, m time.Month, d int, base float64) []Reading {
	out := make([]Reading, 0, 24)
	for h := 0; h < 24; h++ {
		r := reading(at(y, m, d, h, 0), base+float64(h))
		r = withUsage(r, Kitchen1, 0.5)
		r = withWeather(r, 20+float64(h)/10, 2)
		out = append(out, r)
	}
	return out
}
