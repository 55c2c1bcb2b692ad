// Command genmock writes a deterministic synthetic meter export and matching
// weather export for demos and tests. The same seed always yields the same
// files.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -house 3538 -start 2015-04-20 -days 14
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/house-energy-service/internal/domain"
)

const (
	slotsPerDay = 96
	tsLayout    = "2006-01-02 15:04:05-07"
)

// meterZone matches the offset style of the real exports.
var meterZone = time.FixedZone("CDT", -5*3600)

// missing channels are written as not installed.
var missing = map[domain.Channel]bool{
	domain.Bedroom2:     true,
	domain.Garage1:      true,
	domain.Oven1:        true,
	domain.LightsPlugs3: true,
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock", "output directory")
	houseID := flag.Int("house", 3538, "house id written to the dataid column")
	startFlag := flag.String("start", "2015-04-20", "first day (YYYY-MM-DD)")
	days := flag.Int("days", 14, "number of days to generate")
	seed := flag.Uint64("seed", 42, "PRNG seed")
	flag.Parse()

	start, err := time.ParseInLocation(domain.DateLayout, *startFlag, meterZone)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	if *days < 1 {
		return fmt.Errorf("-days must be positive")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, uint64(*houseID)))

	readingsPath := filepath.Join(*out, fmt.Sprintf("house_%d.csv", *houseID))
	n, err := writeCSV(readingsPath, readingsHeader(), func(emit func([]string) error) error {
		return eachSlot(start, *days, func(ts time.Time) error {
			return emit(readingRow(rng, ts, *houseID))
		})
	})
	if err != nil {
		return fmt.Errorf("writing readings: %w", err)
	}
	log.Printf("wrote %d readings: %s", n, readingsPath)

	weatherPath := filepath.Join(*out, "weather_data.csv")
	n, err = writeCSV(weatherPath, weatherHeader(), func(emit func([]string) error) error {
		return eachSlot(start, *days, func(ts time.Time) error {
			return emit(weatherRow(rng, ts))
		})
	})
	if err != nil {
		return fmt.Errorf("writing weather: %w", err)
	}
	log.Printf("wrote %d weather rows: %s", n, weatherPath)
	return nil
}

func eachSlot(start time.Time, days int, fn func(time.Time) error) error {
	for i := 0; i < days*slotsPerDay; i++ {
		if err := fn(start.Add(time.Duration(i) * 15 * time.Minute)); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, header []string, rows func(emit func([]string) error) error) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return 0, err
	}
	n := 0
	err = rows(func(row []string) error {
		n++
		return w.Write(row)
	})
	if err != nil {
		return n, err
	}
	w.Flush()
	return n, w.Error()
}

func readingsHeader() []string {
	h := []string{"local_15min", "dataid"}
	for _, c := range domain.AllChannels() {
		h = append(h, c.String())
	}
	h = append(h, domain.ColTotalEnergy, "Weekday", "Month", "Hour", "Hour_sin", "Hour_cos", "DoW_sin", "DoW_cos")
	for _, c := range domain.AllChannels() {
		h = append(h, c.PresentColumn())
	}
	return h
}

// load is a diurnal usage multiplier peaking in the morning and evening.
func load(hour int) float64 {
	switch {
	case hour >= 6 && hour < 10:
		return 1.4
	case hour >= 17 && hour < 21:
		return 2.0
	case hour >= 21 || hour < 6:
		return 0.5
	default:
		return 0.9
	}
}

func readingRow(rng *rand.Rand, ts time.Time, houseID int) []string {
	hour := ts.Hour()
	dow := (int(ts.Weekday()) + 6) % 7

	row := []string{ts.Format(tsLayout), strconv.Itoa(houseID)}
	var total float64
	for _, c := range domain.AllChannels() {
		if missing[c] {
			row = append(row, "")
			continue
		}
		v := round4(0.02 * float64(1+int(c)%5) * load(hour) * (0.5 + rng.Float64()))
		total += v
		row = append(row, ftoa(v))
	}
	row = append(row,
		ftoa(round4(total)),
		strconv.Itoa(dow),
		strconv.Itoa(int(ts.Month())),
		strconv.Itoa(hour),
		ftoa(math.Sin(2*math.Pi*float64(hour)/24)),
		ftoa(math.Cos(2*math.Pi*float64(hour)/24)),
		ftoa(math.Sin(2*math.Pi*float64(dow)/7)),
		ftoa(math.Cos(2*math.Pi*float64(dow)/7)),
	)
	for _, c := range domain.AllChannels() {
		if missing[c] {
			row = append(row, "0")
		} else {
			row = append(row, "1")
		}
	}
	return row
}

func weatherHeader() []string {
	return append([]string{"local_15min"}, domain.WeatherColumns()...)
}

func weatherRow(rng *rand.Rand, ts time.Time) []string {
	hour := float64(ts.Hour()) + float64(ts.Minute())/60
	temp := 18 + 6*math.Sin(2*math.Pi*(hour-9)/24) + rng.NormFloat64()
	coco := 1 + rng.IntN(4)
	return []string{
		ts.Format(tsLayout),
		ftoa(round4(temp)),
		ftoa(round4(temp - 4 - 2*rng.Float64())),
		ftoa(float64(50 + rng.IntN(40))),
		"0",
		ftoa(float64(rng.IntN(360))),
		ftoa(round4(5 + 10*rng.Float64())),
		ftoa(round4(1010 + 10*rng.Float64())),
		strconv.Itoa(coco),
	}
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
