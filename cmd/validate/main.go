// Command validate checks a meter export and its weather export before they
// are seeded or reported on: per-day row coverage, channel presence flags,
// the weather join, and whether the latest date can be reported.
//
// Usage:
//
//	go run ./cmd/validate -readings ../data/house_3538.csv -weather ../data/weather_data.csv
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/couchcryptid/house-energy-service/internal/adapter/csvfile"
	"github.com/couchcryptid/house-energy-service/internal/domain"
)

const slotsPerDay = 96

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	notes  []string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	readingsPath := flag.String("readings", "", "meter export CSV")
	weatherPath := flag.String("weather", "", "weather export CSV")
	houseID := flag.Int("house", 3538, "house id used when the export has no dataid column")
	flag.Parse()

	if *readingsPath == "" || *weatherPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*readingsPath, *weatherPath, *houseID))
}

func run(readingsPath, weatherPath string, houseID int) int {
	fmt.Println("=== Meter Data Validation ===")
	fmt.Println()

	readings, cols, err := readReadings(readingsPath, houseID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load readings: %v\n", err)
		return 1
	}
	weather, wcols, err := readWeather(weatherPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load weather: %v\n", err)
		return 1
	}

	joinPhase := validateWeatherJoin(readings, weather)
	frame := domain.NewFrame(readings, append(cols, wcols...))

	phases := []*phase{
		validateCoverage(readings),
		validatePresence(readings, frame),
		joinPhase,
		validateReportable(frame, houseID),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d readings, %d weather samples, %d days\n", len(readings), len(weather), len(frame.Dates()))

	for _, p := range phases {
		if len(p.notes) == 0 && p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for _, n := range p.notes {
			fmt.Printf("  note: %s\n", n)
		}
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func readReadings(path string, houseID int) ([]domain.Reading, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return csvfile.ReadReadings(f, houseID)
}

func readWeather(path string) ([]domain.WeatherSample, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return csvfile.ReadWeather(f)
}

// ── Phase 1: Coverage ──

func validateCoverage(readings []domain.Reading) *phase {
	p := &phase{name: "Phase 1: Row Coverage (96 per day)"}
	if len(readings) == 0 {
		p.errorf("no readings")
		return p
	}

	perDay := map[time.Time]int{}
	seen := map[int64]bool{}
	for i := range readings {
		perDay[readings[i].Date()]++
		key := readings[i].Timestamp.Unix()
		if seen[key] {
			p.errorf("duplicate timestamp %s", readings[i].Timestamp.Format(time.RFC3339))
		}
		seen[key] = true
		if readings[i].TotalEnergy == nil {
			p.errorf("%s: total_energy is blank", readings[i].Timestamp.Format(time.RFC3339))
		}
	}

	days := make([]time.Time, 0, len(perDay))
	for d := range perDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	for i, d := range days {
		// The first and last day of an export are usually partial.
		if perDay[d] != slotsPerDay && i != 0 && i != len(days)-1 {
			p.errorf("%s: %d rows, want %d", d.Format(domain.DateLayout), perDay[d], slotsPerDay)
		}
		if i > 0 && !days[i-1].AddDate(0, 0, 1).Equal(d) {
			p.errorf("gap between %s and %s", days[i-1].Format(domain.DateLayout), d.Format(domain.DateLayout))
		}
	}
	return p
}

// ── Phase 2: Presence ──

func validatePresence(readings []domain.Reading, frame domain.Frame) *phase {
	p := &phase{name: "Phase 2: Channel Presence"}

	groups := domain.ResolveFeatures(frame)
	p.notef("rooms: %v", groups.Rooms)
	p.notef("appliances: %v", groups.Appliances)
	p.notef("lighting: %v", groups.Lighting)
	if len(groups.Rooms)+len(groups.Appliances)+len(groups.Lighting) == 0 {
		p.errorf("no channel is flagged present anywhere")
	}

	stray := map[domain.Channel]int{}
	for i := range readings {
		for _, c := range domain.AllChannels() {
			if !readings[i].Present[c] && readings[i].Usage[c] != nil && *readings[i].Usage[c] != 0 {
				stray[c]++
			}
		}
	}
	for _, c := range domain.AllChannels() {
		if n := stray[c]; n > 0 {
			p.notef("%s: %d rows carry usage while flagged not present (ignored)", c, n)
		}
	}
	return p
}

// ── Phase 3: Weather Join ──

func validateWeatherJoin(readings []domain.Reading, weather []domain.WeatherSample) *phase {
	p := &phase{name: "Phase 3: Weather Join"}

	byInstant := make(map[int64]bool, len(readings))
	for i := range readings {
		byInstant[readings[i].Timestamp.Unix()] = true
	}
	unmatched := 0
	for i := range weather {
		if !byInstant[weather[i].Timestamp.Unix()] {
			unmatched++
		}
	}

	joined := csvfile.JoinWeather(readings, weather)
	if joined == 0 && len(readings) > 0 {
		p.errorf("no weather sample matched any reading timestamp")
	}
	if unmatched > 0 {
		p.errorf("%d weather samples matched no reading", unmatched)
	}
	if missing := len(readings) - joined; missing > 0 {
		p.notef("%d readings have no weather", missing)
	}
	return p
}

// ── Phase 4: Reportable ──

func validateReportable(frame domain.Frame, houseID int) *phase {
	p := &phase{name: "Phase 4: Latest Date Reportable"}
	dates := frame.Dates()
	if len(dates) < 2 {
		p.errorf("need at least two days of readings, have %d", len(dates))
		return p
	}

	last := dates[len(dates)-1]
	rc, err := domain.BuildReportContext(frame, houseID, last)
	if errors.Is(err, domain.ErrMissingData) {
		p.errorf("%v", err)
		return p
	}
	if err != nil {
		p.errorf("build report for %s: %v", last.Format(domain.DateLayout), err)
		return p
	}
	if rc.Baseline.Degraded {
		p.notef("baseline covers %d of %d days", rc.Baseline.Days, domain.BaselineDays)
	}
	if rc.Today.Weather.Mean == nil {
		p.notef("no temperature for %s", rc.ReportDate)
	}
	return p
}
