// Package csvfile reads smart-meter and weather exports from CSV files.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/house-energy-service/internal/domain"
)

// Timestamp column names, in order of preference.
var timestampColumns = []string{"local_15min", "date_time"}

// timestampLayouts covers the offset styles seen in meter exports.
var timestampLayouts = []string{
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05Z07:00",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses a meter timestamp. Times without an offset are taken
// as UTC wall-clock times.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// header indexes CSV columns by name.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		h[strings.TrimSpace(name)] = i
	}
	return h
}

func (h header) get(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h header) has(name string) bool {
	_, ok := h[name]
	return ok
}

func (h header) timestampColumn() (string, error) {
	for _, c := range timestampColumns {
		if h.has(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("no timestamp column (want one of %v)", timestampColumns)
}

// parseOptionalFloat returns nil for blanks and NaN markers.
func parseOptionalFloat(s string) (*float64, error) {
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) {
		return nil, nil
	}
	return &v, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "0.0", "false":
		return false, nil
	case "1", "1.0", "true":
		return true, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func parseIntOrZero(s string) int {
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v)
	}
	return 0
}

func parseFloatOrZero(s string) float64 {
	v, err := parseOptionalFloat(s)
	if err != nil || v == nil {
		return 0
	}
	return *v
}

// ReadReadings parses a meter export. It returns the rows and the names of
// the domain columns the header carried.
func ReadReadings(r io.Reader, houseID int) ([]domain.Reading, []string, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	first, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	h := newHeader(first)
	tsCol, err := h.timestampColumn()
	if err != nil {
		return nil, nil, err
	}

	var columns []string
	for _, name := range domain.ReadingColumns() {
		if h.has(name) {
			columns = append(columns, name)
		}
	}

	var out []domain.Reading
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		rd, err := parseReading(h, row, tsCol, houseID)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rd)
	}
	return out, columns, nil
}

func parseReading(h header, row []string, tsCol string, houseID int) (domain.Reading, error) {
	ts, err := ParseTimestamp(h.get(row, tsCol))
	if err != nil {
		return domain.Reading{}, err
	}
	for _, col := range []string{"house_id", "dataid"} {
		if v, err := strconv.Atoi(h.get(row, col)); err == nil {
			houseID = v
			break
		}
	}

	rd := domain.Reading{
		Timestamp: ts,
		HouseID:   houseID,
		Weekday:   parseIntOrZero(h.get(row, "Weekday")),
		Month:     parseIntOrZero(h.get(row, "Month")),
		Hour:      parseIntOrZero(h.get(row, "Hour")),
		HourSin:   parseFloatOrZero(h.get(row, "Hour_sin")),
		HourCos:   parseFloatOrZero(h.get(row, "Hour_cos")),
		DowSin:    parseFloatOrZero(h.get(row, "DoW_sin")),
		DowCos:    parseFloatOrZero(h.get(row, "DoW_cos")),
	}
	for _, c := range domain.AllChannels() {
		if rd.Usage[c], err = parseOptionalFloat(h.get(row, c.String())); err != nil {
			return domain.Reading{}, fmt.Errorf("%s: %w", c, err)
		}
		if rd.Present[c], err = parseBool(h.get(row, c.PresentColumn())); err != nil {
			return domain.Reading{}, fmt.Errorf("%s: %w", c.PresentColumn(), err)
		}
	}
	if rd.TotalEnergy, err = parseOptionalFloat(h.get(row, domain.ColTotalEnergy)); err != nil {
		return domain.Reading{}, fmt.Errorf("%s: %w", domain.ColTotalEnergy, err)
	}
	return rd, nil
}

// ReadWeather parses a weather export keyed by the same timestamp column as
// the meter export. It returns the samples and the weather columns carried.
func ReadWeather(r io.Reader) ([]domain.WeatherSample, []string, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	first, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	h := newHeader(first)
	tsCol, err := h.timestampColumn()
	if err != nil {
		return nil, nil, err
	}

	var columns []string
	for _, name := range domain.WeatherColumns() {
		if h.has(name) {
			columns = append(columns, name)
		}
	}

	var out []domain.WeatherSample
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		ws, err := parseWeather(h, row, tsCol)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, ws)
	}
	return out, columns, nil
}

func parseWeather(h header, row []string, tsCol string) (domain.WeatherSample, error) {
	ts, err := ParseTimestamp(h.get(row, tsCol))
	if err != nil {
		return domain.WeatherSample{}, err
	}
	ws := domain.WeatherSample{Timestamp: ts}
	fields := []struct {
		col string
		dst **float64
	}{
		{domain.ColTemp, &ws.Temp},
		{domain.ColDwpt, &ws.Dwpt},
		{domain.ColRhum, &ws.Rhum},
		{domain.ColPrcp, &ws.Prcp},
		{domain.ColWdir, &ws.Wdir},
		{domain.ColWspd, &ws.Wspd},
		{domain.ColPres, &ws.Pres},
	}
	for _, f := range fields {
		if *f.dst, err = parseOptionalFloat(h.get(row, f.col)); err != nil {
			return domain.WeatherSample{}, fmt.Errorf("%s: %w", f.col, err)
		}
	}
	coco, err := parseOptionalFloat(h.get(row, domain.ColCoco))
	if err != nil {
		return domain.WeatherSample{}, fmt.Errorf("%s: %w", domain.ColCoco, err)
	}
	if coco != nil {
		code := int(*coco)
		ws.Coco = &code
	}
	return ws, nil
}

// JoinWeather left-joins weather samples onto readings by instant. Readings
// without a matching sample keep a nil Weather.
func JoinWeather(readings []domain.Reading, weather []domain.WeatherSample) (joined int) {
	byInstant := make(map[int64]*domain.WeatherSample, len(weather))
	for i := range weather {
		byInstant[weather[i].Timestamp.Unix()] = &weather[i]
	}
	for i := range readings {
		if w, ok := byInstant[readings[i].Timestamp.Unix()]; ok {
			readings[i].Weather = w
			joined++
		}
	}
	return joined
}

// Loader builds report frames from a meter export and a weather export.
type Loader struct {
	readingsPath string
	weatherPath  string
	logger       *slog.Logger
}

// NewLoader creates a Loader over the two CSV files.
func NewLoader(readingsPath, weatherPath string, logger *slog.Logger) *Loader {
	return &Loader{readingsPath: readingsPath, weatherPath: weatherPath, logger: logger}
}

// Load reads both files and returns the joined frame for houseID.
func (l *Loader) Load(ctx context.Context, houseID int) (domain.Frame, error) {
	if err := ctx.Err(); err != nil {
		return domain.Frame{}, err
	}

	readings, cols, err := readFile(l.readingsPath, func(r io.Reader) ([]domain.Reading, []string, error) {
		return ReadReadings(r, houseID)
	})
	if err != nil {
		return domain.Frame{}, fmt.Errorf("load readings: %w", err)
	}

	readings, dropped := FilterHouse(readings, houseID)
	if dropped > 0 {
		l.logger.Warn("readings for other houses skipped", "house_id", houseID, "skipped", dropped)
	}

	weather, wcols, err := readFile(l.weatherPath, ReadWeather)
	if err != nil {
		return domain.Frame{}, fmt.Errorf("load weather: %w", err)
	}

	joined := JoinWeather(readings, weather)
	frame := domain.NewFrame(readings, append(cols, wcols...))

	attrs := []any{"house_id", houseID, "rows", frame.Len(), "weather_joined", joined}
	if dates := frame.Dates(); len(dates) > 0 {
		attrs = append(attrs,
			"first_date", dates[0].Format(domain.DateLayout),
			"last_date", dates[len(dates)-1].Format(domain.DateLayout))
	}
	l.logger.Info("dataset loaded", attrs...)
	return frame, nil
}

// FilterHouse keeps the readings belonging to houseID, in place, and reports
// how many were dropped.
func FilterHouse(readings []domain.Reading, houseID int) ([]domain.Reading, int) {
	kept := readings[:0]
	for _, r := range readings {
		if r.HouseID == houseID {
			kept = append(kept, r)
		}
	}
	return kept, len(readings) - len(kept)
}

func readFile[T any](path string, parse func(io.Reader) ([]T, []string, error)) ([]T, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return parse(f)
}
