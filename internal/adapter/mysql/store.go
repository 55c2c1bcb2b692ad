package mysql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/house-energy-service/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store runs the service's queries against MySQL.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewStore wraps an open connection.
func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// UserByEmail looks up a user for login.
func (s *Store) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("user by email: %w", err)
	}
	return u.domain(), nil
}

// HouseForUser returns the house owned by userID.
func (s *Store) HouseForUser(ctx context.Context, userID int) (domain.House, error) {
	var h House
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.House{}, domain.ErrHouseNotFound
	}
	if err != nil {
		return domain.House{}, fmt.Errorf("house for user %d: %w", userID, err)
	}
	return domain.House{ID: h.ID, UserID: h.UserID}, nil
}

// Intervals returns the raw rows of houseID within p, oldest first.
func (s *Store) Intervals(ctx context.Context, houseID int, p domain.Period) ([]domain.IntervalConsumption, error) {
	var rows []HouseConsumption
	err := s.db.WithContext(ctx).
		Where("house_id = ? AND date_time BETWEEN ? AND ?", houseID, wallClock(p.From), wallClock(p.To)).
		Order("date_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("intervals: %w", err)
	}
	out := make([]domain.IntervalConsumption, len(rows))
	for i := range rows {
		out[i] = rows[i].Interval()
	}
	return out, nil
}

const dailyConsumptionSQL = `SELECT DATE_FORMAT(date_time, '%Y-%m-%d') AS day,
	SUM(bathroom1) AS bathroom1,
	SUM(bedroom1) AS bedroom1,
	SUM(bedroom2) AS bedroom2,
	SUM(livingroom1) AS livingroom1,
	SUM(garage1) AS garage1,
	SUM(kitchen1) AS kitchen1,
	SUM(office1) AS office1,
	SUM(range1) AS range1,
	SUM(venthood1) AS venthood1,
	SUM(total_energy) AS total_consumption
FROM houses_consumption
WHERE house_id = ? AND date_time BETWEEN ? AND ?
GROUP BY day
ORDER BY day ASC`

type dailyRow struct {
	Day              string              `gorm:"column:day"`
	Bathroom1        decimal.NullDecimal `gorm:"column:bathroom1"`
	Bedroom1         decimal.NullDecimal `gorm:"column:bedroom1"`
	Bedroom2         decimal.NullDecimal `gorm:"column:bedroom2"`
	LivingRoom1      decimal.NullDecimal `gorm:"column:livingroom1"`
	Garage1          decimal.NullDecimal `gorm:"column:garage1"`
	Kitchen1         decimal.NullDecimal `gorm:"column:kitchen1"`
	Office1          decimal.NullDecimal `gorm:"column:office1"`
	Range1           decimal.NullDecimal `gorm:"column:range1"`
	VentHood1        decimal.NullDecimal `gorm:"column:venthood1"`
	TotalConsumption decimal.NullDecimal `gorm:"column:total_consumption"`
}

// DailyConsumption sums the room channels and the whole-house total per day
// of p.
func (s *Store) DailyConsumption(ctx context.Context, houseID int, p domain.Period) ([]domain.DailyConsumption, error) {
	var rows []dailyRow
	err := s.db.WithContext(ctx).
		Raw(dailyConsumptionSQL, houseID, wallClock(p.From), wallClock(p.To)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("daily consumption: %w", err)
	}
	out := make([]domain.DailyConsumption, len(rows))
	for i, r := range rows {
		out[i] = domain.DailyConsumption(r)
	}
	s.logger.Debug("daily consumption queried", "house_id", houseID, "period", p.String(), "days", len(out))
	return out, nil
}

const monthlyBillsSQL = `SELECT DATE_FORMAT(date_time, '%Y-%m') AS month,
	SUM(total_energy) AS monthly_consumption,
	COUNT(*) AS total_records
FROM houses_consumption
WHERE house_id = ? AND date_time <= ?
GROUP BY month
ORDER BY month ASC`

type monthlyRow struct {
	Month              string              `gorm:"column:month"`
	MonthlyConsumption decimal.NullDecimal `gorm:"column:monthly_consumption"`
	TotalRecords       int64               `gorm:"column:total_records"`
}

// MonthlyBills totals whole-house energy per calendar month up to now.
func (s *Store) MonthlyBills(ctx context.Context, houseID int, now time.Time) ([]domain.MonthlyBill, error) {
	var rows []monthlyRow
	err := s.db.WithContext(ctx).Raw(monthlyBillsSQL, houseID, wallClock(now)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("monthly bills: %w", err)
	}
	out := make([]domain.MonthlyBill, len(rows))
	for i, r := range rows {
		out[i] = domain.MonthlyBill(r)
	}
	return out, nil
}

// Load returns every reading of houseID with weather joined by timestamp.
// The schema carries every channel and weather column, so the frame does too.
func (s *Store) Load(ctx context.Context, houseID int) (domain.Frame, error) {
	var rows []HouseConsumption
	if err := s.db.WithContext(ctx).Where("house_id = ?", houseID).Order("date_time ASC").Find(&rows).Error; err != nil {
		return domain.Frame{}, fmt.Errorf("load readings: %w", err)
	}

	var obs []WeatherObservation
	if len(rows) > 0 {
		from, to := rows[0].DateTime, rows[len(rows)-1].DateTime
		err := s.db.WithContext(ctx).
			Where("date_time BETWEEN ? AND ?", from, to).
			Order("date_time ASC").
			Find(&obs).Error
		if err != nil {
			return domain.Frame{}, fmt.Errorf("load weather: %w", err)
		}
	}

	weather := make(map[int64]*domain.WeatherSample, len(obs))
	for i := range obs {
		w := obs[i].Sample()
		weather[w.Timestamp.Unix()] = &w
	}

	readings := make([]domain.Reading, len(rows))
	joined := 0
	for i := range rows {
		readings[i] = rows[i].Reading()
		if w, ok := weather[readings[i].Timestamp.Unix()]; ok {
			readings[i].Weather = w
			joined++
		}
	}

	columns := append(domain.ReadingColumns(), domain.WeatherColumns()...)
	frame := domain.NewFrame(readings, columns)
	s.logger.Info("dataset loaded", "house_id", houseID, "rows", frame.Len(), "weather_joined", joined, "source", "mysql")
	return frame, nil
}

// CountReadings returns how many rows houseID has.
func (s *Store) CountReadings(ctx context.Context, houseID int) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&HouseConsumption{}).Where("house_id = ?", houseID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}

// EnsureUser inserts u unless a user with the same username exists, and
// returns the stored row.
func (s *Store) EnsureUser(ctx context.Context, u User) (User, bool, error) {
	var existing User
	err := s.db.WithContext(ctx).Where("username = ?", u.Username).First(&existing).Error
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, false, fmt.Errorf("look up user %s: %w", u.Username, err)
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return User{}, false, fmt.Errorf("create user %s: %w", u.Username, err)
	}
	return u, true, nil
}

// EnsureHouse inserts h unless the (id, user_id) pair exists.
func (s *Store) EnsureHouse(ctx context.Context, h House) error {
	err := s.db.WithContext(ctx).Clauses(clause.Insert{Modifier: "IGNORE"}).Create(&h).Error
	if err != nil {
		return fmt.Errorf("ensure house %d: %w", h.ID, err)
	}
	return nil
}

// InsertReadings writes readings in batches. Rows whose (date_time, house_id)
// already exist are skipped.
func (s *Store) InsertReadings(ctx context.Context, readings []domain.Reading, batchSize int) (int64, error) {
	if len(readings) == 0 {
		return 0, nil
	}
	rows := make([]HouseConsumption, len(readings))
	for i, r := range readings {
		rows[i] = consumptionFromReading(r)
	}
	res := s.db.WithContext(ctx).Clauses(clause.Insert{Modifier: "IGNORE"}).CreateInBatches(rows, batchSize)
	if res.Error != nil {
		return res.RowsAffected, fmt.Errorf("insert readings: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// InsertWeather writes weather samples in batches, skipping existing hours.
func (s *Store) InsertWeather(ctx context.Context, samples []domain.WeatherSample, batchSize int) (int64, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	rows := make([]WeatherObservation, len(samples))
	for i, w := range samples {
		rows[i] = observationFromSample(w)
	}
	res := s.db.WithContext(ctx).Clauses(clause.Insert{Modifier: "IGNORE"}).CreateInBatches(rows, batchSize)
	if res.Error != nil {
		return res.RowsAffected, fmt.Errorf("insert weather: %w", res.Error)
	}
	return res.RowsAffected, nil
}
