package mysql

import (
	"time"

	"github.com/couchcryptid/house-energy-service/internal/domain"
	"github.com/shopspring/decimal"
)

// User is a row of the users table.
type User struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	Username  string    `gorm:"column:username;size:50;uniqueIndex"`
	Email     string    `gorm:"column:email;size:100;uniqueIndex"`
	Password  string    `gorm:"column:password;size:255"`
	Address   string    `gorm:"column:address;size:255"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string { return "users" }

func (u User) domain() domain.User {
	return domain.User{ID: u.ID, Username: u.Username, Email: u.Email, PasswordHash: u.Password, Address: u.Address}
}

// House is a row of the houses table. A house belongs to exactly one user.
type House struct {
	ID                      int       `gorm:"column:id;primaryKey;autoIncrement:false"`
	UserID                  int       `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	ConstructionYear        *int      `gorm:"column:construction_year"`
	TotalSquareFootage      *float64  `gorm:"column:total_square_footage"`
	FirstFloorSquareFootage *float64  `gorm:"column:first_floor_square_footage"`
	CreatedAt               time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (House) TableName() string { return "houses" }

// HouseConsumption is one 15-minute row of houses_consumption. DateTime holds
// the meter's wall-clock time.
type HouseConsumption struct {
	DateTime time.Time `gorm:"column:date_time;primaryKey;autoIncrement:false"`
	HouseID  int       `gorm:"column:house_id;primaryKey;autoIncrement:false"`

	Bathroom1      decimal.NullDecimal `gorm:"column:bathroom1;type:decimal(10,4)"`
	Bedroom1       decimal.NullDecimal `gorm:"column:bedroom1;type:decimal(10,4)"`
	Bedroom2       decimal.NullDecimal `gorm:"column:bedroom2;type:decimal(10,4)"`
	ClothesWasher1 decimal.NullDecimal `gorm:"column:clotheswasher1;type:decimal(10,4)"`
	LivingRoom1    decimal.NullDecimal `gorm:"column:livingroom1;type:decimal(10,4)"`
	Dishwasher1    decimal.NullDecimal `gorm:"column:dishwasher1;type:decimal(10,4)"`
	Garage1        decimal.NullDecimal `gorm:"column:garage1;type:decimal(10,4)"`
	Kitchen1       decimal.NullDecimal `gorm:"column:kitchen1;type:decimal(10,4)"`
	KitchenApp1    decimal.NullDecimal `gorm:"column:kitchenapp1;type:decimal(10,4)"`
	KitchenApp2    decimal.NullDecimal `gorm:"column:kitchenapp2;type:decimal(10,4)"`
	LightsPlugs1   decimal.NullDecimal `gorm:"column:lights_plugs1;type:decimal(10,4)"`
	LightsPlugs2   decimal.NullDecimal `gorm:"column:lights_plugs2;type:decimal(10,4)"`
	LightsPlugs3   decimal.NullDecimal `gorm:"column:lights_plugs3;type:decimal(10,4)"`
	Microwave1     decimal.NullDecimal `gorm:"column:microwave1;type:decimal(10,4)"`
	Office1        decimal.NullDecimal `gorm:"column:office1;type:decimal(10,4)"`
	Range1         decimal.NullDecimal `gorm:"column:range1;type:decimal(10,4)"`
	Refrigerator1  decimal.NullDecimal `gorm:"column:refrigerator1;type:decimal(10,4)"`
	VentHood1      decimal.NullDecimal `gorm:"column:venthood1;type:decimal(10,4)"`
	Oven1          decimal.NullDecimal `gorm:"column:oven1;type:decimal(10,4)"`

	TotalEnergy decimal.NullDecimal `gorm:"column:total_energy;type:decimal(12,4)"`

	Weekday uint8   `gorm:"column:Weekday"`
	Month   uint8   `gorm:"column:Month"`
	Hour    uint8   `gorm:"column:Hour"`
	HourSin float64 `gorm:"column:Hour_sin"`
	HourCos float64 `gorm:"column:Hour_cos"`
	DowSin  float64 `gorm:"column:DoW_sin"`
	DowCos  float64 `gorm:"column:DoW_cos"`

	Bathroom1Present      bool `gorm:"column:bathroom1_present"`
	Bedroom1Present       bool `gorm:"column:bedroom1_present"`
	Bedroom2Present       bool `gorm:"column:bedroom2_present"`
	ClothesWasher1Present bool `gorm:"column:clotheswasher1_present"`
	LivingRoom1Present    bool `gorm:"column:livingroom1_present"`
	Dishwasher1Present    bool `gorm:"column:dishwasher1_present"`
	Garage1Present        bool `gorm:"column:garage1_present"`
	Kitchen1Present       bool `gorm:"column:kitchen1_present"`
	KitchenApp1Present    bool `gorm:"column:kitchenapp1_present"`
	KitchenApp2Present    bool `gorm:"column:kitchenapp2_present"`
	LightsPlugs1Present   bool `gorm:"column:lights_plugs1_present"`
	LightsPlugs2Present   bool `gorm:"column:lights_plugs2_present"`
	LightsPlugs3Present   bool `gorm:"column:lights_plugs3_present"`
	Microwave1Present     bool `gorm:"column:microwave1_present"`
	Office1Present        bool `gorm:"column:office1_present"`
	Range1Present         bool `gorm:"column:range1_present"`
	Refrigerator1Present  bool `gorm:"column:refrigerator1_present"`
	VentHood1Present      bool `gorm:"column:venthood1_present"`
	Oven1Present          bool `gorm:"column:oven1_present"`
}

func (HouseConsumption) TableName() string { return "houses_consumption" }

// usage returns the channel columns indexed by domain.Channel.
func (h *HouseConsumption) usage() [domain.ChannelCount]*decimal.NullDecimal {
	return [domain.ChannelCount]*decimal.NullDecimal{
		domain.Bathroom1:      &h.Bathroom1,
		domain.Bedroom1:       &h.Bedroom1,
		domain.Bedroom2:       &h.Bedroom2,
		domain.ClothesWasher1: &h.ClothesWasher1,
		domain.LivingRoom1:    &h.LivingRoom1,
		domain.Dishwasher1:    &h.Dishwasher1,
		domain.Garage1:        &h.Garage1,
		domain.Kitchen1:       &h.Kitchen1,
		domain.KitchenApp1:    &h.KitchenApp1,
		domain.KitchenApp2:    &h.KitchenApp2,
		domain.LightsPlugs1:   &h.LightsPlugs1,
		domain.LightsPlugs2:   &h.LightsPlugs2,
		domain.LightsPlugs3:   &h.LightsPlugs3,
		domain.Microwave1:     &h.Microwave1,
		domain.Office1:        &h.Office1,
		domain.Range1:         &h.Range1,
		domain.Refrigerator1:  &h.Refrigerator1,
		domain.VentHood1:      &h.VentHood1,
		domain.Oven1:          &h.Oven1,
	}
}

// present returns the presence flags indexed by domain.Channel.
func (h *HouseConsumption) present() [domain.ChannelCount]*bool {
	return [domain.ChannelCount]*bool{
		domain.Bathroom1:      &h.Bathroom1Present,
		domain.Bedroom1:       &h.Bedroom1Present,
		domain.Bedroom2:       &h.Bedroom2Present,
		domain.ClothesWasher1: &h.ClothesWasher1Present,
		domain.LivingRoom1:    &h.LivingRoom1Present,
		domain.Dishwasher1:    &h.Dishwasher1Present,
		domain.Garage1:        &h.Garage1Present,
		domain.Kitchen1:       &h.Kitchen1Present,
		domain.KitchenApp1:    &h.KitchenApp1Present,
		domain.KitchenApp2:    &h.KitchenApp2Present,
		domain.LightsPlugs1:   &h.LightsPlugs1Present,
		domain.LightsPlugs2:   &h.LightsPlugs2Present,
		domain.LightsPlugs3:   &h.LightsPlugs3Present,
		domain.Microwave1:     &h.Microwave1Present,
		domain.Office1:        &h.Office1Present,
		domain.Range1:         &h.Range1Present,
		domain.Refrigerator1:  &h.Refrigerator1Present,
		domain.VentHood1:      &h.VentHood1Present,
		domain.Oven1:          &h.Oven1Present,
	}
}

// WeatherObservation is one hourly row of weather_observations.
type WeatherObservation struct {
	DateTime time.Time `gorm:"column:date_time;primaryKey;autoIncrement:false"`
	Temp     *float64  `gorm:"column:temp"`
	Dwpt     *float64  `gorm:"column:dwpt"`
	Rhum     *float64  `gorm:"column:rhum"`
	Prcp     *float64  `gorm:"column:prcp"`
	Wdir     *float64  `gorm:"column:wdir"`
	Wspd     *float64  `gorm:"column:wspd"`
	Pres     *float64  `gorm:"column:pres"`
	Coco     *int      `gorm:"column:coco"`
}

func (WeatherObservation) TableName() string { return "weather_observations" }

// wallClock drops the zone of t while keeping its wall-clock fields, which is
// how DATETIME columns store meter timestamps.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func toNullDecimal(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*v).Round(4))
}

func fromNullDecimal(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f, _ := d.Decimal.Float64()
	return &f
}

// consumptionFromReading converts a meter reading into its table row.
func consumptionFromReading(r domain.Reading) HouseConsumption {
	row := HouseConsumption{
		DateTime:    wallClock(r.Timestamp),
		HouseID:     r.HouseID,
		TotalEnergy: toNullDecimal(r.TotalEnergy),
		Weekday:     uint8(r.Weekday),
		Month:       uint8(r.Month),
		Hour:        uint8(r.Hour),
		HourSin:     r.HourSin,
		HourCos:     r.HourCos,
		DowSin:      r.DowSin,
		DowCos:      r.DowCos,
	}
	usage, present := row.usage(), row.present()
	for _, c := range domain.AllChannels() {
		*usage[c] = toNullDecimal(r.Usage[c])
		*present[c] = r.Present[c]
	}
	return row
}

// Reading converts the row into a domain reading without weather.
func (h *HouseConsumption) Reading() domain.Reading {
	r := domain.Reading{
		Timestamp:   h.DateTime,
		HouseID:     h.HouseID,
		TotalEnergy: fromNullDecimal(h.TotalEnergy),
		Weekday:     int(h.Weekday),
		Month:       int(h.Month),
		Hour:        int(h.Hour),
		HourSin:     h.HourSin,
		HourCos:     h.HourCos,
		DowSin:      h.DowSin,
		DowCos:      h.DowCos,
	}
	usage, present := h.usage(), h.present()
	for _, c := range domain.AllChannels() {
		r.Usage[c] = fromNullDecimal(*usage[c])
		r.Present[c] = *present[c]
	}
	return r
}

// Interval converts the row into the API's raw interval shape.
func (h *HouseConsumption) Interval() domain.IntervalConsumption {
	out := domain.IntervalConsumption{
		DateTime:    h.DateTime,
		HouseID:     h.HouseID,
		Channels:    make(map[string]decimal.NullDecimal, domain.ChannelCount),
		TotalEnergy: h.TotalEnergy,
	}
	for c, v := range h.usage() {
		out.Channels[domain.Channel(c).String()] = *v
	}
	return out
}

func observationFromSample(w domain.WeatherSample) WeatherObservation {
	return WeatherObservation{
		DateTime: wallClock(w.Timestamp),
		Temp:     w.Temp,
		Dwpt:     w.Dwpt,
		Rhum:     w.Rhum,
		Prcp:     w.Prcp,
		Wdir:     w.Wdir,
		Wspd:     w.Wspd,
		Pres:     w.Pres,
		Coco:     w.Coco,
	}
}

// Sample converts the row into a domain weather sample.
func (w *WeatherObservation) Sample() domain.WeatherSample {
	return domain.WeatherSample{
		Timestamp: w.DateTime,
		Temp:      w.Temp,
		Dwpt:      w.Dwpt,
		Rhum:      w.Rhum,
		Prcp:      w.Prcp,
		Wdir:      w.Wdir,
		Wspd:      w.Wspd,
		Pres:      w.Pres,
		Coco:      w.Coco,
	}
}
