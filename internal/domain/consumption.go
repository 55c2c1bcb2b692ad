package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyConsumption is one day of summed usage for the consumption and bill
// endpoints. Sums are exact decimals; a null sum means the day recorded no
// values for that channel.
type DailyConsumption struct {
	Day              string              `json:"day"`
	Bathroom1        decimal.NullDecimal `json:"bathroom1"`
	Bedroom1         decimal.NullDecimal `json:"bedroom1"`
	Bedroom2         decimal.NullDecimal `json:"bedroom2"`
	LivingRoom1      decimal.NullDecimal `json:"livingroom1"`
	Garage1          decimal.NullDecimal `json:"garage1"`
	Kitchen1         decimal.NullDecimal `json:"kitchen1"`
	Office1          decimal.NullDecimal `json:"office1"`
	Range1           decimal.NullDecimal `json:"range1"`
	VentHood1        decimal.NullDecimal `json:"venthood1"`
	TotalConsumption decimal.NullDecimal `json:"total_consumption"`
}

// DailyConsumptionHeader is the column order of consumption exports.
var DailyConsumptionHeader = []string{
	"day", "bathroom1", "bedroom1", "bedroom2", "livingroom1",
	"garage1", "kitchen1", "office1", "range1", "venthood1", "total_consumption",
}

// Record returns the row's export fields in DailyConsumptionHeader order.
func (d DailyConsumption) Record() []string {
	return []string{
		d.Day,
		nullString(d.Bathroom1), nullString(d.Bedroom1), nullString(d.Bedroom2),
		nullString(d.LivingRoom1), nullString(d.Garage1), nullString(d.Kitchen1),
		nullString(d.Office1), nullString(d.Range1), nullString(d.VentHood1),
		nullString(d.TotalConsumption),
	}
}

// Values returns the numeric fields of Record, nil where the sum is null.
func (d DailyConsumption) Values() []*decimal.Decimal {
	fields := []decimal.NullDecimal{
		d.Bathroom1, d.Bedroom1, d.Bedroom2, d.LivingRoom1, d.Garage1,
		d.Kitchen1, d.Office1, d.Range1, d.VentHood1, d.TotalConsumption,
	}
	out := make([]*decimal.Decimal, len(fields))
	for i, f := range fields {
		if f.Valid {
			v := f.Decimal
			out[i] = &v
		}
	}
	return out
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// MonthlyBill is one month of whole-house consumption.
type MonthlyBill struct {
	Month              string              `json:"month"`
	MonthlyConsumption decimal.NullDecimal `json:"monthly_consumption"`
	TotalRecords       int64               `json:"total_records"`
}

// IntervalConsumption is one raw 15-minute row as served by the API.
type IntervalConsumption struct {
	DateTime    time.Time                      `json:"date_time"`
	HouseID     int                            `json:"house_id"`
	Channels    map[string]decimal.NullDecimal `json:"channels"`
	TotalEnergy decimal.NullDecimal            `json:"total_energy"`
}
