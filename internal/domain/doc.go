// Package domain models household smart-meter data and the daily usage
// summary built from it.
//
// # Data Source
//
// Readings come from a 15-minute smart-meter export with one row per
// interval per house. Timestamps are local wall-clock times with a UTC
// offset, e.g. "2019-05-01 00:15:00-05". Calendar date and hour of day are
// always taken from the wall clock, never converted to UTC first.
//
// Weather observations are a separate time series on the same timestamps,
// left-joined onto readings: a reading may have no weather.
//
// # Channels
//
// Nineteen sub-meter channels form a closed taxonomy (see [Channel]):
//
//	Rooms:      bathroom1 bedroom1 bedroom2 livingroom1 garage1 kitchen1 office1
//	Appliances: clotheswasher1 dishwasher1 kitchenapp1 kitchenapp2 microwave1
//	            range1 refrigerator1 venthood1 oven1
//	Lighting:   lights_plugs1 lights_plugs2 lights_plugs3
//
// Each channel has a "<name>_present" flag. A row whose flag is false has its
// channel value cleared when the [Frame] is built, so no aggregation sees it.
// A channel is available for reporting when its flag is set in at least one
// row (see [ResolveFeatures]).
//
// # Weather Codes
//
// The "coco" column is a weather condition code 1-27 (1 Clear … 27 Storm).
// Unmapped codes describe as "Unknown".
//
// # Report Context
//
// [BuildReportContext] compares the report date ("today") with the day
// before ("yesterday") and with an hourly baseline of the 7 days before
// yesterday. All floats are rounded by the producer:
//
//	total_energy, breakdown, 7d_avg: 3 decimals
//	weather min/mean/max:            2 decimals
//	bucket averages:                 5 decimals
//
// "No data" is encoded as JSON null, never as zero.
//
// Time buckets partition the hours of the day:
//
//	morning 6-9 | depart_work 10-13 | return_work 14-16 | evening 17-20 | night 21-5
package domain
