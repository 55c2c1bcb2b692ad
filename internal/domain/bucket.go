package domain

// TimeBucket is a named set of hours of the day.
type TimeBucket struct {
	Name  string
	Hours []int
}

var buckets = [...]TimeBucket{
	{Name: "morning", Hours: []int{6, 7, 8, 9}},
	{Name: "depart_work", Hours: []int{10, 11, 12, 13}},
	{Name: "return_work", Hours: []int{14, 15, 16}},
	{Name: "evening", Hours: []int{17, 18, 19, 20}},
	{Name: "night", Hours: []int{21, 22, 23, 0, 1, 2, 3, 4, 5}},
}

// bucketOfHour maps each hour of the day to its index in buckets.
var bucketOfHour = func() [24]int {
	var idx [24]int
	for i, b := range buckets {
		for _, h := range b.Hours {
			idx[h] = i
		}
	}
	return idx
}()

// Buckets returns the time bucket table in report order. Every hour 0-23
// belongs to exactly one bucket.
func Buckets() []TimeBucket {
	out := make([]TimeBucket, len(buckets))
	for i, b := range buckets {
		out[i] = TimeBucket{Name: b.Name, Hours: append([]int(nil), b.Hours...)}
	}
	return out
}

// BucketFor returns the name of the bucket containing hour.
func BucketFor(hour int) string {
	if hour < 0 || hour > 23 {
		return ""
	}
	return buckets[bucketOfHour[hour]].Name
}

// BucketAverages averages each feature per time bucket, rounded to 5
// decimals. Features the frame does not carry are omitted; a bucket without
// values for a feature reports nil for it.
func BucketAverages(day Frame, features []string) BucketTable {
	var cols []string
	for _, f := range features {
		if day.HasColumn(f) {
			cols = append(cols, f)
		}
	}

	type acc struct {
		sum   float64
		count int
	}
	sums := make([][]acc, len(buckets))
	for i := range sums {
		sums[i] = make([]acc, len(cols))
	}
	rows := day.Rows()
	for i := range rows {
		b := bucketOfHour[rows[i].HourOfDay()]
		for j, c := range cols {
			if v, ok := rows[i].Value(c); ok {
				sums[b][j].sum += v
				sums[b][j].count++
			}
		}
	}

	out := make(BucketTable, len(buckets))
	for i, b := range buckets {
		avgs := make(Averages, len(cols))
		for j, c := range cols {
			avgs[j] = Average{Column: c}
			if a := sums[i][j]; a.count > 0 {
				avgs[j].Mean = roundPtr(a.sum/float64(a.count), 5)
			}
		}
		out[i] = BucketAverage{Bucket: b.Name, Averages: avgs}
	}
	return out
}
