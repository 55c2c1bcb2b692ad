package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Average is a rounded mean for one column. A nil Mean means no data.
type Average struct {
	Column string
	Mean   *float64
}

// Averages is an ordered column → mean mapping. It encodes as a JSON object
// whose keys keep their slice order.
type Averages []Average

// Get returns the mean for a column and whether the column is listed.
func (a Averages) Get(column string) (*float64, bool) {
	for _, v := range a {
		if v.Column == column {
			return v.Mean, true
		}
	}
	return nil, false
}

// MarshalJSON implements json.Marshaler.
func (a Averages) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, v.Column); err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.Mean)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, preserving key order.
func (a *Averages) UnmarshalJSON(data []byte) error {
	out := Averages{}
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		var mean *float64
		if err := json.Unmarshal(raw, &mean); err != nil {
			return fmt.Errorf("average %q: %w", key, err)
		}
		out = append(out, Average{Column: key, Mean: mean})
		return nil
	})
	if err != nil {
		return err
	}
	*a = out
	return nil
}

// BucketAverage holds the per-feature means of one time bucket.
type BucketAverage struct {
	Bucket   string
	Averages Averages
}

// BucketTable is the ordered set of bucket averages for a day.
type BucketTable []BucketAverage

// Get returns the averages of the named bucket.
func (t BucketTable) Get(bucket string) (Averages, bool) {
	for _, b := range t {
		if b.Bucket == bucket {
			return b.Averages, true
		}
	}
	return nil, false
}

// MarshalJSON implements json.Marshaler.
func (t BucketTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, b.Bucket); err != nil {
			return nil, err
		}
		val, err := b.Averages.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, preserving bucket order.
func (t *BucketTable) UnmarshalJSON(data []byte) error {
	out := BucketTable{}
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		var avgs Averages
		if err := json.Unmarshal(raw, &avgs); err != nil {
			return fmt.Errorf("bucket %q: %w", key, err)
		}
		out = append(out, BucketAverage{Bucket: key, Averages: avgs})
		return nil
	})
	if err != nil {
		return err
	}
	*t = out
	return nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

// decodeObject walks a JSON object's members in document order.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// round rounds half to even at the given number of decimal places.
func round(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.RoundToEven(x*p) / p
}

func roundPtr(x float64, places int) *float64 {
	v := round(x, places)
	return &v
}
