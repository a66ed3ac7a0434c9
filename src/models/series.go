package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// MTimeSeriesSample is one irregular reading. Absent fields are NaN.
type MTimeSeriesSample struct {
	Timestamp time.Time
	Average   float64
	Min       float64
	Max       float64
}

// MBucket is one fixed-cadence slot of a dense grid.
type MBucket struct {
	StartTime time.Time `json:"start_time"`
	Average   float64   `json:"average"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
}

// MarshalJSON encodes non-finite values as null.
func (b MBucket) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		StartTime time.Time `json:"start_time"`
		Average   *float64  `json:"average"`
		Min       *float64  `json:"min"`
		Max       *float64  `json:"max"`
	}{b.StartTime, finiteOrNil(b.Average), finiteOrNil(b.Min), finiteOrNil(b.Max)})
}

// MSmoothPoint is one output of the moving average.
type MSmoothPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// MEvent is a discrete occurrence such as a toss-and-turn or an apnea.
type MEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// -----------------------------------------------------------------------------

// MSeries is a numeric array from a report payload. Anything other than a JSON
// array decodes to an empty series; elements that are null or not numeric
// become 0.
type MSeries []float64

func (s *MSeries) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = MSeries{}
		return nil
	}
	out := make(MSeries, len(raw))
	for i, item := range raw {
		out[i] = coerceElement(item)
	}
	*s = out
	return nil
}

func coerceElement(item json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(item, &f); err == nil {
		return f
	}
	var str string
	if err := json.Unmarshal(item, &str); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	return 0
}
