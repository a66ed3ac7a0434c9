package analysis

import (
	"math"
	"sort"
	"strings"
	"time"

	"sleep-observer/src/analysis/core"
	"sleep-observer/src/models"
)

// Accessor attempts per logical field, in priority order. Different upstream
// producers name the same reading differently.
var (
	AverageAliases = []string{"bpm", "avg_bpm", "avg", "mean", "average"}
	MinAliases     = []string{"min_bpm", "min", "low", "minBpm"}
	MaxAliases     = []string{"max_bpm", "max", "high", "maxBpm"}
	TimeAliases    = []string{"time", "timestamp", "start", "start_time", "startTime"}
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// -----------------------------------------------------------------------------

// FirstFinite returns the first alias whose value coerces to a finite number,
// or NaN when none does.
func FirstFinite(record map[string]any, aliases []string) float64 {
	for _, key := range aliases {
		if v, ok := record[key]; ok {
			if f, ok := core.Coerce(v); ok {
				return f
			}
		}
	}
	return math.NaN()
}

// FirstTime returns the first alias holding a parseable instant.
func FirstTime(record map[string]any, aliases []string) (time.Time, bool) {
	for _, key := range aliases {
		if s, ok := record[key].(string); ok {
			if t, ok := ParseTime(s); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// -----------------------------------------------------------------------------

// ParseTime accepts RFC 3339 instants; zone-less forms are read as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimePtr is ParseTime returning nil on failure.
func ParseTimePtr(s string) *time.Time {
	t, ok := ParseTime(s)
	if !ok {
		return nil
	}
	return &t
}

// -----------------------------------------------------------------------------

// ParseSamples turns heterogeneous records into sorted, de-duplicated samples.
// Records without a parseable time or a finite average are dropped; on a
// timestamp collision the first record wins.
func ParseSamples(records []map[string]any) []models.MTimeSeriesSample {
	out := make([]models.MTimeSeriesSample, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		ts, ok := FirstTime(rec, TimeAliases)
		if !ok {
			continue
		}
		avg := FirstFinite(rec, AverageAliases)
		if !core.IsFinite(avg) {
			continue
		}
		out = append(out, models.MTimeSeriesSample{
			Timestamp: ts,
			Average:   avg,
			Min:       FirstFinite(rec, MinAliases),
			Max:       FirstFinite(rec, MaxAliases),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	dedup := out[:0]
	for i, s := range out {
		if i > 0 && s.Timestamp.Equal(dedup[len(dedup)-1].Timestamp) {
			continue
		}
		dedup = append(dedup, s)
	}
	return dedup
}
