package analysis

import (
	"encoding/json"
	"time"

	"sleep-observer/src/analysis/core"
	"sleep-observer/src/models"
)

// EventAliases are the object keys that may carry an event instant.
var EventAliases = []string{"time", "start", "timestamp"}

// Fallbacks for a toss track with no usable bounds.
const (
	DefaultTrackLookback = 8 * time.Hour
	MinTrackSpan         = time.Hour
)

// -----------------------------------------------------------------------------

// ParseEvents accepts bare ISO strings or objects keyed by EventAliases and
// drops anything unparseable. Order is preserved.
func ParseEvents(raw []json.RawMessage) []models.MEvent {
	out := make([]models.MEvent, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if t, ok := ParseTime(s); ok {
				out = append(out, models.MEvent{Timestamp: t})
			}
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err == nil && obj != nil {
			if t, ok := FirstTime(obj, EventAliases); ok {
				out = append(out, models.MEvent{Timestamp: t})
			}
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// ProjectEventIndices places each event on the nearest of bucketCount evenly
// spaced slots over [t0, t1]. Out-of-range events clamp to the first or last
// slot; several events may share one slot.
func ProjectEventIndices(events []models.MEvent, t0, t1 time.Time, bucketCount int) []int {
	if bucketCount < 2 || !t1.After(t0) {
		return []int{}
	}
	bucketMs := float64(t1.Sub(t0)) / float64(bucketCount-1)
	last := float64(bucketCount - 1)

	out := make([]int, len(events))
	for i, e := range events {
		idx := core.RoundHalfUp(float64(e.Timestamp.Sub(t0)) / bucketMs)
		out[i] = int(core.Clamp(idx, 0, last))
	}
	return out
}

// ProjectEvents maps projected indices through xAt.
func ProjectEvents(events []models.MEvent, t0, t1 time.Time, bucketCount int, xAt func(int) float64) []float64 {
	indices := ProjectEventIndices(events, t0, t1, bucketCount)
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = xAt(idx)
	}
	return out
}

// -----------------------------------------------------------------------------

// ResolveTrackSpan completes missing bounds from the event extent, then from
// now (lookback 8h), and stretches spans shorter than an hour.
func ResolveTrackSpan(start, end *time.Time, events []models.MEvent, now time.Time) (time.Time, time.Time) {
	var s, e time.Time
	hasS, hasE := start != nil, end != nil
	if hasS {
		s = *start
	}
	if hasE {
		e = *end
	}

	if (!hasS || !hasE) && len(events) > 0 {
		lo, hi := events[0].Timestamp, events[0].Timestamp
		for _, ev := range events[1:] {
			if ev.Timestamp.Before(lo) {
				lo = ev.Timestamp
			}
			if ev.Timestamp.After(hi) {
				hi = ev.Timestamp
			}
		}
		if !hasS {
			s, hasS = lo, true
		}
		if !hasE {
			e, hasE = hi, true
		}
	}

	if !hasS {
		s = now.Add(-DefaultTrackLookback)
	}
	if !hasE {
		e = now
	}
	if !e.After(s) {
		e = s.Add(MinTrackSpan)
	}
	return s, e
}

// TrackPositions expresses each event as a fraction of [start, end], clamped to [0, 1].
func TrackPositions(events []models.MEvent, start, end time.Time) []float64 {
	if !end.After(start) {
		return []float64{}
	}
	span := float64(end.Sub(start))
	out := make([]float64, len(events))
	for i, e := range events {
		out[i] = core.Clamp(float64(e.Timestamp.Sub(start))/span, 0, 1)
	}
	return out
}
