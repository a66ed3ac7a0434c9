package analysis

import (
	"math"
	"time"

	"sleep-observer/src/analysis/core"
	"sleep-observer/src/models"
)

// DefaultStep is the dense grid cadence.
const DefaultStep = 10 * time.Minute

// Band holds the offsets used to synthesize a missing min/max from the average.
type Band struct {
	Below float64
	Above float64
}

// DefaultBand is the avg-1 / avg+1 display band.
var DefaultBand = Band{Below: 1, Above: 1}

// GridBuilder projects sparse samples onto a fixed cadence timeline.
type GridBuilder struct {
	Step time.Duration
	Band Band
}

// -----------------------------------------------------------------------------

// NewGridBuilder returns a builder; a non-positive step falls back to DefaultStep.
func NewGridBuilder(step time.Duration, band Band) *GridBuilder {
	if step <= 0 {
		step = DefaultStep
	}
	return &GridBuilder{Step: step, Band: band}
}

// -----------------------------------------------------------------------------

// Build walks the grid from the first to the last sample timestamp.
// points must be sorted ascending with finite averages (see ParseSamples).
func (g *GridBuilder) Build(points []models.MTimeSeriesSample) []models.MBucket {
	if len(points) == 0 {
		return []models.MBucket{}
	}
	return g.walk(points, points[len(points)-1].Timestamp)
}

// BuildUntil is Build with an explicit end boundary. Grid slots past the last
// sample repeat its values.
func (g *GridBuilder) BuildUntil(points []models.MTimeSeriesSample, end time.Time) []models.MBucket {
	if len(points) == 0 {
		return []models.MBucket{}
	}
	last := points[len(points)-1].Timestamp
	if end.Before(last) {
		end = last
	}
	return g.walk(points, end)
}

// -----------------------------------------------------------------------------

func (g *GridBuilder) walk(points []models.MTimeSeriesSample, t1 time.Time) []models.MBucket {
	step := g.Step
	if step <= 0 {
		step = DefaultStep
	}
	t0 := points[0].Timestamp
	limit := t1.Sub(t0) + time.Millisecond
	last := len(points) - 1

	out := make([]models.MBucket, 0, int(limit/step)+1)
	i := 0
	for off := time.Duration(0); off <= limit; off += step {
		t := t0.Add(off)

		// Forward-only pointer: never regresses across the walk
		for i < last && points[i+1].Timestamp.Before(t) {
			i++
		}
		a := points[i]
		b := points[min(i+1, last)]

		span := b.Timestamp.Sub(a.Timestamp)
		if span < time.Millisecond {
			span = time.Millisecond
		}
		r := core.Clamp(float64(t.Sub(a.Timestamp))/float64(span), 0, 1)

		out = append(out, models.MBucket{
			StartTime: t,
			Average:   interpolate(a.Average, b.Average, r),
			Min:       interpolate(g.lower(a), g.lower(b), r),
			Max:       interpolate(g.upper(a), g.upper(b), r),
		})
	}
	return out
}

func (g *GridBuilder) lower(p models.MTimeSeriesSample) float64 {
	if core.IsFinite(p.Min) {
		return p.Min
	}
	return p.Average - g.Band.Below
}

func (g *GridBuilder) upper(p models.MTimeSeriesSample) float64 {
	if core.IsFinite(p.Max) {
		return p.Max
	}
	return p.Average + g.Band.Above
}

// interpolate lerps when both sides are finite, takes the finite side when
// only one is, and yields NaN otherwise.
func interpolate(a, b, r float64) float64 {
	aOK, bOK := core.IsFinite(a), core.IsFinite(b)
	switch {
	case aOK && bOK:
		return core.Lerp(a, b, r)
	case aOK:
		return a
	case bOK:
		return b
	default:
		return math.NaN()
	}
}
