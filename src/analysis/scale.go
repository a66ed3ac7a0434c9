package analysis

import (
	"math"
	"time"

	"sleep-observer/src/analysis/core"
	"sleep-observer/src/models"
)

// LinearScale maps a value domain onto a vertical pixel range.
type LinearScale struct {
	Min float64
	Max float64
}

// -----------------------------------------------------------------------------

// NewLinearScale pads the finite extent of values by margin on both sides.
// With no finite values the fallback domain is used as is.
func NewLinearScale(values []float64, margin float64, fallback models.MDomain) LinearScale {
	lo, hi, ok := core.FiniteExtent(values)
	if !ok {
		return LinearScale{Min: fallback.Min, Max: fallback.Max}
	}
	return LinearScale{Min: lo - margin, Max: hi + margin}
}

// -----------------------------------------------------------------------------

// ToPixel inverts the axis so larger values render higher. A degenerate
// domain maps everything to the vertical centre.
func (s LinearScale) ToPixel(v, paddingStart, plotExtent float64) float64 {
	span := s.Max - s.Min
	if span == 0 || !core.IsFinite(span) {
		return paddingStart + plotExtent/2
	}
	return paddingStart + (1-(v-s.Min)/span)*plotExtent
}

// Rounded snaps the domain outward to whole numbers. nonNegative clamps the
// lower bound at zero.
func (s LinearScale) Rounded(nonNegative bool) LinearScale {
	out := LinearScale{Min: math.Floor(s.Min), Max: math.Ceil(s.Max)}
	if nonNegative && out.Min < 0 {
		out.Min = 0
	}
	return out
}

// Clamp bounds v to the domain.
func (s LinearScale) Clamp(v float64) float64 {
	return core.Clamp(v, s.Min, s.Max)
}

// Domain exposes the scale bounds for rendering.
func (s LinearScale) Domain() models.MDomain {
	return models.MDomain{Min: s.Min, Max: s.Max}
}

// -----------------------------------------------------------------------------

// IndexToX spaces n indices evenly across plotWidth.
func IndexToX(i, n int, paddingLeft, plotWidth float64) float64 {
	if n <= 1 {
		return paddingLeft
	}
	return paddingLeft + float64(i)*(plotWidth/float64(n-1))
}

// TimeToX maps t linearly between t0 and t1. Instants outside the range land
// outside the plot.
func TimeToX(t, t0, t1 time.Time, paddingLeft, plotWidth float64) float64 {
	if !t1.After(t0) {
		return paddingLeft
	}
	return paddingLeft + float64(t.Sub(t0))/float64(t1.Sub(t0))*plotWidth
}

// ClampedTimeToX is TimeToX pinned to the plot edges.
func ClampedTimeToX(t, t0, t1 time.Time, paddingLeft, plotWidth float64) float64 {
	if !t1.After(t0) {
		return paddingLeft
	}
	p := core.Clamp(float64(t.Sub(t0))/float64(t1.Sub(t0)), 0, 1)
	return paddingLeft + p*plotWidth
}
