package analysis

import (
	"math"
	"time"

	"sleep-observer/src/analysis/core"
)

// TimeSeriesResampler stretches or compresses fixed-length series.
type TimeSeriesResampler struct{}

// -----------------------------------------------------------------------------

// Resample maps source onto targetLength buckets by linear interpolation,
// rounding every output half-up to an integer. Equal lengths return a plain
// copy of source, so non-finite values pass through uncoerced.
func (r *TimeSeriesResampler) Resample(source []float64, targetLength int) []float64 {
	// 1. Degenerate targets and sources
	if targetLength <= 0 {
		return []float64{}
	}
	out := make([]float64, targetLength)
	n := len(source)
	if n == 0 {
		return out
	}
	if n == targetLength {
		copy(out, source)
		return out
	}
	if targetLength == 1 {
		out[0] = finiteOrZero(source[0])
		return out
	}

	// 2. Fractional source position per output index
	for i := 0; i < targetLength; i++ {
		pos := float64(i) * float64(n-1) / float64(targetLength-1)
		lo := int(math.Floor(pos))
		hi := lo + 1
		if hi > n-1 {
			hi = n - 1
		}
		out[i] = core.RoundHalfUp(core.Lerp(source[lo], source[hi], pos-float64(lo)))
	}
	return out
}

// -----------------------------------------------------------------------------

// Resample is a convenience wrapper around TimeSeriesResampler.
func Resample(source []float64, targetLength int) []float64 {
	var r TimeSeriesResampler
	return r.Resample(source, targetLength)
}

// -----------------------------------------------------------------------------

// BucketCount is the number of step-wide buckets covering [start, end], at
// least one. Without both bounds it falls back to fallback.
func BucketCount(start, end *time.Time, step time.Duration, fallback int) int {
	if start == nil || end == nil {
		return fallback
	}
	if step <= 0 {
		step = DefaultStep
	}
	duration := max(0, end.Sub(*start))
	return max(1, int(core.RoundHalfUp(float64(duration)/float64(step))))
}

func finiteOrZero(v float64) float64 {
	if core.IsFinite(v) {
		return v
	}
	return 0
}
