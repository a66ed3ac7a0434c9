package core

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// -----------------------------------------------------------------------------

// FiniteValues returns the finite subset of data in order.
func FiniteValues(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if IsFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// FiniteExtent returns the min and max of the finite values in data.
// ok is false when there are none.
func FiniteExtent(data []float64) (lo, hi float64, ok bool) {
	finite := FiniteValues(data)
	if len(finite) == 0 {
		return 0, 0, false
	}
	return floats.Min(finite), floats.Max(finite), true
}

// -----------------------------------------------------------------------------

// Mean computes the arithmetic mean, 0 for empty input.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Sum(data) / float64(len(data))
}

// -----------------------------------------------------------------------------

// FiniteMean averages the finite values in data; NaN when there are none.
func FiniteMean(data []float64) float64 {
	finite := FiniteValues(data)
	if len(finite) == 0 {
		return math.NaN()
	}
	return Mean(finite)
}
