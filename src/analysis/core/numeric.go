package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// -----------------------------------------------------------------------------

// Lerp interpolates between a and b at fraction t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// -----------------------------------------------------------------------------

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// -----------------------------------------------------------------------------

// RoundHalfUp rounds to the nearest integer, ties toward +Inf (2.5 -> 3, -2.5 -> -2).
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// -----------------------------------------------------------------------------

// Coerce converts a loosely typed JSON value to a finite number.
// Accepts numbers, json.Number and numeric strings; everything else is rejected.
func Coerce(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if !IsFinite(f) {
		return 0, false
	}
	return f, true
}

// CoerceOrZero is Coerce with 0 for anything unusable.
func CoerceOrZero(v any) float64 {
	f, _ := Coerce(v)
	return f
}
