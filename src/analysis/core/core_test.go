package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUp(t *testing.T) {
	cases := map[float64]float64{
		13.333: 13,
		16.666: 17,
		2.5:    3,
		-2.5:   -2,
		-2.6:   -3,
		0:      0,
	}
	for in, want := range cases {
		assert.Equal(t, want, RoundHalfUp(in), "RoundHalfUp(%v)", in)
	}
}

func TestLerpAndClamp(t *testing.T) {
	assert.Equal(t, 15.0, Lerp(10, 20, 0.5))
	assert.Equal(t, 10.0, Lerp(10, 20, 0))
	assert.Equal(t, 1.0, Clamp(3, 0, 1))
	assert.Equal(t, 0.0, Clamp(-1, 0, 1))
	assert.Equal(t, 4, ClampInt(9, 0, 4))
	assert.Equal(t, 0, ClampInt(-3, 0, 4))
}

func TestCoerce(t *testing.T) {
	for _, tc := range []struct {
		in   any
		want float64
		ok   bool
	}{
		{float64(61), 61, true},
		{"72.5", 72.5, true},
		{" 14 ", 14, true},
		{json.Number("3"), 3, true},
		{"abc", 0, false},
		{nil, 0, false},
		{true, 0, false},
		{math.NaN(), 0, false},
		{"Inf", 0, false},
	} {
		got, ok := Coerce(tc.in)
		assert.Equal(t, tc.ok, ok, "Coerce(%v)", tc.in)
		assert.Equal(t, tc.want, got, "Coerce(%v)", tc.in)
	}
	assert.Equal(t, 0.0, CoerceOrZero(map[string]any{}))
}

func TestFiniteExtent(t *testing.T) {
	lo, hi, ok := FiniteExtent([]float64{math.NaN(), 55, 71, math.Inf(1), 48})
	assert.True(t, ok)
	assert.Equal(t, 48.0, lo)
	assert.Equal(t, 71.0, hi)

	_, _, ok = FiniteExtent([]float64{math.NaN()})
	assert.False(t, ok)
}

func TestMeans(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 15.0, FiniteMean([]float64{10, math.NaN(), 20}))
	assert.True(t, math.IsNaN(FiniteMean(nil)))
}
