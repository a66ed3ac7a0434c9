package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestResampleKnownValues(t *testing.T) {
	cases := []struct {
		name   string
		source []float64
		target int
		want   []float64
	}{
		{"stretch", []float64{10, 20}, 4, []float64{10, 13, 17, 20}},
		{"empty source", nil, 5, []float64{0, 0, 0, 0, 0}},
		{"identity", []float64{60, 61.5, 59}, 3, []float64{60, 61.5, 59}},
		{"single target", []float64{72, 80}, 1, []float64{72}},
		{"compress", []float64{0, 10, 20, 30, 40}, 3, []float64{0, 20, 40}},
		{"zero target", []float64{1, 2}, 0, []float64{}},
		{"negative target", []float64{1, 2}, -3, []float64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resample(tc.source, tc.target)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Resample mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResampleLengthAndBounds(t *testing.T) {
	source := []float64{48, 50, 55, 61, 70, 71, 90}
	for target := 1; target <= 40; target++ {
		got := Resample(source, target)
		assert.Len(t, got, target)
		for _, v := range got {
			assert.GreaterOrEqual(t, v, 48.0)
			assert.LessOrEqual(t, v, 90.0)
		}
	}
}

func TestResampleDoesNotAliasSource(t *testing.T) {
	source := []float64{1, 2, 3}
	got := Resample(source, 3)
	got[0] = 99
	assert.Equal(t, 1.0, source[0])
}

func TestResampleNonFiniteOnlyCoercedOffIdentity(t *testing.T) {
	same := Resample([]float64{math.NaN(), 5}, 2)
	assert.True(t, math.IsNaN(same[0]))
	assert.Equal(t, []float64{0}, Resample([]float64{math.Inf(1), 5}, 1))
}

func TestResampleIsIdempotent(t *testing.T) {
	source := []float64{58, 64, 61, 57}
	assert.Equal(t, Resample(source, 11), Resample(source, 11))
}

func TestBucketCount(t *testing.T) {
	start := time.Date(2025, 10, 8, 23, 0, 0, 0, time.UTC)
	end := start.Add(7 * time.Hour)
	same := start

	assert.Equal(t, 42, BucketCount(&start, &end, 10*time.Minute, 5))
	assert.Equal(t, 1, BucketCount(&start, &same, 10*time.Minute, 5))
	assert.Equal(t, 5, BucketCount(&start, nil, 10*time.Minute, 5))
	assert.Equal(t, 42, BucketCount(&start, &end, 0, 5))
}
