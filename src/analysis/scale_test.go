package analysis

import (
	"math"
	"testing"
	"time"

	"sleep-observer/src/models"

	"github.com/stretchr/testify/assert"
)

var heartRateFallback = models.MDomain{Min: 40, Max: 120}

func TestNewLinearScale(t *testing.T) {
	s := NewLinearScale([]float64{55, math.NaN(), 70, 62}, 5, heartRateFallback)
	assert.Equal(t, LinearScale{Min: 50, Max: 75}, s)

	s = NewLinearScale([]float64{math.NaN(), math.Inf(-1)}, 5, heartRateFallback)
	assert.Equal(t, LinearScale{Min: 40, Max: 120}, s)
}

func TestToPixelInvertsAxis(t *testing.T) {
	s := LinearScale{Min: 50, Max: 100}
	assert.Equal(t, 10.0, s.ToPixel(100, 10, 160))
	assert.Equal(t, 170.0, s.ToPixel(50, 10, 160))
	assert.Equal(t, 90.0, s.ToPixel(75, 10, 160))
}

func TestToPixelDegenerateDomain(t *testing.T) {
	s := LinearScale{Min: 60, Max: 60}
	assert.Equal(t, 90.0, s.ToPixel(60, 10, 160))
}

func TestRounded(t *testing.T) {
	assert.Equal(t, LinearScale{Min: 0, Max: 19}, LinearScale{Min: -0.4, Max: 18.2}.Rounded(true))
	assert.Equal(t, LinearScale{Min: 11, Max: 19}, LinearScale{Min: 11.7, Max: 18.2}.Rounded(true))
	assert.Equal(t, LinearScale{Min: -1, Max: 2}, LinearScale{Min: -0.4, Max: 1.5}.Rounded(false))
}

func TestIndexToX(t *testing.T) {
	assert.Equal(t, 28.0, IndexToX(0, 1, 28, 562))
	assert.Equal(t, 28.0, IndexToX(0, 3, 28, 562))
	assert.Equal(t, 309.0, IndexToX(1, 3, 28, 562))
	assert.Equal(t, 590.0, IndexToX(2, 3, 28, 562))
}

func TestTimeToX(t *testing.T) {
	t1 := night.Add(time.Hour)
	assert.Equal(t, 40.0, TimeToX(night, night, t1, 40, 100))
	assert.Equal(t, 90.0, TimeToX(night.Add(30*time.Minute), night, t1, 40, 100))
	assert.Equal(t, 340.0, TimeToX(night.Add(3*time.Hour), night, t1, 40, 100))
	assert.Equal(t, 140.0, ClampedTimeToX(night.Add(3*time.Hour), night, t1, 40, 100))
	assert.Equal(t, 40.0, TimeToX(t1, night, night, 40, 100))
}
