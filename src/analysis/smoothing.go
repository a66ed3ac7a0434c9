package analysis

import (
	"sleep-observer/src/analysis/core"
	"sleep-observer/src/models"
)

// DefaultSmoothingWindow is the moving-average width used by the respiration line.
const DefaultSmoothingWindow = 3

// -----------------------------------------------------------------------------

// Smooth is a causal moving average over bucket averages. Each output averages
// the finite values in [i-window+1, i]; the window shrinks near the start and
// never looks ahead.
func Smooth(grid []models.MBucket, window int) []models.MSmoothPoint {
	if window < 1 {
		window = 1
	}
	out := make([]models.MSmoothPoint, len(grid))
	vals := make([]float64, len(grid))
	for i, b := range grid {
		vals[i] = b.Average
	}
	for i, b := range grid {
		start := max(0, i-window+1)
		out[i] = models.MSmoothPoint{
			Timestamp: b.StartTime,
			Value:     core.FiniteMean(vals[start : i+1]),
		}
	}
	return out
}
