package analysis

import "sleep-observer/src/analysis/core"

// Grade labels shared by the environment card and the report panels.
const (
	GradeUnknown   = "unknown"
	GradeGood      = "good"
	GradeModerate  = "moderate"
	GradeCaution   = "caution"
	GradePoor      = "poor"
	GradeVeryPoor  = "very_poor"
	GradeHazardous = "hazardous"

	ToneGood   = "good"
	ToneNormal = "normal"
	ToneBad    = "bad"
)

// AirQualityGrade buckets a US AQI reading.
func AirQualityGrade(aqi *float64) string {
	if aqi == nil || !core.IsFinite(*aqi) {
		return GradeUnknown
	}
	switch v := *aqi; {
	case v <= 50:
		return GradeGood
	case v <= 100:
		return GradeModerate
	case v <= 150:
		return GradeCaution
	case v <= 200:
		return GradePoor
	case v <= 300:
		return GradeVeryPoor
	default:
		return GradeHazardous
	}
}

// PM25Grade buckets a fine-dust concentration in µg/m³.
func PM25Grade(pm *float64) string {
	if pm == nil || !core.IsFinite(*pm) {
		return GradeUnknown
	}
	switch v := *pm; {
	case v <= 15:
		return GradeGood
	case v <= 35:
		return GradeModerate
	default:
		return GradePoor
	}
}

// ScoreTone labels a 0-100 score; missing scores read as normal.
func ScoreTone(score *float64) string {
	if score == nil || !core.IsFinite(*score) {
		return ToneNormal
	}
	switch {
	case *score >= 80:
		return ToneGood
	case *score >= 50:
		return ToneNormal
	default:
		return ToneBad
	}
}
