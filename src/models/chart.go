package models

import "time"

// MPoint is a pixel coordinate.
type MPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MRangeBar is a vertical min-max band at one x position.
type MRangeBar struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MDomain is the value range mapped onto a chart's vertical axis.
type MDomain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MHeartRateChart is the overnight heart-rate panel.
type MHeartRateChart struct {
	Buckets     int         `json:"buckets"`
	Average     []float64   `json:"average"`
	Min         []float64   `json:"min"`
	Max         []float64   `json:"max"`
	Domain      MDomain     `json:"domain"`
	AveragePath []MPoint    `json:"average_path"`
	Ranges      []MRangeBar `json:"ranges"`
	TossMarkers []float64   `json:"toss_markers"`
}

// MRespirationChart is the breathing-rate panel with apnea markers.
type MRespirationChart struct {
	Start        *time.Time  `json:"start,omitempty"`
	End          *time.Time  `json:"end,omitempty"`
	Grid         []MBucket   `json:"grid"`
	Smoothed     []MPoint    `json:"smoothed"`
	Bars         []MRangeBar `json:"bars"`
	Domain       MDomain     `json:"domain"`
	ApneaMarkers []float64   `json:"apnea_markers"`
	ApneaCount   int         `json:"apnea_count"`
	AverageBPM   *float64    `json:"average_bpm,omitempty"`
	Score        *float64    `json:"score,omitempty"`
	ScoreTone    string      `json:"score_tone,omitempty"`
}

// MTossTrack is the toss-and-turn strip: event positions as fractions of the night.
type MTossTrack struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Positions []float64 `json:"positions"`
	Count     int       `json:"count"`
	Tone      string    `json:"tone"`
}

// MStageBlock is one contiguous sleep-stage span on the hypnogram.
type MStageBlock struct {
	Stage  string    `json:"stage"`
	Row    int       `json:"row"`
	Start  time.Time `json:"start"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
}

// MStageTimeline is the sleep-depth chart.
type MStageTimeline struct {
	Start  *time.Time    `json:"start,omitempty"`
	End    *time.Time    `json:"end,omitempty"`
	Blocks []MStageBlock `json:"blocks"`
	Ticks  []time.Time   `json:"ticks"`
}

// MReportCharts bundles every chart derived from one report.
type MReportCharts struct {
	Date        string            `json:"date"`
	HeartRate   MHeartRateChart   `json:"heart_rate"`
	Respiration MRespirationChart `json:"respiration"`
	Toss        MTossTrack        `json:"toss"`
	Stages      MStageTimeline    `json:"stages"`
}
