package models

import "encoding/json"

// MSleepReport is the nightly report payload served by the dashboard back end.
// Record-shaped sections keep their raw form because field names differ
// between producers; analysis.ParseSamples resolves the aliases.
type MSleepReport struct {
	Date                      string            `json:"date"`
	SleepStartTime            string            `json:"sleep_start_time"`
	SleepEndTime              string            `json:"sleep_end_time"`
	SleepTime                 string            `json:"sleep_time,omitempty"`
	WakeTime                  string            `json:"wake_time,omitempty"`
	SleepScore                *float64          `json:"sleep_score,omitempty"`
	TotalSleepDurationMinutes *float64          `json:"total_sleep_duration_minutes,omitempty"`
	SleepAwakeMinutes         *float64          `json:"sleep_awake_minutes,omitempty"`
	BPMAverage                MSeries           `json:"bpm_average"`
	BPMMin                    MSeries           `json:"bpm_min"`
	BPMMax                    MSeries           `json:"bpm_max"`
	BPMPer10Min               MSeries           `json:"bpm_per_10min"`
	TossAndTurnTimes          []json.RawMessage `json:"toss_and_turn_times"`
	Breathing                 *MBreathing       `json:"breathing,omitempty"`
	Rustle                    *MRustle          `json:"rustle,omitempty"`
	SleepStages               []map[string]any  `json:"sleep_stages,omitempty"`
}

// MBreathing is the respiration section of a report.
type MBreathing struct {
	AverageBPM     *float64          `json:"average_bpm,omitempty"`
	Records        []map[string]any  `json:"records"`
	UnbreathEvents []json.RawMessage `json:"unbreath_events"`
	Score          *float64          `json:"score,omitempty"`
	AverageScore   *float64          `json:"average_score,omitempty"`
}

// MRustle is the motion (toss-and-turn) section of a report.
type MRustle struct {
	Records    []json.RawMessage `json:"records"`
	TotalCount *float64          `json:"total_count,omitempty"`
	Score      *float64          `json:"score,omitempty"`
}
