package models

import "time"

// MEnvironmentSnapshot is the latest known ambient state. Every field is
// optional; a nil field means the value has never been reported.
type MEnvironmentSnapshot struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Curtain     *string  `json:"curtain"`
	AirQuality  *float64 `json:"air_quality"`
	PM10        *float64 `json:"pm_10"`
	PM25        *float64 `json:"pm_2_5"`
}

// Clone returns a deep copy so callers never share pointers with the owner.
func (s MEnvironmentSnapshot) Clone() MEnvironmentSnapshot {
	return MEnvironmentSnapshot{
		Temperature: copyFloat(s.Temperature),
		Humidity:    copyFloat(s.Humidity),
		Curtain:     copyString(s.Curtain),
		AirQuality:  copyFloat(s.AirQuality),
		PM10:        copyFloat(s.PM10),
		PM25:        copyFloat(s.PM25),
	}
}

// NewSnapshotFromDefaults seeds a snapshot from configured defaults.
func NewSnapshotFromDefaults(d MEnvironmentDefaults) MEnvironmentSnapshot {
	return MEnvironmentSnapshot{
		Temperature: copyFloat(d.Temperature),
		Humidity:    copyFloat(d.Humidity),
		Curtain:     copyString(d.Curtain),
		AirQuality:  copyFloat(d.AirQuality),
		PM10:        copyFloat(d.PM10),
		PM25:        copyFloat(d.PM25),
	}
}

// MSnapshotRecord is a snapshot stamped with the time it became current.
type MSnapshotRecord struct {
	At       time.Time            `json:"at"`
	Snapshot MEnvironmentSnapshot `json:"snapshot"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// MEnvironmentGrades are the qualitative labels shown next to the readings.
type MEnvironmentGrades struct {
	AirQuality string `json:"air_quality"`
	PM25       string `json:"pm_2_5"`
}

// MEnvironmentMessage is what dashboard clients receive over HTTP and websocket.
type MEnvironmentMessage struct {
	Type     string               `json:"type"`
	At       time.Time            `json:"at"`
	Snapshot MEnvironmentSnapshot `json:"snapshot"`
	Grades   MEnvironmentGrades   `json:"grades"`
}

// MClientCommand is sent by websocket clients.
type MClientCommand struct {
	Command string `json:"command"`
}
