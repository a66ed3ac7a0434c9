package livefeed

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"sleep-observer/src/analysis/core"
	"sleep-observer/src/models"
)

// Wire field names of the environment feed.
const (
	FieldTemperature = "temperature"
	FieldHumidity    = "humidity"
	FieldCurtain     = "curtain"
	FieldAirQuality  = "air_quality"
	FieldPM10        = "pm_10"
	FieldPM25        = "pm_2_5"
)

// MergeSnapshot applies a wire message to prior and returns the result.
// ok is false when the payload is not a JSON object; prior is then returned
// unchanged. Absent and null fields keep their prior value, as do fields whose
// value has the wrong type. Unknown fields are ignored. prior is never mutated.
func MergeSnapshot(prior models.MEnvironmentSnapshot, payload []byte) (next models.MEnvironmentSnapshot, changed bool, ok bool) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return prior, false, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return prior, false, false
	}

	next = prior.Clone()
	changed = mergeNumber(&next.Temperature, fields[FieldTemperature]) || changed
	changed = mergeNumber(&next.Humidity, fields[FieldHumidity]) || changed
	changed = mergeString(&next.Curtain, fields[FieldCurtain]) || changed
	changed = mergeNumber(&next.AirQuality, fields[FieldAirQuality]) || changed
	changed = mergeNumber(&next.PM10, fields[FieldPM10]) || changed
	changed = mergeNumber(&next.PM25, fields[FieldPM25]) || changed
	return next, changed, true
}

func mergeNumber(dst **float64, raw json.RawMessage) bool {
	v, ok := decodeNumber(raw)
	if !ok {
		return false
	}
	if *dst != nil && **dst == v {
		return false
	}
	*dst = &v
	return true
}

func mergeString(dst **string, raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return false
	}
	if *dst != nil && **dst == *s {
		return false
	}
	v := *s
	*dst = &v
	return true
}

func decodeNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n *float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == nil || !core.IsFinite(*n) {
			return 0, false
		}
		return *n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !core.IsFinite(v) {
		return 0, false
	}
	return v, true
}
