package mqtt

import (
	"encoding/json"
	"strings"

	"sleep-observer/src/analysis/core"
)

// Device topics published by the bedroom hub.
const (
	TopicAirCondition = "sensor/aircondition"
	TopicAirPurifier  = "sensor/air_purifier"
	TopicCurtain      = "sensor/smart_curtain"
)

// DefaultTopics are subscribed when a sensor lists none.
var DefaultTopics = []string{TopicAirCondition, TopicAirPurifier, TopicCurtain}

// -----------------------------------------------------------------------------

// TranslateSensorMessage turns a device reading into a live-feed wire patch.
// ok is false when the topic is unknown or the reading carries nothing usable.
func TranslateSensorMessage(topic string, payload []byte) ([]byte, bool) {
	var reading map[string]any
	if err := json.Unmarshal(payload, &reading); err != nil || reading == nil {
		return nil, false
	}

	patch := make(map[string]any)
	copyNumber := func(from, to string) {
		if v, ok := core.Coerce(reading[from]); ok {
			patch[to] = v
		}
	}

	switch topicKind(topic) {
	case TopicAirCondition:
		copyNumber("temperature", "temperature")
		copyNumber("humidity", "humidity")
	case TopicAirPurifier:
		copyNumber("pm_2_5", "pm_2_5")
		copyNumber("pm_10", "pm_10")
		copyNumber("aqi", "air_quality")
	case TopicCurtain:
		switch v := reading["power"].(type) {
		case string:
			patch["curtain"] = strings.ToLower(strings.TrimSpace(v))
		case bool:
			if v {
				patch["curtain"] = "on"
			} else {
				patch["curtain"] = "off"
			}
		}
	default:
		return nil, false
	}

	if len(patch) == 0 {
		return nil, false
	}
	out, err := json.Marshal(patch)
	if err != nil {
		return nil, false
	}
	return out, true
}

// topicKind matches on the trailing path so brokers may prefix topics
// with a home or room name.
func topicKind(topic string) string {
	for _, t := range DefaultTopics {
		if topic == t || strings.HasSuffix(topic, "/"+t) {
			return t
		}
	}
	return ""
}
