package livefeed

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks feed health. A nil *Metrics is valid and records nothing.
type Metrics struct {
	merged     prometheus.Counter
	dropped    prometheus.Counter
	reconnects prometheus.Counter
	attempt    prometheus.Gauge
	status     *prometheus.GaugeVec
}

// NewMetrics registers the feed collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		merged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livefeed_messages_merged_total",
			Help: "Wire messages merged into the environment snapshot.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livefeed_messages_dropped_total",
			Help: "Malformed or non-object wire messages discarded.",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livefeed_reconnects_scheduled_total",
			Help: "Reconnect timers armed after an unexpected close.",
		}),
		attempt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "livefeed_backoff_attempt",
			Help: "Current backoff attempt (0 while connected).",
		}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "livefeed_status",
			Help: "1 for the current connection status, 0 otherwise.",
		}, []string{"status"}),
	}

	reg.MustRegister(m.merged, m.dropped, m.reconnects, m.attempt, m.status)
	return m
}

func (m *Metrics) Merged() {
	if m == nil {
		return
	}
	m.merged.Inc()
}

func (m *Metrics) Dropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

func (m *Metrics) ReconnectScheduled() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) Observe(s State) {
	if m == nil {
		return
	}
	m.attempt.Set(float64(s.Attempt))
	for _, st := range []Status{StatusIdle, StatusConnecting, StatusOpen, StatusReconnecting, StatusClosed} {
		v := 0.0
		if st == s.Status {
			v = 1
		}
		m.status.WithLabelValues(st.String()).Set(v)
	}
}
