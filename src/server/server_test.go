package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"sleep-observer/src/config"
	"sleep-observer/src/helpers"
	"sleep-observer/src/livefeed"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"
	"sleep-observer/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportBody = `{
	"sleep_start_time": "2025-10-08T23:00:00Z",
	"sleep_end_time": "2025-10-08T23:30:00Z",
	"bpm_average": [60, 70],
	"toss_and_turn_times": ["2025-10-08T23:14:00Z"],
	"rustle": {"records": [], "total_count": 3, "score": 90}
}`

type memoryPrefs struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memoryPrefs) Initialize() error { return nil }
func (m *memoryPrefs) Close() error      { return nil }

func (m *memoryPrefs) GetPreference(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryPrefs) SetPreference(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryPrefs) DeletePreference(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type stubReports struct {
	report *models.MSleepReport
	err    error
}

func (s stubReports) FetchSleepReport(_ context.Context, date string) (*models.MSleepReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := *s.report
	r.Date = date
	return &r, nil
}

var fixedNow = time.Date(2025, 10, 9, 7, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts Options) *DashboardServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg, err := config.Parse([]byte("port: 8088\nhistory_size: 4\n"))
	require.NoError(t, err)
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.NewRegistry()
	}
	opts.Now = func() time.Time { return fixedNow }
	s := NewDashboardServer(cfg.MConfig, logger.NewLoggerWithWriter(nil, "Server", io.Discard), opts)
	t.Cleanup(func() { s.Stop() })
	return s
}

func do(t *testing.T, s *DashboardServer, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthReportsFeedState(t *testing.T) {
	s := newTestServer(t, Options{FeedState: func() livefeed.State {
		return livefeed.State{Status: livefeed.StatusReconnecting, Attempt: 2}
	}})

	w := do(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","connections":0,"latest_update":"2025-10-09T07:00:00Z","feed":{"status":"reconnecting","attempt":2}}`, w.Body.String())
}

func TestEnvironmentServesDefaultsWithGrades(t *testing.T) {
	s := newTestServer(t, Options{})

	w := do(t, s, http.MethodGet, "/api/env", "")
	require.Equal(t, http.StatusOK, w.Code)

	var msg models.MEnvironmentMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, 28.0, *msg.Snapshot.Temperature)
	assert.Nil(t, msg.Snapshot.Curtain)
	assert.Equal(t, "hazardous", msg.Grades.AirQuality)
	assert.Equal(t, "moderate", msg.Grades.PM25)
}

func TestApplyPatchUpdatesSnapshotAndHistory(t *testing.T) {
	s := newTestServer(t, Options{})

	assert.True(t, s.ApplyPatch([]byte(`{"air_quality": 42, "curtain": "on"}`)))
	assert.False(t, s.ApplyPatch([]byte(`{"air_quality": 42}`)), "no change")
	assert.False(t, s.ApplyPatch([]byte(`garbage`)))

	var msg models.MEnvironmentMessage
	require.NoError(t, json.Unmarshal(do(t, s, http.MethodGet, "/api/env", "").Body.Bytes(), &msg))
	assert.Equal(t, 42.0, *msg.Snapshot.AirQuality)
	assert.Equal(t, "on", *msg.Snapshot.Curtain)
	assert.Equal(t, "good", msg.Grades.AirQuality)

	w := do(t, s, http.MethodGet, "/api/env/history?n=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	var hist struct {
		Records []models.MSnapshotRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	require.Len(t, hist.Records, 1)
	assert.Equal(t, 42.0, *hist.Records[0].Snapshot.AirQuality)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/env/history?n=-1", "").Code)
}

func TestApplyPatchKeepsConcurrentFeedUpdates(t *testing.T) {
	const rounds = 2000
	history := utils.NewSnapshotHistory(2 * rounds)
	s := newTestServer(t, Options{History: history})
	zero := 0.0
	s.SetSnapshot(models.MEnvironmentSnapshot{Temperature: &zero})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= rounds; i++ {
			temp := float64(i)
			s.SetSnapshot(models.MEnvironmentSnapshot{Temperature: &temp})
		}
	}()
	go func() {
		defer wg.Done()
		for j := 1; j <= rounds; j++ {
			s.ApplyPatch([]byte(fmt.Sprintf(`{"pm_10": %d}`, j)))
		}
	}()
	wg.Wait()

	// Feed temperatures only ever rise, so a drop means a patch wrote a stale base
	last := 0.0
	for _, rec := range history.GetAll() {
		if rec.Snapshot.Temperature == nil {
			continue
		}
		require.GreaterOrEqual(t, *rec.Snapshot.Temperature, last)
		last = *rec.Snapshot.Temperature
	}
	assert.Equal(t, float64(rounds), last)
}

func TestChartEndpoints(t *testing.T) {
	s := newTestServer(t, Options{})

	w := do(t, s, http.MethodPost, "/api/charts/heart-rate", reportBody)
	require.Equal(t, http.StatusOK, w.Code)
	var hr models.MHeartRateChart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hr))
	assert.Equal(t, []float64{60, 65, 70}, hr.Average)

	w = do(t, s, http.MethodPost, "/api/charts/toss", reportBody)
	require.Equal(t, http.StatusOK, w.Code)
	var toss models.MTossTrack
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toss))
	assert.Equal(t, 3, toss.Count)
	assert.Equal(t, "good", toss.Tone)

	for _, path := range []string{"/api/charts/respiration", "/api/charts/stages", "/api/charts/all"} {
		assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, path, reportBody).Code, path)
	}

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/charts/heart-rate", "{").Code)
}

func TestReportCharts(t *testing.T) {
	var report models.MSleepReport
	require.NoError(t, json.Unmarshal([]byte(reportBody), &report))

	s := newTestServer(t, Options{Reports: stubReports{report: &report}})
	w := do(t, s, http.MethodGet, "/api/reports/2025-10-09/charts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var charts models.MReportCharts
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &charts))
	assert.Equal(t, "2025-10-09", charts.Date)

	s = newTestServer(t, Options{Reports: stubReports{err: helpers.NewNetworkError("bad status: 503", nil)}})
	assert.Equal(t, http.StatusBadGateway, do(t, s, http.MethodGet, "/api/reports/2025-10-09/charts", "").Code)

	s = newTestServer(t, Options{})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/api/reports/2025-10-09/charts", "").Code)
}

func TestPreferenceEndpoints(t *testing.T) {
	s := newTestServer(t, Options{Preferences: &memoryPrefs{values: map[string]string{}}})

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/preferences/feed_url", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, "/api/preferences/feed_url", `{"value":"http://hub/env"}`).Code)

	w := do(t, s, http.MethodPut, "/api/preferences/feed_url", `{"value":" ws://hub.local:8765/env "}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/preferences/feed_url", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"key":"feed_url","value":"ws://hub.local:8765/env"}`, w.Body.String())

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/preferences/feed_url", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/preferences/feed_url", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	livefeed.NewMetrics(reg).Merged()
	s := newTestServer(t, Options{Gatherer: reg})

	w := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "livefeed_messages_merged_total 1")
}

func TestWebsocketPushesSnapshots(t *testing.T) {
	s := newTestServer(t, Options{})
	s.StartHub()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg models.MEnvironmentMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "snapshot", msg.Type)

	// The hub registers the client before the first frame is written.
	s.SetSnapshot(models.MEnvironmentSnapshot{Temperature: models.Float(19)})
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "update", msg.Type)
	assert.Equal(t, 19.0, *msg.Snapshot.Temperature)

	require.NoError(t, conn.WriteJSON(models.MClientCommand{Command: "refresh"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "snapshot", msg.Type)
	assert.Equal(t, 19.0, *msg.Snapshot.Temperature)
}
