package main

import (
	"os"
	"path/filepath"
	"testing"

	"sleep-observer/src/analysis"
	"sleep-observer/src/config"
	"sleep-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAndRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "night.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"sleep_start_time": "2025-10-08T23:00:00Z",
		"sleep_end_time": "2025-10-08T23:30:00Z",
		"bpm_average": [60, 70]
	}`), 0o644))

	report, err := decodeReport(path)
	require.NoError(t, err)

	cfg, err := config.Parse([]byte("port: 8088\n"))
	require.NoError(t, err)
	charts := analysis.NewChartFacade(cfg.MConfig, nil)

	out, err := render(charts, report, "heart-rate")
	require.NoError(t, err)
	assert.Equal(t, []float64{60, 65, 70}, out.(models.MHeartRateChart).Average)

	_, err = render(charts, report, "pie")
	assert.Error(t, err)
}

func TestLoadReportNeedsOneSource(t *testing.T) {
	cfg, err := config.Parse([]byte("port: 8088\n"))
	require.NoError(t, err)

	_, err = loadReport(cfg.MConfig, "", "", nil)
	assert.Error(t, err)
	_, err = loadReport(cfg.MConfig, "a.json", "2025-10-09", nil)
	assert.Error(t, err)
}
