package config

import (
	"os"
	"path/filepath"
	"testing"

	"sleep-observer/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
port: 8088
`

func TestParseAppliesDashboardDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "sleep-observer", cfg.Name)
	assert.Equal(t, "sqlite", cfg.Storage.DBType)
	assert.Equal(t, DefaultFeedEnvVar, cfg.Feed.EnvVar)
	assert.Equal(t, 10, cfg.Charts.StepMinutes)
	assert.Equal(t, 3, cfg.Charts.SmoothingWindow)
	assert.Equal(t, 1.0, *cfg.Charts.BandBelow)
	assert.Equal(t, 1.0, *cfg.Charts.BandAbove)
	assert.Equal(t, 28.0, *cfg.Feed.Defaults.Temperature)
	assert.Equal(t, 350.0, *cfg.Feed.Defaults.AirQuality)
	assert.Nil(t, cfg.Feed.Defaults.Curtain)
	assert.Equal(t, 600.0, cfg.Charts.HeartRate.Width)
	assert.Equal(t, 40.0, cfg.Charts.HeartRate.FallbackMin)
	assert.Equal(t, 120.0, cfg.Charts.HeartRate.FallbackMax)
}

func TestParseKeepsExplicitValues(t *testing.T) {
	cfg, err := Parse([]byte(`
port: 9000
charts:
  step_minutes: 5
  band_below: 0.5
feed:
  url: ws://hub.local:8765/env
  defaults:
    temperature: 22
    curtain: "off"
`))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Charts.StepMinutes)
	assert.Equal(t, 0.5, *cfg.Charts.BandBelow)
	assert.Equal(t, 1.0, *cfg.Charts.BandAbove)
	assert.Equal(t, 22.0, *cfg.Feed.Defaults.Temperature)
	assert.Equal(t, "off", *cfg.Feed.Defaults.Curtain)
	assert.Equal(t, "ws://hub.local:8765/env", cfg.Feed.URL)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"privileged port":  "port: 80\n",
		"http feed url":    "port: 8088\nfeed:\n  url: http://example.com\n",
		"postgres no dsn":  "port: 8088\nstorage:\n  db_type: postgres\n",
		"unknown db":       "port: 8088\nstorage:\n  db_type: mongo\n",
		"bad curtain":      "port: 8088\nfeed:\n  defaults:\n    curtain: half\n",
		"sensor no broker": "port: 8088\nsensors:\n  - name: bedroom\n",
		"negative window":  "port: 8088\ncharts:\n  smoothing_window: -1\n",
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(yml))
			require.Error(t, err)
			var cfgErr *helpers.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("port: [unterminated"))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)
	cfg.Feed.URL = "wss://feed.example/env"
	require.NoError(t, cfg.Save(path))

	loaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "wss://feed.example/env", loaded.Feed.URL)
	assert.Equal(t, cfg.Charts.Respiration, loaded.Charts.Respiration)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
