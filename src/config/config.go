package config

import (
	"fmt"
	"os"
	"strings"

	"sleep-observer/src/helpers"
	"sleep-observer/src/models"

	"gopkg.in/yaml.v3"
)

// Chart and feed defaults taken from the dashboard this service backs.
const (
	DefaultStepMinutes     = 10
	DefaultSmoothingWindow = 3
	DefaultHistorySize     = 256
	DefaultFeedEnvVar      = "SLEEP_OBSERVER_FEED_URL"
	DefaultHandshakeSecs   = 10
	DefaultRequestTimeout  = 10
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates YAML config bytes.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every unset field with the dashboard defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "sleep-observer"
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "sleep_observer.db"
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = DefaultRequestTimeout
	}
	if c.Feed.EnvVar == "" {
		c.Feed.EnvVar = DefaultFeedEnvVar
	}
	if c.Feed.HandshakeTimeout == 0 {
		c.Feed.HandshakeTimeout = DefaultHandshakeSecs
	}
	applyEnvironmentDefaults(&c.Feed.Defaults)
	if c.HistorySize == 0 {
		c.HistorySize = DefaultHistorySize
	}

	ch := &c.Charts
	if ch.StepMinutes == 0 {
		ch.StepMinutes = DefaultStepMinutes
	}
	if ch.SmoothingWindow == 0 {
		ch.SmoothingWindow = DefaultSmoothingWindow
	}
	if ch.BandBelow == nil {
		ch.BandBelow = models.Float(1)
	}
	if ch.BandAbove == nil {
		ch.BandAbove = models.Float(1)
	}
	applyFrameDefaults(&ch.HeartRate, models.MChartFrame{
		Width: 600, Height: 200, PadLeft: 28, PadRight: 10, PadTop: 10, PadBottom: 28,
		Margin: 5, FallbackMin: 40, FallbackMax: 120,
	})
	applyFrameDefaults(&ch.Respiration, models.MChartFrame{
		Width: 540, Height: 260, PadLeft: 40, PadRight: 32, PadTop: 24, PadBottom: 44,
		Margin: 2, FallbackMin: 0, FallbackMax: 1,
	})
	applyFrameDefaults(&ch.Stages, models.MChartFrame{
		Width: 1100, Height: 420, PadLeft: 40, PadRight: 140, PadTop: 28, PadBottom: 56,
	})
}

func applyEnvironmentDefaults(d *models.MEnvironmentDefaults) {
	if d.Temperature == nil {
		d.Temperature = models.Float(28)
	}
	if d.Humidity == nil {
		d.Humidity = models.Float(50)
	}
	if d.AirQuality == nil {
		d.AirQuality = models.Float(350)
	}
	if d.PM10 == nil {
		d.PM10 = models.Float(83)
	}
	if d.PM25 == nil {
		d.PM25 = models.Float(31)
	}
}

// applyFrameDefaults replaces a frame that was left entirely unset.
func applyFrameDefaults(f *models.MChartFrame, def models.MChartFrame) {
	if f.Width == 0 && f.Height == 0 {
		*f = def
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Storage
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}

	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}

	// Feed
	if c.Feed.URL != "" && !isWebsocketURL(c.Feed.URL) {
		return fmt.Errorf("feed url must use ws:// or wss://: %s", c.Feed.URL)
	}
	if c.Feed.HandshakeTimeout < 0 {
		return fmt.Errorf("feed handshake timeout cannot be negative")
	}
	if curtain := c.Feed.Defaults.Curtain; curtain != nil && *curtain != "on" && *curtain != "off" {
		return fmt.Errorf("default curtain state must be \"on\" or \"off\", got %q", *curtain)
	}

	// Charts
	if c.Charts.StepMinutes < 0 {
		return fmt.Errorf("chart step cannot be negative")
	}
	if c.Charts.SmoothingWindow < 0 {
		return fmt.Errorf("smoothing window cannot be negative")
	}
	for name, f := range map[string]models.MChartFrame{
		"heart_rate":  c.Charts.HeartRate,
		"respiration": c.Charts.Respiration,
		"stages":      c.Charts.Stages,
	} {
		if f.PlotWidth() <= 0 || f.PlotHeight() <= 0 {
			return fmt.Errorf("chart %s has no drawable area", name)
		}
	}

	// Sensors
	for i, s := range c.Sensors {
		if s.Name == "" {
			return fmt.Errorf("sensor %d must have a name", i)
		}
		if s.Broker == "" {
			return fmt.Errorf("sensor '%s' must have a broker", s.Name)
		}
	}

	if c.HistorySize < 0 {
		return fmt.Errorf("history size cannot be negative")
	}

	return nil
}

func isWebsocketURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "ws://") || strings.HasPrefix(lower, "wss://")
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return helpers.NewConfigurationError("failed to marshal config to YAML", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return helpers.NewConfigurationError(fmt.Sprintf("failed to write config to file '%s'", configPath), err)
	}

	return nil
}
