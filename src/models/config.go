package models

// MConfig Structure
type MConfig struct {
	Name        string          `yaml:"name"`
	Host        string          `yaml:"host"`
	Port        int             `yaml:"port"`
	LogLevel    string          `yaml:"log_level"`
	GrpcHost    string          `yaml:"grpc_host"`
	GrpcPort    int             `yaml:"grpc_port"`
	Storage     MStorageConfig  `yaml:"storage"`
	Network     MNetworkConfig  `yaml:"network"`
	Feed        MFeedConfig     `yaml:"feed"`
	Charts      MChartsConfig   `yaml:"charts"`
	Sensors     []MSensorConfig `yaml:"sensors"`
	HistorySize int             `yaml:"history_size"`
}

// GetLogLevel lets the logger pick up the configured threshold.
func (c *MConfig) GetLogLevel() string {
	if c == nil {
		return ""
	}
	return c.LogLevel
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	ReportBaseURL  string `yaml:"report_base_url"`
	UserAgent      string `yaml:"user_agent"`
}

// MFeedConfig configures the live environment feed client.
type MFeedConfig struct {
	URL               string               `yaml:"url"`
	EnvVar            string               `yaml:"env_var"`
	SecureContext     bool                 `yaml:"secure_context"`
	HandshakeTimeout  int                  `yaml:"handshake_timeout"`
	Defaults          MEnvironmentDefaults `yaml:"defaults"`
	SubscriberBacklog int                  `yaml:"subscriber_backlog"`
}

// MEnvironmentDefaults seeds the snapshot before the first message arrives.
type MEnvironmentDefaults struct {
	Temperature *float64 `yaml:"temperature"`
	Humidity    *float64 `yaml:"humidity"`
	Curtain     *string  `yaml:"curtain"`
	AirQuality  *float64 `yaml:"air_quality"`
	PM10        *float64 `yaml:"pm_10"`
	PM25        *float64 `yaml:"pm_2_5"`
}

type MChartsConfig struct {
	StepMinutes     int         `yaml:"step_minutes"`
	SmoothingWindow int         `yaml:"smoothing_window"`
	BandBelow       *float64    `yaml:"band_below"`
	BandAbove       *float64    `yaml:"band_above"`
	HeartRate       MChartFrame `yaml:"heart_rate"`
	Respiration     MChartFrame `yaml:"respiration"`
	Stages          MChartFrame `yaml:"stages"`
}

// MChartFrame is the plot box and vertical domain policy of one chart.
type MChartFrame struct {
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	PadLeft     float64 `yaml:"pad_left"`
	PadRight    float64 `yaml:"pad_right"`
	PadTop      float64 `yaml:"pad_top"`
	PadBottom   float64 `yaml:"pad_bottom"`
	Margin      float64 `yaml:"margin"`
	FallbackMin float64 `yaml:"fallback_min"`
	FallbackMax float64 `yaml:"fallback_max"`
}

// PlotWidth is the drawable width inside the paddings.
func (f MChartFrame) PlotWidth() float64 {
	return f.Width - f.PadLeft - f.PadRight
}

// PlotHeight is the drawable height inside the paddings.
func (f MChartFrame) PlotHeight() float64 {
	return f.Height - f.PadTop - f.PadBottom
}

// MSensorConfig describes one MQTT broker publishing device readings.
type MSensorConfig struct {
	Name     string   `yaml:"name"`
	Broker   string   `yaml:"broker"`
	ClientID string   `yaml:"client_id"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Topics   []string `yaml:"topics"`
}
