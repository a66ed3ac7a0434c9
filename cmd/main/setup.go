package main

import (
	"context"
	"os"
	"time"

	"sleep-observer/src/analysis"
	datasource "sleep-observer/src/data_source"
	"sleep-observer/src/data_source/mqtt"
	"sleep-observer/src/grpc_control"
	"sleep-observer/src/interfaces"
	"sleep-observer/src/livefeed"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"
	"sleep-observer/src/network"
	"sleep-observer/src/server"
	"sleep-observer/src/storage"
	"sleep-observer/src/utils"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	userAgent          = "sleep-observer/1.0"
	sensorPollInterval = 15 * time.Second
)

// -----------------------------------------------------------------------------

// setupPreferences opens the preference store selected by config
func setupPreferences(config *models.MConfig, appLogger *logger.Logger) (interfaces.IPreferenceStore, error) {
	store, err := storage.NewPreferenceStore(config, logger.NewLogger(config, "PreferenceStore"))
	if err != nil {
		appLogger.Error("Failed to init preference store: %v", err)
		return nil, err
	}
	if err := store.Initialize(); err != nil {
		appLogger.Error("Failed to open preference store: %v", err)
		return nil, err
	}
	return store, nil
}

// -----------------------------------------------------------------------------

// resolveEndpoint applies flag > env > stored preference > config
func resolveEndpoint(config *models.MConfig, explicit string, prefs interfaces.IPreferenceStore, appLogger *logger.Logger) string {
	persisted, _, err := prefs.GetPreference(storage.PreferenceFeedURL)
	if err != nil {
		appLogger.Warning("Ignoring stored feed URL: %v", err)
	}

	endpoint, err := livefeed.ResolveEndpoint(livefeed.EndpointSources{
		Explicit:  explicit,
		Injected:  os.Getenv(config.Feed.EnvVar),
		Persisted: persisted,
		Default:   config.Feed.URL,
	}, config.Feed.SecureContext)
	if err != nil {
		return ""
	}
	return endpoint
}

// -----------------------------------------------------------------------------

// setupHealth returns nil when no gRPC port is configured
func setupHealth(config *models.MConfig) *grpc_control.FeedHealthService {
	if config.GrpcPort == 0 {
		return nil
	}
	return grpc_control.NewFeedHealthService(config, logger.NewLogger(config, "FeedHealth"))
}

// -----------------------------------------------------------------------------

// setupLiveFeed builds the websocket client wired to metrics and health
func setupLiveFeed(config *models.MConfig, endpoint string, reg prometheus.Registerer, healthSvc *grpc_control.FeedHealthService) *livefeed.Client {
	opts := livefeed.Options{
		Endpoint: endpoint,
		Dialer:   livefeed.NewWebsocketDialer(time.Duration(config.Feed.HandshakeTimeout)*time.Second, userAgent),
		Defaults: config.Feed.Defaults,
		Logger:   logger.NewLogger(config, "LiveFeed"),
		Metrics:  livefeed.NewMetrics(reg),
		Backlog:  config.Feed.SubscriberBacklog,
	}
	if healthSvc != nil {
		opts.OnStateChange = healthSvc.Observe
	}
	return livefeed.NewClient(opts)
}

// -----------------------------------------------------------------------------

// setupServer initializes the dashboard API
func setupServer(config *models.MConfig, prefs interfaces.IPreferenceStore, gatherer prometheus.Gatherer, feed *livefeed.Client) *server.DashboardServer {
	serverLogger := logger.NewLogger(config, "DashboardServer")

	opts := server.Options{
		Charts:      analysis.NewChartFacade(config, logger.NewLogger(config, "Analysis")),
		Preferences: prefs,
		History:     utils.NewSnapshotHistory(config.HistorySize),
		Gatherer:    gatherer,
		FeedState:   feed.State,
	}
	if config.Network.ReportBaseURL != "" {
		netLogger := logger.NewLogger(config, "NetworkManager")
		opts.Reports = network.NewReportFetcher(config, network.NewAsyncNetworkManager(config, netLogger), netLogger)
	}
	return server.NewDashboardServer(config, serverLogger, opts)
}

// -----------------------------------------------------------------------------

// setupSensors wraps the configured MQTT bridges in a manager
func setupSensors(config *models.MConfig, appLogger *logger.Logger) *datasource.MultiSourceManager {
	var sources []interfaces.ISnapshotSource
	for _, sensorCfg := range config.Sensors {
		sources = append(sources, mqtt.NewSensorSource(sensorCfg, logger.NewLogger(config, "Sensors")))
		appLogger.Info("Added sensor: %s (%s)", sensorCfg.Name, sensorCfg.Broker)
	}
	return datasource.NewMultiSourceManager(sources, logger.NewLogger(config, "MultiSourceManager"))
}

// -----------------------------------------------------------------------------

// reportSensors publishes bridge connectivity to the health service
func reportSensors(ctx context.Context, config *models.MConfig, sensors *datasource.MultiSourceManager, healthSvc *grpc_control.FeedHealthService) {
	if healthSvc == nil || len(config.Sensors) == 0 {
		return
	}
	ticker := time.NewTicker(sensorPollInterval)
	defer ticker.Stop()
	for {
		for _, name := range sensors.Names() {
			src, err := sensors.GetSource(name)
			if err != nil {
				continue
			}
			if s, ok := src.(*mqtt.SensorSource); ok {
				healthSvc.ObserveSensor(name, s.IsRunning())
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
