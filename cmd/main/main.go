package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"sleep-observer/src/config"
	"sleep-observer/src/livefeed"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	feedURL := flag.String("feed-url", "", "live feed websocket URL (overrides env, stored preference and config)")
	flag.Parse()

	// 1. Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(conf.MConfig, conf.Name)

	// 2. Metrics registry shared by the feed and /metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 3. Setup Components
	prefs, err := setupPreferences(conf.MConfig, appLogger)
	if err != nil {
		os.Exit(1)
	}
	defer prefs.Close()

	// An empty endpoint makes feed.Start report ErrNoEndpoint below
	endpoint := resolveEndpoint(conf.MConfig, *feedURL, prefs, appLogger)

	healthSvc := setupHealth(conf.MConfig)
	feed := setupLiveFeed(conf.MConfig, endpoint, registry, healthSvc)
	srv := setupServer(conf.MConfig, prefs, registry, feed)
	sensors := setupSensors(conf.MConfig, appLogger)

	// 4. Start servers
	startServers(srv, healthSvc, conf.MConfig, appLogger)

	// 5. Start the feed (no endpoint leaves the snapshot at defaults)
	if feed.Endpoint() != "" {
		appLogger.Info("Live feed endpoint: %s", feed.Endpoint())
	}
	if err := feed.Start(); err != nil {
		appLogger.Info("Live feed disabled: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}

	// 6. Feed snapshots -> dashboard
	wg.Add(1)
	go relaySnapshots(ctx, feed, srv, wg)

	// 7. Sensor patches -> dashboard
	patches := make(chan []byte, 64)
	if err := sensors.Start(ctx, patches, wg); err != nil {
		appLogger.Error("Failed to start sensors: %v", err)
	}
	wg.Add(1)
	go relayPatches(ctx, patches, srv, wg)
	go reportSensors(ctx, conf.MConfig, sensors, healthSvc)

	// 8. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	feed.Teardown()
	sensors.Stop()
	cancel()
	wg.Wait()
	stopServers(srv, healthSvc, appLogger)
}

// -----------------------------------------------------------------------------

// relaySnapshots forwards every live-feed snapshot to the dashboard server.
func relaySnapshots(ctx context.Context, feed *livefeed.Client, srv snapshotSink, wg *sync.WaitGroup) {
	defer wg.Done()
	updates, unsubscribe := feed.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			srv.SetSnapshot(snap)
		}
	}
}

// -----------------------------------------------------------------------------

// relayPatches merges sensor readings into the served snapshot.
func relayPatches(ctx context.Context, patches <-chan []byte, srv patchSink, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case patch := <-patches:
			srv.ApplyPatch(patch)
		}
	}
}

type snapshotSink interface {
	SetSnapshot(models.MEnvironmentSnapshot)
}

type patchSink interface {
	ApplyPatch([]byte) bool
}
