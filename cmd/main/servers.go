package main

import (
	"sleep-observer/src/grpc_control"
	"sleep-observer/src/interfaces"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"
)

// -----------------------------------------------------------------------------

// startServers orchestrates the startup of all server components
func startServers(
	srv interfaces.IDataExchanger,
	healthSvc *grpc_control.FeedHealthService,
	config *models.MConfig,
	appLogger *logger.Logger,
) {

	// 1. Dashboard API
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 2. gRPC health
	if healthSvc != nil {
		go func() {
			appLogger.Info("Starting gRPC health service on :%d", config.GrpcPort)
			if err := healthSvc.Serve(); err != nil {
				appLogger.Error("failed to serve gRPC: %v", err)
			}
		}()
	}
}

// -----------------------------------------------------------------------------

func stopServers(srv interfaces.IDataExchanger, healthSvc *grpc_control.FeedHealthService, appLogger *logger.Logger) {
	if err := srv.Stop(); err != nil {
		appLogger.Error("Server shutdown failed: %v", err)
	}
	if healthSvc != nil {
		healthSvc.Stop()
	}
}
