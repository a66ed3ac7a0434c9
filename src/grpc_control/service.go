package grpc_control

import (
	"fmt"
	"net"
	"sync"

	"sleep-observer/src/livefeed"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service names reported through grpc.health.v1.Health.
const (
	FeedServiceName   = "sleepobserver.LiveFeed"
	SensorServicePref = "sleepobserver.Sensor/"
)

// FeedHealthService mirrors the live-feed state into the standard gRPC
// health protocol so orchestrators can probe it.
type FeedHealthService struct {
	Config *models.MConfig
	Logger *logger.Logger
	Health *health.Server

	mu         sync.Mutex
	lastStatus healthpb.HealthCheckResponse_ServingStatus
	server     *grpc.Server
}

// NewFeedHealthService starts with the feed NOT_SERVING until it opens.
func NewFeedHealthService(cfg *models.MConfig, log *logger.Logger) *FeedHealthService {
	hs := health.NewServer()
	hs.SetServingStatus(FeedServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &FeedHealthService{
		Config:     cfg,
		Logger:     log,
		Health:     hs,
		lastStatus: healthpb.HealthCheckResponse_NOT_SERVING,
	}
}

// -----------------------------------------------------------------------------

// Observe is wired as the live-feed OnStateChange hook; it never blocks.
func (s *FeedHealthService) Observe(state livefeed.State) {
	next := healthpb.HealthCheckResponse_NOT_SERVING
	if state.Status == livefeed.StatusOpen {
		next = healthpb.HealthCheckResponse_SERVING
	}

	s.mu.Lock()
	changed := next != s.lastStatus
	s.lastStatus = next
	s.mu.Unlock()

	if changed {
		s.Health.SetServingStatus(FeedServiceName, next)
		s.Logger.Debug("gRPC: %s -> %s (%s)", FeedServiceName, next, state.Status)
	}
}

// -----------------------------------------------------------------------------

// ObserveSensor publishes one MQTT bridge's connection state.
func (s *FeedHealthService) ObserveSensor(name string, running bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if running {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.Health.SetServingStatus(SensorServicePref+name, status)
}

// -----------------------------------------------------------------------------

// Register attaches the health service to an existing server.
func (s *FeedHealthService) Register(server *grpc.Server) {
	healthpb.RegisterHealthServer(server, s.Health)
}

// -----------------------------------------------------------------------------

// Serve listens on grpc_host:grpc_port until Stop.
func (s *FeedHealthService) Serve() error {
	addr := fmt.Sprintf("%s:%d", s.Config.GrpcHost, s.Config.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an already bound listener.
func (s *FeedHealthService) ServeListener(lis net.Listener) error {
	server := grpc.NewServer()
	s.Register(server)

	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	s.Logger.Info("gRPC health service listening on %s", lis.Addr())
	return server.Serve(lis)
}

// -----------------------------------------------------------------------------

// Stop flips every service to NOT_SERVING and stops the server.
func (s *FeedHealthService) Stop() {
	s.Health.Shutdown()

	s.mu.Lock()
	server := s.server
	s.server = nil
	s.mu.Unlock()

	if server != nil {
		server.GracefulStop()
	}
}
