package grpc_control

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"sleep-observer/src/livefeed"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func newService() *FeedHealthService {
	return NewFeedHealthService(&models.MConfig{}, logger.NewLoggerWithWriter(nil, "gRPC", io.Discard))
}

func check(t *testing.T, s *FeedHealthService, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.Health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestObserveMirrorsFeedStatus(t *testing.T) {
	s := newService()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, s, FeedServiceName))

	s.Observe(livefeed.State{Status: livefeed.StatusConnecting})
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, s, FeedServiceName))

	s.Observe(livefeed.State{Status: livefeed.StatusOpen})
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, s, FeedServiceName))

	s.Observe(livefeed.State{Status: livefeed.StatusReconnecting, Attempt: 1})
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, s, FeedServiceName))
}

func TestObserveSensor(t *testing.T) {
	s := newService()
	s.ObserveSensor("bedroom", true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, s, SensorServicePref+"bedroom"))
	s.ObserveSensor("bedroom", false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, s, SensorServicePref+"bedroom"))
}

func TestHealthOverGRPC(t *testing.T) {
	s := newService()
	s.Observe(livefeed.State{Status: livefeed.StatusOpen})

	lis := bufconn.Listen(1 << 16)
	go s.ServeListener(lis)
	defer s.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: FeedServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
