package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"sleep-observer/src/helpers"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	connectTimeout = 10 * time.Second
	disconnectWait = 250 // ms
	subscribeQoS   = 0
)

// SensorSource bridges one MQTT broker into snapshot patches.
type SensorSource struct {
	SensorConfig models.MSensorConfig
	Logger       *logger.Logger
	client       paho.Client
	newClient    func(*paho.ClientOptions) paho.Client
	outputChan   chan<- []byte
	ctx          context.Context
	cancelFunc   context.CancelFunc
	isRunning    atomic.Bool
	dropped      atomic.Int64
	mu           sync.Mutex
}

// -----------------------------------------------------------------------------

func NewSensorSource(sensorCfg models.MSensorConfig, log *logger.Logger) *SensorSource {
	if len(sensorCfg.Topics) == 0 {
		sensorCfg.Topics = DefaultTopics
	}
	if sensorCfg.ClientID == "" {
		sensorCfg.ClientID = "sleep-observer-" + uuid.NewString()
	}
	return &SensorSource{
		SensorConfig: sensorCfg,
		Logger:       log.Named("SensorSource-" + sensorCfg.Name),
		newClient:    paho.NewClient,
	}
}

// -----------------------------------------------------------------------------

func (s *SensorSource) Name() string {
	return s.SensorConfig.Name
}

// -----------------------------------------------------------------------------

// Start connects to the broker and subscribes to the sensor topics.
func (s *SensorSource) Start(ctx context.Context, outputChan chan<- []byte, wg *sync.WaitGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning.Load() {
		wg.Done()
		return fmt.Errorf("sensor source %s already running", s.Name())
	}

	// 1. Lifecycle
	s.ctx, s.cancelFunc = context.WithCancel(ctx)
	s.outputChan = outputChan

	// 2. Client (resubscribe on every reconnect)
	opts := paho.NewClientOptions().
		AddBroker(s.SensorConfig.Broker).
		SetClientID(s.SensorConfig.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(s.subscribe).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			s.Logger.Warning("Connection lost: %v", err)
		})
	if s.SensorConfig.Username != "" {
		opts.SetUsername(s.SensorConfig.Username)
		opts.SetPassword(s.SensorConfig.Password)
	}
	s.client = s.newClient(opts)

	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		s.cancelFunc()
		wg.Done()
		return helpers.NewNetworkError(fmt.Sprintf("timed out connecting to %s", s.SensorConfig.Broker), nil)
	}
	if err := token.Error(); err != nil {
		s.cancelFunc()
		wg.Done()
		return helpers.NewNetworkError(fmt.Sprintf("failed to connect to %s", s.SensorConfig.Broker), err)
	}

	s.isRunning.Store(true)
	s.Logger.Info("Connected to %s (%d topics)", s.SensorConfig.Broker, len(s.SensorConfig.Topics))

	// 3. Disconnect once the context ends
	go func() {
		defer wg.Done()
		<-s.ctx.Done()
		s.client.Disconnect(disconnectWait)
		s.isRunning.Store(false)
		s.Logger.Info("Disconnected from %s", s.SensorConfig.Broker)
	}()

	return nil
}

// -----------------------------------------------------------------------------

func (s *SensorSource) subscribe(c paho.Client) {
	for _, topic := range s.SensorConfig.Topics {
		token := c.Subscribe(topic, subscribeQoS, s.handleMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			s.Logger.Error("Failed to subscribe to %s: %v", topic, err)
		}
	}
}

// -----------------------------------------------------------------------------

func (s *SensorSource) handleMessage(_ paho.Client, msg paho.Message) {
	s.push(msg.Topic(), msg.Payload())
}

// push translates and forwards one reading without blocking the paho router.
func (s *SensorSource) push(topic string, payload []byte) {
	patch, ok := TranslateSensorMessage(topic, payload)
	if !ok {
		s.Logger.Debug("Ignored reading on %s", topic)
		return
	}
	select {
	case <-s.ctx.Done():
	case s.outputChan <- patch:
	default:
		s.dropped.Add(1)
		s.Logger.Warning("Output full, dropped reading on %s", topic)
	}
}

// -----------------------------------------------------------------------------

func (s *SensorSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	return nil
}

// IsRunning reports whether the broker connection is up.
func (s *SensorSource) IsRunning() bool {
	return s.isRunning.Load()
}
