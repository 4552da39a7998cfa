package testhelpers

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dbehnke/enocean-nexus/pkg/bridge"
	"github.com/dbehnke/enocean-nexus/pkg/config"
	"github.com/dbehnke/enocean-nexus/pkg/logger"
	"github.com/dbehnke/enocean-nexus/pkg/transport"
)

// IntegrationSuite provides infrastructure for integration tests
type IntegrationSuite struct {
	T      *testing.T
	Config *config.Config
	Logger *logger.Logger
	Ctx    context.Context
	Cancel context.CancelFunc
	Bridge *bridge.Bridge
	Module *MockModule

	done chan error
}

// NewIntegrationSuite creates a new integration test suite
func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	log := logger.New(logger.Config{
		Level:  "error",
		Format: "text",
	})

	return &IntegrationSuite{
		T:      t,
		Logger: log,
		Ctx:    ctx,
		Cancel: cancel,
	}
}

// NewBridge creates a bridge over a pipe transport without starting it.
// The returned mock module is the far end of the pipe.
func (s *IntegrationSuite) NewBridge(cfg *config.Config) *bridge.Bridge {
	b, err := bridge.New(cfg, s.Logger)
	if err != nil {
		s.T.Fatalf("bridge.New failed: %v", err)
	}
	pipe, far := transport.NewPipe()
	b.UseTransport(pipe)

	s.Config = cfg
	s.Bridge = b
	s.Module = NewMockModule(far)
	return b
}

// StartBridge creates and runs a bridge over a pipe transport
func (s *IntegrationSuite) StartBridge(cfg *config.Config) *bridge.Bridge {
	b := s.NewBridge(cfg)
	s.done = make(chan error, 1)
	go func() { s.done <- b.Run(s.Ctx) }()
	return b
}

// StopBridge cancels the run context and waits for the bridge to exit
func (s *IntegrationSuite) StopBridge() {
	s.Cancel()
	if s.done != nil {
		if err := <-s.done; err != nil && err != context.Canceled {
			s.T.Errorf("bridge.Run returned %v", err)
		}
		s.done = nil
	}
}

// GetFreePort gets a free port for testing
func (s *IntegrationSuite) GetFreePort() int {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		s.T.Fatal(err)
	}

	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		s.T.Fatal(err)
	}
	defer func() { _ = listener.Close() }()

	return listener.Addr().(*net.TCPAddr).Port
}

// Cleanup cleans up resources
func (s *IntegrationSuite) Cleanup() {
	s.StopBridge()
	if s.Module != nil {
		_ = s.Module.Close()
	}
	s.Cancel()
}

// WaitFor waits for a condition to be true
func (s *IntegrationSuite) WaitFor(condition func() bool, timeout time.Duration, message string) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	s.T.Logf("WaitFor timeout: %s", message)
	return false
}

// AssertEventually asserts that a condition becomes true within timeout
func (s *IntegrationSuite) AssertEventually(condition func() bool, timeout time.Duration, message string) {
	if !s.WaitFor(condition, timeout, message) {
		s.T.Errorf("Assertion failed: %s", message)
	}
}

// CreateDefaultConfig creates a default test configuration
func CreateDefaultConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Name:        "Test Gateway",
			Description: "Integration Test Gateway",
		},
		Transport: config.TransportConfig{
			Type:         "tcp",
			Address:      "127.0.0.1:5100",
			ReconnectMin: 1,
			ReconnectMax: 2,
		},
		Gateway: config.GatewayConfig{
			BaseID:      "FF800000",
			PublishRSSI: true,
		},
		Equipment: []config.EquipmentConfig{
			{Name: "window_contact", Address: "018A2B3C", EEP: "D5-00-01", Topic: "sensors/window"},
			{Name: "temp_sensor", Address: "01234567", EEP: "A5-02-05", Topic: "sensors/temp"},
			{Name: "dimmer", Address: "AABBCCDD", EEP: "A5-38-08", Topic: "actuators/dimmer"},
		},
		Web: config.WebConfig{
			Enabled: false,
		},
		MQTT: config.MQTTConfig{
			Enabled: false,
		},
		Metrics: config.MetricsConfig{
			Enabled: false,
		},
		Database: config.DatabaseConfig{
			Enabled: false,
		},
	}
}
