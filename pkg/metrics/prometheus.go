package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dbehnke/enocean-nexus/pkg/logger"
)

// PrometheusConfig holds Prometheus server configuration
type PrometheusConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// PrometheusHandler handles Prometheus metrics HTTP requests
type PrometheusHandler struct {
	collector *Collector
}

// NewPrometheusHandler creates a new Prometheus handler
func NewPrometheusHandler(collector *Collector) *PrometheusHandler {
	return &PrometheusHandler{
		collector: collector,
	}
}

// ServeHTTP handles HTTP requests for metrics
func (h *PrometheusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	var output strings.Builder

	// Radio link metrics
	output.WriteString("# HELP enocean_telegrams_received_total Total radio telegrams received\n")
	output.WriteString("# TYPE enocean_telegrams_received_total counter\n")
	output.WriteString(fmt.Sprintf("enocean_telegrams_received_total %d\n", h.collector.GetTelegramsReceived()))

	byRORG := h.collector.GetTelegramsByRORG()
	rorgs := make([]string, 0, len(byRORG))
	for rorg := range byRORG {
		rorgs = append(rorgs, rorg)
	}
	sort.Strings(rorgs)
	output.WriteString("# HELP enocean_telegrams_rorg_total Received telegrams by rorg\n")
	output.WriteString("# TYPE enocean_telegrams_rorg_total counter\n")
	for _, rorg := range rorgs {
		output.WriteString(fmt.Sprintf("enocean_telegrams_rorg_total{rorg=%q} %d\n", rorg, byRORG[rorg]))
	}

	output.WriteString("# HELP enocean_telegrams_sent_total Total radio telegrams sent\n")
	output.WriteString("# TYPE enocean_telegrams_sent_total counter\n")
	output.WriteString(fmt.Sprintf("enocean_telegrams_sent_total %d\n", h.collector.GetTelegramsSent()))

	output.WriteString("# HELP enocean_crc_errors_total Frames dropped for checksum mismatch\n")
	output.WriteString("# TYPE enocean_crc_errors_total counter\n")
	output.WriteString(fmt.Sprintf("enocean_crc_errors_total %d\n", h.collector.GetCRCErrors()))

	output.WriteString("# HELP enocean_resyncs_total Stream resynchronizations\n")
	output.WriteString("# TYPE enocean_resyncs_total counter\n")
	output.WriteString(fmt.Sprintf("enocean_resyncs_total %d\n", h.collector.GetResyncs()))

	// Translation metrics
	output.WriteString("# HELP enocean_decode_errors_total Telegrams that failed profile decoding\n")
	output.WriteString("# TYPE enocean_decode_errors_total counter\n")
	output.WriteString(fmt.Sprintf("enocean_decode_errors_total %d\n", h.collector.GetDecodeErrors()))

	output.WriteString("# HELP enocean_unknown_equipment_total Telegrams from unconfigured addresses\n")
	output.WriteString("# TYPE enocean_unknown_equipment_total counter\n")
	output.WriteString(fmt.Sprintf("enocean_unknown_equipment_total %d\n", h.collector.GetUnknownEquipment()))

	output.WriteString("# HELP enocean_ignored_telegrams_total Telegrams from ignored equipment\n")
	output.WriteString("# TYPE enocean_ignored_telegrams_total counter\n")
	output.WriteString(fmt.Sprintf("enocean_ignored_telegrams_total %d\n", h.collector.GetIgnoredTelegrams()))

	output.WriteString("# HELP enocean_teach_ins_total Completed teach-ins\n")
	output.WriteString("# TYPE enocean_teach_ins_total counter\n")
	output.WriteString(fmt.Sprintf("enocean_teach_ins_total %d\n", h.collector.GetTeachIns()))

	// Command path metrics
	output.WriteString("# HELP enocean_commands_received_total Commands received over MQTT\n")
	output.WriteString("# TYPE enocean_commands_received_total counter\n")
	output.WriteString(fmt.Sprintf("enocean_commands_received_total %d\n", h.collector.GetCommandsReceived()))

	output.WriteString("# HELP enocean_encode_errors_total Commands that failed profile encoding\n")
	output.WriteString("# TYPE enocean_encode_errors_total counter\n")
	output.WriteString(fmt.Sprintf("enocean_encode_errors_total %d\n", h.collector.GetEncodeErrors()))

	// Equipment gauges
	output.WriteString("# HELP enocean_equipment_configured Number of configured equipment\n")
	output.WriteString("# TYPE enocean_equipment_configured gauge\n")
	output.WriteString(fmt.Sprintf("enocean_equipment_configured %d\n", h.collector.GetEquipmentConfigured()))

	output.WriteString("# HELP enocean_equipment_learned Number of learned equipment\n")
	output.WriteString("# TYPE enocean_equipment_learned gauge\n")
	output.WriteString(fmt.Sprintf("enocean_equipment_learned %d\n", h.collector.GetEquipmentLearned()))

	w.Write([]byte(output.String()))
}

// PrometheusServer is an HTTP server for Prometheus metrics
type PrometheusServer struct {
	config    PrometheusConfig
	collector *Collector
	log       *logger.Logger
	server    *http.Server
}

// NewPrometheusServer creates a new Prometheus metrics server
func NewPrometheusServer(config PrometheusConfig, collector *Collector, log *logger.Logger) *PrometheusServer {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}

	return &PrometheusServer{
		config:    config,
		collector: collector,
		log:       log.WithComponent("metrics"),
	}
}

// Start starts the Prometheus metrics server
func (s *PrometheusServer) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("Prometheus metrics server disabled")
		return nil
	}

	handler := NewPrometheusHandler(s.collector)
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, handler)

	// Use a listener to get the actual port (useful for testing with port 0)
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.server = &http.Server{
		Handler: mux,
	}

	s.log.Info("Starting Prometheus metrics server",
		logger.Int("port", actualPort),
		logger.String("path", s.config.Path))

	// Start server
	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.log.Info("Shutting down Prometheus metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown error: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// Stop stops the Prometheus metrics server
func (s *PrometheusServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}
}
