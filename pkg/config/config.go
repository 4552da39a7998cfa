package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Transport TransportConfig   `mapstructure:"transport"`
	Gateway   GatewayConfig     `mapstructure:"gateway"`
	Equipment []EquipmentConfig `mapstructure:"equipment"`
	MQTT      MQTTConfig        `mapstructure:"mqtt"`
	Web       WebConfig         `mapstructure:"web"`
	Database  DatabaseConfig    `mapstructure:"database"`
	Logging   LoggingConfig     `mapstructure:"logging"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
}

// ServerConfig holds instance identification
type ServerConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

// TransportConfig holds the serial gateway link configuration
type TransportConfig struct {
	Type         string `mapstructure:"type"`          // tcp
	Address      string `mapstructure:"address"`       // host:port of the serial bridge
	ReconnectMin int    `mapstructure:"reconnect_min"` // Seconds
	ReconnectMax int    `mapstructure:"reconnect_max"` // Seconds
}

// GatewayConfig holds radio-side gateway behavior
type GatewayConfig struct {
	BaseID      string `mapstructure:"base_id"`  // Hex sender address for outbound telegrams
	TeachIn     bool   `mapstructure:"teach_in"` // Start with learn mode enabled
	PublishRSSI bool   `mapstructure:"publish_rssi"`
	PublishRaw  bool   `mapstructure:"publish_raw"`
}

// BaseIDValue parses the configured base id
func (g GatewayConfig) BaseIDValue() (uint32, error) {
	return ParseAddress(g.BaseID)
}

// EquipmentConfig describes one configured radio device
type EquipmentConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"` // Hex radio address
	EEP     string `mapstructure:"eep"`     // Profile code, e.g. A5-02-05
	Topic   string `mapstructure:"topic"`   // Defaults to the name
	Ignore  bool   `mapstructure:"ignore"`
}

// AddressValue parses the configured radio address
func (e EquipmentConfig) AddressValue() (uint32, error) {
	return ParseAddress(e.Address)
}

// EEPValue parses the configured profile code
func (e EquipmentConfig) EEPValue() (rorg, fn, ty byte, err error) {
	return ParseEEP(e.EEP)
}

// MQTTConfig holds MQTT client configuration
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	QoS         byte   `mapstructure:"qos"`
	Retained    bool   `mapstructure:"retained"`
}

// WebConfig holds web dashboard configuration
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig holds telegram history storage configuration
type DatabaseConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig holds Prometheus metrics configuration
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	// Set defaults
	setDefaults()

	// Set config file
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/enocean-nexus")
	}

	// Environment variables
	viper.SetEnvPrefix("ENOCEAN")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is OK, use defaults
		} else if os.IsNotExist(err) {
			// File explicitly specified but doesn't exist - that's also OK
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal to struct
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.name", "EnOcean-Nexus")
	viper.SetDefault("server.description", "EnOcean to MQTT gateway")

	// Transport defaults
	viper.SetDefault("transport.type", "tcp")
	viper.SetDefault("transport.reconnect_min", 1)
	viper.SetDefault("transport.reconnect_max", 60)

	// Gateway defaults
	viper.SetDefault("gateway.base_id", "00000000")
	viper.SetDefault("gateway.teach_in", false)
	viper.SetDefault("gateway.publish_rssi", true)
	viper.SetDefault("gateway.publish_raw", false)

	// MQTT defaults
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.topic_prefix", "enocean/")
	viper.SetDefault("mqtt.client_id", "enocean-nexus")
	viper.SetDefault("mqtt.qos", 1)
	viper.SetDefault("mqtt.retained", false)

	// Web defaults
	viper.SetDefault("web.enabled", true)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8080)

	// Database defaults
	viper.SetDefault("database.enabled", true)
	viper.SetDefault("database.path", "enocean-nexus.db")
	viper.SetDefault("database.retention_days", 30)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.prometheus.enabled", true)
	viper.SetDefault("metrics.prometheus.port", 9090)
	viper.SetDefault("metrics.prometheus.path", "/metrics")
}

// ParseAddress parses a hex radio address, with or without a 0x prefix
func ParseAddress(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return 0, fmt.Errorf("empty radio address")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid radio address %q: %w", s, err)
	}
	return uint32(v), nil
}

// ParseEEP parses a dashed profile code such as "A5-02-05"
func ParseEEP(s string) (rorg, fn, ty byte, err error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid profile code %q: want RORG-FUNC-TYPE", s)
	}
	bytes := make([]byte, 3)
	for i, p := range parts {
		v, perr := strconv.ParseUint(p, 16, 8)
		if perr != nil {
			return 0, 0, 0, fmt.Errorf("invalid profile code %q: %w", s, perr)
		}
		bytes[i] = byte(v)
	}
	return bytes[0], bytes[1], bytes[2], nil
}
