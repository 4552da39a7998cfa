package config

import (
	"fmt"
	"strings"
)

// validate validates the configuration
func validate(cfg *Config) error {
	// Validate transport config
	switch strings.ToLower(cfg.Transport.Type) {
	case "tcp":
		if cfg.Transport.Address == "" {
			return fmt.Errorf("transport.address is required for tcp transport")
		}
	default:
		return fmt.Errorf("transport.type %q is not supported (must be tcp)", cfg.Transport.Type)
	}
	if cfg.Transport.ReconnectMin <= 0 {
		return fmt.Errorf("transport.reconnect_min must be positive")
	}
	if cfg.Transport.ReconnectMax < cfg.Transport.ReconnectMin {
		return fmt.Errorf("transport.reconnect_max must be >= transport.reconnect_min")
	}

	// Validate gateway config
	if _, err := cfg.Gateway.BaseIDValue(); err != nil {
		return fmt.Errorf("gateway.base_id: %w", err)
	}

	// Validate equipment entries
	seen := make(map[uint32]string, len(cfg.Equipment))
	for i, eq := range cfg.Equipment {
		label := eq.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		addr, err := eq.AddressValue()
		if err != nil {
			return fmt.Errorf("equipment %s: %w", label, err)
		}
		if prev, dup := seen[addr]; dup {
			return fmt.Errorf("equipment %s: address %s already used by %s", label, eq.Address, prev)
		}
		seen[addr] = label
		if _, _, _, err := eq.EEPValue(); err != nil {
			return fmt.Errorf("equipment %s: %w", label, err)
		}
	}

	// Validate MQTT config
	if cfg.MQTT.Enabled {
		if cfg.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
		if cfg.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
		}
	}

	// Validate web config
	if cfg.Web.Enabled {
		if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
			return fmt.Errorf("web.port must be between 1 and 65535")
		}
	}

	// Validate database config
	if cfg.Database.Enabled {
		if cfg.Database.Path == "" {
			return fmt.Errorf("database.path is required when database is enabled")
		}
		if cfg.Database.RetentionDays < 0 {
			return fmt.Errorf("database.retention_days must not be negative")
		}
	}

	// Validate metrics config
	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port <= 0 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("metrics.prometheus.port must be between 1 and 65535")
		}
	}

	return nil
}
