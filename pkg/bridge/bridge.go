package bridge

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dbehnke/enocean-nexus/pkg/config"
	"github.com/dbehnke/enocean-nexus/pkg/database"
	"github.com/dbehnke/enocean-nexus/pkg/eep"
	"github.com/dbehnke/enocean-nexus/pkg/esp3"
	"github.com/dbehnke/enocean-nexus/pkg/gateway"
	"github.com/dbehnke/enocean-nexus/pkg/logger"
	"github.com/dbehnke/enocean-nexus/pkg/metrics"
	"github.com/dbehnke/enocean-nexus/pkg/mqtt"
	"github.com/dbehnke/enocean-nexus/pkg/transport"
	"github.com/dbehnke/enocean-nexus/pkg/web"
)

// Bridge wires the radio transport, the telegram translator, MQTT, the
// database and the web dashboard together. One bridge owns the read loop
// over the transport; MQTT command handlers write back through it.
type Bridge struct {
	cfg     *config.Config
	log     *logger.Logger
	version string

	transport  transport.Transport
	decoder    *esp3.Decoder
	registry   *gateway.Registry
	translator *gateway.Translator
	metrics    *metrics.Collector
	mqtt       *mqtt.Client
	hub        *web.WebSocketHub

	telegrams *database.TelegramRepository
	states    *database.StateRepository

	// Serializes transport writes: MQTT command handlers run on the
	// paho client's goroutines.
	writeMu sync.Mutex
}

// New creates a bridge from configuration. The transport defaults to the
// configured TCP bridge; tests swap it with UseTransport before Run.
func New(cfg *config.Config, log *logger.Logger) (*Bridge, error) {
	profiles, err := eep.DefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("profile registry: %w", err)
	}

	registry, err := BuildRegistry(cfg.Equipment, profiles)
	if err != nil {
		return nil, err
	}

	baseID, err := cfg.Gateway.BaseIDValue()
	if err != nil {
		return nil, fmt.Errorf("gateway base id: %w", err)
	}

	translator := gateway.NewTranslator(registry, baseID)
	translator.SetLearnMode(cfg.Gateway.TeachIn)

	b := &Bridge{
		cfg:        cfg,
		log:        log.WithComponent("bridge"),
		version:    "dev",
		decoder:    esp3.NewDecoder(),
		registry:   registry,
		translator: translator,
		metrics:    metrics.NewCollector(),
		transport: transport.NewTCP(transport.TCPConfig{
			Address:      cfg.Transport.Address,
			ReconnectMin: time.Duration(cfg.Transport.ReconnectMin) * time.Second,
			ReconnectMax: time.Duration(cfg.Transport.ReconnectMax) * time.Second,
		}, log),
	}

	b.mqtt = mqtt.New(mqtt.Config{
		Enabled:     cfg.MQTT.Enabled,
		Broker:      cfg.MQTT.Broker,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		ClientID:    cfg.MQTT.ClientID,
		Username:    cfg.MQTT.Username,
		Password:    cfg.MQTT.Password,
		QoS:         cfg.MQTT.QoS,
		Retained:    cfg.MQTT.Retained,
		PublishRSSI: cfg.Gateway.PublishRSSI,
		PublishRaw:  cfg.Gateway.PublishRaw,
	}, log)
	b.mqtt.OnCommand(b.handleCommand)
	b.mqtt.OnLearn(b.handleLearn)

	translator.OnTeachIn(b.onTeachIn)

	return b, nil
}

// BuildRegistry resolves the configured equipment list against the profile
// registry. Every entry must name a known profile; a typo in an EEP code
// fails startup instead of silently dropping telegrams later.
func BuildRegistry(entries []config.EquipmentConfig, profiles *eep.Registry) (*gateway.Registry, error) {
	registry := gateway.NewRegistry()
	for _, ec := range entries {
		addr, err := ec.AddressValue()
		if err != nil {
			return nil, fmt.Errorf("equipment %q: %w", ec.Name, err)
		}
		rorg, fn, ty, err := ec.EEPValue()
		if err != nil {
			return nil, fmt.Errorf("equipment %q: %w", ec.Name, err)
		}
		profile, err := profiles.Lookup(esp3.RORG(rorg), fn, ty)
		if err != nil {
			return nil, fmt.Errorf("equipment %q: %w", ec.Name, err)
		}
		eq := gateway.NewEquipment(addr, ec.Name, ec.Topic, profile)
		eq.Ignore = ec.Ignore
		registry.Add(eq)
	}
	return registry, nil
}

// UseTransport replaces the radio transport. Must be called before Run.
func (b *Bridge) UseTransport(t transport.Transport) { b.transport = t }

// UseDatabase enables telegram history and equipment state persistence
func (b *Bridge) UseDatabase(db *database.DB) {
	b.telegrams = database.NewTelegramRepository(db.GetDB())
	b.states = database.NewStateRepository(db.GetDB())
}

// AttachHub connects the web dashboard's WebSocket hub for live events
func (b *Bridge) AttachHub(h *web.WebSocketHub) { b.hub = h }

// SetVersion sets the version string reported on the status API
func (b *Bridge) SetVersion(v string) { b.version = v }

// Metrics exposes the bridge's metrics collector
func (b *Bridge) Metrics() *metrics.Collector { return b.metrics }

// Registry exposes the equipment registry
func (b *Bridge) Registry() *gateway.Registry { return b.registry }

// SetLearnMode switches learn mode and announces the change on MQTT and
// the dashboard.
func (b *Bridge) SetLearnMode(on bool) {
	b.translator.SetLearnMode(on)
	b.log.Info("Learn mode changed", logger.Any("enabled", on))
	if err := b.mqtt.PublishLearnMode(on); err != nil {
		b.log.Warn("Failed to publish learn mode", logger.Error(err))
	}
	if b.hub != nil {
		b.hub.BroadcastLearnMode(on)
	}
}

// LearnMode reports whether teach-in handling is enabled
func (b *Bridge) LearnMode() bool { return b.translator.LearnMode() }

// onTeachIn runs when the translator completes a teach-in
func (b *Bridge) onTeachIn(ev gateway.TeachInEvent) {
	eq := ev.Equipment
	b.log.Info("Teach-in completed",
		logger.String("equipment", eq.Name),
		logger.Address(eq.Address),
		logger.String("eep", eq.Profile.Key.String()))

	b.metrics.TeachInCompleted()
	b.updateEquipmentGauges()

	if err := b.mqtt.PublishTeachIn(mqtt.TeachInNotice{
		Name:      eq.Name,
		Address:   eq.AddressLabel(),
		EEP:       eq.Profile.Key.String(),
		Timestamp: ev.When,
	}); err != nil {
		b.log.Warn("Failed to publish teach-in", logger.Error(err))
	}
	if err := b.mqtt.PublishEquipmentList(b.equipmentList()); err != nil {
		b.log.Warn("Failed to publish equipment list", logger.Error(err))
	}
	if b.hub != nil {
		b.hub.BroadcastTeachIn(eq.Name, eq.AddressLabel(), eq.Profile.Key.String())
	}

	if b.states != nil {
		state := &database.EquipmentState{
			Address:  eq.AddressLabel(),
			Name:     eq.Name,
			EEP:      eq.Profile.Key.String(),
			Topic:    eq.Topic,
			Learned:  true,
			LastSeen: ev.When,
		}
		if err := b.states.Upsert(state); err != nil {
			b.log.Error("Failed to persist teach-in state", logger.Error(err))
		}
	}
}

// equipmentList renders the registry for the retained MQTT list topic
func (b *Bridge) equipmentList() []mqtt.EquipmentInfo {
	all := b.registry.All()
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	list := make([]mqtt.EquipmentInfo, 0, len(all))
	for _, eq := range all {
		list = append(list, mqtt.EquipmentInfo{
			Name:    eq.Name,
			Address: eq.AddressLabel(),
			EEP:     eq.Profile.Key.String(),
			Topic:   eq.Topic,
			Learned: eq.Learned(),
		})
	}
	return list
}

// equipmentTopics lists the topics whose command subtopic MQTT subscribes
func (b *Bridge) equipmentTopics() []string {
	all := b.registry.All()
	topics := make([]string, 0, len(all))
	for _, eq := range all {
		if eq.Ignore {
			continue
		}
		topics = append(topics, eq.Topic)
	}
	sort.Strings(topics)
	return topics
}

func (b *Bridge) updateEquipmentGauges() {
	learned := 0
	for _, eq := range b.registry.All() {
		if eq.Learned() {
			learned++
		}
	}
	b.metrics.SetEquipment(b.registry.Count(), learned)
}
