package metrics

import (
	"sync"
)

// Collector collects gateway metrics
type Collector struct {
	mu sync.RWMutex

	// Radio link metrics
	telegramsReceived uint64
	telegramsSent     uint64
	telegramsByRORG   map[string]uint64
	crcErrors         uint64
	resyncs           uint64

	// Translation metrics
	decodeErrors     uint64
	unknownEquipment uint64
	ignoredTelegrams uint64
	teachIns         uint64

	// Command path metrics
	commandsReceived uint64
	encodeErrors     uint64

	// Equipment gauges
	equipmentConfigured int
	equipmentLearned    int
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		telegramsByRORG: make(map[string]uint64),
	}
}

// TelegramReceived records a received radio telegram
func (c *Collector) TelegramReceived(rorg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.telegramsReceived++
	c.telegramsByRORG[rorg]++
}

// TelegramSent records a sent radio telegram
func (c *Collector) TelegramSent() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.telegramsSent++
}

// CRCError records a frame dropped for a checksum mismatch
func (c *Collector) CRCError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.crcErrors++
}

// Resync records a stream resynchronization after noise or desync
func (c *Collector) Resync() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resyncs++
}

// DecodeError records a telegram that failed profile decoding
func (c *Collector) DecodeError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.decodeErrors++
}

// UnknownEquipment records a telegram from an unconfigured address
func (c *Collector) UnknownEquipment() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.unknownEquipment++
}

// IgnoredTelegram records a telegram from equipment marked ignore
func (c *Collector) IgnoredTelegram() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ignoredTelegrams++
}

// TeachInCompleted records a completed teach-in
func (c *Collector) TeachInCompleted() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teachIns++
}

// CommandReceived records a command arriving over MQTT
func (c *Collector) CommandReceived() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.commandsReceived++
}

// EncodeError records a command that failed profile encoding
func (c *Collector) EncodeError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.encodeErrors++
}

// SetEquipment updates the equipment gauges
func (c *Collector) SetEquipment(configured, learned int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.equipmentConfigured = configured
	c.equipmentLearned = learned
}

// Getters for metrics

// GetTelegramsReceived returns total telegrams received
func (c *Collector) GetTelegramsReceived() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.telegramsReceived
}

// GetTelegramsSent returns total telegrams sent
func (c *Collector) GetTelegramsSent() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.telegramsSent
}

// GetTelegramsByRORG returns a copy of the per-rorg receive counters
func (c *Collector) GetTelegramsByRORG() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]uint64, len(c.telegramsByRORG))
	for k, v := range c.telegramsByRORG {
		out[k] = v
	}
	return out
}

// GetCRCErrors returns total checksum failures
func (c *Collector) GetCRCErrors() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.crcErrors
}

// GetResyncs returns total stream resynchronizations
func (c *Collector) GetResyncs() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resyncs
}

// GetDecodeErrors returns total profile decode failures
func (c *Collector) GetDecodeErrors() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decodeErrors
}

// GetUnknownEquipment returns total telegrams from unconfigured addresses
func (c *Collector) GetUnknownEquipment() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unknownEquipment
}

// GetIgnoredTelegrams returns total telegrams from ignored equipment
func (c *Collector) GetIgnoredTelegrams() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ignoredTelegrams
}

// GetTeachIns returns total completed teach-ins
func (c *Collector) GetTeachIns() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.teachIns
}

// GetCommandsReceived returns total MQTT commands received
func (c *Collector) GetCommandsReceived() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.commandsReceived
}

// GetEncodeErrors returns total profile encode failures
func (c *Collector) GetEncodeErrors() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.encodeErrors
}

// GetEquipmentConfigured returns the configured equipment gauge
func (c *Collector) GetEquipmentConfigured() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.equipmentConfigured
}

// GetEquipmentLearned returns the learned equipment gauge
func (c *Collector) GetEquipmentLearned() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.equipmentLearned
}
