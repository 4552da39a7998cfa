package bridge

import (
	"time"

	"github.com/dbehnke/enocean-nexus/pkg/database"
	"github.com/dbehnke/enocean-nexus/pkg/esp3"
	"github.com/dbehnke/enocean-nexus/pkg/logger"
)

// handleCommand turns an MQTT command payload into an outbound radio
// telegram. Runs on a paho client goroutine.
func (b *Bridge) handleCommand(topic string, values map[string]interface{}) {
	b.metrics.CommandReceived()

	eq := b.registry.GetByTopic(topic)
	if eq == nil {
		b.log.Warn("Command for unknown topic", logger.String("topic", topic))
		return
	}
	if eq.Ignore {
		b.log.Warn("Command for ignored equipment", logger.String("equipment", eq.Name))
		return
	}

	t, err := b.translator.BuildTelegram(eq, values)
	if err != nil {
		b.metrics.EncodeError()
		b.log.Warn("Failed to build command telegram",
			logger.String("equipment", eq.Name),
			logger.Error(err))
		return
	}

	frame, err := esp3.Encode(t)
	if err != nil {
		b.metrics.EncodeError()
		b.log.Error("Failed to encode command frame",
			logger.String("equipment", eq.Name),
			logger.Error(err))
		return
	}

	b.writeMu.Lock()
	_, err = b.transport.Write(frame)
	b.writeMu.Unlock()
	if err != nil {
		b.log.Error("Failed to send command telegram",
			logger.String("equipment", eq.Name),
			logger.Error(err))
		return
	}

	b.metrics.TelegramSent()
	b.log.Info("Command telegram sent",
		logger.String("equipment", eq.Name),
		logger.Address(eq.Address),
		logger.Hex("data", t.Data))

	if b.telegrams != nil {
		rec := &database.TelegramRecord{
			Address:    eq.AddressLabel(),
			Equipment:  eq.Name,
			RORG:       t.RORG().String(),
			EEP:        eq.Profile.Key.String(),
			Direction:  database.DirectionTX,
			Values:     valuesJSON(values),
			ReceivedAt: time.Now(),
		}
		if err := b.telegrams.Create(rec); err != nil {
			b.log.Error("Failed to persist command telegram", logger.Error(err))
		}
	}
}

// handleLearn reacts to learn mode requests arriving over MQTT
func (b *Bridge) handleLearn(on bool) {
	b.SetLearnMode(on)
}
