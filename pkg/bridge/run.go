package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dbehnke/enocean-nexus/pkg/database"
	"github.com/dbehnke/enocean-nexus/pkg/esp3"
	"github.com/dbehnke/enocean-nexus/pkg/gateway"
	"github.com/dbehnke/enocean-nexus/pkg/logger"
	"github.com/dbehnke/enocean-nexus/pkg/mqtt"
	"github.com/dbehnke/enocean-nexus/pkg/transport"
)

const retentionInterval = time.Hour

// Run connects the transport, starts the MQTT client and processes radio
// telegrams until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	if c, ok := b.transport.(interface {
		Connect(ctx context.Context) error
	}); ok {
		if err := c.Connect(ctx); err != nil {
			return err
		}
	}

	if err := b.mqtt.Start(b.equipmentTopics()); err != nil {
		return err
	}
	defer b.mqtt.Stop()

	b.restoreLearned()
	b.updateEquipmentGauges()

	if err := b.mqtt.PublishEquipmentList(b.equipmentList()); err != nil {
		b.log.Warn("Failed to publish equipment list", logger.Error(err))
	}
	if err := b.mqtt.PublishLearnMode(b.LearnMode()); err != nil {
		b.log.Warn("Failed to publish learn mode", logger.Error(err))
	}

	if b.telegrams != nil && b.cfg.Database.RetentionDays > 0 {
		go b.retentionLoop(ctx)
	}

	// Closing the transport is what unblocks the read below.
	go func() {
		<-ctx.Done()
		b.transport.Close()
	}()

	b.log.Info("Bridge running",
		logger.Int("equipment", b.registry.Count()),
		logger.Any("learn_mode", b.LearnMode()))

	buf := make([]byte, 4096)
	for {
		n, err := b.transport.Read(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, transport.ErrClosed) {
				b.log.Info("Bridge stopped")
				return ctx.Err()
			}
			return err
		}
		b.decoder.Push(buf[:n])
		b.drain(time.Now())
	}
}

// drain processes every complete frame buffered in the decoder
func (b *Bridge) drain(now time.Time) {
	for {
		t, err := b.decoder.Next()
		if err != nil {
			switch {
			case errors.Is(err, esp3.ErrIncomplete):
				return
			case errors.Is(err, esp3.ErrHeaderChecksum), errors.Is(err, esp3.ErrDataChecksum):
				b.metrics.CRCError()
				b.log.Warn("Dropped frame", logger.Error(err))
			case errors.Is(err, esp3.ErrDesynchronized):
				b.metrics.Resync()
				b.log.Warn("Stream desynchronized, discarding input")
			default:
				b.log.Warn("Frame decode error", logger.Error(err))
			}
			continue
		}
		b.handleTelegram(t, now)
	}
}

// handleTelegram translates one telegram and fans the result out to MQTT,
// the dashboard and the database.
func (b *Bridge) handleTelegram(t *esp3.Telegram, now time.Time) {
	switch t.PacketType {
	case esp3.PacketTypeResponse:
		// Module acknowledgement for a sent command.
		if rc := t.ReturnCode(); rc != esp3.ReturnCodeOK {
			b.log.Warn("Module reported error",
				logger.String("return_code", rc.String()))
		} else {
			b.log.Debug("Module response OK")
		}
		return
	case esp3.PacketTypeEvent:
		b.log.Info("Module event",
			logger.String("event", t.EventCode().String()))
		return
	case esp3.PacketTypeRadioERP1:
		b.metrics.TelegramReceived(t.RORG().String())
	}

	in, err := b.translator.HandleTelegram(t, now)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrNotRadioTelegram):
			b.log.Debug("Skipping non-radio packet",
				logger.String("packet_type", t.PacketType.String()))
		case errors.Is(err, gateway.ErrUnknownEquipment):
			b.metrics.UnknownEquipment()
			b.log.Debug("Telegram from unknown equipment", logger.Error(err))
		case errors.Is(err, gateway.ErrEquipmentIgnored):
			b.metrics.IgnoredTelegram()
		case errors.Is(err, gateway.ErrDecodeFailed):
			b.metrics.DecodeError()
			b.log.Warn("Failed to decode telegram",
				logger.Error(err),
				logger.Hex("data", t.Data))
		default:
			b.log.Warn("Telegram handling failed", logger.Error(err))
		}
		return
	}

	eq := in.Equipment
	if in.TeachIn {
		// The translator has already updated state and notified observers
		// when learn mode was on.
		b.log.Info("Teach-in telegram",
			logger.String("equipment", eq.Name),
			logger.Any("learn_mode", b.LearnMode()))
		b.persistTelegram(in, t, nil)
		return
	}

	values := flattenValues(in)
	b.log.Debug("Telegram decoded",
		logger.String("equipment", eq.Name),
		logger.Address(eq.Address),
		logger.Int("dbm", in.Meta.DBm))

	if err := b.mqtt.PublishReading(readingFor(in, t, values)); err != nil {
		b.log.Warn("Failed to publish reading",
			logger.String("equipment", eq.Name),
			logger.Error(err))
	}
	if b.hub != nil {
		b.hub.BroadcastTelegram(eq.Name, eq.AddressLabel(), values, in.Meta.DBm)
	}
	b.persistTelegram(in, t, values)
	b.persistState(in, values)
}

// flattenValues maps the decoded reading to plain key/value pairs for
// publishing. Signal telegrams carry their message name under "signal".
func flattenValues(in *gateway.Inbound) map[string]interface{} {
	if in.Signal != nil {
		out := make(map[string]interface{}, len(in.Signal.Fields)+1)
		out["signal"] = in.Signal.Name
		for k, v := range in.Signal.Fields {
			out[k] = v
		}
		return out
	}
	out := make(map[string]interface{}, len(in.Values))
	for shortcut, dv := range in.Values {
		out[shortcut] = dv.Value
	}
	return out
}

func readingFor(in *gateway.Inbound, t *esp3.Telegram, values map[string]interface{}) mqtt.Reading {
	return mqtt.Reading{
		Topic:    in.Equipment.Topic,
		Values:   values,
		RSSI:     in.Meta.DBm,
		Repeated: in.Meta.Repeated,
		LastSeen: in.Meta.ReceivedAt,
		Raw:      t.Data,
	}
}

func (b *Bridge) persistTelegram(in *gateway.Inbound, t *esp3.Telegram, values map[string]interface{}) {
	if b.telegrams == nil {
		return
	}
	eq := in.Equipment
	rec := &database.TelegramRecord{
		Address:    eq.AddressLabel(),
		Equipment:  eq.Name,
		RORG:       t.RORG().String(),
		EEP:        eq.Profile.Key.String(),
		Direction:  database.DirectionRX,
		Values:     valuesJSON(values),
		DBm:        in.Meta.DBm,
		Repeated:   in.Meta.Repeated,
		TeachIn:    in.TeachIn,
		ReceivedAt: in.Meta.ReceivedAt,
	}
	if err := b.telegrams.Create(rec); err != nil {
		b.log.Error("Failed to persist telegram", logger.Error(err))
	}
}

func (b *Bridge) persistState(in *gateway.Inbound, values map[string]interface{}) {
	if b.states == nil {
		return
	}
	eq := in.Equipment
	state := &database.EquipmentState{
		Address:  eq.AddressLabel(),
		Name:     eq.Name,
		EEP:      eq.Profile.Key.String(),
		Topic:    eq.Topic,
		Learned:  eq.Learned(),
		Values:   valuesJSON(values),
		DBm:      in.Meta.DBm,
		LastSeen: in.Meta.ReceivedAt,
	}
	if err := b.states.Upsert(state); err != nil {
		b.log.Error("Failed to persist equipment state", logger.Error(err))
	}
}

// restoreLearned reloads the learned flags persisted across restarts
func (b *Bridge) restoreLearned() {
	if b.states == nil {
		return
	}
	states, err := b.states.GetAll()
	if err != nil {
		b.log.Warn("Failed to restore equipment state", logger.Error(err))
		return
	}
	for i := range states {
		if !states[i].Learned {
			continue
		}
		if eq := b.registry.GetByName(states[i].Name); eq != nil {
			eq.SetLearned(true)
		}
	}
}

// retentionLoop prunes telegram history past the configured retention
func (b *Bridge) retentionLoop(ctx context.Context) {
	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -b.cfg.Database.RetentionDays)
			deleted, err := b.telegrams.DeleteOlderThan(cutoff)
			if err != nil {
				b.log.Error("Telegram history cleanup failed", logger.Error(err))
				continue
			}
			if deleted > 0 {
				b.log.Info("Pruned telegram history",
					logger.Any("deleted", deleted),
					logger.Any("cutoff", cutoff.Format(time.RFC3339)))
			}
		}
	}
}

func valuesJSON(values map[string]interface{}) string {
	if len(values) == 0 {
		return "{}"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "{}"
	}
	return string(data)
}
