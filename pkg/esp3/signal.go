package esp3

import (
	"fmt"
)

// Signal telegrams (RORG 0xD0) carry device health reports rather than
// profile data. Only the message types seen in the field are decoded.

// Signal message identifiers
const (
	SignalEnergyStatus  = 0x06
	SignalRevision      = 0x07
	SignalHeartbeat     = 0x08
	SignalRxQuality     = 0x0A
	SignalBackupBattery = 0x10
)

// SignalMessage is a decoded device health report
type SignalMessage struct {
	MID    byte
	Name   string
	Fields map[string]interface{}
}

// DecodeSignal decodes the payload of a RORG 0xD0 telegram. The first
// payload byte selects the message type.
func DecodeSignal(payload []byte) (*SignalMessage, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("esp3: empty signal payload")
	}
	msg := &SignalMessage{MID: payload[0], Fields: map[string]interface{}{}}
	switch msg.MID {
	case SignalEnergyStatus:
		msg.Name = "energy status"
		if len(payload) < 2 {
			return nil, fmt.Errorf("esp3: signal 0x%02X payload too short", msg.MID)
		}
		msg.Fields["energy"] = energyLabel(payload[1])
	case SignalRevision:
		msg.Name = "device revision"
		if len(payload) < 9 {
			return nil, fmt.Errorf("esp3: signal 0x%02X payload too short", msg.MID)
		}
		msg.Fields["sw_version"] = versionString(payload[1:5])
		msg.Fields["hw_version"] = versionString(payload[5:9])
	case SignalHeartbeat:
		msg.Name = "heartbeat"
	case SignalRxQuality:
		msg.Name = "rx channel quality"
		if len(payload) < 8 {
			return nil, fmt.Errorf("esp3: signal 0x%02X payload too short", msg.MID)
		}
		msg.Fields["id"] = address(payload[1:5])
		msg.Fields["dbm_best"] = -int(payload[5])
		msg.Fields["subtelegram_count"] = int(payload[7] >> 4)
		msg.Fields["max_repeater_level"] = int(payload[7] & 0x0F)
	case SignalBackupBattery:
		msg.Name = "backup battery"
		if len(payload) < 2 {
			return nil, fmt.Errorf("esp3: signal 0x%02X payload too short", msg.MID)
		}
		if payload[1] == 0xFF {
			msg.Fields["energy"] = "no backup battery"
		} else {
			msg.Fields["energy"] = energyLabel(payload[1])
		}
	default:
		return nil, fmt.Errorf("esp3: unsupported signal type 0x%02X", msg.MID)
	}
	return msg, nil
}

func energyLabel(b byte) string {
	switch {
	case b == 0:
		return "last_message"
	case b <= 100:
		return fmt.Sprintf("%d%%", b)
	default:
		return "reserved"
	}
}

func versionString(b []byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3])
}
