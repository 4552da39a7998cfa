package esp3

import (
	"bytes"
	"fmt"
)

// Telegram is one framed unit of the wireless protocol: a packet type, the
// data block and the optional data block. Checksums and lengths are handled
// by the framing layer and are not stored here.
type Telegram struct {
	PacketType PacketType
	Data       []byte
	Optional   []byte
}

// NewERP1Telegram builds an outbound RADIO_ERP1 telegram. Data carries
// rorg ++ payload ++ sender ++ status; optional data carries the standard
// sub-telegram count, the peer radio address, and default RSSI/security.
func NewERP1Telegram(rorg RORG, payload []byte, sender, address uint32) *Telegram {
	data := make([]byte, 0, 1+len(payload)+5)
	data = append(data, byte(rorg))
	data = append(data, payload...)
	data = append(data, byte(sender>>24), byte(sender>>16), byte(sender>>8), byte(sender))
	data = append(data, 0) // status

	optional := make([]byte, erp1OptionalSize)
	optional[0] = defaultSubTelNum
	putAddress(optional[erp1OptAddrOffset:], address)
	optional[erp1OptDBmOffset] = defaultRSSI
	optional[6] = defaultSecurity

	return &Telegram{PacketType: PacketTypeRadioERP1, Data: data, Optional: optional}
}

// RORG returns the telegram organization byte of an ERP1 telegram
func (t *Telegram) RORG() RORG {
	if len(t.Data) == 0 {
		return 0
	}
	return RORG(t.Data[0])
}

// Payload returns the profile-relevant part of an ERP1 data block, between
// the rorg byte and the trailing sender address and status byte.
func (t *Telegram) Payload() []byte {
	if len(t.Data) < 6 {
		return nil
	}
	return t.Data[1 : len(t.Data)-5]
}

// Sender returns the 4-byte sender address at the tail of the data block
func (t *Telegram) Sender() uint32 {
	if len(t.Data) < 6 {
		return 0
	}
	return address(t.Data[len(t.Data)-5 : len(t.Data)-1])
}

// Address returns the peer radio address carried in the optional data
func (t *Telegram) Address() uint32 {
	if len(t.Optional) < erp1OptAddrOffset+4 {
		return 0
	}
	return address(t.Optional[erp1OptAddrOffset : erp1OptAddrOffset+4])
}

// DBm returns the received signal strength. The wire carries the absolute
// value of the level; the result is negative, 0 when unavailable.
func (t *Telegram) DBm() int {
	if len(t.Optional) <= erp1OptDBmOffset {
		return 0
	}
	return -int(t.Optional[erp1OptDBmOffset])
}

// SubTelNum returns the sub-telegram count from the optional data
func (t *Telegram) SubTelNum() int {
	if len(t.Optional) == 0 {
		return 0
	}
	return int(t.Optional[0])
}

// Status returns the ERP1 status byte at the tail of the data block
func (t *Telegram) Status() byte {
	if len(t.Data) == 0 {
		return 0
	}
	return t.Data[len(t.Data)-1]
}

// RepeaterLevel returns the repeater hop counter from the status byte
func (t *Telegram) RepeaterLevel() int {
	return int(t.Status() & 0x0F)
}

// Repeated reports whether the telegram arrived via at least one repeater
func (t *Telegram) Repeated() bool {
	level := t.RepeaterLevel()
	return level > 0 && level < 15
}

// ReturnCode returns the result code of a RESPONSE telegram
func (t *Telegram) ReturnCode() ReturnCode {
	if t.PacketType != PacketTypeResponse || len(t.Data) == 0 {
		return ReturnCodeError
	}
	return ReturnCode(t.Data[0])
}

// EventCode returns the event code of an EVENT telegram
func (t *Telegram) EventCode() EventCode {
	if t.PacketType != PacketTypeEvent || len(t.Data) == 0 {
		return 0
	}
	return EventCode(t.Data[0])
}

// Equal reports whether two telegrams carry the same type and content
func (t *Telegram) Equal(o *Telegram) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.PacketType == o.PacketType &&
		bytes.Equal(t.Data, o.Data) &&
		bytes.Equal(t.Optional, o.Optional)
}

// String formats the telegram for logging
func (t *Telegram) String() string {
	if t.PacketType == PacketTypeRadioERP1 {
		return fmt.Sprintf("%s %s addr=%08X data=%X (%d dBm)",
			t.PacketType, t.RORG(), t.Address(), t.Data, t.DBm())
	}
	return fmt.Sprintf("%s data=%X optional=%X", t.PacketType, t.Data, t.Optional)
}

func address(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func putAddress(b []byte, addr uint32) {
	b[0] = byte(addr >> 24)
	b[1] = byte(addr >> 16)
	b[2] = byte(addr >> 8)
	b[3] = byte(addr)
}

// FormatAddress renders a radio address the way configuration files and
// topics spell it.
func FormatAddress(addr uint32) string {
	return fmt.Sprintf("%08X", addr)
}
