package esp3

import (
	"bytes"
	"testing"
)

func TestNewERP1Telegram(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x55, 0x08}
	tg := NewERP1Telegram(RORGBS4, payload, 0xFFD00001, 0x018E5CA2)

	if tg.PacketType != PacketTypeRadioERP1 {
		t.Errorf("packet type = %v, want RADIO_ERP1", tg.PacketType)
	}
	if tg.RORG() != RORGBS4 {
		t.Errorf("rorg = %v, want 4BS", tg.RORG())
	}
	if !bytes.Equal(tg.Payload(), payload) {
		t.Errorf("payload = %X, want %X", tg.Payload(), payload)
	}
	if tg.Sender() != 0xFFD00001 {
		t.Errorf("sender = %08X, want FFD00001", tg.Sender())
	}
	if tg.Address() != 0x018E5CA2 {
		t.Errorf("address = %08X, want 018E5CA2", tg.Address())
	}
	if tg.SubTelNum() != defaultSubTelNum {
		t.Errorf("sub telegram count = %d, want %d", tg.SubTelNum(), defaultSubTelNum)
	}
	if tg.Status() != 0 {
		t.Errorf("status = %02X, want 0", tg.Status())
	}
}

func TestTelegramSignalMetadata(t *testing.T) {
	tg := &Telegram{
		PacketType: PacketTypeRadioERP1,
		Data:       []byte{0xF6, 0x50, 0x01, 0x8E, 0x5C, 0xA2, 0x31},
		Optional:   []byte{0x03, 0x01, 0x8E, 0x5C, 0xA2, 0x4D, 0x00},
	}
	if got := tg.DBm(); got != -77 {
		t.Errorf("DBm = %d, want -77", got)
	}
	if got := tg.RepeaterLevel(); got != 1 {
		t.Errorf("repeater level = %d, want 1", got)
	}
	if !tg.Repeated() {
		t.Error("telegram with repeater level 1 must report Repeated")
	}

	tg.Data[len(tg.Data)-1] = 0x30
	if tg.Repeated() {
		t.Error("telegram with repeater level 0 must not report Repeated")
	}
}

func TestTelegramAccessorsOnShortData(t *testing.T) {
	tg := &Telegram{PacketType: PacketTypeRadioERP1, Data: []byte{0xF6}, Optional: []byte{}}
	if tg.Payload() != nil {
		t.Error("short data block must yield nil payload")
	}
	if tg.Sender() != 0 || tg.Address() != 0 || tg.DBm() != 0 {
		t.Error("short blocks must yield zero metadata, not panic")
	}
}

func TestDecodeSignal(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		wantKey string
		want    interface{}
	}{
		{"energy percentage", []byte{SignalEnergyStatus, 85}, "energy", "85%"},
		{"energy last message", []byte{SignalEnergyStatus, 0}, "energy", "last_message"},
		{"no backup battery", []byte{SignalBackupBattery, 0xFF}, "energy", "no backup battery"},
		{"revision", []byte{SignalRevision, 2, 11, 1, 0, 1, 0, 0, 0}, "sw_version", "2.11.1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeSignal(tt.payload)
			if err != nil {
				t.Fatalf("DecodeSignal failed: %v", err)
			}
			if got := msg.Fields[tt.wantKey]; got != tt.want {
				t.Errorf("%s = %v, want %v", tt.wantKey, got, tt.want)
			}
		})
	}
}

func TestDecodeSignalUnsupported(t *testing.T) {
	if _, err := DecodeSignal([]byte{0x42}); err == nil {
		t.Error("expected error for unsupported signal type")
	}
}
