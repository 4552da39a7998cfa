package esp3

import "testing"

func TestCRC8CheckValue(t *testing.T) {
	// Standard check value for CRC-8 poly 0x07, init 0, no reflection
	got := CRC8([]byte("123456789"))
	if got != 0xF4 {
		t.Errorf("CRC8 check value = 0x%02X, want 0xF4", got)
	}
}

func TestCRC8Empty(t *testing.T) {
	if got := CRC8(nil); got != 0 {
		t.Errorf("CRC8(nil) = 0x%02X, want 0", got)
	}
}

func TestCRC8Pair(t *testing.T) {
	a := []byte{0xA5, 0x00, 0x81, 0x87, 0x08}
	b := []byte{0x03, 0x01, 0x8E, 0x5C, 0xA2, 0x4D, 0x00}
	joined := append(append([]byte{}, a...), b...)
	if crc8Pair(a, b) != CRC8(joined) {
		t.Error("crc8Pair differs from CRC8 over concatenation")
	}
}

func TestCRC8SingleBitSensitivity(t *testing.T) {
	data := []byte{0x00, 0x07, 0x07, 0x01}
	orig := CRC8(data)
	data[2] ^= 0x01
	if CRC8(data) == orig {
		t.Error("CRC8 did not change after a single bit flip")
	}
}
