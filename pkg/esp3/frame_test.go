package esp3

import (
	"bytes"
	"errors"
	"testing"
)

func mustEncode(t *testing.T, tg *Telegram) []byte {
	t.Helper()
	frame, err := Encode(tg)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return frame
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tg   *Telegram
	}{
		{
			name: "4BS temperature telegram",
			tg: &Telegram{
				PacketType: PacketTypeRadioERP1,
				Data:       []byte{0xA5, 0x00, 0x00, 0x55, 0x08, 0x01, 0x8E, 0x5C, 0xA2, 0x00},
				Optional:   []byte{0x03, 0x01, 0x8E, 0x5C, 0xA2, 0x4D, 0x00},
			},
		},
		{
			name: "response without optional data",
			tg: &Telegram{
				PacketType: PacketTypeResponse,
				Data:       []byte{0x00},
				Optional:   []byte{},
			},
		},
		{
			name: "empty data blocks",
			tg: &Telegram{
				PacketType: PacketTypeEvent,
				Data:       []byte{},
				Optional:   []byte{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := mustEncode(t, tt.tg)

			d := NewDecoder()
			d.Push(frame)
			got, err := d.Next()
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if !got.Equal(tt.tg) {
				t.Errorf("round trip mismatch: got %v, want %v", got, tt.tg)
			}
			if d.Buffered() != 0 {
				t.Errorf("decoder kept %d bytes after a full frame", d.Buffered())
			}
		})
	}
}

func TestDecoderPartialFeed(t *testing.T) {
	tg := &Telegram{
		PacketType: PacketTypeRadioERP1,
		Data:       []byte{0xF6, 0x50, 0x01, 0x8E, 0x5C, 0xA2, 0x30},
		Optional:   []byte{0x03, 0x01, 0x8E, 0x5C, 0xA2, 0x37, 0x00},
	}
	frame := mustEncode(t, tg)

	d := NewDecoder()
	for i, b := range frame {
		d.Push([]byte{b})
		got, err := d.Next()
		if i < len(frame)-1 {
			if !errors.Is(err, ErrIncomplete) {
				t.Fatalf("byte %d: err = %v, want ErrIncomplete", i, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("final byte: %v", err)
		}
		if !got.Equal(tg) {
			t.Errorf("decoded %v, want %v", got, tg)
		}
	}
}

func TestDecoderSkipsLeadingNoise(t *testing.T) {
	tg := &Telegram{
		PacketType: PacketTypeRadioERP1,
		Data:       []byte{0xD5, 0x08, 0x01, 0x8E, 0x5C, 0xA2, 0x00},
		Optional:   []byte{},
	}
	frame := mustEncode(t, tg)

	d := NewDecoder()
	d.Push([]byte{0x12, 0x34, 0xAB})
	d.Push(frame)
	got, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !got.Equal(tg) {
		t.Errorf("decoded %v, want %v", got, tg)
	}
	if d.Resyncs() == 0 {
		t.Error("expected a resync after leading noise")
	}
}

func TestDecoderHeaderChecksumInvalid(t *testing.T) {
	tg := &Telegram{
		PacketType: PacketTypeResponse,
		Data:       []byte{0x00, 0x01},
		Optional:   []byte{},
	}
	frame := mustEncode(t, tg)
	frame[5] ^= 0xFF // header CRC byte

	d := NewDecoder()
	d.Push(frame)
	if _, err := d.Next(); !errors.Is(err, ErrHeaderChecksum) {
		t.Fatalf("err = %v, want ErrHeaderChecksum", err)
	}

	// The decoder must recover: a valid frame after the damage decodes fine.
	good := mustEncode(t, tg)
	d.Push(good)
	for {
		got, err := d.Next()
		if errors.Is(err, ErrIncomplete) {
			t.Fatal("decoder never recovered the good frame")
		}
		if err != nil {
			continue
		}
		if !got.Equal(tg) {
			t.Errorf("decoded %v, want %v", got, tg)
		}
		break
	}
}

func TestDecoderDataChecksumInvalid(t *testing.T) {
	tg := &Telegram{
		PacketType: PacketTypeRadioERP1,
		Data:       []byte{0xA5, 0x12, 0x34, 0x56, 0x08, 0x01, 0x8E, 0x5C, 0xA2, 0x00},
		Optional:   []byte{0x03, 0x01, 0x8E, 0x5C, 0xA2, 0x4D, 0x00},
	}
	frame := mustEncode(t, tg)
	frame[len(frame)-1] ^= 0x01 // flip one bit in the data checksum

	d := NewDecoder()
	d.Push(frame)
	got, err := d.Next()
	if !errors.Is(err, ErrDataChecksum) {
		t.Fatalf("err = %v (telegram %v), want ErrDataChecksum", err, got)
	}
	if got != nil {
		t.Error("corrupted telegram must not be delivered")
	}

	// Telegram dropped whole, stream continues with the next frame.
	d.Push(mustEncode(t, tg))
	got, err = d.Next()
	if err != nil {
		t.Fatalf("Next after drop failed: %v", err)
	}
	if !got.Equal(tg) {
		t.Errorf("decoded %v, want %v", got, tg)
	}
}

func TestDecoderDesynchronized(t *testing.T) {
	d := NewDecoderSize(64)
	// A sync byte with a header that happens to checksum correctly but
	// declares more data than will ever arrive.
	header := []byte{0xFF, 0xFF, 0xFF, 0x01}
	frame := append([]byte{SyncByte}, header...)
	frame = append(frame, CRC8(header))
	d.Push(frame)
	d.Push(bytes.Repeat([]byte{0x00}, 100))

	_, err := d.Next()
	if !errors.Is(err, ErrDesynchronized) {
		t.Fatalf("err = %v, want ErrDesynchronized", err)
	}

	// After desync the decoder keeps scanning and picks up a later frame.
	tg := &Telegram{PacketType: PacketTypeResponse, Data: []byte{0x00}, Optional: []byte{}}
	d.Push(mustEncode(t, tg))
	for {
		got, err := d.Next()
		if errors.Is(err, ErrIncomplete) {
			t.Fatal("decoder never resynchronized")
		}
		if err != nil {
			continue
		}
		if !got.Equal(tg) {
			t.Errorf("decoded %v, want %v", got, tg)
		}
		return
	}
}

func TestEncodePayloadTooLarge(t *testing.T) {
	tests := []struct {
		name string
		tg   *Telegram
	}{
		{"data over 65535", &Telegram{PacketType: PacketTypeRadioERP1, Data: make([]byte, MaxDataLength+1)}},
		{"optional over 255", &Telegram{PacketType: PacketTypeRadioERP1, Optional: make([]byte, MaxOptionalLength+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.tg); !errors.Is(err, ErrPayloadTooLarge) {
				t.Errorf("err = %v, want ErrPayloadTooLarge", err)
			}
		})
	}
}

func TestDecoderMultipleFramesInOnePush(t *testing.T) {
	t1 := &Telegram{PacketType: PacketTypeResponse, Data: []byte{0x00}, Optional: []byte{}}
	t2 := &Telegram{
		PacketType: PacketTypeRadioERP1,
		Data:       []byte{0xF6, 0x70, 0x01, 0x8E, 0x5C, 0xA2, 0x30},
		Optional:   []byte{0x03, 0x01, 0x8E, 0x5C, 0xA2, 0x2D, 0x00},
	}
	buf := append(mustEncode(t, t1), mustEncode(t, t2)...)

	d := NewDecoder()
	d.Push(buf)
	got1, err := d.Next()
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	got2, err := d.Next()
	if err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if !got1.Equal(t1) || !got2.Equal(t2) {
		t.Error("frames decoded out of order or corrupted")
	}
}
