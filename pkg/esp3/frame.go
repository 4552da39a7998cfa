package esp3

import (
	"bytes"
	"errors"
	"fmt"
)

// Framing errors. Checksum and desync conditions are recoverable: the
// decoder drops the malformed bytes, resynchronizes on the next sync byte
// and keeps going.
var (
	// ErrIncomplete means the buffered stream does not yet hold a full
	// frame. Push more bytes and call Next again.
	ErrIncomplete = errors.New("esp3: frame incomplete")

	// ErrHeaderChecksum means the header CRC8 did not match
	ErrHeaderChecksum = errors.New("esp3: header checksum mismatch")

	// ErrDataChecksum means the data CRC8 did not match; the telegram is
	// dropped whole, never partially delivered.
	ErrDataChecksum = errors.New("esp3: data checksum mismatch")

	// ErrDesynchronized means the buffer threshold was exceeded without
	// completing a frame; buffered bytes up to the next sync byte are
	// discarded.
	ErrDesynchronized = errors.New("esp3: stream desynchronized")

	// ErrPayloadTooLarge means a telegram's data or optional block does not
	// fit the length fields of the frame header.
	ErrPayloadTooLarge = errors.New("esp3: payload too large")
)

// DefaultMaxBuffer is larger than the biggest legal frame
// (sync + header + CRC + 65535 data + 255 optional + CRC).
const DefaultMaxBuffer = 1 << 17

// Decoder turns a raw byte stream into telegrams. Feed bytes with Push and
// drain frames with Next; Next never blocks.
type Decoder struct {
	buf     []byte
	max     int
	resyncs uint64
}

// NewDecoder creates a stream decoder with the default buffer threshold
func NewDecoder() *Decoder {
	return &Decoder{max: DefaultMaxBuffer}
}

// NewDecoderSize creates a stream decoder with a custom buffer threshold
func NewDecoderSize(maxBuffer int) *Decoder {
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBuffer
	}
	return &Decoder{max: maxBuffer}
}

// Push appends raw bytes read from the transport
func (d *Decoder) Push(p []byte) {
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of bytes waiting to be framed
func (d *Decoder) Buffered() int { return len(d.buf) }

// Resyncs returns how many times the decoder had to scan forward for a new
// sync byte after discarding input.
func (d *Decoder) Resyncs() uint64 { return d.resyncs }

// Next extracts the next telegram from the buffered stream.
//
// It returns ErrIncomplete when more bytes are needed, ErrHeaderChecksum,
// ErrDataChecksum or ErrDesynchronized when input had to be discarded. After
// any error except ErrIncomplete the decoder has already resynchronized;
// calling Next again continues with the remaining buffer.
func (d *Decoder) Next() (*Telegram, error) {
	// Scan for the sync marker, dropping any leading noise.
	idx := bytes.IndexByte(d.buf, SyncByte)
	if idx < 0 {
		if len(d.buf) > 0 {
			d.buf = d.buf[:0]
			d.resyncs++
		}
		return nil, ErrIncomplete
	}
	if idx > 0 {
		d.buf = d.buf[idx:]
		d.resyncs++
	}

	// Sync byte + header + header CRC.
	if len(d.buf) < 1+HeaderSize+1 {
		return d.incomplete()
	}

	header := d.buf[1 : 1+HeaderSize]
	if CRC8(header) != d.buf[1+HeaderSize] {
		// Discard only the bogus sync byte and scan forward.
		d.buf = d.buf[1:]
		d.resyncs++
		return nil, ErrHeaderChecksum
	}

	dataLen := int(header[0])<<8 | int(header[1])
	optLen := int(header[2])
	packetType := PacketType(header[3])
	frameLen := 1 + HeaderSize + 1 + dataLen + optLen + 1

	if len(d.buf) < frameLen {
		return d.incomplete()
	}

	body := d.buf[1+HeaderSize+1 : frameLen-1]
	data := body[:dataLen]
	optional := body[dataLen:]
	if CRC8(body) != d.buf[frameLen-1] {
		d.buf = d.buf[frameLen:]
		return nil, ErrDataChecksum
	}

	t := &Telegram{
		PacketType: packetType,
		Data:       append([]byte(nil), data...),
		Optional:   append([]byte(nil), optional...),
	}
	d.buf = d.buf[frameLen:]
	return t, nil
}

// incomplete reports a partial frame, enforcing the buffer threshold
func (d *Decoder) incomplete() (*Telegram, error) {
	if len(d.buf) > d.max {
		// Give up on this sync byte and look for the next one.
		d.buf = d.buf[1:]
		d.resyncs++
		return nil, ErrDesynchronized
	}
	return nil, ErrIncomplete
}

// Encode serializes a telegram into a wire frame: sync byte, header, header
// CRC, data, optional data, data CRC. Decode(Encode(t)) always yields t for
// telegrams whose blocks fit the header length fields.
func Encode(t *Telegram) ([]byte, error) {
	if len(t.Data) > MaxDataLength {
		return nil, fmt.Errorf("%w: data block %d bytes", ErrPayloadTooLarge, len(t.Data))
	}
	if len(t.Optional) > MaxOptionalLength {
		return nil, fmt.Errorf("%w: optional block %d bytes", ErrPayloadTooLarge, len(t.Optional))
	}

	frame := make([]byte, 0, 1+HeaderSize+1+len(t.Data)+len(t.Optional)+1)
	frame = append(frame,
		SyncByte,
		byte(len(t.Data)>>8), byte(len(t.Data)),
		byte(len(t.Optional)),
		byte(t.PacketType),
	)
	frame = append(frame, CRC8(frame[1:1+HeaderSize]))
	frame = append(frame, t.Data...)
	frame = append(frame, t.Optional...)
	frame = append(frame, crc8Pair(t.Data, t.Optional))
	return frame, nil
}
