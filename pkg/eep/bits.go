package eep

import "fmt"

// Bit addressing follows the wire: bit 0 is the most significant bit of the
// first payload byte. Extraction and packing work on whole bytes with
// shift/mask arithmetic; no per-bit intermediate structures.

// GetBits extracts size bits starting at offset from data as an unsigned
// integer. size must be 1..64.
func GetBits(data []byte, offset, size int) (uint64, error) {
	if offset < 0 || size <= 0 || size > 64 {
		return 0, fmt.Errorf("eep: invalid bit range offset=%d size=%d", offset, size)
	}
	if offset+size > len(data)*8 {
		return 0, fmt.Errorf("%w: need %d bits, have %d", ErrPayloadTooShort, offset+size, len(data)*8)
	}

	var v uint64
	bit := offset
	remaining := size
	for remaining > 0 {
		byteIdx := bit >> 3
		bitIdx := bit & 7
		take := 8 - bitIdx
		if take > remaining {
			take = remaining
		}
		chunk := (data[byteIdx] >> (8 - bitIdx - take)) & byte((1<<take)-1)
		v = v<<take | uint64(chunk)
		bit += take
		remaining -= take
	}
	return v, nil
}

// SetBits packs the low size bits of value into data starting at offset.
// value must fit in size bits.
func SetBits(data []byte, offset, size int, value uint64) error {
	if offset < 0 || size <= 0 || size > 64 {
		return fmt.Errorf("eep: invalid bit range offset=%d size=%d", offset, size)
	}
	if offset+size > len(data)*8 {
		return fmt.Errorf("eep: bit range offset=%d size=%d exceeds %d byte buffer", offset, size, len(data))
	}
	if size < 64 && value >= 1<<size {
		return fmt.Errorf("%w: value %d does not fit %d bits", ErrValueOutOfRange, value, size)
	}

	bit := offset
	remaining := size
	for remaining > 0 {
		byteIdx := bit >> 3
		bitIdx := bit & 7
		take := 8 - bitIdx
		if take > remaining {
			take = remaining
		}
		shift := 8 - bitIdx - take
		mask := byte((1<<take)-1) << shift
		chunk := byte(value>>(remaining-take)) & byte((1<<take)-1)
		data[byteIdx] = (data[byteIdx] &^ mask) | (chunk << shift)
		bit += take
		remaining -= take
	}
	return nil
}
