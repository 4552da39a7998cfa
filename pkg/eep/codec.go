package eep

import (
	"fmt"
)

// Decode extracts every field of the profile from the raw payload bytes.
// The payload length is authoritative from the frame; decode only requires
// that each field's bit range fits inside it.
func Decode(p *Profile, raw []byte) (map[string]DecodedValue, error) {
	values := make(map[string]DecodedValue, len(p.Fields))
	for i := range p.Fields {
		f := &p.Fields[i]
		bits, err := GetBits(raw, f.Offset, f.Size)
		if err != nil {
			return nil, fmt.Errorf("profile %s field %s: %w", p.Key, f.Shortcut, err)
		}
		dv, err := f.decode(bits)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.Key, err)
		}
		values[f.Shortcut] = dv
	}
	return values, nil
}

// Encode bit-packs the given shortcut/value mapping into a payload buffer
// sized to the profile's payload size class. Bits not covered by any field
// stay zero. Unknown shortcuts and values that do not fit their field are
// rejected naming the offending shortcut.
func Encode(p *Profile, values map[string]interface{}) ([]byte, error) {
	buf := make([]byte, p.PayloadBytes)
	for shortcut, value := range values {
		f := p.Field(shortcut)
		if f == nil {
			return nil, fmt.Errorf("%w: %q in profile %s", ErrUnknownShortcut, shortcut, p.Key)
		}
		raw, err := f.encode(value)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.Key, err)
		}
		if f.Size < 64 && raw >= 1<<f.Size {
			return nil, fmt.Errorf("%w: field %s value %d does not fit %d bits",
				ErrValueOutOfRange, shortcut, raw, f.Size)
		}
		if err := SetBits(buf, f.Offset, f.Size, raw); err != nil {
			return nil, fmt.Errorf("profile %s field %s: %w", p.Key, shortcut, err)
		}
	}
	return buf, nil
}
