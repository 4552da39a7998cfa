package eep

import (
	"errors"
	"fmt"
	"math"
)

// Codec and registry errors
var (
	ErrDuplicateProfile = errors.New("eep: duplicate profile key")
	ErrOverlappingField = errors.New("eep: overlapping field bit ranges")
	ErrProfileNotFound  = errors.New("eep: profile not found")
	ErrPayloadTooShort  = errors.New("eep: payload too short")
	ErrValueOutOfRange  = errors.New("eep: value out of range")
	ErrUnknownEnumValue = errors.New("eep: unknown enum value")
	ErrUnknownShortcut  = errors.New("eep: unknown field shortcut")
)

// ScaleSpec is the affine mapping between a raw field integer and its
// engineering value (EEP profile documentation, p8). Raw ranges may be
// inverted (RawMin > RawMax), which yields a negative slope.
type ScaleSpec struct {
	RawMin    float64
	RawMax    float64
	ScaledMin float64
	ScaledMax float64
}

// Apply maps a raw integer to the scaled engineering value. Out-of-range
// raw values scale linearly and pass through; the profile author owns range
// correctness.
func (s ScaleSpec) Apply(raw uint64) float64 {
	return s.ScaledMin + (float64(raw)-s.RawMin)*s.slope()
}

// Invert maps an engineering value back to the nearest raw integer
func (s ScaleSpec) Invert(scaled float64) (uint64, error) {
	raw := math.Round((scaled-s.ScaledMin)/s.slope() + s.RawMin)
	if raw < 0 {
		return 0, fmt.Errorf("%w: %v maps to negative raw value", ErrValueOutOfRange, scaled)
	}
	return uint64(raw), nil
}

func (s ScaleSpec) slope() float64 {
	return (s.ScaledMax - s.ScaledMin) / (s.RawMax - s.RawMin)
}

// FieldSpec describes one named bit range of a profile payload. Immutable
// after registry construction.
type FieldSpec struct {
	Shortcut string
	Name     string
	Offset   int // bit offset, 0 = MSB of first payload byte
	Size     int // bit length, > 0
	Scale    *ScaleSpec
	Enum     map[uint64]string
	Unit     string
}

// DecodedValue is one decoded field: the raw integer plus the mapped value
// (float64 for scaled fields, string for enum fields, uint64 otherwise).
// Constructed per decode call and not retained.
type DecodedValue struct {
	Shortcut string      `json:"shortcut"`
	Name     string      `json:"name"`
	Raw      uint64      `json:"raw"`
	Value    interface{} `json:"value"`
	Unit     string      `json:"unit,omitempty"`
}

// decode maps the raw integer extracted from the payload through the
// field's enum table or scale.
func (f *FieldSpec) decode(raw uint64) (DecodedValue, error) {
	dv := DecodedValue{Shortcut: f.Shortcut, Name: f.Name, Raw: raw, Unit: f.Unit}
	switch {
	case f.Enum != nil:
		label, ok := f.Enum[raw]
		if !ok {
			return dv, fmt.Errorf("%w: field %s value %d", ErrUnknownEnumValue, f.Shortcut, raw)
		}
		dv.Value = label
	case f.Scale != nil:
		dv.Value = f.Scale.Apply(raw)
	default:
		dv.Value = raw
	}
	return dv, nil
}

// encode maps a caller-supplied value back to the raw field integer
func (f *FieldSpec) encode(value interface{}) (uint64, error) {
	switch {
	case f.Enum != nil:
		if label, ok := value.(string); ok {
			for raw, l := range f.Enum {
				if l == label {
					return raw, nil
				}
			}
			return 0, fmt.Errorf("%w: field %s label %q", ErrUnknownEnumValue, f.Shortcut, label)
		}
		raw, err := toUint64(value)
		if err != nil {
			return 0, fmt.Errorf("field %s: %w", f.Shortcut, err)
		}
		if _, ok := f.Enum[raw]; !ok {
			return 0, fmt.Errorf("%w: field %s value %d", ErrUnknownEnumValue, f.Shortcut, raw)
		}
		return raw, nil
	case f.Scale != nil:
		scaled, err := toFloat64(value)
		if err != nil {
			return 0, fmt.Errorf("field %s: %w", f.Shortcut, err)
		}
		raw, err := f.Scale.Invert(scaled)
		if err != nil {
			return 0, fmt.Errorf("field %s: %w", f.Shortcut, err)
		}
		return raw, nil
	default:
		raw, err := toUint64(value)
		if err != nil {
			return 0, fmt.Errorf("field %s: %w", f.Shortcut, err)
		}
		return raw, nil
	}
}

func toUint64(v interface{}) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint:
		return uint64(n), nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("%w: negative value %d", ErrValueOutOfRange, n)
		}
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("%w: negative value %d", ErrValueOutOfRange, n)
		}
		return uint64(n), nil
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %v is not an unsigned integer", ErrValueOutOfRange, n)
		}
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("%w: unsupported value type %T", ErrValueOutOfRange, v)
	}
}

func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: unsupported value type %T", ErrValueOutOfRange, v)
	}
}
