package eep

import (
	"fmt"

	"github.com/dbehnke/enocean-nexus/pkg/esp3"
)

// Built-in profile catalog. Profiles are constructed once at startup as
// immutable values; the registry rejects malformed definitions so a bad
// catalog fails the process instead of serving wrong data.

var teachInEnum = map[uint64]string{0: "teach-in", 1: "data"}

var rockerEnum = map[uint64]string{0: "AI", 1: "A0", 2: "BI", 3: "B0"}

func builtinProfiles() []*Profile {
	return []*Profile{
		{
			Key:          Key{RORG: esp3.RORGRPS, Func: 0x02, Type: 0x01},
			Description:  "Rocker switch, 2 rockers",
			Direction:    DirectionBoth,
			PayloadBytes: 1,
			Fields: []FieldSpec{
				{Shortcut: "R1", Name: "Rocker 1st action", Offset: 0, Size: 3, Enum: rockerEnum},
				{Shortcut: "EB", Name: "Energy bow", Offset: 3, Size: 1,
					Enum: map[uint64]string{0: "released", 1: "pressed"}},
				{Shortcut: "R2", Name: "Rocker 2nd action", Offset: 4, Size: 3, Enum: rockerEnum},
				{Shortcut: "SA", Name: "2nd action", Offset: 7, Size: 1,
					Enum: map[uint64]string{0: "no 2nd action", 1: "2nd action valid"}},
			},
		},
		{
			Key:          Key{RORG: esp3.RORGBS1, Func: 0x00, Type: 0x01},
			Description:  "Single input contact",
			Direction:    DirectionTelegram,
			PayloadBytes: 1,
			Fields: []FieldSpec{
				{Shortcut: "LRN", Name: "Learn button", Offset: 4, Size: 1, Enum: teachInEnum},
				{Shortcut: "CO", Name: "Contact", Offset: 7, Size: 1,
					Enum: map[uint64]string{0: "open", 1: "closed"}},
			},
		},
		{
			Key:          Key{RORG: esp3.RORGBS4, Func: 0x02, Type: 0x05},
			Description:  "Temperature sensor, 0C to +40C",
			Direction:    DirectionTelegram,
			PayloadBytes: 4,
			Fields: []FieldSpec{
				{Shortcut: "TMP", Name: "Temperature", Offset: 16, Size: 8, Unit: "°C",
					Scale: &ScaleSpec{RawMin: 255, RawMax: 0, ScaledMin: 0, ScaledMax: 40}},
				{Shortcut: "LRNB", Name: "Learn bit", Offset: 28, Size: 1, Enum: teachInEnum},
			},
		},
		{
			Key:          Key{RORG: esp3.RORGBS4, Func: 0x04, Type: 0x01},
			Description:  "Temperature and humidity sensor",
			Direction:    DirectionTelegram,
			PayloadBytes: 4,
			Fields: []FieldSpec{
				{Shortcut: "HUM", Name: "Relative humidity", Offset: 8, Size: 8, Unit: "%",
					Scale: &ScaleSpec{RawMin: 0, RawMax: 250, ScaledMin: 0, ScaledMax: 100}},
				{Shortcut: "TMP", Name: "Temperature", Offset: 16, Size: 8, Unit: "°C",
					Scale: &ScaleSpec{RawMin: 0, RawMax: 250, ScaledMin: 0, ScaledMax: 40}},
				{Shortcut: "LRNB", Name: "Learn bit", Offset: 28, Size: 1, Enum: teachInEnum},
				{Shortcut: "TSN", Name: "Temperature sensor availability", Offset: 30, Size: 1,
					Enum: map[uint64]string{0: "not available", 1: "available"}},
			},
		},
		{
			Key:          Key{RORG: esp3.RORGBS4, Func: 0x06, Type: 0x01},
			Description:  "Light sensor, 300lx to 60000lx",
			Direction:    DirectionTelegram,
			PayloadBytes: 4,
			Fields: []FieldSpec{
				{Shortcut: "SVC", Name: "Supply voltage", Offset: 0, Size: 8, Unit: "V",
					Scale: &ScaleSpec{RawMin: 0, RawMax: 255, ScaledMin: 0, ScaledMax: 5.1}},
				{Shortcut: "ILL2", Name: "Illumination (low range)", Offset: 8, Size: 8, Unit: "lx",
					Scale: &ScaleSpec{RawMin: 0, RawMax: 255, ScaledMin: 300, ScaledMax: 30000}},
				{Shortcut: "ILL1", Name: "Illumination (high range)", Offset: 16, Size: 8, Unit: "lx",
					Scale: &ScaleSpec{RawMin: 0, RawMax: 255, ScaledMin: 600, ScaledMax: 60000}},
				{Shortcut: "LRNB", Name: "Learn bit", Offset: 28, Size: 1, Enum: teachInEnum},
				{Shortcut: "RS", Name: "Range select", Offset: 31, Size: 1,
					Enum: map[uint64]string{0: "ILL1", 1: "ILL2"}},
			},
		},
		{
			Key:          Key{RORG: esp3.RORGBS4, Func: 0x38, Type: 0x08},
			Description:  "Central command, gateway",
			Direction:    DirectionResponse,
			PayloadBytes: 4,
			Fields: []FieldSpec{
				{Shortcut: "CMD", Name: "Command identifier", Offset: 0, Size: 8,
					Enum: map[uint64]string{1: "switching", 2: "dimming"}},
				{Shortcut: "LRNB", Name: "Learn bit", Offset: 28, Size: 1, Enum: teachInEnum},
				{Shortcut: "LCK", Name: "Lock for local control", Offset: 29, Size: 1,
					Enum: map[uint64]string{0: "unlock", 1: "lock"}},
				{Shortcut: "SW", Name: "Switching command", Offset: 31, Size: 1,
					Enum: map[uint64]string{0: "off", 1: "on"}},
			},
		},
	}
}

// DefaultRegistry builds and freezes the built-in profile catalog
func DefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	for _, p := range builtinProfiles() {
		if err := r.Register(p); err != nil {
			return nil, fmt.Errorf("builtin catalog: %w", err)
		}
	}
	r.Freeze()
	return r, nil
}
