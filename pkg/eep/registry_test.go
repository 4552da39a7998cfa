package eep

import (
	"errors"
	"testing"

	"github.com/dbehnke/enocean-nexus/pkg/esp3"
)

func validProfile(ty byte) *Profile {
	return &Profile{
		Key:          Key{RORG: esp3.RORGBS4, Func: 0x10, Type: ty},
		Description:  "test",
		Direction:    DirectionTelegram,
		PayloadBytes: 4,
		Fields: []FieldSpec{
			{Shortcut: "X", Name: "X", Offset: 0, Size: 8},
			{Shortcut: "Y", Name: "Y", Offset: 8, Size: 8},
		},
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	p := validProfile(0x01)
	if err := r.Register(p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	r.Freeze()

	got, err := r.Lookup(esp3.RORGBS4, 0x10, 0x01)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != p {
		t.Error("Lookup returned a different profile")
	}

	if _, err := r.Lookup(esp3.RORGBS4, 0x10, 0x99); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestRegistryDuplicateKey(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(validProfile(0x01)); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := r.Register(validProfile(0x01)); !errors.Is(err, ErrDuplicateProfile) {
		t.Errorf("err = %v, want ErrDuplicateProfile", err)
	}
}

func TestRegistryOverlappingFields(t *testing.T) {
	p := validProfile(0x02)
	p.Fields = []FieldSpec{
		{Shortcut: "A", Offset: 0, Size: 8},
		{Shortcut: "B", Offset: 4, Size: 8}, // overlaps A's bits 4..7
	}
	r := NewRegistry()
	if err := r.Register(p); !errors.Is(err, ErrOverlappingField) {
		t.Errorf("err = %v, want ErrOverlappingField", err)
	}
}

func TestRegistryFieldExceedsPayload(t *testing.T) {
	p := validProfile(0x03)
	p.Fields = []FieldSpec{{Shortcut: "A", Offset: 30, Size: 8}}
	r := NewRegistry()
	if err := r.Register(p); err == nil {
		t.Error("expected error for field exceeding the payload size class")
	}
}

func TestRegistryDuplicateShortcut(t *testing.T) {
	p := validProfile(0x04)
	p.Fields = []FieldSpec{
		{Shortcut: "A", Offset: 0, Size: 4},
		{Shortcut: "A", Offset: 4, Size: 4},
	}
	r := NewRegistry()
	if err := r.Register(p); err == nil {
		t.Error("expected error for duplicate field shortcut")
	}
}

func TestRegistryFrozenRejectsRegister(t *testing.T) {
	r := NewRegistry()
	r.Freeze()
	if err := r.Register(validProfile(0x05)); err == nil {
		t.Error("expected error registering into a frozen registry")
	}
}
