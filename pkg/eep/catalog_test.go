package eep

import (
	"math"
	"testing"

	"github.com/dbehnke/enocean-nexus/pkg/esp3"
)

func TestDefaultRegistryBuilds(t *testing.T) {
	r, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}
	if r.Len() == 0 {
		t.Fatal("default registry is empty")
	}
	for _, k := range r.Keys() {
		p, err := r.Lookup(k.RORG, k.Func, k.Type)
		if err != nil {
			t.Errorf("Lookup(%s) failed: %v", k, err)
			continue
		}
		if len(p.Fields) == 0 {
			t.Errorf("profile %s has no fields", k)
		}
	}
}

func TestCatalogTemperatureProfile(t *testing.T) {
	r, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}
	p, err := r.Lookup(esp3.RORGBS4, 0x02, 0x05)
	if err != nil {
		t.Fatalf("Lookup A5-02-05 failed: %v", err)
	}

	// 4BS payload with raw temperature 0x55 (85) and the data (not teach-in)
	// learn bit set. Raw range is inverted: 255 -> 0C, 0 -> 40C.
	values, err := Decode(p, []byte{0x00, 0x00, 0x55, 0x08})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := 40.0 * (255.0 - 85.0) / 255.0
	if got := values["TMP"].Value.(float64); math.Abs(got-want) > 0.01 {
		t.Errorf("TMP = %v, want ≈%.2f", got, want)
	}
	if got := values["LRNB"].Value; got != "data" {
		t.Errorf("LRNB = %v, want data", got)
	}
}

func TestCatalogRockerSwitch(t *testing.T) {
	r, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}
	p, err := r.Lookup(esp3.RORGRPS, 0x02, 0x01)
	if err != nil {
		t.Fatalf("Lookup F6-02-01 failed: %v", err)
	}

	// 0x50: rocker BI with energy bow pressed, no second action
	values, err := Decode(p, []byte{0x50})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := values["R1"].Value; got != "BI" {
		t.Errorf("R1 = %v, want BI", got)
	}
	if got := values["EB"].Value; got != "pressed" {
		t.Errorf("EB = %v, want pressed", got)
	}
	if got := values["SA"].Value; got != "no 2nd action" {
		t.Errorf("SA = %v, want no 2nd action", got)
	}
}

func TestCatalogCentralCommandEncode(t *testing.T) {
	r, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}
	p, err := r.Lookup(esp3.RORGBS4, 0x38, 0x08)
	if err != nil {
		t.Fatalf("Lookup A5-38-08 failed: %v", err)
	}
	raw, err := Encode(p, map[string]interface{}{
		"CMD":  "switching",
		"LRNB": "data",
		"SW":   "on",
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if raw[0] != 0x01 {
		t.Errorf("command byte = %02X, want 01", raw[0])
	}
	if raw[3]&0x01 != 0x01 {
		t.Errorf("switch bit not set: %X", raw)
	}
	if raw[3]&0x08 != 0x08 {
		t.Errorf("learn bit not set for a data telegram: %X", raw)
	}
}
