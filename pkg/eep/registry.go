package eep

import (
	"fmt"
	"sort"

	"github.com/dbehnke/enocean-nexus/pkg/esp3"
)

// Direction marks which way a profile's telegrams flow
type Direction int

const (
	// DirectionTelegram: data telegrams sent by the device
	DirectionTelegram Direction = iota + 1
	// DirectionResponse: command telegrams sent to the device
	DirectionResponse
	// DirectionBoth: profile applies in both directions
	DirectionBoth
)

// Key is the rorg/func/type triple identifying a profile
type Key struct {
	RORG esp3.RORG
	Func byte
	Type byte
}

// String renders the key as the usual dashed EEP code, e.g. "A5-02-05"
func (k Key) String() string {
	return fmt.Sprintf("%02X-%02X-%02X", byte(k.RORG), k.Func, k.Type)
}

// Profile is a named bit layout for a device payload. Immutable after
// registry construction; safe to share across goroutines.
type Profile struct {
	Key          Key
	Description  string
	Direction    Direction
	PayloadBytes int
	Fields       []FieldSpec
}

// Field returns the field with the given shortcut, or nil
func (p *Profile) Field(shortcut string) *FieldSpec {
	for i := range p.Fields {
		if p.Fields[i].Shortcut == shortcut {
			return &p.Fields[i]
		}
	}
	return nil
}

// validate checks field sanity: positive sizes, unique shortcuts, no bit
// range overlap, total span within the payload size class.
func (p *Profile) validate() error {
	if p.PayloadBytes <= 0 {
		return fmt.Errorf("eep: profile %s has no payload size", p.Key)
	}
	seen := make(map[string]bool, len(p.Fields))
	sorted := make([]*FieldSpec, 0, len(p.Fields))
	for i := range p.Fields {
		f := &p.Fields[i]
		if f.Shortcut == "" {
			return fmt.Errorf("eep: profile %s has a field without shortcut", p.Key)
		}
		if f.Size <= 0 || f.Offset < 0 {
			return fmt.Errorf("eep: profile %s field %s has invalid bit range", p.Key, f.Shortcut)
		}
		if f.Offset+f.Size > p.PayloadBytes*8 {
			return fmt.Errorf("eep: profile %s field %s exceeds %d byte payload",
				p.Key, f.Shortcut, p.PayloadBytes)
		}
		if seen[f.Shortcut] {
			return fmt.Errorf("eep: profile %s duplicate field shortcut %s", p.Key, f.Shortcut)
		}
		seen[f.Shortcut] = true
		sorted = append(sorted, f)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Offset < prev.Offset+prev.Size {
			return fmt.Errorf("%w: profile %s fields %s and %s",
				ErrOverlappingField, p.Key, prev.Shortcut, cur.Shortcut)
		}
	}
	return nil
}

// Registry is the process-wide profile catalog. It is built once during
// startup; after Freeze it only serves lookups and needs no locking.
type Registry struct {
	profiles map[Key]*Profile
	frozen   bool
}

// NewRegistry creates an empty profile registry
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[Key]*Profile)}
}

// Register adds a profile during the startup phase. Registration errors are
// fatal for the profile catalog: a malformed profile must not serve data.
func (r *Registry) Register(p *Profile) error {
	if r.frozen {
		return fmt.Errorf("eep: registry is frozen, cannot register %s", p.Key)
	}
	if err := p.validate(); err != nil {
		return err
	}
	if _, exists := r.profiles[p.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProfile, p.Key)
	}
	r.profiles[p.Key] = p
	return nil
}

// Freeze ends the registration phase
func (r *Registry) Freeze() { r.frozen = true }

// Lookup finds the profile for a rorg/func/type triple
func (r *Registry) Lookup(rorg esp3.RORG, fn, ty byte) (*Profile, error) {
	p, ok := r.profiles[Key{RORG: rorg, Func: fn, Type: ty}]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, Key{RORG: rorg, Func: fn, Type: ty})
	}
	return p, nil
}

// Len returns the number of registered profiles
func (r *Registry) Len() int { return len(r.profiles) }

// Keys returns all registered profile keys, sorted
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.profiles))
	for k := range r.profiles {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
