package gateway

import (
	"fmt"
	"sync/atomic"

	"github.com/dbehnke/enocean-nexus/pkg/eep"
	"github.com/dbehnke/enocean-nexus/pkg/esp3"
)

// Equipment binds a radio address to its configured profile. The profile is
// assigned by configuration, never derived from received telegrams. The
// learned flag is the only field mutated at runtime: the inbound path and
// the learn-mode control channel may touch it from different goroutines.
type Equipment struct {
	Address uint32
	Name    string
	Topic   string
	Profile *eep.Profile
	Ignore  bool

	learned atomic.Bool
}

// NewEquipment creates a configured equipment entry
func NewEquipment(address uint32, name, topic string, profile *eep.Profile) *Equipment {
	if name == "" {
		name = esp3.FormatAddress(address)
	}
	if topic == "" {
		topic = name
	}
	return &Equipment{Address: address, Name: name, Topic: topic, Profile: profile}
}

// Learned reports whether the equipment completed a teach-in handshake
func (e *Equipment) Learned() bool { return e.learned.Load() }

// SetLearned updates the teach-in state
func (e *Equipment) SetLearned(v bool) { e.learned.Store(v) }

// AddressLabel renders the radio address for topics and logs
func (e *Equipment) AddressLabel() string { return esp3.FormatAddress(e.Address) }

// String formats the equipment for logging
func (e *Equipment) String() string {
	return fmt.Sprintf("%s (%s, %s)", e.Name, e.AddressLabel(), e.Profile.Key)
}
