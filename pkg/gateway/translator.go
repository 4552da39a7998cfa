package gateway

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dbehnke/enocean-nexus/pkg/eep"
	"github.com/dbehnke/enocean-nexus/pkg/esp3"
)

// Translation errors. Decode and encode failures wrap the underlying
// profile codec error so callers can inspect both layers.
var (
	ErrUnknownEquipment = errors.New("gateway: unknown equipment")
	ErrEquipmentIgnored = errors.New("gateway: equipment is ignored")
	ErrNotRadioTelegram = errors.New("gateway: not a radio telegram")
	ErrDecodeFailed     = errors.New("gateway: decode failed")
	ErrEncodeFailed     = errors.New("gateway: encode failed")
	ErrWrongDirection   = errors.New("gateway: profile does not accept commands")
)

// Meta carries per-telegram radio metadata alongside the decoded values
type Meta struct {
	DBm           int       `json:"dbm"`
	Repeated      bool      `json:"repeated"`
	RepeaterLevel int       `json:"repeater_level"`
	SubTelegrams  int       `json:"subtelegrams"`
	ReceivedAt    time.Time `json:"received_at"`
}

// Inbound is the result of translating one received radio telegram.
// Exactly one of Values and Signal is set for data telegrams; both are
// nil for teach-in telegrams.
type Inbound struct {
	Equipment *Equipment
	Values    map[string]eep.DecodedValue
	Signal    *esp3.SignalMessage
	Meta      Meta
	TeachIn   bool
}

// TeachInEvent is delivered to observers when a teach-in completes
type TeachInEvent struct {
	Equipment *Equipment
	When      time.Time
	DBm       int
}

// TeachInObserver receives completed teach-in notifications
type TeachInObserver func(TeachInEvent)

// Translator maps radio telegrams to decoded equipment readings and
// command maps back to radio telegrams. Learn mode gates teach-in
// handling globally, mirroring the physical learn button on the gateway.
type Translator struct {
	equipment *Registry
	baseID    uint32

	learnMode atomic.Bool

	mu        sync.Mutex
	observers []TeachInObserver
}

// NewTranslator creates a translator over the given equipment registry.
// baseID is the gateway radio address used as sender for outbound
// telegrams.
func NewTranslator(equipment *Registry, baseID uint32) *Translator {
	return &Translator{equipment: equipment, baseID: baseID}
}

// SetLearnMode enables or disables teach-in handling
func (tr *Translator) SetLearnMode(on bool) { tr.learnMode.Store(on) }

// LearnMode reports whether teach-in handling is enabled
func (tr *Translator) LearnMode() bool { return tr.learnMode.Load() }

// OnTeachIn registers an observer for completed teach-ins
func (tr *Translator) OnTeachIn(fn TeachInObserver) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.observers = append(tr.observers, fn)
}

// HandleTelegram translates one received radio telegram. Unknown senders
// and malformed payloads return an error without affecting any state, so
// a burst of foreign traffic cannot disturb configured equipment.
func (tr *Translator) HandleTelegram(t *esp3.Telegram, now time.Time) (*Inbound, error) {
	if t.PacketType != esp3.PacketTypeRadioERP1 {
		return nil, fmt.Errorf("%w: %s", ErrNotRadioTelegram, t.PacketType)
	}

	addr := t.Address()
	eq := tr.equipment.Get(addr)
	if eq == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownEquipment, esp3.FormatAddress(addr), t.RORG())
	}
	if eq.Ignore {
		return nil, fmt.Errorf("%w: %s", ErrEquipmentIgnored, eq.Name)
	}

	in := &Inbound{
		Equipment: eq,
		Meta: Meta{
			DBm:           t.DBm(),
			Repeated:      t.Repeated(),
			RepeaterLevel: t.RepeaterLevel(),
			SubTelegrams:  t.SubTelNum(),
			ReceivedAt:    now,
		},
	}

	if isTeachIn(t) {
		in.TeachIn = true
		if !tr.LearnMode() {
			// Teach-in attempts outside learn mode are reported but must
			// not change the learned state.
			return in, nil
		}
		eq.SetLearned(true)
		tr.notifyTeachIn(TeachInEvent{Equipment: eq, When: now, DBm: in.Meta.DBm})
		return in, nil
	}

	if t.RORG() == esp3.RORGSignal {
		sig, err := esp3.DecodeSignal(t.Payload())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
		}
		in.Signal = sig
		return in, nil
	}

	values, err := eep.Decode(eq.Profile, t.Payload())
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrDecodeFailed, eq.Name, eq.Profile.Key, err)
	}
	in.Values = values
	return in, nil
}

// BuildTelegram encodes a command map into an outbound radio telegram for
// the equipment's profile. The learn bit defaults to "data" when the
// caller does not set it, so commands are never mistaken for teach-ins.
func (tr *Translator) BuildTelegram(eq *Equipment, values map[string]interface{}) (*esp3.Telegram, error) {
	p := eq.Profile
	if p.Direction == eep.DirectionTelegram {
		return nil, fmt.Errorf("%w: %s is receive-only", ErrWrongDirection, p.Key)
	}

	values = withDefaultLearnBit(p, values)
	payload, err := eep.Encode(p, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrEncodeFailed, eq.Name, p.Key, err)
	}
	return esp3.NewERP1Telegram(p.Key.RORG, payload, tr.baseID, eq.Address), nil
}

func (tr *Translator) notifyTeachIn(ev TeachInEvent) {
	tr.mu.Lock()
	observers := make([]TeachInObserver, len(tr.observers))
	copy(observers, tr.observers)
	tr.mu.Unlock()
	for _, fn := range observers {
		fn(ev)
	}
}

// isTeachIn recognizes teach-in telegrams: the universal teach-in rorg,
// and 1BS/4BS telegrams with the learn bit cleared.
func isTeachIn(t *esp3.Telegram) bool {
	payload := t.Payload()
	switch t.RORG() {
	case esp3.RORGUTE:
		return true
	case esp3.RORGBS1:
		return len(payload) >= 1 && payload[0]&0x08 == 0
	case esp3.RORGBS4:
		return len(payload) >= 4 && payload[3]&0x08 == 0
	}
	return false
}

// withDefaultLearnBit copies the command map and fills in the learn bit
// field when the profile has one and the caller left it out.
func withDefaultLearnBit(p *eep.Profile, values map[string]interface{}) map[string]interface{} {
	var lrn string
	for _, shortcut := range []string{"LRNB", "LRN"} {
		if p.Field(shortcut) != nil {
			lrn = shortcut
			break
		}
	}
	if lrn == "" {
		return values
	}
	if _, ok := values[lrn]; ok {
		return values
	}
	out := make(map[string]interface{}, len(values)+1)
	for k, v := range values {
		out[k] = v
	}
	out[lrn] = "data"
	return out
}
