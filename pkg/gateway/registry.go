package gateway

import (
	"sync"
)

// Registry is the address to equipment table, built from configuration and
// injected into the translator. Entries are added during startup or on a
// configuration reload; lookups happen on every inbound telegram.
type Registry struct {
	equipment map[uint32]*Equipment
	mu        sync.RWMutex
}

// NewRegistry creates an empty equipment registry
func NewRegistry() *Registry {
	return &Registry{equipment: make(map[uint32]*Equipment)}
}

// Add inserts or replaces the equipment for its address
func (r *Registry) Add(e *Equipment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.equipment[e.Address] = e
}

// Get retrieves equipment by radio address, nil when unknown
func (r *Registry) Get(address uint32) *Equipment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.equipment[address]
}

// GetByName retrieves equipment by configured name, nil when unknown
func (r *Registry) GetByName(name string) *Equipment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.equipment {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// GetByTopic retrieves equipment whose topic matches, nil when unknown
func (r *Registry) GetByTopic(topic string) *Equipment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.equipment {
		if e.Topic == topic {
			return e
		}
	}
	return nil
}

// Remove deletes the equipment for an address
func (r *Registry) Remove(address uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.equipment, address)
}

// All returns a snapshot of every configured equipment
func (r *Registry) All() []*Equipment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Equipment, 0, len(r.equipment))
	for _, e := range r.equipment {
		out = append(out, e)
	}
	return out
}

// Count returns the number of configured equipment entries
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.equipment)
}
