package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Registry holds bot persona definitions.
type Registry struct {
	mu       sync.RWMutex
	personas map[string]*Persona
}

// NewRegistry creates a registry seeded with the default persona.
func NewRegistry() *Registry {
	r := &Registry{personas: make(map[string]*Persona)}
	d := DefaultPersona()
	r.personas[d.ID] = d
	return r
}

// LoadFromFile loads personas from a JSON file.
func (r *Registry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read personas file: %w", err)
	}
	return r.LoadFromJSON(data)
}

// LoadFromJSON loads personas from raw JSON bytes. Entries without an
// ID are skipped; zero-valued thresholds fall back to the defaults.
func (r *Registry) LoadFromJSON(data []byte) error {
	var list []*Persona
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse personas JSON: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range list {
		if p.ID == "" {
			continue
		}
		applyThresholdDefaults(&p.Brain)
		r.personas[p.ID] = p
	}
	return nil
}

// Get returns a persona by ID, or nil.
func (r *Registry) Get(id string) *Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.personas[id]
}

// All returns a snapshot of all personas.
func (r *Registry) All() []*Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Persona, 0, len(r.personas))
	for _, p := range r.personas {
		out = append(out, p)
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.personas)
}

func applyThresholdDefaults(t *Thresholds) {
	d := DefaultThresholds()
	if t.HitFloor == 0 {
		t.HitFloor = d.HitFloor
	}
	if t.StandCeiling == 0 {
		t.StandCeiling = d.StandCeiling
	}
	if t.MidHitCeiling == 0 {
		t.MidHitCeiling = d.MidHitCeiling
	}
	if t.PressureHitProb == 0 {
		t.PressureHitProb = d.PressureHitProb
	}
}
