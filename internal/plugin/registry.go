package plugin

import (
	"fmt"
	"sync"
)

// Registry maps plugin and preset identifiers to their constructors. The set
// of loadable units is closed: everything resolvable is registered explicitly
// at wiring time, never discovered dynamically.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	presets   map[string]Preset
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: map[string]Factory{},
		presets:   map[string]Preset{},
	}
}

// RegisterPlugin adds a plugin factory under the given identifier.
func (r *Registry) RegisterPlugin(id string, f Factory) error {
	if f == nil {
		return fmt.Errorf("cannot register nil factory for %s", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("plugin %s already registered", id)
	}
	r.factories[id] = f
	return nil
}

// RegisterPreset adds a preset under the given identifier.
func (r *Registry) RegisterPreset(id string, p Preset) error {
	if p == nil {
		return fmt.Errorf("cannot register nil preset for %s", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.presets[id]; exists {
		return fmt.Errorf("preset %s already registered", id)
	}
	r.presets[id] = p
	return nil
}

// Plugin resolves a plugin identifier to a fresh instance.
func (r *Registry) Plugin(id string) (Plugin, bool) {
	r.mu.RLock()
	f, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return f(), true
}

// Preset resolves a preset identifier.
func (r *Registry) Preset(id string) (Preset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[id]
	return p, ok
}
