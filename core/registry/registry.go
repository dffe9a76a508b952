package registry

import "sync"

// Registry is a keyed store for init-time extension registration.
// Each key can be locked after bootstrap; registration into a locked
// key panics at the call site (see cmd/cron/api registries).
type Registry struct {
	mu     sync.RWMutex
	values map[string]interface{}
	locked map[string]bool
}

// GlobalRegistry is the process-wide registry instance.
var GlobalRegistry = &Registry{
	values: make(map[string]interface{}),
	locked: make(map[string]bool),
}

// GetGlobal returns the value stored under key.
func (r *Registry) GetGlobal(key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

// SetGlobal stores a value under key. No-op check for locks is left to
// the callers so they can panic with a registry-specific message.
func (r *Registry) SetGlobal(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
}

// Lock marks a key immutable.
func (r *Registry) Lock(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked[key] = true
}

// IsLocked reports whether a key has been locked.
func (r *Registry) IsLocked(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked[key]
}

// UnlockForTesting reopens a locked key. Tests only.
func (r *Registry) UnlockForTesting(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked[key] = false
}
