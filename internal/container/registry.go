package container

import (
	"slices"
	"sync"
)

// Registry holds live service instances keyed by service name. Keys are
// kept in the order instances were stored, which is construction order.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]any
	keys      []string
}

func NewRegistry() *Registry {
	return &Registry{
		instances: make(map[string]any),
	}
}

func (r *Registry) Set(name string, instance any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[name]; !exists {
		r.keys = append(r.keys, name)
	}
	r.instances[name] = instance
}

func (r *Registry) Get(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instance, exists := r.instances[name]
	return instance, exists
}

func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[name]; !exists {
		return
	}
	delete(r.instances, name)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == name })
}

func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.keys)
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.instances)
}

func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.instances = make(map[string]any)
	r.keys = nil
}
