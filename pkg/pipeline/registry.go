// ABOUTME: Registry of concrete capability implementations by name
// ABOUTME: Mutex-guarded maps for resources, mods and mixer factories
package pipeline

import (
	"sync"

	"github.com/mleml/mleml-go/pkg/chip"
	"github.com/mleml/mleml-go/pkg/resource"
)

// MixerFactory builds a mixer for a given output sample rate and config.
type MixerFactory func(rate int, cfg resource.Config) (chip.Mixer, error)

// Registry maps implementation names to the concrete Resources, Mods and
// mixer factories a composition may reference. Registration and lookup are
// safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	resources map[string]resource.Resource
	mods      map[string]resource.Mod
	mixers    map[string]MixerFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		resources: make(map[string]resource.Resource),
		mods:      make(map[string]resource.Mod),
		mixers:    make(map[string]MixerFactory),
	}
}

// RegisterResource installs a producer implementation. A later registration
// under the same name replaces the earlier one.
func (r *Registry) RegisterResource(name string, res resource.Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[name] = res
}

// RegisterMod installs a transformer implementation.
func (r *Registry) RegisterMod(name string, m resource.Mod) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mods[name] = m
}

// RegisterMixer installs a mixer factory.
func (r *Registry) RegisterMixer(name string, f MixerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mixers[name] = f
}

// Resource looks up a producer implementation.
func (r *Registry) Resource(name string) (resource.Resource, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.resources[name]
	return res, ok
}

// Mod looks up a transformer implementation.
func (r *Registry) Mod(name string) (resource.Mod, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mods[name]
	return m, ok
}

// Mixer looks up a mixer factory.
func (r *Registry) Mixer(name string) (MixerFactory, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.mixers[name]
	return f, ok
}
