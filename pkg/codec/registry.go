package codec

import (
	"fmt"
	"sync"
)

// Registry maps format names to codec factories. Registration order is
// preserved so Formats enumerates deterministically. A registry is safe for
// concurrent use; the expected lifecycle is populate once at process start,
// read-only thereafter. There is no unregistration.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	factories map[string]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a codec factory under the given format name.
// Registering a name twice is an error; custom formats should pick a new
// name rather than shadow an existing one.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return wrapError(name, fmt.Errorf("format name cannot be empty"))
	}
	if factory == nil {
		return wrapError(name, fmt.Errorf("factory cannot be nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok {
		return wrapError(name, ErrFormatExists)
	}
	r.factories[name] = factory
	r.order = append(r.order, name)
	return nil
}

// Resolve returns the factory registered under the given format name.
// Unknown names yield ErrFormatNotFound; there is no silent default.
func (r *Registry) Resolve(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, wrapError(name, ErrFormatNotFound)
	}
	return factory, nil
}

// Formats returns the registered format names in registration order
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry holding the builtin formats.
// It is built exactly once, by explicit construction rather than package
// load-order side effects.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		must(r.Register(FormatGob, func() Codec { return NewGob() }))
		must(r.Register(FormatJSON, func() Codec { return NewJSON(nil) }))
		must(r.Register(FormatMsgpack, func() Codec { return NewMsgpack() }))
		defaultRegistry = r
	})
	return defaultRegistry
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
