package plugin

import (
	"errors"
	"fmt"

	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	// ErrDuplicateName is returned when a second plugin registers under a
	// name that is already taken.
	ErrDuplicateName = errors.New("plugin name already registered")

	// ErrNotFound is returned when no plugin is registered under a name.
	ErrNotFound = errors.New("plugin not found")

	// ErrPluginVersionMissing is returned when a plugin does not declare
	// the SDK version it was built against.
	ErrPluginVersionMissing = errors.New("plugin does not declare an SDK version")

	// ErrPluginVersionMismatch is returned when a plugin was built against
	// a different SDK version than the host exposes.
	ErrPluginVersionMismatch = errors.New("plugin SDK version mismatch")
)

// Registry maps plugin names to their factories. It is safe for concurrent
// use; the host registers during load and resolves names on every file
// event.
type Registry struct {
	factories cmap.ConcurrentMap[string, Factory]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: cmap.New[Factory]()}
}

// Register adds a factory under name. A name may be claimed only once;
// the second registration fails with ErrDuplicateName so a conflict is
// surfaced at load time instead of silently shadowing a plugin.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("plugin name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("plugin %q: factory cannot be nil", name)
	}
	if !r.factories.SetIfAbsent(name, factory) {
		return fmt.Errorf("plugin %q: %w", name, ErrDuplicateName)
	}
	return nil
}

// Get returns the factory registered under name.
func (r *Registry) Get(name string) (Factory, error) {
	f, ok := r.factories.Get(name)
	if !ok {
		return nil, fmt.Errorf("plugin %q: %w", name, ErrNotFound)
	}
	return f, nil
}

// Build constructs the plugin registered under name and enforces the SDK
// version gate on the result.
func (r *Registry) Build(name string, args Args) (Plugin, error) {
	factory, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	p, err := factory(args)
	if err != nil {
		return nil, fmt.Errorf("plugin %q: %w", name, err)
	}
	if err := CheckVersion(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Names returns the names of all registered plugins.
func (r *Registry) Names() []string {
	return r.factories.Keys()
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	return r.factories.Count()
}

// defaultRegistry backs the package-level convenience functions.
var defaultRegistry = NewRegistry()

// Register adds a factory to the default registry.
func Register(name string, factory Factory) error {
	return defaultRegistry.Register(name, factory)
}

// Get resolves a factory from the default registry.
func Get(name string) (Factory, error) {
	return defaultRegistry.Get(name)
}

// Build constructs a plugin from the default registry.
func Build(name string, args Args) (Plugin, error) {
	return defaultRegistry.Build(name, args)
}

// Names lists the default registry.
func Names() []string {
	return defaultRegistry.Names()
}

// Reset replaces the default registry with an empty one. Intended for
// tests.
func Reset() {
	defaultRegistry = NewRegistry()
}
