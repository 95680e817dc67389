package analysis

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultEngine is the engine used when none is configured.
const DefaultEngine = "lattice"

// Registry manages engines by name.
type Registry struct {
	engines map[string]Engine
	mu      sync.RWMutex
}

// NewRegistry creates a Registry with the built-in engines registered.
func NewRegistry() *Registry {
	r := &Registry{
		engines: make(map[string]Engine),
	}
	for _, e := range []Engine{NewLatticeEngine(), NewLongestMatchEngine()} {
		r.engines[e.Name()] = e
	}
	return r
}

// Get returns the engine registered under the given name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown analysis engine: %q", name)
	}
	return e, nil
}

// Register adds a custom engine under its own name.
func (r *Registry) Register(e Engine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.engines[e.Name()]; exists {
		return fmt.Errorf("analysis engine already registered: %q", e.Name())
	}
	r.engines[e.Name()] = e
	return nil
}

// Names returns the sorted names of all registered engines.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
