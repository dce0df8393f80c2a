package source

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var ErrUnknownSource = errors.New("unknown source")

// Registry maintains all configured adapters by ID.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter; IDs are unique.
func (r *Registry) Register(a Adapter) error {
	id := strings.ToLower(a.ID())
	if id == "" {
		return errors.New("adapter id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[id]; exists {
		return fmt.Errorf("adapter %s already registered", id)
	}
	r.adapters[id] = a
	return nil
}

// Get retrieves an adapter by ID.
func (r *Registry) Get(id string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[strings.ToLower(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	return a, nil
}

// ByFamily returns the adapters of one family sorted by ID.
func (r *Registry) ByFamily(f Family) []Adapter {
	var out []Adapter
	for _, a := range r.All() {
		if a.Family() == f {
			out = append(out, a)
		}
	}
	return out
}

// All returns every adapter sorted by ID.
func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Adapter) int { return strings.Compare(a.ID(), b.ID()) })
	return out
}
