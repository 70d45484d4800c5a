package arena

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrArenaExists = errors.New("arena already registered")

// Registry keeps the arenas a process is running, by battle name.
type Registry struct {
	mu     sync.RWMutex
	arenas map[string]*Arena
}

func NewRegistry() *Registry {
	return &Registry{arenas: make(map[string]*Arena)}
}

func (r *Registry) Add(a *Arena) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.arenas[a.Name()]; ok {
		return fmt.Errorf("%s: %w", a.Name(), ErrArenaExists)
	}
	r.arenas[a.Name()] = a
	return nil
}

func (r *Registry) Get(name string) (*Arena, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.arenas[name]
	return a, ok
}

// Names returns the registered battle names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.arenas))
	for name := range r.arenas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
