package engine

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Factory opens an engine.
type Factory func() (Engine, error)

var (
	mu        sync.Mutex
	factories = make(map[string]Factory)
)

// Register makes an engine available by name. Implementations call it from init.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := factories[name]; ok {
		panic("engine: engine already registered: " + name)
	}
	factories[name] = f
}

// Names returns the registered engine names, sorted.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New opens the engine registered under name.
func New(name string) (Engine, error) {
	mu.Lock()
	f, ok := factories[name]
	mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("unknown engine %q (registered: %s)", name, strings.Join(Names(), ", "))
	}
	e, err := f()
	if err != nil {
		return nil, fmt.Errorf("opening engine %q: %w", name, err)
	}
	return e, nil
}

// Default opens the engine selected by MNNTENSOR_ENGINE.
func Default() (Engine, error) {
	return New(EngineName())
}
