// Package registry provides a global registry of patch passes.
// Passes register themselves in init() functions, allowing the gate to
// build a run plan without hardcoded dependencies on every pass.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Pass describes one stage of a patch run.
type Pass struct {
	// ID is a unique identifier (e.g., "dictionary", "plugin-rules").
	// Used in run plans, logs and the history store.
	ID string

	// Title is a human-readable name for display.
	Title string

	// MinVersion is the first config.json version that enables this pass.
	MinVersion int

	// Order positions the pass within a run. Lower runs first.
	Order int
}

var (
	passes = make(map[string]Pass)
	mu     sync.RWMutex
)

// Register adds a pass to the registry.
// Typically called from a package's init() function.
// Panics if a pass with the same ID is already registered.
func Register(p Pass) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := passes[p.ID]; exists {
		panic(fmt.Sprintf("registry: pass %q already registered", p.ID))
	}

	passes[p.ID] = p
}

// List returns all registered passes in run order.
func List() []Pass {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Pass, 0, len(passes))
	for _, p := range passes {
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// ForVersion returns the passes enabled by a config version, in run order.
func ForVersion(version int) []Pass {
	var result []Pass
	for _, p := range List() {
		if p.MinVersion <= version {
			result = append(result, p)
		}
	}
	return result
}

// Lookup returns the pass registered under id.
func Lookup(id string) (Pass, error) {
	mu.RLock()
	defer mu.RUnlock()

	p, ok := passes[id]
	if !ok {
		return Pass{}, fmt.Errorf("registry: unknown pass %q", id)
	}

	return p, nil
}
