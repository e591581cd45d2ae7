package rewrite

import (
	"fmt"
	"sort"
	"sync"
)

// globalRegistry holds the named rule sets available to configuration.
var globalRegistry = &Registry{
	sets: make(map[string]func() []*Rule),
}

// Registry maps rule set names to constructors.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]func() []*Rule
}

// Register adds a named rule set. Registering a name twice replaces it.
func Register(name string, set func() []*Rule) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.sets[name] = set
}

// SetNames returns the registered rule set names, sorted.
func SetNames() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	names := make([]string, 0, len(globalRegistry.sets))
	for name := range globalRegistry.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a fresh copy of the named rule set.
func Lookup(name string) ([]*Rule, bool) {
	globalRegistry.mu.RLock()
	set, ok := globalRegistry.sets[name]
	globalRegistry.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return set(), true
}

// Resolve concatenates the named rule sets in order.
func Resolve(names []string) ([]*Rule, error) {
	var rules []*Rule
	for _, name := range names {
		set, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("rewrite: unknown rule set %q (have %v)", name, SetNames())
		}
		rules = append(rules, set...)
	}
	return rules, nil
}

func init() {
	Register("builtins", Builtins)
	Register("folding", Folding)
	Register("rebase", Rebase)
	Register("default", Default)
}
