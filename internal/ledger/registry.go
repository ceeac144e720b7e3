package ledger

import (
	"sort"
	"strings"
	"sync"
)

// directory is a keyed store of named records. The ledger owns two of them,
// one for users and one for groups; the namespaces are independent.
type directory[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

func newDirectory[T any]() *directory[T] {
	return &directory[T]{entries: make(map[string]T)}
}

func (d *directory[T]) put(key string, v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[key] = v
}

func (d *directory[T]) get(key string) (T, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.entries[key]
	return v, ok
}

func (d *directory[T]) keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var keyStripper = strings.NewReplacer("_", "", " ", "", "\t", "", "-", "")

// NameToKey derives the default directory key for a display name:
// lowercased with underscores, whitespace, and hyphens removed.
func NameToKey(name string) string {
	return keyStripper.Replace(strings.ToLower(name))
}
