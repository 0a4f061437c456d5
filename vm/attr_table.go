package vm

import (
	"sort"
	"sync"
)

// AttrTable maps attribute names to values for a single class.
//
// Each class owns one table holding its methods and class-level data.
// Inheritance is not handled here: the attribute protocol walks the
// method-resolution order and consults each class's table in turn.
// A table is safe for concurrent use.
type AttrTable struct {
	mu      sync.RWMutex
	entries map[string]Value
}

// NewAttrTable creates an empty attribute table.
func NewAttrTable() *AttrTable {
	return &AttrTable{entries: make(map[string]Value)}
}

// Get returns the value stored under name in this table only.
func (t *AttrTable) Get(name string) (Value, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[name]
	return v, ok
}

// Set adds or replaces the entry for name.
func (t *AttrTable) Set(name string, v Value) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[name] = v
}

// Delete removes the entry for name.
func (t *AttrTable) Delete(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, name)
}

// Has returns true if this table defines name.
func (t *AttrTable) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[name]
	return ok
}

// Len returns the number of entries.
func (t *AttrTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Names returns the entry names in sorted order.
func (t *AttrTable) Names() []string {
	t.mu.RLock()
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	t.mu.RUnlock()
	sort.Strings(names)
	return names
}
