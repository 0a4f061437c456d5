package vm

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ---------------------------------------------------------------------------
// Class: type objects
// ---------------------------------------------------------------------------

// Class describes a runtime type: its name, its bases, its method
// resolution order, and the attribute table holding its methods.
type Class struct {
	Name      string // Class name
	Namespace string // Namespace (empty for built-ins)

	bases   []*Class
	mro     []*Class
	layout  *Class // built-in class that decides the payload kind of instances
	dict    *AttrTable
	builtin bool
	frozen  bool
	final   bool // cannot be used as a base
	self    *Object
}

var errInconsistentMRO = errors.New("cannot create a consistent method resolution order")

// newClass builds a class and computes its MRO. The class is not yet
// reachable as a value and not registered.
func newClass(namespace, name string, bases []*Class) (*Class, error) {
	c := &Class{
		Name:      name,
		Namespace: namespace,
		bases:     append([]*Class(nil), bases...),
		dict:      NewAttrTable(),
	}
	mro, err := linearize(c)
	if err != nil {
		return nil, err
	}
	c.mro = mro
	layout, err := solidBase(bases)
	if err != nil {
		return nil, err
	}
	c.layout = layout
	return c, nil
}

// linearize computes the C3 linearization of c. With a single base this
// is c followed by the base's own MRO.
func linearize(c *Class) ([]*Class, error) {
	seqs := make([][]*Class, 0, len(c.bases)+1)
	for _, b := range c.bases {
		seqs = append(seqs, append([]*Class(nil), b.mro...))
	}
	seqs = append(seqs, append([]*Class(nil), c.bases...))

	mro := []*Class{c}
	for {
		live := seqs[:0]
		for _, s := range seqs {
			if len(s) > 0 {
				live = append(live, s)
			}
		}
		seqs = live
		if len(seqs) == 0 {
			return mro, nil
		}

		var head *Class
		for _, s := range seqs {
			if !inTail(seqs, s[0]) {
				head = s[0]
				break
			}
		}
		if head == nil {
			return nil, errInconsistentMRO
		}
		mro = append(mro, head)
		for i, s := range seqs {
			if s[0] == head {
				seqs[i] = s[1:]
			}
		}
	}
}

func inTail(seqs [][]*Class, c *Class) bool {
	for _, s := range seqs {
		for _, x := range s[1:] {
			if x == c {
				return true
			}
		}
	}
	return false
}

// solidBase picks the most derived built-in layout among the bases.
// Bases whose layouts are unrelated cannot be combined.
func solidBase(bases []*Class) (*Class, error) {
	var best *Class
	for _, b := range bases {
		l := b.layout
		switch {
		case best == nil, l.IsSubclassOf(best):
			best = l
		case best.IsSubclassOf(l):
		default:
			return nil, fmt.Errorf("multiple bases have instance lay-out conflict (%s, %s)", best.Name, l.Name)
		}
	}
	return best, nil
}

// IsSubclassOf returns true if c is a subclass of other (or is the same class).
func (c *Class) IsSubclassOf(other *Class) bool {
	for _, cur := range c.mro {
		if cur == other {
			return true
		}
	}
	return false
}

// IsSuperclassOf returns true if c is a superclass of other (or is the same class).
func (c *Class) IsSuperclassOf(other *Class) bool {
	return other.IsSubclassOf(c)
}

// IsSubclass reports whether candidate derives from ancestor. Every class
// is a subclass of itself.
func IsSubclass(candidate, ancestor *Class) bool {
	if candidate == nil || ancestor == nil {
		return false
	}
	return candidate.IsSubclassOf(ancestor)
}

// IsInstance reports whether v's class derives from cls.
func IsInstance(v Value, cls *Class) bool {
	if v == nil {
		return false
	}
	return IsSubclass(v.class, cls)
}

// Bases returns the direct bases in declaration order.
func (c *Class) Bases() []*Class {
	return append([]*Class(nil), c.bases...)
}

// Superclass returns the first base, or nil for the root class.
func (c *Class) Superclass() *Class {
	if len(c.bases) == 0 {
		return nil
	}
	return c.bases[0]
}

// MRO returns the method resolution order, starting with c itself.
func (c *Class) MRO() []*Class {
	return append([]*Class(nil), c.mro...)
}

// Layout returns the built-in class that defines the payload kind carried
// by instances of c. Subclasses share the layout of their bases.
func (c *Class) Layout() *Class {
	return c.layout
}

// IsBuiltin returns true for classes created during Context bootstrap.
func (c *Class) IsBuiltin() bool {
	return c.builtin
}

// IsFinal returns true if c cannot be subclassed.
func (c *Class) IsFinal() bool {
	return c.final
}

// IsFrozen returns true if the class's attribute table can no longer be modified.
func (c *Class) IsFrozen() bool {
	return c.frozen
}

// Value returns the type object for c.
func (c *Class) Value() Value {
	return c.self
}

// Depth returns the length of the longest base chain (0 for the root class).
func (c *Class) Depth() int {
	depth := 0
	for _, b := range c.bases {
		if d := b.Depth() + 1; d > depth {
			depth = d
		}
	}
	return depth
}

// ---------------------------------------------------------------------------
// Attribute access on the class itself
// ---------------------------------------------------------------------------

// LookupLocal returns the attribute stored in this class's own table.
func (c *Class) LookupLocal(name string) (Value, bool) {
	return c.dict.Get(name)
}

// Lookup walks the MRO and returns the first attribute named name along
// with the class that defines it.
func (c *Class) Lookup(name string) (Value, *Class, bool) {
	for _, cur := range c.mro {
		if v, ok := cur.dict.Get(name); ok {
			return v, cur, true
		}
	}
	return nil, nil, false
}

// AttrNames returns the names defined directly on this class, sorted.
func (c *Class) AttrNames() []string {
	return c.dict.Names()
}

// ---------------------------------------------------------------------------
// Full qualified name helpers
// ---------------------------------------------------------------------------

// FullName returns the fully qualified class name (namespace::name or just name).
func (c *Class) FullName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "::" + c.Name
}

// String implements the Stringer interface.
func (c *Class) String() string {
	return c.FullName()
}

// ---------------------------------------------------------------------------
// ClassTable: Global class registry
// ---------------------------------------------------------------------------

// ClassTable manages registered classes by full name.
//
// The table is append-only: a name, once registered, always refers to the
// same class. It is safe for concurrent use.
type ClassTable struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

// NewClassTable creates a new empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{
		classes: make(map[string]*Class),
	}
}

// Register adds a class to the table. Registering a second class under an
// existing name fails.
func (ct *ClassTable) Register(c *Class) error {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	key := c.FullName()
	if _, exists := ct.classes[key]; exists {
		return fmt.Errorf("class %s is already registered", key)
	}
	ct.classes[key] = c
	return nil
}

// Lookup finds a class by full name.
func (ct *ClassTable) Lookup(name string) *Class {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.classes[name]
}

// LookupInNamespace finds a class by name and namespace.
func (ct *ClassTable) LookupInNamespace(namespace, name string) *Class {
	key := name
	if namespace != "" {
		key = namespace + "::" + name
	}
	return ct.Lookup(key)
}

// Has returns true if a class with this name is registered.
func (ct *ClassTable) Has(name string) bool {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	_, ok := ct.classes[name]
	return ok
}

// All returns all registered classes sorted by full name.
func (ct *ClassTable) All() []*Class {
	ct.mu.RLock()
	result := make([]*Class, 0, len(ct.classes))
	for _, c := range ct.classes {
		result = append(result, c)
	}
	ct.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].FullName() < result[j].FullName()
	})
	return result
}

// Len returns the number of registered classes.
func (ct *ClassTable) Len() int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return len(ct.classes)
}
