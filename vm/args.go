package vm

import "sort"

// ---------------------------------------------------------------------------
// Argument contracts
// ---------------------------------------------------------------------------

// Param declares one argument slot of a builtin.
type Param struct {
	Name string
	Type *Class // nil accepts any value
}

// ArgSpec is the declarative argument contract of a builtin: the required
// positional slots followed by the optional ones.
type ArgSpec struct {
	Required []Param
	Optional []Param
}

// Args is an actual argument list: ordered positional values plus
// keyword arguments that fill slots by name.
type Args struct {
	Positional []Value
	Keywords   map[string]Value
}

// Positional builds an Args holding only positional values.
func Positional(values ...Value) Args {
	return Args{Positional: values}
}

// Len returns the total number of supplied arguments.
func (a Args) Len() int {
	return len(a.Positional) + len(a.Keywords)
}

// prepend returns a copy of a with v inserted as the first positional value.
func (a Args) prepend(v Value) Args {
	pos := make([]Value, 0, len(a.Positional)+1)
	pos = append(pos, v)
	pos = append(pos, a.Positional...)
	return Args{Positional: pos, Keywords: a.Keywords}
}

// NumParams returns the number of declared slots.
func (s ArgSpec) NumParams() int {
	return len(s.Required) + len(s.Optional)
}

func (s ArgSpec) param(i int) Param {
	if i < len(s.Required) {
		return s.Required[i]
	}
	return s.Optional[i-len(s.Required)]
}

func (s ArgSpec) index(name string) int {
	for i := range s.NumParams() {
		if s.param(i).Name == name {
			return i
		}
	}
	return -1
}

// Bind validates args against the contract and returns the binding.
//
// Validation is all-or-nothing: either every slot is bound and satisfies
// its type constraint, or a single TypeError describing the first
// violation is returned. Optional slots that were not supplied are bound
// to Absent. fname names the callable in error messages.
func (s ArgSpec) Bind(ctx *Context, fname string, args Args) (*Bound, error) {
	total := s.NumParams()
	given := len(args.Positional)

	if given > total {
		if len(s.Optional) == 0 {
			return nil, ctx.arityError("%s() takes exactly %d argument%s (%d given)", fname, total, plural(total), given)
		}
		return nil, ctx.arityError("%s() takes at most %d argument%s (%d given)", fname, total, plural(total), given)
	}

	values := make([]Value, total)
	copy(values, args.Positional)

	if len(args.Keywords) > 0 {
		names := make([]string, 0, len(args.Keywords))
		for name := range args.Keywords {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			i := s.index(name)
			if i < 0 {
				return nil, ctx.NewTypeError("%s() got an unexpected keyword argument '%s'", fname, name)
			}
			if values[i] != nil {
				e := ctx.NewTypeError("%s() got multiple values for argument '%s'", fname, name)
				e.Param = name
				return nil, e
			}
			values[i] = args.Keywords[name]
		}
	}

	for i, p := range s.Required {
		if values[i] == nil {
			e := ctx.arityError("%s() missing required argument '%s' (pos %d)", fname, p.Name, i+1)
			e.Param = p.Name
			return nil, e
		}
	}

	for i := range values {
		p := s.param(i)
		if values[i] == nil {
			values[i] = Absent
			continue
		}
		if p.Type != nil && !IsInstance(values[i], p.Type) {
			e := ctx.NewTypeError("%s() argument %d ('%s') must be %s, not %s",
				fname, i+1, p.Name, p.Type.Name, typeName(values[i]))
			e.Param = p.Name
			return nil, e
		}
	}

	return &Bound{spec: s, values: values}, nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func typeName(v Value) string {
	if v.class == nil {
		return v.Kind().String()
	}
	return v.class.Name
}

// ---------------------------------------------------------------------------
// Bound: a validated argument binding
// ---------------------------------------------------------------------------

// Bound holds the arguments of a call after validation, one value per
// declared slot.
type Bound struct {
	spec   ArgSpec
	values []Value
}

// Len returns the number of slots.
func (b *Bound) Len() int {
	return len(b.values)
}

// At returns the value bound to slot i.
// Panics if i is out of range.
func (b *Bound) At(i int) Value {
	return b.values[i]
}

// Get returns the value bound to the named slot, which is Absent for an
// optional slot that was not supplied.
// Panics if the contract has no slot with that name.
func (b *Bound) Get(name string) Value {
	i := b.spec.index(name)
	if i < 0 {
		panic("Bound.Get: no parameter named " + name)
	}
	return b.values[i]
}

// Optional returns the named slot's value and whether it was supplied.
func (b *Bound) Optional(name string) (Value, bool) {
	v := b.Get(name)
	if v.IsAbsent() {
		return nil, false
	}
	return v, true
}
