package vm

import "math/big"

// ---------------------------------------------------------------------------
// Type capabilities
// ---------------------------------------------------------------------------
//
// A built-in type module describes its special methods by implementing
// some of the interfaces below and registering the implementation with
// RegisterType. Registration installs the matching __eq__, __hash__,
// __repr__ and __new__ builtins on the class, each with a contract whose
// first slot is constrained to the class.

// Equatable implements __eq__. a is always an instance of the registered class.
type Equatable interface {
	Equal(ctx *Context, a, b Value) (bool, error)
}

// Hashable implements __hash__. Values that compare equal must hash equal.
type Hashable interface {
	Hash(ctx *Context, v Value) (*big.Int, error)
}

// ReprFormattable implements __repr__.
type ReprFormattable interface {
	Repr(ctx *Context, v Value) (string, error)
}

// Constructor implements __new__. ConstructSpec declares the slots that
// follow the class argument. Construct receives the full binding, with
// the class in slot "cls", after cls has been checked to be a subclass of
// the registered class.
type Constructor interface {
	ConstructSpec() ArgSpec
	Construct(ctx *Context, cls *Class, args *Bound) (Value, error)
}

// RegisterType records impl as the implementation of cls and installs a
// builtin for every capability impl provides. A type that is Hashable
// must also be Equatable.
func (ctx *Context) RegisterType(cls *Class, impl any) error {
	eq, isEq := impl.(Equatable)
	h, isHash := impl.(Hashable)
	repr, isRepr := impl.(ReprFormattable)
	ctor, isCtor := impl.(Constructor)

	if isHash && !isEq {
		return ctx.NewTypeError("type '%s' defines __hash__ without __eq__", cls.Name)
	}
	if cls.frozen {
		return ctx.NewTypeError("cannot register implementation of immutable type '%s'", cls.Name)
	}

	ctx.implMu.Lock()
	ctx.impls[cls] = impl
	ctx.implMu.Unlock()

	if isEq {
		spec := ArgSpec{Required: []Param{{Name: "self", Type: cls}, {Name: "other"}}}
		if err := ctx.DefineBuiltin(cls, "__eq__", spec, func(ctx *Context, args *Bound) (Value, error) {
			ok, err := eq.Equal(ctx, args.At(0), args.At(1))
			if err != nil {
				return nil, err
			}
			return ctx.NewBool(ok), nil
		}); err != nil {
			return err
		}
	}

	if isHash {
		if err := ctx.DefineBuiltin(cls, "__hash__", selfOnly(cls), func(ctx *Context, args *Bound) (Value, error) {
			n, err := h.Hash(ctx, args.At(0))
			if err != nil {
				return nil, err
			}
			return ctx.NewInt(n), nil
		}); err != nil {
			return err
		}
	}

	if isRepr {
		if err := ctx.DefineBuiltin(cls, "__repr__", selfOnly(cls), func(ctx *Context, args *Bound) (Value, error) {
			s, err := repr.Repr(ctx, args.At(0))
			if err != nil {
				return nil, err
			}
			return ctx.NewStr(s), nil
		}); err != nil {
			return err
		}
	}

	if isCtor {
		inner := ctor.ConstructSpec()
		spec := ArgSpec{
			Required: append([]Param{{Name: "cls"}}, inner.Required...),
			Optional: inner.Optional,
		}
		if err := ctx.DefineBuiltin(cls, "__new__", spec, func(ctx *Context, args *Bound) (Value, error) {
			target := args.At(0).TypeClass()
			if target == nil || !target.IsSubclassOf(cls) {
				return nil, ctx.NewTypeError("%s is not a subtype of %s", ctx.describe(args.At(0)), cls.Name)
			}
			return ctor.Construct(ctx, target, args)
		}); err != nil {
			return err
		}
	}

	return nil
}

// TypeImpl returns the implementation registered for cls or for the
// nearest class in its MRO, or nil.
func (ctx *Context) TypeImpl(cls *Class) any {
	ctx.implMu.RLock()
	defer ctx.implMu.RUnlock()
	for _, c := range cls.mro {
		if impl, ok := ctx.impls[c]; ok {
			return impl
		}
	}
	return nil
}

// describe renders v for error messages, falling back to its type name
// when v has no usable repr.
func (ctx *Context) describe(v Value) string {
	if s, err := ctx.Repr(v); err == nil {
		return s
	}
	return "<" + typeName(v) + " object>"
}
