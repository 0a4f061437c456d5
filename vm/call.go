package vm

import "math/big"

// ---------------------------------------------------------------------------
// Invocation
// ---------------------------------------------------------------------------

// Call invokes callable with args.
//
// Builtins validate args against their contract before running. Bound
// methods prepend their receiver. Calling a type object constructs an
// instance through the class's __new__, with the class prepended.
func (ctx *Context) Call(callable Value, args Args) (Value, error) {
	switch p := callable.payload.(type) {
	case BuiltinPayload:
		return p.Builtin.Invoke(ctx, args)
	case BoundMethodPayload:
		return ctx.Call(p.Func, args.prepend(p.Self))
	case TypePayload:
		newFn, _, ok := ctx.attrs.Lookup(p.Class, "__new__")
		if !ok {
			return nil, ctx.NewTypeError("cannot create '%s' instances", p.Class.Name)
		}
		return ctx.Call(newFn, args.prepend(callable))
	}
	return nil, ctx.NewTypeError("'%s' object is not callable", typeName(callable))
}

// CallMethod looks up name on v through the attribute protocol and calls
// it with positional arguments.
func (ctx *Context) CallMethod(v Value, name string, args ...Value) (Value, error) {
	fn, err := ctx.GetAttr(v, name)
	if err != nil {
		return nil, err
	}
	return ctx.Call(fn, Positional(args...))
}

// callSpecial calls a special method resolved on v's class.
func (ctx *Context) callSpecial(v Value, name string, args ...Value) (Value, error) {
	fn, ok := ctx.lookupSpecial(v, name)
	if !ok {
		return nil, ctx.NewAttributeError("'%s' object has no attribute '%s'", typeName(v), name)
	}
	return ctx.Call(fn, Positional(args...))
}

// ---------------------------------------------------------------------------
// Protocol conveniences
// ---------------------------------------------------------------------------

// Equals compares a and b using a's __eq__.
func (ctx *Context) Equals(a, b Value) (bool, error) {
	if a == b {
		return true, nil
	}
	r, err := ctx.callSpecial(a, "__eq__", b)
	if err != nil {
		return false, err
	}
	return r.Truthy(), nil
}

// Hash returns the hash of v computed by its __hash__. Types whose
// __hash__ is None are unhashable.
func (ctx *Context) Hash(v Value) (*big.Int, error) {
	fn, ok := ctx.lookupSpecial(v, "__hash__")
	if !ok || fn.IsNone() {
		return nil, ctx.NewTypeError("unhashable type: '%s'", typeName(v))
	}
	r, err := ctx.Call(fn, Positional())
	if err != nil {
		return nil, err
	}
	n, ok := intValue(r)
	if !ok {
		return nil, ctx.NewTypeError("__hash__ method should return an integer, not %s", typeName(r))
	}
	return n, nil
}

// Repr returns the textual representation of v computed by its __repr__.
func (ctx *Context) Repr(v Value) (string, error) {
	r, err := ctx.callSpecial(v, "__repr__")
	if err != nil {
		return "", err
	}
	if !IsInstance(r, ctx.StrType) {
		return "", ctx.NewTypeError("__repr__ returned non-string (type %s)", typeName(r))
	}
	return r.Str(), nil
}

// Len returns the length of v computed by its __len__.
func (ctx *Context) Len(v Value) (int, error) {
	fn, ok := ctx.lookupSpecial(v, "__len__")
	if !ok {
		return 0, ctx.NewTypeError("object of type '%s' has no len()", typeName(v))
	}
	r, err := ctx.Call(fn, Positional())
	if err != nil {
		return 0, err
	}
	n, ok := intValue(r)
	if !ok || !n.IsInt64() {
		return 0, ctx.NewTypeError("'%s' object cannot be interpreted as an integer", typeName(r))
	}
	return int(n.Int64()), nil
}
