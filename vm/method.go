package vm

// BuiltinFunc is the body of a Go-implemented callable. It runs only after
// the call's arguments have been bound and validated.
type BuiltinFunc func(ctx *Context, args *Bound) (Value, error)

// Builtin is a Go-implemented callable with a declared argument contract.
type Builtin struct {
	name string
	spec ArgSpec
	fn   BuiltinFunc
}

// NewBuiltin creates a builtin. name is used in error messages and reprs.
func NewBuiltin(name string, spec ArgSpec, fn BuiltinFunc) *Builtin {
	return &Builtin{name: name, spec: spec, fn: fn}
}

// Name returns the builtin's qualified name.
func (b *Builtin) Name() string { return b.name }

// Spec returns the builtin's argument contract.
func (b *Builtin) Spec() ArgSpec { return b.spec }

// Arity returns the number of required arguments.
func (b *Builtin) Arity() int { return len(b.spec.Required) }

// Invoke validates args and runs the body. A body that returns a nil
// value without an error yields None.
func (b *Builtin) Invoke(ctx *Context, args Args) (Value, error) {
	bound, err := b.spec.Bind(ctx, b.name, args)
	if err != nil {
		return nil, err
	}
	result, err := b.fn(ctx, bound)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return ctx.none, nil
	}
	return result, nil
}

// NewBuiltinValue wraps b as a runtime value.
func (ctx *Context) NewBuiltinValue(b *Builtin) Value {
	return ctx.newObject(ctx.BuiltinFunctionType, BuiltinPayload{Builtin: b})
}

// newBoundMethod binds fn to self.
func (ctx *Context) newBoundMethod(self, fn Value) Value {
	return ctx.newObject(ctx.MethodType, BoundMethodPayload{Self: self, Func: fn})
}

// DefineBuiltin installs a builtin named name on cls. The builtin's
// qualified name is "<class>.<name>".
func (ctx *Context) DefineBuiltin(cls *Class, name string, spec ArgSpec, fn BuiltinFunc) error {
	return ctx.define(cls, name, ctx.NewBuiltinValue(NewBuiltin(cls.Name+"."+name, spec, fn)))
}

// define stores v in cls's attribute table unless the class is frozen.
func (ctx *Context) define(cls *Class, name string, v Value) error {
	if cls.frozen {
		return ctx.NewTypeError("cannot set '%s' attribute of immutable type '%s'", name, cls.Name)
	}
	cls.dict.Set(name, v)
	ctx.attrs.Invalidate()
	return nil
}

// mustDefineBuiltin is DefineBuiltin for bootstrap code, where failure is a bug.
func (ctx *Context) mustDefineBuiltin(cls *Class, name string, spec ArgSpec, fn BuiltinFunc) {
	if err := ctx.DefineBuiltin(cls, name, spec, fn); err != nil {
		panic("vm: " + err.Error())
	}
}

// selfOnly is the common single-slot contract of methods taking only the receiver.
func selfOnly(cls *Class) ArgSpec {
	return ArgSpec{Required: []Param{{Name: "self", Type: cls}}}
}
