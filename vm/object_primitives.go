package vm

import (
	"fmt"
	"math/big"
)

// ---------------------------------------------------------------------------
// object: identity semantics shared by every class
// ---------------------------------------------------------------------------

type objectImpl struct{}

func (objectImpl) Equal(_ *Context, a, b Value) (bool, error) {
	return a == b, nil
}

func (objectImpl) Hash(_ *Context, v Value) (*big.Int, error) {
	return new(big.Int).SetUint64(v.id), nil
}

func (objectImpl) Repr(_ *Context, v Value) (string, error) {
	return fmt.Sprintf("<%s object at %#x>", v.class.FullName(), v.id), nil
}

func (objectImpl) ConstructSpec() ArgSpec { return ArgSpec{} }

func (objectImpl) Construct(ctx *Context, cls *Class, _ *Bound) (Value, error) {
	if !ctx.hasInstanceDict(cls) {
		return nil, ctx.NewTypeError("object.__new__(%s) is not safe, use %s.__new__()", cls.Name, cls.layout.Name)
	}
	return ctx.NewInstance(cls), nil
}

func (ctx *Context) registerObjectPrimitives() {
	c := ctx.ObjectType
	if err := ctx.RegisterType(c, objectImpl{}); err != nil {
		panic("vm: " + err.Error())
	}

	// __ne__ - negation of __eq__
	ctx.mustDefineBuiltin(c, "__ne__", ArgSpec{Required: []Param{{Name: "self", Type: c}, {Name: "other"}}},
		func(ctx *Context, args *Bound) (Value, error) {
			eq, err := ctx.Equals(args.At(0), args.At(1))
			if err != nil {
				return nil, err
			}
			return ctx.NewBool(!eq), nil
		})
}

// ---------------------------------------------------------------------------
// type
// ---------------------------------------------------------------------------

type typeImpl struct{}

func (typeImpl) Repr(_ *Context, v Value) (string, error) {
	return fmt.Sprintf("<class '%s'>", v.TypeClass().FullName()), nil
}

func (ctx *Context) registerTypePrimitives() {
	c := ctx.TypeType
	if err := ctx.RegisterType(c, typeImpl{}); err != nil {
		panic("vm: " + err.Error())
	}

	// mro - the method resolution order as a tuple of type objects
	ctx.mustDefineBuiltin(c, "mro", selfOnly(c), func(ctx *Context, args *Bound) (Value, error) {
		mro := args.At(0).TypeClass().mro
		elems := make([]Value, len(mro))
		for i, m := range mro {
			elems[i] = m.self
		}
		return ctx.NewTuple(elems...), nil
	})

	// __subclasscheck__ - issubclass(sub, self)
	ctx.mustDefineBuiltin(c, "__subclasscheck__", ArgSpec{Required: []Param{{Name: "self", Type: c}, {Name: "sub", Type: c}}},
		func(ctx *Context, args *Bound) (Value, error) {
			return ctx.NewBool(IsSubclass(args.At(1).TypeClass(), args.At(0).TypeClass())), nil
		})

	// __instancecheck__ - isinstance(instance, self)
	ctx.mustDefineBuiltin(c, "__instancecheck__", ArgSpec{Required: []Param{{Name: "self", Type: c}, {Name: "instance"}}},
		func(ctx *Context, args *Bound) (Value, error) {
			return ctx.NewBool(IsInstance(args.At(1), args.At(0).TypeClass())), nil
		})
}

// ---------------------------------------------------------------------------
// NoneType
// ---------------------------------------------------------------------------

type noneImpl struct{}

func (noneImpl) Repr(*Context, Value) (string, error) { return "None", nil }

func (noneImpl) ConstructSpec() ArgSpec { return ArgSpec{} }

func (noneImpl) Construct(ctx *Context, _ *Class, _ *Bound) (Value, error) {
	return ctx.none, nil
}

func (ctx *Context) registerNonePrimitives() {
	if err := ctx.RegisterType(ctx.NoneType, noneImpl{}); err != nil {
		panic("vm: " + err.Error())
	}
}

// ---------------------------------------------------------------------------
// Builtin functions and bound methods
// ---------------------------------------------------------------------------

type builtinFunctionImpl struct{}

func (builtinFunctionImpl) Repr(_ *Context, v Value) (string, error) {
	return fmt.Sprintf("<built-in function %s>", v.payload.(BuiltinPayload).Builtin.Name()), nil
}

type methodImpl struct{}

func (methodImpl) Repr(ctx *Context, v Value) (string, error) {
	p := v.payload.(BoundMethodPayload)
	name := "?"
	if b, ok := p.Func.payload.(BuiltinPayload); ok {
		name = b.Builtin.Name()
	}
	return fmt.Sprintf("<built-in method %s of %s object at %#x>", name, typeName(p.Self), p.Self.id), nil
}

func (ctx *Context) registerCallablePrimitives() {
	if err := ctx.RegisterType(ctx.BuiltinFunctionType, builtinFunctionImpl{}); err != nil {
		panic("vm: " + err.Error())
	}
	if err := ctx.RegisterType(ctx.MethodType, methodImpl{}); err != nil {
		panic("vm: " + err.Error())
	}
}
