package vm

import (
	"math/big"
)

// ---------------------------------------------------------------------------
// int
// ---------------------------------------------------------------------------

type intImpl struct{}

func (intImpl) Equal(_ *Context, a, b Value) (bool, error) {
	x, _ := intValue(a)
	y, ok := intValue(b)
	return ok && x.Cmp(y) == 0, nil
}

func (intImpl) Hash(_ *Context, v Value) (*big.Int, error) {
	n, _ := intValue(v)
	return new(big.Int).Set(n), nil
}

func (intImpl) Repr(_ *Context, v Value) (string, error) {
	return v.Int().String(), nil
}

func (intImpl) ConstructSpec() ArgSpec {
	return ArgSpec{Optional: []Param{{Name: "x"}, {Name: "base"}}}
}

func (intImpl) Construct(ctx *Context, cls *Class, args *Bound) (Value, error) {
	n := new(big.Int)
	x, hasX := args.Optional("x")
	baseArg, hasBase := args.Optional("base")

	switch {
	case hasBase:
		if !hasX {
			return nil, ctx.NewTypeError("int() missing string argument")
		}
		if x.Kind() != KindStr && x.Kind() != KindBytes {
			return nil, ctx.NewTypeError("int() can't convert non-string with explicit base")
		}
		b, ok := intValue(baseArg)
		if !ok || !b.IsInt64() {
			return nil, ctx.NewTypeError("'%s' object cannot be interpreted as an integer", typeName(baseArg))
		}
		parsed, err := ctx.ToInteger(x, int(b.Int64()))
		if err != nil {
			return nil, err
		}
		n = parsed
	case hasX:
		parsed, err := ctx.ToInteger(x, 10)
		if err != nil {
			return nil, err
		}
		n = parsed
	}

	if cls == ctx.IntType {
		return ctx.newObject(cls, IntPayload{Value: n}), nil
	}
	return ctx.NewValue(cls, IntPayload{Value: n})
}

func (ctx *Context) registerIntegerPrimitives() {
	c := ctx.IntType
	if err := ctx.RegisterType(c, intImpl{}); err != nil {
		panic("vm: " + err.Error())
	}

	// bit_length - number of bits needed to represent abs(self)
	ctx.mustDefineBuiltin(c, "bit_length", selfOnly(c), func(ctx *Context, args *Bound) (Value, error) {
		n, _ := intValue(args.At(0))
		return ctx.NewIntFromInt64(int64(n.BitLen())), nil
	})
}

// ---------------------------------------------------------------------------
// bool
// ---------------------------------------------------------------------------

// boolImpl inherits equality and hashing from int.
type boolImpl struct{}

func (boolImpl) Repr(_ *Context, v Value) (string, error) {
	if v.Bool() {
		return "True", nil
	}
	return "False", nil
}

func (boolImpl) ConstructSpec() ArgSpec {
	return ArgSpec{Optional: []Param{{Name: "x"}}}
}

func (boolImpl) Construct(ctx *Context, _ *Class, args *Bound) (Value, error) {
	x, ok := args.Optional("x")
	if !ok {
		return ctx.falseVal, nil
	}
	return ctx.NewBool(x.Truthy()), nil
}

func (ctx *Context) registerBooleanPrimitives() {
	if err := ctx.RegisterType(ctx.BoolType, boolImpl{}); err != nil {
		panic("vm: " + err.Error())
	}
}
