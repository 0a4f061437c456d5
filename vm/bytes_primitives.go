package vm

import (
	"bytes"
	"encoding/hex"
	"math/big"

	"github.com/zeebo/xxh3"
)

// ---------------------------------------------------------------------------
// bytes: immutable sequence of 8-bit unsigned integers
// ---------------------------------------------------------------------------

type bytesImpl struct{}

// Equal compares contents. Any bytes instance, including instances of
// subclasses, can be equal; every other type compares unequal.
func (bytesImpl) Equal(ctx *Context, a, b Value) (bool, error) {
	if !IsInstance(b, ctx.BytesType) {
		return false, nil
	}
	return bytes.Equal(a.Bytes(), b.Bytes()), nil
}

// Hash depends only on the byte contents, so equal values hash equal
// regardless of their class or identity.
func (bytesImpl) Hash(_ *Context, v Value) (*big.Int, error) {
	return new(big.Int).SetUint64(xxh3.Hash(v.Bytes())), nil
}

func (bytesImpl) Repr(_ *Context, v Value) (string, error) {
	return bytesRepr(v.Bytes()), nil
}

func (bytesImpl) ConstructSpec() ArgSpec {
	return ArgSpec{Optional: []Param{{Name: "source"}}}
}

// Construct builds a value of class cls from an optional iterable of
// integer-convertible elements.
func (bytesImpl) Construct(ctx *Context, cls *Class, args *Bound) (Value, error) {
	data := []byte{}
	if src, ok := args.Optional("source"); ok {
		elems, err := ctx.ExtractElements(src)
		if err != nil {
			return nil, err
		}
		data = make([]byte, 0, len(elems))
		for _, elem := range elems {
			n, err := ctx.ToInteger(elem, 10)
			if err != nil {
				return nil, err
			}
			b, err := ctx.toByte(n)
			if err != nil {
				return nil, err
			}
			data = append(data, b)
		}
	}
	return ctx.NewValue(cls, BytesPayload{Value: data})
}

// toByte narrows n to a byte, rejecting values outside 0-255.
func (ctx *Context) toByte(n *big.Int) (byte, error) {
	if n.Sign() < 0 || !n.IsUint64() || n.Uint64() > 255 {
		return 0, ctx.NewValueError("bytes must be in range(0, 256)")
	}
	return byte(n.Uint64()), nil
}

const hexDigits = "0123456789abcdef"

// bytesRepr renders data as b'\xHH...' with two lowercase hex digits per byte.
func bytesRepr(data []byte) string {
	buf := make([]byte, 0, 3+4*len(data))
	buf = append(buf, 'b', '\'')
	for _, b := range data {
		buf = append(buf, '\\', 'x', hexDigits[b>>4], hexDigits[b&0x0f])
	}
	buf = append(buf, '\'')
	return string(buf)
}

func (ctx *Context) registerBytesPrimitives() {
	c := ctx.BytesType
	if err := ctx.RegisterType(c, bytesImpl{}); err != nil {
		panic("vm: " + err.Error())
	}

	// __len__ - number of bytes
	ctx.mustDefineBuiltin(c, "__len__", selfOnly(c), func(ctx *Context, args *Bound) (Value, error) {
		return ctx.NewIntFromInt64(int64(len(args.At(0).Bytes()))), nil
	})

	// __getitem__ - the byte at index as an int; negative indices count from the end
	ctx.mustDefineBuiltin(c, "__getitem__", ArgSpec{Required: []Param{{Name: "self", Type: c}, {Name: "index", Type: ctx.IntType}}},
		func(ctx *Context, args *Bound) (Value, error) {
			data := args.At(0).Bytes()
			idx, _ := intValue(args.At(1))
			i := new(big.Int).Set(idx)
			if i.Sign() < 0 {
				i.Add(i, big.NewInt(int64(len(data))))
			}
			if i.Sign() < 0 || !i.IsInt64() || i.Int64() >= int64(len(data)) {
				return nil, ctx.NewIndexError("index out of range")
			}
			return ctx.NewIntFromInt64(int64(data[i.Int64()])), nil
		})

	// __contains__ - membership test for a single byte value
	ctx.mustDefineBuiltin(c, "__contains__", ArgSpec{Required: []Param{{Name: "self", Type: c}, {Name: "key", Type: ctx.IntType}}},
		func(ctx *Context, args *Bound) (Value, error) {
			n, _ := intValue(args.At(1))
			b, err := ctx.toByte(n)
			if err != nil {
				return nil, ctx.NewValueError("byte must be in range(0, 256)")
			}
			return ctx.NewBool(bytes.IndexByte(args.At(0).Bytes(), b) >= 0), nil
		})

	// hex - lowercase hexadecimal text of the contents
	ctx.mustDefineBuiltin(c, "hex", selfOnly(c), func(ctx *Context, args *Bound) (Value, error) {
		return ctx.NewStr(hex.EncodeToString(args.At(0).Bytes())), nil
	})
}
