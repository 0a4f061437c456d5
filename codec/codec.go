// Package codec encodes runtime values as deterministic CBOR snapshots.
//
// A snapshot records each value's kind, its class's full name, and its
// contents. Decoding resolves the class through the context's registry,
// so instances of registered subclasses of the built-in types survive a
// round trip with their class intact.
package codec

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/chazu/objcore/vm"
	"github.com/fxamacker/cbor/v2"
)

// MaxDepth bounds the nesting of lists and tuples in a snapshot.
const MaxDepth = 256

// ErrTooDeep is returned for values nested deeper than MaxDepth, which
// includes lists that contain themselves.
var ErrTooDeep = errors.New("codec: value nested too deeply")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: failed to create CBOR enc mode: %v", err))
	}
	encMode = em

	dm, err := cbor.DecOptions{MaxNestedLevels: 2*MaxDepth + 8}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

// Wire kinds. These are part of the snapshot format and must not be
// renumbered.
const (
	wireNone  uint8 = 0
	wireBool  uint8 = 1
	wireInt   uint8 = 2
	wireStr   uint8 = 3
	wireBytes uint8 = 4
	wireList  uint8 = 5
	wireTuple uint8 = 6
)

// wireValue is the CBOR shape of one value.
type wireValue struct {
	Kind  uint8       `cbor:"1,keyasint"`
	Class string      `cbor:"2,keyasint"`
	Bool  bool        `cbor:"3,keyasint,omitempty"`
	Int   string      `cbor:"4,keyasint,omitempty"` // decimal
	Str   string      `cbor:"5,keyasint,omitempty"`
	Bytes []byte      `cbor:"6,keyasint,omitempty"`
	Elems []wireValue `cbor:"7,keyasint,omitempty"`
}

// Marshal encodes v. Only None, bool, int, str, bytes, list and tuple
// values (and instances of their subclasses) can be encoded.
func Marshal(ctx *vm.Context, v vm.Value) ([]byte, error) {
	w, err := toWire(ctx, v, 0)
	if err != nil {
		return nil, err
	}
	data, err := encMode.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal: %w", err)
	}
	return data, nil
}

func toWire(ctx *vm.Context, v vm.Value, depth int) (wireValue, error) {
	if depth > MaxDepth {
		return wireValue{}, ErrTooDeep
	}
	cls := v.Class()
	if cls == nil {
		return wireValue{}, fmt.Errorf("codec: cannot encode %s value", v.Kind())
	}
	if ctx.Classes.Lookup(cls.FullName()) != cls {
		return wireValue{}, fmt.Errorf("codec: class %s is not registered in this context", cls.FullName())
	}

	w := wireValue{Class: cls.FullName()}
	switch p := v.Payload().(type) {
	case vm.NonePayload:
		w.Kind = wireNone
	case vm.BoolPayload:
		w.Kind = wireBool
		w.Bool = p.Value
	case vm.IntPayload:
		w.Kind = wireInt
		w.Int = p.Value.String()
	case vm.StrPayload:
		w.Kind = wireStr
		w.Str = p.Value
	case vm.BytesPayload:
		w.Kind = wireBytes
		w.Bytes = p.Value
	case vm.ListPayload:
		w.Kind = wireList
		return elemsToWire(ctx, w, p.Elements, depth)
	case vm.TuplePayload:
		w.Kind = wireTuple
		return elemsToWire(ctx, w, p.Elements, depth)
	default:
		return wireValue{}, fmt.Errorf("codec: cannot encode %s value of class %s", v.Kind(), w.Class)
	}
	return w, nil
}

func elemsToWire(ctx *vm.Context, w wireValue, elems []vm.Value, depth int) (wireValue, error) {
	w.Elems = make([]wireValue, len(elems))
	for i, e := range elems {
		ew, err := toWire(ctx, e, depth+1)
		if err != nil {
			return wireValue{}, err
		}
		w.Elems[i] = ew
	}
	return w, nil
}

// Unmarshal decodes a snapshot produced by Marshal. Every class named in
// the snapshot must be registered in ctx.
func Unmarshal(ctx *vm.Context, data []byte) (vm.Value, error) {
	var w wireValue
	if err := decMode.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("codec: unmarshal: %w", err)
	}
	return fromWire(ctx, &w, 0)
}

func fromWire(ctx *vm.Context, w *wireValue, depth int) (vm.Value, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}

	cls := ctx.Classes.Lookup(w.Class)
	if cls == nil {
		return nil, fmt.Errorf("codec: unknown class %q", w.Class)
	}

	var p vm.Payload
	switch w.Kind {
	case wireNone:
		if cls == ctx.NoneType {
			return ctx.None(), nil
		}
		p = vm.NonePayload{}
	case wireBool:
		if cls == ctx.BoolType {
			return ctx.NewBool(w.Bool), nil
		}
		p = vm.BoolPayload{Value: w.Bool}
	case wireInt:
		n, ok := new(big.Int).SetString(w.Int, 10)
		if !ok {
			return nil, fmt.Errorf("codec: malformed integer %q", w.Int)
		}
		p = vm.IntPayload{Value: n}
	case wireStr:
		p = vm.StrPayload{Value: w.Str}
	case wireBytes:
		p = vm.BytesPayload{Value: append([]byte{}, w.Bytes...)}
	case wireList, wireTuple:
		elems := make([]vm.Value, len(w.Elems))
		for i := range w.Elems {
			e, err := fromWire(ctx, &w.Elems[i], depth+1)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		if w.Kind == wireList {
			p = vm.ListPayload{Elements: elems}
		} else {
			p = vm.TuplePayload{Elements: elems}
		}
	default:
		return nil, fmt.Errorf("codec: unknown wire kind %d", w.Kind)
	}

	v, err := ctx.NewValue(cls, p)
	if err != nil {
		return nil, fmt.Errorf("codec: class %s: %w", w.Class, err)
	}
	return v, nil
}
