package vm

import (
	"encoding/binary"
	"math/big"
	"strings"

	"github.com/zeebo/xxh3"
)

// ---------------------------------------------------------------------------
// Shared sequence helpers
// ---------------------------------------------------------------------------

// MaxNesting bounds how deeply repr, equality and hashing descend into
// nested lists and tuples. Going deeper raises RecursionError.
const MaxNesting = 1000

// nesting is the state of one repr, equality or hash walk over nested
// sequences. Each top-level call starts a fresh walk, so concurrent walks
// over the same values do not interfere.
type nesting struct {
	depth  int
	active map[uint64]bool // sequences whose repr is in progress
}

func (ctx *Context) descend(n *nesting, suffix string) error {
	if n.depth >= MaxNesting {
		return ctx.NewError(ctx.RecursionErrorType, "maximum recursion depth exceeded%s", suffix)
	}
	n.depth++
	return nil
}

// sequenceBase returns list or tuple when v is a sequence whose special
// method name is the one defined by that built-in, so a walk may recurse
// into it directly. Sequences that override name go through the protocol.
func (ctx *Context) sequenceBase(v Value, name string) *Class {
	var base *Class
	switch v.payload.(type) {
	case ListPayload:
		base = ctx.ListType
	case TuplePayload:
		base = ctx.TupleType
	default:
		return nil
	}
	if _, owner, ok := ctx.attrs.Lookup(v.class, name); !ok || owner != base {
		return nil
	}
	return base
}

// equalSequences compares two sequences pairwise.
func (ctx *Context) equalSequences(a, b Value, n *nesting) (bool, error) {
	xs, ys := a.Elements(), b.Elements()
	if len(xs) != len(ys) {
		return false, nil
	}
	if err := ctx.descend(n, " in comparison"); err != nil {
		return false, err
	}
	defer func() { n.depth-- }()

	for i := range xs {
		x, y := xs[i], ys[i]
		if x == y {
			continue
		}
		var eq bool
		var err error
		if base := ctx.sequenceBase(x, "__eq__"); base != nil {
			if !IsInstance(y, base) {
				return false, nil
			}
			eq, err = ctx.equalSequences(x, y, n)
		} else {
			eq, err = ctx.Equals(x, y)
		}
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

// reprSequence renders a list or tuple. A sequence already being rendered
// further up the walk is shown as [...] or (...).
func (ctx *Context) reprSequence(v Value, n *nesting) (string, error) {
	_, isList := v.payload.(ListPayload)
	if n.active[v.id] {
		if isList {
			return "[...]", nil
		}
		return "(...)", nil
	}
	if err := ctx.descend(n, " while getting the repr of an object"); err != nil {
		return "", err
	}
	if n.active == nil {
		n.active = make(map[uint64]bool)
	}
	n.active[v.id] = true
	defer func() {
		delete(n.active, v.id)
		n.depth--
	}()

	elems := v.Elements()
	parts := make([]string, len(elems))
	for i, e := range elems {
		var r string
		var err error
		if ctx.sequenceBase(e, "__repr__") != nil {
			r, err = ctx.reprSequence(e, n)
		} else {
			r, err = ctx.Repr(e)
		}
		if err != nil {
			return "", err
		}
		parts[i] = r
	}

	inner := strings.Join(parts, ", ")
	switch {
	case isList:
		return "[" + inner + "]", nil
	case len(elems) == 1:
		return "(" + inner + ",)", nil
	}
	return "(" + inner + ")", nil
}

// hashTuple combines the element hashes in order. Each element hash is
// written with its length so that distinct element sequences cannot
// collide by concatenation.
func (ctx *Context) hashTuple(v Value, n *nesting) (*big.Int, error) {
	if err := ctx.descend(n, " while hashing"); err != nil {
		return nil, err
	}
	defer func() { n.depth-- }()

	h := xxh3.New()
	var lenBuf [binary.MaxVarintLen64]byte
	for _, e := range v.Elements() {
		var eh *big.Int
		var err error
		if ctx.sequenceBase(e, "__hash__") == ctx.TupleType {
			eh, err = ctx.hashTuple(e, n)
		} else {
			eh, err = ctx.Hash(e)
		}
		if err != nil {
			return nil, err
		}
		raw := eh.Bytes()
		k := binary.PutVarint(lenBuf[:], int64(len(raw))*int64(eh.Sign()))
		_, _ = h.Write(lenBuf[:k])
		_, _ = h.Write(raw)
	}
	return new(big.Int).SetUint64(h.Sum64()), nil
}

// ---------------------------------------------------------------------------
// list
// ---------------------------------------------------------------------------

type listImpl struct{}

func (listImpl) Equal(ctx *Context, a, b Value) (bool, error) {
	if !IsInstance(b, ctx.ListType) {
		return false, nil
	}
	return ctx.equalSequences(a, b, &nesting{})
}

func (listImpl) Repr(ctx *Context, v Value) (string, error) {
	return ctx.reprSequence(v, &nesting{})
}

func (listImpl) ConstructSpec() ArgSpec {
	return ArgSpec{Optional: []Param{{Name: "iterable"}}}
}

func (listImpl) Construct(ctx *Context, cls *Class, args *Bound) (Value, error) {
	var elems []Value
	if it, ok := args.Optional("iterable"); ok {
		var err error
		if elems, err = ctx.ExtractElements(it); err != nil {
			return nil, err
		}
	}
	return ctx.NewValue(cls, ListPayload{Elements: elems})
}

func (ctx *Context) registerListPrimitives() {
	c := ctx.ListType
	if err := ctx.RegisterType(c, listImpl{}); err != nil {
		panic("vm: " + err.Error())
	}

	// Lists are mutable and therefore unhashable
	c.dict.Set("__hash__", ctx.none)

	ctx.mustDefineBuiltin(c, "__len__", selfOnly(c), func(ctx *Context, args *Bound) (Value, error) {
		return ctx.NewIntFromInt64(int64(len(args.At(0).Elements()))), nil
	})

	// append - add an element to the end of the list
	ctx.mustDefineBuiltin(c, "append", ArgSpec{Required: []Param{{Name: "self", Type: c}, {Name: "object"}}},
		func(ctx *Context, args *Bound) (Value, error) {
			l := args.At(0)
			p := l.payload.(ListPayload)
			p.Elements = append(p.Elements, args.At(1))
			l.SetPayload(p)
			return ctx.none, nil
		})
}

// ---------------------------------------------------------------------------
// tuple
// ---------------------------------------------------------------------------

type tupleImpl struct{}

func (tupleImpl) Equal(ctx *Context, a, b Value) (bool, error) {
	if !IsInstance(b, ctx.TupleType) {
		return false, nil
	}
	return ctx.equalSequences(a, b, &nesting{})
}

func (tupleImpl) Hash(ctx *Context, v Value) (*big.Int, error) {
	return ctx.hashTuple(v, &nesting{})
}

func (tupleImpl) Repr(ctx *Context, v Value) (string, error) {
	return ctx.reprSequence(v, &nesting{})
}

func (tupleImpl) ConstructSpec() ArgSpec {
	return ArgSpec{Optional: []Param{{Name: "iterable"}}}
}

func (tupleImpl) Construct(ctx *Context, cls *Class, args *Bound) (Value, error) {
	var elems []Value
	if it, ok := args.Optional("iterable"); ok {
		var err error
		if elems, err = ctx.ExtractElements(it); err != nil {
			return nil, err
		}
	}
	return ctx.NewValue(cls, TuplePayload{Elements: elems})
}

func (ctx *Context) registerTuplePrimitives() {
	c := ctx.TupleType
	if err := ctx.RegisterType(c, tupleImpl{}); err != nil {
		panic("vm: " + err.Error())
	}

	ctx.mustDefineBuiltin(c, "__len__", selfOnly(c), func(ctx *Context, args *Bound) (Value, error) {
		return ctx.NewIntFromInt64(int64(len(args.At(0).Elements()))), nil
	})
}
