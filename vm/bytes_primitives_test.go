package vm

import (
	"errors"
	"testing"
	"testing/quick"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func intList(ctx *Context, ns ...int64) Value {
	elems := make([]Value, len(ns))
	for i, n := range ns {
		elems[i] = ctx.NewIntFromInt64(n)
	}
	return ctx.NewList(elems...)
}

// constructBytes calls bytes(source) through the type object.
func constructBytes(t *testing.T, ctx *Context, ns ...int64) Value {
	t.Helper()
	v, err := ctx.Call(ctx.BytesType.Value(), Positional(intList(ctx, ns...)))
	if err != nil {
		t.Fatalf("bytes(%v) failed: %v", ns, err)
	}
	return v
}

func mustEqual(t *testing.T, ctx *Context, a, b Value) bool {
	t.Helper()
	r, err := ctx.CallMethod(a, "__eq__", b)
	if err != nil {
		t.Fatalf("__eq__ failed: %v", err)
	}
	return r.Bool()
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestBytesConstructEmpty(t *testing.T) {
	ctx := NewContext()
	v, err := ctx.Call(ctx.BytesType.Value(), Positional())
	if err != nil {
		t.Fatalf("bytes() failed: %v", err)
	}
	if v.Class() != ctx.BytesType {
		t.Errorf("class = %v, want bytes", v.Class())
	}
	if len(v.Bytes()) != 0 {
		t.Errorf("len = %d, want 0", len(v.Bytes()))
	}
}

func TestBytesConstructFromList(t *testing.T) {
	ctx := NewContext()
	v := constructBytes(t, ctx, 0, 255, 16)
	want := []byte{0, 255, 16}
	if got := v.Bytes(); string(got) != string(want) {
		t.Errorf("Bytes() = %v, want %v", got, want)
	}
}

func TestBytesConstructViaNew(t *testing.T) {
	ctx := NewContext()
	newFn, err := ctx.GetAttr(ctx.BytesType.Value(), "__new__")
	if err != nil {
		t.Fatalf("GetAttr(bytes, __new__) failed: %v", err)
	}
	v, err := ctx.Call(newFn, Positional(ctx.BytesType.Value(), intList(ctx, 1, 2)))
	if err != nil {
		t.Fatalf("bytes.__new__(bytes, [1, 2]) failed: %v", err)
	}
	if string(v.Bytes()) != "\x01\x02" {
		t.Errorf("Bytes() = %v, want [1 2]", v.Bytes())
	}
}

func TestBytesConstructFromVariousIterables(t *testing.T) {
	ctx := NewContext()
	tests := []struct {
		name   string
		source Value
		want   string
	}{
		{"tuple", ctx.NewTuple(ctx.NewIntFromInt64(7), ctx.NewIntFromInt64(8)), "\x07\x08"},
		{"bytes", ctx.NewBytes([]byte{9, 10}), "\x09\x0a"},
		{"str digits", ctx.NewStr("12"), "\x01\x02"},
		{"list of str", ctx.NewList(ctx.NewStr("65"), ctx.NewStr(" 66 ")), "AB"},
		{"bools", ctx.NewList(ctx.True(), ctx.False()), "\x01\x00"},
	}

	for _, tt := range tests {
		v, err := ctx.Call(ctx.BytesType.Value(), Positional(tt.source))
		if err != nil {
			t.Errorf("%s: bytes() failed: %v", tt.name, err)
			continue
		}
		if got := string(v.Bytes()); got != tt.want {
			t.Errorf("%s: Bytes() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestBytesConstructDoesNotMutateSource(t *testing.T) {
	ctx := NewContext()
	src := intList(ctx, 1, 2, 3)
	constructBytes(t, ctx, 1, 2, 3)
	if _, err := ctx.Call(ctx.BytesType.Value(), Positional(src)); err != nil {
		t.Fatal(err)
	}
	if n := len(src.Elements()); n != 3 {
		t.Errorf("source length = %d, want 3", n)
	}
}

func TestBytesConstructSubclass(t *testing.T) {
	ctx := NewContext()
	sub, err := ctx.NewClass("MyBytes", ctx.BytesType)
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}

	v, err := ctx.Call(sub.Value(), Positional(intList(ctx, 1, 2)))
	if err != nil {
		t.Fatalf("MyBytes([1, 2]) failed: %v", err)
	}
	if v.Class() != sub {
		t.Errorf("class = %v, want MyBytes", v.Class())
	}
	if !IsInstance(v, ctx.BytesType) {
		t.Error("MyBytes instance should be an instance of bytes")
	}

	// Subclass and base instances with equal contents are equal both ways
	base := constructBytes(t, ctx, 1, 2)
	if !mustEqual(t, ctx, v, base) || !mustEqual(t, ctx, base, v) {
		t.Error("MyBytes([1, 2]) and bytes([1, 2]) should be equal")
	}
}

func TestBytesConstructRejectsNonSubclass(t *testing.T) {
	ctx := NewContext()
	newFn, _, _ := ctx.BytesType.Lookup("__new__")

	tests := []struct {
		name string
		cls  Value
	}{
		{"int type", ctx.IntType.Value()},
		{"object type", ctx.ObjectType.Value()},
		{"not a type", ctx.NewStr("bytes")},
	}

	for _, tt := range tests {
		_, err := ctx.Call(newFn, Positional(tt.cls, intList(ctx, 1)))
		if !IsTypeError(err) {
			t.Errorf("%s: err = %v, want TypeError", tt.name, err)
		}
	}

	_, err := ctx.Call(newFn, Positional(ctx.IntType.Value()))
	if err == nil || err.Error() != "TypeError: <class 'int'> is not a subtype of bytes" {
		t.Errorf("err = %v, want message naming the class", err)
	}
}

func TestBytesConstructRejectsOutOfRange(t *testing.T) {
	ctx := NewContext()
	for _, n := range []int64{256, -1, 1000, -256} {
		_, err := ctx.Call(ctx.BytesType.Value(), Positional(intList(ctx, 1, n)))
		if !IsValueError(err) {
			t.Errorf("bytes([1, %d]): err = %v, want ValueError", n, err)
		}
	}

	huge := ctx.NewList(ctx.NewStr("100000000000000000000000000"))
	if _, err := ctx.Call(ctx.BytesType.Value(), Positional(huge)); !IsValueError(err) {
		t.Errorf("bytes([huge]): err = %v, want ValueError", err)
	}
}

func TestBytesConstructRejectsBadElements(t *testing.T) {
	ctx := NewContext()

	_, err := ctx.Call(ctx.BytesType.Value(), Positional(ctx.NewList(ctx.NewStr("x"))))
	if !IsValueError(err) {
		t.Errorf("bytes(['x']): err = %v, want ValueError", err)
	}

	_, err = ctx.Call(ctx.BytesType.Value(), Positional(ctx.NewList(ctx.None())))
	if !IsTypeError(err) {
		t.Errorf("bytes([None]): err = %v, want TypeError", err)
	}

	_, err = ctx.Call(ctx.BytesType.Value(), Positional(ctx.NewIntFromInt64(3)))
	if !IsTypeError(err) {
		t.Errorf("bytes(3): err = %v, want TypeError", err)
	}
}

// ---------------------------------------------------------------------------
// Equality
// ---------------------------------------------------------------------------

func TestBytesEquals(t *testing.T) {
	ctx := NewContext()

	if !mustEqual(t, ctx, constructBytes(t, ctx, 1, 2, 3), constructBytes(t, ctx, 1, 2, 3)) {
		t.Error("bytes([1,2,3]) == bytes([1,2,3]) should be true")
	}
	if mustEqual(t, ctx, constructBytes(t, ctx, 1, 2, 3), constructBytes(t, ctx, 1, 2, 4)) {
		t.Error("bytes([1,2,3]) == bytes([1,2,4]) should be false")
	}
	if mustEqual(t, ctx, constructBytes(t, ctx, 1, 2), constructBytes(t, ctx, 1, 2, 3)) {
		t.Error("bytes of different lengths should not be equal")
	}
	if mustEqual(t, ctx, constructBytes(t, ctx), ctx.NewStr("")) {
		t.Error(`bytes([]) == "" should be false`)
	}
}

func TestBytesEqualsUnrelatedTypes(t *testing.T) {
	ctx := NewContext()
	b := constructBytes(t, ctx, 1)
	others := []Value{
		ctx.None(),
		ctx.NewIntFromInt64(1),
		ctx.True(),
		ctx.NewStr("\x01"),
		intList(ctx, 1),
		ctx.NewTuple(ctx.NewIntFromInt64(1)),
		ctx.BytesType.Value(),
	}
	for _, o := range others {
		if mustEqual(t, ctx, b, o) {
			t.Errorf("bytes([1]) == %s should be false", o.Class().Name)
		}
	}
}

func TestBytesEqualsReflexiveAndSymmetric(t *testing.T) {
	ctx := NewContext()
	x := constructBytes(t, ctx, 4, 5, 6)
	y := ctx.NewBytes([]byte{4, 5, 6})

	if !mustEqual(t, ctx, x, x) {
		t.Error("equality should be reflexive")
	}
	if mustEqual(t, ctx, x, y) != mustEqual(t, ctx, y, x) {
		t.Error("equality should be symmetric")
	}
}

func TestBytesEqualsArity(t *testing.T) {
	ctx := NewContext()
	eq, _, _ := ctx.BytesType.Lookup("__eq__")

	_, err := ctx.Call(eq, Positional())
	if !IsTypeError(err) || !errors.Is(err, ErrArity) {
		t.Errorf("__eq__(): err = %v, want arity TypeError", err)
	}

	_, err = ctx.Call(eq, Positional(ctx.NewBytes(nil), ctx.NewBytes(nil), ctx.NewBytes(nil)))
	if !errors.Is(err, ErrArity) {
		t.Errorf("__eq__(a, b, c): err = %v, want arity error", err)
	}

	// First slot is constrained to bytes
	_, err = ctx.Call(eq, Positional(ctx.NewStr(""), ctx.NewBytes(nil)))
	if !IsTypeError(err) || errors.Is(err, ErrArity) {
		t.Errorf("__eq__(str, bytes): err = %v, want slot TypeError", err)
	}
}

// ---------------------------------------------------------------------------
// Hashing
// ---------------------------------------------------------------------------

func TestBytesHashConsistentWithEquality(t *testing.T) {
	ctx := NewContext()
	sub, err := ctx.NewClass("HashBytes", ctx.BytesType)
	if err != nil {
		t.Fatal(err)
	}

	a := constructBytes(t, ctx, 10, 20, 30)
	b := ctx.NewBytes([]byte{10, 20, 30})
	c, err := ctx.Call(sub.Value(), Positional(ctx.NewTuple(
		ctx.NewStr("10"), ctx.NewIntFromInt64(20), ctx.NewIntFromInt64(30))))
	if err != nil {
		t.Fatal(err)
	}

	ha, _ := ctx.Hash(a)
	for _, v := range []Value{b, c} {
		h, err := ctx.Hash(v)
		if err != nil {
			t.Fatalf("Hash failed: %v", err)
		}
		if h.Cmp(ha) != 0 {
			t.Errorf("hash = %v, want %v", h, ha)
		}
	}
}

func TestBytesHashContentSensitive(t *testing.T) {
	ctx := NewContext()
	h1, _ := ctx.Hash(ctx.NewBytes([]byte{1, 2}))
	h2, _ := ctx.Hash(ctx.NewBytes([]byte{2, 1}))
	if h1.Cmp(h2) == 0 {
		t.Error("hash should be order-sensitive")
	}
}

func TestBytesHashReturnsInt(t *testing.T) {
	ctx := NewContext()
	r, err := ctx.CallMethod(ctx.NewBytes([]byte("abc")), "__hash__")
	if err != nil {
		t.Fatal(err)
	}
	if r.Class() != ctx.IntType {
		t.Errorf("__hash__ returned %v, want int", r.Class())
	}
	if r.Int().Sign() < 0 {
		t.Error("hash should be non-negative")
	}
}

func TestBytesHashEqualityProperty(t *testing.T) {
	ctx := NewContext()
	f := func(data []byte) bool {
		// Built by appending to an empty value vs built from a literal list
		appended := ctx.NewBytes(nil)
		for _, b := range data {
			appended.SetPayload(BytesPayload{Value: append(appended.Bytes(), b)})
		}
		ns := make([]int64, len(data))
		for i, b := range data {
			ns[i] = int64(b)
		}
		literal, err := ctx.Call(ctx.BytesType.Value(), Positional(intList(ctx, ns...)))
		if err != nil {
			return false
		}
		eq, err := ctx.Equals(appended, literal)
		if err != nil || !eq {
			return false
		}
		h1, err1 := ctx.Hash(appended)
		h2, err2 := ctx.Hash(literal)
		return err1 == nil && err2 == nil && h1.Cmp(h2) == 0
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func FuzzBytesHashEquality(f *testing.F) {
	f.Add([]byte{}, []byte{})
	f.Add([]byte{0, 255, 16}, []byte{0, 255, 16})
	f.Add([]byte{1, 2, 3}, []byte{1, 2, 4})

	ctx := NewContext()
	f.Fuzz(func(t *testing.T, a, b []byte) {
		x, y := ctx.NewBytes(a), ctx.NewBytes(b)
		eq, err := ctx.Equals(x, y)
		if err != nil {
			t.Fatal(err)
		}
		if eq != (string(a) == string(b)) {
			t.Fatalf("Equals(%v, %v) = %v", a, b, eq)
		}
		if eq {
			hx, _ := ctx.Hash(x)
			hy, _ := ctx.Hash(y)
			if hx.Cmp(hy) != 0 {
				t.Fatalf("equal values hash differently: %v != %v", hx, hy)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// Representation
// ---------------------------------------------------------------------------

func TestBytesRepr(t *testing.T) {
	ctx := NewContext()
	tests := []struct {
		data []int64
		want string
	}{
		{[]int64{0, 255, 16}, `b'\x00\xff\x10'`},
		{nil, `b''`},
		{[]int64{65, 10}, `b'\x41\x0a'`},
		{[]int64{0xab, 0xcd}, `b'\xab\xcd'`},
	}

	for _, tt := range tests {
		got, err := ctx.Repr(constructBytes(t, ctx, tt.data...))
		if err != nil {
			t.Fatalf("Repr failed: %v", err)
		}
		if got != tt.want {
			t.Errorf("repr(bytes(%v)) = %s, want %s", tt.data, got, tt.want)
		}
	}
}

func TestBytesReprAllBytes(t *testing.T) {
	for b := range 256 {
		got := bytesRepr([]byte{byte(b)})
		if len(got) != len(`b'\x00'`) {
			t.Errorf("bytesRepr(%d) = %s, want fixed width", b, got)
		}
	}
}

// ---------------------------------------------------------------------------
// Supplemental operations
// ---------------------------------------------------------------------------

func TestBytesLenAndIndex(t *testing.T) {
	ctx := NewContext()
	v := constructBytes(t, ctx, 7, 8, 9)

	n, err := ctx.Len(v)
	if err != nil || n != 3 {
		t.Errorf("Len = %d, %v; want 3", n, err)
	}

	tests := []struct {
		index int64
		want  int64
	}{
		{0, 7},
		{2, 9},
		{-1, 9},
		{-3, 7},
	}
	for _, tt := range tests {
		r, err := ctx.CallMethod(v, "__getitem__", ctx.NewIntFromInt64(tt.index))
		if err != nil {
			t.Errorf("v[%d] failed: %v", tt.index, err)
			continue
		}
		if r.Int().Int64() != tt.want {
			t.Errorf("v[%d] = %v, want %d", tt.index, r.Int(), tt.want)
		}
	}

	for _, idx := range []int64{3, -4} {
		if _, err := ctx.CallMethod(v, "__getitem__", ctx.NewIntFromInt64(idx)); !IsIndexError(err) {
			t.Errorf("v[%d]: err = %v, want IndexError", idx, err)
		}
	}
}

func TestBytesContainsAndHex(t *testing.T) {
	ctx := NewContext()
	v := constructBytes(t, ctx, 0xde, 0xad)

	r, err := ctx.CallMethod(v, "__contains__", ctx.NewIntFromInt64(0xad))
	if err != nil || !r.Bool() {
		t.Errorf("0xad in v = %v, %v; want True", r, err)
	}
	if _, err := ctx.CallMethod(v, "__contains__", ctx.NewIntFromInt64(300)); !IsValueError(err) {
		t.Errorf("300 in v: err = %v, want ValueError", err)
	}

	h, err := ctx.CallMethod(v, "hex")
	if err != nil || h.Str() != "dead" {
		t.Errorf("hex() = %v, %v; want dead", h, err)
	}
}

func TestBytesCopyConstruction(t *testing.T) {
	ctx := NewContext()
	orig := constructBytes(t, ctx, 1, 2, 3)
	cp, err := ctx.Call(ctx.BytesType.Value(), Positional(orig))
	if err != nil {
		t.Fatal(err)
	}
	if cp == orig {
		t.Error("bytes(b) should produce a new value")
	}
	if !mustEqual(t, ctx, cp, orig) {
		t.Error("bytes(b) should equal b")
	}
}
