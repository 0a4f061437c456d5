package vm

import (
	"errors"
	"strings"
	"testing"
)

func pointSpec(ctx *Context) ArgSpec {
	return ArgSpec{
		Required: []Param{{Name: "x", Type: ctx.IntType}, {Name: "y", Type: ctx.IntType}},
		Optional: []Param{{Name: "label", Type: ctx.StrType}, {Name: "extra"}},
	}
}

// ---------------------------------------------------------------------------
// Arity
// ---------------------------------------------------------------------------

func TestBindArity(t *testing.T) {
	ctx := NewContext()
	spec := pointSpec(ctx)
	one := ctx.NewIntFromInt64(1)

	tests := []struct {
		name    string
		args    []Value
		wantErr string
	}{
		{"no args", nil, "point() missing required argument 'x' (pos 1)"},
		{"one arg", []Value{one}, "point() missing required argument 'y' (pos 2)"},
		{"too many", []Value{one, one, ctx.NewStr(""), one, one}, "point() takes at most 4 arguments (5 given)"},
	}

	for _, tt := range tests {
		_, err := spec.Bind(ctx, "point", Positional(tt.args...))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !errors.Is(err, ErrArity) {
			t.Errorf("%s: err should wrap ErrArity", tt.name)
		}
		if !IsTypeError(err) {
			t.Errorf("%s: err should be a TypeError", tt.name)
		}
		if !strings.HasSuffix(err.Error(), tt.wantErr) {
			t.Errorf("%s: err = %q, want suffix %q", tt.name, err.Error(), tt.wantErr)
		}
	}
}

func TestBindExactArity(t *testing.T) {
	ctx := NewContext()
	spec := selfOnly(ctx.BytesType)
	b := ctx.NewBytes(nil)

	_, err := spec.Bind(ctx, "f", Positional(b, b))
	if err == nil || !strings.Contains(err.Error(), "f() takes exactly 1 argument (2 given)") {
		t.Errorf("err = %v", err)
	}
}

// ---------------------------------------------------------------------------
// Binding values
// ---------------------------------------------------------------------------

func TestBindAbsentVersusNone(t *testing.T) {
	ctx := NewContext()
	spec := pointSpec(ctx)
	one, two := ctx.NewIntFromInt64(1), ctx.NewIntFromInt64(2)

	b, err := spec.Bind(ctx, "point", Positional(one, two))
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 4 {
		t.Errorf("Len = %d, want 4", b.Len())
	}
	if !b.Get("label").IsAbsent() || !b.Get("extra").IsAbsent() {
		t.Error("unsupplied optionals should be Absent")
	}
	if _, ok := b.Optional("extra"); ok {
		t.Error("Optional should report an unsupplied slot as missing")
	}

	// None supplied explicitly is a real value, distinct from Absent
	b, err = spec.Bind(ctx, "point", Positional(one, two, ctx.NewStr("p"), ctx.None()))
	if err != nil {
		t.Fatal(err)
	}
	extra, ok := b.Optional("extra")
	if !ok || !extra.IsNone() {
		t.Errorf("extra = %v, %v; want None, true", extra, ok)
	}
	if b.At(0) != one || b.At(1) != two {
		t.Error("positional slots bound out of order")
	}
}

func TestBindKeywords(t *testing.T) {
	ctx := NewContext()
	spec := pointSpec(ctx)
	one, two := ctx.NewIntFromInt64(1), ctx.NewIntFromInt64(2)

	b, err := spec.Bind(ctx, "point", Args{
		Positional: []Value{one},
		Keywords:   map[string]Value{"y": two, "label": ctx.NewStr("origin")},
	})
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if b.Get("y") != two || b.Get("label").Str() != "origin" {
		t.Error("keywords bound to wrong slots")
	}

	_, err = spec.Bind(ctx, "point", Args{
		Positional: []Value{one, two},
		Keywords:   map[string]Value{"color": one},
	})
	if err == nil || !strings.Contains(err.Error(), "unexpected keyword argument 'color'") {
		t.Errorf("unknown keyword: err = %v", err)
	}

	_, err = spec.Bind(ctx, "point", Args{
		Positional: []Value{one, two},
		Keywords:   map[string]Value{"x": one},
	})
	if err == nil || !strings.Contains(err.Error(), "multiple values for argument 'x'") {
		t.Errorf("duplicate: err = %v", err)
	}
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Param != "x" {
		t.Errorf("Param = %v, want x", rerr)
	}
}

func TestBindTypeConstraint(t *testing.T) {
	ctx := NewContext()
	spec := pointSpec(ctx)

	_, err := spec.Bind(ctx, "point", Positional(ctx.NewIntFromInt64(1), ctx.NewStr("2")))
	if !IsTypeError(err) {
		t.Fatalf("err = %v, want TypeError", err)
	}
	if errors.Is(err, ErrArity) {
		t.Error("type violation should not be an arity error")
	}
	want := "point() argument 2 ('y') must be int, not str"
	if !strings.HasSuffix(err.Error(), want) {
		t.Errorf("err = %q, want suffix %q", err.Error(), want)
	}

	// bool is a subclass of int and is accepted
	if _, err := spec.Bind(ctx, "point", Positional(ctx.True(), ctx.False())); err != nil {
		t.Errorf("bool arguments rejected: %v", err)
	}

	// Untyped slots accept anything
	if _, err := spec.Bind(ctx, "point", Positional(ctx.True(), ctx.False(), ctx.NewStr(""), ctx.ListType.Value())); err != nil {
		t.Errorf("untyped slot rejected value: %v", err)
	}
}

func TestBindEmptySpec(t *testing.T) {
	ctx := NewContext()
	b, err := ArgSpec{}.Bind(ctx, "f", Positional())
	if err != nil || b.Len() != 0 {
		t.Errorf("Bind = %v, %v", b, err)
	}
	if _, err := (ArgSpec{}).Bind(ctx, "f", Positional(ctx.None())); !errors.Is(err, ErrArity) {
		t.Errorf("err = %v, want arity error", err)
	}
}

func TestBoundGetUnknownPanics(t *testing.T) {
	ctx := NewContext()
	b, _ := ArgSpec{}.Bind(ctx, "f", Positional())
	defer func() {
		if recover() == nil {
			t.Error("Get of undeclared slot should panic")
		}
	}()
	b.Get("missing")
}

// ---------------------------------------------------------------------------
// Builtin invocation
// ---------------------------------------------------------------------------

func TestBuiltinInvokeValidatesFirst(t *testing.T) {
	ctx := NewContext()
	ran := false
	b := NewBuiltin("probe", pointSpec(ctx), func(ctx *Context, args *Bound) (Value, error) {
		ran = true
		return nil, nil
	})

	if b.Arity() != 2 || b.Name() != "probe" {
		t.Errorf("Arity = %d, Name = %q", b.Arity(), b.Name())
	}

	if _, err := b.Invoke(ctx, Positional(ctx.NewStr("bad"))); err == nil {
		t.Error("expected validation error")
	}
	if ran {
		t.Error("body ran despite invalid arguments")
	}

	r, err := b.Invoke(ctx, Positional(ctx.NewIntFromInt64(1), ctx.NewIntFromInt64(2)))
	if err != nil {
		t.Fatal(err)
	}
	if !ran || !r.IsNone() {
		t.Error("nil result should become None")
	}
}

func TestCallBoundMethodPrependsSelf(t *testing.T) {
	ctx := NewContext()
	fn, err := ctx.GetAttr(ctx.NewBytes([]byte{1, 2, 3}), "__len__")
	if err != nil {
		t.Fatal(err)
	}
	if fn.Kind() != KindBoundMethod {
		t.Fatalf("kind = %v, want bound method", fn.Kind())
	}
	r, err := ctx.Call(fn, Positional())
	if err != nil {
		t.Fatal(err)
	}
	if r.Int().Int64() != 3 {
		t.Errorf("len = %v, want 3", r.Int())
	}
}

func TestCallNotCallable(t *testing.T) {
	ctx := NewContext()
	_, err := ctx.Call(ctx.NewIntFromInt64(1), Positional())
	if err == nil || err.Error() != "TypeError: 'int' object is not callable" {
		t.Errorf("err = %v", err)
	}
}
