package vm

import (
	"math/big"
)

// Object is the heap cell behind every runtime value.
//
// An Object pairs a payload with the class the value is an instance of.
// Objects are shared by reference: every Value pointing at the same
// Object observes the same payload. The payload's Kind is fixed when the
// object is created; only the contents of mutable kinds may change.
type Object struct {
	class   *Class
	payload Payload
	id      uint64
}

// Value is a shared handle to an Object.
type Value = *Object

// Class returns the class of the value. Absent has no class.
func (o *Object) Class() *Class {
	return o.class
}

// Kind returns the kind of the value's payload.
func (o *Object) Kind() Kind {
	return o.payload.Kind()
}

// Payload returns the value's payload.
func (o *Object) Payload() Payload {
	return o.payload
}

// ID returns the identity number of the value, unique within its Context.
func (o *Object) ID() uint64 {
	return o.id
}

// SetPayload replaces the payload contents.
// Panics if p is of a different kind than the current payload.
func (o *Object) SetPayload(p Payload) {
	if p.Kind() != o.payload.Kind() {
		panic("Object.SetPayload: cannot change payload kind from " + o.payload.Kind().String() + " to " + p.Kind().String())
	}
	o.payload = p
}

// IsAbsent returns true if v is the Absent marker.
func (o *Object) IsAbsent() bool {
	return o.payload.Kind() == kindAbsent
}

// IsNone returns true if v holds the None payload.
func (o *Object) IsNone() bool {
	return o.payload.Kind() == KindNone
}

// ---------------------------------------------------------------------------
// Payload accessors
// ---------------------------------------------------------------------------

// Bytes returns the underlying byte slice of a bytes value. Callers must
// not modify it.
// Panics if v is not a bytes value.
func (o *Object) Bytes() []byte {
	p, ok := o.payload.(BytesPayload)
	if !ok {
		panic("Object.Bytes: not a bytes value")
	}
	return p.Value
}

// Int returns the integer held by an int value. Callers must not modify it.
// Panics if v is not an int value.
func (o *Object) Int() *big.Int {
	p, ok := o.payload.(IntPayload)
	if !ok {
		panic("Object.Int: not an int value")
	}
	return p.Value
}

// Str returns the content of a str value.
// Panics if v is not a str value.
func (o *Object) Str() string {
	p, ok := o.payload.(StrPayload)
	if !ok {
		panic("Object.Str: not a str value")
	}
	return p.Value
}

// Bool returns the content of a bool value.
// Panics if v is not a bool value.
func (o *Object) Bool() bool {
	p, ok := o.payload.(BoolPayload)
	if !ok {
		panic("Object.Bool: not a bool value")
	}
	return p.Value
}

// Elements returns the elements of a list or tuple. Callers must not
// modify the returned slice.
// Panics if v is neither a list nor a tuple.
func (o *Object) Elements() []Value {
	switch p := o.payload.(type) {
	case ListPayload:
		return p.Elements
	case TuplePayload:
		return p.Elements
	}
	panic("Object.Elements: not a list or tuple")
}

// TypeClass returns the class represented by a type object, or nil if v
// is not a type object.
func (o *Object) TypeClass() *Class {
	if p, ok := o.payload.(TypePayload); ok {
		return p.Class
	}
	return nil
}

// ---------------------------------------------------------------------------
// Truthiness
// ---------------------------------------------------------------------------

// Truthy reports whether v counts as true in a boolean context.
// None, False, zero, and empty containers are falsy.
func (o *Object) Truthy() bool {
	switch p := o.payload.(type) {
	case NonePayload, absentPayload:
		return false
	case BoolPayload:
		return p.Value
	case IntPayload:
		return p.Value.Sign() != 0
	case StrPayload:
		return p.Value != ""
	case BytesPayload:
		return len(p.Value) > 0
	case ListPayload:
		return len(p.Elements) > 0
	case TuplePayload:
		return len(p.Elements) > 0
	}
	return true
}
