package vm

import "math/big"

// Kind identifies the shape of an object's payload.
//
// The set of kinds is closed: every runtime value carries exactly one of
// the payload types declared in this file, and the kind of a value never
// changes after it is created.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindStr
	KindBytes
	KindList
	KindTuple
	KindType
	KindBuiltin
	KindBoundMethod
	KindInstance
	kindAbsent
)

var kindNames = [...]string{
	KindNone:        "none",
	KindBool:        "bool",
	KindInt:         "int",
	KindStr:         "str",
	KindBytes:       "bytes",
	KindList:        "list",
	KindTuple:       "tuple",
	KindType:        "type",
	KindBuiltin:     "builtin",
	KindBoundMethod: "bound-method",
	KindInstance:    "instance",
	kindAbsent:      "absent",
}

// String implements the Stringer interface.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Payload is the data held by an Object. Only the payload types in this
// package implement it.
type Payload interface {
	Kind() Kind
	sealed()
}

// NonePayload is the payload of the None singleton.
type NonePayload struct{}

// BoolPayload holds a boolean.
type BoolPayload struct{ Value bool }

// IntPayload holds an arbitrary-precision integer.
type IntPayload struct{ Value *big.Int }

// StrPayload holds a string.
type StrPayload struct{ Value string }

// BytesPayload holds an ordered sequence of 8-bit unsigned integers.
type BytesPayload struct{ Value []byte }

// ListPayload holds the elements of a list.
type ListPayload struct{ Elements []Value }

// TuplePayload holds the elements of a tuple.
type TuplePayload struct{ Elements []Value }

// TypePayload makes a Class available as a runtime value.
type TypePayload struct{ Class *Class }

// BuiltinPayload wraps a Go-implemented callable.
type BuiltinPayload struct{ Builtin *Builtin }

// BoundMethodPayload pairs a callable with the receiver it was looked up on.
type BoundMethodPayload struct {
	Self Value
	Func Value
}

// InstancePayload is the payload of plain objects. Dict holds the
// instance attributes.
type InstancePayload struct{ Dict map[string]Value }

type absentPayload struct{}

func (NonePayload) Kind() Kind        { return KindNone }
func (BoolPayload) Kind() Kind        { return KindBool }
func (IntPayload) Kind() Kind         { return KindInt }
func (StrPayload) Kind() Kind         { return KindStr }
func (BytesPayload) Kind() Kind       { return KindBytes }
func (ListPayload) Kind() Kind        { return KindList }
func (TuplePayload) Kind() Kind       { return KindTuple }
func (TypePayload) Kind() Kind        { return KindType }
func (BuiltinPayload) Kind() Kind     { return KindBuiltin }
func (BoundMethodPayload) Kind() Kind { return KindBoundMethod }
func (InstancePayload) Kind() Kind    { return KindInstance }
func (absentPayload) Kind() Kind      { return kindAbsent }

func (NonePayload) sealed()        {}
func (BoolPayload) sealed()        {}
func (IntPayload) sealed()         {}
func (StrPayload) sealed()         {}
func (BytesPayload) sealed()       {}
func (ListPayload) sealed()        {}
func (TuplePayload) sealed()       {}
func (TypePayload) sealed()        {}
func (BuiltinPayload) sealed()     {}
func (BoundMethodPayload) sealed() {}
func (InstancePayload) sealed()    {}
func (absentPayload) sealed()      {}

// Absent marks an optional argument that was not supplied. It is distinct
// from None and is never visible to runtime code as an ordinary value.
var Absent Value = &Object{payload: absentPayload{}}
