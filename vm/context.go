package vm

import (
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("objcore.vm")

// ---------------------------------------------------------------------------
// Context: the runtime's type registry and value factory
// ---------------------------------------------------------------------------

// Context holds the class registry, the well-known built-in classes, and
// the factories that box Go data into runtime values.
//
// A Context is built once by NewContext. Built-in classes are frozen when
// bootstrap finishes; afterwards the registry only grows through NewClass.
type Context struct {
	ID      uuid.UUID   // identifies this context in logs
	Classes *ClassTable // class name -> Class

	// Well-known classes
	ObjectType          *Class
	TypeType            *Class
	NoneType            *Class
	IntType             *Class
	BoolType            *Class
	StrType             *Class
	BytesType           *Class
	ListType            *Class
	TupleType           *Class
	BuiltinFunctionType *Class
	MethodType          *Class

	// Exception hierarchy
	BaseExceptionType  *Class
	ExceptionType      *Class
	TypeErrorType      *Class
	ValueErrorType     *Class
	AttributeErrorType *Class
	LookupErrorType    *Class
	IndexErrorType     *Class
	RuntimeErrorType   *Class
	RecursionErrorType *Class

	none     Value
	trueVal  Value
	falseVal Value

	attrs *AttrCache

	implMu sync.RWMutex
	impls  map[*Class]any

	nextID atomic.Uint64
}

// Option configures a Context.
type Option func(*options)

type options struct {
	attrCacheSize int
}

// WithAttrCacheSize sets the number of attribute lookups kept in the
// lookup cache. Zero or less disables the cache.
func WithAttrCacheSize(n int) Option {
	return func(o *options) { o.attrCacheSize = n }
}

// NewContext creates and bootstraps a new Context.
func NewContext(opts ...Option) *Context {
	o := options{attrCacheSize: DefaultAttrCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	ctx := &Context{
		ID:      uuid.New(),
		Classes: NewClassTable(),
		attrs:   NewAttrCache(o.attrCacheSize),
		impls:   make(map[*Class]any),
	}
	ctx.bootstrap()
	return ctx
}

// AttrCache returns the attribute lookup cache, which is nil when disabled.
func (ctx *Context) AttrCache() *AttrCache {
	return ctx.attrs
}

// ---------------------------------------------------------------------------
// Bootstrap: Create core classes
// ---------------------------------------------------------------------------

func (ctx *Context) bootstrap() {
	// Phase 1: object and type refer to each other
	// object is the root of all classes, type is the class of all classes
	object := &Class{Name: "object", dict: NewAttrTable(), builtin: true}
	object.mro = []*Class{object}
	object.layout = object
	typ := &Class{Name: "type", bases: []*Class{object}, dict: NewAttrTable(), builtin: true}
	typ.mro = []*Class{typ, object}
	typ.layout = typ
	ctx.ObjectType = object
	ctx.TypeType = typ
	ctx.publish(object)
	ctx.publish(typ)

	// Phase 2: classes whose instances carry their own payload kind
	ctx.NoneType = ctx.createLayoutClass("NoneType", object)
	ctx.IntType = ctx.createLayoutClass("int", object)
	ctx.BoolType = ctx.createLayoutClass("bool", ctx.IntType)
	ctx.StrType = ctx.createLayoutClass("str", object)
	ctx.BytesType = ctx.createLayoutClass("bytes", object)
	ctx.ListType = ctx.createLayoutClass("list", object)
	ctx.TupleType = ctx.createLayoutClass("tuple", object)
	ctx.BuiltinFunctionType = ctx.createLayoutClass("builtin_function_or_method", object)
	ctx.MethodType = ctx.createLayoutClass("method", object)

	// Instances of these are singletons or created by the runtime only
	for _, c := range []*Class{ctx.NoneType, ctx.BoolType, ctx.BuiltinFunctionType, ctx.MethodType} {
		c.final = true
	}

	// Phase 3: singletons
	ctx.none = ctx.newObject(ctx.NoneType, NonePayload{})
	ctx.trueVal = ctx.newObject(ctx.BoolType, BoolPayload{Value: true})
	ctx.falseVal = ctx.newObject(ctx.BoolType, BoolPayload{Value: false})

	// Phase 4: exception hierarchy
	ctx.bootstrapExceptionClasses()

	// Phase 5: register primitives on core classes
	ctx.registerObjectPrimitives()
	ctx.registerTypePrimitives()
	ctx.registerNonePrimitives()
	ctx.registerIntegerPrimitives()
	ctx.registerBooleanPrimitives()
	ctx.registerStringPrimitives()
	ctx.registerListPrimitives()
	ctx.registerTuplePrimitives()
	ctx.registerBytesPrimitives()
	ctx.registerCallablePrimitives()

	// Phase 6: built-in method tables are fixed from here on
	for _, c := range ctx.Classes.All() {
		c.frozen = true
	}

	log.Debugf("context %s: bootstrapped %d classes", ctx.ID, ctx.Classes.Len())
}

// createClass creates and registers a built-in class that shares its
// bases' payload layout. Used only during bootstrap.
func (ctx *Context) createClass(name string, bases ...*Class) *Class {
	c, err := newClass("", name, bases)
	if err != nil {
		panic("vm: bootstrap " + name + ": " + err.Error())
	}
	c.builtin = true
	ctx.publish(c)
	return c
}

// createLayoutClass creates a built-in class whose instances carry a
// payload kind of their own.
func (ctx *Context) createLayoutClass(name string, bases ...*Class) *Class {
	c := ctx.createClass(name, bases...)
	c.layout = c
	return c
}

// publish gives c its type object and registers it.
func (ctx *Context) publish(c *Class) {
	c.self = ctx.newObject(ctx.TypeType, TypePayload{Class: c})
	if err := ctx.Classes.Register(c); err != nil {
		panic("vm: " + err.Error())
	}
}

// ---------------------------------------------------------------------------
// User-defined classes
// ---------------------------------------------------------------------------

// NewClass creates and registers a class deriving from bases. With no
// bases the class derives from object.
func (ctx *Context) NewClass(name string, bases ...*Class) (*Class, error) {
	return ctx.NewClassInNamespace("", name, bases...)
}

// NewClassInNamespace creates and registers a class in a namespace.
func (ctx *Context) NewClassInNamespace(namespace, name string, bases ...*Class) (*Class, error) {
	if len(bases) == 0 {
		bases = []*Class{ctx.ObjectType}
	}
	for i, b := range bases {
		if b == nil {
			return nil, ctx.NewTypeError("base %d of class %s is nil", i, name)
		}
		if b.final {
			return nil, ctx.NewTypeError("type '%s' is not an acceptable base type", b.Name)
		}
		for _, other := range bases[:i] {
			if other == b {
				return nil, ctx.NewTypeError("duplicate base class %s", b.Name)
			}
		}
	}

	c, err := newClass(namespace, name, bases)
	if err != nil {
		return nil, ctx.NewTypeError("%s", err.Error())
	}
	c.self = ctx.newObject(ctx.TypeType, TypePayload{Class: c})
	if err := ctx.Classes.Register(c); err != nil {
		return nil, err
	}

	log.Debugf("context %s: registered class %s (mro depth %d)", ctx.ID, c.FullName(), len(c.mro))
	return c, nil
}

// ---------------------------------------------------------------------------
// Value factories
// ---------------------------------------------------------------------------

func (ctx *Context) newObject(cls *Class, p Payload) Value {
	return &Object{class: cls, payload: p, id: ctx.nextID.Add(1)}
}

// None returns the None singleton.
func (ctx *Context) None() Value { return ctx.none }

// True returns the True singleton.
func (ctx *Context) True() Value { return ctx.trueVal }

// False returns the False singleton.
func (ctx *Context) False() Value { return ctx.falseVal }

// NewBool returns the True or False singleton.
func (ctx *Context) NewBool(b bool) Value {
	if b {
		return ctx.trueVal
	}
	return ctx.falseVal
}

// NewInt creates an int value holding a copy of n.
func (ctx *Context) NewInt(n *big.Int) Value {
	return ctx.newObject(ctx.IntType, IntPayload{Value: new(big.Int).Set(n)})
}

// NewIntFromInt64 creates an int value.
func (ctx *Context) NewIntFromInt64(n int64) Value {
	return ctx.newObject(ctx.IntType, IntPayload{Value: big.NewInt(n)})
}

// NewStr creates a str value.
func (ctx *Context) NewStr(s string) Value {
	return ctx.newObject(ctx.StrType, StrPayload{Value: s})
}

// NewBytes creates a bytes value holding a copy of b.
func (ctx *Context) NewBytes(b []byte) Value {
	return ctx.newObject(ctx.BytesType, BytesPayload{Value: append([]byte{}, b...)})
}

// NewList creates a list value.
func (ctx *Context) NewList(elements ...Value) Value {
	return ctx.newObject(ctx.ListType, ListPayload{Elements: append([]Value{}, elements...)})
}

// NewTuple creates a tuple value.
func (ctx *Context) NewTuple(elements ...Value) Value {
	return ctx.newObject(ctx.TupleType, TuplePayload{Elements: append([]Value{}, elements...)})
}

// NewInstance creates a plain instance of cls with an empty dictionary.
// Panics if instances of cls do not carry a dictionary.
func (ctx *Context) NewInstance(cls *Class) Value {
	if !ctx.hasInstanceDict(cls) {
		panic("Context.NewInstance: " + cls.Name + " instances are not plain objects")
	}
	return ctx.newObject(cls, InstancePayload{Dict: make(map[string]Value)})
}

// NewValue creates a value of class cls carrying payload p. The payload
// kind must match the layout of cls, so a subclass of bytes takes a
// BytesPayload and a plain class an InstancePayload.
func (ctx *Context) NewValue(cls *Class, p Payload) (Value, error) {
	want := ctx.layoutFor(p.Kind())
	if p.Kind() == KindInstance && ctx.hasInstanceDict(cls) {
		want = cls.layout
	}
	if want == nil || cls.layout != want {
		return nil, ctx.NewTypeError("cannot create %s instance from %s payload", cls.Name, p.Kind())
	}
	if ip, ok := p.(InstancePayload); ok && ip.Dict == nil {
		p = InstancePayload{Dict: make(map[string]Value)}
	}
	return ctx.newObject(cls, p), nil
}

// hasInstanceDict reports whether instances of cls are InstancePayload
// values: plain objects and exceptions.
func (ctx *Context) hasInstanceDict(cls *Class) bool {
	return cls.layout == ctx.ObjectType || cls.layout == ctx.BaseExceptionType
}

func (ctx *Context) layoutFor(k Kind) *Class {
	switch k {
	case KindNone:
		return ctx.NoneType
	case KindBool:
		return ctx.BoolType
	case KindInt:
		return ctx.IntType
	case KindStr:
		return ctx.StrType
	case KindBytes:
		return ctx.BytesType
	case KindList:
		return ctx.ListType
	case KindTuple:
		return ctx.TupleType
	case KindType:
		return ctx.TypeType
	case KindBuiltin:
		return ctx.BuiltinFunctionType
	case KindBoundMethod:
		return ctx.MethodType
	case KindInstance:
		return ctx.ObjectType
	}
	return nil
}
