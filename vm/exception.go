package vm

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Runtime errors
// ---------------------------------------------------------------------------

// Error is a runtime exception raised by a builtin. Class is one of the
// exception classes registered on the Context (or a subclass of one).
type Error struct {
	Class   *Class // Exception class
	Message string // Human readable description
	Param   string // Name of the offending parameter, if any
	cause   error
}

// ErrArity is wrapped by errors raised when a call supplies too few or too
// many arguments.
var ErrArity = errors.New("wrong number of arguments")

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Class.Name
	}
	return e.Class.Name + ": " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates an error of the given exception class.
func (ctx *Context) NewError(cls *Class, format string, args ...any) *Error {
	return &Error{Class: cls, Message: fmt.Sprintf(format, args...)}
}

// NewTypeError creates a TypeError.
func (ctx *Context) NewTypeError(format string, args ...any) *Error {
	return ctx.NewError(ctx.TypeErrorType, format, args...)
}

// NewValueError creates a ValueError.
func (ctx *Context) NewValueError(format string, args ...any) *Error {
	return ctx.NewError(ctx.ValueErrorType, format, args...)
}

// NewAttributeError creates an AttributeError.
func (ctx *Context) NewAttributeError(format string, args ...any) *Error {
	return ctx.NewError(ctx.AttributeErrorType, format, args...)
}

// NewIndexError creates an IndexError.
func (ctx *Context) NewIndexError(format string, args ...any) *Error {
	return ctx.NewError(ctx.IndexErrorType, format, args...)
}

func (ctx *Context) arityError(format string, args ...any) *Error {
	e := ctx.NewTypeError(format, args...)
	e.cause = ErrArity
	return e
}

// ErrorMatches reports whether err is a runtime error whose class is cls
// or a subclass of it.
func (ctx *Context) ErrorMatches(err error, cls *Class) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return IsSubclass(e.Class, cls)
}

// ExceptionValue converts a runtime error into an exception instance
// whose "args" attribute is a one-element tuple holding the message.
// Returns nil if err is not a runtime error or its class has no
// instance dictionary.
func (ctx *Context) ExceptionValue(err error) Value {
	var e *Error
	if !errors.As(err, &e) || e.Class == nil || !ctx.hasInstanceDict(e.Class) {
		return nil
	}
	inst := ctx.NewInstance(e.Class)
	inst.payload.(InstancePayload).Dict["args"] = ctx.NewTuple(ctx.NewStr(e.Message))
	return inst
}

// IsTypeError reports whether err is a TypeError.
func IsTypeError(err error) bool { return isBuiltinError(err, "TypeError") }

// IsValueError reports whether err is a ValueError.
func IsValueError(err error) bool { return isBuiltinError(err, "ValueError") }

// IsAttributeError reports whether err is an AttributeError.
func IsAttributeError(err error) bool { return isBuiltinError(err, "AttributeError") }

// IsIndexError reports whether err is an IndexError.
func IsIndexError(err error) bool { return isBuiltinError(err, "IndexError") }

// IsRecursionError reports whether err is a RecursionError.
func IsRecursionError(err error) bool { return isBuiltinError(err, "RecursionError") }

func isBuiltinError(err error, name string) bool {
	var e *Error
	if !errors.As(err, &e) || e.Class == nil {
		return false
	}
	for _, c := range e.Class.mro {
		if c.builtin && c.Name == name {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Exception class registration
// ---------------------------------------------------------------------------

func (ctx *Context) bootstrapExceptionClasses() {
	// BaseException is the root of all exceptions. Exception instances carry
	// a dictionary like plain objects, but their layout cannot be combined
	// with the payload-carrying built-ins.
	ctx.BaseExceptionType = ctx.createLayoutClass("BaseException", ctx.ObjectType)
	ctx.ExceptionType = ctx.createClass("Exception", ctx.BaseExceptionType)

	// Wrong runtime type, including argument count mismatches
	ctx.TypeErrorType = ctx.createClass("TypeError", ctx.ExceptionType)

	// Right type, unacceptable value
	ctx.ValueErrorType = ctx.createClass("ValueError", ctx.ExceptionType)

	ctx.AttributeErrorType = ctx.createClass("AttributeError", ctx.ExceptionType)

	ctx.LookupErrorType = ctx.createClass("LookupError", ctx.ExceptionType)
	ctx.IndexErrorType = ctx.createClass("IndexError", ctx.LookupErrorType)

	// Nested values too deep or cyclic to walk
	ctx.RuntimeErrorType = ctx.createClass("RuntimeError", ctx.ExceptionType)
	ctx.RecursionErrorType = ctx.createClass("RecursionError", ctx.RuntimeErrorType)
}
