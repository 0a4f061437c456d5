// Package vm implements the objcore runtime core.
//
// This package contains:
//   - Tagged value representation (Object, Payload)
//   - Classes with C3 method-resolution order and an append-only ClassTable
//   - The attribute protocol (GetAttr/SetAttr) with an LRU lookup cache
//   - Builtin callables with declarative argument validation (ArgSpec)
//   - Built-in types: object, type, NoneType, int, bool, str, list, tuple,
//     the exception classes, and bytes
package vm
