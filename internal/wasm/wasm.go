// Package wasm holds the minimal WebAssembly-level types the code generator
// consumes from its front end.
package wasm

import "fmt"

// ValueType describes a numeric type used in Wasm code (parameters and results).
type ValueType = byte

const (
	// ValueTypeI32 is a 32 bit integer.
	ValueTypeI32 ValueType = 0x7f
	// ValueTypeI64 is a 64 bit integer.
	ValueTypeI64 ValueType = 0x7e
	// ValueTypeF32 is a 32 bit float.
	ValueTypeF32 ValueType = 0x7d
	// ValueTypeF64 is a 64 bit float.
	ValueTypeF64 ValueType = 0x7c
)

// ValueTypeName returns the type name of the given ValueType as a string.
func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	}
	return "unknown"
}

// FunctionType is a possibly empty function signature.
type FunctionType struct {
	// Params are the possibly empty sequence of value types accepted by a
	// function with this signature.
	Params []ValueType

	// Results are the possibly empty sequence of value types returned by a
	// function with this signature.
	Results []ValueType
}

// String implements fmt.Stringer.
func (t *FunctionType) String() string {
	return fmt.Sprintf("func%v%v", t.Params, t.Results)
}

// MemoryImmediate is the memory index, offset and expected alignment
// accompanying every Wasm memory access instruction.
type MemoryImmediate struct {
	// Offset is the address offset added to the dynamic address operand.
	Offset uint32
	// Align is the expected alignment of the access in bytes (a power of two).
	Align uint32
}

// FunctionIndex identifies a function in a module by its index.
type FunctionIndex = uint32
