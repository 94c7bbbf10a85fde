// Package compiler implements the ARM64 single-pass code generator: given a
// validated Wasm function body as a stream of operator-level calls, it emits
// native AArch64 machine code together with the sidecar metadata (trap table,
// instruction address map, relocations) in a single forward pass.
//
// The package deliberately contains no intermediate representation: the
// front end drives one method call per Wasm operator against a Machine, and
// bytes come out the other side.
package compiler

import "fmt"

// TrapCode is a small enum identifying a class of guest-observable faults the
// emitted code can take. The runtime's signal handler translates a faulting
// native PC back to one of these via the trap table.
type TrapCode byte

const (
	// TrapCodeStackOverflow indicates the native stack was exhausted.
	TrapCodeStackOverflow TrapCode = iota
	// TrapCodeHeapAccessOutOfBounds indicates a guest linear-memory access
	// outside the current bounds.
	TrapCodeHeapAccessOutOfBounds
	// TrapCodeIntegerOverflow indicates an integer arithmetic trap, e.g.
	// signed division of MIN by -1.
	TrapCodeIntegerOverflow
	// TrapCodeIntegerDivisionByZero indicates an integer division by zero.
	TrapCodeIntegerDivisionByZero
	// TrapCodeUnreachable indicates the wasm unreachable instruction executed.
	TrapCodeUnreachable
)

// String implements fmt.Stringer.
func (t TrapCode) String() (ret string) {
	switch t {
	case TrapCodeStackOverflow:
		ret = "stack_overflow"
	case TrapCodeHeapAccessOutOfBounds:
		ret = "heap_access_out_of_bounds"
	case TrapCodeIntegerOverflow:
		ret = "integer_overflow"
	case TrapCodeIntegerDivisionByZero:
		ret = "integer_division_by_zero"
	case TrapCodeUnreachable:
		ret = "unreachable"
	}
	return
}

// TrapInformation describes one native code offset that can fault, and the
// trap class a fault there must be reported as.
type TrapInformation struct {
	// CodeOffset is the byte offset of the trapping instruction inside the
	// function body.
	CodeOffset uint32
	// TrapCode classifies the fault.
	TrapCode TrapCode
}

// InstructionAddressMap maps a range of native code back to the Wasm source
// location whose compilation produced it. The machine appends entries in
// emission order, so the collected slice is sorted by CodeOffset; it is also
// sorted by SrcLoc as long as the front end sets source locations
// monotonically.
type InstructionAddressMap struct {
	// SrcLoc is the Wasm byte offset of the operator.
	SrcLoc uint32
	// CodeOffset is where the native code for the operator begins.
	CodeOffset uint32
	// CodeLen is the length in bytes of the native code for the operator.
	CodeLen uint32
}

// RelocationKind identifies the shape of a deferred patch the linker applies
// to emitted code.
type RelocationKind byte

const (
	// RelocationKindArm64Movw0 patches bits 0-15 of an absolute address into
	// the immediate field of a MOVZ/MOVK instruction.
	RelocationKindArm64Movw0 RelocationKind = iota
	// RelocationKindArm64Movw1 patches bits 16-31.
	RelocationKindArm64Movw1
	// RelocationKindArm64Movw2 patches bits 32-47.
	RelocationKindArm64Movw2
	// RelocationKindArm64Movw3 patches bits 48-63.
	RelocationKindArm64Movw3
)

// String implements fmt.Stringer.
func (k RelocationKind) String() (ret string) {
	switch k {
	case RelocationKindArm64Movw0:
		ret = "arm64_movw0"
	case RelocationKindArm64Movw1:
		ret = "arm64_movw1"
	case RelocationKindArm64Movw2:
		ret = "arm64_movw2"
	case RelocationKindArm64Movw3:
		ret = "arm64_movw3"
	}
	return
}

// RelocationTargetKind tells what kind of entity a relocation resolves against.
type RelocationTargetKind byte

const (
	// RelocationTargetLocalFunc resolves against a function defined in the
	// same module, identified by its index.
	RelocationTargetLocalFunc RelocationTargetKind = iota
	// RelocationTargetCustomSection resolves against a custom section emitted
	// by the compiler, e.g. an import call trampoline.
	RelocationTargetCustomSection
	// RelocationTargetLibCall resolves against a runtime-provided helper.
	RelocationTargetLibCall
)

// RelocationTarget identifies the entity whose final address the linker
// substitutes into a relocation.
type RelocationTarget struct {
	Kind  RelocationTargetKind
	Index uint32
}

// Relocation is a deferred patch applied by the linker to the emitted code.
type Relocation struct {
	// Kind is the shape of the patch.
	Kind RelocationKind
	// Target is the entity the patch resolves against.
	Target RelocationTarget
	// Offset is the byte offset of the patched instruction in the body.
	Offset uint32
	// Addend is added to the resolved address.
	Addend int64
}

// FunctionBody is the output of compiling one function: the machine code and
// the relocations the linker must apply to it.
type FunctionBody struct {
	Body        []byte
	Relocations []Relocation
}

// CustomSection is a compiler-generated section placed outside any function
// body, e.g. the trampoline used to call an imported function.
type CustomSection struct {
	Bytes       []byte
	Relocations []Relocation
}

// CallingConvention selects the native calling convention trampolines are
// generated for. On arm64 every supported convention uses the AAPCS64 integer
// register path: the first 8 arguments in X0..X7, the rest spilled to the
// caller frame.
type CallingConvention byte

const (
	// CallingConventionSystemV is the SysV AArch64 convention (Linux et al).
	CallingConventionSystemV CallingConvention = iota
	// CallingConventionAppleAarch64 is Apple's AArch64 variant.
	CallingConventionAppleAarch64
	// CallingConventionWasmBasicCAbi is the basic C ABI used between
	// compiler-generated code and the runtime.
	CallingConventionWasmBasicCAbi
)

// String implements fmt.Stringer.
func (c CallingConvention) String() (ret string) {
	switch c {
	case CallingConventionSystemV:
		ret = "system_v"
	case CallingConventionAppleAarch64:
		ret = "apple_aarch64"
	case CallingConventionWasmBasicCAbi:
		ret = "wasm_basic_c_abi"
	}
	return
}

func unimplemented(name string) {
	panic(fmt.Sprintf("unimplemented: %s on arm64", name))
}
