package compiler

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/singlepass/internal/wasm"
)

func requireWords(t *testing.T, code []byte, expected ...uint32) {
	t.Helper()
	require.Equal(t, len(expected)*4, len(code))
	for i, want := range expected {
		have := binary.LittleEndian.Uint32(code[i*4:])
		require.Equal(t, want, have, "instruction %d: want %08x have %08x", i, want, have)
	}
}

func TestMachineARM64_GenStdTrampoline(t *testing.T) {
	m := NewMachineARM64()
	sig := &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI64},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	}
	body := m.GenStdTrampoline(sig, CallingConventionSystemV)
	require.Empty(t, body.Relocations)

	requireWords(t, body.Body,
		0xa9bf7bfd, // stp x29, x30, [sp, #-16]!
		0x910003fd, // add x29, sp, #0
		0xa9bf53f3, // stp x19, x20, [sp, #-16]!
		0xaa0103f3, // mov x19, x1          ; body
		0xaa0203f4, // mov x20, x2          ; values vector
		0xf9400281, // ldr x1, [x20]        ; arg 0
		0xf9400a82, // ldr x2, [x20, #16]   ; arg 1
		0xd63f0260, // blr x19
		0xf9000280, // str x0, [x20]        ; result
		0xa8c153f3, // ldp x19, x20, [sp], #16
		0xa8c17bfd, // ldp x29, x30, [sp], #16
		0xd65f03c0, // ret
	)
}

func TestMachineARM64_GenStdTrampoline_floatResult(t *testing.T) {
	m := NewMachineARM64()
	sig := &wasm.FunctionType{Results: []wasm.ValueType{wasm.ValueTypeF64}}
	body := m.GenStdTrampoline(sig, CallingConventionSystemV)

	requireWords(t, body.Body,
		0xa9bf7bfd, // stp x29, x30, [sp, #-16]!
		0x910003fd, // add x29, sp, #0
		0xa9bf53f3, // stp x19, x20, [sp, #-16]!
		0xaa0103f3, // mov x19, x1
		0xaa0203f4, // mov x20, x2
		0xd63f0260, // blr x19
		0xfd000280, // str d0, [x20]
		0xa8c153f3, // ldp x19, x20, [sp], #16
		0xa8c17bfd, // ldp x29, x30, [sp], #16
		0xd65f03c0, // ret
	)
}

func TestMachineARM64_GenStdDynamicImportTrampoline(t *testing.T) {
	m := NewMachineARM64()
	vmoffsets := NewVMOffsets(0, 0, 0)
	sig := &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	}
	body := m.GenStdDynamicImportTrampoline(vmoffsets, sig, CallingConventionSystemV)

	requireWords(t, body.Body,
		0xa9bf7bfd, // stp x29, x30, [sp, #-16]!
		0x910003fd, // add x29, sp, #0
		0xd10043ff, // sub sp, sp, #16      ; values vector
		0xf90003e1, // str x1, [sp]         ; arg 0
		0x910003e1, // add x1, sp, #0       ; values vector pointer
		0xf9400010, // ldr x16, [x0]        ; host address from the context
		0xd63f0200, // blr x16
		0xf94003e0, // ldr x0, [sp]         ; result
		0x910043ff, // add sp, sp, #16
		0xa8c17bfd, // ldp x29, x30, [sp], #16
		0xd65f03c0, // ret
	)
}

func TestMachineARM64_GenImportCallTrampoline(t *testing.T) {
	m := NewMachineARM64()
	vmoffsets := NewVMOffsets(1, 0, 0)
	sig := &wasm.FunctionType{}
	section := m.GenImportCallTrampoline(vmoffsets, 0, sig, CallingConventionSystemV)

	requireWords(t, section.Bytes,
		0xf9400010, // ldr x16, [x0]        ; real function body
		0xf9400400, // ldr x0, [x0, #8]     ; callee vmctx
		0xd61f0200, // br x16
	)
}

func TestVMOffsets(t *testing.T) {
	v := NewVMOffsets(2, 1, 1)
	require.Equal(t, uint32(0), v.VMCtxImportedFunction(0))
	require.Equal(t, uint32(16), v.VMCtxImportedFunction(1))
	require.Equal(t, uint32(0), v.VMFunctionImportBody())
	require.Equal(t, uint32(8), v.VMFunctionImportVMCtx())
	require.Equal(t, uint32(32), v.VMCtxImportedMemory(0))
	require.Equal(t, uint32(40), v.VMCtxMemoryDefinition(0))
	require.Equal(t, uint32(0), v.VMMemoryDefinitionBase())
	require.Equal(t, uint32(8), v.VMMemoryDefinitionCurrentLength())
	require.Equal(t, uint32(0), v.VMDynamicFunctionContextAddress())

	require.Panics(t, func() { v.VMCtxImportedFunction(2) })
	require.Panics(t, func() { v.VMCtxImportedMemory(1) })
	require.Panics(t, func() { v.VMCtxMemoryDefinition(1) })
}
