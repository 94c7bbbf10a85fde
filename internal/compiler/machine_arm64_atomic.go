package compiler

import (
	"github.com/tetratelabs/singlepass/internal/asm"
	"github.com/tetratelabs/singlepass/internal/wasm"
)

// The threads proposal is not supported by this backend: every atomic
// operator fails fatally. A front end targeting this machine must not
// dispatch them.

// I32AtomicLoad is not available on this target.
func (m *MachineARM64) I32AtomicLoad(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_load")
}

// I32AtomicLoad8U is not available on this target.
func (m *MachineARM64) I32AtomicLoad8U(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_load_8u")
}

// I32AtomicLoad16U is not available on this target.
func (m *MachineARM64) I32AtomicLoad16U(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_load_16u")
}

// I32AtomicSave is not available on this target.
func (m *MachineARM64) I32AtomicSave(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_save")
}

// I32AtomicSave8 is not available on this target.
func (m *MachineARM64) I32AtomicSave8(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_save_8")
}

// I32AtomicSave16 is not available on this target.
func (m *MachineARM64) I32AtomicSave16(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_save_16")
}

// I32AtomicAdd is not available on this target.
func (m *MachineARM64) I32AtomicAdd(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_add")
}

// I32AtomicAdd8U is not available on this target.
func (m *MachineARM64) I32AtomicAdd8U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_add_8u")
}

// I32AtomicAdd16U is not available on this target.
func (m *MachineARM64) I32AtomicAdd16U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_add_16u")
}

// I32AtomicSub is not available on this target.
func (m *MachineARM64) I32AtomicSub(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_sub")
}

// I32AtomicSub8U is not available on this target.
func (m *MachineARM64) I32AtomicSub8U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_sub_8u")
}

// I32AtomicSub16U is not available on this target.
func (m *MachineARM64) I32AtomicSub16U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_sub_16u")
}

// I32AtomicAnd is not available on this target.
func (m *MachineARM64) I32AtomicAnd(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_and")
}

// I32AtomicAnd8U is not available on this target.
func (m *MachineARM64) I32AtomicAnd8U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_and_8u")
}

// I32AtomicAnd16U is not available on this target.
func (m *MachineARM64) I32AtomicAnd16U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_and_16u")
}

// I32AtomicOr is not available on this target.
func (m *MachineARM64) I32AtomicOr(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_or")
}

// I32AtomicOr8U is not available on this target.
func (m *MachineARM64) I32AtomicOr8U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_or_8u")
}

// I32AtomicOr16U is not available on this target.
func (m *MachineARM64) I32AtomicOr16U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_or_16u")
}

// I32AtomicXor is not available on this target.
func (m *MachineARM64) I32AtomicXor(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_xor")
}

// I32AtomicXor8U is not available on this target.
func (m *MachineARM64) I32AtomicXor8U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_xor_8u")
}

// I32AtomicXor16U is not available on this target.
func (m *MachineARM64) I32AtomicXor16U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_xor_16u")
}

// I32AtomicXchg is not available on this target.
func (m *MachineARM64) I32AtomicXchg(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_xchg")
}

// I32AtomicXchg8U is not available on this target.
func (m *MachineARM64) I32AtomicXchg8U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_xchg_8u")
}

// I32AtomicXchg16U is not available on this target.
func (m *MachineARM64) I32AtomicXchg16U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_xchg_16u")
}

// I32AtomicCmpxchg is not available on this target.
func (m *MachineARM64) I32AtomicCmpxchg(Location, Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_cmpxchg")
}

// I32AtomicCmpxchg8U is not available on this target.
func (m *MachineARM64) I32AtomicCmpxchg8U(Location, Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_cmpxchg_8u")
}

// I32AtomicCmpxchg16U is not available on this target.
func (m *MachineARM64) I32AtomicCmpxchg16U(Location, Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i32_atomic_cmpxchg_16u")
}

// I64AtomicLoad is not available on this target.
func (m *MachineARM64) I64AtomicLoad(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_load")
}

// I64AtomicLoad8U is not available on this target.
func (m *MachineARM64) I64AtomicLoad8U(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_load_8u")
}

// I64AtomicLoad16U is not available on this target.
func (m *MachineARM64) I64AtomicLoad16U(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_load_16u")
}

// I64AtomicLoad32U is not available on this target.
func (m *MachineARM64) I64AtomicLoad32U(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_load_32u")
}

// I64AtomicSave is not available on this target.
func (m *MachineARM64) I64AtomicSave(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_save")
}

// I64AtomicSave8 is not available on this target.
func (m *MachineARM64) I64AtomicSave8(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_save_8")
}

// I64AtomicSave16 is not available on this target.
func (m *MachineARM64) I64AtomicSave16(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_save_16")
}

// I64AtomicSave32 is not available on this target.
func (m *MachineARM64) I64AtomicSave32(Location, *wasm.MemoryImmediate, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_save_32")
}

// I64AtomicAdd is not available on this target.
func (m *MachineARM64) I64AtomicAdd(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_add")
}

// I64AtomicAdd8U is not available on this target.
func (m *MachineARM64) I64AtomicAdd8U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_add_8u")
}

// I64AtomicAdd16U is not available on this target.
func (m *MachineARM64) I64AtomicAdd16U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_add_16u")
}

// I64AtomicAdd32U is not available on this target.
func (m *MachineARM64) I64AtomicAdd32U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_add_32u")
}

// I64AtomicSub is not available on this target.
func (m *MachineARM64) I64AtomicSub(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_sub")
}

// I64AtomicSub8U is not available on this target.
func (m *MachineARM64) I64AtomicSub8U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_sub_8u")
}

// I64AtomicSub16U is not available on this target.
func (m *MachineARM64) I64AtomicSub16U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_sub_16u")
}

// I64AtomicSub32U is not available on this target.
func (m *MachineARM64) I64AtomicSub32U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_sub_32u")
}

// I64AtomicAnd is not available on this target.
func (m *MachineARM64) I64AtomicAnd(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_and")
}

// I64AtomicAnd8U is not available on this target.
func (m *MachineARM64) I64AtomicAnd8U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_and_8u")
}

// I64AtomicAnd16U is not available on this target.
func (m *MachineARM64) I64AtomicAnd16U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_and_16u")
}

// I64AtomicAnd32U is not available on this target.
func (m *MachineARM64) I64AtomicAnd32U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_and_32u")
}

// I64AtomicOr is not available on this target.
func (m *MachineARM64) I64AtomicOr(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_or")
}

// I64AtomicOr8U is not available on this target.
func (m *MachineARM64) I64AtomicOr8U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_or_8u")
}

// I64AtomicOr16U is not available on this target.
func (m *MachineARM64) I64AtomicOr16U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_or_16u")
}

// I64AtomicOr32U is not available on this target.
func (m *MachineARM64) I64AtomicOr32U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_or_32u")
}

// I64AtomicXor is not available on this target.
func (m *MachineARM64) I64AtomicXor(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_xor")
}

// I64AtomicXor8U is not available on this target.
func (m *MachineARM64) I64AtomicXor8U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_xor_8u")
}

// I64AtomicXor16U is not available on this target.
func (m *MachineARM64) I64AtomicXor16U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_xor_16u")
}

// I64AtomicXor32U is not available on this target.
func (m *MachineARM64) I64AtomicXor32U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_xor_32u")
}

// I64AtomicXchg is not available on this target.
func (m *MachineARM64) I64AtomicXchg(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_xchg")
}

// I64AtomicXchg8U is not available on this target.
func (m *MachineARM64) I64AtomicXchg8U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_xchg_8u")
}

// I64AtomicXchg16U is not available on this target.
func (m *MachineARM64) I64AtomicXchg16U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_xchg_16u")
}

// I64AtomicXchg32U is not available on this target.
func (m *MachineARM64) I64AtomicXchg32U(Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_xchg_32u")
}

// I64AtomicCmpxchg is not available on this target.
func (m *MachineARM64) I64AtomicCmpxchg(Location, Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_cmpxchg")
}

// I64AtomicCmpxchg8U is not available on this target.
func (m *MachineARM64) I64AtomicCmpxchg8U(Location, Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_cmpxchg_8u")
}

// I64AtomicCmpxchg16U is not available on this target.
func (m *MachineARM64) I64AtomicCmpxchg16U(Location, Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_cmpxchg_16u")
}

// I64AtomicCmpxchg32U is not available on this target.
func (m *MachineARM64) I64AtomicCmpxchg32U(Location, Location, *wasm.MemoryImmediate, Location, Location, bool, bool, int32, asm.Label) {
	unimplemented("i64_atomic_cmpxchg_32u")
}
