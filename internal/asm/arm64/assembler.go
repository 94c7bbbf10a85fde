package arm64

import (
	"github.com/tetratelabs/singlepass/internal/asm"
)

// Assembler is the interface for arm64 specific assembler.
type Assembler interface {
	asm.AssemblerBase

	// CompileMemoryWithRegisterOffsetToRegister adds an instruction where source operand is the memory address
	// specified as `srcBaseReg + srcOffsetReg` and dst is the register `dstReg`.
	CompileMemoryWithRegisterOffsetToRegister(instruction asm.Instruction, srcBaseReg, srcOffsetReg, dstReg asm.Register)

	// CompileRegisterToMemoryWithRegisterOffset adds an instruction where source operand is the register `srcReg`,
	// and the destination is the memory address specified as `dstBaseReg + dstOffsetReg`.
	CompileRegisterToMemoryWithRegisterOffset(instruction asm.Instruction, srcReg, dstBaseReg, dstOffsetReg asm.Register)

	// CompileMemoryToRegisterUnscaled adds a load with the unscaled 9-bit signed
	// offset addressing form (LDUR family). The offset must be in (-256, 256).
	CompileMemoryToRegisterUnscaled(instruction asm.Instruction, srcBaseReg asm.Register, srcOffsetConst asm.ConstantValue, dstReg asm.Register)

	// CompileRegisterToMemoryUnscaled adds a store with the unscaled 9-bit signed
	// offset addressing form (STUR family). The offset must be in (-256, 256).
	CompileRegisterToMemoryUnscaled(instruction asm.Instruction, srcReg, dstBaseReg asm.Register, dstOffsetConst asm.ConstantValue)

	// CompileRegisterToMemoryPostIndexed adds a store of `srcReg` to `[dstBaseReg]`
	// which then increments `dstBaseReg` by `increment` (STR post-indexed).
	CompileRegisterToMemoryPostIndexed(instruction asm.Instruction, srcReg, dstBaseReg asm.Register, increment asm.ConstantValue)

	// CompileTwoRegistersToMemoryPreIndexed adds a pair store of `srcReg`,`srcReg2` to
	// `[dstBaseReg, #-decrement]!` (STP pre-indexed with write-back).
	CompileTwoRegistersToMemoryPreIndexed(instruction asm.Instruction, srcReg, srcReg2, dstBaseReg asm.Register, decrement asm.ConstantValue)

	// CompileMemoryToTwoRegistersPostIndexed adds a pair load of `[srcBaseReg], #increment`
	// into `dstReg`,`dstReg2` (LDP post-indexed with write-back).
	CompileMemoryToTwoRegistersPostIndexed(instruction asm.Instruction, srcBaseReg asm.Register, increment asm.ConstantValue, dstReg, dstReg2 asm.Register)

	// CompileTwoRegistersToRegister adds an instruction where source operands consist of two registers
	// `src1` and `src2`, and the destination is the register `dst`: `dst = src1 OP src2`.
	CompileTwoRegistersToRegister(instruction asm.Instruction, src1, src2, dst asm.Register)

	// CompileThreeRegistersToRegister adds an instruction where source operands consist of three
	// registers, and the destination is `dst`. For MSUB: `dst = ra - rn*rm`.
	CompileThreeRegistersToRegister(instruction asm.Instruction, rn, rm, ra, dst asm.Register)

	// CompileTwoRegistersToNone adds an instruction where source operands consist of two registers
	// `src1` and `src2`, and destination operand is unspecified. For CMP, the flags are set
	// for `src1 - src2`; for FCMP, `src1` is compared against `src2`.
	CompileTwoRegistersToNone(instruction asm.Instruction, src1, src2 asm.Register)

	// CompileRegisterAndConstToNone adds an instruction where source operands consist of one register
	// `src` and constant `srcConst`, and destination operand is unspecified (CMP/TST immediate).
	CompileRegisterAndConstToNone(instruction asm.Instruction, src asm.Register, srcConst asm.ConstantValue)

	// CompileConstAndRegisterToRegister adds a three-operand instruction with an immediate:
	// `dst = src OP value`.
	CompileConstAndRegisterToRegister(instruction asm.Instruction, value asm.ConstantValue, src, dst asm.Register)

	// CompileConstShiftedToRegister adds a wide-move instruction keeping the other bits of
	// `reg` (MOVK) with the 16-bit `value` inserted at `shift` (one of 0, 16, 32, 48).
	CompileConstShiftedToRegister(instruction asm.Instruction, value asm.ConstantValue, shift asm.ConstantValue, reg asm.Register) asm.Node

	// CompileLeftShiftedRegisterToRegister adds an instruction where the source operand is the
	// "left shifted register" represented as `shiftedSourceReg << shiftNum`:
	// `dstReg = srcReg + (shiftedSourceReg << shiftNum)`.
	CompileLeftShiftedRegisterToRegister(instruction asm.Instruction, shiftedSourceReg asm.Register, shiftNum asm.ConstantValue, srcReg, dstReg asm.Register)

	// CompileConditionalRegisterSet adds an instruction to set 1 on dstReg if the condition
	// satisfies, otherwise set 0 (CSET).
	CompileConditionalRegisterSet(cond asm.ConditionalRegisterState, dstReg asm.Register)

	// CompileCompareBranchToLabel adds a compare-and-branch-on-zero kind instruction
	// (CBZ/CBNZ and their 32-bit forms) targeting `label`.
	CompileCompareBranchToLabel(instruction asm.Instruction, reg asm.Register, label asm.Label) asm.Node

	// CompileLoadLabelAddress adds an ADR instruction setting the absolute address of the
	// instruction bound to `label` into `dstReg`.
	CompileLoadLabelAddress(dstReg asm.Register, label asm.Label)
}
