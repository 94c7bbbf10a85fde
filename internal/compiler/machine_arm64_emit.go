package compiler

import (
	"fmt"

	"github.com/tetratelabs/singlepass/internal/asm"
	"github.com/tetratelabs/singlepass/internal/asm/arm64"
)

// This file bridges legalised Locations onto the typed assembler surface:
// every emitter below expects operands the legaliser already reduced to
// registers or instruction-compatible immediates, and panics otherwise.

func pickInst(sz Size, inst64, inst32 asm.Instruction) asm.Instruction {
	if sz == SizeS64 {
		return inst64
	}
	return inst32
}

func (m *MachineARM64) emitMovImm(dst Location, val uint64) {
	if !dst.IsGPR() {
		panic(fmt.Sprintf("singlepass can't emit mov_imm to %s", dst))
	}
	m.assembler.CompileConstToRegister(arm64.MOVD, int64(val), dst.Register())
}

func (m *MachineARM64) emitMove(sz Size, src, dst Location) {
	switch {
	case src.IsGPR() && dst.IsGPR():
		m.assembler.CompileRegisterToRegister(pickInst(sz, arm64.MOVD, arm64.MOVWU), src.Register(), dst.Register())
	case src.IsRegister() && dst.IsRegister():
		// At least one NEON side, so this is a typed FMOV.
		m.assembler.CompileRegisterToRegister(pickInst(sz, arm64.FMOVD, arm64.FMOVS), src.Register(), dst.Register())
	case src.IsImm() && dst.IsGPR():
		if sz == SizeS64 {
			m.assembler.CompileConstToRegister(arm64.MOVD, src.ImmValue(), dst.Register())
		} else {
			m.assembler.CompileConstToRegister(arm64.MOVW, src.ImmValue(), dst.Register())
		}
	default:
		panic(fmt.Sprintf("singlepass can't emit mov %s %s => %s", sz, src, dst))
	}
}

// arithmetic and logic

func (m *MachineARM64) emitArith3(inst64, inst32 asm.Instruction, sz Size, src1, src2, dst Location, commutative bool) {
	inst := pickInst(sz, inst64, inst32)
	switch {
	case src1.IsGPR() && src2.IsGPR() && dst.IsGPR():
		m.assembler.CompileTwoRegistersToRegister(inst, src1.Register(), src2.Register(), dst.Register())
	case src1.IsGPR() && src2.IsImm() && dst.IsGPR():
		m.assembler.CompileConstAndRegisterToRegister(inst, src2.ImmValue(), src1.Register(), dst.Register())
	case commutative && src1.IsImm() && src2.IsGPR() && dst.IsGPR():
		m.assembler.CompileConstAndRegisterToRegister(inst, src1.ImmValue(), src2.Register(), dst.Register())
	default:
		panic(fmt.Sprintf("singlepass can't emit %s %s (%s, %s) => %s", arm64.InstructionName(inst), sz, src1, src2, dst))
	}
}

func (m *MachineARM64) emitAdd(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.ADD, arm64.ADDW, sz, src1, src2, dst, true)
}

func (m *MachineARM64) emitAdds(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.ADDS, arm64.ADDSW, sz, src1, src2, dst, true)
}

func (m *MachineARM64) emitSub(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.SUB, arm64.SUBW, sz, src1, src2, dst, false)
}

func (m *MachineARM64) emitSubs(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.SUBS, arm64.SUBSW, sz, src1, src2, dst, false)
}

func (m *MachineARM64) emitAnd(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.AND, arm64.ANDW, sz, src1, src2, dst, true)
}

func (m *MachineARM64) emitOr(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.ORR, arm64.ORRW, sz, src1, src2, dst, true)
}

func (m *MachineARM64) emitEor(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.EOR, arm64.EORW, sz, src1, src2, dst, true)
}

func (m *MachineARM64) emitLsl(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.LSL, arm64.LSLW, sz, src1, src2, dst, false)
}

func (m *MachineARM64) emitLsr(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.LSR, arm64.LSRW, sz, src1, src2, dst, false)
}

func (m *MachineARM64) emitAsr(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.ASR, arm64.ASRW, sz, src1, src2, dst, false)
}

func (m *MachineARM64) emitRor(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.ROR, arm64.RORW, sz, src1, src2, dst, false)
}

func (m *MachineARM64) emitMul(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.MUL, arm64.MULW, sz, src1, src2, dst, false)
}

func (m *MachineARM64) emitSdiv(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.SDIV, arm64.SDIVW, sz, src1, src2, dst, false)
}

func (m *MachineARM64) emitUdiv(sz Size, src1, src2, dst Location) {
	m.emitArith3(arm64.UDIV, arm64.UDIVW, sz, src1, src2, dst, false)
}

// emitMsub emits dst = a - q*b, the multiply-subtract used by the remainder
// lowerings.
func (m *MachineARM64) emitMsub(sz Size, q, b, a, dst Location) {
	if !(q.IsGPR() && b.IsGPR() && a.IsGPR() && dst.IsGPR()) {
		panic(fmt.Sprintf("singlepass can't emit msub %s (%s, %s, %s) => %s", sz, q, b, a, dst))
	}
	m.assembler.CompileThreeRegistersToRegister(pickInst(sz, arm64.MSUB, arm64.MSUBW),
		q.Register(), b.Register(), a.Register(), dst.Register())
}

func (m *MachineARM64) emitAddLsl(sz Size, src1, src2 Location, shift int64, dst Location) {
	if sz != SizeS64 || !(src1.IsGPR() && src2.IsGPR() && dst.IsGPR()) {
		panic(fmt.Sprintf("singlepass can't emit add_lsl %s (%s, %s << %d) => %s", sz, src1, src2, shift, dst))
	}
	m.assembler.CompileLeftShiftedRegisterToRegister(arm64.ADD, src2.Register(), shift, src1.Register(), dst.Register())
}

func (m *MachineARM64) emitClz(sz Size, src, dst Location) {
	m.assembler.CompileRegisterToRegister(pickInst(sz, arm64.CLZ, arm64.CLZW), src.Register(), dst.Register())
}

func (m *MachineARM64) emitRbit(sz Size, src, dst Location) {
	m.assembler.CompileRegisterToRegister(pickInst(sz, arm64.RBIT, arm64.RBITW), src.Register(), dst.Register())
}

func (m *MachineARM64) emitSxtb(sz Size, src, dst Location) {
	m.assembler.CompileRegisterToRegister(pickInst(sz, arm64.SXTB, arm64.SXTBW), src.Register(), dst.Register())
}

func (m *MachineARM64) emitSxth(sz Size, src, dst Location) {
	m.assembler.CompileRegisterToRegister(pickInst(sz, arm64.SXTH, arm64.SXTHW), src.Register(), dst.Register())
}

func (m *MachineARM64) emitSxtw(sz Size, src, dst Location) {
	if sz != SizeS64 {
		panic("BUG: sxtw requires a 64-bit destination")
	}
	m.assembler.CompileRegisterToRegister(arm64.SXTW, src.Register(), dst.Register())
}

// flags

// emitCmp sets the flags for dst - src.
func (m *MachineARM64) emitCmp(sz Size, src, dst Location) {
	inst := pickInst(sz, arm64.CMP, arm64.CMPW)
	switch {
	case src.IsImm() && dst.IsGPR():
		m.assembler.CompileRegisterAndConstToNone(inst, dst.Register(), src.ImmValue())
	case src.IsGPR() && dst.IsGPR():
		m.assembler.CompileTwoRegistersToNone(inst, dst.Register(), src.Register())
	default:
		panic(fmt.Sprintf("singlepass can't emit cmp %s %s, %s", sz, src, dst))
	}
}

// emitTst sets the flags for dst & src.
func (m *MachineARM64) emitTst(sz Size, src, dst Location) {
	inst := pickInst(sz, arm64.TST, arm64.TSTW)
	switch {
	case src.IsImm() && dst.IsGPR():
		m.assembler.CompileRegisterAndConstToNone(inst, dst.Register(), src.ImmValue())
	case src.IsGPR() && dst.IsGPR():
		m.assembler.CompileTwoRegistersToNone(inst, dst.Register(), src.Register())
	default:
		panic(fmt.Sprintf("singlepass can't emit tst %s %s, %s", sz, src, dst))
	}
}

func (m *MachineARM64) emitCset(sz Size, dst Location, cond asm.ConditionalRegisterState) {
	if !dst.IsGPR() {
		panic(fmt.Sprintf("singlepass can't emit cset to %s", dst))
	}
	_ = sz // cset zeroes the upper bits either way.
	m.assembler.CompileConditionalRegisterSet(cond, dst.Register())
}

// branches

var arm64CondToBranch = map[asm.ConditionalRegisterState]asm.Instruction{
	arm64.CondEQ: arm64.BCONDEQ,
	arm64.CondNE: arm64.BCONDNE,
	arm64.CondHS: arm64.BCONDHS,
	arm64.CondLO: arm64.BCONDLO,
	arm64.CondMI: arm64.BCONDMI,
	arm64.CondPL: arm64.BCONDPL,
	arm64.CondVS: arm64.BCONDVS,
	arm64.CondVC: arm64.BCONDVC,
	arm64.CondHI: arm64.BCONDHI,
	arm64.CondLS: arm64.BCONDLS,
	arm64.CondGE: arm64.BCONDGE,
	arm64.CondLT: arm64.BCONDLT,
	arm64.CondGT: arm64.BCONDGT,
	arm64.CondLE: arm64.BCONDLE,
}

func (m *MachineARM64) emitBcondLabel(cond asm.ConditionalRegisterState, label asm.Label) {
	inst, ok := arm64CondToBranch[cond]
	if !ok {
		panic("BUG: unknown branch condition")
	}
	m.assembler.CompileBranchToLabel(inst, label)
}

func (m *MachineARM64) emitCbzLabel(sz Size, reg Location, label asm.Label) {
	if !reg.IsGPR() {
		panic(fmt.Sprintf("singlepass can't emit cbz on %s", reg))
	}
	m.assembler.CompileCompareBranchToLabel(pickInst(sz, arm64.CBZ, arm64.CBZW), reg.Register(), label)
}

func (m *MachineARM64) emitCbnzLabel(sz Size, reg Location, label asm.Label) {
	if !reg.IsGPR() {
		panic(fmt.Sprintf("singlepass can't emit cbnz on %s", reg))
	}
	m.assembler.CompileCompareBranchToLabel(pickInst(sz, arm64.CBNZ, arm64.CBNZW), reg.Register(), label)
}

// loads and stores

func ldrInstFor(sz Size, target Location) asm.Instruction {
	if target.IsSIMD() {
		return pickInst(sz, arm64.FMOVD, arm64.FMOVS)
	}
	switch sz {
	case SizeS64:
		return arm64.MOVD
	case SizeS32:
		return arm64.MOVWU
	case SizeS16:
		return arm64.MOVHU
	default:
		return arm64.MOVBU
	}
}

func (m *MachineARM64) emitLoad(inst asm.Instruction, dst, src Location) {
	switch {
	case src.IsMemory():
		m.assembler.CompileMemoryToRegister(inst, src.Register(), asm.ConstantValue(src.MemoryOffset()), dst.Register())
	case src.IsMemory2():
		if src.Multiplier() != MultiplierOne || src.MemoryOffset() != 0 {
			panic(fmt.Sprintf("singlepass can't emit indexed load from %s", src))
		}
		m.assembler.CompileMemoryWithRegisterOffsetToRegister(inst, src.Register(), src.Index(), dst.Register())
	default:
		panic(fmt.Sprintf("singlepass can't emit load from %s", src))
	}
}

func (m *MachineARM64) emitStore(inst asm.Instruction, src, dst Location) {
	switch {
	case dst.IsMemory():
		m.assembler.CompileRegisterToMemory(inst, src.Register(), dst.Register(), asm.ConstantValue(dst.MemoryOffset()))
	case dst.IsMemory2():
		if dst.Multiplier() != MultiplierOne || dst.MemoryOffset() != 0 {
			panic(fmt.Sprintf("singlepass can't emit indexed store to %s", dst))
		}
		m.assembler.CompileRegisterToMemoryWithRegisterOffset(inst, src.Register(), dst.Register(), dst.Index())
	default:
		panic(fmt.Sprintf("singlepass can't emit store to %s", dst))
	}
}

func (m *MachineARM64) emitLdr(sz Size, dst, src Location) {
	m.emitLoad(ldrInstFor(sz, dst), dst, src)
}

func (m *MachineARM64) emitStr(sz Size, src, dst Location) {
	m.emitStore(ldrInstFor(sz, src), src, dst)
}

func (m *MachineARM64) emitLdur(sz Size, dst Location, base asm.Register, offset int32) {
	m.assembler.CompileMemoryToRegisterUnscaled(ldrInstFor(sz, dst), base, asm.ConstantValue(offset), dst.Register())
}

func (m *MachineARM64) emitStur(sz Size, src Location, base asm.Register, offset int32) {
	m.assembler.CompileRegisterToMemoryUnscaled(ldrInstFor(sz, src), src.Register(), base, asm.ConstantValue(offset))
}

// emitStria stores src to [base] and post-increments base.
func (m *MachineARM64) emitStria(sz Size, src Location, base asm.Register, increment int64) {
	if sz != SizeS64 || !src.IsGPR() {
		panic(fmt.Sprintf("singlepass can't emit post-indexed store of %s", src))
	}
	m.assembler.CompileRegisterToMemoryPostIndexed(arm64.MOVD, src.Register(), base, increment)
}

func (m *MachineARM64) emitLdrb(dst, src Location) {
	m.emitLoad(arm64.MOVBU, dst, src)
}

func (m *MachineARM64) emitLdrsb(sz Size, dst, src Location) {
	m.emitLoad(pickInst(sz, arm64.MOVB, arm64.MOVBW), dst, src)
}

func (m *MachineARM64) emitLdrh(dst, src Location) {
	m.emitLoad(arm64.MOVHU, dst, src)
}

func (m *MachineARM64) emitLdrsh(sz Size, dst, src Location) {
	m.emitLoad(pickInst(sz, arm64.MOVH, arm64.MOVHW), dst, src)
}

func (m *MachineARM64) emitLdrsw(dst, src Location) {
	m.emitLoad(arm64.MOVW, dst, src)
}

func (m *MachineARM64) emitStrb(src, dst Location) {
	m.emitStore(arm64.MOVBU, src, dst)
}

func (m *MachineARM64) emitStrh(src, dst Location) {
	m.emitStore(arm64.MOVHU, src, dst)
}

// floating point

func (m *MachineARM64) emitFloat3(inst64, inst32 asm.Instruction, sz Size, src1, src2, dst Location) {
	if !(src1.IsSIMD() && src2.IsSIMD() && dst.IsSIMD()) {
		panic(fmt.Sprintf("singlepass can't emit %s %s (%s, %s) => %s", arm64.InstructionName(inst64), sz, src1, src2, dst))
	}
	m.assembler.CompileTwoRegistersToRegister(pickInst(sz, inst64, inst32), src1.Register(), src2.Register(), dst.Register())
}

func (m *MachineARM64) emitFAdd(sz Size, src1, src2, dst Location) {
	m.emitFloat3(arm64.FADDD, arm64.FADDS, sz, src1, src2, dst)
}

func (m *MachineARM64) emitFSub(sz Size, src1, src2, dst Location) {
	m.emitFloat3(arm64.FSUBD, arm64.FSUBS, sz, src1, src2, dst)
}

func (m *MachineARM64) emitFMul(sz Size, src1, src2, dst Location) {
	m.emitFloat3(arm64.FMULD, arm64.FMULS, sz, src1, src2, dst)
}

func (m *MachineARM64) emitFDiv(sz Size, src1, src2, dst Location) {
	m.emitFloat3(arm64.FDIVD, arm64.FDIVS, sz, src1, src2, dst)
}

func (m *MachineARM64) emitFMin(sz Size, src1, src2, dst Location) {
	m.emitFloat3(arm64.FMIND, arm64.FMINS, sz, src1, src2, dst)
}

func (m *MachineARM64) emitFMax(sz Size, src1, src2, dst Location) {
	m.emitFloat3(arm64.FMAXD, arm64.FMAXS, sz, src1, src2, dst)
}

// emitFcmp sets the flags for the comparison of src against dst.
func (m *MachineARM64) emitFcmp(sz Size, src, dst Location) {
	if !(src.IsSIMD() && dst.IsSIMD()) {
		panic(fmt.Sprintf("singlepass can't emit fcmp %s %s, %s", sz, src, dst))
	}
	m.assembler.CompileTwoRegistersToNone(pickInst(sz, arm64.FCMPD, arm64.FCMPS), src.Register(), dst.Register())
}

func (m *MachineARM64) emitFneg(sz Size, src, dst Location) {
	m.assembler.CompileRegisterToRegister(pickInst(sz, arm64.FNEGD, arm64.FNEGS), src.Register(), dst.Register())
}

func (m *MachineARM64) emitFabs(sz Size, src, dst Location) {
	m.assembler.CompileRegisterToRegister(pickInst(sz, arm64.FABSD, arm64.FABSS), src.Register(), dst.Register())
}

func (m *MachineARM64) emitFsqrt(sz Size, src, dst Location) {
	m.assembler.CompileRegisterToRegister(pickInst(sz, arm64.FSQRTD, arm64.FSQRTS), src.Register(), dst.Register())
}

// emitFcvt converts between the two float precisions; sz is the destination size.
func (m *MachineARM64) emitFcvt(sz Size, src, dst Location) {
	m.assembler.CompileRegisterToRegister(pickInst(sz, arm64.FCVTSD, arm64.FCVTDS), src.Register(), dst.Register())
}

func (m *MachineARM64) emitScvtf(szSrc Size, src Location, szDst Size, dst Location) {
	var inst asm.Instruction
	switch {
	case szSrc == SizeS64 && szDst == SizeS64:
		inst = arm64.SCVTFD
	case szSrc == SizeS32 && szDst == SizeS64:
		inst = arm64.SCVTFWD
	case szSrc == SizeS64 && szDst == SizeS32:
		inst = arm64.SCVTFS
	default:
		inst = arm64.SCVTFWS
	}
	m.assembler.CompileRegisterToRegister(inst, src.Register(), dst.Register())
}

func (m *MachineARM64) emitUcvtf(szSrc Size, src Location, szDst Size, dst Location) {
	var inst asm.Instruction
	switch {
	case szSrc == SizeS64 && szDst == SizeS64:
		inst = arm64.UCVTFD
	case szSrc == SizeS32 && szDst == SizeS64:
		inst = arm64.UCVTFWD
	case szSrc == SizeS64 && szDst == SizeS32:
		inst = arm64.UCVTFS
	default:
		inst = arm64.UCVTFWS
	}
	m.assembler.CompileRegisterToRegister(inst, src.Register(), dst.Register())
}
