package compiler

import (
	"github.com/tetratelabs/singlepass/internal/asm"
	"github.com/tetratelabs/singlepass/internal/asm/arm64"
)

// Integer ALU surface: one method per Wasm operator family, each a thin
// composition over the relaxed kernels with the immediate kind the target
// instruction accepts.

// EmitBinopAdd32 emits ret = locA + locB (i32.add).
func (m *MachineARM64) EmitBinopAdd32(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitAdd, SizeS32, locA, locB, ret, ImmTypeBits12)
}

// EmitBinopSub32 emits ret = locA - locB (i32.sub).
func (m *MachineARM64) EmitBinopSub32(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitSub, SizeS32, locA, locB, ret, ImmTypeBits12)
}

// EmitBinopMul32 emits ret = locA * locB (i32.mul).
func (m *MachineARM64) EmitBinopMul32(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitMul, SizeS32, locA, locB, ret, ImmTypeNone)
}

// EmitBinopAnd32 emits ret = locA & locB (i32.and).
func (m *MachineARM64) EmitBinopAnd32(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitAnd, SizeS32, locA, locB, ret, ImmTypeLogical32)
}

// EmitBinopOr32 emits ret = locA | locB (i32.or).
func (m *MachineARM64) EmitBinopOr32(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitOr, SizeS32, locA, locB, ret, ImmTypeLogical32)
}

// EmitBinopXor32 emits ret = locA ^ locB (i32.xor).
func (m *MachineARM64) EmitBinopXor32(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitEor, SizeS32, locA, locB, ret, ImmTypeLogical32)
}

// emitBinopDiv emits the shared division skeleton: divisor zero check,
// optionally the MIN/-1 overflow check, then the division instruction tagged
// with IntegerOverflow. Returns the offset of the tagged instruction.
func (m *MachineARM64) emitBinopDiv(sz Size, signed, rem bool, locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint {
	var temps []asm.Register
	src1 := m.locationToReg(sz, locA, &temps, ImmTypeNone, true, asm.NilRegister)
	src2 := m.locationToReg(sz, locB, &temps, ImmTypeNone, true, asm.NilRegister)
	dest := m.locationToReg(sz, ret, &temps, ImmTypeNone, false, asm.NilRegister)
	if rem && (dest == src1 || dest == src2) {
		// The remainder needs the quotient and both sources live at once.
		tmp := m.AcquireTempGPR()
		temps = append(temps, tmp)
		m.emitMove(sz, dest, LocGPR(tmp))
		dest = LocGPR(tmp)
	}

	m.emitCbzLabel(sz, src2, integerDivisionByZero)

	if signed && !rem {
		// Dividend == MIN and divisor == -1 overflows; the remainder path
		// needs no branch because sdiv yields MIN and msub then yields 0.
		labelNoOverflow := m.assembler.NewLabel()
		var minVal Location
		if sz == SizeS32 {
			minVal = LocImm32(0x80000000)
		} else {
			minVal = LocImm64(0x8000000000000000)
		}
		tmp := m.locationToReg(sz, minVal, &temps, ImmTypeNone, true, asm.NilRegister)
		m.emitCmp(sz, tmp, src1)
		m.emitBcondLabel(arm64.CondNE, labelNoOverflow)
		m.emitMovImm(tmp, ^uint64(0))
		m.emitCmp(sz, tmp, src2)
		m.emitBcondLabel(arm64.CondEQ, integerOverflow)
		m.assembler.BindLabel(labelNoOverflow)
	}

	offset := m.MarkInstructionWithTrapCode(TrapCodeIntegerOverflow)
	if signed {
		m.emitSdiv(sz, src1, src2, dest)
	} else {
		m.emitUdiv(sz, src1, src2, dest)
	}
	if rem {
		// remainder: src1 - (src1/src2)*src2
		m.emitMsub(sz, dest, src2, src1, dest)
	}
	if ret != dest {
		m.MoveLocation(sz, dest, ret)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
	return offset
}

// EmitBinopUdiv32 emits i32.div_u. Returns the offset tagged IntegerOverflow.
func (m *MachineARM64) EmitBinopUdiv32(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint {
	return m.emitBinopDiv(SizeS32, false, false, locA, locB, ret, integerDivisionByZero, integerOverflow)
}

// EmitBinopSdiv32 emits i32.div_s with the MIN/-1 overflow branch.
func (m *MachineARM64) EmitBinopSdiv32(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint {
	return m.emitBinopDiv(SizeS32, true, false, locA, locB, ret, integerDivisionByZero, integerOverflow)
}

// EmitBinopUrem32 emits i32.rem_u via udiv+msub.
func (m *MachineARM64) EmitBinopUrem32(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint {
	return m.emitBinopDiv(SizeS32, false, true, locA, locB, ret, integerDivisionByZero, integerOverflow)
}

// EmitBinopSrem32 emits i32.rem_s via sdiv+msub.
func (m *MachineARM64) EmitBinopSrem32(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint {
	return m.emitBinopDiv(SizeS32, true, true, locA, locB, ret, integerDivisionByZero, integerOverflow)
}

// EmitBinopAdd64 emits i64.add.
func (m *MachineARM64) EmitBinopAdd64(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitAdd, SizeS64, locA, locB, ret, ImmTypeBits12)
}

// EmitBinopSub64 emits i64.sub.
func (m *MachineARM64) EmitBinopSub64(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitSub, SizeS64, locA, locB, ret, ImmTypeBits12)
}

// EmitBinopMul64 emits i64.mul.
func (m *MachineARM64) EmitBinopMul64(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitMul, SizeS64, locA, locB, ret, ImmTypeNone)
}

// EmitBinopAnd64 emits i64.and.
func (m *MachineARM64) EmitBinopAnd64(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitAnd, SizeS64, locA, locB, ret, ImmTypeLogical64)
}

// EmitBinopOr64 emits i64.or.
func (m *MachineARM64) EmitBinopOr64(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitOr, SizeS64, locA, locB, ret, ImmTypeLogical64)
}

// EmitBinopXor64 emits i64.xor.
func (m *MachineARM64) EmitBinopXor64(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitEor, SizeS64, locA, locB, ret, ImmTypeLogical64)
}

// EmitBinopUdiv64 emits i64.div_u.
func (m *MachineARM64) EmitBinopUdiv64(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint {
	return m.emitBinopDiv(SizeS64, false, false, locA, locB, ret, integerDivisionByZero, integerOverflow)
}

// EmitBinopSdiv64 emits i64.div_s with the MIN/-1 overflow branch.
func (m *MachineARM64) EmitBinopSdiv64(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint {
	return m.emitBinopDiv(SizeS64, true, false, locA, locB, ret, integerDivisionByZero, integerOverflow)
}

// EmitBinopUrem64 emits i64.rem_u.
func (m *MachineARM64) EmitBinopUrem64(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint {
	return m.emitBinopDiv(SizeS64, false, true, locA, locB, ret, integerDivisionByZero, integerOverflow)
}

// EmitBinopSrem64 emits i64.rem_s.
func (m *MachineARM64) EmitBinopSrem64(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint {
	return m.emitBinopDiv(SizeS64, true, true, locA, locB, ret, integerDivisionByZero, integerOverflow)
}

// i32 comparisons.

// I32CmpGeS emits i32.ge_s.
func (m *MachineARM64) I32CmpGeS(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS32, arm64.CondGE, locA, locB, ret)
}

// I32CmpGtS emits i32.gt_s.
func (m *MachineARM64) I32CmpGtS(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS32, arm64.CondGT, locA, locB, ret)
}

// I32CmpLeS emits i32.le_s.
func (m *MachineARM64) I32CmpLeS(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS32, arm64.CondLE, locA, locB, ret)
}

// I32CmpLtS emits i32.lt_s.
func (m *MachineARM64) I32CmpLtS(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS32, arm64.CondLT, locA, locB, ret)
}

// I32CmpGeU emits i32.ge_u.
func (m *MachineARM64) I32CmpGeU(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS32, arm64.CondHS, locA, locB, ret)
}

// I32CmpGtU emits i32.gt_u.
func (m *MachineARM64) I32CmpGtU(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS32, arm64.CondHI, locA, locB, ret)
}

// I32CmpLeU emits i32.le_u.
func (m *MachineARM64) I32CmpLeU(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS32, arm64.CondLS, locA, locB, ret)
}

// I32CmpLtU emits i32.lt_u.
func (m *MachineARM64) I32CmpLtU(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS32, arm64.CondLO, locA, locB, ret)
}

// I32CmpNe emits i32.ne.
func (m *MachineARM64) I32CmpNe(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS32, arm64.CondNE, locA, locB, ret)
}

// I32CmpEq emits i32.eq.
func (m *MachineARM64) I32CmpEq(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS32, arm64.CondEQ, locA, locB, ret)
}

// i64 comparisons.

// I64CmpGeS emits i64.ge_s.
func (m *MachineARM64) I64CmpGeS(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS64, arm64.CondGE, locA, locB, ret)
}

// I64CmpGtS emits i64.gt_s.
func (m *MachineARM64) I64CmpGtS(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS64, arm64.CondGT, locA, locB, ret)
}

// I64CmpLeS emits i64.le_s.
func (m *MachineARM64) I64CmpLeS(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS64, arm64.CondLE, locA, locB, ret)
}

// I64CmpLtS emits i64.lt_s.
func (m *MachineARM64) I64CmpLtS(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS64, arm64.CondLT, locA, locB, ret)
}

// I64CmpGeU emits i64.ge_u.
func (m *MachineARM64) I64CmpGeU(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS64, arm64.CondHS, locA, locB, ret)
}

// I64CmpGtU emits i64.gt_u.
func (m *MachineARM64) I64CmpGtU(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS64, arm64.CondHI, locA, locB, ret)
}

// I64CmpLeU emits i64.le_u.
func (m *MachineARM64) I64CmpLeU(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS64, arm64.CondLS, locA, locB, ret)
}

// I64CmpLtU emits i64.lt_u.
func (m *MachineARM64) I64CmpLtU(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS64, arm64.CondLO, locA, locB, ret)
}

// I64CmpNe emits i64.ne.
func (m *MachineARM64) I64CmpNe(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS64, arm64.CondNE, locA, locB, ret)
}

// I64CmpEq emits i64.eq.
func (m *MachineARM64) I64CmpEq(locA, locB, ret Location) {
	m.emitCmpopDynamicB(SizeS64, arm64.CondEQ, locA, locB, ret)
}

// Bit counting.

// I32Clz emits i32.clz.
func (m *MachineARM64) I32Clz(src, dst Location) {
	m.emitRelaxedBinop(m.emitClz, SizeS32, src, dst, true)
}

// I64Clz emits i64.clz.
func (m *MachineARM64) I64Clz(src, dst Location) {
	m.emitRelaxedBinop(m.emitClz, SizeS64, src, dst, true)
}

// emitCtz lowers ctz as rbit followed by clz of the reversed value.
func (m *MachineARM64) emitCtz(sz Size, src, dst Location) {
	var temps []asm.Register
	s := m.locationToReg(sz, src, &temps, ImmTypeNone, true, asm.NilRegister)
	dest := m.locationToReg(sz, dst, &temps, ImmTypeNone, false, asm.NilRegister)
	m.emitRbit(sz, s, dest)
	m.emitClz(sz, dest, dest)
	if dst != dest {
		m.MoveLocation(sz, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// I32Ctz emits i32.ctz.
func (m *MachineARM64) I32Ctz(src, dst Location) {
	m.emitCtz(SizeS32, src, dst)
}

// I64Ctz emits i64.ctz.
func (m *MachineARM64) I64Ctz(src, dst Location) {
	m.emitCtz(SizeS64, src, dst)
}

// emitPopcnt lowers popcnt without a GPR instruction for it: a clz loop that
// strips the leading zeros plus the leading one each round and counts rounds.
func (m *MachineARM64) emitPopcnt(sz Size, loc, ret Location) {
	var temps []asm.Register
	src := m.locationToReg(sz, loc, &temps, ImmTypeNone, true, asm.NilRegister)
	dest := m.locationToReg(sz, ret, &temps, ImmTypeNone, false, asm.NilRegister)
	if src == loc {
		// The loop destroys the source, so shift a scratch copy instead.
		tmp := m.AcquireTempGPR()
		temps = append(temps, tmp)
		m.emitMove(sz, src, LocGPR(tmp))
		src = LocGPR(tmp)
	}
	tmpReg := m.AcquireTempGPR()
	temps = append(temps, tmpReg)
	tmp := LocGPR(tmpReg)

	labelLoop := m.assembler.NewLabel()
	labelExit := m.assembler.NewLabel()
	m.emitMove(sz, LocGPR(arm64.RegRZR), dest)  // 0 => dest
	m.emitCbzLabel(sz, src, labelExit)          // src == 0, exit
	m.assembler.BindLabel(labelLoop)            // loop:
	m.emitAdd(sz, dest, LocImm8(1), dest)       // inc dest
	m.emitClz(sz, src, tmp)                     // clz src => tmp
	m.emitAdd(sz, tmp, LocImm8(1), tmp)         // inc tmp
	m.emitLsl(sz, src, tmp, src)                // src << tmp => src
	m.emitCbnzLabel(sz, src, labelLoop)         // if src != 0 goto loop
	m.assembler.BindLabel(labelExit)
	if ret != dest {
		m.MoveLocation(sz, dest, ret)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// I32Popcnt emits i32.popcnt.
func (m *MachineARM64) I32Popcnt(loc, ret Location) {
	m.emitPopcnt(SizeS32, loc, ret)
}

// I64Popcnt emits i64.popcnt.
func (m *MachineARM64) I64Popcnt(loc, ret Location) {
	m.emitPopcnt(SizeS64, loc, ret)
}

// Shifts and rotates.

// I32Shl emits i32.shl.
func (m *MachineARM64) I32Shl(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitLsl, SizeS32, locA, locB, ret, ImmTypeShift32No0)
}

// I32Shr emits i32.shr_u.
func (m *MachineARM64) I32Shr(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitLsr, SizeS32, locA, locB, ret, ImmTypeShift32No0)
}

// I32Sar emits i32.shr_s.
func (m *MachineARM64) I32Sar(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitAsr, SizeS32, locA, locB, ret, ImmTypeShift32No0)
}

// I32Ror emits i32.rotr.
func (m *MachineARM64) I32Ror(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitRor, SizeS32, locA, locB, ret, ImmTypeShift32No0)
}

// I32Rol emits i32.rotl. There is no native ROL: rotate right by the
// complement instead.
func (m *MachineARM64) I32Rol(locA, locB, ret Location) {
	var temps []asm.Register
	var src2 Location
	switch locB.kind {
	case locationKindImm8, locationKindImm32, locationKindImm64:
		src2 = LocImm8(uint8(32-(locB.ImmValue()&31)) & 63)
	default:
		tmp1 := m.locationToReg(SizeS32, LocImm32(32), &temps, ImmTypeNone, true, asm.NilRegister)
		tmp2 := m.locationToReg(SizeS32, locB, &temps, ImmTypeNone, true, asm.NilRegister)
		m.emitSub(SizeS32, tmp1, tmp2, tmp1)
		src2 = tmp1
	}
	m.emitRelaxedBinop3(m.emitRor, SizeS32, locA, src2, ret, ImmTypeShift32No0)
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// I64Shl emits i64.shl.
func (m *MachineARM64) I64Shl(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitLsl, SizeS64, locA, locB, ret, ImmTypeShift64No0)
}

// I64Shr emits i64.shr_u.
func (m *MachineARM64) I64Shr(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitLsr, SizeS64, locA, locB, ret, ImmTypeShift64No0)
}

// I64Sar emits i64.shr_s.
func (m *MachineARM64) I64Sar(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitAsr, SizeS64, locA, locB, ret, ImmTypeShift64No0)
}

// I64Ror emits i64.rotr.
func (m *MachineARM64) I64Ror(locA, locB, ret Location) {
	m.emitRelaxedBinop3(m.emitRor, SizeS64, locA, locB, ret, ImmTypeShift64No0)
}

// I64Rol emits i64.rotl by rotating right by the complement.
func (m *MachineARM64) I64Rol(locA, locB, ret Location) {
	var temps []asm.Register
	var src2 Location
	switch locB.kind {
	case locationKindImm8, locationKindImm32, locationKindImm64:
		src2 = LocImm8(uint8(64-(locB.ImmValue()&63)) & 127)
	default:
		tmp1 := m.locationToReg(SizeS64, LocImm32(64), &temps, ImmTypeNone, true, asm.NilRegister)
		tmp2 := m.locationToReg(SizeS64, locB, &temps, ImmTypeNone, true, asm.NilRegister)
		m.emitSub(SizeS64, tmp1, tmp2, tmp1)
		src2 = tmp1
	}
	m.emitRelaxedBinop3(m.emitRor, SizeS64, locA, src2, ret, ImmTypeShift64No0)
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}
