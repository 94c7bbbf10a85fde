package compiler

import (
	"github.com/tetratelabs/singlepass/internal/asm"
	"github.com/tetratelabs/singlepass/internal/asm/arm64"
)

// Integer <-> float conversions. Only the int-to-float direction is
// implemented on this target; the truncating float-to-int direction is left
// to the runtime's generic path.

// ConvertF64I64 emits i64 -> f64 conversion (f64.convert_i64_s/u).
func (m *MachineARM64) ConvertF64I64(loc Location, signed bool, ret Location) {
	var gprs, neons []asm.Register
	src := m.locationToReg(SizeS64, loc, &gprs, ImmTypeNoneXzr, true, asm.NilRegister)
	dest := m.locationToNEON(SizeS64, ret, &neons, ImmTypeNone, false)
	if signed {
		m.emitScvtf(SizeS64, src, SizeS64, dest)
	} else {
		m.emitUcvtf(SizeS64, src, SizeS64, dest)
	}
	if ret != dest {
		m.MoveLocation(SizeS64, dest, ret)
	}
	for _, r := range gprs {
		m.ReleaseGPR(r)
	}
	for _, r := range neons {
		m.ReleaseSIMD(r)
	}
}

// ConvertF64I32 emits i32 -> f64 conversion (f64.convert_i32_s/u).
func (m *MachineARM64) ConvertF64I32(loc Location, signed bool, ret Location) {
	var gprs, neons []asm.Register
	src := m.locationToReg(SizeS32, loc, &gprs, ImmTypeNoneXzr, true, asm.NilRegister)
	dest := m.locationToNEON(SizeS64, ret, &neons, ImmTypeNone, false)
	if signed {
		m.emitScvtf(SizeS32, src, SizeS64, dest)
	} else {
		m.emitUcvtf(SizeS32, src, SizeS64, dest)
	}
	if ret != dest {
		m.MoveLocation(SizeS64, dest, ret)
	}
	for _, r := range gprs {
		m.ReleaseGPR(r)
	}
	for _, r := range neons {
		m.ReleaseSIMD(r)
	}
}

// ConvertF32I64 emits i64 -> f32 conversion (f32.convert_i64_s/u).
func (m *MachineARM64) ConvertF32I64(loc Location, signed bool, ret Location) {
	var gprs, neons []asm.Register
	src := m.locationToReg(SizeS64, loc, &gprs, ImmTypeNoneXzr, true, asm.NilRegister)
	dest := m.locationToNEON(SizeS32, ret, &neons, ImmTypeNone, false)
	if signed {
		m.emitScvtf(SizeS64, src, SizeS32, dest)
	} else {
		m.emitUcvtf(SizeS64, src, SizeS32, dest)
	}
	if ret != dest {
		m.MoveLocation(SizeS32, dest, ret)
	}
	for _, r := range gprs {
		m.ReleaseGPR(r)
	}
	for _, r := range neons {
		m.ReleaseSIMD(r)
	}
}

// ConvertF32I32 emits i32 -> f32 conversion (f32.convert_i32_s/u).
func (m *MachineARM64) ConvertF32I32(loc Location, signed bool, ret Location) {
	var gprs, neons []asm.Register
	src := m.locationToReg(SizeS32, loc, &gprs, ImmTypeNoneXzr, true, asm.NilRegister)
	dest := m.locationToNEON(SizeS32, ret, &neons, ImmTypeNone, false)
	if signed {
		m.emitScvtf(SizeS32, src, SizeS32, dest)
	} else {
		m.emitUcvtf(SizeS32, src, SizeS32, dest)
	}
	if ret != dest {
		m.MoveLocation(SizeS32, dest, ret)
	}
	for _, r := range gprs {
		m.ReleaseGPR(r)
	}
	for _, r := range neons {
		m.ReleaseSIMD(r)
	}
}

// ConvertI64F64 is not available on this target.
func (m *MachineARM64) ConvertI64F64(Location, Location, bool, bool) {
	unimplemented("convert_i64_f64")
}

// ConvertI32F64 is not available on this target.
func (m *MachineARM64) ConvertI32F64(Location, Location, bool, bool) {
	unimplemented("convert_i32_f64")
}

// ConvertI64F32 is not available on this target.
func (m *MachineARM64) ConvertI64F32(Location, Location, bool, bool) {
	unimplemented("convert_i64_f32")
}

// ConvertI32F32 is not available on this target.
func (m *MachineARM64) ConvertI32F32(Location, Location, bool, bool) {
	unimplemented("convert_i32_f32")
}

// ConvertF64F32 emits f32.demote_f64.
func (m *MachineARM64) ConvertF64F32(loc, ret Location) {
	m.emitRelaxedBinopNEON(m.emitFcvt, SizeS32, loc, ret, true)
}

// ConvertF32F64 emits f64.promote_f32.
func (m *MachineARM64) ConvertF32F64(loc, ret Location) {
	m.emitRelaxedBinopNEON(m.emitFcvt, SizeS64, loc, ret, true)
}

// f64 unary.

// F64Neg emits f64.neg.
func (m *MachineARM64) F64Neg(loc, ret Location) {
	m.emitRelaxedBinopNEON(m.emitFneg, SizeS64, loc, ret, true)
}

// F64Abs emits f64.abs by masking the sign bit in a GPR.
func (m *MachineARM64) F64Abs(loc, ret Location) {
	tmp := m.AcquireTempGPR()

	m.MoveLocation(SizeS64, loc, LocGPR(tmp))
	m.emitAnd(SizeS64, LocGPR(tmp), LocImm64(0x7fffffffffffffff), LocGPR(tmp))
	m.MoveLocation(SizeS64, LocGPR(tmp), ret)

	m.ReleaseGPR(tmp)
}

// EmitI64CopySign combines the magnitude in tmp1 with the sign in tmp2
// (f64.copysign over GPR-held bit patterns).
func (m *MachineARM64) EmitI64CopySign(tmp1, tmp2 asm.Register) {
	m.emitAnd(SizeS64, LocGPR(tmp1), LocImm64(0x7fffffffffffffff), LocGPR(tmp1))
	m.emitAnd(SizeS64, LocGPR(tmp2), LocImm64(0x8000000000000000), LocGPR(tmp2))
	m.emitOr(SizeS64, LocGPR(tmp1), LocGPR(tmp2), LocGPR(tmp1))
}

// F64Sqrt emits f64.sqrt.
func (m *MachineARM64) F64Sqrt(loc, ret Location) {
	m.emitRelaxedBinopNEON(m.emitFsqrt, SizeS64, loc, ret, true)
}

// F64Trunc is not available on this target.
func (m *MachineARM64) F64Trunc(Location, Location) { unimplemented("f64_trunc") }

// F64Ceil is not available on this target.
func (m *MachineARM64) F64Ceil(Location, Location) { unimplemented("f64_ceil") }

// F64Floor is not available on this target.
func (m *MachineARM64) F64Floor(Location, Location) { unimplemented("f64_floor") }

// F64Nearest is not available on this target.
func (m *MachineARM64) F64Nearest(Location, Location) { unimplemented("f64_nearest") }

// emitFcmpop emits fcmp on (left, right) followed by cset cond into ret.
// The conditions chosen by the callers yield false on NaN operands, except
// for ne, which yields true; both match the Wasm comparison semantics.
func (m *MachineARM64) emitFcmpop(sz Size, cond asm.ConditionalRegisterState, left, right, ret Location) {
	var temps []asm.Register
	dest := m.locationToReg(sz, ret, &temps, ImmTypeNone, false, asm.NilRegister)
	m.emitRelaxedBinopNEON(m.emitFcmp, sz, left, right, false)
	m.emitCset(SizeS32, dest, cond)
	if ret != dest {
		m.MoveLocation(SizeS32, dest, ret)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// f64 comparisons.

// F64CmpGe emits f64.ge: ls on fcmp(b, a).
func (m *MachineARM64) F64CmpGe(locA, locB, ret Location) {
	m.emitFcmpop(SizeS64, arm64.CondLS, locB, locA, ret)
}

// F64CmpGt emits f64.gt: lo on fcmp(b, a).
func (m *MachineARM64) F64CmpGt(locA, locB, ret Location) {
	m.emitFcmpop(SizeS64, arm64.CondLO, locB, locA, ret)
}

// F64CmpLe emits f64.le: ls on fcmp(a, b).
func (m *MachineARM64) F64CmpLe(locA, locB, ret Location) {
	m.emitFcmpop(SizeS64, arm64.CondLS, locA, locB, ret)
}

// F64CmpLt emits f64.lt: lo on fcmp(a, b).
func (m *MachineARM64) F64CmpLt(locA, locB, ret Location) {
	m.emitFcmpop(SizeS64, arm64.CondLO, locA, locB, ret)
}

// F64CmpNe emits f64.ne.
func (m *MachineARM64) F64CmpNe(locA, locB, ret Location) {
	m.emitFcmpop(SizeS64, arm64.CondNE, locA, locB, ret)
}

// F64CmpEq emits f64.eq.
func (m *MachineARM64) F64CmpEq(locA, locB, ret Location) {
	m.emitFcmpop(SizeS64, arm64.CondEQ, locA, locB, ret)
}

// f64 binary.

// F64Min emits f64.min; fmin propagates NaNs the way Wasm wants.
func (m *MachineARM64) F64Min(locA, locB, ret Location) {
	m.emitRelaxedBinop3NEON(m.emitFMin, SizeS64, locA, locB, ret, ImmTypeNone)
}

// F64Max emits f64.max.
func (m *MachineARM64) F64Max(locA, locB, ret Location) {
	m.emitRelaxedBinop3NEON(m.emitFMax, SizeS64, locA, locB, ret, ImmTypeNone)
}

// F64Add emits f64.add.
func (m *MachineARM64) F64Add(locA, locB, ret Location) {
	m.emitRelaxedBinop3NEON(m.emitFAdd, SizeS64, locA, locB, ret, ImmTypeNone)
}

// F64Sub emits f64.sub.
func (m *MachineARM64) F64Sub(locA, locB, ret Location) {
	m.emitRelaxedBinop3NEON(m.emitFSub, SizeS64, locA, locB, ret, ImmTypeNone)
}

// F64Mul emits f64.mul.
func (m *MachineARM64) F64Mul(locA, locB, ret Location) {
	m.emitRelaxedBinop3NEON(m.emitFMul, SizeS64, locA, locB, ret, ImmTypeNone)
}

// F64Div emits f64.div.
func (m *MachineARM64) F64Div(locA, locB, ret Location) {
	m.emitRelaxedBinop3NEON(m.emitFDiv, SizeS64, locA, locB, ret, ImmTypeNone)
}

// f32 unary.

// F32Neg emits f32.neg.
func (m *MachineARM64) F32Neg(loc, ret Location) {
	m.emitRelaxedBinopNEON(m.emitFneg, SizeS32, loc, ret, true)
}

// F32Abs emits f32.abs by masking the sign bit in a GPR.
func (m *MachineARM64) F32Abs(loc, ret Location) {
	tmp := m.AcquireTempGPR()

	m.MoveLocation(SizeS32, loc, LocGPR(tmp))
	m.emitAnd(SizeS32, LocGPR(tmp), LocImm32(0x7fffffff), LocGPR(tmp))
	m.MoveLocation(SizeS32, LocGPR(tmp), ret)

	m.ReleaseGPR(tmp)
}

// EmitI32CopySign combines the magnitude in tmp1 with the sign in tmp2
// (f32.copysign over GPR-held bit patterns).
func (m *MachineARM64) EmitI32CopySign(tmp1, tmp2 asm.Register) {
	m.emitAnd(SizeS32, LocGPR(tmp1), LocImm32(0x7fffffff), LocGPR(tmp1))
	m.emitAnd(SizeS32, LocGPR(tmp2), LocImm32(0x80000000), LocGPR(tmp2))
	m.emitOr(SizeS32, LocGPR(tmp1), LocGPR(tmp2), LocGPR(tmp1))
}

// F32Sqrt emits f32.sqrt.
func (m *MachineARM64) F32Sqrt(loc, ret Location) {
	m.emitRelaxedBinopNEON(m.emitFsqrt, SizeS32, loc, ret, true)
}

// F32Trunc is not available on this target.
func (m *MachineARM64) F32Trunc(Location, Location) { unimplemented("f32_trunc") }

// F32Ceil is not available on this target.
func (m *MachineARM64) F32Ceil(Location, Location) { unimplemented("f32_ceil") }

// F32Floor is not available on this target.
func (m *MachineARM64) F32Floor(Location, Location) { unimplemented("f32_floor") }

// F32Nearest is not available on this target.
func (m *MachineARM64) F32Nearest(Location, Location) { unimplemented("f32_nearest") }

// f32 comparisons.

// F32CmpGe emits f32.ge.
func (m *MachineARM64) F32CmpGe(locA, locB, ret Location) {
	m.emitFcmpop(SizeS32, arm64.CondLS, locB, locA, ret)
}

// F32CmpGt emits f32.gt.
func (m *MachineARM64) F32CmpGt(locA, locB, ret Location) {
	m.emitFcmpop(SizeS32, arm64.CondLO, locB, locA, ret)
}

// F32CmpLe emits f32.le.
func (m *MachineARM64) F32CmpLe(locA, locB, ret Location) {
	m.emitFcmpop(SizeS32, arm64.CondLS, locA, locB, ret)
}

// F32CmpLt emits f32.lt.
func (m *MachineARM64) F32CmpLt(locA, locB, ret Location) {
	m.emitFcmpop(SizeS32, arm64.CondLO, locA, locB, ret)
}

// F32CmpNe emits f32.ne.
func (m *MachineARM64) F32CmpNe(locA, locB, ret Location) {
	m.emitFcmpop(SizeS32, arm64.CondNE, locA, locB, ret)
}

// F32CmpEq emits f32.eq.
func (m *MachineARM64) F32CmpEq(locA, locB, ret Location) {
	m.emitFcmpop(SizeS32, arm64.CondEQ, locA, locB, ret)
}

// f32 binary.

// F32Min emits f32.min.
func (m *MachineARM64) F32Min(locA, locB, ret Location) {
	m.emitRelaxedBinop3NEON(m.emitFMin, SizeS32, locA, locB, ret, ImmTypeNone)
}

// F32Max emits f32.max.
func (m *MachineARM64) F32Max(locA, locB, ret Location) {
	m.emitRelaxedBinop3NEON(m.emitFMax, SizeS32, locA, locB, ret, ImmTypeNone)
}

// F32Add emits f32.add.
func (m *MachineARM64) F32Add(locA, locB, ret Location) {
	m.emitRelaxedBinop3NEON(m.emitFAdd, SizeS32, locA, locB, ret, ImmTypeNone)
}

// F32Sub emits f32.sub.
func (m *MachineARM64) F32Sub(locA, locB, ret Location) {
	m.emitRelaxedBinop3NEON(m.emitFSub, SizeS32, locA, locB, ret, ImmTypeNone)
}

// F32Mul emits f32.mul.
func (m *MachineARM64) F32Mul(locA, locB, ret Location) {
	m.emitRelaxedBinop3NEON(m.emitFMul, SizeS32, locA, locB, ret, ImmTypeNone)
}

// F32Div emits f32.div.
func (m *MachineARM64) F32Div(locA, locB, ret Location) {
	m.emitRelaxedBinop3NEON(m.emitFDiv, SizeS32, locA, locB, ret, ImmTypeNone)
}
