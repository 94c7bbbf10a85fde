package arm64

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/singlepass/internal/asm"
)

func newTestAssembler() *AssemblerImpl {
	return NewAssemblerImpl(RegR17)
}

// requireCode assembles and checks the emitted 32-bit words.
func requireCode(t *testing.T, a *AssemblerImpl, expected ...uint32) {
	t.Helper()
	code, err := a.Assemble()
	require.NoError(t, err)
	require.Equal(t, len(expected)*4, len(code))
	for i, want := range expected {
		have := binary.LittleEndian.Uint32(code[i*4:])
		require.Equal(t, want, have, "instruction %d: want %08x have %08x", i, want, have)
	}
}

func TestNodeImpl_String(t *testing.T) {
	tests := []struct {
		in  *nodeImpl
		exp string
	}{
		{
			in:  &nodeImpl{instruction: NOP, types: operandTypesNoneToNone},
			exp: "NOP",
		},
		{
			in:  &nodeImpl{instruction: BR, types: operandTypesNoneToRegister, dstReg: RegR1},
			exp: "BR R1",
		},
		{
			in:  &nodeImpl{instruction: BCONDNE, types: operandTypesNoneToBranch, jumpLabel: 3},
			exp: "BCONDNE {L3}",
		},
		{
			in:  &nodeImpl{instruction: CBZ, types: operandTypesCompareBranch, srcReg: RegR10, jumpLabel: 1},
			exp: "CBZ R10, {L1}",
		},
		{
			in:  &nodeImpl{instruction: ADD, types: operandTypesTwoRegistersToRegister, srcReg: RegR0, srcReg2: RegR8, dstReg: RegR10},
			exp: "ADD (R0, R8), R10",
		},
		{
			in:  &nodeImpl{instruction: CMPW, types: operandTypesTwoRegistersToNone, srcReg: RegR0, srcReg2: RegR8},
			exp: "CMPW (R0, R8)",
		},
		{
			in:  &nodeImpl{instruction: CMP, types: operandTypesRegisterAndConstToNone, srcReg: RegR0, srcConst: 0x123},
			exp: "CMP (R0, 0x123)",
		},
		{
			in:  &nodeImpl{instruction: MOVD, types: operandTypesRegisterToMemory, srcReg: RegR0, dstReg: RegR8, dstConst: 0x123},
			exp: "MOVD R0, [R8 + 0x123]",
		},
		{
			in:  &nodeImpl{instruction: MOVD, types: operandTypesMemoryToRegister, srcReg: RegR0, srcReg2: RegR6, dstReg: RegR8},
			exp: "MOVD [R0 + R6], R8",
		},
		{
			in:  &nodeImpl{instruction: MOVD, types: operandTypesConstToRegister, srcConst: 0x123, dstReg: RegR8},
			exp: "MOVD 0x123, R8",
		},
		{
			in:  &nodeImpl{instruction: STP, types: operandTypesTwoRegistersToMemoryPreIndexed, srcReg: RegR29, srcReg2: RegR30, dstReg: RegRZR, dstConst: 16},
			exp: "STP (R29, R30), [ZERO, -0x10]!",
		},
	}

	for _, tc := range tests {
		require.Equal(t, tc.exp, tc.in.String())
	}
}

func TestAssemblerImpl_CompileStandAlone(t *testing.T) {
	a := newTestAssembler()
	a.CompileStandAlone(NOP) // emits no bytes.
	a.CompileStandAlone(RET)
	a.CompileStandAlone(BRK)
	a.CompileStandAlone(DMB)
	requireCode(t, a,
		0xd65f03c0, // ret
		0xd4200000, // brk #0
		0xd5033bbf, // dmb ish
	)
}

func TestAssemblerImpl_CompileJumpToRegister(t *testing.T) {
	a := newTestAssembler()
	a.CompileJumpToRegister(BR, RegR1)
	a.CompileJumpToRegister(BLR, RegR1)
	a.CompileJumpToRegister(RET, RegR30)
	requireCode(t, a,
		0xd61f0020, // br x1
		0xd63f0020, // blr x1
		0xd65f03c0, // ret
	)
}

func TestAssemblerImpl_RelativeBranches(t *testing.T) {
	a := newTestAssembler()
	label := a.NewLabel()
	a.CompileBranchToLabel(B, label)
	a.CompileBranchToLabel(BCONDEQ, label)
	a.CompileCompareBranchToLabel(CBZ, RegR1, label)
	a.BindLabel(label)
	a.CompileStandAlone(RET)
	requireCode(t, a,
		0x14000003, // b #12
		0x54000040, // b.eq #8
		0xb4000021, // cbz x1, #4
		0xd65f03c0, // ret
	)
}

func TestAssemblerImpl_CompileBranchToLabel_BL(t *testing.T) {
	a := newTestAssembler()
	label := a.NewLabel()
	a.CompileBranchToLabel(BL, label)
	a.CompileStandAlone(RET)
	a.BindLabel(label)
	a.CompileStandAlone(RET)
	requireCode(t, a,
		0x94000002, // bl #8
		0xd65f03c0, // ret
		0xd65f03c0, // ret
	)
}

func TestAssemblerImpl_BranchToUnboundLabel(t *testing.T) {
	a := newTestAssembler()
	a.CompileBranchToLabel(B, a.NewLabel())
	_, err := a.Assemble()
	require.Error(t, err)
}

func TestAssemblerImpl_CompileCompareBranchToLabel_backward(t *testing.T) {
	a := newTestAssembler()
	label := a.NewLabel()
	a.BindLabel(label)
	a.CompileStandAlone(RET)
	a.CompileCompareBranchToLabel(CBNZW, RegR9, label)
	requireCode(t, a,
		0xd65f03c0, // ret
		0x35ffffe9, // cbnz w9, #-4
	)
}

func TestAssemblerImpl_CompileLoadLabelAddress(t *testing.T) {
	a := newTestAssembler()
	label := a.NewLabel()
	a.CompileLoadLabelAddress(RegR1, label)
	a.CompileStandAlone(RET)
	a.BindLabel(label)
	a.CompileStandAlone(RET)
	requireCode(t, a,
		0x10000041, // adr x1, #8
		0xd65f03c0, // ret
		0xd65f03c0, // ret
	)
}

func TestAssemblerImpl_CompileRegisterToRegister(t *testing.T) {
	tests := []struct {
		name     string
		inst     asm.Instruction
		src, dst asm.Register
		exp      uint32
	}{
		{name: "mov x2, x1", inst: MOVD, src: RegR1, dst: RegR2, exp: 0xaa0103e2},
		{name: "mov w2, w1", inst: MOVWU, src: RegR1, dst: RegR2, exp: 0x2a0103e2},
		{name: "clz w11, w9", inst: CLZW, src: RegR9, dst: RegR11, exp: 0x5ac0112b},
		{name: "clz x11, x9", inst: CLZ, src: RegR9, dst: RegR11, exp: 0xdac0112b},
		{name: "rbit w10, w9", inst: RBITW, src: RegR9, dst: RegR10, exp: 0x5ac0012a},
		{name: "sxtb w1, w2", inst: SXTBW, src: RegR2, dst: RegR1, exp: 0x13001c41},
		{name: "sxtw x1, w2", inst: SXTW, src: RegR2, dst: RegR1, exp: 0x93407c41},
		{name: "fmov d1, d2", inst: FMOVD, src: RegV2, dst: RegV1, exp: 0x1e604041},
		{name: "fmov d1, x2", inst: FMOVD, src: RegR2, dst: RegV1, exp: 0x9e670041},
		{name: "fmov x2, d1", inst: FMOVD, src: RegV1, dst: RegR2, exp: 0x9e660022},
		{name: "fneg d1, d2", inst: FNEGD, src: RegV2, dst: RegV1, exp: 0x1e614041},
		{name: "fsqrt s1, s2", inst: FSQRTS, src: RegV2, dst: RegV1, exp: 0x1e21c041},
		{name: "fcvt d1, s2", inst: FCVTSD, src: RegV2, dst: RegV1, exp: 0x1e22c041},
		{name: "fcvt s1, d2", inst: FCVTDS, src: RegV2, dst: RegV1, exp: 0x1e624041},
		{name: "scvtf d1, w2", inst: SCVTFWD, src: RegR2, dst: RegV1, exp: 0x1e620041},
		{name: "ucvtf s1, x2", inst: UCVTFS, src: RegR2, dst: RegV1, exp: 0x9e230041},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestAssembler()
			a.CompileRegisterToRegister(tc.inst, tc.src, tc.dst)
			requireCode(t, a, tc.exp)
		})
	}
}

func TestAssemblerImpl_CompileTwoRegistersToRegister(t *testing.T) {
	tests := []struct {
		name             string
		inst             asm.Instruction
		src1, src2, dst  asm.Register
		exp              uint32
	}{
		{name: "add w0, w19, w20", inst: ADDW, src1: RegR19, src2: RegR20, dst: RegR0, exp: 0x0b140260},
		{name: "add x1, x2, x3", inst: ADD, src1: RegR2, src2: RegR3, dst: RegR1, exp: 0x8b030041},
		{name: "add x8, sp, x9 (extended)", inst: ADD, src1: RegSP, src2: RegR9, dst: RegR8, exp: 0x8b2963e8},
		{name: "sub w1, w2, w3", inst: SUBW, src1: RegR2, src2: RegR3, dst: RegR1, exp: 0x4b030041},
		{name: "adds w8, w8, w7", inst: ADDSW, src1: RegR8, src2: RegR7, dst: RegR8, exp: 0x2b070108},
		{name: "and x1, x2, x3", inst: AND, src1: RegR2, src2: RegR3, dst: RegR1, exp: 0x8a030041},
		{name: "orr w1, w2, w3", inst: ORRW, src1: RegR2, src2: RegR3, dst: RegR1, exp: 0x2a030041},
		{name: "eor x1, x2, x3", inst: EOR, src1: RegR2, src2: RegR3, dst: RegR1, exp: 0xca030041},
		{name: "lsl w3, w1, w2", inst: LSLW, src1: RegR1, src2: RegR2, dst: RegR3, exp: 0x1ac22023},
		{name: "ror w11, w9, w8", inst: RORW, src1: RegR9, src2: RegR8, dst: RegR11, exp: 0x1ac82d2b},
		{name: "sdiv w11, w9, w10", inst: SDIVW, src1: RegR9, src2: RegR10, dst: RegR11, exp: 0x1aca0d2b},
		{name: "udiv x1, x2, x3", inst: UDIV, src1: RegR2, src2: RegR3, dst: RegR1, exp: 0x9ac30841},
		{name: "mul w1, w2, w3", inst: MULW, src1: RegR2, src2: RegR3, dst: RegR1, exp: 0x1b037c41},
		{name: "fadd d1, d2, d3", inst: FADDD, src1: RegV2, src2: RegV3, dst: RegV1, exp: 0x1e632841},
		{name: "fsub s1, s2, s3", inst: FSUBS, src1: RegV2, src2: RegV3, dst: RegV1, exp: 0x1e233841},
		{name: "fmin d1, d2, d3", inst: FMIND, src1: RegV2, src2: RegV3, dst: RegV1, exp: 0x1e635841},
		{name: "fmax s1, s2, s3", inst: FMAXS, src1: RegV2, src2: RegV3, dst: RegV1, exp: 0x1e234841},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestAssembler()
			a.CompileTwoRegistersToRegister(tc.inst, tc.src1, tc.src2, tc.dst)
			requireCode(t, a, tc.exp)
		})
	}
}

func TestAssemblerImpl_CompileThreeRegistersToRegister(t *testing.T) {
	a := newTestAssembler()
	// msub w3, w0, w1, w2 == w3 = w2 - w0*w1
	a.CompileThreeRegistersToRegister(MSUBW, RegR0, RegR1, RegR2, RegR3)
	requireCode(t, a, 0x1b018803)
}

func TestAssemblerImpl_CompileTwoRegistersToNone(t *testing.T) {
	tests := []struct {
		name       string
		inst       asm.Instruction
		src1, src2 asm.Register
		exp        uint32
	}{
		{name: "cmp x8, x6", inst: CMP, src1: RegR8, src2: RegR6, exp: 0xeb06011f},
		{name: "cmp w9, w8", inst: CMPW, src1: RegR9, src2: RegR8, exp: 0x6b08013f},
		{name: "tst w10, w11", inst: TSTW, src1: RegR10, src2: RegR11, exp: 0x6a0b015f},
		{name: "fcmp d1, d2", inst: FCMPD, src1: RegV1, src2: RegV2, exp: 0x1e622020},
		{name: "fcmp s1, s2", inst: FCMPS, src1: RegV1, src2: RegV2, exp: 0x1e222020},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestAssembler()
			a.CompileTwoRegistersToNone(tc.inst, tc.src1, tc.src2)
			requireCode(t, a, tc.exp)
		})
	}
}

func TestAssemblerImpl_CompileRegisterAndConstToNone(t *testing.T) {
	a := newTestAssembler()
	a.CompileRegisterAndConstToNone(CMPW, RegR10, 4095)
	requireCode(t, a, 0x713ffd5f) // cmp w10, #4095

	a = newTestAssembler()
	a.CompileRegisterAndConstToNone(CMPW, RegR10, 4096)
	_, err := a.Assemble()
	require.Error(t, err)

	a = newTestAssembler()
	a.CompileRegisterAndConstToNone(TST, RegR8, 3)
	requireCode(t, a, 0xf240051f) // tst x8, #3
}

func TestAssemblerImpl_CompileConstAndRegisterToRegister(t *testing.T) {
	tests := []struct {
		name     string
		inst     asm.Instruction
		value    asm.ConstantValue
		src, dst asm.Register
		exp      uint32
	}{
		{name: "add x1, x2, #16", inst: ADD, value: 16, src: RegR2, dst: RegR1, exp: 0x91004041},
		{name: "add x29, sp, #0", inst: ADD, value: 0, src: RegSP, dst: RegR29, exp: 0x910003fd},
		{name: "sub sp, sp, #16", inst: SUB, value: 16, src: RegSP, dst: RegSP, exp: 0xd10043ff},
		{name: "adds w8, w8, #16", inst: ADDSW, value: 16, src: RegR8, dst: RegR8, exp: 0x31004108},
		{name: "and w0, w1, #1", inst: ANDW, value: 1, src: RegR1, dst: RegR0, exp: 0x12000020},
		{name: "lsr w2, w1, #3", inst: LSRW, value: 3, src: RegR1, dst: RegR2, exp: 0x53037c22},
		{name: "lsl w2, w1, #4", inst: LSLW, value: 4, src: RegR1, dst: RegR2, exp: 0x531c6c22},
		{name: "asr w2, w1, #5", inst: ASRW, value: 5, src: RegR1, dst: RegR2, exp: 0x13057c22},
		{name: "ror w2, w1, #31", inst: RORW, value: 31, src: RegR1, dst: RegR2, exp: 0x13817c22},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestAssembler()
			a.CompileConstAndRegisterToRegister(tc.inst, tc.value, tc.src, tc.dst)
			requireCode(t, a, tc.exp)
		})
	}
}

func TestAssemblerImpl_CompileConstShiftedToRegister(t *testing.T) {
	a := newTestAssembler()
	a.CompileConstShiftedToRegister(MOVK, 0, 0, RegR27)
	a.CompileConstShiftedToRegister(MOVK, 0, 16, RegR27)
	a.CompileConstShiftedToRegister(MOVK, 0, 32, RegR27)
	a.CompileConstShiftedToRegister(MOVK, 0, 48, RegR27)
	requireCode(t, a,
		0xf280001b, // movk x27, #0
		0xf2a0001b, // movk x27, #0, lsl #16
		0xf2c0001b, // movk x27, #0, lsl #32
		0xf2e0001b, // movk x27, #0, lsl #48
	)
}

func TestAssemblerImpl_CompileConditionalRegisterSet(t *testing.T) {
	a := newTestAssembler()
	a.CompileConditionalRegisterSet(CondEQ, RegR11)
	requireCode(t, a, 0x9a9f17eb) // cset x11, eq
}

func TestAssemblerImpl_LoadsAndStores(t *testing.T) {
	tests := []struct {
		name string
		emit func(a *AssemblerImpl)
		exp  uint32
	}{
		{
			name: "ldr w0, [x1, #16]",
			emit: func(a *AssemblerImpl) { a.CompileMemoryToRegister(MOVWU, RegR1, 16, RegR0) },
			exp:  0xb9401020,
		},
		{
			name: "ldr x7, [x28, #0x30]",
			emit: func(a *AssemblerImpl) { a.CompileMemoryToRegister(MOVD, RegR28, 0x30, RegR7) },
			exp:  0xf9401b87,
		},
		{
			name: "ldrsw x0, [x1, #4]",
			emit: func(a *AssemblerImpl) { a.CompileMemoryToRegister(MOVW, RegR1, 4, RegR0) },
			exp:  0xb9800420,
		},
		{
			name: "ldrsb x0, [x1]",
			emit: func(a *AssemblerImpl) { a.CompileMemoryToRegister(MOVB, RegR1, 0, RegR0) },
			exp:  0x39800020,
		},
		{
			name: "ldrsb w0, [x1]",
			emit: func(a *AssemblerImpl) { a.CompileMemoryToRegister(MOVBW, RegR1, 0, RegR0) },
			exp:  0x39c00020,
		},
		{
			name: "str x19, [sp, #8]",
			emit: func(a *AssemblerImpl) { a.CompileRegisterToMemory(MOVD, RegR19, RegSP, 8) },
			exp:  0xf90007f3,
		},
		{
			name: "ldr w0, [x1, x2]",
			emit: func(a *AssemblerImpl) { a.CompileMemoryWithRegisterOffsetToRegister(MOVWU, RegR1, RegR2, RegR0) },
			exp:  0xb8626820,
		},
		{
			name: "stur x19, [sp, #8]",
			emit: func(a *AssemblerImpl) { a.CompileRegisterToMemoryUnscaled(MOVD, RegR19, RegSP, 8) },
			exp:  0xf80083f3,
		},
		{
			name: "ldur x1, [sp, #8]",
			emit: func(a *AssemblerImpl) { a.CompileMemoryToRegisterUnscaled(MOVD, RegSP, 8, RegR1) },
			exp:  0xf84083e1,
		},
		{
			name: "ldur x1, [sp, #-8]",
			emit: func(a *AssemblerImpl) { a.CompileMemoryToRegisterUnscaled(MOVD, RegSP, -8, RegR1) },
			exp:  0xf85f83e1,
		},
		{
			name: "str x1, [x2], #8",
			emit: func(a *AssemblerImpl) { a.CompileRegisterToMemoryPostIndexed(MOVD, RegR1, RegR2, 8) },
			exp:  0xf8008441,
		},
		{
			name: "stp x29, x30, [sp, #-16]!",
			emit: func(a *AssemblerImpl) { a.CompileTwoRegistersToMemoryPreIndexed(STP, RegR29, RegR30, RegSP, 16) },
			exp:  0xa9bf7bfd,
		},
		{
			name: "ldp x29, x30, [sp], #16",
			emit: func(a *AssemblerImpl) { a.CompileMemoryToTwoRegistersPostIndexed(LDP, RegSP, 16, RegR29, RegR30) },
			exp:  0xa8c17bfd,
		},
		{
			name: "ldr d1, [x2, #8]",
			emit: func(a *AssemblerImpl) { a.CompileMemoryToRegister(FMOVD, RegR2, 8, RegV1) },
			exp:  0xfd400441,
		},
		{
			name: "str s1, [x2, #4]",
			emit: func(a *AssemblerImpl) { a.CompileRegisterToMemory(FMOVS, RegV1, RegR2, 4) },
			exp:  0xbd000441,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestAssembler()
			tc.emit(a)
			requireCode(t, a, tc.exp)
		})
	}
}

func TestAssemblerImpl_CompileConstToRegister(t *testing.T) {
	tests := []struct {
		name  string
		inst  asm.Instruction
		value asm.ConstantValue
		dst   asm.Register
		exp   []uint32
	}{
		{name: "movz x8, #32", inst: MOVD, value: 32, dst: RegR8, exp: []uint32{0xd2800408}},
		{name: "mov x1, #0x12345678", inst: MOVD, value: 0x12345678, dst: RegR1,
			exp: []uint32{0xd28acf01 /* movz x1, #0x5678 */, 0xf2a24681 /* movk x1, #0x1234, lsl #16 */}},
		{name: "movz x8, #0x8000, lsl #16", inst: MOVD, value: 0x80000000, dst: RegR8, exp: []uint32{0xd2b00008}},
		{name: "movn x8, #0 (mov x8, #-1)", inst: MOVD, value: -1, dst: RegR8, exp: []uint32{0x92800008}},
		{name: "mov x1, xzr (zero)", inst: MOVD, value: 0, dst: RegR1, exp: []uint32{0xaa1f03e1}},
		{name: "add x1, x1, #4", inst: ADD, value: 4, dst: RegR1, exp: []uint32{0x91001021}},
		{name: "sub x1, x1, #16", inst: SUB, value: 16, dst: RegR1, exp: []uint32{0xd1004021}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestAssembler()
			a.CompileConstToRegister(tc.inst, tc.value, tc.dst)
			requireCode(t, a, tc.exp...)
		})
	}
}

func TestAssemblerImpl_largeOffsetUsesConstPool(t *testing.T) {
	a := newTestAssembler()
	a.CompileMemoryToRegister(MOVD, RegR0, 0x10000008, RegR1)
	code, err := a.Assemble()
	require.NoError(t, err)
	// ldr (literal) + ldr (register offset) + branch over pool + the constant.
	require.Equal(t, 16, len(code))
	require.Equal(t, uint32(0x10000008), binary.LittleEndian.Uint32(code[12:]))
}

func TestAssemblerImpl_Offset(t *testing.T) {
	a := newTestAssembler()
	require.Equal(t, asm.NodeOffsetInBinary(0), a.Offset())
	a.CompileStandAlone(RET)
	require.Equal(t, asm.NodeOffsetInBinary(4), a.Offset())
	a.CompileStandAlone(NOP) // no bytes.
	require.Equal(t, asm.NodeOffsetInBinary(4), a.Offset())
}

func TestAssemblerImpl_BindLabelTwice(t *testing.T) {
	a := newTestAssembler()
	label := a.NewLabel()
	a.BindLabel(label)
	a.BindLabel(label)
	_, err := a.Assemble()
	require.Error(t, err)
}

func Test_isBitMaskImmediate(t *testing.T) {
	for _, v := range []uint64{0, 0xffff_ffff_ffff_ffff} {
		require.False(t, isBitMaskImmediate(v))
	}
	for _, v := range []uint64{1, 3, 0xff, 0xff00, 0x0f0f0f0f0f0f0f0f, 0xfffffffffffffffe} {
		require.True(t, isBitMaskImmediate(v), "0x%x", v)
	}
	require.False(t, isBitMaskImmediate(0x12345678))
	require.True(t, IsBitMaskImmediate32(0x80000000))
	require.True(t, IsBitMaskImmediate32(0x7fffffff))
	require.False(t, IsBitMaskImmediate32(0))
	require.True(t, IsBitMaskImmediate64(0x8000000000000000))
	require.True(t, IsBitMaskImmediate64(0x7fffffffffffffff))
}

func Test_const16bitAligned(t *testing.T) {
	require.Equal(t, 0, const16bitAligned(0xffff))
	require.Equal(t, 1, const16bitAligned(0x8000_0000))
	require.Equal(t, 3, const16bitAligned(0x1_0000_0000_0000))
	require.Equal(t, -1, const16bitAligned(0x1_0001))
}
