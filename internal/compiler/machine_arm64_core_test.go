package compiler

import (
	"encoding/binary"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/singlepass/internal/asm"
	"github.com/tetratelabs/singlepass/internal/asm/arm64"
	"github.com/tetratelabs/singlepass/internal/wasm"
)

// requireEmitted finalizes the machine and checks the emitted 32-bit words.
func requireEmitted(t *testing.T, m *MachineARM64, expected ...uint32) []byte {
	t.Helper()
	code, err := m.Finalize()
	require.NoError(t, err)
	require.Equal(t, len(expected)*4, len(code))
	for i, want := range expected {
		have := binary.LittleEndian.Uint32(code[i*4:])
		require.Equal(t, want, have, "instruction %d: want %08x have %08x", i, want, have)
	}
	return code
}

func TestMachineARM64_compatibleImm(t *testing.T) {
	m := NewMachineARM64()
	tests := []struct {
		imm int64
		ty  ImmType
		exp bool
	}{
		{imm: 0, ty: ImmTypeNone, exp: false},
		{imm: 0, ty: ImmTypeNoneXzr, exp: false},
		{imm: 255, ty: ImmTypeBits8, exp: true},
		{imm: 256, ty: ImmTypeBits8, exp: false},
		{imm: 4095, ty: ImmTypeBits12, exp: true},
		{imm: 4096, ty: ImmTypeBits12, exp: false},
		{imm: -1, ty: ImmTypeBits12, exp: false},
		{imm: 0, ty: ImmTypeShift32, exp: true},
		{imm: 0, ty: ImmTypeShift32No0, exp: false},
		{imm: 31, ty: ImmTypeShift32No0, exp: true},
		{imm: 32, ty: ImmTypeShift32No0, exp: false},
		{imm: 63, ty: ImmTypeShift64No0, exp: true},
		{imm: 64, ty: ImmTypeShift64No0, exp: false},
		{imm: 1, ty: ImmTypeLogical32, exp: true},
		{imm: 0, ty: ImmTypeLogical32, exp: false},
		{imm: 0x12345678, ty: ImmTypeLogical32, exp: false},
		{imm: 0x7fffffff, ty: ImmTypeLogical32, exp: true},
		{imm: 0xff00ff00, ty: ImmTypeLogical32, exp: true},
		{imm: 0x0f0f0f0f0f0f0f0f, ty: ImmTypeLogical64, exp: true},
		{imm: 255, ty: ImmTypeUnscaledOffset, exp: true},
		{imm: 256, ty: ImmTypeUnscaledOffset, exp: false},
		{imm: -255, ty: ImmTypeUnscaledOffset, exp: true},
		{imm: -256, ty: ImmTypeUnscaledOffset, exp: false},
		{imm: 4095, ty: ImmTypeOffsetByte, exp: true},
		{imm: 4096, ty: ImmTypeOffsetByte, exp: false},
		{imm: 2, ty: ImmTypeOffsetHWord, exp: true},
		{imm: 1, ty: ImmTypeOffsetHWord, exp: false},
		{imm: 8188, ty: ImmTypeOffsetWord, exp: true},
		{imm: 16384, ty: ImmTypeOffsetWord, exp: false},
		{imm: 8, ty: ImmTypeOffsetDWord, exp: true},
		{imm: 7, ty: ImmTypeOffsetDWord, exp: false},
		{imm: 32760, ty: ImmTypeOffsetDWord, exp: true},
		{imm: 32768, ty: ImmTypeOffsetDWord, exp: false},
	}
	for _, tc := range tests {
		require.Equal(t, tc.exp, m.compatibleImm(tc.imm, tc.ty), "imm=%d ty=%d", tc.imm, tc.ty)
	}
}

func TestMachineARM64_registerPool(t *testing.T) {
	m := NewMachineARM64()

	r, ok := m.PickGPR()
	require.True(t, ok)
	require.Equal(t, arm64.RegR9, r)

	tmp, ok := m.PickTempGPR()
	require.True(t, ok)
	require.Equal(t, arm64.RegR8, tmp)

	acquired := m.AcquireTempGPR()
	require.Equal(t, arm64.RegR8, acquired)
	// The next pick skips the acquired one.
	tmp, ok = m.PickTempGPR()
	require.True(t, ok)
	require.Equal(t, arm64.RegR7, tmp)

	m.ReleaseGPR(acquired)
	require.Empty(t, m.usedGPRs)

	// Releasing an unused register is a bug.
	require.Panics(t, func() { m.ReleaseGPR(arm64.RegR8) })

	// Reserving pins without picking.
	m.ReserveGPR(arm64.RegR19)
	require.Equal(t, []asm.Register{arm64.RegR19}, m.GetUsedGPRs())
	require.Panics(t, func() { m.ReserveUnusedTempGPR(arm64.RegR19) })
	m.ReleaseGPR(arm64.RegR19)

	// Exhaustion of the temp pool is fatal.
	for range arm64TempGPRs {
		m.AcquireTempGPR()
	}
	require.Panics(t, func() { m.AcquireTempGPR() })
}

func TestMachineARM64_registerPool_simd(t *testing.T) {
	m := NewMachineARM64()

	v, ok := m.PickSIMD()
	require.True(t, ok)
	require.Equal(t, arm64.RegV8, v)

	tmp := m.AcquireTempSIMD()
	require.Equal(t, arm64.RegV0, tmp)
	m.ReleaseSIMD(tmp)
	require.Empty(t, m.usedSIMD)
	require.Panics(t, func() { m.ReleaseSIMD(arm64.RegV0) })
}

func TestMachineARM64_locationToReg(t *testing.T) {
	m := NewMachineARM64()
	var temps []asm.Register

	// A register passes through untouched.
	loc := m.locationToReg(SizeS64, LocGPR(arm64.RegR9), &temps, ImmTypeNone, true, asm.NilRegister)
	require.Equal(t, LocGPR(arm64.RegR9), loc)
	require.Empty(t, temps)

	// A compatible immediate stays an immediate.
	loc = m.locationToReg(SizeS32, LocImm32(42), &temps, ImmTypeBits12, true, asm.NilRegister)
	require.Equal(t, LocImm32(42), loc)
	require.Empty(t, temps)

	// A zero under NoneXzr is routed to the zero register.
	loc = m.locationToReg(SizeS64, LocImm64(0), &temps, ImmTypeNoneXzr, true, asm.NilRegister)
	require.Equal(t, LocGPR(arm64.RegRZR), loc)
	require.Empty(t, temps)

	// An incompatible immediate is materialised into a temporary which stays
	// pinned until released, so re-legalising lands in the next slot.
	loc = m.locationToReg(SizeS64, LocImm64(0x12345678), &temps, ImmTypeNone, true, asm.NilRegister)
	require.Equal(t, LocGPR(arm64.RegR8), loc)
	loc = m.locationToReg(SizeS64, LocImm64(0x12345678), &temps, ImmTypeNone, true, asm.NilRegister)
	require.Equal(t, LocGPR(arm64.RegR7), loc)
	require.Equal(t, []asm.Register{arm64.RegR8, arm64.RegR7}, temps)
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
	require.Empty(t, m.usedGPRs)

	// A wanted register is used without acquiring a temporary.
	temps = nil
	loc = m.locationToReg(SizeS64, LocImm64(0x12345678), &temps, ImmTypeNone, true, arm64.RegR27)
	require.Equal(t, LocGPR(arm64.RegR27), loc)
	require.Empty(t, temps)
	require.Empty(t, m.usedGPRs)
}

func TestMachineARM64_locationToReg_memory(t *testing.T) {
	m := NewMachineARM64()
	var temps []asm.Register
	loc := m.locationToReg(SizeS64, LocMemory(arm64.RegR29, -16), &temps, ImmTypeNone, true, asm.NilRegister)
	require.Equal(t, LocGPR(arm64.RegR8), loc)
	require.Equal(t, []asm.Register{arm64.RegR8}, temps)
	m.ReleaseGPR(arm64.RegR8)
	// The negative offset fits the unscaled form.
	requireEmitted(t, m, 0xf85f03a8) // ldur x8, [x29, #-16]
}

func TestMachineARM64_EmitBinopAdd32_registers(t *testing.T) {
	// (i32.add (local.get 0) (local.get 1)) with the locals in X19, X20 and
	// the result bound for X0 is a single add.
	m := NewMachineARM64()
	m.EmitBinopAdd32(LocGPR(arm64.RegR19), LocGPR(arm64.RegR20), LocGPR(arm64.RegR0))
	requireEmitted(t, m, 0x0b140260) // add w0, w19, w20
	require.Empty(t, m.CollectTrapInformation())
	require.Empty(t, m.usedGPRs)
}

func TestMachineARM64_EmitBinopAdd32_immediate(t *testing.T) {
	m := NewMachineARM64()
	m.EmitBinopAdd32(LocGPR(arm64.RegR1), LocImm32(16), LocGPR(arm64.RegR0))
	requireEmitted(t, m, 0x11004020) // add w0, w1, #16
	require.Empty(t, m.usedGPRs)
}

func TestMachineARM64_I32Load_guarded(t *testing.T) {
	// i32.load offset=0x10 align=4 with the address in X9, a local memory
	// described at vmctx+0x30, bounds check on.
	m := NewMachineARM64()
	heapOob := m.GetLabel()
	m.I32Load(LocGPR(arm64.RegR9), &wasm.MemoryImmediate{Offset: 0x10, Align: 4},
		LocGPR(arm64.RegR0), true, false, 0x30, heapOob)
	m.EmitLabel(heapOob)

	requireEmitted(t, m,
		0xf9401b87, // ldr x7, [x28, #0x30]      ; base
		0xf9401f86, // ldr x6, [x28, #0x38]      ; bound
		0x8b0700c6, // add x6, x6, x7            ; bound = base + bound
		0xd10010c6, // sub x6, x6, #4            ; inclusive upper bound
		0x2a0903e8, // mov w8, w9                ; zero-extended guest address
		0x31004108, // adds w8, w8, #0x10        ; wasm offset, carry-checked
		0x540000a2, // b.hs heap_oob
		0x8b0800e8, // add x8, x7, x8            ; effective address
		0xeb06011f, // cmp x8, x6
		0x54000048, // b.hi heap_oob
		0xb9400100, // ldr w0, [x8]
	)

	// Only the ldr byte range is tagged HeapAccessOutOfBounds.
	traps := m.CollectTrapInformation()
	require.Equal(t, 4, len(traps))
	for i, trap := range traps {
		require.Equal(t, uint32(40+i), trap.CodeOffset)
		require.Equal(t, TrapCodeHeapAccessOutOfBounds, trap.TrapCode)
	}

	// The address map covers exactly the guarded instruction.
	addressMap := m.InstructionsAddressMap()
	require.Equal(t, 1, len(addressMap))
	require.Equal(t, uint32(40), addressMap[0].CodeOffset)
	require.Equal(t, uint32(4), addressMap[0].CodeLen)

	require.Empty(t, m.usedGPRs)
}

func TestMachineARM64_EmitBinopSdiv32(t *testing.T) {
	m := NewMachineARM64()
	divZero, overflow := m.GetLabel(), m.GetLabel()
	offset := m.EmitBinopSdiv32(LocGPR(arm64.RegR9), LocGPR(arm64.RegR10), LocGPR(arm64.RegR11), divZero, overflow)
	m.EmitLabel(divZero)
	m.EmitLabel(overflow)

	requireEmitted(t, m,
		0x3400010a, // cbz w10, int_div_by_zero
		0xd2b00008, // movz x8, #0x8000, lsl #16 ; 0x80000000
		0x6b08013f, // cmp w9, w8
		0x54000081, // b.ne no_overflow
		0x92800008, // movn x8, #0               ; -1
		0x6b08015f, // cmp w10, w8
		0x54000040, // b.eq int_overflow
		0x1aca0d2b, // no_overflow: sdiv w11, w9, w10
	)

	require.Equal(t, uint(28), offset)
	traps := m.CollectTrapInformation()
	require.Equal(t, 1, len(traps))
	require.Equal(t, uint32(28), traps[0].CodeOffset)
	require.Equal(t, TrapCodeIntegerOverflow, traps[0].TrapCode)
	require.Empty(t, m.usedGPRs)
}

func TestMachineARM64_EmitBinopSrem32_noOverflowBranch(t *testing.T) {
	// The signed remainder relies on sdiv returning MIN for MIN/-1, which
	// msub turns into the correct 0; only the zero-divisor branch is emitted.
	m := NewMachineARM64()
	divZero, overflow := m.GetLabel(), m.GetLabel()
	m.EmitBinopSrem32(LocGPR(arm64.RegR9), LocGPR(arm64.RegR10), LocGPR(arm64.RegR11), divZero, overflow)
	m.EmitLabel(divZero)
	m.EmitLabel(overflow)

	requireEmitted(t, m,
		0x3400006a, // cbz w10, int_div_by_zero
		0x1aca0d2b, // sdiv w11, w9, w10
		0x1b0aa56b, // msub w11, w11, w10, w9
	)
	require.Empty(t, m.usedGPRs)
}

func TestMachineARM64_I32Popcnt(t *testing.T) {
	m := NewMachineARM64()
	m.I32Popcnt(LocGPR(arm64.RegR9), LocGPR(arm64.RegR11))

	requireEmitted(t, m,
		0x2a0903e8, // mov w8, w9        ; scratch copy, the loop shifts it
		0x2a1f03eb, // mov w11, wzr
		0x340000c8, // cbz w8, exit
		0x1100056b, // loop: add w11, w11, #1
		0x5ac01107, // clz w7, w8
		0x110004e7, // add w7, w7, #1
		0x1ac72108, // lsl w8, w8, w7
		0x35ffff88, // cbnz w8, loop
	)
	require.Empty(t, m.usedGPRs)
}

func TestMachineARM64_I32Rol_byRegister(t *testing.T) {
	m := NewMachineARM64()
	m.I32Rol(LocGPR(arm64.RegR9), LocGPR(arm64.RegR10), LocGPR(arm64.RegR11))

	requireEmitted(t, m,
		0xd2800408, // movz x8, #32
		0x4b0a0108, // sub w8, w8, w10
		0x1ac82d2b, // ror w11, w9, w8
	)
	require.Empty(t, m.usedGPRs)
}

func TestMachineARM64_I32Rol_immediate(t *testing.T) {
	m := NewMachineARM64()
	m.I32Rol(LocGPR(arm64.RegR9), LocImm8(1), LocGPR(arm64.RegR11))
	requireEmitted(t, m, 0x13897d2b) // ror w11, w9, #31
}

func TestMachineARM64_PushUsedGPR_oddCountPadsWithXZR(t *testing.T) {
	m := NewMachineARM64()
	m.ReserveGPR(arm64.RegR19)
	m.ReserveGPR(arm64.RegR20)
	m.ReserveGPR(arm64.RegR21)

	adjust := m.PushUsedGPR()
	require.Equal(t, 32, adjust)
	require.False(t, m.pushed)

	requireEmitted(t, m,
		0xd10043ff, // sub sp, sp, #16
		0xf80083ff, // stur xzr, [sp, #8]  ; parity pad
		0xf80003f3, // stur x19, [sp]
		0xd10043ff, // sub sp, sp, #16
		0xf80083f4, // stur x20, [sp, #8]
		0xf80003f5, // stur x21, [sp]
	)
}

func TestMachineARM64_EmitPushPop_parity(t *testing.T) {
	m := NewMachineARM64()
	require.False(t, m.pushed)

	m.EmitPush(SizeS64, LocGPR(arm64.RegR1))
	require.True(t, m.pushed)

	m.EmitPop(SizeS64, LocGPR(arm64.RegR1))
	require.False(t, m.pushed)

	requireEmitted(t, m,
		0xd10043ff, // sub sp, sp, #16
		0xf80083e1, // stur x1, [sp, #8]
		0xf84083e1, // ldur x1, [sp, #8]
		0x910043ff, // add sp, sp, #16
	)
}

func TestMachineARM64_PrologEpilog_roundTrip(t *testing.T) {
	m := NewMachineARM64()
	m.EmitFunctionProlog()
	m.EmitFunctionEpilog()
	m.EmitRet()
	require.False(t, m.pushed)

	requireEmitted(t, m,
		0xa9bf7bfd, // stp x29, x30, [sp, #-16]!
		0xa9bf73fb, // stp x27, x28, [sp, #-16]!
		0x910003fd, // add x29, sp, #0
		0x910003bf, // add sp, x29, #0
		0xa8c173fb, // ldp x27, x28, [sp], #16
		0xa8c17bfd, // ldp x29, x30, [sp], #16
		0xd65f03c0, // ret
	)
}

func TestMachineARM64_RestoreSavedArea_parity(t *testing.T) {
	m := NewMachineARM64()
	m.RestoreSavedArea(24)
	require.True(t, m.pushed)
	m.RestoreSavedArea(32)
	require.False(t, m.pushed)

	requireEmitted(t, m,
		0xd10083bf, // sub sp, x29, #32  ; 24 rounded to keep SP aligned
		0xd10083bf, // sub sp, x29, #32
	)
}

func TestMachineARM64_EmitJmpToJumptable(t *testing.T) {
	m := NewMachineARM64()
	table := m.GetLabel()
	m.EmitJmpToJumptable(table, LocGPR(arm64.RegR10))
	m.EmitLabel(table)

	requireEmitted(t, m,
		0x10000088, // adr x8, table
		0x2a0a03e7, // mov w7, w10
		0x8b070907, // add x7, x8, x7, lsl #2
		0xd61f00e0, // br x7
	)
	require.Empty(t, m.usedGPRs)
}

func TestMachineARM64_MoveWithReloc(t *testing.T) {
	m := NewMachineARM64()
	var relocations []Relocation
	target := RelocationTarget{Kind: RelocationTargetLocalFunc, Index: 7}
	m.MoveWithReloc(target, &relocations)

	requireEmitted(t, m,
		0xf280001b, // movk x27, #0
		0xf2a0001b, // movk x27, #0, lsl #16
		0xf2c0001b, // movk x27, #0, lsl #32
		0xf2e0001b, // movk x27, #0, lsl #48
	)

	require.Equal(t, 4, len(relocations))
	for i, reloc := range relocations {
		require.Equal(t, RelocationKind(i), reloc.Kind)
		require.Equal(t, target, reloc.Target)
		require.Equal(t, uint32(i*4), reloc.Offset)
		require.Equal(t, int64(0), reloc.Addend)
	}
}

func TestMachineARM64_MoveLocation(t *testing.T) {
	tests := []struct {
		name string
		emit func(m *MachineARM64)
		exp  []uint32
	}{
		{
			name: "register to register",
			emit: func(m *MachineARM64) { m.MoveLocation(SizeS64, LocGPR(arm64.RegR1), LocGPR(arm64.RegR2)) },
			exp:  []uint32{0xaa0103e2}, // mov x2, x1
		},
		{
			name: "register to scaled memory",
			emit: func(m *MachineARM64) { m.MoveLocation(SizeS64, LocGPR(arm64.RegR1), LocMemory(arm64.RegR29, 16)) },
			exp:  []uint32{0xf9000ba1}, // str x1, [x29, #16]
		},
		{
			name: "register to unscaled memory",
			emit: func(m *MachineARM64) { m.MoveLocation(SizeS64, LocGPR(arm64.RegR1), LocMemory(arm64.RegR29, -16)) },
			exp:  []uint32{0xf81f03a1}, // stur x1, [x29, #-16]
		},
		{
			name: "memory to register",
			emit: func(m *MachineARM64) { m.MoveLocation(SizeS64, LocMemory(arm64.RegR29, 16), LocGPR(arm64.RegR1)) },
			exp:  []uint32{0xf9400ba1}, // ldr x1, [x29, #16]
		},
		{
			name: "immediate to register",
			emit: func(m *MachineARM64) { m.MoveLocation(SizeS64, LocImm32(32), LocGPR(arm64.RegR1)) },
			exp:  []uint32{0xd2800401}, // movz x1, #32
		},
		{
			name: "zero register to register",
			emit: func(m *MachineARM64) { m.ZeroLocation(SizeS64, LocGPR(arm64.RegR1)) },
			exp:  []uint32{0xaa1f03e1}, // mov x1, xzr
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMachineARM64()
			tc.emit(m)
			requireEmitted(t, m, tc.exp...)
			require.Empty(t, m.usedGPRs)
		})
	}
}

func TestMachineARM64_EmitRelaxedSignExtension(t *testing.T) {
	m := NewMachineARM64()
	m.EmitRelaxedSignExtension(SizeS8, LocGPR(arm64.RegR2), SizeS32, LocGPR(arm64.RegR1))
	requireEmitted(t, m, 0x13001c41) // sxtb w1, w2

	m = NewMachineARM64()
	m.EmitRelaxedSignExtension(SizeS32, LocMemory(arm64.RegR29, 4), SizeS64, LocGPR(arm64.RegR1))
	requireEmitted(t, m, 0xb98007a1) // ldrsw x1, [x29, #4]
	require.Empty(t, m.usedGPRs)
}

func TestMachineARM64_cmpops(t *testing.T) {
	m := NewMachineARM64()
	m.I32CmpLtS(LocGPR(arm64.RegR1), LocGPR(arm64.RegR2), LocGPR(arm64.RegR0))
	requireEmitted(t, m,
		0x6b02003f, // cmp w1, w2
		0x9a9fa7e0, // cset x0, lt
	)
	require.Empty(t, m.usedGPRs)
}

func TestMachineARM64_F64CmpLt(t *testing.T) {
	m := NewMachineARM64()
	m.F64CmpLt(LocSIMD(arm64.RegV1), LocSIMD(arm64.RegV2), LocGPR(arm64.RegR0))
	requireEmitted(t, m,
		0x1e622020, // fcmp d1, d2
		0x9a9f27e0, // cset x0, lo ; false on NaN
	)
	require.Empty(t, m.usedGPRs)
	require.Empty(t, m.usedSIMD)
}

func TestMachineARM64_F64Min(t *testing.T) {
	m := NewMachineARM64()
	m.F64Min(LocSIMD(arm64.RegV1), LocSIMD(arm64.RegV2), LocSIMD(arm64.RegV3))
	requireEmitted(t, m, 0x1e625823) // fmin d3, d1, d2
	require.Empty(t, m.usedSIMD)
}

func TestMachineARM64_ConvertF64I32(t *testing.T) {
	m := NewMachineARM64()
	m.ConvertF64I32(LocGPR(arm64.RegR1), true, LocSIMD(arm64.RegV0))
	requireEmitted(t, m, 0x1e620020) // scvtf d0, w1
	require.Empty(t, m.usedGPRs)
	require.Empty(t, m.usedSIMD)
}

func TestMachineARM64_addressMapOrdering(t *testing.T) {
	m := NewMachineARM64()
	m.InsertStackOverflow()
	m.SetSrcLoc(1)
	m.EmitBinopAdd32(LocGPR(arm64.RegR1), LocGPR(arm64.RegR2), LocGPR(arm64.RegR0))
	m.MarkAddressWithTrapCode(TrapCodeUnreachable)
	m.SetSrcLoc(2)
	begin := m.GetOffset()
	m.EmitRet()
	m.MarkAddressRangeWithTrapCode(TrapCodeHeapAccessOutOfBounds, begin, m.GetOffset())

	addressMap := m.InstructionsAddressMap()
	require.True(t, sort.SliceIsSorted(addressMap, func(i, j int) bool {
		return addressMap[i].CodeOffset < addressMap[j].CodeOffset
	}))
	require.True(t, sort.SliceIsSorted(addressMap, func(i, j int) bool {
		return addressMap[i].SrcLoc < addressMap[j].SrcLoc
	}))

	traps := m.CollectTrapInformation()
	require.True(t, sort.SliceIsSorted(traps, func(i, j int) bool {
		return traps[i].CodeOffset < traps[j].CodeOffset
	}))
	require.Equal(t, TrapCodeStackOverflow, traps[0].TrapCode)
	require.Equal(t, uint32(0), traps[0].CodeOffset)
}

func TestMachineARM64_GetParamLocation(t *testing.T) {
	m := NewMachineARM64()
	require.Equal(t, LocGPR(arm64.RegR0), m.GetParamLocation(0, CallingConventionSystemV))
	require.Equal(t, LocGPR(arm64.RegR7), m.GetParamLocation(7, CallingConventionSystemV))
	require.Equal(t, LocMemory(arm64.RegR29, 32), m.GetParamLocation(8, CallingConventionSystemV))
	require.Equal(t, LocMemory(arm64.RegR29, 40), m.GetParamLocation(9, CallingConventionSystemV))
}

func TestMachineARM64_GetLocalLocation(t *testing.T) {
	m := NewMachineARM64()
	require.Equal(t, LocGPR(arm64.RegR19), m.GetLocalLocation(0, 0))
	require.Equal(t, LocGPR(arm64.RegR26), m.GetLocalLocation(7, 0))
	require.False(t, m.IsLocalOnStack(7))
	require.True(t, m.IsLocalOnStack(8))
	require.Equal(t, LocMemory(arm64.RegR29, -72), m.GetLocalLocation(8, 32))
}

func TestMachineARM64_unimplementedSurfaces(t *testing.T) {
	m := NewMachineARM64()
	require.Panics(t, func() { m.CanonicalizeNan(SizeS64, LocationNone, LocationNone) })
	require.Panics(t, func() { m.F64Trunc(LocationNone, LocationNone) })
	require.Panics(t, func() { m.LocationAnd(SizeS64, LocationNone, LocationNone, false) })
	require.Panics(t, func() { m.MoveLocationExtend(SizeS64, false, LocationNone, SizeS64, LocationNone) })
	require.Panics(t, func() { m.LoadAddress(SizeS64, LocationNone, LocationNone) })
	require.Panics(t, func() {
		m.I32AtomicLoad(LocationNone, &wasm.MemoryImmediate{}, LocationNone, false, false, 0, asm.NilLabel)
	})
	require.Panics(t, func() {
		m.ConvertI32F32(LocationNone, LocationNone, true, false)
	})
}
