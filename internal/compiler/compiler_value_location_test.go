package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/singlepass/internal/asm/arm64"
)

func TestLocation_kinds(t *testing.T) {
	gpr := LocGPR(arm64.RegR1)
	require.True(t, gpr.IsGPR())
	require.True(t, gpr.IsRegister())
	require.False(t, gpr.IsSIMD())
	require.Equal(t, arm64.RegR1, gpr.Register())

	simd := LocSIMD(arm64.RegV3)
	require.True(t, simd.IsSIMD())
	require.True(t, simd.IsRegister())
	require.False(t, simd.IsGPR())

	for _, imm := range []Location{LocImm8(1), LocImm32(2), LocImm64(3)} {
		require.True(t, imm.IsImm())
		require.False(t, imm.IsRegister())
	}
	require.Equal(t, int64(0xff), LocImm8(0xff).ImmValue())
	require.Equal(t, int64(0xffffffff), LocImm32(0xffffffff).ImmValue())

	mem := LocMemory(arm64.RegR28, -16)
	require.True(t, mem.IsMemory())
	require.Equal(t, int32(-16), mem.MemoryOffset())
	require.Equal(t, arm64.RegR28, mem.Register())

	mem2 := LocMemory2(arm64.RegR1, arm64.RegR2, MultiplierOne, 0)
	require.True(t, mem2.IsMemory2())
	require.Equal(t, arm64.RegR2, mem2.Index())
	require.Equal(t, MultiplierOne, mem2.Multiplier())
}

func TestLocation_comparable(t *testing.T) {
	require.Equal(t, LocGPR(arm64.RegR1), LocGPR(arm64.RegR1))
	require.NotEqual(t, LocGPR(arm64.RegR1), LocGPR(arm64.RegR2))
	require.NotEqual(t, LocGPR(arm64.RegR1), LocSIMD(arm64.RegR1))
	require.NotEqual(t, LocImm32(1), LocImm64(1))
	require.Equal(t, LocMemory(arm64.RegR28, 8), LocMemory(arm64.RegR28, 8))
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		in  Location
		exp string
	}{
		{in: LocationNone, exp: "none"},
		{in: LocGPR(arm64.RegR10), exp: "R10"},
		{in: LocSIMD(arm64.RegV0), exp: "V0"},
		{in: LocImm8(0x12), exp: "imm8(0x12)"},
		{in: LocImm32(0x12), exp: "imm32(0x12)"},
		{in: LocImm64(0x12), exp: "imm64(0x12)"},
		{in: LocMemory(arm64.RegR28, 0x30), exp: "[R28 + 0x30]"},
		{in: LocMemory2(arm64.RegR28, arm64.RegR8, MultiplierOne, 0), exp: "[R28 + R8*1 + 0x0]"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.exp, tc.in.String())
	}
}
