package compiler

import (
	"fmt"

	"github.com/tetratelabs/singlepass/internal/asm"
	"github.com/tetratelabs/singlepass/internal/asm/arm64"
)

// Size enumerates the operand widths the machine works with.
type Size byte

const (
	// SizeS8 is an 8-bit operand.
	SizeS8 Size = iota
	// SizeS16 is a 16-bit operand.
	SizeS16
	// SizeS32 is a 32-bit operand.
	SizeS32
	// SizeS64 is a 64-bit operand.
	SizeS64
)

// String implements fmt.Stringer.
func (s Size) String() (ret string) {
	switch s {
	case SizeS8:
		ret = "s8"
	case SizeS16:
		ret = "s16"
	case SizeS32:
		ret = "s32"
	case SizeS64:
		ret = "s64"
	}
	return
}

// Multiplier scales the index register of a two-register memory operand.
type Multiplier byte

const (
	// MultiplierOne does not scale the index.
	MultiplierOne Multiplier = 1
	// MultiplierTwo scales the index by 2.
	MultiplierTwo Multiplier = 2
	// MultiplierFour scales the index by 4.
	MultiplierFour Multiplier = 4
	// MultiplierEight scales the index by 8.
	MultiplierEight Multiplier = 8
)

type locationKind byte

const (
	locationKindNone locationKind = iota
	locationKindGPR
	locationKindSIMD
	locationKindImm8
	locationKindImm32
	locationKindImm64
	locationKindMemory
	locationKindMemory2
)

// Location is the abstract place a value lives while compiling: a general
// purpose register, a NEON register, an immediate of one of three widths, or
// a memory operand relative to a GPR base (optionally indexed by a second
// register). The zero value is "no location".
//
// Location is a small comparable struct on purpose: the emission methods use
// `==` to detect whether legalisation materialised an operand somewhere else.
type Location struct {
	kind       locationKind
	reg        asm.Register
	index      asm.Register
	multiplier Multiplier
	imm        int64
}

// LocationNone is the zero Location.
var LocationNone = Location{}

// LocGPR returns a Location naming a general purpose register.
func LocGPR(reg asm.Register) Location {
	return Location{kind: locationKindGPR, reg: reg}
}

// LocSIMD returns a Location naming a NEON register.
func LocSIMD(reg asm.Register) Location {
	return Location{kind: locationKindSIMD, reg: reg}
}

// LocImm8 returns an 8-bit immediate Location.
func LocImm8(v uint8) Location {
	return Location{kind: locationKindImm8, imm: int64(v)}
}

// LocImm32 returns a 32-bit immediate Location.
func LocImm32(v uint32) Location {
	return Location{kind: locationKindImm32, imm: int64(v)}
}

// LocImm64 returns a 64-bit immediate Location.
func LocImm64(v uint64) Location {
	return Location{kind: locationKindImm64, imm: int64(v)}
}

// LocMemory returns a base+offset memory Location.
func LocMemory(base asm.Register, offset int32) Location {
	return Location{kind: locationKindMemory, reg: base, imm: int64(offset)}
}

// LocMemory2 returns a base+index*multiplier+offset memory Location.
func LocMemory2(base, index asm.Register, multiplier Multiplier, offset int32) Location {
	return Location{kind: locationKindMemory2, reg: base, index: index, multiplier: multiplier, imm: int64(offset)}
}

// IsGPR returns true if the location is a general purpose register.
func (l Location) IsGPR() bool { return l.kind == locationKindGPR }

// IsSIMD returns true if the location is a NEON register.
func (l Location) IsSIMD() bool { return l.kind == locationKindSIMD }

// IsRegister returns true if the location is any register.
func (l Location) IsRegister() bool { return l.IsGPR() || l.IsSIMD() }

// IsImm returns true if the location is an immediate of any width.
func (l Location) IsImm() bool {
	return l.kind == locationKindImm8 || l.kind == locationKindImm32 || l.kind == locationKindImm64
}

// IsMemory returns true if the location is a single-register memory operand.
func (l Location) IsMemory() bool { return l.kind == locationKindMemory }

// IsMemory2 returns true if the location is a two-register memory operand.
func (l Location) IsMemory2() bool { return l.kind == locationKindMemory2 }

// Register returns the register of a GPR/SIMD location, or the base register
// of a memory location.
func (l Location) Register() asm.Register { return l.reg }

// Index returns the index register of a Memory2 location.
func (l Location) Index() asm.Register { return l.index }

// Multiplier returns the index multiplier of a Memory2 location.
func (l Location) Multiplier() Multiplier { return l.multiplier }

// ImmValue returns the immediate of an Imm* location.
func (l Location) ImmValue() int64 { return l.imm }

// MemoryOffset returns the constant offset of a memory location.
func (l Location) MemoryOffset() int32 { return int32(l.imm) }

// String implements fmt.Stringer.
func (l Location) String() string {
	switch l.kind {
	case locationKindNone:
		return "none"
	case locationKindGPR, locationKindSIMD:
		return arm64.RegisterName(l.reg)
	case locationKindImm8:
		return fmt.Sprintf("imm8(0x%x)", l.imm)
	case locationKindImm32:
		return fmt.Sprintf("imm32(0x%x)", l.imm)
	case locationKindImm64:
		return fmt.Sprintf("imm64(0x%x)", l.imm)
	case locationKindMemory:
		return fmt.Sprintf("[%s + 0x%x]", arm64.RegisterName(l.reg), l.imm)
	case locationKindMemory2:
		return fmt.Sprintf("[%s + %s*%d + 0x%x]", arm64.RegisterName(l.reg), arm64.RegisterName(l.index), l.multiplier, l.imm)
	}
	return "unknown"
}
