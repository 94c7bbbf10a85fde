package arm64

import (
	"github.com/tetratelabs/singlepass/internal/asm"
)

// Arm64-specific condition states.
//
// Note: Naming conventions intentionally match the Go assembler: https://go.dev/doc/asm
// See https://community.arm.com/arm-community-blogs/b/architectures-and-processors-blog/posts/condition-codes-1-condition-flags-and-codes
const (
	CondEQ asm.ConditionalRegisterState = asm.ConditionalRegisterStateUnset + 1 + iota
	CondNE
	CondHS
	CondLO
	CondMI
	CondPL
	CondVS
	CondVC
	CondHI
	CondLS
	CondGE
	CondLT
	CondGT
	CondLE
	CondAL
	CondNV
)

// Arm64-specific registers.
//
// Note: Naming conventions intentionally match the Go assembler: https://go.dev/doc/asm
// See https://developer.arm.com/documentation/dui0801/a/Overview-of-AArch64-state/Predeclared-core-register-names-in-AArch64-state
const (
	// Integer registers.

	RegR0 asm.Register = asm.NilRegister + 1 + iota
	RegR1
	RegR2
	RegR3
	RegR4
	RegR5
	RegR6
	RegR7
	RegR8
	RegR9
	RegR10
	RegR11
	RegR12
	RegR13
	RegR14
	RegR15
	RegR16
	RegR17
	RegR18
	RegR19
	RegR20
	RegR21
	RegR22
	RegR23
	RegR24
	RegR25
	RegR26
	RegR27
	RegR28
	RegR29
	RegR30
	// RegRZR is the zero register, which shares its encoding (0b11111) with
	// the stack pointer. Whether an instruction reads it as XZR or as SP
	// depends on the instruction; arithmetic immediates and load/store bases
	// treat it as SP, logical and move instructions as XZR.
	RegRZR

	// Scalar floating point / vector registers.

	RegV0
	RegV1
	RegV2
	RegV3
	RegV4
	RegV5
	RegV6
	RegV7
	RegV8
	RegV9
	RegV10
	RegV11
	RegV12
	RegV13
	RegV14
	RegV15
	RegV16
	RegV17
	RegV18
	RegV19
	RegV20
	RegV21
	RegV22
	RegV23
	RegV24
	RegV25
	RegV26
	RegV27
	RegV28
	RegV29
	RegV30
	RegV31

	// Assign each conditional register state to a unique register ID.
	// This is to reduce the size of nodeImpl struct without having a dedicated field
	// for conditional register state which would not be used by most nodes.

	RegCondEQ
	RegCondNE
	RegCondHS
	RegCondLO
	RegCondMI
	RegCondPL
	RegCondVS
	RegCondVC
	RegCondHI
	RegCondLS
	RegCondGE
	RegCondLT
	RegCondGT
	RegCondLE
	RegCondAL
	RegCondNV
)

// RegSP is the stack pointer, which shares the encoding of RegRZR.
const RegSP = RegRZR

// conditionalRegisterStateToRegister cast a conditional register to its unique register ID.
// See the comment on RegCondEQ above.
func conditionalRegisterStateToRegister(c asm.ConditionalRegisterState) asm.Register {
	switch c {
	case CondEQ:
		return RegCondEQ
	case CondNE:
		return RegCondNE
	case CondHS:
		return RegCondHS
	case CondLO:
		return RegCondLO
	case CondMI:
		return RegCondMI
	case CondPL:
		return RegCondPL
	case CondVS:
		return RegCondVS
	case CondVC:
		return RegCondVC
	case CondHI:
		return RegCondHI
	case CondLS:
		return RegCondLS
	case CondGE:
		return RegCondGE
	case CondLT:
		return RegCondLT
	case CondGT:
		return RegCondGT
	case CondLE:
		return RegCondLE
	case CondAL:
		return RegCondAL
	case CondNV:
		return RegCondNV
	}
	return asm.NilRegister
}

// RegisterName returns the name of the given register, for debugging.
func RegisterName(r asm.Register) string {
	if RegR0 <= r && r <= RegR30 {
		return "R" + itoa(int(r-RegR0))
	}
	if RegV0 <= r && r <= RegV31 {
		return "V" + itoa(int(r-RegV0))
	}
	switch r {
	case asm.NilRegister:
		return "nil"
	case RegRZR:
		return "ZERO"
	case RegCondEQ:
		return "COND_EQ"
	case RegCondNE:
		return "COND_NE"
	case RegCondHS:
		return "COND_HS"
	case RegCondLO:
		return "COND_LO"
	case RegCondMI:
		return "COND_MI"
	case RegCondPL:
		return "COND_PL"
	case RegCondVS:
		return "COND_VS"
	case RegCondVC:
		return "COND_VC"
	case RegCondHI:
		return "COND_HI"
	case RegCondLS:
		return "COND_LS"
	case RegCondGE:
		return "COND_GE"
	case RegCondLT:
		return "COND_LT"
	case RegCondGT:
		return "COND_GT"
	case RegCondLE:
		return "COND_LE"
	case RegCondAL:
		return "COND_AL"
	case RegCondNV:
		return "COND_NV"
	}
	return "UNKNOWN"
}

// itoa is a tiny strconv.Itoa for non-negative register numbers, avoiding the
// strconv import in this hot package.
func itoa(i int) string {
	if i < 10 {
		return string([]byte{byte('0' + i)})
	}
	return string([]byte{byte('0' + i/10), byte('0' + i%10)})
}

// Arm64-specific instructions.
//
// Note: This only defines arm64 instructions used by the single-pass machine.
// Note: Naming conventions intentionally match the Go assembler: https://go.dev/doc/asm
// where an equivalent exists; MOVBW/MOVHW (sign-extending loads into a 32-bit
// destination) and the pair/unscaled forms are selected via dedicated Compile
// methods instead of dedicated names.
const (
	NOP asm.Instruction = iota
	RET
	B
	BL
	BR
	BLR
	BRK
	DMB
	BCONDEQ
	BCONDNE
	BCONDHS
	BCONDLO
	BCONDMI
	BCONDPL
	BCONDVS
	BCONDVC
	BCONDHI
	BCONDLS
	BCONDGE
	BCONDLT
	BCONDGT
	BCONDLE
	CBZ
	CBZW
	CBNZ
	CBNZW
	ADD
	ADDW
	ADDS
	ADDSW
	SUB
	SUBW
	SUBS
	SUBSW
	AND
	ANDW
	ORR
	ORRW
	EOR
	EORW
	TST
	TSTW
	LSL
	LSLW
	LSR
	LSRW
	ASR
	ASRW
	ROR
	RORW
	CLZ
	CLZW
	RBIT
	RBITW
	MUL
	MULW
	SDIV
	SDIVW
	UDIV
	UDIVW
	MSUB
	MSUBW
	CMP
	CMPW
	CSET
	MOVD
	MOVW
	MOVWU
	MOVH
	MOVHU
	MOVB
	MOVBU
	MOVBW
	MOVHW
	MOVK
	SXTB
	SXTBW
	SXTH
	SXTHW
	SXTW
	ADR
	FMOVD
	FMOVS
	FADDD
	FADDS
	FSUBD
	FSUBS
	FMULD
	FMULS
	FDIVD
	FDIVS
	FMIND
	FMINS
	FMAXD
	FMAXS
	FNEGD
	FNEGS
	FABSD
	FABSS
	FSQRTD
	FSQRTS
	FCVTDS
	FCVTSD
	FCMPD
	FCMPS
	SCVTFD
	SCVTFS
	SCVTFWD
	SCVTFWS
	UCVTFD
	UCVTFS
	UCVTFWD
	UCVTFWS
	STP
	LDP
)

// InstructionName returns the name of the given instruction, for debugging.
func InstructionName(i asm.Instruction) string {
	switch i {
	case NOP:
		return "NOP"
	case RET:
		return "RET"
	case B:
		return "B"
	case BL:
		return "BL"
	case BR:
		return "BR"
	case BLR:
		return "BLR"
	case BRK:
		return "BRK"
	case DMB:
		return "DMB"
	case BCONDEQ:
		return "BCONDEQ"
	case BCONDNE:
		return "BCONDNE"
	case BCONDHS:
		return "BCONDHS"
	case BCONDLO:
		return "BCONDLO"
	case BCONDMI:
		return "BCONDMI"
	case BCONDPL:
		return "BCONDPL"
	case BCONDVS:
		return "BCONDVS"
	case BCONDVC:
		return "BCONDVC"
	case BCONDHI:
		return "BCONDHI"
	case BCONDLS:
		return "BCONDLS"
	case BCONDGE:
		return "BCONDGE"
	case BCONDLT:
		return "BCONDLT"
	case BCONDGT:
		return "BCONDGT"
	case BCONDLE:
		return "BCONDLE"
	case CBZ:
		return "CBZ"
	case CBZW:
		return "CBZW"
	case CBNZ:
		return "CBNZ"
	case CBNZW:
		return "CBNZW"
	case ADD:
		return "ADD"
	case ADDW:
		return "ADDW"
	case ADDS:
		return "ADDS"
	case ADDSW:
		return "ADDSW"
	case SUB:
		return "SUB"
	case SUBW:
		return "SUBW"
	case SUBS:
		return "SUBS"
	case SUBSW:
		return "SUBSW"
	case AND:
		return "AND"
	case ANDW:
		return "ANDW"
	case ORR:
		return "ORR"
	case ORRW:
		return "ORRW"
	case EOR:
		return "EOR"
	case EORW:
		return "EORW"
	case TST:
		return "TST"
	case TSTW:
		return "TSTW"
	case LSL:
		return "LSL"
	case LSLW:
		return "LSLW"
	case LSR:
		return "LSR"
	case LSRW:
		return "LSRW"
	case ASR:
		return "ASR"
	case ASRW:
		return "ASRW"
	case ROR:
		return "ROR"
	case RORW:
		return "RORW"
	case CLZ:
		return "CLZ"
	case CLZW:
		return "CLZW"
	case RBIT:
		return "RBIT"
	case RBITW:
		return "RBITW"
	case MUL:
		return "MUL"
	case MULW:
		return "MULW"
	case SDIV:
		return "SDIV"
	case SDIVW:
		return "SDIVW"
	case UDIV:
		return "UDIV"
	case UDIVW:
		return "UDIVW"
	case MSUB:
		return "MSUB"
	case MSUBW:
		return "MSUBW"
	case CMP:
		return "CMP"
	case CMPW:
		return "CMPW"
	case CSET:
		return "CSET"
	case MOVD:
		return "MOVD"
	case MOVW:
		return "MOVW"
	case MOVWU:
		return "MOVWU"
	case MOVH:
		return "MOVH"
	case MOVHU:
		return "MOVHU"
	case MOVB:
		return "MOVB"
	case MOVBU:
		return "MOVBU"
	case MOVBW:
		return "MOVBW"
	case MOVHW:
		return "MOVHW"
	case MOVK:
		return "MOVK"
	case SXTB:
		return "SXTB"
	case SXTBW:
		return "SXTBW"
	case SXTH:
		return "SXTH"
	case SXTHW:
		return "SXTHW"
	case SXTW:
		return "SXTW"
	case ADR:
		return "ADR"
	case FMOVD:
		return "FMOVD"
	case FMOVS:
		return "FMOVS"
	case FADDD:
		return "FADDD"
	case FADDS:
		return "FADDS"
	case FSUBD:
		return "FSUBD"
	case FSUBS:
		return "FSUBS"
	case FMULD:
		return "FMULD"
	case FMULS:
		return "FMULS"
	case FDIVD:
		return "FDIVD"
	case FDIVS:
		return "FDIVS"
	case FMIND:
		return "FMIND"
	case FMINS:
		return "FMINS"
	case FMAXD:
		return "FMAXD"
	case FMAXS:
		return "FMAXS"
	case FNEGD:
		return "FNEGD"
	case FNEGS:
		return "FNEGS"
	case FABSD:
		return "FABSD"
	case FABSS:
		return "FABSS"
	case FSQRTD:
		return "FSQRTD"
	case FSQRTS:
		return "FSQRTS"
	case FCVTDS:
		return "FCVTDS"
	case FCVTSD:
		return "FCVTSD"
	case FCMPD:
		return "FCMPD"
	case FCMPS:
		return "FCMPS"
	case SCVTFD:
		return "SCVTFD"
	case SCVTFS:
		return "SCVTFS"
	case SCVTFWD:
		return "SCVTFWD"
	case SCVTFWS:
		return "SCVTFWS"
	case UCVTFD:
		return "UCVTFD"
	case UCVTFS:
		return "UCVTFS"
	case UCVTFWD:
		return "UCVTFWD"
	case UCVTFWS:
		return "UCVTFWS"
	case STP:
		return "STP"
	case LDP:
		return "LDP"
	}
	return "UNKNOWN"
}
