package compiler

import (
	"fmt"
	"sort"

	"github.com/tetratelabs/singlepass/internal/asm"
	"github.com/tetratelabs/singlepass/internal/asm/arm64"
	"github.com/tetratelabs/singlepass/internal/wasm"
)

// Register roles fixed by the code generator. These are process-wide
// conventions baked into emission, not configuration.
var (
	// arm64CallScratchRegister is the call scratch and relocation anchor.
	arm64CallScratchRegister = arm64.RegR27
	// arm64VMCtxRegister holds the VM context pointer for the whole body.
	arm64VMCtxRegister = arm64.RegR28
	// arm64FramePointerRegister is the base for stack locals and arg spills.
	arm64FramePointerRegister = arm64.RegR29
	// arm64LinkRegister is the return address register.
	arm64LinkRegister = arm64.RegR30
	// arm64SPScratchRegister is a free scratch for SP adjustments and odd
	// addressing; it is never acquired through the pool.
	arm64SPScratchRegister = arm64.RegR17
	// arm64ImportTrampolineScratchRegister is the intra-procedure-call scratch
	// used by the import call trampoline so the argument set stays untouched.
	arm64ImportTrampolineScratchRegister = arm64.RegR16

	// arm64AllocatableGPRs are the registers the front end may allocate for
	// abstract stack values.
	arm64AllocatableGPRs = []asm.Register{
		arm64.RegR9, arm64.RegR10, arm64.RegR11, arm64.RegR12, arm64.RegR13, arm64.RegR14, arm64.RegR15,
	}
	// arm64TempGPRs are the registers emission methods may acquire for
	// internal temporary use, tried in this order.
	arm64TempGPRs = []asm.Register{
		arm64.RegR8, arm64.RegR7, arm64.RegR6, arm64.RegR5, arm64.RegR4, arm64.RegR3, arm64.RegR2, arm64.RegR1,
	}
	// arm64AllocatableSIMDs are the NEON registers available for allocation.
	arm64AllocatableSIMDs = []asm.Register{
		arm64.RegV8, arm64.RegV9, arm64.RegV10, arm64.RegV11, arm64.RegV12,
	}
	// arm64TempSIMDs are the NEON registers for internal temporary use.
	arm64TempSIMDs = []asm.Register{
		arm64.RegV0, arm64.RegV1, arm64.RegV2, arm64.RegV3, arm64.RegV4, arm64.RegV5, arm64.RegV6, arm64.RegV7,
	}
	// arm64CalleeSavedLocalRegisters hold Wasm locals 0..7.
	arm64CalleeSavedLocalRegisters = []asm.Register{
		arm64.RegR19, arm64.RegR20, arm64.RegR21, arm64.RegR22, arm64.RegR23, arm64.RegR24, arm64.RegR25, arm64.RegR26,
	}
)

// ImmType is the encoding slot an immediate must fit to stay an immediate
// during legalisation; otherwise it is materialised into a register.
type ImmType byte

const (
	// ImmTypeNone never accepts an immediate.
	ImmTypeNone ImmType = iota
	// ImmTypeNoneXzr never accepts an immediate, but routes a zero to the
	// zero register instead of materialising it.
	ImmTypeNoneXzr
	// ImmTypeBits8 accepts 0 <= imm < 256.
	ImmTypeBits8
	// ImmTypeBits12 accepts 0 <= imm < 4096 (add/sub immediate).
	ImmTypeBits12
	// ImmTypeShift32 accepts 0 <= imm < 32.
	ImmTypeShift32
	// ImmTypeShift32No0 accepts 0 < imm < 32; a zero shift is a distinct encoding.
	ImmTypeShift32No0
	// ImmTypeShift64 accepts 0 <= imm < 64.
	ImmTypeShift64
	// ImmTypeShift64No0 accepts 0 < imm < 64.
	ImmTypeShift64No0
	// ImmTypeLogical32 accepts 32-bit bitmask immediates.
	ImmTypeLogical32
	// ImmTypeLogical64 accepts 64-bit bitmask immediates.
	ImmTypeLogical64
	// ImmTypeUnscaledOffset accepts -256 < imm < 256 (ldur/stur).
	ImmTypeUnscaledOffset
	// ImmTypeOffsetByte accepts scaled unsigned offsets for 1-byte accesses.
	ImmTypeOffsetByte
	// ImmTypeOffsetHWord accepts scaled unsigned offsets for 2-byte accesses.
	ImmTypeOffsetHWord
	// ImmTypeOffsetWord accepts scaled unsigned offsets for 4-byte accesses.
	ImmTypeOffsetWord
	// ImmTypeOffsetDWord accepts scaled unsigned offsets for 8-byte accesses.
	ImmTypeOffsetDWord
)

// MachineARM64 is the ARM64 single-pass code generator: register pool,
// operand legaliser, per-operator emission, memory-access guard and
// frame/trap bookkeeping over one assembler buffer. One instance compiles
// exactly one function and is not safe for concurrent use.
type MachineARM64 struct {
	assembler arm64.Assembler
	usedGPRs  map[asm.Register]struct{}
	usedSIMD  map[asm.Register]struct{}
	// trapTable maps a native byte offset to the trap code a fault there
	// reports as.
	trapTable map[uint32]TrapCode
	// instructionsAddressMap maps ranges of emitted code back to Wasm source
	// offsets, in emission order.
	instructionsAddressMap []InstructionAddressMap
	// srcLoc is the source location for the current operator.
	srcLoc uint32
	// pushed is true while the last single push filled only the upper half
	// of a 16-byte stack slot; the next push fills the lower half without
	// moving SP.
	pushed bool
}

// NewMachineARM64 returns a machine ready to compile one function.
func NewMachineARM64() *MachineARM64 {
	return &MachineARM64{
		assembler: arm64.NewAssemblerImpl(arm64SPScratchRegister),
		usedGPRs:  map[asm.Register]struct{}{},
		usedSIMD:  map[asm.Register]struct{}{},
		trapTable: map[uint32]TrapCode{},
	}
}

// compatibleImm is the immediate classifier: it reports whether imm fits the
// encoding slot ty. It is a pure function of its arguments.
func (m *MachineARM64) compatibleImm(imm int64, ty ImmType) bool {
	switch ty {
	case ImmTypeNone, ImmTypeNoneXzr:
		return false
	case ImmTypeBits8:
		return imm >= 0 && imm < 256
	case ImmTypeBits12:
		return imm >= 0 && imm < 0x1000
	case ImmTypeShift32:
		return imm >= 0 && imm < 32
	case ImmTypeShift32No0:
		return imm > 0 && imm < 32
	case ImmTypeShift64:
		return imm >= 0 && imm < 64
	case ImmTypeShift64No0:
		return imm > 0 && imm < 64
	case ImmTypeLogical32:
		return arm64.IsBitMaskImmediate32(uint32(imm))
	case ImmTypeLogical64:
		return arm64.IsBitMaskImmediate64(uint64(imm))
	case ImmTypeUnscaledOffset:
		return imm > -256 && imm < 256
	case ImmTypeOffsetByte:
		return imm >= 0 && imm < 0x1000
	case ImmTypeOffsetHWord:
		return imm&1 == 0 && imm >= 0 && imm < 0x2000
	case ImmTypeOffsetWord:
		return imm&3 == 0 && imm >= 0 && imm < 0x4000
	case ImmTypeOffsetDWord:
		return imm&7 == 0 && imm >= 0 && imm < 0x8000
	}
	return false
}

// GetVMCtxReg returns the register pinned to the VM context pointer.
func (m *MachineARM64) GetVMCtxReg() asm.Register {
	return arm64VMCtxRegister
}

// GetUsedGPRs returns every currently used general purpose register,
// including ones pinned with ReserveGPR, in register-number order.
func (m *MachineARM64) GetUsedGPRs() (ret []asm.Register) {
	for r := arm64.RegR0; r <= arm64.RegR30; r++ {
		if _, ok := m.usedGPRs[r]; ok {
			ret = append(ret, r)
		}
	}
	return
}

// GetUsedSIMD returns every currently used NEON register in register-number order.
func (m *MachineARM64) GetUsedSIMD() (ret []asm.Register) {
	for r := arm64.RegV0; r <= arm64.RegV31; r++ {
		if _, ok := m.usedSIMD[r]; ok {
			ret = append(ret, r)
		}
	}
	return
}

// PickGPR picks an unused allocatable general purpose register, if any.
func (m *MachineARM64) PickGPR() (asm.Register, bool) {
	for _, r := range arm64AllocatableGPRs {
		if _, ok := m.usedGPRs[r]; !ok {
			return r, true
		}
	}
	return asm.NilRegister, false
}

// PickTempGPR picks an unused general purpose register for internal temporary use.
func (m *MachineARM64) PickTempGPR() (asm.Register, bool) {
	for _, r := range arm64TempGPRs {
		if _, ok := m.usedGPRs[r]; !ok {
			return r, true
		}
	}
	return asm.NilRegister, false
}

// AcquireTempGPR picks a temporary register and marks it used. Exhaustion is
// a front-end bug, not a recoverable error.
func (m *MachineARM64) AcquireTempGPR() asm.Register {
	r, ok := m.PickTempGPR()
	if !ok {
		panic("BUG: out of temporary general purpose registers")
	}
	m.usedGPRs[r] = struct{}{}
	return r
}

// ReleaseGPR releases a previously acquired or reserved register.
func (m *MachineARM64) ReleaseGPR(r asm.Register) {
	if _, ok := m.usedGPRs[r]; !ok {
		panic(fmt.Sprintf("BUG: release of unused register %s", arm64.RegisterName(r)))
	}
	delete(m.usedGPRs, r)
}

// ReserveGPR force-marks the register used without picking it.
func (m *MachineARM64) ReserveGPR(r asm.Register) {
	m.usedGPRs[r] = struct{}{}
}

// ReserveUnusedTempGPR reserves the specific register, which must be free.
func (m *MachineARM64) ReserveUnusedTempGPR(r asm.Register) asm.Register {
	if _, ok := m.usedGPRs[r]; ok {
		panic(fmt.Sprintf("BUG: %s is already in use", arm64.RegisterName(r)))
	}
	m.usedGPRs[r] = struct{}{}
	return r
}

// PickSIMD picks an unused allocatable NEON register, if any.
func (m *MachineARM64) PickSIMD() (asm.Register, bool) {
	for _, r := range arm64AllocatableSIMDs {
		if _, ok := m.usedSIMD[r]; !ok {
			return r, true
		}
	}
	return asm.NilRegister, false
}

// PickTempSIMD picks an unused NEON register for internal temporary use.
func (m *MachineARM64) PickTempSIMD() (asm.Register, bool) {
	for _, r := range arm64TempSIMDs {
		if _, ok := m.usedSIMD[r]; !ok {
			return r, true
		}
	}
	return asm.NilRegister, false
}

// AcquireTempSIMD picks a temporary NEON register and marks it used.
func (m *MachineARM64) AcquireTempSIMD() asm.Register {
	r, ok := m.PickTempSIMD()
	if !ok {
		panic("BUG: out of temporary NEON registers")
	}
	m.usedSIMD[r] = struct{}{}
	return r
}

// ReserveSIMD force-marks the NEON register used.
func (m *MachineARM64) ReserveSIMD(r asm.Register) {
	m.usedSIMD[r] = struct{}{}
}

// ReleaseSIMD releases a previously acquired NEON register.
func (m *MachineARM64) ReleaseSIMD(r asm.Register) {
	if _, ok := m.usedSIMD[r]; !ok {
		panic(fmt.Sprintf("BUG: release of unused register %s", arm64.RegisterName(r)))
	}
	delete(m.usedSIMD, r)
}

// PushUsedGPR spills every used GPR with 8-byte pushes, padding with one XZR
// push when the count is odd so SP stays 16-byte aligned across the set.
// Returns the total SP adjustment in bytes.
func (m *MachineARM64) PushUsedGPR() int {
	used := m.GetUsedGPRs()
	if len(used)%2 == 1 {
		m.EmitPush(SizeS64, LocGPR(arm64.RegRZR))
	}
	for _, r := range used {
		m.EmitPush(SizeS64, LocGPR(r))
	}
	return ((len(used) + 1) / 2) * 16
}

// PopUsedGPR reverses PushUsedGPR.
func (m *MachineARM64) PopUsedGPR() {
	used := m.GetUsedGPRs()
	for i := len(used) - 1; i >= 0; i-- {
		m.EmitPop(SizeS64, LocGPR(used[i]))
	}
	if len(used)%2 == 1 {
		m.EmitPop(SizeS64, LocGPR(arm64.RegRZR))
	}
}

// PushUsedSIMD stores every used NEON register into a contiguous region below
// SP, with the same odd-count pad. Returns the SP adjustment in bytes.
func (m *MachineARM64) PushUsedSIMD() int {
	used := m.GetUsedSIMD()
	stackAdjust := uint32(len(used) * 8)
	if len(used)&1 == 1 {
		stackAdjust += 8
	}
	m.AdjustStack(stackAdjust)

	for i, r := range used {
		m.emitStr(SizeS64, LocSIMD(r), LocMemory(arm64.RegSP, int32(i*8)))
	}
	return int(stackAdjust)
}

// PopUsedSIMD reverses PushUsedSIMD.
func (m *MachineARM64) PopUsedSIMD() {
	used := m.GetUsedSIMD()
	for i, r := range used {
		m.emitLdr(SizeS64, LocSIMD(r), LocMemory(arm64.RegSP, int32(i*8)))
	}
	stackAdjust := uint32(len(used) * 8)
	if len(used)&1 == 1 {
		stackAdjust += 8
	}
	m.emitAdd(SizeS64, LocGPR(arm64.RegSP), LocImm32(stackAdjust), LocGPR(arm64.RegSP))
}

// SetSrcLoc sets the Wasm source location attributed to code emitted next.
func (m *MachineARM64) SetSrcLoc(offset uint32) {
	m.srcLoc = offset
}

// MarkAddressRangeWithTrapCode marks each byte in [begin, end) as trappable
// with the given code, and appends the range to the address map.
func (m *MachineARM64) MarkAddressRangeWithTrapCode(code TrapCode, begin, end uint) {
	for i := begin; i < end; i++ {
		m.trapTable[uint32(i)] = code
	}
	m.markInstructionAddressEnd(begin)
}

// MarkAddressWithTrapCode marks the current offset as trappable with the
// given code.
func (m *MachineARM64) MarkAddressWithTrapCode(code TrapCode) {
	offset := uint(m.assembler.Offset())
	m.trapTable[uint32(offset)] = code
	m.markInstructionAddressEnd(offset)
}

// MarkInstructionWithTrapCode marks the instruction about to be emitted as
// trappable with the given code and returns its offset.
func (m *MachineARM64) MarkInstructionWithTrapCode(code TrapCode) uint {
	offset := uint(m.assembler.Offset())
	m.trapTable[uint32(offset)] = code
	return offset
}

// markInstructionAddressEnd records the address-map entry covering
// [begin, current offset).
func (m *MachineARM64) markInstructionAddressEnd(begin uint) {
	m.instructionsAddressMap = append(m.instructionsAddressMap, InstructionAddressMap{
		SrcLoc:     m.srcLoc,
		CodeOffset: uint32(begin),
		CodeLen:    uint32(uint(m.assembler.Offset()) - begin),
	})
}

// InsertStackOverflow seeds offset 0 with StackOverflow so a trap taken at
// the very first instruction is correctly attributed.
func (m *MachineARM64) InsertStackOverflow() {
	const offset = 0
	m.trapTable[offset] = TrapCodeStackOverflow
	m.markInstructionAddressEnd(offset)
}

// CollectTrapInformation returns the trap table sorted by code offset.
func (m *MachineARM64) CollectTrapInformation() []TrapInformation {
	ret := make([]TrapInformation, 0, len(m.trapTable))
	for offset, code := range m.trapTable {
		ret = append(ret, TrapInformation{CodeOffset: offset, TrapCode: code})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].CodeOffset < ret[j].CodeOffset })
	return ret
}

// InstructionsAddressMap returns the address map in emission order.
func (m *MachineARM64) InstructionsAddressMap() []InstructionAddressMap {
	return m.instructionsAddressMap
}

// GetOffset returns the current assembler offset.
func (m *MachineARM64) GetOffset() uint {
	return uint(m.assembler.Offset())
}

// RoundStackAdjust rounds the value up to the 16-byte stack alignment.
func (m *MachineARM64) RoundStackAdjust(value int) int {
	if value&0xf != 0 {
		return ((value >> 4) + 1) << 4
	}
	return value
}

// LocalOnStack returns the location of a stack local at the given frame offset.
func (m *MachineARM64) LocalOnStack(stackOffset int32) Location {
	return LocMemory(arm64FramePointerRegister, -stackOffset)
}

// AdjustStack moves SP down to make room for locals.
func (m *MachineARM64) AdjustStack(delta uint32) {
	var d Location
	if m.compatibleImm(int64(delta), ImmTypeBits12) {
		d = LocImm32(delta)
	} else {
		d = LocGPR(arm64SPScratchRegister)
		m.emitMovImm(d, uint64(delta))
	}
	m.emitSub(SizeS64, LocGPR(arm64.RegSP), d, LocGPR(arm64.RegSP))
}

// RestoreStack moves SP back up by delta.
func (m *MachineARM64) RestoreStack(delta uint32) {
	var d Location
	if m.compatibleImm(int64(delta), ImmTypeBits12) {
		d = LocImm32(delta)
	} else {
		d = LocGPR(arm64SPScratchRegister)
		m.emitMovImm(d, uint64(delta))
	}
	m.emitAdd(SizeS64, LocGPR(arm64.RegSP), d, LocGPR(arm64.RegSP))
}

// PopStackLocals releases the stack-local area, rounding the delta up to keep
// the 16-byte alignment.
func (m *MachineARM64) PopStackLocals(delta uint32) {
	realDelta := delta
	if realDelta&15 != 0 {
		realDelta += 8
	}
	var d Location
	if m.compatibleImm(int64(realDelta), ImmTypeBits12) {
		d = LocImm32(realDelta)
	} else {
		d = LocGPR(arm64SPScratchRegister)
		m.emitMovImm(d, uint64(realDelta))
	}
	m.emitAdd(SizeS64, LocGPR(arm64.RegSP), d, LocGPR(arm64.RegSP))
}

// PushLocationForNative pushes a value for a native call, materialising
// 64-bit immediates through the SP scratch.
func (m *MachineARM64) PushLocationForNative(loc Location) {
	if loc.kind == locationKindImm64 {
		m.MoveLocation(SizeS64, loc, LocGPR(arm64SPScratchRegister))
		m.EmitPush(SizeS64, LocGPR(arm64SPScratchRegister))
	} else {
		m.EmitPush(SizeS64, loc)
	}
}

// ZeroLocation zeroes the given location through the zero register.
func (m *MachineARM64) ZeroLocation(size Size, location Location) {
	m.MoveLocation(size, LocGPR(arm64.RegRZR), location)
}

// LocalPointer returns the register stack locals are addressed from.
func (m *MachineARM64) LocalPointer() asm.Register {
	return arm64FramePointerRegister
}

// IsLocalOnStack reports whether the local at idx lives on the stack rather
// than in a callee-saved register.
func (m *MachineARM64) IsLocalOnStack(idx int) bool {
	return idx > 7
}

// GetLocalLocation determines a local's location: callee-saved registers for
// the first 8, then frame-relative slots beyond the callee-saved area.
func (m *MachineARM64) GetLocalLocation(idx int, calleeSavedRegsSize int) Location {
	if idx <= 7 {
		return LocGPR(arm64CalleeSavedLocalRegisters[idx])
	}
	return LocMemory(arm64FramePointerRegister, -int32((idx-3)*8+calleeSavedRegsSize))
}

// MoveLocal stores the given location into the stack local at stackOffset.
func (m *MachineARM64) MoveLocal(stackOffset int32, location Location) {
	if stackOffset < 256 {
		m.emitStur(SizeS64, location, arm64FramePointerRegister, -stackOffset)
	} else {
		tmp := arm64SPScratchRegister
		m.emitMovImm(LocGPR(tmp), uint64(stackOffset))
		m.emitSub(SizeS64, LocGPR(arm64FramePointerRegister), LocGPR(tmp), LocGPR(tmp))
		m.emitStr(SizeS64, location, LocMemory(tmp, 0))
	}
}

// ListToSave returns the extra locations to save for the calling convention;
// none are needed on arm64.
func (m *MachineARM64) ListToSave(CallingConvention) []Location {
	return nil
}

// GetParamLocation returns the location of the idx-th integer parameter under
// AAPCS64: the first 8 in X0..X7, the rest spilled to the caller frame.
func (m *MachineARM64) GetParamLocation(idx int, _ CallingConvention) Location {
	switch idx {
	case 0:
		return LocGPR(arm64.RegR0)
	case 1:
		return LocGPR(arm64.RegR1)
	case 2:
		return LocGPR(arm64.RegR2)
	case 3:
		return LocGPR(arm64.RegR3)
	case 4:
		return LocGPR(arm64.RegR4)
	case 5:
		return LocGPR(arm64.RegR5)
	case 6:
		return LocGPR(arm64.RegR6)
	case 7:
		return LocGPR(arm64.RegR7)
	default:
		return LocMemory(arm64FramePointerRegister, int32(16*2+(idx-8)*8))
	}
}

// offsetIsOk reports whether the offset fits the scaled unsigned immediate
// form of a load/store of the given size.
func (m *MachineARM64) offsetIsOk(size Size, offset int32) bool {
	if offset < 0 {
		return false
	}
	var shift int32
	switch size {
	case SizeS8:
		shift = 0
	case SizeS16:
		shift = 1
	case SizeS32:
		shift = 2
	case SizeS64:
		shift = 3
	}
	if offset >= 0x1000<<shift {
		return false
	}
	if offset&((1<<shift)-1) != 0 {
		return false
	}
	return true
}

// MoveLocation moves a value between two locations, materialising through
// the SP scratch when the addressing form requires it.
func (m *MachineARM64) MoveLocation(size Size, source, dest Location) {
	switch {
	case source.IsRegister():
		switch {
		case dest.IsRegister():
			m.emitMove(size, source, dest)
		case dest.IsMemory():
			addr, offs := dest.Register(), dest.MemoryOffset()
			if m.offsetIsOk(size, offs) {
				m.emitStr(size, source, dest)
			} else if m.compatibleImm(int64(offs), ImmTypeUnscaledOffset) {
				m.emitStur(size, source, addr, offs)
			} else {
				tmp := arm64SPScratchRegister
				if offs < 0 {
					m.emitMovImm(LocGPR(tmp), uint64(-offs))
					m.emitSub(SizeS64, LocGPR(addr), LocGPR(tmp), LocGPR(tmp))
				} else {
					m.emitMovImm(LocGPR(tmp), uint64(offs))
					m.emitAdd(SizeS64, LocGPR(addr), LocGPR(tmp), LocGPR(tmp))
				}
				m.emitStr(size, source, LocMemory(tmp, 0))
			}
		default:
			panic(fmt.Sprintf("singlepass can't emit move_location %s %s => %s", size, source, dest))
		}
	case source.kind == locationKindImm8:
		if dest.IsGPR() {
			m.emitMovImm(dest, uint64(source.ImmValue()))
		} else {
			panic(fmt.Sprintf("singlepass can't emit move_location %s %s => %s", size, source, dest))
		}
	case source.kind == locationKindImm32:
		if dest.IsGPR() {
			m.emitMovImm(dest, uint64(uint32(source.ImmValue())))
		} else {
			panic(fmt.Sprintf("singlepass can't emit move_location %s %s => %s", size, source, dest))
		}
	case source.kind == locationKindImm64:
		if dest.IsGPR() {
			m.emitMovImm(dest, uint64(source.ImmValue()))
		} else {
			panic(fmt.Sprintf("singlepass can't emit move_location %s %s => %s", size, source, dest))
		}
	case source.IsMemory():
		if dest.IsRegister() {
			addr, offs := source.Register(), source.MemoryOffset()
			if m.offsetIsOk(size, offs) {
				m.emitLdr(size, dest, source)
			} else if offs > -256 && offs < 256 {
				m.emitLdur(size, dest, addr, offs)
			} else {
				tmp := arm64SPScratchRegister
				if offs < 0 {
					m.emitMovImm(LocGPR(tmp), uint64(-offs))
					m.emitSub(SizeS64, LocGPR(addr), LocGPR(tmp), LocGPR(tmp))
				} else {
					m.emitMovImm(LocGPR(tmp), uint64(offs))
					m.emitAdd(SizeS64, LocGPR(addr), LocGPR(tmp), LocGPR(tmp))
				}
				m.emitLdr(size, dest, LocMemory(tmp, 0))
			}
		} else {
			var temps []asm.Register
			src := m.locationToReg(size, source, &temps, ImmTypeNone, true, asm.NilRegister)
			m.MoveLocation(size, src, dest)
			for _, r := range temps {
				m.ReleaseGPR(r)
			}
		}
	default:
		panic(fmt.Sprintf("singlepass can't emit move_location %s %s => %s", size, source, dest))
	}
}

// MoveLocationExtend is not available on this target.
func (m *MachineARM64) MoveLocationExtend(Size, bool, Location, Size, Location) {
	unimplemented("move_location_extend")
}

// LoadAddress is not available on this target.
func (m *MachineARM64) LoadAddress(Size, Location, Location) {
	unimplemented("load_address")
}

// InitStackLoc zeroes initStackLocCnt stack locals, walking upward from
// lastStackLoc with a post-indexed store loop.
func (m *MachineARM64) InitStackLoc(initStackLocCnt uint64, lastStackLoc Location) {
	if !lastStackLoc.IsMemory() {
		panic(fmt.Sprintf("singlepass can't emit init_stack_loc %s", lastStackLoc))
	}

	label := m.assembler.NewLabel()
	var temps []asm.Register
	dest := m.AcquireTempGPR()
	temps = append(temps, dest)
	cnt := m.locationToReg(SizeS64, LocImm64(initStackLocCnt), &temps, ImmTypeNone, true, asm.NilRegister)

	reg, offset := lastStackLoc.Register(), lastStackLoc.MemoryOffset()
	if offset < 0 {
		offset := uint32(-offset)
		if m.compatibleImm(int64(offset), ImmTypeBits12) {
			m.emitSub(SizeS64, LocGPR(reg), LocImm32(offset), LocGPR(dest))
		} else {
			tmp := m.AcquireTempGPR()
			temps = append(temps, tmp)
			m.emitMovImm(LocGPR(tmp), uint64(offset))
			m.emitSub(SizeS64, LocGPR(reg), LocGPR(tmp), LocGPR(dest))
		}
	} else {
		offset := uint32(offset)
		if m.compatibleImm(int64(offset), ImmTypeBits12) {
			m.emitAdd(SizeS64, LocGPR(reg), LocImm32(offset), LocGPR(dest))
		} else {
			tmp := m.AcquireTempGPR()
			temps = append(temps, tmp)
			m.emitMovImm(LocGPR(tmp), uint64(offset))
			m.emitAdd(SizeS64, LocGPR(reg), LocGPR(tmp), LocGPR(dest))
		}
	}

	m.assembler.BindLabel(label)
	// str xzr, [dest], #8
	m.emitStria(SizeS64, LocGPR(arm64.RegRZR), dest, 8)
	m.emitSub(SizeS64, cnt, LocImm8(1), cnt)
	m.emitCbnzLabel(SizeS64, cnt, label)

	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// RestoreSavedArea points SP back at the callee-saved save area and
// resynchronises the push parity from its size.
func (m *MachineARM64) RestoreSavedArea(savedAreaOffset int32) {
	realDelta := savedAreaOffset
	if realDelta&15 != 0 {
		m.pushed = true
		realDelta += 8
	} else {
		m.pushed = false
	}
	if m.compatibleImm(int64(realDelta), ImmTypeBits12) {
		m.emitSub(SizeS64, LocGPR(arm64FramePointerRegister), LocImm32(uint32(realDelta)), LocGPR(arm64.RegSP))
	} else {
		tmp := m.AcquireTempGPR()
		m.emitMovImm(LocGPR(tmp), uint64(realDelta))
		m.emitSub(SizeS64, LocGPR(arm64FramePointerRegister), LocGPR(tmp), LocGPR(arm64.RegSP))
		m.ReleaseGPR(tmp)
	}
}

// PopLocation pops an 8-byte value into the given location.
func (m *MachineARM64) PopLocation(location Location) {
	m.EmitPop(SizeS64, location)
}

// Finalize consumes the machine and produces the emitted code.
func (m *MachineARM64) Finalize() ([]byte, error) {
	return m.assembler.Assemble()
}

// EmitFunctionProlog emits the frame establishment: paired pushes of
// (FP, LR) and (X27, vmctx), then FP = SP.
func (m *MachineARM64) EmitFunctionProlog() {
	m.emitDoublePush(SizeS64, LocGPR(arm64FramePointerRegister), LocGPR(arm64LinkRegister)) // save LR too
	m.emitDoublePush(SizeS64, LocGPR(arm64CallScratchRegister), LocGPR(arm64VMCtxRegister))
	// Cannot use MOV, because the SP operand there encodes the zero register.
	// Need ADD with #0.
	m.emitAdd(SizeS64, LocGPR(arm64.RegSP), LocImm8(0), LocGPR(arm64FramePointerRegister))
}

// EmitFunctionEpilog reverses the prolog. SP is known 16-byte aligned after
// the restore, so the push parity is forced back to even.
func (m *MachineARM64) EmitFunctionEpilog() {
	// Cannot use MOV, because the SP operand there encodes the zero register.
	// Need ADD with #0.
	m.emitAdd(SizeS64, LocGPR(arm64FramePointerRegister), LocImm8(0), LocGPR(arm64.RegSP))
	m.pushed = false // SP is restored, consider it aligned.
	m.emitDoublePop(SizeS64, LocGPR(arm64CallScratchRegister), LocGPR(arm64VMCtxRegister))
	m.emitDoublePop(SizeS64, LocGPR(arm64FramePointerRegister), LocGPR(arm64LinkRegister))
}

// EmitFunctionReturnValue moves the return value into the integer return
// register, canonicalising NaNs when requested and supported.
func (m *MachineARM64) EmitFunctionReturnValue(ty wasm.ValueType, canonicalize bool, loc Location) {
	if canonicalize && m.ArchSupportsCanonicalizeNan() {
		var sz Size
		switch ty {
		case wasm.ValueTypeF32:
			sz = SizeS32
		case wasm.ValueTypeF64:
			sz = SizeS64
		default:
			panic("BUG: canonicalization of a non-float return")
		}
		m.CanonicalizeNan(sz, loc, LocGPR(arm64.RegR0))
	} else {
		m.EmitRelaxedMov(SizeS64, loc, LocGPR(arm64.RegR0))
	}
}

// EmitFunctionReturnFloat moves the integer return register into the float
// return register for float-returning functions.
func (m *MachineARM64) EmitFunctionReturnFloat() {
	m.MoveLocation(SizeS64, LocGPR(arm64.RegR0), LocSIMD(arm64.RegV0))
}

// ArchSupportsCanonicalizeNan reports whether NaN canonicalisation is
// implemented on this target.
func (m *MachineARM64) ArchSupportsCanonicalizeNan() bool {
	return false
}

// CanonicalizeNan is not available on this target.
func (m *MachineARM64) CanonicalizeNan(Size, Location, Location) {
	unimplemented("canonicalize_nan")
}

// EmitIllegalOp emits a breakpoint-class instruction that faults when executed.
func (m *MachineARM64) EmitIllegalOp() {
	m.assembler.CompileStandAlone(arm64.BRK)
}

// GetLabel returns a fresh label.
func (m *MachineARM64) GetLabel() asm.Label {
	return m.assembler.NewLabel()
}

// EmitLabel binds the label at the current offset.
func (m *MachineARM64) EmitLabel(label asm.Label) {
	m.assembler.BindLabel(label)
}

// GetGPRForCall returns the register indirect calls go through.
func (m *MachineARM64) GetGPRForCall() asm.Register {
	return arm64CallScratchRegister
}

// EmitCallRegister emits an indirect call through the given register.
func (m *MachineARM64) EmitCallRegister(reg asm.Register) {
	m.assembler.CompileJumpToRegister(arm64.BLR, reg)
}

// EmitCallLabel emits a direct call to the given label.
func (m *MachineARM64) EmitCallLabel(label asm.Label) {
	m.assembler.CompileBranchToLabel(arm64.BL, label)
}

// GetGPRForRet returns the integer return register.
func (m *MachineARM64) GetGPRForRet() asm.Register {
	return arm64.RegR0
}

// GetSIMDForRet returns the float return register.
func (m *MachineARM64) GetSIMDForRet() asm.Register {
	return arm64.RegV0
}

// EmitDebugBreakpoint emits a debugger breakpoint.
func (m *MachineARM64) EmitDebugBreakpoint() {
	m.assembler.CompileStandAlone(arm64.BRK)
}

// EmitCallLocation calls through an arbitrary location, materialised into the
// call scratch register if needed.
func (m *MachineARM64) EmitCallLocation(location Location) {
	var temps []asm.Register
	loc := m.locationToReg(SizeS64, location, &temps, ImmTypeNone, true, arm64CallScratchRegister)
	if !loc.IsGPR() {
		panic("BUG: call target did not legalise to a register")
	}
	m.assembler.CompileJumpToRegister(arm64.BLR, loc.Register())
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// LocationAddress is not available on this target.
func (m *MachineARM64) LocationAddress(Size, Location, Location) {
	unimplemented("location_address")
}

// LocationAnd is not available on this target.
func (m *MachineARM64) LocationAnd(Size, Location, Location, bool) {
	unimplemented("location_and")
}

// LocationXor is not available on this target.
func (m *MachineARM64) LocationXor(Size, Location, Location, bool) {
	unimplemented("location_xor")
}

// LocationOr is not available on this target.
func (m *MachineARM64) LocationOr(Size, Location, Location, bool) {
	unimplemented("location_or")
}

// LocationTest is not available on this target.
func (m *MachineARM64) LocationTest(Size, Location, Location) {
	unimplemented("location_test")
}

// LocationAdd adds source into dest, optionally setting flags.
func (m *MachineARM64) LocationAdd(size Size, source, dest Location, flags bool) {
	var temps []asm.Register
	src := m.locationToReg(size, source, &temps, ImmTypeBits12, true, asm.NilRegister)
	dst := m.locationToReg(size, dest, &temps, ImmTypeNone, true, asm.NilRegister)
	if flags {
		m.emitAdds(size, dst, src, dst)
	} else {
		m.emitAdd(size, dst, src, dst)
	}
	if dst != dest {
		m.MoveLocation(size, dst, dest)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// LocationSub subtracts source from dest, optionally setting flags.
func (m *MachineARM64) LocationSub(size Size, source, dest Location, flags bool) {
	var temps []asm.Register
	src := m.locationToReg(size, source, &temps, ImmTypeBits12, true, asm.NilRegister)
	dst := m.locationToReg(size, dest, &temps, ImmTypeNone, true, asm.NilRegister)
	if flags {
		m.emitSubs(size, dst, src, dst)
	} else {
		m.emitSub(size, dst, src, dst)
	}
	if dst != dest {
		m.MoveLocation(size, dst, dest)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// LocationCmp compares dest against source.
func (m *MachineARM64) LocationCmp(size Size, source, dest Location) {
	m.emitRelaxedBinop(m.emitCmp, size, source, dest, false)
}

// JmpUnconditional jumps to the label.
func (m *MachineARM64) JmpUnconditional(label asm.Label) {
	m.assembler.CompileBranchToLabel(arm64.B, label)
}

// JmpOnEqual jumps to the label when the zero flag is set.
func (m *MachineARM64) JmpOnEqual(label asm.Label) {
	m.assembler.CompileBranchToLabel(arm64.BCONDEQ, label)
}

// JmpOnDifferent jumps to the label when the zero flag is clear.
func (m *MachineARM64) JmpOnDifferent(label asm.Label) {
	m.assembler.CompileBranchToLabel(arm64.BCONDNE, label)
}

// JmpOnAbove jumps on unsigned strictly-above.
func (m *MachineARM64) JmpOnAbove(label asm.Label) {
	m.assembler.CompileBranchToLabel(arm64.BCONDHI, label)
}

// JmpOnAboveEqual jumps on unsigned above-or-equal (carry set).
func (m *MachineARM64) JmpOnAboveEqual(label asm.Label) {
	m.assembler.CompileBranchToLabel(arm64.BCONDHS, label)
}

// JmpOnBelowEqual jumps on unsigned below-or-equal.
func (m *MachineARM64) JmpOnBelowEqual(label asm.Label) {
	m.assembler.CompileBranchToLabel(arm64.BCONDLS, label)
}

// JmpOnOverflow jumps on carry set, used after overflow-checked additions.
func (m *MachineARM64) JmpOnOverflow(label asm.Label) {
	m.assembler.CompileBranchToLabel(arm64.BCONDHS, label)
}

// EmitJmpToJumptable loads the jump-table base bound to label, adds the
// scaled index and branches into the table of 4-byte-spaced entries.
func (m *MachineARM64) EmitJmpToJumptable(label asm.Label, cond Location) {
	tmp1 := m.AcquireTempGPR()
	tmp2 := m.AcquireTempGPR()

	m.assembler.CompileLoadLabelAddress(tmp1, label)
	m.MoveLocation(SizeS32, cond, LocGPR(tmp2))

	// tmp2 = tmp1 + (tmp2 << 2)
	m.emitAddLsl(SizeS64, LocGPR(tmp1), LocGPR(tmp2), 2, LocGPR(tmp2))
	m.assembler.CompileJumpToRegister(arm64.BR, tmp2)
	m.ReleaseGPR(tmp2)
	m.ReleaseGPR(tmp1)
}

// AlignForLoop aligns loop headers; nothing to do on arm64.
func (m *MachineARM64) AlignForLoop() {
}

// EmitRet emits a return.
func (m *MachineARM64) EmitRet() {
	m.assembler.CompileStandAlone(arm64.RET)
}

// EmitMemoryFence emits a full data memory barrier.
func (m *MachineARM64) EmitMemoryFence() {
	m.assembler.CompileStandAlone(arm64.DMB)
}

// LocationNeg is not available on this target.
func (m *MachineARM64) LocationNeg(Size, bool, Location, Size, Location) {
	unimplemented("location_neg")
}

// EmitImulImm32 multiplies the register in place by a 32-bit constant.
func (m *MachineARM64) EmitImulImm32(size Size, imm32 uint32, gpr asm.Register) {
	tmp := m.AcquireTempGPR()
	m.emitMovImm(LocGPR(tmp), uint64(imm32))
	m.emitMul(size, LocGPR(gpr), LocGPR(tmp), LocGPR(gpr))
	m.ReleaseGPR(tmp)
}

// EmitPush pushes an 8-byte value, toggling the SP parity: on an even
// boundary SP drops by 16 and the value lands in the upper slot; on an odd
// boundary the value fills the lower slot already reserved.
func (m *MachineARM64) EmitPush(sz Size, src Location) {
	switch {
	case sz == SizeS64 && src.IsRegister():
		var offset int32
		if !m.pushed {
			m.emitSub(SizeS64, LocGPR(arm64.RegSP), LocImm8(16), LocGPR(arm64.RegSP))
			offset = 8
		}
		m.emitStur(SizeS64, src, arm64.RegSP, offset)
		m.pushed = !m.pushed
	case sz == SizeS64:
		var temps []asm.Register
		v := m.locationToReg(sz, src, &temps, ImmTypeNone, true, asm.NilRegister)
		var offset int32
		if !m.pushed {
			m.emitSub(SizeS64, LocGPR(arm64.RegSP), LocImm8(16), LocGPR(arm64.RegSP))
			offset = 8
		}
		m.emitStur(SizeS64, v, arm64.RegSP, offset)
		m.pushed = !m.pushed
		for _, r := range temps {
			m.ReleaseGPR(r)
		}
	default:
		panic(fmt.Sprintf("singlepass can't emit PUSH %s %s", sz, src))
	}
}

// emitDoublePush pushes two values, preferring a single STP when SP parity allows.
func (m *MachineARM64) emitDoublePush(sz Size, src1, src2 Location) {
	if !m.pushed && sz == SizeS64 && src1.IsGPR() && src2.IsGPR() {
		m.assembler.CompileTwoRegistersToMemoryPreIndexed(arm64.STP, src1.Register(), src2.Register(), arm64.RegSP, 16)
	} else {
		m.EmitPush(sz, src1)
		m.EmitPush(sz, src2)
	}
}

// EmitPop pops an 8-byte value, toggling the SP parity and releasing the
// 16-byte slot only when its second half is consumed.
func (m *MachineARM64) EmitPop(sz Size, dst Location) {
	switch {
	case sz == SizeS64 && dst.IsRegister():
		var offset int32
		if m.pushed {
			offset = 8
		}
		m.emitLdur(SizeS64, dst, arm64.RegSP, offset)
		if m.pushed {
			m.emitAdd(SizeS64, LocGPR(arm64.RegSP), LocImm8(16), LocGPR(arm64.RegSP))
		}
		m.pushed = !m.pushed
	default:
		panic(fmt.Sprintf("singlepass can't emit POP %s %s", sz, dst))
	}
}

// emitDoublePop pops two values, preferring a single LDP when SP parity allows.
func (m *MachineARM64) emitDoublePop(sz Size, dst1, dst2 Location) {
	if !m.pushed && sz == SizeS64 && dst1.IsGPR() && dst2.IsGPR() {
		m.assembler.CompileMemoryToTwoRegistersPostIndexed(arm64.LDP, arm64.RegSP, 16, dst1.Register(), dst2.Register())
	} else {
		m.EmitPop(sz, dst2)
		m.EmitPop(sz, dst1)
	}
}

// MoveWithReloc materialises a linker-resolved 64-bit address into the call
// scratch register as four MOVKs, recording one relocation per quarter.
func (m *MachineARM64) MoveWithReloc(target RelocationTarget, relocations *[]Relocation) {
	for i, kind := range []RelocationKind{
		RelocationKindArm64Movw0, RelocationKindArm64Movw1, RelocationKindArm64Movw2, RelocationKindArm64Movw3,
	} {
		*relocations = append(*relocations, Relocation{
			Kind:   kind,
			Target: target,
			Offset: uint32(m.assembler.Offset()),
			Addend: 0,
		})
		m.assembler.CompileConstShiftedToRegister(arm64.MOVK, 0, int64(i*16), arm64CallScratchRegister)
	}
}

// EmitRelaxedMov moves src to dst accepting any pair of locations.
func (m *MachineARM64) EmitRelaxedMov(sz Size, src, dst Location) {
	m.emitRelaxedBinop(m.emitMove, sz, src, dst, true)
}

// EmitRelaxedCmp compares dst against src accepting any pair of locations.
func (m *MachineARM64) EmitRelaxedCmp(sz Size, src, dst Location) {
	m.emitRelaxedBinop(m.emitCmp, sz, src, dst, false)
}

// EmitRelaxedZeroExtension is not available on this target.
func (m *MachineARM64) EmitRelaxedZeroExtension(Size, Location, Size, Location) {
	unimplemented("emit_relaxed_zero_extension")
}

// EmitRelaxedSignExtension sign-extends src into dst, using the
// sign-extending load forms when the source is in memory.
func (m *MachineARM64) EmitRelaxedSignExtension(szSrc Size, src Location, szDst Size, dst Location) {
	if src.IsMemory() && dst.IsGPR() {
		switch szSrc {
		case SizeS8:
			m.emitRelaxedLdr8S(szDst, dst, src)
		case SizeS16:
			m.emitRelaxedLdr16S(szDst, dst, src)
		case SizeS32:
			m.emitRelaxedLdr32S(szDst, dst, src)
		default:
			panic("BUG: sign extension from s64")
		}
		return
	}
	var temps []asm.Register
	s := m.locationToReg(szDst, src, &temps, ImmTypeNone, true, asm.NilRegister)
	dest := m.locationToReg(szDst, dst, &temps, ImmTypeNone, false, asm.NilRegister)
	switch szSrc {
	case SizeS8:
		m.emitSxtb(szDst, s, dest)
	case SizeS16:
		m.emitSxth(szDst, s, dest)
	case SizeS32:
		m.emitSxtw(szDst, s, dest)
	default:
		panic("BUG: sign extension from s64")
	}
	if dst != dest {
		m.MoveLocation(szDst, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// locationToReg legalises src for an instruction expecting a register or an
// immediate of kind allowImm: registers pass through, compatible immediates
// stay immediates (a zero under NoneXzr becomes the zero register), and
// everything else is materialised into wanted or a fresh temporary, which is
// appended to temps for the caller to release.
func (m *MachineARM64) locationToReg(sz Size, src Location, temps *[]asm.Register, allowImm ImmType, readVal bool, wanted asm.Register) Location {
	switch src.kind {
	case locationKindGPR, locationKindSIMD:
		return src
	case locationKindImm8, locationKindImm32, locationKindImm64:
		val := src.ImmValue()
		if src.kind == locationKindImm32 {
			val = int64(uint32(val))
		}
		if allowImm == ImmTypeNoneXzr && val == 0 {
			return LocGPR(arm64.RegRZR)
		}
		if m.compatibleImm(val, allowImm) {
			return src
		}
		tmp := wanted
		if tmp == asm.NilRegister {
			tmp = m.AcquireTempGPR()
			*temps = append(*temps, tmp)
		}
		m.emitMovImm(LocGPR(tmp), uint64(val))
		return LocGPR(tmp)
	case locationKindMemory:
		tmp := wanted
		if tmp == asm.NilRegister {
			tmp = m.AcquireTempGPR()
			*temps = append(*temps, tmp)
		}
		if readVal {
			offsize := ImmTypeOffsetDWord
			if sz == SizeS32 {
				offsize = ImmTypeOffsetWord
			}
			reg, val := src.Register(), int64(src.MemoryOffset())
			if m.compatibleImm(val, offsize) {
				m.emitLdr(sz, LocGPR(tmp), src)
			} else if m.compatibleImm(val, ImmTypeUnscaledOffset) {
				m.emitLdur(sz, LocGPR(tmp), reg, int32(val))
			} else {
				if reg == tmp {
					panic("BUG: memory base aliases the materialisation target")
				}
				m.emitMovImm(LocGPR(tmp), uint64(val))
				m.emitLdr(sz, LocGPR(tmp), LocMemory2(reg, tmp, MultiplierOne, 0))
			}
		}
		return LocGPR(tmp)
	default:
		panic(fmt.Sprintf("singlepass can't emit location_to_reg %s %s", sz, src))
	}
}

// locationToNEON mirrors locationToReg for NEON operands: a GPR source is
// copied into a NEON temporary with a typed move, an immediate is
// materialised GPR-first.
func (m *MachineARM64) locationToNEON(sz Size, src Location, temps *[]asm.Register, allowImm ImmType, readVal bool) Location {
	switch src.kind {
	case locationKindSIMD:
		return src
	case locationKindGPR:
		tmp := m.AcquireTempSIMD()
		*temps = append(*temps, tmp)
		if readVal {
			m.emitMove(sz, src, LocSIMD(tmp))
		}
		return LocSIMD(tmp)
	case locationKindImm8, locationKindImm32, locationKindImm64:
		val := src.ImmValue()
		if src.kind == locationKindImm32 {
			val = int64(uint32(val))
		}
		if m.compatibleImm(val, allowImm) {
			return src
		}
		gpr := m.AcquireTempGPR()
		tmp := m.AcquireTempSIMD()
		*temps = append(*temps, tmp)
		m.emitMovImm(LocGPR(gpr), uint64(val))
		m.emitMove(sz, LocGPR(gpr), LocSIMD(tmp))
		m.ReleaseGPR(gpr)
		return LocSIMD(tmp)
	case locationKindMemory:
		tmp := m.AcquireTempSIMD()
		*temps = append(*temps, tmp)
		if readVal {
			offsize := ImmTypeOffsetDWord
			if sz == SizeS32 {
				offsize = ImmTypeOffsetWord
			}
			reg, val := src.Register(), int64(src.MemoryOffset())
			if m.compatibleImm(val, offsize) {
				m.emitLdr(sz, LocSIMD(tmp), src)
			} else if m.compatibleImm(val, ImmTypeUnscaledOffset) {
				m.emitLdur(sz, LocSIMD(tmp), reg, int32(val))
			} else {
				gpr := m.AcquireTempGPR()
				m.emitMovImm(LocGPR(gpr), uint64(val))
				m.emitLdr(sz, LocSIMD(tmp), LocMemory2(reg, gpr, MultiplierOne, 0))
				m.ReleaseGPR(gpr)
			}
		}
		return LocSIMD(tmp)
	default:
		panic(fmt.Sprintf("singlepass can't emit location_to_neon %s %s", sz, src))
	}
}

// binopFunc is a two-operand emitter over legalised locations.
type binopFunc func(sz Size, src, dst Location)

// binop3Func is a three-operand emitter over legalised locations.
type binop3Func func(sz Size, src1, src2, dst Location)

// emitRelaxedBinop legalises both operands, runs op, and writes the result
// back when the destination was materialised into a scratch.
func (m *MachineARM64) emitRelaxedBinop(op binopFunc, sz Size, src, dst Location, putback bool) {
	var temps []asm.Register
	srcImm := ImmTypeBits12
	if putback {
		srcImm = ImmTypeNone
	}
	s := m.locationToReg(sz, src, &temps, srcImm, true, asm.NilRegister)
	dest := m.locationToReg(sz, dst, &temps, ImmTypeNone, !putback, asm.NilRegister)
	op(sz, s, dest)
	if dst != dest && putback {
		m.MoveLocation(sz, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// emitRelaxedBinopNEON is emitRelaxedBinop over NEON operands.
func (m *MachineARM64) emitRelaxedBinopNEON(op binopFunc, sz Size, src, dst Location, putback bool) {
	var temps []asm.Register
	s := m.locationToNEON(sz, src, &temps, ImmTypeNone, true)
	dest := m.locationToNEON(sz, dst, &temps, ImmTypeNone, !putback)
	op(sz, s, dest)
	if dst != dest && putback {
		m.MoveLocation(sz, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseSIMD(r)
	}
}

// emitRelaxedBinop3 legalises the three-operand form; dst is never a read
// source so no load is emitted for it.
func (m *MachineARM64) emitRelaxedBinop3(op binop3Func, sz Size, src1, src2, dst Location, allowImm ImmType) {
	var temps []asm.Register
	s1 := m.locationToReg(sz, src1, &temps, ImmTypeNone, true, asm.NilRegister)
	s2 := m.locationToReg(sz, src2, &temps, allowImm, true, asm.NilRegister)
	dest := m.locationToReg(sz, dst, &temps, ImmTypeNone, false, asm.NilRegister)
	op(sz, s1, s2, dest)
	if dst != dest {
		m.MoveLocation(sz, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// emitRelaxedBinop3NEON is emitRelaxedBinop3 over NEON operands.
func (m *MachineARM64) emitRelaxedBinop3NEON(op binop3Func, sz Size, src1, src2, dst Location, allowImm ImmType) {
	var temps []asm.Register
	s1 := m.locationToNEON(sz, src1, &temps, ImmTypeNone, true)
	s2 := m.locationToNEON(sz, src2, &temps, allowImm, true)
	dest := m.locationToNEON(sz, dst, &temps, ImmTypeNone, false)
	op(sz, s1, s2, dest)
	if dst != dest {
		m.MoveLocation(sz, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseSIMD(r)
	}
}

// emitCmpopDynamicB emits a comparison of locA against locB and sets ret to
// the boolean result of cond, through a scratch when ret is in memory.
func (m *MachineARM64) emitCmpopDynamicB(sz Size, cond asm.ConditionalRegisterState, locA, locB, ret Location) {
	switch {
	case ret.IsGPR():
		m.EmitRelaxedCmp(sz, locB, locA)
		m.emitCset(SizeS32, ret, cond)
	case ret.IsMemory():
		tmp := m.AcquireTempGPR()
		m.EmitRelaxedCmp(sz, locB, locA)
		m.emitCset(SizeS32, LocGPR(tmp), cond)
		m.MoveLocation(SizeS32, LocGPR(tmp), ret)
		m.ReleaseGPR(tmp)
	default:
		panic(fmt.Sprintf("singlepass can't emit cmpop to %s", ret))
	}
}
