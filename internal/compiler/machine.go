package compiler

import (
	"github.com/tetratelabs/singlepass/internal/asm"
	"github.com/tetratelabs/singlepass/internal/wasm"
)

// Machine is the capability set a single-pass backend exposes to the function
// compiler: register accounting, frame and stack management, operand moves,
// and one emission method per Wasm operator family. The front end drives it
// in one forward sweep per function and finally consumes it via Finalize.
type Machine interface {
	// Register accounting.

	GetVMCtxReg() asm.Register
	GetUsedGPRs() []asm.Register
	GetUsedSIMD() []asm.Register
	PickGPR() (asm.Register, bool)
	PickTempGPR() (asm.Register, bool)
	AcquireTempGPR() asm.Register
	ReleaseGPR(r asm.Register)
	ReserveGPR(r asm.Register)
	ReserveUnusedTempGPR(r asm.Register) asm.Register
	PickSIMD() (asm.Register, bool)
	PickTempSIMD() (asm.Register, bool)
	AcquireTempSIMD() asm.Register
	ReserveSIMD(r asm.Register)
	ReleaseSIMD(r asm.Register)
	PushUsedGPR() int
	PopUsedGPR()
	PushUsedSIMD() int
	PopUsedSIMD()

	// Trap and address-map bookkeeping.

	SetSrcLoc(offset uint32)
	MarkAddressRangeWithTrapCode(code TrapCode, begin, end uint)
	MarkAddressWithTrapCode(code TrapCode)
	MarkInstructionWithTrapCode(code TrapCode) uint
	InsertStackOverflow()
	CollectTrapInformation() []TrapInformation
	InstructionsAddressMap() []InstructionAddressMap
	GetOffset() uint

	// Frame and stack management.

	RoundStackAdjust(value int) int
	LocalOnStack(stackOffset int32) Location
	AdjustStack(delta uint32)
	RestoreStack(delta uint32)
	PopStackLocals(delta uint32)
	PushLocationForNative(loc Location)
	ZeroLocation(size Size, location Location)
	LocalPointer() asm.Register
	IsLocalOnStack(idx int) bool
	GetLocalLocation(idx int, calleeSavedRegsSize int) Location
	MoveLocal(stackOffset int32, location Location)
	ListToSave(conv CallingConvention) []Location
	GetParamLocation(idx int, conv CallingConvention) Location
	MoveLocation(size Size, source, dest Location)
	MoveLocationExtend(sizeVal Size, signed bool, source Location, sizeOp Size, dest Location)
	LoadAddress(size Size, reg, mem Location)
	InitStackLoc(initStackLocCnt uint64, lastStackLoc Location)
	RestoreSavedArea(savedAreaOffset int32)
	PopLocation(location Location)
	EmitPush(sz Size, src Location)
	EmitPop(sz Size, dst Location)
	Finalize() ([]byte, error)

	// Function framing, control flow and calls.

	EmitFunctionProlog()
	EmitFunctionEpilog()
	EmitFunctionReturnValue(ty wasm.ValueType, canonicalize bool, loc Location)
	EmitFunctionReturnFloat()
	ArchSupportsCanonicalizeNan() bool
	CanonicalizeNan(sz Size, input, output Location)
	EmitIllegalOp()
	GetLabel() asm.Label
	EmitLabel(label asm.Label)
	GetGPRForCall() asm.Register
	EmitCallRegister(reg asm.Register)
	EmitCallLabel(label asm.Label)
	GetGPRForRet() asm.Register
	GetSIMDForRet() asm.Register
	EmitDebugBreakpoint()
	EmitCallLocation(location Location)
	JmpUnconditional(label asm.Label)
	JmpOnEqual(label asm.Label)
	JmpOnDifferent(label asm.Label)
	JmpOnAbove(label asm.Label)
	JmpOnAboveEqual(label asm.Label)
	JmpOnBelowEqual(label asm.Label)
	JmpOnOverflow(label asm.Label)
	EmitJmpToJumptable(label asm.Label, cond Location)
	AlignForLoop()
	EmitRet()
	EmitMemoryFence()
	MoveWithReloc(target RelocationTarget, relocations *[]Relocation)

	// Generic location arithmetic.

	LocationAddress(size Size, source, dest Location)
	LocationAnd(size Size, source, dest Location, flags bool)
	LocationXor(size Size, source, dest Location, flags bool)
	LocationOr(size Size, source, dest Location, flags bool)
	LocationTest(size Size, source, dest Location)
	LocationAdd(size Size, source, dest Location, flags bool)
	LocationSub(size Size, source, dest Location, flags bool)
	LocationCmp(size Size, source, dest Location)
	LocationNeg(sizeVal Size, signed bool, source Location, sizeOp Size, dest Location)
	EmitImulImm32(size Size, imm32 uint32, gpr asm.Register)
	EmitRelaxedMov(sz Size, src, dst Location)
	EmitRelaxedCmp(sz Size, src, dst Location)
	EmitRelaxedZeroExtension(szSrc Size, src Location, szDst Size, dst Location)
	EmitRelaxedSignExtension(szSrc Size, src Location, szDst Size, dst Location)

	// i32 ALU.

	EmitBinopAdd32(locA, locB, ret Location)
	EmitBinopSub32(locA, locB, ret Location)
	EmitBinopMul32(locA, locB, ret Location)
	EmitBinopUdiv32(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint
	EmitBinopSdiv32(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint
	EmitBinopUrem32(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint
	EmitBinopSrem32(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint
	EmitBinopAnd32(locA, locB, ret Location)
	EmitBinopOr32(locA, locB, ret Location)
	EmitBinopXor32(locA, locB, ret Location)
	I32CmpGeS(locA, locB, ret Location)
	I32CmpGtS(locA, locB, ret Location)
	I32CmpLeS(locA, locB, ret Location)
	I32CmpLtS(locA, locB, ret Location)
	I32CmpGeU(locA, locB, ret Location)
	I32CmpGtU(locA, locB, ret Location)
	I32CmpLeU(locA, locB, ret Location)
	I32CmpLtU(locA, locB, ret Location)
	I32CmpNe(locA, locB, ret Location)
	I32CmpEq(locA, locB, ret Location)
	I32Clz(src, dst Location)
	I32Ctz(src, dst Location)
	I32Popcnt(loc, ret Location)
	I32Shl(locA, locB, ret Location)
	I32Shr(locA, locB, ret Location)
	I32Sar(locA, locB, ret Location)
	I32Rol(locA, locB, ret Location)
	I32Ror(locA, locB, ret Location)

	// i64 ALU.

	EmitBinopAdd64(locA, locB, ret Location)
	EmitBinopSub64(locA, locB, ret Location)
	EmitBinopMul64(locA, locB, ret Location)
	EmitBinopUdiv64(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint
	EmitBinopSdiv64(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint
	EmitBinopUrem64(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint
	EmitBinopSrem64(locA, locB, ret Location, integerDivisionByZero, integerOverflow asm.Label) uint
	EmitBinopAnd64(locA, locB, ret Location)
	EmitBinopOr64(locA, locB, ret Location)
	EmitBinopXor64(locA, locB, ret Location)
	I64CmpGeS(locA, locB, ret Location)
	I64CmpGtS(locA, locB, ret Location)
	I64CmpLeS(locA, locB, ret Location)
	I64CmpLtS(locA, locB, ret Location)
	I64CmpGeU(locA, locB, ret Location)
	I64CmpGtU(locA, locB, ret Location)
	I64CmpLeU(locA, locB, ret Location)
	I64CmpLtU(locA, locB, ret Location)
	I64CmpNe(locA, locB, ret Location)
	I64CmpEq(locA, locB, ret Location)
	I64Clz(src, dst Location)
	I64Ctz(src, dst Location)
	I64Popcnt(loc, ret Location)
	I64Shl(locA, locB, ret Location)
	I64Shr(locA, locB, ret Location)
	I64Sar(locA, locB, ret Location)
	I64Rol(locA, locB, ret Location)
	I64Ror(locA, locB, ret Location)

	// Guarded memory access.

	I32Load(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I32Load8U(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I32Load8S(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I32Load16U(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I32Load16S(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I32Save(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I32Save8(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I32Save16(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I64Load(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I64Load8U(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I64Load8S(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I64Load16U(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I64Load16S(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I64Load32U(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I64Load32S(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I64Save(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I64Save8(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I64Save16(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	I64Save32(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	F32Load(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	F32Save(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, canonicalize, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	F64Load(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)
	F64Save(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, canonicalize, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label)

	// Conversions and float ALU.

	ConvertF64I64(loc Location, signed bool, ret Location)
	ConvertF64I32(loc Location, signed bool, ret Location)
	ConvertF32I64(loc Location, signed bool, ret Location)
	ConvertF32I32(loc Location, signed bool, ret Location)
	ConvertI64F64(loc, ret Location, signed, sat bool)
	ConvertI32F64(loc, ret Location, signed, sat bool)
	ConvertI64F32(loc, ret Location, signed, sat bool)
	ConvertI32F32(loc, ret Location, signed, sat bool)
	ConvertF64F32(loc, ret Location)
	ConvertF32F64(loc, ret Location)
	F64Neg(loc, ret Location)
	F64Abs(loc, ret Location)
	EmitI64CopySign(tmp1, tmp2 asm.Register)
	F64Sqrt(loc, ret Location)
	F64Trunc(loc, ret Location)
	F64Ceil(loc, ret Location)
	F64Floor(loc, ret Location)
	F64Nearest(loc, ret Location)
	F64CmpGe(locA, locB, ret Location)
	F64CmpGt(locA, locB, ret Location)
	F64CmpLe(locA, locB, ret Location)
	F64CmpLt(locA, locB, ret Location)
	F64CmpNe(locA, locB, ret Location)
	F64CmpEq(locA, locB, ret Location)
	F64Min(locA, locB, ret Location)
	F64Max(locA, locB, ret Location)
	F64Add(locA, locB, ret Location)
	F64Sub(locA, locB, ret Location)
	F64Mul(locA, locB, ret Location)
	F64Div(locA, locB, ret Location)
	F32Neg(loc, ret Location)
	F32Abs(loc, ret Location)
	EmitI32CopySign(tmp1, tmp2 asm.Register)
	F32Sqrt(loc, ret Location)
	F32Trunc(loc, ret Location)
	F32Ceil(loc, ret Location)
	F32Floor(loc, ret Location)
	F32Nearest(loc, ret Location)
	F32CmpGe(locA, locB, ret Location)
	F32CmpGt(locA, locB, ret Location)
	F32CmpLe(locA, locB, ret Location)
	F32CmpLt(locA, locB, ret Location)
	F32CmpNe(locA, locB, ret Location)
	F32CmpEq(locA, locB, ret Location)
	F32Min(locA, locB, ret Location)
	F32Max(locA, locB, ret Location)
	F32Add(locA, locB, ret Location)
	F32Sub(locA, locB, ret Location)
	F32Mul(locA, locB, ret Location)
	F32Div(locA, locB, ret Location)

	// Trampolines.

	GenStdTrampoline(sig *wasm.FunctionType, conv CallingConvention) FunctionBody
	GenStdDynamicImportTrampoline(vmoffsets *VMOffsets, sig *wasm.FunctionType, conv CallingConvention) FunctionBody
	GenImportCallTrampoline(vmoffsets *VMOffsets, index wasm.FunctionIndex, sig *wasm.FunctionType, conv CallingConvention) CustomSection
}

var _ Machine = (*MachineARM64)(nil)
