package compiler

import (
	"fmt"

	"github.com/tetratelabs/singlepass/internal/asm"
	"github.com/tetratelabs/singlepass/internal/asm/arm64"
	"github.com/tetratelabs/singlepass/internal/wasm"
)

// Trampolines bridge the three call boundaries of the system: host code
// calling a compiled Wasm function, compiled Wasm calling a dynamic host
// import through the runtime shim, and compiled Wasm calling a regular
// imported function. They are emitted with a bare assembler; no machine
// state (register pool, push parity) is involved.

// valueSlotSize is the per-value slot width of the host<->wasm value vector;
// each slot is wide enough for any numeric value (and a future v128).
const valueSlotSize = 16

func roundUp16(v int) int {
	return (v + 15) &^ 15
}

func trampolineAssemble(a *arm64.AssemblerImpl, kind string) []byte {
	code, err := a.Assemble()
	if err != nil {
		panic(fmt.Sprintf("BUG: %s trampoline failed to assemble: %v", kind, err))
	}
	return code
}

// GenStdTrampoline generates the host-to-Wasm trampoline for the signature:
// it is called as (vmctx, body, values) and stages values[i] into the Wasm
// argument registers, calls body, and stores the result back into values[0].
func (m *MachineARM64) GenStdTrampoline(sig *wasm.FunctionType, _ CallingConvention) FunctionBody {
	a := arm64.NewAssemblerImpl(arm64SPScratchRegister)

	a.CompileTwoRegistersToMemoryPreIndexed(arm64.STP, arm64.RegR29, arm64.RegR30, arm64.RegSP, 16)
	a.CompileConstAndRegisterToRegister(arm64.ADD, 0, arm64.RegSP, arm64.RegR29)
	a.CompileTwoRegistersToMemoryPreIndexed(arm64.STP, arm64.RegR19, arm64.RegR20, arm64.RegSP, 16)

	// Keep the body pointer and the value vector in callee-saved registers;
	// X0 keeps the vmctx argument the callee expects.
	a.CompileRegisterToRegister(arm64.MOVD, arm64.RegR1, arm64.RegR19)
	a.CompileRegisterToRegister(arm64.MOVD, arm64.RegR2, arm64.RegR20)

	// Arguments beyond the 7 register slots (X1..X7) go to the callee's
	// stack-argument area at the SP we call with.
	stackArgs := 0
	if len(sig.Params) > 7 {
		stackArgs = len(sig.Params) - 7
	}
	stackBytes := roundUp16(stackArgs * 8)
	if stackBytes != 0 {
		a.CompileConstAndRegisterToRegister(arm64.SUB, int64(stackBytes), arm64.RegSP, arm64.RegSP)
	}

	for i := range sig.Params {
		slot := asm.ConstantValue(i * valueSlotSize)
		if i < 7 {
			a.CompileMemoryToRegister(arm64.MOVD, arm64.RegR20, slot, arm64.RegR1+asm.Register(i))
		} else {
			a.CompileMemoryToRegister(arm64.MOVD, arm64.RegR20, slot, arm64ImportTrampolineScratchRegister)
			a.CompileRegisterToMemory(arm64.MOVD, arm64ImportTrampolineScratchRegister, arm64.RegSP, asm.ConstantValue((i-7)*8))
		}
	}

	a.CompileJumpToRegister(arm64.BLR, arm64.RegR19)

	if stackBytes != 0 {
		a.CompileConstAndRegisterToRegister(arm64.ADD, int64(stackBytes), arm64.RegSP, arm64.RegSP)
	}

	if len(sig.Results) > 0 {
		switch sig.Results[0] {
		case wasm.ValueTypeF32, wasm.ValueTypeF64:
			a.CompileRegisterToMemory(arm64.FMOVD, arm64.RegV0, arm64.RegR20, 0)
		default:
			a.CompileRegisterToMemory(arm64.MOVD, arm64.RegR0, arm64.RegR20, 0)
		}
	}

	a.CompileMemoryToTwoRegistersPostIndexed(arm64.LDP, arm64.RegSP, 16, arm64.RegR19, arm64.RegR20)
	a.CompileMemoryToTwoRegistersPostIndexed(arm64.LDP, arm64.RegSP, 16, arm64.RegR29, arm64.RegR30)
	a.CompileStandAlone(arm64.RET)

	return FunctionBody{Body: trampolineAssemble(a, "std")}
}

// GenStdDynamicImportTrampoline generates the trampoline a dynamic import is
// entered through: it spills the Wasm-convention arguments into a value
// vector on the stack and calls the host shim as (ctx, values).
func (m *MachineARM64) GenStdDynamicImportTrampoline(vmoffsets *VMOffsets, sig *wasm.FunctionType, _ CallingConvention) FunctionBody {
	a := arm64.NewAssemblerImpl(arm64SPScratchRegister)

	a.CompileTwoRegistersToMemoryPreIndexed(arm64.STP, arm64.RegR29, arm64.RegR30, arm64.RegSP, 16)
	a.CompileConstAndRegisterToRegister(arm64.ADD, 0, arm64.RegSP, arm64.RegR29)

	slots := len(sig.Params)
	if slots == 0 {
		slots = 1 // room for the result even without parameters
	}
	allocSize := roundUp16(slots * valueSlotSize)
	a.CompileConstAndRegisterToRegister(arm64.SUB, int64(allocSize), arm64.RegSP, arm64.RegSP)

	for i := range sig.Params {
		slot := asm.ConstantValue(i * valueSlotSize)
		if i < 7 {
			a.CompileRegisterToMemory(arm64.MOVD, arm64.RegR1+asm.Register(i), arm64.RegSP, slot)
		} else {
			// Stack arguments live above our frame record, at the caller's SP.
			a.CompileMemoryToRegister(arm64.MOVD, arm64.RegR29, asm.ConstantValue(16+(i-7)*8), arm64ImportTrampolineScratchRegister)
			a.CompileRegisterToMemory(arm64.MOVD, arm64ImportTrampolineScratchRegister, arm64.RegSP, slot)
		}
	}

	// X0 already holds the dynamic function context; X1 = the value vector.
	a.CompileConstAndRegisterToRegister(arm64.ADD, 0, arm64.RegSP, arm64.RegR1)
	a.CompileMemoryToRegister(arm64.MOVD, arm64.RegR0,
		asm.ConstantValue(vmoffsets.VMDynamicFunctionContextAddress()), arm64ImportTrampolineScratchRegister)
	a.CompileJumpToRegister(arm64.BLR, arm64ImportTrampolineScratchRegister)

	if len(sig.Results) > 0 {
		a.CompileMemoryToRegister(arm64.MOVD, arm64.RegSP, 0, arm64.RegR0)
	}

	a.CompileConstAndRegisterToRegister(arm64.ADD, int64(allocSize), arm64.RegSP, arm64.RegSP)
	a.CompileMemoryToTwoRegistersPostIndexed(arm64.LDP, arm64.RegSP, 16, arm64.RegR29, arm64.RegR30)
	a.CompileStandAlone(arm64.RET)

	return FunctionBody{Body: trampolineAssemble(a, "dynamic import")}
}

// GenImportCallTrampoline generates the trampoline through which compiled
// code calls the imported function at index: it loads the real body and the
// callee vmctx from the caller's vmctx import table and tail-branches,
// leaving the argument registers untouched.
func (m *MachineARM64) GenImportCallTrampoline(vmoffsets *VMOffsets, index wasm.FunctionIndex, _ *wasm.FunctionType, _ CallingConvention) CustomSection {
	a := arm64.NewAssemblerImpl(arm64SPScratchRegister)

	offset := vmoffsets.VMCtxImportedFunction(index)
	a.CompileMemoryToRegister(arm64.MOVD, arm64.RegR0,
		asm.ConstantValue(offset+vmoffsets.VMFunctionImportBody()), arm64ImportTrampolineScratchRegister)
	a.CompileMemoryToRegister(arm64.MOVD, arm64.RegR0,
		asm.ConstantValue(offset+vmoffsets.VMFunctionImportVMCtx()), arm64.RegR0)
	a.CompileJumpToRegister(arm64.BR, arm64ImportTrampolineScratchRegister)

	return CustomSection{Bytes: trampolineAssemble(a, "import call")}
}
