package compiler

import (
	"fmt"

	"github.com/tetratelabs/singlepass/internal/asm"
	"github.com/tetratelabs/singlepass/internal/asm/arm64"
	"github.com/tetratelabs/singlepass/internal/wasm"
)

// Relaxed loads: legalise the destination, then pick the best addressing form
// for the offset: scaled immediate, unscaled immediate (the 64-bit and the
// zero-extending 32-bit loads only), or a two-register form through a
// materialised offset.

func (m *MachineARM64) emitRelaxedLdr64(sz Size, dst, src Location) {
	var temps []asm.Register
	dest := m.locationToReg(sz, dst, &temps, ImmTypeNone, false, asm.NilRegister)
	if !src.IsMemory() {
		panic(fmt.Sprintf("singlepass can't emit ldr64 %s %s", dst, src))
	}
	addr, offset := src.Register(), int64(src.MemoryOffset())
	if m.compatibleImm(offset, ImmTypeOffsetDWord) {
		m.emitLdr(SizeS64, dest, src)
	} else if m.compatibleImm(offset, ImmTypeUnscaledOffset) {
		m.emitLdur(SizeS64, dest, addr, int32(offset))
	} else {
		tmp := m.AcquireTempGPR()
		m.emitMovImm(LocGPR(tmp), uint64(offset))
		m.emitLdr(SizeS64, dest, LocMemory2(addr, tmp, MultiplierOne, 0))
		temps = append(temps, tmp)
	}
	if dst != dest {
		m.MoveLocation(sz, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

func (m *MachineARM64) emitRelaxedLdr32(sz Size, dst, src Location) {
	var temps []asm.Register
	dest := m.locationToReg(sz, dst, &temps, ImmTypeNone, false, asm.NilRegister)
	if !src.IsMemory() {
		panic(fmt.Sprintf("singlepass can't emit ldr32 %s %s", dst, src))
	}
	addr, offset := src.Register(), int64(src.MemoryOffset())
	if m.compatibleImm(offset, ImmTypeOffsetWord) {
		m.emitLdr(SizeS32, dest, src)
	} else if m.compatibleImm(offset, ImmTypeUnscaledOffset) {
		m.emitLdur(SizeS32, dest, addr, int32(offset))
	} else {
		tmp := m.AcquireTempGPR()
		m.emitMovImm(LocGPR(tmp), uint64(offset))
		m.emitLdr(SizeS32, dest, LocMemory2(addr, tmp, MultiplierOne, 0))
		temps = append(temps, tmp)
	}
	if dst != dest {
		m.MoveLocation(sz, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

func (m *MachineARM64) emitRelaxedLdr32S(sz Size, dst, src Location) {
	var temps []asm.Register
	dest := m.locationToReg(sz, dst, &temps, ImmTypeNone, false, asm.NilRegister)
	if !src.IsMemory() {
		panic(fmt.Sprintf("singlepass can't emit ldr32s %s %s", dst, src))
	}
	addr, offset := src.Register(), int64(src.MemoryOffset())
	if m.compatibleImm(offset, ImmTypeOffsetWord) {
		m.emitLdrsw(dest, src)
	} else {
		tmp := m.AcquireTempGPR()
		m.emitMovImm(LocGPR(tmp), uint64(offset))
		m.emitLdrsw(dest, LocMemory2(addr, tmp, MultiplierOne, 0))
		temps = append(temps, tmp)
	}
	if dst != dest {
		m.MoveLocation(sz, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

func (m *MachineARM64) emitRelaxedLdr16(sz Size, dst, src Location) {
	var temps []asm.Register
	dest := m.locationToReg(sz, dst, &temps, ImmTypeNone, false, asm.NilRegister)
	if !src.IsMemory() {
		panic(fmt.Sprintf("singlepass can't emit ldr16 %s %s", dst, src))
	}
	addr, offset := src.Register(), int64(src.MemoryOffset())
	if m.compatibleImm(offset, ImmTypeOffsetHWord) {
		m.emitLdrh(dest, src)
	} else {
		tmp := m.AcquireTempGPR()
		m.emitMovImm(LocGPR(tmp), uint64(offset))
		m.emitLdrh(dest, LocMemory2(addr, tmp, MultiplierOne, 0))
		temps = append(temps, tmp)
	}
	if dst != dest {
		m.MoveLocation(sz, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

func (m *MachineARM64) emitRelaxedLdr16S(sz Size, dst, src Location) {
	var temps []asm.Register
	dest := m.locationToReg(sz, dst, &temps, ImmTypeNone, false, asm.NilRegister)
	if !src.IsMemory() {
		panic(fmt.Sprintf("singlepass can't emit ldr16s %s %s", dst, src))
	}
	addr, offset := src.Register(), int64(src.MemoryOffset())
	if m.compatibleImm(offset, ImmTypeOffsetHWord) {
		m.emitLdrsh(sz, dest, src)
	} else {
		tmp := m.AcquireTempGPR()
		m.emitMovImm(LocGPR(tmp), uint64(offset))
		m.emitLdrsh(sz, dest, LocMemory2(addr, tmp, MultiplierOne, 0))
		temps = append(temps, tmp)
	}
	if dst != dest {
		m.MoveLocation(sz, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

func (m *MachineARM64) emitRelaxedLdr8(sz Size, dst, src Location) {
	var temps []asm.Register
	dest := m.locationToReg(sz, dst, &temps, ImmTypeNone, false, asm.NilRegister)
	if !src.IsMemory() {
		panic(fmt.Sprintf("singlepass can't emit ldr8 %s %s", dst, src))
	}
	addr, offset := src.Register(), int64(src.MemoryOffset())
	if m.compatibleImm(offset, ImmTypeOffsetByte) {
		m.emitLdrb(dest, src)
	} else {
		tmp := m.AcquireTempGPR()
		m.emitMovImm(LocGPR(tmp), uint64(offset))
		m.emitLdrb(dest, LocMemory2(addr, tmp, MultiplierOne, 0))
		temps = append(temps, tmp)
	}
	if dst != dest {
		m.MoveLocation(sz, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

func (m *MachineARM64) emitRelaxedLdr8S(sz Size, dst, src Location) {
	var temps []asm.Register
	dest := m.locationToReg(sz, dst, &temps, ImmTypeNone, false, asm.NilRegister)
	if !src.IsMemory() {
		panic(fmt.Sprintf("singlepass can't emit ldr8s %s %s", dst, src))
	}
	addr, offset := src.Register(), int64(src.MemoryOffset())
	if m.compatibleImm(offset, ImmTypeOffsetByte) {
		m.emitLdrsb(sz, dest, src)
	} else {
		tmp := m.AcquireTempGPR()
		m.emitMovImm(LocGPR(tmp), uint64(offset))
		m.emitLdrsb(sz, dest, LocMemory2(addr, tmp, MultiplierOne, 0))
		temps = append(temps, tmp)
	}
	if dst != dest {
		m.MoveLocation(sz, dest, dst)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// Relaxed stores: legalise the value (a zero becomes the zero register), then
// pick the addressing form.

func (m *MachineARM64) emitRelaxedStr64(dst, src Location) {
	var temps []asm.Register
	v := m.locationToReg(SizeS64, dst, &temps, ImmTypeNoneXzr, true, asm.NilRegister)
	if !src.IsMemory() {
		panic(fmt.Sprintf("singlepass can't emit str64 %s %s", dst, src))
	}
	addr, offset := src.Register(), int64(src.MemoryOffset())
	if m.compatibleImm(offset, ImmTypeOffsetDWord) {
		m.emitStr(SizeS64, v, src)
	} else if m.compatibleImm(offset, ImmTypeUnscaledOffset) {
		m.emitStur(SizeS64, v, addr, int32(offset))
	} else {
		tmp := m.AcquireTempGPR()
		m.emitMovImm(LocGPR(tmp), uint64(offset))
		m.emitStr(SizeS64, v, LocMemory2(addr, tmp, MultiplierOne, 0))
		temps = append(temps, tmp)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

func (m *MachineARM64) emitRelaxedStr32(dst, src Location) {
	var temps []asm.Register
	v := m.locationToReg(SizeS64, dst, &temps, ImmTypeNoneXzr, true, asm.NilRegister)
	if !src.IsMemory() {
		panic(fmt.Sprintf("singlepass can't emit str32 %s %s", dst, src))
	}
	addr, offset := src.Register(), int64(src.MemoryOffset())
	if m.compatibleImm(offset, ImmTypeOffsetWord) {
		m.emitStr(SizeS32, v, src)
	} else if m.compatibleImm(offset, ImmTypeUnscaledOffset) {
		m.emitStur(SizeS32, v, addr, int32(offset))
	} else {
		tmp := m.AcquireTempGPR()
		m.emitMovImm(LocGPR(tmp), uint64(offset))
		m.emitStr(SizeS32, v, LocMemory2(addr, tmp, MultiplierOne, 0))
		temps = append(temps, tmp)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

func (m *MachineARM64) emitRelaxedStr16(dst, src Location) {
	var temps []asm.Register
	v := m.locationToReg(SizeS64, dst, &temps, ImmTypeNoneXzr, true, asm.NilRegister)
	if !src.IsMemory() {
		panic(fmt.Sprintf("singlepass can't emit str16 %s %s", dst, src))
	}
	addr, offset := src.Register(), int64(src.MemoryOffset())
	if m.compatibleImm(offset, ImmTypeOffsetHWord) {
		m.emitStrh(v, src)
	} else {
		tmp := m.AcquireTempGPR()
		m.emitMovImm(LocGPR(tmp), uint64(offset))
		m.emitStrh(v, LocMemory2(addr, tmp, MultiplierOne, 0))
		temps = append(temps, tmp)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

func (m *MachineARM64) emitRelaxedStr8(dst, src Location) {
	var temps []asm.Register
	v := m.locationToReg(SizeS64, dst, &temps, ImmTypeNoneXzr, true, asm.NilRegister)
	if !src.IsMemory() {
		panic(fmt.Sprintf("singlepass can't emit str8 %s %s", dst, src))
	}
	addr, offset := src.Register(), int64(src.MemoryOffset())
	if m.compatibleImm(offset, ImmTypeOffsetByte) {
		m.emitStrb(v, src)
	} else {
		tmp := m.AcquireTempGPR()
		m.emitMovImm(LocGPR(tmp), uint64(offset))
		m.emitStrb(v, LocMemory2(addr, tmp, MultiplierOne, 0))
		temps = append(temps, tmp)
	}
	for _, r := range temps {
		m.ReleaseGPR(r)
	}
}

// memoryOp wraps one guest heap access: base/bound loads (with one extra
// indirection for imported memories), the overflow-checked constant-offset
// add, the inclusive upper-bound compare, the optional alignment test, and
// the HeapAccessOutOfBounds tagging of the access instruction(s) emitted by cb.
//
// cb receives the already-acquired register holding the effective address;
// temporaries it acquires must be released before it returns.
func (m *MachineARM64) memoryOp(
	addr Location,
	memarg *wasm.MemoryImmediate,
	checkAlignment bool,
	valueSize int,
	needCheck bool,
	importedMemories bool,
	offset int32,
	heapAccessOob asm.Label,
	cb func(m *MachineARM64, addrReg asm.Register),
) {
	tmpAddr := m.AcquireTempGPR()

	// Reusing tmpAddr for the temporary indirection here, since it's not used
	// before the last reference to baseLoc/boundLoc.
	var baseLoc, boundLoc Location
	if importedMemories {
		// Imported memories require one level of indirection.
		m.emitRelaxedBinop(m.emitMove, SizeS64, LocMemory(m.GetVMCtxReg(), offset), LocGPR(tmpAddr), true)
		baseLoc, boundLoc = LocMemory(tmpAddr, 0), LocMemory(tmpAddr, 8)
	} else {
		baseLoc = LocMemory(m.GetVMCtxReg(), offset)
		boundLoc = LocMemory(m.GetVMCtxReg(), offset+8)
	}

	tmpBase := m.AcquireTempGPR()
	tmpBound := m.AcquireTempGPR()

	// Load base into the temporary register.
	m.emitRelaxedLdr64(SizeS64, LocGPR(tmpBase), baseLoc)

	if needCheck {
		m.emitRelaxedLdr64(SizeS64, LocGPR(tmpBound), boundLoc)

		// Wasm -> effective: bound = base + bound - size, the inclusive upper
		// bound of a legal access start. Assuming the add never overflows,
		// which holds as the zero page is never mapped.
		m.emitAdd(SizeS64, LocGPR(tmpBound), LocGPR(tmpBase), LocGPR(tmpBound))
		if m.compatibleImm(int64(valueSize), ImmTypeBits12) {
			m.emitSub(SizeS64, LocGPR(tmpBound), LocImm32(uint32(valueSize)), LocGPR(tmpBound))
		} else {
			tmp2 := m.AcquireTempGPR()
			m.emitMovImm(LocGPR(tmp2), uint64(valueSize))
			m.emitSub(SizeS64, LocGPR(tmpBound), LocGPR(tmp2), LocGPR(tmpBound))
			m.ReleaseGPR(tmp2)
		}
	}

	// Load the guest address, zero-extended to 64-bit.
	// baseLoc and boundLoc become INVALID after this line, because tmpAddr
	// might be reused.
	m.MoveLocation(SizeS32, addr, LocGPR(tmpAddr))

	// Add the constant offset, trapping if the 32-bit add carried out.
	if memarg.Offset != 0 {
		if m.compatibleImm(int64(memarg.Offset), ImmTypeBits12) {
			m.emitAdds(SizeS32, LocImm32(memarg.Offset), LocGPR(tmpAddr), LocGPR(tmpAddr))
		} else {
			tmp := m.AcquireTempGPR()
			m.emitMovImm(LocGPR(tmp), uint64(memarg.Offset))
			m.emitAdds(SizeS32, LocGPR(tmpAddr), LocGPR(tmp), LocGPR(tmpAddr))
			m.ReleaseGPR(tmp)
		}

		// Trap if the offset calculation overflowed.
		m.emitBcondLabel(arm64.CondHS, heapAccessOob)
	}

	// Wasm linear memory -> real memory.
	m.emitAdd(SizeS64, LocGPR(tmpBase), LocGPR(tmpAddr), LocGPR(tmpAddr))

	if needCheck {
		// Trap if the end address of the requested area is above that of the
		// linear memory. tmpBound is inclusive, so trap only on addr > bound.
		m.emitCmp(SizeS64, LocGPR(tmpBound), LocGPR(tmpAddr))
		m.emitBcondLabel(arm64.CondHI, heapAccessOob)
	}

	m.ReleaseGPR(tmpBound)
	m.ReleaseGPR(tmpBase)

	if checkAlignment && memarg.Align != 1 {
		m.emitTst(SizeS64, LocImm32(memarg.Align-1), LocGPR(tmpAddr))
		m.emitBcondLabel(arm64.CondNE, heapAccessOob)
	}

	begin := m.GetOffset()
	cb(m, tmpAddr)
	end := m.GetOffset()
	m.MarkAddressRangeWithTrapCode(TrapCodeHeapAccessOutOfBounds, begin, end)

	m.ReleaseGPR(tmpAddr)
}

// i32 loads.

// I32Load emits i32.load.
func (m *MachineARM64) I32Load(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 4, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedLdr32(SizeS32, ret, LocMemory(addrReg, 0))
		})
}

// I32Load8U emits i32.load8_u.
func (m *MachineARM64) I32Load8U(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 1, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedLdr8(SizeS32, ret, LocMemory(addrReg, 0))
		})
}

// I32Load8S emits i32.load8_s.
func (m *MachineARM64) I32Load8S(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 1, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedLdr8S(SizeS32, ret, LocMemory(addrReg, 0))
		})
}

// I32Load16U emits i32.load16_u.
func (m *MachineARM64) I32Load16U(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 2, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedLdr16(SizeS32, ret, LocMemory(addrReg, 0))
		})
}

// I32Load16S emits i32.load16_s.
func (m *MachineARM64) I32Load16S(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 2, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedLdr16S(SizeS32, ret, LocMemory(addrReg, 0))
		})
}

// i32 stores.

// I32Save emits i32.store.
func (m *MachineARM64) I32Save(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(targetAddr, memarg, false, 4, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedStr32(targetValue, LocMemory(addrReg, 0))
		})
}

// I32Save8 emits i32.store8.
func (m *MachineARM64) I32Save8(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(targetAddr, memarg, false, 1, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedStr8(targetValue, LocMemory(addrReg, 0))
		})
}

// I32Save16 emits i32.store16.
func (m *MachineARM64) I32Save16(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(targetAddr, memarg, false, 2, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedStr16(targetValue, LocMemory(addrReg, 0))
		})
}

// i64 loads.

// I64Load emits i64.load.
func (m *MachineARM64) I64Load(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 8, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedLdr64(SizeS64, ret, LocMemory(addrReg, 0))
		})
}

// I64Load8U emits i64.load8_u.
func (m *MachineARM64) I64Load8U(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 1, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedLdr8(SizeS64, ret, LocMemory(addrReg, 0))
		})
}

// I64Load8S emits i64.load8_s.
func (m *MachineARM64) I64Load8S(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 1, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedLdr8S(SizeS64, ret, LocMemory(addrReg, 0))
		})
}

// I64Load16U emits i64.load16_u.
func (m *MachineARM64) I64Load16U(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 2, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedLdr16(SizeS64, ret, LocMemory(addrReg, 0))
		})
}

// I64Load16S emits i64.load16_s.
func (m *MachineARM64) I64Load16S(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 2, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedLdr16S(SizeS64, ret, LocMemory(addrReg, 0))
		})
}

// I64Load32U emits i64.load32_u.
func (m *MachineARM64) I64Load32U(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 4, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedLdr32(SizeS64, ret, LocMemory(addrReg, 0))
		})
}

// I64Load32S emits i64.load32_s.
func (m *MachineARM64) I64Load32S(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 4, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedLdr32S(SizeS64, ret, LocMemory(addrReg, 0))
		})
}

// i64 stores.

// I64Save emits i64.store.
func (m *MachineARM64) I64Save(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(targetAddr, memarg, false, 8, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedStr64(targetValue, LocMemory(addrReg, 0))
		})
}

// I64Save8 emits i64.store8.
func (m *MachineARM64) I64Save8(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(targetAddr, memarg, false, 1, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedStr8(targetValue, LocMemory(addrReg, 0))
		})
}

// I64Save16 emits i64.store16.
func (m *MachineARM64) I64Save16(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(targetAddr, memarg, false, 2, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedStr16(targetValue, LocMemory(addrReg, 0))
		})
}

// I64Save32 emits i64.store32.
func (m *MachineARM64) I64Save32(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(targetAddr, memarg, false, 4, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitRelaxedStr32(targetValue, LocMemory(addrReg, 0))
		})
}

// float loads and stores.

// F32Load emits f32.load.
func (m *MachineARM64) F32Load(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 4, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitLdr(SizeS32, ret, LocMemory(addrReg, 0))
		})
}

// F32Save emits f32.store.
func (m *MachineARM64) F32Save(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, canonicalize, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	canonicalize = canonicalize && m.ArchSupportsCanonicalizeNan()
	m.memoryOp(targetAddr, memarg, false, 4, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			if !canonicalize {
				m.emitRelaxedStr32(targetValue, LocMemory(addrReg, 0))
			} else {
				m.CanonicalizeNan(SizeS32, targetValue, LocMemory(addrReg, 0))
			}
		})
}

// F64Load emits f64.load.
func (m *MachineARM64) F64Load(addr Location, memarg *wasm.MemoryImmediate, ret Location, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	m.memoryOp(addr, memarg, false, 8, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			m.emitLdr(SizeS64, ret, LocMemory(addrReg, 0))
		})
}

// F64Save emits f64.store.
func (m *MachineARM64) F64Save(targetValue Location, memarg *wasm.MemoryImmediate, targetAddr Location, canonicalize, needCheck, importedMemories bool, offset int32, heapAccessOob asm.Label) {
	canonicalize = canonicalize && m.ArchSupportsCanonicalizeNan()
	m.memoryOp(targetAddr, memarg, false, 8, needCheck, importedMemories, offset, heapAccessOob,
		func(m *MachineARM64, addrReg asm.Register) {
			if !canonicalize {
				m.emitRelaxedStr64(targetValue, LocMemory(addrReg, 0))
			} else {
				m.CanonicalizeNan(SizeS64, targetValue, LocMemory(addrReg, 0))
			}
		})
}
