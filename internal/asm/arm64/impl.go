package arm64

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tetratelabs/singlepass/internal/asm"
)

type nodeImpl struct {
	instruction asm.Instruction

	offsetInBinary asm.NodeOffsetInBinary

	// jumpTarget holds the target node in the linked list for the jump-kind instruction.
	jumpTarget *nodeImpl
	// jumpLabel holds the target label for the jump-kind instruction; either this or
	// jumpTarget is used to resolve branch destinations.
	jumpLabel asm.Label
	// next holds the next node from this node in the assembled linked list.
	next *nodeImpl

	types                            operandTypes
	srcReg, srcReg2, dstReg, dstReg2 asm.Register
	srcConst, dstConst               asm.ConstantValue
}

// AssignJumpTarget implements the same method as documented on asm.Node.
func (n *nodeImpl) AssignJumpTarget(target asm.Node) {
	n.jumpTarget = target.(*nodeImpl)
}

// OffsetInBinary implements the same method as documented on asm.Node.
func (n *nodeImpl) OffsetInBinary() asm.NodeOffsetInBinary {
	return n.offsetInBinary
}

// String implements fmt.Stringer.
//
// This is for debugging purpose, and the format is similar to the AT&T assembly syntax,
// meaning that this should look like "INSTRUCTION ${from}, ${to}" where each operand
// might be embraced by '[]' to represent the memory location.
func (n *nodeImpl) String() (ret string) {
	instName := InstructionName(n.instruction)
	switch n.types {
	case operandTypesNoneToNone:
		ret = instName
	case operandTypesNoneToRegister:
		ret = fmt.Sprintf("%s %s", instName, RegisterName(n.dstReg))
	case operandTypesNoneToBranch:
		ret = fmt.Sprintf("%s {L%d}", instName, n.jumpLabel)
	case operandTypesCompareBranch:
		ret = fmt.Sprintf("%s %s, {L%d}", instName, RegisterName(n.srcReg), n.jumpLabel)
	case operandTypesRegisterToRegister:
		ret = fmt.Sprintf("%s %s, %s", instName, RegisterName(n.srcReg), RegisterName(n.dstReg))
	case operandTypesLeftShiftedRegisterToRegister:
		ret = fmt.Sprintf("%s (%s, %s << %d), %s", instName, RegisterName(n.srcReg), RegisterName(n.srcReg2), n.srcConst, RegisterName(n.dstReg))
	case operandTypesTwoRegistersToRegister:
		ret = fmt.Sprintf("%s (%s, %s), %s", instName, RegisterName(n.srcReg), RegisterName(n.srcReg2), RegisterName(n.dstReg))
	case operandTypesThreeRegistersToRegister:
		ret = fmt.Sprintf("%s (%s, %s, %s), %s", instName, RegisterName(n.srcReg), RegisterName(n.srcReg2), RegisterName(n.dstReg), RegisterName(n.dstReg2))
	case operandTypesTwoRegistersToNone:
		ret = fmt.Sprintf("%s (%s, %s)", instName, RegisterName(n.srcReg), RegisterName(n.srcReg2))
	case operandTypesRegisterAndConstToNone:
		ret = fmt.Sprintf("%s (%s, 0x%x)", instName, RegisterName(n.srcReg), n.srcConst)
	case operandTypesConstAndRegisterToRegister:
		ret = fmt.Sprintf("%s (0x%x, %s), %s", instName, n.srcConst, RegisterName(n.srcReg), RegisterName(n.dstReg))
	case operandTypesRegisterToMemory:
		if n.dstReg2 != asm.NilRegister {
			ret = fmt.Sprintf("%s %s, [%s + %s]", instName, RegisterName(n.srcReg), RegisterName(n.dstReg), RegisterName(n.dstReg2))
		} else {
			ret = fmt.Sprintf("%s %s, [%s + 0x%x]", instName, RegisterName(n.srcReg), RegisterName(n.dstReg), n.dstConst)
		}
	case operandTypesMemoryToRegister:
		if n.srcReg2 != asm.NilRegister {
			ret = fmt.Sprintf("%s [%s + %s], %s", instName, RegisterName(n.srcReg), RegisterName(n.srcReg2), RegisterName(n.dstReg))
		} else {
			ret = fmt.Sprintf("%s [%s + 0x%x], %s", instName, RegisterName(n.srcReg), n.srcConst, RegisterName(n.dstReg))
		}
	case operandTypesRegisterToMemoryUnscaled:
		ret = fmt.Sprintf("%s %s, [%s + 0x%x] (unscaled)", instName, RegisterName(n.srcReg), RegisterName(n.dstReg), n.dstConst)
	case operandTypesMemoryToRegisterUnscaled:
		ret = fmt.Sprintf("%s [%s + 0x%x] (unscaled), %s", instName, RegisterName(n.srcReg), n.srcConst, RegisterName(n.dstReg))
	case operandTypesRegisterToMemoryPostIndexed:
		ret = fmt.Sprintf("%s %s, [%s], 0x%x", instName, RegisterName(n.srcReg), RegisterName(n.dstReg), n.dstConst)
	case operandTypesTwoRegistersToMemoryPreIndexed:
		ret = fmt.Sprintf("%s (%s, %s), [%s, -0x%x]!", instName, RegisterName(n.srcReg), RegisterName(n.srcReg2), RegisterName(n.dstReg), n.dstConst)
	case operandTypesMemoryToTwoRegistersPostIndexed:
		ret = fmt.Sprintf("%s [%s], 0x%x, (%s, %s)", instName, RegisterName(n.srcReg), n.srcConst, RegisterName(n.dstReg), RegisterName(n.dstReg2))
	case operandTypesConstToRegister:
		ret = fmt.Sprintf("%s 0x%x, %s", instName, n.srcConst, RegisterName(n.dstReg))
	case operandTypesConstShiftedToRegister:
		ret = fmt.Sprintf("%s (0x%x << %d), %s", instName, n.srcConst, n.srcConst2(), RegisterName(n.dstReg))
	case operandTypesLabelToRegister:
		ret = fmt.Sprintf("%s {L%d}, %s", instName, n.jumpLabel, RegisterName(n.dstReg))
	}
	return
}

// srcConst2 returns the shift amount of a const-shifted node, which is stored in dstConst
// to keep nodeImpl small.
func (n *nodeImpl) srcConst2() asm.ConstantValue { return n.dstConst }

// operandTypes represents the combinations of operand types the assembler accepts.
type operandTypes byte

const (
	operandTypesNoneToNone operandTypes = iota
	operandTypesNoneToRegister
	operandTypesNoneToBranch
	operandTypesCompareBranch
	operandTypesRegisterToRegister
	operandTypesLeftShiftedRegisterToRegister
	operandTypesTwoRegistersToRegister
	operandTypesThreeRegistersToRegister
	operandTypesTwoRegistersToNone
	operandTypesRegisterAndConstToNone
	operandTypesConstAndRegisterToRegister
	operandTypesRegisterToMemory
	operandTypesMemoryToRegister
	operandTypesRegisterToMemoryUnscaled
	operandTypesMemoryToRegisterUnscaled
	operandTypesRegisterToMemoryPostIndexed
	operandTypesTwoRegistersToMemoryPreIndexed
	operandTypesMemoryToTwoRegistersPostIndexed
	operandTypesConstToRegister
	operandTypesConstShiftedToRegister
	operandTypesLabelToRegister
)

// String implements fmt.Stringer.
func (o operandTypes) String() (ret string) {
	switch o {
	case operandTypesNoneToNone:
		ret = "none-to-none"
	case operandTypesNoneToRegister:
		ret = "none-to-register"
	case operandTypesNoneToBranch:
		ret = "none-to-branch"
	case operandTypesCompareBranch:
		ret = "compare-branch"
	case operandTypesRegisterToRegister:
		ret = "register-to-register"
	case operandTypesLeftShiftedRegisterToRegister:
		ret = "left-shifted-register-to-register"
	case operandTypesTwoRegistersToRegister:
		ret = "two-registers-to-register"
	case operandTypesThreeRegistersToRegister:
		ret = "three-registers-to-register"
	case operandTypesTwoRegistersToNone:
		ret = "two-registers-to-none"
	case operandTypesRegisterAndConstToNone:
		ret = "register-and-const-to-none"
	case operandTypesConstAndRegisterToRegister:
		ret = "const-and-register-to-register"
	case operandTypesRegisterToMemory:
		ret = "register-to-memory"
	case operandTypesMemoryToRegister:
		ret = "memory-to-register"
	case operandTypesRegisterToMemoryUnscaled:
		ret = "register-to-memory-unscaled"
	case operandTypesMemoryToRegisterUnscaled:
		ret = "memory-to-register-unscaled"
	case operandTypesRegisterToMemoryPostIndexed:
		ret = "register-to-memory-post-indexed"
	case operandTypesTwoRegistersToMemoryPreIndexed:
		ret = "two-registers-to-memory-pre-indexed"
	case operandTypesMemoryToTwoRegistersPostIndexed:
		ret = "memory-to-two-registers-post-indexed"
	case operandTypesConstToRegister:
		ret = "const-to-register"
	case operandTypesConstShiftedToRegister:
		ret = "const-shifted-to-register"
	case operandTypesLabelToRegister:
		ret = "label-to-register"
	}
	return
}

// AssemblerImpl implements Assembler.
//
// Unlike a conventional two-phase assembler, instructions are encoded into the
// buffer as they are compiled. The single-pass machine depends on exact byte
// offsets while emitting (trap table, address map), so deferring encoding is
// not an option. Branches and ADR still encode placeholders and are patched by
// the callbacks run in Assemble, once every label offset is known.
type AssemblerImpl struct {
	asm.BaseAssemblerImpl
	root, current     *nodeImpl
	buf               *bytes.Buffer
	temporaryRegister asm.Register
	labelCount        asm.Label
	labelOffsets      map[asm.Label]asm.NodeOffsetInBinary
	pool              constPool
	// err holds the first encoding error. Compile methods cannot return errors,
	// so it surfaces in Assemble.
	err error
}

// constPool holds 32-bit constants which are used by ldr(literal) instructions
// emitted by memory access with offsets beyond the immediate forms.
type constPool struct {
	// firstUseOffsetInBinary is the offset of the first ldr(literal) instruction
	// which needs to access the const in this constPool.
	firstUseOffsetInBinary *asm.NodeOffsetInBinary
	consts                 []int32
	// offsetFinalizedCallbacks holds the callbacks keyed on the constants.
	// These callbacks are called when the offsets of the constants in the binary
	// have been determined.
	offsetFinalizedCallbacks map[int32][]func(offsetOfConstInBinary int)
}

var _ Assembler = (*AssemblerImpl)(nil)

// NewAssemblerImpl returns an AssemblerImpl which uses `temporaryRegister` when
// an instruction requires expansion into a multi-instruction sequence.
func NewAssemblerImpl(temporaryRegister asm.Register) *AssemblerImpl {
	return &AssemblerImpl{
		buf:               bytes.NewBuffer(nil),
		temporaryRegister: temporaryRegister,
		labelOffsets:      map[asm.Label]asm.NodeOffsetInBinary{},
		pool:              constPool{offsetFinalizedCallbacks: map[int32][]func(int){}},
	}
}

func (a *AssemblerImpl) setErr(err error) {
	if a.err == nil {
		a.err = err
	}
}

func (a *AssemblerImpl) write32(w uint32) {
	a.buf.Write([]byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)})
}

// newNode creates a new node, appends it into the linked list and encodes it
// into the buffer right away.
func (a *AssemblerImpl) newNode(instruction asm.Instruction, types operandTypes) *nodeImpl {
	n := &nodeImpl{instruction: instruction, types: types}
	a.addNode(n)
	return n
}

// addNode appends the new node into the linked list.
func (a *AssemblerImpl) addNode(node *nodeImpl) {
	if a.root == nil {
		a.root = node
		a.current = node
	} else {
		parent := a.current
		parent.next = node
		a.current = node
	}

	for _, o := range a.SetBranchTargetOnNextNodes {
		origin := o.(*nodeImpl)
		origin.jumpTarget = node
	}
	a.SetBranchTargetOnNextNodes = nil
}

// encode encodes the given node at the current buffer offset, recording any
// error for Assemble to report.
func (a *AssemblerImpl) encode(n *nodeImpl) {
	n.offsetInBinary = uint64(a.buf.Len())
	if err := a.encodeNode(n); err != nil {
		a.setErr(fmt.Errorf("%w: %s", err, n))
	}
	a.maybeFlushConstPool(false)
}

// Offset implements asm.AssemblerBase.
func (a *AssemblerImpl) Offset() asm.NodeOffsetInBinary {
	return uint64(a.buf.Len())
}

// NewLabel implements asm.AssemblerBase.
func (a *AssemblerImpl) NewLabel() asm.Label {
	a.labelCount++
	return a.labelCount
}

// BindLabel implements asm.AssemblerBase. Binding twice is a bug in the caller.
func (a *AssemblerImpl) BindLabel(label asm.Label) {
	if _, ok := a.labelOffsets[label]; ok {
		a.setErr(fmt.Errorf("BUG: label L%d bound twice", label))
		return
	}
	a.labelOffsets[label] = uint64(a.buf.Len())
}

// Assemble implements asm.AssemblerBase.
func (a *AssemblerImpl) Assemble() ([]byte, error) {
	a.maybeFlushConstPool(true)

	if a.err != nil {
		return nil, a.err
	}

	code := a.buf.Bytes()
	for _, cb := range a.OnGenerateCallbacks {
		if err := cb(code); err != nil {
			return nil, err
		}
	}
	return code, nil
}

// maybeFlushConstPool flushes the constant pool if endOfBinary or a boundary condition was met.
func (a *AssemblerImpl) maybeFlushConstPool(endOfBinary bool) {
	if a.pool.firstUseOffsetInBinary == nil {
		return
	}

	// If endOfBinary = true, we no longer emit instructions, therefore
	// flush all the constants.
	if endOfBinary ||
		// Also, if the offset between the first usage of the constant pool and
		// the first constant would exceed 2^20 -1(= 1MiB-1), which is the maximum offset
		// for load(literal) instruction, flush all the constants in the pool.
		(a.buf.Len()-int(*a.pool.firstUseOffsetInBinary)) >= (1<<20)-1-4 { // -4 for unconditional branch to skip the constants.

		// Before emitting consts, we have to add a b instruction to skip over
		// the const pool; at the end of the binary it is never reached but
		// keeps the bytes well-formed.
		skipOffset := len(a.pool.consts) + 1
		a.buf.Write([]byte{
			byte(skipOffset),
			byte(skipOffset >> 8),
			byte(skipOffset >> 16),
			0x14,
		})

		// Then adding the consts into the binary.
		for _, c := range a.pool.consts {
			offsetOfConst := a.buf.Len()
			a.buf.Write([]byte{byte(c), byte(c >> 8), byte(c >> 16), byte(c >> 24)})

			// Invoke callbacks for `c` with the offset of binary where we store `c`.
			for _, cb := range a.pool.offsetFinalizedCallbacks[c] {
				cb(offsetOfConst)
			}
		}

		// After the flush, reset the constant pool.
		a.pool = constPool{offsetFinalizedCallbacks: map[int32][]func(int){}}
	}
}

func (a *AssemblerImpl) setConstPoolCallback(v int32, cb func(int)) {
	a.pool.offsetFinalizedCallbacks[v] = append(a.pool.offsetFinalizedCallbacks[v], cb)
}

func (a *AssemblerImpl) addConstPool(v int32, useOffset asm.NodeOffsetInBinary) {
	if a.pool.firstUseOffsetInBinary == nil {
		a.pool.firstUseOffsetInBinary = &useOffset
	}

	if _, ok := a.pool.offsetFinalizedCallbacks[v]; !ok {
		a.pool.consts = append(a.pool.consts, v)
		a.pool.offsetFinalizedCallbacks[v] = []func(int){}
	}
}

// encodeNode encodes the given node into the buffer.
func (a *AssemblerImpl) encodeNode(n *nodeImpl) (err error) {
	switch n.types {
	case operandTypesNoneToNone:
		err = a.encodeNoneToNone(n)
	case operandTypesNoneToRegister:
		err = a.encodeJumpToRegister(n)
	case operandTypesNoneToBranch:
		err = a.encodeRelativeBranch(n)
	case operandTypesCompareBranch:
		err = a.encodeCompareBranch(n)
	case operandTypesRegisterToRegister:
		err = a.encodeRegisterToRegister(n)
	case operandTypesLeftShiftedRegisterToRegister:
		err = a.encodeLeftShiftedRegisterToRegister(n)
	case operandTypesTwoRegistersToRegister:
		err = a.encodeTwoRegistersToRegister(n)
	case operandTypesThreeRegistersToRegister:
		err = a.encodeThreeRegistersToRegister(n)
	case operandTypesTwoRegistersToNone:
		err = a.encodeTwoRegistersToNone(n)
	case operandTypesRegisterAndConstToNone:
		err = a.encodeRegisterAndConstToNone(n)
	case operandTypesConstAndRegisterToRegister:
		err = a.encodeConstAndRegisterToRegister(n)
	case operandTypesRegisterToMemory:
		err = a.encodeRegisterToMemory(n)
	case operandTypesMemoryToRegister:
		err = a.encodeMemoryToRegister(n)
	case operandTypesRegisterToMemoryUnscaled:
		err = a.encodeRegisterToMemoryUnscaled(n)
	case operandTypesMemoryToRegisterUnscaled:
		err = a.encodeMemoryToRegisterUnscaled(n)
	case operandTypesRegisterToMemoryPostIndexed:
		err = a.encodeRegisterToMemoryPostIndexed(n)
	case operandTypesTwoRegistersToMemoryPreIndexed:
		err = a.encodeTwoRegistersToMemoryPreIndexed(n)
	case operandTypesMemoryToTwoRegistersPostIndexed:
		err = a.encodeMemoryToTwoRegistersPostIndexed(n)
	case operandTypesConstToRegister:
		err = a.encodeConstToRegister(n)
	case operandTypesConstShiftedToRegister:
		err = a.encodeConstShiftedToRegister(n)
	case operandTypesLabelToRegister:
		err = a.encodeLabelToRegister(n)
	default:
		err = fmt.Errorf("encoder undefined for [%s] operand type", n.types)
	}
	return
}

// CompileStandAlone implements the same method as documented on asm.AssemblerBase.
func (a *AssemblerImpl) CompileStandAlone(instruction asm.Instruction) asm.Node {
	n := a.newNode(instruction, operandTypesNoneToNone)
	a.encode(n)
	return n
}

// CompileConstToRegister implements the same method as documented on asm.AssemblerBase.
func (a *AssemblerImpl) CompileConstToRegister(instruction asm.Instruction, value asm.ConstantValue, destinationReg asm.Register) asm.Node {
	n := a.newNode(instruction, operandTypesConstToRegister)
	n.srcConst = value
	n.dstReg = destinationReg
	a.encode(n)
	return n
}

// CompileRegisterToRegister implements the same method as documented on asm.AssemblerBase.
func (a *AssemblerImpl) CompileRegisterToRegister(instruction asm.Instruction, from, to asm.Register) {
	n := a.newNode(instruction, operandTypesRegisterToRegister)
	n.srcReg = from
	n.dstReg = to
	a.encode(n)
}

// CompileMemoryToRegister implements the same method as documented on asm.AssemblerBase.
func (a *AssemblerImpl) CompileMemoryToRegister(instruction asm.Instruction, sourceBaseReg asm.Register, sourceOffsetConst asm.ConstantValue, destinationReg asm.Register) {
	n := a.newNode(instruction, operandTypesMemoryToRegister)
	n.srcReg = sourceBaseReg
	n.srcConst = sourceOffsetConst
	n.dstReg = destinationReg
	a.encode(n)
}

// CompileRegisterToMemory implements the same method as documented on asm.AssemblerBase.
func (a *AssemblerImpl) CompileRegisterToMemory(instruction asm.Instruction, sourceRegister, destinationBaseRegister asm.Register, destinationOffsetConst asm.ConstantValue) {
	n := a.newNode(instruction, operandTypesRegisterToMemory)
	n.srcReg = sourceRegister
	n.dstReg = destinationBaseRegister
	n.dstConst = destinationOffsetConst
	a.encode(n)
}

// CompileJumpToRegister implements the same method as documented on asm.AssemblerBase.
func (a *AssemblerImpl) CompileJumpToRegister(jmpInstruction asm.Instruction, reg asm.Register) {
	n := a.newNode(jmpInstruction, operandTypesNoneToRegister)
	n.dstReg = reg
	a.encode(n)
}

// CompileBranchToLabel implements the same method as documented on asm.AssemblerBase.
func (a *AssemblerImpl) CompileBranchToLabel(jmpInstruction asm.Instruction, label asm.Label) asm.Node {
	n := a.newNode(jmpInstruction, operandTypesNoneToBranch)
	n.jumpLabel = label
	a.encode(n)
	return n
}

// CompileMemoryWithRegisterOffsetToRegister implements Assembler.CompileMemoryWithRegisterOffsetToRegister.
func (a *AssemblerImpl) CompileMemoryWithRegisterOffsetToRegister(instruction asm.Instruction, srcBaseReg, srcOffsetReg, dstReg asm.Register) {
	n := a.newNode(instruction, operandTypesMemoryToRegister)
	n.srcReg = srcBaseReg
	n.srcReg2 = srcOffsetReg
	n.dstReg = dstReg
	a.encode(n)
}

// CompileRegisterToMemoryWithRegisterOffset implements Assembler.CompileRegisterToMemoryWithRegisterOffset.
func (a *AssemblerImpl) CompileRegisterToMemoryWithRegisterOffset(instruction asm.Instruction, srcReg, dstBaseReg, dstOffsetReg asm.Register) {
	n := a.newNode(instruction, operandTypesRegisterToMemory)
	n.srcReg = srcReg
	n.dstReg = dstBaseReg
	n.dstReg2 = dstOffsetReg
	a.encode(n)
}

// CompileMemoryToRegisterUnscaled implements Assembler.CompileMemoryToRegisterUnscaled.
func (a *AssemblerImpl) CompileMemoryToRegisterUnscaled(instruction asm.Instruction, srcBaseReg asm.Register, srcOffsetConst asm.ConstantValue, dstReg asm.Register) {
	n := a.newNode(instruction, operandTypesMemoryToRegisterUnscaled)
	n.srcReg = srcBaseReg
	n.srcConst = srcOffsetConst
	n.dstReg = dstReg
	a.encode(n)
}

// CompileRegisterToMemoryUnscaled implements Assembler.CompileRegisterToMemoryUnscaled.
func (a *AssemblerImpl) CompileRegisterToMemoryUnscaled(instruction asm.Instruction, srcReg, dstBaseReg asm.Register, dstOffsetConst asm.ConstantValue) {
	n := a.newNode(instruction, operandTypesRegisterToMemoryUnscaled)
	n.srcReg = srcReg
	n.dstReg = dstBaseReg
	n.dstConst = dstOffsetConst
	a.encode(n)
}

// CompileRegisterToMemoryPostIndexed implements Assembler.CompileRegisterToMemoryPostIndexed.
func (a *AssemblerImpl) CompileRegisterToMemoryPostIndexed(instruction asm.Instruction, srcReg, dstBaseReg asm.Register, increment asm.ConstantValue) {
	n := a.newNode(instruction, operandTypesRegisterToMemoryPostIndexed)
	n.srcReg = srcReg
	n.dstReg = dstBaseReg
	n.dstConst = increment
	a.encode(n)
}

// CompileTwoRegistersToMemoryPreIndexed implements Assembler.CompileTwoRegistersToMemoryPreIndexed.
func (a *AssemblerImpl) CompileTwoRegistersToMemoryPreIndexed(instruction asm.Instruction, srcReg, srcReg2, dstBaseReg asm.Register, decrement asm.ConstantValue) {
	n := a.newNode(instruction, operandTypesTwoRegistersToMemoryPreIndexed)
	n.srcReg = srcReg
	n.srcReg2 = srcReg2
	n.dstReg = dstBaseReg
	n.dstConst = decrement
	a.encode(n)
}

// CompileMemoryToTwoRegistersPostIndexed implements Assembler.CompileMemoryToTwoRegistersPostIndexed.
func (a *AssemblerImpl) CompileMemoryToTwoRegistersPostIndexed(instruction asm.Instruction, srcBaseReg asm.Register, increment asm.ConstantValue, dstReg, dstReg2 asm.Register) {
	n := a.newNode(instruction, operandTypesMemoryToTwoRegistersPostIndexed)
	n.srcReg = srcBaseReg
	n.srcConst = increment
	n.dstReg = dstReg
	n.dstReg2 = dstReg2
	a.encode(n)
}

// CompileTwoRegistersToRegister implements Assembler.CompileTwoRegistersToRegister.
func (a *AssemblerImpl) CompileTwoRegistersToRegister(instruction asm.Instruction, src1, src2, dst asm.Register) {
	n := a.newNode(instruction, operandTypesTwoRegistersToRegister)
	n.srcReg = src1
	n.srcReg2 = src2
	n.dstReg = dst
	a.encode(n)
}

// CompileThreeRegistersToRegister implements Assembler.CompileThreeRegistersToRegister.
func (a *AssemblerImpl) CompileThreeRegistersToRegister(instruction asm.Instruction, rn, rm, ra, dst asm.Register) {
	n := a.newNode(instruction, operandTypesThreeRegistersToRegister)
	n.srcReg = rn
	n.srcReg2 = rm
	n.dstReg = ra // To minimize the size of nodeImpl struct, we reuse dstReg for the third source operand.
	n.dstReg2 = dst
	a.encode(n)
}

// CompileTwoRegistersToNone implements Assembler.CompileTwoRegistersToNone.
func (a *AssemblerImpl) CompileTwoRegistersToNone(instruction asm.Instruction, src1, src2 asm.Register) {
	n := a.newNode(instruction, operandTypesTwoRegistersToNone)
	n.srcReg = src1
	n.srcReg2 = src2
	a.encode(n)
}

// CompileRegisterAndConstToNone implements Assembler.CompileRegisterAndConstToNone.
func (a *AssemblerImpl) CompileRegisterAndConstToNone(instruction asm.Instruction, src asm.Register, srcConst asm.ConstantValue) {
	n := a.newNode(instruction, operandTypesRegisterAndConstToNone)
	n.srcReg = src
	n.srcConst = srcConst
	a.encode(n)
}

// CompileConstAndRegisterToRegister implements Assembler.CompileConstAndRegisterToRegister.
func (a *AssemblerImpl) CompileConstAndRegisterToRegister(instruction asm.Instruction, value asm.ConstantValue, src, dst asm.Register) {
	n := a.newNode(instruction, operandTypesConstAndRegisterToRegister)
	n.srcConst = value
	n.srcReg = src
	n.dstReg = dst
	a.encode(n)
}

// CompileConstShiftedToRegister implements Assembler.CompileConstShiftedToRegister.
func (a *AssemblerImpl) CompileConstShiftedToRegister(instruction asm.Instruction, value asm.ConstantValue, shift asm.ConstantValue, reg asm.Register) asm.Node {
	n := a.newNode(instruction, operandTypesConstShiftedToRegister)
	n.srcConst = value
	n.dstConst = shift // shift amount; see nodeImpl.srcConst2.
	n.dstReg = reg
	a.encode(n)
	return n
}

// CompileLeftShiftedRegisterToRegister implements Assembler.CompileLeftShiftedRegisterToRegister.
func (a *AssemblerImpl) CompileLeftShiftedRegisterToRegister(instruction asm.Instruction, shiftedSourceReg asm.Register, shiftNum asm.ConstantValue, srcReg, dstReg asm.Register) {
	n := a.newNode(instruction, operandTypesLeftShiftedRegisterToRegister)
	n.srcReg = srcReg
	n.srcReg2 = shiftedSourceReg
	n.srcConst = shiftNum
	n.dstReg = dstReg
	a.encode(n)
}

// CompileConditionalRegisterSet implements Assembler.CompileConditionalRegisterSet.
func (a *AssemblerImpl) CompileConditionalRegisterSet(cond asm.ConditionalRegisterState, dstReg asm.Register) {
	n := a.newNode(CSET, operandTypesRegisterToRegister)
	n.srcReg = conditionalRegisterStateToRegister(cond)
	n.dstReg = dstReg
	a.encode(n)
}

// CompileCompareBranchToLabel implements Assembler.CompileCompareBranchToLabel.
func (a *AssemblerImpl) CompileCompareBranchToLabel(instruction asm.Instruction, reg asm.Register, label asm.Label) asm.Node {
	n := a.newNode(instruction, operandTypesCompareBranch)
	n.srcReg = reg
	n.jumpLabel = label
	a.encode(n)
	return n
}

// CompileLoadLabelAddress implements Assembler.CompileLoadLabelAddress.
func (a *AssemblerImpl) CompileLoadLabelAddress(dstReg asm.Register, label asm.Label) {
	n := a.newNode(ADR, operandTypesLabelToRegister)
	n.dstReg = dstReg
	n.jumpLabel = label
	a.encode(n)
}

func errorEncodingUnsupported(n *nodeImpl) error {
	return fmt.Errorf("%s is unsupported for %s type", InstructionName(n.instruction), n.types)
}

func (a *AssemblerImpl) encodeNoneToNone(n *nodeImpl) (err error) {
	switch n.instruction {
	case NOP:
		// NOP is for skipping setting the jump target, and we don't have to
		// emit it into the binary.
	case RET:
		// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/RET--Return-from-subroutine-
		a.write32(0b1101011_0_0_10_11111_0000_0_0<<10 | 30<<5)
	case BRK:
		// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/BRK--Breakpoint-instruction-
		a.write32(0xd420_0000)
	case DMB:
		// DMB ISH.
		// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/DMB--Data-Memory-Barrier-
		a.write32(0xd503_3bbf)
	default:
		err = errorEncodingUnsupported(n)
	}
	return
}

func (a *AssemblerImpl) encodeJumpToRegister(n *nodeImpl) (err error) {
	// "Unconditional branch (register)" in
	// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Branches--Exception-Generating-and-System-instructions
	var opc uint32
	switch n.instruction {
	case RET:
		opc = 0b0010
	case BR:
		opc = 0b0000
	case BLR:
		opc = 0b0001
	default:
		return errorEncodingUnsupported(n)
	}

	regBits, err := intRegisterBits(n.dstReg)
	if err != nil {
		return fmt.Errorf("invalid destination register: %w", err)
	}

	a.write32(0b1101011<<25 | opc<<21 | 0b11111<<16 | uint32(regBits)<<5)
	return
}

// resolveBranchTarget returns the byte offset the branch-kind node jumps to,
// preferring the explicit node target and falling back to the label table.
func (a *AssemblerImpl) resolveBranchTarget(n *nodeImpl) (asm.NodeOffsetInBinary, error) {
	if n.jumpTarget != nil {
		return n.jumpTarget.OffsetInBinary(), nil
	}
	if n.jumpLabel != asm.NilLabel {
		offset, ok := a.labelOffsets[n.jumpLabel]
		if !ok {
			return 0, fmt.Errorf("BUG: branch to unbound label L%d", n.jumpLabel)
		}
		return offset, nil
	}
	return 0, fmt.Errorf("branch target must be set for %s", InstructionName(n.instruction))
}

func (a *AssemblerImpl) encodeRelativeBranch(n *nodeImpl) (err error) {
	switch n.instruction {
	case B, BL, BCONDEQ, BCONDNE, BCONDHS, BCONDLO, BCONDMI, BCONDPL, BCONDVS, BCONDVC,
		BCONDHI, BCONDLS, BCONDGE, BCONDLT, BCONDGT, BCONDLE:
	default:
		return errorEncodingUnsupported(n)
	}

	// At this point, we don't yet know the target's offset, so emit a placeholder (4 bytes).
	a.buf.Write([]byte{0, 0, 0, 0})

	a.AddOnGenerateCallBack(func(code []byte) error {
		const condBitsUnconditional = 0xff // Indicates this is not a conditional jump.

		// https://developer.arm.com/documentation/den0024/a/CHDEEABE
		var condBits byte
		switch n.instruction {
		case B, BL:
			condBits = condBitsUnconditional
		case BCONDEQ:
			condBits = 0b0000
		case BCONDNE:
			condBits = 0b0001
		case BCONDHS:
			condBits = 0b0010
		case BCONDLO:
			condBits = 0b0011
		case BCONDMI:
			condBits = 0b0100
		case BCONDPL:
			condBits = 0b0101
		case BCONDVS:
			condBits = 0b0110
		case BCONDVC:
			condBits = 0b0111
		case BCONDHI:
			condBits = 0b1000
		case BCONDLS:
			condBits = 0b1001
		case BCONDGE:
			condBits = 0b1010
		case BCONDLT:
			condBits = 0b1011
		case BCONDGT:
			condBits = 0b1100
		case BCONDLE:
			condBits = 0b1101
		}

		branchInstOffset := int64(n.OffsetInBinary())
		target, err := a.resolveBranchTarget(n)
		if err != nil {
			return err
		}
		offset := int64(target) - branchInstOffset
		if offset%4 != 0 {
			return errors.New("BUG: relative jump offset must be 4 bytes aligned")
		}

		branchInst := code[branchInstOffset : branchInstOffset+4]
		if condBits == condBitsUnconditional {
			imm26 := offset / 4
			const maxSignedInt26 int64 = 1<<25 - 1
			const minSignedInt26 int64 = -(1 << 25)
			if imm26 < minSignedInt26 || imm26 > maxSignedInt26 {
				// In theory this could happen if a Wasm binary has a huge single label (more than 128MB for a single block),
				// and in that case, we use load the offset into a register and do the register jump, but to avoid the complexity,
				// we impose this limit for now as that would be *unlikely* happen in practice.
				return fmt.Errorf("relative jump offset %d/4 must be within %d and %d", offset, minSignedInt26, maxSignedInt26)
			}
			// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/B--Branch-
			// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/BL--Branch-with-Link-
			var op byte // set for BL.
			if n.instruction == BL {
				op = 0b1
			}
			branchInst[0] = byte(imm26)
			branchInst[1] = byte(imm26 >> 8)
			branchInst[2] = byte(imm26 >> 16)
			branchInst[3] = (byte(imm26>>24) & 0b000000_11) | 0b000101_00 | op<<7
		} else {
			imm19 := offset / 4
			const maxSignedInt19 int64 = 1<<18 - 1
			const minSignedInt19 int64 = -(1 << 18)
			if imm19 < minSignedInt19 || imm19 > maxSignedInt19 {
				// This should be a bug in our compiler as the conditional jumps are only used in small distances (~a few bytes).
				return fmt.Errorf("BUG: relative jump offset %d/4(=%d) must be within %d and %d", offset, imm19, minSignedInt19, maxSignedInt19)
			}
			// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/B-cond--Branch-conditionally-
			branchInst[0] = (byte(imm19<<5) & 0b111_0_0000) | condBits
			branchInst[1] = byte(imm19 >> 3)
			branchInst[2] = byte(imm19 >> 11)
			branchInst[3] = 0b01010100
		}
		return nil
	})
	return
}

func (a *AssemblerImpl) encodeCompareBranch(n *nodeImpl) (err error) {
	// "Compare and branch (immediate)" in
	// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Branches--Exception-Generating-and-System-instructions
	var sf, op uint32
	switch n.instruction {
	case CBZ:
		sf, op = 0b1, 0b0
	case CBZW:
		sf, op = 0b0, 0b0
	case CBNZ:
		sf, op = 0b1, 0b1
	case CBNZW:
		sf, op = 0b0, 0b1
	default:
		return errorEncodingUnsupported(n)
	}

	regBits, err := intRegisterBits(n.srcReg)
	if err != nil {
		return err
	}

	a.write32(sf<<31 | 0b011010<<25 | op<<24 | uint32(regBits))

	a.AddOnGenerateCallBack(func(code []byte) error {
		branchInstOffset := int64(n.OffsetInBinary())
		target, err := a.resolveBranchTarget(n)
		if err != nil {
			return err
		}
		offset := int64(target) - branchInstOffset
		imm19 := offset / 4
		const maxSignedInt19 int64 = 1<<18 - 1
		const minSignedInt19 int64 = -(1 << 18)
		if offset%4 != 0 || imm19 < minSignedInt19 || imm19 > maxSignedInt19 {
			return fmt.Errorf("BUG: compare branch offset %d cannot be encoded", offset)
		}
		branchInst := code[branchInstOffset : branchInstOffset+4]
		branchInst[0] |= byte(imm19<<5) & 0b111_0_0000
		branchInst[1] = byte(imm19 >> 3)
		branchInst[2] = byte(imm19 >> 11)
		return nil
	})
	return
}

func (a *AssemblerImpl) encodeLabelToRegister(n *nodeImpl) (err error) {
	dstRegBits, err := intRegisterBits(n.dstReg)
	if err != nil {
		return err
	}

	// At this point, we don't yet know the target offset; emit ADR with
	// zero offset and patch in the callback.
	// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/ADR--Form-PC-relative-address-
	a.write32(0b10000<<24 | uint32(dstRegBits))

	a.AddOnGenerateCallBack(func(code []byte) error {
		adrInstOffset := int64(n.OffsetInBinary())
		target, err := a.resolveBranchTarget(n)
		if err != nil {
			return err
		}
		offset := int64(target) - adrInstOffset
		const maxSignedInt21 int64 = 1<<20 - 1
		const minSignedInt21 int64 = -(1 << 20)
		if offset < minSignedInt21 || offset > maxSignedInt21 {
			return fmt.Errorf("BUG: ADR offset %d exceeds +-1MB", offset)
		}

		immlo := uint32(offset) & 0b11
		immhi := (uint32(offset) >> 2) & 0x7ffff

		adrInst := code[adrInstOffset : adrInstOffset+4]
		adrInst[0] |= byte(immhi << 5)
		adrInst[1] = byte(immhi >> 3)
		adrInst[2] = byte(immhi >> 11)
		adrInst[3] |= byte(immlo << 5)
		return nil
	})
	return
}

func checkRegisterToRegisterType(src, dst asm.Register, requireSrcInt, requireDstInt bool) (err error) {
	isSrcInt, isDstInt := isIntRegister(src), isIntRegister(dst)
	if isSrcInt && !requireSrcInt {
		err = fmt.Errorf("src requires float register but got %s", RegisterName(src))
	} else if !isSrcInt && requireSrcInt {
		err = fmt.Errorf("src requires int register but got %s", RegisterName(src))
	} else if isDstInt && !requireDstInt {
		err = fmt.Errorf("dst requires float register but got %s", RegisterName(dst))
	} else if !isDstInt && requireDstInt {
		err = fmt.Errorf("dst requires int register but got %s", RegisterName(dst))
	}
	return
}

func (a *AssemblerImpl) encodeRegisterToRegister(n *nodeImpl) (err error) {
	switch inst := n.instruction; inst {
	case MOVD, MOVWU:
		if err = checkRegisterToRegisterType(n.srcReg, n.dstReg, true, true); err != nil {
			return
		}

		// MOV (register) is encoded as ORR with the zero register:
		// "ORR Wd, WZR, Wm".
		// https://developer.arm.com/documentation/100069/0609/A64-General-Instructions/MOV--register-
		var sf uint32
		if inst == MOVD {
			sf = 0b1
		}
		srcRegBits, dstRegBits := registerBits(n.srcReg), registerBits(n.dstReg)
		a.write32(sf<<31 | 0b01_01010<<24 | uint32(srcRegBits)<<16 | uint32(zeroRegisterBits)<<5 | uint32(dstRegBits))

	case CLZ, CLZW, RBIT, RBITW:
		if err = checkRegisterToRegisterType(n.srcReg, n.dstReg, true, true); err != nil {
			return
		}

		// "Data-processing (1 source)" in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Register
		var sf, opcode uint32
		switch inst {
		case CLZ:
			sf, opcode = 0b1, 0b000100
		case CLZW:
			sf, opcode = 0b0, 0b000100
		case RBIT:
			sf, opcode = 0b1, 0b000000
		case RBITW:
			sf, opcode = 0b0, 0b000000
		}

		srcRegBits, dstRegBits := registerBits(n.srcReg), registerBits(n.dstReg)
		a.write32(sf<<31 | 0b1_0_11010110_00000<<16 | opcode<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))

	case CSET:
		if !isConditionalRegister(n.srcReg) {
			return fmt.Errorf("CSET requires conditional register but got %s", RegisterName(n.srcReg))
		}

		dstRegBits, err := intRegisterBits(n.dstReg)
		if err != nil {
			return err
		}

		// CSET is an alias of CSINC with the zero registers and the condition inverted on
		// its least significant bit.
		// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/CSET--Conditional-Set--an-alias-of-CSINC-
		var conditionalBits uint32
		switch n.srcReg {
		case RegCondEQ:
			conditionalBits = 0b0001
		case RegCondNE:
			conditionalBits = 0b0000
		case RegCondHS:
			conditionalBits = 0b0011
		case RegCondLO:
			conditionalBits = 0b0010
		case RegCondMI:
			conditionalBits = 0b0101
		case RegCondPL:
			conditionalBits = 0b0100
		case RegCondVS:
			conditionalBits = 0b0111
		case RegCondVC:
			conditionalBits = 0b0110
		case RegCondHI:
			conditionalBits = 0b1001
		case RegCondLS:
			conditionalBits = 0b1000
		case RegCondGE:
			conditionalBits = 0b1011
		case RegCondLT:
			conditionalBits = 0b1010
		case RegCondGT:
			conditionalBits = 0b1101
		case RegCondLE:
			conditionalBits = 0b1100
		case RegCondAL:
			conditionalBits = 0b1111
		case RegCondNV:
			conditionalBits = 0b1110
		}

		a.write32(0b1_0_0_11010100_11111<<16 | conditionalBits<<12 | 0b01_11111<<5 | uint32(dstRegBits))

	case SXTB, SXTBW, SXTH, SXTHW, SXTW:
		if err = checkRegisterToRegisterType(n.srcReg, n.dstReg, true, true); err != nil {
			return
		}

		srcRegBits, dstRegBits := registerBits(n.srcReg), registerBits(n.dstReg)
		if n.srcReg == RegRZR {
			// If the source is the zero register, encode as MOV dst, zero.
			var sf uint32
			if inst == SXTB || inst == SXTH || inst == SXTW {
				sf = 0b1
			}
			a.write32(sf<<31 | 0b01_01010<<24 | uint32(srcRegBits)<<16 | uint32(zeroRegisterBits)<<5 | uint32(dstRegBits))
			return
		}

		// SXTB is encoded as "SBFM Wd, Wn, #0, #7"
		// https://developer.arm.com/documentation/dui0801/g/A64-General-Instructions/SXTB
		// SXTH is encoded as "SBFM Wd, Wn, #0, #15"
		// https://developer.arm.com/documentation/dui0801/g/A64-General-Instructions/SXTH
		// SXTW is encoded as "SBFM Xd, Xn, #0, #31"
		// https://developer.arm.com/documentation/dui0802/b/A64-General-Instructions/SXTW
		var sf, nbit, imms uint32
		switch inst {
		case SXTB:
			sf, nbit, imms = 0b1, 0b1, 0x7
		case SXTBW:
			sf, nbit, imms = 0b0, 0b0, 0x7
		case SXTH:
			sf, nbit, imms = 0b1, 0b1, 0xf
		case SXTHW:
			sf, nbit, imms = 0b0, 0b0, 0xf
		case SXTW:
			sf, nbit, imms = 0b1, 0b1, 0x1f
		}

		a.write32(sf<<31 | 0b00_100110<<23 | nbit<<22 | imms<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))

	case FMOVD, FMOVS:
		isSrcInt, isDstInt := isIntRegister(n.srcReg), isIntRegister(n.dstReg)
		if isSrcInt && isDstInt {
			return errors.New("FMOV needs at least one of operands to be float")
		}

		srcRegBits, dstRegBits := registerBits(n.srcReg), registerBits(n.dstReg)
		var ftype, sf uint32
		if n.instruction == FMOVD {
			ftype, sf = 0b01, 0b1
		}
		// https://developer.arm.com/documentation/ddi0596/2021-12/SIMD-FP-Instructions/FMOV--register---Floating-point-Move-register-without-conversion-
		if !isSrcInt && !isDstInt { // Float to float.
			a.write32(0b000_11110<<24 | ftype<<22 | 0b1_000000_10000<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))
		} else if isSrcInt && !isDstInt { // Int to float.
			a.write32(sf<<31 | 0b00_11110<<24 | ftype<<22 | 0b1_00_111_000000<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))
		} else { // Float to int.
			a.write32(sf<<31 | 0b00_11110<<24 | ftype<<22 | 0b1_00_110_000000<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))
		}

	case FNEGD, FNEGS, FABSD, FABSS, FSQRTD, FSQRTS, FCVTDS, FCVTSD:
		if err = checkRegisterToRegisterType(n.srcReg, n.dstReg, false, false); err != nil {
			return
		}

		srcRegBits, dstRegBits := registerBits(n.srcReg), registerBits(n.dstReg)

		// "Floating-point data-processing (1 source)" in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Scalar-Floating-Point-and-Advanced-SIMD
		var ftype, opcode uint32
		switch inst {
		case FABSD:
			opcode, ftype = 0b000001, 0b01
		case FABSS:
			opcode, ftype = 0b000001, 0b00
		case FNEGD:
			opcode, ftype = 0b000010, 0b01
		case FNEGS:
			opcode, ftype = 0b000010, 0b00
		case FSQRTD:
			opcode, ftype = 0b000011, 0b01
		case FSQRTS:
			opcode, ftype = 0b000011, 0b00
		case FCVTSD:
			// Converts to double precision, so the source is single (ftype=00).
			opcode, ftype = 0b000101, 0b00
		case FCVTDS:
			// Converts to single precision, so the source is double (ftype=01).
			opcode, ftype = 0b000100, 0b01
		}
		a.write32(0b000_11110<<24 | ftype<<22 | 0b1<<21 | opcode<<15 | 0b10000<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))

	case SCVTFD, SCVTFS, SCVTFWD, SCVTFWS, UCVTFD, UCVTFS, UCVTFWD, UCVTFWS:
		if err = checkRegisterToRegisterType(n.srcReg, n.dstReg, true, false); err != nil {
			return
		}

		srcRegBits, dstRegBits := registerBits(n.srcReg), registerBits(n.dstReg)

		// "Conversion between floating-point and integer" in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Scalar-Floating-Point-and-Advanced-SIMD
		var sf, ftype, opcode uint32
		switch inst {
		case SCVTFD: // 64-bit integer to double.
			sf, ftype, opcode = 0b1, 0b01, 0b010
		case SCVTFWD: // 32-bit integer to double.
			sf, ftype, opcode = 0b0, 0b01, 0b010
		case SCVTFS: // 64-bit integer to single.
			sf, ftype, opcode = 0b1, 0b00, 0b010
		case SCVTFWS: // 32-bit integer to single.
			sf, ftype, opcode = 0b0, 0b00, 0b010
		case UCVTFD: // 64-bit to double.
			sf, ftype, opcode = 0b1, 0b01, 0b011
		case UCVTFWD: // 32-bit to double.
			sf, ftype, opcode = 0b0, 0b01, 0b011
		case UCVTFS: // 64-bit to single.
			sf, ftype, opcode = 0b1, 0b00, 0b011
		case UCVTFWS: // 32-bit to single.
			sf, ftype, opcode = 0b0, 0b00, 0b011
		}

		a.write32(sf<<31 | 0b00_11110<<24 | ftype<<22 | 0b1<<21 | opcode<<16 | uint32(srcRegBits)<<5 | uint32(dstRegBits))

	default:
		return errorEncodingUnsupported(n)
	}
	return
}

func (a *AssemblerImpl) encodeLeftShiftedRegisterToRegister(n *nodeImpl) (err error) {
	baseRegBits, err := intRegisterBits(n.srcReg)
	if err != nil {
		return err
	}
	shiftTargetRegBits, err := intRegisterBits(n.srcReg2)
	if err != nil {
		return err
	}
	dstRegBits, err := intRegisterBits(n.dstReg)
	if err != nil {
		return err
	}

	switch n.instruction {
	case ADD:
		// "Add/subtract (shifted register)" with a logical left shift.
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Register#addsub_shift
		const logicalLeftShiftBits = 0b00
		if n.srcConst < 0 || n.srcConst > 63 {
			return fmt.Errorf("shift amount must fit in unsigned 6-bit integer (0-63) but got %d", n.srcConst)
		}
		a.write32(0b1_00_01011<<24 | logicalLeftShiftBits<<22 | uint32(shiftTargetRegBits)<<16 |
			uint32(n.srcConst)<<10 | uint32(baseRegBits)<<5 | uint32(dstRegBits))
	default:
		return errorEncodingUnsupported(n)
	}
	return
}

func (a *AssemblerImpl) encodeTwoRegistersToRegister(n *nodeImpl) (err error) {
	switch inst := n.instruction; inst {
	case ADD, ADDW, ADDS, ADDSW, SUB, SUBW, SUBS, SUBSW:
		srcRegBits, srcReg2Bits, dstRegBits := registerBits(n.srcReg), registerBits(n.srcReg2), registerBits(n.dstReg)

		var sf, op, setFlags uint32
		switch inst {
		case ADD:
			sf = 0b1
		case ADDW:
		case ADDS:
			sf, setFlags = 0b1, 0b1
		case ADDSW:
			setFlags = 0b1
		case SUB:
			sf, op = 0b1, 0b1
		case SUBW:
			op = 0b1
		case SUBS:
			sf, op, setFlags = 0b1, 0b1, 0b1
		case SUBSW:
			op, setFlags = 0b1, 0b1
		}

		if setFlags == 0 && (n.srcReg == RegSP || n.dstReg == RegSP) {
			// "Add/subtract (extended register)": the stack pointer can only be
			// addressed there, with UXTX extension and zero shift.
			// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Register#addsub_ext
			a.write32(sf<<31 | op<<30 | 0b01011<<24 | 0b1<<21 | uint32(srcReg2Bits)<<16 | 0b011<<13 | uint32(srcRegBits)<<5 | uint32(dstRegBits))
			return
		}

		// "Add/subtract (shifted register)" in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Register#addsub_shift
		a.write32(sf<<31 | op<<30 | setFlags<<29 | 0b01011<<24 | uint32(srcReg2Bits)<<16 | uint32(srcRegBits)<<5 | uint32(dstRegBits))

	case AND, ANDW, ORR, ORRW, EOR, EORW:
		// "Logical (shifted register)" in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Register
		srcRegBits, srcReg2Bits, dstRegBits := registerBits(n.srcReg), registerBits(n.srcReg2), registerBits(n.dstReg)
		var sf, opc uint32
		switch inst {
		case AND:
			sf, opc = 0b1, 0b00
		case ANDW:
			sf, opc = 0b0, 0b00
		case ORR:
			sf, opc = 0b1, 0b01
		case ORRW:
			sf, opc = 0b0, 0b01
		case EOR:
			sf, opc = 0b1, 0b10
		case EORW:
			sf, opc = 0b0, 0b10
		}
		a.write32(sf<<31 | opc<<29 | 0b01010<<24 | uint32(srcReg2Bits)<<16 | uint32(srcRegBits)<<5 | uint32(dstRegBits))

	case LSL, LSLW, LSR, LSRW, ASR, ASRW, ROR, RORW:
		// "Data-processing (2 source)" in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Register
		srcRegBits, srcReg2Bits, dstRegBits := registerBits(n.srcReg), registerBits(n.srcReg2), registerBits(n.dstReg)

		var sf, opcode uint32
		switch inst {
		case LSL:
			sf, opcode = 0b1, 0b001000
		case LSLW:
			sf, opcode = 0b0, 0b001000
		case LSR:
			sf, opcode = 0b1, 0b001001
		case LSRW:
			sf, opcode = 0b0, 0b001001
		case ASR:
			sf, opcode = 0b1, 0b001010
		case ASRW:
			sf, opcode = 0b0, 0b001010
		case ROR:
			sf, opcode = 0b1, 0b001011
		case RORW:
			sf, opcode = 0b0, 0b001011
		}
		a.write32(sf<<31 | 0b0_11010110<<21 | uint32(srcReg2Bits)<<16 | opcode<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))

	case SDIV, SDIVW, UDIV, UDIVW:
		srcRegBits, srcReg2Bits, dstRegBits := registerBits(n.srcReg), registerBits(n.srcReg2), registerBits(n.dstReg)

		// "Data-processing (2 source)" in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Register
		var sf, opcode uint32
		switch inst {
		case SDIV:
			sf, opcode = 0b1, 0b000011
		case SDIVW:
			sf, opcode = 0b0, 0b000011
		case UDIV:
			sf, opcode = 0b1, 0b000010
		case UDIVW:
			sf, opcode = 0b0, 0b000010
		}

		a.write32(sf<<31 | 0b0_11010110<<21 | uint32(srcReg2Bits)<<16 | opcode<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))

	case MUL, MULW:
		// Multiplications are encoded as MADD with the zero register:
		// dst = ZR + (src1 * src2).
		// "Data-processing (3 source)" in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Register
		srcRegBits, srcReg2Bits, dstRegBits := registerBits(n.srcReg), registerBits(n.srcReg2), registerBits(n.dstReg)

		var sf uint32
		if inst == MUL {
			sf = 0b1
		}

		a.write32(sf<<31 | 0b00_11011<<24 | uint32(srcReg2Bits)<<16 | uint32(zeroRegisterBits)<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))

	case FADDD, FADDS, FSUBD, FSUBS, FMULD, FMULS, FDIVD, FDIVS, FMIND, FMINS, FMAXD, FMAXS:
		if err = checkRegisterToRegisterType(n.srcReg, n.srcReg2, false, false); err != nil {
			return
		}

		srcRegBits, srcReg2Bits, dstRegBits := registerBits(n.srcReg), registerBits(n.srcReg2), registerBits(n.dstReg)

		// "Floating-point data-processing (2 source)" in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Scalar-Floating-Point-and-Advanced-SIMD
		var ftype, opcode uint32
		switch inst {
		case FMULD:
			opcode, ftype = 0b0000, 0b01
		case FMULS:
			opcode, ftype = 0b0000, 0b00
		case FDIVD:
			opcode, ftype = 0b0001, 0b01
		case FDIVS:
			opcode, ftype = 0b0001, 0b00
		case FADDD:
			opcode, ftype = 0b0010, 0b01
		case FADDS:
			opcode, ftype = 0b0010, 0b00
		case FSUBD:
			opcode, ftype = 0b0011, 0b01
		case FSUBS:
			opcode, ftype = 0b0011, 0b00
		case FMAXD:
			opcode, ftype = 0b0100, 0b01
		case FMAXS:
			opcode, ftype = 0b0100, 0b00
		case FMIND:
			opcode, ftype = 0b0101, 0b01
		case FMINS:
			opcode, ftype = 0b0101, 0b00
		}

		a.write32(0b000_11110<<24 | ftype<<22 | 0b1<<21 | uint32(srcReg2Bits)<<16 | opcode<<12 | 0b10<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))

	default:
		return errorEncodingUnsupported(n)
	}
	return
}

func (a *AssemblerImpl) encodeThreeRegistersToRegister(n *nodeImpl) (err error) {
	switch n.instruction {
	case MSUB, MSUBW:
		// dst = ra - (rn * rm).
		// "Data-processing (3 source)" in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Register
		rnRegBits, err := intRegisterBits(n.srcReg)
		if err != nil {
			return err
		}
		rmRegBits, err := intRegisterBits(n.srcReg2)
		if err != nil {
			return err
		}
		raRegBits, err := intRegisterBits(n.dstReg)
		if err != nil {
			return err
		}
		dstRegBits, err := intRegisterBits(n.dstReg2)
		if err != nil {
			return err
		}

		var sf uint32 // is zero for MSUBW (32-bit MSUB).
		if n.instruction == MSUB {
			sf = 0b1
		}

		a.write32(sf<<31 | 0b00_11011<<24 | uint32(rmRegBits)<<16 | 0b1<<15 | uint32(raRegBits)<<10 | uint32(rnRegBits)<<5 | uint32(dstRegBits))
		return nil
	default:
		return errorEncodingUnsupported(n)
	}
}

func (a *AssemblerImpl) encodeTwoRegistersToNone(n *nodeImpl) (err error) {
	switch n.instruction {
	case CMP, CMPW:
		// Compare on two registers is an alias for "SUBS src1, src2, ZERO",
		// encoded as SUBS (shifted register) with zero shift.
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Register#addsub_shift
		src1RegBits, err := intRegisterBits(n.srcReg)
		if err != nil {
			return err
		}
		src2RegBits, err := intRegisterBits(n.srcReg2)
		if err != nil {
			return err
		}

		var sf uint32
		if n.instruction == CMP {
			sf = 0b1
		}
		a.write32(sf<<31 | 0b11_01011<<24 | uint32(src2RegBits)<<16 | uint32(src1RegBits)<<5 | uint32(zeroRegisterBits))

	case TST, TSTW:
		// TST is an alias for "ANDS src1, src2, ZERO".
		// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/TST--shifted-register---Test--shifted-register---an-alias-of-ANDS--shifted-register--
		src1RegBits, err := intRegisterBits(n.srcReg)
		if err != nil {
			return err
		}
		src2RegBits, err := intRegisterBits(n.srcReg2)
		if err != nil {
			return err
		}

		var sf uint32
		if n.instruction == TST {
			sf = 0b1
		}
		a.write32(sf<<31 | 0b11_01010<<24 | uint32(src2RegBits)<<16 | uint32(src1RegBits)<<5 | uint32(zeroRegisterBits))

	case FCMPS, FCMPD:
		// "Floating-point compare" section in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Scalar-Floating-Point-and-Advanced-SIMD
		src1RegBits, err := vectorRegisterBits(n.srcReg)
		if err != nil {
			return err
		}
		src2RegBits, err := vectorRegisterBits(n.srcReg2)
		if err != nil {
			return err
		}

		var ftype uint32 // is zero for FCMPS (single precision float compare).
		if n.instruction == FCMPD {
			ftype = 0b01
		}
		a.write32(0b000_11110<<24 | ftype<<22 | 0b1<<21 | uint32(src2RegBits)<<16 | 0b001000<<10 | uint32(src1RegBits)<<5)

	default:
		return errorEncodingUnsupported(n)
	}
	return
}

func (a *AssemblerImpl) encodeRegisterAndConstToNone(n *nodeImpl) (err error) {
	switch n.instruction {
	case CMP, CMPW:
		// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/CMP--immediate---Compare--immediate---an-alias-of-SUBS--immediate--
		if n.srcConst < 0 || n.srcConst > 4095 {
			return fmt.Errorf("immediate for CMP must fit in 0 to 4095 but got %d", n.srcConst)
		} else if n.srcReg == RegRZR {
			return errors.New("zero register is not supported for CMP (immediate)")
		}

		srcRegBits, err := intRegisterBits(n.srcReg)
		if err != nil {
			return err
		}

		var sf uint32
		if n.instruction == CMP {
			sf = 0b1
		}
		a.write32(sf<<31 | 0b11_10001<<24 | uint32(n.srcConst)<<10 | uint32(srcRegBits)<<5 | uint32(zeroRegisterBits))

	case TST, TSTW:
		// TST (immediate) is an alias for ANDS with a bitmask immediate.
		// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/TST--immediate---Test-bits--immediate---an-alias-of-ANDS--immediate--
		srcRegBits, err := intRegisterBits(n.srcReg)
		if err != nil {
			return err
		}

		is64 := n.instruction == TST
		nbit, immr, imms, ok := bitmaskImmediate(uint64(n.srcConst), is64)
		if !ok {
			return fmt.Errorf("immediate 0x%x cannot be encoded as a bitmask immediate", n.srcConst)
		}
		var sf uint32
		if is64 {
			sf = 0b1
		}
		a.write32(sf<<31 | 0b11_100100<<23 | uint32(nbit)<<22 | uint32(immr)<<16 | uint32(imms)<<10 | uint32(srcRegBits)<<5 | uint32(zeroRegisterBits))

	default:
		return errorEncodingUnsupported(n)
	}
	return
}

func (a *AssemblerImpl) encodeConstAndRegisterToRegister(n *nodeImpl) (err error) {
	srcRegBits, err := intRegisterBits(n.srcReg)
	if err != nil {
		return err
	}
	dstRegBits, err := intRegisterBits(n.dstReg)
	if err != nil {
		return err
	}
	c := n.srcConst

	switch inst := n.instruction; inst {
	case ADD, ADDW, ADDS, ADDSW, SUB, SUBW, SUBS, SUBSW:
		var sf, op, setFlags uint32
		switch inst {
		case ADD:
			sf = 0b1
		case ADDW:
		case ADDS:
			sf, setFlags = 0b1, 0b1
		case ADDSW:
			setFlags = 0b1
		case SUB:
			sf, op = 0b1, 0b1
		case SUBW:
			op = 0b1
		case SUBS:
			sf, op, setFlags = 0b1, 0b1, 0b1
		case SUBSW:
			op, setFlags = 0b1, 0b1
		}
		if c < 0 || c >= 0x1000 {
			return fmt.Errorf("immediate for %s must fit in 12-bit unsigned integer but got %d", InstructionName(inst), c)
		}
		// "Add/subtract (immediate)" in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Immediate
		a.write32(sf<<31 | op<<30 | setFlags<<29 | 0b10001<<24 | uint32(c)<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))

	case AND, ANDW, ORR, ORRW, EOR, EORW:
		is64 := inst == AND || inst == ORR || inst == EOR
		nbit, immr, imms, ok := bitmaskImmediate(uint64(c), is64)
		if !ok {
			return fmt.Errorf("immediate 0x%x cannot be encoded as a bitmask immediate", c)
		}
		var sf, opc uint32
		if is64 {
			sf = 0b1
		}
		switch inst {
		case AND, ANDW:
			opc = 0b00
		case ORR, ORRW:
			opc = 0b01
		case EOR, EORW:
			opc = 0b10
		}
		// "Logical (immediate)" in
		// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Data-Processing----Immediate
		a.write32(sf<<31 | opc<<29 | 0b100100<<23 | uint32(nbit)<<22 | uint32(immr)<<16 | uint32(imms)<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))

	case LSL, LSLW, LSR, LSRW, ASR, ASRW, ROR, RORW:
		is64 := inst == LSL || inst == LSR || inst == ASR || inst == ROR
		var size int64 = 32
		var sf uint32
		if is64 {
			size, sf = 64, 0b1
		}
		if c <= 0 || c >= size {
			return fmt.Errorf("shift amount for %s must be within 1 to %d but got %d", InstructionName(inst), size-1, c)
		}
		switch inst {
		case LSL, LSLW:
			// LSL(immediate) is an alias of UBFM.
			// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/LSL--immediate---Logical-Shift-Left--immediate---an-alias-of-UBFM-
			immr, imms := uint32(size-c), uint32(size-1-c)
			a.write32(sf<<31 | 0b10_100110<<23 | sf<<22 | immr<<16 | imms<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))
		case LSR, LSRW:
			// LSR(immediate) is an alias of UBFM.
			// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/LSR--immediate---Logical-Shift-Right--immediate---an-alias-of-UBFM-
			a.write32(sf<<31 | 0b10_100110<<23 | sf<<22 | uint32(c)<<16 | uint32(size-1)<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))
		case ASR, ASRW:
			// ASR(immediate) is an alias of SBFM.
			// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/ASR--immediate---Arithmetic-Shift-Right--immediate---an-alias-of-SBFM-
			a.write32(sf<<31 | 0b00_100110<<23 | sf<<22 | uint32(c)<<16 | uint32(size-1)<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))
		case ROR, RORW:
			// ROR(immediate) is an alias of EXTR with both sources the same register.
			// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/ROR--immediate---Rotate-right--immediate---an-alias-of-EXTR-
			a.write32(sf<<31 | 0b00_100111<<23 | sf<<22 | uint32(srcRegBits)<<16 | uint32(c)<<10 | uint32(srcRegBits)<<5 | uint32(dstRegBits))
		}

	default:
		return errorEncodingUnsupported(n)
	}
	return
}

func (a *AssemblerImpl) encodeConstShiftedToRegister(n *nodeImpl) (err error) {
	if n.instruction != MOVK {
		return errorEncodingUnsupported(n)
	}

	dstRegBits, err := intRegisterBits(n.dstReg)
	if err != nil {
		return err
	}

	var hw uint32
	switch n.srcConst2() {
	case 0:
		hw = 0b00
	case 16:
		hw = 0b01
	case 32:
		hw = 0b10
	case 48:
		hw = 0b11
	default:
		return fmt.Errorf("shift for MOVK must be one of 0, 16, 32, 48 but got %d", n.srcConst2())
	}
	if n.srcConst < 0 || n.srcConst > 0xffff {
		return fmt.Errorf("immediate for MOVK must fit in 16-bit unsigned integer but got %d", n.srcConst)
	}

	// https://developer.arm.com/documentation/dui0802/a/A64-General-Instructions/MOVK
	a.write32(0b1_11_100101<<23 | hw<<21 | uint32(n.srcConst)<<5 | uint32(dstRegBits))
	return
}

func fitInSigned9Bits(v int64) bool {
	return v >= -256 && v <= 255
}

func (a *AssemblerImpl) encodeLoadOrStoreWithRegisterOffset(baseRegBits, offsetRegBits, targetRegBits byte, opcode, size, v byte) {
	// "Load/store register (register offset)".
	// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Loads-and-Stores#ldst_regoff
	a.buf.Write([]byte{
		(baseRegBits << 5) | targetRegBits,
		0b011_010_00 | (baseRegBits >> 3),
		opcode<<6 | 0b00_1_00000 | offsetRegBits,
		size<<6 | v<<2 | 0b00_111_0_00,
	})
}

func (a *AssemblerImpl) encodeLoadOrStoreUnscaled(baseRegBits, targetRegBits byte, offset int64, opcode, size, v byte) error {
	if !fitInSigned9Bits(offset) {
		return fmt.Errorf("unscaled offset must be within -256 to 255 but got %d", offset)
	}
	// "Load/store register (unscaled immediate)".
	// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Loads-and-Stores#ldapstl_unscaled
	a.buf.Write([]byte{
		(baseRegBits << 5) | targetRegBits,
		byte(offset<<4) | (baseRegBits >> 3),
		opcode<<6 | (0b000_11111 & byte(offset>>4)),
		size<<6 | v<<2 | 0b00_1_11_0_00,
	})
	return nil
}

// validateMemoryOffset validates the memory offset if the given offset can be encoded in the assembler.
// In theory, offset can be any, but for simplicity of our homemade assembler, we limit the offset range
// that can be encoded enough for supporting the compiler.
func validateMemoryOffset(offset int64) (err error) {
	if offset > 255 && offset%4 != 0 {
		// This is because we only use large offsets for accessing the stack or vmctx fields, and those offsets
		// are always multiples of 4.
		err = fmt.Errorf("large memory offset (>255) must be a multiple of 4 but got %d", offset)
	} else if offset < -256 { // 9-bit signed integer's minimum = -2^8.
		err = fmt.Errorf("negative memory offset must be larger than or equal -256 but got %d", offset)
	} else if offset > 1<<31-1 {
		err = fmt.Errorf("large memory offset must be less than %d but got %d", 1<<31-1, offset)
	}
	return
}

// encodeLoadOrStoreWithConstOffset encodes load/store instructions with the constant offset.
//
// Note: Encoding strategy intentionally matches the Go assembler: https://go.dev/doc/asm
func (a *AssemblerImpl) encodeLoadOrStoreWithConstOffset(
	baseRegBits, targetRegBits byte,
	offset int64,
	opcode, size, v byte,
	datasize, datasizeLog2 int64,
) (err error) {
	if err = validateMemoryOffset(offset); err != nil {
		return
	}

	if fitInSigned9Bits(offset) {
		if offset < 0 || offset%datasize != 0 {
			// This case is encoded as one "unscaled signed store".
			return a.encodeLoadOrStoreUnscaled(baseRegBits, targetRegBits, offset, opcode, size, v)
		}
	}

	// At this point we have the assumption that offset is positive and a multiple of datasize.
	if offset < (1<<12)<<datasizeLog2 {
		// This case can be encoded as a single "unsigned immediate" load/store.
		m := offset / datasize
		a.buf.Write([]byte{
			(baseRegBits << 5) | targetRegBits,
			(byte(m << 2)) | (baseRegBits >> 3),
			opcode<<6 | 0b00_111111&byte(m>>6),
			size<<6 | v<<2 | 0b00_1_11_0_01,
		})
		return
	}

	// Otherwise, we need multiple instructions.
	tmpRegBits := registerBits(a.temporaryRegister)
	offset32 := int32(offset)

	// Go's assembler adds a const into the const pool at this point,
	// regardless of its usage; e.g. if we enter the then block of the following if statement,
	// the const is not used but it is added into the const pool.
	a.addConstPool(offset32, uint64(a.buf.Len()))

	// If the offset is within 24-bits, we can load it with two ADD instructions.
	hi := offset32 - (offset32 & (0xfff << uint(datasizeLog2)))
	if hi&^0xfff000 == 0 {
		var sfops byte = 0b100
		m := ((offset32 - hi) >> datasizeLog2) & 0xfff
		hi >>= 12

		// ADD (immediate, shifted by 12) of the high part into the temporary.
		a.buf.Write([]byte{
			(baseRegBits << 5) | tmpRegBits,
			(byte(hi) << 2) | (baseRegBits >> 3),
			0b01<<6 /* shift by 12 */ | byte(hi>>6),
			sfops<<5 | 0b10001,
		})

		a.buf.Write([]byte{
			(tmpRegBits << 5) | targetRegBits,
			(byte(m << 2)) | (tmpRegBits >> 3),
			opcode<<6 | 0b00_111111&byte(m>>6),
			size<<6 | v<<2 | 0b00_1_11_0_01,
		})
	} else {
		// In this case, we load the const via ldr(literal) into the temporary register,
		// and the target const is placed in the constant pool flushed later.
		loadLiteralOffsetInBinary := uint64(a.buf.Len())

		// First we emit the ldr(literal) with offset zero as we don't yet know the const's placement in the binary.
		// https://developer.arm.com/documentation/ddi0596/2020-12/Base-Instructions/LDR--literal---Load-Register--literal--
		a.buf.Write([]byte{tmpRegBits, 0x0, 0x0, 0b00_011_0_00})

		// Set the callback for the constant, and we set properly the offset in the callback.
		a.setConstPoolCallback(offset32, func(offsetOfConst int) {
			// ldr(literal) encodes offset divided by 4.
			offset := (offsetOfConst - int(loadLiteralOffsetInBinary)) / 4
			bin := a.buf.Bytes()
			bin[loadLiteralOffsetInBinary] |= byte(offset << 5)
			bin[loadLiteralOffsetInBinary+1] |= byte(offset >> 3)
			bin[loadLiteralOffsetInBinary+2] |= byte(offset >> 11)
		})

		// Then, load the value with the register offset.
		// https://developer.arm.com/documentation/ddi0596/2020-12/Base-Instructions/LDR--register---Load-Register--register--
		a.buf.Write([]byte{
			(baseRegBits << 5) | targetRegBits,
			0b011_010_00 | (baseRegBits >> 3),
			opcode<<6 | 0b00_1_00000 | tmpRegBits,
			size<<6 | v<<2 | 0b00_111_0_00,
		})
	}
	return
}

var storeOrLoadInstructionTable = map[asm.Instruction]struct {
	size, v                byte
	datasize, datasizeLog2 int64
	loadOpcode             byte
	isTargetFloat          bool
}{
	MOVD:  {size: 0b11, v: 0x0, datasize: 8, datasizeLog2: 3, loadOpcode: 0b01},
	MOVWU: {size: 0b10, v: 0x0, datasize: 4, datasizeLog2: 2, loadOpcode: 0b01},
	MOVW:  {size: 0b10, v: 0x0, datasize: 4, datasizeLog2: 2, loadOpcode: 0b10},
	MOVHU: {size: 0b01, v: 0x0, datasize: 2, datasizeLog2: 1, loadOpcode: 0b01},
	MOVH:  {size: 0b01, v: 0x0, datasize: 2, datasizeLog2: 1, loadOpcode: 0b10},
	MOVHW: {size: 0b01, v: 0x0, datasize: 2, datasizeLog2: 1, loadOpcode: 0b11},
	MOVBU: {size: 0b00, v: 0x0, datasize: 1, datasizeLog2: 0, loadOpcode: 0b01},
	MOVB:  {size: 0b00, v: 0x0, datasize: 1, datasizeLog2: 0, loadOpcode: 0b10},
	MOVBW: {size: 0b00, v: 0x0, datasize: 1, datasizeLog2: 0, loadOpcode: 0b11},
	FMOVD: {size: 0b11, v: 0x1, datasize: 8, datasizeLog2: 3, loadOpcode: 0b01, isTargetFloat: true},
	FMOVS: {size: 0b10, v: 0x1, datasize: 4, datasizeLog2: 2, loadOpcode: 0b01, isTargetFloat: true},
}

const storeInstructionOpcode = 0b00

func (a *AssemblerImpl) storeOrLoadTargetRegisterBits(target asm.Register, isTargetFloat bool) (byte, error) {
	if isTargetFloat {
		return vectorRegisterBits(target)
	}
	return intRegisterBits(target)
}

func (a *AssemblerImpl) encodeRegisterToMemory(n *nodeImpl) (err error) {
	inst, ok := storeOrLoadInstructionTable[n.instruction]
	if !ok {
		return errorEncodingUnsupported(n)
	}

	srcRegBits, err := a.storeOrLoadTargetRegisterBits(n.srcReg, inst.isTargetFloat)
	if err != nil {
		return
	}

	baseRegBits, err := intRegisterBits(n.dstReg)
	if err != nil {
		return err
	}

	if n.dstReg2 != asm.NilRegister {
		offsetRegBits, err := intRegisterBits(n.dstReg2)
		if err != nil {
			return err
		}
		a.encodeLoadOrStoreWithRegisterOffset(baseRegBits, offsetRegBits, srcRegBits, storeInstructionOpcode, inst.size, inst.v)
	} else {
		err = a.encodeLoadOrStoreWithConstOffset(baseRegBits, srcRegBits, n.dstConst, storeInstructionOpcode, inst.size, inst.v, inst.datasize, inst.datasizeLog2)
	}
	return
}

func (a *AssemblerImpl) encodeMemoryToRegister(n *nodeImpl) (err error) {
	inst, ok := storeOrLoadInstructionTable[n.instruction]
	if !ok {
		return errorEncodingUnsupported(n)
	}

	dstRegBits, err := a.storeOrLoadTargetRegisterBits(n.dstReg, inst.isTargetFloat)
	if err != nil {
		return
	}
	baseRegBits, err := intRegisterBits(n.srcReg)
	if err != nil {
		return err
	}

	if n.srcReg2 != asm.NilRegister {
		offsetRegBits, err := intRegisterBits(n.srcReg2)
		if err != nil {
			return err
		}
		a.encodeLoadOrStoreWithRegisterOffset(baseRegBits, offsetRegBits, dstRegBits, inst.loadOpcode, inst.size, inst.v)
	} else {
		err = a.encodeLoadOrStoreWithConstOffset(baseRegBits, dstRegBits, n.srcConst, inst.loadOpcode, inst.size, inst.v, inst.datasize, inst.datasizeLog2)
	}
	return
}

func (a *AssemblerImpl) encodeRegisterToMemoryUnscaled(n *nodeImpl) (err error) {
	inst, ok := storeOrLoadInstructionTable[n.instruction]
	if !ok {
		return errorEncodingUnsupported(n)
	}
	srcRegBits, err := a.storeOrLoadTargetRegisterBits(n.srcReg, inst.isTargetFloat)
	if err != nil {
		return
	}
	baseRegBits, err := intRegisterBits(n.dstReg)
	if err != nil {
		return err
	}
	return a.encodeLoadOrStoreUnscaled(baseRegBits, srcRegBits, n.dstConst, storeInstructionOpcode, inst.size, inst.v)
}

func (a *AssemblerImpl) encodeMemoryToRegisterUnscaled(n *nodeImpl) (err error) {
	inst, ok := storeOrLoadInstructionTable[n.instruction]
	if !ok {
		return errorEncodingUnsupported(n)
	}
	dstRegBits, err := a.storeOrLoadTargetRegisterBits(n.dstReg, inst.isTargetFloat)
	if err != nil {
		return
	}
	baseRegBits, err := intRegisterBits(n.srcReg)
	if err != nil {
		return err
	}
	return a.encodeLoadOrStoreUnscaled(baseRegBits, dstRegBits, n.srcConst, inst.loadOpcode, inst.size, inst.v)
}

func (a *AssemblerImpl) encodeRegisterToMemoryPostIndexed(n *nodeImpl) (err error) {
	inst, ok := storeOrLoadInstructionTable[n.instruction]
	if !ok {
		return errorEncodingUnsupported(n)
	}
	srcRegBits, err := a.storeOrLoadTargetRegisterBits(n.srcReg, inst.isTargetFloat)
	if err != nil {
		return
	}
	baseRegBits, err := intRegisterBits(n.dstReg)
	if err != nil {
		return err
	}
	if !fitInSigned9Bits(n.dstConst) {
		return fmt.Errorf("post-index increment must be within -256 to 255 but got %d", n.dstConst)
	}

	// "Load/store register (immediate post-indexed)".
	// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Loads-and-Stores#ldst_immpost
	imm9 := uint32(n.dstConst) & 0x1ff
	a.write32(uint32(inst.size)<<30 | 0b111<<27 | uint32(inst.v)<<26 |
		uint32(storeInstructionOpcode)<<22 | imm9<<12 | 0b01<<10 | uint32(baseRegBits)<<5 | uint32(srcRegBits))
	return
}

func (a *AssemblerImpl) encodeTwoRegistersToMemoryPreIndexed(n *nodeImpl) (err error) {
	if n.instruction != STP {
		return errorEncodingUnsupported(n)
	}
	src1RegBits, err := intRegisterBits(n.srcReg)
	if err != nil {
		return err
	}
	src2RegBits, err := intRegisterBits(n.srcReg2)
	if err != nil {
		return err
	}
	baseRegBits, err := intRegisterBits(n.dstReg)
	if err != nil {
		return err
	}
	if n.dstConst%8 != 0 || n.dstConst < 0 || n.dstConst > 512 {
		return fmt.Errorf("STP pre-indexed decrement must be a non-negative multiple of 8 up to 512 but got %d", n.dstConst)
	}

	// "Load/store pair (pre-indexed)" with the negated offset.
	// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Loads-and-Stores#ldstpair_pre
	imm7 := uint32(-(n.dstConst)/8) & 0x7f
	a.write32(0b10_101_0_011_0<<22 | imm7<<15 | uint32(src2RegBits)<<10 | uint32(baseRegBits)<<5 | uint32(src1RegBits))
	return
}

func (a *AssemblerImpl) encodeMemoryToTwoRegistersPostIndexed(n *nodeImpl) (err error) {
	if n.instruction != LDP {
		return errorEncodingUnsupported(n)
	}
	baseRegBits, err := intRegisterBits(n.srcReg)
	if err != nil {
		return err
	}
	dst1RegBits, err := intRegisterBits(n.dstReg)
	if err != nil {
		return err
	}
	dst2RegBits, err := intRegisterBits(n.dstReg2)
	if err != nil {
		return err
	}
	if n.srcConst%8 != 0 || n.srcConst < 0 || n.srcConst > 504 {
		return fmt.Errorf("LDP post-indexed increment must be a non-negative multiple of 8 up to 504 but got %d", n.srcConst)
	}

	// "Load/store pair (post-indexed)".
	// https://developer.arm.com/documentation/ddi0596/2021-12/Index-by-Encoding/Loads-and-Stores#ldstpair_post
	imm7 := uint32(n.srcConst/8) & 0x7f
	a.write32(0b10_101_0_001_1<<22 | imm7<<15 | uint32(dst2RegBits)<<10 | uint32(baseRegBits)<<5 | uint32(dst1RegBits))
	return
}

// const16bitAligned checks if the value is on the 16-bit alignment.
// If so, returns the shift num divided by 16, and otherwise -1.
func const16bitAligned(v int64) (ret int) {
	ret = -1
	for s := 0; s < 64; s += 16 {
		if (uint64(v) &^ (uint64(0xffff) << uint(s))) == 0 {
			ret = s / 16
			break
		}
	}
	return
}

// isBitMaskImmediate determines if the value can be encoded as a "bitmask immediate".
//
//	Such an immediate is a 32-bit or 64-bit pattern viewed as a vector of identical elements of size e = 2, 4, 8, 16, 32, or 64 bits.
//	Each element contains the same sub-pattern: a single run of 1 to e-1 non-zero bits, rotated by 0 to e-1 bits.
//
// See https://developer.arm.com/documentation/dui0802/b/A64-General-Instructions/MOV--bitmask-immediate-
func isBitMaskImmediate(x uint64) bool {
	// All zeros and all ones are not "bitmask immediate" by definition.
	if x == 0 || x == 0xffff_ffff_ffff_ffff {
		return false
	}

	switch {
	case x != x>>32|x<<32:
		// e = 64
	case x != x>>16|x<<48:
		// e = 32 (x == x>>32|x<<32).
		// e.g. 0x00ff_ff00_00ff_ff00
		x = uint64(int64(int32(x)))
	case x != x>>8|x<<56:
		// e = 16 (x == x>>16|x<<48).
		// e.g. 0x00ff_00ff_00ff_00ff
		x = uint64(int64(int16(x)))
	case x != x>>4|x<<60:
		// e = 8 (x == x>>8|x<<56).
		// e.g. 0x0f0f_0f0f_0f0f_0f0f
		x = uint64(int64(int8(x)))
	default:
		// e = 4 or 2.
		return true
	}
	return sequenceOfSetbits(x) || sequenceOfSetbits(^x)
}

// IsBitMaskImmediate64 returns true if the value can be encoded as a 64-bit
// AArch64 bitmask ("logical") immediate.
//
// Exported for the single-pass machine's immediate classifier.
func IsBitMaskImmediate64(x uint64) bool {
	return isBitMaskImmediate(x)
}

// IsBitMaskImmediate32 returns true if the value can be encoded as a 32-bit
// AArch64 bitmask ("logical") immediate.
//
// Exported for the single-pass machine's immediate classifier.
func IsBitMaskImmediate32(x uint32) bool {
	// A 32-bit logical immediate is the 64-bit one with both halves equal.
	return isBitMaskImmediate(uint64(x)<<32 | uint64(x))
}

// sequenceOfSetbits returns true if the number's binary representation is the sequence set bit (1).
// For example: 0b1110 -> true, 0b1010 -> false
func sequenceOfSetbits(x uint64) bool {
	y := getLowestBit(x)
	// If x is a sequence of set bits, this should result in the number
	// with only one set bit (i.e. power of two).
	y += x
	return (y-1)&y == 0
}

func getLowestBit(x uint64) uint64 {
	return x & (^x + 1)
}

// bitmaskImmediate encodes the value as the (N, immr, imms) triple of the
// AArch64 "logical (immediate)" encoding. ok is false if the value has no such
// encoding. For 32-bit immediates (is64 = false), the upper half of c is ignored.
//
// See https://dinfuehr.github.io/blog/encoding-of-immediate-values-on-aarch64/
func bitmaskImmediate(c uint64, is64 bool) (n, immr, imms byte, ok bool) {
	if !is64 {
		c = uint64(uint32(c))<<32 | uint64(uint32(c))
	}
	if !isBitMaskImmediate(c) {
		return
	}
	ok = true

	var size uint32
	switch {
	case c != c>>32|c<<32:
		size = 64
	case c != c>>16|c<<48:
		size = 32
		c = uint64(int64(int32(c)))
	case c != c>>8|c<<56:
		size = 16
		c = uint64(int64(int16(c)))
	case c != c>>4|c<<60:
		size = 8
		c = uint64(int64(int8(c)))
	case c != c>>2|c<<62:
		size = 4
		c = uint64(int64(c<<60) >> 60)
	default:
		size = 2
		c = uint64(int64(c<<62) >> 62)
	}

	neg := false
	if int64(c) < 0 {
		c = ^c
		neg = true
	}

	onesSize, nonZeroPos := getOnesSequenceSize(c)
	if neg {
		nonZeroPos = onesSize + nonZeroPos
		onesSize = size - onesSize
	}

	var mode uint32 = 32
	if is64 && size == 64 {
		n = 0b1
		mode = 64
	}

	immr = byte((size - nonZeroPos) & (size - 1) & uint32(mode-1))
	imms = byte((onesSize - 1) | 63&^(size<<1-1))
	return
}

func getOnesSequenceSize(x uint64) (size, nonZeroPos uint32) {
	// Take 0b00111000 for example:
	y := getLowestBit(x)               // = 0b0000100
	nonZeroPos = setBitPos(y)          // = 2
	size = setBitPos(x+y) - nonZeroPos // = setBitPos(0b0100000) - 2 = 5 - 2 = 3
	return
}

func setBitPos(x uint64) (ret uint32) {
	for ; ; ret++ {
		if x == 0b1 {
			break
		}
		x = x >> 1
	}
	return
}

func (a *AssemblerImpl) addOrSub64BitRegisters(sfops byte, src1RegBits byte, src2RegBits byte) {
	// src1Reg = src1Reg +/- src2Reg
	a.buf.Write([]byte{
		(src1RegBits << 5) | src1RegBits,
		src1RegBits >> 3,
		src2RegBits,
		sfops<<5 | 0b01011,
	})
}

func (a *AssemblerImpl) encodeConstToRegister(n *nodeImpl) (err error) {
	// Alias for readability.
	c := n.srcConst

	dstRegBits, err := intRegisterBits(n.dstReg)
	if err != nil {
		return err
	}

	switch inst := n.instruction; inst {
	case ADD, ADDS, SUB, SUBS:
		var sfops byte
		if inst == ADD {
			sfops = 0b100
		} else if inst == ADDS {
			sfops = 0b101
		} else if inst == SUB {
			sfops = 0b110
		} else if inst == SUBS {
			sfops = 0b111
		}

		if c == 0 {
			// If the constant equals zero, we encode it as ADD (register) with the zero register.
			a.addOrSub64BitRegisters(sfops, dstRegBits, zeroRegisterBits)
			return
		}

		if c >= 0 && (c <= 0xfff || (c&0xfff) == 0 && (uint64(c>>12) <= 0xfff)) {
			// If the const can be represented as "imm12" or "imm12 << 12": one instruction.
			if c <= 0xfff {
				a.buf.Write([]byte{
					(dstRegBits << 5) | dstRegBits,
					(byte(c) << 2) | (dstRegBits >> 3),
					byte(c >> 6),
					sfops<<5 | 0b10001,
				})
			} else {
				c >>= 12
				a.buf.Write([]byte{
					(dstRegBits << 5) | dstRegBits,
					(byte(c) << 2) | (dstRegBits >> 3),
					0b01<<6 /* shift by 12 */ | byte(c>>6),
					sfops<<5 | 0b10001,
				})
			}
			return
		}

		if t := const16bitAligned(c); t >= 0 {
			// If the const can fit within 16-bit alignment, for example, 0xffff, 0xffff_0000 or 0xffff_0000_0000_0000,
			// we could load it into the temporary with MOVZ and shifting.
			tmpRegBits := registerBits(a.temporaryRegister)

			// MOVZ $c, tmpReg with shifting.
			a.load16bitAlignedConst(c>>(16*t), byte(t), tmpRegBits, false, true)

			// ADD/SUB tmpReg, dstReg
			a.addOrSub64BitRegisters(sfops, dstRegBits, tmpRegBits)
			return
		} else if t := const16bitAligned(^c); t >= 0 {
			// Also if the reverse of the const can fit within 16-bit range, do the same ^^.
			tmpRegBits := registerBits(a.temporaryRegister)

			// MOVN $c, tmpReg with shifting.
			a.load16bitAlignedConst((^c)>>(16*t), byte(t), tmpRegBits, true, true)

			// ADD/SUB tmpReg, dstReg
			a.addOrSub64BitRegisters(sfops, dstRegBits, tmpRegBits)
			return
		}

		if uc := uint64(c); isBitMaskImmediate(uc) {
			// If the const can be represented as a "bitmask immediate", we load it via ORR into the temporary register.
			tmpRegBits := registerBits(a.temporaryRegister)
			// ORR $c, tmpReg
			a.loadConstViaBitMaskImmediate(uc, tmpRegBits, true)

			// ADD/SUB tmpReg, dstReg
			a.addOrSub64BitRegisters(sfops, dstRegBits, tmpRegBits)
			return
		}

		// If the value fits within 24-bit, then we emit two add instructions.
		if 0 <= c && c <= 0xffffff && inst != SUBS && inst != ADDS {
			a.buf.Write([]byte{
				(dstRegBits << 5) | dstRegBits,
				(byte(c) << 2) | (dstRegBits >> 3),
				byte(c & 0xfff >> 6),
				sfops<<5 | 0b10001,
			})
			c = c >> 12
			a.buf.Write([]byte{
				(dstRegBits << 5) | dstRegBits,
				(byte(c) << 2) | (dstRegBits >> 3),
				0b01_000000 /* shift by 12 */ | byte(c>>6),
				sfops<<5 | 0b10001,
			})
			return
		}

		// Otherwise we use MOVZ and MOVN and MOVKs for loading the const into the temporary register.
		tmpRegBits := registerBits(a.temporaryRegister)
		a.load64bitConst(c, tmpRegBits)
		a.addOrSub64BitRegisters(sfops, dstRegBits, tmpRegBits)

	case MOVW:
		if c == 0 {
			a.write32(0b0_01_01010<<24 | uint32(zeroRegisterBits)<<16 | uint32(zeroRegisterBits)<<5 | uint32(dstRegBits))
			return
		}

		c32 := uint32(c)
		if t := const16bitAligned(int64(c32)); t >= 0 {
			// If the const can fit within 16-bit alignment, load it with a single MOVZ.
			a.load16bitAlignedConst(int64(c32)>>(16*t), byte(t), dstRegBits, false, false)
		} else if t := const16bitAligned(int64(^c32)); t >= 0 {
			// Also if the reverse of the const can fit within 16-bit range, do the same with MOVN.
			a.load16bitAlignedConst(int64(^c32)>>(16*t), byte(t), dstRegBits, true, false)
		} else if isBitMaskImmediate(uint64(c32)<<32 | uint64(c32)) {
			a.loadConstViaBitMaskImmediate(uint64(c32)<<32|uint64(c32), dstRegBits, false)
		} else {
			// Otherwise, we use MOVZ and MOVK to load it.
			c16 := uint16(c32)
			// MOVZ: https://developer.arm.com/documentation/dui0802/a/A64-General-Instructions/MOVZ
			a.buf.Write([]byte{
				(byte(c16) << 5) | dstRegBits,
				byte(c16 >> 3),
				1<<7 | byte(c16>>11),
				0b0_10_10010,
			})
			// MOVK: https://developer.arm.com/documentation/dui0802/a/A64-General-Instructions/MOVK
			c16 = uint16(c32 >> 16)
			if c16 != 0 {
				a.buf.Write([]byte{
					(byte(c16) << 5) | dstRegBits,
					byte(c16 >> 3),
					1<<7 | 0b0_01_00000 /* shift by 16 */ | byte(c16>>11),
					0b0_11_10010,
				})
			}
		}

	case MOVD:
		if c == 0 {
			a.write32(0b1_01_01010<<24 | uint32(zeroRegisterBits)<<16 | uint32(zeroRegisterBits)<<5 | uint32(dstRegBits))
			return
		}

		if t := const16bitAligned(c); t >= 0 {
			// If the const can fit within 16-bit alignment, load it with a single MOVZ.
			a.load16bitAlignedConst(c>>(16*t), byte(t), dstRegBits, false, true)
		} else if t := const16bitAligned(^c); t >= 0 {
			// Also if the reverse of the const can fit within 16-bit range, do the same with MOVN.
			a.load16bitAlignedConst((^c)>>(16*t), byte(t), dstRegBits, true, true)
		} else if isBitMaskImmediate(uint64(c)) {
			a.loadConstViaBitMaskImmediate(uint64(c), dstRegBits, true)
		} else {
			a.load64bitConst(c, dstRegBits)
		}

	case LSR:
		if c == 0 {
			err = errors.New("LSR with zero constant should be optimized out")
			return
		} else if c < 0 || c > 63 {
			err = fmt.Errorf("LSR requires immediate to be within 0 to 63, but got %d", c)
			return
		}

		// LSR(immediate) is an alias of UBFM.
		// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/LSR--immediate---Logical-Shift-Right--immediate---an-alias-of-UBFM-
		a.buf.Write([]byte{
			(dstRegBits << 5) | dstRegBits,
			0b111111_00 | dstRegBits>>3,
			0b01_000000 | byte(c),
			0b110_10011,
		})

	case LSL:
		if c == 0 {
			err = errors.New("LSL with zero constant should be optimized out")
			return
		} else if c < 0 || c > 63 {
			err = fmt.Errorf("LSL requires immediate to be within 0 to 63, but got %d", c)
			return
		}

		// LSL(immediate) is an alias of UBFM.
		// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/LSL--immediate---Logical-Shift-Left--immediate---an-alias-of-UBFM-
		cb := byte(c)
		a.buf.Write([]byte{
			(dstRegBits << 5) | dstRegBits,
			(0b111111-cb)<<2 | dstRegBits>>3,
			0b01_000000 | (64 - cb),
			0b110_10011,
		})

	default:
		return errorEncodingUnsupported(n)
	}
	return
}

func (a *AssemblerImpl) movk(v uint64, shiftNum int, dstRegBits byte) {
	// https://developer.arm.com/documentation/dui0802/a/A64-General-Instructions/MOVK
	a.buf.Write([]byte{
		(byte(v) << 5) | dstRegBits,
		byte(v >> 3),
		1<<7 | byte(shiftNum)<<5 | (0b000_11111 & byte(v>>11)),
		0b1_11_10010,
	})
}

func (a *AssemblerImpl) movz(v uint64, shiftNum int, dstRegBits byte) {
	// https://developer.arm.com/documentation/dui0802/a/A64-General-Instructions/MOVZ
	a.buf.Write([]byte{
		(byte(v) << 5) | dstRegBits,
		byte(v >> 3),
		1<<7 | byte(shiftNum)<<5 | (0b000_11111 & byte(v>>11)),
		0b1_10_10010,
	})
}

func (a *AssemblerImpl) movn(v uint64, shiftNum int, dstRegBits byte) {
	// https://developer.arm.com/documentation/dui0802/a/A64-General-Instructions/MOVN
	a.buf.Write([]byte{
		(byte(v) << 5) | dstRegBits,
		byte(v >> 3),
		1<<7 | byte(shiftNum)<<5 | (0b000_11111 & byte(v>>11)),
		0b1_00_10010,
	})
}

// load64bitConst loads a 64-bit constant into the register, following the same logic to decide how to load large 64-bit
// consts as in the Go assembler.
func (a *AssemblerImpl) load64bitConst(c int64, dstRegBits byte) {
	var bits [4]uint64
	var zeros, negs int
	for i := 0; i < 4; i++ {
		bits[i] = uint64((c >> uint(i*16)) & 0xffff)
		if v := bits[i]; v == 0 {
			zeros++
		} else if v == 0xffff {
			negs++
		}
	}

	if zeros == 3 {
		// one MOVZ instruction.
		for i, v := range bits {
			if v != 0 {
				a.movz(v, i, dstRegBits)
			}
		}
	} else if negs == 3 {
		// one MOVN instruction.
		for i, v := range bits {
			if v != 0xffff {
				a.movn(^v&0xffff, i, dstRegBits)
			}
		}
	} else if negs >= 1 && negs+zeros >= 2 {
		// one MOVN then at most two MOVK.
		var movn bool
		for i, v := range bits {
			if !movn && v != 0xffff { // MOVN.
				a.movn(^v&0xffff, i, dstRegBits)
				movn = true
			} else if v != 0xffff {
				a.movk(v, i, dstRegBits)
			}
		}
	} else {
		// one MOVZ then up to three MOVK.
		var movz bool
		for i, v := range bits {
			if !movz && v != 0 { // MOVZ.
				a.movz(v, i, dstRegBits)
				movz = true
			} else if v != 0 {
				a.movk(v, i, dstRegBits)
			}
		}
	}
}

func (a *AssemblerImpl) load16bitAlignedConst(c int64, shiftNum byte, regBits byte, reverse bool, dst64bit bool) {
	var lastByte byte
	if reverse {
		// MOVN: https://developer.arm.com/documentation/dui0802/a/A64-General-Instructions/MOVN
		lastByte = 0b0_00_10010
	} else {
		// MOVZ: https://developer.arm.com/documentation/dui0802/a/A64-General-Instructions/MOVZ
		lastByte = 0b0_10_10010
	}
	if dst64bit {
		lastByte |= 0b1 << 7
	}
	a.buf.Write([]byte{
		(byte(c) << 5) | regBits,
		byte(c >> 3),
		1<<7 | (shiftNum << 5) | byte(c>>11),
		lastByte,
	})
}

// loadConstViaBitMaskImmediate loads the constant with ORR (bitmask immediate).
// https://developer.arm.com/documentation/ddi0596/2021-12/Base-Instructions/ORR--immediate---Bitwise-OR--immediate--
func (a *AssemblerImpl) loadConstViaBitMaskImmediate(c uint64, regBits byte, dst64bit bool) {
	n, immr, imms, _ := bitmaskImmediate(c, dst64bit)

	var sf uint32
	if dst64bit {
		sf = 0b1
	}
	a.write32(sf<<31 | 0b01_100100<<23 | uint32(n)<<22 | uint32(immr)<<16 | uint32(imms)<<10 | uint32(zeroRegisterBits)<<5 | uint32(regBits))
}

var zeroRegisterBits byte = 0b11111

func isIntRegister(r asm.Register) bool {
	return RegR0 <= r && r <= RegRZR
}

func isVectorRegister(r asm.Register) bool {
	return RegV0 <= r && r <= RegV31
}

func isConditionalRegister(r asm.Register) bool {
	return RegCondEQ <= r && r <= RegCondNV
}

func intRegisterBits(r asm.Register) (ret byte, err error) {
	if !isIntRegister(r) {
		err = fmt.Errorf("%s is not an integer register", RegisterName(r))
	} else {
		ret = byte(r - RegR0)
	}
	return
}

func vectorRegisterBits(r asm.Register) (ret byte, err error) {
	if !isVectorRegister(r) {
		err = fmt.Errorf("%s is not a vector register", RegisterName(r))
	} else {
		ret = byte(r - RegV0)
	}
	return
}

func registerBits(r asm.Register) (ret byte) {
	if isIntRegister(r) {
		ret = byte(r - RegR0)
	} else {
		ret = byte(r - RegV0)
	}
	return
}
