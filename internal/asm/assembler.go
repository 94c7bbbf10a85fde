package asm

import (
	"fmt"
)

// Register represents architecture-specific registers.
type Register byte

// NilRegister is the only architecture-independent register, and
// can be used to indicate that no register is specified.
const NilRegister Register = 0

// Instruction represents architecture-specific instructions.
type Instruction byte

// ConditionalRegisterState represents architecture-specific conditional
// register's states.
type ConditionalRegisterState byte

// ConditionalRegisterStateUnset is the only architecture-independent conditional state, and
// can be used to indicate that no conditional state is specified.
const ConditionalRegisterStateUnset ConditionalRegisterState = 0

// Label is an abstract jump destination handed out by an assembler. A label
// can be branched to before it is bound; the branch is resolved when the
// final binary is produced.
type Label uint32

// NilLabel indicates that no label is specified.
const NilLabel Label = 0

// Node represents a node in the linked list of assembled operations.
type Node interface {
	fmt.Stringer

	// AssignJumpTarget assigns the given target node as the destination of
	// jump instruction for this Node.
	AssignJumpTarget(target Node)

	// OffsetInBinary returns the offset of this node in the assembled binary.
	OffsetInBinary() NodeOffsetInBinary
}

// NodeOffsetInBinary represents an offset of this node in the final binary.
type NodeOffsetInBinary = uint64

// ConstantValue represents a constant value used in an instruction.
type ConstantValue = int64

// AssemblerBase is the common interface for assemblers among multiple architectures.
//
// Note: some of them can be implemented in an arch-independent way, but not all can be
// implemented as such. However, we intentionally put such arch-dependant methods here
// in order to provide the common documentation interface.
type AssemblerBase interface {
	// Assemble produces the final binary for the assembled operations.
	Assemble() ([]byte, error)

	// Offset returns the offset in the binary right after the operations
	// assembled so far. Instructions are encoded as they are compiled, so
	// this is exact, not an estimate.
	Offset() NodeOffsetInBinary

	// NewLabel returns a fresh, unbound label.
	NewLabel() Label

	// BindLabel binds the given label to the current offset, so that branches
	// targeting it resolve here.
	BindLabel(label Label)

	// SetJumpTargetOnNext instructs the assembler that the next node must be
	// assigned to the given nodes' jump destination.
	SetJumpTargetOnNext(nodes ...Node)

	// CompileStandAlone adds an instruction to take no arguments.
	CompileStandAlone(instruction Instruction) Node

	// CompileConstToRegister adds an instruction where source operand is `value` as constant and destination is `destinationReg` register.
	CompileConstToRegister(instruction Instruction, value ConstantValue, destinationReg Register) Node

	// CompileRegisterToRegister adds an instruction where source and destination operands are registers.
	CompileRegisterToRegister(instruction Instruction, from, to Register)

	// CompileMemoryToRegister adds an instruction where source operand is the memory address specified by `sourceBaseReg+sourceOffsetConst`
	// and the destination is `destinationReg` register.
	CompileMemoryToRegister(instruction Instruction, sourceBaseReg Register, sourceOffsetConst ConstantValue, destinationReg Register)

	// CompileRegisterToMemory adds an instruction where source operand is `sourceRegister` register and the destination is the
	// memory address specified by `destinationBaseRegister+destinationOffsetConst`.
	CompileRegisterToMemory(instruction Instruction, sourceRegister, destinationBaseRegister Register, destinationOffsetConst ConstantValue)

	// CompileJumpToRegister adds jump-type instruction whose destination is the address held by `reg` register.
	CompileJumpToRegister(jmpInstruction Instruction, reg Register)

	// CompileBranchToLabel adds a branch-type instruction (unconditional or
	// conditional) whose destination is the given label, and returns the
	// corresponding Node.
	CompileBranchToLabel(jmpInstruction Instruction, label Label) Node
}
