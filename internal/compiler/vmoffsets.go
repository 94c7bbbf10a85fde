package compiler

// VMOffsets describes the byte layout of the per-instance VM context that the
// emitted code dereferences through the vmctx register. The runtime owns the
// actual structure; the compiler only needs the offsets.
//
// The context begins with the imported function entries (a {body, vmctx}
// pointer pair each), followed by one pointer per imported memory (an extra
// level of indirection to the owning instance's definition), followed by the
// local memory definitions (a {base, current_length} pair each).
type VMOffsets struct {
	// PtrSize is the pointer width of the target, always 8 on arm64.
	PtrSize uint8
	// NumImportedFunctions is the number of imported function entries.
	NumImportedFunctions uint32
	// NumImportedMemories is the number of imported memory pointers.
	NumImportedMemories uint32
	// NumLocalMemories is the number of locally defined memory definitions.
	NumLocalMemories uint32
}

// NewVMOffsets returns VMOffsets for the native pointer width.
func NewVMOffsets(numImportedFunctions, numImportedMemories, numLocalMemories uint32) *VMOffsets {
	return &VMOffsets{
		PtrSize:              8,
		NumImportedFunctions: numImportedFunctions,
		NumImportedMemories:  numImportedMemories,
		NumLocalMemories:     numLocalMemories,
	}
}

// vmFunctionImportSize is the size of one imported function entry: the body
// pointer and the callee vmctx pointer.
func (v *VMOffsets) vmFunctionImportSize() uint32 {
	return 2 * uint32(v.PtrSize)
}

// VMFunctionImportBody is the offset of the body pointer within an imported
// function entry.
func (v *VMOffsets) VMFunctionImportBody() uint32 {
	return 0
}

// VMFunctionImportVMCtx is the offset of the callee vmctx pointer within an
// imported function entry.
func (v *VMOffsets) VMFunctionImportVMCtx() uint32 {
	return uint32(v.PtrSize)
}

// VMCtxImportedFunction returns the offset of the imported function entry at
// the given index.
func (v *VMOffsets) VMCtxImportedFunction(index uint32) uint32 {
	if index >= v.NumImportedFunctions {
		panic("BUG: imported function index out of range")
	}
	return index * v.vmFunctionImportSize()
}

func (v *VMOffsets) importedMemoriesBegin() uint32 {
	return v.NumImportedFunctions * v.vmFunctionImportSize()
}

// VMCtxImportedMemory returns the offset of the pointer to the imported
// memory's definition at the given index.
func (v *VMOffsets) VMCtxImportedMemory(index uint32) uint32 {
	if index >= v.NumImportedMemories {
		panic("BUG: imported memory index out of range")
	}
	return v.importedMemoriesBegin() + index*uint32(v.PtrSize)
}

func (v *VMOffsets) localMemoriesBegin() uint32 {
	return v.importedMemoriesBegin() + v.NumImportedMemories*uint32(v.PtrSize)
}

// vmMemoryDefinitionSize is the size of one memory definition: the base
// pointer and the current length.
func (v *VMOffsets) vmMemoryDefinitionSize() uint32 {
	return 2 * uint32(v.PtrSize)
}

// VMMemoryDefinitionBase is the offset of the base pointer within a memory
// definition.
func (v *VMOffsets) VMMemoryDefinitionBase() uint32 {
	return 0
}

// VMMemoryDefinitionCurrentLength is the offset of the byte length within a
// memory definition.
func (v *VMOffsets) VMMemoryDefinitionCurrentLength() uint32 {
	return uint32(v.PtrSize)
}

// VMCtxMemoryDefinition returns the offset of the locally defined memory
// definition at the given index.
func (v *VMOffsets) VMCtxMemoryDefinition(index uint32) uint32 {
	if index >= v.NumLocalMemories {
		panic("BUG: local memory index out of range")
	}
	return v.localMemoriesBegin() + index*v.vmMemoryDefinitionSize()
}

// VMDynamicFunctionContextAddress is the offset, inside a dynamic import's
// context structure, of the host function address the dynamic trampoline
// calls through.
func (v *VMOffsets) VMDynamicFunctionContextAddress() uint32 {
	return 0
}
