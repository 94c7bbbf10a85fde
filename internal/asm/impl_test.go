package asm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	target Node
	offset NodeOffsetInBinary
}

func (n *fakeNode) String() string                  { return "fake" }
func (n *fakeNode) AssignJumpTarget(target Node)    { n.target = target }
func (n *fakeNode) OffsetInBinary() NodeOffsetInBinary { return n.offset }

func TestBaseAssemblerImpl_SetJumpTargetOnNext(t *testing.T) {
	a := &BaseAssemblerImpl{}
	n1, n2 := &fakeNode{}, &fakeNode{}
	a.SetJumpTargetOnNext(n1)
	a.SetJumpTargetOnNext(n2)
	require.Equal(t, []Node{n1, n2}, a.SetBranchTargetOnNextNodes)
}

func TestBaseAssemblerImpl_AddOnGenerateCallBack(t *testing.T) {
	a := &BaseAssemblerImpl{}
	expErr := errors.New("callback")
	a.AddOnGenerateCallBack(func([]byte) error { return nil })
	a.AddOnGenerateCallBack(func([]byte) error { return expErr })
	require.Equal(t, 2, len(a.OnGenerateCallbacks))
	require.NoError(t, a.OnGenerateCallbacks[0](nil))
	require.Equal(t, expErr, a.OnGenerateCallbacks[1](nil))
}
