package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueTypeName(t *testing.T) {
	require.Equal(t, "i32", ValueTypeName(ValueTypeI32))
	require.Equal(t, "i64", ValueTypeName(ValueTypeI64))
	require.Equal(t, "f32", ValueTypeName(ValueTypeF32))
	require.Equal(t, "f64", ValueTypeName(ValueTypeF64))
	require.Equal(t, "unknown", ValueTypeName(0))
}

func TestFunctionType_String(t *testing.T) {
	ft := &FunctionType{Params: []ValueType{ValueTypeI32}, Results: []ValueType{ValueTypeI64}}
	require.Equal(t, "func[127][126]", ft.String())
}
