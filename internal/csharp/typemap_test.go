package csharp

import (
	"testing"

	"dotnet-bindgen/internal/ffi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderType(t *testing.T) {
	tests := []struct {
		bits   int
		signed bool
		want   string
	}{
		{8, true, "SByte"},
		{8, false, "Byte"},
		{16, true, "Int16"},
		{16, false, "UInt16"},
		{32, true, "Int32"},
		{32, false, "UInt32"},
		{64, true, "Int64"},
		{64, false, "UInt64"},
	}

	for _, tt := range tests {
		typ, err := ffi.NewInt(tt.bits, tt.signed)
		require.NoError(t, err)
		assert.Equal(t, tt.want, RenderType(typ), "%d-bit signed=%v", tt.bits, tt.signed)
	}

	assert.Equal(t, "void", RenderType(ffi.Void()))
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "Add", ToTypeCase("add"))
	assert.Equal(t, "AddNumbers", ToTypeCase("add_numbers"))
	assert.Equal(t, "MathLib", ToTypeCase("math_lib"))

	assert.Equal(t, "left", ToParamCase("left"))
	assert.Equal(t, "byteCount", ToParamCase("byte_count"))
	assert.Equal(t, "@string", ToParamCase("string"))
	assert.Equal(t, "@params", ToParamCase("params"))
}

func TestNaming_LeadingUnderscores(t *testing.T) {
	tests := []struct {
		in        string
		wantType  string
		wantParam string
	}{
		{"__", "__", "__"},
		{"_1", "_1", "_1"},
		{"_1f", "_1F", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.wantType, ToTypeCase(tt.in))
			param := ToParamCase(tt.in)
			if tt.wantParam != "" {
				assert.Equal(t, tt.wantParam, param)
			}
			assert.True(t, ffi.ValidIdentifier(param), param)
			assert.NotRegexp(t, `^[0-9]`, param)
		})
	}
}

func TestSignature_UnderscoreNames(t *testing.T) {
	i32, err := ffi.NewInt(32, true)
	require.NoError(t, err)

	m := &ImportedMethod{BinaryName: "lib", Func: ffi.Function{
		Name:   "_1f",
		Args:   []ffi.Argument{{Type: i32, Name: "_1"}, {Type: i32, Name: "__"}},
		Return: ffi.Void(),
	}}
	assert.Equal(t, "public static extern void _1F(Int32 _1, Int32 __);", m.Signature())
}
