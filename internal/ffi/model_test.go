package ffi

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInt_SupportedWidths(t *testing.T) {
	for _, bits := range []int{8, 16, 32, 64} {
		for _, signed := range []bool{true, false} {
			typ, err := NewInt(bits, signed)
			require.NoError(t, err)
			assert.Equal(t, KindInt, typ.Kind())
			assert.Equal(t, bits, typ.Width().Bits())
			assert.Equal(t, signed, typ.Signed())
			assert.False(t, typ.IsVoid())
		}
	}
}

func TestNewInt_RejectsOtherWidths(t *testing.T) {
	for _, bits := range []int{-8, 0, 1, 7, 12, 24, 128} {
		_, err := NewInt(bits, true)
		require.Error(t, err, "width %d", bits)

		var widthErr *WidthError
		require.True(t, errors.As(err, &widthErr))
		assert.Equal(t, bits, widthErr.Bits)
	}
}

func TestType_ZeroValueIsVoid(t *testing.T) {
	var typ Type
	assert.True(t, typ.IsVoid())
	assert.Equal(t, Void(), typ)
	assert.Equal(t, "()", typ.String())
}

func TestType_String(t *testing.T) {
	i32, _ := NewInt(32, true)
	u8, _ := NewInt(8, false)
	assert.Equal(t, "i32", i32.String())
	assert.Equal(t, "u8", u8.String())
}

func TestType_UnmarshalRejectsInvalidWidth(t *testing.T) {
	var typ Type
	err := json.Unmarshal([]byte(`{"kind":"int","width":12,"signed":true}`), &typ)
	var widthErr *WidthError
	assert.True(t, errors.As(err, &widthErr))

	err = json.Unmarshal([]byte(`{"kind":"float"}`), &typ)
	assert.Error(t, err)
}

func TestValidIdentifier(t *testing.T) {
	valid := []string{"x", "_", "left", "snake_case", "a1", "_9"}
	invalid := []string{"", "1a", "with space", "dash-ed", "ünï"}

	for _, s := range valid {
		assert.True(t, ValidIdentifier(s), s)
	}
	for _, s := range invalid {
		assert.False(t, ValidIdentifier(s), s)
	}
}

func TestProgram_AppendPreservesOrder(t *testing.T) {
	i32, _ := NewInt(32, true)
	p := NewProgram()
	p.Append(FuncExport{Func: Function{Name: "first", Return: Void()}})
	p.Append(FuncExport{Func: Function{Name: "second", Args: []Argument{{Type: i32, Name: "x"}}, Return: i32}})

	require.Equal(t, 2, p.Len())
	funcs := p.Functions()
	require.Len(t, funcs, 2)
	assert.Equal(t, "first", funcs[0].Name)
	assert.Equal(t, "second", funcs[1].Name)

	// Exports hands out a copy.
	exports := p.Exports()
	exports[0] = FuncExport{Func: Function{Name: "mutated"}}
	assert.Equal(t, "first", p.Functions()[0].Name)
}

type stopVisitor struct {
	seen int
}

func (s *stopVisitor) VisitFunc(Function) error {
	s.seen++
	return errors.New("stop")
}

func TestProgram_WalkStopsAtFirstError(t *testing.T) {
	p := NewProgram()
	p.Append(FuncExport{Func: Function{Name: "a"}})
	p.Append(FuncExport{Func: Function{Name: "b"}})

	v := &stopVisitor{}
	assert.EqualError(t, p.Walk(v), "stop")
	assert.Equal(t, 1, v.seen)
}

func TestProgram_JSONRoundTrip(t *testing.T) {
	i32, _ := NewInt(32, true)
	u64, _ := NewInt(64, false)
	p := NewProgram()
	p.Append(FuncExport{Func: Function{Name: "noop", Return: Void()}})
	p.Append(FuncExport{Func: Function{
		Name:   "add",
		Args:   []Argument{{Type: i32, Name: "left"}, {Type: u64, Name: "right"}},
		Return: i32,
	}})

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"kind":"func","func":{"name":"noop","args":[],"return":{"kind":"void"}}},
		{"kind":"func","func":{"name":"add","args":[
			{"type":{"kind":"int","width":32,"signed":true},"name":"left"},
			{"type":{"kind":"int","width":64},"name":"right"}
		],"return":{"kind":"int","width":32,"signed":true}}}
	]`, string(data))

	decoded := NewProgram()
	require.NoError(t, json.Unmarshal(data, decoded))
	funcs := decoded.Functions()
	require.Len(t, funcs, 2)
	assert.Equal(t, "add", funcs[1].Name)
	assert.Equal(t, []Argument{{Type: i32, Name: "left"}, {Type: u64, Name: "right"}}, funcs[1].Args)
	assert.Equal(t, i32, funcs[1].Return)
}

func TestProgram_UnmarshalUnknownKind(t *testing.T) {
	p := NewProgram()
	err := json.Unmarshal([]byte(`[{"kind":"const"}]`), p)
	assert.ErrorContains(t, err, `unknown kind "const"`)
}
