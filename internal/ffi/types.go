package ffi

import (
	"encoding/json"
	"fmt"
)

// Kind distinguishes the variants of Type.
type Kind uint8

const (
	// KindVoid is the zero Kind so the zero Type is Void.
	KindVoid Kind = iota
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	default:
		return "void"
	}
}

// Width is the bit width of an integer Type. Values are only produced by
// NewInt, which rejects anything outside 8, 16, 32 and 64.
type Width uint8

// Bits returns the width as a plain integer.
func (w Width) Bits() int {
	return int(w)
}

// WidthError reports an attempt to construct an integer type of an
// unsupported width.
type WidthError struct {
	Bits int
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("unsupported integer width %d (want 8, 16, 32 or 64)", e.Bits)
}

// Type describes a primitive value that can cross the FFI boundary.
type Type struct {
	kind   Kind
	width  Width
	signed bool
}

// NewInt returns an integer type of the given width.
func NewInt(bits int, signed bool) (Type, error) {
	switch bits {
	case 8, 16, 32, 64:
		return Type{kind: KindInt, width: Width(bits), signed: signed}, nil
	default:
		return Type{}, &WidthError{Bits: bits}
	}
}

// Void returns the empty return type.
func Void() Type {
	return Type{}
}

func (t Type) Kind() Kind {
	return t.kind
}

// Width returns the integer width; it is zero for Void.
func (t Type) Width() Width {
	return t.width
}

func (t Type) Signed() bool {
	return t.signed
}

func (t Type) IsVoid() bool {
	return t.kind == KindVoid
}

// String renders the type with Rust-style spelling, used in logs and errors.
func (t Type) String() string {
	if t.kind == KindVoid {
		return "()"
	}
	if t.signed {
		return fmt.Sprintf("i%d", t.width)
	}
	return fmt.Sprintf("u%d", t.width)
}

type typeJSON struct {
	Kind   string `json:"kind"`
	Width  int    `json:"width,omitempty"`
	Signed bool   `json:"signed,omitempty"`
}

func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(typeJSON{
		Kind:   t.kind.String(),
		Width:  int(t.width),
		Signed: t.signed,
	})
}

// UnmarshalJSON decodes a type and re-validates the width.
func (t *Type) UnmarshalJSON(data []byte) error {
	var raw typeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "void":
		*t = Void()
		return nil
	case "int":
		decoded, err := NewInt(raw.Width, raw.Signed)
		if err != nil {
			return err
		}
		*t = decoded
		return nil
	default:
		return fmt.Errorf("unknown ffi type kind %q", raw.Kind)
	}
}
