package csharp

import (
	"fmt"

	"dotnet-bindgen/internal/ffi"
)

// RenderType returns the System type name used for t in C# signatures.
func RenderType(t ffi.Type) string {
	if t.IsVoid() {
		return "void"
	}
	if t.Width().Bits() == 8 {
		if t.Signed() {
			return "SByte"
		}
		return "Byte"
	}
	if t.Signed() {
		return fmt.Sprintf("Int%d", t.Width().Bits())
	}
	return fmt.Sprintf("UInt%d", t.Width().Bits())
}
