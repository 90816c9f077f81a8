package extractor

import (
	"dotnet-bindgen/internal/ffi"

	sitter "github.com/smacker/go-tree-sitter"
)

// Module is the result of extracting one source file.
type Module struct {
	Path        string       `json:"path"`
	Name        string       `json:"name"`
	ContentHash string       `json:"content_hash"`
	Program     *ffi.Program `json:"program"`
	// Spans locates each exported function, in program order.
	Spans       []Span      `json:"spans,omitempty"`
	Diagnostics Diagnostics `json:"diagnostics,omitempty"`
}

// Options selects which declarations a frontend reports.
type Options struct {
	// Attributes are the marker attribute names that select an item.
	Attributes []string
	// ExternC also selects `#[no_mangle] extern "C"` functions.
	ExternC bool
	// CrateName names the crate root module (lib.rs / main.rs).
	CrateName string
}

// DefaultAttribute marks an item for binding generation.
const DefaultAttribute = "dotnet_bindgen"

// LanguageFrontend turns a parsed syntax tree into function declarations.
// Items that are selected but cannot be described are reported as
// diagnostics instead of declarations.
type LanguageFrontend interface {
	GetLanguage() *sitter.Language
	Extensions() []string
	Declarations(root *sitter.Node, src []byte, path string) ([]FunctionDecl, Diagnostics)
}
