// Package generator turns extracted modules into C# source files.
package generator

import (
	"path/filepath"

	"dotnet-bindgen/internal/csharp"
	"dotnet-bindgen/internal/extractor"
	"dotnet-bindgen/internal/ffi"
)

// DefaultUsings are emitted when Options.Usings is nil.
var DefaultUsings = []string{"System", "System.Runtime.InteropServices"}

const defaultHeader = "Generated by dotnet-bindgen. Do not edit."

// Options control the shape of generated files.
type Options struct {
	// Binary is the native library name passed to DllImport.
	Binary string
	// Namespace wraps the class when non-empty.
	Namespace string
	// ClassName overrides the class name of the crate root module.
	ClassName string
	// FileComment replaces the default header lines.
	FileComment []string
	Usings      []string
	Indent      string
	// Root is the crate directory source paths are shown relative to.
	Root string
}

// Assemble builds the C# file for one module. Methods follow program order.
func Assemble(mod *extractor.Module, opts Options) *csharp.Root {
	class := &csharp.Class{Name: className(mod, opts), IsStatic: true}

	var methods methodCollector
	methods.binary = opts.Binary
	_ = mod.Program.Walk(&methods)
	class.Methods = methods.out

	root := &csharp.Root{FileComment: fileComment(mod, opts)}

	usings := opts.Usings
	if usings == nil {
		usings = DefaultUsings
	}
	for _, u := range usings {
		root.Usings = append(root.Usings, csharp.UsingStatement{Path: u})
	}

	if opts.Namespace != "" {
		root.Children = []csharp.Node{&csharp.Namespace{Name: opts.Namespace, Children: []csharp.Node{class}}}
	} else {
		root.Children = []csharp.Node{class}
	}
	return root
}

type methodCollector struct {
	binary string
	out    []*csharp.ImportedMethod
}

func (c *methodCollector) VisitFunc(fn ffi.Function) error {
	c.out = append(c.out, &csharp.ImportedMethod{BinaryName: c.binary, Func: fn})
	return nil
}

func className(mod *extractor.Module, opts Options) string {
	if opts.ClassName != "" && isCrateRoot(mod.Path) {
		return opts.ClassName
	}
	return csharp.ToTypeCase(mod.Name)
}

func isCrateRoot(path string) bool {
	base := filepath.Base(path)
	return base == "lib.rs" || base == "main.rs"
}

func fileComment(mod *extractor.Module, opts Options) *csharp.BlockComment {
	if opts.FileComment != nil {
		if len(opts.FileComment) == 0 {
			return nil
		}
		return &csharp.BlockComment{Lines: opts.FileComment}
	}
	return &csharp.BlockComment{Lines: []string{
		defaultHeader,
		"",
		"Source: " + sourcePath(mod.Path, opts.Root),
	}}
}

func sourcePath(path, root string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}
