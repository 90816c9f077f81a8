// Package csharp models the C# constructs emitted for native bindings and
// renders them to text.
//
// Every node writes itself given a RenderContext and recurses into its
// children with an indented context. Rendering holds no state between calls,
// so the same tree always produces the same bytes.
package csharp

import (
	"io"
	"strings"

	"dotnet-bindgen/internal/ffi"
)

// Node is a renderable C# construct. The set of nodes is closed to this
// package.
type Node interface {
	Render(w io.Writer, ctx RenderContext) error
	node()
}

// Root is the top of a generated file.
type Root struct {
	FileComment *BlockComment
	Usings      []UsingStatement
	Children    []Node
}

// Render writes the whole file starting at ctx.
func (r *Root) Render(w io.Writer, ctx RenderContext) error {
	first := true

	if r.FileComment != nil {
		if err := r.FileComment.Render(w, ctx); err != nil {
			return err
		}
		first = false
	}

	if !first && len(r.Usings) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	for _, u := range r.Usings {
		if err := u.Render(w, ctx); err != nil {
			return err
		}
		first = false
	}

	for _, child := range r.Children {
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := child.Render(w, ctx); err != nil {
			return err
		}
		first = false
	}

	return nil
}

// String renders the file with the default indentation.
func (r *Root) String() string {
	var sb strings.Builder
	_ = r.Render(&sb, NewRenderContext(DefaultIndent))
	return sb.String()
}

func (*Root) node() {}

// BlockComment is a /* */ comment with one text line per entry.
type BlockComment struct {
	Lines []string
}

func (c *BlockComment) Render(w io.Writer, ctx RenderContext) error {
	if err := writeLine(w, ctx, "/*"); err != nil {
		return err
	}
	for _, line := range c.Lines {
		if line == "" {
			if err := writeLine(w, ctx, " *"); err != nil {
				return err
			}
			continue
		}
		if err := writeLine(w, ctx, " * %s", line); err != nil {
			return err
		}
	}
	return writeLine(w, ctx, " */")
}

func (*BlockComment) node() {}

// UsingStatement imports a namespace, e.g. System.Runtime.InteropServices.
type UsingStatement struct {
	Path string
}

func (u UsingStatement) Render(w io.Writer, ctx RenderContext) error {
	return writeLine(w, ctx, "using %s;", u.Path)
}

func (UsingStatement) node() {}

// Namespace groups its children under a C# namespace block.
type Namespace struct {
	Name     string
	Children []Node
}

func (n *Namespace) Render(w io.Writer, ctx RenderContext) error {
	if err := writeLine(w, ctx, "namespace %s", n.Name); err != nil {
		return err
	}
	if err := writeLine(w, ctx, "{"); err != nil {
		return err
	}

	inner := ctx.Indented()
	for _, child := range n.Children {
		if err := child.Render(w, inner); err != nil {
			return err
		}
	}

	return writeLine(w, ctx, "}")
}

func (*Namespace) node() {}

// Class holds the imported methods of one native module.
type Class struct {
	Name     string
	IsStatic bool
	Methods  []*ImportedMethod
}

func (c *Class) Render(w io.Writer, ctx RenderContext) error {
	static := ""
	if c.IsStatic {
		static = "static "
	}
	if err := writeLine(w, ctx, "public %sclass %s", static, c.Name); err != nil {
		return err
	}
	if err := writeLine(w, ctx, "{"); err != nil {
		return err
	}

	inner := ctx.Indented()
	for _, m := range c.Methods {
		if err := m.Render(w, inner); err != nil {
			return err
		}
	}

	return writeLine(w, ctx, "}")
}

func (*Class) node() {}

// ImportedMethod binds one native function through [DllImport].
type ImportedMethod struct {
	BinaryName string
	Func       ffi.Function
}

// MethodName is the PascalCase C# name of the method. The entry point keeps
// the native spelling.
func (m *ImportedMethod) MethodName() string {
	return ToTypeCase(m.Func.Name)
}

// Signature returns the extern declaration without indentation.
func (m *ImportedMethod) Signature() string {
	var sb strings.Builder
	sb.WriteString("public static extern ")
	sb.WriteString(RenderType(m.Func.Return))
	sb.WriteString(" ")
	sb.WriteString(m.MethodName())
	sb.WriteString("(")
	for i, arg := range m.Func.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(RenderType(arg.Type))
		sb.WriteString(" ")
		sb.WriteString(ToParamCase(arg.Name))
	}
	sb.WriteString(");")
	return sb.String()
}

func (m *ImportedMethod) Render(w io.Writer, ctx RenderContext) error {
	if err := writeLine(w, ctx, "[DllImport(%q, EntryPoint = %q)]", m.BinaryName, m.Func.Name); err != nil {
		return err
	}
	return writeLine(w, ctx, "%s", m.Signature())
}

func (*ImportedMethod) node() {}
