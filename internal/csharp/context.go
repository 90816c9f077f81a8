package csharp

import (
	"fmt"
	"io"
)

// DefaultIndent is the indentation token written once per nesting level.
const DefaultIndent = "    "

// RenderContext carries the indentation state of one scope. Nested scopes
// derive their own context with Indented; a context is never modified in
// place.
type RenderContext struct {
	depth  int
	indent string
}

// NewRenderContext returns a top-level context that indents with token.
// An empty token falls back to DefaultIndent.
func NewRenderContext(token string) RenderContext {
	if token == "" {
		token = DefaultIndent
	}
	return RenderContext{indent: token}
}

// Depth returns the nesting level.
func (c RenderContext) Depth() int {
	return c.depth
}

// Indented returns the context for the next nesting level.
func (c RenderContext) Indented() RenderContext {
	return RenderContext{depth: c.depth + 1, indent: c.token()}
}

func (c RenderContext) token() string {
	if c.indent == "" {
		return DefaultIndent
	}
	return c.indent
}

func writeIndent(w io.Writer, ctx RenderContext) error {
	tok := ctx.token()
	for i := 0; i < ctx.depth; i++ {
		if _, err := io.WriteString(w, tok); err != nil {
			return err
		}
	}
	return nil
}

// writeLine writes one indented, newline-terminated line.
func writeLine(w io.Writer, ctx RenderContext, format string, args ...any) error {
	if err := writeIndent(w, ctx); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
