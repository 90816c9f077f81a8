// Package ffi holds the language-neutral description of natively exported
// functions: their primitive types, arguments and the per-module program
// that collects them.
package ffi

import (
	"encoding/json"
	"fmt"
)

// Argument is one parameter of an exported function. Name is the source
// identifier exactly as declared; target renderers apply their own casing.
type Argument struct {
	Type Type   `json:"type"`
	Name string `json:"name"`
}

// Function is the callable shape of a native export. Args are kept in
// native call order.
type Function struct {
	Name   string     `json:"name"`
	Args   []Argument `json:"args"`
	Return Type       `json:"return"`
}

// ValidIdentifier reports whether s is usable as an identifier on both sides
// of the boundary: non-empty ASCII letters, digits and underscores, not
// starting with a digit.
func ValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ExportVisitor handles every Export variant. A new variant adds a method
// here, which breaks every consumer until it handles the new kind.
type ExportVisitor interface {
	VisitFunc(fn Function) error
}

// Export is one item a module makes available across the boundary.
type Export interface {
	Accept(v ExportVisitor) error
	isExport()
}

// FuncExport exports a single function.
type FuncExport struct {
	Func Function
}

func (e FuncExport) Accept(v ExportVisitor) error {
	return v.VisitFunc(e.Func)
}

func (FuncExport) isExport() {}

// Program is the ordered set of exports extracted from one source module.
// It only grows; existing entries are never rewritten.
type Program struct {
	exports []Export
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{}
}

// Append adds an export to the end of the program.
func (p *Program) Append(e Export) {
	p.exports = append(p.exports, e)
}

// Len returns the number of exports.
func (p *Program) Len() int {
	return len(p.exports)
}

// Exports returns a copy of the exports in insertion order.
func (p *Program) Exports() []Export {
	out := make([]Export, len(p.exports))
	copy(out, p.exports)
	return out
}

// Walk visits every export in order and stops at the first error.
func (p *Program) Walk(v ExportVisitor) error {
	for _, e := range p.exports {
		if err := e.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

// Functions returns every function export in order.
func (p *Program) Functions() []Function {
	c := &funcCollector{}
	_ = p.Walk(c)
	return c.funcs
}

type funcCollector struct {
	funcs []Function
}

func (c *funcCollector) VisitFunc(fn Function) error {
	c.funcs = append(c.funcs, fn)
	return nil
}

type exportJSON struct {
	Kind string    `json:"kind"`
	Func *Function `json:"func,omitempty"`
}

type exportEncoder struct {
	out []exportJSON
}

func (e *exportEncoder) VisitFunc(fn Function) error {
	fn.Args = append([]Argument{}, fn.Args...)
	e.out = append(e.out, exportJSON{Kind: "func", Func: &fn})
	return nil
}

func (p *Program) MarshalJSON() ([]byte, error) {
	enc := &exportEncoder{out: []exportJSON{}}
	if err := p.Walk(enc); err != nil {
		return nil, err
	}
	return json.Marshal(enc.out)
}

func (p *Program) UnmarshalJSON(data []byte) error {
	var raw []exportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.exports = nil
	for i, r := range raw {
		switch r.Kind {
		case "func":
			if r.Func == nil {
				return fmt.Errorf("export %d: missing function body", i)
			}
			p.Append(FuncExport{Func: *r.Func})
		default:
			return fmt.Errorf("export %d: unknown kind %q", i, r.Kind)
		}
	}
	return nil
}
