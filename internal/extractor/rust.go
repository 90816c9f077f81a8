package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

const msgNotFunction = "cannot generate bindings for this item"

// RustFrontend implements LanguageFrontend for Rust crates.
type RustFrontend struct {
	attributes map[string]bool
	externC    bool
}

// NewRustFrontend returns a frontend selecting items marked with one of
// opts.Attributes (DefaultAttribute when empty).
func NewRustFrontend(opts Options) *RustFrontend {
	attrs := opts.Attributes
	if len(attrs) == 0 {
		attrs = []string{DefaultAttribute}
	}
	set := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		set[strings.TrimSpace(a)] = true
	}
	return &RustFrontend{attributes: set, externC: opts.ExternC}
}

func (r *RustFrontend) GetLanguage() *sitter.Language {
	return rust.GetLanguage()
}

func (r *RustFrontend) Extensions() []string {
	return []string{".rs"}
}

func (r *RustFrontend) Declarations(root *sitter.Node, src []byte, path string) ([]FunctionDecl, Diagnostics) {
	w := &rustWalker{frontend: r, src: src, path: path}
	w.walkItems(root, scopeModule)
	return w.decls, w.diags
}

// itemScope is the kind of body a walker is in.
type itemScope int

const (
	scopeModule itemScope = iota
	// scopeImpl holds associated functions, which have no exported symbol.
	scopeImpl
	// scopeOpaque is a trait or extern block; nothing in it can be bound.
	scopeOpaque
)

type rustWalker struct {
	frontend *RustFrontend
	src      []byte
	path     string
	decls    []FunctionDecl
	diags    Diagnostics
}

// walkItems scans the items of a source file, inline module, impl, trait or
// extern block body. Outer attributes are sibling nodes that precede the
// item they apply to.
func (w *rustWalker) walkItems(container *sitter.Node, scope itemScope) {
	var attrs []*sitter.Node

	for i := 0; i < int(container.NamedChildCount()); i++ {
		child := container.NamedChild(i)
		switch child.Type() {
		case "attribute_item":
			attrs = append(attrs, child)
			continue
		case "line_comment", "block_comment", "inner_attribute_item":
			continue
		}

		itemAttrs := attrs
		attrs = nil
		marked := w.hasMarker(itemAttrs)

		switch {
		case child.Type() == "function_item" && scope == scopeModule:
			if marked || (w.frontend.externC && w.isExternC(child, itemAttrs)) {
				w.decls = append(w.decls, w.functionDecl(child))
			}
		case child.Type() == "function_item" && scope == scopeImpl:
			if marked {
				w.diags = append(w.diags, errorAt(w.span(child), msgMethods))
			}
		default:
			if marked {
				w.diags = append(w.diags, errorAt(w.span(child), msgNotFunction))
			}
		}

		if body := child.ChildByFieldName("body"); body != nil {
			switch child.Type() {
			case "mod_item":
				w.walkItems(body, scopeModule)
			case "impl_item":
				w.walkItems(body, scopeImpl)
			case "trait_item", "foreign_mod_item":
				w.walkItems(body, scopeOpaque)
			}
		}
	}
}

func (w *rustWalker) hasMarker(attrs []*sitter.Node) bool {
	for _, a := range attrs {
		path, _ := w.attributePath(a)
		if path == "" {
			continue
		}
		if w.frontend.attributes[path] {
			return true
		}
		if idx := strings.LastIndex(path, "::"); idx >= 0 && w.frontend.attributes[path[idx+2:]] {
			return true
		}
	}
	return false
}

// attributePath returns the path and raw arguments of an attribute_item,
// e.g. ("dotnet_bindgen", "") or ("unsafe", "(no_mangle)").
func (w *rustWalker) attributePath(item *sitter.Node) (string, string) {
	var attr *sitter.Node
	for i := 0; i < int(item.NamedChildCount()); i++ {
		if c := item.NamedChild(i); c.Type() == "attribute" {
			attr = c
			break
		}
	}
	if attr == nil || attr.NamedChildCount() == 0 {
		return "", ""
	}
	path := canonicalize(attr.NamedChild(0).Content(w.src))
	args := ""
	if a := attr.ChildByFieldName("arguments"); a != nil {
		args = canonicalize(a.Content(w.src))
	}
	return path, args
}

// isExternC reports whether fn is `#[no_mangle] extern "C"`.
func (w *rustWalker) isExternC(fn *sitter.Node, attrs []*sitter.Node) bool {
	noMangle := false
	for _, a := range attrs {
		path, args := w.attributePath(a)
		if path == "no_mangle" || (path == "unsafe" && args == "(no_mangle)") {
			noMangle = true
			break
		}
	}
	if !noMangle {
		return false
	}

	for i := 0; i < int(fn.NamedChildCount()); i++ {
		mods := fn.NamedChild(i)
		if mods.Type() != "function_modifiers" {
			continue
		}
		for j := 0; j < int(mods.NamedChildCount()); j++ {
			ext := mods.NamedChild(j)
			if ext.Type() != "extern_modifier" {
				continue
			}
			if ext.NamedChildCount() == 0 {
				return true
			}
			abi := strings.Trim(ext.NamedChild(0).Content(w.src), `"`)
			return abi == "C" || abi == "C-unwind"
		}
	}
	return false
}

func (w *rustWalker) functionDecl(fn *sitter.Node) FunctionDecl {
	decl := FunctionDecl{Span: w.span(fn)}

	if name := fn.ChildByFieldName("name"); name != nil {
		decl.Name = name.Content(w.src)
		decl.NameSpan = w.span(name)
	} else {
		decl.NameSpan = decl.Span
	}

	if params := fn.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			switch p.Type() {
			case "self_parameter":
				decl.Params = append(decl.Params, ParamDecl{
					Kind:        PatternReceiver,
					Span:        w.span(p),
					PatternSpan: w.span(p),
				})
			case "parameter":
				decl.Params = append(decl.Params, w.parameter(p))
			case "variadic_parameter":
				decl.Params = append(decl.Params, ParamDecl{
					Kind:        PatternVariadic,
					Span:        w.span(p),
					PatternSpan: w.span(p),
				})
			}
		}
	}

	if ret := fn.ChildByFieldName("return_type"); ret != nil {
		decl.Return = &TypeRef{Spelling: ret.Content(w.src), Span: w.span(ret)}
	}

	return decl
}

func (w *rustWalker) parameter(p *sitter.Node) ParamDecl {
	decl := ParamDecl{Span: w.span(p), PatternSpan: w.span(p)}

	if typ := p.ChildByFieldName("type"); typ != nil {
		decl.Type = TypeRef{Spelling: typ.Content(w.src), Span: w.span(typ)}
	}

	pat := p.ChildByFieldName("pattern")
	if pat == nil {
		decl.Kind = PatternDestructure
		return decl
	}

	kind, name, highlight := w.classifyPattern(pat)
	decl.Kind = kind
	decl.Name = name
	decl.PatternSpan = w.span(highlight)
	return decl
}

// classifyPattern returns the binding kind of a parameter pattern, the bound
// name for plain identifiers, and the node a diagnostic should point at.
func (w *rustWalker) classifyPattern(pat *sitter.Node) (PatternKind, string, *sitter.Node) {
	switch pat.Type() {
	case "identifier":
		return PatternIdent, pat.Content(w.src), pat
	case "self":
		return PatternReceiver, "", pat
	case "_":
		return PatternWildcard, "", pat
	case "ref_pattern":
		return PatternRef, "", pat
	case "mut_pattern":
		if n := pat.NamedChildCount(); n > 0 {
			inner := pat.NamedChild(int(n) - 1)
			if inner.Type() != "mutable_specifier" {
				return w.classifyPattern(inner)
			}
		}
		return PatternDestructure, "", pat
	case "captured_pattern":
		// x @ sub: point at the sub-pattern.
		if n := pat.NamedChildCount(); n > 1 {
			return PatternDestructure, "", pat.NamedChild(int(n) - 1)
		}
		return PatternDestructure, "", pat
	default:
		return PatternDestructure, "", pat
	}
}

func (w *rustWalker) span(n *sitter.Node) Span {
	return spanOf(n, w.path)
}

func spanOf(n *sitter.Node, path string) Span {
	start, end := n.StartPoint(), n.EndPoint()
	return Span{
		File:        path,
		StartByte:   int(n.StartByte()),
		EndByte:     int(n.EndByte()),
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column) + 1,
	}
}
