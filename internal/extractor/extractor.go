package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dotnet-bindgen/internal/ffi"

	"github.com/rs/zerolog/log"
	sitter "github.com/smacker/go-tree-sitter"
)

const msgSyntax = "syntax error"

// Extractor parses source files with a language frontend and turns the
// selected declarations into binding programs.
type Extractor struct {
	frontend LanguageFrontend
	langName string
	opts     Options
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string, opts Options) (*Extractor, error) {
	var fe LanguageFrontend
	switch lang {
	case "rust":
		fe = NewRustFrontend(opts)
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return &Extractor{frontend: fe, langName: lang, opts: opts}, nil
}

// Supports reports whether path has an extension the frontend parses.
func (e *Extractor) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range e.frontend.Extensions() {
		if ext == want {
			return true
		}
	}
	return false
}

// Fingerprint identifies the options that shape extraction results. Cached
// results are only valid for the fingerprint they were produced under.
func (e *Extractor) Fingerprint() string {
	attrs := append([]string(nil), e.opts.Attributes...)
	if len(attrs) == 0 {
		attrs = []string{DefaultAttribute}
	}
	sort.Strings(attrs)
	return fmt.Sprintf("%s;crate=%s;extern_c=%t;attrs=%s",
		e.langName, e.opts.CrateName, e.opts.ExternC, strings.Join(attrs, ","))
}

// ExtractFromFile reads and extracts a single source file.
func (e *Extractor) ExtractFromFile(path string) (*Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return e.ExtractSource(path, src)
}

// ExtractSource extracts declarations from src. Declarations that cannot be
// described are recorded in Module.Diagnostics and do not stop the others.
// The returned error is reserved for parser failures.
func (e *Extractor) ExtractSource(path string, src []byte) (*Module, error) {
	mod := &Module{
		Path:        path,
		Name:        ModuleName(path, e.opts.CrateName),
		ContentHash: ContentHash(src),
		Program:     ffi.NewProgram(),
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.frontend.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		mod.Diagnostics = append(mod.Diagnostics, errorAt(spanOf(firstError(root), path), msgSyntax))
		return mod, nil
	}

	decls, diags := e.frontend.Declarations(root, src, path)
	mod.Diagnostics = append(mod.Diagnostics, diags...)

	for _, decl := range decls {
		if err := ExtractInto(mod.Program, decl); err != nil {
			var d *Diagnostic
			if !errors.As(err, &d) {
				return nil, err
			}
			log.Debug().Str("file", path).Str("func", decl.Name).Msg(d.Message)
			mod.Diagnostics = append(mod.Diagnostics, d)
			continue
		}
		mod.Spans = append(mod.Spans, decl.Span)
	}

	mod.Diagnostics.Sort()
	return mod, nil
}

// firstError returns the first ERROR or MISSING node in document order, or
// root when none is found.
func firstError(root *sitter.Node) *sitter.Node {
	var found *sitter.Node

	cursor := sitter.NewTreeCursor(root)
	defer cursor.Close()

	var visit func(*sitter.TreeCursor)
	visit = func(c *sitter.TreeCursor) {
		if found != nil {
			return
		}
		n := c.CurrentNode()
		if n.IsError() || n.IsMissing() {
			found = n
			return
		}
		if !n.HasError() {
			return
		}
		if c.GoToFirstChild() {
			visit(c)
			for found == nil && c.GoToNextSibling() {
				visit(c)
			}
			c.GoToParent()
		}
	}
	visit(cursor)

	if found == nil {
		return root
	}
	return found
}
