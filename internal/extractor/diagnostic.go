package extractor

import (
	"fmt"
	"sort"
)

// Span locates a source element. Lines and columns are 1-based; columns
// count bytes.
type Span struct {
	File        string `json:"file,omitempty"`
	StartByte   int    `json:"start_byte"`
	EndByte     int    `json:"end_byte"`
	StartLine   int    `json:"start_line"`
	StartColumn int    `json:"start_column"`
	EndLine     int    `json:"end_line"`
	EndColumn   int    `json:"end_column"`
}

func (s Span) String() string {
	file := s.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, s.StartLine, s.StartColumn)
}

// Diagnostic is a user-facing extraction failure tied to a source location.
type Diagnostic struct {
	Message string `json:"message"`
	Span    Span   `json:"span"`
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Span, d.Message)
}

func errorAt(span Span, msg string) *Diagnostic {
	return &Diagnostic{Message: msg, Span: span}
}

// Diagnostics collects the failures of one extraction run.
type Diagnostics []*Diagnostic

// Sort orders diagnostics by file and position.
func (ds Diagnostics) Sort() {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i].Span, ds[j].Span
		if a.File != b.File {
			return a.File < b.File
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.StartColumn < b.StartColumn
	})
}
