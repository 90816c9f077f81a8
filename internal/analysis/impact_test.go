package analysis

import (
	"testing"

	"dotnet-bindgen/internal/extractor"
	"dotnet-bindgen/internal/ffi"
	"dotnet-bindgen/internal/git"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleModule() *extractor.Module {
	prog := ffi.NewProgram()
	prog.Append(ffi.FuncExport{Func: ffi.Function{Name: "noop", Return: ffi.Void()}})
	prog.Append(ffi.FuncExport{Func: ffi.Function{Name: "add", Return: ffi.Void()}})
	return &extractor.Module{
		Path:    "/crate/src/lib.rs",
		Name:    "math",
		Program: prog,
		Spans: []extractor.Span{
			{File: "/crate/src/lib.rs", StartLine: 2, EndLine: 2},
			{File: "/crate/src/lib.rs", StartLine: 5, EndLine: 7},
		},
	}
}

func TestAnalyzeImpact(t *testing.T) {
	empty := &extractor.Module{Path: "/crate/src/empty.rs", Program: ffi.NewProgram()}
	a := NewAnalyzer([]*extractor.Module{sampleModule(), empty})

	report := a.AnalyzeImpact([]git.ChangedFile{
		{Path: "/crate/src/lib.rs", ChangedLines: []int{6, 10}},
		{Path: "/crate/src/empty.rs", ChangedLines: []int{1}},
		{Path: "/crate/README.md", ChangedLines: []int{1}},
	})

	require.Len(t, report.Affected, 1)
	assert.Equal(t, "add", report.Affected[0].Function.Name)
	assert.Equal(t, "math", report.Affected[0].Module)
	assert.Equal(t, 5, report.Affected[0].Span.StartLine)
	assert.Equal(t, []string{"/crate/src/lib.rs"}, report.Modules)
}

func TestAnalyzeImpact_NoOverlap(t *testing.T) {
	a := NewAnalyzer([]*extractor.Module{sampleModule()})

	report := a.AnalyzeImpact([]git.ChangedFile{{Path: "/crate/src/lib.rs", ChangedLines: []int{3, 4, 8}}})
	assert.Empty(t, report.Affected)
	assert.Equal(t, []string{"/crate/src/lib.rs"}, report.Modules)
}
