package analysis

import (
	"sort"

	"dotnet-bindgen/internal/extractor"
	"dotnet-bindgen/internal/ffi"
	"dotnet-bindgen/internal/git"
)

// AffectedFunction is a bound function whose source overlaps a change.
type AffectedFunction struct {
	Module   string
	Function ffi.Function
	Span     extractor.Span
}

// ImpactReport summarizes the bindings affected by changes.
type ImpactReport struct {
	Affected []AffectedFunction
	// Modules lists changed files that export at least one function.
	Modules []string
}

// Analyzer maps changed lines to bound functions.
type Analyzer struct {
	byPath map[string]*extractor.Module
}

// NewAnalyzer creates a new analyzer over the indexed modules.
func NewAnalyzer(modules []*extractor.Module) *Analyzer {
	byPath := make(map[string]*extractor.Module, len(modules))
	for _, m := range modules {
		byPath[m.Path] = m
	}
	return &Analyzer{byPath: byPath}
}

// AnalyzeImpact identifies which bound functions the changes touch. Change
// paths must use the same form as the module paths.
func (a *Analyzer) AnalyzeImpact(changes []git.ChangedFile) *ImpactReport {
	report := &ImpactReport{Affected: []AffectedFunction{}}
	seen := make(map[string]bool)

	for _, change := range changes {
		mod, ok := a.byPath[change.Path]
		if !ok || mod.Program == nil || mod.Program.Len() == 0 {
			continue
		}
		if !seen[mod.Path] {
			report.Modules = append(report.Modules, mod.Path)
			seen[mod.Path] = true
		}

		funcs := mod.Program.Functions()
		for i, fn := range funcs {
			if i >= len(mod.Spans) {
				break
			}
			if isAffected(mod.Spans[i], change.ChangedLines) {
				report.Affected = append(report.Affected, AffectedFunction{
					Module:   mod.Name,
					Function: fn,
					Span:     mod.Spans[i],
				})
			}
		}
	}

	sort.Strings(report.Modules)
	return report
}

func isAffected(span extractor.Span, lines []int) bool {
	for _, line := range lines {
		if line >= span.StartLine && line <= span.EndLine {
			return true
		}
	}
	return false
}
