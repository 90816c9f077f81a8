package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dotnet-bindgen/internal/csharp"
	"dotnet-bindgen/internal/extractor"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/rs/zerolog/log"
)

// FileSuffix marks files owned by the generator.
const FileSuffix = ".g.cs"

// File is one generated C# source file. Path is relative to the output dir.
type File struct {
	Path    string
	Source  string
	Content string
	Methods int
}

// Drift describes an output file that does not match what would be generated.
type Drift struct {
	Path string
	// Diff is a unified diff from disk to the expected content.
	Diff string
}

type Generator struct {
	opts Options
}

func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Generate renders every module that exports at least one function. Files
// are sorted by path.
func (g *Generator) Generate(modules []*extractor.Module) ([]File, error) {
	files := make([]File, 0, len(modules))
	owners := make(map[string]string, len(modules))
	ctx := csharp.NewRenderContext(g.opts.Indent)

	for _, mod := range modules {
		if mod.Program == nil || mod.Program.Len() == 0 {
			continue
		}

		root := Assemble(mod, g.opts)
		cls := findClass(root)
		if err := checkMembers(cls); err != nil {
			return nil, fmt.Errorf("%s: %w", mod.Path, err)
		}
		name := cls.Name + FileSuffix
		if prev, ok := owners[name]; ok {
			return nil, fmt.Errorf("output %s produced by both %s and %s", name, prev, mod.Path)
		}
		owners[name] = mod.Path

		var sb strings.Builder
		if err := root.Render(&sb, ctx); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", mod.Path, err)
		}
		files = append(files, File{
			Path:    name,
			Source:  mod.Path,
			Content: sb.String(),
			Methods: mod.Program.Len(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func findClass(root *csharp.Root) *csharp.Class {
	for _, n := range root.Children {
		switch v := n.(type) {
		case *csharp.Class:
			return v
		case *csharp.Namespace:
			for _, c := range v.Children {
				if cls, ok := c.(*csharp.Class); ok {
					return cls
				}
			}
		}
	}
	return nil
}

// checkMembers rejects names the C# compiler would: a method named like its
// class, two methods with one name, or a repeated parameter name.
func checkMembers(cls *csharp.Class) error {
	seen := make(map[string]string, len(cls.Methods))
	for _, m := range cls.Methods {
		name := m.MethodName()
		if name == cls.Name {
			return fmt.Errorf("function %s maps to method %s, which is the class name", m.Func.Name, name)
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("functions %s and %s both map to method %s.%s", prev, m.Func.Name, cls.Name, name)
		}
		seen[name] = m.Func.Name

		params := make(map[string]string, len(m.Func.Args))
		for _, arg := range m.Func.Args {
			p := csharp.ToParamCase(arg.Name)
			if prev, ok := params[p]; ok {
				return fmt.Errorf("parameters %s and %s of %s both map to %s", prev, arg.Name, m.Func.Name, p)
			}
			params[p] = arg.Name
		}
	}
	return nil
}

// Write writes files into dir and returns the paths that changed on disk.
// Files whose content already matches are left untouched.
func (g *Generator) Write(dir string, files []File) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var changed []string
	for _, f := range files {
		path := filepath.Join(dir, f.Path)
		current, err := os.ReadFile(path)
		if err == nil && string(current) == f.Content {
			continue
		}
		if err := os.WriteFile(path, []byte(f.Content), 0644); err != nil {
			return changed, fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Debug().Str("file", path).Int("methods", f.Methods).Msg("wrote bindings")
		changed = append(changed, f.Path)
	}
	return changed, nil
}

// Prune removes generated files in dir that are not part of files, the
// complete output of a run.
func (g *Generator) Prune(dir string, files []File) ([]string, error) {
	orphans, err := orphaned(dir, files)
	if err != nil {
		return nil, err
	}
	for i, name := range orphans {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return orphans[:i], fmt.Errorf("failed to remove %s: %w", name, err)
		}
		log.Debug().Str("file", name).Msg("removed stale bindings")
	}
	return orphans, nil
}

// Check compares files with the contents of dir without writing. Missing,
// modified and orphaned files are all reported.
func (g *Generator) Check(dir string, files []File) ([]Drift, error) {
	var drifts []Drift
	for _, f := range files {
		path := filepath.Join(dir, f.Path)
		current, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if string(current) == f.Content {
			continue
		}
		drifts = append(drifts, Drift{Path: f.Path, Diff: unifiedDiff(f.Path, string(current), f.Content)})
	}

	orphans, err := orphaned(dir, files)
	if err != nil {
		return nil, err
	}
	for _, name := range orphans {
		current, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		drifts = append(drifts, Drift{Path: name, Diff: unifiedDiff(name, string(current), "")})
	}

	sort.Slice(drifts, func(i, j int) bool { return drifts[i].Path < drifts[j].Path })
	return drifts, nil
}

func orphaned(dir string, files []File) ([]string, error) {
	want := make(map[string]bool, len(files))
	for _, f := range files {
		want[f.Path] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FileSuffix) || want[e.Name()] {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

func unifiedDiff(name, from, to string) string {
	edits := myers.ComputeEdits(span.URIFromPath(name), from, to)
	return fmt.Sprint(gotextdiff.ToUnified("a/"+name, "b/"+name, from, edits))
}
