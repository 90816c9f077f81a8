package generator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"dotnet-bindgen/internal/extractor"
)

type StageMetric struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	StartedAt  string             `json:"started_at"`
	FinishedAt string             `json:"finished_at"`
	DurationMS int64              `json:"duration_ms"`
	Counters   map[string]float64 `json:"counters,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type ModuleMetric struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Functions   int    `json:"functions"`
	Diagnostics int    `json:"diagnostics"`
	Output      string `json:"output,omitempty"`
}

type ReportSummary struct {
	StageCount   int `json:"stage_count"`
	FailedStages int `json:"failed_stages"`
	Modules      int `json:"modules"`
	Functions    int `json:"functions"`
	Diagnostics  int `json:"diagnostics"`
	Files        int `json:"files"`
}

// RunReport records what a generate or check run did.
type RunReport struct {
	Version     string         `json:"version"`
	Mode        string         `json:"mode"`
	GeneratedAt string         `json:"generated_at"`
	OutputDir   string         `json:"output_dir"`
	Stages      []StageMetric  `json:"stages"`
	Modules     []ModuleMetric `json:"modules,omitempty"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
	Summary     ReportSummary  `json:"summary"`
}

type StageHandle struct {
	name    string
	started time.Time
}

func NewRunReport(mode, outputDir string) *RunReport {
	return &RunReport{
		Version:   "v1",
		Mode:      mode,
		OutputDir: outputDir,
		Stages:    []StageMetric{},
	}
}

func (r *RunReport) BeginStage(name string) StageHandle {
	return StageHandle{name: strings.TrimSpace(name), started: time.Now().UTC()}
}

func (r *RunReport) EndStage(h StageHandle, counters map[string]float64, err error) {
	if r == nil || h.name == "" {
		return
	}
	finished := time.Now().UTC()
	m := StageMetric{
		Name:       h.name,
		Status:     "ok",
		StartedAt:  h.started.Format(time.RFC3339Nano),
		FinishedAt: finished.Format(time.RFC3339Nano),
		DurationMS: finished.Sub(h.started).Milliseconds(),
		Counters:   cleanCounters(counters),
	}
	if err != nil {
		m.Status = "error"
		m.Error = err.Error()
	}
	r.Stages = append(r.Stages, m)
}

// AddModules records per-module results and the file each one produced.
func (r *RunReport) AddModules(modules []*extractor.Module, files []File) {
	if r == nil {
		return
	}
	outputs := make(map[string]string, len(files))
	for _, f := range files {
		outputs[f.Source] = f.Path
	}
	for _, mod := range modules {
		m := ModuleMetric{
			Path:        mod.Path,
			Name:        mod.Name,
			Diagnostics: len(mod.Diagnostics),
			Output:      outputs[mod.Path],
		}
		if mod.Program != nil {
			m.Functions = mod.Program.Len()
		}
		r.Modules = append(r.Modules, m)
		for _, d := range mod.Diagnostics {
			r.Diagnostics = append(r.Diagnostics, d.Error())
		}
	}
}

func (r *RunReport) Finalize() {
	if r == nil {
		return
	}
	r.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	sort.Slice(r.Modules, func(i, j int) bool { return r.Modules[i].Path < r.Modules[j].Path })

	failed := 0
	for _, st := range r.Stages {
		if st.Status != "ok" {
			failed++
		}
	}
	funcs, files := 0, 0
	for _, m := range r.Modules {
		funcs += m.Functions
		if m.Output != "" {
			files++
		}
	}

	r.Summary = ReportSummary{
		StageCount:   len(r.Stages),
		FailedStages: failed,
		Modules:      len(r.Modules),
		Functions:    funcs,
		Diagnostics:  len(r.Diagnostics),
		Files:        files,
	}
}

func (r *RunReport) Save(path string) error {
	if r == nil {
		return nil
	}
	r.Finalize()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func cleanCounters(raw map[string]float64) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
