package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"dotnet-bindgen/internal/config"
	"dotnet-bindgen/internal/crawler"
	"dotnet-bindgen/internal/extractor"
	"dotnet-bindgen/internal/generator"
	"dotnet-bindgen/internal/index"
	"dotnet-bindgen/internal/storage"

	"github.com/rs/zerolog/log"
)

// project wires the pipeline for one crate.
type project struct {
	cfg     *config.Config
	store   *storage.SQLiteStore
	indexer *index.Indexer
	gen     *generator.Generator
}

func openProject(args []string) (*project, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	path := configPath
	if path == "" {
		path = filepath.Join(dir, config.DefaultFile)
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	setupLogging(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s:\n%w", path, err)
	}

	ext, err := extractor.NewExtractor("rust", extractor.Options{
		Attributes: cfg.Project.Attributes,
		ExternC:    cfg.Project.ExternC,
		CrateName:  cfg.CrateName,
	})
	if err != nil {
		return nil, err
	}

	p := &project{cfg: cfg}

	var cache index.Cache
	if !noCache && !cfg.Cache.Disabled && cfg.Cache.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
		store, err := storage.NewSQLiteStore(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		p.store = store
		cache = store
	}

	cr := crawler.NewCrawler(ext)
	cr.Ignore(cfg.Project.Ignore...)
	p.indexer = index.NewIndexer(cr, ext, cache)
	p.gen = generator.NewGenerator(generator.Options{
		Binary:      cfg.Output.Binary,
		Namespace:   cfg.Output.Namespace,
		ClassName:   cfg.Output.Class,
		FileComment: cfg.Output.FileComment,
		Usings:      cfg.Output.Usings,
		Indent:      cfg.Output.Indent,
		Root:        cfg.Project.Root,
	})

	log.Debug().
		Str("config", path).
		Str("root", cfg.Project.Root).
		Str("binary", cfg.Output.Binary).
		Bool("cache", cache != nil).
		Msg("project loaded")

	return p, nil
}

func (p *project) Close() {
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close cache")
		}
	}
}

// build indexes the crate and renders every file.
func (p *project) build(ctx context.Context, report *generator.RunReport) (*index.Result, []generator.File, error) {
	h := report.BeginStage("index")
	res, err := p.indexer.BuildModules(ctx, p.cfg.Project.Root)
	if err != nil {
		report.EndStage(h, nil, err)
		return nil, nil, err
	}
	report.EndStage(h, map[string]float64{
		"cached":    float64(res.Cached),
		"extracted": float64(res.Extracted),
		"pruned":    float64(res.Pruned),
	}, nil)

	h = report.BeginStage("render")
	files, err := p.gen.Generate(res.Modules)
	report.EndStage(h, map[string]float64{"files": float64(len(files))}, err)
	if err != nil {
		return nil, nil, err
	}

	report.AddModules(res.Modules, files)
	return res, files, nil
}

func printDiagnostics(diags extractor.Diagnostics) {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s: error: %s\n", d.Span, d.Message)
	}
}
