package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"dotnet-bindgen/internal/analysis"
	"dotnet-bindgen/internal/extractor"
	"dotnet-bindgen/internal/generator"
	"dotnet-bindgen/internal/git"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var reportPath string

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Extract marked functions and write C# bindings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(args)
		if err != nil {
			return err
		}
		defer p.Close()

		ctx := context.Background()
		report := generator.NewRunReport("generate", p.cfg.Output.Dir)
		fmt.Printf("📂 Scanning crate: %s\n", p.cfg.Project.Root)

		start := time.Now()
		res, files, err := p.build(ctx, report)
		if err != nil {
			return err
		}

		h := report.BeginStage("write")
		changed, err := p.gen.Write(p.cfg.Output.Dir, files)
		if err == nil {
			var removed []string
			removed, err = p.gen.Prune(p.cfg.Output.Dir, files)
			changed = append(changed, removed...)
		}
		report.EndStage(h, map[string]float64{"changed": float64(len(changed))}, err)
		if err != nil {
			return err
		}

		if reportPath != "" {
			if err := report.Save(reportPath); err != nil {
				log.Warn().Err(err).Str("path", reportPath).Msg("failed to save report")
			}
		}

		fmt.Printf("✅ %d modules, %d files (%d changed) in %v\n",
			len(res.Modules), len(files), len(changed), time.Since(start).Round(time.Millisecond))

		if len(res.Diagnostics) > 0 {
			printDiagnostics(res.Diagnostics)
			return fmt.Errorf("%d function(s) could not be bound", len(res.Diagnostics))
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Verify that generated bindings are up to date",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(args)
		if err != nil {
			return err
		}
		defer p.Close()

		res, files, err := p.build(context.Background(), nil)
		if err != nil {
			return err
		}

		drifts, err := p.gen.Check(p.cfg.Output.Dir, files)
		if err != nil {
			return err
		}
		for _, d := range drifts {
			fmt.Print(d.Diff)
		}

		printDiagnostics(res.Diagnostics)
		switch {
		case len(drifts) > 0:
			return fmt.Errorf("%d generated file(s) out of date; run dotnet-bindgen generate", len(drifts))
		case len(res.Diagnostics) > 0:
			return fmt.Errorf("%d function(s) could not be bound", len(res.Diagnostics))
		}
		fmt.Println("✅ Bindings are up to date.")
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "Print extracted binding descriptors as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(args)
		if err != nil {
			return err
		}
		defer p.Close()

		res, err := p.indexer.BuildModules(context.Background(), p.cfg.Project.Root)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res.Modules)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [base-ref]",
	Short: "Regenerate bindings only for Rust files changed since a git ref",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseRef := "HEAD"
		if len(args) > 0 {
			baseRef = args[0]
		}

		p, err := openProject(nil)
		if err != nil {
			return err
		}
		defer p.Close()

		top, err := git.TopLevel(p.cfg.Project.Root)
		if err != nil {
			return err
		}
		changes, err := git.GetChangedFiles(p.cfg.Project.Root, baseRef)
		if err != nil {
			return err
		}
		changes = git.FilterExt(changes, ".rs")
		if len(changes) == 0 {
			fmt.Println("✅ No Rust changes detected.")
			return nil
		}
		fmt.Printf("📝 Detected %d changed Rust files.\n", len(changes))

		changed := make(map[string]bool, len(changes))
		for i, c := range changes {
			changes[i].Path = filepath.Join(top, filepath.FromSlash(c.Path))
			changed[changes[i].Path] = true
		}

		res, files, err := p.build(context.Background(), nil)
		if err != nil {
			return err
		}

		impact := analysis.NewAnalyzer(res.Modules).AnalyzeImpact(changes)
		fmt.Printf("🔍 %d bound functions changed in %d modules.\n", len(impact.Affected), len(impact.Modules))
		for _, a := range impact.Affected {
			log.Info().Str("module", a.Module).Str("func", a.Function.Name).Str("at", a.Span.String()).Msg("binding changed")
		}

		var selected []generator.File
		for _, f := range files {
			if changed[f.Source] {
				selected = append(selected, f)
			}
		}
		written, err := p.gen.Write(p.cfg.Output.Dir, selected)
		if err != nil {
			return err
		}
		removed, err := p.gen.Prune(p.cfg.Output.Dir, files)
		if err != nil {
			return err
		}
		fmt.Printf("✅ %d files rewritten, %d removed.\n", len(written), len(removed))

		var diags extractor.Diagnostics
		for _, d := range res.Diagnostics {
			if changed[d.Span.File] {
				diags = append(diags, d)
			}
		}
		if len(diags) > 0 {
			printDiagnostics(diags)
			return fmt.Errorf("%d function(s) could not be bound", len(diags))
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&reportPath, "report", "", "Write a JSON run report to this path")
}
