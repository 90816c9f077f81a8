package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"dotnet-bindgen/internal/crawler"
	"dotnet-bindgen/internal/extractor"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Cache stores extraction results between runs.
type Cache interface {
	GetModule(ctx context.Context, path, contentHash string) (*extractor.Module, bool, error)
	SaveModule(ctx context.Context, mod *extractor.Module) error
	DeleteModules(ctx context.Context, paths []string) error
	ListPaths(ctx context.Context) ([]string, error)
}

// Result is the outcome of indexing a crate.
type Result struct {
	Modules     []*extractor.Module
	Diagnostics extractor.Diagnostics

	Cached    int
	Extracted int
	Pruned    int
}

// Indexer orchestrates crawling, extraction and caching.
type Indexer struct {
	crawler   *crawler.Crawler
	extractor *extractor.Extractor
	cache     Cache
	workers   int
}

// NewIndexer creates a new indexer. cache may be nil.
func NewIndexer(c *crawler.Crawler, ext *extractor.Extractor, cache Cache) *Indexer {
	return &Indexer{
		crawler:   c,
		extractor: ext,
		cache:     cache,
		workers:   runtime.GOMAXPROCS(0),
	}
}

// BuildModules scans root and returns every module sorted by path. Files
// whose content is unchanged since the last run are served from the cache.
func (i *Indexer) BuildModules(ctx context.Context, root string) (*Result, error) {
	files, err := i.crawler.SourceFiles(root)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	res := &Result{Modules: make([]*extractor.Module, len(files))}
	cached := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for idx, path := range files {
		g.Go(func() error {
			mod, hit, err := i.load(gctx, path)
			if err != nil {
				return err
			}
			res.Modules[idx] = mod
			cached[idx] = hit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for idx, mod := range res.Modules {
		if cached[idx] {
			res.Cached++
		} else {
			res.Extracted++
		}
		res.Diagnostics = append(res.Diagnostics, mod.Diagnostics...)
	}

	sort.Slice(res.Modules, func(a, b int) bool { return res.Modules[a].Path < res.Modules[b].Path })
	res.Diagnostics.Sort()

	if i.cache != nil {
		pruned, err := i.prune(ctx, root, files)
		if err != nil {
			return nil, err
		}
		res.Pruned = pruned
	}

	log.Debug().
		Int("cached", res.Cached).
		Int("extracted", res.Extracted).
		Int("pruned", res.Pruned).
		Msg("index built")

	return res, nil
}

func (i *Indexer) load(ctx context.Context, path string) (*extractor.Module, bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	key := i.cacheKey(src)

	if i.cache != nil {
		mod, ok, err := i.cache.GetModule(ctx, path, key)
		if err != nil {
			return nil, false, fmt.Errorf("cache lookup for %s: %w", path, err)
		}
		if ok {
			// Stored under the cache key; callers see the source hash.
			mod.ContentHash = extractor.ContentHash(src)
			return mod, true, nil
		}
	}

	mod, err := i.extractor.ExtractSource(path, src)
	if err != nil {
		return nil, false, err
	}

	if i.cache != nil {
		// The cached hash also covers the extraction options.
		stored := *mod
		stored.ContentHash = key
		if err := i.cache.SaveModule(ctx, &stored); err != nil {
			return nil, false, fmt.Errorf("cache save for %s: %w", path, err)
		}
	}
	return mod, false, nil
}

func (i *Indexer) cacheKey(src []byte) string {
	fp := i.extractor.Fingerprint()
	buf := make([]byte, 0, len(fp)+1+len(src))
	buf = append(buf, fp...)
	buf = append(buf, 0)
	buf = append(buf, src...)
	return extractor.ContentHash(buf)
}

// prune drops cache entries under root for files that no longer exist.
func (i *Indexer) prune(ctx context.Context, root string, files []string) (int, error) {
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}

	paths, err := i.cache.ListPaths(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list cache: %w", err)
	}

	var stale []string
	for _, p := range paths {
		if present[p] || !within(root, p) {
			continue
		}
		stale = append(stale, p)
	}
	if err := i.cache.DeleteModules(ctx, stale); err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	return len(stale), nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
