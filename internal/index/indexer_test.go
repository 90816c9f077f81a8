package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dotnet-bindgen/internal/crawler"
	"dotnet-bindgen/internal/extractor"
	"dotnet-bindgen/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newIndexer(t *testing.T, opts extractor.Options, cache Cache) *Indexer {
	t.Helper()
	ext, err := extractor.NewExtractor("rust", opts)
	require.NoError(t, err)
	return NewIndexer(crawler.NewCrawler(ext), ext, cache)
}

func TestIndexer_BuildModules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "lib.rs"), "#[dotnet_bindgen]\nfn version() -> u32 { 1 }\n")
	writeFile(t, filepath.Join(root, "src", "bad.rs"), "#[dotnet_bindgen]\nfn name() -> String { todo!() }\n")

	idx := newIndexer(t, extractor.Options{CrateName: "demo"}, nil)
	res, err := idx.BuildModules(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, res.Modules, 2)
	assert.Equal(t, "bad", res.Modules[0].Name)
	assert.Equal(t, "demo", res.Modules[1].Name)
	assert.Equal(t, 1, res.Modules[1].Program.Len())

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "unsupported type", res.Diagnostics[0].Message)
	assert.Equal(t, 2, res.Extracted)
	assert.Equal(t, 0, res.Cached)
}

func TestIndexer_UsesCache(t *testing.T) {
	root := t.TempDir()
	lib := filepath.Join(root, "src", "lib.rs")
	other := filepath.Join(root, "src", "other.rs")
	writeFile(t, lib, "#[dotnet_bindgen]\nfn version() -> u32 { 1 }\n")
	writeFile(t, other, "#[dotnet_bindgen]\nfn other() {}\n")

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	idx := newIndexer(t, extractor.Options{CrateName: "demo"}, store)

	first, err := idx.BuildModules(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Extracted)

	second, err := idx.BuildModules(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Cached)
	assert.Equal(t, 0, second.Extracted)
	assert.Equal(t, first.Modules[0].Program.Functions(), second.Modules[0].Program.Functions())

	writeFile(t, lib, "#[dotnet_bindgen]\nfn version() -> u64 { 1 }\n")
	require.NoError(t, os.Remove(other))

	third, err := idx.BuildModules(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Extracted)
	assert.Equal(t, 1, third.Pruned)
	require.Len(t, third.Modules, 1)
	assert.Equal(t, "u64", third.Modules[0].Program.Functions()[0].Return.String())

	paths, err := store.ListPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{lib}, paths)
}

func TestIndexer_CachedContentHash(t *testing.T) {
	root := t.TempDir()
	src := "#[dotnet_bindgen]\nfn version() -> u32 { 1 }\n"
	writeFile(t, filepath.Join(root, "src", "lib.rs"), src)

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	idx := newIndexer(t, extractor.Options{CrateName: "demo"}, store)

	first, err := idx.BuildModules(ctx, root)
	require.NoError(t, err)
	second, err := idx.BuildModules(ctx, root)
	require.NoError(t, err)
	require.Equal(t, 1, second.Cached)

	want := extractor.ContentHash([]byte(src))
	assert.Equal(t, want, first.Modules[0].ContentHash)
	assert.Equal(t, want, second.Modules[0].ContentHash)
}

func TestIndexer_IgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "lib.rs"), "#[dotnet_bindgen]\nfn version() -> u32 { 1 }\n")
	writeFile(t, filepath.Join(root, "src", "generated", "gen.rs"), "#[dotnet_bindgen]\nfn gen() {}\n")

	ext, err := extractor.NewExtractor("rust", extractor.Options{CrateName: "demo"})
	require.NoError(t, err)
	cr := crawler.NewCrawler(ext)
	cr.Ignore("generated")

	res, err := NewIndexer(cr, ext, nil).BuildModules(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, res.Modules, 1)
	assert.Equal(t, "demo", res.Modules[0].Name)
}

func TestIndexer_OptionsInvalidateCache(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "lib.rs"),
		"#[no_mangle]\npub extern \"C\" fn raw() {}\n")

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	plain, err := newIndexer(t, extractor.Options{}, store).BuildModules(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 0, plain.Modules[0].Program.Len())

	externC, err := newIndexer(t, extractor.Options{ExternC: true}, store).BuildModules(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 1, externC.Extracted)
	assert.Equal(t, 1, externC.Modules[0].Program.Len())
}

func TestIndexer_PruneKeepsOtherRoots(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	a, b := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(a, "lib.rs"), "fn a() {}\n")
	writeFile(t, filepath.Join(b, "lib.rs"), "fn b() {}\n")

	idx := newIndexer(t, extractor.Options{}, store)
	_, err = idx.BuildModules(ctx, a)
	require.NoError(t, err)
	res, err := idx.BuildModules(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Pruned)

	paths, err := store.ListPaths(ctx)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/crate", "/crate/src/lib.rs"))
	assert.False(t, within("/crate", "/other/lib.rs"))
	assert.False(t, within("/crate", "/crate-two/lib.rs"))
}
