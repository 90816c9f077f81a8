package crawler

import (
	"io/fs"
	"path/filepath"

	"dotnet-bindgen/internal/extractor"

	"github.com/rs/zerolog/log"
)

// Crawler lists the source files of a crate directory.
type Crawler struct {
	extractor *extractor.Extractor
	ignored   []string
}

// NewCrawler creates a new crawler instance.
func NewCrawler(ext *extractor.Extractor) *Crawler {
	return &Crawler{
		extractor: ext,
		ignored:   []string{".git", "target", "vendor", "node_modules", "tests", "benches", "examples"},
	}
}

// Ignore adds directory names to skip during the walk.
func (c *Crawler) Ignore(names ...string) {
	c.ignored = append(c.ignored, names...)
}

// SourceFiles lists the source files under root in walk (lexical) order.
func (c *Crawler) SourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && c.isIgnored(d.Name()) {
				log.Debug().Str("dir", path).Msg("skipping directory")
				return filepath.SkipDir
			}
			return nil
		}

		if c.extractor.Supports(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func (c *Crawler) isIgnored(name string) bool {
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}
