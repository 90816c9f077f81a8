package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// ContentHash returns a stable fingerprint of a source file, used to decide
// whether cached descriptors are still valid.
func ContentHash(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// ModuleName derives the binding module name for a source path. Crate roots
// (lib.rs, main.rs) use crateName when it is set; mod.rs and crate roots
// otherwise take the name of their directory.
func ModuleName(path, crateName string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	switch stem {
	case "lib", "main":
		if crateName != "" {
			return crateName
		}
		return dirName(path)
	case "mod":
		return dirName(path)
	default:
		return stem
	}
}

func dirName(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if dir == "." || dir == string(filepath.Separator) || dir == "" {
		return "bindings"
	}
	if dir == "src" {
		// src/lib.rs without a crate name: fall back to the crate directory.
		parent := filepath.Base(filepath.Dir(filepath.Dir(path)))
		if parent != "." && parent != string(filepath.Separator) && parent != "" {
			return parent
		}
	}
	return dir
}

// canonicalize strips whitespace from a type spelling so `( )` and `()`
// compare equal.
func canonicalize(s string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(s), "")
}
