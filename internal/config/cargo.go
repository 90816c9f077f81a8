package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// CargoManifest holds the parts of Cargo.toml used to name the native
// library.
type CargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Lib struct {
		Name      string   `toml:"name"`
		CrateType []string `toml:"crate-type"`
	} `toml:"lib"`
}

func LoadCargoManifest(path string) (*CargoManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m CargoManifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &m, nil
}

// CrateName is the library target name, which is also the name rustc
// gives the crate root.
func (m *CargoManifest) CrateName() string {
	if m.Lib.Name != "" {
		return m.Lib.Name
	}
	return strings.ReplaceAll(m.Package.Name, "-", "_")
}

// DefaultBinary is the DllImport library name. The runtime adds the
// platform prefix and suffix (lib*.so, *.dll).
func (m *CargoManifest) DefaultBinary() string {
	return m.CrateName()
}
