package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "bindgen.yaml"

type Config struct {
	Project struct {
		Root       string   `yaml:"root"`
		ExternC    bool     `yaml:"extern_c"`
		Attributes []string `yaml:"attributes"`
		// Ignore adds directory names the crawler skips.
		Ignore []string `yaml:"ignore"`
	} `yaml:"project"`
	Output struct {
		Dir         string   `yaml:"dir"`
		Namespace   string   `yaml:"namespace"`
		Class       string   `yaml:"class"`
		Binary      string   `yaml:"binary"`
		Indent      string   `yaml:"indent"`
		FileComment []string `yaml:"file_comment"`
		Usings      []string `yaml:"usings"`
	} `yaml:"output"`
	Cache struct {
		Path     string `yaml:"path"`
		Disabled bool   `yaml:"disabled"`
	} `yaml:"cache"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// CrateName comes from Cargo.toml, not from the YAML file.
	CrateName string `yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	var cfg Config
	cfg.Project.Root = "."
	cfg.Output.Dir = "bindings"
	cfg.Cache.Path = filepath.Join("target", "dotnet-bindgen", "cache.db")
	cfg.Log.Level = "info"
	return &cfg
}

// LoadConfig reads path on top of the defaults. A missing file is not an
// error. Relative paths in the file are resolved against its directory,
// then .env and BINDGEN_* environment variables are applied, and the
// crate's Cargo.toml fills the binary name when none is set.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	base := filepath.Dir(path)

	// .env next to the config; existing variables win.
	if err := godotenv.Load(filepath.Join(base, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	cfg.Project.Root = resolve(base, cfg.Project.Root)
	cfg.Output.Dir = resolve(cfg.Project.Root, cfg.Output.Dir)
	if cfg.Cache.Path != "" {
		cfg.Cache.Path = resolve(cfg.Project.Root, cfg.Cache.Path)
	}

	cfg.applyEnv()

	manifest, err := LoadCargoManifest(filepath.Join(cfg.Project.Root, "Cargo.toml"))
	switch {
	case err == nil:
		cfg.CrateName = manifest.CrateName()
		if cfg.Output.Binary == "" {
			cfg.Output.Binary = manifest.DefaultBinary()
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BINDGEN_BINARY"); v != "" {
		c.Output.Binary = v
	}
	if v := os.Getenv("BINDGEN_NAMESPACE"); v != "" {
		c.Output.Namespace = v
	}
	if v := os.Getenv("BINDGEN_OUTPUT"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("BINDGEN_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Output.Binary == "" {
		errs = append(errs, errors.New("output.binary is required (set it or add a Cargo.toml)"))
	}
	if c.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir is required"))
	}
	if c.Output.Namespace != "" {
		for _, part := range strings.Split(c.Output.Namespace, ".") {
			if !isIdent(part) {
				errs = append(errs, fmt.Errorf("output.namespace %q is not a valid namespace", c.Output.Namespace))
				break
			}
		}
	}
	if c.Output.Class != "" && !isIdent(c.Output.Class) {
		errs = append(errs, fmt.Errorf("output.class %q is not a valid identifier", c.Output.Class))
	}
	if strings.Trim(c.Output.Indent, " \t") != "" {
		errs = append(errs, fmt.Errorf("output.indent must contain only spaces or tabs"))
	}
	for _, a := range c.Project.Attributes {
		if strings.TrimSpace(a) == "" {
			errs = append(errs, errors.New("project.attributes contains an empty name"))
			break
		}
	}
	for _, dir := range c.Project.Ignore {
		if strings.TrimSpace(dir) == "" || strings.ContainsAny(dir, `/\`) {
			errs = append(errs, fmt.Errorf("project.ignore entry %q must be a directory name", dir))
		}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
