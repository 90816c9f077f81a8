package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Project.Root)
	assert.Equal(t, filepath.Join(dir, "bindings"), cfg.Output.Dir)
	assert.Equal(t, filepath.Join(dir, "target", "dotnet-bindgen", "cache.db"), cfg.Cache.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Output.Binary)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.binary is required")
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, DefaultFile), `
project:
  root: crate
  extern_c: true
  attributes: [export_to_dotnet]
  ignore: [generated, fixtures]
output:
  dir: out
  namespace: Native.Math
  class: MathLib
  binary: mathlib
  indent: "\t"
  usings: [System]
log:
  level: debug
`)

	cfg, err := LoadConfig(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join(dir, "crate"), cfg.Project.Root)
	assert.True(t, cfg.Project.ExternC)
	assert.Equal(t, []string{"export_to_dotnet"}, cfg.Project.Attributes)
	assert.Equal(t, []string{"generated", "fixtures"}, cfg.Project.Ignore)
	assert.Equal(t, filepath.Join(dir, "crate", "out"), cfg.Output.Dir)
	assert.Equal(t, "Native.Math", cfg.Output.Namespace)
	assert.Equal(t, "MathLib", cfg.Output.Class)
	assert.Equal(t, "mathlib", cfg.Output.Binary)
	assert.Equal(t, "\t", cfg.Output.Indent)
	assert.Equal(t, []string{"System"}, cfg.Output.Usings)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, DefaultFile), "output:\n  binary: from_yaml\n  namespace: Yaml\n")

	t.Setenv("BINDGEN_BINARY", "from_env")
	t.Setenv("BINDGEN_NAMESPACE", "Env.Space")
	t.Setenv("BINDGEN_OUTPUT", "/tmp/generated")

	cfg, err := LoadConfig(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Output.Binary)
	assert.Equal(t, "Env.Space", cfg.Output.Namespace)
	assert.Equal(t, "/tmp/generated", cfg.Output.Dir)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ".env"), "BINDGEN_LOG_LEVEL=warn\n")
	t.Setenv("BINDGEN_LOG_LEVEL", "")
	os.Unsetenv("BINDGEN_LOG_LEVEL")

	cfg, err := LoadConfig(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_CargoManifest(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "Cargo.toml"), `
[package]
name = "math-lib"
version = "0.1.0"
`)

	cfg, err := LoadConfig(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, "math_lib", cfg.CrateName)
	assert.Equal(t, "math_lib", cfg.Output.Binary)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, DefaultFile), "output: [unclosed\n")

	_, err := LoadConfig(filepath.Join(dir, DefaultFile))
	assert.Error(t, err)
}

func TestCargoManifest_LibNameWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.toml")
	write(t, path, `
[package]
name = "math-lib"

[lib]
name = "native_math"
crate-type = ["cdylib"]
`)

	m, err := LoadCargoManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "native_math", m.DefaultBinary())
	assert.Equal(t, []string{"cdylib"}, m.Lib.CrateType)
}

func TestValidate_JoinsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Output.Namespace = "Bad..Name"
	cfg.Output.Class = "9Lives"
	cfg.Output.Indent = "--"
	cfg.Project.Attributes = []string{" "}
	cfg.Project.Ignore = []string{"src/gen"}
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"output.binary is required",
		"output.namespace",
		"output.class",
		"output.indent",
		"project.attributes",
		"project.ignore",
		"log.level",
	} {
		assert.Contains(t, err.Error(), want)
	}
}
