package trimesh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trimesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
mode: decimated
gamma: 0.5
shrink_factor: 12
traced_files:
  - a.svg
  - b.svg
`)
	p, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, Decimated, p.Mode)
	assert.Equal(t, 0.5, p.Gamma)
	assert.Equal(t, 12, p.ShrinkFactor)
	assert.Equal(t, []string{"a.svg", "b.svg"}, p.TracedFiles)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultProcessor().Eps, p.Eps)
	assert.Equal(t, DefaultProcessor().BorderPoints, p.BorderPoints)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "gama: 2\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "mode: fancy\n"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMode_YAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		Mode Mode `yaml:"mode"`
	}{CurveUnified})
	require.NoError(t, err)
	assert.Equal(t, "mode: unified\n", string(out))
}

func TestDefaultProcessor_Valid(t *testing.T) {
	assert.NoError(t, DefaultProcessor().Validate())
}
