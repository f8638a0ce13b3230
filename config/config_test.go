package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissing(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), FileName), true)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	_, err = Load(filepath.Join(t.TempDir(), FileName), false)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	err := os.WriteFile(path, []byte(`
output: build/app.nenc
color: never
vm:
  max_depth: 1000
`), 0o644)
	require.NoError(t, err)

	c, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, Config{
		Output: "build/app.nenc",
		Color:  "never",
		VM:     VM{MaxDepth: 1000},
	}, c)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	for _, text := range []string{
		"color: blue\n",
		"vm: {max_depth: -1}\n",
		"output: [\n",
	} {
		err := os.WriteFile(path, []byte(text), 0o644)
		require.NoError(t, err)

		_, err = Load(path, true)
		assert.Error(t, err, "config: %s", text)
	}
}
