package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, FindConfigFile(dir))

	alt := filepath.Join(dir, ConfigFileNameAlt)
	require.NoError(t, os.WriteFile(alt, []byte("verbose: true\n"), 0600))
	assert.Equal(t, alt, FindConfigFile(dir))

	primary := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(primary, []byte("verbose: true\n"), 0600))
	assert.Equal(t, primary, FindConfigFile(dir), "simtrace.yaml wins over simtrace.yml")
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("{}\n"), 0600))

	assert.Equal(t, root, FindProjectRoot(nested, 10))
	assert.Empty(t, FindProjectRoot(nested, 2), "search depth is bounded")
}
