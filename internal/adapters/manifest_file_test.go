package adapters

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "__manifest__.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestManifestFileAdapterLoad(t *testing.T) {
	path := writeManifest(t, `{
    'name': 'Test Addon',
    'depends': ['base', 'sale'],
    'external_dependencies': {'python': ['requests>=2.25', 'lxml']},
}`)

	manifest, err := NewManifestFileAdapter().Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "sale"}, manifest.Depends)
	assert.Equal(t, []string{"requests>=2.25", "lxml"}, manifest.ExternalPython)
	assert.True(t, manifest.Installable)
}

func TestManifestFileAdapterInstallableFlag(t *testing.T) {
	path := writeManifest(t, `{'installable': False}`)

	manifest, err := NewManifestFileAdapter().Load(path)
	require.NoError(t, err)
	assert.False(t, manifest.Installable)
}

func TestManifestFileAdapterMissingKeysTolerated(t *testing.T) {
	path := writeManifest(t, `{'name': 'Bare'}`)

	manifest, err := NewManifestFileAdapter().Load(path)
	require.NoError(t, err)
	assert.Empty(t, manifest.Depends)
	assert.Empty(t, manifest.ExternalPython)
	assert.True(t, manifest.Installable)
}

func TestManifestFileAdapterIgnoresNonStringListEntries(t *testing.T) {
	path := writeManifest(t, `{'depends': ['base', 42, '', 'web']}`)

	manifest, err := NewManifestFileAdapter().Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "web"}, manifest.Depends)
}

func TestManifestFileAdapterMalformedManifest(t *testing.T) {
	path := writeManifest(t, `{'depends': [import os]}`)

	_, err := NewManifestFileAdapter().Load(path)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestManifestFileAdapterNonMapping(t *testing.T) {
	path := writeManifest(t, `['not', 'a', 'dict']`)

	_, err := NewManifestFileAdapter().Load(path)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestManifestFileAdapterMissingFile(t *testing.T) {
	_, err := NewManifestFileAdapter().Load(filepath.Join(t.TempDir(), "__manifest__.py"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestManifestFileAdapterCacheInvalidatesOnModTime(t *testing.T) {
	path := writeManifest(t, `{'depends': ['base']}`)
	adapter := NewManifestFileAdapter()

	first, err := adapter.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"base"}, first.Depends)

	require.NoError(t, os.WriteFile(path, []byte(`{'depends': ['web']}`), 0o644))
	// ReadDir mtime granularity can be coarse on some filesystems.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	second, err := adapter.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, second.Depends)
}
