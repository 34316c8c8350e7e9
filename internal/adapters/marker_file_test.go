package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odoo-supervisor/internal/types"
)

func TestMarkerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "supervisor.yaml")
	adapter := NewMarkerFileAdapter()
	assert.False(t, adapter.Exists(path))

	record := types.RunRecord{
		CompletedAt:  "2026-08-29T12:00:00Z",
		ConfigFile:   "/etc/odoo/addons.conf",
		ForceUpdate:  true,
		OwnerUID:     100,
		OwnerGID:     100,
		Links:        types.ReconcileReport{Created: 3, Skipped: 1},
		Dependencies: 7,
		ConfigEcho:   []string{"branch = 18.0", "github token = ***"},
	}
	require.NoError(t, adapter.Write(path, record))
	assert.True(t, adapter.Exists(path))

	read, err := adapter.Read(path)
	require.NoError(t, err)
	assert.Equal(t, record, read)
}

func TestMarkerExistsIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, NewMarkerFileAdapter().Exists(dir))
}

func TestMarkerReadMissing(t *testing.T) {
	_, err := NewMarkerFileAdapter().Read(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestMarkerReadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supervisor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\tnot yaml"), 0o644))

	_, err := NewMarkerFileAdapter().Read(path)
	assert.Error(t, err)
}
