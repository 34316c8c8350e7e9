package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneEnterpriseRequiresCredentials(t *testing.T) {
	adapter := NewGitSourceAdapter()
	err := adapter.CloneEnterprise(context.Background(), t.TempDir(), "18.0", "", "token")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))

	err = adapter.CloneEnterprise(context.Background(), t.TempDir(), "18.0", "user", "  ")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestPullRecursiveToleratesMissingDir(t *testing.T) {
	adapter := NewGitSourceAdapter()
	assert.NoError(t, adapter.PullRecursive(context.Background(), filepath.Join(t.TempDir(), "absent")))
}

func TestPullRecursiveIgnoresTreesWithoutCheckouts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "oca", "server-tools-no-git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("docs"), 0o644))

	assert.NoError(t, NewGitSourceAdapter().PullRecursive(context.Background(), dir))
}
