// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Workspace tests

package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolvesAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	root, err := New(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(root.Path))
	assert.Equal(t, filepath.Join(root.Path, "alpha"), root.Dir("alpha"))
	assert.Equal(t, filepath.Join(root.Path, StagingDir, "alpha"), root.StagingPath("alpha"))
}

func TestNewDefaultsToWorkingDirectory(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	root, err := New("")
	require.NoError(t, err)
	assert.Equal(t, cwd, root.Path)
}

func TestEnsureRoot(t *testing.T) {
	root, err := New(filepath.Join(t.TempDir(), "a", "b"))
	require.NoError(t, err)

	require.NoError(t, root.EnsureRoot())
	info, err := os.Stat(root.Path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExists(t *testing.T) {
	root, err := New(t.TempDir())
	require.NoError(t, err)

	assert.False(t, root.Exists("alpha"))

	require.NoError(t, os.WriteFile(root.Dir("alpha"), []byte("not a dir"), 0o644))
	assert.False(t, root.Exists("alpha"))

	require.NoError(t, os.Mkdir(root.Dir("beta"), 0o755))
	assert.True(t, root.Exists("beta"))
}

func TestStagingLifecycle(t *testing.T) {
	root, err := New(t.TempDir())
	require.NoError(t, err)

	staging, err := root.PrepareStaging("alpha")
	require.NoError(t, err)
	_, err = os.Stat(staging)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, os.MkdirAll(filepath.Join(staging, "refs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "HEAD"), []byte("ref: refs/heads/main\n"), 0o644))

	require.NoError(t, root.Promote("alpha"))
	assert.True(t, root.Exists("alpha"))
	assert.FileExists(t, filepath.Join(root.Dir("alpha"), "HEAD"))
	assert.NoDirExists(t, filepath.Join(root.Path, StagingDir))
}

func TestPrepareStagingRemovesLeftovers(t *testing.T) {
	root, err := New(t.TempDir())
	require.NoError(t, err)

	leftover := filepath.Join(root.StagingPath("alpha"), "objects")
	require.NoError(t, os.MkdirAll(leftover, 0o755))

	staging, err := root.PrepareStaging("alpha")
	require.NoError(t, err)
	assert.NoDirExists(t, staging)
}

func TestPromoteRefusesExistingWorkspace(t *testing.T) {
	root, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(root.Dir("alpha"), 0o755))
	require.NoError(t, os.MkdirAll(root.StagingPath("alpha"), 0o755))

	assert.Error(t, root.Promote("alpha"))
}

func TestDiscardStaging(t *testing.T) {
	root, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root.StagingPath("alpha"), "objects"), 0o755))
	require.NoError(t, root.DiscardStaging("alpha"))
	assert.NoDirExists(t, root.StagingPath("alpha"))

	// Missing staging is not an error
	assert.NoError(t, root.DiscardStaging("beta"))
}
