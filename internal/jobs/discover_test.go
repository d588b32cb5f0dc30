// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Discovery tests

package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestDiscoverFiltersAndSkips(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alpha.toml", "name = \"alpha\"\nsource = \"/src/a\"\ntarget = \"/dst/a\"\n")
	writeFile(t, dir, "notes.txt", "name = \"notes\"\n")
	writeFile(t, dir, "broken.toml", "name = \"broken\"\nsource = \n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.toml"), 0o755))

	core, logs := observer.New(zapcore.DebugLevel)
	result, err := Discover(context.Background(), dir, zap.New(core))
	require.NoError(t, err)

	require.Len(t, result.Definitions, 1)
	assert.Equal(t, "alpha", result.Definitions[0].Name)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, filepath.Join(dir, "broken.toml"), result.Skipped[0].Path)

	skipped := logs.FilterMessage("skipping job definition").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, filepath.Join(dir, "broken.toml"), skipped[0].ContextMap()["file"])
}

func TestDiscoverDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.toml", "name = \"alpha\"\nsource = \"/src/a\"\ntarget = \"/dst/a\"\n")
	writeFile(t, dir, "b.yaml", "name: alpha\nsource: /src/b\ntarget: /dst/b\n")

	result, err := Discover(context.Background(), dir, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, result.Definitions, 1)
	assert.Equal(t, "/src/a", result.Definitions[0].Source)
	require.Len(t, result.Skipped, 1)
	assert.ErrorIs(t, result.Skipped[0].Err, ErrDuplicateName)
}

func TestDiscoverSortsByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1.toml", "name = \"zulu\"\nsource = \"s\"\ntarget = \"t\"\n")
	writeFile(t, dir, "2.yml", "name: alpha\nsource: s\ntarget: t\n")

	result, err := Discover(context.Background(), dir, nil)
	require.NoError(t, err)

	require.Len(t, result.Definitions, 2)
	assert.Equal(t, "alpha", result.Definitions[0].Name)
	assert.Equal(t, "zulu", result.Definitions[1].Name)
}

func TestDiscoverEmptyDirectory(t *testing.T) {
	result, err := Discover(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Definitions)
	assert.Empty(t, result.Skipped)
}

func TestDiscoverMissingDirectory(t *testing.T) {
	_, err := Discover(context.Background(), filepath.Join(t.TempDir(), "absent"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
