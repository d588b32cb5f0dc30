// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Native backend tests

package gogit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kareigu/sceawian/internal/auth"
	mirrorgit "github.com/kareigu/sceawian/internal/git"
	"github.com/kareigu/sceawian/internal/git/gittest"
)

func TestBackend(t *testing.T) {
	gittest.RunBackendSuite(t, New(auth.None{}, zaptest.NewLogger(t)))
}

func TestName(t *testing.T) {
	assert.Equal(t, "native", New(nil, nil).Name())
}

func TestResetBranchRejectsInvalidHash(t *testing.T) {
	gittest.RequireGit(t)
	up := gittest.NewUpstream(t)

	backend := New(nil, nil)
	dir := filepath.Join(t.TempDir(), "mirror")
	require.NoError(t, backend.CloneMirror(context.Background(), up.URL(), dir))
	repo, err := backend.Open(dir)
	require.NoError(t, err)

	assert.Error(t, repo.ResetBranch(context.Background(), gittest.DefaultBranch, "not-a-hash"))
}

func TestOpenMissingDirectory(t *testing.T) {
	_, err := New(nil, nil).Open(filepath.Join(t.TempDir(), "absent"))
	assert.ErrorIs(t, err, mirrorgit.ErrNotRepository)
}

func TestPushMirrorDropsTrackingRefs(t *testing.T) {
	gittest.RequireGit(t)
	up := gittest.NewUpstream(t)
	target := gittest.NewBareTarget(t)

	backend := New(auth.None{}, zaptest.NewLogger(t))
	dir := filepath.Join(t.TempDir(), "mirror")
	require.NoError(t, backend.CloneMirror(context.Background(), up.URL(), dir))
	repo, err := backend.Open(dir)
	require.NoError(t, err)

	// Left behind by an earlier push
	raw, err := git.PlainOpen(dir)
	require.NoError(t, err)
	stale := plumbing.NewHashReference("refs/remotes/target/main", plumbing.NewHash(up.Heads(t)[gittest.DefaultBranch]))
	require.NoError(t, raw.Storer.SetReference(stale))

	for run := 0; run < 3; run++ {
		require.NoError(t, repo.RebuildMirrorRemote(context.Background(), mirrorgit.TargetRemote, target))
		require.NoError(t, repo.PushMirror(context.Background(), mirrorgit.TargetRemote))

		assert.Equal(t, up.Heads(t), gittest.Heads(t, target), "run %d", run)
		assert.NotContains(t, gittest.Refs(t, target), "refs/remotes/target/main", "run %d", run)
		assert.NotContains(t, gittest.Refs(t, dir), "refs/remotes/target/main", "run %d", run)
	}
}
