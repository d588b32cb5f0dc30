// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Behaviour every git.Backend must share

package gittest

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mirrorgit "github.com/kareigu/sceawian/internal/git"
)

// RunBackendSuite exercises backend against local repositories
func RunBackendSuite(t *testing.T, backend mirrorgit.Backend) {
	RequireGit(t)

	clone := func(t *testing.T, up *Upstream) (mirrorgit.Repository, string) {
		t.Helper()
		dir := filepath.Join(t.TempDir(), "mirror")
		require.NoError(t, backend.CloneMirror(context.Background(), up.URL(), dir))
		repo, err := backend.Open(dir)
		require.NoError(t, err)
		return repo, dir
	}

	t.Run("clone mirrors all refs", func(t *testing.T) {
		up := NewUpstream(t)
		up.Commit(t, "feature/x", "feature work")
		up.Tag(t, "v1.0.0", DefaultBranch)

		repo, dir := clone(t, up)

		assert.Equal(t, up.Heads(t), Heads(t, dir))
		assert.Equal(t, Tags(t, up.Dir), Tags(t, dir))

		branches, err := repo.Branches(context.Background())
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{DefaultBranch, "feature/x"}, branches)
	})

	t.Run("clone failure leaves nothing behind", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "mirror")
		err := backend.CloneMirror(context.Background(), filepath.Join(t.TempDir(), "absent"), dir)
		require.Error(t, err)
		assert.NoDirExists(t, dir)
	})

	t.Run("open rejects non repositories", func(t *testing.T) {
		_, err := backend.Open(t.TempDir())
		assert.ErrorIs(t, err, mirrorgit.ErrNotRepository)
	})

	t.Run("remote heads", func(t *testing.T) {
		up := NewUpstream(t)
		repo, _ := clone(t, up)
		up.Commit(t, "later", "after clone")

		heads, err := repo.RemoteHeads(context.Background())
		require.NoError(t, err)
		assert.Equal(t, up.Heads(t), heads)
	})

	t.Run("fetch then reset", func(t *testing.T) {
		up := NewUpstream(t)
		up.Commit(t, DefaultBranch, "second")
		repo, dir := clone(t, up)
		before := Heads(t, dir)[DefaultBranch]

		tip := up.Rewrite(t, DefaultBranch, "rewritten")

		fetched, err := repo.FetchBranch(context.Background(), DefaultBranch)
		require.NoError(t, err)
		assert.Equal(t, tip, fetched)
		assert.Equal(t, before, Heads(t, dir)[DefaultBranch], "fetch must not move the local branch")

		require.NoError(t, repo.ResetBranch(context.Background(), DefaultBranch, fetched))
		assert.Equal(t, tip, Heads(t, dir)[DefaultBranch])

		for ref := range Refs(t, dir) {
			assert.NotContains(t, ref, mirrorgit.ScratchPrefix)
		}
	})

	t.Run("reset creates missing branch", func(t *testing.T) {
		up := NewUpstream(t)
		repo, dir := clone(t, up)
		tip := up.Commit(t, "new", "new branch")

		fetched, err := repo.FetchBranch(context.Background(), "new")
		require.NoError(t, err)
		require.NoError(t, repo.ResetBranch(context.Background(), "new", fetched))
		assert.Equal(t, tip, Heads(t, dir)["new"])
	})

	t.Run("delete branch", func(t *testing.T) {
		up := NewUpstream(t)
		up.Commit(t, "stale", "stale work")
		repo, dir := clone(t, up)

		require.NoError(t, repo.DeleteBranch(context.Background(), "stale"))
		assert.NotContains(t, Heads(t, dir), "stale")
	})

	t.Run("fetch tags prunes", func(t *testing.T) {
		up := NewUpstream(t)
		up.Tag(t, "old", DefaultBranch)
		repo, dir := clone(t, up)

		up.DeleteTag(t, "old")
		up.Commit(t, DefaultBranch, "release")
		up.Tag(t, "v2", DefaultBranch)

		require.NoError(t, repo.FetchTags(context.Background()))
		assert.Equal(t, Tags(t, up.Dir), Tags(t, dir))
	})

	t.Run("set remote url", func(t *testing.T) {
		up := NewUpstream(t)
		repo, _ := clone(t, up)

		changed, err := repo.SetRemoteURL(context.Background(), mirrorgit.OriginRemote, up.URL())
		require.NoError(t, err)
		assert.False(t, changed)

		other := NewUpstream(t)
		changed, err = repo.SetRemoteURL(context.Background(), mirrorgit.OriginRemote, other.URL())
		require.NoError(t, err)
		assert.True(t, changed)

		heads, err := repo.RemoteHeads(context.Background())
		require.NoError(t, err)
		assert.Equal(t, other.Heads(t), heads)
	})

	t.Run("push mirror", func(t *testing.T) {
		up := NewUpstream(t)
		up.Commit(t, "feature/x", "feature work")
		up.Tag(t, "v1", DefaultBranch)
		repo, dir := clone(t, up)
		target := NewBareTarget(t)

		require.NoError(t, repo.RebuildMirrorRemote(context.Background(), mirrorgit.TargetRemote, target))
		require.NoError(t, repo.PushMirror(context.Background(), mirrorgit.TargetRemote))
		assert.Equal(t, Heads(t, dir), Heads(t, target))
		assert.Equal(t, Tags(t, dir), Tags(t, target))

		// Repeated runs are up to date and leave both sides unchanged
		for run := 0; run < 3; run++ {
			require.NoError(t, repo.RebuildMirrorRemote(context.Background(), mirrorgit.TargetRemote, target))
			require.NoError(t, repo.PushMirror(context.Background(), mirrorgit.TargetRemote))
			assert.Equal(t, Refs(t, dir), Refs(t, target), "run %d", run)
			assertNoTrackingRefs(t, dir)
		}

		// Pruned locally, pruned on the target
		require.NoError(t, repo.DeleteBranch(context.Background(), "feature/x"))
		require.NoError(t, repo.PushMirror(context.Background(), mirrorgit.TargetRemote))
		assert.Equal(t, map[string]string{DefaultBranch: up.Heads(t)[DefaultBranch]}, Heads(t, target))
		assert.Equal(t, Refs(t, dir), Refs(t, target))
		assertNoTrackingRefs(t, dir)
	})

	t.Run("rebuild remote rebinds target", func(t *testing.T) {
		up := NewUpstream(t)
		repo, dir := clone(t, up)
		first := NewBareTarget(t)
		second := NewBareTarget(t)

		require.NoError(t, repo.RebuildMirrorRemote(context.Background(), mirrorgit.TargetRemote, first))
		require.NoError(t, repo.RebuildMirrorRemote(context.Background(), mirrorgit.TargetRemote, second))
		require.NoError(t, repo.PushMirror(context.Background(), mirrorgit.TargetRemote))

		assert.Empty(t, Heads(t, first))
		assert.Equal(t, Heads(t, dir), Heads(t, second))
	})
}

// assertNoTrackingRefs fails if a push left refs/remotes/ entries behind
func assertNoTrackingRefs(t *testing.T, dir string) {
	t.Helper()
	for name := range Refs(t, dir) {
		assert.False(t, strings.HasPrefix(name, "refs/remotes/"), "unexpected tracking ref %s", name)
	}
}
