// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// End-to-end cycle over real repositories

package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kareigu/sceawian/internal/auth"
	"github.com/kareigu/sceawian/internal/exec"
	"github.com/kareigu/sceawian/internal/git/gitexec"
	"github.com/kareigu/sceawian/internal/git/gittest"
	"github.com/kareigu/sceawian/internal/jobs"
	"github.com/kareigu/sceawian/internal/mirror"
	"github.com/kareigu/sceawian/internal/workspace"
)

func TestSingleCycleMirrorsAlpha(t *testing.T) {
	gittest.RequireGit(t)

	repoA := gittest.NewUpstream(t)
	repoA.Commit(t, "develop", "develop work")
	repoA.Tag(t, "v0.1.0", gittest.DefaultBranch)
	repoB := gittest.NewBareTarget(t)

	base := t.TempDir()
	reposDir := filepath.Join(base, "repos")
	require.NoError(t, os.MkdirAll(reposDir, 0o755))
	definition := fmt.Sprintf("name = %q\nsource = %q\ntarget = %q\n", "alpha", repoA.URL(), repoB)
	require.NoError(t, os.WriteFile(filepath.Join(reposDir, "alpha.toml"), []byte(definition), 0o644))

	root, err := workspace.New(filepath.Join(base, "workspace"))
	require.NoError(t, err)
	require.NoError(t, root.EnsureRoot())

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	backend := gitexec.New(exec.NewRunner(logger), auth.None{}, logger)
	syncer := mirror.New(backend, root, mirror.Options{Prune: true}, logger)
	discover := func(ctx context.Context) (*jobs.Result, error) {
		return jobs.Discover(ctx, reposDir, logger)
	}

	s, err := New(Config{Interval: time.Minute, TaskCount: 1}, discover, syncer, logger)
	require.NoError(t, err)

	report := s.RunCycle(context.Background())

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, Outcome{Name: "alpha", Status: StatusSynced}, Outcome{Name: report.Outcomes[0].Name, Status: report.Outcomes[0].Status})
	assert.NoError(t, report.Outcomes[0].Err)

	workspaceDir := filepath.Join(base, "workspace", "alpha")
	assert.DirExists(t, workspaceDir)
	assert.Equal(t, repoA.Heads(t), gittest.Heads(t, workspaceDir))
	assert.Equal(t, gittest.Tags(t, repoA.Dir), gittest.Tags(t, workspaceDir))
	assert.Equal(t, repoA.Heads(t), gittest.Heads(t, repoB))
	assert.Equal(t, gittest.Tags(t, repoA.Dir), gittest.Tags(t, repoB))

	synced := logs.FilterMessage("job synced").All()
	require.Len(t, synced, 1)
	assert.Equal(t, "alpha", synced[0].ContextMap()["job"])
	assert.Equal(t, "synced", synced[0].ContextMap()["status"])
}
