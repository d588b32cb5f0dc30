// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Mirror synchronizer: converge a workspace on its source, then push it

package mirror

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kareigu/sceawian/internal/git"
	"github.com/kareigu/sceawian/internal/jobs"
	"github.com/kareigu/sceawian/internal/workspace"
)

// Options tunes synchronization
type Options struct {
	// Prune deletes local branches that no longer exist upstream
	Prune bool
}

// Synchronizer brings one job's workspace up to date with its source and
// propagates it to its target. It holds no per-job state.
type Synchronizer struct {
	backend git.Backend
	root    *workspace.Root
	opts    Options
	logger  *zap.Logger
}

// New creates a synchronizer storing mirrors under root
func New(backend git.Backend, root *workspace.Root, opts Options, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		backend: backend,
		root:    root,
		opts:    opts,
		logger:  logger,
	}
}

// Synchronize runs one job. Any failure aborts the job and is returned as
// *SyncError; there are no retries.
func (s *Synchronizer) Synchronize(ctx context.Context, job jobs.Definition) error {
	logger := s.logger.With(zap.String("job", job.Name))
	start := time.Now()

	var (
		repo git.Repository
		err  error
	)
	if !s.root.Exists(job.Name) {
		repo, err = s.clone(ctx, job, logger)
	} else {
		repo, err = s.update(ctx, job, logger)
	}
	if err != nil {
		return err
	}

	if err := s.propagate(ctx, job, repo, logger); err != nil {
		return err
	}

	logger.Info("job synchronized", zap.Duration("duration", time.Since(start)))
	return nil
}

// clone builds the workspace in staging and promotes it once complete
func (s *Synchronizer) clone(ctx context.Context, job jobs.Definition, logger *zap.Logger) (git.Repository, error) {
	staging, err := s.root.PrepareStaging(job.Name)
	if err != nil {
		return nil, &SyncError{Job: job.Name, Op: OpClone, Err: err}
	}

	logger.Info("cloning mirror", zap.String("source", job.Source), zap.String("backend", s.backend.Name()))

	if err := s.backend.CloneMirror(ctx, job.Source, staging); err != nil {
		_ = s.root.DiscardStaging(job.Name)
		return nil, &SyncError{Job: job.Name, Op: OpClone, Err: err}
	}
	if err := s.root.Promote(job.Name); err != nil {
		_ = s.root.DiscardStaging(job.Name)
		return nil, &SyncError{Job: job.Name, Op: OpClone, Err: err}
	}

	repo, err := s.backend.Open(s.root.Dir(job.Name))
	if err != nil {
		return nil, &SyncError{Job: job.Name, Op: OpOpen, Err: err}
	}

	logger.Info("mirror cloned", zap.String("dir", s.root.Dir(job.Name)))
	return repo, nil
}

// update converges an existing workspace on the upstream branches and tags
func (s *Synchronizer) update(ctx context.Context, job jobs.Definition, logger *zap.Logger) (git.Repository, error) {
	fail := func(op Op, err error) (git.Repository, error) {
		return nil, &SyncError{Job: job.Name, Op: op, Err: err}
	}

	repo, err := s.backend.Open(s.root.Dir(job.Name))
	if err != nil {
		return fail(OpOpen, err)
	}

	changed, err := repo.SetRemoteURL(ctx, git.OriginRemote, job.Source)
	if err != nil {
		return fail(OpRemote, err)
	}
	if changed {
		logger.Info("source remote re-pointed", zap.String("source", job.Source))
	}

	upstream, err := repo.RemoteHeads(ctx)
	if err != nil {
		return fail(OpList, err)
	}
	local, err := repo.Branches(ctx)
	if err != nil {
		return fail(OpList, err)
	}
	sort.Strings(local)

	var updated, pruned, kept int
	seen := make(map[string]bool, len(local))

	for _, branch := range local {
		seen[branch] = true
		blog := logger.With(zap.String("branch", branch))

		if _, ok := upstream[branch]; !ok {
			if !s.opts.Prune {
				blog.Debug("branch gone upstream, keeping")
				kept++
				continue
			}
			if err := repo.DeleteBranch(ctx, branch); err != nil {
				return fail(OpPrune, err)
			}
			blog.Debug("pruned stale branch")
			pruned++
			continue
		}

		if err := s.syncBranch(ctx, job, repo, branch, blog); err != nil {
			return nil, err
		}
		updated++
	}

	// Adopt branches created upstream since the last run
	var adopted int
	for _, branch := range sortedKeys(upstream) {
		if seen[branch] {
			continue
		}
		if err := s.syncBranch(ctx, job, repo, branch, logger.With(zap.String("branch", branch))); err != nil {
			return nil, err
		}
		adopted++
	}

	// Only branches and tags are refreshed; other namespaces copied by the
	// initial clone (refs/notes, refs/pull, ...) keep their cloned values.
	if err := repo.FetchTags(ctx); err != nil {
		return fail(OpFetch, err)
	}

	logger.Info("mirror updated",
		zap.Int("updated", updated),
		zap.Int("adopted", adopted),
		zap.Int("pruned", pruned),
		zap.Int("kept", kept),
	)
	return repo, nil
}

// syncBranch fetches branch and hard-resets the local ref to the fetched tip
func (s *Synchronizer) syncBranch(ctx context.Context, job jobs.Definition, repo git.Repository, branch string, logger *zap.Logger) error {
	hash, err := repo.FetchBranch(ctx, branch)
	if err != nil {
		return &SyncError{Job: job.Name, Op: OpFetch, Err: err}
	}
	if err := repo.ResetBranch(ctx, branch, hash); err != nil {
		return &SyncError{Job: job.Name, Op: OpReset, Err: err}
	}
	logger.Debug("branch reset", zap.String("commit", hash))
	return nil
}

// propagate rebinds the target remote and mirror-pushes every ref to it
func (s *Synchronizer) propagate(ctx context.Context, job jobs.Definition, repo git.Repository, logger *zap.Logger) error {
	if err := repo.RebuildMirrorRemote(ctx, git.TargetRemote, job.Target); err != nil {
		return &SyncError{Job: job.Name, Op: OpRemote, Err: err}
	}
	if err := repo.PushMirror(ctx, git.TargetRemote); err != nil {
		return &SyncError{Job: job.Name, Op: OpPush, Err: err}
	}
	logger.Info("mirror pushed", zap.String("target", job.Target))
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
