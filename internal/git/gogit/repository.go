// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// go-git operations on an opened mirror

package gogit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"

	"github.com/kareigu/sceawian/internal/auth"
	mirrorgit "github.com/kareigu/sceawian/internal/git"
)

// Repository implements git.Repository over a go-git repository
type Repository struct {
	repo   *git.Repository
	auth   auth.Provider
	logger *zap.Logger
}

// Branches implements git.Repository
func (r *Repository) Branches(ctx context.Context) ([]string, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer iter.Close()

	var branches []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		branches = append(branches, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	return branches, nil
}

// RemoteHeads implements git.Repository
func (r *Repository) RemoteHeads(ctx context.Context) (map[string]string, error) {
	remote, err := r.repo.Remote(mirrorgit.OriginRemote)
	if err != nil {
		return nil, fmt.Errorf("failed to get remote %s: %w", mirrorgit.OriginRemote, err)
	}

	cred, err := r.resolve(ctx, remote)
	if err != nil {
		return nil, err
	}
	defer cred.Close()

	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: cred.Method})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", mirrorgit.OriginRemote, err)
	}

	heads := make(map[string]string)
	for _, ref := range refs {
		if ref.Type() != plumbing.HashReference || !ref.Name().IsBranch() {
			continue
		}
		heads[ref.Name().Short()] = ref.Hash().String()
	}

	return heads, nil
}

// SetRemoteURL implements git.Repository
func (r *Repository) SetRemoteURL(ctx context.Context, name, url string) (bool, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return false, fmt.Errorf("failed to read config: %w", err)
	}

	remote, ok := cfg.Remotes[name]
	if !ok {
		_, err := r.repo.CreateRemote(&config.RemoteConfig{
			Name:   name,
			URLs:   []string{url},
			Mirror: true,
			Fetch:  []config.RefSpec{mirrorgit.MirrorRefSpec},
		})
		if err != nil {
			return false, fmt.Errorf("failed to create remote %s: %w", name, err)
		}
		return true, nil
	}

	if len(remote.URLs) == 1 && remote.URLs[0] == url {
		return false, nil
	}

	remote.URLs = []string{url}
	if err := r.repo.SetConfig(cfg); err != nil {
		return false, fmt.Errorf("failed to update remote %s: %w", name, err)
	}
	return true, nil
}

// FetchBranch implements git.Repository
func (r *Repository) FetchBranch(ctx context.Context, branch string) (string, error) {
	scratch := plumbing.ReferenceName(mirrorgit.ScratchRef(branch))
	spec := config.RefSpec(fmt.Sprintf("+%s%s:%s", mirrorgit.BranchPrefix, branch, scratch))

	if err := r.fetch(ctx, spec, false); err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", branch, err)
	}

	ref, err := r.repo.Reference(scratch, false)
	if err != nil {
		return "", fmt.Errorf("failed to read fetched tip of %s: %w", branch, err)
	}

	if err := r.repo.Storer.RemoveReference(scratch); err != nil {
		r.logger.Warn("failed to remove scratch ref", zap.String("ref", scratch.String()), zap.Error(err))
	}

	return ref.Hash().String(), nil
}

// ResetBranch implements git.Repository
func (r *Repository) ResetBranch(ctx context.Context, branch, hash string) error {
	if !plumbing.IsHash(hash) {
		return fmt.Errorf("invalid object name %q", hash)
	}

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), plumbing.NewHash(hash))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("failed to reset %s: %w", branch, err)
	}
	return nil
}

// DeleteBranch implements git.Repository
func (r *Repository) DeleteBranch(ctx context.Context, branch string) error {
	if err := r.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(branch)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", branch, err)
	}
	return nil
}

// FetchTags implements git.Repository
func (r *Repository) FetchTags(ctx context.Context) error {
	if err := r.fetch(ctx, mirrorgit.TagsRefSpec, true); err != nil {
		return fmt.Errorf("failed to fetch tags: %w", err)
	}
	return nil
}

// RebuildMirrorRemote implements git.Repository
func (r *Repository) RebuildMirrorRemote(ctx context.Context, name, url string) error {
	if err := r.repo.DeleteRemote(name); err != nil && !errors.Is(err, git.ErrRemoteNotFound) {
		return fmt.Errorf("failed to delete remote %s: %w", name, err)
	}

	_, err := r.repo.CreateRemote(&config.RemoteConfig{
		Name:   name,
		URLs:   []string{url},
		Mirror: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create remote %s: %w", name, err)
	}
	return nil
}

// PushMirror implements git.Repository
func (r *Repository) PushMirror(ctx context.Context, name string) error {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return fmt.Errorf("failed to get remote %s: %w", name, err)
	}

	cred, err := r.resolve(ctx, remote)
	if err != nil {
		return err
	}
	defer cred.Close()

	// go-git gives every remote a fetch refspec and records pushed refs
	// under refs/remotes/<name>/; a later +refs/*:refs/* push would send
	// those to the target, so they never survive a push.
	if err := r.removeTrackingRefs(name); err != nil {
		return err
	}
	defer func() {
		if err := r.removeTrackingRefs(name); err != nil {
			r.logger.Warn("failed to remove tracking refs", zap.String("remote", name), zap.Error(err))
		}
	}()

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: name,
		RefSpecs:   []config.RefSpec{mirrorgit.MirrorRefSpec},
		Auth:       cred.Method,
		Force:      true,
		Prune:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push to %s: %w", name, err)
	}
	return nil
}

// removeTrackingRefs deletes refs/remotes/<remote>/*
func (r *Repository) removeTrackingRefs(remote string) error {
	prefix := fmt.Sprintf("refs/remotes/%s/", remote)

	iter, err := r.repo.Storer.IterReferences()
	if err != nil {
		return fmt.Errorf("failed to list references: %w", err)
	}
	var stale []plumbing.ReferenceName
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if strings.HasPrefix(ref.Name().String(), prefix) {
			stale = append(stale, ref.Name())
		}
		return nil
	})
	iter.Close()
	if err != nil {
		return fmt.Errorf("failed to list references: %w", err)
	}

	for _, name := range stale {
		if err := r.repo.Storer.RemoveReference(name); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

// fetch runs a single-refspec fetch from origin. Already up to date is success.
func (r *Repository) fetch(ctx context.Context, spec config.RefSpec, prune bool) error {
	remote, err := r.repo.Remote(mirrorgit.OriginRemote)
	if err != nil {
		return fmt.Errorf("failed to get remote %s: %w", mirrorgit.OriginRemote, err)
	}

	cred, err := r.resolve(ctx, remote)
	if err != nil {
		return err
	}
	defer cred.Close()

	err = r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: mirrorgit.OriginRemote,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       cred.Method,
		Tags:       git.NoTags,
		Force:      true,
		Prune:      prune,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

func (r *Repository) resolve(ctx context.Context, remote *git.Remote) (*auth.Credential, error) {
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, fmt.Errorf("remote %s has no URL", remote.Config().Name)
	}

	cred, err := r.auth.Resolve(ctx, urls[0])
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials for %s: %w", urls[0], err)
	}
	return cred, nil
}

var _ mirrorgit.Repository = (*Repository)(nil)
