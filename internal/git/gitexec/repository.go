// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// git command implementations on an opened mirror

package gitexec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kareigu/sceawian/internal/auth"
	"github.com/kareigu/sceawian/internal/exec"
	mirrorgit "github.com/kareigu/sceawian/internal/git"
)

// Repository implements git.Repository with git commands run against dir
type Repository struct {
	backend *Backend
	dir     string
	logger  *zap.Logger
}

// Branches implements git.Repository
func (r *Repository) Branches(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, nil, "for-each-ref", "--format=%(refname)", mirrorgit.BranchPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	var branches []string
	for _, line := range lines(out) {
		if name, ok := mirrorgit.ShortBranch(line); ok {
			branches = append(branches, name)
		}
	}
	return branches, nil
}

// RemoteHeads implements git.Repository
func (r *Repository) RemoteHeads(ctx context.Context) (map[string]string, error) {
	cred, err := r.resolve(ctx, mirrorgit.OriginRemote)
	if err != nil {
		return nil, err
	}
	defer cred.Close()

	out, err := r.git(ctx, cred.Env, "ls-remote", "--heads", mirrorgit.OriginRemote)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", mirrorgit.OriginRemote, err)
	}

	heads := make(map[string]string)
	for _, line := range lines(out) {
		hash, ref, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		if name, ok := mirrorgit.ShortBranch(ref); ok {
			heads[name] = hash
		}
	}
	return heads, nil
}

// SetRemoteURL implements git.Repository
func (r *Repository) SetRemoteURL(ctx context.Context, remote, url string) (bool, error) {
	current, err := r.remoteURL(ctx, remote)
	if err != nil {
		return false, err
	}

	switch {
	case current == url:
		return false, nil
	case current == "":
		_, err = r.git(ctx, nil, "remote", "add", "--mirror=fetch", remote, url)
	default:
		_, err = r.git(ctx, nil, "remote", "set-url", remote, url)
	}
	if err != nil {
		return false, fmt.Errorf("failed to set remote %s: %w", remote, err)
	}
	return true, nil
}

// FetchBranch implements git.Repository. An empty --refmap keeps the
// configured mirror refspec from updating local branches, so only
// FETCH_HEAD records the tip.
func (r *Repository) FetchBranch(ctx context.Context, branch string) (string, error) {
	cred, err := r.resolve(ctx, mirrorgit.OriginRemote)
	if err != nil {
		return "", err
	}
	defer cred.Close()

	_, err = r.git(ctx, cred.Env, "fetch", "--quiet", "--no-tags", "--refmap=",
		mirrorgit.OriginRemote, mirrorgit.BranchPrefix+branch)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", branch, err)
	}

	out, err := r.git(ctx, nil, "rev-parse", "--verify", "FETCH_HEAD^{commit}")
	if err != nil {
		return "", fmt.Errorf("failed to read fetched tip of %s: %w", branch, err)
	}
	return strings.TrimSpace(out), nil
}

// ResetBranch implements git.Repository
func (r *Repository) ResetBranch(ctx context.Context, branch, hash string) error {
	if _, err := r.git(ctx, nil, "update-ref", mirrorgit.BranchPrefix+branch, hash); err != nil {
		return fmt.Errorf("failed to reset %s: %w", branch, err)
	}
	return nil
}

// DeleteBranch implements git.Repository
func (r *Repository) DeleteBranch(ctx context.Context, branch string) error {
	if _, err := r.git(ctx, nil, "update-ref", "-d", mirrorgit.BranchPrefix+branch); err != nil {
		return fmt.Errorf("failed to delete %s: %w", branch, err)
	}
	return nil
}

// FetchTags implements git.Repository
func (r *Repository) FetchTags(ctx context.Context) error {
	cred, err := r.resolve(ctx, mirrorgit.OriginRemote)
	if err != nil {
		return err
	}
	defer cred.Close()

	_, err = r.git(ctx, cred.Env, "fetch", "--quiet", "--prune", "--no-tags", "--refmap=",
		mirrorgit.OriginRemote, mirrorgit.TagsRefSpec)
	if err != nil {
		return fmt.Errorf("failed to fetch tags: %w", err)
	}
	return nil
}

// RebuildMirrorRemote implements git.Repository
func (r *Repository) RebuildMirrorRemote(ctx context.Context, remote, url string) error {
	current, err := r.remoteURL(ctx, remote)
	if err != nil {
		return err
	}
	if current != "" {
		if _, err := r.git(ctx, nil, "remote", "remove", remote); err != nil {
			return fmt.Errorf("failed to delete remote %s: %w", remote, err)
		}
	}

	if _, err := r.git(ctx, nil, "remote", "add", "--mirror=push", remote, url); err != nil {
		return fmt.Errorf("failed to create remote %s: %w", remote, err)
	}
	return nil
}

// PushMirror implements git.Repository
func (r *Repository) PushMirror(ctx context.Context, remote string) error {
	cred, err := r.resolve(ctx, remote)
	if err != nil {
		return err
	}
	defer cred.Close()

	if _, err := r.git(ctx, cred.Env, "push", "--quiet", "--mirror", remote); err != nil {
		return fmt.Errorf("failed to push to %s: %w", remote, err)
	}
	return nil
}

// remoteURL returns the URL of remote, or "" if it does not exist
func (r *Repository) remoteURL(ctx context.Context, remote string) (string, error) {
	out, err := r.git(ctx, nil, "config", "--get", "remote."+remote+".url")
	if err != nil {
		// git config exits 1 when the key is unset
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.Code == 1 {
			return "", nil
		}
		return "", fmt.Errorf("failed to read remote %s: %w", remote, err)
	}
	return strings.TrimSpace(out), nil
}

func (r *Repository) resolve(ctx context.Context, remote string) (*auth.Credential, error) {
	url, err := r.remoteURL(ctx, remote)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, fmt.Errorf("remote %s has no URL", remote)
	}

	cred, err := r.backend.auth.Resolve(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials for %s: %w", url, err)
	}
	return cred, nil
}

func (r *Repository) git(ctx context.Context, env []string, args ...string) (string, error) {
	return r.backend.run(ctx, r.dir, env, args...)
}

func lines(out string) []string {
	var result []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			result = append(result, line)
		}
	}
	return result
}

var _ mirrorgit.Repository = (*Repository)(nil)
