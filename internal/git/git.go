// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Version-control capability shared by the mirror backends

package git

import (
	"context"
	"errors"
	"strings"
)

// Remote names inside a mirror workspace
const (
	OriginRemote = "origin"
	TargetRemote = "target"
)

// Reference namespaces and refspecs
const (
	BranchPrefix  = "refs/heads/"
	TagPrefix     = "refs/tags/"
	ScratchPrefix = "refs/mirror/fetch/"

	TagsRefSpec   = "+refs/tags/*:refs/tags/*"
	MirrorRefSpec = "+refs/*:refs/*"
)

// ErrNotRepository is returned by Open when dir holds no repository
var ErrNotRepository = errors.New("not a git repository")

// Backend creates and opens bare mirror repositories
type Backend interface {
	Name() string
	// CloneMirror clones every ref of url into dir as a bare mirror.
	CloneMirror(ctx context.Context, url, dir string) error
	Open(dir string) (Repository, error)
}

// Repository is an opened bare mirror. Branch names are short names
// ("main", "feature/x").
type Repository interface {
	// Branches lists local branches.
	Branches(ctx context.Context) ([]string, error)
	// RemoteHeads lists the branch heads advertised by origin, name to hash.
	RemoteHeads(ctx context.Context) (map[string]string, error)
	// SetRemoteURL points remote at url, creating it if missing. It reports
	// whether anything changed.
	SetRemoteURL(ctx context.Context, remote, url string) (bool, error)
	// FetchBranch fetches branch from origin without touching local
	// branches and returns the fetched tip.
	FetchBranch(ctx context.Context, branch string) (string, error)
	// ResetBranch points branch at hash, creating it if needed.
	ResetBranch(ctx context.Context, branch, hash string) error
	DeleteBranch(ctx context.Context, branch string) error
	// FetchTags force-fetches all tags from origin, pruning vanished ones.
	FetchTags(ctx context.Context) error
	// RebuildMirrorRemote deletes remote if present and recreates it bound
	// to url with mirror-push configuration.
	RebuildMirrorRemote(ctx context.Context, remote, url string) error
	// PushMirror force-pushes every ref to remote, pruning refs it no longer
	// has. An up-to-date remote is not an error.
	PushMirror(ctx context.Context, remote string) error
}

// ScratchRef returns the temporary ref a branch is fetched into
func ScratchRef(branch string) string {
	return ScratchPrefix + branch
}

// ShortBranch strips refs/heads/ from a full ref name. ok is false for
// non-branch refs.
func ShortBranch(ref string) (name string, ok bool) {
	if !strings.HasPrefix(ref, BranchPrefix) {
		return "", false
	}
	return strings.TrimPrefix(ref, BranchPrefix), true
}
