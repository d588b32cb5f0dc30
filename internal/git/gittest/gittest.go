// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Test repositories built with go-git

// Package gittest creates throwaway upstream and target repositories for
// mirror tests.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// DefaultBranch is the initial branch of every Upstream
const DefaultBranch = "main"

var signature = object.Signature{
	Name:  "Mirror Test",
	Email: "mirror@example.com",
	When:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
}

// RequireGit skips the test when the git binary is unavailable. Local
// transports in both backends need it.
func RequireGit(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// Upstream is a non-bare repository tests commit into
type Upstream struct {
	Dir  string
	repo *git.Repository
	seq  int
}

// NewUpstream creates an upstream with one commit on DefaultBranch
func NewUpstream(t testing.TB) *Upstream {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "upstream")
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch)},
	})
	require.NoError(t, err)

	u := &Upstream{Dir: dir, repo: repo}
	u.commit(t, "initial")
	return u
}

// URL returns the locator a mirror clones from
func (u *Upstream) URL() string {
	return u.Dir
}

// Commit adds a commit on branch, creating the branch from the current
// checkout when missing, and returns its hash
func (u *Upstream) Commit(t testing.TB, branch, message string) string {
	t.Helper()
	u.checkout(t, branch)
	return u.commit(t, message)
}

// Rewrite replaces the tip of branch with a new commit whose parent is the
// tip's parent, simulating a force-push that discards history
func (u *Upstream) Rewrite(t testing.TB, branch, message string) string {
	t.Helper()
	u.checkout(t, branch)

	head, err := u.repo.Head()
	require.NoError(t, err)
	tip, err := u.repo.CommitObject(head.Hash())
	require.NoError(t, err)
	require.NotZero(t, tip.NumParents(), "cannot rewrite a root commit")

	wt, err := u.repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Reset(&git.ResetOptions{Commit: tip.ParentHashes[0], Mode: git.HardReset}))

	return u.commit(t, message)
}

// DeleteBranch removes branch upstream
func (u *Upstream) DeleteBranch(t testing.TB, branch string) {
	t.Helper()
	u.checkout(t, DefaultBranch)
	require.NoError(t, u.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(branch)))
}

// Tag creates a lightweight tag at the tip of branch
func (u *Upstream) Tag(t testing.TB, name, branch string) {
	t.Helper()
	ref, err := u.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	require.NoError(t, err)
	_, err = u.repo.CreateTag(name, ref.Hash(), nil)
	require.NoError(t, err)
}

// DeleteTag removes a tag upstream
func (u *Upstream) DeleteTag(t testing.TB, name string) {
	t.Helper()
	require.NoError(t, u.repo.DeleteTag(name))
}

// Heads returns the upstream branches
func (u *Upstream) Heads(t testing.TB) map[string]string {
	t.Helper()
	return Heads(t, u.Dir)
}

func (u *Upstream) checkout(t testing.TB, branch string) {
	t.Helper()

	wt, err := u.repo.Worktree()
	require.NoError(t, err)

	name := plumbing.NewBranchReferenceName(branch)
	_, err = u.repo.Reference(name, false)
	create := err != nil

	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Branch: name, Create: create, Force: true}))
}

func (u *Upstream) commit(t testing.TB, message string) string {
	t.Helper()

	wt, err := u.repo.Worktree()
	require.NoError(t, err)

	u.seq++
	file := "history.txt"
	f, err := os.OpenFile(filepath.Join(u.Dir, file), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(message + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = wt.Add(file)
	require.NoError(t, err)

	sig := signature
	sig.When = sig.When.Add(time.Duration(u.seq) * time.Minute)
	hash, err := wt.Commit(message, &git.CommitOptions{Author: &sig, Committer: &sig})
	require.NoError(t, err)

	return hash.String()
}

// NewBareTarget creates an empty bare repository to push mirrors into
func NewBareTarget(t testing.TB) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "target.git")
	_, err := git.PlainInit(dir, true)
	require.NoError(t, err)
	return dir
}

// SetRef points an arbitrary reference, e.g. refs/notes/review, at hash
func (u *Upstream) SetRef(t testing.TB, name, hash string) {
	t.Helper()
	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), plumbing.NewHash(hash))
	require.NoError(t, u.repo.Storer.SetReference(ref))
}

// Heads returns branch name to hash for the repository at dir
func Heads(t testing.TB, dir string) map[string]string {
	t.Helper()
	return refs(t, dir, func(ref *plumbing.Reference) (string, bool) {
		if !ref.Name().IsBranch() {
			return "", false
		}
		return ref.Name().Short(), true
	})
}

// Tags returns tag name to hash for the repository at dir
func Tags(t testing.TB, dir string) map[string]string {
	t.Helper()
	return refs(t, dir, func(ref *plumbing.Reference) (string, bool) {
		if !ref.Name().IsTag() {
			return "", false
		}
		return ref.Name().Short(), true
	})
}

// Refs returns every reference under refs/ for the repository at dir
func Refs(t testing.TB, dir string) map[string]string {
	t.Helper()
	return refs(t, dir, func(ref *plumbing.Reference) (string, bool) {
		return ref.Name().String(), ref.Name() != plumbing.HEAD
	})
}

func refs(t testing.TB, dir string, keep func(*plumbing.Reference) (string, bool)) map[string]string {
	t.Helper()

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)

	iter, err := repo.References()
	require.NoError(t, err)
	defer iter.Close()

	result := make(map[string]string)
	require.NoError(t, iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		if name, ok := keep(ref); ok {
			result[name] = ref.Hash().String()
		}
		return nil
	}))
	return result
}
