// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Per-job mirror workspace layout

package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// New returns a Root for dir. An empty dir means the current working directory.
func New(dir string) (*Root, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		dir = cwd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root %s: %w", dir, err)
	}

	return &Root{Path: abs}, nil
}

// EnsureRoot creates the root directory if it is missing
func (r *Root) EnsureRoot() error {
	if err := os.MkdirAll(r.Path, dirPerm); err != nil {
		return fmt.Errorf("failed to create workspace root %s: %w", r.Path, err)
	}
	return nil
}

// Dir returns the mirror directory for a job
func (r *Root) Dir(name string) string {
	return filepath.Join(r.Path, name)
}

// StagingPath returns where a clone for name is built before promotion
func (r *Root) StagingPath(name string) string {
	return filepath.Join(r.Path, StagingDir, name)
}

// Exists checks if the mirror directory for name exists
func (r *Root) Exists(name string) bool {
	info, err := os.Stat(r.Dir(name))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// PrepareStaging removes any leftover staging directory for name and makes
// sure its parent exists. The returned path does not exist yet.
func (r *Root) PrepareStaging(name string) (string, error) {
	staging := r.StagingPath(name)

	if err := os.RemoveAll(staging); err != nil {
		return "", fmt.Errorf("failed to remove stale staging directory %s: %w", staging, err)
	}
	if err := os.MkdirAll(filepath.Dir(staging), dirPerm); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	return staging, nil
}

// Promote moves a completed staging clone into its final location
func (r *Root) Promote(name string) error {
	staging := r.StagingPath(name)
	dest := r.Dir(name)

	if r.Exists(name) {
		return fmt.Errorf("workspace %s already exists", dest)
	}
	if err := os.Rename(staging, dest); err != nil {
		return fmt.Errorf("failed to promote workspace %s: %w", dest, err)
	}

	// Try to remove the staging parent if it's empty
	_ = os.Remove(filepath.Dir(staging))

	return nil
}

// DiscardStaging removes the staging directory for name
func (r *Root) DiscardStaging(name string) error {
	staging := r.StagingPath(name)
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("failed to cleanup staging directory %s: %w", staging, err)
	}
	_ = os.Remove(filepath.Dir(staging))
	return nil
}

// String returns a string representation of the root
func (r *Root) String() string {
	return fmt.Sprintf("Workspace{Root: %s}", r.Path)
}
