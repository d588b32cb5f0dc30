// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// External git binary backend

package gitexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/kareigu/sceawian/internal/auth"
	"github.com/kareigu/sceawian/internal/exec"
	mirrorgit "github.com/kareigu/sceawian/internal/git"
)

// Name is the backend name used in configuration
const Name = "exec"

// DefaultBinary is the git executable looked up in PATH
const DefaultBinary = "git"

// baseEnv is added to every git invocation
var baseEnv = []string{
	"GIT_TERMINAL_PROMPT=0",
	"LC_ALL=C",
}

// Backend implements git.Backend by running the git binary. Every command
// runs in its own process group, killed when the job context ends.
type Backend struct {
	binary string
	runner *exec.Runner
	auth   auth.Provider
	logger *zap.Logger
}

// New creates an exec backend
func New(runner *exec.Runner, provider auth.Provider, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runner == nil {
		runner = exec.NewRunner(logger)
	}
	if provider == nil {
		provider = auth.None{}
	}
	return &Backend{
		binary: DefaultBinary,
		runner: runner,
		auth:   provider,
		logger: logger.Named(Name),
	}
}

// Name implements git.Backend
func (b *Backend) Name() string {
	return Name
}

// CloneMirror implements git.Backend
func (b *Backend) CloneMirror(ctx context.Context, url, dir string) error {
	cred, err := b.auth.Resolve(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to resolve credentials for %s: %w", url, err)
	}
	defer cred.Close()

	b.logger.Debug("cloning mirror", zap.String("url", url), zap.String("dir", dir))

	if _, err := b.run(ctx, "", cred.Env, "clone", "--mirror", "--quiet", "--", url, dir); err != nil {
		// Clean up partial clone on failure
		_ = os.RemoveAll(dir)
		return fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return nil
}

// Open implements git.Backend
func (b *Backend) Open(dir string) (mirrorgit.Repository, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", mirrorgit.ErrNotRepository, dir)
	}

	repo := &Repository{backend: b, dir: dir, logger: b.logger.With(zap.String("dir", dir))}

	out, err := repo.git(context.Background(), nil, "rev-parse", "--is-bare-repository")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s: %w", mirrorgit.ErrNotRepository, dir, err)
		}
		return nil, fmt.Errorf("failed to open %s: %w", dir, err)
	}
	if strings.TrimSpace(out) != "true" {
		return nil, fmt.Errorf("%w: %s is not a bare repository", mirrorgit.ErrNotRepository, dir)
	}

	return repo, nil
}

// run executes git with args and returns its stdout
func (b *Backend) run(ctx context.Context, gitDir string, env []string, args ...string) (string, error) {
	if gitDir != "" {
		args = append([]string{"--git-dir", gitDir}, args...)
	}

	result, err := b.runner.Run(ctx, exec.Command{
		Name: b.binary,
		Args: args,
		Env:  append(append([]string{}, baseEnv...), env...),
	})
	if err != nil {
		return "", err
	}
	return result.Stdout, nil
}
