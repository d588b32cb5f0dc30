// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Native go-git backend

package gogit

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/kareigu/sceawian/internal/auth"
	mirrorgit "github.com/kareigu/sceawian/internal/git"
)

// Name is the backend name used in configuration
const Name = "native"

// Backend implements git.Backend with go-git
type Backend struct {
	auth   auth.Provider
	logger *zap.Logger
}

// New creates a native backend resolving credentials through provider
func New(provider auth.Provider, logger *zap.Logger) *Backend {
	if provider == nil {
		provider = auth.None{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{auth: provider, logger: logger.Named(Name)}
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

	_, err = git.PlainCloneContext(ctx, dir, true, &git.CloneOptions{
		URL:    url,
		Auth:   cred.Method,
		Mirror: true,
	})
	if err != nil {
		// Clean up partial clone on failure
		_ = os.RemoveAll(dir)
		return fmt.Errorf("failed to clone %s: %w", url, err)
	}

	return nil
}

// Open implements git.Backend
func (b *Backend) Open(dir string) (mirrorgit.Repository, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", mirrorgit.ErrNotRepository, dir)
		}
		return nil, fmt.Errorf("failed to open %s: %w", dir, err)
	}

	return &Repository{repo: repo, auth: b.auth, logger: b.logger.With(zap.String("dir", dir))}, nil
}
