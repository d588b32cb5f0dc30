// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Credential providers resolved at connection time

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Authentication methods
const (
	MethodAgent = "agent"
	MethodKey   = "key"
	MethodToken = "token"
	MethodNone  = "none"
)

var (
	// ErrAgentUnavailable is returned when no ssh-agent can be reached
	ErrAgentUnavailable = errors.New("ssh agent unavailable")
	// ErrTokenUnset is returned when the token environment variable is empty
	ErrTokenUnset = errors.New("token environment variable is not set")
	// ErrUnknownMethod is returned by New for an unrecognized method
	ErrUnknownMethod = errors.New("unknown auth method")
)

// Credential is what a backend needs to authenticate one remote operation.
// Method is used by the native backend, Env by the external git backend.
// A zero Credential is anonymous. Callers must Close it when done.
type Credential struct {
	Method transport.AuthMethod
	Env    []string
	closer io.Closer
}

// Close releases any connection held by the credential
func (c *Credential) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// Provider resolves credentials for a remote URL. Implementations never keep
// secrets between calls.
type Provider interface {
	Resolve(ctx context.Context, url string) (*Credential, error)
}

// Options configures the provider built by New
type Options struct {
	User                string // ssh user when the URL has none, https user for tokens
	KeyFile             string
	PassphraseEnv       string
	TokenEnv            string
	InsecureSkipHostKey bool
}

// New returns the provider for method
func New(method string, opts Options) (Provider, error) {
	switch strings.ToLower(method) {
	case MethodAgent, "":
		return &Agent{User: opts.User, InsecureSkipHostKey: opts.InsecureSkipHostKey}, nil
	case MethodKey:
		if opts.KeyFile == "" {
			return nil, fmt.Errorf("%s auth requires a key file", MethodKey)
		}
		return &KeyFile{
			User:                opts.User,
			Path:                opts.KeyFile,
			PassphraseEnv:       opts.PassphraseEnv,
			InsecureSkipHostKey: opts.InsecureSkipHostKey,
		}, nil
	case MethodToken:
		return &Token{User: opts.User, Env: opts.TokenEnv}, nil
	case MethodNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// None resolves every URL to an anonymous credential
type None struct{}

// Resolve implements Provider
func (None) Resolve(ctx context.Context, url string) (*Credential, error) {
	return &Credential{}, nil
}
