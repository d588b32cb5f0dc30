// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// SSH credentials: agent and private key file

package auth

import (
	"context"
	"fmt"
	"os"

	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/kballard/go-shellquote"
	sshagent "github.com/xanzy/ssh-agent"
	"golang.org/x/crypto/ssh"
)

// Agent authenticates ssh remotes with keys served by the running ssh-agent.
// Non-ssh remotes resolve to anonymous credentials.
type Agent struct {
	User                string
	InsecureSkipHostKey bool
}

// Resolve implements Provider
func (a *Agent) Resolve(ctx context.Context, url string) (*Credential, error) {
	kind, ep, err := Classify(url)
	if err != nil {
		return nil, err
	}
	if kind != KindSSH {
		return &Credential{}, nil
	}

	if !sshagent.Available() {
		return nil, ErrAgentUnavailable
	}
	agent, conn, err := sshagent.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAgentUnavailable, err)
	}

	method := &gitssh.PublicKeysCallback{
		User:     sshUser(ep.User, a.User),
		Callback: agent.Signers,
	}
	setHostKeyCallback(&method.HostKeyCallbackHelper, a.InsecureSkipHostKey)

	return &Credential{
		Method: method,
		Env:    []string{"GIT_SSH_COMMAND=" + sshCommand(a.InsecureSkipHostKey)},
		closer: conn,
	}, nil
}

// KeyFile authenticates ssh remotes with a private key on disk. The
// passphrase, if any, is read from PassphraseEnv at call time.
type KeyFile struct {
	User                string
	Path                string
	PassphraseEnv       string
	InsecureSkipHostKey bool
}

// Resolve implements Provider
func (k *KeyFile) Resolve(ctx context.Context, url string) (*Credential, error) {
	kind, ep, err := Classify(url)
	if err != nil {
		return nil, err
	}
	if kind != KindSSH {
		return &Credential{}, nil
	}

	var passphrase string
	if k.PassphraseEnv != "" {
		passphrase = os.Getenv(k.PassphraseEnv)
	}

	method, err := gitssh.NewPublicKeysFromFile(sshUser(ep.User, k.User), k.Path, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load key %s: %w", k.Path, err)
	}
	setHostKeyCallback(&method.HostKeyCallbackHelper, k.InsecureSkipHostKey)

	return &Credential{
		Method: method,
		Env: []string{"GIT_SSH_COMMAND=" + sshCommand(k.InsecureSkipHostKey,
			"-i", k.Path, "-o", "IdentitiesOnly=yes")},
	}, nil
}

// setHostKeyCallback leaves the known_hosts default in place unless host key
// checking is explicitly disabled
func setHostKeyCallback(helper *gitssh.HostKeyCallbackHelper, insecure bool) {
	if insecure {
		helper.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	}
}

// sshCommand builds GIT_SSH_COMMAND for the external git binary, quoted for
// the shell git runs it with. BatchMode makes ssh fail instead of prompting.
func sshCommand(insecure bool, extra ...string) string {
	args := []string{"ssh", "-o", "BatchMode=yes"}
	if insecure {
		args = append(args, "-o", "StrictHostKeyChecking=no", "-o", "UserKnownHostsFile=/dev/null")
	}
	args = append(args, extra...)
	return shellquote.Join(args...)
}

func sshUser(fromURL, fallback string) string {
	if fromURL != "" {
		return fromURL
	}
	if fallback != "" {
		return fallback
	}
	return "git"
}
