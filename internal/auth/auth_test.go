// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Credential provider tests

package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		kind Kind
		user string
	}{
		{"git@github.com:org/alpha.git", KindSSH, "git"},
		{"ssh://mirror@git.example.com:2222/alpha.git", KindSSH, "mirror"},
		{"https://github.com/org/alpha.git", KindHTTP, ""},
		{"http://deploy@git.local/alpha.git", KindHTTP, "deploy"},
		{"/srv/git/alpha.git", KindLocal, ""},
		{"file:///srv/git/alpha.git", KindLocal, ""},
		{"git://git.kernel.org/pub/scm/git/git.git", KindGit, ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			kind, ep, err := Classify(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.user, ep.User)
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		method  string
		opts    Options
		want    Provider
		wantErr bool
	}{
		{"agent", Options{User: "git"}, &Agent{User: "git"}, false},
		{"", Options{}, &Agent{}, false},
		{"key", Options{KeyFile: "/k", PassphraseEnv: "P"}, &KeyFile{Path: "/k", PassphraseEnv: "P"}, false},
		{"key", Options{}, nil, true},
		{"TOKEN", Options{TokenEnv: "T"}, &Token{Env: "T"}, false},
		{"none", Options{}, None{}, false},
		{"kerberos", Options{}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got, err := New(tt.method, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := New("kerberos", Options{})
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestNoneIsAnonymous(t *testing.T) {
	cred, err := None{}.Resolve(context.Background(), "git@github.com:org/alpha.git")
	require.NoError(t, err)
	assert.Nil(t, cred.Method)
	assert.Empty(t, cred.Env)
	assert.NoError(t, cred.Close())
}

func TestTokenResolve(t *testing.T) {
	t.Setenv("SCEAWIAN_TEST_TOKEN", "s3cret")
	provider := &Token{User: "mirror-bot", Env: "SCEAWIAN_TEST_TOKEN"}

	cred, err := provider.Resolve(context.Background(), "https://git.example.com/alpha.git")
	require.NoError(t, err)

	basic, ok := cred.Method.(*http.BasicAuth)
	require.True(t, ok)
	assert.Equal(t, "mirror-bot", basic.Username)
	assert.Equal(t, "s3cret", basic.Password)

	encoded := base64.StdEncoding.EncodeToString([]byte("mirror-bot:s3cret"))
	assert.Contains(t, cred.Env, "GIT_CONFIG_VALUE_0=Authorization: Basic "+encoded)
	assert.Contains(t, cred.Env, "GIT_CONFIG_KEY_0=http.extraHeader")
}

func TestTokenReadAtCallTime(t *testing.T) {
	provider := &Token{Env: "SCEAWIAN_TEST_TOKEN"}

	t.Setenv("SCEAWIAN_TEST_TOKEN", "")
	_, err := provider.Resolve(context.Background(), "https://git.example.com/alpha.git")
	assert.ErrorIs(t, err, ErrTokenUnset)

	t.Setenv("SCEAWIAN_TEST_TOKEN", "rotated")
	cred, err := provider.Resolve(context.Background(), "https://git.example.com/alpha.git")
	require.NoError(t, err)
	assert.Equal(t, "rotated", cred.Method.(*http.BasicAuth).Password)
}

func TestTokenIgnoresNonHTTP(t *testing.T) {
	t.Setenv("SCEAWIAN_TEST_TOKEN", "")
	provider := &Token{Env: "SCEAWIAN_TEST_TOKEN"}

	cred, err := provider.Resolve(context.Background(), "/srv/git/alpha.git")
	require.NoError(t, err)
	assert.Nil(t, cred.Method)
}

func TestAgentUnavailable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("pageant is used on windows")
	}
	t.Setenv("SSH_AUTH_SOCK", "")

	_, err := (&Agent{}).Resolve(context.Background(), "git@github.com:org/alpha.git")
	assert.ErrorIs(t, err, ErrAgentUnavailable)
}

func TestAgentAnonymousForLocalPaths(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")

	cred, err := (&Agent{}).Resolve(context.Background(), "/srv/git/alpha.git")
	require.NoError(t, err)
	assert.Nil(t, cred.Method)
}

func TestAgentResolve(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix sockets")
	}

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keyring := agent.NewKeyring()
	require.NoError(t, keyring.Add(agent.AddedKey{PrivateKey: key}))

	sock := filepath.Join(t.TempDir(), "agent.sock")
	listener, err := net.Listen("unix", sock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				_ = agent.ServeAgent(keyring, conn)
			}()
		}
	}()
	t.Setenv("SSH_AUTH_SOCK", sock)

	cred, err := (&Agent{User: "fallback", InsecureSkipHostKey: true}).Resolve(context.Background(), "ssh://mirror@git.example.com/alpha.git")
	require.NoError(t, err)
	defer cred.Close()

	method, ok := cred.Method.(*gitssh.PublicKeysCallback)
	require.True(t, ok)
	assert.Equal(t, "mirror", method.User)
	assert.NotNil(t, method.HostKeyCallback)

	signers, err := method.Callback()
	require.NoError(t, err)
	assert.Len(t, signers, 1)

	require.Len(t, cred.Env, 1)
	assert.True(t, strings.HasPrefix(cred.Env[0], "GIT_SSH_COMMAND=ssh -o BatchMode=yes"))
	assert.Contains(t, cred.Env[0], "StrictHostKeyChecking=no")
}

func TestKeyFileResolve(t *testing.T) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(key, "sceawian test")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))

	provider := &KeyFile{User: "git", Path: path}
	cred, err := provider.Resolve(context.Background(), "git.example.com:alpha.git")
	require.NoError(t, err)

	method, ok := cred.Method.(*gitssh.PublicKeys)
	require.True(t, ok)
	assert.Equal(t, "git", method.User)
	assert.Nil(t, method.HostKeyCallback)

	require.Len(t, cred.Env, 1)
	args, err := shellquote.Split(strings.TrimPrefix(cred.Env[0], "GIT_SSH_COMMAND="))
	require.NoError(t, err)
	assert.Contains(t, args, path)
	assert.Contains(t, args, "IdentitiesOnly=yes")
	assert.NotContains(t, cred.Env[0], "StrictHostKeyChecking")
}

func TestKeyFileMissing(t *testing.T) {
	provider := &KeyFile{Path: filepath.Join(t.TempDir(), "absent")}
	_, err := provider.Resolve(context.Background(), "git@github.com:org/alpha.git")
	assert.Error(t, err)
}

func TestSSHCommandQuoting(t *testing.T) {
	assert.Equal(t, "ssh -o BatchMode=yes", sshCommand(false))

	args, err := shellquote.Split(sshCommand(true, "-i", "/home/me/it's a key"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ssh", "-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=no", "-o", "UserKnownHostsFile=/dev/null",
		"-i", "/home/me/it's a key",
	}, args)
}
