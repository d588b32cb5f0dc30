// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// HTTPS token credentials

package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Token authenticates https remotes with basic auth, the password being a
// token read from the Env variable on every call. Other remotes resolve to
// anonymous credentials.
type Token struct {
	User string
	Env  string
}

// Resolve implements Provider
func (t *Token) Resolve(ctx context.Context, url string) (*Credential, error) {
	kind, ep, err := Classify(url)
	if err != nil {
		return nil, err
	}
	if kind != KindHTTP {
		return &Credential{}, nil
	}

	token := os.Getenv(t.Env)
	if token == "" {
		return nil, fmt.Errorf("%w: %s", ErrTokenUnset, t.Env)
	}

	user := t.User
	if ep.User != "" {
		user = ep.User
	}
	if user == "" {
		user = "git"
	}

	header := "Authorization: Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+token))

	return &Credential{
		Method: &http.BasicAuth{Username: user, Password: token},
		// Passed through git's environment config so the token never appears
		// in argv or on disk
		Env: []string{
			"GIT_CONFIG_COUNT=1",
			"GIT_CONFIG_KEY_0=http.extraHeader",
			"GIT_CONFIG_VALUE_0=" + header,
		},
	}, nil
}
