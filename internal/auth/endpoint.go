// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Remote URL classification

package auth

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Kind is the transport family of a remote URL
type Kind string

const (
	KindSSH   Kind = "ssh"
	KindHTTP  Kind = "http"
	KindLocal Kind = "local"
	KindGit   Kind = "git"
)

// Classify parses url the way git does, including scp-like
// "user@host:path" and bare filesystem paths.
func Classify(url string) (Kind, *transport.Endpoint, error) {
	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse remote URL %q: %w", url, err)
	}

	switch ep.Protocol {
	case "ssh":
		return KindSSH, ep, nil
	case "http", "https":
		return KindHTTP, ep, nil
	case "file":
		return KindLocal, ep, nil
	case "git":
		return KindGit, ep, nil
	default:
		return "", nil, fmt.Errorf("unsupported protocol %q in %q", ep.Protocol, url)
	}
}
