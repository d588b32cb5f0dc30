// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Ref helper tests

package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortBranch(t *testing.T) {
	tests := []struct {
		ref  string
		want string
		ok   bool
	}{
		{"refs/heads/main", "main", true},
		{"refs/heads/feature/x", "feature/x", true},
		{"refs/tags/v1.0.0", "", false},
		{"HEAD", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, ok := ShortBranch(tt.ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScratchRef(t *testing.T) {
	assert.Equal(t, "refs/mirror/fetch/feature/x", ScratchRef("feature/x"))
}
