// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// workspace types/constants

package workspace

const (
	StagingDir = ".staging"
	dirPerm    = 0o755
)

// Root is the directory holding one mirror repository per job
type Root struct {
	Path string
}
