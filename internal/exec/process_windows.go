// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Windows process handling

//go:build windows

package exec

import (
	"os/exec"
)

// setPlatformProcessGroup is a no-op: Windows has no Unix-style process groups.
func setPlatformProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup terminates the process via TerminateProcess. Children
// spawned by git are not tracked on Windows.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
