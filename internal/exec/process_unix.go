// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Unix process group handling

//go:build !windows

package exec

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// setPlatformProcessGroup starts the command as the leader of a new process
// group so that git and the ssh/helper processes it spawns die together.
func setPlatformProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killProcessGroup sends SIGKILL to the command's whole process group.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}

	// pgid equals the leader's pid with Setpgid
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}
	if err != nil {
		// Fallback to killing just the process
		return cmd.Process.Kill()
	}
	return nil
}
