// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Execution types

package exec

import (
	"fmt"
	"strings"
	"time"
)

// DefaultWaitDelay bounds how long Run waits for output pipes after the
// process group has been killed
const DefaultWaitDelay = 10 * time.Second

// stderrTailLines is how much stderr an ExitError carries
const stderrTailLines = 10

// Command describes a single external process invocation
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string // Appended to the current process environment
}

// String returns the command line without environment
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// CommandResult contains the raw result of running a command
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// ExitError reports a command that ran and exited non-zero
type ExitError struct {
	Command string
	Code    int
	Stderr  string // Last lines of stderr
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exited with code %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s: exited with code %d: %s", e.Command, e.Code, e.Stderr)
}

// tail returns the last n non-empty lines of s joined by "; "
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "; ")
}
