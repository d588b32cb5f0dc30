// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// External command runner with process group termination

package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Runner executes external commands. Each command runs in its own process
// group, and the whole group is killed when the context ends.
type Runner struct {
	logger    *zap.Logger
	waitDelay time.Duration
}

// NewRunner creates a new command runner
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger:    logger,
		waitDelay: DefaultWaitDelay,
	}
}

// Run executes c and waits for it to finish. A non-zero exit is returned as
// *ExitError; a cancelled or expired context is returned wrapping ctx.Err().
// The result is non-nil whenever the process was started.
func (r *Runner) Run(ctx context.Context, c Command) (*CommandResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	setPlatformProcessGroup(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}
	cmd.WaitDelay = r.waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running command", zap.Stringer("cmd", c), zap.String("dir", c.Dir))

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", c.Name, err)
	}

	err := cmd.Wait()
	result := &CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("%s: killed after %v: %w", c.Name, result.Duration.Round(time.Millisecond), ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &ExitError{
			Command: c.String(),
			Code:    result.ExitCode,
			Stderr:  tail(result.Stderr, stderrTailLines),
		}
	}

	return result, fmt.Errorf("%s: %w", c.Name, err)
}
