package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const defaultGracePeriod = 5 * time.Second

// ErrKilled reports that the process was stopped because its context ended.
// The context error is wrapped alongside it.
var ErrKilled = errors.New("process: killed by context")

// Run executes a subprocess and waits for it to complete.
// If the context ends, the whole process group gets SIGTERM and, after
// GracePeriod, SIGKILL.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = defaultGracePeriod
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // script paths come from configuration
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	// Python ASR scripts fork helper processes; kill the group, not just the leader.
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err := c.Run()

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("%w: %w", ErrKilled, ctx.Err())
		}
		if c.ProcessState == nil {
			return result, fmt.Errorf("process: start %s: %w", cmd.Binary, err)
		}
		return result, fmt.Errorf("process: exit code %d: %w", result.ExitCode, err)
	}
	return result, nil
}

func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	return append(os.Environ(), extra...)
}
