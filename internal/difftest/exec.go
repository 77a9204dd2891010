package difftest

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// ExecResult holds the observable outcome of one script execution.
type ExecResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitcode"`
}

// Execute runs command under the given timeout, feeding input on stdin.
// A timeout or spawn failure is reported as exit code -1 with the reason in
// stderr rather than as an error: a misbehaving script is a test observation,
// not a tester failure.
func Execute(ctx context.Context, command []string, input string, timeout time.Duration) ExecResult {
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, command[0], command[1:]...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return ExecResult{
			Stderr:   "command timed out after " + timeout.String(),
			ExitCode: -1,
		}
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ExecResult{
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				ExitCode: exitErr.ExitCode(),
			}
		}
		return ExecResult{
			Stderr:   "error: " + err.Error(),
			ExitCode: -1,
		}
	}

	return ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
}
