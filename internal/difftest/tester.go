package difftest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Per-input comparison statuses.
const (
	StatusPass    = "PASS"
	StatusWarning = "WARNING"
	StatusFailure = "FAILURE"
)

// Detail records the comparison for one input fed to both scripts.
type Detail struct {
	Input         string `json:"input"`
	BashStdout    string `json:"bash_stdout"`
	PosixStdout   string `json:"posix_stdout"`
	BashStderr    string `json:"bash_stderr"`
	PosixStderr   string `json:"posix_stderr"`
	BashExitCode  int    `json:"bash_exit_code"`
	PosixExitCode int    `json:"posix_exit_code"`
	StdoutMatch   bool   `json:"stdout_match"`
	StderrMatch   bool   `json:"stderr_match"`
	ExitCodeMatch bool   `json:"exit_code_match"`
	Status        string `json:"status"`
}

// CaseResult aggregates all input runs for one seed script. A non-empty
// ToolError means the seed never reached execution (mutation or I/O failure)
// and the counters are zero.
type CaseResult struct {
	SeedName   string   `json:"seed_name"`
	TestCount  int      `json:"test_count"`
	PassNum    int      `json:"pass_num"`
	WarningNum int      `json:"warning_num"`
	FailNum    int      `json:"fail_num"`
	Details    []Detail `json:"details,omitempty"`
	ToolError  string   `json:"tool_error,omitempty"`
}

// Tester runs a Bash script and its rewritten counterpart under two
// interpreters and compares what they produce.
type Tester struct {
	BashPath  string
	PosixPath string
	Timeout   time.Duration
}

// NewTester creates a tester; empty paths fall back to /bin/bash and /bin/sh.
func NewTester(bashPath, posixPath string, timeout time.Duration) *Tester {
	if bashPath == "" {
		bashPath = "/bin/bash"
	}
	if posixPath == "" {
		posixPath = "/bin/sh"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Tester{BashPath: bashPath, PosixPath: posixPath, Timeout: timeout}
}

// Test executes both scripts with each input and compares stdout, stderr and
// exit code. stdout and exit code decide equivalence; a lone stderr mismatch
// downgrades to a warning since interpreters word error messages differently.
func (t *Tester) Test(ctx context.Context, bashScript, posixScript string, inputs []string) CaseResult {
	if len(inputs) == 0 {
		inputs = []string{""}
	}

	result := CaseResult{
		SeedName:  filepath.Base(bashScript),
		TestCount: len(inputs),
	}

	for _, input := range inputs {
		bashRes := Execute(ctx, []string{t.BashPath, bashScript}, input, t.Timeout)
		posixRes := Execute(ctx, []string{t.PosixPath, posixScript}, input, t.Timeout)

		detail := Detail{
			Input:         input,
			BashStdout:    bashRes.Stdout,
			PosixStdout:   posixRes.Stdout,
			BashStderr:    bashRes.Stderr,
			PosixStderr:   posixRes.Stderr,
			BashExitCode:  bashRes.ExitCode,
			PosixExitCode: posixRes.ExitCode,
			StdoutMatch:   strings.TrimSpace(bashRes.Stdout) == strings.TrimSpace(posixRes.Stdout),
			StderrMatch:   strings.TrimSpace(bashRes.Stderr) == strings.TrimSpace(posixRes.Stderr),
			ExitCodeMatch: bashRes.ExitCode == posixRes.ExitCode,
		}

		switch {
		case detail.StdoutMatch && detail.ExitCodeMatch && detail.StderrMatch:
			detail.Status = StatusPass
			result.PassNum++
		case detail.StdoutMatch && detail.ExitCodeMatch:
			detail.Status = StatusWarning
			result.WarningNum++
		default:
			detail.Status = StatusFailure
			result.FailNum++
		}

		result.Details = append(result.Details, detail)
	}

	return result
}

// CheckSyntax verifies that script parses under the POSIX interpreter via
// its -n mode without executing it.
func (t *Tester) CheckSyntax(ctx context.Context, script string) error {
	res := Execute(ctx, []string{t.PosixPath, "-n", script}, "", t.Timeout)
	if res.ExitCode != 0 {
		return fmt.Errorf("syntax check failed (exit %d): %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
