package difftest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

func TestExecute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	res := Execute(ctx, []string{"/bin/sh", "-c", "echo hello"}, "", 5*time.Second)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestExecuteStdin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	res := Execute(ctx, []string{"/bin/sh", "-c", "cat"}, "piped input", 5*time.Second)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "piped input", res.Stdout)
}

func TestExecuteExitCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	res := Execute(ctx, []string{"/bin/sh", "-c", "exit 3"}, "", 5*time.Second)
	assert.Equal(t, 3, res.ExitCode)
}

func TestExecuteTimeout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	res := Execute(ctx, []string{"/bin/sh", "-c", "sleep 5"}, "", 100*time.Millisecond)
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, res.Stderr, "timed out")
}

func TestTesterEquivalentScripts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	bashScript := writeScript(t, dir, "seed.sh", "echo same\n")
	posixScript := writeScript(t, dir, "seed_posix.sh", "echo same\n")

	tester := NewTester("", "", 5*time.Second)
	result := tester.Test(context.Background(), bashScript, posixScript, nil)

	assert.Equal(t, "seed.sh", result.SeedName)
	assert.Equal(t, 1, result.TestCount)
	assert.Equal(t, 1, result.PassNum)
	assert.Equal(t, 0, result.FailNum)
	require.Len(t, result.Details, 1)
	assert.Equal(t, StatusPass, result.Details[0].Status)
}

func TestTesterDivergingScripts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	bashScript := writeScript(t, dir, "seed.sh", "echo bash\n")
	posixScript := writeScript(t, dir, "seed_posix.sh", "echo posix\n")

	tester := NewTester("", "", 5*time.Second)
	result := tester.Test(context.Background(), bashScript, posixScript, nil)

	assert.Equal(t, 0, result.PassNum)
	assert.Equal(t, 1, result.FailNum)
	require.Len(t, result.Details, 1)
	assert.Equal(t, StatusFailure, result.Details[0].Status)
	assert.False(t, result.Details[0].StdoutMatch)
}

func TestTesterStderrOnlyMismatchWarns(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	bashScript := writeScript(t, dir, "seed.sh", "echo out\necho noise-a >&2\n")
	posixScript := writeScript(t, dir, "seed_posix.sh", "echo out\necho noise-b >&2\n")

	tester := NewTester("", "", 5*time.Second)
	result := tester.Test(context.Background(), bashScript, posixScript, nil)

	assert.Equal(t, 0, result.PassNum)
	assert.Equal(t, 1, result.WarningNum)
	assert.Equal(t, 0, result.FailNum)
	require.Len(t, result.Details, 1)
	assert.Equal(t, StatusWarning, result.Details[0].Status)
}

func TestTesterMultipleInputs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	script := "read line\necho got: $line\n"
	bashScript := writeScript(t, dir, "seed.sh", script)
	posixScript := writeScript(t, dir, "seed_posix.sh", script)

	tester := NewTester("", "", 5*time.Second)
	result := tester.Test(context.Background(), bashScript, posixScript, []string{"one\n", "two\n"})

	assert.Equal(t, 2, result.TestCount)
	assert.Equal(t, 2, result.PassNum)
}

func TestCheckSyntax(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tester := NewTester("", "", 5*time.Second)

	good := writeScript(t, dir, "good.sh", "echo fine\n")
	assert.NoError(t, tester.CheckSyntax(context.Background(), good))

	bad := writeScript(t, dir, "bad.sh", "if then; fi do\n")
	assert.Error(t, tester.CheckSyntax(context.Background(), bad))
}
