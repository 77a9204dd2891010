package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shmorph/shmorph/internal/difftest"
	"github.com/shmorph/shmorph/internal/report"
)

func TestFormatCaseResults(t *testing.T) {
	t.Parallel()
	results := []difftest.CaseResult{
		{
			SeedName:  "seed_1.sh",
			TestCount: 2,
			PassNum:   1,
			FailNum:   1,
			Details: []difftest.Detail{
				{Status: difftest.StatusPass, StdoutMatch: true, StderrMatch: true, ExitCodeMatch: true},
				{
					Status:        difftest.StatusFailure,
					BashStdout:    "expected output",
					PosixStdout:   "actual output",
					StderrMatch:   true,
					ExitCodeMatch: true,
				},
			},
		},
		{SeedName: "seed_0.sh", TestCount: 2, PassNum: 2},
		{SeedName: "seed_2.sh", ToolError: "transform failed"},
	}

	out := FormatCaseResults(results)

	// sorted by seed name
	assert.Less(t, indexOf(t, out, "seed_0.sh"), indexOf(t, out, "seed_1.sh"))
	assert.Less(t, indexOf(t, out, "seed_1.sh"), indexOf(t, out, "seed_2.sh"))

	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "FAILURE")
	assert.Contains(t, out, "(1/2 passed)")
	assert.Contains(t, out, "stdout mismatch:")
	assert.Contains(t, out, "expected output")
	assert.Contains(t, out, "actual output")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "transform failed")
}

func TestFormatCaseResultsPassOnly(t *testing.T) {
	t.Parallel()
	out := FormatCaseResults([]difftest.CaseResult{
		{SeedName: "seed.sh", TestCount: 3, PassNum: 3},
	})
	assert.Contains(t, out, "(3/3 passed)")
	assert.NotContains(t, out, "mismatch")
}

func TestFormatCaseResultsWarning(t *testing.T) {
	t.Parallel()
	out := FormatCaseResults([]difftest.CaseResult{
		{
			SeedName:   "seed.sh",
			TestCount:  1,
			WarningNum: 1,
			Details: []difftest.Detail{
				{
					Status:        difftest.StatusWarning,
					BashStderr:    "warning: a",
					PosixStderr:   "warning: b",
					StdoutMatch:   true,
					ExitCodeMatch: true,
				},
			},
		},
	})
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "stderr mismatch:")
	assert.NotContains(t, out, "stdout mismatch:")
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", truncate("short\n"))
	assert.Equal(t, `a\nb`, truncate("a\nb"))

	long := make([]byte, maxOutputPreview+50)
	for i := range long {
		long[i] = 'x'
	}
	got := truncate(string(long))
	assert.Len(t, got, maxOutputPreview+3)
	assert.Contains(t, got, "...")
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()
	out := FormatSummary(report.Summary{
		TotalTests:    10,
		Passed:        7,
		Failed:        2,
		Warnings:      1,
		Errors:        0,
		EffectiveRate: "80.00%",
		SuccessRate:   "70.00%",
	})
	assert.Contains(t, out, "tests:")
	assert.Contains(t, out, "10")
	assert.Contains(t, out, "effective 80.00%")
	assert.Contains(t, out, "success 70.00%")
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		t.Fatalf("%q not found", needle)
	}
	return idx
}
