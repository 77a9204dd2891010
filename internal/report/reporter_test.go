package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shmorph/shmorph/internal/difftest"
)

func TestRoundReport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	reporter, err := NewReporter(dir, zap.NewNop())
	require.NoError(t, err)

	results := []difftest.CaseResult{
		{SeedName: "seed_0.sh", TestCount: 2, PassNum: 2},
		{SeedName: "seed_1.sh", TestCount: 2, PassNum: 1, FailNum: 1},
		{SeedName: "seed_2.sh", TestCount: 2, PassNum: 1, WarningNum: 1},
		{SeedName: "seed_3.sh", ToolError: "seed_3.sh: syntax check failed"},
	}
	summary, err := reporter.RoundReport(1, results)
	require.NoError(t, err)

	assert.Equal(t, 6, summary.TotalTests)
	assert.Equal(t, 4, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Warnings)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, "83.33%", summary.EffectiveRate)
	assert.Equal(t, "66.67%", summary.SuccessRate)

	data, err := os.ReadFile(filepath.Join(dir, "round_1_report.json"))
	require.NoError(t, err)

	var report roundReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Len(t, report.Results, 4)
	require.Len(t, report.WarningCases, 1)
	assert.Equal(t, "seed_2.sh", report.WarningCases[0].SeedName)
	require.Len(t, report.FailureCases, 2)
	assert.Equal(t, "seed_1.sh", report.FailureCases[0].SeedName)
	assert.Equal(t, "seed_3.sh", report.FailureCases[1].SeedName)
	assert.Equal(t, float64(1), report.Metadata["round_num"])
}

func TestRoundReportEmpty(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	reporter, err := NewReporter(dir, nil)
	require.NoError(t, err)

	summary, err := reporter.RoundReport(1, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.00%", summary.EffectiveRate)
	assert.Equal(t, "0.00%", summary.SuccessRate)
}

func TestReporterRounds(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	reporter, err := NewReporter(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, reporter.Rounds())

	_, err = reporter.RoundReport(1, nil)
	require.NoError(t, err)
	_, err = reporter.RoundReport(2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, reporter.Rounds())
}

func TestClearReports(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "round_1_report.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitkeep"), nil, 0o644))

	reporter, err := NewReporter(dir, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, reporter.ClearReports())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var backupDir string
	for _, entry := range entries {
		switch {
		case entry.IsDir():
			backupDir = entry.Name()
		case entry.Name() == ".gitkeep":
		default:
			t.Fatalf("leftover report file %s", entry.Name())
		}
	}
	require.NotEmpty(t, backupDir)
	assert.Contains(t, backupDir, "reports_backup_")

	_, err = os.Stat(filepath.Join(dir, backupDir, "round_1_report.json"))
	assert.NoError(t, err)
}

func TestCollectFailures(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	reporter, err := NewReporter(dir, zap.NewNop())
	require.NoError(t, err)

	_, err = reporter.RoundReport(1, []difftest.CaseResult{
		{SeedName: "clean.sh", TestCount: 1, PassNum: 1},
	})
	require.NoError(t, err)
	_, err = reporter.RoundReport(2, []difftest.CaseResult{
		{
			SeedName:  "broken.sh",
			TestCount: 1,
			FailNum:   1,
			Details: []difftest.Detail{
				{Status: difftest.StatusFailure, BashStdout: "a", PosixStdout: "b"},
			},
		},
		{SeedName: "crashed.sh", ToolError: "seed generator exited"},
	})
	require.NoError(t, err)

	path, err := reporter.CollectFailures()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "failures_summary.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, float64(2), summary["total_rounds_analyzed"])
	assert.Equal(t, float64(1), summary["rounds_with_failures"])

	details, ok := summary["failure_details"].([]any)
	require.True(t, ok)
	require.Len(t, details, 1)

	round := details[0].(map[string]any)
	assert.Equal(t, float64(2), round["round"])
	failures := round["failures"].([]any)
	assert.Len(t, failures, 2)
}

func TestRate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0.00%", rate(0, 0))
	assert.Equal(t, "50.00%", rate(1, 2))
	assert.Equal(t, "100.00%", rate(3, 3))
	assert.Equal(t, "33.33%", rate(1, 3))
}
