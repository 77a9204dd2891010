package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shmorph/shmorph/internal/difftest"
)

const timestampLayout = "2006-01-02 15:04:05"

// Summary aggregates the counters for one round or for a whole run.
type Summary struct {
	TotalTests    int    `json:"total_tests"`
	Passed        int    `json:"passed"`
	Failed        int    `json:"failed"`
	Warnings      int    `json:"warnings"`
	Errors        int    `json:"errors"`
	EffectiveRate string `json:"effective_rate"`
	SuccessRate   string `json:"success_rate"`
}

// caseRef names a seed whose round did not fully pass.
type caseRef struct {
	SeedName string `json:"seed_name"`
	Count    int    `json:"count,omitempty"`
	Error    string `json:"error,omitempty"`
}

// roundReport is the JSON document written per round.
type roundReport struct {
	Timestamp    string                `json:"timestamp"`
	Summary      Summary               `json:"summary"`
	WarningCases []caseRef             `json:"warning_testcases"`
	FailureCases []caseRef             `json:"failure_testcases"`
	Results      []difftest.CaseResult `json:"result_details_of_testcases"`
	Metadata     map[string]any        `json:"metadata,omitempty"`
}

// Reporter writes per-round JSON reports and keeps running totals for the
// end-of-run summary.
type Reporter struct {
	outputDir string
	logger    *zap.Logger

	rounds   int
	totals   Summary
}

// NewReporter creates the output directory if needed.
func NewReporter(outputDir string, logger *zap.Logger) (*Reporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}
	return &Reporter{outputDir: outputDir, logger: logger}, nil
}

// summarize folds a round's case results into a Summary.
func summarize(results []difftest.CaseResult) Summary {
	var s Summary
	for _, r := range results {
		s.TotalTests += r.TestCount
		s.Passed += r.PassNum
		s.Failed += r.FailNum
		s.Warnings += r.WarningNum
		if r.ToolError != "" {
			s.Errors++
		}
	}
	s.EffectiveRate = rate(s.Passed+s.Warnings, s.TotalTests)
	s.SuccessRate = rate(s.Passed, s.TotalTests)
	return s
}

func rate(n, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(n)/float64(total)*100)
}

// RoundReport writes round_<n>_report.json and returns the round summary.
func (r *Reporter) RoundReport(roundNum int, results []difftest.CaseResult) (Summary, error) {
	summary := summarize(results)

	report := roundReport{
		Timestamp: time.Now().Format(timestampLayout),
		Summary:   summary,
		Results:   results,
		Metadata:  map[string]any{"round_num": roundNum},
	}
	for _, res := range results {
		if res.ToolError != "" {
			report.FailureCases = append(report.FailureCases, caseRef{SeedName: res.SeedName, Error: res.ToolError})
			continue
		}
		if res.PassNum == res.TestCount {
			continue
		}
		if res.WarningNum > 0 {
			report.WarningCases = append(report.WarningCases, caseRef{SeedName: res.SeedName, Count: res.WarningNum})
		}
		if res.FailNum > 0 {
			report.FailureCases = append(report.FailureCases, caseRef{SeedName: res.SeedName, Count: res.FailNum})
		}
	}

	if roundNum > r.rounds {
		r.rounds = roundNum
	}
	r.totals.TotalTests += summary.TotalTests
	r.totals.Passed += summary.Passed
	r.totals.Failed += summary.Failed
	r.totals.Warnings += summary.Warnings
	r.totals.Errors += summary.Errors

	filename := fmt.Sprintf("round_%d_report.json", roundNum)
	if err := r.writeJSON(filename, report); err != nil {
		return summary, err
	}
	r.logger.Debug("round report saved",
		zap.Int("round", roundNum),
		zap.String("file", filepath.Join(r.outputDir, filename)))
	return summary, nil
}

// SummaryConfig carries the run configuration echoed into the summary
// report's metadata.
type SummaryConfig struct {
	BashPath  string
	PosixPath string
	Timeout   time.Duration
	Mutators  []string
}

// SummaryReport writes the cross-round summary and returns its path plus the
// global counters.
func (r *Reporter) SummaryReport(ctx context.Context, cfg SummaryConfig) (string, Summary, error) {
	global := r.totals
	global.EffectiveRate = rate(global.Passed+global.Warnings, global.TotalTests)
	global.SuccessRate = rate(global.Passed, global.TotalTests)

	report := map[string]any{
		"metadata": map[string]any{
			"bash_version":  shellVersion(ctx, cfg.BashPath),
			"posix_version": shellVersion(ctx, cfg.PosixPath),
			"timestamp":     time.Now().Format(timestampLayout),
			"total_rounds":  r.rounds,
			"configuration": map[string]any{
				"timeout":          cfg.Timeout.String(),
				"mutators_count":   len(cfg.Mutators),
				"mutators_applied": cfg.Mutators,
			},
		},
		"global_summary": map[string]any{
			"total_rounds":   r.rounds,
			"total_tests":    global.TotalTests,
			"passed":         global.Passed,
			"failed":         global.Failed,
			"warnings":       global.Warnings,
			"errors":         global.Errors,
			"effective_rate": global.EffectiveRate,
			"success_rate":   global.SuccessRate,
		},
	}

	filename := fmt.Sprintf("summary_report_%s.json", time.Now().Format("20060102_150405"))
	if err := r.writeJSON(filename, report); err != nil {
		return "", global, err
	}
	return filepath.Join(r.outputDir, filename), global, nil
}

// Rounds returns how many rounds have been reported so far.
func (r *Reporter) Rounds() int {
	return r.rounds
}

// ClearReports backs up existing report files into a timestamped
// subdirectory and removes them from the output directory.
func (r *Reporter) ClearReports() error {
	entries, err := os.ReadDir(r.outputDir)
	if err != nil {
		return fmt.Errorf("reading report directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && entry.Name() != ".gitkeep" {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return nil
	}

	backupDir := filepath.Join(r.outputDir, "reports_backup_"+time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	for _, name := range files {
		src := filepath.Join(r.outputDir, name)
		data, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(backupDir, name), data, 0o644); err != nil {
			return err
		}
		if err := os.Remove(src); err != nil {
			return err
		}
	}
	r.logger.Info("backed up report files", zap.Int("count", len(files)), zap.String("dir", backupDir))
	return nil
}

// CollectFailures scans all round reports and writes failures_summary.json
// with every tool error and failed detail.
func (r *Reporter) CollectFailures() (string, error) {
	roundFiles, err := filepath.Glob(filepath.Join(r.outputDir, "round_*_report.json"))
	if err != nil {
		return "", err
	}
	sort.Strings(roundFiles)

	type caseFailure struct {
		SeedName  string            `json:"seed_name"`
		ErrorType string            `json:"error_type,omitempty"`
		Error     string            `json:"error,omitempty"`
		FailCount int               `json:"failure_count,omitempty"`
		Details   []difftest.Detail `json:"details,omitempty"`
	}
	type roundFailures struct {
		Round    any           `json:"round"`
		Failures []caseFailure `json:"failures"`
	}

	var allFailures []roundFailures
	for _, file := range roundFiles {
		data, err := os.ReadFile(file)
		if err != nil {
			r.logger.Error("reading round report", zap.String("file", file), zap.Error(err))
			continue
		}
		var report roundReport
		if err := json.Unmarshal(data, &report); err != nil {
			r.logger.Error("parsing round report", zap.String("file", file), zap.Error(err))
			continue
		}

		var failures []caseFailure
		for _, res := range report.Results {
			if res.ToolError != "" {
				failures = append(failures, caseFailure{
					SeedName:  res.SeedName,
					ErrorType: "tool_error",
					Error:     res.ToolError,
				})
				continue
			}
			if res.FailNum == 0 {
				continue
			}
			var details []difftest.Detail
			for _, d := range res.Details {
				if d.Status == difftest.StatusFailure {
					details = append(details, d)
				}
			}
			failures = append(failures, caseFailure{
				SeedName:  res.SeedName,
				FailCount: res.FailNum,
				Details:   details,
			})
		}
		if len(failures) > 0 {
			allFailures = append(allFailures, roundFailures{
				Round:    report.Metadata["round_num"],
				Failures: failures,
			})
		}
	}

	summary := map[string]any{
		"total_rounds_analyzed": len(roundFiles),
		"rounds_with_failures":  len(allFailures),
		"failure_details":       allFailures,
	}
	if err := r.writeJSON("failures_summary.json", summary); err != nil {
		return "", err
	}
	return filepath.Join(r.outputDir, "failures_summary.json"), nil
}

func (r *Reporter) writeJSON(filename string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	path := filepath.Join(r.outputDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// shellVersion asks a shell binary for its version string.
func shellVersion(ctx context.Context, shellPath string) string {
	res := difftest.Execute(ctx, []string{shellPath, "--version"}, "", 5*time.Second)
	if res.ExitCode != 0 {
		return fmt.Sprintf("unknown (%s)", shellPath)
	}
	out := strings.TrimSpace(res.Stdout)
	if line, _, found := strings.Cut(out, "\n"); found {
		return line
	}
	return out
}
