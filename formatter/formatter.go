package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/shmorph/shmorph/internal/difftest"
	"github.com/shmorph/shmorph/internal/report"
)

var (
	passStyle    = color.New(color.FgGreen, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	failureStyle = color.New(color.FgRed, color.Bold)
	errorStyle   = color.New(color.FgRed, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	labelStyle   = color.New(color.FgHiBlue, color.Bold)
	noStyle      = color.New(color.FgWhite)
)

// statusStyle picks the color for a per-input comparison status.
func statusStyle(status string) *color.Color {
	switch status {
	case difftest.StatusPass:
		return passStyle
	case difftest.StatusWarning:
		return warningStyle
	default:
		return failureStyle
	}
}

// FormatCaseResults renders the outcome of one round's differential tests.
// Passing seeds get a single line; warning and failing seeds get a detail
// block showing what diverged.
func FormatCaseResults(results []difftest.CaseResult) string {
	sorted := make([]difftest.CaseResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SeedName < sorted[j].SeedName })

	var builder strings.Builder
	for _, res := range sorted {
		builder.WriteString(formatCaseResult(res))
	}
	return builder.String()
}

func formatCaseResult(res difftest.CaseResult) string {
	var builder strings.Builder

	if res.ToolError != "" {
		builder.WriteString(fmt.Sprintf("%s %s: %s\n",
			errorStyle.Sprint("ERROR"),
			fileStyle.Sprint(res.SeedName),
			res.ToolError))
		return builder.String()
	}

	status := difftest.StatusPass
	if res.FailNum > 0 {
		status = difftest.StatusFailure
	} else if res.WarningNum > 0 {
		status = difftest.StatusWarning
	}

	builder.WriteString(fmt.Sprintf("%s %s (%d/%d passed)\n",
		statusStyle(status).Sprint(status),
		fileStyle.Sprint(res.SeedName),
		res.PassNum, res.TestCount))

	if status == difftest.StatusPass {
		return builder.String()
	}

	for i, detail := range res.Details {
		if detail.Status == difftest.StatusPass {
			continue
		}
		builder.WriteString(fmt.Sprintf("  %s input %d:\n", statusStyle(detail.Status).Sprint(detail.Status), i+1))
		if !detail.StdoutMatch {
			builder.WriteString(diffLine("stdout", detail.BashStdout, detail.PosixStdout))
		}
		if !detail.ExitCodeMatch {
			builder.WriteString(fmt.Sprintf("    %s bash=%d posix=%d\n",
				labelStyle.Sprint("exit code:"), detail.BashExitCode, detail.PosixExitCode))
		}
		if !detail.StderrMatch {
			builder.WriteString(diffLine("stderr", detail.BashStderr, detail.PosixStderr))
		}
	}
	return builder.String()
}

func diffLine(stream, bashOut, posixOut string) string {
	return fmt.Sprintf("    %s\n      bash:  %s\n      posix: %s\n",
		labelStyle.Sprint(stream+" mismatch:"),
		noStyle.Sprint(truncate(bashOut)),
		noStyle.Sprint(truncate(posixOut)))
}

const maxOutputPreview = 200

func truncate(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", `\n`)
	if len(s) > maxOutputPreview {
		return s[:maxOutputPreview] + "..."
	}
	return s
}

// FormatSummary renders a round or global summary on one line.
func FormatSummary(s report.Summary) string {
	return fmt.Sprintf("%s %d  %s %d  %s %d  %s %d  %s %d  (effective %s, success %s)",
		labelStyle.Sprint("tests:"), s.TotalTests,
		passStyle.Sprint("passed:"), s.Passed,
		failureStyle.Sprint("failed:"), s.Failed,
		warningStyle.Sprint("warnings:"), s.Warnings,
		errorStyle.Sprint("errors:"), s.Errors,
		s.EffectiveRate, s.SuccessRate)
}
