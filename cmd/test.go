package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shmorph/shmorph/formatter"
	"github.com/shmorph/shmorph/internal"
	"github.com/shmorph/shmorph/internal/difftest"
	"github.com/shmorph/shmorph/internal/report"
	"github.com/shmorph/shmorph/morph"
)

var maxTestRounds int

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run round-based differential testing against generated seeds",
	Run: func(cmd *cobra.Command, args []string) {
		chain, config, err := morph.New(cfgFile, logger)
		if err != nil {
			logger.Fatal("Failed to initialize mutation chain", zap.Error(err))
		}
		if config.Seedgen.BinPath == "" {
			fmt.Println("error: seedgen.binpath must be set in the configuration file")
			os.Exit(1)
		}
		runDifferentialTesting(chain, config)
	},
}

func init() {
	testCmd.Flags().IntVar(&maxTestRounds, "rounds", 0, "Number of rounds to run (0 = until interrupted)")
}

// runDifferentialTesting generates seed scripts each round, rewrites them
// through the chain, and compares both versions under two interpreters.
// SIGINT stops the loop and still produces the cross-round summary.
func runDifferentialTesting(chain *internal.Chain, config morph.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("interrupt received, finishing current round")
		cancel()
	}()

	tester := difftest.NewTester(config.BashPath, config.PosixPath, config.Timeout())
	seedgen := difftest.NewSeedGenerator(config.Seedgen.BinPath, config.Seedgen.SeedCount, config.Seedgen.SeedDepth)

	reporter, err := report.NewReporter(config.Results.Reports, logger)
	if err != nil {
		logger.Fatal("Failed to create reporter", zap.Error(err))
	}
	if err := reporter.ClearReports(); err != nil {
		logger.Warn("Failed to clear previous reports", zap.Error(err))
	}

	// start from a clean slate of seeds and rewritten scripts
	_ = os.RemoveAll(config.SeedsDir)
	_ = os.RemoveAll(config.Results.PosixCode)

	for round := 1; ; round++ {
		if maxTestRounds > 0 && round > maxTestRounds {
			break
		}
		if ctx.Err() != nil {
			break
		}

		logger.Info("starting round", zap.Int("round", round))
		roundResults := runTestRound(ctx, round, chain, tester, seedgen, config)
		if roundResults == nil {
			break
		}

		summary, err := reporter.RoundReport(round, roundResults)
		if err != nil {
			logger.Error("Error saving round report", zap.Error(err))
		}
		fmt.Println(formatter.FormatCaseResults(roundResults))
		fmt.Printf("round %d: %s\n\n", round, formatter.FormatSummary(summary))
	}

	if reporter.Rounds() == 0 {
		fmt.Println("no rounds completed")
		return
	}

	summaryPath, global, err := reporter.SummaryReport(context.Background(), report.SummaryConfig{
		BashPath:  config.BashPath,
		PosixPath: config.PosixPath,
		Timeout:   config.Timeout(),
		Mutators:  chain.Mutators(),
	})
	if err != nil {
		logger.Error("Error saving summary report", zap.Error(err))
	} else {
		fmt.Printf("summary: %s\n", formatter.FormatSummary(global))
		fmt.Printf("summary report saved to %s\n", summaryPath)
	}

	if failurePath, err := reporter.CollectFailures(); err == nil {
		fmt.Printf("failure details saved to %s\n", failurePath)
	}
}

// runTestRound generates seeds, rewrites each one and runs the comparison.
// Returns nil when the context is cancelled before any work happened.
func runTestRound(
	ctx context.Context,
	round int,
	chain *internal.Chain,
	tester *difftest.Tester,
	seedgen *difftest.SeedGenerator,
	config morph.Config,
) []difftest.CaseResult {
	seedDir := filepath.Join(config.SeedsDir, fmt.Sprintf("round_%d", round))
	seeds, err := seedgen.Generate(ctx, seedDir)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		logger.Error("Error generating seeds", zap.Error(err))
		return []difftest.CaseResult{}
	}

	outDir := filepath.Join(config.Results.PosixCode, fmt.Sprintf("round_%d", round))

	var results []difftest.CaseResult
	for _, seed := range seeds {
		if ctx.Err() != nil {
			return results
		}
		results = append(results, processSeed(ctx, chain, tester, seed, outDir))
	}
	return results
}

// processSeed rewrites one seed and diffs it. Mutation or I/O failures are
// recorded as tool errors, not fatal: the run continues with the next seed.
func processSeed(
	ctx context.Context,
	chain *internal.Chain,
	tester *difftest.Tester,
	seed, outDir string,
) difftest.CaseResult {
	toolError := func(err error) difftest.CaseResult {
		logger.Error("Error processing seed", zap.String("seed", seed), zap.Error(err))
		return difftest.CaseResult{
			SeedName:  filepath.Base(seed),
			ToolError: err.Error(),
		}
	}

	source, err := os.ReadFile(seed)
	if err != nil {
		return toolError(err)
	}

	rewritten, _, err := chain.Run(string(source))
	if err != nil {
		return toolError(err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return toolError(err)
	}
	stem := filepath.Base(seed)
	if ext := filepath.Ext(stem); ext != "" {
		stem = stem[:len(stem)-len(ext)]
	}
	posixFile := filepath.Join(outDir, stem+"_posix.sh")
	if err := os.WriteFile(posixFile, []byte(rewritten), 0o755); err != nil {
		return toolError(err)
	}

	start := time.Now()
	result := tester.Test(ctx, seed, posixFile, nil)
	logger.Debug("seed tested",
		zap.String("seed", seed),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("passed", result.PassNum),
		zap.Int("failed", result.FailNum))
	return result
}
