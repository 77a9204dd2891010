package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shmorph/shmorph/internal"
	"github.com/shmorph/shmorph/internal/difftest"
	"github.com/shmorph/shmorph/morph"
	"github.com/shmorph/shmorph/scanner"
)

var (
	outDir         string
	ignoreMutators string
	checkSyntax    bool
	watchMode      bool
)

var mutateCmd = &cobra.Command{
	Use:   "mutate [paths...]",
	Short: "Rewrite Bash scripts into POSIX shell",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		chain, config, err := morph.New(cfgFile, logger)
		if err != nil {
			logger.Fatal("Failed to initialize mutation chain", zap.Error(err))
		}

		if ignoreMutators != "" {
			for _, name := range strings.Split(ignoreMutators, ",") {
				chain.IgnoreMutator(strings.TrimSpace(name))
			}
		}

		if watchMode {
			runWatchMode(chain, args)
			return
		}

		runMutateProcess(ctx, chain, config, args)
	},
}

func init() {
	mutateCmd.Flags().StringVarP(&outDir, "output", "o", ".", "Directory for rewritten scripts")
	mutateCmd.Flags().StringVar(&ignoreMutators, "ignore", "", "Comma-separated list of mutators to skip")
	mutateCmd.Flags().BoolVar(&checkSyntax, "check", false, "Syntax-check rewritten scripts with the POSIX interpreter")
	mutateCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Watch directories and rewrite scripts on change")
}

// expandPaths resolves directories to the shell scripts they contain.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		files, err := scanner.New(arg).Scan()
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", arg, err)
		}
		for _, file := range files {
			paths = append(paths, file.Path)
		}
	}
	return paths, nil
}

func runMutateProcess(ctx context.Context, chain *internal.Chain, config morph.Config, args []string) {
	paths, err := expandPaths(args)
	if err != nil {
		logger.Error("Error resolving paths", zap.Error(err))
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Println("no shell scripts found")
		return
	}

	results, err := morph.ProcessFiles(ctx, logger, chain, paths, outDir)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		os.Exit(1)
	}

	tester := difftest.NewTester(config.BashPath, config.PosixPath, config.Timeout())
	failed := false
	for _, res := range results {
		if res.Err != nil {
			failed = true
			continue
		}
		status := color.GreenString("rewritten")
		if !res.Changed {
			status = "unchanged"
		}
		fmt.Printf("%s %s -> %s\n", status, res.Path, res.OutputPath)

		if checkSyntax {
			if err := tester.CheckSyntax(ctx, res.OutputPath); err != nil {
				fmt.Printf("  %s %v\n", color.RedString("syntax:"), err)
				failed = true
			}
		}
	}
	if failed {
		os.Exit(1)
	}
}

func runWatchMode(chain *internal.Chain, args []string) {
	var dirs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			logger.Warn("watch mode only accepts directories, skipping", zap.String("path", arg))
			continue
		}
		dirs = append(dirs, arg)
	}
	if len(dirs) == 0 {
		fmt.Println("error: watch mode needs at least one directory")
		os.Exit(1)
	}

	watcher, err := internal.NewWatcher(chain, dirs, outDir, logger)
	if err != nil {
		logger.Fatal("Failed to create watcher", zap.Error(err))
	}
	if err := watcher.StartWatching(); err != nil {
		logger.Fatal("Failed to start watching", zap.Error(err))
	}
	defer func() { _ = watcher.StopWatching() }()

	fmt.Printf("watching %s for changes, Ctrl-C to stop\n", strings.Join(dirs, ", "))
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
