package morph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/shmorph/shmorph/internal"
	"github.com/shmorph/shmorph/internal/mutators"
)

// MutationChain is the chain surface the facade needs.
type MutationChain interface {
	Run(source string) (string, *mutators.Context, error)
	IgnoreMutator(name string)
	Mutators() []string
}

// FileResult records the outcome of rewriting one script.
type FileResult struct {
	Path       string
	OutputPath string
	Changed    bool
	Features   []string
	Err        error
}

// New builds a mutation chain from the configuration file. An empty path
// yields a chain with every mutator enabled.
func New(configurationPath string, logger *zap.Logger) (*internal.Chain, Config, error) {
	config, err := ParseConfigurationFile(configurationPath)
	if err != nil {
		return nil, config, err
	}

	chain := internal.NewChain(logger)
	for name, mc := range config.Mutators {
		if mc.Disabled {
			chain.IgnoreMutator(name)
		}
	}
	return chain, config, nil
}

// ProcessFile rewrites one script and writes the result next to outDir,
// named <stem>_posix.sh.
func ProcessFile(chain MutationChain, path, outDir string) FileResult {
	result := FileResult{Path: path}

	source, err := os.ReadFile(path)
	if err != nil {
		result.Err = fmt.Errorf("reading %s: %w", path, err)
		return result
	}

	rewritten, ctx, err := chain.Run(string(source))
	if err != nil {
		result.Err = fmt.Errorf("rewriting %s: %w", path, err)
		return result
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	result.OutputPath = filepath.Join(outDir, stem+"_posix.sh")
	result.Changed = rewritten != string(source)
	for feature := range ctx.Features {
		result.Features = append(result.Features, feature)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		result.Err = err
		return result
	}
	if err := os.WriteFile(result.OutputPath, []byte(rewritten), 0o755); err != nil {
		result.Err = fmt.Errorf("writing %s: %w", result.OutputPath, err)
	}
	return result
}

// ProcessFiles rewrites all scripts concurrently with a bounded worker pool,
// showing a progress bar when more than one file is queued. Results come
// back in input order.
func ProcessFiles(ctx context.Context, logger *zap.Logger, chain MutationChain, paths []string, outDir string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	var bar *progressbar.ProgressBar
	if len(paths) > 1 {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("rewriting"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	maxWorkers := runtime.NumCPU()
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for i, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, p string) {
			defer wg.Done()
			defer func() { <-sem }()

			results[idx] = ProcessFile(chain, p, outDir)
			if results[idx].Err != nil && logger != nil {
				logger.Error("error processing file", zap.String("file", p), zap.Error(results[idx].Err))
			}
			if bar != nil {
				_ = bar.Add(1)
			}
		}(i, path)
	}
	wg.Wait()

	if bar != nil {
		fmt.Println()
	}
	return results, nil
}

// MutatorConfig toggles a single mutator by name.
type MutatorConfig struct {
	Disabled bool `yaml:"disabled"`
}

// ResultsConfig names the output directories for a test run.
type ResultsConfig struct {
	PosixCode string `yaml:"posix_code"`
	Reports   string `yaml:"reports"`
}

// SeedgenConfig points at the external seed script generator.
type SeedgenConfig struct {
	BinPath   string `yaml:"binpath"`
	SeedCount int    `yaml:"seed_count"`
	SeedDepth int    `yaml:"seed_depth"`
}

// Config is the YAML configuration for the rewriter and the test driver.
type Config struct {
	Name       string                   `yaml:"name"`
	BashPath   string                   `yaml:"bash_binpath"`
	PosixPath  string                   `yaml:"posix_binpath"`
	TimeoutSec int                      `yaml:"timeout"`
	SeedsDir   string                   `yaml:"seeds_dir"`
	Results    ResultsConfig            `yaml:"results"`
	Seedgen    SeedgenConfig            `yaml:"seedgen"`
	Mutators   map[string]MutatorConfig `yaml:"mutators"`
}

// Timeout returns the per-script execution timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Name:       "shmorph",
		BashPath:   "/bin/bash",
		PosixPath:  "/bin/sh",
		TimeoutSec: 10,
		SeedsDir:   "results/seeds",
		Results: ResultsConfig{
			PosixCode: "results/posix_code",
			Reports:   "results/reports",
		},
		Seedgen: SeedgenConfig{
			SeedCount: 10,
			SeedDepth: 100,
		},
	}
}

// ParseConfigurationFile reads a YAML config, falling back to defaults for
// an empty path.
func ParseConfigurationFile(configurationPath string) (Config, error) {
	config := DefaultConfig()
	if configurationPath == "" {
		return config, nil
	}

	f, err := os.Open(configurationPath)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil {
		return config, err
	}
	return config, nil
}
