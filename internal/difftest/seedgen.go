package difftest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// SeedGenerator invokes an external grammar-based script generator. The
// binary is expected to honor `-o <dir> <count> <depth>` and write generated
// Bash scripts under <dir>/seeds plus their parse trees under <dir>/trees.
type SeedGenerator struct {
	BinPath string
	Count   int
	Depth   int
	Timeout time.Duration
}

// NewSeedGenerator creates a generator with defaulted count and depth.
func NewSeedGenerator(binPath string, count, depth int) *SeedGenerator {
	if count <= 0 {
		count = 10
	}
	if depth <= 0 {
		depth = 100
	}
	return &SeedGenerator{
		BinPath: binPath,
		Count:   count,
		Depth:   depth,
		Timeout: 60 * time.Second,
	}
}

// Generate produces seed scripts in seedDir and returns their paths. The
// generator's seeds/ and trees/ subdirectories are flattened away: seed
// files move up into seedDir and the tree dumps are discarded.
func (g *SeedGenerator) Generate(ctx context.Context, seedDir string) ([]string, error) {
	if err := os.MkdirAll(seedDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating seed directory: %w", err)
	}

	res := Execute(ctx, []string{
		g.BinPath,
		"-o", seedDir,
		strconv.Itoa(g.Count),
		strconv.Itoa(g.Depth),
	}, "", g.Timeout)
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("seed generator exited with %d: %s", res.ExitCode, res.Stderr)
	}

	seedsSubdir := filepath.Join(seedDir, "seeds")
	entries, err := os.ReadDir(seedsSubdir)
	if err != nil {
		return nil, fmt.Errorf("reading generated seeds: %w", err)
	}

	var seeds []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(seedsSubdir, entry.Name())
		dst := filepath.Join(seedDir, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("moving seed %s: %w", entry.Name(), err)
		}
		seeds = append(seeds, dst)
	}

	_ = os.RemoveAll(seedsSubdir)
	_ = os.RemoveAll(filepath.Join(seedDir, "trees"))

	return seeds, nil
}
