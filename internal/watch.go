package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-runs the mutation chain whenever a watched shell script is
// written, keeping the rewritten counterpart in outDir up to date.
type Watcher struct {
	chain      *Chain
	watcher    *fsnotify.Watcher
	watchDirs  []string
	outDir     string
	logger     *zap.Logger
	isWatching bool
}

// NewWatcher creates a watcher over the given directories. Rewritten files
// land in outDir as <stem>_posix.sh.
func NewWatcher(chain *Chain, dirs []string, outDir string, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		chain:     chain,
		watcher:   fsWatcher,
		watchDirs: dirs,
		outDir:    outDir,
		logger:    logger,
	}, nil
}

func (w *Watcher) StartWatching() error {
	if w.isWatching {
		return fmt.Errorf("already watching")
	}

	for _, dir := range w.watchDirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return w.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	w.isWatching = true
	go w.watchLoop()
	return nil
}

func (w *Watcher) StopWatching() error {
	if !w.isWatching {
		w.logger.Debug("not watching")
	}

	w.isWatching = false
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	for w.isWatching {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write {
		return
	}
	if !strings.HasSuffix(event.Name, ".sh") && !strings.HasSuffix(event.Name, ".bash") {
		return
	}
	// editors often fire several writes per save; let them settle
	time.Sleep(100 * time.Millisecond)

	source, err := os.ReadFile(event.Name)
	if err != nil {
		w.logger.Error("reading changed file", zap.String("file", event.Name), zap.Error(err))
		return
	}

	rewritten, ctx, err := w.chain.Run(string(source))
	if err != nil {
		w.logger.Error("rewriting changed file", zap.String("file", event.Name), zap.Error(err))
		return
	}

	stem := strings.TrimSuffix(filepath.Base(event.Name), filepath.Ext(event.Name))
	outPath := filepath.Join(w.outDir, stem+"_posix.sh")
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		w.logger.Error("creating output directory", zap.Error(err))
		return
	}
	if err := os.WriteFile(outPath, []byte(rewritten), 0o755); err != nil {
		w.logger.Error("writing rewritten file", zap.String("file", outPath), zap.Error(err))
		return
	}

	features := make([]string, 0, len(ctx.Features))
	for feature := range ctx.Features {
		features = append(features, feature)
	}
	w.logger.Info("rewrote changed file",
		zap.String("file", event.Name),
		zap.String("output", outPath),
		zap.Strings("features", features))
}
