// Package watcher polls local repository checkouts and reports changed
// source files so edits can be re-analyzed without waiting for a push event.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cig/internal/logging"
	"cig/internal/paths"
)

// Change is one modified file, identified the way the analyzer expects it.
type Change struct {
	RepoID   string
	FilePath string // repo-relative, forward slashes
}

// Handler receives a debounced batch of changes.
type Handler func(changes []Change)

// Config controls polling cadence and filtering.
type Config struct {
	PollInterval   time.Duration
	Debounce       time.Duration
	IgnorePatterns []string // directory or file basenames to skip
	Extensions     []string // only report these; empty means all
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:   2 * time.Second,
		Debounce:       5 * time.Second,
		IgnorePatterns: []string{".git", "node_modules", "build", "dist", "vendor"},
	}
}

// Watcher polls a set of repo checkouts by mtime comparison. Polling keeps
// the dependency surface flat and behaves identically on network mounts; the
// interval bounds staleness, not correctness.
type Watcher struct {
	repos  map[string]string // repoID -> checkout root
	cfg    Config
	logger *logging.Logger
	ignore map[string]bool
	exts   map[string]bool
}

// New creates a watcher over the given repoID -> local root mapping.
func New(repos map[string]string, cfg Config, logger *logging.Logger) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultConfig().Debounce
	}
	ignore := make(map[string]bool, len(cfg.IgnorePatterns))
	for _, p := range cfg.IgnorePatterns {
		ignore[p] = true
	}
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		exts[strings.ToLower(e)] = true
	}
	return &Watcher{
		repos:  repos,
		cfg:    cfg,
		logger: logger,
		ignore: ignore,
		exts:   exts,
	}
}

// Run polls until the context is cancelled, invoking handler with debounced
// change batches.
func (w *Watcher) Run(ctx context.Context, handler Handler) {
	mtimes := w.snapshot()
	w.logger.Info("Watching repositories", map[string]interface{}{
		"repos": len(w.repos),
		"files": len(mtimes),
	})

	debounce := NewBatchDebouncer(w.cfg.Debounce, handler)
	defer debounce.Cancel()

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := w.snapshot()
			changes := diffSnapshots(mtimes, current)
			mtimes = current
			if len(changes) == 0 {
				continue
			}
			debounce.Add(changes...)
		}
	}
}

type fileKey struct {
	repoID  string
	relPath string
}

func (w *Watcher) snapshot() map[fileKey]time.Time {
	out := make(map[fileKey]time.Time)
	for repoID, root := range w.repos {
		_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable subtree, skip
			}
			base := filepath.Base(p)
			if d.IsDir() {
				if w.ignore[base] {
					return filepath.SkipDir
				}
				return nil
			}
			if w.ignore[base] {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return nil
			}
			relSlash := paths.NormalizeSlashes(rel)
			if len(w.exts) > 0 && !w.exts[paths.Extension(relSlash)] {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			out[fileKey{repoID: repoID, relPath: relSlash}] = info.ModTime()
			return nil
		})
	}
	return out
}

func diffSnapshots(prev, current map[fileKey]time.Time) []Change {
	var changes []Change
	for key, mtime := range current {
		old, existed := prev[key]
		if !existed || mtime.After(old) {
			changes = append(changes, Change{RepoID: key.repoID, FilePath: key.relPath})
		}
	}
	return changes
}
