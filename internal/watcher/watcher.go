// Package watcher imports statement files as they appear in the data directory.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"fjacquet/ledger-import/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one settled file. Errors are logged and watching continues.
type Handler func(ctx context.Context, path string) error

// Watcher reports files matching a pattern once they stop changing.
type Watcher struct {
	dir      string
	pattern  string
	debounce time.Duration
	handler  Handler
	logger   logging.Logger
}

// New creates a watcher over dir. Files are handed to handler after no write
// was seen for the debounce duration.
func New(dir, pattern string, debounce time.Duration, handler Handler, logger logging.Logger) (*Watcher, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Watcher{dir: dir, pattern: pattern, debounce: debounce, handler: handler, logger: logger}, nil
}

// Run watches until ctx is canceled. Files are handled one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := fw.Close(); err != nil {
			w.logger.WithError(err).Warn("Failed to close file watcher")
		}
	}()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching directory for statements",
		logging.Field{Key: "directory", Value: w.dir},
		logging.Field{Key: "pattern", Value: w.pattern})

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if w.matches(ev.Name) {
				pending[ev.Name] = time.Now()
			}

		case <-ticker.C:
			for _, path := range settled(pending, time.Now(), w.debounce) {
				delete(pending, path)
				if err := w.handler(ctx, path); err != nil {
					w.logger.WithError(err).Error("Failed to import statement",
						logging.Field{Key: logging.FieldFile, Value: path})
				}
				if ctx.Err() != nil {
					return nil
				}
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("Watch error")
		}
	}
}

func (w *Watcher) matches(path string) bool {
	ok, _ := filepath.Match(w.pattern, filepath.Base(path))
	return ok
}

// settled returns the pending paths untouched for longer than quiet, sorted.
func settled(pending map[string]time.Time, now time.Time, quiet time.Duration) []string {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= quiet {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	return ready
}
