// Package watch provides the filesystem watching and scheduling primitives
// the staged builders use for incremental rebuilds.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a set of directory roots and delivers debounced change
// batches to a callback. One Watcher serves one staged builder; the builder
// serializes the rebuilds it triggers.
type Watcher struct {
	roots    []string
	debounce time.Duration
	logger   *slog.Logger
	onChange func(paths []string)

	watcher  *fsnotify.Watcher
	stopOnce sync.Once
	stopChan chan struct{}
}

// New creates a watcher over the given roots. onChange receives the coalesced
// set of changed paths after the debounce window closes.
func New(roots []string, debounce time.Duration, logger *slog.Logger, onChange func([]string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &Watcher{
		roots:    roots,
		debounce: debounce,
		logger:   logger,
		onChange: onChange,
		watcher:  fsw,
		stopChan: make(chan struct{}),
	}, nil
}

// Start registers the roots (recursively) and begins the watch loop. It is a
// non-blocking setup step: the loop runs on its own goroutine until the
// context is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.roots {
		if err := w.addDirsRecursive(root); err != nil {
			_ = w.watcher.Close()
			return err
		}
	}
	w.logger.Debug("watcher started", "roots", w.roots)
	go w.watchLoop(ctx)
	return nil
}

// Stop closes the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("closing file watcher", "error", err)
		}
	})
}

func (w *Watcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if filepath.Base(p)[0] == '.' && p != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// watchLoop coalesces rapid events into one debounced batch per window.
func (w *Watcher) watchLoop(ctx context.Context) {
	pending := map[string]struct{}{}
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = map[string]struct{}{}
		w.onChange(paths)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories must be picked up so nested changes keep
			// arriving.
			if event.Op&fsnotify.Create != 0 {
				if err := w.tryAddDir(event.Name); err != nil {
					w.logger.Debug("could not watch new directory", "path", event.Name, "error", err)
				}
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) tryAddDir(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return err
	}
	return w.addDirsRecursive(path)
}
