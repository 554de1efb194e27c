// Package watch rescans a path whenever files under it change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/rajivksingh13/darbiter/pkg/scan"
)

// DefaultDebounce batches bursts of filesystem events into one rescan.
const DefaultDebounce = 300 * time.Millisecond

// Handler receives each completed rescan result.
type Handler func(result *scan.Result)

// Watcher rescans the configured path after filesystem changes settle.
type Watcher struct {
	service  scan.Service
	logger   *zap.SugaredLogger
	request  scan.PathRequest
	debounce time.Duration
	handler  Handler

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher that reruns req through service on changes and hands
// each result to handler. A zero debounce uses DefaultDebounce.
func New(service scan.Service, logger *zap.SugaredLogger, req scan.PathRequest, debounce time.Duration, handler Handler) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		service:  service,
		logger:   logger,
		request:  req,
		debounce: debounce,
		handler:  handler,
	}
}

// Run scans once immediately, then blocks rescanning on changes until ctx is
// cancelled. Hidden directories are not watched.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := w.addWatches(watcher); err != nil {
		return err
	}

	w.rescan(ctx)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isHidden(ev.Name) {
				continue
			}
			// New directories must be added while the event is fresh.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := watcher.Add(ev.Name); err != nil {
						w.logger.Warnw("watching new directory", "path", ev.Name, "error", err)
					}
				}
			}
			w.schedule(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("watch error", "error", err)
		}
	}
}

func (w *Watcher) addWatches(watcher *fsnotify.Watcher) error {
	info, err := os.Stat(w.request.Path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(w.request.Path))
	}
	if !w.request.Recursive {
		return watcher.Add(w.request.Path)
	}
	return filepath.Walk(w.request.Path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if isHidden(path) && path != w.request.Path {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.rescan(ctx)
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) rescan(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	result, err := w.service.ScanPath(ctx, w.request)
	if err != nil {
		w.logger.Errorw("rescan failed", "path", w.request.Path, "error", err)
		return
	}
	w.logger.Infow("rescan complete",
		"path", w.request.Path,
		"scan_id", result.ScanID,
		"findings", len(result.Findings),
		"eligibility", result.Eligibility,
	)
	if w.handler != nil {
		w.handler(result)
	}
}

// isHidden reports whether any path element starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if len(part) > 1 && part[0] == '.' {
			return true
		}
	}
	return false
}
