// Package watcher polls a folder for newly arrived media files and
// hands each one to a processing callback once its size has settled.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/magnusua/WhisperFastGUI/internal/logging"
	"github.com/magnusua/WhisperFastGUI/internal/media"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultStableDelay  = time.Second
)

// Handler processes one arrived file. Errors are logged and the file
// is not retried.
type Handler func(ctx context.Context, path string) error

// Options tune the poll cadence. Zero values take the defaults.
type Options struct {
	PollInterval time.Duration
	StableDelay  time.Duration
}

// Watcher monitors one directory. Files present when it starts are
// treated as already handled; only later arrivals trigger the handler.
type Watcher struct {
	dir          string
	handler      Handler
	logger       *slog.Logger
	pollInterval time.Duration
	stableDelay  time.Duration

	mu      sync.Mutex
	running bool
	seen    map[string]struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New builds a watcher over dir calling handler for each arrival.
func New(dir string, handler Handler, logger *slog.Logger, opts Options) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	stable := opts.StableDelay
	if stable <= 0 {
		stable = defaultStableDelay
	}
	return &Watcher{
		dir:          dir,
		handler:      handler,
		logger:       logging.WithComponent(logger, "watcher"),
		pollInterval: poll,
		stableDelay:  stable,
		seen:         make(map[string]struct{}),
	}
}

// Start snapshots the directory and begins polling. It returns an
// error if the directory is not readable or the watcher already runs.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("watcher already running")
	}

	info, err := os.Stat(w.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("watch path is not a directory")
	}

	existing := media.ScanDirectory(w.dir, false)
	w.seen = make(map[string]struct{}, len(existing))
	for _, path := range existing {
		w.seen[path] = struct{}{}
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true

	w.logger.Info("watching folder",
		logging.String(logging.FieldWatchDir, w.dir),
		logging.Int("existing_files", len(existing)))

	w.wg.Add(1)
	go w.loop(runCtx)
	return nil
}

// Stop halts polling and waits for an in-flight handler to return.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll picks up at most one new file per cycle; further arrivals wait
// for the next tick so each file is processed alone.
func (w *Watcher) poll(ctx context.Context) {
	paths := media.ScanDirectory(w.dir, false)

	w.mu.Lock()
	current := make(map[string]struct{}, len(paths))
	var fresh []string
	for _, path := range paths {
		current[path] = struct{}{}
		if _, ok := w.seen[path]; !ok {
			fresh = append(fresh, path)
		}
	}
	// Forget deleted files so a later copy with the same name counts
	// as a new arrival.
	for path := range w.seen {
		if _, ok := current[path]; !ok {
			delete(w.seen, path)
		}
	}
	w.mu.Unlock()

	if len(fresh) == 0 {
		return
	}
	sort.Strings(fresh)
	path := fresh[0]

	if !w.awaitStable(ctx, path) {
		return
	}

	w.mu.Lock()
	w.seen[path] = struct{}{}
	w.mu.Unlock()

	w.logger.Info("new file arrived", logging.String(logging.FieldJobPath, path))
	if err := w.handler(ctx, path); err != nil {
		w.logger.Error("process arrived file failed", logging.Error(err),
			logging.String(logging.FieldJobPath, path))
	}
}

// awaitStable waits until two size probes a delay apart agree, so a
// file still being copied in is not picked up half written.
func (w *Watcher) awaitStable(ctx context.Context, path string) bool {
	last := int64(-1)
	for {
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		if info.Size() == last {
			return true
		}
		last = info.Size()

		select {
		case <-ctx.Done():
			return false
		case <-time.After(w.stableDelay):
		}
	}
}
