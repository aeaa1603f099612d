// Package inbox watches a directory for JSON track batches and syncs each
// file that lands in it.
//
// A batch file is processed once its writes have settled. Afterwards it is
// renamed with a .done suffix, or .failed when it could not be decoded or
// synced, so it is never picked up twice.
package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driving"
	"github.com/custodia-labs/opus/internal/logger"
)

// DefaultSettle is how long a file must go without writes before it is read.
const DefaultSettle = 500 * time.Millisecond

// Suffixes appended to processed batch files.
const (
	DoneSuffix   = ".done"
	FailedSuffix = ".failed"
)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("inbox watcher closed")

// Result reports the outcome of one batch file.
type Result struct {
	Path   string
	Report domain.SyncReport
	Err    error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// Watcher syncs JSON batch files dropped into a directory.
type Watcher struct {
	dir    string
	sync   driving.SyncService
	settle time.Duration

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a watcher for dir.
func New(dir string, svc driving.SyncService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:    dir,
		sync:   svc,
		settle: DefaultSettle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching and returns a channel of per-file results.
// Batch files already present are processed first. The channel is closed
// when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Result, error) {
	info, err := os.Stat(w.dir)
	if err != nil {
		return nil, fmt.Errorf("inbox dir error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inbox dir error: %s is not a directory", w.dir)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	if w.watcher != nil {
		return nil, errors.New("inbox watcher already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close() //nolint:errcheck
		return nil, fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.watcher = fsw

	pending := make(map[string]time.Time)
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("Failed to list inbox %s: %v", w.dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(w.dir, e.Name())
		if !e.IsDir() && isBatchFile(path) {
			pending[path] = time.Time{}
		}
	}

	out := make(chan Result)
	go w.loop(ctx, fsw, pending, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, pending map[string]time.Time, out chan<- Result) {
	defer close(out)

	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if path, ok := w.handleFsEvent(event); ok {
				pending[path] = time.Now()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Inbox watch error: %v", err)
		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				delete(pending, path)

				result, ok := w.processFile(ctx, path)
				if !ok {
					continue
				}
				select {
				case out <- result:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleFsEvent returns the batch file an event refers to, if any.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if !isBatchFile(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

// processFile syncs one batch and renames it. It reports false when the
// file vanished before it could be read.
func (w *Watcher) processFile(ctx context.Context, path string) (Result, bool) {
	log := logger.With("inbox", filepath.Base(path))

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Result{}, false
	}

	result := Result{Path: path}
	if err != nil {
		result.Err = fmt.Errorf("reading batch: %w", err)
		return w.finish(log, result), true
	}

	var tracks []domain.TrackInput
	if err := json.Unmarshal(data, &tracks); err != nil {
		result.Err = fmt.Errorf("%w: decoding batch: %w", domain.ErrInvalidInput, err)
		return w.finish(log, result), true
	}

	log.Info("Syncing %d tracks from inbox", len(tracks))
	report, err := w.sync.Sync(ctx, tracks)
	result.Report = report
	if err != nil {
		result.Err = fmt.Errorf("syncing batch: %w", err)
	}
	return w.finish(log, result), true
}

func (w *Watcher) finish(log *logger.Entry, result Result) Result {
	suffix := DoneSuffix
	if result.Err != nil {
		suffix = FailedSuffix
		log.Warn("Batch failed: %v", result.Err)
	} else {
		log.Info("Batch done: %d added, %d existing, %d skipped",
			result.Report.Added, result.Report.Existing, result.Report.Skipped)
	}

	if err := os.Rename(result.Path, result.Path+suffix); err != nil {
		log.Warn("Failed to mark batch %s: %v", suffix, err)
		result.Err = errors.Join(result.Err, fmt.Errorf("marking batch: %w", err))
	}
	return result
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

// isBatchFile reports whether path names a visible .json file.
func isBatchFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".json")
}
