// Package watch rebuilds the content provider when content files change on
// disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"content-hub/internal/contentfile"
	"content-hub/internal/discovery"
	"content-hub/internal/logger"
)

const (
	DefaultDebounce = 500 * time.Millisecond
	// maxWatchDepth bounds how far below each directory subdirectories are
	// added; fsnotify is not recursive.
	maxWatchDepth = 3
)

// Reloader calls rebuild once per burst of content file changes.
type Reloader struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	rebuild  func(ctx context.Context) error
	log      *logger.Logger
	debounce time.Duration
	pending  time.Time
	reloads  int
	watched  []string
}

func New(dirs []string, debounce time.Duration, rebuild func(ctx context.Context) error, log *logger.Logger) (*Reloader, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	r := &Reloader{
		watcher:  w,
		rebuild:  rebuild,
		log:      log.With("component", "watch"),
		debounce: debounce,
	}
	seen := map[string]bool{}
	for _, d := range dirs {
		r.add(d, 0, seen)
	}
	return r, nil
}

func (r *Reloader) add(dir string, depth int, seen map[string]bool) {
	if dir == "" || seen[dir] {
		return
	}
	seen[dir] = true
	if err := r.watcher.Add(dir); err != nil {
		r.log.Warn("cannot watch directory", "dir", dir, "error", err)
		return
	}
	r.mu.Lock()
	r.watched = append(r.watched, dir)
	r.mu.Unlock()
	if depth >= maxWatchDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() && !discovery.SkipDir(e.Name()) {
			r.add(filepath.Join(dir, e.Name()), depth+1, seen)
		}
	}
}

// Watched lists the directories actually being watched.
func (r *Reloader) Watched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.watched...)
}

// Reloads counts completed rebuilds.
func (r *Reloader) Reloads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reloads
}

// Run blocks until ctx is done, then closes the watcher.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	tick := r.debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	r.log.Info("watching content", "dirs", len(r.Watched()))
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Error("watcher error", "error", err)

		case <-ticker.C:
			r.flush(ctx)
		}
	}
}

func (r *Reloader) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if event.Has(fsnotify.Create) {
		if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() && !discovery.SkipDir(filepath.Base(event.Name)) {
			r.add(event.Name, maxWatchDepth, map[string]bool{})
			return
		}
	}
	if !contentfile.Supported(event.Name) {
		return
	}
	r.log.Debug("content changed", "path", event.Name, "op", event.Op.String())

	r.mu.Lock()
	r.pending = time.Now()
	r.mu.Unlock()
}

func (r *Reloader) flush(ctx context.Context) {
	r.mu.Lock()
	if r.pending.IsZero() || time.Since(r.pending) < r.debounce {
		r.mu.Unlock()
		return
	}
	r.pending = time.Time{}
	r.mu.Unlock()

	if err := r.rebuild(ctx); err != nil {
		r.log.Error("reload failed", "error", err)
		return
	}
	r.mu.Lock()
	r.reloads++
	r.mu.Unlock()
	r.log.Info("content reloaded")
}
