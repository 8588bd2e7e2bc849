package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/content"
	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/domain"
)

// WatcherStats reports reload activity.
type WatcherStats struct {
	Events    int
	Reloads   int
	Failures  int
	LastError string
	LastEvent time.Time
}

// Watcher reloads a catalog file into a Holder whenever the file changes.
//
// The parent directory is watched rather than the file itself so editors that
// save by renaming a temporary file over the original keep triggering reloads.
// A file that fails to decode or validate leaves the current catalog in place.
type Watcher struct {
	path     string
	holder   *Holder
	debounce time.Duration
	opts     []domain.Option

	ready     chan struct{}
	readyOnce sync.Once

	mu    sync.Mutex
	stats WatcherStats
}

// NewWatcher creates a watcher for path that publishes into holder.
func NewWatcher(path string, holder *Holder, debounce time.Duration, opts ...domain.Option) (*Watcher, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is required")
	}
	if holder == nil {
		return nil, errors.New("catalog holder is required")
	}
	if debounce <= 0 {
		debounce = DefaultReloadDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		holder:   holder,
		debounce: debounce,
		opts:     opts,
		ready:    make(chan struct{}),
	}, nil
}

// Ready is closed once the directory watch is registered.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Stats returns a snapshot of reload counters.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.readyOnce.Do(func() { close(w.ready) })
	log.Printf("watching catalog %s", w.path)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.recordEvent()
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("catalog watcher: %v", err)
		case <-fire:
			fire = nil
			_ = w.Reload()
		}
	}
}

// Reload decodes the watched file and swaps it into the holder.
func (w *Watcher) Reload() error {
	catalog, err := content.Load(w.path, w.opts...)
	if err != nil {
		w.mu.Lock()
		w.stats.Failures++
		w.stats.LastError = err.Error()
		w.mu.Unlock()
		log.Printf("reload catalog: %v (keeping version %d)", err, w.holder.Version())
		return err
	}
	if err := w.holder.Replace(catalog); err != nil {
		return err
	}
	w.mu.Lock()
	w.stats.Reloads++
	w.stats.LastError = ""
	w.mu.Unlock()

	if audit := catalog.Audit(); !audit.Empty() {
		log.Printf("reloaded catalog %s (version %d): unreferenced pools %v, unassigned slots %v",
			catalog.ID(), w.holder.Version(), audit.UnreferencedPools, audit.UnassignedSlots)
	} else {
		log.Printf("reloaded catalog %s (version %d)", catalog.ID(), w.holder.Version())
	}
	return nil
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}

func (w *Watcher) recordEvent() {
	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEvent = time.Now()
	w.mu.Unlock()
}
