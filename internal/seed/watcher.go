package seed

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a seed file whenever it changes on disk. Rapid successive
// writes are collapsed into one reload.
type Watcher struct {
	path     string
	onLoad   func(Data) error
	log      *zap.Logger
	Debounce time.Duration
}

// NewWatcher returns a Watcher that calls onLoad with the parsed file after
// each change.
func NewWatcher(path string, onLoad func(Data) error, log *zap.Logger) *Watcher {
	return &Watcher{path: filepath.Clean(path), onLoad: onLoad, log: log, Debounce: defaultDebounce}
}

// Run watches until ctx is cancelled. The parent directory is watched rather
// than the file so editors that save by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.log.Info("watching seed file", zap.String("path", w.path))

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

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("seed watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	d, err := LoadFile(w.path)
	if err != nil {
		w.log.Warn("seed reload skipped", zap.Error(err))
		return
	}
	if err := w.onLoad(d); err != nil {
		w.log.Warn("seed reload rejected", zap.Error(err))
		return
	}
	w.log.Info("seed file reloaded",
		zap.Int("reviews", len(d.Reviews)),
		zap.Int("internships", len(d.Internships)))
}
