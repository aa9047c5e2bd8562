package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Config when its file changes on disk, so token and
// repo edits take effect without restarting the daemon. The containing
// directory is watched rather than the file itself, since editors
// replace files via rename.
type Watcher struct {
	cfg      *Config
	watcher  *fsnotify.Watcher
	onReload func()
	logger   *log.Logger
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher starts watching the config file. onReload, if non-nil, is
// invoked after every successful reload.
func NewWatcher(cfg *Config, onReload func()) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(cfg.FilePath())
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w := &Watcher{
		cfg:      cfg,
		watcher:  watcher,
		onReload: onReload,
		logger:   log.WithPrefix("config"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	go w.run()
	return w, nil
}

// Stop terminates the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
	})
	<-w.doneCh
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	target := w.cfg.FilePath()
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != target {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if err := w.cfg.Reload(); err != nil {
				w.logger.Warn("config reload failed", "err", err)
				continue
			}
			w.logger.Info("config reloaded", "path", target)
			if w.onReload != nil {
				w.onReload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}
