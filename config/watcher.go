package config

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/cityplan/simcore/logging"
)

// Watcher re-reads a Config from disk whenever its backing file changes,
// pushing the new Config onto a channel -- grounded on the teacher's
// config.Watcher (NewWatcher(ctx, cfg, logger), Config() <-chan *Config),
// generalized to use github.com/fsnotify/fsnotify directly rather than the
// teacher's internal poll loop.
type Watcher struct {
	ch     chan *Config
	notify *fsnotify.Watcher
	logger logging.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewWatcher watches cfg.ConfigFilePath (a no-op if empty) and emits a
// freshly re-read Config on every write event. The returned Watcher must
// be closed to release the fsnotify handle.
func NewWatcher(ctx context.Context, cfg *Config, logger logging.Logger) (*Watcher, error) {
	w := &Watcher{
		ch:     make(chan *Config),
		logger: logger,
		done:   make(chan struct{}),
	}
	if cfg.ConfigFilePath == "" {
		close(w.done)
		return w, nil
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := notify.Add(cfg.ConfigFilePath); err != nil {
		notify.Close()
		return nil, err
	}
	w.notify = notify

	go w.run(ctx, cfg.ConfigFilePath)
	return w, nil
}

func (w *Watcher) run(ctx context.Context, path string) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.notify.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			next, err := Read(path)
			if err != nil {
				w.logger.Warnw("config reload failed, keeping previous config", "error", err)
				continue
			}
			select {
			case w.ch <- next:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.notify.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("config watcher error", "error", err)
		}
	}
}

// Config returns the channel of reloaded Configs.
func (w *Watcher) Config() <-chan *Config {
	return w.ch
}

// Close stops the watcher and releases its fsnotify handle.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		if w.notify != nil {
			err = w.notify.Close()
		}
	})
	return err
}
