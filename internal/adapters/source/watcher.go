package source

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/rallyboard/pkg/logger"
	"github.com/okian/rallyboard/pkg/metrics"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher calls a function after the watched file settles following a change.
// The parent directory is watched so editors that replace the file on save
// are still seen.
type Watcher struct {
	mu       sync.Mutex
	path     string
	dir      string
	debounce time.Duration
	onChange func(context.Context)
	log      logger.Logger

	fs      *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets how long the file must be quiet before onChange runs.
// Zero calls onChange on every event.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l logger.Logger) WatchOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// NewWatcher prepares a watcher for path. Call Start to begin watching.
func NewWatcher(path string, onChange func(context.Context), opts ...WatchOption) (*Watcher, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w := &Watcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		debounce: defaultDebounce,
		onChange: onChange,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Start begins watching. It is non-blocking and a no-op when already running.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if w.log == nil {
		w.log = logger.Get().Named("watcher")
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(w.dir); err != nil {
		_ = fs.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.fs = fs
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	go w.run(ctx)

	w.log.Info(ctx, "watching data file", logger.String("path", w.path),
		logger.Duration("debounce", w.debounce))
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	fs := w.fs
	w.mu.Unlock()

	<-done
	return fs.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

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
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			metrics.RecordWatchEvent(event.Op.String())
			w.log.Debug(ctx, "data file event", logger.String("op", event.Op.String()))

			if w.debounce == 0 {
				w.notify(ctx)
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.notify(ctx)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error(ctx, "watcher error", logger.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0
}

func (w *Watcher) notify(ctx context.Context) {
	if w.onChange != nil {
		w.onChange(ctx)
	}
}
