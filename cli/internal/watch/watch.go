// Package watch re-runs a seed when its input file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of writes from editors and copy tools
const DefaultDebounce = 500 * time.Millisecond

// Watcher invokes a callback after the watched file settles
type Watcher struct {
	file     string
	debounce time.Duration
	callback func(ctx context.Context) error
	onError  func(error)
	watcher  *fsnotify.Watcher
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets how long the file must stay quiet before the callback runs
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler receives callback and watcher errors; they never stop the loop
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// NewWatcher creates a watcher for file. The parent directory is watched so
// files replaced by rename are still seen.
func NewWatcher(file string, callback func(ctx context.Context) error, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	w := &Watcher{
		file:     absPath,
		debounce: DefaultDebounce,
		callback: callback,
		onError:  func(error) {},
		watcher:  fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run blocks until ctx is done, calling the callback once per settled change.
// The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	var debounceCh <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			timer.Reset(w.debounce)
			debounceCh = timer.C

		case <-debounceCh:
			debounceCh = nil
			if err := w.callback(ctx); err != nil {
				w.onError(err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.onError(fmt.Errorf("watch: %w", err))

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	eventPath, err := filepath.Abs(event.Name)
	return err == nil && eventPath == w.file
}

// Watch runs fn once, then again after every settled change to file, until
// ctx is done. An error from the first run is returned.
func Watch(ctx context.Context, file string, fn func(ctx context.Context) error, opts ...Option) error {
	w, err := NewWatcher(file, fn, opts...)
	if err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		w.watcher.Close()
		return fmt.Errorf("initial run failed: %w", err)
	}
	return w.Run(ctx)
}
