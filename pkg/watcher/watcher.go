// Package watcher reloads walkthroughs while they are being written. It
// watches a single file with fsnotify and falls back to polling where
// notifications are unreliable.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/codewalk/pkg/debug"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = time.Second

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithOnChange sets the callback invoked when the file changes.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// Watcher reports changes to one walkthrough file.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()
	onError      func(error)
	forcePoll    bool

	mu        sync.RWMutex
	fsType    FilesystemType
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	polling   bool
	lastMtime time.Time
	lastSize  int64
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	started   bool

	changeCh chan struct{}
}

// NewWatcher creates a watcher for the given path. The file does not need to
// exist yet.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:         absPath,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		onError:      func(error) {},
		changeCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching. Watching ends when ctx is cancelled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	info, err := os.Stat(w.path)
	switch {
	case err == nil:
		w.lastMtime, w.lastSize = info.ModTime(), info.Size()
	case os.IsPermission(err):
		return ErrPermission
	default:
		w.lastMtime, w.lastSize = time.Time{}, 0
	}

	w.fsType = DetectFilesystemType(w.path)
	w.polling = w.forcePoll || envBool("CODEWALK_FORCE_POLL") || isRemoteFilesystem(w.fsType)

	ctx, w.cancel = context.WithCancel(ctx)

	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			// The directory, not the file: editors replace files on save.
			if err := fsw.Add(filepath.Dir(w.path)); err != nil {
				fsw.Close()
				w.polling = true
			} else {
				w.fsWatcher = fsw
			}
		} else {
			w.polling = true
		}
	}

	w.wg.Add(1)
	if w.polling {
		go w.watchPolling(ctx)
	} else {
		go w.watchFsnotify(ctx, w.fsWatcher)
	}

	debug.Log("watcher: %s (fs=%s, polling=%v)", w.path, w.fsType, w.polling)
	w.started = true
	return nil
}

// Stop stops watching and waits for the watch goroutine to exit. A pending
// debounced change is dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.mu.Unlock()

	w.wg.Wait()
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed returns a channel that receives after each debounced change. It
// holds at most one pending signal.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// FilesystemType returns the classification made at Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the polling interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func (w *Watcher) watchFsnotify(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	target := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debouncer.Trigger(w.notifyChange)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	info, err := os.Stat(w.path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			w.mu.Lock()
			hadFile := !w.lastMtime.IsZero()
			w.lastMtime, w.lastSize = time.Time{}, 0
			w.mu.Unlock()
			if hadFile {
				w.onError(ErrFileRemoved)
			}
		case os.IsPermission(err):
			w.onError(ErrPermission)
		default:
			w.onError(err)
		}
		return
	}

	w.mu.Lock()
	changed := !info.ModTime().Equal(w.lastMtime) || info.Size() != w.lastSize
	w.lastMtime, w.lastSize = info.ModTime(), info.Size()
	w.mu.Unlock()

	if changed {
		w.debouncer.Trigger(w.notifyChange)
	}
}

func (w *Watcher) notifyChange() {
	if !w.IsStarted() {
		return
	}
	debug.Log("watcher: %s changed", w.path)
	w.onChange()

	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
