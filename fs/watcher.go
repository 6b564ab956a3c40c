package fs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/esteban-rocha/svgview"
	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned when adding paths to a closed Watcher.
var ErrWatcherClosed = errors.New("watcher closed")

var _ svgview.Notifier = (*Watcher)(nil)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithPatterns sets the glob patterns, relative to each watched directory,
// that select which files produce notifications. Defaults to DefaultPattern.
func WithPatterns(patterns ...string) WatcherOption {
	return func(w *Watcher) {
		w.patterns = patterns
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// Watcher reports modifications of files on disk, independently of any
// editor buffer. Write and create events for matching files are delivered to
// subscribers as file URIs.
type Watcher struct {
	fsw      *fsnotify.Watcher
	patterns []string
	logger   *slog.Logger

	mu     sync.Mutex
	dirs   map[string]string // watched directory -> root it was added under
	files  map[string]bool   // individually watched files
	subs   map[int]func(svgview.URI)
	nextID int
	closed bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts a watcher. Call Close to release it.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		patterns: []string{DefaultPattern},
		logger:   slog.Default(),
		dirs:     make(map[string]string),
		files:    make(map[string]bool),
		subs:     make(map[int]func(svgview.URI)),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, p := range w.patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern: %s", p)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Add watches path. Directories are watched recursively and filtered by the
// configured patterns; a single file is always reported.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}

	if !info.IsDir() {
		dir := filepath.Dir(abs)
		if err := w.watchDirLocked(dir, ""); err != nil {
			return err
		}
		w.files[abs] = true
		return nil
	}
	return w.addTreeLocked(abs, abs)
}

func (w *Watcher) addTreeLocked(dir, root string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return w.watchDirLocked(p, root)
	})
}

func (w *Watcher) watchDirLocked(dir, root string) error {
	if existing, ok := w.dirs[dir]; ok {
		if existing == "" && root != "" {
			w.dirs[dir] = root
		}
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.dirs[dir] = root
	return nil
}

// Subscribe registers fn for change notifications.
func (w *Watcher) Subscribe(fn func(svgview.URI)) func() {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, id)
			w.mu.Unlock()
		})
	}
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watch error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	name := filepath.Clean(ev.Name)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	root, tracked := w.dirs[filepath.Dir(name)]
	if ev.Has(fsnotify.Create) && tracked && root != "" {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if err := w.addTreeLocked(name, root); err != nil {
				w.logger.Warn("watch new directory", "dir", name, "err", err)
			}
			w.mu.Unlock()
			return
		}
	}
	matched := w.files[name] || (tracked && root != "" && w.matches(root, name))
	var subs []func(svgview.URI)
	if matched {
		for _, fn := range w.subs {
			subs = append(subs, fn)
		}
	}
	w.mu.Unlock()

	if !matched {
		return
	}
	uri := FileURI(name)
	w.logger.Debug("file changed", "path", name)
	for _, fn := range subs {
		fn(uri)
	}
}

func (w *Watcher) matches(root, name string) bool {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
