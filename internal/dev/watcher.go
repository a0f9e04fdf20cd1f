package dev

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/flexireact/flexi/internal/errors"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeRoute ChangeType = iota
	ChangeCSS
	ChangeAsset
)

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to watch. Directories are
	// watched recursively.
	Paths []string

	// RouteExtensions lists file extensions classified as route modules.
	// Defaults to ".go".
	RouteExtensions []string

	// Ignore patterns to skip (globs and path segments).
	Ignore []string

	// Debounce is the delay before a burst of events is reported.
	Debounce time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"dist",
	"tmp",
	".flexi",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors files for changes using fsnotify, reporting debounced
// batches through a callback.
type Watcher struct {
	config   WatcherConfig
	fsw      *fsnotify.Watcher
	onChange func([]Change)
	mu       sync.Mutex
	pending  map[string]Change
	timer    *time.Timer
	running  bool
	stopped  bool
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if len(config.RouteExtensions) == 0 {
		config.RouteExtensions = []string{".go"}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.New("F301").Wrap(err)
	}

	return &Watcher{
		config:  config,
		fsw:     fsw,
		pending: make(map[string]Change),
	}, nil
}

// OnChange sets the callback invoked with each debounced batch of changes.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start registers the watch paths and processes events until the context
// is cancelled or Stop is called. A stopped watcher cannot be restarted;
// create a new one.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return errors.New("F301").WithDetail("Watcher is stopped and cannot be restarted")
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	for _, p := range w.config.Paths {
		w.addRecursive(p)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
		}
	}
}

// Stop closes the underlying watcher; Start returns shortly after. The
// watcher is single-use: once stopped, Start fails.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.fsw.Close()
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// addRecursive registers a directory tree (or single file) with fsnotify.
// Missing paths are skipped; they may appear later under a watched parent.
func (w *Watcher) addRecursive(root string) {
	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if w.shouldIgnore(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			w.fsw.Add(p)
		}
		return nil
	})

	// Watch the root itself when it is a plain file.
	if !w.shouldIgnore(root) {
		w.fsw.Add(root)
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.shouldIgnore(event.Name) {
		return
	}

	// New directories need their own watch for events inside them.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addRecursive(event.Name)
			return
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[event.Name] = Change{
		Path: event.Name,
		Type: w.classifyChange(event.Name),
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.Debounce, w.flush)
}

// flush reports the pending changes, deduplicated by path.
func (w *Watcher) flush() {
	w.mu.Lock()
	callback := w.onChange
	changes := make([]Change, 0, len(w.pending))
	for _, c := range w.pending {
		changes = append(changes, c)
	}
	w.pending = make(map[string]Change)
	w.mu.Unlock()

	if callback == nil || len(changes) == 0 {
		return
	}
	callback(changes)
}

// classifyChange determines the type of change based on file extension.
func (w *Watcher) classifyChange(p string) ChangeType {
	ext := strings.ToLower(filepath.Ext(p))
	for _, routeExt := range w.config.RouteExtensions {
		if ext == strings.ToLower(routeExt) {
			return ChangeRoute
		}
	}
	switch ext {
	case ".css", ".scss", ".sass", ".less":
		return ChangeCSS
	default:
		return ChangeAsset
	}
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/") || strings.Contains(pattern, "\\")
		hasGlob := strings.ContainsAny(pattern, "*?[")

		if hasGlob {
			if hasPathSep {
				if matched, _ := path.Match(filepath.ToSlash(pattern), normalized); matched {
					return true
				}
			} else {
				if matched, _ := filepath.Match(pattern, name); matched {
					return true
				}
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

func pathHasSegment(path, segment string) bool {
	if segment == "" {
		return false
	}
	for _, part := range splitPathSegments(path) {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(path, pattern string) bool {
	pathParts := splitPathSegments(path)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}

	return false
}

func splitPathSegments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
