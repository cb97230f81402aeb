// Package assets maintains an in-memory index of the files in the upload
// directory. A filesystem watcher keeps the index current when files are
// added or removed out of band (rsync, manual cleanup), so listing assets
// never hits the disk on the request path.
package assets

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Index watches dir and tracks its regular files by name.
type Index struct {
	dir     string
	log     *zap.Logger
	watcher *fsnotify.Watcher

	mu    sync.RWMutex
	files map[string]struct{}
}

// New scans dir (creating it if needed) and starts the watcher.
func New(dir string, log *zap.Logger) (*Index, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	idx := &Index{
		dir:     dir,
		log:     log,
		watcher: watcher,
		files:   make(map[string]struct{}),
	}
	if err := idx.rescan(); err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	go idx.loop()
	return idx, nil
}

// Dir returns the watched directory.
func (i *Index) Dir() string { return i.dir }

// List returns the indexed file names, sorted.
func (i *Index) List() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	names := make([]string, 0, len(i.files))
	for name := range i.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is currently indexed.
func (i *Index) Has(name string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.files[name]
	return ok
}

// Close stops the watcher.
func (i *Index) Close() error { return i.watcher.Close() }

func (i *Index) rescan() error {
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		return err
	}
	files := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), ".") {
			files[entry.Name()] = struct{}{}
		}
	}
	i.mu.Lock()
	i.files = files
	i.mu.Unlock()
	return nil
}

func (i *Index) loop() {
	for {
		select {
		case event, okEv := <-i.watcher.Events:
			if !okEv {
				return
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") {
				continue
			}
			switch {
			case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
				i.mu.Lock()
				i.files[name] = struct{}{}
				i.mu.Unlock()
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				i.mu.Lock()
				delete(i.files, name)
				i.mu.Unlock()
			}
		case err, okErr := <-i.watcher.Errors:
			if !okErr {
				return
			}
			i.log.Warn("asset watcher error", zap.Error(err))
		}
	}
}
