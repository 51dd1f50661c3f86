package files

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/cala/engine/core"
)

// watcher follows a directory tree with fsnotify. fsnotify is not recursive,
// so new directories are added as they appear.
type watcher struct {
	root     string
	fsnotify *fsnotify.Watcher
	journal  *core.Journal
	onChange func(name string)
	done     chan struct{}
	stopped  chan struct{}
}

func newWatcher(root string, journal *core.Journal, onChange func(string)) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{
		root:     root,
		fsnotify: fw,
		journal:  journal,
		onChange: onChange,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	if err := w.watchRecursive(root); err != nil {
		fw.Close()
		return nil, err
	}
	go w.start()
	return w, nil
}

func (w *watcher) watchRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsnotify.Add(p)
		}
		return nil
	})
}

func (w *watcher) start() {
	defer close(w.stopped)
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			w.handle(e)
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			w.journal.Warn("file watch error", "err", err)
		case <-w.done:
			return
		}
	}
}

func (w *watcher) handle(e fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(e.Name), tmpPrefix) {
		return
	}
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := w.watchRecursive(e.Name); err != nil {
				w.journal.Warn("failed to watch directory", "dir", e.Name, "err", err)
			}
			return
		}
	}
	if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	rel, err := filepath.Rel(w.root, e.Name)
	if err != nil {
		return
	}
	w.onChange(filepath.ToSlash(rel))
}

func (w *watcher) Close() error {
	close(w.done)
	err := w.fsnotify.Close()
	<-w.stopped
	return err
}
