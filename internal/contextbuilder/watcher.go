package contextbuilder

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes workspace filesystem events so the file index (an
// external collaborator, §6) can be kept current between agent
// invocations without a full rescan. The Context Builder itself does not
// consume these events directly; it treats the index file as opaque.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	onChange  func(path string)
}

// NewWatcher creates a Watcher that watches no directories yet; the
// caller registers each directory via Add. onChange is invoked for each
// write/create/remove/rename event.
func NewWatcher(onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fsWatcher: fw, onChange: onChange}, nil
}

// Add registers dir for watching.
func (w *Watcher) Add(dir string) error {
	return w.fsWatcher.Add(dir)
}

// Run consumes events until Close is called.
func (w *Watcher) Run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.onChange(event.Name)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Warn("workspace watcher error", "error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
