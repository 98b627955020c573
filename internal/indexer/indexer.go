// Package indexer is the minimal reference implementation of the file
// index external collaborator: it watches the workspace for changes and
// keeps an opaque JSON index file current. The core agent never reads
// this file directly — it treats the index boundary as external, per
// the indexing/search concerns this tool delegates rather than owns.
package indexer

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nextlevelbuilder/codeagent/internal/contextbuilder"
)

// Entry describes one indexed file.
type Entry struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Index is a workspace-relative path -> Entry map, persisted as JSON.
type Index struct {
	mu        sync.Mutex
	indexPath string
	workspace string
	entries   map[string]Entry
	watcher   *contextbuilder.Watcher
}

// New loads an existing index from indexPath if present, or starts
// empty.
func New(workspace, indexPath string) (*Index, error) {
	idx := &Index{
		indexPath: indexPath,
		workspace: workspace,
		entries:   make(map[string]Entry),
	}
	if err := idx.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) load() error {
	data, err := os.ReadFile(idx.indexPath)
	if err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	idx.entries = entries
	return nil
}

func (idx *Index) save() error {
	idx.mu.Lock()
	data, err := json.MarshalIndent(idx.entries, "", "  ")
	idx.mu.Unlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(idx.indexPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(idx.indexPath, data, 0o644)
}

// Scan walks the workspace once, populating the index from scratch and
// persisting it. Used by "codeagent init" to build the initial index
// before the watcher takes over incremental updates.
func (idx *Index) Scan() error {
	entries := make(map[string]Entry)
	err := filepath.WalkDir(idx.workspace, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		rel, relErr := filepath.Rel(idx.workspace, path)
		if relErr != nil {
			rel = path
		}
		entries[rel] = Entry{Path: rel, Size: info.Size(), ModTime: info.ModTime()}
		return nil
	})
	if err != nil {
		return err
	}

	idx.mu.Lock()
	idx.entries = entries
	idx.mu.Unlock()

	return idx.save()
}

// Start begins watching the workspace for changes, updating the index
// on every write/create/remove/rename event and flushing it to disk.
// The returned stop function shuts down the watcher; it does not block.
func (idx *Index) Start() (stop func() error, err error) {
	w, err := contextbuilder.NewWatcher(idx.onChange)
	if err != nil {
		return nil, err
	}
	if err := w.Add(idx.workspace); err != nil {
		w.Close()
		return nil, err
	}
	idx.watcher = w

	go w.Run()

	return w.Close, nil
}

func (idx *Index) onChange(path string) {
	rel, err := filepath.Rel(idx.workspace, path)
	if err != nil {
		rel = path
	}

	info, statErr := os.Stat(path)
	idx.mu.Lock()
	if statErr != nil {
		delete(idx.entries, rel)
	} else {
		idx.entries[rel] = Entry{Path: rel, Size: info.Size(), ModTime: info.ModTime()}
	}
	idx.mu.Unlock()

	if err := idx.save(); err != nil {
		slog.Warn("indexer: failed to persist index", "error", err)
	}
}

// Entries returns a snapshot of the current index.
func (idx *Index) Entries() map[string]Entry {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	out := make(map[string]Entry, len(idx.entries))
	for k, v := range idx.entries {
		out[k] = v
	}
	return out
}

// Len reports the number of indexed entries.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.entries)
}
