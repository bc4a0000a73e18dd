package scene

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads the catalog file into a Store whenever it changes. A file
// that fails to parse leaves the previous catalog in place.
type Watcher struct {
	path  string
	store *Store
	log   zerolog.Logger

	// OnReload, if set, is called after every reload attempt.
	OnReload func(c *Catalog, err error)
}

func NewWatcher(path string, store *Store, log zerolog.Logger) *Watcher {
	return &Watcher{path: path, store: store, log: log}
}

// Run watches until ctx is done. The parent directory is watched so editors
// that replace the file by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}
	target := filepath.Clean(w.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("catalog watcher error")
		}
	}
}

func (w *Watcher) reload() {
	c, err := LoadFile(w.path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("catalog reload failed, keeping previous")
	} else {
		w.store.Swap(c)
		w.log.Info().Int("scenes", c.Len()).Msg("catalog reloaded")
	}
	if w.OnReload != nil {
		w.OnReload(c, err)
	}
}
