package hotswap

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/ZenLiuCN/sdutils"
	"github.com/fsnotify/fsnotify"
)

// Watcher turns the mount path appearing or vanishing into Attach and Eject events of a Module.
type Watcher struct {
	module  *Module
	lib     *sdutils.Library
	watcher *fsnotify.Watcher
	mounted bool
	debug   bool
}

// NewWatcher watches the parent directory of path, mount state is probed through lib.
//
// Only events on the parent directory trigger a probe: path being created, removed or renamed.
// Mounting over a directory that already exists changes nothing in the parent and goes unseen,
// call [Watcher.Check] to catch such mounts.
func NewWatcher(m *Module, lib *sdutils.Library, path string, debug ...bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(filepath.Clean(path))
	if err = fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w := &Watcher{module: m, lib: lib, watcher: fw, debug: len(debug) > 0 && debug[0]}
	w.mounted = w.probe()
	return w, nil
}

func (w *Watcher) probe() bool {
	var mounted bool
	if st := w.lib.IsSdCardMounted(&mounted); st != sdutils.Success {
		return false
	}
	return mounted
}

// Mounted is the last observed mount state.
func (w *Watcher) Mounted() bool {
	return w.mounted
}

// Check probes the mount state and dispatches an event when it changed.
func (w *Watcher) Check() {
	mounted := w.probe()
	if mounted == w.mounted {
		return
	}
	w.mounted = mounted
	if w.debug {
		log.Printf("sd card mounted: %v", mounted)
	}
	if mounted {
		w.module.Attach()
	} else {
		w.module.Eject()
	}
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.debug {
				log.Printf("fs event: %s", ev)
			}
			w.Check()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}

// Close stops watching, Run returns once the event channels are closed.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
