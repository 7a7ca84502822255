package resolver

import (
	"github.com/fsnotify/fsnotify"

	"github.com/capkv/capkv/internal/capkvlog"
)

// ZoneWatcher supplements CallerResolver with operational visibility
// into zone-root lifecycle: the original Python PathResolver creates
// each root directory silently; capkv optionally surfaces
// creation/removal of entries within those roots so an operator knows
// when, say, a new plug-in zone appears on disk. This is purely
// observational — it never feeds back into Resolve().
type ZoneWatcher struct {
	watcher *fsnotify.Watcher
	log     *capkvlog.Logger
	done    chan struct{}
}

// NewZoneWatcher starts watching the given zone roots for filesystem
// events. Call Close to stop.
func NewZoneWatcher(zoneRoots []string, log *capkvlog.Logger) (*ZoneWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, root := range zoneRoots {
		if err := w.Add(root); err != nil {
			w.Close()
			return nil, err
		}
	}

	zw := &ZoneWatcher{watcher: w, log: log, done: make(chan struct{})}
	go zw.run()
	return zw, nil
}

func (zw *ZoneWatcher) run() {
	for {
		select {
		case event, ok := <-zw.watcher.Events:
			if !ok {
				return
			}
			switch {
			case event.Op&fsnotify.Create != 0:
				zw.log.Infof("zone entry created: %s", event.Name)
			case event.Op&fsnotify.Remove != 0:
				zw.log.Warnf("zone entry removed: %s", event.Name)
			case event.Op&fsnotify.Rename != 0:
				zw.log.Warnf("zone entry renamed away: %s", event.Name)
			}
		case err, ok := <-zw.watcher.Errors:
			if !ok {
				return
			}
			zw.log.Errorf("zone watcher error: %v", err)
		case <-zw.done:
			return
		}
	}
}

// Close stops the watcher.
func (zw *ZoneWatcher) Close() error {
	close(zw.done)
	return zw.watcher.Close()
}
