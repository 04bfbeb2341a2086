package starter

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// SceneWatcher reports changes to a set of files. It watches their
// directories, since editors often replace a file instead of writing it in
// place. Events carry the absolute path and are sent once a file has been
// quiet for reloadDebounce.
type SceneWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

func NewSceneWatcher(paths ...string) (*SceneWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
		dirs[dir] = true
	}

	watcher := &SceneWatcher{
		watcher: w,
		files:   files,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *SceneWatcher) Close() error {
	var err error
	w.once.Do(func() {
		if w.closeCh != nil {
			close(w.closeCh)
		}
		if w.watcher != nil {
			err = w.watcher.Close()
		}
	})
	return err
}

func (w *SceneWatcher) run() {
	// one timer per file; every change restarts it, so a burst of writes
	// is reported once, after the last one
	timers := make(map[string]*time.Timer)
	due := make(chan string, 16)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !w.files[name] {
				continue
			}
			if t, ok := timers[name]; ok {
				t.Reset(reloadDebounce)
				continue
			}
			timers[name] = time.AfterFunc(reloadDebounce, func() {
				select {
				case due <- name:
				case <-w.closeCh:
				}
			})
		case name := <-due:
			delete(timers, name)
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				// the loop has not drained the previous error yet
			}
		case <-w.closeCh:
			return
		}
	}
}

// SceneWatchModule installs a SceneWatcher for Path. A watcher that cannot
// start is logged and skipped.
type SceneWatchModule struct {
	Path string
}

func (m SceneWatchModule) Install(app *App, cmd *Commands) {
	if m.Path == "" {
		return
	}
	w, err := NewSceneWatcher(m.Path)
	if err != nil {
		app.Logger().Warnf("watch %s: %v", m.Path, err)
		return
	}
	cmd.AddResources(w)
	app.Logger().Infof("watching %s", m.Path)
}
