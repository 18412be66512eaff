package database

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mobile-next/autotype/utils"
)

// DefaultReloadDebounce collapses the burst of events an editor save makes.
const DefaultReloadDebounce = 100 * time.Millisecond

// Watcher reloads a database file whenever it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	onReload func(*Database)

	watcher *fsnotify.Watcher
	closeCh chan struct{}
	wg      sync.WaitGroup

	closeOnce sync.Once
}

// Watch starts watching path. onReload runs on the watcher goroutine with
// every successfully reloaded database; a file that fails to parse keeps the
// previous database and is only logged.
func Watch(path string, debounce time.Duration, onReload func(*Database)) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// editors often replace the file, so watch its directory
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	if debounce <= 0 {
		debounce = DefaultReloadDebounce
	}

	w := &Watcher{
		path:     absPath,
		debounce: debounce,
		onReload: onReload,
		watcher:  fsw,
		closeCh:  make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()

	utils.Verbose("Watching database %s for changes", absPath)
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			utils.Warn("Database watcher error: %v", err)

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	db, err := Load(w.path)
	if err != nil {
		utils.Warn("Keeping previous database: %v", err)
		return
	}

	utils.Info("Reloaded database %s (%d entries)", w.path, len(db.entries))
	if w.onReload != nil {
		w.onReload(db)
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
