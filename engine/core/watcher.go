package core

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reloads an EngineConfig whenever its file is written or
// re-created. Reloaded configs are delivered on Updates; the consumer applies
// them between frames so no system is mutated from the watcher goroutine.
type ConfigWatcher struct {
	path     string
	fsnotify *fsnotify.Watcher
	updates  chan *EngineConfig
	done     chan struct{}
	wg       sync.WaitGroup

	mutex    sync.Mutex
	isClosed bool
}

func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors usually replace the file, so watch the directory and filter.
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}
	cw := &ConfigWatcher{
		path:     abs,
		fsnotify: fsWatch,
		updates:  make(chan *EngineConfig, 1),
		done:     make(chan struct{}),
	}
	cw.wg.Add(1)
	go cw.start()
	return cw, nil
}

// Updates yields every successfully reloaded config. Only the latest pending
// config is kept.
func (cw *ConfigWatcher) Updates() <-chan *EngineConfig {
	return cw.updates
}

func (cw *ConfigWatcher) Close() error {
	cw.mutex.Lock()
	if cw.isClosed {
		cw.mutex.Unlock()
		return errors.New("config watcher already closed")
	}
	cw.isClosed = true
	cw.mutex.Unlock()

	close(cw.done)
	cw.wg.Wait()
	return nil
}

func (cw *ConfigWatcher) start() {
	defer cw.wg.Done()
	for {
		select {
		case e, ok := <-cw.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != cw.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			cw.reload()

		case err, ok := <-cw.fsnotify.Errors:
			if !ok {
				return
			}
			LogError(err.Error())

		case <-cw.done:
			cw.fsnotify.Close()
			close(cw.updates)
			return
		}
	}
}

func (cw *ConfigWatcher) reload() {
	cfg, err := LoadConfig(cw.path)
	if err != nil {
		LogWarn("config reload of '%s' rejected: %s", cw.path, err)
		return
	}
	// Drop a stale pending update so the newest one wins.
	select {
	case <-cw.updates:
	default:
	}
	select {
	case cw.updates <- cfg:
		LogDebug("config '%s' reloaded", cw.path)
	default:
	}
}
