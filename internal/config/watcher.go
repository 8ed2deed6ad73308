package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher monitors the .env file and reloads runtime settings when it
// changes.
type Watcher struct {
	config      *Config
	envPath     string
	watcher     *fsnotify.Watcher
	stopChan    chan struct{}
	lastModTime time.Time
	mu          sync.Mutex
	onReload    func()
}

// NewWatcher creates a watcher for the config's .env file.
func NewWatcher(cfg *Config) (*Watcher, error) {
	envPath := filepath.Join(cfg.DataDir, ".env")

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		config:   cfg,
		envPath:  envPath,
		watcher:  fsw,
		stopChan: make(chan struct{}),
	}
	if stat, err := os.Stat(envPath); err == nil {
		w.lastModTime = stat.ModTime()
	}
	return w, nil
}

// OnReload registers a callback invoked after each successful reload.
func (w *Watcher) OnReload(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// Start begins watching. Editors replace files rather than writing in place,
// so the parent directory is watched and events are filtered by name.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.envPath)); err != nil {
		return err
	}
	go w.loop()
	log.Info().Str("file", w.envPath).Msg("Watching config file for changes")
	return nil
}

// Stop ends watching.
func (w *Watcher) Stop() {
	close(w.stopChan)
	w.watcher.Close()
}

// Reload applies the current .env and environment immediately. Also used by
// the SIGHUP handler.
func (w *Watcher) Reload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.config.Reload()
	log.Info().Msg("Configuration reloaded")
	if w.onReload != nil {
		w.onReload()
	}
}

func (w *Watcher) loop() {
	// Debounce: editors fire several events per save.
	var timer *time.Timer
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.envPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.changed() {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(200*time.Millisecond, w.Reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Config watcher error")
		}
	}
}

func (w *Watcher) changed() bool {
	stat, err := os.Stat(w.envPath)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !stat.ModTime().After(w.lastModTime) {
		return false
	}
	w.lastModTime = stat.ModTime()
	return true
}
