package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	watchDebounce = 100 * time.Millisecond
	pollInterval  = 5 * time.Second
)

// Watcher monitors the .env file while the server runs and hands a
// reloaded copy of the configuration to a callback. Only settings that can
// change at runtime (branding and the break threshold) are applied.
type Watcher struct {
	envPath     string
	watcher     *fsnotify.Watcher
	stopChan    chan struct{}
	stopOnce    sync.Once
	lastModTime time.Time

	mu       sync.RWMutex
	config   *Config
	onReload func(*Config)
}

// NewWatcher creates a watcher for cfg.EnvFile.
func NewWatcher(cfg *Config, onReload func(*Config)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	envPath, err := filepath.Abs(cfg.EnvFile)
	if err != nil {
		envPath = cfg.EnvFile
	}
	cw := &Watcher{
		envPath:  envPath,
		watcher:  w,
		stopChan: make(chan struct{}),
		config:   cfg,
		onReload: onReload,
	}
	if stat, err := os.Stat(envPath); err == nil {
		cw.lastModTime = stat.ModTime()
	}
	return cw, nil
}

// Start begins watching. If the directory cannot be watched it falls back
// to polling the file's modification time.
func (cw *Watcher) Start() {
	dir := filepath.Dir(cw.envPath)
	if err := cw.watcher.Add(dir); err != nil {
		log.Warn().Err(err).Str("path", dir).Msg("Failed to watch config directory, falling back to polling")
		go cw.pollForChanges()
		return
	}

	go cw.watchForChanges()
	log.Info().Str("env_path", cw.envPath).Msg("Started watching .env for branding changes")
}

// Stop stops the watcher. It is safe to call more than once.
func (cw *Watcher) Stop() {
	cw.stopOnce.Do(func() {
		close(cw.stopChan)
		cw.watcher.Close()
	})
}

// Config returns the current configuration.
func (cw *Watcher) Config() *Config {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.config
}

// Reload re-reads the .env file immediately.
func (cw *Watcher) Reload() {
	cw.reload()
}

func (cw *Watcher) watchForChanges() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.envPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			// Debounce - wait a bit for write to complete
			time.Sleep(watchDebounce)
			log.Info().Str("event", event.Op.String()).Msg("Detected .env file change")
			cw.reload()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Config watcher error")

		case <-cw.stopChan:
			return
		}
	}
}

func (cw *Watcher) pollForChanges() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if stat, err := os.Stat(cw.envPath); err == nil && stat.ModTime().After(cw.lastModTime) {
				log.Info().Msg("Detected .env file change via polling")
				cw.lastModTime = stat.ModTime()
				cw.reload()
			}
		case <-cw.stopChan:
			return
		}
	}
}

func (cw *Watcher) reload() {
	values, err := godotenv.Read(cw.envPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("file", cw.envPath).Msg("Failed to read .env file")
			return
		}
		// A removed file drops every override it carried.
		values = nil
	}

	cw.mu.Lock()
	next, err := cw.config.RuntimeSettings(values)
	if err != nil {
		cw.mu.Unlock()
		log.Warn().Err(err).Msg("Ignoring invalid .env reload")
		return
	}
	cw.config = next
	callback := cw.onReload
	cw.mu.Unlock()

	log.Info().Str("business_name", next.BusinessName).Msg("Reloaded branding from .env")
	if callback != nil {
		callback(next)
	}
}
