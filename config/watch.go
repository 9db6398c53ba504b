package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/slighter12/xano-mcp-go/logger"
)

// Watch reloads the config file at path whenever it changes and passes the
// result to onChange. It blocks until ctx is done. Reloads that fail
// validation are logged and skipped. Overrides are re-applied on every
// reload so flag values stay in effect.
//
// The directory is watched rather than the file so editors that replace the
// file via rename are still observed.
func Watch(ctx context.Context, path string, onChange func(*Config), overrides ...func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch config directory: %w", err)
	}
	logger.Debug("Watching config file", "path", absPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadConfig(absPath, overrides...)
			if err != nil {
				logger.Warn("Ignoring invalid config change", "path", absPath, "error", err)
				continue
			}
			logger.Info("Config file reloaded", "path", absPath)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Config watcher error", "error", err)
		}
	}
}
