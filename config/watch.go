package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads path whenever it is written, created or renamed into place and passes every valid
// configuration to onChange. Invalid files are logged and ignored. The parent directory is watched
// so that editors replacing the file atomically are seen. onChange runs on the watcher goroutine.
//
// Parameters:
//   - ctx: cancelling it stops the watcher
//   - path: the config file to watch
//   - onChange: called with each newly loaded configuration
//
// Returns:
//   - error: an error if the watcher could not be started
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				data, err := os.ReadFile(abs)
				if err != nil || len(data) == 0 {
					// removed, or truncated ahead of the write that refills it
					continue
				}
				c, err := Parse(data)
				if err != nil {
					log.Printf("[config] ignoring %s: %v", path, err)
					continue
				}
				log.Printf("[config] reloaded %s", path)
				onChange(c)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("[config] watcher error: %v", err)
			}
		}
	}()
	return nil
}
