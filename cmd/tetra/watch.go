package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// runWatch re-runs a source file whenever it changes on disk,
// adapted from hotReloadManager.watchForChanges in cmd/glyph/main.go:
// watch the file's directory (so editors that save atomically still
// trigger a Write/Create event against the watched name), debounce
// bursts of events, and rerun on the trailing edge.
func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	dir := filepath.Dir(path)
	name := filepath.Base(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch: watching %s: %w", dir, err)
	}

	rerun := func() {
		printWarning(fmt.Sprintf("%s changed, re-running...", name))
		if err := runRun(cmd, args); err != nil {
			printError(err)
		}
	}
	rerun()

	var debounce *time.Timer
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDelay, rerun)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(fmt.Errorf("watch: %w", err))
		}
	}
}
