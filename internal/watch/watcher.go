// Package watch provides the ArcLang development loop: a debounced file
// watcher that drives incremental recompilation and a WebSocket server
// that notifies connected tools about pass results.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileWatcher monitors the model tree for .arc changes and triggers the
// callback with a debounced change set.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	root      string
	onChange  func([]string) error
	logger    *zap.Logger
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewFileWatcher creates a watcher rooted at root.
func NewFileWatcher(root string, logger *zap.Logger, onChange func([]string) error) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(100 * time.Millisecond),
		root:      root,
		onChange:  onChange,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}

	fw.debouncer.SetCallback(func(files []string) {
		if err := fw.onChange(files); err != nil {
			fw.logger.Warn("change handler failed", zap.Error(err))
		}
	})

	return fw, nil
}

// Start begins watching every directory under the root.
func (fw *FileWatcher) Start() error {
	err := filepath.Walk(fw.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != fw.root {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		fw.logger.Debug("watching directory", zap.String("dir", path))
		return nil
	})
	if err != nil {
		return err
	}

	fw.wg.Add(1)
	go fw.watch()

	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (fw *FileWatcher) Stop() error {
	fw.stopOnce.Do(func() {
		close(fw.stopChan)
	})
	fw.wg.Wait()
	fw.debouncer.Stop()
	return fw.watcher.Close()
}

// watch is the event loop.
func (fw *FileWatcher) watch() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if fw.shouldIgnore(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && filepath.Ext(event.Name) == ".arc" {
				fw.logger.Info("file changed", zap.String("file", event.Name))
				fw.debouncer.Add(event.Name)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watcher error", zap.Error(err))

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	// Editor swap files
	if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swo") {
		return true
	}
	return false
}
