// This file implements a file system watcher for the library directory.
// It uses OS-level file system events to detect changes and schedule a
// library sync once the directory settles.

package library

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bookshelf-go/bookshelf/internal/bookmeta"
	"github.com/bookshelf-go/bookshelf/internal/jobs"
)

// WatcherService watches the library directory for file system changes
// and triggers a sync when files are added, modified, or deleted.
type WatcherService struct {
	ctx           jobs.JobContext
	watcher       *fsnotify.Watcher
	mu            sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

// NewWatcherService creates a new file system watcher service.
func NewWatcherService(ctx jobs.JobContext) *WatcherService {
	return &WatcherService{
		ctx:           ctx,
		debounceDelay: 2 * time.Second, // Wait 2 seconds after last change before scanning
		stopChan:      make(chan struct{}),
	}
}

// Start begins watching the library directory for changes.
func (w *WatcherService) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	libraryPath := w.ctx.Config().Library.Path

	// Watch the root and every category directory. Files are watched via
	// their parent directory.
	err = filepath.WalkDir(libraryPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})

	if err != nil {
		watcher.Close()
		return err
	}

	log.Printf("File watcher started for library: %s", libraryPath)

	go w.processEvents()

	return nil
}

// Stop stops the file watcher service.
func (w *WatcherService) Stop() error {
	close(w.stopChan)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// processEvents processes file system events and schedules syncs.
func (w *WatcherService) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

// handleEvent processes a single file system event.
func (w *WatcherService) handleEvent(event fsnotify.Event) {
	// Ignore Chmod events (these are often triggered by opening folders,
	// reading files, etc.) to avoid false triggers.
	if event.Op == fsnotify.Chmod {
		return
	}

	hasRelevantOp := (event.Op&fsnotify.Create == fsnotify.Create) ||
		(event.Op&fsnotify.Write == fsnotify.Write) ||
		(event.Op&fsnotify.Remove == fsnotify.Remove) ||
		(event.Op&fsnotify.Rename == fsnotify.Rename)

	if !hasRelevantOp {
		return
	}

	info, err := os.Stat(event.Name)
	isDir := err == nil && info.IsDir()

	// A new category directory gets added to the watch list.
	if event.Op&fsnotify.Create == fsnotify.Create && isDir {
		w.watcher.Add(event.Name)
		w.scheduleSync()
		return
	}

	// A removed or renamed path cannot be stat'ed; it may have been a
	// book file, so schedule a sync anyway.
	if err != nil || (!isDir && w.isRelevantFile(event.Name)) {
		w.scheduleSync()
	}
}

// isRelevantFile reports whether a path names a supported book file.
func (w *WatcherService) isRelevantFile(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return bookmeta.IsSupportedExtension(ext)
}

// scheduleSync resets the debounce timer so that a burst of events
// results in a single library sync.
func (w *WatcherService) scheduleSync() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.triggerSync)
}

// triggerSync runs the library sync job through the job manager so it
// shares the single-flight guarantee with scheduled and manual runs.
func (w *WatcherService) triggerSync() {
	log.Printf("File watcher detected changes, triggering library sync")
	if err := w.ctx.JobManager().RunJob("library-sync", w.ctx); err != nil {
		log.Printf("File watcher sync: %v", err)
	}
}
