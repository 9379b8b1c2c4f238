package library_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bookshelf-go/bookshelf/internal/core"
	"github.com/bookshelf-go/bookshelf/internal/library"
	"github.com/bookshelf-go/bookshelf/internal/store"
	"github.com/bookshelf-go/bookshelf/internal/testutil"
)

func setupWatcherApp(t *testing.T) *core.App {
	t.Helper()
	app := testutil.SetupTestApp(t)
	app.Config().Library.Path = t.TempDir()
	return app
}

func TestWatcherService_StartStop(t *testing.T) {
	app := setupWatcherApp(t)
	watcher := library.NewWatcherService(app)

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	if err := watcher.Stop(); err != nil {
		t.Fatalf("Failed to stop watcher: %v", err)
	}
}

func TestWatcherService_FailsOnMissingLibrary(t *testing.T) {
	app := testutil.SetupTestApp(t)
	app.Config().Library.Path = "/nonexistent/library/path"
	watcher := library.NewWatcherService(app)
	if err := watcher.Start(); err == nil {
		watcher.Stop()
		t.Fatal("Expected an error for a missing library path")
	}
}

// TestWatcherService_FileCreate verifies that dropping a book file into a
// new category directory eventually lands it in the database.
func TestWatcherService_FileCreate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping debounce test in short mode")
	}
	app := setupWatcherApp(t)
	libraryRoot := app.Config().Library.Path

	// The watcher runs syncs through the job manager, so the job has to
	// be registered just like in production.
	app.JobManager().Register("library-sync", library.LibrarySync)

	watcher := library.NewWatcherService(app)
	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer watcher.Stop()

	// Wait a bit for watcher to initialize
	time.Sleep(100 * time.Millisecond)

	testDir := filepath.Join(libraryRoot, "WatcherTest")
	os.MkdirAll(testDir, 0755)
	testutil.CreateTestBookFile(t, libraryRoot, "WatcherTest", "[Franz Kafka] The Trial.txt", "Someone must have slandered Josef K.")

	// Wait for debounce delay + scan
	st := store.New(app.DB())
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := st.GetBookByPath("WatcherTest/[Franz Kafka] The Trial.txt"); err == nil {
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Fatal("Watched file never showed up in the database")
}
