// This file tests the main library scanner.

package library

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bookshelf-go/bookshelf/internal/config"
	"github.com/bookshelf-go/bookshelf/internal/db"
	"github.com/bookshelf-go/bookshelf/internal/store"
)

// setupTestLibraryAndDB creates a temporary library structure and an in-memory DB.
func setupTestLibraryAndDB(t *testing.T) (string, *sql.DB) {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.RunMigrations(database); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	rootDir := t.TempDir()
	fictionDir := filepath.Join(rootDir, "Fiction")
	os.Mkdir(fictionDir, 0755)
	writeFile(t, fictionDir, "[Jane Austen] Pride and Prejudice.txt", "It is a truth universally acknowledged.")
	writeFile(t, fictionDir, "Moby Dick.txt", "Call me Ishmael.")
	writeFile(t, fictionDir, "notes.xyz", "not a book")
	return rootDir, database
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file %s: %v", name, err)
	}
}

func testConfig(libraryPath string) *config.Config {
	cfg := &config.Config{}
	cfg.Library.Path = libraryPath
	return cfg
}

func TestScannerIntegration(t *testing.T) {
	libraryPath, database := setupTestLibraryAndDB(t)

	scanner := NewScanner(testConfig(libraryPath), database)
	if err := scanner.Scan(); err != nil {
		t.Fatalf("scanner.Scan() failed: %v", err)
	}

	s := store.New(database)

	count, err := s.CountBooks()
	if err != nil {
		t.Fatalf("CountBooks failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 books after scan, got %d", count)
	}

	book, err := s.GetBookByPath("Fiction/[Jane Austen] Pride and Prejudice.txt")
	if err != nil {
		t.Fatalf("Failed to find scanned book: %v", err)
	}
	if book.Author != "Jane Austen" {
		t.Errorf("Expected author 'Jane Austen', got %q", book.Author)
	}
	if book.Title != "Pride and Prejudice" {
		t.Errorf("Expected title 'Pride and Prejudice', got %q", book.Title)
	}
	if book.Category != "Fiction" {
		t.Errorf("Expected category 'Fiction', got %q", book.Category)
	}
	if book.FileType != "txt" {
		t.Errorf("Expected file type 'txt', got %q", book.FileType)
	}
	if book.Summary == "" {
		t.Error("Expected a non-empty summary for txt book")
	}

	// A filename without an author pattern falls through to the catch-all.
	book, err = s.GetBookByPath("Fiction/Moby Dick.txt")
	if err != nil {
		t.Fatalf("Failed to find second scanned book: %v", err)
	}
	if book.Author != "" {
		t.Errorf("Expected empty author, got %q", book.Author)
	}
	if book.Title != "Moby Dick" {
		t.Errorf("Expected title 'Moby Dick', got %q", book.Title)
	}
}

func TestScannerIsIdempotent(t *testing.T) {
	libraryPath, database := setupTestLibraryAndDB(t)
	scanner := NewScanner(testConfig(libraryPath), database)

	for i := 0; i < 2; i++ {
		if err := scanner.Scan(); err != nil {
			t.Fatalf("scan %d failed: %v", i+1, err)
		}
	}

	s := store.New(database)
	count, _ := s.CountBooks()
	if count != 2 {
		t.Errorf("Expected 2 books after rescans, got %d", count)
	}
}

func TestScannerPrunesDeletedFiles(t *testing.T) {
	libraryPath, database := setupTestLibraryAndDB(t)
	scanner := NewScanner(testConfig(libraryPath), database)

	if err := scanner.Scan(); err != nil {
		t.Fatalf("initial scan failed: %v", err)
	}
	if err := os.Remove(filepath.Join(libraryPath, "Fiction", "Moby Dick.txt")); err != nil {
		t.Fatalf("Failed to delete test file: %v", err)
	}
	if err := scanner.Scan(); err != nil {
		t.Fatalf("rescan failed: %v", err)
	}

	s := store.New(database)
	count, _ := s.CountBooks()
	if count != 1 {
		t.Errorf("Expected 1 book after pruning, got %d", count)
	}
	if _, err := s.GetBookByPath("Fiction/Moby Dick.txt"); err != sql.ErrNoRows {
		t.Errorf("Expected pruned book to be gone, got err=%v", err)
	}
}

func TestScannerPicksUpNewCategory(t *testing.T) {
	libraryPath, database := setupTestLibraryAndDB(t)
	scanner := NewScanner(testConfig(libraryPath), database)

	if err := scanner.Scan(); err != nil {
		t.Fatalf("initial scan failed: %v", err)
	}

	scienceDir := filepath.Join(libraryPath, "Science")
	os.Mkdir(scienceDir, 0755)
	writeFile(t, scienceDir, "Cosmos (Carl Sagan).txt", "The cosmos is all that is.")

	if err := scanner.Scan(); err != nil {
		t.Fatalf("rescan failed: %v", err)
	}

	s := store.New(database)
	categories, err := s.GetCategories()
	if err != nil {
		t.Fatalf("GetCategories failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("Expected 2 categories, got %v", categories)
	}

	book, err := s.GetBookByPath("Science/Cosmos (Carl Sagan).txt")
	if err != nil {
		t.Fatalf("Failed to find book in new category: %v", err)
	}
	if book.Author != "Carl Sagan" || book.Title != "Cosmos" {
		t.Errorf("Unexpected decomposition: author=%q title=%q", book.Author, book.Title)
	}
}

func TestScannerFailsOnMissingLibraryPath(t *testing.T) {
	_, database := setupTestLibraryAndDB(t)
	scanner := NewScanner(testConfig("/nonexistent/library/path"), database)
	if err := scanner.Scan(); err == nil {
		t.Fatal("Expected an error for a missing library path")
	}
}
