// This file contains the main logic for scanning the library directory.
// The library is laid out as one level of category directories, each
// holding book files. The scanner decomposes filenames into metadata,
// extracts summary text per file type, and reconciles the database with
// what is on disk.

package library

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookshelf-go/bookshelf/internal/bookmeta"
	"github.com/bookshelf-go/bookshelf/internal/config"
	"github.com/bookshelf-go/bookshelf/internal/jobs"
	"github.com/bookshelf-go/bookshelf/internal/models"
	"github.com/bookshelf-go/bookshelf/internal/store"
)

// Scanner is responsible for scanning the library and updating the database.
type Scanner struct {
	cfg *config.Config
	db  *sql.DB
	st  *store.Store // The data access layer

	// onProgress, when set, receives scan progress for UI reporting.
	onProgress func(message string, progress float64, done bool)
}

// NewScanner creates a new Scanner instance.
func NewScanner(cfg *config.Config, db *sql.DB) *Scanner {
	return &Scanner{
		cfg: cfg,
		db:  db,
		st:  store.New(db),
	}
}

func (s *Scanner) progress(message string, progress float64, done bool) {
	if s.onProgress != nil {
		s.onProgress(message, progress, done)
	}
}

// Scan walks the library directory and synchronizes the database with the
// files found on disk: new files are inserted, changed files re-read, and
// rows whose files vanished are removed.
func (s *Scanner) Scan() error {
	libraryPath := s.cfg.Library.Path
	if _, err := os.Stat(libraryPath); err != nil {
		return fmt.Errorf("library path %q is not accessible: %w", libraryPath, err)
	}

	s.progress("Fetching current library state...", 0, false)
	dbBooks, err := s.st.GetAllBooksByPath()
	if err != nil {
		return fmt.Errorf("failed to load current library state: %w", err)
	}

	files, err := listBookFiles(libraryPath)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(files))
	for i, file := range files {
		seen[file.relPath] = true
		if err := s.scanFile(file, dbBooks[file.relPath]); err != nil {
			log.Printf("Error scanning %s: %v", file.relPath, err)
		}
		pct := float64(i+1) / float64(len(files)) * 90
		s.progress(fmt.Sprintf("Scanned %d/%d: %s", i+1, len(files), file.relPath), pct, false)
	}

	// Prune rows whose files are gone.
	s.progress("Pruning deleted files...", 95, false)
	for relPath, book := range dbBooks {
		if !seen[relPath] {
			if err := s.st.DeleteBook(book.ID); err != nil {
				log.Printf("Error pruning %s: %v", relPath, err)
			}
		}
	}

	s.progress("Library scan complete.", 100, true)
	return nil
}

type bookFile struct {
	absPath  string
	relPath  string // "category/filename.ext"
	category string
	fileName string
	ext      string
	size     int64
	modTime  os.FileInfo
}

// listBookFiles enumerates supported files one level below the library
// root. Entries directly at the root and nested subdirectories are
// ignored; the category layout is flat by convention.
func listBookFiles(libraryPath string) ([]bookFile, error) {
	categories, err := os.ReadDir(libraryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read library directory: %w", err)
	}

	var files []bookFile
	for _, categoryEntry := range categories {
		if !categoryEntry.IsDir() || strings.HasPrefix(categoryEntry.Name(), ".") {
			continue
		}
		category := categoryEntry.Name()
		entries, err := os.ReadDir(filepath.Join(libraryPath, category))
		if err != nil {
			log.Printf("Error reading category %s: %v", category, err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(entry.Name())), ".")
			if !bookmeta.IsSupportedExtension(ext) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			files = append(files, bookFile{
				absPath:  filepath.Join(libraryPath, category, entry.Name()),
				relPath:  category + "/" + entry.Name(),
				category: category,
				fileName: entry.Name(),
				ext:      ext,
				size:     info.Size(),
				modTime:  info,
			})
		}
	}
	return files, nil
}

// scanFile upserts one file. When the database already has the file at
// the same size, the expensive text extraction is skipped.
func (s *Scanner) scanFile(file bookFile, existing *models.Book) error {
	if existing != nil && existing.FileSize == file.size {
		return nil
	}

	meta := bookmeta.Decompose(file.fileName)
	if meta.Title == "" {
		// Catch-all could not apply (e.g. a bare ".txt" name); fall back
		// to the stem so the entry still shows up.
		meta.Title = strings.TrimSuffix(file.fileName, filepath.Ext(file.fileName))
		meta.Extension = file.ext
	}

	summary := ExtractSummary(file.absPath, file.ext)

	id, err := s.st.UpsertBook(&models.Book{
		Category:    file.category,
		Title:       meta.Title,
		Author:      meta.Author,
		FilePath:    file.relPath,
		FileType:    meta.Extension,
		FileSize:    file.size,
		Summary:     summary,
		UpdatedTime: file.modTime.ModTime(),
	})
	if err != nil {
		return err
	}

	if isImageType(file.ext) {
		if thumb, err := ThumbnailFromFile(file.absPath); err == nil {
			return s.st.UpdateBookThumbnail(id, thumb)
		}
	}
	return nil
}

func isImageType(ext string) bool {
	switch ext {
	case "jpg", "jpeg", "png", "gif", "webp", "bmp", "tiff", "svg":
		return true
	}
	return false
}

// LibrarySync performs a full synchronization between the filesystem and
// the database, reporting progress over the WebSocket hub. It is
// registered with the job manager under the name "library-sync".
func LibrarySync(ctx jobs.JobContext) {
	jobId := "library-sync"
	scanner := NewScanner(ctx.Config(), ctx.DB())
	scanner.onProgress = func(message string, progress float64, done bool) {
		sendProgress(ctx, jobId, message, progress, done)
	}

	sendProgress(ctx, jobId, "Starting library sync...", 0, false)
	if err := scanner.Scan(); err != nil {
		log.Printf("Library sync failed: %v", err)
		sendProgress(ctx, jobId, fmt.Sprintf("Library sync failed: %v", err), 100, true)
	}
}
