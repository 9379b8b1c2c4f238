package api

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bookshelf-go/bookshelf/internal/bookmeta"
	"github.com/bookshelf-go/bookshelf/internal/foldertree"
	"github.com/bookshelf-go/bookshelf/internal/util"
)

// mediaTypes maps book file types to the Content-Type served on download.
var mediaTypes = map[string]string{
	"txt":  "text/plain",
	"epub": "application/epub+zip",
	"zip":  "application/zip",
	"pdf":  "application/pdf",
	"html": "text/html",
	"hwp":  "application/x-hwp",
	"rtf":  "application/rtf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"svg":  "image/svg+xml",
}

// getListParams extracts pagination query params for list endpoints.
func getListParams(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 0 {
		perPage = 0
	}
	return
}

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.GetCategories()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	RespondWithJSON(w, http.StatusOK, categories)
}

func (s *Server) handleGetBooksByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	page, perPage := getListParams(r)

	books, err := s.store.GetBooksByCategory(category, page, perPage)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve books")
		return
	}
	RespondWithJSON(w, http.StatusOK, books)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	book, err := s.store.GetBook(bookID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Book not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, book)
}

// handleUpdateBook renames a book and/or moves it to another category.
// The file on disk is renamed to match the new metadata, so the filename
// stays the canonical carrier of author and title.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var payload struct {
		Category string `json:"category"`
		Title    string `json:"title"`
		Author   string `json:"author"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Category == "" || payload.Title == "" {
		RespondWithError(w, http.StatusBadRequest, "Category and title are required")
		return
	}
	if err := util.ValidatePathComponent(payload.Category); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid category name")
		return
	}

	book, err := s.store.GetBook(bookID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Book not found")
		return
	}

	newFileName := bookmeta.Synthesize(bookmeta.BookMeta{
		Author:    payload.Author,
		Title:     payload.Title,
		Extension: book.FileType,
	})
	if err := util.ValidatePathComponent(newFileName); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid file name")
		return
	}
	newRelPath := payload.Category + "/" + newFileName

	if newRelPath != book.FilePath {
		// Duplicate pre-flight: the target name must be free.
		exists, err := s.store.BookExistsAtPath(newRelPath)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to check for duplicates")
			return
		}
		if exists {
			RespondWithError(w, http.StatusConflict, "A book with that name already exists in the category")
			return
		}

		libraryPath := s.app.Config().Library.Path
		oldAbs := filepath.Join(libraryPath, filepath.FromSlash(book.FilePath))
		newAbs := filepath.Join(libraryPath, filepath.FromSlash(newRelPath))
		if err := os.MkdirAll(filepath.Dir(newAbs), 0755); err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to prepare target category")
			return
		}
		if err := os.Rename(oldAbs, newAbs); err != nil {
			log.Printf("Failed to rename %s to %s: %v", oldAbs, newAbs, err)
			RespondWithError(w, http.StatusInternalServerError, "Failed to rename file")
			return
		}
	}

	err = s.store.UpdateBook(bookID, payload.Category, payload.Title, payload.Author, book.FileType, newRelPath, time.Now())
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to update book")
		return
	}

	updated, err := s.store.GetBook(bookID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load updated book")
		return
	}

	s.moveTreeEntry(foldertree.EntryID(book.Category, bookID), updated.Category, updated)

	RespondWithJSON(w, http.StatusOK, updated)
}

// handleDeleteFile removes a book file from disk and its database row.
func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	fileName := chi.URLParam(r, "fileName")
	if err := util.ValidatePathComponent(category); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid category name")
		return
	}
	if err := util.ValidatePathComponent(fileName); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid file name")
		return
	}
	relPath := category + "/" + fileName

	book, err := s.store.GetBookByPath(relPath)
	if err == sql.ErrNoRows {
		RespondWithError(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to look up book")
		return
	}

	abs := filepath.Join(s.app.Config().Library.Path, filepath.FromSlash(relPath))
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to delete file %s: %v", abs, err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	if err := s.store.DeleteBook(book.ID); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete book record")
		return
	}

	s.removeTreeEntry(foldertree.EntryID(category, book.ID))

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	keyword := chi.URLParam(r, "keyword")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}

	books, err := s.store.SearchBooks(keyword, limit)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	RespondWithJSON(w, http.StatusOK, books)
}

func (s *Server) handleSimilarBooks(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	books, err := s.store.SimilarBooks(bookID, limit)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to find similar books")
		return
	}
	RespondWithJSON(w, http.StatusOK, books)
}

// handleDownloadBook serves the raw book file with the proper media type.
func (s *Server) handleDownloadBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	book, err := s.store.GetBook(bookID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Book not found")
		return
	}

	libraryPath := s.app.Config().Library.Path
	if err := util.ValidateLibraryPath(book.FilePath, libraryPath); err != nil {
		RespondWithError(w, http.StatusNotFound, "Book file is missing from the library")
		return
	}
	abs := filepath.Join(libraryPath, filepath.FromSlash(book.FilePath))
	if _, err := os.Stat(abs); err != nil {
		RespondWithError(w, http.StatusNotFound, "Book file is missing from the library")
		return
	}

	contentType := mediaTypes[book.FileType]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(book.FilePath)+"\"")
	http.ServeFile(w, r, abs)
}
