// To handle all database interactions. This is our
// data access layer, keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"time"

	"github.com/bookshelf-go/bookshelf/internal/models"
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const bookColumns = "id, category, title, author, file_path, file_type, file_size, summary, COALESCE(thumbnail, ''), updated_time, created_at"

// scanBook reads one row produced by a SELECT over bookColumns.
func scanBook(row interface{ Scan(...interface{}) error }) (*models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.Category, &b.Title, &b.Author, &b.FilePath,
		&b.FileType, &b.FileSize, &b.Summary, &b.Thumbnail, &b.UpdatedTime, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) queryBooks(query string, args ...interface{}) ([]*models.Book, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// GetCategories returns the distinct category names in the library,
// in ascending order.
func (s *Store) GetCategories() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT category FROM books ORDER BY category ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetBooksByCategory returns the books in a category ordered by title.
// Page numbering starts at 1; perPage 0 means no pagination.
func (s *Store) GetBooksByCategory(category string, page, perPage int) ([]*models.Book, error) {
	query := "SELECT " + bookColumns + " FROM books WHERE category = ? ORDER BY title ASC"
	if perPage <= 0 {
		return s.queryBooks(query, category)
	}
	if page < 1 {
		page = 1
	}
	query += " LIMIT ? OFFSET ?"
	return s.queryBooks(query, category, perPage, (page-1)*perPage)
}

// GetBook retrieves a single book by its primary key.
func (s *Store) GetBook(id int64) (*models.Book, error) {
	row := s.db.QueryRow("SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	return scanBook(row)
}

// GetBookByPath retrieves a single book by its library-relative path.
func (s *Store) GetBookByPath(filePath string) (*models.Book, error) {
	row := s.db.QueryRow("SELECT "+bookColumns+" FROM books WHERE file_path = ?", filePath)
	return scanBook(row)
}

// BookExistsAtPath reports whether any book already occupies the given
// library-relative path. Used as the duplicate pre-flight check before a
// rename or move.
func (s *Store) BookExistsAtPath(filePath string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM books WHERE file_path = ?", filePath).Scan(&count)
	return count > 0, err
}

// UpsertBook inserts a book or, when a row already exists for the same
// file path, refreshes its metadata. It returns the row's id.
func (s *Store) UpsertBook(book *models.Book) (int64, error) {
	query := `
		INSERT INTO books (category, title, author, file_path, file_type, file_size, summary, updated_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(file_path) DO UPDATE SET
			category = excluded.category,
			title = excluded.title,
			author = excluded.author,
			file_type = excluded.file_type,
			file_size = excluded.file_size,
			summary = excluded.summary,
			updated_time = excluded.updated_time;
	`
	_, err := s.db.Exec(query, book.Category, book.Title, book.Author, book.FilePath,
		book.FileType, book.FileSize, book.Summary, book.UpdatedTime)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.QueryRow("SELECT id FROM books WHERE file_path = ?", book.FilePath).Scan(&id)
	return id, err
}

// UpdateBook applies a rename/move: new category, title, author and path.
// The file itself must already have been moved by the caller.
func (s *Store) UpdateBook(id int64, category, title, author, fileType, filePath string, updatedTime time.Time) error {
	query := `
		UPDATE books
		SET category = ?, title = ?, author = ?, file_type = ?, file_path = ?, updated_time = ?
		WHERE id = ?
	`
	res, err := s.db.Exec(query, category, title, author, fileType, filePath, updatedTime, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateBookThumbnail stores the generated thumbnail data URI.
func (s *Store) UpdateBookThumbnail(id int64, thumbnail string) error {
	_, err := s.db.Exec("UPDATE books SET thumbnail = ? WHERE id = ?", thumbnail, id)
	return err
}

// DeleteBook removes the book row.
func (s *Store) DeleteBook(id int64) error {
	_, err := s.db.Exec("DELETE FROM books WHERE id = ?", id)
	return err
}

// GetAllBooksByPath returns every book keyed by its file path. The
// scanner uses this snapshot to detect files that vanished from disk.
func (s *Store) GetAllBooksByPath() (map[string]*models.Book, error) {
	books, err := s.queryBooks("SELECT " + bookColumns + " FROM books")
	if err != nil {
		return nil, err
	}
	byPath := make(map[string]*models.Book, len(books))
	for _, book := range books {
		byPath[book.FilePath] = book
	}
	return byPath, nil
}

// CountBooks returns the total number of books tracked.
func (s *Store) CountBooks() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM books").Scan(&count)
	return count, err
}
