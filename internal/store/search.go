package store

import (
	"github.com/bookshelf-go/bookshelf/internal/models"
)

// SearchBooks finds books whose title, author or extracted summary text
// contains the keyword. Title and author matches rank above summary-only
// matches.
func (s *Store) SearchBooks(keyword string, limit int) ([]*models.Book, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + keyword + "%"
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE title LIKE ? OR author LIKE ? OR summary LIKE ?
		ORDER BY
			CASE
				WHEN title LIKE ? THEN 0
				WHEN author LIKE ? THEN 1
				ELSE 2
			END,
			title ASC
		LIMIT ?
	`
	return s.queryBooks(query, pattern, pattern, pattern, pattern, pattern, limit)
}

// SimilarBooks returns books related to the given one: same author first,
// then books in the same category with an overlapping title. The source
// book itself is excluded.
func (s *Store) SimilarBooks(bookID int64, limit int) ([]*models.Book, error) {
	if limit <= 0 {
		limit = 20
	}
	book, err := s.GetBook(bookID)
	if err != nil {
		return nil, err
	}

	titlePattern := "%" + book.Title + "%"
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id != ?
		  AND (
			(author = ? AND author != '')
			OR category = ?
			OR title LIKE ?
		  )
		ORDER BY
			CASE WHEN author = ? AND author != '' THEN 0 ELSE 1 END,
			CASE WHEN title LIKE ? THEN 0 ELSE 1 END,
			title ASC
		LIMIT ?
	`
	return s.queryBooks(query, bookID, book.Author, book.Category, titlePattern,
		book.Author, titlePattern, limit)
}
