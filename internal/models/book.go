// This file defines the core data structures (models) for our application.
// These structs represent the books and categories in our library.

package models

import "time"

// Book represents a single file tracked by the library. Author and title
// are derived from the filename at scan time; the summary holds the first
// few kilobytes of extracted text used for search and similarity lookup.
type Book struct {
	ID          int64     `json:"book_id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	FilePath    string    `json:"file_path"` // relative to the library root
	FileType    string    `json:"file_type"`
	FileSize    int64     `json:"file_size"`
	Summary     string    `json:"summary,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"` // data URI, image books only
	UpdatedTime time.Time `json:"updated_time"`
	CreatedAt   time.Time `json:"-"`
}

// User represents a registered user account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose the hash in JSON responses
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProgressUpdate is the message broadcast over WebSocket while a
// background job is running.
type ProgressUpdate struct {
	JobID    string  `json:"job_id"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	Done     bool    `json:"done"`
}
