package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CreateTestBookFile writes a book file with the given content inside a
// category directory under the library root, creating the category as
// needed. It returns the absolute path of the created file.
func CreateTestBookFile(t *testing.T, libraryDir, category, name, content string) string {
	t.Helper()
	categoryDir := filepath.Join(libraryDir, category)
	if err := os.MkdirAll(categoryDir, 0755); err != nil {
		t.Fatalf("Failed to create category dir: %v", err)
	}
	filePath := filepath.Join(categoryDir, name)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test book file: %v", err)
	}
	return filePath
}
