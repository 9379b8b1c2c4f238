package util

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePathComponent checks that a single client-supplied path segment
// (a category name or a file name) is safe to join under the library root.
func ValidatePathComponent(component string) error {
	if component == "" {
		return fmt.Errorf("path component cannot be empty")
	}

	// Check for directory traversal attempts
	if strings.Contains(component, "..") {
		return fmt.Errorf("path component contains invalid directory traversal")
	}

	if filepath.IsAbs(component) {
		return fmt.Errorf("path component must be relative")
	}

	if strings.ContainsAny(component, `/\`) {
		return fmt.Errorf("path component must not contain path separators")
	}

	// Null bytes and control characters are never valid in names
	for _, r := range component {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("path component contains control characters")
		}
	}

	return nil
}

// ValidateLibraryPath checks that a slash-separated relative path stays
// inside basePath once cleaned and joined.
func ValidateLibraryPath(relPath, basePath string) error {
	if relPath == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.Contains(relPath, "..") {
		return fmt.Errorf("path contains invalid directory traversal")
	}

	cleanPath := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(cleanPath) {
		return fmt.Errorf("path must be relative")
	}

	fullPath := filepath.Join(basePath, cleanPath)
	root := filepath.Clean(basePath)
	if fullPath != root && !strings.HasPrefix(fullPath, root+string(filepath.Separator)) {
		return fmt.Errorf("path escapes the library root")
	}
	return nil
}
