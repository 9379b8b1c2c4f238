package util

import (
	"testing"
)

func TestValidatePathComponent(t *testing.T) {
	tests := []struct {
		name        string
		component   string
		expectError bool
	}{
		{name: "plain category name", component: "Fiction", expectError: false},
		{name: "name with spaces and brackets", component: "[Jane Austen] Emma.txt", expectError: false},
		{name: "unicode name", component: "살인자의 기억법.epub", expectError: false},
		{name: "empty", component: "", expectError: true},
		{name: "parent traversal", component: "..", expectError: true},
		{name: "traversal inside name", component: "a..b", expectError: true},
		{name: "forward slash", component: "a/b", expectError: true},
		{name: "backslash", component: `a\b`, expectError: true},
		{name: "absolute path", component: "/etc/passwd", expectError: true},
		{name: "null byte", component: "a\x00b", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathComponent(tt.component)
			if tt.expectError && err == nil {
				t.Errorf("Expected error for %q, got none", tt.component)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error for %q: %v", tt.component, err)
			}
		})
	}
}

func TestValidateLibraryPath(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name        string
		relPath     string
		expectError bool
	}{
		{name: "category and file", relPath: "Fiction/Emma.txt", expectError: false},
		{name: "single file", relPath: "Emma.txt", expectError: false},
		{name: "empty", relPath: "", expectError: true},
		{name: "escapes root", relPath: "../outside.txt", expectError: true},
		{name: "traversal mid-path", relPath: "Fiction/../../outside.txt", expectError: true},
		{name: "absolute", relPath: "/etc/passwd", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLibraryPath(tt.relPath, base)
			if tt.expectError && err == nil {
				t.Errorf("Expected error for %q, got none", tt.relPath)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error for %q: %v", tt.relPath, err)
			}
		})
	}
}
