// This test file verifies the configuration loading logic using Viper.

package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults when no config file", func(t *testing.T) {
		// Ensure no config file exists for this test
		os.Remove("config.yml")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		if cfg.Port != 8080 {
			t.Errorf("Expected default port 8080, got %d", cfg.Port)
		}
		if cfg.ScanInterval != 60 {
			t.Errorf("Expected default scan interval 60, got %d", cfg.ScanInterval)
		}
		if cfg.Database.Path != "./bookshelf.db" {
			t.Errorf("Expected default db path './bookshelf.db', got '%s'", cfg.Database.Path)
		}
		if cfg.Library.Path != "./books" {
			t.Errorf("Expected default library path './books', got '%s'", cfg.Library.Path)
		}
	})

	t.Run("Loads from config file", func(t *testing.T) {
		configContent := `
port: 9999
database:
  path: "/tmp/test.db"
library:
  path: "/tmp/test-books"
unknown_setting: "should be ignored"
`
		// Create the config file in the current directory so Viper can find it.
		configPath := "config.yml"
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write test config file: %v", err)
		}
		defer os.Remove(configPath)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		if cfg.Port != 9999 {
			t.Errorf("Expected port 9999, got %d", cfg.Port)
		}
		if cfg.Database.Path != "/tmp/test.db" {
			t.Errorf("Expected db path '/tmp/test.db', got '%s'", cfg.Database.Path)
		}
		if cfg.Library.Path != "/tmp/test-books" {
			t.Errorf("Expected library path '/tmp/test-books', got '%s'", cfg.Library.Path)
		}
	})

	t.Run("Environment variable override", func(t *testing.T) {
		os.Remove("config.yml")
		t.Setenv("BOOKSHELF_LIBRARY_PATH", "/srv/books")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}
		if cfg.Library.Path != "/srv/books" {
			t.Errorf("Expected library path '/srv/books', got '%s'", cfg.Library.Path)
		}
	})
}
