// This file holds a shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/bookshelf-go/bookshelf/internal/api"
	"github.com/bookshelf-go/bookshelf/internal/config"
	"github.com/bookshelf-go/bookshelf/internal/core"
	"github.com/bookshelf-go/bookshelf/internal/jobs"
	"github.com/bookshelf-go/bookshelf/internal/websocket"
)

// SetupTestApp initializes a core.App backed by an in-memory database.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	db := SetupTestDB(t)

	cfg := &config.Config{}
	cfg.Library.Path = t.TempDir()
	hub := websocket.NewHub()
	go hub.Run()

	return core.NewWith(cfg, db, hub, jobs.NewManager(), "test")
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB, *core.App) {
	t.Helper()
	app := SetupTestApp(t)
	server := api.NewServer(app)
	return server, app.DB(), app
}
