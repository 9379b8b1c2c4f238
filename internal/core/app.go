package core

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/bookshelf-go/bookshelf/internal/config"
	"github.com/bookshelf-go/bookshelf/internal/db"
	"github.com/bookshelf-go/bookshelf/internal/jobs"
	"github.com/bookshelf-go/bookshelf/internal/websocket"
)

// Version is the application version reported by the API.
const Version = "1.2.0"

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	cfg        *config.Config
	database   *sql.DB
	wsHub      *websocket.Hub
	jobManager *jobs.JobManager
	version    string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database); err != nil {
		// We can't proceed without a valid database schema.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	log.Println("Core application setup complete.")
	return &App{
		cfg:        cfg,
		database:   database,
		wsHub:      hub,
		jobManager: jobs.NewManager(),
		version:    Version,
	}, nil
}

// NewWith assembles an App from pre-built components. Tests use it to
// inject an in-memory database and a fresh hub.
func NewWith(cfg *config.Config, database *sql.DB, hub *websocket.Hub, jm *jobs.JobManager, version string) *App {
	return &App{
		cfg:        cfg,
		database:   database,
		wsHub:      hub,
		jobManager: jm,
		version:    version,
	}
}

func (a *App) Config() *config.Config       { return a.cfg }
func (a *App) DB() *sql.DB                  { return a.database }
func (a *App) WsHub() *websocket.Hub        { return a.wsHub }
func (a *App) JobManager() *jobs.JobManager { return a.jobManager }
func (a *App) Version() string              { return a.version }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.database != nil {
		a.database.Close()
	}
}
