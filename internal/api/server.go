// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bookshelf-go/bookshelf/internal/core"
	"github.com/bookshelf-go/bookshelf/internal/foldertree"
	"github.com/bookshelf-go/bookshelf/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app   *core.App
	db    *sql.DB
	store *store.Store

	// treeMu guards the current folder tree snapshot. Tree operations
	// build a new snapshot and swap it in here.
	treeMu sync.RWMutex
	tree   []*foldertree.Node
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:   app,
		db:    app.DB(),
		store: store.New(app.DB()),
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	// Public routes
	r.Post("/api/users/login", s.handleLogin)
	r.Get("/api/version", s.handleGetVersion)

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Post("/api/users/logout", s.handleLogout)
		r.Get("/api/users/me", s.handleGetMe)

		r.Route("/api", func(r chi.Router) {
			// Category and book browsing
			r.Get("/categories", s.handleGetCategories)
			r.Get("/categories/{category}", s.handleGetBooksByCategory)

			// Folder tree navigation
			r.Get("/tree", s.handleGetTree)
			r.Get("/categories/{category}/tree", s.handleGetCategoryTree)
			r.Get("/categories/{category}/books/{bookID}/next", s.handleGetNextBook)

			r.Get("/books/{bookID}", s.handleGetBook)
			r.Put("/books/{bookID}", s.handleUpdateBook)
			r.Delete("/dirs/{category}/files/{fileName}", s.handleDeleteFile)

			r.Get("/search/{keyword}", s.handleSearchBooks)
			r.Get("/similar/{bookID}", s.handleSimilarBooks)
			r.Get("/download/{bookID}", s.handleDownloadBook)

			// Admin Job Triggers
			r.Route("/admin", func(r chi.Router) {
				r.Use(s.AdminOnlyMiddleware)

				r.Get("/jobs/status", s.handleGetAdminJobsStatus)
				r.Post("/jobs/run", s.handleRunAdminJob)

				// User Management Routes
				r.Get("/users", s.handleAdminListUsers)
				r.Post("/users", s.handleAdminCreateUser)
				r.Put("/users/{userID}", s.handleAdminUpdateUser)
				r.Delete("/users/{userID}", s.handleAdminDeleteUser)
			})
		})
	})

	// WebSocket route
	r.Get("/ws/admin/progress", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub().ServeWs(w, r)
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
