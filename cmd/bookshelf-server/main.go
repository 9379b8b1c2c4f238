package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/bookshelf-go/bookshelf/internal/api"
	"github.com/bookshelf-go/bookshelf/internal/core"
	"github.com/bookshelf-go/bookshelf/internal/jobs"
	"github.com/bookshelf-go/bookshelf/internal/library"
)

// A minimal server entrypoint: no watcher, no admin provisioning. Useful
// for development and for running behind a process supervisor that
// handles restarts itself.
func main() {
	app, err := core.New()
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	app.JobManager().Register("library-sync", library.LibrarySync)

	// Initial library scan on startup
	log.Println("Performing initial library scan...")
	scanner := library.NewScanner(app.Config(), app.DB())
	if err := scanner.Scan(); err != nil {
		log.Printf("Warning: initial library scan failed: %v", err)
	}
	log.Println("Initial scan complete.")

	// Periodic scanning in the background
	jobs.StartJobs(app)

	server := api.NewServer(app)
	addr := fmt.Sprintf(":%d", app.Config().Port)
	log.Printf("Starting web server on %s", addr)

	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
