package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bookshelf-go/bookshelf/internal/config"
	"github.com/bookshelf-go/bookshelf/internal/db"
	"github.com/bookshelf-go/bookshelf/internal/library"
	"github.com/bookshelf-go/bookshelf/internal/store"
)

// bookshelf-cli runs library maintenance from the command line:
//
//	bookshelf-cli scan            scan the library into the database
//	bookshelf-cli search <query>  search titles, authors and summaries
func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	switch flag.Arg(0) {
	case "scan":
		scanner := library.NewScanner(cfg, database)
		log.Printf("Starting scan of library at: %s", cfg.Library.Path)
		if err := scanner.Scan(); err != nil {
			log.Fatalf("Error scanning library: %v", err)
		}
		fmt.Println("Library scan finished successfully.")

	case "search":
		if flag.NArg() < 2 {
			usage()
		}
		st := store.New(database)
		books, err := st.SearchBooks(flag.Arg(1), 50)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		for _, book := range books {
			author := book.Author
			if author == "" {
				author = "-"
			}
			fmt.Printf("%6d  %-20s  %-30s  %s\n", book.ID, book.Category, author, book.Title)
		}
		fmt.Printf("%d book(s) found.\n", len(books))

	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: bookshelf-cli <scan|search> [query]")
	os.Exit(1)
}
