package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookshelf-go/bookshelf/internal/foldertree"
	"github.com/bookshelf-go/bookshelf/internal/models"
)

// refreshTree rebuilds the top level of the folder tree from the current
// category list, carrying over already-loaded children.
func (s *Server) refreshTree() ([]*foldertree.Node, error) {
	categories, err := s.store.GetCategories()
	if err != nil {
		return nil, err
	}

	s.treeMu.Lock()
	defer s.treeMu.Unlock()
	s.tree = foldertree.Refresh(s.tree, categories)
	return s.tree, nil
}

// loadCategory makes sure the category's children are populated, fetching
// the book list at most once, and returns the current snapshot.
func (s *Server) loadCategory(category string) ([]*foldertree.Node, error) {
	s.treeMu.RLock()
	tree := s.tree
	s.treeMu.RUnlock()

	if tree == nil {
		var err error
		if tree, err = s.refreshTree(); err != nil {
			return nil, err
		}
	}

	// Snapshots are immutable, so the fetched tree can be inspected and
	// returned without holding the lock.
	if !foldertree.NeedsChildren(tree, category) {
		return tree, nil
	}

	books, err := s.store.GetBooksByCategory(category, 1, 0)
	if err != nil {
		return nil, err
	}

	s.treeMu.Lock()
	defer s.treeMu.Unlock()
	// Re-check under the write lock; a concurrent request may have won.
	if foldertree.NeedsChildren(s.tree, category) {
		s.tree = foldertree.AttachChildren(s.tree, category, books)
	}
	return s.tree, nil
}

// moveTreeEntry removes the leaf with the old entry id and, when the new
// category's children are already loaded, appends the updated leaf there.
// An unloaded category picks the book up on its next lazy load instead.
func (s *Server) moveTreeEntry(oldEntryID, newCategory string, book *models.Book) {
	s.treeMu.Lock()
	defer s.treeMu.Unlock()
	if s.tree == nil {
		return
	}
	s.tree = foldertree.RemoveBook(s.tree, oldEntryID)
	if !foldertree.NeedsChildren(s.tree, newCategory) {
		s.tree = foldertree.AppendBook(s.tree, newCategory, foldertree.NewLeaf(newCategory, book))
	}
}

// removeTreeEntry drops the leaf with the given entry id from the
// current snapshot, if one exists.
func (s *Server) removeTreeEntry(entryID string) {
	s.treeMu.Lock()
	defer s.treeMu.Unlock()
	if s.tree == nil {
		return
	}
	s.tree = foldertree.RemoveBook(s.tree, entryID)
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.refreshTree()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to build folder tree")
		return
	}
	RespondWithJSON(w, http.StatusOK, tree)
}

func (s *Server) handleGetCategoryTree(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	tree, err := s.loadCategory(category)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load category")
		return
	}

	for _, node := range tree {
		if node.ID == category {
			RespondWithJSON(w, http.StatusOK, node)
			return
		}
	}
	RespondWithError(w, http.StatusNotFound, "Category not found")
}

// handleGetNextBook returns the id of the entry that follows the given
// book within its category, or an empty id when the book is the last one.
func (s *Server) handleGetNextBook(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	tree, err := s.loadCategory(category)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load category")
		return
	}

	nextID := foldertree.NextEntryID(tree, foldertree.EntryID(category, bookID))
	RespondWithJSON(w, http.StatusOK, map[string]string{"next_entry_id": nextID})
}
