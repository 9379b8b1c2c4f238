// This package maintains the in-memory category/book tree that backs the
// library explorer. Category nodes carry lazily-populated children; leaf
// nodes carry the book record. Every operation treats the tree as
// immutable and returns a fresh snapshot, so callers can hand out
// references freely and swap in the result on success.

package foldertree

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bookshelf-go/bookshelf/internal/models"
)

// FolderFileType marks a category node. Leaf nodes carry the book's own
// file type (txt, epub, ...) instead.
const FolderFileType = "folder"

// Node is a single entry in the folder tree. Category nodes have ID equal
// to the category name; leaf nodes have ID equal to "category/bookID".
type Node struct {
	ID       string       `json:"id"`
	Label    string       `json:"label"`
	FileType string       `json:"fileType"`
	Children []*Node      `json:"children,omitempty"`
	Book     *models.Book `json:"book,omitempty"`
}

// newCollator returns a collator for locale-aware label ordering.
// Collators are not safe for concurrent use, so each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und)
}

// NewTree builds the top-level tree from a list of category names,
// sorted with locale-aware comparison. Children stay unset until a
// category is expanded.
func NewTree(categories []string) []*Node {
	sorted := make([]string, len(categories))
	copy(sorted, categories)
	c := newCollator()
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.CompareString(sorted[i], sorted[j]) < 0
	})

	tree := make([]*Node, 0, len(sorted))
	for _, category := range sorted {
		tree = append(tree, &Node{
			ID:       category,
			Label:    category,
			FileType: FolderFileType,
		})
	}
	return tree
}

// Refresh returns a new top-level tree for the given category list. The
// children of categories present in the old tree are carried over, so a
// refresh never drops already-loaded entries.
func Refresh(tree []*Node, categories []string) []*Node {
	fresh := NewTree(categories)
	for i, node := range fresh {
		if _, old := findCategory(tree, node.ID); old != nil && len(old.Children) > 0 {
			updated := *node
			updated.Children = old.Children
			fresh[i] = &updated
		}
	}
	return fresh
}

// NewLeaf builds a leaf node for a book under the given category.
func NewLeaf(categoryID string, book *models.Book) *Node {
	return &Node{
		ID:       EntryID(categoryID, book.ID),
		Label:    book.Title + "." + book.FileType,
		FileType: book.FileType,
		Book:     book,
	}
}

// EntryID returns the composite identifier of a leaf node.
func EntryID(categoryID string, bookID int64) string {
	return categoryID + "/" + strconv.FormatInt(bookID, 10)
}

// SplitEntryID splits a composite entry id into its category and book id
// parts. The book id part is empty for category ids.
func SplitEntryID(entryID string) (category, bookID string) {
	parts := strings.SplitN(entryID, "/", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// findCategory returns the index and node of the category, or -1 and nil.
func findCategory(tree []*Node, categoryID string) (int, *Node) {
	for i, node := range tree {
		if node.ID == categoryID {
			return i, node
		}
	}
	return -1, nil
}

// NeedsChildren reports whether the category's children still have to be
// fetched. It performs no I/O itself; callers load the book list and merge
// it in via AttachChildren. A second expansion of an already-populated
// category reports false, which keeps loading at-most-once per category.
func NeedsChildren(tree []*Node, categoryID string) bool {
	_, node := findCategory(tree, categoryID)
	if node == nil {
		return false
	}
	return len(node.Children) == 0
}

// AttachChildren returns a new tree in which the given category's children
// are populated with one leaf per book, stable-sorted by title using
// locale-aware comparison. The input tree and its nodes are not mutated;
// re-invoking with the same book list produces an order-for-order
// identical children slice.
func AttachChildren(tree []*Node, categoryID string, books []*models.Book) []*Node {
	idx, node := findCategory(tree, categoryID)
	if node == nil {
		return tree
	}

	sorted := make([]*models.Book, len(books))
	copy(sorted, books)
	c := newCollator()
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.CompareString(sorted[i].Title, sorted[j].Title) < 0
	})

	children := make([]*Node, 0, len(sorted))
	for _, book := range sorted {
		children = append(children, NewLeaf(categoryID, book))
	}

	updated := *node
	updated.Children = children
	return replaceNode(tree, idx, &updated)
}

// FindBook locates the book attached to the leaf with the given entry id.
// It returns nil when the category, the leaf, or the book record is
// missing; a stale id is not an error.
func FindBook(tree []*Node, entryID string) *models.Book {
	category, bookID := SplitEntryID(entryID)
	if bookID == "" {
		return nil
	}
	_, node := findCategory(tree, category)
	if node == nil {
		return nil
	}
	for _, child := range node.Children {
		if child.ID == entryID {
			return child.Book
		}
	}
	return nil
}

// NextEntryID returns the id of the sibling immediately after the given
// entry within its category, or "" when the entry is the last one or
// cannot be found. The valid next index is index+1 when
// index+1 <= len(children)-1.
func NextEntryID(tree []*Node, entryID string) string {
	category, bookID := SplitEntryID(entryID)
	if bookID == "" {
		return ""
	}
	_, node := findCategory(tree, category)
	if node == nil {
		return ""
	}
	for i, child := range node.Children {
		if child.ID == entryID {
			if i+1 <= len(node.Children)-1 {
				return node.Children[i+1].ID
			}
			return ""
		}
	}
	return ""
}

// RemoveBook returns a new tree with the leaf matching entryID removed
// from its category. When the entry is not present the returned tree is
// equivalent to the input.
func RemoveBook(tree []*Node, entryID string) []*Node {
	category, bookID := SplitEntryID(entryID)
	if bookID == "" {
		return tree
	}
	idx, node := findCategory(tree, category)
	if node == nil {
		return tree
	}

	found := false
	children := make([]*Node, 0, len(node.Children))
	for _, child := range node.Children {
		if child.ID == entryID {
			found = true
			continue
		}
		children = append(children, child)
	}
	if !found {
		return tree
	}

	updated := *node
	updated.Children = children
	return replaceNode(tree, idx, &updated)
}

// AppendBook returns a new tree with the leaf appended to the category's
// children. Used after a successful move or rename to place the entry
// under its new category.
func AppendBook(tree []*Node, categoryID string, leaf *Node) []*Node {
	idx, node := findCategory(tree, categoryID)
	if node == nil {
		return tree
	}

	children := make([]*Node, len(node.Children), len(node.Children)+1)
	copy(children, node.Children)
	children = append(children, leaf)

	updated := *node
	updated.Children = children
	return replaceNode(tree, idx, &updated)
}

// HasLabel reports whether a leaf with the given display label already
// exists under the category. This is the client-side duplicate pre-check
// before a rename or move; the backend stays the authority on conflicts.
func HasLabel(tree []*Node, categoryID, label string) bool {
	_, node := findCategory(tree, categoryID)
	if node == nil {
		return false
	}
	for _, child := range node.Children {
		if child.Label == label {
			return true
		}
	}
	return false
}

// replaceNode copies the top level of the tree with the node at idx
// substituted. Untouched nodes are shared between snapshots.
func replaceNode(tree []*Node, idx int, node *Node) []*Node {
	out := make([]*Node, len(tree))
	copy(out, tree)
	out[idx] = node
	return out
}
