// Package bookcategory models the bulk category manager: books grouped with
// the categories linked to them.
package bookcategory

import (
	"context"

	"github.com/xiebiao/libadmin/internal/domain/book"
	"github.com/xiebiao/libadmin/internal/domain/category"
	"github.com/xiebiao/libadmin/internal/domain/listquery"
)

// Group is one book and its category links.
type Group struct {
	BookID     int64               `json:"bookId"`
	BookTitle  string              `json:"bookTitle"`
	Categories []book.CategoryLink `json:"categories"`
}

// LinkIDs returns the link ids of the group.
func (g Group) LinkIDs() []int64 {
	ids := make([]int64, 0, len(g.Categories))
	for _, c := range g.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// Available returns the categories from all that are not linked yet.
func (g Group) Available(all []category.Category) []category.Category {
	linked := make(map[int64]struct{}, len(g.Categories))
	for _, c := range g.Categories {
		linked[c.CategoryID] = struct{}{}
	}
	out := make([]category.Category, 0, len(all))
	for _, c := range all {
		if _, ok := linked[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Without returns g minus the given link ids.
func (g Group) Without(linkIDs []int64) Group {
	drop := make(map[int64]struct{}, len(linkIDs))
	for _, id := range linkIDs {
		drop[id] = struct{}{}
	}
	kept := make([]book.CategoryLink, 0, len(g.Categories))
	for _, c := range g.Categories {
		if _, ok := drop[c.ID]; !ok {
			kept = append(kept, c)
		}
	}
	g.Categories = kept
	return g
}

// With returns g plus the given links, ignoring categories already present.
func (g Group) With(links []book.CategoryLink) Group {
	out := append([]book.CategoryLink(nil), g.Categories...)
	for _, l := range links {
		dup := false
		for _, c := range out {
			if c.CategoryID == l.CategoryID {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, l)
		}
	}
	g.Categories = out
	return g
}

const SortTitle = "title"

// ListSchema describes the bulk category manager. It shows five books per
// page by default.
var ListSchema = listquery.Schema{
	Name:            "bookcategories",
	SortFields:      []string{SortTitle},
	DefaultSortBy:   SortTitle,
	DefaultPageSize: 5,
}

func ID(g Group) int64 { return g.BookID }

// Gateway is what the bulk manager and the category screen need from the
// book-category endpoints.
type Gateway interface {
	BookCategoriesGroupedByBook(ctx context.Context, req listquery.Request) (listquery.Page[Group], error)
	CategoryBooks(ctx context.Context, categoryID int64, withAuthors bool) ([]book.Book, error)
	AddBookCategories(ctx context.Context, bookID int64, categoryIDs []int64) ([]book.CategoryLink, error)
	AddBookCategory(ctx context.Context, bookID, categoryID int64) (book.CategoryLink, error)
	DeleteBookCategory(ctx context.Context, linkID int64) error
	DeleteBookCategoriesByRelationIDs(ctx context.Context, linkIDs []int64) error
}
