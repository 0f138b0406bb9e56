package book

import (
	"strconv"
	"strings"

	"github.com/xiebiao/libadmin/internal/domain/listquery"
)

// Book as returned by the library API. Authors and Categories are the link
// records joining the book to its authors and categories.
type Book struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	ISBN          string         `json:"isbn"`
	PublishedYear int            `json:"publishedYear"`
	Price         float64        `json:"price"`
	Authors       []AuthorLink   `json:"authors,omitempty"`
	Categories    []CategoryLink `json:"categories,omitempty"`
}

// AuthorLink is one book-author association. ID is the link's own id, the
// one used to delete the association; deleting it leaves both sides intact.
type AuthorLink struct {
	ID        int64  `json:"bookAuthorId"`
	BookID    int64  `json:"bookId"`
	AuthorID  int64  `json:"authorId"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// FullName of the linked author.
func (l AuthorLink) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// CategoryLink is one book-category association.
type CategoryLink struct {
	ID           int64  `json:"bookCategoryId"`
	BookID       int64  `json:"bookId"`
	CategoryID   int64  `json:"categoryId"`
	CategoryName string `json:"categoryName,omitempty"`
}

// Input is the create/update form of a book. AuthorIDs and CategoryIDs are
// only honoured on create.
type Input struct {
	Title         string  `json:"title" validate:"notblank,max=200"`
	ISBN          string  `json:"isbn" validate:"notblank,max=20"`
	PublishedYear int     `json:"publishedYear" validate:"required,min=1,notfuture"`
	Price         float64 `json:"price" validate:"gte=0"`
	AuthorIDs     []int64 `json:"authorIds,omitempty" validate:"omitempty,dive,gt=0"`
	CategoryIDs   []int64 `json:"categoryIds,omitempty" validate:"omitempty,dive,gt=0"`
}

// Apply copies the editable fields of in onto b.
func (b Book) Apply(in Input) Book {
	b.Title = in.Title
	b.ISBN = in.ISBN
	b.PublishedYear = in.PublishedYear
	b.Price = in.Price
	return b
}

// HasAuthor reports whether authorID is already linked.
func (b Book) HasAuthor(authorID int64) bool {
	for _, l := range b.Authors {
		if l.AuthorID == authorID {
			return true
		}
	}
	return false
}

// HasCategory reports whether categoryID is already linked.
func (b Book) HasCategory(categoryID int64) bool {
	for _, l := range b.Categories {
		if l.CategoryID == categoryID {
			return true
		}
	}
	return false
}

const (
	SortTitle         = "title"
	SortISBN          = "isbn"
	SortPublishedYear = "publishedYear"
	SortPrice         = "price"

	FilterPublishedYear = "publishedYear"
)

// ListSchema describes the books screen.
var ListSchema = listquery.Schema{
	Name:          "books",
	SortFields:    []string{SortTitle, SortISBN, SortPublishedYear, SortPrice},
	DefaultSortBy: SortTitle,
	Filters:       []string{FilterPublishedYear},
}

// ID returns the key used by list controllers.
func ID(b Book) int64 { return b.ID }

// ParseYear reads a publishedYear filter value; zero means no filter.
func ParseYear(s string) int {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y < 1 {
		return 0
	}
	return y
}
