package category

import (
	"context"
	"strings"

	"github.com/xiebiao/libadmin/internal/domain/listquery"
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Input is the add/rename form.
type Input struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// Normalize trims the name before it is validated and sent.
func (in Input) Normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	return in
}

const SortName = "name"

// ListSchema describes the categories screen.
var ListSchema = listquery.Schema{
	Name:          "categories",
	SortFields:    []string{SortName},
	DefaultSortBy: SortName,
}

func ID(c Category) int64 { return c.ID }

// Gateway is what the categories screen needs from the library API.
type Gateway interface {
	AllCategories(ctx context.Context) ([]Category, error)
	ListCategories(ctx context.Context, req listquery.Request) (listquery.Page[Category], error)
	CreateCategory(ctx context.Context, in Input) (Category, error)
	UpdateCategory(ctx context.Context, id int64, in Input) (Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

const (
	SortBookTitle = "title"
	SortBookYear  = "publishedYear"

	// FilterWithAuthors set to "true" also loads the authors of each book.
	FilterWithAuthors = "withAuthors"
)

// BooksSchema describes the list of books filed under one category. The
// scope of the list is the category id.
var BooksSchema = listquery.Schema{
	Name:          "categorybooks",
	SortFields:    []string{SortBookTitle, SortBookYear},
	DefaultSortBy: SortBookTitle,
	Filters:       []string{FilterWithAuthors},
	FilterValues:  map[string][]string{FilterWithAuthors: {"true", "false"}},
}
