package author

import (
	"context"
	"strings"

	"github.com/xiebiao/libadmin/internal/domain/listquery"
)

type Author struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (a Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Apply copies the form fields onto a.
func (a Author) Apply(in Input) Author {
	a.FirstName = in.FirstName
	a.LastName = in.LastName
	return a
}

// Input is the add/edit form of an author. BookID, when set, links the
// saved author to that book.
type Input struct {
	FirstName string `json:"firstName" validate:"notblank,max=100"`
	LastName  string `json:"lastName" validate:"notblank,max=100"`
	BookID    int64  `json:"bookId,omitempty" validate:"gte=0"`
}

// Normalize trims both names.
func (in Input) Normalize() Input {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	return in
}

const (
	SortFirstName = "FirstName"
	SortLastName  = "LastName"

	// FilterFirstName and FilterLastName narrow the list by name prefix
	// text. The free search text also searches first names.
	FilterFirstName = "firstName"
	FilterLastName  = "lastName"
)

// ListSchema describes the authors screen.
var ListSchema = listquery.Schema{
	Name:          "authors",
	SortFields:    []string{SortFirstName, SortLastName},
	DefaultSortBy: SortFirstName,
	Filters:       []string{FilterFirstName, FilterLastName},
}

func ID(a Author) int64 { return a.ID }

// Gateway lists authors for pickers.
type Gateway interface {
	AllAuthors(ctx context.Context) ([]Author, error)
}

// Store is what the authors screen needs from the library API.
type Store interface {
	ListAuthors(ctx context.Context, req listquery.Request) (listquery.Page[Author], error)
	CreateAuthor(ctx context.Context, in Input) (Author, error)
	UpdateAuthor(ctx context.Context, id int64, in Input) (Author, error)
	DeleteAuthor(ctx context.Context, id int64) error
}
