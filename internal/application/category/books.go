package category

import (
	"cmp"
	"context"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/xiebiao/libadmin/internal/application/listview"
	"github.com/xiebiao/libadmin/internal/domain/book"
	"github.com/xiebiao/libadmin/internal/domain/category"
	"github.com/xiebiao/libadmin/internal/domain/listquery"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

// BooksScreen lists the books of the category named by its scope. The API
// returns the whole set, so search, sort and paging happen here.
type BooksScreen struct {
	*listview.Controller[book.Book]
}

// NewBooksScreen opens the list for categoryID; zero leaves it empty until
// Show picks a category.
func NewBooksScreen(books Books, env listview.Env, categoryID int64, initial url.Values) *BooksScreen {
	scope := ""
	if categoryID > 0 {
		scope = strconv.FormatInt(categoryID, 10)
	}
	ctrl := listview.New(listview.Configure(env, listview.Options[book.Book]{
		Schema:  category.BooksSchema,
		Fetch:   fetchCategoryBooks(books),
		ID:      book.ID,
		Scope:   scope,
		Initial: initial,
	}))
	return &BooksScreen{Controller: ctrl}
}

// Show switches the list to another category.
func (s *BooksScreen) Show(categoryID int64) {
	s.SetScope(strconv.FormatInt(categoryID, 10))
}

// ShowWith switches the category and the query in one step.
func (s *BooksScreen) ShowWith(categoryID int64, values url.Values) {
	s.LoadScoped(values, strconv.FormatInt(categoryID, 10))
}

func fetchCategoryBooks(books Books) listview.FetchFunc[book.Book] {
	return func(ctx context.Context, req listquery.Request) (listquery.Page[book.Book], error) {
		if req.Scope == "" {
			return listquery.Page[book.Book]{Items: []book.Book{}}, nil
		}
		id, err := strconv.ParseInt(req.Scope, 10, 64)
		if err != nil || id <= 0 {
			return listquery.Page[book.Book]{}, apperrors.ErrInvalidParams.WithMessage("invalid category id")
		}

		withAuthors := req.Filters[category.FilterWithAuthors] == "true"
		all, err := books.CategoryBooks(ctx, id, withAuthors)
		if err != nil {
			return listquery.Page[book.Book]{}, translate(err)
		}
		return pageOf(all, req), nil
	}
}

func pageOf(all []book.Book, req listquery.Request) listquery.Page[book.Book] {
	term := strings.ToLower(strings.TrimSpace(req.Search))
	matched := make([]book.Book, 0, len(all))
	for _, b := range all {
		if term == "" || strings.Contains(strings.ToLower(b.Title), term) || strings.Contains(strings.ToLower(b.ISBN), term) {
			matched = append(matched, b)
		}
	}

	slices.SortStableFunc(matched, func(a, b book.Book) int {
		var c int
		switch req.SortBy {
		case category.SortBookYear:
			c = cmp.Compare(a.PublishedYear, b.PublishedYear)
		default:
			c = cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
		if req.SortDesc {
			return -c
		}
		return c
	})

	start := (req.Page - 1) * req.PageSize
	if start < 0 || start >= len(matched) {
		return listquery.Page[book.Book]{Items: []book.Book{}, TotalCount: len(matched)}
	}
	end := min(start+req.PageSize, len(matched))
	return listquery.Page[book.Book]{Items: matched[start:end], TotalCount: len(matched)}
}
