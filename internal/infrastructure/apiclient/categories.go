package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xiebiao/libadmin/internal/domain/book"
	"github.com/xiebiao/libadmin/internal/domain/bookcategory"
	"github.com/xiebiao/libadmin/internal/domain/category"
	"github.com/xiebiao/libadmin/internal/domain/listquery"
)

// itemsPage is the {items, totalCount} body used by the category, member
// and grouped book-category listings.
type itemsPage[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}

func (p itemsPage[T]) page() listquery.Page[T] {
	return listquery.Page[T]{Items: nonNil(p.Items), TotalCount: p.TotalCount}
}

type bookCategoryBody struct {
	BookID     int64 `json:"bookId"`
	CategoryID int64 `json:"categoryId"`
}

type relationIDsBody struct {
	RelationIDs []int64 `json:"relationIds"`
}

func (c *Client) AllCategories(ctx context.Context) ([]category.Category, error) {
	var out []category.Category
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/category/all", path: "/category/all"}, &out)
	return nonNil(out), err
}

// ListCategories pages categories. The endpoint always sorts by name.
func (c *Client) ListCategories(ctx context.Context, req listquery.Request) (listquery.Page[category.Category], error) {
	q := url.Values{}
	q.Set("desc", strconv.FormatBool(req.SortDesc))
	q.Set("search", req.Search)
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("pageSize", strconv.Itoa(req.PageSize))

	var body itemsPage[category.Category]
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/category", path: "/category", query: q}, &body); err != nil {
		return listquery.Page[category.Category]{}, err
	}
	return body.page(), nil
}

func (c *Client) CreateCategory(ctx context.Context, in category.Input) (category.Category, error) {
	var out category.Category
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/category", path: "/category", body: in}, &out)
	return out, err
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in category.Input) (category.Category, error) {
	out := category.Category{ID: id, Name: in.Name}
	err := c.do(ctx, call{method: http.MethodPut, endpoint: "/category/{id}", path: idPath("/category/%d", id), body: in}, &out)
	if err != nil {
		return category.Category{}, err
	}
	return out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, endpoint: "/category/{id}", path: idPath("/category/%d", id)}, nil)
}

// CategoryBooks lists the books linked to a category, optionally with
// their authors.
func (c *Client) CategoryBooks(ctx context.Context, categoryID int64, withAuthors bool) ([]book.Book, error) {
	format, endpoint := "/bookcategory/%d/books", "/bookcategory/{id}/books"
	if withAuthors {
		format, endpoint = "/bookcategory/%d/books-with-authors", "/bookcategory/{id}/books-with-authors"
	}

	var out []book.Book
	err := c.do(ctx, call{method: http.MethodGet, endpoint: endpoint, path: idPath(format, categoryID)}, &out)
	return nonNil(out), err
}

func (c *Client) BookCategoriesGroupedByBook(ctx context.Context, req listquery.Request) (listquery.Page[bookcategory.Group], error) {
	var body itemsPage[bookcategory.Group]
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/bookcategory/grouped-by-book",
		path:     "/bookcategory/grouped-by-book",
		query:    pagedQuery(req),
	}, &body)
	if err != nil {
		return listquery.Page[bookcategory.Group]{}, err
	}
	return body.page(), nil
}

func (c *Client) AddBookCategory(ctx context.Context, bookID, categoryID int64) (book.CategoryLink, error) {
	var out book.CategoryLink
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/bookcategory",
		path:     "/bookcategory",
		body:     bookCategoryBody{BookID: bookID, CategoryID: categoryID},
	}, &out)
	if err != nil {
		return book.CategoryLink{}, err
	}
	if out.ID == 0 {
		links, err := c.readBackCategoryLinks(ctx, bookID, []int64{categoryID})
		if err != nil {
			return book.CategoryLink{}, err
		}
		if len(links) > 0 {
			return links[0], nil
		}
	}
	return out, nil
}

// readBackCategoryLinks returns the existing links of bookID to the given
// categories.
func (c *Client) readBackCategoryLinks(ctx context.Context, bookID int64, categoryIDs []int64) ([]book.CategoryLink, error) {
	all, err := c.BookCategories(ctx, bookID)
	if err != nil {
		return nil, err
	}
	want := set(categoryIDs)
	out := make([]book.CategoryLink, 0, len(categoryIDs))
	for _, l := range all {
		if _, ok := want[l.CategoryID]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (c *Client) DeleteBookCategory(ctx context.Context, linkID int64) error {
	return c.do(ctx, call{method: http.MethodDelete, endpoint: "/bookcategory/{id}", path: idPath("/bookcategory/%d", linkID)}, nil)
}

func (c *Client) DeleteBookCategoriesByRelationIDs(ctx context.Context, linkIDs []int64) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/bookcategory/delete/by-relation-ids",
		path:     "/bookcategory/delete/by-relation-ids",
		body:     relationIDsBody{RelationIDs: linkIDs},
	}, nil)
}

func (c *Client) CategoryBooksWithAuthors(ctx context.Context, categoryID int64) ([]book.Book, error) {
	return c.CategoryBooks(ctx, categoryID, true)
}
