package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xiebiao/libadmin/internal/domain/author"
	"github.com/xiebiao/libadmin/internal/domain/book"
	"github.com/xiebiao/libadmin/internal/domain/listquery"
)

// bookPage is the body of GET /book/paged.
type bookPage struct {
	Books      []book.Book `json:"books"`
	TotalCount int         `json:"totalCount"`
}

type bookAuthorsBody struct {
	BookID    int64   `json:"bookId"`
	AuthorIDs []int64 `json:"authorIds"`
}

type bookCategoriesBody struct {
	BookID      int64   `json:"bookId"`
	CategoryIDs []int64 `json:"categoryIds"`
}

// pagedQuery encodes the common list parameters.
func pagedQuery(req listquery.Request) url.Values {
	q := url.Values{}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.SortBy != "" {
		q.Set("sortBy", req.SortBy)
	}
	q.Set("desc", strconv.FormatBool(req.SortDesc))
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("pageSize", strconv.Itoa(req.PageSize))
	return q
}

func (c *Client) ListBooks(ctx context.Context, req listquery.Request) (listquery.Page[book.Book], error) {
	q := pagedQuery(req)
	if y := book.ParseYear(req.Filters[book.FilterPublishedYear]); y > 0 {
		q.Set("publishedYear", strconv.Itoa(y))
	}

	var body bookPage
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/book/paged", path: "/book/paged", query: q}, &body)
	if err != nil {
		return listquery.Page[book.Book]{}, err
	}
	return listquery.Page[book.Book]{Items: nonNil(body.Books), TotalCount: body.TotalCount}, nil
}

func (c *Client) CreateBook(ctx context.Context, in book.Input) (book.Book, error) {
	var out book.Book
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/book", path: "/book", body: in}, &out)
	return out, err
}

// UpdateBook returns the server's record, or the submitted fields when the
// API answers 204.
func (c *Client) UpdateBook(ctx context.Context, id int64, in book.Input) (book.Book, error) {
	out := book.Book{ID: id}.Apply(in)
	err := c.do(ctx, call{method: http.MethodPut, endpoint: "/book/{id}", path: idPath("/book/%d", id), body: in}, &out)
	if err != nil {
		return book.Book{}, err
	}
	return out, nil
}

func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, endpoint: "/book/{id}", path: idPath("/book/%d", id)}, nil)
}

func (c *Client) DeleteBooks(ctx context.Context, ids []int64) error {
	return c.do(ctx, call{method: http.MethodPost, endpoint: "/book/delete/bulk", path: "/book/delete/bulk", body: ids}, nil)
}

func (c *Client) BookAuthors(ctx context.Context, bookID int64) ([]book.AuthorLink, error) {
	var out []book.AuthorLink
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/book/{id}/authors", path: idPath("/book/%d/authors", bookID)}, &out)
	return nonNil(out), err
}

// AddBookAuthors links authorIDs to the book. When the API does not echo
// the created links they are read back, so callers always get server ids.
func (c *Client) AddBookAuthors(ctx context.Context, bookID int64, authorIDs []int64) ([]book.AuthorLink, error) {
	var out []book.AuthorLink
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/bookauthor/bulk",
		path:     "/bookauthor/bulk",
		body:     bookAuthorsBody{BookID: bookID, AuthorIDs: authorIDs},
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		return out, nil
	}

	all, err := c.BookAuthors(ctx, bookID)
	if err != nil {
		return nil, err
	}
	want := set(authorIDs)
	for _, l := range all {
		if _, ok := want[l.AuthorID]; ok {
			out = append(out, l)
		}
	}
	return nonNil(out), nil
}

func (c *Client) DeleteBookAuthorLink(ctx context.Context, linkID int64) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "/book/bookauthor/{id}",
		path:     idPath("/book/bookauthor/%d", linkID),
	}, nil)
}

func (c *Client) BookCategories(ctx context.Context, bookID int64) ([]book.CategoryLink, error) {
	var out []book.CategoryLink
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/book/{id}/categories", path: idPath("/book/%d/categories", bookID)}, &out)
	return nonNil(out), err
}

// AddBookCategories links categoryIDs to the book through the bulk
// endpoint, reading the links back when they are not echoed.
func (c *Client) AddBookCategories(ctx context.Context, bookID int64, categoryIDs []int64) ([]book.CategoryLink, error) {
	var out []book.CategoryLink
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/bookcategory/bulk",
		path:     "/bookcategory/bulk",
		body:     bookCategoriesBody{BookID: bookID, CategoryIDs: categoryIDs},
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		return out, nil
	}
	return c.readBackCategoryLinks(ctx, bookID, categoryIDs)
}

func (c *Client) DeleteBookCategoryLink(ctx context.Context, linkID int64) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "/book/bookcategory/{id}",
		path:     idPath("/book/bookcategory/%d", linkID),
	}, nil)
}

func (c *Client) AllAuthors(ctx context.Context) ([]author.Author, error) {
	var out []author.Author
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/author/all", path: "/author/all"}, &out)
	return nonNil(out), err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func set(ids []int64) map[int64]struct{} {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
