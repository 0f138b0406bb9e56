package book

import (
	"context"

	"github.com/xiebiao/libadmin/internal/domain/listquery"
)

// Gateway is what the books screen needs from the library API.
type Gateway interface {
	ListBooks(ctx context.Context, req listquery.Request) (listquery.Page[Book], error)
	CreateBook(ctx context.Context, in Input) (Book, error)
	UpdateBook(ctx context.Context, id int64, in Input) (Book, error)
	DeleteBook(ctx context.Context, id int64) error
	DeleteBooks(ctx context.Context, ids []int64) error

	BookAuthors(ctx context.Context, bookID int64) ([]AuthorLink, error)
	AddBookAuthors(ctx context.Context, bookID int64, authorIDs []int64) ([]AuthorLink, error)
	DeleteBookAuthorLink(ctx context.Context, linkID int64) error

	BookCategories(ctx context.Context, bookID int64) ([]CategoryLink, error)
	AddBookCategories(ctx context.Context, bookID int64, categoryIDs []int64) ([]CategoryLink, error)
	DeleteBookCategoryLink(ctx context.Context, linkID int64) error
}
