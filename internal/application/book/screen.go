// Package book is the books screen: the paginated book list, its create,
// edit and delete forms, and the author and category links of each row.
package book

import (
	"context"
	"net/url"
	"strings"

	"github.com/xiebiao/libadmin/internal/application/listview"
	"github.com/xiebiao/libadmin/internal/domain/book"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/validator"
)

// Screen is one session's books list.
type Screen struct {
	*listview.Controller[book.Book]
	gw  book.Gateway
	env listview.Env
}

// NewScreen builds the books screen with its state parsed from initial.
func NewScreen(gw book.Gateway, env listview.Env, initial url.Values) *Screen {
	ctrl := listview.New(listview.Configure(env, listview.Options[book.Book]{
		Schema:  book.ListSchema,
		Fetch:   gw.ListBooks,
		ID:      book.ID,
		Initial: initial,
	}))
	return &Screen{Controller: ctrl, gw: gw, env: env}
}

func normalize(in book.Input) book.Input {
	in.Title = strings.TrimSpace(in.Title)
	in.ISBN = strings.TrimSpace(in.ISBN)
	return in
}

// Create adds a book together with its initial authors and categories.
func (s *Screen) Create(ctx context.Context, in book.Input) (book.Book, error) {
	in = normalize(in)
	if err := validator.Struct(in); err != nil {
		return book.Book{}, err
	}

	created, err := s.Controller.Create(ctx, func(ctx context.Context) (book.Book, error) {
		b, err := s.gw.CreateBook(ctx, in)
		return b, translate(err)
	})
	if err != nil {
		return book.Book{}, err
	}
	s.env.Record(ctx, s.Name(), "create", created.ID)
	return created, nil
}

// Update saves the editable fields. The row keeps its links.
func (s *Screen) Update(ctx context.Context, id int64, in book.Input) (book.Book, error) {
	in = normalize(in)
	if err := validator.Struct(in); err != nil {
		return book.Book{}, err
	}

	updated, err := s.Controller.Update(ctx, id, func(ctx context.Context) (book.Book, error) {
		b, err := s.gw.UpdateBook(ctx, id, in)
		if err != nil {
			return book.Book{}, translate(err)
		}
		if old, ok := s.Find(id); ok {
			if b.Authors == nil {
				b.Authors = old.Authors
			}
			if b.Categories == nil {
				b.Categories = old.Categories
			}
		}
		return b, nil
	})
	if err != nil {
		return book.Book{}, err
	}
	s.env.Record(ctx, s.Name(), "update", id)
	return updated, nil
}

func (s *Screen) Delete(ctx context.Context, id int64) error {
	err := s.Controller.Delete(ctx, []int64{id}, func(ctx context.Context, _ []int64) error {
		return translate(s.gw.DeleteBook(ctx, id))
	})
	if err != nil {
		return err
	}
	s.env.Record(ctx, s.Name(), "delete", id)
	return nil
}

// DeleteMany removes the selected books in one call.
func (s *Screen) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return book.ErrNothingSelected
	}
	err := s.Controller.Delete(ctx, ids, func(ctx context.Context, ids []int64) error {
		return translate(s.gw.DeleteBooks(ctx, ids))
	})
	if err != nil {
		return err
	}
	s.env.Record(ctx, s.Name(), "delete", ids...)
	return nil
}

// translate turns the API's generic conflict and not-found answers into
// the books screen's messages.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsConflict(err):
		return book.ErrISBNDuplicate.WithCause(err)
	case apperrors.IsNotFound(err):
		return book.ErrBookNotFound.WithCause(err)
	}
	return err
}
