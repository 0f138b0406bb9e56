// Package category is the categories screen and the list of books filed
// under one category.
package category

import (
	"context"
	"net/url"

	"github.com/xiebiao/libadmin/internal/application/listview"
	"github.com/xiebiao/libadmin/internal/domain/book"
	"github.com/xiebiao/libadmin/internal/domain/category"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/validator"
)

// Books lists the books of a category.
type Books interface {
	CategoryBooks(ctx context.Context, categoryID int64, withAuthors bool) ([]book.Book, error)
}

// Screen is one session's categories list.
type Screen struct {
	*listview.Controller[category.Category]
	gw    category.Gateway
	books Books
	env   listview.Env
}

func NewScreen(gw category.Gateway, books Books, env listview.Env, initial url.Values) *Screen {
	ctrl := listview.New(listview.Configure(env, listview.Options[category.Category]{
		Schema:  category.ListSchema,
		Fetch:   gw.ListCategories,
		ID:      category.ID,
		Initial: initial,
	}))
	return &Screen{Controller: ctrl, gw: gw, books: books, env: env}
}

func (s *Screen) Create(ctx context.Context, in category.Input) (category.Category, error) {
	in = in.Normalize()
	if err := validator.Struct(in); err != nil {
		return category.Category{}, err
	}

	created, err := s.Controller.Create(ctx, func(ctx context.Context) (category.Category, error) {
		c, err := s.gw.CreateCategory(ctx, in)
		return c, translate(err)
	})
	if err != nil {
		return category.Category{}, err
	}
	s.env.Record(ctx, s.Name(), "create", created.ID)
	return created, nil
}

// Rename changes the name of a category.
func (s *Screen) Rename(ctx context.Context, id int64, in category.Input) (category.Category, error) {
	in = in.Normalize()
	if err := validator.Struct(in); err != nil {
		return category.Category{}, err
	}

	renamed, err := s.Controller.Update(ctx, id, func(ctx context.Context) (category.Category, error) {
		c, err := s.gw.UpdateCategory(ctx, id, in)
		return c, translate(err)
	})
	if err != nil {
		return category.Category{}, err
	}
	s.env.Record(ctx, s.Name(), "update", id)
	return renamed, nil
}

func (s *Screen) Delete(ctx context.Context, id int64) error {
	err := s.Controller.Delete(ctx, []int64{id}, func(ctx context.Context, _ []int64) error {
		return translate(s.gw.DeleteCategory(ctx, id))
	})
	if err != nil {
		return err
	}
	s.env.Record(ctx, s.Name(), "delete", id)
	return nil
}

// BooksOf lists every book filed under a category.
func (s *Screen) BooksOf(ctx context.Context, id int64, withAuthors bool) ([]book.Book, error) {
	books, err := s.books.CategoryBooks(ctx, id, withAuthors)
	return books, translate(err)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsConflict(err):
		return category.ErrDuplicateName.WithCause(err)
	case apperrors.IsNotFound(err):
		return category.ErrCategoryNotFound.WithCause(err)
	}
	return err
}
