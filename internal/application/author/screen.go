// Package author is the authors screen.
package author

import (
	"context"
	"net/url"

	"github.com/xiebiao/libadmin/internal/application/listview"
	"github.com/xiebiao/libadmin/internal/domain/author"
	"github.com/xiebiao/libadmin/internal/domain/book"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/validator"
)

// Linker files a saved author under a book.
type Linker interface {
	BookAuthors(ctx context.Context, bookID int64) ([]book.AuthorLink, error)
	AddBookAuthors(ctx context.Context, bookID int64, authorIDs []int64) ([]book.AuthorLink, error)
}

type Screen struct {
	*listview.Controller[author.Author]
	store  author.Store
	linker Linker
	env    listview.Env
}

func NewScreen(store author.Store, linker Linker, env listview.Env, initial url.Values) *Screen {
	ctrl := listview.New(listview.Configure(env, listview.Options[author.Author]{
		Schema:  author.ListSchema,
		Fetch:   store.ListAuthors,
		ID:      author.ID,
		Initial: initial,
	}))
	return &Screen{Controller: ctrl, store: store, linker: linker, env: env}
}

// Saved is an author after create or update, with the book link the form
// asked for.
type Saved struct {
	author.Author
	Link *book.AuthorLink `json:"link,omitempty"`
}

func (s *Screen) Create(ctx context.Context, in author.Input) (Saved, error) {
	in = in.Normalize()
	if err := validator.Struct(in); err != nil {
		return Saved{}, err
	}

	created, err := s.Controller.Create(ctx, func(ctx context.Context) (author.Author, error) {
		a, err := s.store.CreateAuthor(ctx, in)
		return a, translate(err, in)
	})
	if err != nil {
		return Saved{}, err
	}
	s.env.Record(ctx, s.Name(), "create", created.ID)
	return s.link(ctx, created, in.BookID)
}

func (s *Screen) Update(ctx context.Context, id int64, in author.Input) (Saved, error) {
	in = in.Normalize()
	if err := validator.Struct(in); err != nil {
		return Saved{}, err
	}

	updated, err := s.Controller.Update(ctx, id, func(ctx context.Context) (author.Author, error) {
		a, err := s.store.UpdateAuthor(ctx, id, in)
		return a, translate(err, in)
	})
	if err != nil {
		return Saved{}, err
	}
	s.env.Record(ctx, s.Name(), "update", id)
	return s.link(ctx, updated, in.BookID)
}

// link files a under bookID. A link that already exists is returned as is.
// A failed link leaves the saved author in place and reports
// ErrBookNotLinked.
func (s *Screen) link(ctx context.Context, a author.Author, bookID int64) (Saved, error) {
	saved := Saved{Author: a}
	if bookID <= 0 || a.ID <= 0 {
		return saved, nil
	}

	err := s.Do(ctx, "link", func(ctx context.Context) error {
		current, err := s.linker.BookAuthors(ctx, bookID)
		if err != nil {
			return err
		}
		for _, l := range current {
			if l.AuthorID == a.ID {
				saved.Link = &l
				return nil
			}
		}
		added, err := s.linker.AddBookAuthors(ctx, bookID, []int64{a.ID})
		if err != nil {
			return err
		}
		if len(added) > 0 {
			saved.Link = &added[0]
		}
		return nil
	})
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			return saved, err
		}
		return saved, author.ErrBookNotLinked.WithCause(err)
	}
	s.env.Record(ctx, s.Name(), "link-book", a.ID, bookID)
	return saved, nil
}

func (s *Screen) Delete(ctx context.Context, id int64) error {
	err := s.Controller.Delete(ctx, []int64{id}, func(ctx context.Context, _ []int64) error {
		return translate(s.store.DeleteAuthor(ctx, id), author.Input{})
	})
	if err != nil {
		return err
	}
	s.env.Record(ctx, s.Name(), "delete", id)
	return nil
}

func translate(err error, in author.Input) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsConflict(err):
		return author.ErrDuplicateName(in).WithCause(err)
	case apperrors.IsNotFound(err):
		return author.ErrAuthorNotFound.WithCause(err)
	}
	return err
}
