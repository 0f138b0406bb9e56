// Package bookcategory is the bulk category manager: books of the current
// page with the categories filed on them, edited several at a time.
package bookcategory

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/libadmin/internal/application/listview"
	"github.com/xiebiao/libadmin/internal/domain/book"
	"github.com/xiebiao/libadmin/internal/domain/bookcategory"
	"github.com/xiebiao/libadmin/internal/domain/category"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/saga"
)

// Categories lists every category for the pickers.
type Categories interface {
	AllCategories(ctx context.Context) ([]category.Category, error)
}

type Screen struct {
	*listview.Controller[bookcategory.Group]
	gw         bookcategory.Gateway
	categories Categories
	env        listview.Env
}

func NewScreen(gw bookcategory.Gateway, categories Categories, env listview.Env, initial url.Values) *Screen {
	ctrl := listview.New(listview.Configure(env, listview.Options[bookcategory.Group]{
		Schema:  bookcategory.ListSchema,
		Fetch:   gw.BookCategoriesGroupedByBook,
		ID:      bookcategory.ID,
		Initial: initial,
	}))
	return &Screen{Controller: ctrl, gw: gw, categories: categories, env: env}
}

func (s *Screen) group(bookID int64) (bookcategory.Group, error) {
	g, ok := s.Find(bookID)
	if !ok {
		return bookcategory.Group{}, bookcategory.ErrBookNotListed
	}
	return g, nil
}

// Available returns the categories not yet filed on the book.
func (s *Screen) Available(ctx context.Context, bookID int64) ([]category.Category, error) {
	g, err := s.group(bookID)
	if err != nil {
		return nil, err
	}
	all, err := s.categories.AllCategories(ctx)
	if err != nil {
		return nil, err
	}
	return g.Available(all), nil
}

// Assign files the book under the given categories. Categories already
// filed are skipped.
func (s *Screen) Assign(ctx context.Context, bookID int64, categoryIDs []int64) (bookcategory.Group, error) {
	return s.Reconcile(ctx, bookID, categoryIDs, nil)
}

// Unassign removes the given links of the book.
func (s *Screen) Unassign(ctx context.Context, bookID int64, linkIDs []int64) (bookcategory.Group, error) {
	return s.Reconcile(ctx, bookID, nil, linkIDs)
}

// Reconcile adds categories and removes links of one book as a unit: when
// the removal fails the links just created are deleted again.
func (s *Screen) Reconcile(ctx context.Context, bookID int64, add, remove []int64) (bookcategory.Group, error) {
	g, err := s.group(bookID)
	if err != nil {
		return bookcategory.Group{}, err
	}

	toAdd := newCategories(g, add)
	toRemove := ownLinks(g, remove)
	if len(toAdd) == 0 && len(toRemove) == 0 {
		return bookcategory.Group{}, bookcategory.ErrNothingToChange
	}

	var created []book.CategoryLink
	tx := saga.New("bookcategory.reconcile",
		saga.WithTimeout(30*time.Second),
		saga.WithLogger(s.env.Log().With(zap.Int64("book_id", bookID))),
	)
	if len(toAdd) > 0 {
		tx.AddStep("assign",
			func(ctx context.Context) error {
				links, err := s.gw.AddBookCategories(ctx, bookID, toAdd)
				created = links
				return err
			},
			func(ctx context.Context) error {
				if len(created) == 0 {
					return nil
				}
				return s.gw.DeleteBookCategoriesByRelationIDs(ctx, linkIDs(created))
			})
	}
	if len(toRemove) > 0 {
		tx.AddStep("unassign",
			func(ctx context.Context) error {
				return s.gw.DeleteBookCategoriesByRelationIDs(ctx, toRemove)
			}, nil)
	}

	if err := s.Do(ctx, "reconcile", tx.Execute); err != nil {
		return bookcategory.Group{}, cause(err)
	}

	var out bookcategory.Group
	s.Patch(bookID, func(g bookcategory.Group) bookcategory.Group {
		out = g.Without(toRemove).With(created)
		return out
	})
	s.env.Record(ctx, s.Name(), "reconcile", bookID)
	return out, nil
}

// newCategories keeps the positive, distinct ids not yet filed on g.
func newCategories(g bookcategory.Group, ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(g.Categories)+len(ids))
	for _, c := range g.Categories {
		seen[c.CategoryID] = struct{}{}
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id <= 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ownLinks keeps the link ids that belong to g.
func ownLinks(g bookcategory.Group, ids []int64) []int64 {
	own := make(map[int64]bool, len(g.Categories))
	for _, c := range g.Categories {
		own[c.ID] = true
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if own[id] {
			own[id] = false
			out = append(out, id)
		}
	}
	return out
}

func linkIDs(links []book.CategoryLink) []int64 {
	ids := make([]int64, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ID)
	}
	return ids
}

// cause unwraps a saga step failure to the API error that caused it.
func cause(err error) error {
	if apperrors.IsAppError(err) {
		return apperrors.GetAppError(err)
	}
	return err
}
