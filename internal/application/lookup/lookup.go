// Package lookup loads the author and category pickers of the forms.
package lookup

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/libadmin/internal/domain/author"
	"github.com/xiebiao/libadmin/internal/domain/category"
)

// Lookups holds every option of the book form pickers.
type Lookups struct {
	Authors    []author.Author     `json:"authors"`
	Categories []category.Category `json:"categories"`
}

type Service struct {
	authors    author.Gateway
	categories category.Gateway
}

func NewService(authors author.Gateway, categories category.Gateway) *Service {
	return &Service{authors: authors, categories: categories}
}

func (s *Service) Authors(ctx context.Context) ([]author.Author, error) {
	return s.authors.AllAuthors(ctx)
}

func (s *Service) Categories(ctx context.Context) ([]category.Category, error) {
	return s.categories.AllCategories(ctx)
}

// Load fetches authors and categories in parallel. Either failure fails
// the whole load and cancels the other call.
func (s *Service) Load(ctx context.Context) (Lookups, error) {
	var out Lookups
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		authors, err := s.authors.AllAuthors(ctx)
		out.Authors = authors
		return err
	})
	g.Go(func() error {
		categories, err := s.categories.AllCategories(ctx)
		out.Categories = categories
		return err
	})
	if err := g.Wait(); err != nil {
		return Lookups{}, err
	}
	return out, nil
}
