package book

import (
	"context"

	"github.com/xiebiao/libadmin/internal/domain/book"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

// LinkResult reports a bulk link request: the links created by the server,
// the requested ids that were already linked, and every link of the book
// afterwards.
type LinkResult[L any] struct {
	Added   []L     `json:"added"`
	Skipped []int64 `json:"skipped"`
	Links   []L     `json:"links"`
}

// Authors loads the author links of a book and refreshes its row.
func (s *Screen) Authors(ctx context.Context, bookID int64) ([]book.AuthorLink, error) {
	links, err := s.gw.BookAuthors(ctx, bookID)
	if err != nil {
		return nil, translate(err)
	}
	s.Patch(bookID, func(b book.Book) book.Book {
		b.Authors = links
		return b
	})
	return links, nil
}

// AddAuthors links the given authors, skipping those already linked.
func (s *Screen) AddAuthors(ctx context.Context, bookID int64, authorIDs []int64) (LinkResult[book.AuthorLink], error) {
	var res LinkResult[book.AuthorLink]
	if len(authorIDs) == 0 {
		return res, book.ErrNoAuthorSelected
	}

	err := s.Do(ctx, "link", func(ctx context.Context) error {
		current, err := s.gw.BookAuthors(ctx, bookID)
		if err != nil {
			return translate(err)
		}
		linked := make(map[int64]struct{}, len(current))
		for _, l := range current {
			linked[l.AuthorID] = struct{}{}
		}
		toAdd, skipped := split(authorIDs, linked)
		res = LinkResult[book.AuthorLink]{Added: []book.AuthorLink{}, Skipped: skipped, Links: current}
		if len(toAdd) == 0 {
			return nil
		}

		added, err := s.gw.AddBookAuthors(ctx, bookID, toAdd)
		if err != nil {
			return translate(err)
		}
		res.Added = added
		res.Links = append(append([]book.AuthorLink{}, current...), added...)
		return nil
	})
	if err != nil {
		return LinkResult[book.AuthorLink]{}, err
	}

	s.Patch(bookID, func(b book.Book) book.Book {
		b.Authors = res.Links
		return b
	})
	if len(res.Added) > 0 {
		s.env.Record(ctx, s.Name(), "link-authors", bookID)
	}
	return res, nil
}

// RemoveAuthor deletes one author link. The book and the author stay.
func (s *Screen) RemoveAuthor(ctx context.Context, bookID, linkID int64) error {
	err := s.Do(ctx, "unlink", func(ctx context.Context) error {
		return translateLink(s.gw.DeleteBookAuthorLink(ctx, linkID))
	})
	if err != nil {
		return err
	}

	s.Patch(bookID, func(b book.Book) book.Book {
		kept := make([]book.AuthorLink, 0, len(b.Authors))
		for _, l := range b.Authors {
			if l.ID != linkID {
				kept = append(kept, l)
			}
		}
		b.Authors = kept
		return b
	})
	s.env.Record(ctx, s.Name(), "unlink-author", bookID, linkID)
	return nil
}

// Categories loads the category links of a book and refreshes its row.
func (s *Screen) Categories(ctx context.Context, bookID int64) ([]book.CategoryLink, error) {
	links, err := s.gw.BookCategories(ctx, bookID)
	if err != nil {
		return nil, translate(err)
	}
	s.Patch(bookID, func(b book.Book) book.Book {
		b.Categories = links
		return b
	})
	return links, nil
}

// AddCategories links the given categories, skipping those already linked.
func (s *Screen) AddCategories(ctx context.Context, bookID int64, categoryIDs []int64) (LinkResult[book.CategoryLink], error) {
	var res LinkResult[book.CategoryLink]
	if len(categoryIDs) == 0 {
		return res, book.ErrNoCategory
	}

	err := s.Do(ctx, "link", func(ctx context.Context) error {
		current, err := s.gw.BookCategories(ctx, bookID)
		if err != nil {
			return translate(err)
		}
		linked := make(map[int64]struct{}, len(current))
		for _, l := range current {
			linked[l.CategoryID] = struct{}{}
		}
		toAdd, skipped := split(categoryIDs, linked)
		res = LinkResult[book.CategoryLink]{Added: []book.CategoryLink{}, Skipped: skipped, Links: current}
		if len(toAdd) == 0 {
			return nil
		}

		added, err := s.gw.AddBookCategories(ctx, bookID, toAdd)
		if err != nil {
			return translate(err)
		}
		res.Added = added
		res.Links = append(append([]book.CategoryLink{}, current...), added...)
		return nil
	})
	if err != nil {
		return LinkResult[book.CategoryLink]{}, err
	}

	s.Patch(bookID, func(b book.Book) book.Book {
		b.Categories = res.Links
		return b
	})
	if len(res.Added) > 0 {
		s.env.Record(ctx, s.Name(), "link-categories", bookID)
	}
	return res, nil
}

// RemoveCategory deletes one category link. The book and the category stay.
func (s *Screen) RemoveCategory(ctx context.Context, bookID, linkID int64) error {
	err := s.Do(ctx, "unlink", func(ctx context.Context) error {
		return translateLink(s.gw.DeleteBookCategoryLink(ctx, linkID))
	})
	if err != nil {
		return err
	}

	s.Patch(bookID, func(b book.Book) book.Book {
		kept := make([]book.CategoryLink, 0, len(b.Categories))
		for _, l := range b.Categories {
			if l.ID != linkID {
				kept = append(kept, l)
			}
		}
		b.Categories = kept
		return b
	})
	s.env.Record(ctx, s.Name(), "unlink-category", bookID, linkID)
	return nil
}

// split separates ids into those to add and those already linked,
// dropping duplicates and non-positive ids.
func split(ids []int64, linked map[int64]struct{}) (add, skipped []int64) {
	add, skipped = []int64{}, []int64{}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := linked[id]; ok {
			skipped = append(skipped, id)
			continue
		}
		add = append(add, id)
	}
	return add, skipped
}

func translateLink(err error) error {
	if apperrors.IsNotFound(err) {
		return book.ErrLinkNotFound.WithCause(err)
	}
	return err
}
