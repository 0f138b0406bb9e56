package author

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/libadmin/internal/application/listview"
	"github.com/xiebiao/libadmin/internal/domain/author"
	"github.com/xiebiao/libadmin/internal/domain/book"
	"github.com/xiebiao/libadmin/internal/domain/listquery"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

type fakeStore struct {
	mu       sync.Mutex
	authors  []author.Author
	fail     error
	creates  int
	links    map[int64][]book.AuthorLink
	linkFail error
	added    [][]int64
}

func (f *fakeStore) ListAuthors(context.Context, listquery.Request) (listquery.Page[author.Author], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return listquery.Page[author.Author]{Items: append([]author.Author{}, f.authors...), TotalCount: len(f.authors)}, nil
}

func (f *fakeStore) CreateAuthor(_ context.Context, in author.Input) (author.Author, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.fail != nil {
		return author.Author{}, f.fail
	}
	return author.Author{ID: 42}.Apply(in), nil
}

func (f *fakeStore) UpdateAuthor(_ context.Context, id int64, in author.Input) (author.Author, error) {
	if f.fail != nil {
		return author.Author{}, f.fail
	}
	return author.Author{ID: id}.Apply(in), nil
}

func (f *fakeStore) DeleteAuthor(context.Context, int64) error { return f.fail }

func (f *fakeStore) BookAuthors(_ context.Context, bookID int64) ([]book.AuthorLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.links[bookID], nil
}

func (f *fakeStore) AddBookAuthors(_ context.Context, bookID int64, ids []int64) ([]book.AuthorLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, ids)
	if f.linkFail != nil {
		return nil, f.linkFail
	}
	out := make([]book.AuthorLink, 0, len(ids))
	for _, id := range ids {
		out = append(out, book.AuthorLink{ID: 900 + id, BookID: bookID, AuthorID: id})
	}
	return out, nil
}

func newScreen(t *testing.T, f *fakeStore) *Screen {
	t.Helper()
	s := NewScreen(f, f, listview.Env{Debounce: -1}, nil)
	t.Cleanup(s.Close)
	s.Start()
	s.Wait()
	return s
}

func TestScreen_CreateValidation(t *testing.T) {
	f := &fakeStore{}
	s := newScreen(t, f)

	tests := []struct {
		name  string
		in    author.Input
		field string
	}{
		{"blank first name", author.Input{FirstName: "  ", LastName: "Herbert"}, "firstName"},
		{"blank last name", author.Input{FirstName: "Frank"}, "lastName"},
		{"negative book", author.Input{FirstName: "Frank", LastName: "Herbert", BookID: -1}, "bookId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), tt.in)
			require.Error(t, err)
			appErr := apperrors.GetAppError(err)
			assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
			require.NotEmpty(t, appErr.Details)
			assert.Equal(t, tt.field, appErr.Details[0].Field)
		})
	}
	assert.Zero(t, f.creates)
}

func TestScreen_CreateUpdateDelete(t *testing.T) {
	f := &fakeStore{authors: []author.Author{{ID: 1, FirstName: "Jane", LastName: "Austen"}}}
	s := newScreen(t, f)
	ctx := context.Background()

	created, err := s.Create(ctx, author.Input{FirstName: " Frank ", LastName: " Herbert "})
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", created.FullName())
	assert.Nil(t, created.Link)
	assert.Equal(t, 2, s.Snapshot().TotalCount)

	_, err = s.Update(ctx, 1, author.Input{FirstName: "Jane", LastName: "Austen-Leigh"})
	require.NoError(t, err)
	row, ok := s.Find(1)
	require.True(t, ok)
	assert.Equal(t, "Austen-Leigh", row.LastName)

	require.NoError(t, s.Delete(ctx, 42))
	assert.Equal(t, 1, s.Snapshot().TotalCount)

	f.fail = apperrors.FromStatus(404, "")
	err = s.Delete(ctx, 1)
	assert.Equal(t, author.ErrAuthorNotFound.Message, apperrors.GetAppError(err).Message)
	assert.Equal(t, 1, s.Snapshot().TotalCount)
}

func TestScreen_DuplicateName(t *testing.T) {
	f := &fakeStore{fail: apperrors.FromStatus(409, "")}
	s := newScreen(t, f)

	_, err := s.Create(context.Background(), author.Input{FirstName: "Frank", LastName: "Herbert"})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	assert.Equal(t, apperrors.ErrCodeDuplicateEntry, appErr.Code)
	assert.Equal(t, "Author Frank Herbert already exists.", appErr.Message)
	assert.Zero(t, s.Snapshot().TotalCount)

	_, err = s.Update(context.Background(), 3, author.Input{FirstName: " Ann ", LastName: "Leckie"})
	assert.Equal(t, "Author Ann Leckie already exists.", apperrors.GetAppError(err).Message)
}

func TestScreen_LinkBook(t *testing.T) {
	ctx := context.Background()

	t.Run("adds the link", func(t *testing.T) {
		f := &fakeStore{}
		s := newScreen(t, f)

		saved, err := s.Create(ctx, author.Input{FirstName: "Frank", LastName: "Herbert", BookID: 7})
		require.NoError(t, err)
		require.NotNil(t, saved.Link)
		assert.Equal(t, int64(7), saved.Link.BookID)
		assert.Equal(t, int64(42), saved.Link.AuthorID)
		assert.Equal(t, [][]int64{{42}}, f.added)
	})

	t.Run("keeps an existing link", func(t *testing.T) {
		f := &fakeStore{links: map[int64][]book.AuthorLink{7: {{ID: 5, BookID: 7, AuthorID: 3}}}}
		s := newScreen(t, f)

		saved, err := s.Update(ctx, 3, author.Input{FirstName: "Ann", LastName: "Leckie", BookID: 7})
		require.NoError(t, err)
		require.NotNil(t, saved.Link)
		assert.Equal(t, int64(5), saved.Link.ID)
		assert.Empty(t, f.added)
	})

	t.Run("link failure keeps the author", func(t *testing.T) {
		f := &fakeStore{linkFail: errors.New("connection reset")}
		s := newScreen(t, f)

		saved, err := s.Create(ctx, author.Input{FirstName: "Frank", LastName: "Herbert", BookID: 7})
		require.Error(t, err)
		assert.Equal(t, author.ErrBookNotLinked.Message, apperrors.GetAppError(err).Message)
		assert.Equal(t, int64(42), saved.ID)
		assert.Nil(t, saved.Link)
		assert.Equal(t, 1, s.Snapshot().TotalCount)
	})
}
