package workspace

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	categoryapp "github.com/xiebiao/libadmin/internal/application/category"
	"github.com/xiebiao/libadmin/internal/domain/author"
	"github.com/xiebiao/libadmin/internal/domain/book"
	"github.com/xiebiao/libadmin/internal/domain/category"
	"github.com/xiebiao/libadmin/internal/domain/listquery"
	"github.com/xiebiao/libadmin/internal/domain/member"
	"github.com/xiebiao/libadmin/internal/domain/session"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

// fakeAPI serves the list calls of the screens under test. Anything else
// panics through the nil embedded interface.
type fakeAPI struct {
	API
	token      string
	membersErr error

	mu        sync.Mutex
	requests  []listquery.Request
	bookCalls []int64
}

func (f *fakeAPI) ListBooks(_ context.Context, req listquery.Request) (listquery.Page[book.Book], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return listquery.Page[book.Book]{Items: []book.Book{{ID: 1, Title: "Dune"}}, TotalCount: 1}, nil
}

func (f *fakeAPI) ListCategories(context.Context, listquery.Request) (listquery.Page[category.Category], error) {
	return listquery.Page[category.Category]{}, nil
}

func (f *fakeAPI) AllCategories(context.Context) ([]category.Category, error) {
	return []category.Category{{ID: 1, Name: "Drama"}}, nil
}

func (f *fakeAPI) AllAuthors(context.Context) ([]author.Author, error) {
	return []author.Author{{ID: 1, FirstName: "Frank", LastName: "Herbert"}}, nil
}

func (f *fakeAPI) CategoryBooks(_ context.Context, categoryID int64, _ bool) ([]book.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookCalls = append(f.bookCalls, categoryID)
	return []book.Book{{ID: 3, Title: "Hamlet"}}, nil
}

func (f *fakeAPI) ListMembers(context.Context, listquery.Request) (listquery.Page[member.Member], error) {
	if f.membersErr != nil {
		return listquery.Page[member.Member]{}, f.membersErr
	}
	return listquery.Page[member.Member]{}, nil
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) lastRequest() listquery.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type harness struct {
	m       *Manager
	apis    map[string]*fakeAPI
	expired chan string
}

func newHarness(t *testing.T, cfg Config, membersErr error) *harness {
	t.Helper()
	h := &harness{apis: map[string]*fakeAPI{}, expired: make(chan string, 4)}
	var mu sync.Mutex
	bind := func(token string) API {
		mu.Lock()
		defer mu.Unlock()
		api := &fakeAPI{token: token, membersErr: membersErr}
		h.apis[token] = api
		return api
	}
	expire := func(_ context.Context, id string) error {
		h.expired <- id
		return nil
	}
	cfg.Debounce = -1
	h.m = NewManager(bind, cfg, nil, expire, nil)
	t.Cleanup(h.m.closeAll)
	return h
}

func sess(id string) session.Session {
	return session.Session{ID: id, Token: "token-" + id, Email: id + "@library.test", ExpiresAt: time.Now().Add(time.Hour)}
}

func TestManager_OpenReusesScreens(t *testing.T) {
	h := newHarness(t, Config{}, nil)

	s1, err := h.m.Books(sess("a"))
	require.NoError(t, err)
	s1.Wait()

	again, err := h.m.Books(sess("a"))
	require.NoError(t, err)
	assert.Same(t, s1, again)
	assert.Equal(t, 1, h.m.Len())

	other, err := h.m.Books(sess("b"))
	require.NoError(t, err)
	assert.NotSame(t, s1, other)
	assert.Equal(t, 2, h.m.Len())

	// each session talks to the API with its own token
	assert.Contains(t, h.apis, "token-a")
	assert.Contains(t, h.apis, "token-b")
}

func TestManager_OpenWithValuesReloads(t *testing.T) {
	h := newHarness(t, Config{}, nil)

	scr, err := h.m.Open(sess("a"), book.ListSchema.Name, url.Values{"page": {"1"}})
	require.NoError(t, err)
	scr.Wait()
	before := h.apis["token-a"].requestCount()

	scr, err = h.m.Open(sess("a"), book.ListSchema.Name, url.Values{"search": {"dune"}})
	require.NoError(t, err)
	scr.Wait()
	assert.Greater(t, h.apis["token-a"].requestCount(), before)
	assert.Equal(t, "dune", h.apis["token-a"].lastRequest().Search)
}

func TestManager_CategoryBooks(t *testing.T) {
	h := newHarness(t, Config{}, nil)

	scr, err := h.m.Open(sess("a"), category.BooksSchema.Name, url.Values{ParamCategoryID: {"4"}})
	require.NoError(t, err)
	scr.Wait()

	cb, err := h.m.CategoryBooks(sess("a"))
	require.NoError(t, err)
	v := cb.Snapshot()
	assert.Equal(t, "4", v.Scope)
	assert.Equal(t, 1, v.TotalCount)
}

func TestManager_CategoryBooksSwitchFetchesOnce(t *testing.T) {
	h := newHarness(t, Config{}, nil)

	scr, err := h.m.Open(sess("a"), category.BooksSchema.Name, url.Values{ParamCategoryID: {"4"}})
	require.NoError(t, err)
	scr.Wait()

	scr, err = h.m.Open(sess("a"), category.BooksSchema.Name, url.Values{ParamCategoryID: {"5"}, "search": {"ham"}})
	require.NoError(t, err)
	scr.Wait()

	api := h.apis["token-a"]
	api.mu.Lock()
	calls := append([]int64{}, api.bookCalls...)
	api.mu.Unlock()
	assert.Equal(t, []int64{4, 5}, calls)

	v := scr.(*categoryapp.BooksScreen).Snapshot()
	assert.Equal(t, "5", v.Scope)
	assert.Equal(t, "ham", v.State.Search)
}

func TestManager_UnknownScreen(t *testing.T) {
	h := newHarness(t, Config{}, nil)
	_, err := h.m.Open(sess("a"), "orders", nil)
	assert.Equal(t, apperrors.ErrCodeScreenNotFound, apperrors.CodeOf(err))
}

func TestManager_Lookups(t *testing.T) {
	h := newHarness(t, Config{}, nil)
	got, err := h.m.Lookups(sess("a")).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.Authors, 1)
	assert.Len(t, got.Categories, 1)
}

func TestManager_DropClosesScreens(t *testing.T) {
	h := newHarness(t, Config{}, nil)
	_, err := h.m.Books(sess("a"))
	require.NoError(t, err)

	h.m.Drop("a")
	assert.Zero(t, h.m.Len())
	h.m.Drop("a")

	// a later request starts a fresh workspace
	s2, err := h.m.Books(sess("a"))
	require.NoError(t, err)
	s2.Wait()
	assert.Equal(t, 1, h.m.Len())
}

func TestManager_SweepIdle(t *testing.T) {
	h := newHarness(t, Config{IdleTimeout: time.Minute}, nil)
	clock := time.Now()
	h.m.now = func() time.Time { return clock }

	_, err := h.m.Books(sess("a"))
	require.NoError(t, err)
	clock = clock.Add(30 * time.Second)
	_, err = h.m.Books(sess("b"))
	require.NoError(t, err)

	clock = clock.Add(45 * time.Second)
	assert.Equal(t, 1, h.m.Sweep())
	assert.Equal(t, 1, h.m.Len())
	assert.Zero(t, h.m.Sweep())
}

func TestManager_SweepExpiredSession(t *testing.T) {
	h := newHarness(t, Config{}, nil)
	s := sess("a")
	s.ExpiresAt = time.Now().Add(-time.Second)

	_, err := h.m.Books(s)
	require.NoError(t, err)
	assert.Equal(t, 1, h.m.Sweep())
}

func TestManager_UnauthorizedFetchExpiresSession(t *testing.T) {
	h := newHarness(t, Config{}, apperrors.ErrUnauthorized)

	_, err := h.m.Members(sess("a"))
	require.NoError(t, err)

	select {
	case id := <-h.expired:
		assert.Equal(t, "a", id)
	case <-time.After(2 * time.Second):
		t.Fatal("session was not expired")
	}
	assert.Eventually(t, func() bool { return h.m.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestManager_RunStopsOnCancel(t *testing.T) {
	h := newHarness(t, Config{CleanupInterval: time.Millisecond}, nil)
	_, err := h.m.Books(sess("a"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Zero(t, h.m.Len())
}
