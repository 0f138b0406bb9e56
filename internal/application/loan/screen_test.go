package loan

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/libadmin/internal/application/listview"
	"github.com/xiebiao/libadmin/internal/domain/calendar"
	"github.com/xiebiao/libadmin/internal/domain/listquery"
	"github.com/xiebiao/libadmin/internal/domain/loan"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

type fakeGateway struct {
	mu       sync.Mutex
	loans    map[int64]loan.Loan
	fail     error
	requests []listquery.Request
	updates  []loan.Input
}

func (g *fakeGateway) ListLoans(_ context.Context, req listquery.Request) (listquery.Page[loan.Loan], error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	var items []loan.Loan
	for id := int64(1); id <= int64(len(g.loans)); id++ {
		l, ok := g.loans[id]
		if !ok {
			continue
		}
		if req.Filters[loan.FilterReturned] == "false" && !l.Active() {
			continue
		}
		items = append(items, l)
	}
	return listquery.Page[loan.Loan]{Items: items, TotalCount: len(items)}, nil
}

func (g *fakeGateway) GetLoan(_ context.Context, id int64) (loan.Loan, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.loans[id]
	if !ok {
		return loan.Loan{}, apperrors.FromStatus(404, "")
	}
	return l, nil
}

func (g *fakeGateway) CreateLoan(_ context.Context, in loan.Input) (loan.Loan, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return loan.Loan{}, g.fail
	}
	id := int64(len(g.loans) + 1)
	l := loan.Loan{ID: id, BookID: in.BookID, MemberID: in.MemberID, LoanDate: in.LoanDate, MustReturn: in.MustReturn}
	g.loans[id] = l
	return l, nil
}

func (g *fakeGateway) UpdateLoan(_ context.Context, id int64, in loan.Input) (loan.Loan, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return loan.Loan{}, g.fail
	}
	g.updates = append(g.updates, in)
	l := g.loans[id]
	l.ReturnedDate = in.ReturnedDate
	l.MustReturn = in.MustReturn
	g.loans[id] = l
	return l, nil
}

func (g *fakeGateway) DeleteLoan(_ context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	delete(g.loans, id)
	return nil
}

func (g *fakeGateway) requestCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

var fixedNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

func newGateway() *fakeGateway {
	returned := calendar.MustParse("2024-05-20")
	return &fakeGateway{loans: map[int64]loan.Loan{
		1: {ID: 1, BookID: 1, MemberID: 1, LoanDate: calendar.MustParse("2024-05-01"), MustReturn: calendar.MustParse("2024-05-30")},
		2: {ID: 2, BookID: 2, MemberID: 1, LoanDate: calendar.MustParse("2024-05-01"), MustReturn: calendar.MustParse("2024-05-30"), ReturnedDate: &returned},
	}}
}

func newScreen(t *testing.T, g *fakeGateway, initial url.Values) *Screen {
	t.Helper()
	s := NewScreen(g, listview.Env{Debounce: -1, Now: func() time.Time { return fixedNow }}, initial)
	t.Cleanup(s.Close)
	s.Start()
	s.Wait()
	return s
}

func TestScreen_ReturnedFilter(t *testing.T) {
	g := newGateway()
	s := newScreen(t, g, url.Values{"isReturned": {"false"}})

	v := s.Snapshot()
	require.Len(t, v.Items, 1)
	assert.Equal(t, int64(1), v.Items[0].ID)
	assert.Contains(t, v.Query, "isReturned=false")
}

func TestScreen_CreateRules(t *testing.T) {
	g := newGateway()
	s := newScreen(t, g, nil)
	ctx := context.Background()

	_, err := s.Create(ctx, loan.Input{BookID: 3, MemberID: 1, LoanDate: calendar.MustParse("2024-06-10"), MustReturn: calendar.MustParse("2024-06-01")})
	assert.ErrorIs(t, err, loan.ErrDueBeforeLoan)

	_, err = s.Create(ctx, loan.Input{MemberID: 1, LoanDate: calendar.MustParse("2024-06-10"), MustReturn: calendar.MustParse("2024-06-20")})
	assert.True(t, apperrors.IsValidation(err))

	g.fail = apperrors.FromStatus(409, "")
	_, err = s.Create(ctx, loan.Input{BookID: 1, MemberID: 1, LoanDate: calendar.MustParse("2024-06-10"), MustReturn: calendar.MustParse("2024-06-20")})
	require.Error(t, err)
	assert.Equal(t, loan.ErrActiveLoanExists.Message, apperrors.GetAppError(err).Message)
}

func TestScreen_UpdateRefetches(t *testing.T) {
	g := newGateway()
	s := newScreen(t, g, nil)
	before := g.requestCount()

	in := loan.InputOf(g.loans[1])
	in.MustReturn = calendar.MustParse("2024-06-30")
	_, err := s.Update(context.Background(), 1, in)
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, before+1, g.requestCount())
	row, ok := s.Find(1)
	require.True(t, ok)
	assert.Equal(t, "2024-06-30", row.MustReturn.String())
}

func TestScreen_Return(t *testing.T) {
	g := newGateway()
	s := newScreen(t, g, nil)
	ctx := context.Background()

	returned, err := s.Return(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnedDate)
	assert.Equal(t, "2024-06-15", returned.ReturnedDate.String())

	s.Wait()
	_, err = s.Return(ctx, 1)
	assert.ErrorIs(t, err, loan.ErrAlreadyReturned)

	_, err = s.Return(ctx, 99)
	assert.Equal(t, loan.ErrLoanNotFound.Message, apperrors.GetAppError(err).Message)
}

func TestScreen_Delete(t *testing.T) {
	g := newGateway()
	s := newScreen(t, g, nil)

	require.NoError(t, s.Delete(context.Background(), 2))
	assert.Equal(t, 1, s.Snapshot().TotalCount)
	_, err := s.Get(context.Background(), 2)
	assert.True(t, apperrors.IsNotFound(err))
}
