package member

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/libadmin/internal/application/listview"
	"github.com/xiebiao/libadmin/internal/domain/calendar"
	"github.com/xiebiao/libadmin/internal/domain/listquery"
	"github.com/xiebiao/libadmin/internal/domain/loan"
	"github.com/xiebiao/libadmin/internal/domain/member"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

type fakeGateway struct {
	mu      sync.Mutex
	members []member.Member
	loans   map[int64][]member.Loan
	fail    error
	creates int
}

func (g *fakeGateway) ListMembers(context.Context, listquery.Request) (listquery.Page[member.Member], error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return listquery.Page[member.Member]{Items: append([]member.Member{}, g.members...), TotalCount: len(g.members)}, nil
}

func (g *fakeGateway) CreateMember(_ context.Context, in member.Input) (member.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creates++
	if g.fail != nil {
		return member.Member{}, g.fail
	}
	return member.Member{ID: 42}.Apply(in), nil
}

func (g *fakeGateway) UpdateMember(_ context.Context, id int64, in member.Input) (member.Member, error) {
	if g.fail != nil {
		return member.Member{}, g.fail
	}
	return member.Member{ID: id}.Apply(in), nil
}

func (g *fakeGateway) DeleteMember(context.Context, int64) error { return g.fail }

func (g *fakeGateway) MemberLoans(_ context.Context, id int64) ([]member.Loan, error) {
	if g.fail != nil {
		return nil, g.fail
	}
	return g.loans[id], nil
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newScreen(t *testing.T, g *fakeGateway) *Screen {
	t.Helper()
	s := NewScreen(g, listview.Env{Debounce: -1, Now: func() time.Time { return fixedNow }}, nil)
	t.Cleanup(s.Close)
	s.Start()
	s.Wait()
	return s
}

func TestScreen_CreateValidation(t *testing.T) {
	g := &fakeGateway{}
	s := newScreen(t, g)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    member.Input
		field string
	}{
		{"blank name", member.Input{Name: "  ", BirthYear: 1990, MembershipDate: calendar.MustParse("2020-01-01")}, "name"},
		{"birth year too old", member.Input{Name: "Ada", BirthYear: 1800, MembershipDate: calendar.MustParse("2020-01-01")}, "birthYear"},
		{"no membership date", member.Input{Name: "Ada", BirthYear: 1990}, "membershipDate"},
		{"membership in the future", member.Input{Name: "Ada", BirthYear: 1990, MembershipDate: calendar.MustParse("2024-06-16")}, "membershipDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.in)
			require.Error(t, err)
			appErr := apperrors.GetAppError(err)
			assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
			require.NotEmpty(t, appErr.Details)
			assert.Equal(t, tt.field, appErr.Details[0].Field)
		})
	}
	assert.Zero(t, g.creates)
}

func TestScreen_CreateUpdateDelete(t *testing.T) {
	g := &fakeGateway{members: []member.Member{{ID: 1, Name: "Grace", BirthYear: 1906}}}
	s := newScreen(t, g)
	ctx := context.Background()

	in := member.Input{Name: " Ada ", BirthYear: 1990, MembershipDate: calendar.MustParse("2024-06-15")}
	created, err := s.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Ada", created.Name)
	assert.Equal(t, 2, s.Snapshot().TotalCount)

	in.Name = "Ada L."
	_, err = s.Update(ctx, 1, in)
	require.NoError(t, err)
	row, ok := s.Find(1)
	require.True(t, ok)
	assert.Equal(t, "Ada L.", row.Name)

	require.NoError(t, s.Delete(ctx, 42))
	assert.Equal(t, 1, s.Snapshot().TotalCount)

	g.fail = apperrors.FromStatus(404, "")
	err = s.Delete(ctx, 1)
	assert.Equal(t, member.ErrMemberNotFound.Message, apperrors.GetAppError(err).Message)
	assert.Equal(t, 1, s.Snapshot().TotalCount)
}

func TestScreen_Loans(t *testing.T) {
	returned := calendar.MustParse("2024-05-10")
	g := &fakeGateway{loans: map[int64][]member.Loan{
		7: {
			{ID: 1, BookTitle: "Dune", LoanDate: calendar.MustParse("2024-05-01"), MustReturn: calendar.MustParse("2024-05-15"), ReturnedDate: &returned},
			{ID: 2, BookTitle: "Emma", LoanDate: calendar.MustParse("2024-05-01"), MustReturn: calendar.MustParse("2024-06-01")},
			{ID: 3, BookTitle: "Ulysses", LoanDate: calendar.MustParse("2024-06-10"), MustReturn: calendar.MustParse("2024-06-24")},
		},
	}}
	s := newScreen(t, g)

	rows, err := s.Loans(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, loan.StatusReturned, rows[0].Status)
	assert.Equal(t, loan.StatusOverdue, rows[1].Status)
	assert.Equal(t, loan.StatusActive, rows[2].Status)
	assert.Equal(t, "Dune", rows[0].BookTitle)

	empty, err := s.Loans(context.Background(), 8)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
