// Package member is the members screen and each member's loan history.
package member

import (
	"context"
	"net/url"
	"strings"

	"github.com/xiebiao/libadmin/internal/application/listview"
	"github.com/xiebiao/libadmin/internal/domain/calendar"
	"github.com/xiebiao/libadmin/internal/domain/loan"
	"github.com/xiebiao/libadmin/internal/domain/member"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/validator"
)

type Screen struct {
	*listview.Controller[member.Member]
	gw  member.Gateway
	env listview.Env
}

func NewScreen(gw member.Gateway, env listview.Env, initial url.Values) *Screen {
	ctrl := listview.New(listview.Configure(env, listview.Options[member.Member]{
		Schema:  member.ListSchema,
		Fetch:   gw.ListMembers,
		ID:      member.ID,
		Initial: initial,
	}))
	return &Screen{Controller: ctrl, gw: gw, env: env}
}

func (s *Screen) check(in member.Input) (member.Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.Struct(in); err != nil {
		return in, err
	}
	return in, in.CheckDates(calendar.NewDate(s.env.Clock()))
}

func (s *Screen) Create(ctx context.Context, in member.Input) (member.Member, error) {
	in, err := s.check(in)
	if err != nil {
		return member.Member{}, err
	}

	created, err := s.Controller.Create(ctx, func(ctx context.Context) (member.Member, error) {
		m, err := s.gw.CreateMember(ctx, in)
		return m, translate(err)
	})
	if err != nil {
		return member.Member{}, err
	}
	s.env.Record(ctx, s.Name(), "create", created.ID)
	return created, nil
}

func (s *Screen) Update(ctx context.Context, id int64, in member.Input) (member.Member, error) {
	in, err := s.check(in)
	if err != nil {
		return member.Member{}, err
	}

	updated, err := s.Controller.Update(ctx, id, func(ctx context.Context) (member.Member, error) {
		m, err := s.gw.UpdateMember(ctx, id, in)
		return m, translate(err)
	})
	if err != nil {
		return member.Member{}, err
	}
	s.env.Record(ctx, s.Name(), "update", id)
	return updated, nil
}

func (s *Screen) Delete(ctx context.Context, id int64) error {
	err := s.Controller.Delete(ctx, []int64{id}, func(ctx context.Context, _ []int64) error {
		return translate(s.gw.DeleteMember(ctx, id))
	})
	if err != nil {
		return err
	}
	s.env.Record(ctx, s.Name(), "delete", id)
	return nil
}

// LoanRow is a loan of the member with its status as of today.
type LoanRow struct {
	member.Loan
	Status loan.Status `json:"status"`
}

// Loans returns the member's loan history.
func (s *Screen) Loans(ctx context.Context, id int64) ([]LoanRow, error) {
	loans, err := s.gw.MemberLoans(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	today := calendar.NewDate(s.env.Clock())
	rows := make([]LoanRow, 0, len(loans))
	for _, l := range loans {
		rows = append(rows, LoanRow{Loan: l, Status: l.Status(today)})
	}
	return rows, nil
}

func translate(err error) error {
	if apperrors.IsNotFound(err) {
		return member.ErrMemberNotFound.WithCause(err)
	}
	return err
}
