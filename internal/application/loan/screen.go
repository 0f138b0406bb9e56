// Package loan is the loans screen.
package loan

import (
	"context"
	"net/url"

	"github.com/xiebiao/libadmin/internal/application/listview"
	"github.com/xiebiao/libadmin/internal/domain/calendar"
	"github.com/xiebiao/libadmin/internal/domain/loan"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/validator"
)

// Screen is one session's loans list. Rows embed book and member summaries
// computed by the server, so saves refetch the page instead of patching it.
type Screen struct {
	*listview.Controller[loan.Loan]
	gw  loan.Gateway
	env listview.Env
}

func NewScreen(gw loan.Gateway, env listview.Env, initial url.Values) *Screen {
	ctrl := listview.New(listview.Configure(env, listview.Options[loan.Loan]{
		Schema:  loan.ListSchema,
		Fetch:   gw.ListLoans,
		ID:      loan.ID,
		Initial: initial,
	}))
	return &Screen{Controller: ctrl, gw: gw, env: env}
}

func check(in loan.Input) error {
	if err := validator.Struct(in); err != nil {
		return err
	}
	return in.CheckDates()
}

// Get loads one loan for the edit form.
func (s *Screen) Get(ctx context.Context, id int64) (loan.Loan, error) {
	l, err := s.gw.GetLoan(ctx, id)
	return l, translate(err)
}

func (s *Screen) Create(ctx context.Context, in loan.Input) (loan.Loan, error) {
	if err := check(in); err != nil {
		return loan.Loan{}, err
	}

	created, err := s.Controller.Create(ctx, func(ctx context.Context) (loan.Loan, error) {
		l, err := s.gw.CreateLoan(ctx, in)
		return l, translate(err)
	})
	if err != nil {
		return loan.Loan{}, err
	}
	s.env.Record(ctx, s.Name(), "create", created.ID)
	return created, nil
}

func (s *Screen) Update(ctx context.Context, id int64, in loan.Input) (loan.Loan, error) {
	if err := check(in); err != nil {
		return loan.Loan{}, err
	}

	updated, err := s.UpdateAndReload(ctx, func(ctx context.Context) (loan.Loan, error) {
		l, err := s.gw.UpdateLoan(ctx, id, in)
		return l, translate(err)
	})
	if err != nil {
		return loan.Loan{}, err
	}
	s.env.Record(ctx, s.Name(), "update", id)
	return updated, nil
}

func (s *Screen) Delete(ctx context.Context, id int64) error {
	err := s.Controller.Delete(ctx, []int64{id}, func(ctx context.Context, _ []int64) error {
		return translate(s.gw.DeleteLoan(ctx, id))
	})
	if err != nil {
		return err
	}
	s.env.Record(ctx, s.Name(), "delete", id)
	return nil
}

// Return marks an active loan as returned today.
func (s *Screen) Return(ctx context.Context, id int64) (loan.Loan, error) {
	current, ok := s.Find(id)
	if !ok {
		var err error
		if current, err = s.Get(ctx, id); err != nil {
			return loan.Loan{}, err
		}
	}
	if !current.Active() {
		return loan.Loan{}, loan.ErrAlreadyReturned
	}

	in := loan.InputOf(current)
	today := calendar.NewDate(s.env.Clock())
	in.ReturnedDate = &today
	return s.Update(ctx, id, in)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsConflict(err):
		return loan.ErrActiveLoanExists.WithCause(err)
	case apperrors.IsNotFound(err):
		return loan.ErrLoanNotFound.WithCause(err)
	}
	return err
}
