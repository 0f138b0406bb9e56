package member

import (
	"context"

	"github.com/xiebiao/libadmin/internal/domain/calendar"
	"github.com/xiebiao/libadmin/internal/domain/listquery"
	"github.com/xiebiao/libadmin/internal/domain/loan"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

type Member struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	BirthYear      int           `json:"birthYear"`
	MembershipDate calendar.Date `json:"membershipDate"`
}

// Input is the add/edit form of a member.
type Input struct {
	Name           string        `json:"name" validate:"notblank,max=100"`
	BirthYear      int           `json:"birthYear" validate:"required,min=1900,notfuture"`
	MembershipDate calendar.Date `json:"membershipDate"`
}

// CheckDates requires a membership date that is not in the future.
func (in Input) CheckDates(today calendar.Date) error {
	if in.MembershipDate.IsZero() {
		return ErrMembershipDateRequired
	}
	if today.Before(in.MembershipDate) {
		return ErrMembershipInFuture
	}
	return nil
}

func (m Member) Apply(in Input) Member {
	m.Name = in.Name
	m.BirthYear = in.BirthYear
	m.MembershipDate = in.MembershipDate
	return m
}

// Loan is a row of the member's loan history.
type Loan struct {
	ID           int64          `json:"id"`
	BookTitle    string         `json:"bookTitle"`
	ISBN         string         `json:"isbn"`
	LoanDate     calendar.Date  `json:"loanDate"`
	MustReturn   calendar.Date  `json:"mustReturn"`
	ReturnedDate *calendar.Date `json:"returnedDate"`
}

func (l Loan) Status(today calendar.Date) loan.Status {
	return loan.StatusOf(l.ReturnedDate, l.MustReturn, today)
}

const (
	SortName           = "name"
	SortBirthYear      = "birthyear"
	SortMembershipDate = "membershipdate"
)

// ListSchema describes the members screen.
var ListSchema = listquery.Schema{
	Name:          "members",
	SortFields:    []string{SortName, SortBirthYear, SortMembershipDate},
	DefaultSortBy: SortName,
}

func ID(m Member) int64 { return m.ID }

// Gateway is what the members screen needs from the library API.
type Gateway interface {
	ListMembers(ctx context.Context, req listquery.Request) (listquery.Page[Member], error)
	CreateMember(ctx context.Context, in Input) (Member, error)
	UpdateMember(ctx context.Context, id int64, in Input) (Member, error)
	DeleteMember(ctx context.Context, id int64) error
	MemberLoans(ctx context.Context, memberID int64) ([]Loan, error)
}

var (
	ErrMemberNotFound         = apperrors.New(apperrors.ErrCodeNotFound, "member was already removed")
	ErrMembershipDateRequired = apperrors.Validation([]apperrors.FieldError{{Field: "membershipDate", Message: "membershipDate is required"}})
	ErrMembershipInFuture     = apperrors.Validation([]apperrors.FieldError{{Field: "membershipDate", Message: "membershipDate must not be in the future"}})
)
