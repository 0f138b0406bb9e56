package loan

import (
	"github.com/xiebiao/libadmin/internal/domain/calendar"
	"github.com/xiebiao/libadmin/internal/domain/listquery"
)

// Loan of one book to one member. A nil ReturnedDate means the loan is
// still active.
type Loan struct {
	ID           int64          `json:"id"`
	BookID       int64          `json:"bookId"`
	MemberID     int64          `json:"memberId"`
	LoanDate     calendar.Date  `json:"loanDate"`
	MustReturn   calendar.Date  `json:"mustReturn"`
	ReturnedDate *calendar.Date `json:"returnedDate"`
	Book         *BookRef       `json:"book,omitempty"`
	Member       *MemberRef     `json:"member,omitempty"`
}

// BookRef is the book summary embedded in loan listings.
type BookRef struct {
	Title string  `json:"title"`
	ISBN  string  `json:"isbn"`
	Price float64 `json:"price"`
}

// MemberRef is the member summary embedded in loan listings.
type MemberRef struct {
	Name string `json:"name"`
}

func (l Loan) Active() bool {
	return l.ReturnedDate == nil || l.ReturnedDate.IsZero()
}

// Status of the loan on the given day.
func (l Loan) Status(today calendar.Date) Status {
	return StatusOf(l.ReturnedDate, l.MustReturn, today)
}

// Status is how a loan is shown in member and loan listings.
type Status string

const (
	StatusReturned Status = "Returned"
	StatusOverdue  Status = "Overdue"
	StatusActive   Status = "Active"
)

// StatusOf classifies a loan: returned loans are Returned, active loans past
// their due date are Overdue, the rest are Active.
func StatusOf(returned *calendar.Date, mustReturn, today calendar.Date) Status {
	if returned != nil && !returned.IsZero() {
		return StatusReturned
	}
	if !mustReturn.IsZero() && mustReturn.Before(today) {
		return StatusOverdue
	}
	return StatusActive
}

// Input is the create/edit form of a loan.
type Input struct {
	BookID       int64          `json:"bookId" validate:"required,gt=0"`
	MemberID     int64          `json:"memberId" validate:"required,gt=0"`
	LoanDate     calendar.Date  `json:"loanDate"`
	MustReturn   calendar.Date  `json:"mustReturn"`
	ReturnedDate *calendar.Date `json:"returnedDate"`
}

// CheckDates enforces the ordering of the three dates.
func (in Input) CheckDates() error {
	if in.LoanDate.IsZero() {
		return ErrLoanDateRequired
	}
	if in.MustReturn.IsZero() {
		return ErrMustReturnRequired
	}
	if in.MustReturn.Before(in.LoanDate) {
		return ErrDueBeforeLoan
	}
	if in.ReturnedDate != nil && !in.ReturnedDate.IsZero() && in.ReturnedDate.Before(in.LoanDate) {
		return ErrReturnBeforeLoan
	}
	return nil
}

// InputOf turns an existing loan back into its edit form.
func InputOf(l Loan) Input {
	return Input{
		BookID:       l.BookID,
		MemberID:     l.MemberID,
		LoanDate:     l.LoanDate,
		MustReturn:   l.MustReturn,
		ReturnedDate: l.ReturnedDate,
	}
}

const (
	SortLoanDate     = "LoanDate"
	SortReturnedDate = "ReturnedDate"
	SortMustReturn   = "MustReturn"
	SortTitle        = "Title"
	SortName         = "Name"

	// FilterReturned takes "true", "false" or is absent for all loans.
	FilterReturned = "isReturned"
)

// ListSchema describes the loans screen.
var ListSchema = listquery.Schema{
	Name:          "loans",
	SortFields:    []string{SortLoanDate, SortReturnedDate, SortMustReturn, SortTitle, SortName},
	DefaultSortBy: SortLoanDate,
	Filters:       []string{FilterReturned},
	FilterValues:  map[string][]string{FilterReturned: {"true", "false"}},
}

func ID(l Loan) int64 { return l.ID }
