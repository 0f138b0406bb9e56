package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/xiebiao/libadmin/internal/domain/listquery"
	"github.com/xiebiao/libadmin/internal/domain/loan"
	"github.com/xiebiao/libadmin/internal/domain/member"
)

// loanPage is the body of GET /Loan.
type loanPage struct {
	Loans      []loan.Loan `json:"loans"`
	TotalCount int         `json:"totalCount"`
}

func (c *Client) ListMembers(ctx context.Context, req listquery.Request) (listquery.Page[member.Member], error) {
	var body itemsPage[member.Member]
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/member/paged", path: "/member/paged", query: pagedQuery(req)}, &body)
	if err != nil {
		return listquery.Page[member.Member]{}, err
	}
	return body.page(), nil
}

func (c *Client) CreateMember(ctx context.Context, in member.Input) (member.Member, error) {
	var out member.Member
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/member", path: "/member", body: in}, &out)
	return out, err
}

// UpdateMember answers the submitted fields; the API replies 204.
func (c *Client) UpdateMember(ctx context.Context, id int64, in member.Input) (member.Member, error) {
	out := member.Member{ID: id}.Apply(in)
	err := c.do(ctx, call{method: http.MethodPut, endpoint: "/member/{id}", path: idPath("/member/%d", id), body: in}, &out)
	if err != nil {
		return member.Member{}, err
	}
	return out, nil
}

func (c *Client) DeleteMember(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, endpoint: "/member/{id}", path: idPath("/member/%d", id)}, nil)
}

func (c *Client) MemberLoans(ctx context.Context, memberID int64) ([]member.Loan, error) {
	var out []member.Loan
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/member/{id}/loans", path: idPath("/member/%d/loans", memberID)}, &out)
	return nonNil(out), err
}

// ListLoans pages loans. The endpoint takes sortDirection=asc|desc and an
// optional isReturned filter.
func (c *Client) ListLoans(ctx context.Context, req listquery.Request) (listquery.Page[loan.Loan], error) {
	q := pagedQuery(req)
	q.Del("desc")
	direction := "asc"
	if req.SortDesc {
		direction = "desc"
	}
	q.Set("sortDirection", direction)
	if v, err := strconv.ParseBool(req.Filters[loan.FilterReturned]); err == nil {
		q.Set("isReturned", strconv.FormatBool(v))
	}

	var body loanPage
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/Loan", path: "/Loan", query: q}, &body); err != nil {
		return listquery.Page[loan.Loan]{}, err
	}
	return listquery.Page[loan.Loan]{Items: nonNil(body.Loans), TotalCount: body.TotalCount}, nil
}

func (c *Client) GetLoan(ctx context.Context, id int64) (loan.Loan, error) {
	var out loan.Loan
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/Loan/{id}", path: idPath("/Loan/%d", id)}, &out)
	return out, err
}

func (c *Client) CreateLoan(ctx context.Context, in loan.Input) (loan.Loan, error) {
	var out loan.Loan
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/Loan", path: "/Loan", body: in}, &out)
	return out, err
}

func (c *Client) UpdateLoan(ctx context.Context, id int64, in loan.Input) (loan.Loan, error) {
	out := loan.Loan{
		ID:           id,
		BookID:       in.BookID,
		MemberID:     in.MemberID,
		LoanDate:     in.LoanDate,
		MustReturn:   in.MustReturn,
		ReturnedDate: in.ReturnedDate,
	}
	err := c.do(ctx, call{method: http.MethodPut, endpoint: "/Loan/{id}", path: idPath("/Loan/%d", id), body: in}, &out)
	if err != nil {
		return loan.Loan{}, err
	}
	return out, nil
}

func (c *Client) DeleteLoan(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, endpoint: "/Loan/{id}", path: idPath("/Loan/%d", id)}, nil)
}
