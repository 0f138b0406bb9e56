package loan

import (
	"context"

	"github.com/xiebiao/libadmin/internal/domain/listquery"
)

// Gateway is what the loans screen needs from the library API.
type Gateway interface {
	ListLoans(ctx context.Context, req listquery.Request) (listquery.Page[Loan], error)
	GetLoan(ctx context.Context, id int64) (Loan, error)
	CreateLoan(ctx context.Context, in Input) (Loan, error)
	UpdateLoan(ctx context.Context, id int64, in Input) (Loan, error)
	DeleteLoan(ctx context.Context, id int64) error
}
