package loan

import (
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

var (
	ErrLoanNotFound       = apperrors.New(apperrors.ErrCodeNotFound, "loan was already removed")
	ErrActiveLoanExists   = apperrors.New(apperrors.ErrCodeDuplicateEntry, "member already has an active loan for this book")
	ErrAlreadyReturned    = apperrors.New(apperrors.ErrCodeBusinessError, "loan is already returned")
	ErrLoanDateRequired   = apperrors.Validation([]apperrors.FieldError{{Field: "loanDate", Message: "loanDate is required"}})
	ErrMustReturnRequired = apperrors.Validation([]apperrors.FieldError{{Field: "mustReturn", Message: "mustReturn is required"}})
	ErrDueBeforeLoan      = apperrors.Validation([]apperrors.FieldError{{Field: "mustReturn", Message: "mustReturn must not be before loanDate"}})
	ErrReturnBeforeLoan   = apperrors.Validation([]apperrors.FieldError{{Field: "returnedDate", Message: "returnedDate must not be before loanDate"}})
)
