package author

import (
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

var (
	ErrAuthorNotFound = apperrors.New(apperrors.ErrCodeNotFound, "author was already removed")
	ErrBookNotLinked  = apperrors.New(apperrors.ErrCodeBusinessError, "author was saved but could not be linked to the book")
)

// ErrDuplicateName names the author the API already has.
func ErrDuplicateName(in Input) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeDuplicateEntry, "Author "+in.FirstName+" "+in.LastName+" already exists.")
}
