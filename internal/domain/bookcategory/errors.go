package bookcategory

import (
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

var (
	ErrNothingToChange = apperrors.New(apperrors.ErrCodeInvalidParams, "select categories to add or remove")
	ErrBookNotListed   = apperrors.New(apperrors.ErrCodeNotFound, "book is not on the current page")
)
