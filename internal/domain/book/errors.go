package book

import (
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

var (
	ErrBookNotFound     = apperrors.New(apperrors.ErrCodeNotFound, "book was already removed")
	ErrISBNDuplicate    = apperrors.New(apperrors.ErrCodeDuplicateEntry, "a book with this ISBN already exists")
	ErrLinkNotFound     = apperrors.New(apperrors.ErrCodeNotFound, "link was already removed")
	ErrNothingSelected  = apperrors.New(apperrors.ErrCodeInvalidParams, "select at least one book")
	ErrNoAuthorSelected = apperrors.New(apperrors.ErrCodeInvalidParams, "select at least one author")
	ErrNoCategory       = apperrors.New(apperrors.ErrCodeInvalidParams, "select at least one category")
)
