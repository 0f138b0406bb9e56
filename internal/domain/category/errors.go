package category

import (
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

var (
	ErrDuplicateName    = apperrors.New(apperrors.ErrCodeDuplicateEntry, "a category with this name already exists")
	ErrCategoryNotFound = apperrors.New(apperrors.ErrCodeNotFound, "category was already removed")
)
