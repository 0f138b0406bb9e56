// Package validator runs the pre-submit checks of console forms and turns
// failures into AppErrors with one message per field.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Engine returns the shared validator with the custom rules registered.
func Engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(jsonName)
		_ = validate.RegisterValidation("notfuture", notFutureYear)
		_ = validate.RegisterValidation("notblank", notBlank)
	})
	return validate
}

// Struct validates s and returns an invalid-params AppError listing every
// failed field, or nil.
func Struct(s interface{}) error {
	err := Engine().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.ErrInvalidParams.WithCause(err)
	}

	details := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperrors.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return apperrors.Validation(details)
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// notFutureYear accepts a year no later than the current one.
func notFutureYear(fl validator.FieldLevel) bool {
	return fl.Field().Int() <= int64(time.Now().Year())
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimFunc(fl.Field().String(), unicode.IsSpace) != ""
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "notfuture":
		return fmt.Sprintf("%s must not be in the future", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "isbn":
		return fmt.Sprintf("%s must be a valid ISBN", fe.Field())
	case "gtefield", "gtfield":
		return fmt.Sprintf("%s must not be before %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
