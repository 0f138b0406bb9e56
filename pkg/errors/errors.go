package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the typed failure carried through every layer of the console.
//
//   - Code is the business code the console returns to its clients (never a raw HTTP status).
//   - Message is the user-facing text.
//   - Status is the upstream HTTP status when the error came from the library API.
//   - Details holds per-field validation messages.
//   - Err is the internal cause; it is logged, never serialized.
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"-"`
	Details []FieldError `json:"details,omitempty"`
	Err     error        `json:"-"`
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by code so that errors.Is(err, ErrNotFound) works
// for any not-found error regardless of its message.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates an AppError.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap turns a low-level error into an internal AppError.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WithMessage returns a copy of e carrying a different user-facing message.
func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

// WithCause returns a copy of e wrapping err.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// =========================================
// Codes
// =========================================
// - 4xxxx: caller problems (validation, auth, missing or conflicting records)
// - 5xxxx: infrastructure problems (network, upstream, session store)

const (
	// System (50000-50099)
	ErrCodeInternal    = 50000
	ErrCodeNetwork     = 50010 // library API unreachable
	ErrCodeUpstream    = 50020 // library API answered 5xx or an unexpected status
	ErrCodeUnavailable = 50030 // circuit open
	ErrCodeRedisError  = 50002

	// Auth (40100-40199)
	ErrCodeUnauthorized       = 40100
	ErrCodeInvalidToken       = 40101
	ErrCodeTokenExpired       = 40102
	ErrCodeInvalidCredentials = 40103
	ErrCodeForbidden          = 40104

	// Not found (40400-40499)
	ErrCodeNotFound       = 40400
	ErrCodeScreenNotFound = 40401

	// Business rules (40000-40099)
	ErrCodeBusinessError  = 40000
	ErrCodeBusy           = 40010 // another submission on the same screen is still running
	ErrCodeDuplicateEntry = 40009

	// Params (40900-40999)
	ErrCodeInvalidParams = 40900
	ErrCodeBindError     = 40901
)

var (
	ErrInternal    = New(ErrCodeInternal, "internal error")
	ErrNetwork     = New(ErrCodeNetwork, "library service is unreachable, try again")
	ErrUpstream    = New(ErrCodeUpstream, "library service failed, try again")
	ErrUnavailable = New(ErrCodeUnavailable, "library service is temporarily unavailable")
	ErrRedisError  = New(ErrCodeRedisError, "session store error")

	ErrUnauthorized       = New(ErrCodeUnauthorized, "please log in")
	ErrInvalidToken       = New(ErrCodeInvalidToken, "invalid token")
	ErrTokenExpired       = New(ErrCodeTokenExpired, "Session expired. Please log in again.")
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "invalid email or password")
	ErrForbidden          = New(ErrCodeForbidden, "access denied")

	ErrNotFound       = New(ErrCodeNotFound, "record no longer exists")
	ErrScreenNotFound = New(ErrCodeScreenNotFound, "unknown screen")

	ErrBusy     = New(ErrCodeBusy, "another change is still being saved")
	ErrConflict = New(ErrCodeDuplicateEntry, "record already exists")
	ErrBusiness = New(ErrCodeBusinessError, "request rejected")

	ErrInvalidParams = New(ErrCodeInvalidParams, "invalid parameters")
	ErrBindError     = New(ErrCodeBindError, "malformed request")
)

// FromStatus maps a non-2xx status from the library API onto the taxonomy.
// An empty message keeps the default text of the matched error.
func FromStatus(status int, message string) *AppError {
	var base *AppError
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		base = ErrInvalidParams
	case status == http.StatusUnauthorized:
		base = ErrUnauthorized
	case status == http.StatusForbidden:
		base = ErrForbidden
	case status == http.StatusNotFound:
		base = ErrNotFound
	case status == http.StatusConflict:
		base = ErrConflict
	case status >= 400 && status < 500:
		base = ErrBusiness
	default:
		base = ErrUpstream
	}

	cp := *base
	cp.Status = status
	if message != "" {
		cp.Message = message
	}
	return &cp
}

// Validation builds an invalid-params error carrying field details.
func Validation(details []FieldError) *AppError {
	cp := *ErrInvalidParams
	cp.Details = details
	if len(details) > 0 {
		cp.Message = details[0].Message
	}
	return &cp
}

// =========================================
// Helpers
// =========================================

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError, wrapping anything else as internal.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "internal error")
}

// CodeOf returns the business code of err, or 0 for nil.
func CodeOf(err error) int {
	if err == nil {
		return 0
	}
	return GetAppError(err).Code
}

func IsNotFound(err error) bool {
	code := CodeOf(err)
	return code >= 40400 && code < 40500
}

func IsConflict(err error) bool {
	return CodeOf(err) == ErrCodeDuplicateEntry
}

// IsUnauthorized reports whether err should end the session.
func IsUnauthorized(err error) bool {
	switch CodeOf(err) {
	case ErrCodeUnauthorized, ErrCodeInvalidToken, ErrCodeTokenExpired:
		return true
	}
	return false
}

func IsValidation(err error) bool {
	code := CodeOf(err)
	return code >= 40900 && code < 41000
}
