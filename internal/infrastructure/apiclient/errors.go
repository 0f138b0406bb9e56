package apiclient

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"

	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

// problem covers the error bodies the API sends: {message}, ASP.NET
// problem details {title, errors}, or plain text.
type problem struct {
	Message string              `json:"message"`
	Title   string              `json:"title"`
	Detail  string              `json:"detail"`
	Errors  map[string][]string `json:"errors"`
}

// decodeError maps a non-2xx response onto the error taxonomy, keeping
// the server's message when it sent one.
func decodeError(resp *http.Response) *apperrors.AppError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(raw))

	var p problem
	if text != "" && text[0] == '{' && json.Unmarshal(raw, &p) == nil {
		msg := firstNonEmpty(p.Message, p.Detail, p.Title)
		appErr := apperrors.FromStatus(resp.StatusCode, msg)
		if details := fieldErrors(p.Errors); len(details) > 0 {
			appErr.Details = details
			appErr.Message = details[0].Message
		}
		return appErr
	}

	if text != "" && text[0] != '<' && len(text) <= 300 {
		return apperrors.FromStatus(resp.StatusCode, strings.Trim(text, `"`))
	}
	return apperrors.FromStatus(resp.StatusCode, "")
}

func fieldErrors(errs map[string][]string) []apperrors.FieldError {
	if len(errs) == 0 {
		return nil
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make([]apperrors.FieldError, 0, len(fields))
	for _, f := range fields {
		if len(errs[f]) == 0 {
			continue
		}
		out = append(out, apperrors.FieldError{Field: lowerFirst(f), Message: errs[f][0]})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
