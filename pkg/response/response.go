// Package response writes the console's JSON envelope.
//
// Every JSON endpoint answers HTTP 200 with {code, message, data}; code 0
// is success and anything else is a business code from pkg/errors. The
// browser script branches on code, never on the HTTP status.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

// LoggerKey is the gin context key holding the request-scoped *zap.Logger.
const LoggerKey = "logger"

// Response is the envelope.
type Response struct {
	Code     int                    `json:"code"`
	Message  string                 `json:"message"`
	Data     any                    `json:"data,omitempty"`
	Details  []apperrors.FieldError `json:"details,omitempty"`
	Redirect string                 `json:"redirect,omitempty"`
}

// Success writes data with code 0.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes err as its business code. The internal cause is logged and
// never sent.
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	log := Logger(c)

	switch {
	case appErr.Code >= 50000:
		log.Error("request failed", zap.Int("code", appErr.Code), zap.Error(err))
	case appErr.Err != nil:
		log.Info("request rejected", zap.Int("code", appErr.Code), zap.Error(appErr.Err))
	}

	c.JSON(http.StatusOK, Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// Redirect tells the browser to leave the page, e.g. after the session
// ended.
func Redirect(c *gin.Context, err error, location string) {
	appErr := apperrors.GetAppError(err)
	c.JSON(http.StatusOK, Response{
		Code:     appErr.Code,
		Message:  appErr.Message,
		Redirect: location,
	})
}

// Logger returns the request logger set by the logging middleware, or a
// no-op logger.
func Logger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}
