// Package handler holds the gin handlers of the console API.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/libadmin/internal/application/workspace"
	"github.com/xiebiao/libadmin/internal/domain/session"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/response"
)

// base is shared by the handlers that act on a session's screens.
type base struct {
	spaces   *workspace.Manager
	sessions *middleware.SessionMiddleware
}

func (b base) session(c *gin.Context) session.Session {
	return middleware.MustGetSession(c)
}

// fail renders err. A token the library API refused ends the session.
func (b base) fail(c *gin.Context, err error) {
	if apperrors.IsUnauthorized(err) {
		b.sessions.End(c)
		return
	}
	response.Error(c, err)
}

func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return apperrors.ErrBindError.WithCause(err)
	}
	return nil
}

// idParam reads a positive id from the route.
func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrInvalidParams.WithMessage(name + " must be a positive number")
	}
	return id, nil
}

// idQuery reads an optional id from the query string; absent is 0.
func idQuery(c *gin.Context, name string) int64 {
	id, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return max(id, 0)
}
