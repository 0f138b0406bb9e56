package apiclient

import (
	"context"
	"net/http"

	"github.com/xiebiao/libadmin/internal/domain/author"
	"github.com/xiebiao/libadmin/internal/domain/book"
	"github.com/xiebiao/libadmin/internal/domain/bookcategory"
	"github.com/xiebiao/libadmin/internal/domain/category"
	"github.com/xiebiao/libadmin/internal/domain/loan"
	"github.com/xiebiao/libadmin/internal/domain/member"
	"github.com/xiebiao/libadmin/internal/domain/session"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

type tokenBody struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. A 401 here means wrong
// credentials, not an ended session.
func (c *Client) Login(ctx context.Context, in session.Credentials) (string, error) {
	return c.authenticate(ctx, "/auth/login", in)
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, in session.Registration) (string, error) {
	return c.authenticate(ctx, "/auth/register", in)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (string, error) {
	var out tokenBody
	err := c.WithToken("").do(ctx, call{method: http.MethodPost, endpoint: path, path: path, body: body}, &out)
	switch {
	case apperrors.IsUnauthorized(err):
		return "", apperrors.ErrInvalidCredentials.WithCause(err)
	case err != nil:
		return "", err
	case out.Token == "":
		return "", apperrors.ErrUpstream.WithMessage("library service issued no token")
	}
	return out.Token, nil
}

var (
	_ book.Gateway         = (*Client)(nil)
	_ author.Gateway       = (*Client)(nil)
	_ category.Gateway     = (*Client)(nil)
	_ bookcategory.Gateway = (*Client)(nil)
	_ member.Gateway       = (*Client)(nil)
	_ loan.Gateway         = (*Client)(nil)
	_ session.Gateway      = (*Client)(nil)
)
