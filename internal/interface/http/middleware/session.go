// Package middleware holds the gin middleware of the console: session
// resolution, request logging, metrics and tracing.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/libadmin/internal/domain/session"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/response"
)

const sessionKey = "session"

// ParamExpired marks a login redirect caused by an ended session.
const ParamExpired = "expired"

// Resolver finds and ends sessions.
type Resolver interface {
	Execute(ctx context.Context, sessionID string) (session.Session, error)
	Expire(ctx context.Context, sessionID string) error
}

// Dropper closes the screens of a session.
type Dropper interface {
	Drop(sessionID string)
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	// LoginPath is where an ended session is sent.
	LoginPath string
}

// SessionMiddleware authenticates console requests by session cookie.
type SessionMiddleware struct {
	resolver Resolver
	screens  Dropper
	cookie   CookieConfig
}

func NewSessionMiddleware(resolver Resolver, screens Dropper, cookie CookieConfig) *SessionMiddleware {
	if cookie.Name == "" {
		cookie.Name = "libadmin_session"
	}
	if cookie.LoginPath == "" {
		cookie.LoginPath = "/login"
	}
	return &SessionMiddleware{resolver: resolver, screens: screens, cookie: cookie}
}

// RequireSession rejects requests without a live session. An expired or
// revoked session is cleaned up and the client is sent to the login page.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(m.cookie.Name)
		if err != nil || id == "" {
			m.redirect(c, apperrors.ErrUnauthorized)
			return
		}

		sess, err := m.resolver.Execute(c.Request.Context(), id)
		if err != nil {
			if apperrors.IsUnauthorized(err) {
				m.screens.Drop(id)
				m.ClearCookie(c)
				m.redirect(c, err)
				return
			}
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// End finishes the request's session after the library API refused its
// token: the session and its screens are dropped and the client is
// redirected.
func (m *SessionMiddleware) End(c *gin.Context) {
	if sess, ok := GetSession(c); ok {
		m.screens.Drop(sess.ID)
		if err := m.resolver.Expire(c.Request.Context(), sess.ID); err != nil {
			response.Logger(c).Warn("session not deleted")
		}
	}
	m.ClearCookie(c)
	m.redirect(c, apperrors.ErrTokenExpired)
}

// SetCookie stores the session id for ttl.
func (m *SessionMiddleware) SetCookie(c *gin.Context, id string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, id, int(ttl.Seconds()), "/", "", m.cookie.Secure, true)
}

func (m *SessionMiddleware) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, "", -1, "/", "", m.cookie.Secure, true)
}

// CookieName is the name of the session cookie.
func (m *SessionMiddleware) CookieName() string {
	return m.cookie.Name
}

func (m *SessionMiddleware) redirect(c *gin.Context, err error) {
	location := m.cookie.LoginPath
	if apperrors.CodeOf(err) == apperrors.ErrCodeTokenExpired {
		location += "?" + ParamExpired + "=1"
	}
	if WantsHTML(c) {
		c.Redirect(http.StatusFound, location)
	} else {
		response.Redirect(c, err, location)
	}
	c.Abort()
}

// WantsHTML reports whether the client is a browser navigating, not a
// script asking for JSON.
func WantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

// GetSession returns the session set by RequireSession.
func GetSession(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return session.Session{}, false
	}
	sess, ok := v.(session.Session)
	return sess, ok
}

// MustGetSession is GetSession for handlers behind RequireSession.
func MustGetSession(c *gin.Context) session.Session {
	sess, ok := GetSession(c)
	if !ok {
		panic("session not found in context")
	}
	return sess
}
