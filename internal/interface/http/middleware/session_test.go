package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/libadmin/internal/domain/session"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	sessions map[string]session.Session
	err      error
	expired  []string
}

func (r *fakeResolver) Execute(_ context.Context, id string) (session.Session, error) {
	if r.err != nil {
		return session.Session{}, r.err
	}
	sess, ok := r.sessions[id]
	if !ok {
		return session.Session{}, apperrors.ErrUnauthorized
	}
	return sess, nil
}

func (r *fakeResolver) Expire(_ context.Context, id string) error {
	r.expired = append(r.expired, id)
	delete(r.sessions, id)
	return nil
}

type fakeDropper struct{ dropped []string }

func (d *fakeDropper) Drop(id string) { d.dropped = append(d.dropped, id) }

func setup() (*gin.Engine, *fakeResolver, *fakeDropper) {
	resolver := &fakeResolver{sessions: map[string]session.Session{
		"s1": {ID: "s1", Token: "tok", Email: "ada@example.com"},
	}}
	dropper := &fakeDropper{}
	m := NewSessionMiddleware(resolver, dropper, CookieConfig{})

	r := gin.New()
	api := r.Group("/api", m.RequireSession())
	api.GET("/me", func(c *gin.Context) {
		response.Success(c, MustGetSession(c).Email)
	})
	api.GET("/end", m.End)
	return r, resolver, dropper
}

func get(r *gin.Engine, path, cookie, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "libadmin_session", Value: cookie})
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func body(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRequireSession(t *testing.T) {
	r, _, dropper := setup()

	t.Run("live session", func(t *testing.T) {
		resp := body(t, get(r, "/api/me", "s1", ""))
		assert.Equal(t, 0, resp.Code)
		assert.Equal(t, "ada@example.com", resp.Data)
	})

	t.Run("no cookie", func(t *testing.T) {
		resp := body(t, get(r, "/api/me", "", ""))
		assert.Equal(t, apperrors.ErrCodeUnauthorized, resp.Code)
		assert.Equal(t, "/login", resp.Redirect)
		assert.Empty(t, dropper.dropped)
	})

	t.Run("browser is redirected", func(t *testing.T) {
		rec := get(r, "/api/me", "", "text/html,application/xhtml+xml")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("unknown session drops its screens and clears the cookie", func(t *testing.T) {
		rec := get(r, "/api/me", "gone", "")
		assert.Equal(t, apperrors.ErrCodeUnauthorized, body(t, rec).Code)
		assert.Equal(t, []string{"gone"}, dropper.dropped)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "libadmin_session", cookies[0].Name)
		assert.Negative(t, cookies[0].MaxAge)
	})
}

func TestRequireSession_Expired(t *testing.T) {
	r, resolver, _ := setup()
	resolver.err = apperrors.ErrTokenExpired

	resp := body(t, get(r, "/api/me", "s1", ""))
	assert.Equal(t, apperrors.ErrCodeTokenExpired, resp.Code)
	assert.Equal(t, "/login?expired=1", resp.Redirect)
	assert.Equal(t, apperrors.ErrTokenExpired.Message, resp.Message)
}

func TestRequireSession_StoreDown(t *testing.T) {
	r, resolver, dropper := setup()
	resolver.err = apperrors.ErrRedisError

	rec := get(r, "/api/me", "s1", "")
	assert.Equal(t, apperrors.ErrCodeRedisError, body(t, rec).Code)
	assert.Empty(t, dropper.dropped)
	assert.Empty(t, rec.Result().Cookies())
}

func TestEnd(t *testing.T) {
	r, resolver, dropper := setup()

	rec := get(r, "/api/end", "s1", "")
	resp := body(t, rec)
	assert.Equal(t, apperrors.ErrCodeTokenExpired, resp.Code)
	assert.Equal(t, "/login?expired=1", resp.Redirect)
	assert.Equal(t, []string{"s1"}, resolver.expired)
	assert.Equal(t, []string{"s1"}, dropper.dropped)

	assert.Equal(t, apperrors.ErrCodeUnauthorized, body(t, get(r, "/api/me", "s1", "")).Code)
}

func TestGetSession_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetSession(c)
	assert.False(t, ok)
	assert.Panics(t, func() { MustGetSession(c) })
}
