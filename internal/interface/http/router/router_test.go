package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/libadmin/internal/application/auth"
	"github.com/xiebiao/libadmin/internal/application/workspace"
	"github.com/xiebiao/libadmin/internal/infrastructure/apiclient"
	"github.com/xiebiao/libadmin/internal/infrastructure/config"
	"github.com/xiebiao/libadmin/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/libadmin/internal/interface/http/handler"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// library fakes the REST API the console talks to.
type library struct {
	token  string
	reject atomic.Bool
	lists  atomic.Int32
}

func (l *library) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]string{"token": l.token})
	})
	mux.HandleFunc("GET /api/book/paged", func(w http.ResponseWriter, r *http.Request) {
		l.lists.Add(1)
		if l.reject.Load() || r.Header.Get("Authorization") != "Bearer "+l.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{
			"books":      []map[string]any{{"id": 1, "title": "Dune", "isbn": "9780441013593", "publishedYear": 1965}},
			"totalCount": 1,
		})
	})
	mux.HandleFunc("POST /api/book", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		in["id"] = 2
		writeJSON(w, in)
	})
	mux.HandleFunc("GET /api/author/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"id": 1, "firstName": "Frank", "lastName": "Herbert"}})
	})
	mux.HandleFunc("GET /api/Authors", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"id": 1, "firstName": "Frank", "lastName": "Herbert"}})
	})
	mux.HandleFunc("POST /api/Authors", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["lastName"] == "Herbert" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		in["id"] = 2
		writeJSON(w, in)
	})
	mux.HandleFunc("GET /api/category/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"id": 1, "name": "Science fiction"}})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type envelope struct {
	Code     int             `json:"code"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Redirect string          `json:"redirect"`
}

type console struct {
	t      *testing.T
	engine *gin.Engine
	lib    *library
	spaces *workspace.Manager
}

func newConsole(t *testing.T) *console {
	t.Helper()

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"email": "admin@library.test",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("library-secret"))
	require.NoError(t, err)

	lib := &library{token: token}
	srv := httptest.NewServer(lib.handler())
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := redis.NewSessionStore(rdb, "libadmin:")

	opts := auth.Options{MaxTTL: 8 * time.Hour}
	resolve := auth.NewResolveUseCase(store, opts)
	spaces := workspace.NewManager(
		func(token string) workspace.API { return client.WithToken(token) },
		workspace.Config{Debounce: -1},
		nil,
		resolve.Expire,
		nil,
	)
	sessions := middleware.NewSessionMiddleware(resolve, spaces, middleware.CookieConfig{})

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode, LoginPath: "/login"},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	h := Handlers{
		Auth: handler.NewAuthHandler(
			auth.NewLoginUseCase(client, store, opts),
			auth.NewRegisterUseCase(client, store, opts),
			auth.NewLogoutUseCase(store, opts),
			spaces, sessions,
		),
		Screen:       handler.NewScreenHandler(spaces, sessions),
		Book:         handler.NewBookHandler(spaces, sessions),
		Author:       handler.NewAuthorHandler(spaces, sessions),
		Category:     handler.NewCategoryHandler(spaces, sessions),
		Member:       handler.NewMemberHandler(spaces, sessions),
		Loan:         handler.NewLoanHandler(spaces, sessions),
		BookCategory: handler.NewBookCategoryHandler(spaces, sessions),
		Lookup:       handler.NewLookupHandler(spaces, sessions),
	}
	return &console{t: t, engine: New(cfg, h, sessions, nil), lib: lib, spaces: spaces}
}

func (c *console) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func (c *console) login() *http.Cookie {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/auth/login", `{"email":"admin@library.test","password":"secret"}`, nil)
	require.Equal(c.t, 0, decode(c.t, rec).Code)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "libadmin_session" {
			return ck
		}
	}
	c.t.Fatal("no session cookie")
	return nil
}

func TestRouter_Ping(t *testing.T) {
	c := newConsole(t)
	env := decode(t, c.do(http.MethodGet, "/ping", "", nil))
	assert.Equal(t, 0, env.Code)
	assert.Contains(t, string(env.Data), "pong")
}

func TestRouter_RequiresSession(t *testing.T) {
	c := newConsole(t)

	env := decode(t, c.do(http.MethodGet, "/api/v1/screens/books", "", nil))
	assert.Equal(t, apperrors.ErrCodeUnauthorized, env.Code)
	assert.Equal(t, "/login", env.Redirect)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/screens/books", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	c.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouter_WrongPassword(t *testing.T) {
	c := newConsole(t)
	rec := c.do(http.MethodPost, "/auth/login", `{"email":"admin@library.test","password":"nope"}`, nil)
	assert.Equal(t, apperrors.ErrCodeInvalidCredentials, decode(t, rec).Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestRouter_SessionLifecycle(t *testing.T) {
	c := newConsole(t)
	cookie := c.login()

	env := decode(t, c.do(http.MethodGet, "/api/v1/screens/books?search=dune", "", cookie))
	require.Equal(t, 0, env.Code, env.Message)
	var view struct {
		Query      string `json:"query"`
		TotalCount int    `json:"totalCount"`
		Items      []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, 1, view.TotalCount)
	assert.Contains(t, view.Query, "search=dune")
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Dune", view.Items[0].Title)

	env = decode(t, c.do(http.MethodPost, "/api/v1/books",
		`{"title":"Emma","isbn":"9780141439587","publishedYear":1815,"price":9.5}`, cookie))
	require.Equal(t, 0, env.Code, env.Message)
	assert.Contains(t, string(env.Data), `"id":2`)

	env = decode(t, c.do(http.MethodPost, "/api/v1/books", `{"title":"","isbn":"1"}`, cookie))
	assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)

	env = decode(t, c.do(http.MethodGet, "/api/v1/lookups", "", cookie))
	require.Equal(t, 0, env.Code, env.Message)
	assert.Contains(t, string(env.Data), "Herbert")
	assert.Contains(t, string(env.Data), "Science fiction")

	env = decode(t, c.do(http.MethodGet, "/api/v1/screens/orders", "", cookie))
	assert.Equal(t, apperrors.ErrCodeScreenNotFound, env.Code)

	assert.Equal(t, 0, decode(t, c.do(http.MethodPost, "/auth/logout", "", cookie)).Code)
	assert.Equal(t, 0, c.spaces.Len())

	env = decode(t, c.do(http.MethodGet, "/api/v1/screens/books", "", cookie))
	assert.Equal(t, apperrors.ErrCodeUnauthorized, env.Code)
}

func TestRouter_UpstreamRejectionEndsSession(t *testing.T) {
	c := newConsole(t)
	cookie := c.login()
	c.lib.reject.Store(true)

	env := decode(t, c.do(http.MethodGet, "/api/v1/screens/books", "", cookie))
	assert.Equal(t, apperrors.ErrCodeTokenExpired, env.Code)
	assert.Equal(t, "/login?expired=1", env.Redirect)
	assert.Equal(t, 0, c.spaces.Len())

	env = decode(t, c.do(http.MethodGet, "/api/v1/screens/books", "", cookie))
	assert.Equal(t, apperrors.ErrCodeUnauthorized, env.Code)

	env = decode(t, c.do(http.MethodGet, "/login?expired=1", "", nil))
	assert.Contains(t, string(env.Data), apperrors.ErrTokenExpired.Message)
}

func TestRouter_BadID(t *testing.T) {
	c := newConsole(t)
	cookie := c.login()

	env := decode(t, c.do(http.MethodDelete, "/api/v1/books/abc", "", cookie))
	assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)

	env = decode(t, c.do(http.MethodPost, "/api/v1/books/delete/bulk", `{"ids":`, cookie))
	assert.Equal(t, apperrors.ErrCodeBindError, env.Code)
}

func TestRouter_Authors(t *testing.T) {
	c := newConsole(t)
	cookie := c.login()

	env := decode(t, c.do(http.MethodGet, "/api/v1/screens/authors?sortBy=LastName", "", cookie))
	require.Equal(t, 0, env.Code, env.Message)
	assert.Contains(t, string(env.Data), "Herbert")

	env = decode(t, c.do(http.MethodPost, "/api/v1/authors", `{"firstName":" Ann ","lastName":"Leckie"}`, cookie))
	require.Equal(t, 0, env.Code, env.Message)
	assert.Contains(t, string(env.Data), `"id":2`)
	assert.Contains(t, string(env.Data), `"firstName":"Ann"`)

	env = decode(t, c.do(http.MethodPost, "/api/v1/authors", `{"firstName":"Frank","lastName":"Herbert"}`, cookie))
	assert.Equal(t, apperrors.ErrCodeDuplicateEntry, env.Code)
	assert.Equal(t, "Author Frank Herbert already exists.", env.Message)

	env = decode(t, c.do(http.MethodGet, "/api/v1/authors", "", cookie))
	require.Equal(t, 0, env.Code, env.Message)
	assert.Contains(t, string(env.Data), "Herbert")
}

func TestRouter_Metrics(t *testing.T) {
	c := newConsole(t)
	rec := c.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
