package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/libadmin/internal/domain/session"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func token(t *testing.T, email string, exp time.Time) string {
	t.Helper()
	claims := gojwt.MapClaims{"email": email}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	s, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("api-secret"))
	require.NoError(t, err)
	return s
}

type fakeGateway struct {
	token string
	err   error
	got   []any
}

func (g *fakeGateway) Login(_ context.Context, in session.Credentials) (string, error) {
	g.got = append(g.got, in)
	return g.token, g.err
}

func (g *fakeGateway) Register(_ context.Context, in session.Registration) (string, error) {
	g.got = append(g.got, in)
	return g.token, g.err
}

type memStore struct {
	mu       sync.Mutex
	sessions map[string]session.Session
	ttls     map[string]time.Duration
	revoked  map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{
		sessions: map[string]session.Session{},
		ttls:     map[string]time.Duration{},
		revoked:  map[string]time.Duration{},
	}
}

func (m *memStore) Save(_ context.Context, s session.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl <= 0 {
		return apperrors.ErrTokenExpired
	}
	m.sessions[s.ID] = s
	m.ttls[s.ID] = ttl
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return session.Session{}, apperrors.ErrUnauthorized
	}
	return s, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl > 0 {
		m.revoked[token] = ttl
	}
	return nil
}

func (m *memStore) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[token]
	return ok, nil
}

func opts() Options {
	return Options{MaxTTL: 8 * time.Hour, Now: func() time.Time { return now }}
}

func TestLogin(t *testing.T) {
	t.Run("opens a session", func(t *testing.T) {
		tok := token(t, "admin@library.test", now.Add(time.Hour))
		store := newMemStore()
		uc := NewLoginUseCase(&fakeGateway{token: tok}, store, opts())

		resp, err := uc.Execute(context.Background(), session.Credentials{Email: " admin@library.test ", Password: "pw"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Session.ID)
		assert.Equal(t, tok, resp.Token)
		assert.Equal(t, "admin@library.test", resp.Session.Email)
		assert.True(t, resp.Session.ExpiresAt.Equal(now.Add(time.Hour)))
		assert.Equal(t, time.Hour, store.ttls[resp.Session.ID])
	})

	t.Run("ttl capped", func(t *testing.T) {
		tok := token(t, "admin@library.test", now.Add(48*time.Hour))
		store := newMemStore()
		resp, err := NewLoginUseCase(&fakeGateway{token: tok}, store, opts()).
			Execute(context.Background(), session.Credentials{Email: "admin@library.test", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, 8*time.Hour, store.ttls[resp.Session.ID])
	})

	t.Run("invalid form never reaches the api", func(t *testing.T) {
		gw := &fakeGateway{}
		_, err := NewLoginUseCase(gw, newMemStore(), opts()).
			Execute(context.Background(), session.Credentials{Email: "not-an-email"})
		assert.True(t, apperrors.IsValidation(err))
		assert.Empty(t, gw.got)
	})

	t.Run("bad credentials", func(t *testing.T) {
		gw := &fakeGateway{err: apperrors.ErrInvalidCredentials}
		_, err := NewLoginUseCase(gw, newMemStore(), opts()).
			Execute(context.Background(), session.Credentials{Email: "a@b.test", Password: "x"})
		assert.Equal(t, apperrors.ErrCodeInvalidCredentials, apperrors.CodeOf(err))
	})

	t.Run("token without expiry is rejected", func(t *testing.T) {
		store := newMemStore()
		_, err := NewLoginUseCase(&fakeGateway{token: token(t, "a@b.test", time.Time{})}, store, opts()).
			Execute(context.Background(), session.Credentials{Email: "a@b.test", Password: "x"})
		assert.Equal(t, apperrors.ErrCodeTokenExpired, apperrors.CodeOf(err))
		assert.Empty(t, store.sessions)
	})
}

func TestRegister(t *testing.T) {
	tok := token(t, "new@library.test", now.Add(time.Hour))
	gw := &fakeGateway{token: tok}
	uc := NewRegisterUseCase(gw, newMemStore(), opts())

	_, err := uc.Execute(context.Background(), session.Registration{Email: "new@library.test", Password: "123", FullName: "New"})
	assert.True(t, apperrors.IsValidation(err))

	resp, err := uc.Execute(context.Background(), session.Registration{Email: "new@library.test", Password: "123456", FullName: "  New User "})
	require.NoError(t, err)
	assert.Equal(t, "new@library.test", resp.Session.Email)
	require.Len(t, gw.got, 1)
	assert.Equal(t, "New User", gw.got[0].(session.Registration).FullName)
}

func TestResolveAndLogout(t *testing.T) {
	store := newMemStore()
	tok := token(t, "admin@library.test", now.Add(time.Hour))
	resp, err := NewLoginUseCase(&fakeGateway{token: tok}, store, opts()).
		Execute(context.Background(), session.Credentials{Email: "admin@library.test", Password: "pw"})
	require.NoError(t, err)
	id := resp.Session.ID

	resolve := NewResolveUseCase(store, opts())
	sess, err := resolve.Execute(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, tok, sess.Token)

	logout := NewLogoutUseCase(store, opts())
	require.NoError(t, logout.Execute(context.Background(), id))
	assert.Equal(t, time.Hour, store.revoked[tok])

	_, err = resolve.Execute(context.Background(), id)
	assert.True(t, apperrors.IsUnauthorized(err))

	// logging out twice is fine
	require.NoError(t, logout.Execute(context.Background(), id))
}

func TestResolve_ExpiredToken(t *testing.T) {
	store := newMemStore()
	tok := token(t, "admin@library.test", now.Add(time.Minute))
	require.NoError(t, store.Save(context.Background(), session.Session{ID: "s1", Token: tok}, time.Hour))

	later := opts()
	later.Now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := NewResolveUseCase(store, later).Execute(context.Background(), "s1")
	assert.Equal(t, apperrors.ErrCodeTokenExpired, apperrors.CodeOf(err))
	assert.NotContains(t, store.sessions, "s1")
}

func TestResolve_RevokedToken(t *testing.T) {
	store := newMemStore()
	tok := token(t, "admin@library.test", now.Add(time.Hour))
	require.NoError(t, store.Save(context.Background(), session.Session{ID: "s1", Token: tok}, time.Hour))
	require.NoError(t, store.Revoke(context.Background(), tok, time.Hour))

	_, err := NewResolveUseCase(store, opts()).Execute(context.Background(), "s1")
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
	assert.NotContains(t, store.sessions, "s1")
}
