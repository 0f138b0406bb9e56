// Package session models a signed-in console user. The session is handed
// explicitly to everything that talks to the library API; nothing reads the
// credential from global state.
package session

import (
	"context"
	"time"
)

// Session binds a console cookie to the API bearer token it was issued.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the token is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TTL is the time left before expiry.
func (s Session) TTL(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up form.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"notblank,max=100"`
}

// Gateway exchanges credentials for a bearer token.
type Gateway interface {
	Login(ctx context.Context, in Credentials) (string, error)
	Register(ctx context.Context, in Registration) (string, error)
}

// Store persists sessions between console requests.
type Store interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
