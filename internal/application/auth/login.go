// Package auth signs console users in and out and resolves the session of
// each request.
//
// The library API issues the bearer token; the console never verifies its
// signature. It stores the token in a server-side session referenced by a
// cookie and treats the token as absent once its exp claim has passed.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/libadmin/internal/domain/session"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/jwt"
	"github.com/xiebiao/libadmin/pkg/validator"
)

// Options shared by the use cases.
type Options struct {
	// MaxTTL caps the lifetime of a stored session. Zero means the token's
	// own expiry.
	MaxTTL time.Duration
	Now    func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// LoginUseCase exchanges credentials for a console session.
type LoginUseCase struct {
	gateway session.Gateway
	store   session.Store
	opts    Options
}

func NewLoginUseCase(gateway session.Gateway, store session.Store, opts Options) *LoginUseCase {
	return &LoginUseCase{gateway: gateway, store: store, opts: opts}
}

// Execute logs in. A 401 from the API comes back as invalid credentials.
func (uc *LoginUseCase) Execute(ctx context.Context, req session.Credentials) (*LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	token, err := uc.gateway.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return open(ctx, uc.store, uc.opts, token, req.Email)
}

// LoginResponse is the session that was opened.
type LoginResponse struct {
	Session session.Session `json:"session"`
	// Token is returned only to the command line, never to browsers.
	Token string `json:"-"`
}

// open stores a new session for token.
func open(ctx context.Context, store session.Store, opts Options, token, email string) (*LoginResponse, error) {
	now := opts.now()
	claims, err := jwt.Validate(token, now)
	if err != nil {
		return nil, err
	}
	if addr := claims.Address(); addr != "" {
		email = addr
	}

	sess := session.Session{
		ID:        uuid.NewString(),
		Token:     token,
		Email:     email,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	ttl := sess.TTL(now)
	if opts.MaxTTL > 0 && opts.MaxTTL < ttl {
		ttl = opts.MaxTTL
	}
	if err := store.Save(ctx, sess, ttl); err != nil {
		return nil, err
	}
	return &LoginResponse{Session: sess, Token: token}, nil
}

// LogoutUseCase ends a session and revokes its token until it expires.
type LogoutUseCase struct {
	store session.Store
	opts  Options
}

func NewLogoutUseCase(store session.Store, opts Options) *LogoutUseCase {
	return &LogoutUseCase{store: store, opts: opts}
}

// Execute is idempotent: logging out an unknown session succeeds.
func (uc *LogoutUseCase) Execute(ctx context.Context, sessionID string) error {
	sess, err := uc.store.Get(ctx, sessionID)
	if apperrors.IsUnauthorized(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := uc.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	return uc.store.Revoke(ctx, sess.Token, sess.TTL(uc.opts.now()))
}
