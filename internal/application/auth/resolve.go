package auth

import (
	"context"

	"github.com/xiebiao/libadmin/internal/domain/session"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/jwt"
)

// ResolveUseCase finds the session behind a request.
type ResolveUseCase struct {
	store session.Store
	opts  Options
}

func NewResolveUseCase(store session.Store, opts Options) *ResolveUseCase {
	return &ResolveUseCase{store: store, opts: opts}
}

// Execute returns the live session. A session whose token has expired is
// deleted and reported as ErrTokenExpired; unknown or revoked sessions are
// ErrUnauthorized.
func (uc *ResolveUseCase) Execute(ctx context.Context, sessionID string) (session.Session, error) {
	sess, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return session.Session{}, err
	}

	if jwt.IsExpired(sess.Token, uc.opts.now()) {
		if err := uc.store.Delete(ctx, sessionID); err != nil {
			return session.Session{}, err
		}
		return session.Session{}, apperrors.ErrTokenExpired
	}

	revoked, err := uc.store.IsRevoked(ctx, sess.Token)
	if err != nil {
		return session.Session{}, err
	}
	if revoked {
		_ = uc.store.Delete(ctx, sessionID)
		return session.Session{}, apperrors.ErrUnauthorized
	}
	return sess, nil
}

// Expire ends a session the library API no longer accepts.
func (uc *ResolveUseCase) Expire(ctx context.Context, sessionID string) error {
	return uc.store.Delete(ctx, sessionID)
}
