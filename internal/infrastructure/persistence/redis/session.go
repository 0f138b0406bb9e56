package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/libadmin/internal/domain/session"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

// SessionStore implements session.Store.
//
// Keys:
//   - <prefix>session:<id>      hash {token, email, expires_at}, expiring with the session
//   - <prefix>revoked:<sha256>  set on logout until the token would have expired
type SessionStore struct {
	client *redis.Client
	prefix string
}

func NewSessionStore(client *redis.Client, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

var _ session.Store = (*SessionStore)(nil)

func (s *SessionStore) sessionKey(id string) string {
	return s.prefix + "session:" + id
}

// revokedKey hashes the token so raw credentials never become key names.
func (s *SessionStore) revokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + "revoked:" + hex.EncodeToString(sum[:])
}

func (s *SessionStore) Save(ctx context.Context, sess session.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return apperrors.ErrTokenExpired
	}
	key := s.sessionKey(sess.ID)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			"token":      sess.Token,
			"email":      sess.Email,
			"expires_at": sess.ExpiresAt.UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return apperrors.ErrRedisError.WithCause(err)
	}
	return nil
}

// Get returns ErrUnauthorized when the session does not exist or expired.
func (s *SessionStore) Get(ctx context.Context, id string) (session.Session, error) {
	if id == "" {
		return session.Session{}, apperrors.ErrUnauthorized
	}

	fields, err := s.client.HGetAll(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return session.Session{}, apperrors.ErrRedisError.WithCause(err)
	}
	if len(fields) == 0 || fields["token"] == "" {
		return session.Session{}, apperrors.ErrUnauthorized
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, fields["expires_at"])
	if err != nil {
		return session.Session{}, apperrors.ErrInvalidToken.WithCause(err)
	}
	return session.Session{
		ID:        id,
		Token:     fields["token"],
		Email:     fields["email"],
		ExpiresAt: expiresAt,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.sessionKey(id)).Err(); err != nil {
		return apperrors.ErrRedisError.WithCause(err)
	}
	return nil
}

// Revoke blacklists token for ttl. A token already past its expiry needs
// no entry.
func (s *SessionStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.revokedKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.ErrRedisError.WithCause(err)
	}
	return nil
}

func (s *SessionStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.revokedKey(token)).Result()
	if err != nil {
		return false, apperrors.ErrRedisError.WithCause(err)
	}
	return n > 0, nil
}
