package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

func sign(t *testing.T, claims gojwt.Claims) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("api-secret"))
	require.NoError(t, err)
	return token
}

func TestDecode(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := sign(t, gojwt.MapClaims{
		emailClaimURI: "admin@library.test",
		"exp":         exp.Unix(),
	})

	claims, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@library.test", claims.Address())
	assert.True(t, claims.ExpiresAt.Time.Equal(exp))
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("future exp", func(t *testing.T) {
		token := sign(t, gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(now.Add(time.Hour))})
		assert.False(t, IsExpired(token, now))
	})

	t.Run("past exp", func(t *testing.T) {
		token := sign(t, gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(now.Add(-time.Minute))})
		assert.True(t, IsExpired(token, now))
	})

	t.Run("exp equal to now", func(t *testing.T) {
		token := sign(t, gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(now)})
		assert.True(t, IsExpired(token, now))
	})

	t.Run("no exp claim", func(t *testing.T) {
		token := sign(t, gojwt.RegisteredClaims{Subject: "7"})
		assert.True(t, IsExpired(token, now))
	})

	t.Run("garbage", func(t *testing.T) {
		assert.True(t, IsExpired("not-a-token", now))
		assert.True(t, IsExpired("", now))
	})
}

func TestValidate(t *testing.T) {
	now := time.Now()

	expired := sign(t, gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(now.Add(-time.Hour))})
	_, err := Validate(expired, now)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	_, err = Validate("a.b", now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	valid := sign(t, gojwt.MapClaims{"email": "x@y.z", "exp": now.Add(time.Hour).Unix()})
	claims, err := Validate(valid, now)
	require.NoError(t, err)
	assert.Equal(t, "x@y.z", claims.Address())
}
