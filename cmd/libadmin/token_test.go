package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims gojwt.MapClaims) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func runToken(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newTokenCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCmd(t *testing.T) {
	valid := sign(t, gojwt.MapClaims{"email": "ada@example.com", "exp": time.Now().Add(time.Hour).Unix()})
	expired := sign(t, gojwt.MapClaims{"email": "ada@example.com", "exp": time.Now().Add(-time.Minute).Unix()})

	t.Run("valid", func(t *testing.T) {
		out, err := runToken(t, "", valid)
		require.NoError(t, err)
		assert.Contains(t, out, "email:   ada@example.com")
		assert.Contains(t, out, "status:  valid for")
	})

	t.Run("expired from stdin with bearer prefix", func(t *testing.T) {
		out, err := runToken(t, "Bearer "+expired+"\n")
		require.NoError(t, err)
		assert.Contains(t, out, "status:  expired")
	})

	t.Run("no expiry", func(t *testing.T) {
		out, err := runToken(t, "", sign(t, gojwt.MapClaims{"name": "Ada"}))
		require.NoError(t, err)
		assert.Contains(t, out, "name:    Ada")
		assert.Contains(t, out, "treated as expired")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := runToken(t, "", "not-a-token")
		assert.Error(t, err)
	})

	t.Run("nothing given", func(t *testing.T) {
		_, err := runToken(t, "")
		assert.Error(t, err)
	})
}
