// Package jwt reads the bearer tokens issued by the library API.
//
// The console never holds the API's signing key, so tokens are decoded
// without signature verification. The only decisions made from them are
// display data (email, name) and whether the session is still usable.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

// emailClaimURI is the claim name ASP.NET identity uses for the email address.
const emailClaimURI = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"

// Claims are the fields of interest in an API token.
type Claims struct {
	Email    string `json:"email,omitempty"`
	EmailURI string `json:"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress,omitempty"`
	Name     string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Address returns whichever email claim the token carries.
func (c *Claims) Address() string {
	if c.Email != "" {
		return c.Email
	}
	return c.EmailURI
}

// Decode parses a token without verifying its signature.
func Decode(token string) (*Claims, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, apperrors.ErrInvalidToken.WithCause(err)
	}
	return claims, nil
}

// ExpiresAt returns the exp claim of token.
func ExpiresAt(token string) (time.Time, error) {
	claims, err := Decode(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, apperrors.ErrInvalidToken.WithMessage("token has no expiry")
	}
	return claims.ExpiresAt.Time, nil
}

// IsExpired reports whether token must be treated as absent at now.
// Undecodable tokens and tokens without an exp claim count as expired.
func IsExpired(token string, now time.Time) bool {
	exp, err := ExpiresAt(token)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}

// Validate returns the claims of a usable token, ErrTokenExpired for an
// expired one and ErrInvalidToken for garbage.
func Validate(token string, now time.Time) (*Claims, error) {
	claims, err := Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return nil, apperrors.ErrTokenExpired
	}
	return claims, nil
}
