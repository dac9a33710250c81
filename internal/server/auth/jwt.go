// Package auth holds the credential primitives of the account server: the
// session token codec and the password hasher.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Subject identifies the account a token was issued to.
type Subject struct {
	AccountID string `json:"accountId"`
}

// Claims is the token payload: {"sub": {"accountId": ...}, "exp": ..., "iat": ...}.
// The object-valued sub does not fit jwt.RegisteredClaims, so Claims
// implements jwt.Claims itself.
type Claims struct {
	Sub       Subject          `json:"sub"`
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c Claims) GetIssuer() (string, error)                   { return "", nil }
func (c Claims) GetSubject() (string, error)                  { return c.Sub.AccountID, nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// TokenCodec mints and verifies HS256 session tokens with a shared secret.
type TokenCodec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewTokenCodec returns a codec signing with secretKey and issuing tokens
// valid for validity.
func NewTokenCodec(secretKey string, validity time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:   []byte(secretKey),
		validity: validity,
		now:      time.Now,
	}
}

// Mint returns a signed token bound to accountID.
func (c *TokenCodec) Mint(accountID string) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Sub:       Subject{AccountID: accountID},
		ExpiresAt: jwt.NewNumericDate(now.Add(c.validity)),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}

	return tokenString, nil
}

// Verify checks signature and expiry and returns the account id the token
// was issued to. Every failure matches common.ErrInvalidToken; expired
// tokens also match common.ErrTokenExpired.
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Sub.AccountID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Sub.AccountID, nil
}
