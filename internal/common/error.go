// Package common defines shared constants and sentinel errors used across
// the server layers of gophaccounts. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Account uniqueness errors.
	ErrDuplicateAccount       = errors.New("email already exists")
	ErrDuplicateBiometricKey  = errors.New("biometric key is already registered")
	ErrBiometricKeyAlreadySet = errors.New("account already has a biometric key")

	// Login errors. Unknown email and wrong password share one error.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidBiometricKey = errors.New("invalid biometric key")

	// Access errors.
	ErrUnauthenticated = errors.New("unauthenticated")

	// Token errors (malformed, tampered or expired).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
