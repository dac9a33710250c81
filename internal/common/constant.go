// Package common contains shared constants and sentinel errors used across
// gophaccounts components.
package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the session token.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme prefixes the token inside the Authorization header.
	BearerScheme = "Bearer"
)
