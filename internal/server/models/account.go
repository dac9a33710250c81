// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is a registered user. Email is unique; BiometricKey is nil until
// registered and unique when set.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	BiometricKey *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasBiometricKey reports whether a biometric key is registered.
func (a *Account) HasBiometricKey() bool {
	return a.BiometricKey != nil && *a.BiometricKey != ""
}

// Clone returns a deep copy, so callers cannot alias stored records.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.BiometricKey != nil {
		k := *a.BiometricKey
		c.BiometricKey = &k
	}
	return &c
}
