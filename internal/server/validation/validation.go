// Package validation checks account input before it reaches the services.
package validation

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
)

// Email trims email and checks it is a bare RFC 5322 address.
func Email(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", common.ErrorValidation)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	}

	return email, nil
}

// Password checks password length in bytes.
func Password(password string) error {
	switch {
	case password == "":
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	case len(password) < minPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters long", common.ErrorValidation, minPasswordLength)
	case len(password) > maxPasswordLength:
		return fmt.Errorf("%w: password must be at most %d bytes long", common.ErrorValidation, maxPasswordLength)
	}
	return nil
}

func BiometricKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: biometric key is required", common.ErrorValidation)
	}
	return nil
}
