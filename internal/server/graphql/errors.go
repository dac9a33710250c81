package graphql

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
)

// Error codes reported in extensions.code.
const (
	CodeDuplicateAccount       = "DUPLICATE_ACCOUNT"
	CodeDuplicateBiometricKey  = "DUPLICATE_BIOMETRIC_KEY"
	CodeBiometricKeyAlreadySet = "BIOMETRIC_KEY_ALREADY_SET"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeInvalidBiometricKey    = "INVALID_BIOMETRIC_KEY"
	CodeUnauthenticated        = "UNAUTHENTICATED"
	CodeNotFound               = "NOT_FOUND"
	CodeBadUserInput           = "BAD_USER_INPUT"
	CodeInternal               = "INTERNAL"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{common.ErrDuplicateAccount, CodeDuplicateAccount},
	{common.ErrDuplicateBiometricKey, CodeDuplicateBiometricKey},
	{common.ErrBiometricKeyAlreadySet, CodeBiometricKeyAlreadySet},
	{common.ErrInvalidCredentials, CodeInvalidCredentials},
	{common.ErrInvalidBiometricKey, CodeInvalidBiometricKey},
	{common.ErrUnauthenticated, CodeUnauthenticated},
	{common.ErrorNotFound, CodeNotFound},
	{common.ErrorValidation, CodeBadUserInput},
}

// Error is the error type returned by resolvers. graphql-go copies
// Extensions into the response error.
type Error struct {
	Code    string
	Message string
	err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// toError maps err to a coded Error. Unrecognized errors are logged and
// reported as INTERNAL without their message.
func toError(ctx context.Context, logger logging.Logger, op string, err error) *Error {
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			return &Error{Code: m.code, Message: message(err, m.err), err: err}
		}
	}

	logger.Error(ctx, "operation failed", "operation", op, "error", err)
	return &Error{Code: CodeInternal, Message: common.ErrorInternal.Error(), err: err}
}

// message hides wrapping context added by inner layers, except for
// validation errors whose detail is meant for the client.
func message(err, sentinel error) string {
	if errors.Is(sentinel, common.ErrorValidation) {
		return err.Error()
	}
	return sentinel.Error()
}
