package services

import (
	"github.com/samber/oops"
)

// Error codes carried by service errors. The HTTP layer maps them to status
// codes; anything without a known code is an internal error.
const (
	CodeValidation          = "VALIDATION"
	CodeDuplicateEmail      = "DUPLICATE_EMAIL"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeOTPNotFound         = "OTP_NOT_FOUND"
	CodeOTPExpired          = "OTP_EXPIRED"
	CodeOTPMismatch         = "OTP_MISMATCH"
	CodeOTPAttemptsExceeded = "OTP_ATTEMPTS_EXCEEDED"
	CodeDeliveryFailed      = "DELIVERY_FAILED"
	CodeInternal            = "INTERNAL"
)

// ErrorCode returns the oops code attached to err, or "" when there is none.
func ErrorCode(err error) string {
	o, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := o.Code().(string)
	return code
}

func validationError(format string, args ...any) error {
	return oops.Code(CodeValidation).Errorf(format, args...)
}

func notFound(what string) error {
	return oops.Code(CodeNotFound).With("resource", what).Errorf("%s not found", what)
}

func forbidden(msg string) error {
	return oops.Code(CodeForbidden).Errorf("%s", msg)
}

func internal(op string, err error) error {
	return oops.Code(CodeInternal).With("operation", op).Wrap(err)
}

func unauthorized() error {
	return oops.Code(CodeUnauthorized).Errorf("authentication required")
}
