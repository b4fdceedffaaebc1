package auth

import "errors"

// Validation and authorization failures. Validation errors are collapsed to a
// single unauthorized signal at the HTTP edge; the precise reason only goes
// to the audit log.
var (
	ErrInvalidFormat   = errors.New("missing or malformed credential")
	ErrNotFound        = errors.New("credential not found")
	ErrExpired         = errors.New("credential expired")
	ErrRevoked         = errors.New("credential revoked")
	ErrMachineMismatch = errors.New("machine binding mismatch")

	ErrInsufficientAuthLevel  = errors.New("insufficient auth level")
	ErrInsufficientRole       = errors.New("insufficient role")
	ErrInsufficientPermission = errors.New("insufficient permission")

	ErrPersistence = errors.New("persistence failure")
)

// IsUnauthorized reports whether err means the caller is not authenticated.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrRevoked) ||
		errors.Is(err, ErrMachineMismatch)
}

// IsForbidden reports whether err means the caller is authenticated but not
// allowed.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrInsufficientAuthLevel) ||
		errors.Is(err, ErrInsufficientRole) ||
		errors.Is(err, ErrInsufficientPermission)
}
