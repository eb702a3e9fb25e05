package domain

import "errors"

// Account errors.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
)

// Token errors. All of them are reported to clients as 401.
var (
	ErrMissingToken         = errors.New("missing token")
	ErrTokenMalformed       = errors.New("token malformed")
	ErrTokenBadSignature    = errors.New("token signature invalid")
	ErrTokenExpired         = errors.New("token expired")
	ErrMissingUsernameClaim = errors.New("token missing username claim")
)

// ErrStoreUnavailable wraps every infrastructure failure of a credential store.
var ErrStoreUnavailable = errors.New("store unavailable")

// IsTokenError reports whether err is one of the token errors.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenBadSignature) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrMissingUsernameClaim)
}

// TokenErrorReason returns a short stable label for a token error, or "" when
// err is not one.
func TokenErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "missing"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrMissingUsernameClaim):
		return "missing_claim"
	}
	return ""
}
