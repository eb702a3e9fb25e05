package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxUsernameBytes = 64
	// MaxPasswordBytes is the bcrypt input limit; longer inputs are rejected
	// rather than silently truncated.
	MaxPasswordBytes = 72
)

// ValidateUsername enforces the username policy. Usernames are compared
// byte-for-byte, so "Alice" and "alice" are distinct accounts.
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: must not be empty", ErrInvalidUsername)
	case len(username) > MaxUsernameBytes:
		return fmt.Errorf("%w: must be at most %d bytes", ErrInvalidUsername, MaxUsernameBytes)
	case !utf8.ValidString(username):
		return fmt.Errorf("%w: must be valid UTF-8", ErrInvalidUsername)
	case strings.TrimSpace(username) != username:
		return fmt.Errorf("%w: must not start or end with whitespace", ErrInvalidUsername)
	}
	for _, r := range username {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: must not contain control characters", ErrInvalidUsername)
		}
	}
	return nil
}

// ValidatePassword enforces the password policy.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return fmt.Errorf("%w: must not be empty", ErrInvalidPassword)
	case len(password) > MaxPasswordBytes:
		return fmt.Errorf("%w: must be at most %d bytes", ErrInvalidPassword, MaxPasswordBytes)
	}
	return nil
}
