package ports

import "github.com/scoresync/account-service/internal/core/domain"

// PasswordHasher performs one-way salted password hashing.
type PasswordHasher interface {
	// Hash returns a self-describing hash with a fresh random salt.
	Hash(password string) ([]byte, error)
	// Verify reports whether password matches hash. Malformed hashes yield false.
	Verify(password string, hash []byte) bool
}

// TokenCodec issues and decodes stateless bearer tokens.
type TokenCodec interface {
	Issue(username string) (string, error)
	// Decode validates the signature and expiry of token without consulting
	// any store. Errors are one of the domain token errors.
	Decode(token string) (*domain.Claims, error)
}
