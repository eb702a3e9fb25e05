// Package auth provides the password hashing and bearer token implementations
// used by the account service.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/scoresync/account-service/internal/core/domain"
)

// BcryptHasher implements ports.PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, clamped to bcrypt's valid
// range. A zero cost selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the work factor new hashes are generated with.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash generates a salted bcrypt hash. bcrypt embeds salt and cost in the
// output, so Verify needs nothing else.
func (h *BcryptHasher) Hash(password string) ([]byte, error) {
	if len(password) > domain.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: must be at most %d bytes", domain.ErrInvalidPassword, domain.MaxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Verify compares password against hash in constant time. bcrypt only reads
// the first MaxPasswordBytes of its input, so longer passwords never match.
func (h *BcryptHasher) Verify(password string, hash []byte) bool {
	if len(hash) == 0 || len(password) > domain.MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
