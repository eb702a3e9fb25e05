// Package memory provides a process-local credential store for development
// and tests. Data does not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scoresync/account-service/internal/core/domain"
)

// AccountStore implements ports.CredentialStore over a mutex-guarded map.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	now      func() time.Time
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]*domain.Account),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AccountStore) Exists(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[username]
	return ok, nil
}

func (s *AccountStore) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(acc), nil
}

func (s *AccountStore) Insert(_ context.Context, account *domain.Account) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.Username]; ok {
		return "", domain.ErrDuplicateUsername
	}

	stored := clone(account)
	stored.ID = uuid.NewString()
	now := s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.accounts[stored.Username] = stored
	return stored.ID, nil
}

func (s *AccountStore) UpdateFields(_ context.Context, username string, update domain.AccountUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	update.Apply(acc, s.now())
	return nil
}

func (s *AccountStore) RenameUsername(_ context.Context, oldUsername, newUsername string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[oldUsername]
	if !ok {
		return domain.ErrUserNotFound
	}
	if _, taken := s.accounts[newUsername]; taken {
		return domain.ErrDuplicateUsername
	}
	delete(s.accounts, oldUsername)
	acc.Username = newUsername
	acc.UpdatedAt = s.now()
	s.accounts[newUsername] = acc
	return nil
}

// Len returns the number of stored accounts.
func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

func clone(a *domain.Account) *domain.Account {
	c := *a
	c.PasswordHash = append([]byte(nil), a.PasswordHash...)
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		c.LastLoginAt = &t
	}
	if a.LastLogoutAt != nil {
		t := *a.LastLogoutAt
		c.LastLogoutAt = &t
	}
	return &c
}
