package ports

import (
	"context"

	"github.com/scoresync/account-service/internal/core/domain"
)

// CredentialStore defines persistence for accounts keyed by username.
//
// Implementations must make Insert and RenameUsername atomic check-and-act
// operations: two concurrent calls claiming the same username must never both
// succeed. Infrastructure failures are returned wrapped with
// domain.ErrStoreUnavailable.
type CredentialStore interface {
	Exists(ctx context.Context, username string) (bool, error)
	// FindByUsername returns domain.ErrUserNotFound when no account matches.
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	// Insert stores a new account and returns its store-assigned id, or
	// domain.ErrDuplicateUsername when the username is taken.
	Insert(ctx context.Context, account *domain.Account) (string, error)
	// UpdateFields applies all assignments of update in a single write, or
	// returns domain.ErrUserNotFound.
	UpdateFields(ctx context.Context, username string, update domain.AccountUpdate) error
	// RenameUsername returns domain.ErrUserNotFound when oldUsername is absent
	// and domain.ErrDuplicateUsername when newUsername is taken.
	RenameUsername(ctx context.Context, oldUsername, newUsername string) error
}
