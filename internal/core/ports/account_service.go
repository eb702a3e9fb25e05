package ports

import "context"

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Username    string
	Password    string
	SyncEnabled bool
}

// RegisterResult is returned after a successful registration.
type RegisterResult struct {
	ID string
}

// LoginInput carries credentials plus the client's sync preference.
type LoginInput struct {
	Username string
	Password string
	// SyncEnabled, when non-nil, overwrites the stored preference on success.
	SyncEnabled *bool
}

// LoginResult holds the issued bearer token.
type LoginResult struct {
	Token string
}

// EditUserInfoInput carries the optional profile changes. Nil fields are
// not changed.
type EditUserInfoInput struct {
	NewUsername *string
	NewPassword *string
}

// EditUserInfoResult reports the effective username after the edit. Token is
// set only when the username changed.
type EditUserInfoResult struct {
	Username string
	Token    string
}

// AccountService defines the account lifecycle use cases.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, username, newPassword string) error
	ToggleSync(ctx context.Context, token string, syncEnabled bool) error
	EditUserInfo(ctx context.Context, token string, input EditUserInfoInput) (*EditUserInfoResult, error)
}
