package domain

import "time"

// Account models a registered user and the preferences stored with it.
type Account struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash []byte     `json:"-"`
	SyncEnabled  bool       `json:"sync_enabled"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	LastLogoutAt *time.Time `json:"last_logout_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AccountUpdate is a partial set of field assignments applied to a single
// account document in one atomic write. Nil fields are left untouched.
type AccountUpdate struct {
	PasswordHash []byte
	SyncEnabled  *bool
	LastLoginAt  *time.Time
	LastLogoutAt *time.Time
}

// IsEmpty reports whether the update assigns no field at all.
func (u AccountUpdate) IsEmpty() bool {
	return u.PasswordHash == nil && u.SyncEnabled == nil && u.LastLoginAt == nil && u.LastLogoutAt == nil
}

// Apply copies the assigned fields onto a and bumps UpdatedAt.
func (u AccountUpdate) Apply(a *Account, now time.Time) {
	if u.PasswordHash != nil {
		a.PasswordHash = append([]byte(nil), u.PasswordHash...)
	}
	if u.SyncEnabled != nil {
		a.SyncEnabled = *u.SyncEnabled
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		a.LastLoginAt = &t
	}
	if u.LastLogoutAt != nil {
		t := *u.LastLogoutAt
		a.LastLogoutAt = &t
	}
	a.UpdatedAt = now
}

// Claims is the identity carried by a bearer token.
type Claims struct {
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
