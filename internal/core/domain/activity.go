package domain

import "time"

// ActivityKind names an account lifecycle event.
type ActivityKind string

const (
	ActivityRegistered      ActivityKind = "registered"
	ActivityLogin           ActivityKind = "login"
	ActivityLoginFailed     ActivityKind = "login_failed"
	ActivityLogout          ActivityKind = "logout"
	ActivityPasswordReset   ActivityKind = "password_reset"
	ActivitySyncToggled     ActivityKind = "sync_toggled"
	ActivityRenamed         ActivityKind = "renamed"
	ActivityPasswordChanged ActivityKind = "password_changed"
)

// ActivityEvent is a single entry of the account audit trail. It never
// carries secret material.
type ActivityEvent struct {
	Username string
	Kind     ActivityKind
	At       time.Time
	// Detail is a short free-form note, e.g. the previous username on rename.
	Detail string
}
