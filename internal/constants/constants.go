package constants

import "time"

// Session
const (
	SessionCookieName = "task_session"
	ContextKeyUserID  = "user_id"
)

// Auth
const (
	MinPasswordLength = 8
	MaxUsernameLength = 32
)

// AnonymousOwnerID is the owner reference stored on tasks created without
// an active session.
const AnonymousOwnerID int64 = -1

// GuestUsername is the display name used when an owner reference cannot be
// resolved to a user.
const GuestUsername = "guest"

// DefaultCreateDelay is the artificial latency applied to task creation so
// the pending state is observable. Not load-bearing for correctness.
const DefaultCreateDelay = 1250 * time.Millisecond
