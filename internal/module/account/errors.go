package account

import "errors"

// Domain errors.
var (
	// Lookups
	ErrAccountNotFound = errors.New("account not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrInviteNotFound  = errors.New("invite not found")

	// Authorization
	ErrPermissionDenied = errors.New("permission denied")

	// Roster
	ErrAlreadyMember    = errors.New("user is already a member")
	ErrInvalidRole      = errors.New("invalid role")
	ErrVersionConflict  = errors.New("account was modified concurrently")
	ErrRosterContention = errors.New("roster update kept conflicting")

	// Invites
	ErrInviteMismatch     = errors.New("invite does not match caller")
	ErrInviteExpired      = errors.New("invite has expired")
	ErrRateLimited        = errors.New("too many invites")
	ErrNotificationFailed = errors.New("invite notification failed")

	// Input
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidAccountName = errors.New("invalid account name")
)
