package account

import "strings"

// Role is a member's standing on an account.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// roleUserAlias is the legacy token for a plain member.
const roleUserAlias = "user"

// ParseRole parses a role token. "user" is accepted as member.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleMember), roleUserAlias:
		return RoleMember, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleAdmin
}

// RoleChange is a requested transition for an existing member.
type RoleChange string

const (
	ChangeToMember RoleChange = "member"
	ChangeToAdmin  RoleChange = "admin"
	ChangeRemove   RoleChange = "remove"
)

// ParseRoleChange parses a role change token. "user" is accepted as member.
func ParseRoleChange(s string) (RoleChange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ChangeToMember), roleUserAlias:
		return ChangeToMember, nil
	case string(ChangeToAdmin):
		return ChangeToAdmin, nil
	case string(ChangeRemove):
		return ChangeRemove, nil
	default:
		return "", ErrInvalidRole
	}
}

// IsValid reports whether c is a known change.
func (c RoleChange) IsValid() bool {
	switch c {
	case ChangeToMember, ChangeToAdmin, ChangeRemove:
		return true
	}
	return false
}
