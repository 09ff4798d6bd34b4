package account

// IsAdmin reports whether identity administers the account.
func IsAdmin(a *Account, identity string) bool {
	return a != nil && identity != "" && a.HasAdmin(identity)
}

// IsMember reports whether identity is on the account's roster.
func IsMember(a *Account, identity string) bool {
	return a != nil && identity != "" && a.HasMember(identity)
}

func requireAdmin(a *Account, identity string) error {
	if !IsAdmin(a, identity) {
		return ErrPermissionDenied
	}
	return nil
}
