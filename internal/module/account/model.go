package account

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// Account is a tenant whose roster lists who may use it.
// Admins is always a subset of Access; the counts mirror their lengths.
type Account struct {
	ID           string                      `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name         string                      `gorm:"type:varchar(255);not null" json:"name"`
	Owner        string                      `gorm:"type:varchar(128);not null;index" json:"owner"`
	Access       datatypes.JSONSlice[string] `gorm:"not null" json:"access"`
	Admins       datatypes.JSONSlice[string] `gorm:"not null" json:"admins"`
	AccessCount  int                         `gorm:"not null;default:0" json:"access_count"`
	AdminCount   int                         `gorm:"not null;default:0" json:"admin_count"`
	Version      int64                       `gorm:"not null;default:0" json:"-"`
	CreationTime time.Time                   `gorm:"not null" json:"creation_time"`
}

// TableName returns the table name for Account.
func (Account) TableName() string {
	return "accounts"
}

// HasMember reports whether userID is on the roster.
func (a *Account) HasMember(userID string) bool {
	return slices.Contains(a.Access, userID)
}

// HasAdmin reports whether userID holds admin standing.
func (a *Account) HasAdmin(userID string) bool {
	return slices.Contains(a.Admins, userID)
}

// RoleOf returns the role userID holds. ok is false for non-members.
func (a *Account) RoleOf(userID string) (role Role, ok bool) {
	switch {
	case a.HasAdmin(userID):
		return RoleAdmin, true
	case a.HasMember(userID):
		return RoleMember, true
	default:
		return "", false
	}
}

// addMember appends userID to the roster. The caller checks membership first.
func (a *Account) addMember(userID string, asAdmin bool) {
	a.Access = append(a.Access, userID)
	if asAdmin {
		a.Admins = append(a.Admins, userID)
	}
	a.recount()
}

// applyRoleChange moves an existing member to the requested standing.
// It reports whether the roster changed.
func (a *Account) applyRoleChange(userID string, change RoleChange) bool {
	var changed bool
	switch change {
	case ChangeToMember:
		changed = a.dropAdmin(userID)
	case ChangeToAdmin:
		if !a.HasAdmin(userID) {
			a.Admins = append(a.Admins, userID)
			changed = true
		}
	case ChangeRemove:
		changed = a.dropAdmin(userID)
		if i := slices.Index(a.Access, userID); i >= 0 {
			a.Access = slices.Delete(a.Access, i, i+1)
			changed = true
		}
	}
	a.recount()
	return changed
}

func (a *Account) dropAdmin(userID string) bool {
	i := slices.Index(a.Admins, userID)
	if i < 0 {
		return false
	}
	a.Admins = slices.Delete(a.Admins, i, i+1)
	return true
}

func (a *Account) recount() {
	a.AccessCount = len(a.Access)
	a.AdminCount = len(a.Admins)
}

// clone returns a deep copy so callers never share roster slices.
func (a *Account) clone() *Account {
	c := *a
	c.Access = slices.Clone(a.Access)
	c.Admins = slices.Clone(a.Admins)
	return &c
}

// Invite grants a role on an account to whoever proves the invited email.
// Only the salted digest of that email is stored.
type Invite struct {
	ID          string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	HashedEmail string    `gorm:"type:char(64);not null;index" json:"-"`
	Owner       string    `gorm:"type:varchar(128);not null" json:"owner"`
	Account     string    `gorm:"type:varchar(64);not null;index" json:"account"`
	Role        Role      `gorm:"type:varchar(16);not null" json:"role"`
	Time        time.Time `gorm:"not null" json:"time"`
}

// TableName returns the table name for Invite.
func (Invite) TableName() string {
	return "invites"
}

// expired reports whether the invite is past its acceptance window at now.
func (i *Invite) expired(now time.Time, window time.Duration) bool {
	return now.Sub(i.Time) > window
}

// User mirrors the identity provider's profile for a user.
type User struct {
	ID            string     `gorm:"type:varchar(128);primaryKey" json:"id"`
	Email         string     `gorm:"type:varchar(255);index" json:"email"`
	DisplayName   string     `gorm:"type:varchar(255)" json:"display_name"`
	PhotoURL      string     `gorm:"type:text" json:"photo_url"`
	LastLoginTime *time.Time `json:"last_login_time"`
	ActivityCount int64      `gorm:"not null;default:0" json:"activity_count"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// Activity is one audit record of an account lifecycle event.
type Activity struct {
	ID        string            `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserID    string            `gorm:"type:varchar(128);not null;index" json:"user_id"`
	AccountID string            `gorm:"type:varchar(64);not null;index" json:"account_id"`
	Action    string            `gorm:"type:varchar(64);not null" json:"action"`
	Details   datatypes.JSONMap `json:"details"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
}

// TableName returns the table name for Activity.
func (Activity) TableName() string {
	return "activities"
}

// Models lists every persisted type, for migrations.
func Models() []any {
	return []any{&Account{}, &Invite{}, &User{}, &Activity{}}
}

// Member is one roster entry as shown to admins.
type Member struct {
	ID            string     `json:"id"`
	DisplayName   string     `json:"display_name"`
	PhotoURL      string     `json:"photo_url,omitempty"`
	LastLoginTime *time.Time `json:"last_login_time,omitempty"`
	Role          Role       `json:"role"`
}

// InviteDetails is what an invitee may learn about a pending invite.
type InviteDetails struct {
	AccountID   string    `json:"account_id"`
	AccountName string    `json:"account_name"`
	Role        Role      `json:"role"`
	ExpiresAt   time.Time `json:"expires_at"`
}
