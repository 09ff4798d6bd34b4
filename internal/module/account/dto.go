package account

import "time"

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	AccountName string `json:"account_name" binding:"required,min=1,max=255"`
}

// CreateAccountResponse is returned after an account is created.
type CreateAccountResponse struct {
	AccountID string `json:"account_id"`
}

// AddMemberRequest adds a registered user by email.
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// ChangeRoleRequest changes or removes a member. Role is member, admin or remove.
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// CreateInviteRequest invites an email address to an account.
type CreateInviteRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

// ResultResponse acknowledges a roster change.
type ResultResponse struct {
	Result    string `json:"result"`
	AccountID string `json:"account_id,omitempty"`
	Role      string `json:"role,omitempty"`
	InviteID  string `json:"invite_id,omitempty"`
}

// MemberResponse is one roster entry.
type MemberResponse struct {
	ID            string     `json:"id"`
	DisplayName   string     `json:"display_name"`
	PhotoURL      string     `json:"photo_url,omitempty"`
	LastLoginTime *time.Time `json:"last_login_time,omitempty"`
	Role          Role       `json:"role"`
}

// ListMembersResponse wraps a roster listing.
type ListMembersResponse struct {
	Members []*MemberResponse `json:"members"`
}

// InviteResponse describes a pending invite to its recipient.
type InviteResponse struct {
	AccountID   string    `json:"account_id"`
	AccountName string    `json:"account_name"`
	Role        Role      `json:"role"`
	ExpiresAt   time.Time `json:"expires_at"`
}

const resultOK = "ok"

// ToResponse converts a Member to MemberResponse.
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:            m.ID,
		DisplayName:   m.DisplayName,
		PhotoURL:      m.PhotoURL,
		LastLoginTime: m.LastLoginTime,
		Role:          m.Role,
	}
}

// ToResponse converts InviteDetails to InviteResponse.
func (d *InviteDetails) ToResponse() *InviteResponse {
	return &InviteResponse{
		AccountID:   d.AccountID,
		AccountName: d.AccountName,
		Role:        d.Role,
		ExpiresAt:   d.ExpiresAt,
	}
}
