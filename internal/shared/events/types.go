package events

import "time"

// Membership event types.
const (
	AccountCreatedType    = "AccountCreated"
	MemberAddedType       = "MemberAdded"
	MemberRoleChangedType = "MemberRoleChanged"
	MemberRemovedType     = "MemberRemoved"
	InviteCreatedType     = "InviteCreated"
	InviteAcceptedType    = "InviteAccepted"
)

const accountAggregate = "Account"

// MembershipEvent is emitted for every account lifecycle change.
// ActorID is the user who caused it; SubjectID the user it affected, if any.
type MembershipEvent struct {
	BaseEvent

	AccountID string `json:"account_id"`
	ActorID   string `json:"actor_id"`
	SubjectID string `json:"subject_id,omitempty"`
	Role      string `json:"role,omitempty"`
	InviteID  string `json:"invite_id,omitempty"`
	Name      string `json:"name,omitempty"`
}

// NewMembershipEvent creates a MembershipEvent of the given type.
func NewMembershipEvent(eventType, accountID, actorID string, at time.Time) *MembershipEvent {
	return &MembershipEvent{
		BaseEvent: NewBaseEvent(eventType, accountID, accountAggregate, at),
		AccountID: accountID,
		ActorID:   actorID,
	}
}

// MembershipEventTypes lists every membership event type.
func MembershipEventTypes() []string {
	return []string{
		AccountCreatedType,
		MemberAddedType,
		MemberRoleChangedType,
		MemberRemovedType,
		InviteCreatedType,
		InviteAcceptedType,
	}
}
