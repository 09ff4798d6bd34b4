package account

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamroster/server/internal/shared/events"
)

// Activity actions.
const (
	ActionAccountCreated = "account_created"
	ActionMemberAdded    = "member_added"
	ActionRoleChanged    = "member_role_changed"
	ActionMemberRemoved  = "member_removed"
	ActionInviteCreated  = "invite_created"
	ActionInviteAccepted = "invite_accepted"
)

var actionsByEvent = map[string]string{
	events.AccountCreatedType:    ActionAccountCreated,
	events.MemberAddedType:       ActionMemberAdded,
	events.MemberRoleChangedType: ActionRoleChanged,
	events.MemberRemovedType:     ActionMemberRemoved,
	events.InviteCreatedType:     ActionInviteCreated,
	events.InviteAcceptedType:    ActionInviteAccepted,
}

// ActivityLogger appends an audit record for every membership event and
// bumps the acting user's activity count.
type ActivityLogger struct {
	repo   Repository
	logger *zap.Logger
}

// NewActivityLogger creates the audit event handler.
func NewActivityLogger(repo Repository, logger *zap.Logger) *ActivityLogger {
	return &ActivityLogger{repo: repo, logger: logger}
}

// Handles implements events.Handler.
func (l *ActivityLogger) Handles() []string {
	return events.MembershipEventTypes()
}

// Handle implements events.Handler.
func (l *ActivityLogger) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.MembershipEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	action, ok := actionsByEvent[e.EventType()]
	if !ok {
		return fmt.Errorf("no activity action for %s", e.EventType())
	}

	activity := &Activity{
		ID:        e.EventID().String(),
		UserID:    e.ActorID,
		AccountID: e.AccountID,
		Action:    action,
		Details:   activityDetails(e),
		CreatedAt: e.OccurredAt(),
	}
	if activity.ID == uuid.Nil.String() {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	if err := l.repo.AppendActivity(ctx, activity); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	l.logger.Debug("activity recorded",
		zap.String("account_id", activity.AccountID),
		zap.String("action", action),
	)
	return nil
}

func activityDetails(e *events.MembershipEvent) map[string]any {
	details := map[string]any{}
	if e.SubjectID != "" {
		details["user_id"] = e.SubjectID
	}
	if e.Role != "" {
		details["role"] = e.Role
	}
	if e.InviteID != "" {
		details["invite_id"] = e.InviteID
	}
	if e.Name != "" {
		details["name"] = e.Name
	}
	return details
}
