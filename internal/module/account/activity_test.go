package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teamroster/server/internal/shared/events"
)

func TestActivityLogger_RecordsMembershipEvents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.bus.Register(NewActivityLogger(env.repo, nopLogger()))
	env.notifier.On("SendInvite", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	acc, owner := env.seedAccount(t)
	invitee := env.seedUser(t, "u-new", "new@example.com", "Nina New")

	inviteID, err := env.invites.CreateInvite(ctx, acc.ID, owner, invitee.Email, RoleMember)
	require.NoError(t, err)
	_, err = env.invites.AcceptInvite(ctx, inviteID, invitee)
	require.NoError(t, err)
	require.NoError(t, env.members.ChangeRole(ctx, acc.ID, owner.ID, invitee.ID, ChangeToAdmin))
	require.NoError(t, env.members.ChangeRole(ctx, acc.ID, owner.ID, invitee.ID, ChangeRemove))

	var actions []string
	for _, a := range env.repo.Activities() {
		assert.Equal(t, acc.ID, a.AccountID)
		actions = append(actions, a.Action)
	}
	assert.Equal(t, []string{
		ActionAccountCreated,
		ActionInviteCreated,
		ActionMemberAdded,
		ActionInviteAccepted,
		ActionRoleChanged,
		ActionMemberRemoved,
	}, actions)

	activities := env.repo.Activities()
	assert.Equal(t, "Acme", activities[0].Details["name"])
	assert.Equal(t, inviteID, activities[1].Details["invite_id"])
	assert.Equal(t, invitee.ID, activities[2].UserID)
	assert.Equal(t, invitee.ID, activities[4].Details["user_id"])

	ownerUser, err := env.repo.GetUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), ownerUser.ActivityCount)

	inviteeUser, err := env.repo.GetUser(ctx, invitee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inviteeUser.ActivityCount)
}

type otherEvent struct {
	events.BaseEvent
}

func TestActivityLogger_RejectsForeignPayload(t *testing.T) {
	l := NewActivityLogger(NewMemoryRepository(), nopLogger())
	err := l.Handle(context.Background(), &otherEvent{BaseEvent: events.NewBaseEvent(events.MemberAddedType, "acc", "Account", baseTime)})
	assert.Error(t, err)
}

func TestActivityLogger_Handles(t *testing.T) {
	l := NewActivityLogger(NewMemoryRepository(), nopLogger())
	assert.ElementsMatch(t, events.MembershipEventTypes(), l.Handles())
}
