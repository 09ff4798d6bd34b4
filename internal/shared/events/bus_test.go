package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBus_Publish(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var got []string
	bus.Register(NewHandlerFunc([]string{MemberAddedType}, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.AggregateID())
		return errors.New("boom")
	}))
	bus.Register(NewHandlerFunc([]string{MemberAddedType, MemberRemovedType}, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.EventType())
		return nil
	}))

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	bus.Publish(context.Background(), NewMembershipEvent(MemberAddedType, "acc-1", "u1", now))
	bus.Publish(context.Background(), NewMembershipEvent(MemberRemovedType, "acc-1", "u1", now))
	bus.Publish(context.Background(), NewMembershipEvent(InviteCreatedType, "acc-1", "u1", now))

	assert.Equal(t, []string{"first:acc-1", "second:MemberAdded", "second:MemberRemoved"}, got)
}

func TestNewMembershipEvent(t *testing.T) {
	now := time.Now()
	e := NewMembershipEvent(AccountCreatedType, "acc-9", "owner", now)

	assert.Equal(t, AccountCreatedType, e.EventType())
	assert.Equal(t, "acc-9", e.AggregateID())
	assert.Equal(t, "Account", e.AggregateType())
	assert.Equal(t, now, e.OccurredAt())
	assert.NotEqual(t, e.EventID(), NewMembershipEvent(AccountCreatedType, "acc-9", "owner", now).EventID())
	assert.Len(t, MembershipEventTypes(), 6)
}
