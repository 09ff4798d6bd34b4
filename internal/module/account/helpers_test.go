package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teamroster/server/internal/module/identity"
	"github.com/teamroster/server/internal/shared/events"
)

const testSalt = "pepper"

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendInvite(ctx context.Context, email, senderName, inviteID string) error {
	args := m.Called(ctx, email, senderName, inviteID)
	return args.Error(0)
}

// testEnv wires both services to an in-memory repository and a settable clock.
type testEnv struct {
	repo     *MemoryRepository
	bus      *events.Bus
	cfg      *Config
	notifier *mockNotifier
	members  *MembershipService
	invites  *InviteService
	now      time.Time
}

func newTestEnv(t *testing.T, tweak ...func(*Config)) *testEnv {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Salt = testSalt
	cfg.RetryBackoff = 0
	cfg.InviteRateLimit = 0
	for _, f := range tweak {
		f(cfg)
	}
	require.NoError(t, cfg.Validate())

	env := &testEnv{
		repo:     NewMemoryRepository(),
		bus:      events.NewBus(zap.NewNop()),
		cfg:      cfg,
		notifier: &mockNotifier{},
		now:      baseTime,
	}
	clock := WithClock(func() time.Time { return env.now })
	logger := zap.NewNop()

	env.members = NewMembershipService(env.repo, env.bus, cfg, logger, clock, WithEmailValidator(NewSyntaxValidator(false)))
	env.invites = NewInviteService(InviteDeps{
		Repo:      env.repo,
		Members:   env.members,
		Hasher:    NewHasher(cfg.Salt),
		Notifier:  env.notifier,
		Limiter:   NewInviteLimiter(nil, cfg.InviteRateLimit, cfg.InviteRateWindow, func() time.Time { return env.now }),
		Publisher: env.bus,
	}, cfg, logger, clock)
	return env
}

// seedUser mirrors a profile as if the user had signed in.
func (e *testEnv) seedUser(t *testing.T, id, email, name string) identity.Caller {
	t.Helper()
	require.NoError(t, e.repo.RecordLogin(context.Background(), identity.Profile{
		UserID:      id,
		Email:       email,
		DisplayName: name,
	}, e.now))
	return identity.Caller{ID: id, Email: email, Name: name}
}

// seedAccount creates an account owned by a freshly seeded user.
func (e *testEnv) seedAccount(t *testing.T) (*Account, identity.Caller) {
	t.Helper()
	owner := e.seedUser(t, "u-owner", "owner@example.com", "Olive Owner")
	acc, err := e.members.CreateAccount(context.Background(), owner.ID, "Acme")
	require.NoError(t, err)
	return acc, owner
}

func (e *testEnv) account(t *testing.T, id string) *Account {
	t.Helper()
	acc, err := e.repo.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return acc
}

// assertRosterInvariants checks the counts and the admin subset rule.
func assertRosterInvariants(t *testing.T, a *Account) {
	t.Helper()
	require.Equal(t, len(a.Access), a.AccessCount, "access count")
	require.Equal(t, len(a.Admins), a.AdminCount, "admin count")
	for _, id := range a.Admins {
		require.Contains(t, []string(a.Access), id, "admin %s not a member", id)
	}
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
