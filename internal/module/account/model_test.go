package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"member", RoleMember, false},
		{"admin", RoleAdmin, false},
		{"user", RoleMember, false},
		{" Admin ", RoleAdmin, false},
		{"owner", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoleChange(t *testing.T) {
	tests := []struct {
		in      string
		want    RoleChange
		wantErr bool
	}{
		{"member", ChangeToMember, false},
		{"user", ChangeToMember, false},
		{"admin", ChangeToAdmin, false},
		{"remove", ChangeRemove, false},
		{"delete", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRoleChange(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestGuard(t *testing.T) {
	acc := &Account{}
	acc.addMember("alice", true)
	acc.addMember("bob", false)

	assert.True(t, IsAdmin(acc, "alice"))
	assert.False(t, IsAdmin(acc, "bob"))
	assert.False(t, IsAdmin(acc, "carol"))
	assert.False(t, IsAdmin(acc, ""))
	assert.False(t, IsAdmin(nil, "alice"))

	assert.True(t, IsMember(acc, "alice"))
	assert.True(t, IsMember(acc, "bob"))
	assert.False(t, IsMember(acc, "carol"))
	assert.False(t, IsMember(nil, "bob"))

	assert.NoError(t, requireAdmin(acc, "alice"))
	assert.ErrorIs(t, requireAdmin(acc, "bob"), ErrPermissionDenied)
}

func TestHasher(t *testing.T) {
	h := NewHasher(testSalt)

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		assert.Equal(t, h.Digest("foo@bar.com"), h.Digest(" Foo@Bar.com "))
	})

	t.Run("hex sha256", func(t *testing.T) {
		d := h.Digest("foo@bar.com")
		assert.Len(t, d, 64)
		assert.Regexp(t, "^[0-9a-f]+$", d)
	})

	t.Run("salt changes digest", func(t *testing.T) {
		assert.NotEqual(t, h.Digest("foo@bar.com"), NewHasher("other").Digest("foo@bar.com"))
	})

	t.Run("matches", func(t *testing.T) {
		d := h.Digest("foo@bar.com")
		assert.True(t, h.Matches(d, "FOO@bar.com"))
		assert.False(t, h.Matches(d, "foo@baz.com"))
	})
}

func TestAccount_ApplyRoleChange(t *testing.T) {
	newAccount := func() *Account {
		a := &Account{}
		a.addMember("alice", true)
		a.addMember("bob", false)
		return a
	}

	tests := []struct {
		name        string
		target      string
		change      RoleChange
		wantChanged bool
		wantRole    Role
		wantMember  bool
	}{
		{"promote member", "bob", ChangeToAdmin, true, RoleAdmin, true},
		{"promote admin is a no-op", "alice", ChangeToAdmin, false, RoleAdmin, true},
		{"demote admin", "alice", ChangeToMember, true, RoleMember, true},
		{"demote member is a no-op", "bob", ChangeToMember, false, RoleMember, true},
		{"remove member", "bob", ChangeRemove, true, "", false},
		{"remove admin", "alice", ChangeRemove, true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAccount()
			assert.Equal(t, tt.wantChanged, a.applyRoleChange(tt.target, tt.change))

			role, ok := a.RoleOf(tt.target)
			assert.Equal(t, tt.wantMember, ok)
			assert.Equal(t, tt.wantRole, role)
			assertRosterInvariants(t, a)
		})
	}
}

func TestAccount_CloneIsDeep(t *testing.T) {
	a := &Account{ID: "acc"}
	a.addMember("alice", true)

	c := a.clone()
	c.addMember("bob", false)

	assert.False(t, a.HasMember("bob"))
	assert.Equal(t, 1, a.AccessCount)
}

func TestInvite_Expired(t *testing.T) {
	window := 72 * time.Hour
	inv := &Invite{Time: baseTime}

	assert.False(t, inv.expired(baseTime, window))
	assert.False(t, inv.expired(baseTime.Add(window-time.Second), window))
	assert.True(t, inv.expired(baseTime.Add(window+time.Second), window))
}

func TestCompareMembers(t *testing.T) {
	a := Member{ID: "2", DisplayName: "Ann"}
	b := Member{ID: "1", DisplayName: "Bob"}
	c := Member{ID: "3", DisplayName: "Ann"}

	assert.Negative(t, compareMembers(a, b))
	assert.Positive(t, compareMembers(b, a))
	assert.Negative(t, compareMembers(a, c))
	assert.Zero(t, compareMembers(a, a))
}
