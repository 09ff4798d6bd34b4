package account

import (
	"context"
	"sync"
	"time"

	"github.com/teamroster/server/internal/module/identity"
)

// MemoryRepository is an in-process Repository with the same
// compare-and-set semantics as the database one.
type MemoryRepository struct {
	mu         sync.RWMutex
	accounts   map[string]*Account
	users      map[string]*User
	invites    map[string]*Invite
	activities []*Activity
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts: make(map[string]*Account),
		users:    make(map[string]*User),
		invites:  make(map[string]*Invite),
	}
}

func (r *MemoryRepository) CreateAccount(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account.recount()
	r.accounts[account.ID] = account.clone()
	return nil
}

func (r *MemoryRepository) GetAccount(_ context.Context, id string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account.clone(), nil
}

func (r *MemoryRepository) UpdateRoster(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[account.ID]
	if !ok {
		return ErrAccountNotFound
	}
	if stored.Version != account.Version {
		return ErrVersionConflict
	}

	account.recount()
	account.Version++
	r.accounts[account.ID] = account.clone()
	return nil
}

func (r *MemoryRepository) GetUser(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = normalizeEmail(email)
	for _, user := range r.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryRepository) ListUsers(_ context.Context, ids []string) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*User, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			u := *user
			users = append(users, &u)
		}
	}
	return users, nil
}

func (r *MemoryRepository) RecordLogin(_ context.Context, profile identity.Profile, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[profile.UserID]
	if !ok {
		user = &User{ID: profile.UserID}
		r.users[profile.UserID] = user
	}
	user.Email = normalizeEmail(profile.Email)
	user.DisplayName = profile.DisplayName
	user.PhotoURL = profile.PhotoURL
	user.LastLoginTime = &at
	return nil
}

func (r *MemoryRepository) CreateInvite(_ context.Context, invite *Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := *invite
	r.invites[invite.ID] = &i
	return nil
}

func (r *MemoryRepository) GetInvite(_ context.Context, id string) (*Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invite, ok := r.invites[id]
	if !ok {
		return nil, ErrInviteNotFound
	}
	i := *invite
	return &i, nil
}

func (r *MemoryRepository) DeleteInvite(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invites[id]; !ok {
		return ErrInviteNotFound
	}
	delete(r.invites, id)
	return nil
}

func (r *MemoryRepository) AppendActivity(_ context.Context, activity *Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := *activity
	r.activities = append(r.activities, &a)
	if user, ok := r.users[activity.UserID]; ok {
		user.ActivityCount++
	}
	return nil
}

// Activities returns a copy of the recorded activity log.
func (r *MemoryRepository) Activities() []Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Activity, len(r.activities))
	for i, a := range r.activities {
		out[i] = *a
	}
	return out
}
