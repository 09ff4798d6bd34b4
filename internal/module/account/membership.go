package account

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/teamroster/server/internal/shared/events"
)

// MembershipService manages account rosters.
type MembershipService struct {
	repo      Repository
	publisher events.Publisher
	cfg       *Config
	logger    *zap.Logger
	options
}

// NewMembershipService creates a membership service.
func NewMembershipService(repo Repository, publisher events.Publisher, cfg *Config, logger *zap.Logger, opts ...Option) *MembershipService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &MembershipService{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		options:   buildOptions(opts),
	}
}

// CreateAccount creates an account whose owner is its first member and admin.
func (s *MembershipService) CreateAccount(ctx context.Context, ownerID, name string) (acc *Account, err error) {
	defer func() { s.metrics.RecordOperation("create_account", err) }()

	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > s.cfg.MaxAccountNameLength {
		return nil, ErrInvalidAccountName
	}

	acc = &Account{
		ID:           s.newID(),
		Name:         name,
		Owner:        ownerID,
		CreationTime: s.now(),
	}
	acc.addMember(ownerID, true)

	if err := s.repo.CreateAccount(ctx, acc); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	event := events.NewMembershipEvent(events.AccountCreatedType, acc.ID, ownerID, acc.CreationTime)
	event.Name = acc.Name
	s.publisher.Publish(ctx, event)

	s.logger.Info("account created",
		zap.String("account_id", acc.ID),
		zap.String("owner_id", ownerID),
	)
	return acc, nil
}

// AddMember adds an existing user to an account's roster.
// The joining user is recorded as the actor.
func (s *MembershipService) AddMember(ctx context.Context, accountID, userID string, asAdmin bool) (string, error) {
	err := s.addMember(ctx, userID, accountID, userID, asAdmin, nil)
	s.metrics.RecordOperation("add_member", err)
	if err != nil {
		return "", err
	}
	return accountID, nil
}

// AddMemberByEmail lets an admin add a registered user by email address.
func (s *MembershipService) AddMemberByEmail(ctx context.Context, accountID, callerID, email string, role Role) (err error) {
	defer func() { s.metrics.RecordOperation("add_member_by_email", err) }()

	if !role.IsValid() {
		return ErrInvalidRole
	}
	if s.validator != nil {
		if err := s.validator.Validate(email); err != nil {
			return err
		}
	}

	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if err := requireAdmin(account, callerID); err != nil {
		return err
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	adminStill := func(a *Account) error { return requireAdmin(a, callerID) }
	return s.addMember(ctx, callerID, accountID, user.ID, role == RoleAdmin, adminStill)
}

func (s *MembershipService) addMember(ctx context.Context, actorID, accountID, userID string, asAdmin bool, precheck func(*Account) error) error {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return err
	}

	account, err := s.mutateRoster(ctx, accountID, func(a *Account) (bool, error) {
		if precheck != nil {
			if err := precheck(a); err != nil {
				return false, err
			}
		}
		if a.HasMember(userID) {
			return false, ErrAlreadyMember
		}
		a.addMember(userID, asAdmin)
		return true, nil
	})
	if err != nil {
		return err
	}

	role := RoleMember
	if asAdmin {
		role = RoleAdmin
	}
	event := events.NewMembershipEvent(events.MemberAddedType, accountID, actorID, s.now())
	event.SubjectID = userID
	event.Role = string(role)
	s.publisher.Publish(ctx, event)

	s.logger.Info("member added",
		zap.String("account_id", accountID),
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.Int("access_count", account.AccessCount),
	)
	return nil
}

// ChangeRole promotes, demotes or removes a member. Only admins may call it.
// Requests that would not change the roster succeed without a write.
func (s *MembershipService) ChangeRole(ctx context.Context, accountID, callerID, targetID string, change RoleChange) (err error) {
	defer func() { s.metrics.RecordOperation("change_role", err) }()

	if !change.IsValid() {
		return ErrInvalidRole
	}

	var changed bool
	_, err = s.mutateRoster(ctx, accountID, func(a *Account) (bool, error) {
		if err := requireAdmin(a, callerID); err != nil {
			return false, err
		}
		if !a.HasMember(targetID) {
			return false, ErrMemberNotFound
		}
		changed = a.applyRoleChange(targetID, change)
		return changed, nil
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	eventType := events.MemberRoleChangedType
	if change == ChangeRemove {
		eventType = events.MemberRemovedType
	}
	event := events.NewMembershipEvent(eventType, accountID, callerID, s.now())
	event.SubjectID = targetID
	event.Role = string(change)
	s.publisher.Publish(ctx, event)

	s.logger.Info("member role changed",
		zap.String("account_id", accountID),
		zap.String("caller_id", callerID),
		zap.String("user_id", targetID),
		zap.String("change", string(change)),
	)
	return nil
}

// ListMembers returns the roster ordered by display name, then id.
func (s *MembershipService) ListMembers(ctx context.Context, accountID, callerID string) ([]Member, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(account, callerID); err != nil {
		return nil, err
	}

	users, err := s.repo.ListUsers(ctx, account.Access)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	byID := make(map[string]*User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	members := make([]Member, 0, len(account.Access))
	for _, id := range account.Access {
		members = append(members, s.toMember(account, id, byID[id]))
	}
	slices.SortFunc(members, compareMembers)
	return members, nil
}

// GetMember returns one roster entry. Only admins may call it.
func (s *MembershipService) GetMember(ctx context.Context, accountID, callerID, userID string) (*Member, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(account, callerID); err != nil {
		return nil, err
	}
	if !account.HasMember(userID) {
		return nil, ErrMemberNotFound
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	m := s.toMember(account, userID, user)
	return &m, nil
}

// toMember builds a roster entry. Users without a mirrored profile are
// still listed, by id only.
func (s *MembershipService) toMember(account *Account, id string, user *User) Member {
	role, _ := account.RoleOf(id)
	m := Member{ID: id, Role: role}
	if user == nil {
		s.logger.Warn("roster member has no profile",
			zap.String("account_id", account.ID),
			zap.String("user_id", id),
		)
		return m
	}
	m.DisplayName = user.DisplayName
	m.PhotoURL = user.PhotoURL
	m.LastLoginTime = user.LastLoginTime
	return m
}

func compareMembers(a, b Member) int {
	if c := cmp.Compare(a.DisplayName, b.DisplayName); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
