package account

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/teamroster/server/internal/module/identity"
	"github.com/teamroster/server/internal/shared/events"
)

// InviteService issues invites and redeems them into memberships.
type InviteService struct {
	repo      Repository
	members   *MembershipService
	hasher    *Hasher
	notifier  Notifier
	limiter   InviteLimiter
	validator EmailValidator
	publisher events.Publisher
	cfg       *Config
	logger    *zap.Logger
	options
}

// InviteDeps are the collaborators of InviteService.
type InviteDeps struct {
	Repo      Repository
	Members   *MembershipService
	Hasher    *Hasher
	Notifier  Notifier
	Limiter   InviteLimiter
	Validator EmailValidator
	Publisher events.Publisher
}

// NewInviteService creates an invite service.
func NewInviteService(deps InviteDeps, cfg *Config, logger *zap.Logger, opts ...Option) *InviteService {
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Limiter == nil {
		deps.Limiter = unlimited{}
	}
	if deps.Validator == nil {
		deps.Validator = NewSyntaxValidator(false)
	}
	return &InviteService{
		repo:      deps.Repo,
		members:   deps.Members,
		hasher:    deps.Hasher,
		notifier:  deps.Notifier,
		limiter:   deps.Limiter,
		validator: deps.Validator,
		publisher: deps.Publisher,
		cfg:       cfg,
		logger:    logger,
		options:   buildOptions(opts),
	}
}

// CreateInvite records an invite for email and mails it. If mailing fails
// the invite stays valid; its id is returned with ErrNotificationFailed.
func (s *InviteService) CreateInvite(ctx context.Context, accountID string, caller identity.Caller, email string, role Role) (inviteID string, err error) {
	defer func() { s.metrics.RecordOperation("create_invite", err) }()

	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	if err := s.validator.Validate(email); err != nil {
		return "", err
	}

	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	if err := requireAdmin(account, caller.ID); err != nil {
		return "", err
	}

	allowed, err := s.limiter.Allow(ctx, caller.ID)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", ErrRateLimited
	}

	invite := &Invite{
		ID:          s.newID(),
		HashedEmail: s.hasher.Digest(email),
		Owner:       caller.ID,
		Account:     account.ID,
		Role:        role,
		Time:        s.now(),
	}
	if err := s.repo.CreateInvite(ctx, invite); err != nil {
		return "", fmt.Errorf("create invite: %w", err)
	}

	event := events.NewMembershipEvent(events.InviteCreatedType, account.ID, caller.ID, invite.Time)
	event.InviteID = invite.ID
	event.Role = string(role)
	s.publisher.Publish(ctx, event)

	s.logger.Info("invite created",
		zap.String("invite_id", invite.ID),
		zap.String("account_id", account.ID),
		zap.String("owner_id", caller.ID),
		zap.String("role", string(role)),
	)

	sendErr := s.notifier.SendInvite(ctx, email, s.senderName(ctx, caller), invite.ID)
	s.metrics.RecordInviteMail(sendErr)
	if sendErr != nil {
		s.logger.Error("invite notification failed",
			zap.String("invite_id", invite.ID),
			zap.Error(sendErr),
		)
		return invite.ID, fmt.Errorf("%w: %v", ErrNotificationFailed, sendErr)
	}
	return invite.ID, nil
}

// senderName picks the name shown as the inviter.
func (s *InviteService) senderName(ctx context.Context, caller identity.Caller) string {
	if caller.Name != "" {
		return caller.Name
	}
	if user, err := s.repo.GetUser(ctx, caller.ID); err == nil && user.DisplayName != "" {
		return user.DisplayName
	}
	if caller.Email != "" {
		return caller.Email
	}
	return "A teammate"
}

// ResolveInvite tells the invitee which account an invite is for.
func (s *InviteService) ResolveInvite(ctx context.Context, inviteID, callerEmail string) (*InviteDetails, error) {
	invite, err := s.loadForCaller(ctx, inviteID, callerEmail)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.GetAccount(ctx, invite.Account)
	if err != nil {
		return nil, err
	}
	return &InviteDetails{
		AccountID:   account.ID,
		AccountName: account.Name,
		Role:        invite.Role,
		ExpiresAt:   invite.Time.Add(s.cfg.InviteExpiry),
	}, nil
}

// AcceptInvite adds the caller to the invited account and consumes the
// invite. An invitee who is already a member still consumes it.
func (s *InviteService) AcceptInvite(ctx context.Context, inviteID string, caller identity.Caller) (accountID string, err error) {
	defer func() { s.metrics.RecordOperation("accept_invite", err) }()

	invite, err := s.loadForCaller(ctx, inviteID, caller.Email)
	if err != nil {
		return "", err
	}
	if invite.expired(s.now(), s.cfg.InviteExpiry) {
		return "", ErrInviteExpired
	}

	_, addErr := s.members.AddMember(ctx, invite.Account, caller.ID, invite.Role == RoleAdmin)
	if addErr != nil && !errors.Is(addErr, ErrAlreadyMember) {
		return "", addErr
	}

	if err := s.repo.DeleteInvite(ctx, invite.ID); err != nil {
		return "", err
	}

	event := events.NewMembershipEvent(events.InviteAcceptedType, invite.Account, caller.ID, s.now())
	event.InviteID = invite.ID
	event.Role = string(invite.Role)
	s.publisher.Publish(ctx, event)

	s.logger.Info("invite accepted",
		zap.String("invite_id", invite.ID),
		zap.String("account_id", invite.Account),
		zap.String("user_id", caller.ID),
		zap.Bool("already_member", addErr != nil),
	)
	return invite.Account, nil
}

// loadForCaller loads an invite and checks it was issued to callerEmail.
func (s *InviteService) loadForCaller(ctx context.Context, inviteID, callerEmail string) (*Invite, error) {
	invite, err := s.repo.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if callerEmail == "" || !s.hasher.Matches(invite.HashedEmail, callerEmail) {
		return nil, ErrInviteMismatch
	}
	return invite, nil
}
