package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teamroster/server/internal/module/identity"
)

// Repository is the document store behind the membership services.
// UpdateRoster is a compare-and-set on Account.Version.
type Repository interface {
	// Account operations
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, id string) (*Account, error)
	UpdateRoster(ctx context.Context, account *Account) error

	// User operations
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, ids []string) ([]*User, error)
	RecordLogin(ctx context.Context, profile identity.Profile, at time.Time) error

	// Invite operations
	CreateInvite(ctx context.Context, invite *Invite) error
	GetInvite(ctx context.Context, id string) (*Invite, error)
	DeleteInvite(ctx context.Context, id string) error

	// Activity operations
	AppendActivity(ctx context.Context, activity *Activity) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// repository implements Repository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates a GORM-backed repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ========== Account Operations ==========

func (r *repository) CreateAccount(ctx context.Context, account *Account) error {
	account.recount()
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) GetAccount(ctx context.Context, id string) (*Account, error) {
	var account Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// UpdateRoster writes the roster only if nobody else has since the
// account was read. On success account.Version is advanced.
func (r *repository) UpdateRoster(ctx context.Context, account *Account) error {
	account.recount()
	result := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ? AND version = ?", account.ID, account.Version).
		Updates(map[string]any{
			"access":       account.Access,
			"admins":       account.Admins,
			"access_count": account.AccessCount,
			"admin_count":  account.AdminCount,
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", account.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrAccountNotFound
		}
		return ErrVersionConflict
	}
	account.Version++
	return nil
}

// ========== User Operations ==========

func (r *repository) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) ListUsers(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) RecordLogin(ctx context.Context, profile identity.Profile, at time.Time) error {
	user := &User{
		ID:            profile.UserID,
		Email:         normalizeEmail(profile.Email),
		DisplayName:   profile.DisplayName,
		PhotoURL:      profile.PhotoURL,
		LastLoginTime: &at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "photo_url", "last_login_time"}),
	}).Create(user).Error
}

// ========== Invite Operations ==========

func (r *repository) CreateInvite(ctx context.Context, invite *Invite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *repository) GetInvite(ctx context.Context, id string) (*Invite, error) {
	var invite Invite
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &invite, nil
}

// DeleteInvite removes an invite. Only one of several concurrent callers
// succeeds; the rest get ErrInviteNotFound.
func (r *repository) DeleteInvite(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Invite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// ========== Activity Operations ==========

func (r *repository) AppendActivity(ctx context.Context, activity *Activity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(activity).Error; err != nil {
			return fmt.Errorf("insert activity: %w", err)
		}
		return tx.Model(&User{}).
			Where("id = ?", activity.UserID).
			UpdateColumn("activity_count", gorm.Expr("activity_count + ?", 1)).Error
	})
}
