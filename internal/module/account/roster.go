package account

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// rosterMutation inspects a freshly read account and edits its roster.
// It returns false when nothing needs to be written.
type rosterMutation func(account *Account) (bool, error)

// mutateRoster runs read, check, modify and compare-and-set write,
// starting over from a fresh read whenever another writer got there first.
func (s *MembershipService) mutateRoster(ctx context.Context, accountID string, mutate rosterMutation) (*Account, error) {
	for attempt := 0; attempt < s.cfg.MaxRosterRetries; attempt++ {
		account, err := s.repo.GetAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}

		changed, err := mutate(account)
		if err != nil {
			return nil, err
		}
		if !changed {
			return account, nil
		}

		err = s.repo.UpdateRoster(ctx, account)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, fmt.Errorf("update roster: %w", err)
		}

		s.metrics.RecordRosterConflict()
		s.logger.Debug("roster conflict, retrying",
			zap.String("account_id", accountID),
			zap.Int("attempt", attempt+1),
		)
		if err := s.backoff(ctx, attempt); err != nil {
			return nil, err
		}
	}
	return nil, ErrRosterContention
}

func (s *MembershipService) backoff(ctx context.Context, attempt int) error {
	base := s.cfg.RetryBackoff
	if base <= 0 {
		return ctx.Err()
	}
	delay := base*time.Duration(attempt+1) + rand.N(base)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
