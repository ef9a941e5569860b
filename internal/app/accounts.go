package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
)

// LinkResult tells the caller which reply to show after a successful link.
type LinkResult int

const (
	LinkCreated LinkResult = iota
	LinkUpdated
)

// AccountService handles member-initiated account changes.
type AccountService struct {
	accounts domain.AccountRepository
	escrow   domain.EscrowRepository
	ledger   domain.Ledger
}

func NewAccountService(accounts domain.AccountRepository, escrow domain.EscrowRepository, ledger domain.Ledger) *AccountService {
	return &AccountService{
		accounts: accounts,
		escrow:   escrow,
		ledger:   ledger,
	}
}

// Link verifies the credential against the ledger and stores it together with
// the ledger username. Returns domain.ErrLedgerAccountNotFound for a
// credential the ledger does not know.
func (s *AccountService) Link(ctx context.Context, platformID, credential string) (LinkResult, error) {
	username, err := s.ledger.LookupAccount(ctx, credential)
	if err != nil {
		return 0, fmt.Errorf("failed to look up ledger account: %w", err)
	}

	created, err := s.accounts.Link(ctx, platformID, credential, username)
	if err != nil {
		return 0, fmt.Errorf("failed to link account: %w", err)
	}

	slog.InfoContext(ctx, "Account linked", "platform_id", platformID, "ledger_username", username, "created", created)

	// Claims are only reported; paying them out is not supported.
	pending, err := s.escrow.ListPending(ctx, platformID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to list pending escrow claims", "platform_id", platformID, "error", err)
	} else if len(pending) > 0 {
		slog.InfoContext(ctx, "Linked account has pending escrow claims", "platform_id", platformID, "count", len(pending))
	}

	if created {
		return LinkCreated, nil
	}
	return LinkUpdated, nil
}

// SetNotifications replaces both thresholds. nil means "always notify" and
// domain.NotificationsDisabled turns a direction off.
func (s *AccountService) SetNotifications(ctx context.Context, platformID string, thresholds domain.NotificationThresholds) error {
	if !validThreshold(thresholds.Send) || !validThreshold(thresholds.Receive) {
		return domain.ErrInvalidThreshold
	}

	if err := s.accounts.SetNotificationThresholds(ctx, platformID, thresholds); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("failed to set notification thresholds: %w", err)
	}
	return nil
}

func validThreshold(t *int) bool {
	return t == nil || *t == domain.NotificationsDisabled || *t >= 0
}
