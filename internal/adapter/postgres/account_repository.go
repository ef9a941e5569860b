package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/platform/crypto"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepo struct {
	pool   *pgxpool.Pool
	crypto crypto.Service
}

var _ domain.AccountRepository = (*AccountRepo)(nil)

func NewAccountRepo(pool *pgxpool.Pool, cryptoSvc crypto.Service) *AccountRepo {
	return &AccountRepo{pool: pool, crypto: cryptoSvc}
}

func (r *AccountRepo) Get(ctx context.Context, platformID string) (*domain.Account, error) {
	var (
		a      domain.Account
		sealed string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT platform_id, ledger_credential, ledger_username, notify_send_min, notify_receive_min,
		       total_donated, created_at, updated_at
		FROM accounts
		WHERE platform_id = $1
	`, platformID).Scan(
		&a.PlatformID, &sealed, &a.LedgerUsername, &a.Notifications.Send, &a.Notifications.Receive,
		&a.TotalDonated, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	a.LedgerCredential, err = r.crypto.Open(sealed, platformID)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt ledger credential: %w", err)
	}
	return &a, nil
}

// Link is a single upsert; concurrent links for one member resolve last-write-wins.
// xmax is zero only for a freshly inserted row.
func (r *AccountRepo) Link(ctx context.Context, platformID, credential, username string) (bool, error) {
	sealed, err := r.crypto.Seal(credential, platformID)
	if err != nil {
		return false, fmt.Errorf("failed to encrypt ledger credential: %w", err)
	}

	var created bool
	err = r.pool.QueryRow(ctx, `
		INSERT INTO accounts (platform_id, ledger_credential, ledger_username)
		VALUES ($1, $2, $3)
		ON CONFLICT (platform_id) DO UPDATE SET
			ledger_credential = EXCLUDED.ledger_credential,
			ledger_username = EXCLUDED.ledger_username,
			updated_at = NOW()
		RETURNING (xmax = 0)
	`, platformID, sealed, username).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert account: %w", err)
	}
	return created, nil
}

func (r *AccountRepo) RecordDonation(ctx context.Context, platformID string, amount int) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET total_donated = total_donated + $2, updated_at = NOW()
		WHERE platform_id = $1
	`, platformID, int64(amount))
	if err != nil {
		return fmt.Errorf("failed to record donation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepo) SetNotificationThresholds(ctx context.Context, platformID string, thresholds domain.NotificationThresholds) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET notify_send_min = $2, notify_receive_min = $3, updated_at = NOW()
		WHERE platform_id = $1
	`, platformID, thresholds.Send, thresholds.Receive)
	if err != nil {
		return fmt.Errorf("failed to set notification thresholds: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
