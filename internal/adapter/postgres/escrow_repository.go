package postgres

import (
	"context"
	"fmt"

	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EscrowRepo is append-only. consumed_at is never written here.
type EscrowRepo struct {
	pool *pgxpool.Pool
}

var _ domain.EscrowRepository = (*EscrowRepo)(nil)

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

func (r *EscrowRepo) Enqueue(ctx context.Context, claim domain.EscrowClaim) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO escrow_claims (id, from_platform_id, to_platform_id, reaction_symbol, source_message_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, claim.ID, claim.FromPlatformID, claim.ToPlatformID, claim.ReactionSymbol, claim.SourceMessageURL, claim.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue escrow claim: %w", err)
	}
	return nil
}

func (r *EscrowRepo) ListPending(ctx context.Context, toPlatformID string) ([]domain.EscrowClaim, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, from_platform_id, to_platform_id, reaction_symbol, source_message_url, created_at
		FROM escrow_claims
		WHERE to_platform_id = $1 AND consumed_at IS NULL
		ORDER BY created_at
	`, toPlatformID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending escrow claims: %w", err)
	}

	claims, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.EscrowClaim, error) {
		var c domain.EscrowClaim
		err := row.Scan(&c.ID, &c.FromPlatformID, &c.ToPlatformID, &c.ReactionSymbol, &c.SourceMessageURL, &c.CreatedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan escrow claims: %w", err)
	}
	return claims, nil
}
