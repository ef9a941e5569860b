package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EscrowClaim records a reaction-triggered transfer whose recipient had no
// linked account. The symbol is stored instead of its value so the amount can
// be resolved against the rule table in effect when the claim is consumed.
type EscrowClaim struct {
	ID               uuid.UUID
	FromPlatformID   string
	ToPlatformID     string
	ReactionSymbol   string
	SourceMessageURL string
	CreatedAt        time.Time
}

type EscrowRepository interface {
	Enqueue(ctx context.Context, claim EscrowClaim) error
	ListPending(ctx context.Context, toPlatformID string) ([]EscrowClaim, error)
}
