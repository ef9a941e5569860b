package domain

import (
	"context"
	"time"
)

// TransferEvent describes a completed kudos transfer.
type TransferEvent struct {
	FromPlatformID   string
	ToPlatformID     string
	ReactionSymbol   string
	Amount           int
	SourceMessageURL string
	OccurredAt       time.Time
}

// ActivityPublisher publishes kudos activity to infrastructure.
type ActivityPublisher interface {
	PublishTransfer(ctx context.Context, event TransferEvent) error
	PublishEscrow(ctx context.Context, claim EscrowClaim) error
}
