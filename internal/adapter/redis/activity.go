package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	// ActivityStreamKey holds transfer and escrow events for downstream consumers.
	ActivityStreamKey = "kudos:events"
	activityMaxLen    = 10000

	eventTransfer = "transfer"
	eventEscrow   = "escrow"
)

// ActivityStream appends kudos activity to a capped Redis stream.
type ActivityStream struct {
	rdb *goredis.Client
}

var _ domain.ActivityPublisher = (*ActivityStream)(nil)

func NewActivityStream(rdb *goredis.Client) *ActivityStream {
	return &ActivityStream{rdb: rdb}
}

func (s *ActivityStream) PublishTransfer(ctx context.Context, event domain.TransferEvent) error {
	return s.add(ctx, map[string]any{
		"type":        eventTransfer,
		"from":        event.FromPlatformID,
		"to":          event.ToPlatformID,
		"symbol":      event.ReactionSymbol,
		"amount":      strconv.Itoa(event.Amount),
		"message_url": event.SourceMessageURL,
		"at":          event.OccurredAt.UTC().Format(time.RFC3339Nano),
	})
}

func (s *ActivityStream) PublishEscrow(ctx context.Context, claim domain.EscrowClaim) error {
	return s.add(ctx, map[string]any{
		"type":        eventEscrow,
		"claim_id":    claim.ID.String(),
		"from":        claim.FromPlatformID,
		"to":          claim.ToPlatformID,
		"symbol":      claim.ReactionSymbol,
		"message_url": claim.SourceMessageURL,
		"at":          claim.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (s *ActivityStream) add(ctx context.Context, values map[string]any) error {
	err := s.rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: ActivityStreamKey,
		MaxLen: activityMaxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append %s event: %w", values["type"], err)
	}
	return nil
}
