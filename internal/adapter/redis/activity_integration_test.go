package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/adapter/metrics"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestActivityStream_PublishTransfer(t *testing.T) {
	m := metrics.NewRedisMetrics(prometheus.NewRegistry())
	client := setupTestClient(t, NewMetricsHook(m), NewBreakerHook(time.Minute))
	stream := NewActivityStream(client)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := stream.PublishTransfer(ctx, domain.TransferEvent{
		FromPlatformID:   "100",
		ToPlatformID:     "200",
		ReactionSymbol:   "clap",
		Amount:           5,
		SourceMessageURL: "https://discord.com/channels/1/2/3",
		OccurredAt:       at,
	})
	require.NoError(t, err)

	entries, err := client.XRange(ctx, ActivityStreamKey, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]any{
		"type":        "transfer",
		"from":        "100",
		"to":          "200",
		"symbol":      "clap",
		"amount":      "5",
		"message_url": "https://discord.com/channels/1/2/3",
		"at":          "2026-03-01T12:00:00Z",
	}, entries[0].Values)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("xadd", "success")))
}

func TestActivityStream_PublishEscrow(t *testing.T) {
	client := setupTestClient(t)
	stream := NewActivityStream(client)
	ctx := context.Background()

	claim := domain.EscrowClaim{
		ID:               uuid.New(),
		FromPlatformID:   "100",
		ToPlatformID:     "200",
		ReactionSymbol:   "clap",
		SourceMessageURL: "url",
		CreatedAt:        time.Now(),
	}
	require.NoError(t, stream.PublishEscrow(ctx, claim))

	entries, err := client.XRange(ctx, ActivityStreamKey, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "escrow", entries[0].Values["type"])
	assert.Equal(t, claim.ID.String(), entries[0].Values["claim_id"])
}

func TestActivityStream_ClosedClientErrors(t *testing.T) {
	client := setupTestClient(t)
	stream := NewActivityStream(client)
	require.NoError(t, client.Close())

	err := stream.PublishTransfer(context.Background(), domain.TransferEvent{Amount: 1})
	assert.Error(t, err)
}
