package discord

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/platform/retry"
)

var statusPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   500 * time.Millisecond,
	RateLimitBackoff: 2 * time.Second,
}

// AnnounceDown posts the configured shutdown message. Call it before closing
// the gateway session.
func (b *Bot) AnnounceDown(ctx context.Context) {
	b.announce(ctx, b.cfg.Status.Down)
}

// announce posts a status message when status notifications are enabled.
// Failures are logged only.
func (b *Bot) announce(ctx context.Context, content string) {
	status := b.cfg.Status
	if !status.Enabled || status.ChannelID == "" || content == "" {
		return
	}

	// A rejected post (429/5xx) never created a message, so repeating it is safe.
	err := retry.DoVoid(ctx, statusPolicy, classifyStatusPost, func() error {
		_, err := b.session.ChannelMessageSend(status.ChannelID, content, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to post status message", "channel_id", status.ChannelID, "error", err)
	}
}

// classifyStatusPost retries only responses that prove the message was not
// created. A transport error may have lost the response to a successful post.
func classifyStatusPost(err error) retry.Action {
	switch status := restStatus(err); {
	case status == http.StatusTooManyRequests:
		return retry.After
	case status >= 500:
		return retry.Retry
	default:
		return retry.Stop
	}
}
