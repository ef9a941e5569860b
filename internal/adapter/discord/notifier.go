package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/adapter/metrics"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"golang.org/x/time/rate"
)

const notifyTimeout = 30 * time.Second

// Notifier delivers direct messages in the background. Every REST call is
// attempted once; a failed delivery is logged and counted, never retried.
type Notifier struct {
	session Session
	limiter *rate.Limiter
	metrics *metrics.NotificationMetrics
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

var _ domain.Notifier = (*Notifier)(nil)

// NewNotifier allows perSecond DMs per second with bursts of the same size.
func NewNotifier(session Session, perSecond float64, m *metrics.NotificationMetrics) *Notifier {
	burst := max(int(perSecond), 1)
	return &Notifier{
		session: session,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		metrics: m,
	}
}

// Notify returns immediately. The delivery outlives ctx's cancellation but
// keeps its values for logging. Once Close has been called the message is
// dropped and counted as failed.
func (n *Notifier) Notify(ctx context.Context, platformID string, msg domain.Notification) {
	if !n.track() {
		n.metrics.Failed.WithLabelValues("closed").Inc()
		slog.WarnContext(ctx, "Direct message dropped during shutdown", "recipient", platformID)
		return
	}
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		if stage, err := n.deliver(ctx, platformID, msg); err != nil {
			n.metrics.Failed.WithLabelValues(stage).Inc()
			slog.WarnContext(ctx, "Failed to deliver direct message", "recipient", platformID, "stage", stage, "error", err)
			return
		}
		n.metrics.Sent.Inc()
	}()
}

// track registers a pending delivery unless Close has been called.
func (n *Notifier) track() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return false
	}
	n.wg.Add(1)
	return true
}

func (n *Notifier) deliver(ctx context.Context, platformID string, msg domain.Notification) (string, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return "rate_limit", fmt.Errorf("rate limiter: %w", err)
	}

	channel, err := n.session.UserChannelCreate(platformID, discordgo.WithContext(ctx))
	if err != nil {
		return "open_channel", fmt.Errorf("failed to open DM channel: %w", err)
	}

	if msg.Embed {
		_, err = n.session.ChannelMessageSendEmbed(channel.ID, &discordgo.MessageEmbed{Description: msg.Content}, discordgo.WithContext(ctx))
	} else {
		_, err = n.session.ChannelMessageSend(channel.ID, msg.Content, discordgo.WithContext(ctx))
	}
	if err != nil {
		return "send", fmt.Errorf("failed to send DM: %w", err)
	}
	return "", nil
}

// Close stops accepting messages and waits for pending deliveries, up to ctx.
// Each delivery is bounded by its own timeout, so the drain ends even when ctx
// expires first.
func (n *Notifier) Close(ctx context.Context) error {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("direct messages still pending: %w", ctx.Err())
	}
}
