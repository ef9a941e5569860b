package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/adapter/metrics"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/app"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/platform/correlation"
	"golang.org/x/sync/semaphore"
)

const (
	defaultEventTimeout  = 15 * time.Second
	defaultMaxConcurrent = 64
)

// ReactionHandler runs a reaction event through the transfer workflow.
type ReactionHandler interface {
	HandleReaction(ctx context.Context, ev domain.ReactionEvent) (domain.Outcome, error)
}

// AccountCommands backs the slash commands.
type AccountCommands interface {
	Link(ctx context.Context, platformID, credential string) (app.LinkResult, error)
	SetNotifications(ctx context.Context, platformID string, thresholds domain.NotificationThresholds) error
}

type Config struct {
	AppID string
	// GuildID registers commands for one guild only. Empty registers them globally.
	GuildID       string
	Rules         *domain.RuleTable
	UseEmojiNames bool
	MaxConcurrent int64
	EventTimeout  time.Duration
	Status        StatusConfig
}

type StatusConfig struct {
	Enabled   bool
	ChannelID string
	Up        string
	Down      string
}

// Bot receives gateway events. discordgo calls each handler on its own
// goroutine; a semaphore bounds how many reaction events run at once.
type Bot struct {
	session   Session
	cache     MessageCache
	reactions ReactionHandler
	accounts  AccountCommands
	metrics   *metrics.ReactionMetrics
	cfg       Config
	sem       *semaphore.Weighted

	// ctx is cancelled by Close so queued events stop waiting for the semaphore.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// started guards work done on the first Ready only; discordgo sends Ready
	// again after every fresh identify.
	started sync.Once

	mu     sync.RWMutex
	botID  string
	closed bool
}

// NewBot wires the handlers. cache may be nil, in which case every message is
// fetched over REST.
func NewBot(session Session, cache MessageCache, reactions ReactionHandler, accounts AccountCommands, m *metrics.ReactionMetrics, cfg Config) *Bot {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.EventTimeout <= 0 {
		cfg.EventTimeout = defaultEventTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		session:   session,
		cache:     cache,
		reactions: reactions,
		accounts:  accounts,
		metrics:   m,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(cfg.MaxConcurrent),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Register installs the gateway handlers and the intents they need.
func (b *Bot) Register(s *discordgo.Session) {
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions
	s.AddHandler(b.onReady)
	s.AddHandler(b.onReactionAdd)
	s.AddHandler(b.onInteractionCreate)
}

// Close stops accepting reaction events and waits for in-flight ones, up to ctx.
func (b *Bot) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("reaction events still in flight: %w", ctx.Err())
	}
}

func (b *Bot) setBotID(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.botID = id
}

func (b *Bot) currentBotID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.botID
}

// track registers an in-flight event unless Close has been called.
func (b *Bot) track() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.wg.Add(1)
	return true
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r.User != nil {
		b.setBotID(r.User.ID)
	}
	slog.Info("Connected to Discord", "user", b.currentBotID(), "guilds", len(r.Guilds))

	b.started.Do(b.start)
}

func (b *Bot) start() {
	ctx, cancel := context.WithTimeout(b.ctx, b.cfg.EventTimeout)
	defer cancel()

	if err := b.registerCommands(ctx); err != nil {
		slog.Error("Failed to register commands", "error", err)
	}
	b.announce(ctx, b.cfg.Status.Up)
}

func (b *Bot) onReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r == nil || r.MessageReaction == nil {
		return
	}

	if !b.track() {
		b.metrics.Dropped.Inc()
		return
	}
	defer b.wg.Done()

	if err := b.sem.Acquire(b.ctx, 1); err != nil {
		b.metrics.Dropped.Inc()
		return
	}
	defer b.sem.Release(1)

	b.metrics.InFlight.Inc()
	defer b.metrics.InFlight.Dec()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(b.ctx), b.cfg.EventTimeout)
	defer cancel()
	ctx = correlation.WithID(ctx, correlation.NewID())
	ctx = correlation.WithAttrs(ctx,
		slog.String("channel_id", r.ChannelID),
		slog.String("message_id", r.MessageID),
		slog.String("actor", r.UserID),
	)

	start := time.Now()
	b.handleReaction(ctx, r.MessageReaction)
	b.metrics.ProcessingDuration.Observe(time.Since(start).Seconds())
}

func (b *Bot) handleReaction(ctx context.Context, r *discordgo.MessageReaction) {
	symbol := reactionSymbol(r.Emoji, b.cfg.UseEmojiNames)
	rule, ok := b.cfg.Rules.Lookup(symbol)
	if !ok {
		b.metrics.Processed.WithLabelValues(domain.OutcomeIgnored.String()).Inc()
		return
	}

	msg, err := b.fetchMessage(r.ChannelID, r.MessageID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to fetch reacted message", "error", err)
		b.metrics.Dropped.Inc()
		return
	}

	ev := domain.ReactionEvent{
		Ref: domain.ReactionRef{
			ChannelID:    r.ChannelID,
			MessageID:    r.MessageID,
			UserID:       r.UserID,
			EmojiAPIName: r.Emoji.APIName(),
		},
		Symbol:     symbol,
		ActorID:    r.UserID,
		AuthorID:   effectiveAuthorID(msg, b.currentBotID()),
		MessageURL: messageURL(r.GuildID, r.ChannelID, r.MessageID),
	}

	outcome, err := b.reactions.HandleReaction(ctx, ev)
	b.metrics.Processed.WithLabelValues(outcome.String()).Inc()
	if err != nil {
		slog.ErrorContext(ctx, "Reaction processing failed", "outcome", outcome.String(), "error", err)
		return
	}
	if outcome == domain.OutcomeTransferred {
		b.metrics.KudosTransferred.Add(float64(rule.Value))
	}
	slog.DebugContext(ctx, "Reaction processed", "symbol", symbol, "outcome", outcome.String())
}

func (b *Bot) fetchMessage(channelID, messageID string) (*discordgo.Message, error) {
	if b.cache != nil {
		if msg, err := b.cache.Message(channelID, messageID); err == nil && msg.Author != nil {
			return msg, nil
		}
	}

	msg, err := b.session.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}
	if msg.Author == nil {
		return nil, errors.New("message has no author")
	}
	return msg, nil
}

// reactionSymbol picks the identifier reaction rules are keyed by. Unicode
// emojis have no ID, so with useNames=false they never match a rule.
func reactionSymbol(e discordgo.Emoji, useNames bool) string {
	if useNames {
		return e.Name
	}
	return e.ID
}

// effectiveAuthorID attributes a command response posted by the bot itself to
// the member who invoked the command.
func effectiveAuthorID(msg *discordgo.Message, botID string) string {
	if botID != "" && msg.Author.ID == botID && msg.Interaction != nil && msg.Interaction.User != nil {
		return msg.Interaction.User.ID
	}
	return msg.Author.ID
}

func messageURL(guildID, channelID, messageID string) string {
	if guildID == "" {
		guildID = "@me"
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}
